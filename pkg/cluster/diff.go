package cluster

// FindNonFulfilledAllocation returns the partitions whose placement in target differs from
// the placement in source, i.e. the partitions that would need to move in order to turn
// source into target. Two placements are the same if they use the same set of
// (node, folder) pairs; leadership and replica order are ignored. Partitions that only
// exist on one side are always included. The result is sorted.
func FindNonFulfilledAllocation(source *ClusterInfo, target *ClusterInfo) []TopicPartition {
	results := []TopicPartition{}

	for _, tp := range source.TopicPartitions() {
		if target.ReplicationFactor(tp) == 0 {
			results = append(results, tp)
		}
	}

	for _, tp := range target.TopicPartitions() {
		if !samePlacement(source.ReplicasOf(tp), target.ReplicasOf(tp)) {
			results = append(results, tp)
		}
	}

	SortTopicPartitions(results)
	return results
}

// FindLeaderChanges returns the partitions that exist in both source and target but whose
// leader is on a different node. The result is sorted.
func FindLeaderChanges(source *ClusterInfo, target *ClusterInfo) []TopicPartition {
	results := []TopicPartition{}

	for _, tp := range target.TopicPartitions() {
		sourceLeader, ok := source.Leader(tp)
		if !ok {
			continue
		}
		targetLeader, ok := target.Leader(tp)
		if ok && sourceLeader.NodeID != targetLeader.NodeID {
			results = append(results, tp)
		}
	}

	return results
}

type placement struct {
	nodeID int
	path   string
}

func samePlacement(a []Replica, b []Replica) bool {
	if len(a) != len(b) {
		return false
	}

	placements := map[placement]int{}
	for _, replica := range a {
		placements[placement{nodeID: replica.NodeID, path: replica.Path}]++
	}
	for _, replica := range b {
		key := placement{nodeID: replica.NodeID, path: replica.Path}
		if placements[key] == 0 {
			return false
		}
		placements[key]--
	}

	return true
}
