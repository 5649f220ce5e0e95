package cluster

import (
	"fmt"
	"sort"

	"github.com/segmentio/topicbalance/pkg/admin"
	log "github.com/sirupsen/logrus"
)

// FromTopology converts the brokers and topics returned by an admin client into a
// ClusterInfo.
//
// Replicas keep their preference order and the partition leader from the metadata is marked
// as leader; if the leader is unknown, the preferred replica is used. Kafka metadata doesn't
// say which folder hosts a replica, so folders are only attached to brokers that expose
// exactly one of them. Replicas on brokers that aren't in the broker list become bare nodes.
func FromTopology(
	clusterID string,
	brokers []admin.BrokerInfo,
	topics []admin.TopicInfo,
) (*ClusterInfo, error) {
	nodesMap := map[int]Node{}

	for _, broker := range brokers {
		node := Node{
			ID:   broker.ID,
			Host: broker.Host,
			Port: int(broker.Port),
			Rack: broker.Rack,
		}
		if logDirs := broker.LogDirs(); len(logDirs) == 1 {
			node.Folders = logDirs
		} else if len(logDirs) > 1 {
			log.Debugf(
				"Broker %d has %d log dirs; folder placement of its replicas is unknown",
				broker.ID,
				len(logDirs),
			)
		}
		nodesMap[broker.ID] = node
	}

	replicas := []Replica{}

	for _, topic := range topics {
		for _, partition := range topic.Partitions {
			if len(partition.Replicas) == 0 {
				return nil, fmt.Errorf(
					"Partition %d of topic %s has no replicas",
					partition.ID,
					topic.Name,
				)
			}

			leader := partition.Replicas[0]
			for _, replica := range partition.Replicas {
				if replica == partition.Leader {
					leader = replica
				}
			}

			for _, nodeID := range partition.Replicas {
				node, ok := nodesMap[nodeID]
				if !ok {
					log.Debugf("Replica of %s-%d is on unlisted broker %d", topic.Name, partition.ID, nodeID)
					node = Node{ID: nodeID}
					nodesMap[nodeID] = node
				}

				var path string
				if len(node.Folders) == 1 {
					path = node.Folders[0]
				}

				replicas = append(
					replicas,
					Replica{
						TopicPartition: TopicPartition{
							Topic:     topic.Name,
							Partition: partition.ID,
						},
						NodeID: nodeID,
						Path:   path,
						Leader: nodeID == leader,
					},
				)
			}
		}
	}

	nodes := make([]Node, 0, len(nodesMap))
	for _, node := range nodesMap {
		nodes = append(nodes, node)
	}

	return Of(clusterID, nodes, replicas)
}

// ToAssignments returns the partition assignments of the argument topic, sorted by partition.
// The leader is listed first, followed by the other replicas in preference order. Folders are
// included when every replica of the partition has one.
func ToAssignments(info *ClusterInfo, topic string) []admin.PartitionAssignment {
	byPartition := map[int][]Replica{}
	for _, replica := range info.ReplicasOfTopic(topic) {
		byPartition[replica.Partition] = append(byPartition[replica.Partition], replica)
	}

	partitionIDs := make([]int, 0, len(byPartition))
	for id := range byPartition {
		partitionIDs = append(partitionIDs, id)
	}
	sort.Ints(partitionIDs)

	assignments := []admin.PartitionAssignment{}

	for _, id := range partitionIDs {
		ordered := leaderFirst(byPartition[id])

		assignment := admin.PartitionAssignment{ID: id}
		logDirs := []string{}

		for _, replica := range ordered {
			assignment.Replicas = append(assignment.Replicas, replica.NodeID)
			if replica.Path != "" {
				logDirs = append(logDirs, replica.Path)
			}
		}
		if len(logDirs) == len(ordered) {
			assignment.LogDirs = logDirs
		}

		assignments = append(assignments, assignment)
	}

	return assignments
}

// Reassignment returns the document that moves the partitions of source whose placement or
// leader differs in target. Partitions whose followers only changed order are left out.
func Reassignment(source *ClusterInfo, target *ClusterInfo) admin.Reassignment {
	changed := map[TopicPartition]struct{}{}
	for _, tp := range FindNonFulfilledAllocation(source, target) {
		changed[tp] = struct{}{}
	}
	for _, tp := range FindLeaderChanges(source, target) {
		changed[tp] = struct{}{}
	}

	assignments := map[string][]admin.PartitionAssignment{}

	for _, topic := range MovedTopics(source, target) {
		updates := admin.AssignmentsToUpdate(
			ToAssignments(source, topic),
			ToAssignments(target, topic),
		)
		for _, assignment := range updates {
			tp := TopicPartition{Topic: topic, Partition: assignment.ID}
			if _, ok := changed[tp]; ok {
				assignments[topic] = append(assignments[topic], assignment)
			}
		}
	}

	return admin.NewReassignment(assignments)
}

// MovedTopics returns the sorted names of the topics with at least one partition whose
// placement or leader differs between source and target.
func MovedTopics(source *ClusterInfo, target *ClusterInfo) []string {
	topicsMap := map[string]struct{}{}
	for _, tp := range FindNonFulfilledAllocation(source, target) {
		topicsMap[tp.Topic] = struct{}{}
	}
	for _, tp := range FindLeaderChanges(source, target) {
		topicsMap[tp.Topic] = struct{}{}
	}

	topics := make([]string, 0, len(topicsMap))
	for topic := range topicsMap {
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	return topics
}

func leaderFirst(replicas []Replica) []Replica {
	ordered := make([]Replica, 0, len(replicas))
	for _, replica := range replicas {
		if replica.Leader {
			ordered = append(ordered, replica)
		}
	}
	for _, replica := range replicas {
		if !replica.Leader {
			ordered = append(ordered, replica)
		}
	}
	return ordered
}
