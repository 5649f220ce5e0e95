package cost

import (
	"fmt"

	"github.com/segmentio/topicbalance/pkg/cluster"
	"github.com/segmentio/topicbalance/pkg/metrics"
)

// ReplicaNumberCost scores how evenly replicas are spread over the nodes of the cluster. Nodes
// without any replicas count as well.
type ReplicaNumberCost struct{}

var _ HasClusterCost = ReplicaNumberCost{}

// ClusterCost implements HasClusterCost.
func (ReplicaNumberCost) ClusterCost(info *cluster.ClusterInfo, _ metrics.ClusterBean) ClusterCost {
	return countCost("replicas", info, func(replica cluster.Replica) bool { return true })
}

// ReplicaLeaderCost scores how evenly partition leaders are spread over the nodes of the
// cluster.
type ReplicaLeaderCost struct{}

var _ HasClusterCost = ReplicaLeaderCost{}

// ClusterCost implements HasClusterCost.
func (ReplicaLeaderCost) ClusterCost(info *cluster.ClusterInfo, _ metrics.ClusterBean) ClusterCost {
	return countCost("leaders", info, func(replica cluster.Replica) bool { return replica.Leader })
}

func countCost(
	name string,
	info *cluster.ClusterInfo,
	include func(cluster.Replica) bool,
) ClusterCost {
	nodeIDs := info.NodeIDs()

	countsMap := make(map[int]float64, len(nodeIDs))
	for _, nodeID := range nodeIDs {
		countsMap[nodeID] = 0
	}
	for replica := range info.ReplicaStream() {
		if include(replica) {
			countsMap[replica.NodeID]++
		}
	}

	counts := make([]float64, 0, len(nodeIDs))
	for _, nodeID := range nodeIDs {
		counts = append(counts, countsMap[nodeID])
	}

	value := coefficientOfVariation(counts)

	return NewClusterCost(
		value,
		func() string {
			minCount, maxCount := minMax(counts)
			return fmt.Sprintf(
				"%s per node: min=%.0f max=%.0f cv=%.4f",
				name,
				minCount,
				maxCount,
				value,
			)
		},
	)
}
