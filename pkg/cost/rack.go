package cost

import (
	"fmt"

	"github.com/segmentio/topicbalance/pkg/cluster"
	"github.com/segmentio/topicbalance/pkg/metrics"
)

// RackSpreadCost is the fraction of partitions that place two replicas in the same rack while
// some other rack is unused by them. Nodes without a rack are treated as one rack.
type RackSpreadCost struct{}

var _ HasClusterCost = RackSpreadCost{}

// ClusterCost implements HasClusterCost.
func (RackSpreadCost) ClusterCost(info *cluster.ClusterInfo, _ metrics.ClusterBean) ClusterCost {
	nodeRacks := map[int]string{}
	racks := map[string]struct{}{}
	for _, node := range info.Nodes() {
		nodeRacks[node.ID] = node.Rack
		racks[node.Rack] = struct{}{}
	}

	partitions := info.TopicPartitions()
	var crowded int

	for _, tp := range partitions {
		replicas := info.ReplicasOf(tp)

		partitionRacks := map[string]struct{}{}
		for _, replica := range replicas {
			partitionRacks[nodeRacks[replica.NodeID]] = struct{}{}
		}

		expected := len(replicas)
		if len(racks) < expected {
			expected = len(racks)
		}
		if len(partitionRacks) < expected {
			crowded++
		}
	}

	var value float64
	if len(partitions) > 0 {
		value = float64(crowded) / float64(len(partitions))
	}

	return NewClusterCost(
		value,
		func() string {
			return fmt.Sprintf(
				"partitions with replicas sharing a rack: %d/%d across %d racks",
				crowded,
				len(partitions),
				len(racks),
			)
		},
	)
}
