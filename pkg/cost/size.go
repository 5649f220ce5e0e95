package cost

import (
	"fmt"

	"github.com/segmentio/topicbalance/pkg/cluster"
	"github.com/segmentio/topicbalance/pkg/metrics"
	"github.com/segmentio/topicbalance/pkg/util"
)

// ReplicaSizeCost scores the disk usage skew between nodes, using the size metric of each
// partition. If every node declares its capacity, the skew is computed on the fraction of the
// capacity that is used instead of on raw bytes.
type ReplicaSizeCost struct{}

var _ HasClusterCost = ReplicaSizeCost{}

// ClusterCost implements HasClusterCost.
func (ReplicaSizeCost) ClusterCost(info *cluster.ClusterInfo, bean metrics.ClusterBean) ClusterCost {
	nodeIDs := info.NodeIDs()

	bytesMap := make(map[int]float64, len(nodeIDs))
	for replica := range info.ReplicaStream() {
		bytesMap[replica.NodeID] += bean.PartitionSize(replica.TopicPartition)
	}

	useCapacity := len(nodeIDs) > 0
	for _, nodeID := range nodeIDs {
		capacity, ok := bean.NodeMetric(nodeID, metrics.CapacityMetric)
		if !ok || capacity <= 0 {
			useCapacity = false
			break
		}
	}

	loads := make([]float64, 0, len(nodeIDs))
	for _, nodeID := range nodeIDs {
		load := bytesMap[nodeID]
		if useCapacity {
			capacity, _ := bean.NodeMetric(nodeID, metrics.CapacityMetric)
			load = load / capacity
		}
		loads = append(loads, load)
	}

	value := coefficientOfVariation(loads)

	return NewClusterCost(
		value,
		func() string {
			minLoad, maxLoad := minMax(loads)
			if useCapacity {
				return fmt.Sprintf(
					"disk use per node: min=%.2f%% max=%.2f%% cv=%.4f",
					minLoad*100,
					maxLoad*100,
					value,
				)
			}
			return fmt.Sprintf(
				"bytes per node: min=%s max=%s cv=%.4f",
				util.PrettyBytes(int64(minLoad)),
				util.PrettyBytes(int64(maxLoad)),
				value,
			)
		},
	)
}

// FolderSizeCost scores the disk usage skew between all of the data folders in the
// cluster. Nodes that don't declare folders count as a single folder.
type FolderSizeCost struct{}

var _ HasClusterCost = FolderSizeCost{}

type folderKey struct {
	nodeID int
	path   string
}

// ClusterCost implements HasClusterCost.
func (FolderSizeCost) ClusterCost(info *cluster.ClusterInfo, bean metrics.ClusterBean) ClusterCost {
	keys := []folderKey{}
	for _, node := range info.Nodes() {
		if len(node.Folders) == 0 {
			keys = append(keys, folderKey{nodeID: node.ID})
			continue
		}
		for _, folder := range node.Folders {
			keys = append(keys, folderKey{nodeID: node.ID, path: folder})
		}
	}

	bytesMap := make(map[folderKey]float64, len(keys))
	for replica := range info.ReplicaStream() {
		key := folderKey{nodeID: replica.NodeID, path: replica.Path}
		bytesMap[key] += bean.PartitionSize(replica.TopicPartition)
	}

	loads := make([]float64, 0, len(keys))
	for _, key := range keys {
		loads = append(loads, bytesMap[key])
	}

	value := coefficientOfVariation(loads)

	return NewClusterCost(
		value,
		func() string {
			minLoad, maxLoad := minMax(loads)
			return fmt.Sprintf(
				"bytes per folder: min=%s max=%s cv=%.4f",
				util.PrettyBytes(int64(minLoad)),
				util.PrettyBytes(int64(maxLoad)),
				value,
			)
		},
	)
}
