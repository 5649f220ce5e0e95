// Package metrics contains the frozen snapshot of runtime measurements that cost functions
// use to score an allocation.
package metrics

import (
	"sort"

	"github.com/segmentio/topicbalance/pkg/cluster"
)

const (
	// SizeMetric is the partition metric holding the partition size in bytes.
	SizeMetric = "size"

	// CapacityMetric is the node metric holding the usable disk space of a node in bytes.
	CapacityMetric = "capacity"
)

// ClusterBean is an immutable bundle of named per-node and per-partition measurements. The
// engine treats it as opaque and only passes it to cost functions.
type ClusterBean struct {
	nodes      map[int]map[string]float64
	partitions map[cluster.TopicPartition]map[string]float64
}

// Empty returns a bean without any measurements.
func Empty() ClusterBean {
	return ClusterBean{}
}

// New creates a bean from the argument measurements. The maps are copied, so they can be
// reused by the caller.
func New(
	nodes map[int]map[string]float64,
	partitions map[cluster.TopicPartition]map[string]float64,
) ClusterBean {
	bean := ClusterBean{
		nodes:      make(map[int]map[string]float64, len(nodes)),
		partitions: make(map[cluster.TopicPartition]map[string]float64, len(partitions)),
	}

	for id, values := range nodes {
		bean.nodes[id] = copyValues(values)
	}
	for tp, values := range partitions {
		bean.partitions[tp] = copyValues(values)
	}

	return bean
}

// IsEmpty returns whether the bean has no measurements at all.
func (b ClusterBean) IsEmpty() bool {
	return len(b.nodes) == 0 && len(b.partitions) == 0
}

// NodeMetric returns the named measurement of a node.
func (b ClusterBean) NodeMetric(nodeID int, name string) (float64, bool) {
	value, ok := b.nodes[nodeID][name]
	return value, ok
}

// PartitionMetric returns the named measurement of a partition.
func (b ClusterBean) PartitionMetric(tp cluster.TopicPartition, name string) (float64, bool) {
	value, ok := b.partitions[tp][name]
	return value, ok
}

// PartitionSize returns the size of a partition in bytes, or 0 if it's unknown.
func (b ClusterBean) PartitionSize(tp cluster.TopicPartition) float64 {
	value, _ := b.PartitionMetric(tp, SizeMetric)
	return value
}

// NodeIDs returns the sorted IDs of the nodes that have measurements.
func (b ClusterBean) NodeIDs() []int {
	ids := make([]int, 0, len(b.nodes))
	for id := range b.nodes {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// TopicPartitions returns the sorted partitions that have measurements.
func (b ClusterBean) TopicPartitions() []cluster.TopicPartition {
	tps := make([]cluster.TopicPartition, 0, len(b.partitions))
	for tp := range b.partitions {
		tps = append(tps, tp)
	}
	cluster.SortTopicPartitions(tps)
	return tps
}

// NodeMetrics returns a copy of all of the measurements of a node.
func (b ClusterBean) NodeMetrics(nodeID int) map[string]float64 {
	return copyValues(b.nodes[nodeID])
}

// PartitionMetrics returns a copy of all of the measurements of a partition.
func (b ClusterBean) PartitionMetrics(tp cluster.TopicPartition) map[string]float64 {
	return copyValues(b.partitions[tp])
}

func copyValues(values map[string]float64) map[string]float64 {
	copied := make(map[string]float64, len(values))
	for name, value := range values {
		copied[name] = value
	}
	return copied
}
