package metrics

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/segmentio/topicbalance/pkg/cluster"
	"github.com/segmentio/topicbalance/pkg/util"
)

// Snapshot is the file representation of a ClusterBean.
type Snapshot struct {
	Nodes      []NodeSnapshot      `json:"nodes"`
	Partitions []PartitionSnapshot `json:"partitions"`
}

// NodeSnapshot holds the measurements of a single node.
type NodeSnapshot struct {
	ID      int                `json:"id"`
	Metrics map[string]float64 `json:"metrics"`
}

// PartitionSnapshot holds the measurements of a single partition.
type PartitionSnapshot struct {
	Topic     string             `json:"topic"`
	Partition int                `json:"partition"`
	Metrics   map[string]float64 `json:"metrics"`
}

// LoadFile loads a ClusterBean from a path to a YAML snapshot.
func LoadFile(path string) (ClusterBean, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return ClusterBean{}, err
	}

	bean, err := LoadBytes(contents)
	if err != nil {
		return ClusterBean{}, fmt.Errorf("Error loading metrics from %s: %+v", path, err)
	}
	return bean, nil
}

// LoadBytes loads a ClusterBean from YAML bytes. Unknown fields are rejected.
func LoadBytes(contents []byte) (ClusterBean, error) {
	snapshot := Snapshot{}
	if err := util.UnmarshalYAMLStrict(contents, &snapshot); err != nil {
		return ClusterBean{}, err
	}
	if err := snapshot.Validate(); err != nil {
		return ClusterBean{}, err
	}
	return snapshot.ToBean(), nil
}

// Validate checks that every node and partition is listed at most once and that sizes
// aren't negative.
func (s Snapshot) Validate() error {
	var err error

	nodeIDs := map[int]struct{}{}
	for _, node := range s.Nodes {
		if node.ID < 0 {
			err = multierror.Append(err, fmt.Errorf("Node ID %d is negative", node.ID))
		}
		if _, ok := nodeIDs[node.ID]; ok {
			err = multierror.Append(err, fmt.Errorf("Node %d is listed more than once", node.ID))
		}
		nodeIDs[node.ID] = struct{}{}
	}

	partitions := map[cluster.TopicPartition]struct{}{}
	for _, partition := range s.Partitions {
		tp := cluster.TopicPartition{Topic: partition.Topic, Partition: partition.Partition}

		if partition.Topic == "" {
			err = multierror.Append(err, fmt.Errorf("Partition %d has no topic", partition.Partition))
		}
		if _, ok := partitions[tp]; ok {
			err = multierror.Append(err, fmt.Errorf("Partition %s is listed more than once", tp))
		}
		if size, ok := partition.Metrics[SizeMetric]; ok && size < 0 {
			err = multierror.Append(err, fmt.Errorf("Partition %s has a negative size", tp))
		}
		partitions[tp] = struct{}{}
	}

	return err
}

// ToBean converts the snapshot into an immutable ClusterBean.
func (s Snapshot) ToBean() ClusterBean {
	nodes := map[int]map[string]float64{}
	for _, node := range s.Nodes {
		nodes[node.ID] = node.Metrics
	}

	partitions := map[cluster.TopicPartition]map[string]float64{}
	for _, partition := range s.Partitions {
		tp := cluster.TopicPartition{Topic: partition.Topic, Partition: partition.Partition}
		partitions[tp] = partition.Metrics
	}

	return New(nodes, partitions)
}
