package cluster

import (
	"fmt"
	"sort"
)

// Node represents a broker in the cluster along with the data folders (log dirs) that
// it exposes for partition storage.
type Node struct {
	ID      int      `json:"id"`
	Host    string   `json:"host,omitempty"`
	Port    int      `json:"port,omitempty"`
	Rack    string   `json:"rack,omitempty"`
	Folders []string `json:"folders,omitempty"`
}

// TopicPartition identifies a single partition in a topic. It's the unit of independent
// assignment.
type TopicPartition struct {
	Topic     string `json:"topic"`
	Partition int    `json:"partition"`
}

// Replica is a single copy of a topic partition, placed on a node and a data folder.
type Replica struct {
	TopicPartition

	NodeID int    `json:"nodeID"`
	Path   string `json:"path,omitempty"`
	Leader bool   `json:"leader"`
}

// String returns a compact representation of the topic partition, e.g. "my-topic-3".
func (tp TopicPartition) String() string {
	return fmt.Sprintf("%s-%d", tp.Topic, tp.Partition)
}

// Less orders topic partitions by topic name, then by partition index.
func (tp TopicPartition) Less(other TopicPartition) bool {
	return tp.Topic < other.Topic ||
		(tp.Topic == other.Topic && tp.Partition < other.Partition)
}

// String returns a compact representation of the replica.
func (r Replica) String() string {
	role := "follower"
	if r.Leader {
		role = "leader"
	}
	return fmt.Sprintf("%s@%d:%s (%s)", r.TopicPartition, r.NodeID, r.Path, role)
}

// HasFolder returns whether the node exposes the argument data folder.
func (n Node) HasFolder(path string) bool {
	for _, folder := range n.Folders {
		if folder == path {
			return true
		}
	}
	return false
}

// Copy returns a deep copy of the node.
func (n Node) Copy() Node {
	copied := n
	if n.Folders != nil {
		copied.Folders = make([]string, len(n.Folders))
		copy(copied.Folders, n.Folders)
	}
	return copied
}

// SortTopicPartitions sorts the argument slice in place.
func SortTopicPartitions(tps []TopicPartition) {
	sort.Slice(tps, func(a, b int) bool {
		return tps[a].Less(tps[b])
	})
}
