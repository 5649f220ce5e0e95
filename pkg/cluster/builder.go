package cluster

import (
	"errors"
	"fmt"
	"hash/fnv"
	"sort"
)

// Builder assembles a ClusterInfo step by step. It's mostly used to create synthetic
// clusters, e.g. for tests and simulations. The first error encountered sticks and is
// returned from Build; subsequent calls are no-ops.
type Builder struct {
	clusterID string
	nodes     map[int]*Node
	topics    map[string]struct{}
	replicas  []Replica
	err       error
}

// NewBuilder returns a new, empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		nodes:  map[int]*Node{},
		topics: map[string]struct{}{},
	}
}

// ClusterID sets the ID of the resulting cluster.
func (b *Builder) ClusterID(id string) *Builder {
	b.clusterID = id
	return b
}

// AddNode adds nodes with the argument IDs. Adding an ID that already exists is a no-op.
func (b *Builder) AddNode(ids ...int) *Builder {
	if b.err != nil {
		return b
	}

	for _, id := range ids {
		if id < 0 {
			b.err = fmt.Errorf("Node ID must be non-negative, got %d", id)
			return b
		}
		if _, ok := b.nodes[id]; !ok {
			b.nodes[id] = &Node{ID: id}
		}
	}
	return b
}

// AddFolders adds data folders to existing nodes.
func (b *Builder) AddFolders(folders map[int][]string) *Builder {
	if b.err != nil {
		return b
	}

	nodeIDs := []int{}
	for id := range folders {
		nodeIDs = append(nodeIDs, id)
	}
	sort.Ints(nodeIDs)

	for _, id := range nodeIDs {
		node, ok := b.nodes[id]
		if !ok {
			b.err = fmt.Errorf("Cannot add folders to unknown node %d", id)
			return b
		}
		if len(b.replicas) > 0 {
			b.err = errors.New("Folders must be added before any topic")
			return b
		}

		paths := append([]string{}, folders[id]...)
		sort.Strings(paths)
		for _, path := range paths {
			if !node.HasFolder(path) {
				node.Folders = append(node.Folders, path)
			}
		}
	}
	return b
}

// AddTopic adds a topic with the argument number of partitions and replication factor.
// Replicas are placed deterministically: partition p of the topic goes to replicationFactor
// consecutive nodes (in ID order), starting from an offset derived from the topic name.
func (b *Builder) AddTopic(name string, partitions int, replicationFactor int) *Builder {
	if b.err != nil {
		return b
	}

	switch {
	case name == "":
		b.err = errors.New("Topic name must be set")
	case partitions <= 0:
		b.err = fmt.Errorf("Topic %s must have a positive number of partitions", name)
	case replicationFactor <= 0:
		b.err = fmt.Errorf("Topic %s must have a positive replication factor", name)
	case len(b.nodes) == 0:
		b.err = fmt.Errorf("Cannot add topic %s to a cluster without nodes", name)
	case replicationFactor > len(b.nodes):
		b.err = fmt.Errorf(
			"Replication factor of topic %s (%d) is larger than the number of nodes (%d)",
			name,
			replicationFactor,
			len(b.nodes),
		)
	}
	if b.err != nil {
		return b
	}

	if _, ok := b.topics[name]; ok {
		b.err = fmt.Errorf("Topic %s was already added", name)
		return b
	}
	b.topics[name] = struct{}{}

	nodeIDs := b.sortedNodeIDs()
	offset := topicOffset(name)

	for p := 0; p < partitions; p++ {
		start := (offset + p) % len(nodeIDs)

		for r := 0; r < replicationFactor; r++ {
			node := b.nodes[nodeIDs[(start+r)%len(nodeIDs)]]

			var path string
			if len(node.Folders) > 0 {
				path = node.Folders[(p+r)%len(node.Folders)]
			}

			b.replicas = append(
				b.replicas,
				Replica{
					TopicPartition: TopicPartition{Topic: name, Partition: p},
					NodeID:         node.ID,
					Path:           path,
					Leader:         r == 0,
				},
			)
		}
	}

	return b
}

// Build returns the resulting ClusterInfo or the first error hit while building it.
func (b *Builder) Build() (*ClusterInfo, error) {
	if b.err != nil {
		return nil, b.err
	}

	nodes := []Node{}
	for _, id := range b.sortedNodeIDs() {
		nodes = append(nodes, *b.nodes[id])
	}

	return Of(b.clusterID, nodes, b.replicas)
}

func (b *Builder) sortedNodeIDs() []int {
	ids := make([]int, 0, len(b.nodes))
	for id := range b.nodes {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func topicOffset(name string) int {
	hash := fnv.New32a()
	hash.Write([]byte(name))
	return int(hash.Sum32() & 0x7fffffff)
}
