package cluster

import (
	"errors"
	"fmt"
	"iter"
	"sort"
	"sync"

	"github.com/hashicorp/go-multierror"
)

// ClusterInfo is an immutable snapshot of the cluster topology: the nodes in the cluster
// and the placement of every replica on those nodes. Instances are safe to share between
// goroutines; "modifications" always produce a new ClusterInfo.
type ClusterInfo struct {
	clusterID string
	nodes     []Node
	nodesByID map[int]int
	replicas  []Replica

	indexOnce   sync.Once
	byPartition map[TopicPartition][]Replica
	byNode      map[int][]Replica
	byTopic     map[string][]Replica
	partitions  []TopicPartition
	topicNames  []string
}

var empty = &ClusterInfo{nodesByID: map[int]int{}}

// Empty returns a ClusterInfo with no nodes and no topics. It's used to represent the
// absence of cluster information.
func Empty() *ClusterInfo {
	return empty
}

// Of creates a ClusterInfo from the argument nodes and replicas after checking that they're
// consistent with each other. The order of the replicas is preserved, and replicas of the
// same partition are expected to be listed in preference order (i.e., preferred leader first).
func Of(clusterID string, nodes []Node, replicas []Replica) (*ClusterInfo, error) {
	info := &ClusterInfo{
		clusterID: clusterID,
		nodes:     make([]Node, 0, len(nodes)),
		nodesByID: make(map[int]int, len(nodes)),
		replicas:  make([]Replica, len(replicas)),
	}
	copy(info.replicas, replicas)

	for _, node := range nodes {
		if _, ok := info.nodesByID[node.ID]; ok {
			return nil, fmt.Errorf("Node %d is listed more than once", node.ID)
		}
		info.nodesByID[node.ID] = -1
		info.nodes = append(info.nodes, node.Copy())
	}
	sort.Slice(info.nodes, func(a, b int) bool {
		return info.nodes[a].ID < info.nodes[b].ID
	})
	for n, node := range info.nodes {
		info.nodesByID[node.ID] = n
	}

	if err := info.check(); err != nil {
		return nil, err
	}
	return info, nil
}

func (c *ClusterInfo) check() error {
	var err error

	partitionNodes := map[TopicPartition]map[int]struct{}{}
	leaders := map[TopicPartition]int{}

	for _, replica := range c.replicas {
		node, ok := c.node(replica.NodeID)
		if !ok {
			err = multierror.Append(
				err,
				fmt.Errorf("Replica %s is placed on unknown node %d", replica, replica.NodeID),
			)
			continue
		}
		if len(node.Folders) > 0 && !node.HasFolder(replica.Path) {
			err = multierror.Append(
				err,
				fmt.Errorf(
					"Replica %s uses folder %q which node %d does not expose",
					replica,
					replica.Path,
					node.ID,
				),
			)
		}

		nodesMap, ok := partitionNodes[replica.TopicPartition]
		if !ok {
			nodesMap = map[int]struct{}{}
			partitionNodes[replica.TopicPartition] = nodesMap
		}
		if _, ok := nodesMap[replica.NodeID]; ok {
			err = multierror.Append(
				err,
				fmt.Errorf(
					"Partition %s has more than one replica on node %d",
					replica.TopicPartition,
					replica.NodeID,
				),
			)
		}
		nodesMap[replica.NodeID] = struct{}{}

		if replica.Leader {
			leaders[replica.TopicPartition]++
		}
	}

	for tp := range partitionNodes {
		if leaders[tp] != 1 {
			err = multierror.Append(
				err,
				fmt.Errorf("Partition %s has %d leaders, expected exactly one", tp, leaders[tp]),
			)
		}
	}

	return err
}

func (c *ClusterInfo) index() {
	c.indexOnce.Do(func() {
		c.byPartition = map[TopicPartition][]Replica{}
		c.byNode = map[int][]Replica{}
		c.byTopic = map[string][]Replica{}

		for _, replica := range c.replicas {
			if _, ok := c.byPartition[replica.TopicPartition]; !ok {
				c.partitions = append(c.partitions, replica.TopicPartition)
			}
			if _, ok := c.byTopic[replica.Topic]; !ok {
				c.topicNames = append(c.topicNames, replica.Topic)
			}
			c.byPartition[replica.TopicPartition] = append(
				c.byPartition[replica.TopicPartition],
				replica,
			)
			c.byNode[replica.NodeID] = append(c.byNode[replica.NodeID], replica)
			c.byTopic[replica.Topic] = append(c.byTopic[replica.Topic], replica)
		}

		SortTopicPartitions(c.partitions)
		sort.Strings(c.topicNames)
	})
}

// ClusterID returns the ID of the cluster this snapshot was taken from.
func (c *ClusterInfo) ClusterID() string {
	return c.clusterID
}

// IsEmpty returns whether the snapshot has neither nodes nor replicas.
func (c *ClusterInfo) IsEmpty() bool {
	return len(c.nodes) == 0 && len(c.replicas) == 0
}

// Nodes returns a copy of the nodes in the cluster, sorted by ID.
func (c *ClusterInfo) Nodes() []Node {
	nodes := make([]Node, 0, len(c.nodes))
	for _, node := range c.nodes {
		nodes = append(nodes, node.Copy())
	}
	return nodes
}

// NodeIDs returns the sorted IDs of the nodes in the cluster.
func (c *ClusterInfo) NodeIDs() []int {
	ids := make([]int, 0, len(c.nodes))
	for _, node := range c.nodes {
		ids = append(ids, node.ID)
	}
	return ids
}

// Node returns the node with the argument ID.
func (c *ClusterInfo) Node(id int) (Node, bool) {
	node, ok := c.node(id)
	if !ok {
		return Node{}, false
	}
	return node.Copy(), true
}

func (c *ClusterInfo) node(id int) (*Node, bool) {
	n, ok := c.nodesByID[id]
	if !ok || n < 0 {
		return nil, false
	}
	return &c.nodes[n], true
}

// TopicNames returns the sorted names of all topics that have at least one replica.
func (c *ClusterInfo) TopicNames() []string {
	c.index()
	names := make([]string, len(c.topicNames))
	copy(names, c.topicNames)
	return names
}

// TopicPartitions returns all of the topic partitions in the cluster, sorted.
func (c *ClusterInfo) TopicPartitions() []TopicPartition {
	c.index()
	tps := make([]TopicPartition, len(c.partitions))
	copy(tps, c.partitions)
	return tps
}

// Replicas returns a copy of all of the replicas in the cluster.
func (c *ClusterInfo) Replicas() []Replica {
	replicas := make([]Replica, len(c.replicas))
	copy(replicas, c.replicas)
	return replicas
}

// ReplicaStream returns a lazy sequence over all of the replicas in the cluster.
func (c *ClusterInfo) ReplicaStream() iter.Seq[Replica] {
	return func(yield func(Replica) bool) {
		for _, replica := range c.replicas {
			if !yield(replica) {
				return
			}
		}
	}
}

// NumReplicas returns the total number of replicas in the cluster.
func (c *ClusterInfo) NumReplicas() int {
	return len(c.replicas)
}

// ReplicasOf returns the replicas of the argument partition in preference order.
func (c *ClusterInfo) ReplicasOf(tp TopicPartition) []Replica {
	c.index()
	return copyReplicas(c.byPartition[tp])
}

// ReplicasOn returns the replicas hosted by the argument node.
func (c *ClusterInfo) ReplicasOn(nodeID int) []Replica {
	c.index()
	return copyReplicas(c.byNode[nodeID])
}

// ReplicasOfTopic returns all of the replicas of the argument topic.
func (c *ClusterInfo) ReplicasOfTopic(topic string) []Replica {
	c.index()
	return copyReplicas(c.byTopic[topic])
}

// ReplicationFactor returns the number of replicas of the argument partition, or 0 if the
// partition isn't in the cluster.
func (c *ClusterInfo) ReplicationFactor(tp TopicPartition) int {
	c.index()
	return len(c.byPartition[tp])
}

// Leader returns the leader replica of the argument partition.
func (c *ClusterInfo) Leader(tp TopicPartition) (Replica, bool) {
	c.index()
	for _, replica := range c.byPartition[tp] {
		if replica.Leader {
			return replica, true
		}
	}
	return Replica{}, false
}

// WithReplicas returns a new ClusterInfo that shares this snapshot's nodes but uses the
// argument replica placement. The result is validated like the output of Of.
func (c *ClusterInfo) WithReplicas(replicas []Replica) (*ClusterInfo, error) {
	if c == nil {
		return nil, errors.New("Cannot derive replicas from a nil ClusterInfo")
	}

	info := &ClusterInfo{
		clusterID: c.clusterID,
		nodes:     c.nodes,
		nodesByID: c.nodesByID,
		replicas:  make([]Replica, len(replicas)),
	}
	copy(info.replicas, replicas)

	if err := info.check(); err != nil {
		return nil, err
	}
	return info, nil
}

func copyReplicas(replicas []Replica) []Replica {
	if len(replicas) == 0 {
		return nil
	}
	copied := make([]Replica, len(replicas))
	copy(copied, replicas)
	return copied
}
