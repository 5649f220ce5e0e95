package balancer

import (
	"math/rand"

	"github.com/segmentio/topicbalance/pkg/balancer/pickers"
	"github.com/segmentio/topicbalance/pkg/cluster"
)

const (
	// Number of random partitions tried before a kind of move is considered infeasible
	maxMoveAttempts = 8

	// Share of the non-leader moves that change the folder of a replica on the same node
	folderMoveShare = 0.25
)

type moveKind int

const (
	relocateMove moveKind = iota
	folderMove
	leaderMove
)

// moveGenerator applies random legal moves to a copy of the replicas of an allocation. The
// replica slice keeps the order of the source allocation, so the positions of the replicas of
// each partition never change.
type moveGenerator struct {
	constraints         Constraints
	picker              pickers.Picker
	random              *rand.Rand
	leaderTransferRatio float64
	minStep             int
	maxStep             int

	folders      map[int][]string
	allowedNodes []int
	partitions   []cluster.TopicPartition
	positions    map[cluster.TopicPartition][]int
}

func newMoveGenerator(
	info *cluster.ClusterInfo,
	constraints Constraints,
	params searchParams,
	random *rand.Rand,
) *moveGenerator {
	generator := &moveGenerator{
		constraints:         constraints,
		picker:              params.picker,
		random:              random,
		leaderTransferRatio: params.leaderTransferRatio,
		minStep:             params.minStep,
		maxStep:             params.maxStep,
		folders:             map[int][]string{},
		positions:           map[cluster.TopicPartition][]int{},
	}

	for _, node := range info.Nodes() {
		generator.folders[node.ID] = node.Folders
		if constraints.BrokerAllowed(node.ID) {
			generator.allowedNodes = append(generator.allowedNodes, node.ID)
		}
	}

	r := 0
	for replica := range info.ReplicaStream() {
		generator.positions[replica.TopicPartition] = append(
			generator.positions[replica.TopicPartition],
			r,
		)
		r++
	}

	for _, tp := range info.TopicPartitions() {
		if constraints.TopicAllowed(tp.Topic) {
			generator.partitions = append(generator.partitions, tp)
		}
	}

	return generator
}

// exhausted returns whether no move can ever be legal.
func (g *moveGenerator) exhausted() bool {
	return len(g.partitions) == 0 || len(g.allowedNodes) == 0
}

// candidate returns a copy of the argument replicas with between minStep and maxStep moves
// applied. It returns false if no move could be applied.
func (g *moveGenerator) candidate(replicas []cluster.Replica) ([]cluster.Replica, bool) {
	candidate := make([]cluster.Replica, len(replicas))
	copy(candidate, replicas)

	counts := map[int]int{}
	for _, replica := range candidate {
		counts[replica.NodeID]++
	}

	steps := g.minStep + g.random.Intn(g.maxStep-g.minStep+1)
	applied := 0

	for s := 0; s < steps; s++ {
		if g.step(candidate, counts) {
			applied++
		}
	}

	return candidate, applied > 0
}

func (g *moveGenerator) step(replicas []cluster.Replica, counts map[int]int) bool {
	var kinds []moveKind

	roll := g.random.Float64()
	switch {
	case roll < g.leaderTransferRatio:
		kinds = []moveKind{leaderMove, relocateMove, folderMove}
	case roll < g.leaderTransferRatio+(1-g.leaderTransferRatio)*folderMoveShare:
		kinds = []moveKind{folderMove, relocateMove, leaderMove}
	default:
		kinds = []moveKind{relocateMove, folderMove, leaderMove}
	}

	for _, kind := range kinds {
		for attempt := 0; attempt < maxMoveAttempts; attempt++ {
			tp := g.partitions[g.random.Intn(len(g.partitions))]

			var applied bool
			switch kind {
			case relocateMove:
				applied = g.relocate(replicas, counts, tp)
			case folderMove:
				applied = g.moveFolder(replicas, tp)
			case leaderMove:
				applied = g.transferLeader(replicas, tp)
			}
			if applied {
				return true
			}
		}
	}

	return false
}

// relocate moves one replica of the partition to a node that doesn't host the partition yet.
// Leadership moves along with the replica.
func (g *moveGenerator) relocate(
	replicas []cluster.Replica,
	counts map[int]int,
	tp cluster.TopicPartition,
) bool {
	positions := g.positions[tp]

	hosting := map[int]struct{}{}
	movable := []int{}
	for _, r := range positions {
		hosting[replicas[r].NodeID] = struct{}{}
		if g.constraints.BrokerAllowed(replicas[r].NodeID) {
			movable = append(movable, r)
		}
	}
	if len(movable) == 0 {
		return false
	}

	choices := []int{}
	for _, nodeID := range g.allowedNodes {
		if _, ok := hosting[nodeID]; !ok {
			choices = append(choices, nodeID)
		}
	}
	if len(choices) == 0 {
		return false
	}

	r := movable[g.random.Intn(len(movable))]
	destination, err := g.picker.PickNode(replicas[r], choices, counts, g.random)
	if err != nil || !g.constraints.IsMoveLegal(replicas[r], destination) {
		return false
	}

	counts[replicas[r].NodeID]--
	counts[destination]++

	replicas[r].NodeID = destination
	replicas[r].Path = g.pickFolder(destination, "")
	return true
}

// moveFolder moves one replica of the partition to another folder of the same node.
func (g *moveGenerator) moveFolder(replicas []cluster.Replica, tp cluster.TopicPartition) bool {
	movable := []int{}
	for _, r := range g.positions[tp] {
		nodeID := replicas[r].NodeID
		if len(g.folders[nodeID]) > 1 && g.constraints.IsMoveLegal(replicas[r], nodeID) {
			movable = append(movable, r)
		}
	}
	if len(movable) == 0 {
		return false
	}

	r := movable[g.random.Intn(len(movable))]
	replicas[r].Path = g.pickFolder(replicas[r].NodeID, replicas[r].Path)
	return true
}

// transferLeader makes another replica of the partition its leader.
func (g *moveGenerator) transferLeader(replicas []cluster.Replica, tp cluster.TopicPartition) bool {
	positions := g.positions[tp]
	if len(positions) < 2 {
		return false
	}

	leader := -1
	for _, r := range positions {
		if replicas[r].Leader {
			leader = r
		}
	}
	if leader == -1 {
		return false
	}

	followers := []int{}
	for _, r := range positions {
		if r != leader && g.constraints.IsLeaderTransferLegal(replicas[leader], replicas[r]) {
			followers = append(followers, r)
		}
	}
	if len(followers) == 0 {
		return false
	}

	follower := followers[g.random.Intn(len(followers))]
	replicas[leader].Leader = false
	replicas[follower].Leader = true
	return true
}

// pickFolder returns a random folder of the node other than exclude, or "" if the node
// doesn't declare folders.
func (g *moveGenerator) pickFolder(nodeID int, exclude string) string {
	choices := []string{}
	for _, folder := range g.folders[nodeID] {
		if folder != exclude {
			choices = append(choices, folder)
		}
	}
	if len(choices) == 0 {
		return exclude
	}
	return choices[g.random.Intn(len(choices))]
}
