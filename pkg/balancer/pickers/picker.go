// Package pickers contains the strategies used to choose the destination node of a replica
// that the search moves.
package pickers

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/segmentio/topicbalance/pkg/cluster"
	"github.com/segmentio/topicbalance/pkg/util"
)

var (
	// ErrNoFeasibleChoice is returned by a picker when there is no feasible choice among
	// the offered possibilities.
	ErrNoFeasibleChoice = errors.New("Picker could not find a feasible choice")
)

const (
	// RandomizedName is the name of the RandomizedPicker.
	RandomizedName = "randomized"

	// ClusterUseName is the name of the ClusterUsePicker.
	ClusterUseName = "cluster-use"

	// LowestIndexName is the name of the LowestIndexPicker.
	LowestIndexName = "lowest-index"
)

// Picker chooses the node that a replica is relocated to. The choices are already filtered
// down to the nodes that can legally host the replica, and counts holds the number of
// replicas currently placed on every node in the candidate allocation. Pickers must not
// modify their arguments.
type Picker interface {
	PickNode(
		replica cluster.Replica,
		choices []int,
		counts map[int]int,
		random *rand.Rand,
	) (int, error)
}

// New returns the picker with the argument name.
func New(name string) (Picker, error) {
	switch name {
	case RandomizedName:
		return NewRandomizedPicker(), nil
	case ClusterUseName:
		return NewClusterUsePicker(), nil
	case LowestIndexName:
		return NewLowestIndexPicker(), nil
	default:
		return nil, fmt.Errorf(
			"Unrecognized picker %q; must be one of %s",
			name,
			strings.Join(Names(), ", "),
		)
	}
}

// Names returns the sorted names of all pickers.
func Names() []string {
	names := []string{RandomizedName, ClusterUseName, LowestIndexName}
	sort.Strings(names)
	return names
}

// pickByFrequency returns the choice with the fewest replicas, using the key sorter to order
// nodes with the same count.
func pickByFrequency(
	choices []int,
	counts map[int]int,
	keySorter util.KeySorter,
) (int, error) {
	if len(choices) == 0 {
		return 0, ErrNoFeasibleChoice
	}

	choiceCounts := make(map[int]int, len(choices))
	for _, choice := range choices {
		choiceCounts[choice] = counts[choice]
	}

	sortedNodes := util.SortedKeysByValue(choiceCounts, true, keySorter)
	return sortedNodes[0], nil
}
