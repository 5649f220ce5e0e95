package pickers

import (
	"math/rand"

	"github.com/segmentio/topicbalance/pkg/cluster"
	"github.com/segmentio/topicbalance/pkg/util"
)

// LowestIndexPicker picks the least used node in the cluster, using the node ID to break ties.
type LowestIndexPicker struct{}

var _ Picker = (*LowestIndexPicker)(nil)

// NewLowestIndexPicker returns a new LowestIndexPicker.
func NewLowestIndexPicker() *LowestIndexPicker {
	return &LowestIndexPicker{}
}

// PickNode implements Picker.
func (l *LowestIndexPicker) PickNode(
	replica cluster.Replica,
	choices []int,
	counts map[int]int,
	random *rand.Rand,
) (int, error) {
	return pickByFrequency(choices, counts, util.SortedKeys)
}
