package pickers

import (
	"math/rand"

	"github.com/segmentio/topicbalance/pkg/cluster"
)

// RandomizedPicker picks uniformly among the choices, ignoring how loaded the nodes are.
type RandomizedPicker struct{}

var _ Picker = (*RandomizedPicker)(nil)

// NewRandomizedPicker returns a new RandomizedPicker.
func NewRandomizedPicker() *RandomizedPicker {
	return &RandomizedPicker{}
}

// PickNode implements Picker.
func (r *RandomizedPicker) PickNode(
	replica cluster.Replica,
	choices []int,
	counts map[int]int,
	random *rand.Rand,
) (int, error) {
	if len(choices) == 0 {
		return 0, ErrNoFeasibleChoice
	}
	return choices[random.Intn(len(choices))], nil
}
