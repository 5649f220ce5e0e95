package pickers

import (
	"fmt"
	"math/rand"

	"github.com/segmentio/topicbalance/pkg/cluster"
	"github.com/segmentio/topicbalance/pkg/util"
)

// ClusterUsePicker picks the least used node in the cluster. Ties are broken with a shuffle
// seeded from the argument random source, so that repeated moves of the same partition don't
// always land on the same node.
type ClusterUsePicker struct{}

var _ Picker = (*ClusterUsePicker)(nil)

// NewClusterUsePicker returns a new ClusterUsePicker.
func NewClusterUsePicker() *ClusterUsePicker {
	return &ClusterUsePicker{}
}

// PickNode implements Picker.
func (c *ClusterUsePicker) PickNode(
	replica cluster.Replica,
	choices []int,
	counts map[int]int,
	random *rand.Rand,
) (int, error) {
	seed := fmt.Sprintf("%s-%d", replica.TopicPartition, random.Int63())

	return pickByFrequency(
		choices,
		counts,
		func(input map[int]int) []int {
			return util.ShuffledKeys(input, seed)
		},
	)
}
