package pickers

import (
	"math/rand"
	"testing"

	"github.com/segmentio/topicbalance/pkg/cluster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pickNodeTestCase struct {
	// Inputs
	replica cluster.Replica
	choices []int
	counts  map[int]int
	seed    int64

	description    string
	expectedChoice int
	expectedErr    bool
}

func (p pickNodeTestCase) evaluate(t *testing.T, picker Picker) {
	choices := append([]int{}, p.choices...)

	counts := map[int]int{}
	for node, count := range p.counts {
		counts[node] = count
	}

	choice, err := picker.PickNode(p.replica, choices, counts, rand.New(rand.NewSource(p.seed)))
	if p.expectedErr {
		assert.ErrorIs(t, err, ErrNoFeasibleChoice, p.description)
		return
	}

	require.NoError(t, err, p.description)
	assert.Equal(t, p.expectedChoice, choice, p.description)

	// Arguments are left untouched
	assert.Equal(t, p.choices, choices, p.description)
	assert.Equal(t, len(p.counts), len(counts), p.description)
}

func testReplica() cluster.Replica {
	return cluster.Replica{
		TopicPartition: cluster.TopicPartition{Topic: "test-topic", Partition: 1},
		NodeID:         1,
		Leader:         true,
	}
}
