package balancer

import (
	"testing"

	"github.com/segmentio/topicbalance/pkg/cluster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstraints(t *testing.T) {
	type testCase struct {
		description    string
		configs        map[string]string
		allowedTopics  []string
		deniedTopics   []string
		allowedBrokers []int
		deniedBrokers  []int
		expectedErr    bool
	}

	testCases := []testCase{
		{
			description:    "unset allows everything",
			configs:        map[string]string{},
			allowedTopics:  []string{"a", "topic-b"},
			allowedBrokers: []int{0, 1, 100},
		},
		{
			description:   "empty allows nothing",
			configs:       map[string]string{AllowedTopicsRegexKey: "", AllowedBrokersRegexKey: ""},
			deniedTopics:  []string{"a", "topic-b"},
			deniedBrokers: []int{0, 1, 100},
		},
		{
			description: "whole name match",
			configs: map[string]string{
				AllowedTopicsRegexKey:  "(a|topic-b)",
				AllowedBrokersRegexKey: "(1|2|3)",
			},
			allowedTopics:  []string{"a", "topic-b"},
			deniedTopics:   []string{"ab", "topic-bc", "xtopic-b"},
			allowedBrokers: []int{1, 2, 3},
			deniedBrokers:  []int{0, 12, 31},
		},
		{
			description: "prefix patterns",
			configs: map[string]string{
				AllowedTopicsRegexKey:  "t",
				AllowedBrokersRegexKey: "[0-9]*",
			},
			deniedTopics:   []string{"topic-a", "topic-b"},
			allowedTopics:  []string{"t"},
			allowedBrokers: []int{0, 7, 123},
		},
		{
			description: "invalid topic pattern",
			configs:     map[string]string{AllowedTopicsRegexKey: "(unclosed"},
			expectedErr: true,
		},
		{
			description: "invalid broker pattern",
			configs:     map[string]string{AllowedBrokersRegexKey: "[0-9"},
			expectedErr: true,
		},
	}

	for _, testCase := range testCases {
		constraints, err := NewConstraints(testCase.configs)
		if testCase.expectedErr {
			assert.Error(t, err, testCase.description)
			continue
		}
		require.NoError(t, err, testCase.description)

		for _, topic := range testCase.allowedTopics {
			assert.True(t, constraints.TopicAllowed(topic), "%s: %s", testCase.description, topic)
		}
		for _, topic := range testCase.deniedTopics {
			assert.False(t, constraints.TopicAllowed(topic), "%s: %s", testCase.description, topic)
		}
		for _, broker := range testCase.allowedBrokers {
			assert.True(t, constraints.BrokerAllowed(broker), "%s: %d", testCase.description, broker)
		}
		for _, broker := range testCase.deniedBrokers {
			assert.False(t, constraints.BrokerAllowed(broker), "%s: %d", testCase.description, broker)
		}
	}
}

func TestIsMoveLegal(t *testing.T) {
	constraints, err := NewConstraints(
		map[string]string{
			AllowedTopicsRegexKey:  "topic-a",
			AllowedBrokersRegexKey: "1|2",
		},
	)
	require.NoError(t, err)

	replica := func(topic string, nodeID int, leader bool) cluster.Replica {
		return cluster.Replica{
			TopicPartition: cluster.TopicPartition{Topic: topic},
			NodeID:         nodeID,
			Leader:         leader,
		}
	}

	assert.True(t, constraints.IsMoveLegal(replica("topic-a", 1, true), 2))
	assert.True(t, constraints.IsMoveLegal(replica("topic-a", 1, true), 1))
	assert.False(t, constraints.IsMoveLegal(replica("topic-b", 1, true), 2))
	assert.False(t, constraints.IsMoveLegal(replica("topic-a", 3, true), 2))
	assert.False(t, constraints.IsMoveLegal(replica("topic-a", 1, true), 3))

	assert.True(
		t,
		constraints.IsLeaderTransferLegal(replica("topic-a", 1, true), replica("topic-a", 2, false)),
	)
	assert.False(
		t,
		constraints.IsLeaderTransferLegal(replica("topic-a", 1, true), replica("topic-a", 3, false)),
	)
	assert.False(
		t,
		constraints.IsLeaderTransferLegal(replica("topic-b", 1, true), replica("topic-b", 2, false)),
	)
	assert.False(
		t,
		constraints.IsLeaderTransferLegal(replica("topic-a", 1, true), replica("topic-c", 2, false)),
	)
}
