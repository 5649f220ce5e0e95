package balancer

import (
	"context"
	"testing"

	"github.com/segmentio/topicbalance/pkg/cluster"
	"github.com/segmentio/topicbalance/pkg/cost"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatPlan(t *testing.T) {
	info, err := cluster.Of(
		"test-cluster",
		[]cluster.Node{{ID: 1}, {ID: 2}},
		[]cluster.Replica{
			{TopicPartition: cluster.TopicPartition{Topic: "topic-a", Partition: 0}, NodeID: 1, Leader: true},
			{TopicPartition: cluster.TopicPartition{Topic: "topic-a", Partition: 1}, NodeID: 1, Leader: true},
		},
	)
	require.NoError(t, err)

	config, err := NewAlgorithmConfigBuilder().
		ClusterInfo(info).
		ClusterCost(cost.ReplicaNumberCost{}).
		Configs(map[string]string{IterationLimitKey: "50", SeedKey: "1"}).
		Build()
	require.NoError(t, err)

	plan, err := NewGreedyBalancer().Offer(context.Background(), config)
	require.NoError(t, err)
	require.NotNil(t, plan)

	formatted := FormatPlan(plan)
	assert.Contains(t, formatted, "Initial cost")
	assert.Contains(t, formatted, "1.000000")
	assert.Contains(t, formatted, "0.000000")
	assert.Contains(t, formatted, "100.00%")
	assert.Contains(t, formatted, "replicas per node")

	assert.Contains(t, FormatTrace(plan), "Iteration")
}
