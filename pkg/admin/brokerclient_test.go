package admin

import (
	"context"
	"testing"

	"github.com/segmentio/topicbalance/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrokerClientGetClusterID(t *testing.T) {
	if !util.CanTestBrokerAdmin() {
		t.Skip("Skipping because TOPICBALANCE_TEST_BROKER_ADMIN is not set")
	}

	ctx := context.Background()
	client, err := NewBrokerAdminClient(
		ctx,
		BrokerAdminClientConfig{
			ConnectorConfig: ConnectorConfig{BrokerAddr: util.TestKafkaAddr()},
		},
	)
	require.NoError(t, err)
	defer client.Close()

	clusterID, err := client.GetClusterID(ctx)
	require.NoError(t, err)
	require.NotEqual(t, "", clusterID)

	_, err = NewBrokerAdminClient(
		ctx,
		BrokerAdminClientConfig{
			ConnectorConfig:   ConnectorConfig{BrokerAddr: util.TestKafkaAddr()},
			ExpectedClusterID: clusterID + "-other",
		},
	)
	assert.Error(t, err)
}

func TestBrokerClientGetBrokers(t *testing.T) {
	if !util.CanTestBrokerAdmin() {
		t.Skip("Skipping because TOPICBALANCE_TEST_BROKER_ADMIN is not set")
	}

	ctx := context.Background()
	client, err := NewBrokerAdminClient(
		ctx,
		BrokerAdminClientConfig{
			ConnectorConfig: ConnectorConfig{BrokerAddr: util.TestKafkaAddr()},
		},
	)
	require.NoError(t, err)
	defer client.Close()

	brokers, err := client.GetBrokers(ctx, nil)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)

	for b, broker := range brokers {
		if b > 0 {
			assert.Greater(t, broker.ID, brokers[b-1].ID)
		}
		assert.NotEmpty(t, broker.LogDirs(), "broker %d", broker.ID)
	}

	subset, err := client.GetBrokers(ctx, []int{brokers[0].ID})
	require.NoError(t, err)
	require.Equal(t, 1, len(subset))
	assert.Equal(t, brokers[0].ID, subset[0].ID)
}

func TestBrokerClientGetTopics(t *testing.T) {
	if !util.CanTestBrokerAdmin() {
		t.Skip("Skipping because TOPICBALANCE_TEST_BROKER_ADMIN is not set")
	}

	ctx := context.Background()
	client, err := NewBrokerAdminClient(
		ctx,
		BrokerAdminClientConfig{
			ConnectorConfig: ConnectorConfig{BrokerAddr: util.TestKafkaAddr()},
		},
	)
	require.NoError(t, err)
	defer client.Close()

	topics, err := client.GetTopics(ctx, nil)
	require.NoError(t, err)

	for _, topic := range topics {
		assert.NotEqual(t, "__consumer_offsets", topic.Name)
		for _, partition := range topic.Partitions {
			assert.NotEmpty(t, partition.Replicas)
		}
	}

	assert.Equal(t, []string{util.TestKafkaAddr()}, client.GetBootstrapAddrs())
}
