package admin

import (
	"context"
	"encoding/json"
	"errors"
	"path"
	"sort"
	"strings"
	"sync"
	"testing"

	szk "github.com/samuel/go-zookeeper/zk"
	"github.com/segmentio/topicbalance/pkg/zk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryZKClient is an in-memory zk.Client seeded with JSON nodes.
type memoryZKClient struct {
	sync.Mutex
	nodes  map[string][]byte
	closed bool
}

var _ zk.Client = (*memoryZKClient)(nil)

func newMemoryZKClient(t *testing.T, nodes map[string]interface{}) *memoryZKClient {
	client := &memoryZKClient{nodes: map[string][]byte{}}

	for nodePath, obj := range nodes {
		var data []byte
		if obj != nil {
			var err error
			data, err = json.Marshal(obj)
			require.NoError(t, err)
		}

		// Create all of the parents too
		for curr := nodePath; curr != "/"; curr = path.Dir(curr) {
			if _, ok := client.nodes[curr]; !ok {
				client.nodes[curr] = nil
			}
		}
		client.nodes[nodePath] = data
	}

	return client
}

func (c *memoryZKClient) Get(ctx context.Context, nodePath string) ([]byte, *szk.Stat, error) {
	c.Lock()
	defer c.Unlock()

	data, ok := c.nodes[nodePath]
	if !ok {
		return nil, nil, szk.ErrNoNode
	}
	return data, &szk.Stat{}, nil
}

func (c *memoryZKClient) GetJSON(
	ctx context.Context,
	nodePath string,
	obj interface{},
) (*szk.Stat, error) {
	data, stats, err := c.Get(ctx, nodePath)
	if err != nil {
		return stats, err
	}
	return stats, json.Unmarshal(data, obj)
}

func (c *memoryZKClient) Children(
	ctx context.Context,
	nodePath string,
) ([]string, *szk.Stat, error) {
	c.Lock()
	defer c.Unlock()

	if _, ok := c.nodes[nodePath]; !ok {
		return nil, nil, szk.ErrNoNode
	}

	children := []string{}
	for curr := range c.nodes {
		if path.Dir(curr) == nodePath && curr != nodePath {
			children = append(children, strings.TrimPrefix(curr, nodePath+"/"))
		}
	}
	sort.Strings(children)

	return children, &szk.Stat{}, nil
}

func (c *memoryZKClient) Exists(
	ctx context.Context,
	nodePath string,
) (bool, *szk.Stat, error) {
	c.Lock()
	defer c.Unlock()

	_, ok := c.nodes[nodePath]
	return ok, &szk.Stat{}, nil
}

func (c *memoryZKClient) Close() error {
	c.Lock()
	defer c.Unlock()

	c.closed = true
	return nil
}

func testZKNodes(prefix string) map[string]interface{} {
	return map[string]interface{}{
		prefix + "/cluster/id": map[string]string{
			"version": "1",
			"id":      "test-cluster",
		},
		prefix + "/brokers/ids/1": map[string]interface{}{
			"host":      "10.0.0.1",
			"port":      9092,
			"rack":      "zone1",
			"timestamp": "1700000000000",
		},
		prefix + "/brokers/ids/2": map[string]interface{}{
			"host":      "10.0.0.2",
			"port":      9092,
			"rack":      "zone2",
			"timestamp": "1700000000000",
		},
		prefix + "/config/brokers/2": map[string]interface{}{
			"version": 1,
			"config": map[string]string{
				"leader.replication.throttled.rate": "1000",
			},
		},
		prefix + "/brokers/topics/topic1": map[string]interface{}{
			"version": 1,
			"partitions": map[string][]int{
				"1": {2, 1},
				"0": {1, 2},
			},
		},
		prefix + "/brokers/topics/topic1/partitions/0/state": map[string]interface{}{
			"leader": 1,
			"isr":    []int{1, 2},
		},
		prefix + "/brokers/topics/topic1/partitions/1/state": map[string]interface{}{
			"leader": 1,
			"isr":    []int{1},
		},
		prefix + "/config/topics/topic1": map[string]interface{}{
			"version": 1,
			"config": map[string]string{
				"retention.ms": "3600000",
			},
		},
		prefix + "/brokers/topics/topic0": map[string]interface{}{
			"version": 1,
			"partitions": map[string][]int{
				"0": {2},
			},
		},
	}
}

func TestZkClientGetClusterID(t *testing.T) {
	ctx := context.Background()

	for _, prefix := range []string{"", "/kafka"} {
		client := newZKAdminClient(
			newMemoryZKClient(t, testZKNodes(prefix)),
			ZKAdminClientConfig{ZKPrefix: strings.TrimPrefix(prefix, "/") + "/"},
		)

		clusterID, err := client.GetClusterID(ctx)
		require.NoError(t, err, prefix)
		assert.Equal(t, "test-cluster", clusterID)
	}
}

func TestZkClientGetBrokers(t *testing.T) {
	ctx := context.Background()
	client := newZKAdminClient(
		newMemoryZKClient(t, testZKNodes("")),
		ZKAdminClientConfig{},
	)

	brokers, err := client.GetBrokers(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, 2, len(brokers))

	assert.Equal(t, 1, brokers[0].ID)
	assert.Equal(t, "10.0.0.1:9092", brokers[0].Addr())
	assert.Equal(t, "zone1", brokers[0].Rack)
	assert.Equal(t, map[string]string{}, brokers[0].Config)
	assert.Equal(t, int64(1700000000000), brokers[0].Timestamp.UnixMilli())
	assert.Equal(
		t,
		map[string]string{"leader.replication.throttled.rate": "1000"},
		brokers[1].Config,
	)

	brokers, err = client.GetBrokers(ctx, []int{2})
	require.NoError(t, err)
	require.Equal(t, 1, len(brokers))
	assert.Equal(t, 2, brokers[0].ID)

	_, err = client.GetBrokers(ctx, []int{3})
	assert.Error(t, err)
}

func TestZkClientGetBrokersWithInstances(t *testing.T) {
	client := newZKAdminClient(
		newMemoryZKClient(t, testZKNodes("")),
		ZKAdminClientConfig{
			EC2: &fakeEC2{
				instances: map[string]fakeInstance{
					"10.0.0.2": {id: "i-2", instanceType: "m5.large", zone: "us-west-2b"},
				},
			},
		},
	)

	brokers, err := client.GetBrokers(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "", brokers[0].InstanceID)
	assert.Equal(t, "i-2", brokers[1].InstanceID)
	assert.Equal(t, "m5.large", brokers[1].InstanceType)
	assert.Equal(t, "us-west-2b", brokers[1].AvailabilityZone)
	assert.Equal(t, "zone2", brokers[1].Rack)
}

func TestZkClientGetTopics(t *testing.T) {
	ctx := context.Background()
	client := newZKAdminClient(
		newMemoryZKClient(t, testZKNodes("")),
		ZKAdminClientConfig{BootstrapAddrs: []string{"10.0.0.1:9092"}},
	)

	topics, err := client.GetTopics(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, 2, len(topics))

	assert.Equal(
		t,
		TopicInfo{
			Name:   "topic0",
			Config: map[string]string{},
			Partitions: []PartitionInfo{
				{
					Topic:    "topic0",
					ID:       0,
					Leader:   unknownBrokerID,
					Replicas: []int{2},
				},
			},
		},
		topics[0],
	)
	assert.Equal(
		t,
		TopicInfo{
			Name:   "topic1",
			Config: map[string]string{"retention.ms": "3600000"},
			Partitions: []PartitionInfo{
				{
					Topic:    "topic1",
					ID:       0,
					Leader:   1,
					Replicas: []int{1, 2},
					ISR:      []int{1, 2},
				},
				{
					Topic:    "topic1",
					ID:       1,
					Leader:   1,
					Replicas: []int{2, 1},
					ISR:      []int{1},
				},
			},
		},
		topics[1],
	)

	_, err = client.GetTopics(ctx, []string{"non-existent-topic"})
	assert.True(t, errors.Is(err, ErrTopicDoesNotExist))

	assert.Equal(t, []string{"10.0.0.1:9092"}, client.GetBootstrapAddrs())
	require.NoError(t, client.Close())
	assert.True(t, client.zkClient.(*memoryZKClient).closed)
}
