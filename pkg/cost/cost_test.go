package cost

import (
	"testing"

	"github.com/segmentio/topicbalance/pkg/cluster"
	"github.com/segmentio/topicbalance/pkg/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	tp0 = cluster.TopicPartition{Topic: "topic-a", Partition: 0}
	tp1 = cluster.TopicPartition{Topic: "topic-a", Partition: 1}
)

func testInfo(t *testing.T, nodes []cluster.Node, replicas []cluster.Replica) *cluster.ClusterInfo {
	info, err := cluster.Of("test-cluster", nodes, replicas)
	require.NoError(t, err)
	return info
}

func TestClusterCostDescriptionIsLazy(t *testing.T) {
	calls := 0
	clusterCost := NewClusterCost(
		1.5,
		func() string {
			calls++
			return "described"
		},
	)

	assert.Equal(t, 0, calls)
	assert.Equal(t, "described", clusterCost.Description())
	assert.Equal(t, 1, calls)
	assert.Equal(t, "cost=2.000000", ClusterCost{Value: 2}.String())
	assert.True(t, ClusterCost{Value: 1}.Less(clusterCost))
	assert.False(t, ClusterCost{Value: 1.5}.Less(clusterCost))
}

func TestCountCosts(t *testing.T) {
	nodes := []cluster.Node{{ID: 1}, {ID: 2}}

	type testCase struct {
		description    string
		replicas       []cluster.Replica
		expectedNumber float64
		expectedLeader float64
	}

	testCases := []testCase{
		{
			description: "all on one node",
			replicas: []cluster.Replica{
				{TopicPartition: tp0, NodeID: 1, Leader: true},
				{TopicPartition: tp1, NodeID: 1, Leader: true},
			},
			expectedNumber: 1,
			expectedLeader: 1,
		},
		{
			description: "spread replicas, stacked leaders",
			replicas: []cluster.Replica{
				{TopicPartition: tp0, NodeID: 1, Leader: true},
				{TopicPartition: tp0, NodeID: 2},
				{TopicPartition: tp1, NodeID: 1, Leader: true},
				{TopicPartition: tp1, NodeID: 2},
			},
			expectedNumber: 0,
			expectedLeader: 1,
		},
		{
			description: "balanced",
			replicas: []cluster.Replica{
				{TopicPartition: tp0, NodeID: 1, Leader: true},
				{TopicPartition: tp0, NodeID: 2},
				{TopicPartition: tp1, NodeID: 1},
				{TopicPartition: tp1, NodeID: 2, Leader: true},
			},
			expectedNumber: 0,
			expectedLeader: 0,
		},
	}

	for _, testCase := range testCases {
		info := testInfo(t, nodes, testCase.replicas)

		assert.InDelta(
			t,
			testCase.expectedNumber,
			ReplicaNumberCost{}.ClusterCost(info, metrics.Empty()).Value,
			1e-9,
			testCase.description,
		)
		assert.InDelta(
			t,
			testCase.expectedLeader,
			ReplicaLeaderCost{}.ClusterCost(info, metrics.Empty()).Value,
			1e-9,
			testCase.description,
		)
	}

	assert.Equal(t, 0.0, ReplicaNumberCost{}.ClusterCost(cluster.Empty(), metrics.Empty()).Value)
}

func TestReplicaSizeCost(t *testing.T) {
	info := testInfo(
		t,
		[]cluster.Node{{ID: 1}, {ID: 2}},
		[]cluster.Replica{
			{TopicPartition: tp0, NodeID: 1, Leader: true},
			{TopicPartition: tp1, NodeID: 2, Leader: true},
		},
	)
	partitions := map[cluster.TopicPartition]map[string]float64{
		tp0: {metrics.SizeMetric: 100},
		tp1: {metrics.SizeMetric: 300},
	}

	bytesCost := ReplicaSizeCost{}.ClusterCost(info, metrics.New(nil, partitions))
	assert.InDelta(t, 0.5, bytesCost.Value, 1e-9)
	assert.Contains(t, bytesCost.Description(), "bytes per node")

	withCapacity := metrics.New(
		map[int]map[string]float64{
			1: {metrics.CapacityMetric: 1000},
			2: {metrics.CapacityMetric: 3000},
		},
		partitions,
	)
	capacityCost := ReplicaSizeCost{}.ClusterCost(info, withCapacity)
	assert.InDelta(t, 0.0, capacityCost.Value, 1e-9)
	assert.Contains(t, capacityCost.Description(), "disk use per node")

	assert.Equal(t, 0.0, ReplicaSizeCost{}.ClusterCost(info, metrics.Empty()).Value)
}

func TestFolderSizeCost(t *testing.T) {
	nodes := []cluster.Node{{ID: 1, Folders: []string{"/a", "/b"}}}
	bean := metrics.New(
		nil,
		map[cluster.TopicPartition]map[string]float64{
			tp0: {metrics.SizeMetric: 100},
			tp1: {metrics.SizeMetric: 100},
		},
	)

	stacked := testInfo(
		t,
		nodes,
		[]cluster.Replica{
			{TopicPartition: tp0, NodeID: 1, Path: "/a", Leader: true},
			{TopicPartition: tp1, NodeID: 1, Path: "/a", Leader: true},
		},
	)
	assert.InDelta(t, 1.0, FolderSizeCost{}.ClusterCost(stacked, bean).Value, 1e-9)

	spread := testInfo(
		t,
		nodes,
		[]cluster.Replica{
			{TopicPartition: tp0, NodeID: 1, Path: "/a", Leader: true},
			{TopicPartition: tp1, NodeID: 1, Path: "/b", Leader: true},
		},
	)
	assert.InDelta(t, 0.0, FolderSizeCost{}.ClusterCost(spread, bean).Value, 1e-9)
}

func TestRackSpreadCost(t *testing.T) {
	info := testInfo(
		t,
		[]cluster.Node{
			{ID: 1, Rack: "zone1"},
			{ID: 2, Rack: "zone1"},
			{ID: 3, Rack: "zone2"},
		},
		[]cluster.Replica{
			{TopicPartition: tp0, NodeID: 1, Leader: true},
			{TopicPartition: tp0, NodeID: 2},
			{TopicPartition: tp1, NodeID: 1, Leader: true},
			{TopicPartition: tp1, NodeID: 3},
		},
	)

	rackCost := RackSpreadCost{}.ClusterCost(info, metrics.Empty())
	assert.InDelta(t, 0.5, rackCost.Value, 1e-9)
	assert.Equal(
		t,
		"partitions with replicas sharing a rack: 1/2 across 2 racks",
		rackCost.Description(),
	)
}

func TestWeightedCost(t *testing.T) {
	constant := func(value float64) HasClusterCost {
		return Func(
			func(*cluster.ClusterInfo, metrics.ClusterBean) ClusterCost {
				return ClusterCost{Value: value}
			},
		)
	}

	weighted, err := NewWeightedCost(
		WeightedMember{Name: "first", Weight: 2, Cost: constant(1)},
		WeightedMember{Name: "second", Weight: 0.5, Cost: constant(2)},
	)
	require.NoError(t, err)
	assert.Len(t, weighted.Members(), 2)

	weightedCost := weighted.ClusterCost(cluster.Empty(), metrics.Empty())
	assert.InDelta(t, 3.0, weightedCost.Value, 1e-9)
	assert.Equal(
		t,
		"first (x2): cost=1.000000\nsecond (x0.5): cost=2.000000",
		weightedCost.Description(),
	)

	_, err = NewWeightedCost()
	assert.Error(t, err)

	_, err = NewWeightedCost(WeightedMember{Name: "first", Weight: 0, Cost: constant(1)})
	assert.Error(t, err)

	_, err = NewWeightedCost(WeightedMember{Name: "first", Weight: 1})
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	assert.Equal(
		t,
		[]string{
			FolderSizeName,
			RackSpreadName,
			ReplicaLeaderName,
			ReplicaNumberName,
			ReplicaSizeName,
		},
		Names(),
	)

	for _, name := range Names() {
		costFunc, err := New(name)
		require.NoError(t, err, name)
		assert.NotNil(t, costFunc, name)
	}

	_, err := New("unknown")
	assert.Error(t, err)
}

func TestFormatCost(t *testing.T) {
	info, err := cluster.NewBuilder().AddNode(1, 2, 3).AddTopic("topic-a", 3, 2).Build()
	require.NoError(t, err)

	weighted, err := NewWeightedCost(
		WeightedMember{Name: ReplicaNumberName, Weight: 2, Cost: ReplicaNumberCost{}},
		WeightedMember{Name: ReplicaLeaderName, Weight: 1, Cost: ReplicaLeaderCost{}},
	)
	require.NoError(t, err)

	formatted := FormatCost(weighted, info, metrics.Empty())
	assert.Contains(t, formatted, ReplicaNumberName)
	assert.Contains(t, formatted, ReplicaLeaderName)
	assert.Contains(t, formatted, "total")

	formatted = FormatCost(ReplicaNumberCost{}, info, metrics.Empty())
	assert.Contains(t, formatted, "replicas per node")
}
