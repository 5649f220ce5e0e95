package balancer

import (
	"testing"
	"time"

	"github.com/segmentio/topicbalance/pkg/cluster"
	"github.com/segmentio/topicbalance/pkg/cost"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlgorithmConfigBuilderDefaults(t *testing.T) {
	config, err := NewAlgorithmConfigBuilder().ClusterCost(cost.ReplicaNumberCost{}).Build()
	require.NoError(t, err)

	assert.True(t, config.ClusterInfo().IsEmpty())
	assert.True(t, config.ClusterBean().IsEmpty())
	assert.Equal(t, DefaultTimeout, config.Timeout())
	assert.Empty(t, config.Configs())
	assert.True(t, config.Constraints().TopicAllowed("anything"))
}

func TestAlgorithmConfigBuilderConfigs(t *testing.T) {
	configs := map[string]string{
		WorkersKey:            "2",
		AllowedTopicsRegexKey: "topic-a",
	}

	builder := NewAlgorithmConfigBuilder().
		ClusterInfo(cluster.Empty()).
		ClusterCost(cost.ReplicaNumberCost{}).
		Timeout(time.Second).
		Configs(configs).
		Config(AllowedTopicsRegexKey, "topic-b")

	config, err := builder.Build()
	require.NoError(t, err)

	value, ok := config.Config(AllowedTopicsRegexKey)
	require.True(t, ok)
	assert.Equal(t, "topic-b", value)
	assert.True(t, config.Constraints().TopicAllowed("topic-b"))
	assert.False(t, config.Constraints().TopicAllowed("topic-a"))

	// The config is isolated from later changes
	configs[WorkersKey] = "3"
	builder.Config(WorkersKey, "4")
	config.Configs()[WorkersKey] = "5"

	value, _ = config.Config(WorkersKey)
	assert.Equal(t, "2", value)
}

func TestAlgorithmConfigBuilderErrors(t *testing.T) {
	_, err := NewAlgorithmConfigBuilder().Build()
	assert.Error(t, err)

	_, err = NewAlgorithmConfigBuilder().
		ClusterCost(cost.ReplicaNumberCost{}).
		Timeout(0).
		Build()
	assert.Error(t, err)

	_, err = NewAlgorithmConfigBuilder().
		ClusterCost(cost.ReplicaNumberCost{}).
		ClusterInfo(nil).
		Build()
	assert.Error(t, err)

	_, err = NewAlgorithmConfigBuilder().
		ClusterCost(cost.ReplicaNumberCost{}).
		Config(AllowedBrokersRegexKey, "(").
		Build()
	assert.Error(t, err)
}

func TestParseSearchParams(t *testing.T) {
	params, err := parseSearchParams(
		map[string]string{
			IterationLimitKey:      "10",
			WorkersKey:             "3",
			SeedKey:                "42",
			MinStepKey:             "2",
			MaxStepKey:             "4",
			LeaderTransferRatioKey: "0.5",
			ExplorationRateKey:     "0.1",
			PatienceKey:            "7",
			PickerKey:              "lowest-index",
			AllowedTopicsRegexKey:  "topic-a",
			"unknown-key":          "value",
		},
	)
	require.NoError(t, err)

	assert.Equal(t, 10, params.iterationLimit)
	assert.Equal(t, 3, params.workers)
	assert.Equal(t, int64(42), params.seed)
	assert.Equal(t, 2, params.minStep)
	assert.Equal(t, 4, params.maxStep)
	assert.Equal(t, 0.5, params.leaderTransferRatio)
	assert.Equal(t, 0.1, params.explorationRate)
	assert.Equal(t, 7, params.patience)
	assert.Equal(t, "lowest-index", params.pickerName)
	assert.NotNil(t, params.picker)

	defaults, err := parseSearchParams(map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, 0, defaults.iterationLimit)
	assert.Equal(t, defaultWorkers, defaults.workers)
	assert.Equal(t, defaultMinStep, defaults.minStep)
	assert.Equal(t, defaultMaxStep, defaults.maxStep)
	assert.Equal(t, defaultPatience, defaults.patience)
	assert.Equal(t, "randomized", defaults.pickerName)

	// An unset max-step never falls below min-step.
	for minStep, expected := range map[string]int{"2": 3, "5": 5} {
		params, err := parseSearchParams(map[string]string{MinStepKey: minStep})
		require.NoError(t, err, minStep)
		assert.Equal(t, expected, params.maxStep, minStep)
	}

	// With several invalid values, the first key in sorted order is always reported.
	for i := 0; i < 20; i++ {
		_, err := parseSearchParams(
			map[string]string{
				WorkersKey:  "0",
				PatienceKey: "0",
				SeedKey:     "seed",
			},
		)
		require.Error(t, err)
		assert.Contains(t, err.Error(), PatienceKey)
	}

	invalid := []map[string]string{
		{WorkersKey: "0"},
		{WorkersKey: "many"},
		{IterationLimitKey: "-1"},
		{SeedKey: "seed"},
		{MinStepKey: "3", MaxStepKey: "2"},
		{LeaderTransferRatioKey: "1.5"},
		{ExplorationRateKey: "-0.1"},
		{PatienceKey: "0"},
		{PickerKey: "unknown"},
	}
	for _, configs := range invalid {
		_, err := parseSearchParams(configs)
		assert.Error(t, err, "%+v", configs)
	}
}

func TestValidateConfigs(t *testing.T) {
	assert.NoError(t, ValidateConfigs(map[string]string{}))
	assert.NoError(
		t,
		ValidateConfigs(
			map[string]string{
				AllowedTopicsRegexKey:  "(topic-a|topic-b)",
				AllowedBrokersRegexKey: "[0-9]*",
				WorkersKey:             "2",
			},
		),
	)
	assert.Error(t, ValidateConfigs(map[string]string{AllowedTopicsRegexKey: "("}))
	assert.Error(t, ValidateConfigs(map[string]string{WorkersKey: "0"}))
}
