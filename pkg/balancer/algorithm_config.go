package balancer

import (
	"errors"
	"time"

	"github.com/segmentio/topicbalance/pkg/cluster"
	"github.com/segmentio/topicbalance/pkg/cost"
	"github.com/segmentio/topicbalance/pkg/metrics"
)

// DefaultTimeout is the search time budget used when none is configured.
const DefaultTimeout = 3 * time.Second

// AlgorithmConfig is the immutable input of a balancer: the allocation to improve, the cost
// function to minimize, the metrics it's evaluated with, the move constraints, the time budget
// and the raw configuration map with balancer-specific tuning.
type AlgorithmConfig struct {
	clusterInfo *cluster.ClusterInfo
	clusterCost cost.HasClusterCost
	clusterBean metrics.ClusterBean
	timeout     time.Duration
	configs     map[string]string
	constraints Constraints
}

// ClusterInfo returns the source allocation.
func (a AlgorithmConfig) ClusterInfo() *cluster.ClusterInfo {
	return a.clusterInfo
}

// ClusterCost returns the cost function to minimize.
func (a AlgorithmConfig) ClusterCost() cost.HasClusterCost {
	return a.clusterCost
}

// ClusterBean returns the metrics that costs are evaluated with.
func (a AlgorithmConfig) ClusterBean() metrics.ClusterBean {
	return a.clusterBean
}

// Timeout returns the time budget of the search.
func (a AlgorithmConfig) Timeout() time.Duration {
	return a.timeout
}

// Constraints returns the compiled move constraints.
func (a AlgorithmConfig) Constraints() Constraints {
	return a.constraints
}

// Configs returns a copy of the raw configuration map.
func (a AlgorithmConfig) Configs() map[string]string {
	configs := make(map[string]string, len(a.configs))
	for key, value := range a.configs {
		configs[key] = value
	}
	return configs
}

// Config returns a single raw configuration value.
func (a AlgorithmConfig) Config(key string) (string, bool) {
	value, ok := a.configs[key]
	return value, ok
}

// AlgorithmConfigBuilder assembles an AlgorithmConfig.
type AlgorithmConfigBuilder struct {
	clusterInfo *cluster.ClusterInfo
	clusterCost cost.HasClusterCost
	clusterBean metrics.ClusterBean
	timeout     time.Duration
	configs     map[string]string
}

// NewAlgorithmConfigBuilder returns a builder with an empty cluster, empty metrics and the
// default timeout.
func NewAlgorithmConfigBuilder() *AlgorithmConfigBuilder {
	return &AlgorithmConfigBuilder{
		clusterInfo: cluster.Empty(),
		clusterBean: metrics.Empty(),
		timeout:     DefaultTimeout,
		configs:     map[string]string{},
	}
}

// ClusterInfo sets the source allocation.
func (b *AlgorithmConfigBuilder) ClusterInfo(info *cluster.ClusterInfo) *AlgorithmConfigBuilder {
	b.clusterInfo = info
	return b
}

// ClusterCost sets the cost function.
func (b *AlgorithmConfigBuilder) ClusterCost(clusterCost cost.HasClusterCost) *AlgorithmConfigBuilder {
	b.clusterCost = clusterCost
	return b
}

// ClusterBean sets the metrics.
func (b *AlgorithmConfigBuilder) ClusterBean(bean metrics.ClusterBean) *AlgorithmConfigBuilder {
	b.clusterBean = bean
	return b
}

// Timeout sets the time budget of the search.
func (b *AlgorithmConfigBuilder) Timeout(timeout time.Duration) *AlgorithmConfigBuilder {
	b.timeout = timeout
	return b
}

// Configs adds all of the argument entries to the raw configuration map.
func (b *AlgorithmConfigBuilder) Configs(configs map[string]string) *AlgorithmConfigBuilder {
	for key, value := range configs {
		b.configs[key] = value
	}
	return b
}

// Config sets a single raw configuration entry.
func (b *AlgorithmConfigBuilder) Config(key string, value string) *AlgorithmConfigBuilder {
	b.configs[key] = value
	return b
}

// Build validates the builder state and returns the resulting AlgorithmConfig.
func (b *AlgorithmConfigBuilder) Build() (AlgorithmConfig, error) {
	if b.clusterInfo == nil {
		return AlgorithmConfig{}, errors.New("Cluster info must be set")
	}
	if b.clusterCost == nil {
		return AlgorithmConfig{}, errors.New("Cluster cost function must be set")
	}
	if b.timeout <= 0 {
		return AlgorithmConfig{}, errors.New("Timeout must be positive")
	}

	constraints, err := NewConstraints(b.configs)
	if err != nil {
		return AlgorithmConfig{}, err
	}

	config := AlgorithmConfig{
		clusterInfo: b.clusterInfo,
		clusterCost: b.clusterCost,
		clusterBean: b.clusterBean,
		timeout:     b.timeout,
		configs:     make(map[string]string, len(b.configs)),
		constraints: constraints,
	}
	for key, value := range b.configs {
		config.configs[key] = value
	}

	return config, nil
}
