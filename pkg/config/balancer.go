package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/segmentio/topicbalance/pkg/balancer"
	"github.com/segmentio/topicbalance/pkg/cost"
	"github.com/segmentio/topicbalance/pkg/metrics"
)

// BalancerConfig describes a balancing job for a cluster: which costs to minimize, what the
// search is allowed to touch and how long it may run.
type BalancerConfig struct {
	Meta ResourceMeta `json:"meta"`
	Spec BalancerSpec `json:"spec"`

	// RootDir is the directory of the file the config was loaded from.
	RootDir string `json:"-"`
}

// BalancerSpec stores the details of a balancing job.
type BalancerSpec struct {
	// Timeout bounds the search, e.g. "30s". If blank, a short default is used.
	Timeout string `json:"timeout"`

	// Costs are the cost functions to minimize. Their values are summed after being
	// multiplied by their weights.
	Costs []CostConfig `json:"costs"`

	// AllowedTopics, if set, is a regex that must match the whole name of every topic whose
	// replicas may move.
	AllowedTopics *string `json:"allowedTopics,omitempty"`

	// AllowedBrokers, if set, is a regex that must match the whole ID of every broker that
	// replicas may move from or to.
	AllowedBrokers *string `json:"allowedBrokers,omitempty"`

	// MetricsFile is an optional path to a metrics snapshot used by the size costs. Relative
	// paths are resolved against the config directory.
	MetricsFile string `json:"metricsFile"`

	// Tuning holds raw search parameters, e.g. "workers" or "iteration-limit".
	Tuning map[string]string `json:"tuning"`
}

// CostConfig selects one cost function by name.
type CostConfig struct {
	Name string `json:"name"`

	// Weight multiplies the value of the cost. If unset, it's 1.
	Weight float64 `json:"weight"`
}

// Validate evaluates whether the balancer config is valid.
func (b BalancerConfig) Validate() error {
	var err error

	if metaErr := b.Meta.Validate(); metaErr != nil {
		err = multierror.Append(err, metaErr)
	}

	if _, timeoutErr := b.TimeoutDuration(); timeoutErr != nil {
		err = multierror.Append(err, timeoutErr)
	}

	if len(b.Spec.Costs) == 0 {
		err = multierror.Append(err, errors.New("At least one cost must be set"))
	}

	names := map[string]struct{}{}
	for _, costConfig := range b.Spec.Costs {
		if _, ok := names[costConfig.Name]; ok {
			err = multierror.Append(err, fmt.Errorf("Cost %s is set twice", costConfig.Name))
		}
		names[costConfig.Name] = struct{}{}

		if _, costErr := cost.New(costConfig.Name); costErr != nil {
			err = multierror.Append(err, costErr)
		}
		if costConfig.Weight < 0 {
			err = multierror.Append(
				err,
				fmt.Errorf("Weight of cost %s cannot be negative", costConfig.Name),
			)
		}
	}

	for _, key := range []string{
		balancer.AllowedTopicsRegexKey,
		balancer.AllowedBrokersRegexKey,
	} {
		if _, ok := b.Spec.Tuning[key]; ok {
			err = multierror.Append(
				err,
				fmt.Errorf("%s must be set via allowedTopics or allowedBrokers", key),
			)
		}
	}

	if configsErr := balancer.ValidateConfigs(b.AlgorithmConfigs()); configsErr != nil {
		err = multierror.Append(err, configsErr)
	}

	return err
}

// TimeoutDuration returns the parsed search timeout.
func (b BalancerConfig) TimeoutDuration() (time.Duration, error) {
	if b.Spec.Timeout == "" {
		return balancer.DefaultTimeout, nil
	}

	timeout, err := time.ParseDuration(b.Spec.Timeout)
	if err != nil {
		return 0, fmt.Errorf("Error parsing timeout: %+v", err)
	}
	if timeout <= 0 {
		return 0, fmt.Errorf("Timeout must be positive, got %s", timeout)
	}
	return timeout, nil
}

// CostFunction builds the weighted sum of the configured costs.
func (b BalancerConfig) CostFunction() (*cost.WeightedCost, error) {
	members := []cost.WeightedMember{}

	for _, costConfig := range b.Spec.Costs {
		costFunc, err := cost.New(costConfig.Name)
		if err != nil {
			return nil, err
		}

		weight := costConfig.Weight
		if weight == 0 {
			weight = 1
		}

		members = append(
			members,
			cost.WeightedMember{
				Name:   costConfig.Name,
				Weight: weight,
				Cost:   costFunc,
			},
		)
	}

	return cost.NewWeightedCost(members...)
}

// AlgorithmConfigs returns the raw configuration map passed to the balancer.
func (b BalancerConfig) AlgorithmConfigs() map[string]string {
	configs := map[string]string{}
	for key, value := range b.Spec.Tuning {
		configs[key] = value
	}

	if b.Spec.AllowedTopics != nil {
		configs[balancer.AllowedTopicsRegexKey] = *b.Spec.AllowedTopics
	}
	if b.Spec.AllowedBrokers != nil {
		configs[balancer.AllowedBrokersRegexKey] = *b.Spec.AllowedBrokers
	}

	return configs
}

// MetricsPath returns the resolved path of the metrics snapshot, or an empty string if none
// is configured.
func (b BalancerConfig) MetricsPath() string {
	path := b.Spec.MetricsFile
	if path == "" || filepath.IsAbs(path) || b.RootDir == "" {
		return path
	}
	return filepath.Join(b.RootDir, path)
}

// LoadMetrics loads the configured metrics snapshot. Without one, the empty bean is
// returned.
func (b BalancerConfig) LoadMetrics() (metrics.ClusterBean, error) {
	path := b.MetricsPath()
	if path == "" {
		return metrics.Empty(), nil
	}
	return metrics.LoadFile(path)
}

// ToAlgorithmConfigBuilder returns a builder with the cost, timeout and configs of this
// balancer config set. The caller still needs to set the cluster info and metrics.
func (b BalancerConfig) ToAlgorithmConfigBuilder() (*balancer.AlgorithmConfigBuilder, error) {
	timeout, err := b.TimeoutDuration()
	if err != nil {
		return nil, err
	}

	costFunc, err := b.CostFunction()
	if err != nil {
		return nil, err
	}

	return balancer.NewAlgorithmConfigBuilder().
		ClusterCost(costFunc).
		Timeout(timeout).
		Configs(b.AlgorithmConfigs()), nil
}

// CheckConsistency verifies that the argument balancer config is consistent with the argument
// cluster, e.g. has the same environment and region, etc.
func CheckConsistency(balancerConfig BalancerConfig, clusterConfig ClusterConfig) error {
	var err error

	if balancerConfig.Meta.Cluster != clusterConfig.Meta.Name {
		err = multierror.Append(
			err,
			errors.New("Balancer cluster name does not match name in cluster config"),
		)
	}
	if balancerConfig.Meta.Environment != clusterConfig.Meta.Environment {
		err = multierror.Append(
			err,
			errors.New("Balancer environment does not match cluster environment"),
		)
	}
	if balancerConfig.Meta.Region != clusterConfig.Meta.Region {
		err = multierror.Append(
			err,
			errors.New("Balancer region does not match cluster region"),
		)
	}

	return err
}
