// Package cost contains the functions used to score the quality of a replica allocation.
// Lower costs are better and a cost of 0 means that the allocation is perfectly balanced
// according to the function.
package cost

import (
	"fmt"
	"math"

	"github.com/segmentio/topicbalance/pkg/cluster"
	"github.com/segmentio/topicbalance/pkg/metrics"
)

// ClusterCost is the score of an allocation along with a human-readable explanation of it.
// The explanation is only rendered when asked for.
type ClusterCost struct {
	Value float64

	describe func() string
}

// NewClusterCost returns a cost with the argument value and lazily-rendered description.
func NewClusterCost(value float64, describe func() string) ClusterCost {
	return ClusterCost{
		Value:    value,
		describe: describe,
	}
}

// Description returns the explanation of the cost.
func (c ClusterCost) Description() string {
	if c.describe == nil {
		return fmt.Sprintf("cost=%.6f", c.Value)
	}
	return c.describe()
}

// String implements fmt.Stringer.
func (c ClusterCost) String() string {
	return c.Description()
}

// Less returns whether this cost is strictly lower than the other one.
func (c ClusterCost) Less(other ClusterCost) bool {
	return c.Value < other.Value
}

// HasClusterCost is implemented by everything that can score an allocation. Implementations
// must not modify their arguments.
type HasClusterCost interface {
	ClusterCost(info *cluster.ClusterInfo, bean metrics.ClusterBean) ClusterCost
}

// Func adapts a plain function into a HasClusterCost.
type Func func(info *cluster.ClusterInfo, bean metrics.ClusterBean) ClusterCost

var _ HasClusterCost = Func(nil)

// ClusterCost implements HasClusterCost.
func (f Func) ClusterCost(info *cluster.ClusterInfo, bean metrics.ClusterBean) ClusterCost {
	return f(info, bean)
}

// coefficientOfVariation returns the standard deviation of the values divided by their mean,
// or 0 if the mean is 0.
func coefficientOfVariation(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64
	for _, value := range values {
		sum += value
	}
	mean := sum / float64(len(values))
	if mean == 0 {
		return 0
	}

	var squares float64
	for _, value := range values {
		squares += (value - mean) * (value - mean)
	}

	return math.Sqrt(squares/float64(len(values))) / mean
}

func minMax(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}

	minValue, maxValue := values[0], values[0]
	for _, value := range values[1:] {
		minValue = math.Min(minValue, value)
		maxValue = math.Max(maxValue, value)
	}
	return minValue, maxValue
}
