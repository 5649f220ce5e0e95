package cost

import (
	"errors"
	"fmt"
	"strings"

	"github.com/segmentio/topicbalance/pkg/cluster"
	"github.com/segmentio/topicbalance/pkg/metrics"
)

// WeightedMember is a single cost function in a WeightedCost.
type WeightedMember struct {
	Name   string
	Weight float64
	Cost   HasClusterCost
}

// WeightedCost sums the values of its members, each multiplied by its weight.
type WeightedCost struct {
	members []WeightedMember
}

var _ HasClusterCost = (*WeightedCost)(nil)

// NewWeightedCost creates a WeightedCost from the argument members. Weights must be positive.
func NewWeightedCost(members ...WeightedMember) (*WeightedCost, error) {
	if len(members) == 0 {
		return nil, errors.New("Weighted cost must have at least one member")
	}

	for _, member := range members {
		if member.Cost == nil {
			return nil, fmt.Errorf("Cost %s is not set", member.Name)
		}
		if member.Weight <= 0 {
			return nil, fmt.Errorf(
				"Weight of cost %s must be positive, got %f",
				member.Name,
				member.Weight,
			)
		}
	}

	return &WeightedCost{
		members: append([]WeightedMember{}, members...),
	}, nil
}

// Members returns the members of the cost.
func (w *WeightedCost) Members() []WeightedMember {
	return append([]WeightedMember{}, w.members...)
}

// ClusterCost implements HasClusterCost.
func (w *WeightedCost) ClusterCost(info *cluster.ClusterInfo, bean metrics.ClusterBean) ClusterCost {
	costs := make([]ClusterCost, 0, len(w.members))
	var total float64

	for _, member := range w.members {
		memberCost := member.Cost.ClusterCost(info, bean)
		costs = append(costs, memberCost)
		total += member.Weight * memberCost.Value
	}

	return NewClusterCost(
		total,
		func() string {
			lines := []string{}
			for m, member := range w.members {
				lines = append(
					lines,
					fmt.Sprintf(
						"%s (x%g): %s",
						member.Name,
						member.Weight,
						costs[m].Description(),
					),
				)
			}
			return strings.Join(lines, "\n")
		},
	)
}
