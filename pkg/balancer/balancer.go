// Package balancer contains the search engine that proposes better replica placements for a
// cluster, along with its configuration and move constraints.
package balancer

import "context"

// Balancer proposes a new allocation for the cluster in an AlgorithmConfig.
type Balancer interface {
	// Offer searches for an allocation with a strictly lower cost than the source one. It
	// blocks until the configured timeout expires, the argument context is done or the
	// search is exhausted. A nil plan without an error means that no legal, improving
	// allocation was found.
	Offer(ctx context.Context, config AlgorithmConfig) (*Plan, error)
}
