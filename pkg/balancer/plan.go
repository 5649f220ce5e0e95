package balancer

import (
	"time"

	"github.com/segmentio/topicbalance/pkg/admin"
	"github.com/segmentio/topicbalance/pkg/cluster"
	"github.com/segmentio/topicbalance/pkg/cost"
)

// TraceStep records an improvement found during the search.
type TraceStep struct {
	Worker    int
	Iteration int
	Elapsed   time.Duration
	Cost      cost.ClusterCost
}

// Plan is the result of a successful search: a proposed allocation whose cost is strictly
// lower than the cost of the source one.
type Plan struct {
	source       *cluster.ClusterInfo
	proposal     *cluster.ClusterInfo
	initialCost  cost.ClusterCost
	proposalCost cost.ClusterCost
	trace        []TraceStep
	evaluations  int64
	elapsed      time.Duration
}

// Source returns the allocation that the search started from.
func (p *Plan) Source() *cluster.ClusterInfo {
	return p.source
}

// Proposal returns the proposed allocation.
func (p *Plan) Proposal() *cluster.ClusterInfo {
	return p.proposal
}

// InitialCost returns the cost of the source allocation.
func (p *Plan) InitialCost() cost.ClusterCost {
	return p.initialCost
}

// ProposalCost returns the cost of the proposed allocation.
func (p *Plan) ProposalCost() cost.ClusterCost {
	return p.proposalCost
}

// Trace returns the improvements that led to the proposal, in the order they were found.
func (p *Plan) Trace() []TraceStep {
	return append([]TraceStep{}, p.trace...)
}

// Evaluations returns the number of candidate allocations evaluated by all workers.
func (p *Plan) Evaluations() int64 {
	return p.evaluations
}

// Elapsed returns how long the search took.
func (p *Plan) Elapsed() time.Duration {
	return p.elapsed
}

// Moves returns the partitions whose placement differs between the source and the proposal.
func (p *Plan) Moves() []cluster.TopicPartition {
	return cluster.FindNonFulfilledAllocation(p.source, p.proposal)
}

// LeaderChanges returns the partitions whose leader differs between the source and the
// proposal.
func (p *Plan) LeaderChanges() []cluster.TopicPartition {
	return cluster.FindLeaderChanges(p.source, p.proposal)
}

// Reassignment returns the document that applies the plan with kafka-reassign-partitions.
func (p *Plan) Reassignment() admin.Reassignment {
	return cluster.Reassignment(p.source, p.proposal)
}
