package balancer

import (
	"context"
	"math/rand"
	"time"

	"github.com/segmentio/topicbalance/pkg/cluster"
	"github.com/segmentio/topicbalance/pkg/cost"
	"github.com/segmentio/topicbalance/pkg/util"
	log "github.com/sirupsen/logrus"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"
)

// Number of consecutive candidates without any applicable move after which a worker stops
const maxFailedCandidates = 100

// GreedyBalancer is a Balancer that runs one or more independent local searches in parallel.
// The algorithm used by each worker is:
//
//	current := source
//	until the deadline or the iteration limit:
//	  candidate := current with between min-step and max-step random legal moves applied
//	  if cost(candidate) < cost(current), continue from candidate
//	  otherwise, continue from candidate with probability exploration-rate
//	  after patience candidates without improvement, continue from the best one found
//
// A move either relocates a replica to another node, moves it to another folder of its node
// or transfers the leadership of a partition. Moves are only generated between allowed nodes
// for allowed topics, so every candidate satisfies the constraints. The best allocation among
// all workers is returned if it's strictly better than the source.
type GreedyBalancer struct{}

var _ Balancer = (*GreedyBalancer)(nil)

// NewGreedyBalancer creates a new GreedyBalancer instance.
func NewGreedyBalancer() *GreedyBalancer {
	return &GreedyBalancer{}
}

type workerResult struct {
	worker     int
	proposal   *cluster.ClusterInfo
	cost       cost.ClusterCost
	trace      []TraceStep
	iterations int
}

// Offer implements Balancer.
func (g *GreedyBalancer) Offer(ctx context.Context, config AlgorithmConfig) (*Plan, error) {
	params, err := parseSearchParams(config.Configs())
	if err != nil {
		return nil, err
	}

	start := time.Now()
	source := config.ClusterInfo()
	initialCost := config.ClusterCost().ClusterCost(source, config.ClusterBean())

	searchCtx, cancel := context.WithTimeout(ctx, config.Timeout())
	defer cancel()

	log.Debugf(
		"Searching with %d worker(s), seed %d, picker %s and timeout %s; initial cost %f",
		params.workers,
		params.seed,
		params.pickerName,
		util.PrettyDuration(config.Timeout()),
		initialCost.Value,
	)

	evaluations := atomic.NewInt64(0)
	results := make([]workerResult, params.workers)

	group, groupCtx := errgroup.WithContext(searchCtx)

	for w := 0; w < params.workers; w++ {
		worker := w
		group.Go(func() error {
			results[worker] = g.search(
				groupCtx,
				worker,
				config,
				params,
				initialCost,
				start,
				evaluations,
			)
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	elapsed := time.Since(start)

	var best *workerResult
	for r := range results {
		result := &results[r]
		if result.proposal == nil {
			continue
		}
		if best == nil || result.cost.Less(best.cost) {
			best = result
		}
	}

	log.Debugf(
		"Evaluated %d allocations in %s (%s)",
		evaluations.Load(),
		util.PrettyDuration(elapsed),
		util.PrettyRate(evaluations.Load(), elapsed),
	)

	if best == nil || !best.cost.Less(initialCost) {
		log.Debug("No allocation improves on the source one")
		return nil, nil
	}

	log.Debugf(
		"Worker %d found the best allocation after %d iterations, cost %f -> %f",
		best.worker,
		best.iterations,
		initialCost.Value,
		best.cost.Value,
	)

	return &Plan{
		source:       source,
		proposal:     best.proposal,
		initialCost:  initialCost,
		proposalCost: best.cost,
		trace:        best.trace,
		evaluations:  evaluations.Load(),
		elapsed:      elapsed,
	}, nil
}

func (g *GreedyBalancer) search(
	ctx context.Context,
	worker int,
	config AlgorithmConfig,
	params searchParams,
	initialCost cost.ClusterCost,
	start time.Time,
	evaluations *atomic.Int64,
) workerResult {
	result := workerResult{
		worker: worker,
		cost:   initialCost,
	}

	source := config.ClusterInfo()
	random := rand.New(rand.NewSource(params.seed + int64(worker)))
	generator := newMoveGenerator(source, config.Constraints(), params, random)

	if generator.exhausted() {
		log.Debugf("Worker %d: no replica can legally be moved", worker)
		return result
	}

	current := source.Replicas()
	currentCost := initialCost
	best := current

	var stale, failed int

	for iteration := 0; params.iterationLimit == 0 || iteration < params.iterationLimit; iteration++ {
		if ctx.Err() != nil {
			break
		}

		candidate, ok := generator.candidate(current)
		if !ok {
			failed++
			if failed >= maxFailedCandidates {
				log.Debugf("Worker %d: no more legal moves after %d iterations", worker, iteration)
				break
			}
			continue
		}
		failed = 0

		info, err := source.WithReplicas(candidate)
		if err != nil {
			log.Warnf("Worker %d: skipping invalid candidate: %+v", worker, err)
			continue
		}

		candidateCost := config.ClusterCost().ClusterCost(info, config.ClusterBean())
		evaluations.Inc()
		result.iterations = iteration + 1

		switch {
		case candidateCost.Less(currentCost):
			current, currentCost, stale = candidate, candidateCost, 0
		case params.explorationRate > 0 && random.Float64() < params.explorationRate:
			current, currentCost = candidate, candidateCost
			stale++
		default:
			stale++
		}

		if candidateCost.Less(result.cost) {
			best = candidate
			result.proposal = info
			result.cost = candidateCost
			result.trace = append(
				result.trace,
				TraceStep{
					Worker:    worker,
					Iteration: iteration,
					Elapsed:   time.Since(start),
					Cost:      candidateCost,
				},
			)
		}

		if stale >= params.patience {
			current, currentCost, stale = best, result.cost, 0
		}
	}

	return result
}
