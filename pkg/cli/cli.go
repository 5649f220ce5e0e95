package cli

import (
	"context"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/segmentio/topicbalance/pkg/admin"
	"github.com/segmentio/topicbalance/pkg/balancer"
	"github.com/segmentio/topicbalance/pkg/cluster"
	"github.com/segmentio/topicbalance/pkg/config"
	"github.com/segmentio/topicbalance/pkg/cost"
	"github.com/segmentio/topicbalance/pkg/metrics"
	log "github.com/sirupsen/logrus"
)

const (
	spinnerCharSet  = 36
	spinnerDuration = 200 * time.Millisecond
)

// CLIRunner collects the topology of a cluster and prints the results of the commands that
// operate on it.
type CLIRunner struct {
	adminClient admin.Client
	balancer    balancer.Balancer
	printer     func(f string, a ...interface{})
	spinnerObj  *spinner.Spinner
}

// NewCLIRunner creates a CLIRunner around the argument admin client.
func NewCLIRunner(
	adminClient admin.Client,
	printer func(f string, a ...interface{}),
	showSpinner bool,
) *CLIRunner {
	var spinnerObj *spinner.Spinner

	if showSpinner {
		spinnerObj = spinner.New(
			spinner.CharSets[spinnerCharSet],
			spinnerDuration,
			spinner.WithWriter(os.Stderr),
			spinner.WithHiddenCursor(true),
		)
		spinnerObj.Prefix = "Loading: "
	}

	return &CLIRunner{
		adminClient: adminClient,
		balancer:    balancer.NewGreedyBalancer(),
		printer:     printer,
		spinnerObj:  spinnerObj,
	}
}

// GetBrokers prints the brokers of the cluster.
func (c *CLIRunner) GetBrokers(ctx context.Context, full bool) error {
	c.startSpinner()

	brokers, err := c.adminClient.GetBrokers(ctx, nil)
	c.stopSpinner()
	if err != nil {
		return err
	}

	c.printer("Brokers:\n%s", admin.FormatBrokers(brokers, full))
	return nil
}

// GetClusterID prints the ID of the cluster.
func (c *CLIRunner) GetClusterID(ctx context.Context) error {
	c.startSpinner()

	clusterID, err := c.adminClient.GetClusterID(ctx)
	c.stopSpinner()
	if err != nil {
		return err
	}

	c.printer("Cluster:\n%s", admin.FormatClusterID(clusterID))
	return nil
}

// GetTopics prints the topics of the cluster.
func (c *CLIRunner) GetTopics(ctx context.Context) error {
	c.startSpinner()

	topics, err := c.adminClient.GetTopics(ctx, nil)
	if err != nil {
		c.stopSpinner()
		return err
	}
	brokers, err := c.adminClient.GetBrokers(ctx, nil)
	c.stopSpinner()
	if err != nil {
		return err
	}

	c.printer("Topics:\n%s", admin.FormatTopics(topics, brokers))
	return nil
}

// GetCost prints the value of the costs in the argument balancer config for the current
// placement of the cluster.
func (c *CLIRunner) GetCost(ctx context.Context, balancerConfig config.BalancerConfig) error {
	costFunc, err := balancerConfig.CostFunction()
	if err != nil {
		return err
	}
	bean, err := balancerConfig.LoadMetrics()
	if err != nil {
		return err
	}

	c.startSpinner()
	info, _, err := c.collect(ctx)
	c.stopSpinner()
	if err != nil {
		return err
	}

	c.printer("Node usage:\n%s", metrics.FormatNodeUsage(info, bean))
	c.printer("Costs:\n%s", cost.FormatCost(costFunc, info, bean))
	return nil
}

// ProposePlan collects the current placement of the cluster, searches for a better one and
// prints the result. If outputPath is set, the reassignment document of the plan is written
// there.
func (c *CLIRunner) ProposePlan(
	ctx context.Context,
	balancerConfig config.BalancerConfig,
	outputPath string,
) error {
	builder, err := balancerConfig.ToAlgorithmConfigBuilder()
	if err != nil {
		return err
	}
	bean, err := balancerConfig.LoadMetrics()
	if err != nil {
		return err
	}

	c.startSpinner()
	info, brokers, err := c.collect(ctx)
	if err != nil {
		c.stopSpinner()
		return err
	}

	algorithmConfig, err := builder.ClusterInfo(info).ClusterBean(bean).Build()
	if err != nil {
		c.stopSpinner()
		return err
	}

	log.Debugf(
		"Searching for a plan across %d topics and %d brokers for up to %s",
		len(info.TopicNames()),
		len(brokers),
		algorithmConfig.Timeout(),
	)
	plan, err := c.balancer.Offer(ctx, algorithmConfig)
	c.stopSpinner()
	if err != nil {
		return err
	}

	if plan == nil {
		c.printer("No plan found; the current placement is already the best one found")
		return nil
	}

	c.printer("Plan:\n%s", balancer.FormatPlan(plan))
	c.printer("Improvements:\n%s", balancer.FormatTrace(plan))

	for _, topic := range cluster.MovedTopics(plan.Source(), plan.Proposal()) {
		current := cluster.ToAssignments(plan.Source(), topic)
		desired := cluster.ToAssignments(plan.Proposal(), topic)

		c.printer(
			"Changes for topic %s:\n%s",
			topic,
			admin.FormatAssignmentDiffs(topic, current, desired, brokers),
		)
		if newLeaders := admin.NewLeaderPartitions(current, desired); len(newLeaders) > 0 {
			c.printer("New leaders for topic %s in partitions %v", topic, newLeaders)
		}
	}

	if outputPath != "" {
		if err := plan.Reassignment().WriteFile(outputPath); err != nil {
			return err
		}
		c.printer("Reassignment written to %s", outputPath)
	}

	return nil
}

func (c *CLIRunner) collect(
	ctx context.Context,
) (*cluster.ClusterInfo, []admin.BrokerInfo, error) {
	clusterID, err := c.adminClient.GetClusterID(ctx)
	if err != nil {
		return nil, nil, err
	}
	brokers, err := c.adminClient.GetBrokers(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	topics, err := c.adminClient.GetTopics(ctx, nil)
	if err != nil {
		return nil, nil, err
	}

	info, err := cluster.FromTopology(clusterID, brokers, topics)
	if err != nil {
		return nil, nil, err
	}
	return info, brokers, nil
}

func (c *CLIRunner) startSpinner() {
	if c.spinnerObj != nil {
		c.spinnerObj.Start()
	}
}

func (c *CLIRunner) stopSpinner() {
	if c.spinnerObj != nil && c.spinnerObj.Active() {
		c.spinnerObj.Stop()
	}
}
