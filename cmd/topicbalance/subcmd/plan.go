package subcmd

import (
	"fmt"

	"github.com/segmentio/topicbalance/pkg/cli"
	"github.com/segmentio/topicbalance/pkg/config"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:     "plan [balancer config]",
	Short:   "propose a better replica placement for a kafka cluster",
	Args:    cobra.ExactArgs(1),
	PreRunE: planPreRun,
	RunE:    planRun,
}

type planCmdConfig struct {
	output string

	shared sharedOptions
}

var planConfig planCmdConfig

func init() {
	planCmd.Flags().StringVarP(
		&planConfig.output,
		"output",
		"o",
		"",
		"Path to write the reassignment JSON of the plan to",
	)

	addSharedFlags(planCmd, &planConfig.shared)
	RootCmd.AddCommand(planCmd)
}

func planPreRun(cmd *cobra.Command, args []string) error {
	shared := &planConfig.shared

	if shared.clusterConfig == "" && shared.brokerAddr == "" && shared.zkAddr == "" {
		clusterConfigPath, err := clusterConfigForBalancer(args[0])
		if err != nil {
			return err
		}
		log.Debugf("Using cluster config %s", clusterConfigPath)
		shared.clusterConfig = clusterConfigPath
	}

	return shared.validate()
}

func planRun(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	balancerConfigPath := args[0]

	balancerConfig, err := config.LoadBalancerFile(
		balancerConfigPath,
		planConfig.shared.expandEnv,
	)
	if err != nil {
		return err
	}
	if err := balancerConfig.Validate(); err != nil {
		return fmt.Errorf("Validation error for %s: %+v", balancerConfigPath, err)
	}

	if planConfig.shared.clusterConfig != "" {
		clusterConfig, err := planConfig.shared.loadClusterConfig()
		if err != nil {
			return err
		}
		if err := config.CheckConsistency(balancerConfig, clusterConfig); err != nil {
			return fmt.Errorf(
				"Balancer in %s inconsistent with cluster in %s: %+v",
				balancerConfigPath,
				planConfig.shared.clusterConfig,
				err,
			)
		}
	}

	adminClient, err := planConfig.shared.getAdminClient(ctx)
	if err != nil {
		return err
	}
	defer adminClient.Close()

	log.Infof(
		"Planning %s for cluster %s in environment %s",
		balancerConfig.Meta.Name,
		balancerConfig.Meta.Cluster,
		balancerConfig.Meta.Environment,
	)

	cliRunner := cli.NewCLIRunner(adminClient, log.Infof, !noSpinner)
	return cliRunner.ProposePlan(ctx, balancerConfig, planConfig.output)
}
