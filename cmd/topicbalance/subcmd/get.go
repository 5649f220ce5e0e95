package subcmd

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/segmentio/topicbalance/pkg/admin"
	"github.com/segmentio/topicbalance/pkg/cli"
	"github.com/segmentio/topicbalance/pkg/config"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get [resource type]",
	Short: "get instances of a particular type",
	Long: strings.Join(
		[]string{
			"Get instances of a particular type.",
		},
		"\n",
	),
}

type getCmdConfig struct {
	balancerConfig string
	full           bool

	shared sharedOptions
}

var getConfig getCmdConfig

func init() {
	getCmd.PersistentFlags().BoolVar(
		&getConfig.full,
		"full",
		false,
		"Show more full information for resources",
	)
	addSharedFlags(getCmd, &getConfig.shared)
	getCmd.AddCommand(
		brokersCmd(),
		clusterIDCmd(),
		costCmd(),
		topicsCmd(),
	)
	RootCmd.AddCommand(getCmd)
}

func getPreRun(cmd *cobra.Command, args []string) error {
	return getConfig.shared.validate()
}

func getCliRunnerAndCtx() (
	context.Context,
	*cli.CLIRunner,
	admin.Client,
	error,
) {
	ctx := context.Background()

	adminClient, err := getConfig.shared.getAdminClient(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	cliRunner := cli.NewCLIRunner(adminClient, log.Infof, !noSpinner)
	return ctx, cliRunner, adminClient, nil
}

func brokersCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "brokers",
		Short:   "Displays descriptions of each broker in the cluster.",
		Args:    cobra.NoArgs,
		PreRunE: getPreRun,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cliRunner, adminClient, err := getCliRunnerAndCtx()
			if err != nil {
				return err
			}
			defer adminClient.Close()

			return cliRunner.GetBrokers(ctx, getConfig.full)
		},
	}
}

func clusterIDCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "cluster-id",
		Short:   "Displays the ID of the cluster.",
		Args:    cobra.NoArgs,
		PreRunE: getPreRun,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cliRunner, adminClient, err := getCliRunnerAndCtx()
			if err != nil {
				return err
			}
			defer adminClient.Close()

			return cliRunner.GetClusterID(ctx)
		},
	}
}

func costCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cost",
		Short: "Displays the costs of a balancer config for the current placement.",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if getConfig.balancerConfig == "" {
				return errors.New("Must set balancer-config")
			}
			return getPreRun(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			balancerConfig, err := config.LoadBalancerFile(
				getConfig.balancerConfig,
				getConfig.shared.expandEnv,
			)
			if err != nil {
				return err
			}
			if err := balancerConfig.Validate(); err != nil {
				return err
			}

			ctx, cliRunner, adminClient, err := getCliRunnerAndCtx()
			if err != nil {
				return err
			}
			defer adminClient.Close()

			return cliRunner.GetCost(ctx, balancerConfig)
		},
	}
	cmd.Flags().StringVar(
		&getConfig.balancerConfig,
		"balancer-config",
		os.Getenv("TOPICBALANCE_BALANCER_CONFIG"),
		"Balancer config with the costs to evaluate",
	)
	return cmd
}

func topicsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "topics",
		Short:   "Displays information for all topics in the cluster.",
		Args:    cobra.NoArgs,
		PreRunE: getPreRun,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cliRunner, adminClient, err := getCliRunnerAndCtx()
			if err != nil {
				return err
			}
			defer adminClient.Close()

			return cliRunner.GetTopics(ctx)
		},
	}
}
