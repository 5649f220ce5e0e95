package subcmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/segmentio/topicbalance/pkg/config"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [balancer configs]",
	Short: "validate one or more balancer configs",
	Args:  cobra.MinimumNArgs(1),
	RunE:  validateRun,
}

type validateCmdConfig struct {
	clusterConfig string
	expandEnv     bool
	pathPrefix    string
}

var validateConfig validateCmdConfig

func init() {
	validateCmd.Flags().StringVar(
		&validateConfig.clusterConfig,
		"cluster-config",
		os.Getenv("TOPICBALANCE_CLUSTER_CONFIG"),
		"Cluster config path",
	)
	validateCmd.Flags().BoolVar(
		&validateConfig.expandEnv,
		"expand-env",
		false,
		"Expand environment in configs",
	)
	validateCmd.Flags().StringVar(
		&validateConfig.pathPrefix,
		"path-prefix",
		os.Getenv("TOPICBALANCE_PATH_PREFIX"),
		"Prefix for balancer config paths",
	)

	RootCmd.AddCommand(validateCmd)
}

func validateRun(cmd *cobra.Command, args []string) error {
	matchCount := 0

	for _, arg := range args {
		if validateConfig.pathPrefix != "" {
			arg = filepath.Join(validateConfig.pathPrefix, arg)
		}

		matches, err := filepath.Glob(arg)
		if err != nil {
			return err
		}

		for _, match := range matches {
			matchCount++
			if err := validateBalancer(match); err != nil {
				return err
			}
		}
	}

	if matchCount == 0 {
		return fmt.Errorf("No balancer configs match the provided args (%+v)", args)
	}

	log.Infof("Validated %d balancer configs", matchCount)
	return nil
}

func validateBalancer(balancerConfigPath string) error {
	clusterConfigPath := validateConfig.clusterConfig
	if clusterConfigPath == "" {
		var err error
		clusterConfigPath, err = clusterConfigForBalancer(balancerConfigPath)
		if err != nil {
			return err
		}
	}

	log.Infof(
		"Validating balancer in %s with cluster in %s",
		balancerConfigPath,
		clusterConfigPath,
	)

	balancerConfig, err := config.LoadBalancerFile(balancerConfigPath, validateConfig.expandEnv)
	if err != nil {
		return err
	}
	if err := balancerConfig.Validate(); err != nil {
		return fmt.Errorf(
			"Validation error for %s: %+v",
			balancerConfigPath,
			err,
		)
	}

	clusterConfig, err := config.LoadClusterFile(clusterConfigPath, validateConfig.expandEnv)
	if err != nil {
		return err
	}
	if err := clusterConfig.Validate(); err != nil {
		return fmt.Errorf(
			"Validation error for %s: %+v",
			clusterConfigPath,
			err,
		)
	}

	if err := config.CheckConsistency(balancerConfig, clusterConfig); err != nil {
		return fmt.Errorf(
			"Balancer in %s inconsistent with cluster in %s: %+v",
			balancerConfigPath,
			clusterConfigPath,
			err,
		)
	}

	if path := balancerConfig.MetricsPath(); path != "" {
		if _, err := balancerConfig.LoadMetrics(); err != nil {
			return fmt.Errorf("Invalid metrics snapshot %s: %+v", path, err)
		}
	}

	return nil
}
