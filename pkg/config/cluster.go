package config

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	"github.com/segmentio/topicbalance/pkg/admin"
)

// ClusterConfig stores the details needed to collect the topology of a cluster. These
// configs should reflect the reality of what's been set up externally; nothing in here is
// ever written back to the cluster.
type ClusterConfig struct {
	Meta ClusterMeta `json:"meta"`
	Spec ClusterSpec `json:"spec"`

	// RootDir is the directory of the file the config was loaded from. Relative paths in the
	// spec are resolved against it.
	RootDir string `json:"-"`
}

// ClusterMeta contains (mostly immutable) metadata about the cluster. Inspired
// by the meta fields in Kubernetes objects.
type ClusterMeta struct {
	Name        string `json:"name"`
	Region      string `json:"region"`
	Environment string `json:"environment"`
	Description string `json:"description"`
}

// ClusterSpec contains the details necessary to communicate with a kafka cluster.
type ClusterSpec struct {
	// BootstrapAddrs is a list of one or more broker bootstrap addresses. These can use IPs
	// or DNS names.
	BootstrapAddrs []string `json:"bootstrapAddrs"`

	// ZKAddrs is a list of one or more zookeeper addresses. These can use IPs
	// or DNS names.
	ZKAddrs []string `json:"zkAddrs"`

	// ZKPrefix is the prefix under which all zk nodes for the cluster are stored. If blank,
	// these are assumed to be under the zk root.
	ZKPrefix string `json:"zkPrefix"`

	// ClusterID is the ID of the cluster. If set, it's used to validate that the cluster
	// we're communicating with is the right one. If blank, this check isn't done.
	ClusterID string `json:"clusterID"`

	// UseBrokerAdmin indicates whether we should use a broker-api-based admin (if true) or
	// the old, zk-based admin (if false).
	UseBrokerAdmin bool `json:"useBrokerAdmin"`

	// UseEC2 indicates whether broker hosts should be looked up in EC2 to fill in their
	// instance details and, for brokers without a rack, their availability zone. Only
	// supported by the zk-based admin.
	UseEC2 bool `json:"useEC2"`

	// TLS stores how we should use TLS with broker connections, if appropriate. Only
	// applies if using the broker admin.
	TLS TLSConfig `json:"tls"`

	// SASL stores how we should use SASL with broker connections, if appropriate. Only
	// applies if using the broker admin.
	SASL SASLConfig `json:"sasl"`
}

// TLSConfig stores the TLS-related configuration for a cluster.
type TLSConfig struct {
	Enabled    bool   `json:"enabled"`
	CertPath   string `json:"certPath"`
	KeyPath    string `json:"keyPath"`
	CACertPath string `json:"caCertPath"`
	ServerName string `json:"serverName"`
	SkipVerify bool   `json:"skipVerify"`
}

// SASLConfig stores the SASL-related configuration for a cluster.
type SASLConfig struct {
	Enabled   bool   `json:"enabled"`
	Mechanism string `json:"mechanism"`
	Username  string `json:"username"`
	Password  string `json:"password"`

	// SecretsManagerARN, if set, names a secret holding the username and password as a
	// JSON object.
	SecretsManagerARN string `json:"secretsManagerArn"`
}

// Validate evaluates whether the cluster config is valid.
func (c ClusterConfig) Validate() error {
	var err error

	if c.Meta.Name == "" {
		err = multierror.Append(err, errors.New("Name must be set"))
	}
	if c.Meta.Region == "" {
		err = multierror.Append(err, errors.New("Region must be set"))
	}
	if c.Meta.Environment == "" {
		err = multierror.Append(err, errors.New("Environment must be set"))
	}

	if len(c.Spec.BootstrapAddrs) == 0 {
		err = multierror.Append(
			err,
			errors.New("At least one bootstrap broker address must be set"),
		)
	}
	if len(c.Spec.ZKAddrs) == 0 && !c.Spec.UseBrokerAdmin {
		err = multierror.Append(err, errors.New("At least one zookeeper address must be set"))
	}

	if c.Spec.UseBrokerAdmin {
		if c.Spec.UseEC2 {
			err = multierror.Append(
				err,
				errors.New("EC2 lookups are only supported by the zk-based admin"),
			)
		}
	} else {
		if c.Spec.TLS.Enabled || c.Spec.SASL.Enabled {
			err = multierror.Append(
				err,
				errors.New("TLS and SASL are only supported with the broker admin"),
			)
		}
	}

	if c.Spec.TLS.Enabled {
		if (c.Spec.TLS.CertPath == "") != (c.Spec.TLS.KeyPath == "") {
			err = multierror.Append(
				err,
				errors.New("TLS cert and key paths must be set together"),
			)
		}
	}

	if c.Spec.SASL.Enabled {
		mechanism, mechanismErr := admin.SASLNameToMechanism(c.Spec.SASL.Mechanism)
		if mechanismErr != nil {
			err = multierror.Append(err, mechanismErr)
		}

		hasCredentials := c.Spec.SASL.Username != "" || c.Spec.SASL.Password != ""

		switch {
		case mechanism == admin.SASLMechanismAWSMSKIAM:
			if hasCredentials || c.Spec.SASL.SecretsManagerARN != "" {
				err = multierror.Append(
					err,
					errors.New("Credentials are not used with the AWS-MSK-IAM mechanism"),
				)
			}
		case hasCredentials && c.Spec.SASL.SecretsManagerARN != "":
			err = multierror.Append(
				err,
				errors.New("Cannot set both SASL credentials and a secrets manager ARN"),
			)
		case !hasCredentials && c.Spec.SASL.SecretsManagerARN == "":
			err = multierror.Append(
				err,
				errors.New("SASL credentials or a secrets manager ARN must be set"),
			)
		}
	}

	return err
}

// ConnectorConfig returns the connection settings for the first bootstrap broker, with
// relative certificate paths resolved against the config directory.
func (c ClusterConfig) ConnectorConfig() admin.ConnectorConfig {
	var brokerAddr string
	if len(c.Spec.BootstrapAddrs) > 0 {
		brokerAddr = c.Spec.BootstrapAddrs[0]
	}

	return admin.ConnectorConfig{
		BrokerAddr: brokerAddr,
		TLS: admin.TLSConfig{
			Enabled:    c.Spec.TLS.Enabled,
			CertPath:   c.absPath(c.Spec.TLS.CertPath),
			KeyPath:    c.absPath(c.Spec.TLS.KeyPath),
			CACertPath: c.absPath(c.Spec.TLS.CACertPath),
			ServerName: c.Spec.TLS.ServerName,
			SkipVerify: c.Spec.TLS.SkipVerify,
		},
		SASL: admin.SASLConfig{
			Enabled:           c.Spec.SASL.Enabled,
			Mechanism:         admin.SASLMechanism(c.Spec.SASL.Mechanism),
			Username:          c.Spec.SASL.Username,
			Password:          c.Spec.SASL.Password,
			SecretsManagerARN: c.Spec.SASL.SecretsManagerARN,
		},
	}
}

// NewAdminClient returns a new admin client using the parameters in the current cluster config.
func (c ClusterConfig) NewAdminClient(ctx context.Context) (admin.Client, error) {
	if c.Spec.UseBrokerAdmin {
		connectorConfig := c.ConnectorConfig()
		if connectorConfig.SASL.Enabled {
			mechanism, err := admin.SASLNameToMechanism(c.Spec.SASL.Mechanism)
			if err != nil {
				return nil, err
			}
			connectorConfig.SASL.Mechanism = mechanism
		}

		return admin.NewBrokerAdminClient(
			ctx,
			admin.BrokerAdminClientConfig{
				ConnectorConfig:   connectorConfig,
				ExpectedClusterID: c.Spec.ClusterID,
			},
		)
	}

	zkConfig := admin.ZKAdminClientConfig{
		ZKAddrs:           c.Spec.ZKAddrs,
		ZKPrefix:          c.Spec.ZKPrefix,
		BootstrapAddrs:    c.Spec.BootstrapAddrs,
		ExpectedClusterID: c.Spec.ClusterID,
	}
	if c.Spec.UseEC2 {
		ec2API, err := admin.NewEC2Client(ctx)
		if err != nil {
			return nil, fmt.Errorf("Error creating EC2 client: %+v", err)
		}
		zkConfig.EC2 = ec2API
	}

	return admin.NewZKAdminClient(ctx, zkConfig)
}

func (c ClusterConfig) absPath(path string) string {
	if path == "" || filepath.IsAbs(path) || c.RootDir == "" {
		return path
	}
	return filepath.Join(c.RootDir, path)
}
