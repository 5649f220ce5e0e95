package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/segmentio/topicbalance/pkg/admin"
	"github.com/segmentio/topicbalance/pkg/balancer"
	"github.com/segmentio/topicbalance/pkg/cluster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCluster(t *testing.T) {
	os.Setenv("K2_TEST_ENV_VAR", "test-region")
	defer os.Unsetenv("K2_TEST_ENV_VAR")

	clusterConfig, err := LoadClusterFile("testdata/test-cluster/cluster.yaml", true)
	assert.NoError(t, err)

	// Empty RootDir since this will vary based on where test is run.
	clusterConfig.RootDir = ""

	assert.Equal(
		t,
		ClusterConfig{
			Meta: ClusterMeta{
				Name:        "test-cluster",
				Region:      "test-region",
				Environment: "test-env",
				Description: "Test cluster\n",
			},
			Spec: ClusterSpec{
				BootstrapAddrs: []string{
					"bootstrap-addr:9092",
				},
				ZKAddrs: []string{
					"zk-addr:2181",
				},
				ZKPrefix:  "/test-cluster-id",
				ClusterID: "test-cluster-id",
			},
		},
		clusterConfig,
	)
	assert.NoError(t, clusterConfig.Validate())

	clusterConfig, err = LoadClusterFile("testdata/test-cluster/cluster.yaml", false)
	assert.NoError(t, err)
	assert.Equal(t, "${K2_TEST_ENV_VAR}", clusterConfig.Meta.Region)

	clusterConfig, err = LoadClusterFile("testdata/test-cluster/cluster-invalid.yaml", true)
	assert.NoError(t, err)
	assert.Error(t, clusterConfig.Validate())

	_, err = LoadClusterFile("testdata/test-cluster/cluster-extra-fields.yaml", true)
	assert.Error(t, err)

	_, err = LoadClusterFile("testdata/test-cluster/missing.yaml", true)
	assert.Error(t, err)
}

func TestLoadClusterTLS(t *testing.T) {
	os.Setenv("K2_TEST_PASSWORD", "test-password")
	defer os.Unsetenv("K2_TEST_PASSWORD")

	clusterConfig, err := LoadClusterFile("testdata/test-cluster/cluster-tls.yaml", true)
	require.NoError(t, err)
	require.NoError(t, clusterConfig.Validate())

	connectorConfig := clusterConfig.ConnectorConfig()
	assert.Equal(t, "bootstrap-addr:9093", connectorConfig.BrokerAddr)
	assert.True(t, connectorConfig.TLS.Enabled)
	assert.Equal(
		t,
		filepath.Join(clusterConfig.RootDir, "certs/ca.crt"),
		connectorConfig.TLS.CACertPath,
	)
	assert.Equal(
		t,
		filepath.Join(clusterConfig.RootDir, "certs/client.crt"),
		connectorConfig.TLS.CertPath,
	)
	assert.Equal(t, "/etc/kafka/client.key", connectorConfig.TLS.KeyPath)
	assert.True(t, connectorConfig.SASL.Enabled)
	assert.Equal(t, "user", connectorConfig.SASL.Username)
	assert.Equal(t, "test-password", connectorConfig.SASL.Password)
}

func TestLoadBalancer(t *testing.T) {
	balancerConfig, err := LoadBalancerFile(
		"testdata/test-cluster/balancers/balancer.yaml",
		true,
	)
	require.NoError(t, err)
	require.NoError(t, balancerConfig.Validate())

	rootDir := balancerConfig.RootDir
	assert.Equal(t, filepath.Join(rootDir, "metrics.yaml"), balancerConfig.MetricsPath())

	balancerConfig.RootDir = ""
	allowedTopics := "(topic-a|topic-b)"

	assert.Equal(
		t,
		BalancerConfig{
			Meta: ResourceMeta{
				Name:        "spread-disk",
				Cluster:     "test-cluster",
				Region:      "test-region",
				Environment: "test-env",
				Description: "Spreads disk use across brokers\n",
			},
			Spec: BalancerSpec{
				Timeout: "10s",
				Costs: []CostConfig{
					{Name: "replica-size", Weight: 2},
					{Name: "replica-leader"},
				},
				AllowedTopics: &allowedTopics,
				MetricsFile:   "metrics.yaml",
				Tuning: map[string]string{
					"workers":         "2",
					"iteration-limit": "1000",
				},
			},
		},
		balancerConfig,
	)

	balancerConfig.RootDir = rootDir
	bean, err := balancerConfig.LoadMetrics()
	require.NoError(t, err)
	assert.Equal(
		t,
		100.0,
		bean.PartitionSize(cluster.TopicPartition{Topic: "topic-a", Partition: 0}),
	)

	assert.Equal(
		t,
		map[string]string{
			balancer.AllowedTopicsRegexKey: "(topic-a|topic-b)",
			balancer.WorkersKey:            "2",
			balancer.IterationLimitKey:     "1000",
		},
		balancerConfig.AlgorithmConfigs(),
	)

	balancerConfig, err = LoadBalancerFile(
		"testdata/test-cluster/balancers/balancer-invalid.yaml",
		true,
	)
	require.NoError(t, err)
	assert.Error(t, balancerConfig.Validate())
}

func TestLoadBalancerAllowPatterns(t *testing.T) {
	balancerConfig, err := LoadBalancerFile(
		"testdata/test-cluster/balancers/balancer-allow-nothing.yaml",
		false,
	)
	require.NoError(t, err)
	require.NoError(t, balancerConfig.Validate())

	// An empty pattern is kept and allows nothing; a null one is the same as unset.
	require.NotNil(t, balancerConfig.Spec.AllowedTopics)
	assert.Equal(t, "", *balancerConfig.Spec.AllowedTopics)
	assert.Nil(t, balancerConfig.Spec.AllowedBrokers)

	configs := balancerConfig.AlgorithmConfigs()
	topicsPattern, ok := configs[balancer.AllowedTopicsRegexKey]
	assert.True(t, ok)
	assert.Equal(t, "", topicsPattern)
	assert.NotContains(t, configs, balancer.AllowedBrokersRegexKey)

	constraints, err := balancer.NewConstraints(configs)
	require.NoError(t, err)
	assert.False(t, constraints.TopicAllowed("topic-a"))
	assert.True(t, constraints.BrokerAllowed(1))

	balancerConfig, err = LoadBalancerFile(
		"testdata/test-cluster/balancers/balancer-no-match.yaml",
		false,
	)
	require.NoError(t, err)
	assert.Nil(t, balancerConfig.Spec.AllowedTopics)
	assert.NotContains(t, balancerConfig.AlgorithmConfigs(), balancer.AllowedTopicsRegexKey)
}

func TestCheckConsistency(t *testing.T) {
	os.Setenv("K2_TEST_ENV_VAR", "test-region")
	defer os.Unsetenv("K2_TEST_ENV_VAR")

	clusterConfig, err := LoadClusterFile("testdata/test-cluster/cluster.yaml", true)
	require.NoError(t, err)
	assert.NoError(t, clusterConfig.Validate())

	balancerConfig, err := LoadBalancerFile(
		"testdata/test-cluster/balancers/balancer.yaml",
		true,
	)
	require.NoError(t, err)

	balancerConfigNoMatch, err := LoadBalancerFile(
		"testdata/test-cluster/balancers/balancer-no-match.yaml",
		true,
	)
	require.NoError(t, err)
	assert.NoError(t, balancerConfigNoMatch.Validate())

	assert.NoError(t, CheckConsistency(balancerConfig, clusterConfig))
	assert.Error(t, CheckConsistency(balancerConfigNoMatch, clusterConfig))
}

func TestClusterNewAdminClientInvalidMechanism(t *testing.T) {
	clusterConfig := ClusterConfig{
		Spec: ClusterSpec{
			BootstrapAddrs: []string{"bootstrap-addr:9092"},
			UseBrokerAdmin: true,
			SASL: SASLConfig{
				Enabled:   true,
				Mechanism: "gssapi",
				Username:  "user",
				Password:  "password",
			},
		},
	}

	_, err := clusterConfig.NewAdminClient(t.Context())
	assert.Error(t, err)

	assert.Equal(
		t,
		admin.SASLMechanism("gssapi"),
		clusterConfig.ConnectorConfig().SASL.Mechanism,
	)
}
