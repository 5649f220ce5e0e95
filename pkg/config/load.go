package config

import (
	"os"
	"path/filepath"

	"github.com/segmentio/topicbalance/pkg/util"
)

// LoadClusterFile loads a ClusterConfig from a path to a YAML file.
func LoadClusterFile(path string, expandEnv bool) (ClusterConfig, error) {
	contents, rootDir, err := readConfigFile(path, expandEnv)
	if err != nil {
		return ClusterConfig{}, err
	}

	config, err := LoadClusterBytes(contents)
	if err != nil {
		return ClusterConfig{}, err
	}

	config.RootDir = rootDir
	return config, nil
}

// LoadClusterBytes loads a ClusterConfig from YAML bytes.
func LoadClusterBytes(contents []byte) (ClusterConfig, error) {
	config := ClusterConfig{}
	err := util.UnmarshalYAMLStrict(contents, &config)
	return config, err
}

// LoadBalancerFile loads a BalancerConfig from a path to a YAML file.
func LoadBalancerFile(path string, expandEnv bool) (BalancerConfig, error) {
	contents, rootDir, err := readConfigFile(path, expandEnv)
	if err != nil {
		return BalancerConfig{}, err
	}

	config, err := LoadBalancerBytes(contents)
	if err != nil {
		return BalancerConfig{}, err
	}

	config.RootDir = rootDir
	return config, nil
}

// LoadBalancerBytes loads a BalancerConfig from YAML bytes.
func LoadBalancerBytes(contents []byte) (BalancerConfig, error) {
	config := BalancerConfig{}
	err := util.UnmarshalYAMLStrict(contents, &config)
	return config, err
}

func readConfigFile(path string, expandEnv bool) ([]byte, string, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}

	if expandEnv {
		contents = []byte(os.ExpandEnv(string(contents)))
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, "", err
	}

	return contents, filepath.Dir(absPath), nil
}
