package admin

import (
	"context"
)

// Client is a read-only interface for collecting the topology of a cluster.
type Client interface {
	// GetClusterID gets the ID of the cluster.
	GetClusterID(ctx context.Context) (string, error)

	// GetBrokers gets information about the brokers in the cluster. If ids is empty, all
	// brokers are returned.
	GetBrokers(ctx context.Context, ids []int) ([]BrokerInfo, error)

	// GetTopics gets information about the topics in the cluster. If names is empty, all
	// topics are returned. Internal topics are skipped unless named explicitly.
	GetTopics(ctx context.Context, names []string) ([]TopicInfo, error)

	// GetBootstrapAddrs gets the broker addresses used to reach the cluster.
	GetBootstrapAddrs() []string

	// Close closes the client.
	Close() error
}
