package admin

import (
	"context"
	"fmt"
	"net"
	"sort"
	"strconv"

	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	// The maximum number of per-broker config requests in flight
	maxBrokerConfigRequests = 8

	// Partition leaders and replicas on brokers missing from the metadata response
	unknownBrokerID = -1
)

// BrokerAdminClient is a Client implementation that only uses broker APIs, without any
// zookeeper access.
type BrokerAdminClient struct {
	config BrokerAdminClientConfig
	client *kafka.Client
}

var _ Client = (*BrokerAdminClient)(nil)

// BrokerAdminClientConfig contains the fields needed to construct a BrokerAdminClient.
type BrokerAdminClientConfig struct {
	ConnectorConfig
	ExpectedClusterID string
}

// NewBrokerAdminClient constructs a new BrokerAdminClient instance.
func NewBrokerAdminClient(
	ctx context.Context,
	config BrokerAdminClientConfig,
) (*BrokerAdminClient, error) {
	connector, err := NewConnector(ctx, config.ConnectorConfig)
	if err != nil {
		return nil, err
	}

	adminClient := &BrokerAdminClient{
		config: config,
		client: connector.KafkaClient,
	}

	if config.ExpectedClusterID != "" {
		log.Info("Checking cluster ID against version in cluster")
		clusterID, err := adminClient.GetClusterID(ctx)
		if err != nil {
			return nil, err
		}
		if clusterID != config.ExpectedClusterID {
			return nil, fmt.Errorf(
				"ID in cluster (%s) does not match expected one (%s)",
				clusterID,
				config.ExpectedClusterID,
			)
		}
	}

	return adminClient, nil
}

// GetClusterID gets the ID of the cluster.
func (c *BrokerAdminClient) GetClusterID(ctx context.Context) (string, error) {
	resp, err := c.client.Metadata(ctx, &kafka.MetadataRequest{Topics: []string{}})
	if err != nil {
		return "", err
	}
	return resp.ClusterID, nil
}

// GetBrokers gets information about the brokers in the cluster, including the non-default
// entries of their configs and their data folders.
func (c *BrokerAdminClient) GetBrokers(ctx context.Context, ids []int) ([]BrokerInfo, error) {
	metadataResp, err := c.client.Metadata(ctx, &kafka.MetadataRequest{Topics: []string{}})
	if err != nil {
		return nil, err
	}

	idsMap := map[int]struct{}{}
	for _, id := range ids {
		idsMap[id] = struct{}{}
	}

	brokerInfos := []BrokerInfo{}

	for _, broker := range metadataResp.Brokers {
		if _, ok := idsMap[broker.ID]; !ok && len(idsMap) > 0 {
			continue
		}

		brokerInfos = append(
			brokerInfos,
			BrokerInfo{
				ID:   broker.ID,
				Host: broker.Host,
				Port: int32(broker.Port),
				Rack: broker.Rack,
			},
		)
	}
	sort.Slice(brokerInfos, func(a, b int) bool {
		return brokerInfos[a].ID < brokerInfos[b].ID
	})

	// Broker configs can only be described by the broker that owns them
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(maxBrokerConfigRequests)

	for b := range brokerInfos {
		index := b
		group.Go(func() error {
			config, err := c.describeConfigs(
				groupCtx,
				kafka.TCP(brokerInfos[index].Addr()),
				kafka.ResourceTypeBroker,
				strconv.Itoa(brokerInfos[index].ID),
				true,
			)
			if err != nil {
				return fmt.Errorf(
					"Error getting config for broker %d: %+v",
					brokerInfos[index].ID,
					err,
				)
			}

			brokerInfos[index].Config = config
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return brokerInfos, nil
}

// GetBootstrapAddrs returns the address used to reach the cluster.
func (c *BrokerAdminClient) GetBootstrapAddrs() []string {
	return []string{c.config.BrokerAddr}
}

// GetTopics gets the partitions and the non-default config entries of the argument topics,
// or of all non-internal topics if names is empty.
func (c *BrokerAdminClient) GetTopics(
	ctx context.Context,
	names []string,
) ([]TopicInfo, error) {
	var topicNames []string

	if len(names) > 0 {
		topicNames = names
	}

	metadataResp, err := c.client.Metadata(
		ctx,
		&kafka.MetadataRequest{
			Topics: topicNames,
		},
	)
	if err != nil {
		return nil, err
	}

	topicInfos := []TopicInfo{}

	for _, topic := range metadataResp.Topics {
		if topic.Error != nil {
			return nil, fmt.Errorf("Error getting metadata for topic %s: %+v", topic.Name, topic.Error)
		}
		if topic.Internal && len(names) == 0 {
			continue
		}

		partitionInfos := []PartitionInfo{}

		for _, partition := range topic.Partitions {
			replicas := brokerIDs(partition.Replicas)
			if len(replicas) < len(partition.Replicas) {
				log.Warnf(
					"Partition %d of topic %s has %d replicas on unknown brokers",
					partition.ID,
					topic.Name,
					len(partition.Replicas)-len(replicas),
				)
			}

			leader := unknownBrokerID
			if partition.Leader.Host != "" {
				leader = partition.Leader.ID
			}

			partitionInfos = append(
				partitionInfos,
				PartitionInfo{
					Topic:    topic.Name,
					ID:       partition.ID,
					Leader:   leader,
					Replicas: replicas,
					ISR:      brokerIDs(partition.Isr),
				},
			)
		}

		config, err := c.describeConfigs(
			ctx,
			nil,
			kafka.ResourceTypeTopic,
			topic.Name,
			false,
		)
		if err != nil {
			return nil, fmt.Errorf("Error getting config for topic %s: %+v", topic.Name, err)
		}

		topicInfos = append(
			topicInfos,
			TopicInfo{
				Name:       topic.Name,
				Config:     config,
				Partitions: partitionInfos,
			},
		)
	}

	SortTopics(topicInfos)
	return topicInfos, nil
}

// Close closes the client.
func (c *BrokerAdminClient) Close() error {
	if transport, ok := c.client.Transport.(*kafka.Transport); ok {
		transport.CloseIdleConnections()
	}
	return nil
}

// describeConfigs returns the non-default config entries of a single resource. The data
// folder keys are always kept when withLogDirs is set, since the defaults still describe
// where partitions live.
func (c *BrokerAdminClient) describeConfigs(
	ctx context.Context,
	addr net.Addr,
	resourceType kafka.ResourceType,
	resourceName string,
	withLogDirs bool,
) (map[string]string, error) {
	resp, err := c.client.DescribeConfigs(
		ctx,
		&kafka.DescribeConfigsRequest{
			Addr: addr,
			Resources: []kafka.DescribeConfigRequestResource{
				{
					ResourceType: resourceType,
					ResourceName: resourceName,
				},
			},
		},
	)
	if err != nil {
		return nil, err
	}

	config := map[string]string{}

	for _, resource := range resp.Resources {
		if resource.Error != nil {
			return nil, resource.Error
		}

		for _, entry := range resource.ConfigEntries {
			isLogDir := entry.ConfigName == LogDirsKey || entry.ConfigName == LogDirKey

			if entry.IsDefault && !(withLogDirs && isLogDir) {
				continue
			}
			if entry.IsSensitive {
				continue
			}
			config[entry.ConfigName] = entry.ConfigValue
		}
	}

	return config, nil
}

func brokerIDs(brokers []kafka.Broker) []int {
	ids := []int{}
	for _, broker := range brokers {
		if broker.Host == "" {
			continue
		}
		ids = append(ids, broker.ID)
	}
	return ids
}
