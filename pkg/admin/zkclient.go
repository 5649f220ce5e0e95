package admin

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	szk "github.com/samuel/go-zookeeper/zk"
	"github.com/segmentio/topicbalance/pkg/zk"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	// Various paths in zookeeper
	brokersPath       = "/brokers/ids"
	topicsPath        = "/brokers/topics"
	clusterIDPath     = "/cluster/id"
	brokerConfigsPath = "/config/brokers"
	topicConfigsPath  = "/config/topics"

	// The maximum number of topics or partitions to fetch in parallel
	maxPoolSize = 20

	zkConnections = 10
)

var (
	// ErrTopicDoesNotExist is returned when a topic that should exist does not.
	ErrTopicDoesNotExist = errors.New("Topic does not exist")
)

// ZKAdminClient is a Client implementation that reads the cluster topology from zookeeper.
// Zookeeper doesn't know about static broker configs, so brokers collected this way don't
// expose their data folders.
type ZKAdminClient struct {
	zkClient       zk.Client
	zkPrefix       string
	bootstrapAddrs []string
	ec2API         EC2DescribeInstancesAPI
}

var _ Client = (*ZKAdminClient)(nil)

// ZKAdminClientConfig contains all of the parameters necessary to create a ZKAdminClient.
type ZKAdminClientConfig struct {
	ZKAddrs           []string
	ZKPrefix          string
	BootstrapAddrs    []string
	ExpectedClusterID string

	// EC2, if set, is used to add instance details to the collected brokers
	EC2 EC2DescribeInstancesAPI
}

// NewZKAdminClient creates and returns a new ZKAdminClient instance.
func NewZKAdminClient(
	ctx context.Context,
	config ZKAdminClientConfig,
) (*ZKAdminClient, error) {
	zkClient, err := zk.NewPooledClient(
		config.ZKAddrs,
		time.Minute,
		&zk.DebugLogger{},
		zkConnections,
	)
	if err != nil {
		return nil, err
	}

	client := newZKAdminClient(zkClient, config)

	if config.ExpectedClusterID != "" {
		log.Info("Checking cluster ID against version in cluster")
		clusterID, err := client.GetClusterID(ctx)
		if err != nil {
			client.Close()
			return nil, err
		}
		if clusterID != config.ExpectedClusterID {
			client.Close()
			return nil, fmt.Errorf(
				"ID in cluster (%s) does not match expected one (%s)",
				clusterID,
				config.ExpectedClusterID,
			)
		}
	}

	if len(client.bootstrapAddrs) == 0 {
		log.Debug("No bootstrap addresses provided, getting one from zookeeper")
		ids, err := client.getBrokerIDs(ctx)
		if err != nil {
			client.Close()
			return nil, err
		}
		if len(ids) == 0 {
			client.Close()
			return nil, errors.New("No brokers are registered in zookeeper")
		}

		brokers, err := client.GetBrokers(ctx, ids[:1])
		if err != nil {
			client.Close()
			return nil, err
		}
		client.bootstrapAddrs = []string{brokers[0].Addr()}
	}

	return client, nil
}

func newZKAdminClient(zkClient zk.Client, config ZKAdminClientConfig) *ZKAdminClient {
	zkPrefix := config.ZKPrefix

	// Normalize prefix
	if zkPrefix != "" {
		if !strings.HasPrefix(zkPrefix, "/") {
			zkPrefix = fmt.Sprintf("/%s", zkPrefix)
		}
		zkPrefix = strings.TrimSuffix(zkPrefix, "/")
	}

	return &ZKAdminClient{
		zkClient:       zkClient,
		zkPrefix:       zkPrefix,
		bootstrapAddrs: append([]string{}, config.BootstrapAddrs...),
		ec2API:         config.EC2,
	}
}

// GetClusterID gets the cluster ID from zookeeper. This ID is generated when the cluster is
// created and should be stable over the life of the cluster.
func (c *ZKAdminClient) GetClusterID(ctx context.Context) (string, error) {
	zkClusterIDObj := zkClusterID{}
	_, err := c.zkClient.GetJSON(ctx, c.zNode(clusterIDPath), &zkClusterIDObj)
	if err != nil {
		return "", err
	}

	return zkClusterIDObj.ID, nil
}

// GetBrokers gets information on one or more cluster brokers from zookeeper.
// If the argument ids is unset, then it fetches all brokers.
func (c *ZKAdminClient) GetBrokers(ctx context.Context, ids []int) ([]BrokerInfo, error) {
	brokerIDs := ids

	if len(brokerIDs) == 0 {
		var err error
		brokerIDs, err = c.getBrokerIDs(ctx)
		if err != nil {
			return nil, err
		}
	}

	brokers := []BrokerInfo{}

	for _, id := range brokerIDs {
		broker, err := c.getBroker(ctx, id)
		if err != nil {
			return nil, err
		}
		brokers = append(brokers, broker)
	}

	if err := EnrichWithInstances(ctx, c.ec2API, brokers); err != nil {
		log.Debugf("Could not get instance info from EC2: %+v", err)
	}

	sort.Slice(brokers, func(i, j int) bool {
		return brokers[i].ID < brokers[j].ID
	})

	return brokers, nil
}

// GetBootstrapAddrs returns the broker addresses used to reach the cluster.
func (c *ZKAdminClient) GetBootstrapAddrs() []string {
	return c.bootstrapAddrs
}

// GetTopics gets information about one or more cluster topics from zookeeper. If the
// argument names is unset, then it fetches all topics.
func (c *ZKAdminClient) GetTopics(ctx context.Context, names []string) ([]TopicInfo, error) {
	topicNames := names

	if len(topicNames) == 0 {
		zPath := c.zNode(topicsPath)

		var err error
		topicNames, _, err = c.zkClient.Children(ctx, zPath)
		if err != nil {
			return nil, fmt.Errorf("Error getting children at path %s: %+v", zPath, err)
		}
	}

	log.Debugf("Looking up %d topic names: %+v", len(topicNames), topicNames)

	topics := make([]TopicInfo, len(topicNames))

	// This operation can be slow if there are a lot of topics, distribute it out
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(maxPoolSize)

	for t, name := range topicNames {
		index := t
		topicName := name

		group.Go(func() error {
			topic, err := c.getTopic(groupCtx, topicName)
			if err != nil {
				if errors.Is(err, szk.ErrNoNode) {
					return fmt.Errorf("%w: %s", ErrTopicDoesNotExist, topicName)
				}
				return err
			}
			topics[index] = topic
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	SortTopics(topics)
	return topics, nil
}

// Close closes the underlying zookeeper connections.
func (c *ZKAdminClient) Close() error {
	return c.zkClient.Close()
}

func (c *ZKAdminClient) getBrokerIDs(ctx context.Context) ([]int, error) {
	zPath := c.zNode(brokersPath)

	brokerIDStrs, _, err := c.zkClient.Children(ctx, zPath)
	if err != nil {
		return nil, fmt.Errorf("Error getting children at path %s: %+v", zPath, err)
	}

	brokerIDs := []int{}

	for _, idStr := range brokerIDStrs {
		id, err := strconv.ParseInt(idStr, 10, 32)
		if err != nil {
			return nil, err
		}
		brokerIDs = append(brokerIDs, int(id))
	}
	sort.Ints(brokerIDs)

	return brokerIDs, nil
}

func (c *ZKAdminClient) getBroker(ctx context.Context, id int) (BrokerInfo, error) {
	zkBrokerInfo := zkBrokerInfo{}
	_, err := c.zkClient.GetJSON(
		ctx,
		c.zNode(brokersPath, strconv.Itoa(id)),
		&zkBrokerInfo,
	)
	if err != nil {
		return BrokerInfo{}, err
	}

	zBrokerConfigPath := c.zNode(brokerConfigsPath, strconv.Itoa(id))
	zkBrokerConfig := zkBrokerConfig{}

	exists, _, err := c.zkClient.Exists(ctx, zBrokerConfigPath)
	if err != nil {
		return BrokerInfo{}, err
	}
	if exists {
		if _, err := c.zkClient.GetJSON(ctx, zBrokerConfigPath, &zkBrokerConfig); err != nil {
			return BrokerInfo{}, err
		}
	}

	brokerInfo := BrokerInfo{
		ID:     id,
		Host:   zkBrokerInfo.Host,
		Port:   zkBrokerInfo.Port,
		Rack:   zkBrokerInfo.Rack,
		Config: zkBrokerConfig.Config,
	}
	if brokerInfo.Config == nil {
		brokerInfo.Config = map[string]string{}
	}

	if zkBrokerInfo.TimestampStr != "" {
		epochMillis, err := strconv.ParseInt(zkBrokerInfo.TimestampStr, 10, 64)
		if err != nil {
			return BrokerInfo{}, err
		}
		brokerInfo.Timestamp = time.UnixMilli(epochMillis)
	}

	return brokerInfo, nil
}

func (c *ZKAdminClient) getTopic(ctx context.Context, name string) (TopicInfo, error) {
	log.Debugf("Getting info for topic %s", name)

	topicInfo := TopicInfo{
		Name:       name,
		Config:     map[string]string{},
		Partitions: []PartitionInfo{},
	}

	zkTopicInfo := zkTopicInfo{}
	if _, err := c.zkClient.GetJSON(ctx, c.zNode(topicsPath, name), &zkTopicInfo); err != nil {
		return topicInfo, err
	}

	zTopicConfigPath := c.zNode(topicConfigsPath, name)
	exists, _, err := c.zkClient.Exists(ctx, zTopicConfigPath)
	if err != nil {
		return topicInfo, err
	}
	if exists {
		zkTopicConfig := zkTopicConfig{}
		if _, err := c.zkClient.GetJSON(ctx, zTopicConfigPath, &zkTopicConfig); err != nil {
			return topicInfo, err
		}
		if zkTopicConfig.Config != nil {
			topicInfo.Config = zkTopicConfig.Config
		}
	}

	for partitionIDStr, replicas := range zkTopicInfo.Partitions {
		partitionID, err := strconv.ParseInt(partitionIDStr, 10, 32)
		if err != nil {
			return topicInfo, err
		}

		partition, err := c.getPartition(ctx, name, int(partitionID), replicas)
		if err != nil {
			return topicInfo, err
		}
		topicInfo.Partitions = append(topicInfo.Partitions, partition)
	}

	sort.Slice(topicInfo.Partitions, func(i, j int) bool {
		return topicInfo.Partitions[i].ID < topicInfo.Partitions[j].ID
	})

	return topicInfo, nil
}

func (c *ZKAdminClient) getPartition(
	ctx context.Context,
	topicName string,
	id int,
	replicas []int,
) (PartitionInfo, error) {
	partitionInfo := PartitionInfo{
		Topic:    topicName,
		ID:       id,
		Leader:   unknownBrokerID,
		Replicas: replicas,
	}

	zkPartitionState := zkPartitionState{}
	_, err := c.zkClient.GetJSON(
		ctx,
		c.zNode(topicsPath, topicName, "partitions", strconv.Itoa(id), "state"),
		&zkPartitionState,
	)
	if errors.Is(err, szk.ErrNoNode) {
		// Partition was created but hasn't been assigned a leader yet
		return partitionInfo, nil
	} else if err != nil {
		return partitionInfo, err
	}

	partitionInfo.Leader = zkPartitionState.Leader
	partitionInfo.ISR = zkPartitionState.ISR

	return partitionInfo, nil
}

func (c *ZKAdminClient) zNode(elements ...string) string {
	joinedElements := filepath.Join(elements...)
	return filepath.Join("/", c.zkPrefix, joinedElements)
}
