package balancer

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/segmentio/topicbalance/pkg/cluster"
)

// Constraints decides which replica moves are legal. Topics and brokers are matched against
// optional allow patterns; a pattern that isn't configured allows everything, and a pattern
// configured to the empty string allows nothing.
type Constraints struct {
	topics  *regexp.Regexp
	brokers *regexp.Regexp
}

// NewConstraints compiles the allow patterns in the argument configs. Patterns must match
// whole names, so "a" allows topic "a" but not topic "ab".
func NewConstraints(configs map[string]string) (Constraints, error) {
	constraints := Constraints{}

	var err error
	if pattern, ok := configs[AllowedTopicsRegexKey]; ok {
		constraints.topics, err = compileWhole(AllowedTopicsRegexKey, pattern)
		if err != nil {
			return Constraints{}, err
		}
	}
	if pattern, ok := configs[AllowedBrokersRegexKey]; ok {
		constraints.brokers, err = compileWhole(AllowedBrokersRegexKey, pattern)
		if err != nil {
			return Constraints{}, err
		}
	}

	return constraints, nil
}

// An empty pattern only matches the empty string, which is neither a topic name nor a broker
// ID, so it allows nothing.
func compileWhole(key string, pattern string) (*regexp.Regexp, error) {
	compiled, err := regexp.Compile(fmt.Sprintf("^(?:%s)$", pattern))
	if err != nil {
		return nil, fmt.Errorf("Invalid pattern %q for %s: %+v", pattern, key, err)
	}
	return compiled, nil
}

// TopicAllowed returns whether replicas of the argument topic may be moved.
func (c Constraints) TopicAllowed(topic string) bool {
	return c.topics == nil || c.topics.MatchString(topic)
}

// BrokerAllowed returns whether replicas may be moved from or to the argument broker.
func (c Constraints) BrokerAllowed(nodeID int) bool {
	return c.brokers == nil || c.brokers.MatchString(strconv.Itoa(nodeID))
}

// IsMoveLegal returns whether the argument replica may be moved to the destination node. This
// also applies to moves between folders of the same node.
func (c Constraints) IsMoveLegal(replica cluster.Replica, destination int) bool {
	return c.TopicAllowed(replica.Topic) &&
		c.BrokerAllowed(replica.NodeID) &&
		c.BrokerAllowed(destination)
}

// IsLeaderTransferLegal returns whether leadership may be moved from one replica of a
// partition to another.
func (c Constraints) IsLeaderTransferLegal(from cluster.Replica, to cluster.Replica) bool {
	return from.TopicPartition == to.TopicPartition &&
		c.TopicAllowed(from.Topic) &&
		c.BrokerAllowed(from.NodeID) &&
		c.BrokerAllowed(to.NodeID)
}
