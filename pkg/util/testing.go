package util

import (
	"fmt"
	"math/rand"
	"os"
)

// TestZKAddr returns a zookeeper address for testing purposes.
func TestZKAddr() string {
	testZkAddr, ok := os.LookupEnv("TOPICBALANCE_TEST_ZK_ADDR")
	if !ok {
		return "localhost:2181"
	}

	return testZkAddr
}

// TestKafkaAddr returns a kafka bootstrap address for testing purposes.
func TestKafkaAddr() string {
	testKafkaAddr, ok := os.LookupEnv("TOPICBALANCE_TEST_KAFKA_ADDR")
	if !ok {
		return "localhost:9092"
	}

	return testKafkaAddr
}

// CanTestZK returns whether a live zookeeper is available for tests.
func CanTestZK() bool {
	value, ok := os.LookupEnv("TOPICBALANCE_TEST_ZK_ADDR")
	return ok && value != ""
}

// CanTestBrokerAdmin returns whether we can test the broker-only admin client against a
// live cluster.
func CanTestBrokerAdmin() bool {
	value, ok := os.LookupEnv("TOPICBALANCE_TEST_BROKER_ADMIN")
	return ok && value != ""
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")

// RandomString returns a random string with the argument prefix and random suffix length.
func RandomString(prefix string, length int) string {
	b := make([]rune, length)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return fmt.Sprintf("%s-%s", prefix, string(b))
}
