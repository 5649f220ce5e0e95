package balancer

import (
	"sync"
	"testing"

	"github.com/segmentio/topicbalance/pkg/cluster"
	"github.com/segmentio/topicbalance/pkg/cost"
	"github.com/segmentio/topicbalance/pkg/metrics"
	"github.com/stretchr/testify/require"
)

var testTopicNames = []string{
	"accounts",
	"billing",
	"clicks",
	"deliveries",
	"events",
	"feedback",
	"geo",
	"history",
	"invoices",
	"jobs",
}

// testCluster creates a cluster with the argument dimensions. Every node exposes three
// folders.
func testCluster(
	t *testing.T,
	nodes int,
	topics int,
	partitions int,
	replicationFactor int,
) *cluster.ClusterInfo {
	builder := cluster.NewBuilder().ClusterID("test-cluster")

	folders := map[int][]string{}
	for n := 0; n < nodes; n++ {
		builder.AddNode(n)
		folders[n] = []string{"/folder0", "/folder1", "/folder2"}
	}
	builder.AddFolders(folders)

	for i := 0; i < topics; i++ {
		builder.AddTopic(testTopicNames[i], partitions, replicationFactor)
	}

	info, err := builder.Build()
	require.NoError(t, err)
	return info
}

// decreasingCost returns 1 for the first allocation it sees and a strictly lower value for
// every other allocation it's called with.
type decreasingCost struct {
	sync.Mutex

	initial *cluster.ClusterInfo
	score   float64
}

var _ cost.HasClusterCost = (*decreasingCost)(nil)

func newDecreasingCost() *decreasingCost {
	return &decreasingCost{score: 1}
}

func (d *decreasingCost) ClusterCost(
	info *cluster.ClusterInfo,
	_ metrics.ClusterBean,
) cost.ClusterCost {
	d.Lock()
	defer d.Unlock()

	if d.initial == nil {
		d.initial = info
	}
	if info == d.initial {
		return cost.ClusterCost{Value: 1}
	}

	d.score *= 0.999999
	return cost.ClusterCost{Value: d.score}
}
