package metrics

import (
	"bytes"
	"fmt"

	"github.com/segmentio/topicbalance/pkg/cluster"
	"github.com/segmentio/topicbalance/pkg/util"
)

// FormatNodeUsage creates a pretty table with the replicas, leaders and bytes hosted by each
// node of the argument allocation. Sizes come from the bean; nodes without a capacity
// show no usage.
func FormatNodeUsage(info *cluster.ClusterInfo, bean ClusterBean) string {
	buf := &bytes.Buffer{}

	table := util.NewTable(
		buf,
		[]string{"Node", "Rack", "Replicas", "Leaders", "Size", "Capacity", "Use"},
	)

	for _, node := range info.Nodes() {
		var leaders int
		var size float64

		replicas := info.ReplicasOn(node.ID)
		for _, replica := range replicas {
			if replica.Leader {
				leaders++
			}
			size += bean.PartitionSize(replica.TopicPartition)
		}

		capacityStr := "-"
		useStr := "-"
		if capacity, ok := bean.NodeMetric(node.ID, CapacityMetric); ok && capacity > 0 {
			capacityStr = util.PrettyBytes(int64(capacity))
			useStr = fmt.Sprintf("%.1f%%", 100*size/capacity)
		}

		table.Append(
			[]string{
				fmt.Sprintf("%d", node.ID),
				node.Rack,
				fmt.Sprintf("%d", len(replicas)),
				fmt.Sprintf("%d", leaders),
				util.PrettyBytes(int64(size)),
				capacityStr,
				useStr,
			},
		)
	}

	table.Render()
	return string(bytes.TrimRight(buf.Bytes(), "\n"))
}
