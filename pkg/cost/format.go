package cost

import (
	"bytes"
	"fmt"

	"github.com/segmentio/topicbalance/pkg/cluster"
	"github.com/segmentio/topicbalance/pkg/metrics"
	"github.com/segmentio/topicbalance/pkg/util"
)

// FormatCost creates a pretty table with the value of the argument cost for an allocation.
// The members of a weighted cost get one row each, followed by the weighted total.
func FormatCost(
	clusterCost HasClusterCost,
	info *cluster.ClusterInfo,
	bean metrics.ClusterBean,
) string {
	buf := &bytes.Buffer{}

	table := util.NewTable(buf, []string{"Cost", "Weight", "Value", "Details"})

	if weighted, ok := clusterCost.(*WeightedCost); ok {
		for _, member := range weighted.Members() {
			memberCost := member.Cost.ClusterCost(info, bean)
			table.Append(
				[]string{
					member.Name,
					fmt.Sprintf("%g", member.Weight),
					fmt.Sprintf("%f", memberCost.Value),
					memberCost.Description(),
				},
			)
		}
	}

	total := clusterCost.ClusterCost(info, bean)
	details := total.Description()
	if _, ok := clusterCost.(*WeightedCost); ok {
		details = ""
	}
	table.Append([]string{"total", "", fmt.Sprintf("%f", total.Value), details})

	table.Render()
	return string(bytes.TrimRight(buf.Bytes(), "\n"))
}
