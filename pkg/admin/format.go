package admin

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/segmentio/topicbalance/pkg/util"
)

const maxTopicNameWidth = 60

// FormatBrokers creates a pretty table from a list of brokers.
func FormatBrokers(brokers []BrokerInfo, full bool) string {
	buf := &bytes.Buffer{}

	var hasInstances bool
	for _, broker := range brokers {
		if broker.InstanceID != "" {
			hasInstances = true
			break
		}
	}

	headers := []string{
		"ID",
		"Host",
		"Port",
	}
	if hasInstances {
		headers = append(headers, "Instance", "Instance\nType")
	}
	headers = append(headers, "Rack", "Log Dirs", "Timestamp")
	if full {
		headers = append(headers, "Config")
	}

	table := util.NewTable(buf, headers)

	for _, broker := range brokers {
		row := []string{
			fmt.Sprintf("%d", broker.ID),
			broker.Host,
			fmt.Sprintf("%d", broker.Port),
		}

		if hasInstances {
			row = append(row, broker.InstanceID, broker.InstanceType)
		}

		var timestamp string
		if !broker.Timestamp.IsZero() {
			timestamp = broker.Timestamp.UTC().Format(time.RFC3339)
		}

		row = append(
			row,
			broker.Rack,
			strings.Join(broker.LogDirs(), "\n"),
			timestamp,
		)

		if full {
			row = append(row, prettyConfig(broker.Config))
		}

		table.Append(row)
	}

	table.Render()
	return string(bytes.TrimRight(buf.Bytes(), "\n"))
}

// FormatClusterID creates a pretty table for the cluster ID.
func FormatClusterID(clusterID string) string {
	buf := &bytes.Buffer{}
	table := util.NewTable(buf, []string{"Kafka Cluster ID"})
	table.Append([]string{clusterID})
	table.Render()
	return string(bytes.TrimRight(buf.Bytes(), "\n"))
}

// FormatTopics creates a pretty table that lists the details of the argument topics,
// including how many replicas and leaders each of them has per rack.
func FormatTopics(topics []TopicInfo, brokers []BrokerInfo) string {
	buf := &bytes.Buffer{}

	table := util.NewTable(
		buf,
		[]string{
			"Name",
			"Partitions",
			"Replication",
			"Replicas Per Rack",
			"Leaders Per Rack",
		},
	)

	brokerRacks := BrokerRacks(brokers)
	racks := DistinctRacks(brokers)

	for _, topic := range topics {
		name, _ := util.TruncateStringMiddle(topic.Name, maxTopicNameWidth, 10)

		replicasPerRack := map[string]int{}
		leadersPerRack := map[string]int{}

		for _, partition := range topic.Partitions {
			for _, replica := range partition.Replicas {
				replicasPerRack[brokerRacks[replica]]++
			}
			if partition.Leader != unknownBrokerID {
				leadersPerRack[brokerRacks[partition.Leader]]++
			}
		}

		table.Append(
			[]string{
				name,
				fmt.Sprintf("%d", len(topic.Partitions)),
				fmt.Sprintf("%d", topic.MaxReplication()),
				rackCountsStr(racks, replicasPerRack),
				rackCountsStr(racks, leadersPerRack),
			},
		)
	}

	table.Render()
	return string(bytes.TrimRight(buf.Bytes(), "\n"))
}

// FormatAssignmentDiffs generates a pretty table that shows the before and after states of
// the partitions of a topic that a plan moves.
func FormatAssignmentDiffs(
	topic string,
	curr []PartitionAssignment,
	desired []PartitionAssignment,
	brokers []BrokerInfo,
) string {
	buf := &bytes.Buffer{}

	table := util.NewTable(
		buf,
		[]string{
			"Topic",
			"Partition",
			"Curr\nReplicas",
			"Proposed\nReplicas",
			"Diff?",
			"New\nLeader?",
		},
	)

	brokerRacks := BrokerRacks(brokers)
	maxWidth := maxValueToMaxWidth(maxBrokerID(brokers))
	name, _ := util.TruncateStringMiddle(topic, maxTopicNameWidth, 10)

	for _, diff := range AssignmentDiffs(curr, desired) {
		var diffStr string
		var newLeaderStr string

		if diff.Changed() {
			diffStr = "Y"
		}
		if diff.NewLeader() {
			newLeaderStr = "Y"
		}

		table.Append(
			[]string{
				name,
				fmt.Sprintf("%d", diff.PartitionID),
				assignmentRacksStr(diff.Old, brokerRacks, maxWidth),
				assignmentRacksDiffStr(diff.Old, diff.New, brokerRacks, maxWidth),
				diffStr,
				newLeaderStr,
			},
		)
	}

	table.Render()
	return string(bytes.TrimRight(buf.Bytes(), "\n"))
}

func prettyConfig(config map[string]string) string {
	rows := []string{}

	for key, value := range config {
		rows = append(rows, fmt.Sprintf("%s=%s", key, value))
	}
	sort.Strings(rows)

	return strings.Join(rows, "\n")
}

// rackCountsStr lists the counts of every argument rack, including empty ones, followed by
// any other rack found in counts.
func rackCountsStr(racks []string, counts map[string]int) string {
	listed := map[string]struct{}{}
	for _, rack := range racks {
		listed[rack] = struct{}{}
	}

	extra := []string{}
	for rack := range counts {
		if _, ok := listed[rack]; !ok {
			extra = append(extra, rack)
		}
	}
	sort.Strings(extra)

	elements := []string{}
	for _, rack := range append(append([]string{}, racks...), extra...) {
		label := rack
		if label == "" {
			label = "(none)"
		}
		elements = append(elements, fmt.Sprintf("%s:%d", label, counts[rack]))
	}

	return strings.Join(elements, ", ")
}

func replicaStr(
	assignment PartitionAssignment,
	index int,
	brokerRacks map[int]string,
	maxWidth int,
) string {
	replica := assignment.Replicas[index]
	element := fmt.Sprintf("%*d", maxWidth, replica)

	rack := brokerRacks[replica]
	logDir := assignment.LogDir(index)

	switch {
	case rack != "" && logDir != AnyLogDir:
		element = fmt.Sprintf("%s (%s, %s)", element, rack, logDir)
	case rack != "":
		element = fmt.Sprintf("%s (%s)", element, rack)
	case logDir != AnyLogDir:
		element = fmt.Sprintf("%s (%s)", element, logDir)
	}

	return element
}

func assignmentRacksStr(
	assignment PartitionAssignment,
	brokerRacks map[int]string,
	maxWidth int,
) string {
	elements := []string{}

	for r := range assignment.Replicas {
		elements = append(elements, replicaStr(assignment, r, brokerRacks, maxWidth))
	}

	return strings.Join(elements, ", ")
}

func assignmentRacksDiffStr(
	old PartitionAssignment,
	new PartitionAssignment,
	brokerRacks map[int]string,
	maxWidth int,
) string {
	if !util.InTerminal() {
		return assignmentRacksStr(new, brokerRacks, maxWidth)
	}

	elements := []string{}

	added := color.New(color.FgRed).SprintfFunc()
	moved := color.New(color.FgCyan).SprintfFunc()

	for r, replica := range new.Replicas {
		element := replicaStr(new, r, brokerRacks, maxWidth)

		oldIndex := old.Index(replica)
		switch {
		case oldIndex == r && old.LogDir(r) == new.LogDir(r):
		case oldIndex != -1:
			element = moved("%s", element)
		default:
			element = added("%s", element)
		}

		elements = append(elements, element)
	}

	return strings.Join(elements, ", ")
}

func maxBrokerID(brokers []BrokerInfo) int {
	maxID := 1
	for _, broker := range brokers {
		if broker.ID > maxID {
			maxID = broker.ID
		}
	}
	return maxID
}

func maxValueToMaxWidth(maxValue int) int {
	if maxValue < 1 {
		return 1
	}
	return int(math.Log10(float64(maxValue))) + 1
}
