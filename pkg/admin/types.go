package admin

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/segmentio/topicbalance/pkg/util"
)

const (
	// LogDirsKey is the broker config key listing the data folders of a broker.
	LogDirsKey = "log.dirs"

	// LogDirKey is the single-folder fallback used when LogDirsKey isn't set.
	LogDirKey = "log.dir"

	// AnyLogDir is the reassignment placeholder that lets the broker choose a folder.
	AnyLogDir = "any"
)

// BrokerInfo represents the information collected about a broker.
type BrokerInfo struct {
	ID               int               `json:"id"`
	Host             string            `json:"host"`
	Port             int32             `json:"port"`
	InstanceID       string            `json:"instanceID,omitempty"`
	AvailabilityZone string            `json:"availabilityZone,omitempty"`
	Rack             string            `json:"rack"`
	InstanceType     string            `json:"instanceType,omitempty"`
	Timestamp        time.Time         `json:"timestamp"`
	Config           map[string]string `json:"config"`
}

// TopicInfo represents the information collected about a topic.
type TopicInfo struct {
	Name       string            `json:"name"`
	Config     map[string]string `json:"config"`
	Partitions []PartitionInfo   `json:"partitions"`
}

// PartitionInfo represents the information collected about a topic partition. Replicas are
// listed in preference order.
type PartitionInfo struct {
	Topic    string `json:"topic"`
	ID       int    `json:"ID"`
	Leader   int    `json:"leader"`
	Replicas []int  `json:"replicas"`
	ISR      []int  `json:"isr"`
}

// PartitionAssignment contains the actual or desired assignment of replicas in a topic
// partition. LogDirs, if set, is aligned with Replicas.
type PartitionAssignment struct {
	ID       int      `json:"id"`
	Replicas []int    `json:"replicas"`
	LogDirs  []string `json:"logDirs,omitempty"`
}

type zkClusterID struct {
	Version string `json:"version"`
	ID      string `json:"id"`
}

type zkBrokerInfo struct {
	Endpoints    []string `json:"endpoints"`
	Host         string   `json:"host"`
	Port         int32    `json:"port"`
	Rack         string   `json:"rack"`
	TimestampStr string   `json:"timestamp"`
}

type zkBrokerConfig struct {
	Version int               `json:"version"`
	Config  map[string]string `json:"config"`
}

type zkTopicInfo struct {
	Version    int              `json:"version"`
	Partitions map[string][]int `json:"partitions"`
}

type zkTopicConfig struct {
	Version int               `json:"version"`
	Config  map[string]string `json:"config"`
}

type zkPartitionState struct {
	Leader int   `json:"leader"`
	ISR    []int `json:"isr"`
}

// Addr returns the address of the current BrokerInfo.
func (b BrokerInfo) Addr() string {
	return fmt.Sprintf("%s:%d", b.Host, b.Port)
}

// LogDirs returns the data folders configured for the broker, in config order and without
// duplicates. It returns nil if the broker config doesn't expose them.
func (b BrokerInfo) LogDirs() []string {
	value, ok := b.Config[LogDirsKey]
	if !ok || strings.TrimSpace(value) == "" {
		value = b.Config[LogDirKey]
	}

	var dirs []string
	seen := map[string]struct{}{}

	for _, dir := range strings.Split(value, ",") {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			continue
		}
		if _, ok := seen[dir]; ok {
			continue
		}
		seen[dir] = struct{}{}
		dirs = append(dirs, dir)
	}

	return dirs
}

// BrokerIDs returns a slice of the IDs of the argument brokers.
func BrokerIDs(brokers []BrokerInfo) []int {
	brokerIDs := []int{}

	for _, broker := range brokers {
		brokerIDs = append(brokerIDs, broker.ID)
	}

	return brokerIDs
}

// BrokerRacks returns a mapping of broker ID -> rack.
func BrokerRacks(brokers []BrokerInfo) map[int]string {
	brokerRacks := map[int]string{}

	for _, broker := range brokers {
		brokerRacks[broker.ID] = broker.Rack
	}

	return brokerRacks
}

// DistinctRacks returns a sorted slice of all the distinct racks in the cluster.
func DistinctRacks(brokers []BrokerInfo) []string {
	racksMap := map[string]struct{}{}

	for _, broker := range brokers {
		racksMap[broker.Rack] = struct{}{}
	}

	racks := []string{}
	for rack := range racksMap {
		racks = append(racks, rack)
	}
	sort.Strings(racks)

	return racks
}

// MaxReplication returns the maximum amount of replication across all partitions in a topic.
func (t TopicInfo) MaxReplication() int {
	maxReplication := 0

	for _, partition := range t.Partitions {
		if len(partition.Replicas) > maxReplication {
			maxReplication = len(partition.Replicas)
		}
	}

	return maxReplication
}

// SortTopics sorts topics by name and the partitions of each topic by ID, in place.
func SortTopics(topics []TopicInfo) {
	sort.Slice(topics, func(a, b int) bool {
		return topics[a].Name < topics[b].Name
	})
	for _, topic := range topics {
		sort.Slice(topic.Partitions, func(a, b int) bool {
			return topic.Partitions[a].ID < topic.Partitions[b].ID
		})
	}
}

// Index returns the index of the argument replica, or -1 if it can't be found.
func (a PartitionAssignment) Index(replica int) int {
	for v, value := range a.Replicas {
		if value == replica {
			return v
		}
	}

	return -1
}

// LogDir returns the folder of the replica at the argument index, or AnyLogDir if unknown.
func (a PartitionAssignment) LogDir(index int) string {
	if index < len(a.LogDirs) && a.LogDirs[index] != "" {
		return a.LogDirs[index]
	}
	return AnyLogDir
}

// Copy returns a deep copy of this PartitionAssignment.
func (a PartitionAssignment) Copy() PartitionAssignment {
	copied := PartitionAssignment{
		ID:       a.ID,
		Replicas: util.CopyInts(a.Replicas),
	}
	if a.LogDirs != nil {
		copied.LogDirs = append([]string{}, a.LogDirs...)
	}
	return copied
}

// AssignmentDiff represents the diff in a single partition reassignment.
type AssignmentDiff struct {
	PartitionID int
	Old         PartitionAssignment
	New         PartitionAssignment
}

// Changed returns whether the replicas, their order or their folders differ.
func (d AssignmentDiff) Changed() bool {
	if len(d.Old.Replicas) != len(d.New.Replicas) {
		return true
	}
	for r := range d.Old.Replicas {
		if d.Old.Replicas[r] != d.New.Replicas[r] || d.Old.LogDir(r) != d.New.LogDir(r) {
			return true
		}
	}
	return false
}

// NewLeader returns whether the preferred leader changes.
func (d AssignmentDiff) NewLeader() bool {
	return len(d.Old.Replicas) > 0 &&
		len(d.New.Replicas) > 0 &&
		d.Old.Replicas[0] != d.New.Replicas[0]
}

// AssignmentDiffs returns the diffs implied by the argument current and desired
// PartitionAssignments, sorted by partition ID. Used for displaying diffs to the user.
func AssignmentDiffs(
	current []PartitionAssignment,
	desired []PartitionAssignment,
) []AssignmentDiff {
	diffsMap := map[int]AssignmentDiff{}

	for _, assignment := range current {
		diffsMap[assignment.ID] = AssignmentDiff{
			PartitionID: assignment.ID,
			Old:         assignment,
		}
	}

	for _, assignment := range desired {
		diff := diffsMap[assignment.ID]
		diff.PartitionID = assignment.ID
		diff.New = assignment
		diffsMap[assignment.ID] = diff
	}

	results := []AssignmentDiff{}
	for _, diff := range diffsMap {
		results = append(results, diff)
	}
	sort.Slice(results, func(a, b int) bool {
		return results[a].PartitionID < results[b].PartitionID
	})

	return results
}

// AssignmentsToUpdate returns the subset of desired assignments that differ from the current
// ones.
func AssignmentsToUpdate(
	current []PartitionAssignment,
	desired []PartitionAssignment,
) []PartitionAssignment {
	updates := []PartitionAssignment{}

	for _, diff := range AssignmentDiffs(current, desired) {
		if len(diff.New.Replicas) > 0 && diff.Changed() {
			updates = append(updates, diff.New.Copy())
		}
	}

	return updates
}

// NewLeaderPartitions returns the partition IDs which will have new leaders given the
// current and desired assignments.
func NewLeaderPartitions(
	current []PartitionAssignment,
	desired []PartitionAssignment,
) []int {
	newLeaderPartitions := []int{}

	for _, diff := range AssignmentDiffs(current, desired) {
		if diff.NewLeader() {
			newLeaderPartitions = append(newLeaderPartitions, diff.PartitionID)
		}
	}

	return newLeaderPartitions
}
