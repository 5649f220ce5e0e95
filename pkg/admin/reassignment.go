package admin

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
)

// ReassignmentVersion is the only document version understood by kafka-reassign-partitions.
const ReassignmentVersion = 1

// Reassignment is the JSON document accepted by kafka-reassign-partitions.sh
// --reassignment-json-file.
type Reassignment struct {
	Version    int                     `json:"version"`
	Partitions []ReassignmentPartition `json:"partitions"`
}

// ReassignmentPartition is the target placement of a single partition. The first replica is
// the preferred leader.
type ReassignmentPartition struct {
	Topic     string   `json:"topic"`
	Partition int      `json:"partition"`
	Replicas  []int    `json:"replicas"`
	LogDirs   []string `json:"log_dirs,omitempty"`
}

// NewReassignment creates a reassignment document from the argument per-topic assignments.
// Partitions are sorted by topic, then by partition ID.
func NewReassignment(assignments map[string][]PartitionAssignment) Reassignment {
	reassignment := Reassignment{
		Version:    ReassignmentVersion,
		Partitions: []ReassignmentPartition{},
	}

	for topic, topicAssignments := range assignments {
		for _, assignment := range topicAssignments {
			partition := ReassignmentPartition{
				Topic:     topic,
				Partition: assignment.ID,
				Replicas:  append([]int{}, assignment.Replicas...),
			}
			if len(assignment.LogDirs) > 0 {
				for r := range assignment.Replicas {
					partition.LogDirs = append(partition.LogDirs, assignment.LogDir(r))
				}
			}
			reassignment.Partitions = append(reassignment.Partitions, partition)
		}
	}

	sort.Slice(reassignment.Partitions, func(a, b int) bool {
		pa := reassignment.Partitions[a]
		pb := reassignment.Partitions[b]
		return pa.Topic < pb.Topic || (pa.Topic == pb.Topic && pa.Partition < pb.Partition)
	})

	return reassignment
}

// IsEmpty returns whether the reassignment moves nothing.
func (r Reassignment) IsEmpty() bool {
	return len(r.Partitions) == 0
}

// Validate checks the document for the mistakes that kafka-reassign-partitions would reject.
func (r Reassignment) Validate() error {
	if r.Version != ReassignmentVersion {
		return fmt.Errorf("Unsupported reassignment version %d", r.Version)
	}

	seen := map[string]struct{}{}

	for _, partition := range r.Partitions {
		key := fmt.Sprintf("%s-%d", partition.Topic, partition.Partition)
		if _, ok := seen[key]; ok {
			return fmt.Errorf("Partition %s is listed more than once", key)
		}
		seen[key] = struct{}{}

		if len(partition.Replicas) == 0 {
			return fmt.Errorf("Partition %s has no replicas", key)
		}
		if len(partition.LogDirs) > 0 && len(partition.LogDirs) != len(partition.Replicas) {
			return fmt.Errorf(
				"Partition %s has %d log dirs for %d replicas",
				key,
				len(partition.LogDirs),
				len(partition.Replicas),
			)
		}

		brokers := map[int]struct{}{}
		for _, replica := range partition.Replicas {
			if _, ok := brokers[replica]; ok {
				return fmt.Errorf("Partition %s uses broker %d more than once", key, replica)
			}
			brokers[replica] = struct{}{}
		}
	}

	return nil
}

// WriteFile writes the document to the argument path as indented JSON.
func (r Reassignment) WriteFile(path string) error {
	if path == "" {
		return errors.New("Reassignment output path must be set")
	}
	if err := r.Validate(); err != nil {
		return err
	}

	contents, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(contents, '\n'), 0644)
}

// LoadReassignmentFile reads a reassignment document written by WriteFile or by
// kafka-reassign-partitions --generate.
func LoadReassignmentFile(path string) (Reassignment, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return Reassignment{}, err
	}

	reassignment := Reassignment{}
	if err := json.Unmarshal(contents, &reassignment); err != nil {
		return Reassignment{}, fmt.Errorf("Error parsing reassignment %s: %+v", path, err)
	}
	return reassignment, reassignment.Validate()
}
