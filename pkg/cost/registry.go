package cost

import (
	"fmt"
	"strings"

	"github.com/segmentio/topicbalance/pkg/util"
)

const (
	// ReplicaNumberName is the registered name of ReplicaNumberCost.
	ReplicaNumberName = "replica-number"

	// ReplicaLeaderName is the registered name of ReplicaLeaderCost.
	ReplicaLeaderName = "replica-leader"

	// ReplicaSizeName is the registered name of ReplicaSizeCost.
	ReplicaSizeName = "replica-size"

	// FolderSizeName is the registered name of FolderSizeCost.
	FolderSizeName = "folder-size"

	// RackSpreadName is the registered name of RackSpreadCost.
	RackSpreadName = "rack-spread"
)

var registry = map[string]func() HasClusterCost{
	ReplicaNumberName: func() HasClusterCost { return ReplicaNumberCost{} },
	ReplicaLeaderName: func() HasClusterCost { return ReplicaLeaderCost{} },
	ReplicaSizeName:   func() HasClusterCost { return ReplicaSizeCost{} },
	FolderSizeName:    func() HasClusterCost { return FolderSizeCost{} },
	RackSpreadName:    func() HasClusterCost { return RackSpreadCost{} },
}

// New returns the built-in cost function with the argument name.
func New(name string) (HasClusterCost, error) {
	constructor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf(
			"Unrecognized cost function %q; must be one of %s",
			name,
			strings.Join(Names(), ", "),
		)
	}
	return constructor(), nil
}

// Names returns the sorted names of the built-in cost functions.
func Names() []string {
	return util.SortedStringKeys(registry)
}
