package zk

import (
	"encoding/json"
	"testing"

	szk "github.com/samuel/go-zookeeper/zk"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// PathTuple is a <path, object> combination used for seeding zk nodes in tests. A nil Obj
// creates a node without data.
type PathTuple struct {
	Path string
	Obj  interface{}
}

// CreateNode creates a single node at the argument path with the JSON encoding of obj. For
// testing purposes only.
func CreateNode(t *testing.T, zkConn *szk.Conn, path string, obj interface{}) {
	var data []byte

	if obj != nil {
		var err error
		data, err = json.Marshal(obj)
		require.NoError(t, err)
	}

	log.Debugf("Creating test path %s", path)

	_, err := zkConn.Create(path, data, 0, szk.WorldACL(szk.PermAll))
	require.NoError(t, err)
}

// CreateNodes creates nodes for each of the argument tuples, in order. For testing purposes
// only.
func CreateNodes(t *testing.T, zkConn *szk.Conn, pathTuples []PathTuple) {
	for _, tuple := range pathTuples {
		CreateNode(t, zkConn, tuple.Path, tuple.Obj)
	}
}
