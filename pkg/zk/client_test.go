package zk

import (
	"context"
	"fmt"
	"testing"
	"time"

	szk "github.com/samuel/go-zookeeper/zk"
	"github.com/segmentio/topicbalance/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPooledClientInvalidPoolSize(t *testing.T) {
	_, err := NewPooledClient(
		[]string{"localhost:2181"},
		5*time.Second,
		&DebugLogger{},
		0,
	)
	assert.Error(t, err)
}

func TestPooledClientRead(t *testing.T) {
	if !util.CanTestZK() {
		t.Skip("Skipping because TOPICBALANCE_TEST_ZK_ADDR is not set")
	}

	zkConn, _, err := szk.Connect(
		[]string{util.TestZKAddr()},
		5*time.Second,
	)
	require.NoError(t, err)
	defer zkConn.Close()

	prefix := testPrefix("pooled-client-read")

	pathTuples := []PathTuple{
		{
			Path: fmt.Sprintf("/%s", prefix),
		},
		{
			Path: fmt.Sprintf("/%s/brokers", prefix),
		},
	}
	for i := 1; i <= 4; i++ {
		pathTuples = append(
			pathTuples,
			PathTuple{
				Path: fmt.Sprintf("/%s/brokers/%d", prefix, i),
				Obj:  map[string]interface{}{"host": fmt.Sprintf("broker%d", i)},
			},
			PathTuple{
				Path: fmt.Sprintf("/%s/brokers/%d/rack-%d", prefix, i, i),
			},
		)
	}
	CreateNodes(t, zkConn, pathTuples)

	pooledClient, err := NewPooledClient(
		[]string{util.TestZKAddr()},
		5*time.Second,
		&DebugLogger{},
		2,
	)
	require.NoError(t, err)
	defer pooledClient.Close()

	ctx := context.Background()
	doneChan := make(chan error, 4)

	for i := 1; i <= 4; i++ {
		go func(index int) {
			obj := map[string]string{}
			_, err := pooledClient.GetJSON(
				ctx,
				fmt.Sprintf("/%s/brokers/%d", prefix, index),
				&obj,
			)
			if err != nil {
				doneChan <- err
				return
			}
			if obj["host"] != fmt.Sprintf("broker%d", index) {
				doneChan <- fmt.Errorf("Unexpected host for broker %d: %+v", index, obj)
				return
			}

			children, _, err := pooledClient.Children(
				ctx,
				fmt.Sprintf("/%s/brokers/%d", prefix, index),
			)
			if err == nil && (len(children) != 1 ||
				children[0] != fmt.Sprintf("rack-%d", index)) {
				err = fmt.Errorf("Unexpected children for broker %d: %+v", index, children)
			}
			doneChan <- err
		}(i)
	}

	timeout := time.NewTimer(10 * time.Second)
	defer timeout.Stop()

	for i := 0; i < 4; i++ {
		select {
		case err := <-doneChan:
			require.NoError(t, err)
		case <-timeout.C:
			require.FailNow(t, "Timed out waiting for results")
		}
	}

	exists, _, err := pooledClient.Exists(ctx, fmt.Sprintf("/%s/brokers/1/rack-1", prefix))
	assert.NoError(t, err)
	assert.True(t, exists)

	exists, _, err = pooledClient.Exists(ctx, fmt.Sprintf("/%s/brokers/non-existent", prefix))
	assert.NoError(t, err)
	assert.False(t, exists)

	var notJSON map[string]string
	_, err = pooledClient.GetJSON(ctx, fmt.Sprintf("/%s/brokers/1/rack-1", prefix), &notJSON)
	assert.Error(t, err)
}

func TestPooledClientClosed(t *testing.T) {
	if !util.CanTestZK() {
		t.Skip("Skipping because TOPICBALANCE_TEST_ZK_ADDR is not set")
	}

	pooledClient, err := NewPooledClient(
		[]string{util.TestZKAddr()},
		5*time.Second,
		&DebugLogger{},
		1,
	)
	require.NoError(t, err)

	require.NoError(t, pooledClient.Close())
	require.NoError(t, pooledClient.Close())

	_, _, err = pooledClient.Get(context.Background(), "/")
	assert.Equal(t, ErrClosed, err)
}

func TestPooledClientCancelled(t *testing.T) {
	if !util.CanTestZK() {
		t.Skip("Skipping because TOPICBALANCE_TEST_ZK_ADDR is not set")
	}

	pooledClient, err := NewPooledClient(
		[]string{util.TestZKAddr()},
		5*time.Second,
		&DebugLogger{},
		1,
	)
	require.NoError(t, err)
	defer pooledClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err = pooledClient.Children(ctx, "/")
	assert.Error(t, err)
}

func testPrefix(name string) string {
	return util.RandomString(fmt.Sprintf("zk-test-%s", name), 6)
}
