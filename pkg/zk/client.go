package zk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	szk "github.com/samuel/go-zookeeper/zk"
	log "github.com/sirupsen/logrus"
)

// ErrClosed is returned by reads issued after the client was closed.
var ErrClosed = errors.New("zk client is closed")

// Client exposes the read-only zk operations needed to collect cluster topology. Unlike the
// underlying samuel zk client, it allows passing a context into each call.
type Client interface {
	Get(ctx context.Context, path string) ([]byte, *szk.Stat, error)
	GetJSON(ctx context.Context, path string, obj interface{}) (*szk.Stat, error)
	Children(ctx context.Context, path string) ([]string, *szk.Stat, error)
	Exists(ctx context.Context, path string) (bool, *szk.Stat, error)
	Close() error
}

var _ Client = (*PooledClient)(nil)

type readMethod int

const (
	readGet readMethod = iota
	readChildren
	readExists
)

type pooledRequest struct {
	path     string
	method   readMethod
	respChan chan pooledResp
}

type pooledResp struct {
	content  []byte
	exists   bool
	children []string
	stats    *szk.Stat
	err      error
}

// PooledClient is a Client implementation that spreads reads over a pool of connections
// instead of a single one. It's substantially faster than the base samuel client when
// topics and partitions are fetched from many goroutines.
type PooledClient struct {
	connections []*szk.Conn
	requestChan chan pooledRequest
	done        chan struct{}
}

// NewPooledClient returns a new PooledClient instance.
func NewPooledClient(
	zkAddrs []string,
	sessionTimeout time.Duration,
	logger szk.Logger,
	poolSize int,
) (*PooledClient, error) {
	if poolSize <= 0 {
		return nil, fmt.Errorf("Pool size must be positive, got %d", poolSize)
	}
	log.Debugf("Creating zk client with addresses %+v", zkAddrs)

	client := &PooledClient{
		requestChan: make(chan pooledRequest),
		done:        make(chan struct{}),
	}

	for i := 0; i < poolSize; i++ {
		conn, _, err := szk.Connect(
			zkAddrs,
			sessionTimeout,
			szk.WithLogger(logger),
		)
		if err != nil {
			for _, opened := range client.connections {
				opened.Close()
			}
			return nil, fmt.Errorf("Error connecting to zkAddrs %+v: %+v", zkAddrs, err)
		}
		client.connections = append(client.connections, conn)
	}

	for index, conn := range client.connections {
		go client.serve(index, conn)
	}

	return client, nil
}

func (c *PooledClient) serve(index int, conn *szk.Conn) {
	log.Debugf("Starting zk connection %d", index)

	for {
		select {
		case <-c.done:
			return
		case request := <-c.requestChan:
			resp := pooledResp{}

			switch request.method {
			case readGet:
				resp.content, resp.stats, resp.err = conn.Get(request.path)
			case readChildren:
				resp.children, resp.stats, resp.err = conn.Children(request.path)
			case readExists:
				resp.exists, resp.stats, resp.err = conn.Exists(request.path)
			default:
				resp.err = fmt.Errorf("Unrecognized read method: %d", request.method)
			}

			// Buffered, so an abandoned request never blocks the connection
			request.respChan <- resp
		}
	}
}

func (c *PooledClient) do(
	ctx context.Context,
	path string,
	method readMethod,
) (pooledResp, error) {
	request := pooledRequest{
		path:     path,
		method:   method,
		respChan: make(chan pooledResp, 1),
	}

	select {
	case c.requestChan <- request:
	case <-c.done:
		return pooledResp{}, ErrClosed
	case <-ctx.Done():
		return pooledResp{}, ctx.Err()
	}

	select {
	case resp := <-request.respChan:
		return resp, resp.err
	case <-ctx.Done():
		return pooledResp{}, ctx.Err()
	}
}

// Get returns the value at the argument zk path.
func (c *PooledClient) Get(ctx context.Context, path string) ([]byte, *szk.Stat, error) {
	log.Debugf("Getting path %s", path)
	resp, err := c.do(ctx, path, readGet)
	return resp.content, resp.stats, err
}

// GetJSON unmarshals the JSON content at the argument zk path into an object.
func (c *PooledClient) GetJSON(
	ctx context.Context,
	path string,
	obj interface{},
) (*szk.Stat, error) {
	data, stats, err := c.Get(ctx, path)
	if err != nil {
		return stats, err
	}
	if err := json.Unmarshal(data, obj); err != nil {
		return stats, fmt.Errorf("Error decoding JSON at path %s: %+v", path, err)
	}
	return stats, nil
}

// Children gets all children of the node at the argument zk path.
func (c *PooledClient) Children(
	ctx context.Context,
	path string,
) ([]string, *szk.Stat, error) {
	log.Debugf("Getting children at %s", path)
	resp, err := c.do(ctx, path, readChildren)
	return resp.children, resp.stats, err
}

// Exists returns whether a node exists at the argument zk path.
func (c *PooledClient) Exists(ctx context.Context, path string) (bool, *szk.Stat, error) {
	resp, err := c.do(ctx, path, readExists)
	return resp.exists, resp.stats, err
}

// Close stops the pool and closes all of its connections. It's safe to call more than once.
func (c *PooledClient) Close() error {
	select {
	case <-c.done:
		return nil
	default:
		close(c.done)
	}

	closeChan := make(chan struct{}, len(c.connections))

	for index, conn := range c.connections {
		log.Debugf("Closing zk connection %d/%d", index+1, len(c.connections))

		go func(innerConn *szk.Conn) {
			innerConn.Close()
			closeChan <- struct{}{}
		}(conn)
	}

	for range c.connections {
		<-closeChan
	}

	return nil
}
