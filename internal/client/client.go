package client

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/kelsos/fundme/internal/logger"
)

// Client handles all JSON-RPC communication with the wallet provider endpoint
type Client struct {
	*ethclient.Client
	rpc *rpc.Client
	url string
}

// Dial connects to the provider endpoint. HTTP endpoints are not contacted until the first call.
func Dial(ctx context.Context, url string) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("dial provider %s: %w", url, err)
	}
	return New(rpcClient, url), nil
}

// New wraps an existing RPC client, e.g. an in-process one
func New(rpcClient *rpc.Client, url string) *Client {
	return &Client{
		Client: ethclient.NewClient(rpcClient),
		rpc:    rpcClient,
		url:    url,
	}
}

// URL returns the endpoint the client was dialed with
func (c *Client) URL() string {
	return c.url
}

// Call invokes a raw JSON-RPC method and stores the decoded result in result
func (c *Client) Call(ctx context.Context, result interface{}, method string, args ...interface{}) error {
	start := time.Now()
	logger.Debug("Starting %s call to %s", method, c.url)

	if err := c.rpc.CallContext(ctx, result, method, args...); err != nil {
		logger.Error("%s failed after %v: %v", method, time.Since(start), err)
		return fmt.Errorf("%s: %w", method, err)
	}

	logger.Debug("%s completed in %v", method, time.Since(start))
	return nil
}

// Ping checks that the provider answers
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.BlockNumber(ctx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	return nil
}

// Close releases the underlying connection
func (c *Client) Close() {
	c.rpc.Close()
}
