package ipc

import (
	"context"
	"encoding/json"
	"fmt"
	"net"

	"cask-go/internal/cask"
)

// Client is the consumer side of the query channel. It implements
// cask.AssetQuery over the socket, so consumer code is indifferent to
// whether the broker is in-process or behind the boundary.
type Client struct {
	socketPath string
}

var _ cask.AssetQuery = (*Client)(nil)

// NewClient creates a Client for the socket at socketPath.
func NewClient(socketPath string) *Client {
	return &Client{socketPath: socketPath}
}

// AssetsPath implements cask.AssetQuery.
func (c *Client) AssetsPath(ctx context.Context) (string, error) {
	resp, err := c.roundTrip(ctx, Request{Op: OpGetAssetsPath})
	if err != nil {
		return "", err
	}
	return resp.Path, nil
}

// DevMode implements cask.AssetQuery.
func (c *Client) DevMode(ctx context.Context) (bool, error) {
	resp, err := c.roundTrip(ctx, Request{Op: OpGetIsDevMode})
	if err != nil {
		return false, err
	}
	return resp.Dev, nil
}

// roundTrip dials, sends one request, and reads one response. Queries are
// idempotent, so a fresh connection per call keeps the client stateless.
func (c *Client) roundTrip(ctx context.Context, req Request) (Response, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return Response{}, fmt.Errorf("dialing query socket: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return Response{}, fmt.Errorf("sending query: %w", err)
	}

	var resp Response
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return Response{}, fmt.Errorf("reading query response: %w", err)
	}

	if !resp.OK {
		if sentinel := sentinelForKind(resp.Kind); sentinel != nil {
			return Response{}, fmt.Errorf("%s: %w", resp.Error, sentinel)
		}
		return Response{}, fmt.Errorf("query failed: %s", resp.Error)
	}
	return resp, nil
}
