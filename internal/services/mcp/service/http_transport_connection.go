package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
)

// httpConnection implements mcp.Connection for HTTP-based communication.
// The MCP SDK expects a bidirectional connection model, so this adapter maps
// inbound POST traffic onto reqChan and everything the server writes,
// responses and notifications alike, onto outChan for the session's event
// stream to deliver.
type httpConnection struct {
	sessionID  string
	reqChan    chan jsonrpc.Message
	outChan    chan jsonrpc.Message
	closed     chan struct{}
	ready      chan struct{} // Signals when Server.Connect() has started reading (buffered, size 1)
	readyOnce  sync.Once
	mu         sync.Mutex
	closedFlag bool
}

func (c *httpConnection) Read(ctx context.Context) (jsonrpc.Message, error) {
	// Signal readiness on first read, when Server.Connect() starts reading.
	c.readyOnce.Do(func() {
		select {
		case c.ready <- struct{}{}:
		default:
		}
	})

	select {
	case msg := <-c.reqChan:
		return msg, nil
	case <-c.closed:
		return nil, fmt.Errorf("connection closed")
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Write implements mcp.Connection.Write. Every outbound message rides the
// session's event stream, so responses and notifications share one ordered
// channel per session.
func (c *httpConnection) Write(ctx context.Context, msg jsonrpc.Message) error {
	c.mu.Lock()
	closed := c.closedFlag
	c.mu.Unlock()
	if closed {
		return fmt.Errorf("connection closed")
	}

	select {
	case c.outChan <- msg:
		return nil
	case <-c.closed:
		return fmt.Errorf("connection closed")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close implements mcp.Connection.Close. Only the closed signal channel is
// closed; reqChan and outChan stay open so a POST handler or stream writer
// racing the close can never send on a closed channel. Blocked senders and
// receivers all select on closed and unwind through it.
func (c *httpConnection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closedFlag {
		return nil
	}

	c.closedFlag = true
	close(c.closed)

	return nil
}

// SessionID implements mcp.Connection.SessionID.
func (c *httpConnection) SessionID() string {
	return c.sessionID
}
