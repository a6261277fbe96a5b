package socket

import (
	"context"
	"net"
	"time"

	"github.com/dasimmet/gofacil/core"
)

// Context is handed to a HandlerFunc/Handler for the lifetime of one
// accepted or dialed connection. It composes Go's context.Context (for
// cancellation on shutdown) with the Read/Write surface of the underlying
// core.Engine connection.
type Context interface {
	context.Context

	// IsConnected reports whether the underlying UUID is still valid.
	IsConnected() bool
	// LocalHost and RemoteHost identify the two ends of the connection.
	LocalHost() net.Addr
	RemoteHost() net.Addr

	Read(p []byte) (int, error)
	Write(p []byte) (int, error)

	// Close initiates a graceful close of this connection.
	Close() error
}

// connContext is the only implementation of Context: a thin, per-connection
// wrapper around an *core.Engine + core.UUID pair plus a cancellable
// context.Context used to observe caller-driven shutdown.
type connContext struct {
	context.Context
	cancel context.CancelFunc

	engine *core.Engine
	uuid   core.UUID
	local  net.Addr
	remote net.Addr
}

func newConnContext(parent context.Context, engine *core.Engine, uuid core.UUID, local, remote net.Addr) *connContext {
	ctx, cancel := context.WithCancel(parent)
	return &connContext{
		Context: ctx,
		cancel:  cancel,
		engine:  engine,
		uuid:    uuid,
		local:   local,
		remote:  remote,
	}
}

func (c *connContext) IsConnected() bool {
	return c.engine.IsValid(c.uuid)
}

func (c *connContext) LocalHost() net.Addr {
	return c.local
}

func (c *connContext) RemoteHost() net.Addr {
	return c.remote
}

func (c *connContext) Read(p []byte) (int, error) {
	return c.engine.Read(c.uuid, p)
}

func (c *connContext) Write(p []byte) (int, error) {
	return c.engine.Write2(c.uuid, p, core.WriteOptions{})
}

func (c *connContext) Close() error {
	c.cancel()
	return c.engine.Close(c.uuid)
}

// deadline helper used by servers that want to bound how long a handler
// may run per connection; unused when cfg.HandlerTimeout is zero.
func withHandlerTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}
