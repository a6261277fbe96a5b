package socket

import (
	"context"
	"net"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/dasimmet/gofacil/core"
)

// Client is the address-agnostic client contract; protocol-specific
// constructors (socket/client/tcp, socket/client/unix) build one over a
// concrete core.Engine and remote address.
type Client interface {
	RegisterFuncError(f FuncError)

	Connect(ctx context.Context) error
	Close() error

	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
}

type engineClient struct {
	engine *core.Engine
	sa     unix.Sockaddr
	addr   net.Addr

	// installTLS, when set, runs once after a successful connect, wrapping
	// the raw connection in a TLS client handshake. Set via SetClientTLS.
	installTLS func(uuid core.UUID, local, remote net.Addr) error

	mu    sync.Mutex
	uuid  core.UUID
	errFn FuncError
}

// NewClient builds a Client over an already-configured core.Engine and a
// resolved remote address.
func NewClient(engine *core.Engine, sa unix.Sockaddr, addr net.Addr) Client {
	return &engineClient{engine: engine, sa: sa, addr: addr, uuid: core.InvalidUUID}
}

// SetClientTLS lets a protocol package wrap a successful connect in a TLS
// client handshake; it is a no-op on any other Client implementation.
func SetClientTLS(c Client, fn func(uuid core.UUID, local, remote net.Addr) error) {
	if ec, ok := c.(*engineClient); ok {
		ec.installTLS = fn
	}
}

func (c *engineClient) RegisterFuncError(f FuncError) {
	c.mu.Lock()
	c.errFn = f
	c.mu.Unlock()
}

func (c *engineClient) reportError(err error) {
	if err = ErrorFilter(err); err == nil {
		return
	}
	c.mu.Lock()
	fn := c.errFn
	c.mu.Unlock()
	if fn != nil {
		fn(err)
	}
}

// Connect dials the configured remote address and blocks, via poll(2),
// until the non-blocking connect finishes or ctx is canceled.
func (c *engineClient) Connect(ctx context.Context) error {
	uuid, err := c.engine.Connect(c.sa)
	if err != nil {
		c.reportError(err)
		return err
	}

	fd := core.FD(uuid)
	for {
		if ctx.Err() != nil {
			_ = c.engine.ForceClose(uuid)
			return ctx.Err()
		}

		fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLOUT}}
		n, err := unix.Poll(fds, connectPollTimeoutMillis)
		if err != nil && !transientPollErr(err) {
			_ = c.engine.ForceClose(uuid)
			c.reportError(err)
			return err
		}
		if n > 0 && fds[0].Revents&unix.POLLOUT != 0 {
			break
		}
	}

	if errno, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_ERROR); err != nil {
		_ = c.engine.ForceClose(uuid)
		return err
	} else if errno != 0 {
		_ = c.engine.ForceClose(uuid)
		return unix.Errno(errno)
	}

	if c.installTLS != nil {
		if err := c.installTLS(uuid, nil, c.addr); err != nil {
			_ = c.engine.ForceClose(uuid)
			c.reportError(err)
			return err
		}
	}

	c.mu.Lock()
	c.uuid = uuid
	c.mu.Unlock()
	return nil
}

const connectPollTimeoutMillis = 250

func (c *engineClient) Close() error {
	c.mu.Lock()
	uuid := c.uuid
	c.uuid = core.InvalidUUID
	c.mu.Unlock()

	if uuid == core.InvalidUUID {
		return nil
	}
	return c.engine.Close(uuid)
}

func (c *engineClient) Read(p []byte) (int, error) {
	c.mu.Lock()
	uuid := c.uuid
	c.mu.Unlock()
	if uuid == core.InvalidUUID {
		return 0, core.ErrClosed
	}
	n, err := c.engine.Read(uuid, p)
	if err != nil {
		c.reportError(err)
	}
	return n, err
}

func (c *engineClient) Write(p []byte) (int, error) {
	c.mu.Lock()
	uuid := c.uuid
	c.mu.Unlock()
	if uuid == core.InvalidUUID {
		return 0, core.ErrClosed
	}
	if err := c.engine.Write2(uuid, p, core.WriteOptions{}); err != nil {
		c.reportError(err)
		return 0, err
	}
	return len(p), nil
}
