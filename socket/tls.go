package socket

import (
	"crypto/tls"
	"io"
	"net"
	"time"

	"golang.org/x/sys/unix"

	"github.com/dasimmet/gofacil/core"
)

// fdConn adapts one core.Engine connection's raw descriptor to net.Conn,
// blocking (by polling) rather than returning EAGAIN, so crypto/tls — which
// expects a blocking io.ReadWriter — can drive a handshake and all
// subsequent record traffic over it. It talks to the descriptor directly
// via unix.Read/unix.Write rather than through engine.Read/Write2: those
// dispatch through the connection's installed Hooks, which after
// installTLSHooks point right back at this *tls.Conn — going through them
// here would recurse forever instead of reaching the wire.
type fdConn struct {
	engine *core.Engine
	uuid   core.UUID
	local  net.Addr
	remote net.Addr
}

func (c *fdConn) Read(p []byte) (int, error) {
	fd := connFD(c.uuid)
	for {
		n, err := unix.Read(fd, p)
		if err == nil {
			if n == 0 {
				return 0, io.EOF
			}
			return n, nil
		}
		if !transientPollErr(err) {
			return 0, err
		}
		if !c.engine.IsValid(c.uuid) {
			return 0, io.EOF
		}
		if ready, perr := pollReadable(fd, readPollTimeoutMillis); perr != nil {
			return 0, perr
		} else if ready {
			continue
		}
	}
}

func (c *fdConn) Write(p []byte) (int, error) {
	fd := connFD(c.uuid)
	written := 0
	for written < len(p) {
		n, err := unix.Write(fd, p[written:])
		if err != nil {
			if transientPollErr(err) {
				continue
			}
			return written, err
		}
		written += n
	}
	return written, nil
}

func (c *fdConn) Close() error                       { return c.engine.Close(c.uuid) }
func (c *fdConn) LocalAddr() net.Addr                { return c.local }
func (c *fdConn) RemoteAddr() net.Addr               { return c.remote }
func (c *fdConn) SetDeadline(t time.Time) error      { return nil }
func (c *fdConn) SetReadDeadline(t time.Time) error  { return nil }
func (c *fdConn) SetWriteDeadline(t time.Time) error { return nil }

// InstallServerTLS performs a TLS server handshake over uuid's connection
// and installs Hooks that route subsequent Read/Write through the
// resulting *tls.Conn, so the rest of core (queueing, flush, sendfile
// gating) keeps working unmodified — it simply sees a non-default hook
// table and falls back off the sendfile fast path.
func InstallServerTLS(engine *core.Engine, uuid core.UUID, local, remote net.Addr, cfg *tls.Config) error {
	raw := &fdConn{engine: engine, uuid: uuid, local: local, remote: remote}
	tconn := tls.Server(raw, cfg)
	if err := tconn.Handshake(); err != nil {
		return err
	}
	return installTLSHooks(engine, uuid, tconn)
}

// InstallClientTLS is InstallServerTLS's dial-side counterpart.
func InstallClientTLS(engine *core.Engine, uuid core.UUID, local, remote net.Addr, cfg *tls.Config) error {
	raw := &fdConn{engine: engine, uuid: uuid, local: local, remote: remote}
	tconn := tls.Client(raw, cfg)
	if err := tconn.Handshake(); err != nil {
		return err
	}
	return installTLSHooks(engine, uuid, tconn)
}

func installTLSHooks(engine *core.Engine, uuid core.UUID, tconn *tls.Conn) error {
	return engine.RWHookSet(uuid, core.Hooks{
		Read: func(u core.UUID, buf []byte) (int, error) {
			return tconn.Read(buf)
		},
		Write: func(u core.UUID, buf []byte) (int, error) {
			return tconn.Write(buf)
		},
		OnClear: func(u core.UUID, hooks core.Hooks) {
			_ = tconn.Close()
		},
	})
}
