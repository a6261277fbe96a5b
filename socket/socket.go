// Package socket is the address-aware layer on top of core: it turns a
// raw core.Engine connection into something a server/client application
// deals with directly — a Context, connection-state notifications, and
// error filtering for the network errors a graceful shutdown always
// produces.
package socket

import (
	"net"

	"github.com/dasimmet/gofacil/core"
)

// DefaultBufferSize is the default size of the per-read scratch buffer a
// Context allocates when none is configured.
const DefaultBufferSize = 32 * 1024

// EOL is the line terminator byte protocol handlers built on Context most
// commonly split on.
const EOL = byte('\n')

// ConnState enumerates the lifecycle states a server/client connection
// passes through, reported to a registered FuncInfo.
type ConnState uint8

const (
	ConnectionDial ConnState = iota
	ConnectionNew
	ConnectionRead
	ConnectionCloseRead
	ConnectionHandler
	ConnectionWrite
	ConnectionCloseWrite
	ConnectionClose
)

func (s ConnState) String() string {
	switch s {
	case ConnectionDial:
		return "Dial Connection"
	case ConnectionNew:
		return "New Connection"
	case ConnectionRead:
		return "Read Incoming Stream"
	case ConnectionCloseRead:
		return "Close Incoming Stream"
	case ConnectionHandler:
		return "Run HandlerFunc"
	case ConnectionWrite:
		return "Write Outgoing Steam"
	case ConnectionCloseWrite:
		return "Close Outgoing Stream"
	case ConnectionClose:
		return "Close Connection"
	default:
		return "unknown connection state"
	}
}

// FuncError is registered with a Server or Client to receive every error
// surfaced during accept/read/write/close, already run through
// ErrorFilter's caller — implementations should expect nil entries to
// have already been dropped by the producer.
type FuncError func(errs ...error)

// FuncInfo is registered to observe ConnState transitions for a
// connection, identified by its local/remote addresses.
type FuncInfo func(local, remote net.Addr, state ConnState)

// HandlerFunc is the request handler a Server invokes once per accepted
// connection.
type HandlerFunc func(ctx Context)

// Handler is the stateful counterpart to HandlerFunc, for a caller that
// wants its handler to carry its own dependencies.
type Handler interface {
	Handle(ctx Context)
}

// ErrorFilter filters the benign "connection already closed" error that a
// graceful shutdown race always produces, so cleanup paths don't have to
// special-case it themselves.
func ErrorFilter(err error) error {
	return core.ErrorFilter(err)
}
