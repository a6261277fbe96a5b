package core

import (
	"syscall"

	"github.com/dasimmet/gofacil/internal/errs"
)

// Sentinel, code-classified errors for the connection-bound failure modes.
var (
	// ErrBadFD is returned for a stale or invalid UUID.
	ErrBadFD = errs.New(errs.MinPkgCore+1, "invalid or stale connection identifier")
	// ErrRange is returned for an out-of-range offset in a write2 call.
	ErrRange = errs.New(errs.MinPkgCore+2, "offset out of range")
	// ErrConnReset is the fallback fatal I/O error when the originating
	// errno carries no more specific meaning.
	ErrConnReset = errs.New(errs.MinPkgCore+3, "connection reset")
	// ErrExhausted is returned by lifecycle operations (listen/connect/
	// accept) on resource exhaustion; no registry entry is installed.
	ErrExhausted = errs.New(errs.MinPkgCore+4, "resource exhausted")
	// ErrClosed is returned by operations attempted against a connection
	// that has already been force-closed.
	ErrClosed = errs.New(errs.MinPkgCore+5, "connection already closed")
)

// transientErrno reports whether errno means "no progress now, try later":
// it must never be escalated to a close.
func transientErrno(err error) bool {
	switch err {
	case syscall.EAGAIN, syscall.EWOULDBLOCK, syscall.EINTR, syscall.ENOTCONN:
		return true
	default:
		return false
	}
}

// ErrorFilter filters expected, benign network-shutdown errors to nil so
// that cleanup code paths don't log or propagate noise for a connection
// that was simply closed out from under them.
func ErrorFilter(err error) error {
	if err == nil {
		return nil
	}
	if err.Error() == "use of closed network connection" {
		return nil
	}
	return err
}
