package socket

import (
	"net"

	"golang.org/x/sys/unix"

	"github.com/dasimmet/gofacil/core"
)

// Poll timeouts for the minimal accept/read loop engineServer drives core
// with. These stand in for a real reactor, which core intentionally leaves
// external; a production deployment embedding this library would instead
// register each UUID's descriptor (see core.FD) with its own epoll/kqueue
// event loop and call core.Engine's Read/Flush from there.
const (
	acceptPollTimeoutMillis = 250
	readPollTimeoutMillis   = 250
)

// pollReadable blocks up to timeoutMillis waiting for fd to become
// readable, returning (false, nil) on a plain timeout.
func pollReadable(fd int, timeoutMillis int) (bool, error) {
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, timeoutMillis)
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	return fds[0].Revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) != 0, nil
}

func transientPollErr(err error) bool {
	return err == unix.EINTR || err == unix.EAGAIN
}

func connFD(uuid core.UUID) int {
	return core.FD(uuid)
}

// connRemoteAddr best-effort resolves the peer address of a connection's
// descriptor via getpeername(2). Falls back to a zero-value TCPAddr if the
// descriptor's family can't be determined (e.g. already closed).
func connRemoteAddr(local net.Addr, uuid core.UUID) net.Addr {
	fd := connFD(uuid)
	sa, err := unix.Getpeername(fd)
	if err != nil {
		return &net.TCPAddr{}
	}
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return &net.TCPAddr{IP: net.IP(a.Addr[:]), Port: a.Port}
	case *unix.SockaddrInet6:
		return &net.TCPAddr{IP: net.IP(a.Addr[:]), Port: a.Port}
	case *unix.SockaddrUnix:
		return &net.UnixAddr{Name: a.Name, Net: "unix"}
	default:
		return &net.TCPAddr{}
	}
}
