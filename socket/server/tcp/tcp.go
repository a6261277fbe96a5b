/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package tcp builds a socket.Server bound to a TCP (or TCP4/TCP6) listen
// address.
package tcp

import (
	"errors"
	"net"

	"golang.org/x/sys/unix"

	"github.com/dasimmet/gofacil/core"
	"github.com/dasimmet/gofacil/socket"
	"github.com/dasimmet/gofacil/socket/config"
	"github.com/dasimmet/gofacil/socket/protocol"
)

const defaultBacklog = 128

// New builds a TCP socket.Server from cfg. updateConn, when non-nil, is
// invoked with the raw connection descriptor right after accept, mirroring
// the per-connection tuning hook a net.Conn-based server would expose via
// *net.TCPConn — here at the file-descriptor level, since this server is
// driven directly by a core.Engine rather than Go's net package.
func New(updateConn func(fd int), handler socket.HandlerFunc, cfg config.Server) (socket.Server, error) {
	if cfg.Network != protocol.NetworkTCP && cfg.Network != protocol.NetworkTCP4 && cfg.Network != protocol.NetworkTCP6 {
		return nil, errors.New("socket/server/tcp: cfg.Network must be a TCP variant")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tcpAddr, err := net.ResolveTCPAddr(cfg.Network.String(), cfg.Address)
	if err != nil {
		return nil, err
	}

	sa, err := sockaddrOf(tcpAddr)
	if err != nil {
		return nil, err
	}

	engine := core.NewEngine(core.DefaultConfig(), core.ReactorHooks{})
	srv := socket.NewServer(engine, sa, tcpAddr, defaultBacklog, handler, updateConn)

	if cfg.TLS.Enable {
		socket.SetServerTLS(srv, func(uuid core.UUID, local, remote net.Addr) error {
			return socket.InstallServerTLS(engine, uuid, local, remote, cfg.TLS.Config)
		})
	}

	return srv, nil
}

func sockaddrOf(addr *net.TCPAddr) (unix.Sockaddr, error) {
	if ip4 := addr.IP.To4(); ip4 != nil {
		sa := &unix.SockaddrInet4{Port: addr.Port}
		copy(sa.Addr[:], ip4)
		return sa, nil
	}
	ip6 := addr.IP.To16()
	if ip6 == nil {
		ip6 = net.IPv6zero
	}
	sa := &unix.SockaddrInet6{Port: addr.Port}
	copy(sa.Addr[:], ip6)
	return sa, nil
}
