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

// Package unix builds a socket.Client that dials a Unix-domain stream
// socket file.
package unix

import (
	"crypto/tls"
	"errors"
	"net"

	"golang.org/x/sys/unix"

	"github.com/dasimmet/gofacil/core"
	"github.com/dasimmet/gofacil/socket"
	"github.com/dasimmet/gofacil/socket/config"
	"github.com/dasimmet/gofacil/socket/protocol"
)

// New builds a Unix-domain socket.Client from cfg.
func New(cfg config.Client) (socket.Client, error) {
	if cfg.Network != protocol.NetworkUnix {
		return nil, errors.New("socket/client/unix: cfg.Network must be NetworkUnix")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sa := &unix.SockaddrUnix{Name: cfg.Address}
	addr := &unixAddr{name: cfg.Address}

	engine := core.NewEngine(core.DefaultConfig(), core.ReactorHooks{})
	cl := socket.NewClient(engine, sa, addr)

	if cfg.TLS.Enabled {
		tlsCfg := cfg.TLS.Config
		if tlsCfg == nil {
			tlsCfg = &tls.Config{}
		}
		if cfg.TLS.ServerName != "" && tlsCfg.ServerName == "" {
			c := tlsCfg.Clone()
			c.ServerName = cfg.TLS.ServerName
			tlsCfg = c
		}
		socket.SetClientTLS(cl, func(uuid core.UUID, local, remote net.Addr) error {
			return socket.InstallClientTLS(engine, uuid, local, remote, tlsCfg)
		})
	}

	return cl, nil
}

type unixAddr struct{ name string }

func (a *unixAddr) Network() string { return "unix" }
func (a *unixAddr) String() string  { return a.name }
