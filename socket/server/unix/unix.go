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

// Package unix builds a socket.Server bound to a Unix-domain stream
// socket file.
package unix

import (
	"errors"
	"net"
	"os"

	"golang.org/x/sys/unix"

	"github.com/dasimmet/gofacil/core"
	"github.com/dasimmet/gofacil/socket"
	"github.com/dasimmet/gofacil/socket/config"
	"github.com/dasimmet/gofacil/socket/protocol"
)

const defaultBacklog = 128

// New builds a Unix-domain socket.Server from cfg: it removes a stale
// socket file at cfg.Address if one exists, then applies cfg.PermFile and
// cfg.GroupPerm to the freshly created one.
func New(updateConn func(fd int), handler socket.HandlerFunc, cfg config.Server) (socket.Server, error) {
	if cfg.Network != protocol.NetworkUnix {
		return nil, errors.New("socket/server/unix: cfg.Network must be NetworkUnix")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if fi, err := os.Stat(cfg.Address); err == nil && fi.Mode()&os.ModeSocket != 0 {
		if err := os.Remove(cfg.Address); err != nil {
			return nil, err
		}
	}

	sa := &unix.SockaddrUnix{Name: cfg.Address}
	addr := &unixAddr{name: cfg.Address}

	engine := core.NewEngine(core.DefaultConfig(), core.ReactorHooks{})
	srv := socket.NewServer(engine, sa, addr, defaultBacklog, handler, updateConn)

	socket.SetAfterListen(srv, func() error {
		if cfg.PermFile != 0 {
			if err := os.Chmod(cfg.Address, cfg.PermFile.FileMode()); err != nil {
				return err
			}
		}
		if cfg.GroupPerm > 0 {
			if err := os.Chown(cfg.Address, -1, int(cfg.GroupPerm)); err != nil {
				return err
			}
		}
		return nil
	})

	if cfg.TLS.Enable {
		socket.SetServerTLS(srv, func(uuid core.UUID, local, remote net.Addr) error {
			return socket.InstallServerTLS(engine, uuid, local, remote, cfg.TLS.Config)
		})
	}

	return srv, nil
}

type unixAddr struct{ name string }

func (a *unixAddr) Network() string { return "unix" }
func (a *unixAddr) String() string  { return a.name }
