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

// Package config holds the build-time, address-aware configuration for a
// socket Client or Server: protocol, address, Unix-socket file permissions
// and optional TLS.
package config

import (
	"crypto/tls"
	"errors"
	"net"

	"github.com/dasimmet/gofacil/internal/perm"
	"github.com/dasimmet/gofacil/socket/protocol"
)

// MaxGID is the largest POSIX group id this package will accept for a
// Unix-domain listening socket's GroupPerm.
const MaxGID = 32767

var (
	ErrInvalidProtocol = errors.New("socket/config: invalid protocol")
	ErrInvalidTLSConfig = errors.New("socket/config: invalid TLS config")
	ErrInvalidGroup     = errors.New("socket/config: invalid unix group")
)

// ClientTLS is the client-side TLS toggle and options.
type ClientTLS struct {
	Enabled    bool
	Config     *tls.Config
	ServerName string
}

func (t ClientTLS) validate() error {
	if !t.Enabled {
		return nil
	}
	if t.Config == nil && t.ServerName == "" {
		return ErrInvalidTLSConfig
	}
	return nil
}

// ServerTLS is the server-side TLS toggle and options.
type ServerTLS struct {
	Enable bool
	Config *tls.Config
}

func (t ServerTLS) validate() error {
	if !t.Enable {
		return nil
	}
	if t.Config == nil || len(t.Config.Certificates) == 0 {
		return ErrInvalidTLSConfig
	}
	return nil
}

// Client configures a dial target.
type Client struct {
	Network protocol.NetworkProtocol
	Address string
	TLS     ClientTLS
}

// Validate resolves Address for Network and checks the TLS toggle, without
// keeping any of the resolved state (protocol-specific constructors
// re-resolve when they actually dial).
func (c Client) Validate() error {
	if err := c.TLS.validate(); err != nil {
		return err
	}
	if !c.Network.IsStream() {
		return ErrInvalidProtocol
	}

	switch c.Network {
	case protocol.NetworkUnix:
		_, err := net.ResolveUnixAddr("unix", c.Address)
		return err
	default:
		_, err := net.ResolveTCPAddr(c.Network.String(), c.Address)
		return err
	}
}

// Server configures a listener.
type Server struct {
	Network protocol.NetworkProtocol
	Address string

	// PermFile and GroupPerm apply only to NetworkUnix listeners: the file
	// mode and owning group the created socket file is chmod/chown'd to.
	PermFile  perm.Perm
	GroupPerm int32

	TLS ServerTLS
}

// Validate resolves Address for Network, checks GroupPerm's range and the
// TLS toggle.
func (s Server) Validate() error {
	if err := s.TLS.validate(); err != nil {
		return err
	}
	if s.GroupPerm < 0 || s.GroupPerm > MaxGID {
		return ErrInvalidGroup
	}
	if !s.Network.IsStream() {
		return ErrInvalidProtocol
	}

	switch s.Network {
	case protocol.NetworkUnix:
		_, err := net.ResolveUnixAddr("unix", s.Address)
		return err
	default:
		_, err := net.ResolveTCPAddr(s.Network.String(), s.Address)
		return err
	}
}
