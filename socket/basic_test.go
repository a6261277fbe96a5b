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

package socket_test

import (
	"errors"

	. "github.com/dasimmet/gofacil/socket"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Package constants", func() {
	It("should default the scratch buffer to 32KB", func() {
		Expect(DefaultBufferSize).To(Equal(32 * 1024))
	})

	It("should use newline as the line terminator", func() {
		Expect(EOL).To(Equal(byte('\n')))
	})
})

var _ = Describe("ConnState", func() {
	It("should format every named state", func() {
		tests := map[ConnState]string{
			ConnectionDial:       "Dial Connection",
			ConnectionNew:        "New Connection",
			ConnectionRead:       "Read Incoming Stream",
			ConnectionCloseRead:  "Close Incoming Stream",
			ConnectionHandler:    "Run HandlerFunc",
			ConnectionWrite:      "Write Outgoing Steam",
			ConnectionCloseWrite: "Close Outgoing Stream",
			ConnectionClose:      "Close Connection",
		}
		for state, expected := range tests {
			Expect(state.String()).To(Equal(expected))
		}
	})

	It("should report an undefined state as unknown", func() {
		Expect(ConnState(255).String()).To(Equal("unknown connection state"))
	})
})

var _ = Describe("ErrorFilter", func() {
	It("should pass a nil error through unchanged", func() {
		Expect(ErrorFilter(nil)).To(BeNil())
	})

	It("should filter the exact closed-network-connection message to nil", func() {
		err := errors.New("use of closed network connection")
		Expect(ErrorFilter(err)).To(BeNil())
	})

	It("should not filter a message that merely contains that text", func() {
		err := errors.New("accept tcp: use of closed network connection somewhere")
		Expect(ErrorFilter(err)).To(Equal(err))
	})

	It("should pass other connection errors through unchanged", func() {
		for _, msg := range []string{"connection timeout", "connection refused", "broken pipe"} {
			err := errors.New(msg)
			Expect(ErrorFilter(err)).To(Equal(err))
		}
	})
})
