package tcp_test

import (
	"github.com/dasimmet/gofacil/socket/config"
	"github.com/dasimmet/gofacil/socket/protocol"
	scksrv "github.com/dasimmet/gofacil/socket/server/tcp"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("TCP Server Creation", func() {
	Context("with valid configuration", func() {
		It("should create a server with minimal configuration", func() {
			cfg := config.Server{Network: protocol.NetworkTCP, Address: getTestAddr()}
			srv, err := scksrv.New(nil, echoHandler, cfg)

			Expect(err).ToNot(HaveOccurred())
			Expect(srv).ToNot(BeNil())
			Expect(srv.IsRunning()).To(BeFalse())
			Expect(srv.IsGone()).To(BeTrue())
			Expect(srv.OpenConnections()).To(Equal(int64(0)))
		})

		It("should create a TCP6 server", func() {
			cfg := config.Server{Network: protocol.NetworkTCP6, Address: "[::1]:0"}
			srv, err := scksrv.New(nil, echoHandler, cfg)

			Expect(err).ToNot(HaveOccurred())
			Expect(srv).ToNot(BeNil())
		})

		It("should create a server with a custom accept hook", func() {
			upd := func(fd int) { _ = fd }
			cfg := config.Server{Network: protocol.NetworkTCP, Address: getTestAddr()}
			srv, err := scksrv.New(upd, echoHandler, cfg)

			Expect(err).ToNot(HaveOccurred())
			Expect(srv).ToNot(BeNil())
		})
	})

	Context("with invalid configuration", func() {
		It("should reject a non-TCP network", func() {
			cfg := config.Server{Network: protocol.NetworkUnix, Address: getTestAddr()}
			_, err := scksrv.New(nil, echoHandler, cfg)
			Expect(err).To(HaveOccurred())
		})

		It("should reject an unresolvable address", func() {
			cfg := config.Server{Network: protocol.NetworkTCP, Address: "not a valid address"}
			_, err := scksrv.New(nil, echoHandler, cfg)
			Expect(err).To(HaveOccurred())
		})
	})
})
