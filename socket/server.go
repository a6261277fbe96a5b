package socket

import (
	"context"
	"net"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/unix"

	"github.com/dasimmet/gofacil/core"
)

// Server is the address-agnostic server contract; protocol-specific
// constructors (socket/server/tcp, socket/server/unix) build one over a
// concrete core.Engine and listening address.
type Server interface {
	RegisterFuncError(f FuncError)
	RegisterFuncInfo(f FuncInfo)

	// Listen blocks accepting and serving connections until ctx is
	// canceled or a fatal listener error occurs.
	Listen(ctx context.Context) error
	// Shutdown stops accepting new connections and waits (bounded by
	// ctx's deadline) for in-flight handlers to return.
	Shutdown(ctx context.Context) error

	IsRunning() bool
	// IsGone reports whether Listen has returned (or never started).
	IsGone() bool
	OpenConnections() int64
}

// engineServer is the one Server implementation: it owns a core.Engine and
// drives it with a minimal poll(2)-based accept/read loop, since the
// reactor a production deployment would supply is, by design, out of
// core's scope (ReactorHooks are weak collaborators, not a built-in event
// loop).
type engineServer struct {
	engine *core.Engine

	sa      unix.Sockaddr
	addr    net.Addr
	backlog int
	handler HandlerFunc

	// onAccept, when set, is invoked with the raw connection descriptor
	// right after accept, before the first read — the file-descriptor-
	// level equivalent of a net.Conn tuning hook.
	onAccept func(fd int)
	// afterListen, when set, runs once right after bind+listen succeeds
	// and before the accept loop starts — used by socket/server/unix to
	// chmod/chown the freshly created socket file.
	afterListen func() error
	// installTLS, when set, runs once per accepted connection before it is
	// handed to serve, wrapping the raw connection in a TLS server
	// handshake. Set via SetServerTLS.
	installTLS func(uuid core.UUID, local, remote net.Addr) error

	listenFD int
	running  atomic.Bool
	open     atomic.Int64

	mu     sync.Mutex
	errFn  FuncError
	infoFn FuncInfo

	wg sync.WaitGroup
}

// newEngineServer is unexported: only the protocol-specific packages (tcp,
// unix), which know how to resolve an address into a unix.Sockaddr, call
// it directly. Its exported wrapper is socket.NewServer.
func newEngineServer(engine *core.Engine, sa unix.Sockaddr, addr net.Addr, backlog int, handler HandlerFunc, onAccept func(fd int)) *engineServer {
	return &engineServer{engine: engine, sa: sa, addr: addr, backlog: backlog, handler: handler, onAccept: onAccept}
}

// NewServer builds a Server over an already-configured core.Engine and a
// resolved listen address. Protocol packages call this after turning a
// socket/config.Server into a concrete net.Addr/unix.Sockaddr pair.
// onAccept, if non-nil, runs once per accepted connection before the
// server's own read loop takes over.
func NewServer(engine *core.Engine, sa unix.Sockaddr, addr net.Addr, backlog int, handler HandlerFunc, onAccept func(fd int)) Server {
	return newEngineServer(engine, sa, addr, backlog, handler, onAccept)
}

// SetAfterListen lets a protocol package (socket/server/unix) attach a
// post-bind hook without widening the Server interface or NewServer's
// signature; it is a no-op on any other Server implementation.
func SetAfterListen(s Server, fn func() error) {
	if es, ok := s.(*engineServer); ok {
		es.afterListen = fn
	}
}

// SetServerTLS lets a protocol package wrap every accepted connection in a
// TLS server handshake before serve's read loop starts; it is a no-op on
// any other Server implementation.
func SetServerTLS(s Server, fn func(uuid core.UUID, local, remote net.Addr) error) {
	if es, ok := s.(*engineServer); ok {
		es.installTLS = fn
	}
}

func (s *engineServer) RegisterFuncError(f FuncError) {
	s.mu.Lock()
	s.errFn = f
	s.mu.Unlock()
}

func (s *engineServer) RegisterFuncInfo(f FuncInfo) {
	s.mu.Lock()
	s.infoFn = f
	s.mu.Unlock()
}

func (s *engineServer) IsRunning() bool {
	return s.running.Load()
}

func (s *engineServer) OpenConnections() int64 {
	return s.open.Load()
}

func (s *engineServer) IsGone() bool {
	return !s.running.Load()
}

func (s *engineServer) reportError(errs ...error) {
	s.mu.Lock()
	fn := s.errFn
	s.mu.Unlock()
	if fn == nil {
		return
	}
	filtered := make([]error, 0, len(errs))
	for _, e := range errs {
		if e = ErrorFilter(e); e != nil {
			filtered = append(filtered, e)
		}
	}
	if len(filtered) > 0 {
		fn(filtered...)
	}
}

func (s *engineServer) reportState(remote net.Addr, state ConnState) {
	s.mu.Lock()
	fn := s.infoFn
	s.mu.Unlock()
	if fn != nil {
		fn(s.addr, remote, state)
	}
}

func (s *engineServer) Listen(ctx context.Context) error {
	listenUUID, err := s.engine.Listen(s.sa, s.backlog)
	if err != nil {
		return err
	}
	fd := core.FD(listenUUID)
	s.listenFD = fd
	if s.afterListen != nil {
		if err := s.afterListen(); err != nil {
			_ = s.engine.ForceClose(listenUUID)
			return err
		}
	}
	s.running.Store(true)
	defer s.running.Store(false)
	defer func() { _ = s.engine.ForceClose(listenUUID) }()

	for {
		if ctx.Err() != nil {
			s.wg.Wait()
			return nil
		}

		ready, err := pollReadable(fd, acceptPollTimeoutMillis)
		if err != nil && !transientPollErr(err) {
			s.reportError(err)
			return err
		}
		if !ready {
			continue
		}

		uuid, err := s.engine.Accept(fd)
		if err != nil {
			s.reportError(err)
			continue
		}
		if uuid == core.InvalidUUID {
			continue
		}
		if s.onAccept != nil {
			s.onAccept(core.FD(uuid))
		}
		if s.installTLS != nil {
			remote := connRemoteAddr(s.addr, uuid)
			if err := s.installTLS(uuid, s.addr, remote); err != nil {
				s.reportError(err)
				_ = s.engine.ForceClose(uuid)
				continue
			}
		}

		s.open.Add(1)
		s.wg.Add(1)
		go s.serve(ctx, uuid)
	}
}

func (s *engineServer) serve(parent context.Context, uuid core.UUID) {
	defer s.wg.Done()
	defer s.open.Add(-1)

	remote := connRemoteAddr(s.addr, uuid)
	s.reportState(remote, ConnectionNew)

	cctx := newConnContext(parent, s.engine, uuid, s.addr, remote)
	defer cctx.cancel()

	buf := make([]byte, DefaultBufferSize)
	for {
		select {
		case <-cctx.Done():
			s.reportState(remote, ConnectionCloseRead)
			_ = s.engine.Close(uuid)
			s.reportState(remote, ConnectionClose)
			return
		default:
		}

		fd := connFD(uuid)
		ready, err := pollReadable(fd, readPollTimeoutMillis)
		if err != nil {
			if !transientPollErr(err) {
				s.reportError(err)
				break
			}
			continue
		}
		if !ready {
			if !s.engine.IsValid(uuid) {
				break
			}
			continue
		}

		s.reportState(remote, ConnectionRead)
		n, err := cctx.Read(buf)
		if err != nil {
			s.reportError(err)
			break
		}
		if n == 0 {
			if !s.engine.IsValid(uuid) {
				break
			}
			continue
		}

		s.reportState(remote, ConnectionHandler)
		if s.handler != nil {
			s.handler(cctx)
		}
	}

	s.reportState(remote, ConnectionCloseWrite)
	_ = s.engine.Close(uuid)
	s.reportState(remote, ConnectionClose)
}

func (s *engineServer) Shutdown(ctx context.Context) error {
	s.running.Store(false)
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
