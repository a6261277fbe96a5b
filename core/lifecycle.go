package core

import (
	"golang.org/x/sys/unix"
)

// Listen creates, binds and listens on a non-blocking stream socket for the
// address family implied by sa, installs it in the registry and returns its
// UUID like the other lifecycle operations. The caller owns address
// resolution; core only owns the socket lifecycle.
func (e *Engine) Listen(sa unix.Sockaddr, backlog int) (UUID, error) {
	domain, err := domainOf(sa)
	if err != nil {
		return InvalidUUID, err
	}

	fd, err := unix.Socket(domain, unix.SOCK_STREAM, 0)
	if err != nil {
		return InvalidUUID, classifyLifecycleErr(err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return InvalidUUID, err
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return InvalidUUID, err
	}
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return InvalidUUID, err
	}
	if err := unix.Listen(fd, backlog); err != nil {
		unix.Close(fd)
		return InvalidUUID, classifyLifecycleErr(err)
	}
	return e.register(fd), nil
}

// Accept pulls one pending connection off listenFD and registers it as a
// new, non-blocking UUID. A transient errno (no connection
// currently pending) is reported as (InvalidUUID, nil).
func (e *Engine) Accept(listenFD int) (UUID, error) {
	nfd, _, err := unix.Accept4(listenFD, unix.SOCK_NONBLOCK)
	if err != nil {
		if transientErrno(err) {
			return InvalidUUID, nil
		}
		return InvalidUUID, classifyLifecycleErr(err)
	}
	return e.register(nfd), nil
}

// Connect creates a non-blocking socket and starts connecting to sa,
// registering it immediately. EINPROGRESS is expected and not
// an error: the caller learns completion the same way it learns
// writability, through its own reactor.
func (e *Engine) Connect(sa unix.Sockaddr) (UUID, error) {
	domain, err := domainOf(sa)
	if err != nil {
		return InvalidUUID, err
	}

	fd, err := unix.Socket(domain, unix.SOCK_STREAM, 0)
	if err != nil {
		return InvalidUUID, classifyLifecycleErr(err)
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return InvalidUUID, err
	}
	if err := unix.Connect(fd, sa); err != nil && err != unix.EINPROGRESS {
		unix.Close(fd)
		return InvalidUUID, classifyLifecycleErr(err)
	}
	return e.register(fd), nil
}

// classifyLifecycleErr maps a resource-exhaustion errno from socket/listen/
// connect/accept to ErrExhausted, so callers can distinguish "the system is
// out of descriptors or memory" from an address- or argument-level failure
// without inspecting syscall.Errno themselves. Any other error is returned
// unchanged.
func classifyLifecycleErr(err error) error {
	switch err {
	case unix.EMFILE, unix.ENFILE, unix.ENOBUFS, unix.ENOMEM, unix.EADDRNOTAVAIL:
		return ErrExhausted
	default:
		return err
	}
}

// Open registers an already-created, caller-owned descriptor:
// for example a socketpair half, or a descriptor handed over by a process
// supervisor. It is forced non-blocking before registration.
func (e *Engine) Open(fd int) (UUID, error) {
	if err := unix.SetNonblock(fd, true); err != nil {
		return InvalidUUID, err
	}
	return e.register(fd), nil
}

// register installs fd at a fresh generation in the registry and returns
// its new UUID.
func (e *Engine) register(fd int) UUID {
	res := e.registry.clear(fd, true)
	e.disposeOldQueue(res)
	e.metrics.incOpenConnections()
	return e.registry.fd2uuid(fd)
}

// Close requests a graceful shutdown of uuid: any already-queued bytes are
// given one last chance to drain before the descriptor is closed. If uuid
// is already invalid this is a no-op.
func (e *Engine) Close(uuid UUID) error {
	fd := fdOf(uuid)
	ent, ok := e.registry.at(fd)
	if !ok {
		return nil
	}

	ent.lock.Lock()
	if !ent.open || ent.generation != generationOf(uuid) {
		ent.lock.Unlock()
		return nil
	}
	ent.closePending = true
	ent.lock.Unlock()

	_ = e.FlushStrong(uuid)
	return e.ForceClose(uuid)
}

// ForceClose shuts down both directions of uuid's descriptor, closes it,
// discarding any queued, undelivered bytes, and bumps the slot's generation
// so the old uuid can never again validate. Safe to call more
// than once or on an already-invalid uuid.
func (e *Engine) ForceClose(uuid UUID) error {
	fd := fdOf(uuid)
	ent, ok := e.registry.at(fd)
	if !ok {
		return nil
	}

	ent.lock.Lock()
	if ent.generation != generationOf(uuid) {
		ent.lock.Unlock()
		return nil
	}
	wasOpen := ent.open
	ent.lock.Unlock()

	if !wasOpen {
		return nil
	}

	e.reactor.remove(uuid)

	res := e.registry.clear(fd, false)
	e.disposeOldQueue(res)

	_ = unix.Shutdown(fd, unix.SHUT_RDWR)
	closeErr := unix.Close(fd)

	e.reactor.onClose(uuid)
	e.metrics.decOpenConnections()
	e.metrics.incForcedCloses()

	return closeErr
}

// forceClose is the fd-addressed variant flush uses when a write fails:
// by the time a fatal error surfaces, the caller may not know the exact
// generation that was live when the write started, so it closes whatever
// is currently installed at fd.
func (e *Engine) forceClose(fd int) {
	u := e.registry.fd2uuid(fd)
	if u == InvalidUUID {
		return
	}
	_ = e.ForceClose(u)
}

// disposeOldQueue releases every packet a cleared slot used to own and
// invokes its old hook's OnClear, outside of any entry lock.
func (e *Engine) disposeOldQueue(res clearResult) {
	for pk := res.oldHead; pk != nil; {
		next := pk.next
		e.pool.release(pk)
		pk = next
	}
	if res.wasOpen {
		res.oldHook.OnClear(res.oldUUID, res.oldHook)
	}
}

// IsValid reports whether uuid currently names an open connection.
func (e *Engine) IsValid(uuid UUID) bool {
	return e.registry.validate(uuid)
}

// HasPending reports whether uuid has any undelivered, queued bytes.
func (e *Engine) HasPending(uuid UUID) bool {
	fd := fdOf(uuid)
	ent, ok := e.registry.at(fd)
	if !ok {
		return false
	}
	ent.lock.Lock()
	defer ent.lock.Unlock()
	if ent.generation != generationOf(uuid) {
		return false
	}
	return ent.head != nil
}

// Fd2UUID returns the UUID currently valid for fd, or InvalidUUID.
func (e *Engine) Fd2UUID(fd int) UUID {
	return e.registry.fd2uuid(fd)
}

func domainOf(sa unix.Sockaddr) (int, error) {
	switch sa.(type) {
	case *unix.SockaddrInet4:
		return unix.AF_INET, nil
	case *unix.SockaddrInet6:
		return unix.AF_INET6, nil
	case *unix.SockaddrUnix:
		return unix.AF_UNIX, nil
	default:
		return -1, ErrBadFD
	}
}
