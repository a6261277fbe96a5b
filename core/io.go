package core

import (
	"github.com/dasimmet/gofacil/internal/rlimit"
	"golang.org/x/sys/unix"
)

// Read copies up to len(buf) bytes from uuid's socket into buf, dispatching
// through the installed read hook. A transient errno
// (nothing available right now) is reported as (0, nil). Any other error is
// fatal: the connection is force-closed before the error is returned.
func (e *Engine) Read(uuid UUID, buf []byte) (int, error) {
	fd := fdOf(uuid)
	ent, ok := e.registry.at(fd)
	if !ok {
		return 0, ErrBadFD
	}

	ent.lock.Lock()
	if !ent.open || ent.generation != generationOf(uuid) {
		ent.lock.Unlock()
		return 0, ErrClosed
	}
	hooks := ent.hooks
	ent.lock.Unlock()

	n, err := hooks.Read(uuid, buf)
	if err != nil {
		if transientErrno(err) {
			return 0, nil
		}
		e.forceClose(fd)
		return n, err
	}
	e.reactor.touch(uuid)
	return n, nil
}

// Write enqueues a copy of buf as an inline packet and
// attempts an immediate opportunistic flush. It never blocks: whatever
// doesn't fit in the kernel's send buffer right now waits in the queue for
// a later Flush.
func (e *Engine) Write(uuid UUID, buf []byte) error {
	return e.Write2(uuid, buf, WriteOptions{})
}

// WriteOptions controls how Write2 enqueues a payload.
type WriteOptions struct {
	// Urgent, when true, places the packet at the head of the queue rather
	// than the tail, ahead of anything already queued but not yet sent.
	Urgent bool
	// Move, when true, takes ownership of buf directly (kindExternal)
	// instead of copying it into pool-resident storage; Dealloc, if set, is
	// invoked exactly once when the packet is released. Ignored when IsFD
	// is set.
	Move    bool
	Dealloc func()

	// IsFD marks this Write2 call as a file-segment send: buf is ignored
	// and the packet instead queues a positional transfer read straight
	// from FD, starting at Offset and running for Length bytes. Close, if
	// set, is invoked exactly once when the packet is released, whether
	// the segment was fully delivered or the connection was force-closed
	// first.
	IsFD   bool
	FD     int
	Offset int64
	Length int
	Close  func() error
}

// Write2 is the general enqueue entry point behind Write.
func (e *Engine) Write2(uuid UUID, buf []byte, opts WriteOptions) error {
	fd := fdOf(uuid)
	ent, ok := e.registry.at(fd)
	if !ok {
		return ErrBadFD
	}

	if opts.IsFD {
		return e.write2File(uuid, ent, opts)
	}

	pk := e.pool.grab(e.cfg, e.flushAll)
	switch {
	case opts.Move:
		pk.kind = kindExternal
		pk.extData = buf
		pk.extDealloc = opts.Dealloc
		pk.length = len(buf)
	case len(buf) > len(pk.payload):
		// Doesn't fit the pool's fixed payload area: own a private copy
		// instead of truncating silently.
		pk.kind = kindExternal
		owned := make([]byte, len(buf))
		copy(owned, buf)
		pk.extData = owned
		pk.length = len(owned)
	default:
		pk.kind = kindInline
		pk.length = copy(pk.payload, buf)
	}
	pk.urgent = opts.Urgent
	if opts.Dealloc != nil {
		pk.onRelease = opts.Dealloc
	}

	ent.lock.Lock()
	if !ent.open || ent.generation != generationOf(uuid) {
		ent.lock.Unlock()
		e.pool.release(pk)
		return ErrClosed
	}
	enqueueLocked(ent, pk)
	hooks := ent.hooks
	ent.lock.Unlock()

	_ = hooks
	return e.Flush(uuid)
}

// write2File builds and enqueues a kindFile packet for a Write2 call with
// IsFD set. Offset and Length must both be non-negative, or ErrRange is
// returned and no packet is queued.
func (e *Engine) write2File(uuid UUID, ent *entry, opts WriteOptions) error {
	if opts.Offset < 0 || opts.Length < 0 {
		return ErrRange
	}

	pk := e.pool.grab(e.cfg, e.flushAll)
	pk.kind = kindFile
	pk.fileFD = opts.FD
	pk.fileOffset = opts.Offset
	pk.length = opts.Length
	pk.urgent = opts.Urgent
	pk.fileCloser = opts.Close

	ent.lock.Lock()
	if !ent.open || ent.generation != generationOf(uuid) {
		ent.lock.Unlock()
		e.pool.release(pk)
		return ErrClosed
	}
	enqueueLocked(ent, pk)
	ent.lock.Unlock()

	return e.Flush(uuid)
}

// enqueueLocked links pk into ent's outbound queue, honouring urgent
// ordering: urgent packets join the end of the urgent run at the head
// rather than the very end of the queue.
func enqueueLocked(ent *entry, pk *packet) {
	if ent.head == nil {
		ent.head = pk
		ent.tail = pk
		return
	}
	if !pk.urgent {
		ent.tail.next = pk
		ent.tail = pk
		return
	}

	// Insert pk right after the run of already-urgent packets at the
	// front. ent.sent only ever describes progress on whatever is
	// currently head, so a partially-sent head can never be displaced:
	// the scan starts at ent.head.next instead in that case.
	var prev *packet
	cur := ent.head
	if ent.sent > 0 {
		prev = ent.head
		cur = ent.head.next
	}
	for cur != nil && cur.urgent {
		prev = cur
		cur = cur.next
	}

	pk.next = cur
	if prev == nil {
		ent.head = pk
	} else {
		prev.next = pk
	}
	if pk.next == nil {
		ent.tail = pk
	}
}

// Buffer is a pool packet checked out for the caller to fill directly,
// bypassing the copy Write2 otherwise performs. Its zero value is not
// usable; obtain one from BufferCheckout.
type Buffer struct {
	pk *packet
}

// Payload is the pool-resident scratch area the caller fills before
// calling BufferSend. Writing past len(Payload()) is a programmer error.
func (b *Buffer) Payload() []byte {
	return b.pk.payload
}

// BufferCheckout grabs a packet from the pool for direct filling.
func (e *Engine) BufferCheckout() *Buffer {
	pk := e.pool.grab(e.cfg, e.flushAll)
	e.metrics.poolInUse.Inc()
	return &Buffer{pk: pk}
}

// BufferSend enqueues the first n bytes of a checked-out Buffer without
// copying them again, and hands the packet straight to the connection's
// queue.
func (e *Engine) BufferSend(uuid UUID, buf *Buffer, n int) error {
	e.metrics.poolInUse.Dec()

	fd := fdOf(uuid)
	ent, ok := e.registry.at(fd)
	if !ok {
		e.pool.release(buf.pk)
		return ErrBadFD
	}

	buf.pk.kind = kindInline
	buf.pk.length = n

	ent.lock.Lock()
	if !ent.open || ent.generation != generationOf(uuid) {
		ent.lock.Unlock()
		e.pool.release(buf.pk)
		return ErrClosed
	}
	enqueueLocked(ent, buf.pk)
	ent.lock.Unlock()

	return e.Flush(uuid)
}

// BufferFree releases a Buffer back to the pool without sending it.
func (e *Engine) BufferFree(buf *Buffer) {
	e.metrics.poolInUse.Dec()
	e.pool.release(buf.pk)
}

// RWHookGet returns the currently installed hook table for uuid.
func (e *Engine) RWHookGet(uuid UUID) (Hooks, error) {
	fd := fdOf(uuid)
	ent, ok := e.registry.at(fd)
	if !ok {
		return Hooks{}, ErrBadFD
	}
	ent.lock.Lock()
	defer ent.lock.Unlock()
	if !ent.open || ent.generation != generationOf(uuid) {
		return Hooks{}, ErrClosed
	}
	return ent.hooks, nil
}

// RWHookSet installs a new hook table for uuid, filling any nil entries
// with the process default.
func (e *Engine) RWHookSet(uuid UUID, hooks Hooks) error {
	fd := fdOf(uuid)
	ent, ok := e.registry.at(fd)
	if !ok {
		return ErrBadFD
	}
	ent.lock.Lock()
	defer ent.lock.Unlock()
	if !ent.open || ent.generation != generationOf(uuid) {
		return ErrClosed
	}
	ent.hooks = fillDefaults(hooks)
	return nil
}

// SetNonBlock is exposed for transport layers (e.g. a TLS handshake hook)
// that need to reassert non-blocking mode on a descriptor they briefly
// manipulated directly.
func (e *Engine) SetNonBlock(uuid UUID) error {
	fd := fdOf(uuid)
	if _, ok := e.registry.at(fd); !ok {
		return ErrBadFD
	}
	return unix.SetNonblock(fd, true)
}

// MaxCapacity reports the process's open-file-descriptor ceiling, raising
// the soft RLIMIT_NOFILE to the hard limit on first call.
func (e *Engine) MaxCapacity() (int, error) {
	return rlimit.Ceiling()
}
