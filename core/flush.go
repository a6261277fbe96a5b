package core

import (
	"golang.org/x/sync/errgroup"
)

// Flush drains as much of uuid's outbound queue as the kernel will accept
// right now, without blocking. It returns ErrBadFD if uuid no longer names
// an open connection.
func (e *Engine) Flush(uuid UUID) error {
	fd := fdOf(uuid)
	ent, ok := e.registry.at(fd)
	if !ok {
		return ErrBadFD
	}

	ent.lock.Lock()
	if !ent.open || ent.generation != generationOf(uuid) {
		ent.lock.Unlock()
		return ErrBadFD
	}
	progressed, err := e.drainLocked(uuid, ent)
	ent.lock.Unlock()

	_ = progressed
	if err != nil {
		e.forceClose(fd)
		return err
	}
	return nil
}

// FlushStrong retries Flush on uuid until the queue is empty or a round
// makes no further progress: it keeps trying while bytes are actually
// moving, but never spins once the kernel stops accepting writes.
func (e *Engine) FlushStrong(uuid UUID) error {
	fd := fdOf(uuid)
	for {
		ent, ok := e.registry.at(fd)
		if !ok {
			return ErrBadFD
		}

		ent.lock.Lock()
		if !ent.open || ent.generation != generationOf(uuid) {
			ent.lock.Unlock()
			return ErrBadFD
		}
		if ent.head == nil {
			ent.lock.Unlock()
			return nil
		}
		progressed, err := e.drainLocked(uuid, ent)
		ent.lock.Unlock()

		if err != nil {
			e.forceClose(fd)
			return err
		}
		if !progressed {
			return nil
		}
	}
}

// FlushAll flushes every open connection concurrently, using a bounded
// goroutine group. Called by the pool's backpressure path before it spills
// to the heap allocator. Per-connection errors do not stop sibling flushes.
func (e *Engine) FlushAll() error {
	n := e.registry.capacity()
	var g errgroup.Group
	g.SetLimit(64)

	for fd := 0; fd < n; fd++ {
		fd := fd
		ent, ok := e.registry.at(fd)
		if !ok {
			continue
		}
		g.Go(func() error {
			u := e.registry.fd2uuid(fd)
			if u == InvalidUUID {
				return nil
			}
			ent.lock.Lock()
			if !ent.open || ent.head == nil {
				ent.lock.Unlock()
				return nil
			}
			_, err := e.drainLocked(u, ent)
			ent.lock.Unlock()
			if err != nil {
				e.forceClose(fd)
			}
			return nil
		})
	}

	return g.Wait()
}

// drainLocked first drains the hook's internal buffer (if any) by invoking
// hooks.Flush repeatedly until it reports nothing left, then writes as much
// of ent's queue as the kernel currently accepts. Caller must hold ent.lock.
// Returns whether any byte was delivered this call, and the first fatal
// error encountered (a transient errno is absorbed by writeOne and never
// reaches here).
func (e *Engine) drainLocked(u UUID, ent *entry) (bool, error) {
	progressed := false

	for {
		n, err := ent.hooks.Flush(u)
		if err != nil && !transientErrno(err) {
			return progressed, err
		}
		if n <= 0 {
			break
		}
		progressed = true
	}

	for ent.head != nil {
		pk := ent.head
		n, err := writeOne(e.cfg, ent.hooks, u, pk, ent.sent)
		if err != nil {
			return progressed, err
		}
		if n == 0 {
			break
		}
		progressed = true
		ent.sent += n

		if ent.sent < pk.length {
			break
		}

		ent.head = pk.next
		if ent.head == nil {
			ent.tail = nil
		}
		ent.sent = 0
		e.pool.release(pk)
	}

	return progressed, nil
}

// flushAll is the unexported entry point the pool's grab backpressure path
// uses; it never returns an error to its caller, since exhaustion only
// needs flushing to make room, not to succeed completely.
func (e *Engine) flushAll() {
	_ = e.FlushAll()
}
