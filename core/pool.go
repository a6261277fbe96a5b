package core

import (
	"sync"

	"github.com/dasimmet/gofacil/internal/spinlock"
)

// pool is a fixed-size pre-allocated packet pool plus overflow to the
// general allocator.
type pool struct {
	lock spinlock.Locker

	once sync.Once
	slab []packet // pool-resident storage, lifetime of the process
	free *packet  // free-list head; packets are linked through packet.next

	size int // BufferPacketPool, recorded for free-list-length assertions
}

func newPool(cfg Config) *pool {
	return &pool{size: cfg.BufferPacketPool}
}

// lazyInit links every slab entry into the free list on first use.
func (p *pool) lazyInit(cfg Config) {
	p.once.Do(func() {
		p.slab = make([]packet, cfg.BufferPacketPool)
		for i := range p.slab {
			p.slab[i].payload = make([]byte, cfg.BufferPacketSize)
			p.slab[i].pooled = true
			p.slab[i].next = p.free
			p.free = &p.slab[i]
		}
	})
}

// grabTry pops the free-list head, or returns nil if the pool is empty.
func (p *pool) grabTry(cfg Config) *packet {
	p.lazyInit(cfg)

	p.lock.Lock()
	defer p.lock.Unlock()

	if p.free == nil {
		return nil
	}
	pk := p.free
	p.free = pk.next
	pk.next = nil
	return pk
}

// grab never returns nil. It retries grabTry and, when
// the pool is exhausted, invokes flushAll to create backpressure before
// retrying, and finally spills to the general allocator so that a slow-but-
// not-failing peer can never deadlock a writer.
func (p *pool) grab(cfg Config, flushAll func()) *packet {
	if pk := p.grabTry(cfg); pk != nil {
		return pk
	}

	if flushAll != nil {
		flushAll()
	}

	if pk := p.grabTry(cfg); pk != nil {
		return pk
	}

	pk := &packet{payload: make([]byte, cfg.BufferPacketSize), pooled: false}
	return pk
}

// release invokes the packet's release callback and, for a file-segment
// packet, its fileCloser exactly once, resets it to a neutral
// state, and either returns it to the free list (pool-resident) or drops it
// for the garbage collector to reclaim (heap overflow).
func (p *pool) release(pk *packet) {
	if pk == nil {
		return
	}
	if pk.onRelease != nil {
		pk.onRelease()
	}
	if pk.fileCloser != nil {
		_ = pk.fileCloser()
	}
	pk.reset()

	if !pk.pooled {
		return
	}

	p.lock.Lock()
	pk.next = p.free
	p.free = pk
	p.lock.Unlock()
}

// freeListLen is a test/diagnostic helper: walks the free list and counts
// its entries.
func (p *pool) freeListLen() int {
	p.lock.Lock()
	defer p.lock.Unlock()

	n := 0
	for pk := p.free; pk != nil; pk = pk.next {
		n++
	}
	return n
}
