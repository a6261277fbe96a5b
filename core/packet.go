package core

// kind discriminates the three packet shapes a packet can hold.
type kind int

const (
	kindInline kind = iota
	kindExternal
	kindFile
)

// packet is the unit of enqueued outbound work. Rather than packing a
// C-style header into the fixed payload area, it uses a kind discriminator
// plus typed fields — payload is still retained at its configured,
// pool-resident size so the pool's memory bound holds regardless of which
// variant occupies a given slot.
type packet struct {
	kind   kind
	pooled bool // true if this packet is slab-resident, false if heap overflow
	urgent bool

	next *packet

	// length is the total number of bytes this packet represents; sent
	// bytes are tracked on the owning connection entry as a connection-level
	// cursor over the head packet, not here, so that a
	// packet can be re-queued without losing the invariant that "sent" only
	// ever describes progress on the current head.
	length int

	// payload backs kindInline (payload[:length] is the inline copy) and
	// the scratch buffer for kindFile's positional reads.
	payload []byte

	// kindExternal fields: a moved or borrowed memory region plus its
	// deallocator, invoked exactly once on release.
	extData    []byte
	extDealloc func()

	// kindFile fields: the source descriptor, base offset, and an optional
	// closer invoked exactly once on release.
	fileFD     int
	fileOffset int64
	fileCloser func() error

	// onRelease is set by whichever writer/constructor needs a release-time
	// callback (the pool always invokes it, once, before recycling).
	onRelease func()
}

// reset clears a packet back to a neutral, reusable state. Called by the
// pool on every release, regardless of packet kind.
func (p *packet) reset() {
	p.kind = kindInline
	p.pooled = p.pooled // preserved by caller; reset never changes identity
	p.urgent = false
	p.next = nil
	p.length = 0
	p.extData = nil
	p.extDealloc = nil
	p.fileFD = 0
	p.fileOffset = 0
	p.fileCloser = nil
	p.onRelease = nil
}
