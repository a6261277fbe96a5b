package core

// UUID is a process-local opaque identifier encoding (descriptor,
// generation). It must never be exposed on the wire or persisted across
// process restarts.
type UUID int64

// InvalidUUID is returned wherever an operation cannot produce a valid
// identifier.
const InvalidUUID UUID = -1

// generationBits is the width of the generation counter packed into the
// low bits of a UUID.
const generationBits = 8
const generationMask = 1<<generationBits - 1

// newUUID forms uuid = (fd << 8) | generation.
func newUUID(fd int, generation uint8) UUID {
	return UUID(int64(fd)<<generationBits | int64(generation))
}

// fdOf extracts the descriptor half of a UUID.
func fdOf(u UUID) int {
	return int(int64(u) >> generationBits)
}

// FD exposes the raw descriptor packed into uuid, for a caller-owned event
// reactor that needs to register it with epoll/kqueue directly.
func FD(uuid UUID) int {
	return fdOf(uuid)
}

// generationOf extracts the generation half of a UUID.
func generationOf(u UUID) uint8 {
	return uint8(int64(u) & generationMask)
}
