package core

import (
	"io"

	"golang.org/x/sys/unix"
)

// writeOne pushes as many bytes of the head packet's remaining, unsent
// payload as the kernel will currently accept, dispatching on packet kind.
// sent is the number of bytes of this packet already
// delivered; it returns the number of additional bytes delivered and any
// error. A transient errno (EAGAIN et al.) is reported as (0, nil): the
// caller re-arms for writability and tries again later rather than
// treating it as fatal.
func writeOne(cfg Config, hooks Hooks, u UUID, pk *packet, sent int) (int, error) {
	switch pk.kind {
	case kindInline:
		return writeBuffer(hooks, u, pk.payload[sent:pk.length])
	case kindExternal:
		return writeBuffer(hooks, u, pk.extData[sent:pk.length])
	case kindFile:
		return writeFile(cfg, hooks, u, pk, sent)
	default:
		return 0, nil
	}
}

func writeBuffer(hooks Hooks, u UUID, buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	n, err := hooks.Write(u, buf)
	if err != nil {
		if transientErrno(err) {
			return n, nil
		}
		return n, err
	}
	return n, nil
}

// writeFile delivers bytes from a file-segment packet. When the installed
// hooks are exactly the process-wide default (no TLS or other transport
// interposed), it takes the sendfile fast path straight from the source
// descriptor to the socket; otherwise it must fall back to a positional
// read into scratch memory followed by the ordinary write hook, since a
// transport hook needs to see the plaintext bytes.
func writeFile(cfg Config, hooks Hooks, u UUID, pk *packet, sent int) (int, error) {
	remaining := pk.length - sent
	if remaining <= 0 {
		return 0, nil
	}
	offset := pk.fileOffset + int64(sent)

	if hooks.isDefault() {
		n, err := unix.Sendfile(fdOf(u), pk.fileFD, &offset, remaining)
		if err != nil {
			if transientErrno(err) {
				return 0, nil
			}
			return n, err
		}
		return n, nil
	}

	chunk := remaining
	if chunk > cfg.BufferFileReadSize {
		chunk = cfg.BufferFileReadSize
	}
	if chunk > len(pk.payload) {
		chunk = len(pk.payload)
	}

	rn, err := unix.Pread(pk.fileFD, pk.payload[:chunk], offset)
	if err != nil {
		if err == io.EOF {
			return 0, nil
		}
		if transientErrno(err) {
			return 0, nil
		}
		return 0, err
	}
	if rn == 0 {
		return 0, nil
	}

	return writeBuffer(hooks, u, pk.payload[:rn])
}
