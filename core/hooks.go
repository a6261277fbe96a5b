package core

import "golang.org/x/sys/unix"

// Hooks is the pluggable read/write/flush/on_clear quartet a transport
// layer (e.g. TLS) installs to interpose on a connection's bytes without
// callers changing how they invoke write/read.
//
// Missing entries in a caller-supplied Hooks are filled with the defaults
// at install time (see fillDefaults), so a replacement only needs to
// provide the entries it actually wants to override — at minimum Read and
// Write.
type Hooks struct {
	Read    func(u UUID, buf []byte) (int, error)
	Write   func(u UUID, buf []byte) (int, error)
	Flush   func(u UUID) (int, error)
	OnClear func(u UUID, hooks Hooks)

	// isDefaultHooks is set only by defaultHooks/fillDefaults(Hooks{}); any
	// caller-supplied override clears it, regardless of which field was
	// overridden.
	isDefaultHooks bool
}

// isDefault reports whether h is exactly the process-wide default hook
// table (by comparing the Write func value's identity via a marker field).
// Used by the file-segment writer to decide whether the sendfile fast path
// may bypass read+write: it must never skip a non-default, i.e.
// transport-layer, hook.
func (h Hooks) isDefault() bool {
	return h.isDefaultHooks
}

func defaultHooks() Hooks {
	h := Hooks{
		Read: func(u UUID, buf []byte) (int, error) {
			return unix.Read(fdOf(u), buf)
		},
		Write: func(u UUID, buf []byte) (int, error) {
			return unix.Write(fdOf(u), buf)
		},
		Flush: func(u UUID) (int, error) {
			return 0, nil
		},
		OnClear: func(u UUID, hooks Hooks) {},
	}
	h.isDefaultHooks = true
	return h
}

// fillDefaults populates any nil entry of h with the corresponding
// default. The returned Hooks is never considered the default table, even if
// every entry happened to be filled in, because installing a caller-
// supplied table at all signals transport-layer intent for the sendfile
// short-circuit decision.
func fillDefaults(h Hooks) Hooks {
	wasEmpty := h.Read == nil && h.Write == nil && h.Flush == nil && h.OnClear == nil

	d := defaultHooks()
	if h.Read == nil {
		h.Read = d.Read
	}
	if h.Write == nil {
		h.Write = d.Write
	}
	if h.Flush == nil {
		h.Flush = d.Flush
	}
	if h.OnClear == nil {
		h.OnClear = d.OnClear
	}
	h.isDefaultHooks = wasEmpty
	return h
}
