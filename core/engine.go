package core

// ReactorHooks are the weak, default-to-no-op collaborator hooks an event
// reactor external to this library's core installs to learn about activity
// and closes. None of them are required; a zero-value ReactorHooks is a
// complete no-op.
type ReactorHooks struct {
	// OnClose is invoked after a descriptor is closed and cleared.
	OnClose func(u UUID)
	// Remove is invoked before a close, to deregister from the reactor; its
	// return value is informational only.
	Remove func(u UUID) int
	// Touch is invoked on activity, to refresh a caller-owned timeout.
	Touch func(u UUID)
}

func (r ReactorHooks) onClose(u UUID) {
	if r.OnClose != nil {
		r.OnClose(u)
	}
}

func (r ReactorHooks) remove(u UUID) {
	if r.Remove != nil {
		r.Remove(u)
	}
}

// Touch invokes the scheduler hook for u, if one was installed. Exported so
// callers (and the socket package) can refresh their own idle timers from
// the same call sites the engine itself would use.
func (e *Engine) Touch(u UUID) {
	e.reactor.touch(u)
}

func (r ReactorHooks) touch(u UUID) {
	if r.Touch != nil {
		r.Touch(u)
	}
}

// Engine is the process-wide non-blocking socket I/O core: a packet pool
// and a connection registry, bound together with one build-time Config and
// one set of reactor collaborator hooks.
//
// An Engine is safe for concurrent use from any number of goroutines. The
// zero value is not usable; construct with NewEngine.
type Engine struct {
	cfg      Config
	pool     *pool
	registry *registry
	reactor  ReactorHooks
	metrics  engineMetrics
}

// NewEngine constructs an Engine with the given build-time configuration
// and reactor collaborator hooks. cfg is validated; an invalid cfg falls
// back to DefaultConfig().
func NewEngine(cfg Config, reactor ReactorHooks) *Engine {
	if cfg.Validate() != nil {
		cfg = DefaultConfig()
	}
	e := &Engine{cfg: cfg, reactor: reactor}
	e.pool = newPool(cfg)
	e.registry = newRegistry(e)
	e.metrics = newEngineMetrics()
	return e
}

// Config returns the engine's build-time configuration.
func (e *Engine) Config() Config {
	return e.cfg
}
