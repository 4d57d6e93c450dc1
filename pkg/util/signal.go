package util

import "sync"

// SignalHandler receives the emitting object plus any extra parameters.
type SignalHandler func(sender any, params ...any)

// SignalHub is a minimal in-process publish/subscribe hub used to decouple
// model events (user created, artifact uploaded) from their listeners.
type SignalHub struct {
	mu       sync.RWMutex
	handlers map[string][]SignalHandler
}

var (
	sigOnce sync.Once
	sigHub  *SignalHub
)

// Sig returns the process-wide hub.
func Sig() *SignalHub {
	sigOnce.Do(func() {
		sigHub = &SignalHub{handlers: make(map[string][]SignalHandler)}
	})
	return sigHub
}

func (h *SignalHub) Connect(sig string, fn SignalHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handlers[sig] = append(h.handlers[sig], fn)
}

func (h *SignalHub) Emit(sig string, sender any, params ...any) {
	h.mu.RLock()
	fns := append([]SignalHandler(nil), h.handlers[sig]...)
	h.mu.RUnlock()
	for _, fn := range fns {
		fn(sender, params...)
	}
}
