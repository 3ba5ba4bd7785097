package webhook

import (
	"sync"

	domainWebhook "github.com/orkesta-pay/settlement-go/internal/domain/webhook"
)

// Handler consumes a persisted event and applies its side effects. The
// processor never re-dispatches an event already marked processed.
type Handler func(*domainWebhook.Event) error

// Registry maps event types to their handlers. It is owned by the
// orchestrator instance and injected where needed, never process-global.
type Registry struct {
	mu       sync.RWMutex
	handlers map[domainWebhook.EventType][]Handler
}

func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[domainWebhook.EventType][]Handler),
	}
}

func (r *Registry) Register(eventType domainWebhook.EventType, handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.handlers[eventType] = append(r.handlers[eventType], handler)
}

func (r *Registry) HandlersFor(eventType domainWebhook.EventType) []Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.handlers[eventType]
}
