package inmemory

import (
	"sort"
	"sync"

	"github.com/orkesta-pay/settlement-go/internal/domain/webhook"
)

type WebhookRepository struct {
	mu     sync.Mutex
	events map[string]*webhook.Event
}

func NewWebhookRepository() *WebhookRepository {
	return &WebhookRepository{
		events: make(map[string]*webhook.Event),
	}
}

// SaveIfNotExist admits exactly one writer per external event id; the
// mutex makes the check-then-insert atomic for concurrent deliveries.
func (r *WebhookRepository) SaveIfNotExist(e *webhook.Event) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.events[e.EventID]; exists {
		return false, nil
	}

	cp := *e
	r.events[e.EventID] = &cp
	return true, nil
}

func (r *WebhookRepository) FindByID(eventID string) (*webhook.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.events[eventID]
	if !ok {
		return nil, webhook.ErrNotFound
	}

	cp := *e
	return &cp, nil
}

func (r *WebhookRepository) Update(e *webhook.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.events[e.EventID]; !ok {
		return webhook.ErrNotFound
	}

	cp := *e
	r.events[e.EventID] = &cp
	return nil
}

func (r *WebhookRepository) ListRecent(tenantID string, eventType webhook.EventType, limit int) ([]*webhook.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*webhook.Event
	for _, e := range r.events {
		if tenantID != "" && e.TenantID != tenantID {
			continue
		}
		if eventType != "" && e.Type != eventType {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].ReceivedAt.After(out[j].ReceivedAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *WebhookRepository) FindFailed(limit int) ([]*webhook.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*webhook.Event
	for _, e := range r.events {
		if !e.Processed && e.Attempts > 0 {
			cp := *e
			out = append(out, &cp)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].ReceivedAt.Before(out[j].ReceivedAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
