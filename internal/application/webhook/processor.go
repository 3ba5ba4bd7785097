package webhook

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/orkesta-pay/settlement-go/internal/application/contracts"
	domainWebhook "github.com/orkesta-pay/settlement-go/internal/domain/webhook"
	"github.com/orkesta-pay/settlement-go/internal/infra/logging"
	"github.com/orkesta-pay/settlement-go/internal/infra/metrics"
)

// Result is what ingestion reports back to the delivery endpoint.
type Result struct {
	EventID      string   `json:"event_id"`
	Processed    bool     `json:"processed"`
	WasDuplicate bool     `json:"was_duplicate"`
	HandlersRun  int      `json:"handlers_run"`
	Errors       []string `json:"errors,omitempty"`
}

// envelope is the minimal shape every processor event shares.
type envelope struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Created int64  `json:"created"`
	Data    struct {
		Object struct {
			ID       string            `json:"id"`
			Metadata map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

// Processor ingests processor notifications exactly once. The persisted
// event record is the idempotency boundary: it is written before any
// handler runs, and a crash between persist and dispatch leaves a failed
// event for redelivery, never a duplicated side effect.
type Processor struct {
	Repo       domainWebhook.Repository
	Registry   *Registry
	Secret     string
	SkewWindow time.Duration
	Logger     logging.Logger
	Metrics    *metrics.Counters
	Now        func() time.Time
}

func (p *Processor) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// Ingest verifies, deduplicates, persists and dispatches one delivery.
// Duplicate deliveries return the previous outcome without touching any
// handler.
func (p *Processor) Ingest(ctx context.Context, payload []byte, sigHeader string) (*Result, error) {
	p.Metrics.IncEventsReceived()

	if err := VerifySignature(payload, sigHeader, p.Secret, p.SkewWindow, p.now()); err != nil {
		p.Logger.Error("webhook rejected", map[string]any{"error": err.Error()})
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, contracts.Invalid("payload", "malformed event json")
	}
	if env.ID == "" || env.Type == "" {
		return nil, contracts.Invalid("payload", "event id and type are required")
	}

	event := &domainWebhook.Event{
		EventID:        env.ID,
		Type:           domainWebhook.EventType(env.Type),
		TenantID:       extractTenantID(env),
		Payload:        payload,
		IdempotencyKey: idempotencyKey(env),
		ReceivedAt:     p.now(),
	}

	inserted, err := p.Repo.SaveIfNotExist(event)
	if err != nil {
		return nil, err
	}
	if !inserted {
		existing, err := p.Repo.FindByID(env.ID)
		if err != nil {
			return nil, err
		}

		p.Metrics.IncEventsDuplicate()
		p.Logger.Info("duplicate webhook suppressed", map[string]any{"event_id": env.ID})
		return &Result{
			EventID:      env.ID,
			Processed:    existing.Processed,
			WasDuplicate: true,
		}, nil
	}

	result := p.dispatch(event)

	event.Processed = result.Processed
	event.Attempts++
	if result.Processed {
		event.ProcessedAt = p.now()
		p.Metrics.IncEventsProcessed()
	} else {
		event.LastError = strings.Join(result.Errors, "; ")
		p.Metrics.IncEventsFailed()
	}

	if err := p.Repo.Update(event); err != nil {
		return nil, err
	}

	return result, nil
}

// dispatch runs every registered handler for the type, isolating partial
// failures: one handler failing does not block the rest.
func (p *Processor) dispatch(event *domainWebhook.Event) *Result {
	handlers := p.Registry.HandlersFor(event.Type)
	if len(handlers) == 0 {
		p.Logger.Info("no handlers for event type", map[string]any{
			"event_id": event.EventID,
			"type":     string(event.Type),
		})
		return &Result{EventID: event.EventID, Processed: true}
	}

	result := &Result{EventID: event.EventID}
	for _, handler := range handlers {
		if err := handler(event); err != nil {
			result.Errors = append(result.Errors, err.Error())
			p.Logger.Error("webhook handler failed", map[string]any{
				"event_id": event.EventID,
				"type":     string(event.Type),
				"error":    err.Error(),
			})
			continue
		}
		result.HandlersRun++
	}

	result.Processed = len(result.Errors) == 0
	return result
}

// EventStatus reports the processing state of a previously received event.
func (p *Processor) EventStatus(ctx context.Context, eventID string) (*domainWebhook.Event, error) {
	return p.Repo.FindByID(eventID)
}

// RecentEvents lists received events, newest first, with optional tenant
// and type filters.
func (p *Processor) RecentEvents(ctx context.Context, tenantID string, eventType domainWebhook.EventType, limit int) ([]*domainWebhook.Event, error) {
	return p.Repo.ListRecent(tenantID, eventType, limit)
}

// FailedEvents lists events whose handlers did not all succeed, oldest
// first, for manual redelivery.
func (p *Processor) FailedEvents(ctx context.Context, limit int) ([]*domainWebhook.Event, error) {
	return p.Repo.FindFailed(limit)
}

func idempotencyKey(env envelope) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%s|%s|%d|%s", env.ID, env.Type, env.Created, env.Data.Object.ID))
	return env.ID + "-" + hex.EncodeToString(sum[:])[:16]
}

func extractTenantID(env envelope) string {
	if id, ok := env.Data.Object.Metadata["tenant_id"]; ok && id != "" {
		return id
	}
	return "unknown"
}
