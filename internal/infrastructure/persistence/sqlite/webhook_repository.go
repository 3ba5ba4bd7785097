package sqlite

import (
	"database/sql"
	"errors"

	"github.com/orkesta-pay/settlement-go/internal/domain/webhook"
)

type WebhookRepository struct {
	db *sql.DB
}

func NewWebhookRepository(db *sql.DB) *WebhookRepository {
	return &WebhookRepository{db: db}
}

// SaveIfNotExist relies on the primary key over the external event id: the
// second delivery of the same event inserts zero rows, which is the
// idempotency signal.
func (r *WebhookRepository) SaveIfNotExist(e *webhook.Event) (bool, error) {
	res, err := r.db.Exec(
		`INSERT OR IGNORE INTO webhook_events
		 (event_id, event_type, tenant_id, payload, idempotency_key,
		  processed, attempts, last_error, received_at, processed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.EventID,
		string(e.Type),
		e.TenantID,
		e.Payload,
		e.IdempotencyKey,
		e.Processed,
		e.Attempts,
		e.LastError,
		e.ReceivedAt,
		e.ProcessedAt,
	)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	// 0 rows = idempotency hit
	return affected == 1, nil
}

func (r *WebhookRepository) FindByID(eventID string) (*webhook.Event, error) {
	row := r.db.QueryRow(
		selectEvent+` WHERE event_id = ?`,
		eventID,
	)

	e, err := scanEvent(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, webhook.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *WebhookRepository) Update(e *webhook.Event) error {
	res, err := r.db.Exec(
		`UPDATE webhook_events
		 SET processed = ?, attempts = ?, last_error = ?, processed_at = ?
		 WHERE event_id = ?`,
		e.Processed,
		e.Attempts,
		e.LastError,
		e.ProcessedAt,
		e.EventID,
	)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return webhook.ErrNotFound
	}

	return nil
}

func (r *WebhookRepository) ListRecent(tenantID string, eventType webhook.EventType, limit int) ([]*webhook.Event, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(
		selectEvent+`
		 WHERE (? = '' OR tenant_id = ?)
		   AND (? = '' OR event_type = ?)
		 ORDER BY received_at DESC
		 LIMIT ?`,
		tenantID, tenantID,
		string(eventType), string(eventType),
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEvents(rows)
}

func (r *WebhookRepository) FindFailed(limit int) ([]*webhook.Event, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(
		selectEvent+`
		 WHERE processed = 0 AND attempts > 0
		 ORDER BY received_at ASC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEvents(rows)
}

const selectEvent = `SELECT event_id, event_type, tenant_id, payload,
	idempotency_key, processed, attempts, last_error, received_at, processed_at
	FROM webhook_events`

func scanEvent(scan func(dest ...any) error) (*webhook.Event, error) {
	var (
		e   webhook.Event
		typ string
	)

	if err := scan(
		&e.EventID,
		&typ,
		&e.TenantID,
		&e.Payload,
		&e.IdempotencyKey,
		&e.Processed,
		&e.Attempts,
		&e.LastError,
		&e.ReceivedAt,
		&e.ProcessedAt,
	); err != nil {
		return nil, err
	}

	e.Type = webhook.EventType(typ)
	return &e, nil
}

func collectEvents(rows *sql.Rows) ([]*webhook.Event, error) {
	var out []*webhook.Event
	for rows.Next() {
		e, err := scanEvent(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
