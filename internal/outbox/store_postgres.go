package outbox

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	txcontext "github.com/dr-roshyara/public-digit-sub005/pkg/platform/tx"
)

// PostgresStore writes outbox rows through the ambient transaction, so events
// commit or roll back with the member write that produced them.
type PostgresStore struct {
	db    *sql.DB
	clock func() time.Time
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, clock: time.Now}
}

func (s *PostgresStore) Append(ctx context.Context, msgs ...Message) error {
	query := `
		INSERT INTO outbox (id, aggregate_type, aggregate_id, tenant_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	exec := txcontext.Exec(ctx, s.db)
	for _, m := range msgs {
		_, err := exec.ExecContext(ctx, query,
			m.ID,
			m.AggregateType,
			m.AggregateID,
			m.TenantID,
			m.EventType,
			m.Payload,
			m.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert outbox entry: %w", err)
		}
	}
	return nil
}

// ProcessBatch locks a batch with FOR UPDATE SKIP LOCKED so several relays can
// run side by side without publishing the same row twice.
func (s *PostgresStore) ProcessBatch(ctx context.Context, limit int, publish PublishFunc) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin outbox batch: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	rows, err := tx.QueryContext(ctx, `
		SELECT id, aggregate_type, aggregate_id, tenant_id, event_type, payload, created_at
		FROM outbox
		WHERE published_at IS NULL
		ORDER BY created_at, id
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`, limit)
	if err != nil {
		return 0, fmt.Errorf("select outbox batch: %w", err)
	}
	var batch []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.AggregateType, &m.AggregateID, &m.TenantID, &m.EventType, &m.Payload, &m.CreatedAt); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan outbox entry: %w", err)
		}
		batch = append(batch, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate outbox batch: %w", err)
	}
	if len(batch) == 0 {
		return 0, nil
	}

	if err := publish(ctx, batch); err != nil {
		return 0, err
	}

	ids := make([]string, len(batch))
	for i, m := range batch {
		ids[i] = m.ID.String()
	}
	if _, err := tx.ExecContext(ctx, `UPDATE outbox SET published_at = $1 WHERE id = ANY($2::uuid[])`,
		s.clock(), pq.Array(ids)); err != nil {
		return 0, fmt.Errorf("mark outbox published: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit outbox batch: %w", err)
	}
	return len(batch), nil
}
