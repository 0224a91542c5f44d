package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"cosmetica/internal/domain"
)

type OutboxRepo struct{ db *sqlx.DB }

func NewOutboxRepo(db *sqlx.DB) *OutboxRepo { return &OutboxRepo{db: db} }

const outboxCols = `id, aggregate_type, aggregate_id, event_type, payload, created_at, processed_at, processing_attempts, last_error, status, claimed_at`

// CreateTx stores msg inside the caller's transaction.
func (r *OutboxRepo) CreateTx(ctx context.Context, tx *sqlx.Tx, msg *domain.OutboxMessage) error {
	err := tx.QueryRowxContext(ctx, tx.Rebind(`
		INSERT INTO outbox_messages(aggregate_type, aggregate_id, event_type, payload, created_at, processing_attempts, status)
		VALUES(?, ?, ?, ?, ?, 0, ?)
		RETURNING id
	`), msg.AggregateType, msg.AggregateID, msg.EventType, msg.Payload, msg.CreatedAt, msg.Status).Scan(&msg.ID)
	return wrap("create outbox message", err)
}

// Pending returns up to limit pending messages, oldest first.
func (r *OutboxRepo) Pending(ctx context.Context, limit int) ([]domain.OutboxMessage, error) {
	out := []domain.OutboxMessage{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
		SELECT `+outboxCols+` FROM outbox_messages
		WHERE status = ?
		ORDER BY id
		LIMIT ?
	`), domain.OutboxPending, limit)
	if err != nil {
		return nil, wrap("pending outbox", err)
	}
	return out, nil
}

func (r *OutboxRepo) Get(ctx context.Context, id int64) (*domain.OutboxMessage, error) {
	var m domain.OutboxMessage
	if err := r.db.GetContext(ctx, &m, r.db.Rebind(`SELECT `+outboxCols+` FROM outbox_messages WHERE id = ?`), id); err != nil {
		return nil, wrap("get outbox message", err)
	}
	return &m, nil
}

// Claimable returns up to limit messages a processor may take, oldest first:
// pending ones, and processing ones whose claim is older than staleBefore.
func (r *OutboxRepo) Claimable(ctx context.Context, limit int, staleBefore string) ([]domain.OutboxMessage, error) {
	out := []domain.OutboxMessage{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
		SELECT `+outboxCols+` FROM outbox_messages
		WHERE status = ? OR (status = ? AND (claimed_at IS NULL OR claimed_at < ?))
		ORDER BY id
		LIMIT ?
	`), domain.OutboxPending, domain.OutboxProcessing, staleBefore, limit)
	if err != nil {
		return nil, wrap("claimable outbox", err)
	}
	return out, nil
}

// MarkProcessing claims a pending message, or takes over a processing one
// whose claim is older than staleBefore. claimed is false when another
// worker holds it.
func (r *OutboxRepo) MarkProcessing(ctx context.Context, id int64, staleBefore string) (claimed bool, err error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE outbox_messages
		SET status = ?, processing_attempts = processing_attempts + 1, claimed_at = ?
		WHERE id = ? AND (status = ? OR (status = ? AND (claimed_at IS NULL OR claimed_at < ?)))
	`), domain.OutboxProcessing, nowString(), id, domain.OutboxPending, domain.OutboxProcessing, staleBefore)
	if err != nil {
		return false, wrap("claim outbox message", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, wrap("claim outbox message", err)
	}
	return n == 1, nil
}

func (r *OutboxRepo) MarkCompleted(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE outbox_messages SET status = ?, processed_at = ?, last_error = NULL WHERE id = ?
	`), domain.OutboxCompleted, nowString(), id)
	return wrap("complete outbox message", err)
}

// MarkRetry puts the message back in the queue with the last error recorded.
func (r *OutboxRepo) MarkRetry(ctx context.Context, id int64, cause string) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE outbox_messages SET status = ?, last_error = ? WHERE id = ?
	`), domain.OutboxPending, cause, id)
	return wrap("retry outbox message", err)
}

func (r *OutboxRepo) MarkFailed(ctx context.Context, id int64, cause string) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE outbox_messages SET status = ?, processed_at = ?, last_error = ? WHERE id = ?
	`), domain.OutboxFailed, nowString(), cause, id)
	return wrap("fail outbox message", err)
}
