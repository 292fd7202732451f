package postgres

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"

	"salesdesk/internal/core/apperror"
)

type IdempotencyStatus string

const (
	IdempotencyStatusPending IdempotencyStatus = "pending"
	IdempotencyStatusSuccess IdempotencyStatus = "success"
	IdempotencyStatusFailed  IdempotencyStatus = "failed"
)

// A pending key not touched for this long belongs to a crashed request.
const idempotencyStaleAfter = time.Minute

type IdempotencyRecord struct {
	Key         string            `db:"idempotency_key"`
	Operation   string            `db:"operation"`
	Status      IdempotencyStatus `db:"status"`
	RequestHash string            `db:"request_hash"`
	Response    []byte            `db:"response"`
	StatusCode  *int              `db:"response_status"`
	ContentType *string           `db:"response_content_type"`
	UpdatedAt   time.Time         `db:"updated_at"`
	ExpiresAt   time.Time         `db:"expires_at"`
}

// IdempotencyReplay is a stored response to send again.
type IdempotencyReplay struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

func (r *IdempotencyRecord) replay() *IdempotencyReplay {
	out := &IdempotencyReplay{StatusCode: http.StatusOK, ContentType: "application/json", Body: r.Response}
	if r.StatusCode != nil && *r.StatusCode != 0 {
		out.StatusCode = *r.StatusCode
	}
	if r.ContentType != nil && *r.ContentType != "" {
		out.ContentType = *r.ContentType
	}
	return out
}

// IdempotencyStore keeps the outcome of mutating requests by client key.
type IdempotencyStore struct {
	txManager *TxManager
	ttl       time.Duration
}

func NewIdempotencyStore(txManager *TxManager, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{txManager: txManager, ttl: ttl}
}

// AcquireKey claims key for this request. It returns (nil, nil) when the
// caller should proceed, a replay when the request already completed, or an
// error when the key is busy or was used for a different request.
func (s *IdempotencyStore) AcquireKey(ctx context.Context, key, operation, requestHash string) (*IdempotencyReplay, error) {
	q := s.txManager.GetQuerier(ctx)
	now := time.Now().UTC()

	tag, err := q.Exec(ctx, `
		INSERT INTO sys_idempotency (idempotency_key, operation, status, request_hash, created_at, updated_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $5, $6)
		ON CONFLICT (idempotency_key) DO NOTHING
	`, key, operation, IdempotencyStatusPending, requestHash, now, now.Add(s.ttl))
	if err != nil {
		return nil, fmt.Errorf("acquire idempotency key: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil, nil
	}

	var rec IdempotencyRecord
	if err := pgxscan.Get(ctx, q, &rec, `
		SELECT idempotency_key, operation, status, request_hash, response,
		       response_status, response_content_type, updated_at, expires_at
		FROM sys_idempotency WHERE idempotency_key = $1
	`, key); err != nil {
		if pgxscan.NotFound(err) {
			// Deleted between the insert and the read; let the client retry.
			return nil, apperror.NewIdempotencyConflict(key)
		}
		return nil, fmt.Errorf("read idempotency key: %w", err)
	}

	if rec.ExpiresAt.Before(now) {
		return s.reclaim(ctx, key, operation, requestHash, rec.UpdatedAt, now)
	}

	if rec.Operation != operation || rec.RequestHash != requestHash {
		return nil, apperror.NewIdempotencyMismatch(key).
			WithDetail("operation", rec.Operation)
	}

	switch rec.Status {
	case IdempotencyStatusSuccess, IdempotencyStatusFailed:
		return rec.replay(), nil
	default:
		if now.Sub(rec.UpdatedAt) > idempotencyStaleAfter {
			return s.reclaim(ctx, key, operation, requestHash, rec.UpdatedAt, now)
		}
		return nil, apperror.NewIdempotencyConflict(key)
	}
}

// reclaim takes over key only if nobody touched it since seenAt.
func (s *IdempotencyStore) reclaim(ctx context.Context, key, operation, requestHash string, seenAt, now time.Time) (*IdempotencyReplay, error) {
	tag, err := s.txManager.GetQuerier(ctx).Exec(ctx, `
		UPDATE sys_idempotency
		SET status = $1, operation = $2, request_hash = $3, response = NULL,
		    response_status = NULL, response_content_type = NULL,
		    updated_at = $4, expires_at = $5
		WHERE idempotency_key = $6 AND updated_at = $7
	`, IdempotencyStatusPending, operation, requestHash, now, now.Add(s.ttl), key, seenAt)
	if err != nil {
		return nil, fmt.Errorf("reclaim idempotency key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, apperror.NewIdempotencyConflict(key)
	}
	return nil, nil
}

// Complete stores the response for replay.
func (s *IdempotencyStore) Complete(ctx context.Context, key string, status IdempotencyStatus, statusCode int, contentType string, body []byte) error {
	_, err := s.txManager.GetQuerier(ctx).Exec(ctx, `
		UPDATE sys_idempotency
		SET status = $1, response = $2, response_status = $3,
		    response_content_type = $4, updated_at = $5
		WHERE idempotency_key = $6
	`, status, body, statusCode, contentType, time.Now().UTC(), key)
	if err != nil {
		return fmt.Errorf("complete idempotency key: %w", err)
	}
	return nil
}

// Release forgets key so the client may retry, used after server errors.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	if _, err := s.txManager.GetQuerier(ctx).Exec(ctx,
		`DELETE FROM sys_idempotency WHERE idempotency_key = $1`, key); err != nil {
		return fmt.Errorf("release idempotency key: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) CleanupExpired(ctx context.Context) (int64, error) {
	result, err := s.txManager.GetQuerier(ctx).Exec(ctx,
		`DELETE FROM sys_idempotency WHERE expires_at < $1`, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("cleanup idempotency keys: %w", err)
	}
	return result.RowsAffected(), nil
}
