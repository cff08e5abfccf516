// Package repo implements the local persistence layer. This file provides
// repository helpers for the Idempotency model that makes allocation submits
// safe to retry: a replayed key returns the stored outcome instead of
// spending the budget twice.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-budget-assign/internal/domain"
)

// IdempotencyRecord is the input to CreateIdempotency.
type IdempotencyRecord struct {
	OperatorID string
	PolicyID   string
	Key        string
	SessionID  string
	Status     int
	Payload    []byte
}

// GetIdempotency returns a non-expired record or ErrNotFound.
func GetIdempotency(ctx context.Context, db *gorm.DB, operatorID, policyID, key string, now time.Time) (*domain.Idempotency, error) {
	if strings.TrimSpace(policyID) == "" || strings.TrimSpace(key) == "" {
		return nil, ErrNotFound
	}
	var rec domain.Idempotency
	err := db.WithContext(ctx).
		Where("operator_id = ? AND policy_id = ? AND key = ? AND expires_at > ?", operatorID, policyID, key, now).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &rec, err
}

// CreateIdempotency inserts a record and returns ErrDuplicate on unique violation.
func CreateIdempotency(ctx context.Context, db *gorm.DB, in IdempotencyRecord, ttl time.Duration) (*domain.Idempotency, error) {
	now := time.Now().UTC()
	rec := &domain.Idempotency{
		ID:         uuid.NewString(),
		OperatorID: in.OperatorID,
		PolicyID:   in.PolicyID,
		Key:        in.Key,
		SessionID:  in.SessionID,
		Status:     in.Status,
		Payload:    in.Payload,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return rec, nil
}

// ReserveIdempotency claims (operator, policy, key) with a pending record
// before any budget is spent. An expired record for the same key is
// replaced. A live record, pending or complete, yields ErrDuplicate.
func ReserveIdempotency(ctx context.Context, db *gorm.DB, operatorID, policyID, key string, ttl time.Duration) (*domain.Idempotency, error) {
	now := time.Now().UTC()
	err := db.WithContext(ctx).
		Where("operator_id = ? AND policy_id = ? AND key = ? AND expires_at <= ?", operatorID, policyID, key, now).
		Delete(&domain.Idempotency{}).Error
	if err != nil {
		return nil, err
	}
	return CreateIdempotency(ctx, db, IdempotencyRecord{
		OperatorID: operatorID,
		PolicyID:   policyID,
		Key:        key,
		Status:     domain.StatusPending,
	}, ttl)
}

// CompleteIdempotency stores the outcome on a reserved record.
func CompleteIdempotency(ctx context.Context, db *gorm.DB, id, sessionID string, status int, payload []byte) error {
	res := db.WithContext(ctx).Model(&domain.Idempotency{}).
		Where("id = ?", id).
		Updates(map[string]any{"session_id": sessionID, "status": status, "payload": payload})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ReleaseIdempotency drops a reservation whose submit failed so the key can
// be retried.
func ReleaseIdempotency(ctx context.Context, db *gorm.DB, id string) error {
	return db.WithContext(ctx).
		Where("id = ? AND status = ?", id, domain.StatusPending).
		Delete(&domain.Idempotency{}).Error
}

// PurgeExpiredIdempotency deletes records whose ExpiresAt is at or before now
// and returns the number removed.
func PurgeExpiredIdempotency(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&domain.Idempotency{})
	return res.RowsAffected, res.Error
}
