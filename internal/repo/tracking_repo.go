package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-budget-assign/internal/domain"
)

// CreateTrackingEvent inserts ev, assigning an ID and CreatedAt when unset.
func CreateTrackingEvent(ctx context.Context, db *gorm.DB, ev *domain.TrackingEvent) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	if ev.Properties == "" {
		ev.Properties = "{}"
	}
	return db.WithContext(ctx).Create(ev).Error
}

// TrackingFilter narrows tracking queries. Empty fields match everything.
type TrackingFilter struct {
	OperatorID string
	Name       string
}

func trackingScope(db *gorm.DB, f TrackingFilter) *gorm.DB {
	q := db.Model(&domain.TrackingEvent{})
	if f.OperatorID != "" {
		q = q.Where("operator_id = ?", f.OperatorID)
	}
	if f.Name != "" {
		q = q.Where("name = ?", f.Name)
	}
	return q
}

// CountTrackingEvents returns the number of events matching f.
func CountTrackingEvents(ctx context.Context, db *gorm.DB, f TrackingFilter) (int64, error) {
	var n int64
	err := trackingScope(db.WithContext(ctx), f).Count(&n).Error
	return n, err
}

// ListTrackingEventsPage returns events matching f, newest first.
func ListTrackingEventsPage(ctx context.Context, db *gorm.DB, f TrackingFilter, offset, limit int) ([]domain.TrackingEvent, error) {
	var out []domain.TrackingEvent
	err := trackingScope(db.WithContext(ctx), f).
		Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&out).Error
	return out, err
}
