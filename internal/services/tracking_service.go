// Package services – TrackingService
//
// TrackingService persists analytics events emitted by the coordinators
// (sort/filter changes, allocation outcomes, bulk actions) and serves them
// back in pages for the dashboard's analytics relay.
package services

import (
	"context"
	"encoding/json"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-budget-assign/internal/domain"
	"github.com/tbourn/go-budget-assign/internal/repo"
	"github.com/tbourn/go-budget-assign/internal/utils"
)

// TrackingRepo defines the repository contract required by TrackingService.
type TrackingRepo interface {
	CreateTrackingEvent(ctx context.Context, db *gorm.DB, ev *domain.TrackingEvent) error
	CountTrackingEvents(ctx context.Context, db *gorm.DB, f repo.TrackingFilter) (int64, error)
	ListTrackingEventsPage(ctx context.Context, db *gorm.DB, f repo.TrackingFilter, offset, limit int) ([]domain.TrackingEvent, error)
}

// TrackingService stores and lists tracking events.
type TrackingService struct {
	DB   *gorm.DB
	Repo TrackingRepo
}

// NewTrackingService constructs a TrackingService.
func NewTrackingService(db *gorm.DB, r TrackingRepo) *TrackingService {
	return &TrackingService{DB: db, Repo: r}
}

// Track persists ev. Errors are logged, never returned: analytics must not
// fail an operator action.
func (s *TrackingService) Track(ctx context.Context, ev domain.TrackingEvent) {
	if err := s.Repo.CreateTrackingEvent(ctx, s.DB, &ev); err != nil {
		loggerFrom(ctx).Warn().Err(err).Str("event", ev.Name).Msg("tracking event not stored")
	}
}

// ListPage returns a page of events matching f, newest first.
func (s *TrackingService) ListPage(ctx context.Context, f repo.TrackingFilter, page, pageSize int) ([]domain.TrackingEvent, int64, error) {
	tr := otel.Tracer("services/TrackingService")
	ctx, span := tr.Start(ctx, "ListPage",
		trace.WithAttributes(
			attribute.String("operator.id", f.OperatorID),
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	page, pageSize = utils.ClampPage(page, pageSize, 20, 0)

	total, err := s.Repo.CountTrackingEvents(ctx, s.DB, f)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.TrackingEvent{}, 0, nil
	}
	items, err := s.Repo.ListTrackingEventsPage(ctx, s.DB, f, utils.Offset(page, pageSize), pageSize)
	return items, total, err
}

// newEvent builds a tracking event with JSON-encoded properties.
func newEvent(operatorID, name, subject string, props map[string]any) domain.TrackingEvent {
	raw := "{}"
	if len(props) > 0 {
		if b, err := json.Marshal(props); err == nil {
			raw = string(b)
		}
	}
	return domain.TrackingEvent{
		OperatorID: operatorID,
		Name:       name,
		Subject:    subject,
		Properties: raw,
		CreatedAt:  time.Now().UTC(),
	}
}

// nopTracker discards events.
type nopTracker struct{}

func (nopTracker) Track(context.Context, domain.TrackingEvent) {}

func trackerOrNop(t Tracker) Tracker {
	if t == nil {
		return nopTracker{}
	}
	return t
}
