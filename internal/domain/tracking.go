package domain

import "time"

// Tracking event names emitted by the engine.
const (
	EventListSortFilterChanged = "list_sort_filter_changed"
	EventAllocationSubmitted   = "allocation_submitted"
	EventAllocationFailed      = "allocation_failed"
	EventAllocationRetried     = "allocation_retried"
	EventBulkAction            = "bulk_action"
)

// TrackingEvent is an analytics signal recorded locally so the dashboard can
// relay it. Properties holds the JSON-encoded event attributes.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - OperatorID: administrator that triggered the event (indexed).
//   - Name: one of the Event* constants.
//   - Subject: policy or assignment configuration the event refers to.
//   - Properties: JSON object with event-specific attributes.
type TrackingEvent struct {
	ID         string    `json:"id"          gorm:"type:char(36);primaryKey"`
	OperatorID string    `json:"operator_id" gorm:"type:varchar(64);not null;index:idx_tracking_operator"`
	Name       string    `json:"name"        gorm:"type:varchar(64);not null;index"`
	Subject    string    `json:"subject"     gorm:"type:varchar(64);not null"`
	Properties string    `json:"properties"  gorm:"type:text;not null;default:'{}'"`
	CreatedAt  time.Time `json:"created_at"  gorm:"index:idx_tracking_operator"`
}

// TableName returns the database table name for TrackingEvent.
func (TrackingEvent) TableName() string { return "tracking_events" }
