package domain

import "time"

// Idempotency records the outcome of an allocation submission keyed by
// (operator_id, policy_id, key). A replay with the same key returns the
// stored payload instead of spending the budget a second time.
type Idempotency struct {
	ID         string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	OperatorID string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_operator_policy_key,priority:1"`
	PolicyID   string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_operator_policy_key,priority:2"`
	Key        string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_operator_policy_key,priority:3"`
	SessionID  string    `gorm:"type:TEXT NOT NULL"`
	Status     int       `gorm:"type:INTEGER NOT NULL"`
	Payload    []byte    `gorm:"type:BLOB"`
	CreatedAt  time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt  time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// StatusPending marks a key reserved by a submit that has not finished yet.
const StatusPending = 0

// Pending reports whether the record is a reservation without an outcome.
func (i Idempotency) Pending() bool { return i.Status == StatusPending }

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
