// Package repo implements the local persistence layer. This file provides
// small aggregate queries used for conditional responses (ETag generation)
// in the HTTP layer.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// TrackingStats returns the number of events matching f and the newest
// CreatedAt among them.
//
// When nothing matches, the returned count is 0 and maxCreatedAt is nil.
func TrackingStats(ctx context.Context, db *gorm.DB, f TrackingFilter) (count int64, maxCreatedAt *time.Time, err error) {
	if err = trackingScope(db.WithContext(ctx), f).Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest created_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		CreatedAt time.Time
	}
	if err = trackingScope(db.WithContext(ctx), f).Select("created_at").Order("created_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.CreatedAt, nil
}
