package repo

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-budget-assign/internal/domain"
)

func newIdemDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func TestGetIdempotency_NotFound(t *testing.T) {
	db := newIdemDB(t, &domain.Idempotency{})
	now := time.Now().UTC()
	expired := &domain.Idempotency{
		ID: "expired", OperatorID: "u1", PolicyID: "p1", Key: "k1", SessionID: "s1", Status: 201,
		CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour),
	}
	if err := db.Create(expired).Error; err != nil {
		t.Fatalf("seed expired: %v", err)
	}

	cases := []struct {
		name, policy, key string
	}{
		{"blank policy", "   ", "k1"},
		{"empty key", "p1", ""},
		{"expired", "p1", "k1"},
		{"missing", "p1", "missing"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, err := GetIdempotency(context.Background(), db, "u1", tc.policy, tc.key, now)
			if rec != nil || !errors.Is(err, ErrNotFound) {
				t.Fatalf("got (%v, %v); want (nil, ErrNotFound)", rec, err)
			}
		})
	}
}

func TestCreateAndGetIdempotency(t *testing.T) {
	db := newIdemDB(t, &domain.Idempotency{})
	ttl := 90 * time.Minute
	start := time.Now().UTC()

	rec, err := CreateIdempotency(context.Background(), db, IdempotencyRecord{
		OperatorID: "u9", PolicyID: "p9", Key: "k9", SessionID: "s9", Status: 201, Payload: []byte(`{"phase":"succeeded"}`),
	}, ttl)
	if err != nil {
		t.Fatalf("CreateIdempotency error: %v", err)
	}
	if rec.ID == "" || rec.SessionID != "s9" || rec.Status != 201 {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if !(rec.ExpiresAt.After(start) && rec.ExpiresAt.Before(start.Add(2*time.Hour))) {
		t.Fatalf("unexpected ExpiresAt: %v", rec.ExpiresAt)
	}

	got, err := GetIdempotency(context.Background(), db, "u9", "p9", "k9", time.Now().UTC())
	if err != nil {
		t.Fatalf("GetIdempotency: %v", err)
	}
	if string(got.Payload) != `{"phase":"succeeded"}` {
		t.Fatalf("payload = %q", got.Payload)
	}

	// Duplicate (same operator, policy, key) maps to ErrDuplicate
	_, err = CreateIdempotency(context.Background(), db, IdempotencyRecord{OperatorID: "u9", PolicyID: "p9", Key: "k9", SessionID: "sX"}, ttl)
	if err != ErrDuplicate {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	// Same key under another policy is allowed
	if _, err := CreateIdempotency(context.Background(), db, IdempotencyRecord{OperatorID: "u9", PolicyID: "p10", Key: "k9", SessionID: "sY"}, ttl); err != nil {
		t.Fatalf("other policy should be allowed: %v", err)
	}
}

func TestCreateIdempotency_MissingTableIsNotDuplicate(t *testing.T) {
	db := newIdemDB(t)
	_, err := CreateIdempotency(context.Background(), db, IdempotencyRecord{OperatorID: "uX", PolicyID: "pX", Key: "kX"}, time.Minute)
	if err == nil {
		t.Fatalf("expected error when table is missing")
	}
	if errors.Is(err, ErrDuplicate) {
		t.Fatalf("missing table reported as duplicate")
	}
}

func TestPurgeExpiredIdempotency(t *testing.T) {
	db := newIdemDB(t, &domain.Idempotency{})
	now := time.Now().UTC()
	for i, exp := range []time.Time{now.Add(-time.Minute), now.Add(-time.Second), now.Add(time.Hour)} {
		rec := &domain.Idempotency{ID: fmt.Sprint(i), OperatorID: "u", PolicyID: "p", Key: fmt.Sprint("k", i), SessionID: "s", Status: 201, CreatedAt: now, ExpiresAt: exp}
		if err := db.Create(rec).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	n, err := PurgeExpiredIdempotency(context.Background(), db, now)
	if err != nil || n != 2 {
		t.Fatalf("purged %d, err %v; want 2", n, err)
	}
}

func TestReserveCompleteRelease(t *testing.T) {
	db := newIdemDB(t, &domain.Idempotency{})
	ctx := context.Background()

	rec, err := ReserveIdempotency(ctx, db, "u1", "p1", "k1", time.Hour)
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if !rec.Pending() {
		t.Fatalf("reservation not pending: %+v", rec)
	}
	if _, err := ReserveIdempotency(ctx, db, "u1", "p1", "k1", time.Hour); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("second reserve err = %v; want ErrDuplicate", err)
	}

	// Release drops the reservation so the key can be claimed again.
	if err := ReleaseIdempotency(ctx, db, rec.ID); err != nil {
		t.Fatalf("release: %v", err)
	}
	rec, err = ReserveIdempotency(ctx, db, "u1", "p1", "k1", time.Hour)
	if err != nil {
		t.Fatalf("reserve after release: %v", err)
	}

	if err := CompleteIdempotency(ctx, db, rec.ID, "s1", 201, []byte(`{"phase":"succeeded"}`)); err != nil {
		t.Fatalf("complete: %v", err)
	}
	got, err := GetIdempotency(ctx, db, "u1", "p1", "k1", time.Now().UTC())
	if err != nil || got.Pending() || got.SessionID != "s1" || string(got.Payload) != `{"phase":"succeeded"}` {
		t.Fatalf("completed record = %+v, %v", got, err)
	}

	// A completed outcome survives a stray release.
	if err := ReleaseIdempotency(ctx, db, rec.ID); err != nil {
		t.Fatalf("release completed: %v", err)
	}
	if _, err := GetIdempotency(ctx, db, "u1", "p1", "k1", time.Now().UTC()); err != nil {
		t.Fatalf("completed record removed: %v", err)
	}
	if err := CompleteIdempotency(ctx, db, "missing", "s", 201, nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("complete missing err = %v", err)
	}
}

func TestReserveIdempotency_ReplacesExpired(t *testing.T) {
	db := newIdemDB(t, &domain.Idempotency{})
	now := time.Now().UTC()
	old := &domain.Idempotency{ID: "old", OperatorID: "u1", PolicyID: "p1", Key: "k1", SessionID: "s0", Status: 201, CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour)}
	if err := db.Create(old).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	rec, err := ReserveIdempotency(context.Background(), db, "u1", "p1", "k1", time.Hour)
	if err != nil || rec.ID == "old" {
		t.Fatalf("reserve over expired = %+v, %v", rec, err)
	}
}
