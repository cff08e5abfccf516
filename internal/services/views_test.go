package services

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestViews_ScopedToOperator(t *testing.T) {
	r := NewViews(&fakeLister{}, nil)
	v := r.Create("op-1", "cfg", "pol", "ent")

	if _, err := r.Get("op-2", v.ID); !errors.Is(err, ErrViewNotFound) {
		t.Fatalf("err = %v", err)
	}
	got, err := r.Get("op-1", v.ID)
	if err != nil || got != v {
		t.Fatalf("Get = %v, %v", got, err)
	}
	if err := r.Delete("op-2", v.ID); !errors.Is(err, ErrViewNotFound) {
		t.Fatalf("delete by another operator err = %v", err)
	}
	if err := r.Delete("op-1", v.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := r.Get("op-1", v.ID); !errors.Is(err, ErrViewNotFound) {
		t.Fatalf("deleted view still reachable: %v", err)
	}
}

func TestViews_SweepSkipsBusyViews(t *testing.T) {
	r := NewViews(&fakeLister{}, nil)
	now := time.Unix(1_700_000_000, 0)
	r.Now = func() time.Time { return now }
	r.TTL = time.Minute

	idle := r.Create("op-1", "cfg", "pol", "ent")
	busy := r.Create("op-1", "cfg", "pol", "ent")
	busy.cancel.Begin()

	if n := r.Sweep(now.Add(2 * time.Minute)); n != 1 {
		t.Fatalf("swept %d; want 1", n)
	}
	if _, ok := r.m.Load(idle.ID); ok {
		t.Fatal("idle view should be gone")
	}
	if _, ok := r.m.Load(busy.ID); !ok {
		t.Fatal("a view with a pending bulk operation must survive")
	}
}

func TestRunSweeper_StopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		RunSweeper(ctx, time.Millisecond, NewViews(&fakeLister{}, nil))
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
