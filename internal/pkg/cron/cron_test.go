package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunExecutesJob(t *testing.T) {
	s := New()
	var ran atomic.Int32
	s.Register(Job{
		Name:     "touch",
		Interval: time.Hour,
		Fn: func(ctx context.Context) error {
			ran.Add(1)
			return nil
		},
	})

	if err := s.Run(context.Background(), "touch"); err != nil {
		t.Fatalf("Run: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for ran.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("job never executed")
		}
		time.Sleep(10 * time.Millisecond)
	}

	deadline = time.Now().Add(2 * time.Second)
	for {
		result, err := s.GetTask("touch")
		if err != nil {
			t.Fatalf("GetTask: %v", err)
		}
		if result.Status == StatusFulfill {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("status = %q, want %q", result.Status, StatusFulfill)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestRunUnknownJob(t *testing.T) {
	s := New()
	if err := s.Run(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for unknown job")
	}
	if _, err := s.GetTask("missing"); err == nil {
		t.Fatal("expected error for unknown task")
	}
}

func TestFailedJobReportsReject(t *testing.T) {
	s := New()
	var ran atomic.Int32
	s.Register(Job{
		Name:     "boom",
		Interval: time.Hour,
		Fn: func(ctx context.Context) error {
			ran.Add(1)
			return errors.New("storage offline")
		},
	})

	if err := s.Run(context.Background(), "boom"); err != nil {
		t.Fatalf("Run: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		result, err := s.GetTask("boom")
		if err != nil {
			t.Fatalf("GetTask: %v", err)
		}
		if result.Status == StatusReject {
			if result.Message != "storage offline" {
				t.Fatalf("message = %q", result.Message)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("status = %q, want %q", result.Status, StatusReject)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestListSortedByName(t *testing.T) {
	s := New()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		s.Register(Job{Name: name, Interval: time.Hour, Fn: func(ctx context.Context) error { return nil }})
	}
	items := s.List()
	if len(items) != 3 {
		t.Fatalf("len = %d", len(items))
	}
	if items[0].Name != "alpha" || items[2].Name != "zeta" {
		t.Fatalf("unexpected order: %v, %v, %v", items[0].Name, items[1].Name, items[2].Name)
	}
	for _, item := range items {
		if item.Status != StatusIdle {
			t.Fatalf("status = %q, want idle", item.Status)
		}
	}
}
