package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestValidateExpr(t *testing.T) {
	tests := []struct {
		expr  string
		valid bool
	}{
		{"0 6 * * *", true},
		{"0 5 2 1 *", true},
		{"*/15 * * * 1-5", true},
		{"", false},
		{"0 6 * *", false},
		{"0 0 6 * * *", false},
	}
	for _, tc := range tests {
		if err := ValidateExpr(tc.expr); (err == nil) != tc.valid {
			t.Errorf("ValidateExpr(%q) = %v, want valid=%v", tc.expr, err, tc.valid)
		}
	}
}

func TestNextRun(t *testing.T) {
	start := time.Date(2024, time.March, 1, 7, 0, 0, 0, time.UTC)
	next, err := NextRun("0 6 * * *", start)
	if err != nil {
		t.Fatal(err)
	}
	if want := time.Date(2024, time.March, 2, 6, 0, 0, 0, time.UTC); !next.Equal(want) {
		t.Errorf("next = %s, want %s", next, want)
	}

	yearly, err := NextRun("0 5 2 1 *", start)
	if err != nil {
		t.Fatal(err)
	}
	if want := time.Date(2025, time.January, 2, 5, 0, 0, 0, time.UTC); !yearly.Equal(want) {
		t.Errorf("yearly = %s, want %s", yearly, want)
	}

	exact, _ := NextRun("0 6 * * *", time.Date(2024, time.March, 1, 6, 0, 0, 0, time.UTC))
	if exact.Day() != 2 {
		t.Errorf("a tick at the start time must not be repeated, got %s", exact)
	}
}

func TestNewRejectsInvalidJob(t *testing.T) {
	_, err := New(nil, Job{Name: "daily", Expr: "every day", Run: func(context.Context) {}})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestRunFiresDueJob(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fired := make(chan struct{}, 1)
	s, err := New(time.UTC,
		Job{Name: "daily", Expr: "0 6 * * *", Run: func(context.Context) { fired <- struct{}{} }},
		Job{Name: "yearly", Expr: "0 5 2 1 *", Run: func(context.Context) { t.Error("yearly job must not fire") }},
	)
	if err != nil {
		t.Fatal(err)
	}
	// A clock that reaches 06:00 UTC 200ms after the test starts.
	base := time.Date(2024, time.March, 1, 5, 59, 59, 800_000_000, time.UTC)
	started := time.Now()
	s.now = func() time.Time { return base.Add(time.Since(started)) }

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("daily job did not fire")
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
