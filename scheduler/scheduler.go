// Package scheduler runs the calendar refresh and the daily download check on
// cron expressions inside the serve process.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/adhocore/gronx"
)

const maxSleepCap = 60 * time.Second

// Job is one recurring task.
type Job struct {
	Name string
	Expr string // 5-field cron expression, evaluated in the scheduler's location
	Run  func(ctx context.Context)
}

// Scheduler fires jobs one at a time, so two jobs never overlap.
type Scheduler struct {
	jobs []Job
	loc  *time.Location
	now  func() time.Time
}

// New validates every job's expression. A nil location means UTC.
func New(loc *time.Location, jobs ...Job) (*Scheduler, error) {
	if loc == nil {
		loc = time.UTC
	}
	for _, job := range jobs {
		if err := ValidateExpr(job.Expr); err != nil {
			return nil, fmt.Errorf("job %s: %w", job.Name, err)
		}
	}
	return &Scheduler{jobs: jobs, loc: loc, now: time.Now}, nil
}

// ValidateExpr accepts exactly 5 fields (minute hour day-of-month month day-of-week).
func ValidateExpr(expr string) error {
	// gronx.IsValid also accepts 6-field expressions with seconds.
	if len(strings.Fields(expr)) != 5 || !gronx.IsValid(expr) {
		return fmt.Errorf("invalid cron expression %q, expected 5-field format (minute hour day-of-month month day-of-week)", expr)
	}
	return nil
}

// NextRun returns the next time expr fires strictly after start.
func NextRun(expr string, start time.Time) (time.Time, error) {
	return gronx.NextTickAfter(expr, start, false)
}

// Run blocks until ctx is cancelled, firing each job at its next tick.
func (s *Scheduler) Run(ctx context.Context) error {
	if len(s.jobs) == 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	next := make([]time.Time, len(s.jobs))
	now := s.now().In(s.loc)
	for i, job := range s.jobs {
		t, err := NextRun(job.Expr, now)
		if err != nil {
			return fmt.Errorf("failed to compute next run of %s: %w", job.Name, err)
		}
		next[i] = t
		log.Printf("Scheduler: %s scheduled for %s\n", job.Name, t.Format(time.RFC3339))
	}

	timer := time.NewTimer(maxSleepCap)
	defer timer.Stop()
	for {
		earliest := next[0]
		for _, t := range next[1:] {
			if t.Before(earliest) {
				earliest = t
			}
		}
		// Capped so a suspended host or clock change is noticed within a minute.
		dur := earliest.Sub(s.now())
		if dur > maxSleepCap {
			dur = maxSleepCap
		}
		if dur < 0 {
			dur = 0
		}
		timer.Reset(dur)

		select {
		case <-ctx.Done():
			log.Println("Scheduler: Stopping.")
			return ctx.Err()
		case <-timer.C:
		}

		now := s.now().In(s.loc)
		for i, job := range s.jobs {
			if next[i].After(now) {
				continue
			}
			log.Printf("Scheduler: Running %s\n", job.Name)
			job.Run(ctx)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			t, err := NextRun(job.Expr, s.now().In(s.loc))
			if err != nil {
				return fmt.Errorf("failed to compute next run of %s: %w", job.Name, err)
			}
			next[i] = t
			log.Printf("Scheduler: %s next run at %s\n", job.Name, t.Format(time.RFC3339))
		}
	}
}
