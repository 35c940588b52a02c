// Package scheduler wires up the cron job that reconciles the per-user
// awaiting-feedback counters against live application rows.
package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
)

// Scheduler wraps robfig/cron and manages the reconciliation loop.
type Scheduler struct {
	cron *cron.Cron
	pool *pgxpool.Pool
	spec string // cron spec, e.g. "@every 6h"
}

// New creates a Scheduler that fires every intervalHours hours.
func New(pool *pgxpool.Pool, intervalHours int) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithLogger(cron.DefaultLogger)),
		pool: pool,
		spec: fmt.Sprintf("@every %dh", intervalHours),
	}
}

// Start registers the job and starts the scheduler. Also runs one
// reconciliation immediately so drift from a crash is repaired without
// waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.reconcile(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	log.Printf("[scheduler] Cron started — spec: %s", s.spec)

	go s.reconcile(ctx)

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[scheduler] Cron stopped")
}

// reconcile rewrites every user's awaiting_feedback counter from the live
// application rows: viewed, non-withdrawn applications count, everything
// else does not.
func (s *Scheduler) reconcile(ctx context.Context) {
	log.Println("[scheduler] Reconciliation cycle started")

	tag, err := s.pool.Exec(ctx, `
		UPDATE users u SET awaiting_feedback = live.n
		FROM (
			SELECT u2.id, COUNT(a.id) AS n
			FROM users u2
			LEFT JOIN applications a
				ON a.applicant_id = u2.id
				AND a.viewed_by_employer = true
				AND a.status <> 'withdrawn'
			GROUP BY u2.id
		) live
		WHERE u.id = live.id AND u.awaiting_feedback <> live.n`)
	if err != nil {
		log.Printf("[scheduler] Reconciliation error: %v", err)
		return
	}

	log.Printf("[scheduler] Reconciliation complete — %d counter(s) corrected", tag.RowsAffected())
}
