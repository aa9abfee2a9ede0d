// Package scheduler drives the background sweeps. The services expose the
// sweeps as plain callable operations with no embedded timer; the timer
// lives here, outside the core, and is safe to run concurrently with
// interactive traffic on the same accounts.
package scheduler

import (
	"context"
	"log"
	"time"

	"bursary/internal/service"
)

type Scheduler struct {
	loans       *service.LoanService
	investments *service.InvestmentService
	interval    time.Duration
}

func New(loans *service.LoanService, investments *service.InvestmentService, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Scheduler{loans: loans, investments: investments, interval: interval}
}

// Run blocks until ctx is cancelled, sweeping overdue loans and matured
// investments once per interval. Each sweep is idempotent, so a sweep cut
// short by shutdown simply finishes its work on the next run.
func (s *Scheduler) Run(ctx context.Context) {
	log.Printf("[sweep] scheduler running every %s", s.interval)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Printf("[sweep] scheduler stopped")
			return
		case <-ticker.C:
			now := time.Now()
			s.loans.EnforceOverdue(now)
			s.investments.SweepMatured(now, 0, 0)
		}
	}
}
