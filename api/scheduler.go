/*
scheduler.go - Background jobs for budget rollover and payment reminders

PURPOSE:
  Runs the periodic maintenance the engine itself never performs:
  - Budget rollover: when the active budget's period has ended, open the
    next contiguous period with the same total and allocations.
  - Overdue sweep: flag unpaid payments whose due date has passed so the
    log surfaces them before they snowball.

DESIGN:
  - cron-driven; both jobs default to shortly after midnight UTC
  - Jobs are idempotent: a rollover only fires when today has no covering
    budget, so a missed tick or a double tick does no harm
  - The sweep only logs; settling a payment stays a user action

USAGE:
  sched := NewScheduler(handler, log)
  if err := sched.Start("5 0 * * *"); err != nil { ... }
  // ... later
  sched.Stop()

SEE ALSO:
  - handlers.go: MarkPaymentPaid (manual settlement path)
  - engine/period.go: NextPeriod
*/
package api

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/warp/budget-engine/engine"
)

// overdueLookbackDays bounds the sweep's search window. Anything unpaid and
// older than this has been flagged daily for three months already.
const overdueLookbackDays = 90

// Scheduler owns the cron runner and the jobs it drives.
type Scheduler struct {
	handler *Handler
	log     *logrus.Logger
	cron    *cron.Cron
}

// NewScheduler creates a scheduler bound to the handler's stores and clock.
func NewScheduler(handler *Handler, log *logrus.Logger) *Scheduler {
	if log == nil {
		log = logrus.New()
	}
	return &Scheduler{
		handler: handler,
		log:     log,
		cron:    cron.New(),
	}
}

// Start registers both jobs on the given cron spec and launches the runner.
func (s *Scheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.RolloverBudgets); err != nil {
		return fmt.Errorf("schedule rollover: %w", err)
	}
	if _, err := s.cron.AddFunc(spec, s.SweepOverduePayments); err != nil {
		return fmt.Errorf("schedule overdue sweep: %w", err)
	}

	s.cron.Start()
	s.log.WithField("spec", spec).Info("scheduler started")
	return nil
}

// Stop halts the runner and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("scheduler stopped")
}

// RolloverBudgets opens the next budget period when the current one has
// lapsed. Exported so an admin path or test can trigger it directly.
func (s *Scheduler) RolloverBudgets() {
	ctx := context.Background()
	today := s.handler.now()

	// A budget covering today means nothing to do.
	if _, err := s.handler.Budgets.CurrentBudget(ctx, today); err == nil {
		return
	} else if !engine.IsNotFound(err) {
		s.log.WithError(err).Error("rollover: current budget lookup failed")
		return
	}

	// The lapsed budget is the one that covered yesterday. If yesterday has
	// no budget either, the gap predates this tick and rollover would only
	// resurrect a stale plan.
	ended, err := s.handler.Budgets.CurrentBudget(ctx, today.AddDays(-1))
	if err != nil {
		if !engine.IsNotFound(err) {
			s.log.WithError(err).Error("rollover: lapsed budget lookup failed")
		}
		return
	}

	next := engine.Budget{
		TotalAmount: ended.TotalAmount,
		Period:      ended.Period.NextPeriod(),
		Notes:       ended.Notes,
		Allocations: ended.Allocations,
		Active:      true,
	}

	created, err := s.handler.Budgets.CreateBudget(ctx, next)
	if err != nil {
		s.log.WithError(err).Error("rollover: create next budget failed")
		return
	}

	s.log.WithFields(logrus.Fields{
		"ended_budget": ended.ID,
		"new_budget":   created.ID,
		"period":       created.Period.String(),
		"total":        created.TotalAmount.String(),
	}).Info("budget rolled over")
}

// SweepOverduePayments logs every unpaid payment whose due date has passed.
func (s *Scheduler) SweepOverduePayments() {
	ctx := context.Background()
	today := s.handler.now()

	window := engine.Period{
		Start: today.AddDays(-overdueLookbackDays),
		End:   today.AddDays(-1),
	}

	payments, err := s.handler.Payments.PaymentsDueInRange(ctx, window)
	if err != nil {
		s.log.WithError(err).Error("overdue sweep: payment lookup failed")
		return
	}

	overdue := 0
	for _, p := range payments {
		if p.Paid {
			continue
		}
		overdue++
		s.log.WithFields(logrus.Fields{
			"payment_id": p.ID,
			"name":       p.Name,
			"amount":     p.Amount.String(),
			"due_date":   p.DueDate.String(),
			"days_late":  engine.DaysBetween(p.DueDate, today),
		}).Warn("payment overdue")
	}

	if overdue > 0 {
		s.log.WithField("count", overdue).Warn("overdue payments found")
	}
}
