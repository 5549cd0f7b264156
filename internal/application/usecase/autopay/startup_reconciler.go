package autopay

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// ReconcileOutput reports what a reconciliation did. Steps that failed
// report zero counts.
type ReconcileOutput struct {
	Ran     bool
	Sweep   SweepOverdueOutput
	AutoPay RunAutoPayOutput
}

// StartupReconciler catches up on time the process was not running: it marks
// overdue bills, then settles due auto-pay bills. It runs once per process.
//
// The guard is process-local. Several instances sharing a database each run it
// once; their auto-pay writes are conditional on the bill state, so only one
// of them records each cycle.
type StartupReconciler struct {
	sweep   *SweepOverdueUseCase
	autoPay *RunAutoPayUseCase
	ran     atomic.Bool
}

// NewStartupReconciler creates a new StartupReconciler instance.
func NewStartupReconciler(sweep *SweepOverdueUseCase, autoPay *RunAutoPayUseCase) *StartupReconciler {
	return &StartupReconciler{
		sweep:   sweep,
		autoPay: autoPay,
	}
}

// Run performs the reconciliation on the first call and is a no-op afterwards.
// Step failures are logged and never propagate.
func (r *StartupReconciler) Run(ctx context.Context) ReconcileOutput {
	if !r.ran.CompareAndSwap(false, true) {
		slog.Debug("Startup reconciliation already ran")
		return ReconcileOutput{}
	}

	output := ReconcileOutput{Ran: true}

	if sweep, err := r.sweep.Execute(ctx); err != nil {
		slog.Error("Startup overdue sweep failed", "error", err)
	} else {
		output.Sweep = *sweep
	}

	if autoPay, err := r.autoPay.Execute(ctx); err != nil {
		slog.Error("Startup auto-pay failed", "error", err)
	} else {
		output.AutoPay = *autoPay
	}

	slog.Info("Startup reconciliation completed",
		"overdue_updated", output.Sweep.Updated,
		"autopay_processed", output.AutoPay.Processed,
		"autopay_failed", output.AutoPay.Failed,
	)

	return output
}
