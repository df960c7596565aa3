package cron

import (
	"context"
	"fmt"

	"github.com/payrollz/payrollz-backend/internal/payments"
	"github.com/payrollz/payrollz-backend/pkg/logger"
)

// ConfirmSubmittedJobParams configure the receipt reconciliation job.
type ConfirmSubmittedJobParams struct {
	Logger   *logger.Logger
	Payments submittedSweeper
}

type submittedSweeper interface {
	SweepSubmitted(ctx context.Context) (*payments.SweepReport, error)
}

// NewConfirmSubmittedJob builds the job that resolves submitted payroll items
// against mined receipts. The sweep itself never aborts on a single bad item,
// so a job failure means the listing query itself broke.
func NewConfirmSubmittedJob(params ConfirmSubmittedJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Payments == nil {
		return nil, fmt.Errorf("payments service required")
	}
	return &confirmSubmittedJob{
		logg:     params.Logger,
		payments: params.Payments,
	}, nil
}

type confirmSubmittedJob struct {
	logg     *logger.Logger
	payments submittedSweeper
}

func (j *confirmSubmittedJob) Name() string { return "confirm-submitted" }

func (j *confirmSubmittedJob) Run(ctx context.Context) error {
	report, err := j.payments.SweepSubmitted(ctx)
	if err != nil {
		return fmt.Errorf("confirm submitted sweep: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"checked":       report.Checked,
		"updated":       report.Updated,
		"mined_paid":    report.MinedPaid,
		"mined_failed":  report.MinedFailed,
		"not_mined":     report.NotMined,
		"rpc_busy":      report.RPCBusy,
		"skipped_claim": report.SkippedClaim,
	})
	j.logg.Info(logCtx, "confirm submitted sweep complete")
	return nil
}
