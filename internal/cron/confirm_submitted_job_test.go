package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/payrollz/payrollz-backend/internal/payments"
	"github.com/payrollz/payrollz-backend/pkg/logger"
)

type fakeSweeper struct {
	report *payments.SweepReport
	err    error
	calls  int
}

func (f *fakeSweeper) SweepSubmitted(ctx context.Context) (*payments.SweepReport, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.report, nil
}

func TestConfirmSubmittedJobRunsSweep(t *testing.T) {
	sweeper := &fakeSweeper{report: &payments.SweepReport{Checked: 3, Updated: 2, MinedPaid: 2, NotMined: 1}}
	job, err := NewConfirmSubmittedJob(ConfirmSubmittedJobParams{
		Logger:   logger.New(logger.Options{ServiceName: "cron-test"}),
		Payments: sweeper,
	})
	if err != nil {
		t.Fatalf("NewConfirmSubmittedJob: %v", err)
	}
	if job.Name() != "confirm-submitted" {
		t.Fatalf("unexpected job name %q", job.Name())
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sweeper.calls != 1 {
		t.Fatalf("sweep calls = %d, want 1", sweeper.calls)
	}
}

func TestConfirmSubmittedJobPropagatesSweepError(t *testing.T) {
	sweeper := &fakeSweeper{err: errors.New("listing broke")}
	job, err := NewConfirmSubmittedJob(ConfirmSubmittedJobParams{
		Logger:   logger.New(logger.Options{ServiceName: "cron-test"}),
		Payments: sweeper,
	})
	if err != nil {
		t.Fatalf("NewConfirmSubmittedJob: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
