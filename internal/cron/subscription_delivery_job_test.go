package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sajidhasan/farmcart-backend/internal/subscriptions"
	"github.com/sajidhasan/farmcart-backend/pkg/logger"
)

type fakeMaterializer struct {
	result *subscriptions.MaterializeResult
	err    error
	calls  int
}

func (f *fakeMaterializer) MaterializeDue(ctx context.Context, now time.Time) (*subscriptions.MaterializeResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func TestSubscriptionDeliveryJobRun(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "cron-test"})
	subs := &fakeMaterializer{result: &subscriptions.MaterializeResult{OrdersCreated: 3, Paused: 1}}
	job, err := NewSubscriptionDeliveryJob(subs, logg)
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}

	if job.Name() != "subscription_delivery" {
		t.Fatalf("unexpected job name %q", job.Name())
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if subs.calls != 1 {
		t.Fatalf("expected one materialize pass, got %d", subs.calls)
	}
}

func TestSubscriptionDeliveryJobReportsFailures(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "cron-test"})
	subs := &fakeMaterializer{result: &subscriptions.MaterializeResult{OrdersCreated: 1, Failed: 2}}
	job, err := NewSubscriptionDeliveryJob(subs, logg)
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected an error when subscriptions fail to materialize")
	}
}

func TestSubscriptionDeliveryJobPropagatesListError(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "cron-test"})
	subs := &fakeMaterializer{err: errors.New("db down")}
	job, err := NewSubscriptionDeliveryJob(subs, logg)
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error to propagate")
	}
}
