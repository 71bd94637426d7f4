package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/sajidhasan/farmcart-backend/internal/subscriptions"
	"github.com/sajidhasan/farmcart-backend/pkg/logger"
)

type deliveryMaterializer interface {
	MaterializeDue(ctx context.Context, now time.Time) (*subscriptions.MaterializeResult, error)
}

// SubscriptionDeliveryJob materializes due subscriptions into recurring
// orders once per cycle.
type SubscriptionDeliveryJob struct {
	subs deliveryMaterializer
	logg *logger.Logger
	now  func() time.Time
}

// NewSubscriptionDeliveryJob builds the job.
func NewSubscriptionDeliveryJob(subs deliveryMaterializer, logg *logger.Logger) (*SubscriptionDeliveryJob, error) {
	if subs == nil {
		return nil, fmt.Errorf("subscriptions service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &SubscriptionDeliveryJob{
		subs: subs,
		logg: logg,
		now:  func() time.Time { return time.Now().UTC() },
	}, nil
}

// Name implements Job.
func (j *SubscriptionDeliveryJob) Name() string {
	return "subscription_delivery"
}

// Run implements Job.
func (j *SubscriptionDeliveryJob) Run(ctx context.Context) error {
	result, err := j.subs.MaterializeDue(ctx, j.now())
	if err != nil {
		return fmt.Errorf("materialize due subscriptions: %w", err)
	}
	ctx = j.logg.WithFields(ctx, map[string]any{
		"orders_created": result.OrdersCreated,
		"paused":         result.Paused,
		"failed":         result.Failed,
	})
	j.logg.Info(ctx, "subscription deliveries materialized")
	if result.Failed > 0 {
		return fmt.Errorf("%d subscriptions failed to materialize", result.Failed)
	}
	return nil
}
