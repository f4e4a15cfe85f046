package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/Dias221467/Player_Progression/internal/jobs"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const reconcileTimeout = 2 * time.Minute

// StartReconcileCron runs the reconciler on schedule until the returned cron
// is stopped. Overlapping runs are skipped.
func StartReconcileCron(reconciler *jobs.Reconciler, schedule string) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(
		cron.Recover(cron.DefaultLogger),
		cron.SkipIfStillRunning(cron.DefaultLogger),
	))

	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
		defer cancel()
		if _, err := reconciler.Run(ctx); err != nil {
			logrus.WithError(err).Error("Reconcile pass failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid reconcile schedule %q: %w", schedule, err)
	}

	c.Start()
	logrus.WithField("schedule", schedule).Info("Reconcile cron started")
	return c, nil
}
