package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dias221467/Player_Progression/internal/services"
	"github.com/sirupsen/logrus"
)

// Report summarizes one reconcile pass.
type Report struct {
	services.FriendRepairReport
	PlayersRanked        int
	NotificationsExpired int
}

// Reconciler brings stored state back in line after interrupted multi-step
// writes and concurrent ranking refreshes.
type Reconciler struct {
	FriendService       *services.FriendService
	RankingService      *services.RankingService
	NotificationService *services.NotificationService
}

// NewReconciler creates a new instance of Reconciler
func NewReconciler(friends *services.FriendService, ranking *services.RankingService, notifications *services.NotificationService) *Reconciler {
	return &Reconciler{
		FriendService:       friends,
		RankingService:      ranking,
		NotificationService: notifications,
	}
}

// Run repairs friend requests and friendships, rewrites every ranking field
// (and the Redis index when configured) and drops expired notifications.
// Each step runs even if an earlier one failed.
func (r *Reconciler) Run(ctx context.Context) (Report, error) {
	var (
		report Report
		errs   []error
	)

	friendReport, err := r.FriendService.Reconcile(ctx)
	report.FriendRepairReport = friendReport
	if err != nil {
		errs = append(errs, fmt.Errorf("friend repair: %w", err))
	}

	ranked, err := r.RankingService.Refresh(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("ranking refresh: %w", err))
	}
	report.PlayersRanked = len(ranked)

	if r.NotificationService != nil {
		expired, err := r.NotificationService.DeleteExpiredNotifications(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("notification cleanup: %w", err))
		}
		report.NotificationsExpired = expired
	}

	logrus.WithFields(logrus.Fields{
		"friendshipsRestored":  report.FriendshipsRestored,
		"friendshipsRemoved":   report.FriendshipsRemoved,
		"requestsRemoved":      report.RequestsRemoved,
		"playersRanked":        report.PlayersRanked,
		"notificationsExpired": report.NotificationsExpired,
	}).Info("Reconcile pass completed")

	return report, errors.Join(errs...)
}
