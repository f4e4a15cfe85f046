package repository

import (
	"context"
	"fmt"
	"sort"

	"github.com/Dias221467/Player_Progression/internal/models"
	"github.com/Dias221467/Player_Progression/internal/store"
	"github.com/sirupsen/logrus"
)

type ActivityRepository struct {
	store store.Store
}

func NewActivityRepository(s store.Store) *ActivityRepository {
	return &ActivityRepository{store: s}
}

// CreateActivity inserts a new activity log
func (r *ActivityRepository) CreateActivity(ctx context.Context, activity *models.Activity) error {
	if err := r.store.Put(ctx, ActivitiesCollection, activity.ID, activity); err != nil {
		logrus.WithError(err).Error("Failed to insert activity")
		return fmt.Errorf("failed to insert activity: %w", err)
	}
	return nil
}

// GetPlayerActivities fetches the most recent activities of a player
func (r *ActivityRepository) GetPlayerActivities(ctx context.Context, playerID string, limit int) ([]models.Activity, error) {
	var activities []models.Activity
	if err := r.store.Query(ctx, ActivitiesCollection, store.Filter{"player_id": playerID}, &activities); err != nil {
		return nil, fmt.Errorf("failed to fetch activities: %w", err)
	}

	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].Timestamp.After(activities[j].Timestamp)
	})
	if limit > 0 && len(activities) > limit {
		activities = activities[:limit]
	}
	return activities, nil
}
