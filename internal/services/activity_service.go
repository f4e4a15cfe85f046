package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Dias221467/Player_Progression/internal/events"
	"github.com/Dias221467/Player_Progression/internal/models"
	"github.com/Dias221467/Player_Progression/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const defaultActivityLimit = 20

type ActivityService struct {
	repo *repository.ActivityRepository
}

func NewActivityService(repo *repository.ActivityRepository) *ActivityService {
	return &ActivityService{repo: repo}
}

// Publish records the events that belong in a player's activity feed.
func (s *ActivityService) Publish(ctx context.Context, e events.Event) error {
	switch e.Type {
	case events.LevelUp:
		result, ok := e.Data.(*models.LevelUpResult)
		if !ok {
			return nil
		}
		return s.LogActivity(ctx, e.PlayerID, "level_up", "", fmt.Sprintf("Reached level %d", result.Level))

	case events.AchievementsUnlocked:
		added, ok := e.Data.([]models.Achievement)
		if !ok {
			return nil
		}
		names := make([]string, 0, len(added))
		for _, a := range added {
			names = append(names, a.Name)
		}
		return s.LogActivity(ctx, e.PlayerID, "achievements", "", "Unlocked "+strings.Join(names, ", "))

	case events.FriendRequestAccepted:
		req, ok := e.Data.(*models.FriendRequest)
		if !ok {
			return nil
		}
		if err := s.LogActivity(ctx, req.SenderID, "friend_added", req.ReceiverID, "Made a new friend"); err != nil {
			return err
		}
		return s.LogActivity(ctx, req.ReceiverID, "friend_added", req.SenderID, "Made a new friend")

	case events.FriendshipRemoved:
		return s.LogActivity(ctx, e.PlayerID, "friend_removed", e.TargetID, "Removed a friend")
	}
	return nil
}

// LogActivity logs a player activity
func (s *ActivityService) LogActivity(ctx context.Context, playerID, actionType, targetID, message string) error {
	activity := &models.Activity{
		ID:        uuid.NewString(),
		PlayerID:  playerID,
		Type:      actionType,
		TargetID:  targetID,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}

	if err := s.repo.CreateActivity(ctx, activity); err != nil {
		logrus.WithError(err).Error("Failed to log activity in service")
		return err
	}

	logrus.WithFields(logrus.Fields{
		"player_id":   playerID,
		"action_type": actionType,
	}).Debug("Activity logged")
	return nil
}

// GetRecentActivities returns the latest actions of a player. A non-positive
// limit falls back to the default page size.
func (s *ActivityService) GetRecentActivities(ctx context.Context, playerID string, limit int) ([]models.Activity, error) {
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	return s.repo.GetPlayerActivities(ctx, playerID, limit)
}
