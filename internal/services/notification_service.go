package services

import (
	"context"
	"fmt"

	"github.com/Dias221467/Player_Progression/internal/events"
	"github.com/Dias221467/Player_Progression/internal/models"
	"github.com/Dias221467/Player_Progression/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// NotificationService keeps each player's inbox. It is fed by events: a
// received friend request, an accepted request and a level up each leave a
// notification.
type NotificationService struct {
	repo *repository.NotificationRepository
}

func NewNotificationService(repo *repository.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

// Publish turns an event into a notification when the event concerns the
// player's inbox. Other events are ignored.
func (s *NotificationService) Publish(ctx context.Context, e events.Event) error {
	switch e.Type {
	case events.FriendRequestCreated:
		req, ok := e.Data.(*models.FriendRequest)
		if !ok {
			return nil
		}
		return s.CreateNotification(ctx, req.ReceiverID, string(e.Type),
			"New friend request",
			fmt.Sprintf("%s sent you a friend request", req.SenderName),
			req.ID)

	case events.FriendRequestAccepted:
		req, ok := e.Data.(*models.FriendRequest)
		if !ok {
			return nil
		}
		return s.CreateNotification(ctx, req.SenderID, string(e.Type),
			"Friend request accepted",
			"Your friend request was accepted",
			req.ReceiverID)

	case events.LevelUp:
		result, ok := e.Data.(*models.LevelUpResult)
		if !ok {
			return nil
		}
		return s.CreateNotification(ctx, e.PlayerID, string(e.Type),
			"Level up!",
			fmt.Sprintf("You reached level %d", result.Level),
			"")
	}
	return nil
}

// CreateNotification logs a new notification for a player
func (s *NotificationService) CreateNotification(ctx context.Context, playerID, notifType, title, message, targetID string) error {
	notif := &models.Notification{
		ID:       uuid.NewString(),
		PlayerID: playerID,
		Type:     notifType,
		Title:    title,
		Message:  message,
		TargetID: targetID,
	}
	return s.repo.CreateNotification(ctx, notif)
}

// GetPlayerNotifications returns the unexpired notifications of a player
func (s *NotificationService) GetPlayerNotifications(ctx context.Context, playerID string) ([]models.Notification, error) {
	return s.repo.GetPlayerNotifications(ctx, playerID)
}

// MarkNotificationAsRead marks one of the player's notifications as read.
func (s *NotificationService) MarkNotificationAsRead(ctx context.Context, notifID, playerID string) error {
	notif, err := s.repo.GetNotificationByID(ctx, notifID)
	if err != nil {
		return translate(err, "notification "+notifID)
	}
	if notif.PlayerID != playerID {
		return fmt.Errorf("%w: notification belongs to another player", ErrForbidden)
	}
	return translate(s.repo.MarkAsRead(ctx, notifID), "notification "+notifID)
}

// DeleteExpiredNotifications is called by the reconcile job.
func (s *NotificationService) DeleteExpiredNotifications(ctx context.Context) (int, error) {
	deleted, err := s.repo.DeleteExpiredNotifications(ctx)
	if err != nil {
		logrus.WithError(err).Error("Failed to delete expired notifications")
	}
	return deleted, err
}
