package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Dias221467/Player_Progression/internal/models"
	"github.com/Dias221467/Player_Progression/internal/store"
	"github.com/sirupsen/logrus"
)

const notificationTTL = 7 * 24 * time.Hour

type NotificationRepository struct {
	store store.Store
}

func NewNotificationRepository(s store.Store) *NotificationRepository {
	return &NotificationRepository{store: s}
}

// CreateNotification inserts a new notification
func (r *NotificationRepository) CreateNotification(ctx context.Context, notif *models.Notification) error {
	notif.CreatedAt = time.Now().UTC()
	notif.ExpiresAt = notif.CreatedAt.Add(notificationTTL)

	if err := r.store.Put(ctx, NotificationsCollection, notif.ID, notif); err != nil {
		logrus.WithError(err).Error("Failed to insert notification")
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// GetPlayerNotifications returns the unexpired notifications of a player, newest first
func (r *NotificationRepository) GetPlayerNotifications(ctx context.Context, playerID string) ([]models.Notification, error) {
	var all []models.Notification
	if err := r.store.Query(ctx, NotificationsCollection, store.Filter{"player_id": playerID}, &all); err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}

	now := time.Now()
	notifications := make([]models.Notification, 0, len(all))
	for _, n := range all {
		if n.ExpiresAt.After(now) {
			notifications = append(notifications, n)
		}
	}
	sort.SliceStable(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})
	return notifications, nil
}

func (r *NotificationRepository) GetNotificationByID(ctx context.Context, id string) (*models.Notification, error) {
	var notif models.Notification
	if err := r.store.Get(ctx, NotificationsCollection, id, &notif); err != nil {
		return nil, fmt.Errorf("failed to find notification: %w", err)
	}
	return &notif, nil
}

// MarkAsRead sets notification's Read to true
func (r *NotificationRepository) MarkAsRead(ctx context.Context, id string) error {
	if err := r.store.Update(ctx, NotificationsCollection, id, store.Fields{"read": true}); err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

// DeleteExpiredNotifications removes every notification past its expiry and
// returns how many were deleted.
func (r *NotificationRepository) DeleteExpiredNotifications(ctx context.Context) (int, error) {
	var all []models.Notification
	if err := r.store.ListAll(ctx, NotificationsCollection, &all); err != nil {
		return 0, fmt.Errorf("failed to list notifications: %w", err)
	}

	now := time.Now()
	deleted := 0
	for _, n := range all {
		if n.ExpiresAt.After(now) {
			continue
		}
		if err := r.store.Delete(ctx, NotificationsCollection, n.ID); err != nil {
			return deleted, fmt.Errorf("failed to delete expired notification %s: %w", n.ID, err)
		}
		deleted++
	}
	logrus.Infof("Deleted %d expired notifications", deleted)
	return deleted, nil
}
