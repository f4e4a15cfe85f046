// Package events carries progression and friendship events to the sinks that
// care about them: the Kafka stream, the live ranking feed, notifications and
// the activity log.
package events

import (
	"context"
	"errors"
	"time"
)

type Type string

const (
	ExperienceAdded       Type = "experience_added"
	LevelUp               Type = "level_up"
	RankingUpdated        Type = "ranking_updated"
	AchievementsUnlocked  Type = "achievements_unlocked"
	FriendRequestCreated  Type = "friend_request_created"
	FriendRequestAccepted Type = "friend_request_accepted"
	FriendRequestRejected Type = "friend_request_rejected"
	FriendshipRemoved     Type = "friendship_removed"
)

// Event is something that happened to a player. TargetID names the other
// party when there is one (the receiver of a request, the removed friend).
type Event struct {
	Type       Type        `json:"type"`
	PlayerID   string      `json:"player_id,omitempty"`
	TargetID   string      `json:"target_id,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// New stamps an event with the current time.
func New(t Type, playerID, targetID string, data interface{}) Event {
	return Event{
		Type:       t,
		PlayerID:   playerID,
		TargetID:   targetID,
		Data:       data,
		OccurredAt: time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Multi publishes to every publisher, even after one of them fails.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
