package models

import "time"

type Notification struct {
	ID        string    `bson:"_id" json:"id"`
	PlayerID  string    `bson:"player_id" json:"player_id"`
	Type      string    `bson:"type" json:"type"`       // e.g. "friend_request", "level_up"
	Title     string    `bson:"title" json:"title"`     // Short headline
	Message   string    `bson:"message" json:"message"` // Descriptive content
	Read      bool      `bson:"read" json:"read"`
	TargetID  string    `bson:"target_id,omitempty" json:"target_id,omitempty"` // request or player the notification is about
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"` // For auto-deletion after 7 days
}
