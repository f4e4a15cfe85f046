package models

import "time"

type Activity struct {
	ID        string    `bson:"_id" json:"id"`
	PlayerID  string    `bson:"player_id" json:"player_id"`
	Type      string    `bson:"type" json:"type"`                               // e.g. "level_up", "friend_added"
	TargetID  string    `bson:"target_id,omitempty" json:"target_id,omitempty"` // the other player, request, etc.
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
	Message   string    `bson:"message" json:"message"`
}
