package models

import "time"

const (
	RolePlayer = "player"
	RoleAdmin  = "admin"
)

// Player is a player account together with its progression state.
//
// Friends and PendingRequests are not stored on the player document; they are
// derived from the friendships and friend_requests collections when a player
// is loaded for display.
type Player struct {
	ID             string        `bson:"_id" json:"id"`
	Name           string        `bson:"name" json:"name"`
	Email          string        `bson:"email" json:"email"`
	HashedPassword string        `bson:"hashed_password" json:"-"`
	Role           string        `bson:"role" json:"role"`
	Level          int           `bson:"level" json:"level"`
	Experience     int64         `bson:"experience" json:"experience"`
	Achievements   []Achievement `bson:"achievements" json:"achievements"`
	Ranking        int           `bson:"ranking" json:"ranking"`

	Friends         []FriendRef  `bson:"-" json:"friends"`
	PendingRequests []PendingRef `bson:"-" json:"pending_requests"`

	Version   int64     `bson:"version" json:"-"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Achievement is one entry of a player's achievement ledger.
type Achievement struct {
	ID          int    `bson:"id" json:"id"`
	Name        string `bson:"name" json:"name"`
	Description string `bson:"description" json:"description"`
}

// FriendRef points at a friend with the name captured when the friendship
// was created.
type FriendRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PendingRef points at an incoming pending friend request with the sender's
// name captured when the request was sent.
type PendingRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
