package models

import (
	"sort"
	"strings"
	"time"
)

type FriendRequestStatus string

const (
	StatusPending  FriendRequestStatus = "pending"
	StatusAccepted FriendRequestStatus = "accepted"
	StatusRejected FriendRequestStatus = "rejected"
)

type FriendRequest struct {
	ID          string              `bson:"_id" json:"id"`
	SenderID    string              `bson:"sender_id" json:"sender_id"`
	ReceiverID  string              `bson:"receiver_id" json:"receiver_id"`
	SenderName  string              `bson:"sender_name" json:"sender_name"`
	Status      FriendRequestStatus `bson:"status" json:"status"`
	CreatedAt   time.Time           `bson:"created_at" json:"created_at"`
	RespondedAt *time.Time          `bson:"responded_at,omitempty" json:"responded_at,omitempty"`
	Version     int64               `bson:"version" json:"-"`
}

// Involves reports whether playerID is the sender or the receiver.
func (r *FriendRequest) Involves(playerID string) bool {
	return r.SenderID == playerID || r.ReceiverID == playerID
}

type FriendshipMember struct {
	PlayerID string `bson:"player_id" json:"player_id"`
	Name     string `bson:"name" json:"name"`
}

// Friendship is the single record behind a mutual friendship. Both players'
// friend lists are read from it, so the relation is symmetric by construction.
type Friendship struct {
	ID        string             `bson:"_id" json:"id"`
	RequestID string             `bson:"request_id" json:"request_id"`
	PlayerIDs []string           `bson:"player_ids" json:"player_ids"`
	Members   []FriendshipMember `bson:"members" json:"members"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// FriendshipID is the id of the friendship between a and b, independent of
// argument order.
func FriendshipID(a, b string) string {
	ids := []string{a, b}
	sort.Strings(ids)
	return strings.Join(ids, ":")
}

// Other returns the member that is not playerID.
func (f *Friendship) Other(playerID string) FriendRef {
	for _, m := range f.Members {
		if m.PlayerID != playerID {
			return FriendRef{ID: m.PlayerID, Name: m.Name}
		}
	}
	return FriendRef{}
}
