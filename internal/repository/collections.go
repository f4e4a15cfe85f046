package repository

import (
	"github.com/Dias221467/Player_Progression/internal/models"
	"github.com/Dias221467/Player_Progression/internal/store"
)

// Collection names shared by the repositories and the index setup.
const (
	PlayersCollection        = "players"
	FriendRequestsCollection = "friend_requests"
	FriendshipsCollection    = "friendships"
	NotificationsCollection  = "notifications"
	ActivitiesCollection     = "activities"
)

// UniqueIndexes are the uniqueness rules the repositories rely on: one player
// per email, and at most one pending request per (sender, receiver) pair.
var UniqueIndexes = []store.UniqueIndex{
	{
		Collection: PlayersCollection,
		Fields:     []string{"email"},
	},
	{
		Collection: FriendRequestsCollection,
		Fields:     []string{"sender_id", "receiver_id"},
		Partial:    store.Filter{"status": models.StatusPending},
	},
}
