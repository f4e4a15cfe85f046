package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Dias221467/Player_Progression/internal/models"
	"github.com/Dias221467/Player_Progression/internal/store"
)

// FriendRepository persists friend requests and the friendships they produce.
type FriendRepository struct {
	store store.Store
}

func NewFriendRepository(s store.Store) *FriendRepository {
	return &FriendRepository{store: s}
}

func (r *FriendRepository) CreateRequest(ctx context.Context, req *models.FriendRequest) error {
	if err := r.store.Put(ctx, FriendRequestsCollection, req.ID, req); err != nil {
		return fmt.Errorf("failed to send friend request: %w", err)
	}
	return nil
}

func (r *FriendRepository) GetRequestByID(ctx context.Context, id string) (*models.FriendRequest, error) {
	var req models.FriendRequest
	if err := r.store.Get(ctx, FriendRequestsCollection, id, &req); err != nil {
		return nil, fmt.Errorf("failed to find friend request: %w", err)
	}
	return &req, nil
}

// FindPending returns the pending requests from senderID to receiverID.
func (r *FriendRepository) FindPending(ctx context.Context, senderID, receiverID string) ([]models.FriendRequest, error) {
	return r.find(ctx, store.Filter{
		"sender_id":   senderID,
		"receiver_id": receiverID,
		"status":      models.StatusPending,
	})
}

// GetPendingByReceiver returns the pending requests addressed to receiverID.
func (r *FriendRepository) GetPendingByReceiver(ctx context.Context, receiverID string) ([]models.FriendRequest, error) {
	return r.find(ctx, store.Filter{"receiver_id": receiverID, "status": models.StatusPending})
}

// GetRequestsByReceiver returns every request addressed to receiverID, whatever its status.
func (r *FriendRepository) GetRequestsByReceiver(ctx context.Context, receiverID string) ([]models.FriendRequest, error) {
	return r.find(ctx, store.Filter{"receiver_id": receiverID})
}

func (r *FriendRepository) GetRequestsBySender(ctx context.Context, senderID string) ([]models.FriendRequest, error) {
	return r.find(ctx, store.Filter{"sender_id": senderID})
}

// FindBetween returns the requests with status sent in either direction
// between playerA and playerB.
func (r *FriendRepository) FindBetween(ctx context.Context, playerA, playerB string, status models.FriendRequestStatus) ([]models.FriendRequest, error) {
	forward, err := r.find(ctx, store.Filter{"sender_id": playerA, "receiver_id": playerB, "status": status})
	if err != nil {
		return nil, err
	}
	backward, err := r.find(ctx, store.Filter{"sender_id": playerB, "receiver_id": playerA, "status": status})
	if err != nil {
		return nil, err
	}
	return append(forward, backward...), nil
}

func (r *FriendRepository) GetAllRequests(ctx context.Context) ([]models.FriendRequest, error) {
	var requests []models.FriendRequest
	if err := r.store.ListAll(ctx, FriendRequestsCollection, &requests); err != nil {
		return nil, fmt.Errorf("failed to retrieve friend requests: %w", err)
	}
	return requests, nil
}

func (r *FriendRepository) find(ctx context.Context, filter store.Filter) ([]models.FriendRequest, error) {
	var requests []models.FriendRequest
	if err := r.store.Query(ctx, FriendRequestsCollection, filter, &requests); err != nil {
		return nil, fmt.Errorf("failed to find friend requests: %w", err)
	}
	return requests, nil
}

// TransitionRequest moves req to status if nobody changed it since it was read.
func (r *FriendRepository) TransitionRequest(ctx context.Context, req *models.FriendRequest, status models.FriendRequestStatus, at time.Time) error {
	err := r.store.CompareAndSwap(ctx, FriendRequestsCollection, req.ID, req.Version, store.Fields{
		"status":       status,
		"responded_at": at,
	})
	if err != nil {
		return fmt.Errorf("failed to update request status: %w", err)
	}
	return nil
}

func (r *FriendRepository) DeleteRequest(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, FriendRequestsCollection, id); err != nil {
		return fmt.Errorf("failed to delete friend request: %w", err)
	}
	return nil
}

// PutFriendship stores a friendship. Its id is derived from the two players,
// so writing the same friendship twice is harmless.
func (r *FriendRepository) PutFriendship(ctx context.Context, f *models.Friendship) error {
	if err := r.store.Put(ctx, FriendshipsCollection, f.ID, f); err != nil {
		return fmt.Errorf("failed to add friend: %w", err)
	}
	return nil
}

func (r *FriendRepository) GetFriendship(ctx context.Context, playerA, playerB string) (*models.Friendship, error) {
	var f models.Friendship
	if err := r.store.Get(ctx, FriendshipsCollection, models.FriendshipID(playerA, playerB), &f); err != nil {
		return nil, fmt.Errorf("failed to find friendship: %w", err)
	}
	return &f, nil
}

// GetFriendships returns every friendship playerID takes part in.
func (r *FriendRepository) GetFriendships(ctx context.Context, playerID string) ([]models.Friendship, error) {
	var friendships []models.Friendship
	if err := r.store.Query(ctx, FriendshipsCollection, store.Filter{"player_ids": playerID}, &friendships); err != nil {
		return nil, fmt.Errorf("failed to retrieve friends: %w", err)
	}
	return friendships, nil
}

func (r *FriendRepository) DeleteFriendship(ctx context.Context, playerA, playerB string) error {
	if err := r.store.Delete(ctx, FriendshipsCollection, models.FriendshipID(playerA, playerB)); err != nil {
		return fmt.Errorf("failed to remove friend: %w", err)
	}
	return nil
}

func (r *FriendRepository) GetAllFriendships(ctx context.Context) ([]models.Friendship, error) {
	var friendships []models.Friendship
	if err := r.store.ListAll(ctx, FriendshipsCollection, &friendships); err != nil {
		return nil, fmt.Errorf("failed to retrieve friendships: %w", err)
	}
	return friendships, nil
}
