package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dias221467/Player_Progression/internal/events"
	"github.com/Dias221467/Player_Progression/internal/models"
	"github.com/Dias221467/Player_Progression/internal/repository"
	"github.com/Dias221467/Player_Progression/internal/store"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// FriendService runs the friend request lifecycle.
//
// A friendship exists exactly while its accepted request exists. Writes that
// touch both records are not atomic: accepting stores the request before the
// friendship, and deleting removes the request before the friendship, so an
// interrupted write always leaves a state Reconcile can settle.
type FriendService struct {
	friendRepo *repository.FriendRepository
	playerRepo *repository.PlayerRepository
	publisher  events.Publisher
}

// NewFriendService creates a new FriendService.
func NewFriendService(friendRepo *repository.FriendRepository, playerRepo *repository.PlayerRepository, publisher events.Publisher) *FriendService {
	return &FriendService{
		friendRepo: friendRepo,
		playerRepo: playerRepo,
		publisher:  publisher,
	}
}

// CreateRequest sends a friend request from senderID to receiverID.
func (s *FriendService) CreateRequest(ctx context.Context, senderID, receiverID string) (*models.FriendRequest, error) {
	if senderID == receiverID {
		return nil, fmt.Errorf("%w: cannot send a friend request to yourself", ErrInvalidArgument)
	}

	sender, err := s.playerRepo.GetPlayerByID(ctx, senderID)
	if err != nil {
		return nil, translate(err, "sender "+senderID)
	}
	if _, err := s.playerRepo.GetPlayerByID(ctx, receiverID); err != nil {
		return nil, translate(err, "receiver "+receiverID)
	}

	_, err = s.friendRepo.GetFriendship(ctx, senderID, receiverID)
	if err == nil {
		return nil, fmt.Errorf("%w: players are already friends", ErrConflict)
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	pending, err := s.friendRepo.FindPending(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}
	if len(pending) > 0 {
		return nil, fmt.Errorf("%w: a pending friend request already exists", ErrConflict)
	}

	request := &models.FriendRequest{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		SenderName: sender.Name,
		Status:     models.StatusPending,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.friendRepo.CreateRequest(ctx, request); err != nil {
		return nil, translate(err, "friend request")
	}

	logrus.WithFields(logrus.Fields{
		"requestID":  request.ID,
		"senderID":   senderID,
		"receiverID": receiverID,
	}).Info("Friend request sent")
	publish(ctx, s.publisher, events.New(events.FriendRequestCreated, senderID, receiverID, request))
	return request, nil
}

// RespondToRequest accepts or rejects a pending request. An accepted request
// creates the friendship; a rejected one is deleted.
func (s *FriendService) RespondToRequest(ctx context.Context, requestID, decision string) (*models.FriendRequest, error) {
	status := models.FriendRequestStatus(decision)
	if status != models.StatusAccepted && status != models.StatusRejected {
		return nil, fmt.Errorf("%w: decision must be %q or %q", ErrInvalidArgument, models.StatusAccepted, models.StatusRejected)
	}

	request, err := retrySwap(ctx, "respond to friend request", func() (*models.FriendRequest, error) {
		request, err := s.friendRepo.GetRequestByID(ctx, requestID)
		if err != nil {
			return nil, translate(err, "friend request "+requestID)
		}
		if request.Status != models.StatusPending {
			return nil, fmt.Errorf("%w: request already %s", ErrConflict, request.Status)
		}
		if status == models.StatusAccepted {
			// A crossed request may already have made them friends.
			_, err := s.friendRepo.GetFriendship(ctx, request.SenderID, request.ReceiverID)
			if err == nil {
				return nil, fmt.Errorf("%w: players are already friends", ErrConflict)
			}
			if !errors.Is(err, store.ErrNotFound) {
				return nil, err
			}
		}
		now := time.Now().UTC()
		if err := s.friendRepo.TransitionRequest(ctx, request, status, now); err != nil {
			return nil, err
		}
		request.Status = status
		request.RespondedAt = &now
		request.Version++
		return request, nil
	})
	if err != nil {
		return nil, translate(err, "friend request "+requestID)
	}

	log := logrus.WithFields(logrus.Fields{
		"requestID":  request.ID,
		"senderID":   request.SenderID,
		"receiverID": request.ReceiverID,
	})

	if status == models.StatusAccepted {
		if _, err := s.createFriendship(ctx, request); err != nil {
			log.WithError(err).Error("Request accepted but friendship was not stored")
			return request, fmt.Errorf("request accepted, friendship write failed: %w", err)
		}
		log.Info("Friend request accepted")
		publish(ctx, s.publisher, events.New(events.FriendRequestAccepted, request.ReceiverID, request.SenderID, request))
		return request, nil
	}

	if err := s.friendRepo.DeleteRequest(ctx, request.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
		log.WithError(err).Error("Request rejected but not deleted")
		return request, fmt.Errorf("request rejected, cleanup failed: %w", err)
	}
	log.Info("Friend request rejected")
	publish(ctx, s.publisher, events.New(events.FriendRequestRejected, request.ReceiverID, request.SenderID, request))
	return request, nil
}

// DeleteRequest removes a request on behalf of one of its two players.
// Deleting an accepted request ends the friendship.
func (s *FriendService) DeleteRequest(ctx context.Context, requestID, actingPlayerID string) error {
	request, err := s.friendRepo.GetRequestByID(ctx, requestID)
	if err != nil {
		return translate(err, "friend request "+requestID)
	}
	if !request.Involves(actingPlayerID) {
		return fmt.Errorf("%w: only the sender or the receiver can delete a request", ErrForbidden)
	}

	if err := s.friendRepo.DeleteRequest(ctx, request.ID); err != nil {
		return translate(err, "friend request "+requestID)
	}

	if request.Status == models.StatusAccepted {
		// Two crossed requests accepted at once both stay accepted; the
		// friendship only ends once neither is left.
		others, err := s.friendRepo.FindBetween(ctx, request.SenderID, request.ReceiverID, models.StatusAccepted)
		if err != nil {
			return fmt.Errorf("request deleted, friendship removal failed: %w", err)
		}
		for _, other := range others {
			if err := s.friendRepo.DeleteRequest(ctx, other.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("request deleted, friendship removal failed: %w", err)
			}
		}

		err = s.friendRepo.DeleteFriendship(ctx, request.SenderID, request.ReceiverID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			logrus.WithError(err).WithField("requestID", requestID).Error("Request deleted but friendship was not removed")
			return fmt.Errorf("request deleted, friendship removal failed: %w", err)
		}
		other := request.SenderID
		if other == actingPlayerID {
			other = request.ReceiverID
		}
		publish(ctx, s.publisher, events.New(events.FriendshipRemoved, actingPlayerID, other, request))
	}

	logrus.WithFields(logrus.Fields{
		"requestID": requestID,
		"status":    request.Status,
		"by":        actingPlayerID,
	}).Info("Friend request deleted")
	return nil
}

func (s *FriendService) GetRequest(ctx context.Context, requestID string) (*models.FriendRequest, error) {
	request, err := s.friendRepo.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, translate(err, "friend request "+requestID)
	}
	return request, nil
}

// ListIncomingRequests returns every request addressed to playerID, whatever its status.
func (s *FriendService) ListIncomingRequests(ctx context.Context, playerID string) ([]models.FriendRequest, error) {
	if err := s.ensurePlayer(ctx, playerID); err != nil {
		return nil, err
	}
	return s.friendRepo.GetRequestsByReceiver(ctx, playerID)
}

// ListPendingRequests returns the player's pending list: one entry per
// pending request addressed to it.
func (s *FriendService) ListPendingRequests(ctx context.Context, playerID string) ([]models.PendingRef, error) {
	if err := s.ensurePlayer(ctx, playerID); err != nil {
		return nil, err
	}
	pending, err := s.friendRepo.GetPendingByReceiver(ctx, playerID)
	if err != nil {
		return nil, err
	}
	refs := make([]models.PendingRef, 0, len(pending))
	for _, r := range pending {
		refs = append(refs, models.PendingRef{ID: r.ID, Name: r.SenderName})
	}
	return refs, nil
}

// ListFriends returns the player's friends with the names captured when each
// request was accepted.
func (s *FriendService) ListFriends(ctx context.Context, playerID string) ([]models.FriendRef, error) {
	if err := s.ensurePlayer(ctx, playerID); err != nil {
		return nil, err
	}
	friendships, err := s.friendRepo.GetFriendships(ctx, playerID)
	if err != nil {
		return nil, err
	}
	friends := make([]models.FriendRef, 0, len(friendships))
	for i := range friendships {
		friends = append(friends, friendships[i].Other(playerID))
	}
	return friends, nil
}

func (s *FriendService) ListAllRequests(ctx context.Context) ([]models.FriendRequest, error) {
	return s.friendRepo.GetAllRequests(ctx)
}

// RemovePlayerRelations deletes every request and friendship playerID takes
// part in. Used when a player is deleted.
func (s *FriendService) RemovePlayerRelations(ctx context.Context, playerID string) error {
	sent, err := s.friendRepo.GetRequestsBySender(ctx, playerID)
	if err != nil {
		return err
	}
	received, err := s.friendRepo.GetRequestsByReceiver(ctx, playerID)
	if err != nil {
		return err
	}
	for _, r := range append(sent, received...) {
		if err := s.friendRepo.DeleteRequest(ctx, r.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
	}

	friendships, err := s.friendRepo.GetFriendships(ctx, playerID)
	if err != nil {
		return err
	}
	for _, f := range friendships {
		if err := s.friendRepo.DeleteFriendship(ctx, f.PlayerIDs[0], f.PlayerIDs[1]); err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
	}

	logrus.WithFields(logrus.Fields{
		"playerID":    playerID,
		"requests":    len(sent) + len(received),
		"friendships": len(friendships),
	}).Info("Removed player relations")
	return nil
}

// FriendRepairReport counts what one Reconcile pass changed.
type FriendRepairReport struct {
	FriendshipsRestored int
	FriendshipsRemoved  int
	RequestsRemoved     int
}

// Reconcile settles the state left behind by interrupted writes:
//   - accepted requests without a friendship get one
//   - friendships without an accepted request are removed
//   - rejected requests are deleted
//   - requests and friendships naming a deleted player are removed
func (s *FriendService) Reconcile(ctx context.Context) (FriendRepairReport, error) {
	var report FriendRepairReport

	players, err := s.playerRepo.GetAllPlayers(ctx)
	if err != nil {
		return report, err
	}
	exists := make(map[string]bool, len(players))
	for _, p := range players {
		exists[p.ID] = true
	}

	requests, err := s.friendRepo.GetAllRequests(ctx)
	if err != nil {
		return report, err
	}
	// Friendship ids of every pair with an accepted request.
	accepted := make(map[string]bool)
	for i := range requests {
		r := &requests[i]
		orphaned := !exists[r.SenderID] || !exists[r.ReceiverID]
		if orphaned || r.Status == models.StatusRejected {
			if err := s.friendRepo.DeleteRequest(ctx, r.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
				return report, err
			}
			report.RequestsRemoved++
			continue
		}
		if r.Status != models.StatusAccepted {
			continue
		}
		accepted[models.FriendshipID(r.SenderID, r.ReceiverID)] = true

		_, err := s.friendRepo.GetFriendship(ctx, r.SenderID, r.ReceiverID)
		if err == nil {
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return report, err
		}
		// The request may have been deleted after the list above was read.
		current, err := s.friendRepo.GetRequestByID(ctx, r.ID)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return report, err
		}
		if current.Status != models.StatusAccepted {
			continue
		}
		if _, err := s.createFriendship(ctx, current); err != nil {
			return report, err
		}
		report.FriendshipsRestored++
	}

	friendships, err := s.friendRepo.GetAllFriendships(ctx)
	if err != nil {
		return report, err
	}
	for _, f := range friendships {
		if accepted[f.ID] {
			continue
		}
		// A request may have been accepted after the list above was read.
		current, err := s.friendRepo.FindBetween(ctx, f.PlayerIDs[0], f.PlayerIDs[1], models.StatusAccepted)
		if err != nil {
			return report, err
		}
		if len(current) > 0 {
			continue
		}
		if err := s.friendRepo.DeleteFriendship(ctx, f.PlayerIDs[0], f.PlayerIDs[1]); err != nil && !errors.Is(err, store.ErrNotFound) {
			return report, err
		}
		report.FriendshipsRemoved++
	}

	return report, nil
}

func (s *FriendService) createFriendship(ctx context.Context, request *models.FriendRequest) (*models.Friendship, error) {
	sender, err := s.playerRepo.GetPlayerByID(ctx, request.SenderID)
	if err != nil {
		return nil, translate(err, "sender "+request.SenderID)
	}
	receiver, err := s.playerRepo.GetPlayerByID(ctx, request.ReceiverID)
	if err != nil {
		return nil, translate(err, "receiver "+request.ReceiverID)
	}

	friendship := &models.Friendship{
		ID:        models.FriendshipID(request.SenderID, request.ReceiverID),
		RequestID: request.ID,
		PlayerIDs: []string{request.SenderID, request.ReceiverID},
		Members: []models.FriendshipMember{
			{PlayerID: sender.ID, Name: sender.Name},
			{PlayerID: receiver.ID, Name: receiver.Name},
		},
		CreatedAt: time.Now().UTC(),
	}
	if err := s.friendRepo.PutFriendship(ctx, friendship); err != nil {
		return nil, err
	}
	return friendship, nil
}

func (s *FriendService) ensurePlayer(ctx context.Context, playerID string) error {
	if _, err := s.playerRepo.GetPlayerByID(ctx, playerID); err != nil {
		return translate(err, "player "+playerID)
	}
	return nil
}
