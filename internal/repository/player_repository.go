package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Dias221467/Player_Progression/internal/models"
	"github.com/Dias221467/Player_Progression/internal/store"
	"github.com/sirupsen/logrus"
)

// PlayerRepository handles persistence of player documents.
type PlayerRepository struct {
	store store.Store
}

// NewPlayerRepository creates a new instance of PlayerRepository.
func NewPlayerRepository(s store.Store) *PlayerRepository {
	return &PlayerRepository{store: s}
}

// CreatePlayer inserts a new player document.
func (r *PlayerRepository) CreatePlayer(ctx context.Context, player *models.Player) error {
	now := time.Now().UTC()
	player.CreatedAt = now
	player.UpdatedAt = now

	if err := r.store.Put(ctx, PlayersCollection, player.ID, player); err != nil {
		logrus.WithError(err).Error("Failed to insert player into database")
		return fmt.Errorf("failed to insert player: %w", err)
	}

	logrus.WithField("playerID", player.ID).Info("Player inserted successfully")
	return nil
}

// GetPlayerByID retrieves a player by ID. A missing player yields store.ErrNotFound.
func (r *PlayerRepository) GetPlayerByID(ctx context.Context, id string) (*models.Player, error) {
	var player models.Player
	if err := r.store.Get(ctx, PlayersCollection, id, &player); err != nil {
		return nil, fmt.Errorf("failed to find player by id: %w", err)
	}
	return &player, nil
}

// GetPlayerByEmail retrieves a player by email.
func (r *PlayerRepository) GetPlayerByEmail(ctx context.Context, email string) (*models.Player, error) {
	var players []models.Player
	if err := r.store.Query(ctx, PlayersCollection, store.Filter{"email": email}, &players); err != nil {
		return nil, fmt.Errorf("failed to find player by email: %w", err)
	}
	if len(players) == 0 {
		return nil, fmt.Errorf("failed to find player by email: %w", store.ErrNotFound)
	}
	return &players[0], nil
}

// GetAllPlayers returns every player document.
func (r *PlayerRepository) GetAllPlayers(ctx context.Context) ([]models.Player, error) {
	var players []models.Player
	if err := r.store.ListAll(ctx, PlayersCollection, &players); err != nil {
		return nil, fmt.Errorf("failed to fetch players: %w", err)
	}
	return players, nil
}

// SwapPlayer writes fields only if the player still has the version it was
// read with. It returns store.ErrVersionConflict when another writer got there first.
func (r *PlayerRepository) SwapPlayer(ctx context.Context, player *models.Player, fields store.Fields) error {
	fields["updated_at"] = time.Now().UTC()
	if err := r.store.CompareAndSwap(ctx, PlayersCollection, player.ID, player.Version, fields); err != nil {
		return fmt.Errorf("failed to update player %s: %w", player.ID, err)
	}
	return nil
}

// SetRankings writes the ranking field of every listed player. Players are
// updated independently; a failure may leave some rankings written.
func (r *PlayerRepository) SetRankings(ctx context.Context, rankings map[string]int) error {
	ops := make([]store.BatchOp, 0, len(rankings))
	for id, rank := range rankings {
		ops = append(ops, store.BatchOp{ID: id, Fields: store.Fields{"ranking": rank}})
	}
	if err := r.store.BatchUpdate(ctx, PlayersCollection, ops); err != nil {
		logrus.WithError(err).Error("Failed to persist rankings")
		return fmt.Errorf("failed to persist rankings: %w", err)
	}
	return nil
}

// DeletePlayer deletes a player document.
func (r *PlayerRepository) DeletePlayer(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, PlayersCollection, id); err != nil {
		logrus.WithFields(logrus.Fields{
			"playerID": id,
			"error":    err,
		}).Warn("Failed to delete player")
		return fmt.Errorf("failed to delete player: %w", err)
	}

	logrus.WithField("playerID", id).Info("Player deleted successfully")
	return nil
}
