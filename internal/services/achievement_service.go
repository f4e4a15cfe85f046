package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/Dias221467/Player_Progression/internal/events"
	"github.com/Dias221467/Player_Progression/internal/models"
	"github.com/Dias221467/Player_Progression/internal/repository"
	"github.com/Dias221467/Player_Progression/internal/store"
	"github.com/sirupsen/logrus"
)

const (
	msgAchievementsAdded = "achievements added"
	msgNoNewAchievements = "no new achievements"
)

// AchievementInput is one achievement to unlock.
type AchievementInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// AchievementService appends to players' achievement ledgers.
type AchievementService struct {
	players   *repository.PlayerRepository
	publisher events.Publisher
}

func NewAchievementService(players *repository.PlayerRepository, publisher events.Publisher) *AchievementService {
	return &AchievementService{players: players, publisher: publisher}
}

// AddAchievements unlocks the given achievements. Names the ledger already
// holds, and names repeated within the call, are skipped. New entries get
// ids following the current maximum. When nothing is new the ledger is not
// written.
func (s *AchievementService) AddAchievements(ctx context.Context, playerID string, inputs []AchievementInput) (*models.AchievementResult, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: achievements list must not be empty", ErrInvalidArgument)
	}
	for i, in := range inputs {
		if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Description) == "" {
			return nil, fmt.Errorf("%w: achievement %d needs a name and a description", ErrInvalidArgument, i)
		}
	}

	result, err := retrySwap(ctx, "add achievements", func() (*models.AchievementResult, error) {
		player, err := s.players.GetPlayerByID(ctx, playerID)
		if err != nil {
			return nil, translate(err, "player "+playerID)
		}

		added, skipped := mergeAchievements(player.Achievements, inputs)
		result := &models.AchievementResult{
			PlayerID: playerID,
			Added:    added,
			Skipped:  skipped,
			Message:  msgNoNewAchievements,
		}
		if len(added) == 0 {
			return result, nil
		}

		ledger := append(append([]models.Achievement{}, player.Achievements...), added...)
		if err := s.players.SwapPlayer(ctx, player, store.Fields{"achievements": ledger}); err != nil {
			return nil, err
		}
		result.Message = msgAchievementsAdded
		return result, nil
	})
	if err != nil {
		return nil, translate(err, "player "+playerID)
	}

	if len(result.Added) > 0 {
		logrus.WithFields(logrus.Fields{
			"playerID": playerID,
			"added":    len(result.Added),
			"skipped":  len(result.Skipped),
		}).Info("Achievements unlocked")
		publish(ctx, s.publisher, events.New(events.AchievementsUnlocked, playerID, "", result.Added))
	}
	return result, nil
}

// ListAchievements returns a player's ledger in unlock order.
func (s *AchievementService) ListAchievements(ctx context.Context, playerID string) ([]models.Achievement, error) {
	player, err := s.players.GetPlayerByID(ctx, playerID)
	if err != nil {
		return nil, translate(err, "player "+playerID)
	}
	if player.Achievements == nil {
		return []models.Achievement{}, nil
	}
	return player.Achievements, nil
}

func mergeAchievements(ledger []models.Achievement, inputs []AchievementInput) ([]models.Achievement, []string) {
	seen := make(map[string]bool, len(ledger)+len(inputs))
	nextID := 1
	for _, a := range ledger {
		seen[a.Name] = true
		if a.ID >= nextID {
			nextID = a.ID + 1
		}
	}

	added := []models.Achievement{}
	var skipped []string
	for _, in := range inputs {
		if seen[in.Name] {
			skipped = append(skipped, in.Name)
			continue
		}
		seen[in.Name] = true
		added = append(added, models.Achievement{
			ID:          nextID,
			Name:        in.Name,
			Description: in.Description,
		})
		nextID++
	}
	return added, skipped
}
