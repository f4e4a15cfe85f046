package services

import (
	"context"
	"fmt"
	"math"

	"github.com/Dias221467/Player_Progression/internal/events"
	"github.com/Dias221467/Player_Progression/internal/models"
	"github.com/Dias221467/Player_Progression/internal/ranking"
	"github.com/Dias221467/Player_Progression/internal/repository"
	"github.com/Dias221467/Player_Progression/internal/store"
	"github.com/sirupsen/logrus"
)

const (
	msgExperienceUpdated = "experience updated"
	msgLevelUpAvailable  = "experience updated, level up available"
)

// ProgressService owns experience and level changes.
type ProgressService struct {
	players   *repository.PlayerRepository
	ranking   *RankingService
	publisher events.Publisher
}

// NewProgressService creates a new instance of ProgressService.
func NewProgressService(players *repository.PlayerRepository, ranking *RankingService, publisher events.Publisher) *ProgressService {
	return &ProgressService{
		players:   players,
		ranking:   ranking,
		publisher: publisher,
	}
}

// GetProgress returns a player's level, experience and next threshold.
func (s *ProgressService) GetProgress(ctx context.Context, playerID string) (*models.Progress, error) {
	player, err := s.players.GetPlayerByID(ctx, playerID)
	if err != nil {
		return nil, translate(err, "player "+playerID)
	}
	progress := progressOf(player)
	return &progress, nil
}

// AddExperience adds amount to a player's experience. It never changes the
// level; the result says whether a level up is available.
func (s *ProgressService) AddExperience(ctx context.Context, playerID string, amount int64) (*models.ExperienceResult, error) {
	if amount < 0 {
		return nil, fmt.Errorf("%w: experience must be a non-negative integer", ErrInvalidArgument)
	}

	player, err := retrySwap(ctx, "add experience", func() (*models.Player, error) {
		player, err := s.players.GetPlayerByID(ctx, playerID)
		if err != nil {
			return nil, translate(err, "player "+playerID)
		}
		if player.Experience > math.MaxInt64-amount {
			return nil, fmt.Errorf("%w: experience would overflow", ErrInvalidArgument)
		}
		player.Experience += amount
		if err := s.players.SwapPlayer(ctx, player, store.Fields{"experience": player.Experience}); err != nil {
			return nil, err
		}
		return player, nil
	})
	if err != nil {
		return nil, translateSwap(err, playerID)
	}

	result := &models.ExperienceResult{
		Progress:   progressOf(player),
		CanLevelUp: player.Experience >= Threshold(player.Level),
		Message:    msgExperienceUpdated,
	}
	if result.CanLevelUp {
		result.Message = msgLevelUpAvailable
	}

	logrus.WithFields(logrus.Fields{
		"playerID":   playerID,
		"amount":     amount,
		"experience": player.Experience,
	}).Info("Experience added")
	publish(ctx, s.publisher, events.New(events.ExperienceAdded, playerID, "", result))
	return result, nil
}

// LevelUp spends the player's experience on every level it covers and then
// refreshes the global ranking. The level change is kept even if the ranking
// refresh fails; the result then comes with ErrRankingStale.
func (s *ProgressService) LevelUp(ctx context.Context, playerID string) (*models.LevelUpResult, error) {
	var gained int
	player, err := retrySwap(ctx, "level up", func() (*models.Player, error) {
		player, err := s.players.GetPlayerByID(ctx, playerID)
		if err != nil {
			return nil, translate(err, "player "+playerID)
		}
		needed := Threshold(player.Level)
		if player.Experience < needed {
			return nil, fmt.Errorf("%w: need %d experience to reach level %d, have %d",
				ErrInsufficientExperience, needed, player.Level+1, player.Experience)
		}

		player.Level, player.Experience, gained = applyLevelUps(player.Level, player.Experience)
		err = s.players.SwapPlayer(ctx, player, store.Fields{
			"level":      player.Level,
			"experience": player.Experience,
		})
		if err != nil {
			return nil, err
		}
		return player, nil
	})
	if err != nil {
		return nil, translateSwap(err, playerID)
	}

	result := &models.LevelUpResult{
		Progress:     progressOf(player),
		LevelsGained: gained,
		Message:      fmt.Sprintf("level up to %d", player.Level),
	}

	logrus.WithFields(logrus.Fields{
		"playerID": playerID,
		"level":    player.Level,
		"gained":   gained,
	}).Info("Player levelled up")
	publish(ctx, s.publisher, events.New(events.LevelUp, playerID, "", result))

	s.ranking.Record(ctx, playerID, player.Level)
	ranked, err := s.ranking.Refresh(ctx)
	if err != nil {
		if rank, rankErr := s.ranking.PlayerRank(ctx, playerID); rankErr == nil {
			result.Ranking = rank
		}
		return result, fmt.Errorf("level persisted: %w: %v", ErrRankingStale, err)
	}
	result.Ranking = rankOf(ranked, playerID)
	return result, nil
}

// SetProgress overwrites a player's level and experience. It is the admin
// correction path and skips the threshold rules.
func (s *ProgressService) SetProgress(ctx context.Context, playerID string, level int, experience int64) (*models.Progress, error) {
	if level < 1 {
		return nil, fmt.Errorf("%w: level must be at least 1", ErrInvalidArgument)
	}
	if experience < 0 {
		return nil, fmt.Errorf("%w: experience must be non-negative", ErrInvalidArgument)
	}

	player, err := retrySwap(ctx, "set progress", func() (*models.Player, error) {
		player, err := s.players.GetPlayerByID(ctx, playerID)
		if err != nil {
			return nil, translate(err, "player "+playerID)
		}
		player.Level = level
		player.Experience = experience
		err = s.players.SwapPlayer(ctx, player, store.Fields{
			"level":      level,
			"experience": experience,
		})
		if err != nil {
			return nil, err
		}
		return player, nil
	})
	if err != nil {
		return nil, translateSwap(err, playerID)
	}

	logrus.WithFields(logrus.Fields{
		"playerID":   playerID,
		"level":      level,
		"experience": experience,
	}).Warn("Player progress overwritten")

	progress := progressOf(player)
	s.ranking.Record(ctx, playerID, level)
	if _, err := s.ranking.Refresh(ctx); err != nil {
		return &progress, fmt.Errorf("progress persisted: %w: %v", ErrRankingStale, err)
	}
	return &progress, nil
}

// translateSwap maps a store error left over from a swap loop. Errors already
// carrying a service sentinel pass through.
func translateSwap(err error, playerID string) error {
	return translate(err, "player "+playerID)
}

func rankOf(ranked []ranking.Entry, playerID string) int {
	for _, e := range ranked {
		if e.PlayerID == playerID {
			return e.Rank
		}
	}
	return 0
}
