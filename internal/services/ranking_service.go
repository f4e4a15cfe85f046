package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Dias221467/Player_Progression/internal/events"
	"github.com/Dias221467/Player_Progression/internal/models"
	"github.com/Dias221467/Player_Progression/internal/ranking"
	"github.com/Dias221467/Player_Progression/internal/repository"
	"github.com/sirupsen/logrus"
)

// RankingService derives the global ranking from player levels and keeps the
// stored ranking fields in line with it.
//
// Refreshes are serialized within the process. Two processes refreshing at
// once each write a complete ranking and the last one to finish wins; the
// reconciler job brings any stale fields back in line.
type RankingService struct {
	players   *repository.PlayerRepository
	index     ranking.Index
	publisher events.Publisher

	mu sync.Mutex
}

// NewRankingService creates a RankingService. index may be nil.
func NewRankingService(players *repository.PlayerRepository, index ranking.Index, publisher events.Publisher) *RankingService {
	return &RankingService{
		players:   players,
		index:     index,
		publisher: publisher,
	}
}

// Global computes the ranking from current levels without writing anything.
func (s *RankingService) Global(ctx context.Context) ([]ranking.Entry, error) {
	players, err := s.players.GetAllPlayers(ctx)
	if err != nil {
		return nil, err
	}
	return ranking.Compute(entriesOf(players)), nil
}

// Refresh recomputes the ranking and writes every player's ranking field.
func (s *RankingService) Refresh(ctx context.Context) ([]ranking.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ranked, err := s.Global(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute ranking: %w", err)
	}
	if err := s.players.SetRankings(ctx, ranking.Positions(ranked)); err != nil {
		return nil, err
	}

	if s.index != nil {
		if err := s.index.Rebuild(ctx, ranked); err != nil {
			// The stored fields are authoritative; the index catches up on the next refresh.
			logrus.WithError(err).Warn("Failed to rebuild ranking index")
		}
	}

	logrus.WithField("players", len(ranked)).Info("Ranking refreshed")
	publish(ctx, s.publisher, events.New(events.RankingUpdated, "", "", topOf(ranked, 10)))
	return ranked, nil
}

// Record moves one player in the index right away, so PlayerRank sees the new
// level even when the following Refresh fails. It is a no-op without an index.
func (s *RankingService) Record(ctx context.Context, playerID string, level int) {
	if s.index == nil {
		return
	}
	if err := s.index.SetLevel(ctx, playerID, level); err != nil {
		logrus.WithError(err).WithField("playerID", playerID).Warn("Failed to update ranking index")
	}
}

// PlayerRank returns a single player's position. The Redis index answers when
// it is configured and has the player; otherwise the ranking is computed.
func (s *RankingService) PlayerRank(ctx context.Context, playerID string) (int, error) {
	if s.index != nil {
		rank, err := s.index.Rank(ctx, playerID)
		if err == nil {
			return rank, nil
		}
		if !errors.Is(err, ranking.ErrNotIndexed) {
			logrus.WithError(err).Warn("Ranking index lookup failed, computing rank")
		}
	}

	ranked, err := s.Global(ctx)
	if err != nil {
		return 0, err
	}
	for _, e := range ranked {
		if e.PlayerID == playerID {
			return e.Rank, nil
		}
	}
	return 0, fmt.Errorf("%w: player %s", ErrNotFound, playerID)
}

func entriesOf(players []models.Player) []ranking.Entry {
	entries := make([]ranking.Entry, 0, len(players))
	for _, p := range players {
		entries = append(entries, ranking.Entry{
			PlayerID:   p.ID,
			Name:       p.Name,
			Level:      p.Level,
			Experience: p.Experience,
		})
	}
	return entries
}

func topOf(ranked []ranking.Entry, n int) []ranking.Entry {
	if len(ranked) < n {
		return ranked
	}
	return ranked[:n]
}
