package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Dias221467/Player_Progression/internal/events"
	"github.com/Dias221467/Player_Progression/internal/models"
	"github.com/Dias221467/Player_Progression/internal/repository"
	"github.com/Dias221467/Player_Progression/internal/store"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) types() []events.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]events.Type, 0, len(r.events))
	for _, e := range r.events {
		types = append(types, e.Type)
	}
	return types
}

type testEnv struct {
	store        store.Store
	players      *repository.PlayerRepository
	friendRepo   *repository.FriendRepository
	events       *recorder
	ranking      *RankingService
	progress     *ProgressService
	achievements *AchievementService
	friends      *FriendService
	accounts     *PlayerService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithStore(t, store.NewMemoryStore(repository.UniqueIndexes...))
}

func newTestEnvWithStore(t *testing.T, s store.Store) *testEnv {
	t.Helper()
	rec := &recorder{}
	players := repository.NewPlayerRepository(s)
	friendRepo := repository.NewFriendRepository(s)
	rankingService := NewRankingService(players, nil, rec)
	friends := NewFriendService(friendRepo, players, rec)
	return &testEnv{
		store:        s,
		players:      players,
		friendRepo:   friendRepo,
		events:       rec,
		ranking:      rankingService,
		progress:     NewProgressService(players, rankingService, rec),
		achievements: NewAchievementService(players, rec),
		friends:      friends,
		accounts: NewPlayerService(players, friends, rankingService, nil, AuthSettings{
			JWTSecret:  "test-secret",
			BcryptCost: 4,
		}),
	}
}

// seedPlayer stores a player directly, bypassing registration.
func (e *testEnv) seedPlayer(t *testing.T, id, name string, level int, experience int64) {
	t.Helper()
	err := e.players.CreatePlayer(context.Background(), &models.Player{
		ID:         id,
		Name:       name,
		Email:      id + "@example.com",
		Role:       models.RolePlayer,
		Level:      level,
		Experience: experience,
	})
	require.NoError(t, err)
}

func (e *testEnv) player(t *testing.T, id string) *models.Player {
	t.Helper()
	p, err := e.players.GetPlayerByID(context.Background(), id)
	require.NoError(t, err)
	return p
}

// failingBatchStore loses every BatchUpdate, the write a ranking refresh ends with.
type failingBatchStore struct {
	*store.MemoryStore
}

func (failingBatchStore) BatchUpdate(context.Context, string, []store.BatchOp) error {
	return errors.New("batch update unavailable")
}

// racingStore runs afterList once, right after the first ListAll of collection
// returns, to stand in for a writer that slips in between a read and the
// writes based on it.
type racingStore struct {
	*store.MemoryStore
	collection string
	afterList  func()
}

func (s *racingStore) ListAll(ctx context.Context, collection string, out interface{}) error {
	err := s.MemoryStore.ListAll(ctx, collection, out)
	if collection == s.collection && s.afterList != nil {
		hook := s.afterList
		s.afterList = nil
		hook()
	}
	return err
}
