package services

import (
	"context"
	"testing"

	"github.com/Dias221467/Player_Progression/internal/events"
	"github.com/Dias221467/Player_Progression/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAchievementsAssignsSequentialIDs(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedPlayer(t, "p1", "Ana", 1, 0)

	result, err := env.achievements.AddAchievements(ctx, "p1", []AchievementInput{
		{Name: "First Blood", Description: "Win a match"},
		{Name: "Explorer", Description: "Visit every zone"},
	})
	require.NoError(t, err)
	assert.Equal(t, "achievements added", result.Message)
	assert.Equal(t, []models.Achievement{
		{ID: 1, Name: "First Blood", Description: "Win a match"},
		{ID: 2, Name: "Explorer", Description: "Visit every zone"},
	}, result.Added)

	result, err = env.achievements.AddAchievements(ctx, "p1", []AchievementInput{
		{Name: "Explorer", Description: "again"},
		{Name: "Collector", Description: "Own 100 items"},
	})
	require.NoError(t, err)
	assert.Equal(t, []models.Achievement{{ID: 3, Name: "Collector", Description: "Own 100 items"}}, result.Added)
	assert.Equal(t, []string{"Explorer"}, result.Skipped)

	ledger, err := env.achievements.ListAchievements(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, ledger, 3)
	assert.Equal(t, []events.Type{events.AchievementsUnlocked, events.AchievementsUnlocked}, env.events.types())
}

func TestAddAchievementsSkipsNamesRepeatedInOneCall(t *testing.T) {
	env := newTestEnv(t)
	env.seedPlayer(t, "p1", "Ana", 1, 0)

	result, err := env.achievements.AddAchievements(context.Background(), "p1", []AchievementInput{
		{Name: "Explorer", Description: "first"},
		{Name: "Explorer", Description: "second"},
	})
	require.NoError(t, err)
	require.Len(t, result.Added, 1)
	assert.Equal(t, "first", result.Added[0].Description)
	assert.Equal(t, []string{"Explorer"}, result.Skipped)
}

func TestAddAchievementsAllDuplicatesWritesNothing(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedPlayer(t, "p1", "Ana", 1, 0)

	_, err := env.achievements.AddAchievements(ctx, "p1", []AchievementInput{{Name: "Explorer", Description: "d"}})
	require.NoError(t, err)
	version := env.player(t, "p1").Version

	result, err := env.achievements.AddAchievements(ctx, "p1", []AchievementInput{{Name: "Explorer", Description: "d"}})
	require.NoError(t, err)
	assert.Empty(t, result.Added)
	assert.Equal(t, "no new achievements", result.Message)
	assert.Equal(t, version, env.player(t, "p1").Version)
}

func TestAddAchievementsValidatesBeforeWriting(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedPlayer(t, "p1", "Ana", 1, 0)

	_, err := env.achievements.AddAchievements(ctx, "p1", nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = env.achievements.AddAchievements(ctx, "p1", []AchievementInput{
		{Name: "Valid", Description: "ok"},
		{Name: "", Description: "missing name"},
	})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = env.achievements.AddAchievements(ctx, "p1", []AchievementInput{{Name: "No description"}})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	assert.Empty(t, env.player(t, "p1").Achievements)

	_, err = env.achievements.AddAchievements(ctx, "missing", []AchievementInput{{Name: "a", Description: "b"}})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMergeAchievementsContinuesFromMaxID(t *testing.T) {
	ledger := []models.Achievement{{ID: 7, Name: "a"}, {ID: 3, Name: "b"}}

	added, skipped := mergeAchievements(ledger, []AchievementInput{{Name: "c", Description: "x"}})
	require.Len(t, added, 1)
	assert.Equal(t, 8, added[0].ID)
	assert.Empty(t, skipped)
}
