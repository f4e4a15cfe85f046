package services

import (
	"context"
	"sync"
	"testing"

	"github.com/Dias221467/Player_Progression/internal/models"
	jwtutil "github.com/Dias221467/Player_Progression/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRegistration(name, email string) RegisterInput {
	return RegisterInput{
		Name:            name,
		Email:           email,
		Password:        "hunter22",
		ConfirmPassword: "hunter22",
		Age:             20,
	}
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	player, err := env.accounts.Register(context.Background(), validRegistration("Ana", "Ana@Example.com"))
	require.NoError(t, err)
	assert.Equal(t, 1, player.Level)
	assert.Equal(t, int64(0), player.Experience)
	assert.Equal(t, models.RolePlayer, player.Role)
	assert.Equal(t, "ana@example.com", player.Email)
	assert.Equal(t, 1, player.Ranking)
	assert.NotEqual(t, "hunter22", player.HashedPassword)
	assert.Empty(t, player.Friends)
	assert.Empty(t, player.PendingRequests)
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	tests := []struct {
		name   string
		modify func(*RegisterInput)
	}{
		{"missing name", func(in *RegisterInput) { in.Name = "" }},
		{"missing password", func(in *RegisterInput) { in.Password = "" }},
		{"passwords differ", func(in *RegisterInput) { in.ConfirmPassword = "other" }},
		{"too young", func(in *RegisterInput) { in.Age = 12 }},
		{"bad email", func(in *RegisterInput) { in.Email = "not-an-email" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validRegistration("Ana", "ana@example.com")
			tt.modify(&in)
			_, err := env.accounts.Register(ctx, in)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.accounts.Register(ctx, validRegistration("Ana", "ana@example.com"))
	require.NoError(t, err)
	_, err = env.accounts.Register(ctx, validRegistration("Other", "ANA@example.com"))
	assert.ErrorIs(t, err, ErrConflict)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	registered, err := env.accounts.Register(ctx, validRegistration("Ana", "ana@example.com"))
	require.NoError(t, err)

	player, token, err := env.accounts.Login(ctx, "ana@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, player.ID)

	claims, err := jwtutil.ValidateToken(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, claims.UserID)
	assert.Equal(t, models.RolePlayer, claims.Role)

	_, _, err = env.accounts.Login(ctx, "ana@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = env.accounts.Login(ctx, "nobody@example.com", "hunter22")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestGetPlayerDerivesFriendViews(t *testing.T) {
	ctx := context.Background()
	env := newFriendEnv(t)

	ab, err := env.friends.CreateRequest(ctx, "a", "b")
	require.NoError(t, err)
	_, err = env.friends.RespondToRequest(ctx, ab.ID, "accepted")
	require.NoError(t, err)
	cb, err := env.friends.CreateRequest(ctx, "c", "b")
	require.NoError(t, err)

	player, err := env.accounts.GetPlayer(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, []models.FriendRef{{ID: "a", Name: "Ana"}}, player.Friends)
	assert.Equal(t, []models.PendingRef{{ID: cb.ID, Name: "Cal"}}, player.PendingRequests)

	_, err = env.accounts.GetPlayer(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeletePlayerRemovesRelationsAndReranks(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedPlayer(t, "a", "Ana", 5, 0)
	env.seedPlayer(t, "b", "Ben", 3, 0)
	env.seedPlayer(t, "c", "Cal", 1, 0)

	ab, err := env.friends.CreateRequest(ctx, "a", "b")
	require.NoError(t, err)
	_, err = env.friends.RespondToRequest(ctx, ab.ID, "accepted")
	require.NoError(t, err)
	_, err = env.friends.CreateRequest(ctx, "a", "c")
	require.NoError(t, err)

	require.NoError(t, env.accounts.DeletePlayer(ctx, "a"))

	_, err = env.accounts.GetPlayer(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)

	b, err := env.accounts.GetPlayer(ctx, "b")
	require.NoError(t, err)
	assert.Empty(t, b.Friends)
	assert.Equal(t, 1, b.Ranking)

	c, err := env.accounts.GetPlayer(ctx, "c")
	require.NoError(t, err)
	assert.Empty(t, c.PendingRequests)
	assert.Equal(t, 2, c.Ranking)

	all, err := env.friends.ListAllRequests(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	assert.ErrorIs(t, env.accounts.DeletePlayer(ctx, "a"), ErrNotFound)
}

func TestRegisterConcurrentSameEmail(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	const attempts = 6
	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		registered int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.accounts.Register(ctx, validRegistration("Ana", "ana@example.com"))
			if err == nil {
				mu.Lock()
				registered++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, ErrConflict)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, registered)
	players, err := env.accounts.ListPlayers(ctx)
	require.NoError(t, err)
	assert.Len(t, players, 1)
}

func TestUpdatePlayer(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	ana, err := env.accounts.Register(ctx, validRegistration("Ana", "ana@example.com"))
	require.NoError(t, err)

	name, mail, password := "Anabel", "Anabel@Example.com", "correct horse"
	updated, err := env.accounts.UpdatePlayer(ctx, ana.ID, UpdatePlayerInput{
		Name:     &name,
		Email:    &mail,
		Password: &password,
	})
	require.NoError(t, err)
	assert.Equal(t, "Anabel", updated.Name)
	assert.Equal(t, "anabel@example.com", updated.Email)
	assert.Equal(t, 1, updated.Level)

	_, _, err = env.accounts.Login(ctx, "anabel@example.com", "hunter22")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = env.accounts.Login(ctx, "anabel@example.com", "correct horse")
	require.NoError(t, err)

	// Keeping one's own email is not a conflict.
	_, err = env.accounts.UpdatePlayer(ctx, ana.ID, UpdatePlayerInput{Email: &mail})
	require.NoError(t, err)
}

func TestUpdatePlayerErrors(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	ana, err := env.accounts.Register(ctx, validRegistration("Ana", "ana@example.com"))
	require.NoError(t, err)
	_, err = env.accounts.Register(ctx, validRegistration("Ben", "ben@example.com"))
	require.NoError(t, err)

	blank, badMail, short, taken := "  ", "nope", "short", "BEN@example.com"

	_, err = env.accounts.UpdatePlayer(ctx, ana.ID, UpdatePlayerInput{})
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = env.accounts.UpdatePlayer(ctx, ana.ID, UpdatePlayerInput{Name: &blank})
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = env.accounts.UpdatePlayer(ctx, ana.ID, UpdatePlayerInput{Email: &badMail})
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = env.accounts.UpdatePlayer(ctx, ana.ID, UpdatePlayerInput{Password: &short})
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = env.accounts.UpdatePlayer(ctx, ana.ID, UpdatePlayerInput{Email: &taken})
	assert.ErrorIs(t, err, ErrConflict)
	_, err = env.accounts.UpdatePlayer(ctx, "missing", UpdatePlayerInput{Name: &taken})
	assert.ErrorIs(t, err, ErrNotFound)

	stored := env.player(t, ana.ID)
	assert.Equal(t, "Ana", stored.Name)
	assert.Equal(t, "ana@example.com", stored.Email)
}
