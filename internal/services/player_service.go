package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Dias221467/Player_Progression/internal/models"
	"github.com/Dias221467/Player_Progression/internal/ranking"
	"github.com/Dias221467/Player_Progression/internal/repository"
	"github.com/Dias221467/Player_Progression/internal/store"
	jwtutil "github.com/Dias221467/Player_Progression/pkg/jwt"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const (
	minimumAge        = 13
	minPasswordLength = 8
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// RegisterInput is the registration form.
type RegisterInput struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	Age             int    `json:"age"`
}

// UpdatePlayerInput is a profile change. Nil fields are left as they are.
type UpdatePlayerInput struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// AuthSettings configures password hashing and token issuance.
type AuthSettings struct {
	JWTSecret   string
	TokenExpiry time.Duration
	BcryptCost  int
}

// PlayerService encapsulates the business logic for player accounts.
type PlayerService struct {
	repo    *repository.PlayerRepository
	friends *FriendService
	ranking *RankingService
	index   ranking.Index
	auth    AuthSettings
}

// NewPlayerService creates a new instance of PlayerService. index may be nil.
func NewPlayerService(repo *repository.PlayerRepository, friends *FriendService, rankingService *RankingService, index ranking.Index, auth AuthSettings) *PlayerService {
	if auth.BcryptCost == 0 {
		auth.BcryptCost = bcrypt.DefaultCost
	}
	return &PlayerService{
		repo:    repo,
		friends: friends,
		ranking: rankingService,
		index:   index,
		auth:    auth,
	}
}

// Register creates a level 1 player with no experience.
func (s *PlayerService) Register(ctx context.Context, in RegisterInput) (*models.Player, error) {
	logrus.Info("Registering new player")

	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Name == "" || in.Email == "" || in.Password == "" || in.ConfirmPassword == "" {
		logrus.Warn("Missing required fields during registration")
		return nil, fmt.Errorf("%w: name, email, password and confirm_password are required", ErrInvalidArgument)
	}
	if in.Password != in.ConfirmPassword {
		return nil, fmt.Errorf("%w: passwords do not match", ErrInvalidArgument)
	}
	if in.Age < minimumAge {
		return nil, fmt.Errorf("%w: players must be at least %d years old", ErrInvalidArgument, minimumAge)
	}
	if !emailRegex.MatchString(in.Email) {
		logrus.WithField("email", in.Email).Warn("Invalid email format during registration")
		return nil, fmt.Errorf("%w: invalid email format", ErrInvalidArgument)
	}

	_, err := s.repo.GetPlayerByEmail(ctx, in.Email)
	if err == nil {
		logrus.WithField("email", in.Email).Warn("Email already in use")
		return nil, fmt.Errorf("%w: email already in use", ErrConflict)
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.auth.BcryptCost)
	if err != nil {
		logrus.WithError(err).Error("Password hashing failed")
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	player := &models.Player{
		ID:             uuid.NewString(),
		Name:           in.Name,
		Email:          in.Email,
		HashedPassword: string(hashed),
		Role:           models.RolePlayer,
		Level:          1,
		Experience:     0,
		Achievements:   []models.Achievement{},
	}
	if err := s.repo.CreatePlayer(ctx, player); err != nil {
		return nil, translate(err, "player "+in.Email)
	}

	s.ranking.Record(ctx, player.ID, player.Level)
	ranked, err := s.ranking.Refresh(ctx)
	if err != nil {
		logrus.WithError(err).Warn("Player registered but ranking refresh failed")
	} else {
		player.Ranking = rankOf(ranked, player.ID)
	}

	player.Friends = []models.FriendRef{}
	player.PendingRequests = []models.PendingRef{}
	logrus.WithFields(logrus.Fields{
		"playerID": player.ID,
		"role":     player.Role,
	}).Info("Player registered successfully")
	return player, nil
}

// Login checks the credentials and issues a signed token.
func (s *PlayerService) Login(ctx context.Context, email, password string) (*models.Player, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	logrus.WithField("email", email).Info("Authenticating player")

	player, err := s.repo.GetPlayerByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		logrus.WithField("email", email).Warn("Player not found")
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(player.HashedPassword), []byte(password)); err != nil {
		logrus.WithField("email", email).Warn("Invalid credentials")
		return nil, "", ErrInvalidCredentials
	}

	token, err := jwtutil.GenerateToken(player.ID, player.Email, player.Role, s.auth.JWTSecret, s.auth.TokenExpiry)
	if err != nil {
		logrus.WithError(err).Error("Failed to generate JWT token")
		return nil, "", err
	}

	logrus.WithField("playerID", player.ID).Info("Player authenticated successfully")
	return player, token, nil
}

// GetPlayer returns the player with its friend and pending lists filled in.
func (s *PlayerService) GetPlayer(ctx context.Context, id string) (*models.Player, error) {
	player, err := s.repo.GetPlayerByID(ctx, id)
	if err != nil {
		return nil, translate(err, "player "+id)
	}

	if player.Friends, err = s.friends.ListFriends(ctx, id); err != nil {
		return nil, err
	}
	if player.PendingRequests, err = s.friends.ListPendingRequests(ctx, id); err != nil {
		return nil, err
	}
	if player.Achievements == nil {
		player.Achievements = []models.Achievement{}
	}
	return player, nil
}

// UpdatePlayer changes a player's name, email or password. A new password is
// re-hashed. Friendships keep the names they were made with.
func (s *PlayerService) UpdatePlayer(ctx context.Context, id string, in UpdatePlayerInput) (*models.Player, error) {
	if in.Name == nil && in.Email == nil && in.Password == nil {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidArgument)
	}

	fields := store.Fields{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name must not be empty", ErrInvalidArgument)
		}
		fields["name"] = name
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if !emailRegex.MatchString(email) {
			return nil, fmt.Errorf("%w: invalid email format", ErrInvalidArgument)
		}
		existing, err := s.repo.GetPlayerByEmail(ctx, email)
		if err == nil && existing.ID != id {
			return nil, fmt.Errorf("%w: email already in use", ErrConflict)
		}
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		fields["email"] = email
	}
	if in.Password != nil {
		if len(*in.Password) < minPasswordLength {
			return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidArgument, minPasswordLength)
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(*in.Password), s.auth.BcryptCost)
		if err != nil {
			logrus.WithError(err).Error("Password hashing failed")
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		fields["hashed_password"] = string(hashed)
	}

	player, err := retrySwap(ctx, "update player", func() (*models.Player, error) {
		player, err := s.repo.GetPlayerByID(ctx, id)
		if err != nil {
			return nil, translate(err, "player "+id)
		}
		changes := store.Fields{}
		for k, v := range fields {
			changes[k] = v
		}
		if err := s.repo.SwapPlayer(ctx, player, changes); err != nil {
			return nil, err
		}
		return player, nil
	})
	if err != nil {
		return nil, translate(err, "player "+id)
	}

	updated, err := s.GetPlayer(ctx, player.ID)
	if err != nil {
		return nil, err
	}
	logrus.WithField("playerID", id).Info("Player profile updated")
	return updated, nil
}

func (s *PlayerService) ListPlayers(ctx context.Context) ([]models.Player, error) {
	players, err := s.repo.GetAllPlayers(ctx)
	if err != nil {
		return nil, err
	}
	if players == nil {
		players = []models.Player{}
	}
	return players, nil
}

// DeletePlayer removes the player, its friend requests and friendships, and
// re-ranks everyone else.
func (s *PlayerService) DeletePlayer(ctx context.Context, id string) error {
	logrus.WithField("playerID", id).Info("Deleting player")

	if _, err := s.repo.GetPlayerByID(ctx, id); err != nil {
		return translate(err, "player "+id)
	}
	if err := s.friends.RemovePlayerRelations(ctx, id); err != nil {
		return fmt.Errorf("failed to remove relations of player %s: %w", id, err)
	}
	if err := s.repo.DeletePlayer(ctx, id); err != nil {
		return translate(err, "player "+id)
	}

	if s.index != nil {
		if err := s.index.Remove(ctx, id); err != nil {
			logrus.WithError(err).Warn("Failed to remove player from ranking index")
		}
	}
	if _, err := s.ranking.Refresh(ctx); err != nil {
		return fmt.Errorf("player deleted, ranking refresh failed: %w", err)
	}
	return nil
}
