package services

import (
	"errors"
	"fmt"

	"github.com/Dias221467/Player_Progression/internal/store"
)

var (
	ErrInvalidArgument        = errors.New("invalid argument")
	ErrNotFound               = errors.New("not found")
	ErrConflict               = errors.New("conflict")
	ErrForbidden              = errors.New("forbidden")
	ErrInsufficientExperience = errors.New("insufficient experience")
	ErrInvalidCredentials     = errors.New("invalid credentials")

	// ErrRankingStale accompanies a result whose change was stored while the
	// ranking refresh that should follow it failed.
	ErrRankingStale = errors.New("ranking refresh failed")
)

// translate maps store errors onto the service sentinels, keeping the
// original error in the chain.
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	case errors.Is(err, store.ErrVersionConflict), errors.Is(err, store.ErrDuplicate):
		return fmt.Errorf("%w: %s: %v", ErrConflict, what, err)
	default:
		return err
	}
}
