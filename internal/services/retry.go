package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dias221467/Player_Progression/internal/store"
	"github.com/cenkalti/backoff/v5"
	"github.com/sirupsen/logrus"
)

const maxSwapAttempts = 5

// retrySwap runs op until it stops failing with a version conflict. op is
// expected to re-read the document on every attempt. Any other error ends the
// loop immediately; running out of attempts yields ErrConflict.
func retrySwap[T any](ctx context.Context, what string, op func() (T, error)) (T, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 10 * time.Millisecond
	b.MaxInterval = 200 * time.Millisecond

	attempt := 0
	result, err := backoff.Retry(ctx, func() (T, error) {
		attempt++
		v, err := op()
		if err == nil {
			return v, nil
		}
		if errors.Is(err, store.ErrVersionConflict) {
			logrus.WithFields(logrus.Fields{
				"op":      what,
				"attempt": attempt,
			}).Debug("Version conflict, retrying")
			return v, err
		}
		return v, backoff.Permanent(err)
	}, backoff.WithBackOff(b), backoff.WithMaxTries(maxSwapAttempts))

	if errors.Is(err, store.ErrVersionConflict) {
		logrus.WithField("op", what).Warn("Giving up after repeated version conflicts")
		return result, fmt.Errorf("%w: %s: concurrent modification, try again", ErrConflict, what)
	}
	return result, err
}
