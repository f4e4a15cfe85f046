package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrQueueFull is returned by Async.Publish when the event had to be dropped.
var ErrQueueFull = errors.New("event queue full")

// Async delivers events to a slow sink from one background goroutine, so
// Publish never waits on the network. Delivery stays best effort: a full queue
// drops the event, and a failed delivery is logged.
type Async struct {
	name    string
	next    Publisher
	queue   chan Event
	timeout time.Duration
	done    chan struct{}
}

// NewAsync queues up to size events for next. Each delivery gets its own
// context bounded by timeout.
func NewAsync(name string, next Publisher, size int, timeout time.Duration) *Async {
	return &Async{
		name:    name,
		next:    next,
		queue:   make(chan Event, size),
		timeout: timeout,
		done:    make(chan struct{}),
	}
}

func (a *Async) Publish(_ context.Context, e Event) error {
	select {
	case a.queue <- e:
		return nil
	default:
		return fmt.Errorf("%s: %w", a.name, ErrQueueFull)
	}
}

// Run delivers queued events until ctx is done, then flushes what is left and
// returns.
func (a *Async) Run(ctx context.Context) {
	defer close(a.done)
	logrus.WithField("sink", a.name).Info("Event dispatcher started")
	for {
		select {
		case e := <-a.queue:
			a.deliver(e)
		case <-ctx.Done():
			for {
				select {
				case e := <-a.queue:
					a.deliver(e)
				default:
					logrus.WithField("sink", a.name).Info("Event dispatcher stopped")
					return
				}
			}
		}
	}
}

// Done is closed once Run has returned.
func (a *Async) Done() <-chan struct{} {
	return a.done
}

func (a *Async) deliver(e Event) {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()
	if err := a.next.Publish(ctx, e); err != nil {
		logrus.WithFields(logrus.Fields{
			"sink":     a.name,
			"type":     e.Type,
			"playerID": e.PlayerID,
			"error":    err,
		}).Warn("Failed to deliver event")
	}
}
