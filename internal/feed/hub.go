// Package feed pushes ranking changes to websocket subscribers.
package feed

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/Dias221467/Player_Progression/internal/events"
	"github.com/sirupsen/logrus"
)

// Message is what subscribers receive.
type Message struct {
	Type      events.Type  `json:"type"`
	Event     events.Event `json:"event"`
	Timestamp time.Time    `json:"timestamp"`
}

// Hub keeps the connected clients and fans broadcasts out to them.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
	}
}

// Run serves register, unregister and broadcast requests until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	logrus.Info("Ranking feed hub started")
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			logrus.Info("Ranking feed hub stopped")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			logrus.WithField("clientID", client.id).Debug("Feed client registered")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			logrus.WithField("clientID", client.id).Debug("Feed client unregistered")

		case data := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- data:
				default:
					logrus.WithField("clientID", client.id).Warn("Feed client buffer full, skipping")
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Publish forwards level and ranking events to every subscriber. Other event
// types are ignored. A full broadcast queue drops the event.
func (h *Hub) Publish(_ context.Context, e events.Event) error {
	if e.Type != events.LevelUp && e.Type != events.RankingUpdated {
		return nil
	}
	data, err := json.Marshal(Message{Type: e.Type, Event: e, Timestamp: time.Now().UTC()})
	if err != nil {
		return err
	}

	select {
	case h.broadcast <- data:
	default:
		logrus.WithField("type", e.Type).Warn("Feed broadcast queue full, dropping event")
	}
	return nil
}

// Register and Unregister return immediately once Run has stopped.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
