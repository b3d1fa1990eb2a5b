// Sentryline - Security Alert Ingestion and Real-Time Monitoring
// Copyright 2026 Sentryline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentryline/sentryline

// Package websocket implements the real-time fan-out of accepted alerts to
// subscribed observers. A single Hub owns all client state; clients interact
// with it only through the Register/Unregister channels, so every lifecycle
// transition and broadcast is serialized through one loop.
package websocket

import (
	"context"
	"sort"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"github.com/sentryline/sentryline/internal/logging"
	"github.com/sentryline/sentryline/internal/metrics"
	"github.com/sentryline/sentryline/internal/models"
)

// ShutdownReason identifies why the hub is shutting down.
type ShutdownReason string

const (
	// ShutdownReasonContextCanceled is the normal graceful shutdown path.
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"

	// ShutdownReasonContextDeadline indicates the context deadline was
	// exceeded, which may indicate a hung operation during shutdown.
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Message types for WebSocket communication.
const (
	MessageTypeNewAlert              = "new_alert"
	MessageTypeRecentAlerts          = "recent_alerts"
	MessageTypeConnectionEstablished = "connection_established"
	MessageTypePing                  = "ping"
	MessageTypePong                  = "pong"
)

// DefaultCatchUpCount is the number of recent alerts pushed to a subscriber
// on connect.
const DefaultCatchUpCount = 10

// Message represents a WebSocket frame.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// ConnectionEstablishedData is the payload of the connect banner.
type ConnectionEstablishedData struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// RecentProvider supplies the catch-up burst for new subscribers.
// *store.Store satisfies it.
type RecentProvider interface {
	Recent(k int) []models.Alert
}

// Hub maintains the set of active clients and fans accepted alerts out to
// them. Lifecycle events and broadcasts are processed by a single loop with
// a fixed priority order, so client state is always settled before a message
// is delivered.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex

	recent       RecentProvider
	catchUpCount int
	queueSize    int
}

// NewHub creates a Hub. The recent provider supplies the catch-up burst;
// catchUpCount and queueSize fall back to defaults when non-positive.
func NewHub(recent RecentProvider, catchUpCount, queueSize int) *Hub {
	if catchUpCount <= 0 {
		catchUpCount = DefaultCatchUpCount
	}
	if queueSize <= 0 {
		queueSize = defaultClientQueueSize
	}
	return &Hub{
		broadcast:    make(chan Message, 256),
		Register:     make(chan *Client),
		Unregister:   make(chan *Client),
		clients:      make(map[*Client]bool),
		recent:       recent,
		catchUpCount: catchUpCount,
		queueSize:    queueSize,
	}
}

// RunWithContext runs the hub loop until the context is canceled. Designed
// for suture supervision: on cancellation every client is closed and the
// context error is returned, so a supervisor restart never leaves orphaned
// connections.
//
// Priority order when multiple channels are ready:
//  1. context cancellation
//  2. client lifecycle (Register/Unregister)
//  3. broadcast messages
//
// Go's select picks randomly among ready channels; the explicit priority
// keeps registration ahead of delivery, which is what guarantees a new
// subscriber receives its catch-up burst before any later broadcast.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case client := <-h.Register:
			h.registerClient(client)
			continue
		case client := <-h.Unregister:
			h.unregisterClient(client)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()

		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.Unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastToClients(message)
		}
	}
}

// registerClient admits a client and queues its connect banner plus the
// catch-up burst. Both are enqueued while the hub loop holds the register
// event, before any subsequent broadcast can be processed, so the subscriber
// observes: banner, last-K alerts in insertion order, then live alerts.
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	total := len(h.clients)
	h.mu.Unlock()

	metrics.SetWSConnections(total)
	logging.Info().Int("total_clients", total).Msg("websocket client connected")

	client.enqueue(Message{
		Type: MessageTypeConnectionEstablished,
		Data: ConnectionEstablishedData{
			Status:    "connected",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	})

	burst := []models.Alert{}
	if h.recent != nil {
		burst = h.recent.Recent(h.catchUpCount)
	}
	client.enqueue(Message{Type: MessageTypeRecentAlerts, Data: burst})
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	total := len(h.clients)
	h.mu.Unlock()

	metrics.SetWSConnections(total)
	logging.Info().Int("total_clients", total).Msg("websocket client disconnected")
}

// logGracefulShutdown closes all clients and logs the shutdown. The context
// error is not logged as an error field because cancellation is expected
// during graceful shutdown.
func (h *Hub) logGracefulShutdown(ctx context.Context) {
	clientCount := h.GetClientCount()
	h.closeAllClients()

	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", string(getShutdownReason(ctx))).
		Int("clients_closed", clientCount).
		Msg("websocket hub stopped")
}

func getShutdownReason(ctx context.Context) ShutdownReason {
	switch ctx.Err() {
	case context.DeadlineExceeded:
		return ShutdownReasonContextDeadline
	default:
		return ShutdownReasonContextCanceled
	}
}

// broadcastToClients delivers a message to every connected client in client
// id order. A client whose send queue is full is dropped and disconnected so
// a slow consumer never blocks the hub or its peers.
func (h *Hub) broadcastToClients(message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})

	var toRemove []*Client
	for _, client := range clients {
		select {
		case client.send <- message:
			metrics.RecordWSMessageSent()
		default:
			toRemove = append(toRemove, client)
		}
	}

	for _, client := range toRemove {
		close(client.send)
		delete(h.clients, client)
		metrics.RecordWSClientDropped()
		logging.Warn().Uint64("client_id", client.id).
			Msg("websocket client dropped, send queue full")
	}
	if len(toRemove) > 0 {
		metrics.SetWSConnections(len(h.clients))
	}
}

// closeAllClients closes every connected client in id order.
func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})

	for _, client := range clients {
		close(client.send)
		delete(h.clients, client)
	}
	metrics.SetWSConnections(0)
}

// BroadcastNewAlert publishes an accepted alert to all subscribers. The hand
// off to the hub loop is non-blocking: if the hub's own queue is full the
// message is dropped and logged rather than stalling the ingestion pipeline.
func (h *Hub) BroadcastNewAlert(alert models.Alert) {
	message := Message{
		Type: MessageTypeNewAlert,
		Data: alert,
	}

	select {
	case h.broadcast <- message:
	default:
		metrics.RecordWSError("broadcast_queue_full")
		logging.Warn().Str("alert_id", alert.ID).
			Msg("broadcast channel full, dropping alert message")
	}
}

// GetClientCount returns the number of connected clients.
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// MarshalMessage converts a message to JSON.
func MarshalMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}
