package view

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/paneapp/pane-server/internal/id"
)

// Client represents one connected event-stream client.
type Client struct {
	ID          string
	ConnectedAt time.Time
	EventChan   chan Event
}

// Manager fans view instruction events out to connected clients. Slow
// clients have events dropped rather than blocking the reconciliation
// pipeline.
type Manager struct {
	logger            *slog.Logger
	heartbeatInterval time.Duration

	mu      sync.RWMutex
	clients map[string]*Client

	events chan Event
	wg     sync.WaitGroup

	shutdownMu sync.RWMutex
	shutdown   bool
}

// NewManager creates a view event manager.
func NewManager(logger *slog.Logger) *Manager {
	return &Manager{
		logger:            logger,
		heartbeatInterval: 30 * time.Second,
		clients:           make(map[string]*Client),
		events:            make(chan Event, 1024),
	}
}

// Start runs the broadcast loop until the context is cancelled. Call once
// at startup in a goroutine.
func (m *Manager) Start(ctx context.Context) {
	m.wg.Add(1)
	defer m.wg.Done()

	m.logger.Info("view event manager starting")

	heartbeat := time.NewTicker(m.heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case event := <-m.events:
			m.broadcast(event)
		case <-heartbeat.C:
			m.broadcast(NewHeartbeatEvent())
		case <-ctx.Done():
			m.logger.Info("view event manager stopping")
			m.closeAllClients()
			return
		}
	}
}

// Emit queues an event for broadcast. Safe to call from any goroutine;
// drops the event if the manager has shut down or the buffer is full.
func (m *Manager) Emit(event Event) {
	m.shutdownMu.RLock()
	defer m.shutdownMu.RUnlock()

	if m.shutdown {
		return
	}

	select {
	case m.events <- event:
	default:
		m.logger.Warn("view event buffer full, dropping event", "type", string(event.Type))
	}
}

// Connect registers a new client and returns it.
func (m *Manager) Connect() *Client {
	client := &Client{
		ID:          id.MustGenerate("cli"),
		ConnectedAt: time.Now(),
		EventChan:   make(chan Event, 256),
	}

	m.mu.Lock()
	m.clients[client.ID] = client
	m.mu.Unlock()

	m.logger.Debug("view client connected", "client_id", client.ID)
	return client
}

// Disconnect removes a client.
func (m *Manager) Disconnect(clientID string) {
	m.mu.Lock()
	client, ok := m.clients[clientID]
	if ok {
		delete(m.clients, clientID)
	}
	m.mu.Unlock()

	if ok {
		close(client.EventChan)
		m.logger.Debug("view client disconnected", "client_id", clientID)
	}
}

// ClientCount returns the number of connected clients.
func (m *Manager) ClientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

// broadcast delivers an event to every client, non-blocking per client.
func (m *Manager) broadcast(event Event) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, client := range m.clients {
		select {
		case client.EventChan <- event:
		default:
			m.logger.Warn("dropped event for slow client",
				"client_id", client.ID,
				"type", string(event.Type),
			)
		}
	}
}

func (m *Manager) closeAllClients() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for clientID, client := range m.clients {
		close(client.EventChan)
		delete(m.clients, clientID)
	}
}

// Shutdown stops accepting events and closes all clients. Events already
// queued are drained until ctx expires.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.shutdownMu.Lock()
	m.shutdown = true
	close(m.events)
	m.shutdownMu.Unlock()

	done := make(chan struct{})
	go func() {
		for event := range m.events {
			m.broadcast(event)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		m.logger.Warn("view event drain timeout, some events may be lost")
	}

	m.wg.Wait()
	m.closeAllClients()
	return nil
}
