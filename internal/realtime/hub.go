// Package realtime pushes the customer collection to connected dashboards
// over websockets. The protocol is deliberately dumb: every client gets the
// full collection on connect and again after any mutation. No diffing, no
// channels; the dataset is small enough that a snapshot is cheaper than
// being clever.
package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/northfiber/fiberops-backend/pkg/db/models"
	"github.com/northfiber/fiberops-backend/pkg/logger"
)

const snapshotTimeout = 5 * time.Second

type snapshotLoader interface {
	ListAll(ctx context.Context) ([]models.Customer, error)
}

// Snapshot is the single frame type pushed to clients.
type Snapshot struct {
	Type      string            `json:"type"`
	SentAt    time.Time         `json:"sentAt"`
	Customers []models.Customer `json:"customers"`
}

// Hub tracks connected clients and fans the collection snapshot out to them.
type Hub struct {
	clients map[*Client]bool
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client
	refresh    chan struct{}

	loader snapshotLoader
	logg   *logger.Logger
	now    func() time.Time
}

// NewHub builds a hub over the given customer store.
func NewHub(loader snapshotLoader, logg *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		refresh:    make(chan struct{}, 1),
		loader:     loader,
		logg:       logg,
		now:        time.Now,
	}
}

// Run drives the hub until the context is canceled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case client := <-h.register:
			h.registerClient(ctx, client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case <-h.refresh:
			h.broadcastSnapshot(ctx)
		}
	}
}

// CollectionChanged queues a snapshot broadcast. Safe to call from any
// goroutine; coalesces while a broadcast is already pending.
func (h *Hub) CollectionChanged() {
	select {
	case h.refresh <- struct{}{}:
	default:
	}
}

// Register hands a freshly upgraded connection to the hub.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// ClientCount reports how many dashboards are connected.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) registerClient(ctx context.Context, client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	total := len(h.clients)
	h.mu.Unlock()

	if h.logg != nil {
		h.logg.Info(h.logg.WithField(ctx, "clients", total), "feed client connected")
	}

	if frame, err := h.snapshot(ctx); err == nil {
		client.enqueue(frame)
	} else if h.logg != nil {
		h.logg.Error(ctx, "failed to load snapshot for new client", err)
	}
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	client.close()
}

func (h *Hub) broadcastSnapshot(ctx context.Context) {
	h.mu.RLock()
	idle := len(h.clients) == 0
	h.mu.RUnlock()
	if idle {
		return
	}

	frame, err := h.snapshot(ctx)
	if err != nil {
		if h.logg != nil {
			h.logg.Error(ctx, "failed to load snapshot for broadcast", err)
		}
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		client.enqueue(frame)
	}
}

func (h *Hub) snapshot(ctx context.Context) ([]byte, error) {
	loadCtx, cancel := context.WithTimeout(ctx, snapshotTimeout)
	defer cancel()

	customers, err := h.loader.ListAll(loadCtx)
	if err != nil {
		return nil, err
	}
	if customers == nil {
		customers = []models.Customer{}
	}
	return json.Marshal(Snapshot{
		Type:      "customers",
		SentAt:    h.now(),
		Customers: customers,
	})
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		client.close()
	}
	h.clients = make(map[*Client]bool)
}
