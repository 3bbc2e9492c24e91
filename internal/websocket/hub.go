// Package websocket pushes freshly computed evaluations to connected UI
// clients, so a payoff diagram can redraw without polling.
package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rzzdr/payoff-engine/pkg/models"
	"github.com/rzzdr/payoff-engine/pkg/utils/logger"
)

// ClientCounter receives the connected-client count whenever it changes.
// *metrics.Recorder satisfies it.
type ClientCounter interface {
	SetWebSocketClients(n int)
}

// Hub maintains the set of active clients and routes evaluation results to
// the clients subscribed to each strategy.
type Hub struct {
	clients       map[*Client]bool
	broadcast     chan *models.Evaluation
	register      chan *Client
	unregister    chan *Client
	subscriptions map[string]map[*Client]bool // strategy ID -> clients
	counter       ClientCounter
	log           *logger.Logger
	mu            sync.RWMutex
}

// Message is the envelope for every frame sent to a client.
type Message struct {
	Type       string      `json:"type"`
	StrategyID string      `json:"strategyId,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
	ID         string      `json:"id,omitempty"`
}

// SubscriptionMessage is a client request to follow or unfollow strategies.
type SubscriptionMessage struct {
	Type       string   `json:"type"`
	Strategies []string `json:"strategies"`
	ID         string   `json:"id,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// In production, implement proper origin checking
		return true
	},
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096
)

// NewHub creates a new WebSocket hub. counter may be nil when metrics are
// disabled.
func NewHub(counter ClientCounter) *Hub {
	return &Hub{
		clients:       make(map[*Client]bool),
		broadcast:     make(chan *models.Evaluation, 64),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		subscriptions: make(map[string]map[*Client]bool),
		counter:       counter,
		log:           logger.GetLogger("websocket.hub"),
	}
}

// Run starts the hub loop. It returns when ctx is canceled.
func (h *Hub) Run(ctx context.Context) {
	h.log.Info("Starting WebSocket hub")

	for {
		select {
		case <-ctx.Done():
			h.log.Info("WebSocket hub shutting down")
			return

		case client := <-h.register:
			h.clients[client] = true
			h.recordClientCount()
			h.log.Infof("Client %s registered", client.id)

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.removeClientSubscriptions(client)
				h.recordClientCount()
				h.log.Infof("Client %s unregistered", client.id)
			}

		case eval := <-h.broadcast:
			h.sendToSubscribers(eval)
		}
	}
}

// BroadcastEvaluation queues an evaluation for delivery to subscribers.
// Non-blocking; drops the update if the hub is saturated.
func (h *Hub) BroadcastEvaluation(eval *models.Evaluation) {
	select {
	case h.broadcast <- eval:
	default:
		h.log.Warnf("Dropping evaluation broadcast for strategy %s: hub saturated", eval.StrategyID)
	}
}

// HandleWebSocket upgrades the connection and starts the client pumps.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Errorf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:           h,
		conn:          conn,
		send:          make(chan []byte, 256),
		id:            generateClientID(),
		subscriptions: make(map[string]bool),
	}

	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// sendToSubscribers delivers an evaluation to every client subscribed to
// its strategy.
func (h *Hub) sendToSubscribers(eval *models.Evaluation) {
	payload, err := json.Marshal(Message{
		Type:       "evaluation",
		StrategyID: eval.StrategyID,
		Data:       eval,
	})
	if err != nil {
		h.log.Errorf("Failed to marshal evaluation: %v", err)
		return
	}

	h.mu.RLock()
	subscribers := h.subscriptions[eval.StrategyID]
	for client := range subscribers {
		select {
		case client.send <- payload:
		default:
			// Slow client; skip rather than block the hub.
		}
	}
	h.mu.RUnlock()
}

func (h *Hub) recordClientCount() {
	if h.counter != nil {
		h.counter.SetWebSocketClients(len(h.clients))
	}
}

// removeClientSubscriptions drops every subscription held by a client.
func (h *Hub) removeClientSubscriptions(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, clients := range h.subscriptions {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.subscriptions, id)
		}
	}
}

var clientCounter uint64
var clientCounterMu sync.Mutex

func generateClientID() string {
	clientCounterMu.Lock()
	defer clientCounterMu.Unlock()
	clientCounter++
	return fmt.Sprintf("client-%d-%d", time.Now().UnixNano(), clientCounter)
}
