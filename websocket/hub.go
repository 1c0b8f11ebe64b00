package websocket

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/lexora/lexora_backend/models"
	"github.com/lexora/lexora_backend/services"
)

// Define notification types
const (
	NotificationTypeConnected          = "connected"
	NotificationTypeCommissionCredited = "commission_credited"
	NotificationTypeTeamSignup         = "team_signup"
)

const sendBuffer = 16

var ErrNotConnected = errors.New("user not connected")

// Notification represents a message sent over WebSocket
type Notification struct {
	Type    string      `json:"type"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	UserID  string      `json:"userID,omitempty"`
}

// Client is one open connection of a user. A user may hold several.
type Client struct {
	UserID string
	conn   *websocket.Conn
	send   chan Notification
}

// Hub maintains the set of active clients and routes notifications to them
type Hub struct {
	clients    map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
	log        *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run starts the hub's event loop and closes every client when ctx ends
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for userID, set := range h.clients {
				for client := range set {
					close(client.send)
				}
				delete(h.clients, userID)
			}
			h.mu.Unlock()
			return
		case client := <-h.register:
			h.mu.Lock()
			set, ok := h.clients[client.UserID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[client.UserID] = set
			}
			set[client] = struct{}{}
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if set, ok := h.clients[client.UserID]; ok {
				if _, ok := set[client]; ok {
					delete(set, client)
					close(client.send)
				}
				if len(set) == 0 {
					delete(h.clients, client.UserID)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Register returns false once the hub stopped
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Connected reports how many connections userID holds
func (h *Hub) Connected(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// SendToUser queues notification on every connection of userID. Slow
// connections whose queue is full miss the message.
func (h *Hub) SendToUser(userID string, notification Notification) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	set, ok := h.clients[userID]
	if !ok || len(set) == 0 {
		return ErrNotConnected
	}
	notification.UserID = userID
	for client := range set {
		select {
		case client.send <- notification:
		default:
			h.log.Warn("websocket send queue full, dropping notification",
				zap.String("userId", userID), zap.String("type", notification.Type))
		}
	}
	return nil
}

// OnCustomerRegistered tells every credited user about their commission
func (h *Hub) OnCustomerRegistered(ctx context.Context, result *services.CascadeResult, salesman *models.User) error {
	for _, credit := range result.Credits {
		err := h.SendToUser(credit.UserID, Notification{
			Type:    NotificationTypeCommissionCredited,
			Message: fmt.Sprintf("You earned %d for token %s", credit.Amount, result.Customer.TokenSerial),
			Data: map[string]interface{}{
				"customerId": result.Customer.ID,
				"salesmanId": salesman.ID,
				"amount":     credit.Amount,
				"role":       credit.Role,
			},
		})
		if err != nil && !errors.Is(err, ErrNotConnected) {
			return err
		}
	}
	return nil
}

// OnSignup tells the referrer about a new direct report
func (h *Hub) OnSignup(ctx context.Context, user *models.User, referrer *models.User) error {
	err := h.SendToUser(referrer.ID, Notification{
		Type:    NotificationTypeTeamSignup,
		Message: fmt.Sprintf("%s joined your team as %s", user.FullName, user.Role.Label()),
		Data:    map[string]interface{}{"userId": user.ID, "role": user.Role},
	})
	if errors.Is(err, ErrNotConnected) {
		return nil
	}
	return err
}
