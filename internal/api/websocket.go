package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// WebSocket message types for the live plan protocol
const (
	// Client -> Server messages
	MsgTypeSubscribe   = "plan:subscribe"
	MsgTypeUnsubscribe = "plan:unsubscribe"
	MsgTypePing        = "ping"

	// Server -> Client messages
	MsgTypeSubscribed = "subscribed"
	MsgTypePlanUpdate = "plan:update"
	MsgTypeError      = "error"
	MsgTypePong       = "pong"
)

// WSMessage is the envelope for all WebSocket traffic.
type WSMessage struct {
	Type      string          `json:"type"`
	PlanID    string          `json:"planId,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// wsClient wraps a connection with a write lock: gorilla connections do
// not allow concurrent writers.
type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsClient) send(msg *WSMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(msg)
}

// PlanHub fans geometry updates out to editor clients subscribed to a
// plan. Every wall or room mutation triggers one broadcast with the full
// geometry snapshot; the client replaces its scene rather than patching.
type PlanHub struct {
	upgrader    websocket.Upgrader
	mu          sync.RWMutex
	subscribers map[string]map[*wsClient]bool // planID -> clients
}

// NewPlanHub creates a hub.
func NewPlanHub() *PlanHub {
	return &PlanHub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true // CORS policy is enforced by the HTTP middleware
			},
		},
		subscribers: make(map[string]map[*wsClient]bool),
	}
}

// HandleWebSocket upgrades the connection and serves the subscribe loop
// until the client disconnects.
func (hub *PlanHub) HandleWebSocket(c echo.Context) error {
	conn, err := hub.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	client := &wsClient{conn: conn}
	defer hub.dropClient(client)

	for {
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				fmt.Printf("[WS] Unexpected close: %v\n", err)
			}
			return nil
		}

		switch msg.Type {
		case MsgTypeSubscribe:
			if msg.PlanID == "" {
				client.send(&WSMessage{Type: MsgTypeError, Timestamp: nowMs()})
				continue
			}
			hub.subscribe(client, msg.PlanID)
			client.send(&WSMessage{Type: MsgTypeSubscribed, PlanID: msg.PlanID, Timestamp: nowMs()})
		case MsgTypeUnsubscribe:
			hub.unsubscribe(client, msg.PlanID)
		case MsgTypePing:
			client.send(&WSMessage{Type: MsgTypePong, Timestamp: nowMs()})
		default:
			client.send(&WSMessage{Type: MsgTypeError, Timestamp: nowMs()})
		}
	}
}

// BroadcastPlanUpdate sends the geometry snapshot to every subscriber of
// the plan. Failed writes drop the client.
func (hub *PlanHub) BroadcastPlanUpdate(planID string, snapshot interface{}) {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		fmt.Printf("[WS] Failed to encode snapshot for plan %s: %v\n", planID, err)
		return
	}
	msg := &WSMessage{Type: MsgTypePlanUpdate, PlanID: planID, Payload: payload, Timestamp: nowMs()}

	hub.mu.RLock()
	clients := make([]*wsClient, 0, len(hub.subscribers[planID]))
	for client := range hub.subscribers[planID] {
		clients = append(clients, client)
	}
	hub.mu.RUnlock()

	for _, client := range clients {
		if err := client.send(msg); err != nil {
			hub.dropClient(client)
		}
	}
}

func (hub *PlanHub) subscribe(client *wsClient, planID string) {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	if hub.subscribers[planID] == nil {
		hub.subscribers[planID] = make(map[*wsClient]bool)
	}
	hub.subscribers[planID][client] = true
}

func (hub *PlanHub) unsubscribe(client *wsClient, planID string) {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	delete(hub.subscribers[planID], client)
}

func (hub *PlanHub) dropClient(client *wsClient) {
	hub.mu.Lock()
	for planID := range hub.subscribers {
		delete(hub.subscribers[planID], client)
	}
	hub.mu.Unlock()
	client.conn.Close()
}

func nowMs() int64 {
	return time.Now().UnixMilli()
}
