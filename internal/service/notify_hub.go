package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
	"toast_backend/pkg/logger"
	"toast_backend/pkg/monitoring"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	shardCount     = 32
	onlineTTL      = 2 * time.Minute
	notifyChannel  = "notify_channel"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSMessage is the envelope pushed down the socket: a kind string plus the
// notification payload.
type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type Client struct {
	Hub     *NotifyHub
	Conn    *websocket.Conn
	Send    chan []byte
	UserID  uint
	Limiter *rate.Limiter
}

// readPump drains the connection for close/pong handling. The notification
// socket is server-to-client; client frames other than an "ack" type are
// dropped.
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.Error("WebSocket unexpected close", zap.Error(err), zap.Uint("userId", c.UserID))
			}
			break
		}

		if !c.Limiter.Allow() {
			continue
		}

		var wsMsg WSMessage
		if err := json.Unmarshal(message, &wsMsg); err != nil {
			continue
		}
		monitoring.WSMessageCounter.WithLabelValues(wsMsg.Type, "in").Inc()
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Coalesce anything already queued into the same frame.
			if n := len(c.Send); n > 0 {
				for i := 0; i < n; i++ {
					w.Write(<-c.Send)
				}
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

type shard struct {
	clients map[uint]*Client
	mu      sync.RWMutex
}

// NotifyHub fans notifications out to connected clients. Deliveries go
// through Redis pub/sub so every instance in a multi-node deployment gets a
// chance to push to its local connections; presence keys with a TTL track
// who is online across the fleet.
type NotifyHub struct {
	shards     [shardCount]*shard
	register   chan *Client
	unregister chan *Client
	Redis      *redis.Client
	ctx        context.Context
	cancel     context.CancelFunc
}

func NewNotifyHub(rdb *redis.Client) *NotifyHub {
	ctx, cancel := context.WithCancel(context.Background())
	h := &NotifyHub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		Redis:      rdb,
		ctx:        ctx,
		cancel:     cancel,
	}
	for i := 0; i < shardCount; i++ {
		h.shards[i] = &shard{clients: make(map[uint]*Client)}
	}
	return h
}

func (h *NotifyHub) getShard(userID uint) *shard {
	return h.shards[userID%shardCount]
}

type pubSubMessage struct {
	TargetUsers []uint          `json:"targetUsers"`
	Payload     json.RawMessage `json:"payload"`
}

func (h *NotifyHub) Run() {
	pubsub := h.Redis.Subscribe(h.ctx, notifyChannel)
	go func() {
		ch := pubsub.Channel()
		for msg := range ch {
			var psMsg pubSubMessage
			if err := json.Unmarshal([]byte(msg.Payload), &psMsg); err != nil {
				logger.Log.Error("PubSub unmarshal error", zap.Error(err))
				continue
			}
			h.pushToLocal(psMsg.TargetUsers, psMsg.Payload)
		}
	}()

	heartbeatTicker := time.NewTicker(1 * time.Minute)
	defer heartbeatTicker.Stop()

	for {
		select {
		case client := <-h.register:
			s := h.getShard(client.UserID)
			s.mu.Lock()
			if old, ok := s.clients[client.UserID]; ok {
				close(old.Send)
			}
			s.clients[client.UserID] = client
			s.mu.Unlock()
			h.Redis.Set(h.ctx, onlineKey(client.UserID), "true", onlineTTL)
			monitoring.WSOnlineUsers.Inc()

		case client := <-h.unregister:
			s := h.getShard(client.UserID)
			s.mu.Lock()
			if cur, ok := s.clients[client.UserID]; ok && cur == client {
				delete(s.clients, client.UserID)
				close(client.Send)
				monitoring.WSOnlineUsers.Dec()
			}
			s.mu.Unlock()
			h.Redis.Del(h.ctx, onlineKey(client.UserID))

		case <-heartbeatTicker.C:
			h.refreshOnlineStatus()

		case <-h.ctx.Done():
			return
		}
	}
}

func onlineKey(userID uint) string {
	return fmt.Sprintf("user:online:%d", userID)
}

// refreshOnlineStatus renews presence TTLs for every locally connected user.
func (h *NotifyHub) refreshOnlineStatus() {
	pipe := h.Redis.Pipeline()
	count := 0
	for i := 0; i < shardCount; i++ {
		s := h.shards[i]
		s.mu.RLock()
		for userID := range s.clients {
			pipe.Expire(h.ctx, onlineKey(userID), onlineTTL)
			count++
		}
		s.mu.RUnlock()
	}
	if count > 0 {
		pipe.Exec(h.ctx)
		logger.Log.Debug("Refreshed online status", zap.Int("count", count))
	}
}

// PushToUsers publishes a message for the given users via Redis so every
// instance can deliver to its local connections.
func (h *NotifyHub) PushToUsers(userIDs []uint, msg WSMessage) {
	msgBytes, _ := json.Marshal(msg)
	payload, _ := json.Marshal(pubSubMessage{TargetUsers: userIDs, Payload: msgBytes})
	h.Redis.Publish(h.ctx, notifyChannel, payload)
	monitoring.WSMessageCounter.WithLabelValues(msg.Type, "out").Inc()
}

func (h *NotifyHub) pushToLocal(userIDs []uint, payload []byte) {
	for _, id := range userIDs {
		s := h.getShard(id)
		s.mu.RLock()
		if client, ok := s.clients[id]; ok {
			select {
			case client.Send <- payload:
			default:
				// Slow consumer; drop rather than block the hub.
			}
		}
		s.mu.RUnlock()
	}
}

func (h *NotifyHub) IsUserOnline(userID uint) bool {
	s := h.getShard(userID)
	s.mu.RLock()
	_, ok := s.clients[userID]
	s.mu.RUnlock()
	if ok {
		return true
	}

	val, err := h.Redis.Get(h.ctx, onlineKey(userID)).Result()
	return err == nil && val == "true"
}

// Stop closes every connection and clears presence keys.
func (h *NotifyHub) Stop() {
	logger.Log.Info("NotifyHub stopping: clearing online status and closing connections...")

	var allUserIDs []uint
	for i := 0; i < shardCount; i++ {
		s := h.shards[i]
		s.mu.Lock()
		for userID, client := range s.clients {
			allUserIDs = append(allUserIDs, userID)
			close(client.Send)
			delete(s.clients, userID)
		}
		s.mu.Unlock()
	}

	if len(allUserIDs) > 0 {
		pipe := h.Redis.Pipeline()
		for _, userID := range allUserIDs {
			pipe.Del(h.ctx, onlineKey(userID))
		}
		pipe.Exec(h.ctx)
	}

	h.cancel()
	monitoring.WSOnlineUsers.Set(0)
	logger.Log.Info("NotifyHub stopped", zap.Int("closedConnections", len(allUserIDs)))
}

// ServeWS upgrades an authenticated request and attaches the connection to
// the hub.
func (h *NotifyHub) ServeWS(w http.ResponseWriter, r *http.Request, userID uint) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := &Client{
		Hub:     h,
		Conn:    conn,
		Send:    make(chan []byte, 64),
		UserID:  userID,
		Limiter: rate.NewLimiter(rate.Limit(30), 50),
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
	return nil
}
