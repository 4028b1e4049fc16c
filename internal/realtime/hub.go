// Package realtime pushes availability changes to websocket clients watching a business.
package realtime

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

const (
	// PingInterval and PongWait are used for heartbeat, in seconds.
	PingInterval = 30
	PongWait     = 60
)

// RedisPublisher publishes business events for other instances.
type RedisPublisher interface {
	PublishBusinessEvent(businessID int64, event string, payload []byte) error
}

// RedisSubscriber subscribes to a business channel and invokes handler for incoming events.
type RedisSubscriber interface {
	SubscribeBusiness(businessID int64, handler func(event string, payload []byte)) (cancel func(), err error)
}

// Hub maintains business_id -> set of connections. Events are broadcast locally and,
// when Redis is configured, published so other instances deliver them too.
type Hub struct {
	businesses map[int64]map[string]*Client
	subs       map[int64]func()
	mu         sync.RWMutex
	logger     *zap.Logger
	redis      RedisPublisher
	redisSub   RedisSubscriber
}

// NewHub creates a new WebSocket hub. Either Redis side may be nil for a single instance.
func NewHub(logger *zap.Logger, redisPub RedisPublisher, redisSub RedisSubscriber) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		businesses: make(map[int64]map[string]*Client),
		subs:       make(map[int64]func()),
		logger:     logger,
		redis:      redisPub,
		redisSub:   redisSub,
	}
}

// Register adds a client to a business room. The first client starts the Redis subscription.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if h.businesses[c.BusinessID] == nil {
		h.businesses[c.BusinessID] = make(map[string]*Client)
		if h.redisSub != nil {
			businessID := c.BusinessID
			cancel, err := h.redisSub.SubscribeBusiness(businessID, func(event string, payload []byte) {
				h.BroadcastToBusiness(businessID, event, json.RawMessage(payload))
			})
			if err != nil {
				h.logger.Warn("redis subscribe failed", zap.Int64("business_id", businessID), zap.Error(err))
			} else {
				h.subs[businessID] = cancel
			}
		}
	}
	h.businesses[c.BusinessID][c.ID] = c
	h.mu.Unlock()
	h.logger.Debug("client watching business", zap.String("client_id", c.ID), zap.Int64("business_id", c.BusinessID))
}

// Unregister removes a client. The last client leaving cancels the Redis subscription.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if m, ok := h.businesses[c.BusinessID]; ok {
		delete(m, c.ID)
		if len(m) == 0 {
			delete(h.businesses, c.BusinessID)
			if cancel, ok := h.subs[c.BusinessID]; ok {
				cancel()
				delete(h.subs, c.BusinessID)
			}
		}
	}
	h.mu.Unlock()
	h.logger.Debug("client left business", zap.String("client_id", c.ID), zap.Int64("business_id", c.BusinessID))
}

// BroadcastToBusiness sends a message to local clients of a business.
func (h *Hub) BroadcastToBusiness(businessID int64, event string, payload interface{}) {
	var data []byte
	switch v := payload.(type) {
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	default:
		var err error
		if data, err = json.Marshal(payload); err != nil {
			h.logger.Warn("marshal broadcast payload", zap.String("event", event), zap.Error(err))
			return
		}
	}
	msg := WSMessage{Event: event, Data: data}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.businesses[businessID] {
		select {
		case c.send <- msg:
		default:
			// slow client, drop
		}
	}
}

// BroadcastToBusinessAndPublish delivers an event on every instance exactly once. With
// Redis the subscriber callback does the local delivery too.
func (h *Hub) BroadcastToBusinessAndPublish(businessID int64, event string, payload interface{}) {
	if h.redis == nil {
		h.BroadcastToBusiness(businessID, event, payload)
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Warn("marshal broadcast payload", zap.String("event", event), zap.Error(err))
		return
	}
	if err := h.redis.PublishBusinessEvent(businessID, event, data); err != nil {
		h.logger.Warn("redis publish failed, delivering locally", zap.Int64("business_id", businessID), zap.Error(err))
		h.BroadcastToBusiness(businessID, event, json.RawMessage(data))
	}
}

// Watchers returns the number of local clients of a business.
func (h *Hub) Watchers(businessID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.businesses[businessID])
}
