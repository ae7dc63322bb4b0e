// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

package websocket

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/tomtom215/crowdanalyzer/internal/logging"
	"github.com/tomtom215/crowdanalyzer/internal/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024

	// Inbound messages per second a client may send, with burst.
	inboundRate  = 5
	inboundBurst = 10

	attachTimeout = 5 * time.Second
)

// ErrHubStopped is returned by Attach once the hub has shut down.
var ErrHubStopped = errors.New("websocket hub stopped")

// clientIDCounter gives clients monotonically increasing ids so broadcasts
// iterate in a stable order.
var clientIDCounter atomic.Uint64

// Client is a middleman between the websocket connection and the hub
type Client struct {
	id      uint64
	hub     *Hub
	conn    *websocket.Conn
	send    chan Message
	userID  string
	limiter *rate.Limiter

	mu       sync.RWMutex
	location string

	// sendMu guards send against use after the hub closes it.
	sendMu sync.Mutex
	closed bool
}

// inbound is a message received from the browser.
type inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type subscribeData struct {
	Location string `json:"location"`
}

// NewClient creates a new Client for an upgraded connection.
func NewClient(hub *Hub, conn *websocket.Conn, userID string) *Client {
	return &Client{
		id:      clientIDCounter.Add(1),
		hub:     hub,
		conn:    conn,
		send:    make(chan Message, 256),
		userID:  userID,
		limiter: rate.NewLimiter(rate.Limit(inboundRate), inboundBurst),
	}
}

// ID returns the client's unique identifier
func (c *Client) ID() uint64 {
	return c.id
}

// Location returns the subscribed location, empty for all.
func (c *Client) Location() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.location
}

// SetLocation subscribes the client to one location. Empty clears the filter.
func (c *Client) SetLocation(location string) {
	c.mu.Lock()
	c.location = strings.TrimSpace(location)
	c.mu.Unlock()
}

func (c *Client) wants(message Message) bool {
	if message.location == "" || !locationScoped(message.Type) {
		return true
	}
	loc := c.Location()
	return loc == "" || loc == message.location
}

// trySend queues message without blocking. It reports false when the
// buffer is full or the channel has been closed.
func (c *Client) trySend(message Message) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

// closeSend closes the send channel once.
func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// reply queues a message for this client only. Replies to a client the hub
// has already dropped are discarded.
func (c *Client) reply(message Message) {
	c.trySend(message)
}

// leave unregisters the client unless the hub has already stopped.
func (c *Client) leave() {
	select {
	case c.hub.Unregister <- c:
	case <-c.hub.done:
	}
}

func (c *Client) handle(msg inbound) {
	switch msg.Type {
	case MessageTypePing:
		c.reply(Message{Type: MessageTypePong})
	case MessageTypeSubscribe:
		var data subscribeData
		if len(msg.Data) > 0 {
			if err := json.Unmarshal(msg.Data, &data); err != nil {
				c.reply(Message{Type: MessageTypeError, Data: map[string]string{"message": "Invalid subscribe payload"}})
				return
			}
		}
		c.SetLocation(data.Location)
		c.reply(Message{Type: MessageTypeSubscribed, Data: subscribeData{Location: c.Location()}})
	}
}

// readPump pumps messages from the websocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.leave()
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logging.Error().Err(err).Msg("failed to set read deadline")
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				metrics.WSErrors.WithLabelValues("unexpected_close").Inc()
				logging.Error().Err(err).Msg("unexpected websocket close error")
			}
			return
		}
		metrics.WSMessagesReceived.Inc()

		if !c.limiter.Allow() {
			metrics.WSErrors.WithLabelValues("rate_limited").Inc()
			c.reply(Message{Type: MessageTypeError, Data: map[string]string{"message": "Rate limit exceeded"}})
			continue
		}

		var msg inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			metrics.WSErrors.WithLabelValues("invalid_message").Inc()
			continue
		}
		c.handle(msg)
	}
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline")
				return
			}

			if !ok {
				// The hub closed the channel
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := MarshalMessage(message)
			if err != nil {
				logging.Error().Err(err).Str("message_type", message.Type).Msg("failed to encode websocket message")
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				metrics.WSErrors.WithLabelValues("write").Inc()
				return
			}
			metrics.WSMessagesSent.Inc()

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline for ping")
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Start begins reading and writing for the client
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}

// Attach registers a new client for conn with the hub and starts its pumps.
// It fails when the hub has stopped or does not accept the client before
// ctx ends. The caller keeps ownership of conn on error.
func (h *Hub) Attach(ctx context.Context, conn *websocket.Conn, userID string) (*Client, error) {
	ctx, cancel := context.WithTimeout(ctx, attachTimeout)
	defer cancel()

	client := NewClient(h, conn, userID)
	select {
	case h.Register <- client:
	case <-h.done:
		return nil, ErrHubStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	client.Start()
	return client, nil
}
