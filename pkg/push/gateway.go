// Package push pkg/push/gateway.go relays broadcast bus messages to live
// websocket subscribers. A send failure to one subscriber removes only that
// subscriber; relay to the others continues.
package push

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rigwatch/rigwatch/pkg/bus"
	"github.com/rigwatch/rigwatch/pkg/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 50 * time.Second
	maxMessageSize = 1024
	sendBufferSize = 32
)

// Envelope message types delivered to subscribers.
const (
	TypeConnectionEstablished = "connection_established"
	TypeTelemetryUpdate       = "telemetry_update"
	TypeAlertNotification     = "alert_notification"
)

// Envelope is the JSON frame pushed to every subscriber.
type Envelope struct {
	Type      string          `json:"type"`
	Channel   string          `json:"channel,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// Subscriber is the consuming side of the broadcast bus.
type Subscriber interface {
	Subscribe(ctx context.Context, channel string) <-chan bus.Message
}

// Gateway owns the websocket endpoint and the relay loops.
type Gateway struct {
	registry *Registry
	sub      Subscriber
	metrics  *metrics.Metrics
	upgrader websocket.Upgrader
}

// NewGateway creates a Gateway around an injected registry. m may be nil.
func NewGateway(registry *Registry, sub Subscriber, m *metrics.Metrics) *Gateway {
	return &Gateway{
		registry: registry,
		sub:      sub,
		metrics:  m,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool {
				return true // Configure properly for production
			},
		},
	}
}

// Start subscribes to both bus channels and relays until ctx is done.
func (g *Gateway) Start(ctx context.Context) error {
	telemetry := g.sub.Subscribe(ctx, bus.ChannelTelemetry)
	alerts := g.sub.Subscribe(ctx, bus.ChannelAlerts)

	go g.relay(telemetry, TypeTelemetryUpdate)
	go g.relay(alerts, TypeAlertNotification)

	<-ctx.Done()

	return nil
}

// Stop disconnects every subscriber.
func (g *Gateway) Stop(_ context.Context) error {
	for _, c := range g.registry.snapshot() {
		g.dropClient(c)
	}

	return nil
}

// relay translates the bus channel name into the envelope type discriminator
// and fans each message out to every connected subscriber. One relay
// goroutine per channel keeps per-channel publish order intact.
func (g *Gateway) relay(messages <-chan bus.Message, envelopeType string) {
	for msg := range messages {
		frame, err := json.Marshal(Envelope{
			Type:      envelopeType,
			Channel:   msg.Channel,
			Data:      msg.Payload,
			Timestamp: time.Now().UTC(),
		})
		if err != nil {
			log.Printf("failed to encode push envelope: %v", err)
			continue
		}

		for _, c := range g.registry.snapshot() {
			c.enqueue(frame)
		}
	}
}

// HandleWebSocket upgrades the connection, acknowledges it and keeps the
// subscriber registered until the connection closes.
func (g *Gateway) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	c := newClient(conn)

	go g.writePump(c)

	// The ack is enqueued before registration so it is always the first
	// frame the subscriber sees.
	ack, err := json.Marshal(Envelope{
		Type:      TypeConnectionEstablished,
		Timestamp: time.Now().UTC(),
	})
	if err == nil {
		c.enqueue(ack)
	}

	g.registry.add(c)
	g.updateClientGauge()

	g.readLoop(c)
}

// readLoop discards inbound frames; its job is detecting closure.
func (g *Gateway) readLoop(c *client) {
	defer g.dropClient(c)

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				log.Printf("websocket read error: %v", err)
			}

			return
		}
	}
}

func (g *Gateway) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := c.conn.Close(); err != nil {
			log.Printf("websocket close error: %v", err)
		}
	}()

	for {
		select {
		case <-c.done:
			return
		case frame := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))

			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				g.dropClient(c)
				return
			}
		case <-ticker.C:
			deadline := time.Now().Add(writeWait)
			if err := c.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				g.dropClient(c)
				return
			}
		}
	}
}

func (g *Gateway) dropClient(c *client) {
	if g.registry.remove(c) {
		c.close()
		g.updateClientGauge()
	}
}

func (g *Gateway) updateClientGauge() {
	if g.metrics != nil {
		g.metrics.PushClients.Set(float64(g.registry.Count()))
	}
}
