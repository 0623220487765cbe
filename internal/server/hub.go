package server

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/san-kum/ebmlab/internal/driver"
)

// tickInterval is the physics cadence for a websocket session. Snapshot
// emission is throttled separately by the driver configuration.
const tickInterval = 33 * time.Millisecond

// Msg is the wire format in both directions. Inbound types: "solar",
// "greenhouse" (Value carries the setting), "reset". Outbound type:
// "snapshot" with the State payload.
type Msg struct {
	Type  string           `json:"type"`
	Value float64          `json:"value,omitempty"`
	State *driver.Snapshot `json:"state,omitempty"`
}

// Hub owns one frame loop per connection and bridges it to the socket:
// inbound control messages mutate the loop, outbound snapshots stream
// back on the driver's throttle.
type Hub struct {
	conn *websocket.Conn
	loop *driver.Loop

	inbound chan Msg
	done    chan struct{}
}

func NewHub(conn *websocket.Conn, loop *driver.Loop) *Hub {
	return &Hub{
		conn:    conn,
		loop:    loop,
		inbound: make(chan Msg, 10),
		done:    make(chan struct{}),
	}
}

// Run drives the session until the connection drops. The loop is only
// ever touched from this goroutine; readPump merely forwards messages.
func (h *Hub) Run() {
	go h.readPump()

	h.loop.SetObserver(func(s driver.Snapshot) {
		if err := h.conn.WriteJSON(Msg{Type: "snapshot", State: &s}); err != nil {
			logrus.WithError(err).Debug("snapshot write failed")
		}
	})

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			return
		case msg := <-h.inbound:
			h.handle(msg)
		case now := <-ticker.C:
			h.loop.Tick(now)
		}
	}
}

func (h *Hub) handle(msg Msg) {
	switch msg.Type {
	case "solar":
		h.loop.SetSolarScale(msg.Value)
	case "greenhouse":
		h.loop.SetGreenhouse(msg.Value)
	case "reset":
		h.loop.Reset()
	default:
		logrus.WithField("type", msg.Type).Warn("unknown message type")
	}
}

func (h *Hub) readPump() {
	defer close(h.done)
	for {
		var msg Msg
		if err := h.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logrus.WithError(err).Warn("websocket read failed")
			}
			return
		}
		h.inbound <- msg
	}
}
