// internal/handlers/events.go
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/reelshop/internal/middleware"
	"github.com/javajoker/reelshop/internal/store"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 64
)

// EventsHandler streams workspace change events over a websocket so clients
// can refetch after any committed update, including timer-driven ones.
type EventsHandler struct {
	upgrader websocket.Upgrader
}

type eventsClient struct {
	conn   *websocket.Conn
	send   chan store.Change
	logger *logrus.Entry
}

func NewEventsHandler(allowedOrigin string) *EventsHandler {
	return &EventsHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowedOrigin == "" || allowedOrigin == "*" || origin == "" || origin == allowedOrigin
			},
		},
	}
}

// GET /events
func (h *EventsHandler) Subscribe(c *gin.Context) {
	ws := middleware.GetWorkspace(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Warn("Failed to upgrade events connection")
		return
	}

	client := &eventsClient{
		conn:   conn,
		send:   make(chan store.Change, sendBuffer),
		logger: logrus.WithField("device_id", ws.DeviceID),
	}

	// A slow reader only needs the latest version, so full buffers drop events.
	unsubscribe := ws.Store.Subscribe(func(change store.Change) {
		select {
		case client.send <- change:
		default:
		}
	})

	client.send <- store.Change{Version: ws.Store.Version(), Reason: "subscribed", At: time.Now().UTC()}

	done := make(chan struct{})
	go client.writePump(done)
	client.readPump()

	unsubscribe()
	close(done)
}

// readPump consumes control frames until the client goes away.
func (cl *eventsClient) readPump() {
	defer cl.conn.Close()

	cl.conn.SetReadLimit(512)
	cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				cl.logger.WithError(err).Warn("Events connection closed unexpectedly")
			}
			return
		}
	}
}

func (cl *eventsClient) writePump(done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		cl.conn.Close()
	}()

	for {
		select {
		case change := <-cl.send:
			cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteJSON(change); err != nil {
				return
			}
		case <-ticker.C:
			cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			cl.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
