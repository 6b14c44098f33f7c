package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/anonto42/nano-chat/backend/internal/hub"
	"github.com/anonto42/nano-chat/backend/internal/middleware"
	"github.com/anonto42/nano-chat/backend/pkg/logging"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxInboundSize = 512
)

// PushHandler upgrades authenticated requests to WebSocket push channels.
type PushHandler struct {
	hub      *hub.Hub
	upgrader websocket.Upgrader
}

// NewPushHandler creates a new PushHandler. allowedOrigins may contain "*".
func NewPushHandler(h *hub.Hub, allowedOrigins []string) *PushHandler {
	return &PushHandler{
		hub: h,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

// RegisterPushRoutes registers the push channel route
func (h *PushHandler) RegisterPushRoutes(g *echo.Group) {
	g.GET("/ws", h.Connect)
}

// Connect serves one push connection until either side closes it.
func (h *PushHandler) Connect(c echo.Context) error {
	claims, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader has already written the error response
		return nil
	}

	logger := logging.FromContext(c.Request().Context())
	client := hub.NewClient(claims.UserID, hub.DefaultBufferSize)
	if !h.hub.Register(client) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		_ = conn.Close()
		return nil
	}
	logger.Info("push client connected")

	go writePump(conn, client)
	readPump(conn)

	h.hub.Unregister(client)
	logger.Info("push client disconnected")
	return nil
}

// readPump discards inbound frames and keeps the read deadline fresh on pong.
func readPump(conn *websocket.Conn) {
	conn.SetReadLimit(maxInboundSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("push connection closed", slog.Any("error", err))
			}
			return
		}
	}
}

// writePump drains the client queue onto the connection and sends pings.
// A closed queue means the hub dropped the client.
func writePump(conn *websocket.Conn, client *hub.Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case frame, ok := <-client.Send():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
