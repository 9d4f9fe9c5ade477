package handler

import (
	"net/http"
	"strings"

	"github.com/aissms/reeval-backend/internal/config"
	"github.com/aissms/reeval-backend/internal/middleware"
	"github.com/aissms/reeval-backend/internal/response"
	ws "github.com/aissms/reeval-backend/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams request events to institute staff.
type WSHandler struct {
	rdb      *redis.Client
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(rdb *redis.Client, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		rdb:      rdb,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// RequestEventStream godoc
// WS /ws/v1/institute/requests/stream?token=
// Forwards the college's request events until the client disconnects.
func (h *WSHandler) RequestEventStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()
	channel := config.CacheKey.RequestEventsChannel(claims.College)
	sub := h.rdb.Subscribe(ctx, channel)
	defer sub.Close()

	wsLog := h.log.With().
		Int("user_id", claims.UserID).
		Str("college", claims.College).
		Logger()

	// Wait for the subscription to be confirmed before telling the client.
	if _, err := sub.Receive(ctx); err != nil {
		wsLog.Error().Err(err).Msg("Subscribe failed")
		ws.WriteError(conn, "event stream unavailable")
		return
	}
	if err := ws.WriteTyped(conn, ws.ConnectedResponse{Event: ws.EventConnected, College: claims.College}); err != nil {
		return
	}
	wsLog.Info().Msg("Institute stream connected")

	// gorilla allows a single concurrent writer, so the reader only signals
	// and every write happens in the loop below.
	pings := make(chan struct{}, 1)
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			var msg ws.RequestEnvelope
			if err := ws.ReadJSON(conn, &msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					wsLog.Warn().Err(err).Msg("Unexpected close")
				}
				return
			}
			if msg.Action == ws.ActionPing {
				select {
				case pings <- struct{}{}:
				default:
				}
			}
		}
	}()

	events := sub.Channel()
	for {
		select {
		case <-closed:
			wsLog.Debug().Msg("Connection closed")
			return
		case <-pings:
			if err := ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong}); err != nil {
				return
			}
		case msg, ok := <-events:
			if !ok {
				return
			}
			if err := ws.WriteRaw(conn, []byte(msg.Payload)); err != nil {
				wsLog.Warn().Err(err).Msg("Forward event failed")
				return
			}
		}
	}
}
