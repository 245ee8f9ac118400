package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"
	"github.com/ikkim/udonggeum-storefront/internal/errors"
	"github.com/ikkim/udonggeum-storefront/internal/middleware"
	ws "github.com/ikkim/udonggeum-storefront/internal/websocket"
)

type ChatController struct {
	hub      *ws.Hub
	hubURL   string
	upgrader *gorilla.Upgrader
}

func NewChatController(hub *ws.Hub, hubURL string, allowedOrigins []string) *ChatController {
	return &ChatController{
		hub:      hub,
		hubURL:   hubURL,
		upgrader: ws.NewUpgrader(allowedOrigins),
	}
}

// ServeWS relays a browser WebSocket to the storefront chat hub
// GET /api/v1/chat/ws?token=
func (ctrl *ChatController) ServeWS(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	token := middleware.GetToken(c)

	var userID int64
	if cache, ok := middleware.GetUserCache(c); ok {
		if user, err := cache.Get(c.Request.Context(), false); err == nil {
			userID = user.ID
		}
	}

	// Dial first so a hub outage is answered with JSON rather than a
	// dropped socket.
	upstreamConn, err := ws.DialHub(c.Request.Context(), ctrl.hubURL, token)
	if err != nil {
		log.Error("Chat hub unavailable", err)
		errors.RespondWithError(c, http.StatusBadGateway, errors.UpstreamUnavailable, "Chat is temporarily unavailable")
		return
	}

	clientConn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn("WebSocket upgrade failed", map[string]interface{}{
			"error": err.Error(),
		})
		upstreamConn.Close()
		return
	}

	relay := ws.NewRelay(ctrl.hub, userID, clientConn, upstreamConn)
	log.Info("Chat relay opened", map[string]interface{}{
		"relay_id": relay.ID,
		"user_id":  userID,
	})
	go relay.Run()
}
