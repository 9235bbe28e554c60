package handlers

import (
	"log"

	"github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"giglink/internal/realtime"
	"giglink/internal/utils"
)

type EventsHandler struct {
	Hub       *realtime.Hub
	JWTSecret string
}

func NewEventsHandler(hub *realtime.Hub, jwtSecret string) *EventsHandler {
	return &EventsHandler{Hub: hub, JWTSecret: jwtSecret}
}

// WebSocketHandler keeps one push connection per browser tab. Auth is via a
// token query param because browsers cannot set headers on WebSocket dials.
func (h *EventsHandler) WebSocketHandler(c *websocket.Conn) {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		log.Println("WebSocket: token parameter missing")
		c.Close()
		return
	}

	token, err := jwt.ParseWithClaims(tokenStr, &utils.Claims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(h.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		log.Println("WebSocket: invalid token:", err)
		c.Close()
		return
	}

	claims, ok := token.Claims.(*utils.Claims)
	if !ok {
		c.Close()
		return
	}

	userUUID, err := uuid.Parse(claims.UserID)
	if err != nil {
		log.Println("WebSocket: invalid user id in token:", err)
		c.Close()
		return
	}

	log.Printf("WebSocket: user %s connected\n", userUUID)

	client := &realtime.Client{
		ID:     uuid.New().String(),
		UserID: userUUID,
		Conn:   realtime.NewWebSocketConn(c),
		Send:   make(chan []byte, 256),
	}

	h.Hub.RegisterClient(client)
	defer func() {
		h.Hub.UnregisterClient(client)
		log.Printf("WebSocket: user %s disconnected\n", userUUID)
	}()

	// hub -> client
	go func() {
		for msg := range client.Send {
			if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Println("WebSocket write error:", err)
				return
			}
		}
	}()

	// client -> server: only keepalives, everything else is ignored
	for {
		var payload map[string]interface{}
		if err := c.ReadJSON(&payload); err != nil {
			break
		}
		if msgType, ok := payload["type"].(string); ok && msgType == "pong" {
			continue
		}
	}
}
