package notification

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"tecshop_backend/internal/database"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // le CORS est géré en amont
	},
}

// NotificationsWebSocket pousse les notifications en temps réel.
// Chaque connexion s'abonne au canal Redis "notif:<user_id>": dès qu'une
// notification est créée, le client reçoit un signal et recharge sa liste.
func NotificationsWebSocket(c *gin.Context) {
	userID := c.GetString("user_id")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("❌ Erreur upgrade WebSocket: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubsub := database.Redis.Subscribe(ctx, "notif:"+userID)
	defer pubsub.Close()

	log.Printf("🔌 WebSocket notifications ouvert pour %s", userID)

	// Relayer les messages Redis vers le client
	go func() {
		ch := pubsub.Channel()
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					return
				}
				if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
					cancel()
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	// Ping keepalive (les proxys coupent les connexions silencieuses)
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					cancel()
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	// Boucle de lecture: détecte la fermeture côté client
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	log.Printf("🔌 WebSocket notifications fermé pour %s", userID)
}
