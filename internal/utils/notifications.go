package utils

import (
	"context"
	"log"
	"time"

	"tecshop_backend/internal/database"
	"tecshop_backend/internal/models"

	"github.com/gocql/gocql"
)

// CreateNotification insère une notification et la pousse sur le canal Redis de
// l'utilisateur (les connexions WebSocket du storefront y sont abonnées)
func CreateNotification(userID, notifType, title, body string) {
	session, err := database.GetOrdersSession()
	if err != nil {
		log.Printf("❌ Erreur connexion base de données (notification): %v", err)
		return
	}

	notif := models.Notification{
		ID:        gocql.TimeUUID(),
		UserID:    userID,
		Type:      notifType,
		Title:     title,
		Body:      body,
		IsRead:    false,
		CreatedAt: time.Now(),
	}

	err = session.Query(`
		INSERT INTO notifications_by_user (user_id, created_at, notification_id, type, title, body, is_read)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, notif.UserID, notif.CreatedAt, notif.ID, notif.Type, notif.Title, notif.Body, notif.IsRead).Exec()
	if err != nil {
		log.Printf("❌ Erreur création notification: %v", err)
		return
	}

	// Réveiller les WebSockets de l'utilisateur
	ctx := context.Background()
	database.Redis.Publish(ctx, "notif:"+userID, "created")

	log.Printf("🔔 Notification créée pour %s: %s", userID, title)
}

// NotifyOrderStatus notifie l'acheteur d'un changement de statut (notification + email)
func NotifyOrderStatus(order models.Order, userEmail, newStatus string) {
	CreateNotification(order.UserID, "order_status",
		getStatusEmailSubject(newStatus),
		getStatusMessage(newStatus))

	if userEmail != "" {
		go func() {
			if err := SendOrderStatusEmail(order, userEmail, newStatus); err != nil {
				log.Printf("⚠️ Email statut non envoyé: %v", err)
			}
		}()
	}
}
