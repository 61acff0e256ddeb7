package notification

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"tecshop_backend/internal/database"
	"tecshop_backend/internal/models"
)

// GetMyNotifications liste les notifications de l'utilisateur (plus récentes d'abord)
func GetMyNotifications(c *gin.Context) {
	userID := c.GetString("user_id")

	session, err := database.GetOrdersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := session.Query(`
		SELECT user_id, created_at, notification_id, type, title, body, is_read
		FROM notifications_by_user WHERE user_id = ? LIMIT 50
	`, userID).Iter()

	var notifications []models.Notification
	var n models.Notification
	for iter.Scan(&n.UserID, &n.CreatedAt, &n.ID, &n.Type, &n.Title, &n.Body, &n.IsRead) {
		notifications = append(notifications, n)
		n = models.Notification{}
	}
	if err := iter.Close(); err != nil {
		log.Printf("❌ Erreur lecture notifications: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": notifications, "total": len(notifications)})
}

// GetUnreadCount renvoie le nombre de notifications non lues (badge du storefront)
func GetUnreadCount(c *gin.Context) {
	userID := c.GetString("user_id")

	session, err := database.GetOrdersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := session.Query(`
		SELECT is_read FROM notifications_by_user WHERE user_id = ?
	`, userID).Iter()

	count := 0
	var isRead bool
	for iter.Scan(&isRead) {
		if !isRead {
			count++
		}
	}
	if err := iter.Close(); err != nil {
		log.Printf("⚠️ Erreur comptage notifications: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{"unread": count})
}

// MarkAsRead marque une notification comme lue
func MarkAsRead(c *gin.Context) {
	userID := c.GetString("user_id")
	notifIDStr := c.Param("id")

	notifID, err := gocql.ParseUUID(notifIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID notification invalide"})
		return
	}

	session, err := database.GetOrdersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	// Retrouver la clé de clustering (created_at) de la notification
	iter := session.Query(`
		SELECT created_at, notification_id FROM notifications_by_user WHERE user_id = ?
	`, userID).Iter()

	var createdAt time.Time
	var id gocql.UUID
	found := false
	for iter.Scan(&createdAt, &id) {
		if id == notifID {
			found = true
			break
		}
	}
	iter.Close()

	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification introuvable"})
		return
	}

	if err := session.Query(`
		UPDATE notifications_by_user SET is_read = true WHERE user_id = ? AND created_at = ? AND notification_id = ?
	`, userID, createdAt, notifID).Exec(); err != nil {
		log.Printf("❌ Erreur marquage notification: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour notification"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification lue"})
}

// MarkAllAsRead marque toutes les notifications de l'utilisateur comme lues
func MarkAllAsRead(c *gin.Context) {
	userID := c.GetString("user_id")

	session, err := database.GetOrdersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := session.Query(`
		SELECT created_at, notification_id, is_read FROM notifications_by_user WHERE user_id = ?
	`, userID).Iter()

	type key struct {
		createdAt time.Time
		id        gocql.UUID
	}
	var unread []key
	var createdAt time.Time
	var id gocql.UUID
	var isRead bool
	for iter.Scan(&createdAt, &id, &isRead) {
		if !isRead {
			unread = append(unread, key{createdAt, id})
		}
	}
	if err := iter.Close(); err != nil {
		log.Printf("⚠️ Erreur lecture notifications: %v", err)
	}

	for _, k := range unread {
		if err := session.Query(`
			UPDATE notifications_by_user SET is_read = true WHERE user_id = ? AND created_at = ? AND notification_id = ?
		`, userID, k.createdAt, k.id).Exec(); err != nil {
			log.Printf("⚠️ Erreur marquage notification %s: %v", k.id, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notifications lues", "updated": len(unread)})
}
