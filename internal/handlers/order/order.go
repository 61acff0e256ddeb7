package order

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"tecshop_backend/internal/database"
	"tecshop_backend/internal/models"
	"tecshop_backend/internal/utils"
)

// Transitions de statut autorisées
var allowedTransitions = map[string][]string{
	"pending":   {"paid", "cancelled"},
	"paid":      {"shipped", "cancelled", "refunded"},
	"shipped":   {"delivered"},
	"delivered": {"refunded"},
}

// canTransition vérifie qu'un passage de statut est permis
func canTransition(from, to string) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// GetMyOrders liste les commandes de l'acheteur connecté (plus récentes d'abord)
func GetMyOrders(c *gin.Context) {
	userID := c.GetString("user_id")

	session, err := database.GetOrdersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := session.Query(`
		SELECT order_id, created_at, items, total_price, status
		FROM orders_by_user WHERE user_id = ?
	`, userID).Iter()

	var orders []gin.H
	var orderID gocql.UUID
	var createdAt time.Time
	var itemsJSON string
	var total float64
	var status string
	for iter.Scan(&orderID, &createdAt, &itemsJSON, &total, &status) {
		var items []models.OrderItem
		json.Unmarshal([]byte(itemsJSON), &items)
		orders = append(orders, gin.H{
			"id":          orderID.String(),
			"created_at":  createdAt,
			"items":       items,
			"total_price": total,
			"status":      status,
		})
	}
	if err := iter.Close(); err != nil {
		log.Printf("❌ Erreur lecture commandes: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture commandes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders, "total": len(orders)})
}

// GetOrderByID renvoie une commande. Accessible à l'acheteur ou au vendeur concerné.
func GetOrderByID(c *gin.Context) {
	orderID := c.Param("id")
	userID := c.GetString("user_id")
	shopIDStr := c.GetString("shop_id")

	order, err := loadOrder(orderID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	}

	if order.UserID != userID && order.ShopID.String() != shopIDStr {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cette commande ne vous appartient pas"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

// GetShopOrders liste les commandes reçues par la boutique du vendeur
func GetShopOrders(c *gin.Context) {
	shopIDStr := c.GetString("shop_id")

	shopID, err := gocql.ParseUUID(shopIDStr)
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Boutique invalide"})
		return
	}

	session, err := database.GetOrdersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := session.Query(`
		SELECT order_id, created_at, total_price, status
		FROM orders_by_shop WHERE shop_id = ?
	`, shopID).Iter()

	var orders []gin.H
	var orderID gocql.UUID
	var createdAt time.Time
	var total float64
	var status string
	for iter.Scan(&orderID, &createdAt, &total, &status) {
		orders = append(orders, gin.H{
			"id":          orderID.String(),
			"created_at":  createdAt,
			"total_price": total,
			"status":      status,
		})
	}
	if err := iter.Close(); err != nil {
		log.Printf("❌ Erreur lecture commandes boutique: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture commandes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders, "total": len(orders)})
}

// UpdateOrderStatus fait avancer une commande de la boutique (expédiée, livrée...)
// et notifie l'acheteur (notification + email).
func UpdateOrderStatus(c *gin.Context) {
	orderID := c.Param("id")
	shopIDStr := c.GetString("shop_id")

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Statut manquant"})
		return
	}

	order, err := loadOrder(orderID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	}

	if order.ShopID.String() != shopIDStr {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cette commande ne concerne pas votre boutique"})
		return
	}

	if !canTransition(order.Status, req.Status) {
		c.JSON(http.StatusConflict, gin.H{
			"error":   "Transition de statut interdite",
			"from":    order.Status,
			"to":      req.Status,
			"allowed": allowedTransitions[order.Status],
		})
		return
	}

	session, err := database.GetOrdersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	now := time.Now()
	if err := session.Query(`UPDATE orders SET status = ?, updated_at = ? WHERE order_id = ?`,
		req.Status, now, order.ID).Exec(); err != nil {
		log.Printf("❌ Erreur mise à jour statut: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour statut"})
		return
	}
	if err := session.Query(`UPDATE orders_by_user SET status = ? WHERE user_id = ? AND created_at = ? AND order_id = ?`,
		req.Status, order.UserID, order.CreatedAt, order.ID).Exec(); err != nil {
		log.Printf("⚠️ Erreur mise à jour orders_by_user: %v", err)
	}
	if err := session.Query(`UPDATE orders_by_shop SET status = ? WHERE shop_id = ? AND created_at = ? AND order_id = ?`,
		req.Status, order.ShopID, order.CreatedAt, order.ID).Exec(); err != nil {
		log.Printf("⚠️ Erreur mise à jour orders_by_shop: %v", err)
	}

	// 🔔 Prévenir l'acheteur
	go func() {
		email := lookupUserEmail(order.UserID)
		utils.NotifyOrderStatus(order, email, req.Status)
	}()

	order.Status = req.Status
	c.JSON(http.StatusOK, gin.H{"message": "Statut mis à jour", "order": order})
}

// loadOrder charge une commande complète par ID
func loadOrder(orderIDStr string) (models.Order, error) {
	var order models.Order

	orderID, err := gocql.ParseUUID(orderIDStr)
	if err != nil {
		return order, err
	}

	session, err := database.GetOrdersSession()
	if err != nil {
		return order, err
	}

	var itemsJSON string
	if err := session.Query(`
		SELECT order_id, user_id, shop_id, items, total_price, status, payment_intent_id, address, created_at, updated_at
		FROM orders WHERE order_id = ?
	`, orderID).Scan(&order.ID, &order.UserID, &order.ShopID, &itemsJSON, &order.TotalPrice,
		&order.Status, &order.PaymentIntentID, &order.Address, &order.CreatedAt, &order.UpdatedAt); err != nil {
		return order, err
	}

	if err := json.Unmarshal([]byte(itemsJSON), &order.Items); err != nil {
		log.Printf("⚠️ Items de commande illisibles (%s): %v", order.ID, err)
	}

	return order, nil
}

func lookupUserEmail(userID string) string {
	session, err := database.GetUsersSession()
	if err != nil {
		return ""
	}

	var email string
	if err := session.Query(`SELECT email FROM users WHERE user_id = ?`, userID).Scan(&email); err != nil {
		return ""
	}
	return email
}
