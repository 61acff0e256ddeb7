package order

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/paymentintent"

	"tecshop_backend/internal/database"
	"tecshop_backend/internal/models"
	"tecshop_backend/internal/utils"
)

type checkoutItem struct {
	ProductID string `json:"product_id" binding:"required"`
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// Checkout crée une commande: vérifie le stock, fige les prix côté serveur,
// ouvre un PaymentIntent Stripe et décrémente le stock.
func Checkout(c *gin.Context) {
	userID := c.GetString("user_id")
	userEmail := c.GetString("email")

	var req struct {
		Items   []checkoutItem `json:"items" binding:"required,min=1"`
		Address string         `json:"address" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Panier invalide", "details": err.Error()})
		return
	}

	catalogSession, err := database.GetCatalogSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	// Résoudre chaque ligne du panier avec les prix de la base, jamais ceux du client
	orderItems, shopID, err := resolveCartItems(catalogSession, req.Items)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	total := computeOrderTotal(orderItems)
	if total <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Montant de commande invalide"})
		return
	}

	// 💳 PaymentIntent Stripe (montant en centimes)
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(total * 100)),
		Currency: stripe.String(string(stripe.CurrencyEUR)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.AddMetadata("user_id", userID)

	pi, err := paymentintent.New(params)
	if err != nil {
		log.Printf("❌ Erreur Stripe: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Erreur initialisation du paiement"})
		return
	}

	now := time.Now()
	order := models.Order{
		ID:              gocql.TimeUUID(),
		UserID:          userID,
		ShopID:          shopID,
		Items:           orderItems,
		TotalPrice:      total,
		Status:          "pending",
		PaymentIntentID: pi.ID,
		Address:         req.Address,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	ordersSession, err := database.GetOrdersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	itemsJSON, _ := json.Marshal(order.Items)

	if err := ordersSession.Query(`
		INSERT INTO orders (order_id, user_id, shop_id, items, total_price, status, payment_intent_id, address, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, order.ID, order.UserID, order.ShopID, string(itemsJSON), order.TotalPrice, order.Status,
		order.PaymentIntentID, order.Address, order.CreatedAt, order.UpdatedAt).Exec(); err != nil {
		log.Printf("❌ Erreur création commande: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création commande"})
		return
	}

	// Tables de correspondance acheteur et boutique
	if err := ordersSession.Query(`
		INSERT INTO orders_by_user (user_id, created_at, order_id, items, total_price, status)
		VALUES (?, ?, ?, ?, ?, ?)
	`, order.UserID, order.CreatedAt, order.ID, string(itemsJSON), order.TotalPrice, order.Status).Exec(); err != nil {
		log.Printf("⚠️ Erreur indexation orders_by_user: %v", err)
	}
	if err := ordersSession.Query(`
		INSERT INTO orders_by_shop (shop_id, created_at, order_id, total_price, status)
		VALUES (?, ?, ?, ?, ?)
	`, order.ShopID, order.CreatedAt, order.ID, order.TotalPrice, order.Status).Exec(); err != nil {
		log.Printf("⚠️ Erreur indexation orders_by_shop: %v", err)
	}

	// Décrémenter le stock
	decrementStock(catalogSession, req.Items, orderItems)

	// 🔔 Prévenir le vendeur
	go notifyShopOwner(order)

	// 📧 Confirmation + facture PDF à l'acheteur
	go func() {
		html := utils.GenerateOrderConfirmationHTML(order)
		pdf, err := utils.GenerateInvoicePDF(order)
		if err != nil {
			log.Printf("⚠️ Facture PDF non générée: %v", err)
			pdf = nil
		}
		if err := utils.SendConfirmationEmail(userEmail, "🧾 Confirmation de votre commande - TecShop", html, pdf); err != nil {
			log.Printf("⚠️ Email de confirmation non envoyé: %v", err)
		}
	}()

	log.Printf("🛒 Commande créée: %s (%.2f€) pour %s", order.ID, order.TotalPrice, userID)
	c.JSON(http.StatusCreated, gin.H{
		"message":       "Commande créée",
		"order":         order,
		"client_secret": pi.ClientSecret,
	})
}

// resolveCartItems charge les produits/variantes du panier, vérifie visibilité
// et stock, et fige les prix. Toutes les lignes doivent venir de la même boutique.
func resolveCartItems(session *gocql.Session, items []checkoutItem) ([]models.OrderItem, gocql.UUID, error) {
	var orderItems []models.OrderItem
	var shopID gocql.UUID

	for _, item := range items {
		productID, err := gocql.ParseUUID(item.ProductID)
		if err != nil {
			return nil, shopID, errors.New("ID produit invalide dans le panier")
		}

		var name string
		var price float64
		var stock int
		var isActive bool
		var deletedAt *time.Time
		var productShopID gocql.UUID
		if err := session.Query(`
			SELECT name, price, stock, is_active, deleted_at, shop_id FROM products WHERE product_id = ?
		`, productID).Scan(&name, &price, &stock, &isActive, &deletedAt, &productShopID); err != nil {
			return nil, shopID, errors.New("produit introuvable: " + item.ProductID)
		}

		if !isActive || deletedAt != nil {
			return nil, shopID, errors.New("produit indisponible: " + name)
		}

		if shopID == (gocql.UUID{}) {
			shopID = productShopID
		} else if shopID != productShopID {
			return nil, shopID, errors.New("une commande ne peut contenir qu'une seule boutique")
		}

		// Variante demandée: prix et stock de la variante
		if item.VariantID != "" {
			variantID, err := gocql.ParseUUID(item.VariantID)
			if err != nil {
				return nil, shopID, errors.New("ID variante invalide dans le panier")
			}

			var vPrice float64
			var vStock int
			var vActive bool
			var vProductID gocql.UUID
			if err := session.Query(`
				SELECT price, stock, is_active, product_id FROM product_variants WHERE variant_id = ?
			`, variantID).Scan(&vPrice, &vStock, &vActive, &vProductID); err != nil {
				return nil, shopID, errors.New("variante introuvable: " + item.VariantID)
			}
			if vProductID != productID || !vActive {
				return nil, shopID, errors.New("variante indisponible: " + item.VariantID)
			}
			if vStock < item.Quantity {
				return nil, shopID, errors.New("stock insuffisant pour " + name)
			}
			price = vPrice
		} else if stock < item.Quantity {
			return nil, shopID, errors.New("stock insuffisant pour " + name)
		}

		orderItems = append(orderItems, models.OrderItem{
			ProductID:   item.ProductID,
			VariantID:   item.VariantID,
			ProductName: name,
			Quantity:    item.Quantity,
			Price:       price,
		})
	}

	return orderItems, shopID, nil
}

// computeOrderTotal additionne prix x quantité de chaque ligne
func computeOrderTotal(items []models.OrderItem) float64 {
	total := 0.0
	for _, item := range items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// decrementStock retire les quantités commandées du stock produit ou variante
func decrementStock(session *gocql.Session, reqItems []checkoutItem, orderItems []models.OrderItem) {
	for i, item := range reqItems {
		if item.VariantID != "" {
			variantID, _ := gocql.ParseUUID(item.VariantID)
			var stock int
			if err := session.Query(`SELECT stock FROM product_variants WHERE variant_id = ?`, variantID).Scan(&stock); err == nil {
				if err := session.Query(`UPDATE product_variants SET stock = ? WHERE variant_id = ?`,
					stock-item.Quantity, variantID).Exec(); err != nil {
					log.Printf("⚠️ Décrément stock variante %s: %v", item.VariantID, err)
				}
			}
			continue
		}

		productID, _ := gocql.ParseUUID(item.ProductID)
		var stock int
		if err := session.Query(`SELECT stock FROM products WHERE product_id = ?`, productID).Scan(&stock); err == nil {
			if err := session.Query(`UPDATE products SET stock = ? WHERE product_id = ?`,
				stock-item.Quantity, productID).Exec(); err != nil {
				log.Printf("⚠️ Décrément stock produit %s (%s): %v", orderItems[i].ProductName, item.ProductID, err)
			}
		}
	}
}

// notifyShopOwner crée une notification "nouvelle commande" pour le vendeur
func notifyShopOwner(order models.Order) {
	usersSession, err := database.GetUsersSession()
	if err != nil {
		return
	}

	var ownerID string
	iter := usersSession.Query(`SELECT owner_id FROM shops WHERE shop_id = ?`, order.ShopID).Iter()
	if !iter.Scan(&ownerID) {
		iter.Close()
		return
	}
	iter.Close()

	utils.CreateNotification(ownerID, "new_order",
		"Nouvelle commande 🛒",
		fmt.Sprintf("Vous avez reçu une nouvelle commande de %.2f€", order.TotalPrice))
}
