package shop

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"tecshop_backend/internal/database"
	"tecshop_backend/internal/models"
	"tecshop_backend/internal/utils"
)

// CreateShop ouvre la boutique d'un vendeur (une seule par compte)
func CreateShop(c *gin.Context) {
	userID := c.GetString("user_id")
	role := c.GetString("role")

	if role != "seller" {
		c.JSON(http.StatusForbidden, gin.H{"error": "Seuls les comptes vendeurs peuvent ouvrir une boutique"})
		return
	}

	var req struct {
		Name        string `json:"name" binding:"required,min=2,max=100"`
		Description string `json:"description"`
		LogoURL     string `json:"logo_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	session, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	// ✅ Une boutique par vendeur
	ownerQuery := database.GetPreparedGetShopByOwner()
	if ownerQuery == nil {
		ownerQuery = session.Query(`SELECT shop_id FROM shops_by_owner WHERE owner_id = ?`)
	}
	var existing gocql.UUID
	if err := ownerQuery.Bind(userID).Scan(&existing); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Vous avez déjà une boutique", "shop_id": existing.String()})
		return
	}

	// ✅ Slug unique dérivé du nom
	slug := utils.SlugifyWithFallback(req.Name, "boutique")
	for attempt := 1; attempt <= 50; attempt++ {
		candidate := utils.NextSlug(slug, attempt)
		var taken gocql.UUID
		err := session.Query(`SELECT shop_id FROM shops_by_slug WHERE slug = ?`, candidate).Scan(&taken)
		if err == gocql.ErrNotFound {
			slug = candidate
			break
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur vérification du slug"})
			return
		}
	}

	now := time.Now()
	s := models.Shop{
		ID:          gocql.TimeUUID(),
		OwnerID:     userID,
		Name:        req.Name,
		Slug:        slug,
		Description: req.Description,
		LogoURL:     req.LogoURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := session.Query(`
		INSERT INTO shops (shop_id, owner_id, name, slug, description, logo_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, s.ID, s.OwnerID, s.Name, s.Slug, s.Description, s.LogoURL, s.CreatedAt, s.UpdatedAt).Exec(); err != nil {
		log.Printf("❌ Erreur création boutique: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création boutique"})
		return
	}
	if err := session.Query(`INSERT INTO shops_by_owner (owner_id, shop_id) VALUES (?, ?)`, s.OwnerID, s.ID).Exec(); err != nil {
		log.Printf("⚠️ Erreur indexation shops_by_owner: %v", err)
	}
	if err := session.Query(`INSERT INTO shops_by_slug (slug, shop_id) VALUES (?, ?)`, s.Slug, s.ID).Exec(); err != nil {
		log.Printf("⚠️ Erreur indexation shops_by_slug: %v", err)
	}

	// Rattacher la boutique au compte (présente dans les prochains JWT)
	if err := session.Query(`UPDATE users SET shop_id = ?, updated_at = ? WHERE user_id = ?`,
		s.ID, now, userID).Exec(); err != nil {
		log.Printf("⚠️ Erreur rattachement boutique au compte: %v", err)
	}

	log.Printf("🏬 Boutique créée: %s (%s)", s.Name, s.Slug)
	c.JSON(http.StatusCreated, gin.H{
		"message": "Boutique créée. Reconnectez-vous pour obtenir un token vendeur.",
		"shop":    s,
	})
}

// GetMyShop renvoie la boutique du vendeur connecté
func GetMyShop(c *gin.Context) {
	shopIDStr := c.GetString("shop_id")

	s, err := loadShop(shopIDStr)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Boutique introuvable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"shop": s})
}

// UpdateShop modifie le profil de la boutique
func UpdateShop(c *gin.Context) {
	shopIDStr := c.GetString("shop_id")

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		LogoURL     *string `json:"logo_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	s, err := loadShop(shopIDStr)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Boutique introuvable"})
		return
	}

	if req.Name != nil {
		s.Name = *req.Name
	}
	if req.Description != nil {
		s.Description = *req.Description
	}
	if req.LogoURL != nil {
		s.LogoURL = *req.LogoURL
	}

	session, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	// Le slug reste figé, les URLs de la boutique ne cassent pas
	if err := session.Query(`UPDATE shops SET name = ?, description = ?, logo_url = ?, updated_at = ? WHERE shop_id = ?`,
		s.Name, s.Description, s.LogoURL, time.Now(), s.ID).Exec(); err != nil {
		log.Printf("❌ Erreur mise à jour boutique: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour boutique"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Boutique mise à jour", "shop": s})
}

// GetShopBySlug renvoie la vitrine publique d'une boutique
func GetShopBySlug(c *gin.Context) {
	slug := c.Param("slug")

	session, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var shopID gocql.UUID
	if err := session.Query(`SELECT shop_id FROM shops_by_slug WHERE slug = ?`, slug).Scan(&shopID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Boutique introuvable"})
		return
	}

	s, err := loadShop(shopID.String())
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Boutique introuvable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"shop": s})
}

// GetShopDashboard agrège les chiffres de la boutique (produits, commandes, CA)
func GetShopDashboard(c *gin.Context) {
	shopIDStr := c.GetString("shop_id")

	shopID, err := gocql.ParseUUID(shopIDStr)
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Boutique invalide"})
		return
	}

	catalogSession, err := database.GetCatalogSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var productCount, activeCount int
	iter := catalogSession.Query(`SELECT is_active FROM products_by_shop WHERE shop_id = ?`, shopID).Iter()
	var active bool
	for iter.Scan(&active) {
		productCount++
		if active {
			activeCount++
		}
	}
	if err := iter.Close(); err != nil {
		log.Printf("⚠️ Erreur comptage produits: %v", err)
	}

	ordersSession, err := database.GetOrdersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var orderCount int
	var revenue float64
	orderIter := ordersSession.Query(`SELECT total_price, status FROM orders_by_shop WHERE shop_id = ?`, shopID).Iter()
	var total float64
	var status string
	for orderIter.Scan(&total, &status) {
		orderCount++
		if status != "cancelled" && status != "refunded" {
			revenue += total
		}
	}
	if err := orderIter.Close(); err != nil {
		log.Printf("⚠️ Erreur comptage commandes: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"products":        productCount,
		"active_products": activeCount,
		"orders":          orderCount,
		"revenue":         revenue,
	})
}

func loadShop(shopIDStr string) (models.Shop, error) {
	var s models.Shop

	shopID, err := gocql.ParseUUID(shopIDStr)
	if err != nil {
		return s, err
	}

	session, err := database.GetUsersSession()
	if err != nil {
		return s, err
	}

	err = session.Query(`SELECT shop_id, owner_id, name, slug, description, logo_url, created_at, updated_at
		FROM shops WHERE shop_id = ?`, shopID).Scan(
		&s.ID, &s.OwnerID, &s.Name, &s.Slug, &s.Description, &s.LogoURL, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}
