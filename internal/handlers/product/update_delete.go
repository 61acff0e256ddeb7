package product

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"tecshop_backend/internal/database"
	"tecshop_backend/internal/models"
	"tecshop_backend/internal/services"
)

// productUpdate: seuls les champs présents dans le JSON sont modifiés
type productUpdate struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Price       *float64  `json:"price"`
	Stock       *int      `json:"stock"`
	CategoryID  *string   `json:"category_id"`
	BrandID     *string   `json:"brand_id"`
	ImageURLs   *[]string `json:"image_urls"`
	Tags        *[]string `json:"tags"`
	IsActive    *bool     `json:"is_active"`
}

// buildUpdateCQL construit la clause SET et les valeurs à partir des champs fournis.
// Le slug n'est jamais recalculé: les URLs publiques restent stables.
func buildUpdateCQL(req productUpdate, now time.Time) (string, []interface{}, error) {
	var sets []string
	var values []interface{}

	if req.Name != nil {
		sets = append(sets, "name = ?")
		values = append(values, *req.Name)
	}
	if req.Description != nil {
		sets = append(sets, "description = ?")
		values = append(values, *req.Description)
	}
	if req.Price != nil {
		sets = append(sets, "price = ?")
		values = append(values, *req.Price)
	}
	if req.Stock != nil {
		sets = append(sets, "stock = ?")
		values = append(values, *req.Stock)
	}
	if req.CategoryID != nil {
		id, err := gocql.ParseUUID(*req.CategoryID)
		if err != nil {
			return "", nil, err
		}
		sets = append(sets, "category_id = ?")
		values = append(values, id)
	}
	if req.BrandID != nil {
		id, err := gocql.ParseUUID(*req.BrandID)
		if err != nil {
			return "", nil, err
		}
		sets = append(sets, "brand_id = ?")
		values = append(values, id)
	}
	if req.ImageURLs != nil {
		sets = append(sets, "image_urls = ?")
		values = append(values, *req.ImageURLs)
	}
	if req.Tags != nil {
		sets = append(sets, "tags = ?")
		values = append(values, *req.Tags)
	}
	if req.IsActive != nil {
		sets = append(sets, "is_active = ?")
		values = append(values, *req.IsActive)
	}

	if len(sets) == 0 {
		return "", nil, nil
	}

	sets = append(sets, "updated_at = ?")
	values = append(values, now)

	return strings.Join(sets, ", "), values, nil
}

// UpdateProduct met à jour partiellement un produit de la boutique du vendeur
func UpdateProduct(c *gin.Context) {
	productID := c.Param("id")
	shopIDStr := c.GetString("shop_id")

	productUUID, err := gocql.ParseUUID(productID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	var req productUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	if req.Price != nil && *req.Price <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le prix doit être positif"})
		return
	}
	if req.Stock != nil && *req.Stock < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le stock ne peut pas être négatif"})
		return
	}

	session, err := database.GetCatalogSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	p, ok := loadOwnedProduct(c, session, productUUID, shopIDStr)
	if !ok {
		return
	}

	setClause, values, err := buildUpdateCQL(req, time.Now())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de catégorie ou marque invalide"})
		return
	}
	if setClause == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Aucun champ à mettre à jour"})
		return
	}

	values = append(values, productUUID)
	if err := session.Query(`UPDATE products SET `+setClause+` WHERE product_id = ?`, values...).Exec(); err != nil {
		log.Printf("❌ Erreur mise à jour produit: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour produit"})
		return
	}

	// Table de correspondance boutique (name/price/stock dénormalisés)
	if req.Name != nil || req.Price != nil || req.Stock != nil || req.IsActive != nil {
		name, price, stock, active := p.Name, p.Price, p.Stock, p.IsActive
		if req.Name != nil {
			name = *req.Name
		}
		if req.Price != nil {
			price = *req.Price
		}
		if req.Stock != nil {
			stock = *req.Stock
		}
		if req.IsActive != nil {
			active = *req.IsActive
		}
		if err := session.Query(`UPDATE products_by_shop SET name = ?, price = ?, stock = ?, is_active = ? WHERE shop_id = ? AND product_id = ?`,
			name, price, stock, active, p.ShopID, p.ID).Exec(); err != nil {
			log.Printf("⚠️ Erreur mise à jour products_by_shop: %v", err)
		}
	}

	// 🔄 Réindexer et invalider les caches
	go func() {
		var fresh models.Product
		iter := session.Query(`SELECT `+productColumns+` FROM products WHERE product_id = ?`, productUUID).Iter()
		if scanProduct(iter, &fresh) {
			services.IndexProduct(fresh)
		}
		iter.Close()
	}()
	go invalidateProductCache(p)

	c.JSON(http.StatusOK, gin.H{"message": "Produit mis à jour"})
}

// SoftDeleteProduct retire un produit du storefront sans le détruire.
// Le produit reste restaurable 30 jours, puis le nettoyage horaire le purge.
func SoftDeleteProduct(c *gin.Context) {
	productID := c.Param("id")
	shopIDStr := c.GetString("shop_id")

	productUUID, err := gocql.ParseUUID(productID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	session, err := database.GetCatalogSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	p, ok := loadOwnedProduct(c, session, productUUID, shopIDStr)
	if !ok {
		return
	}

	if p.DeletedAt != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Produit déjà supprimé"})
		return
	}

	now := time.Now()
	if err := session.Query(`UPDATE products SET deleted_at = ?, is_active = false, updated_at = ? WHERE product_id = ?`,
		now, now, productUUID).Exec(); err != nil {
		log.Printf("❌ Erreur soft delete produit: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression produit"})
		return
	}

	if err := session.Query(`UPDATE products_by_shop SET is_active = false WHERE shop_id = ? AND product_id = ?`,
		p.ShopID, p.ID).Exec(); err != nil {
		log.Printf("⚠️ Erreur mise à jour products_by_shop: %v", err)
	}

	// Disparaît immédiatement de la recherche et des caches
	go services.RemoveProductFromIndex(productID)
	go invalidateProductCache(p)

	log.Printf("🗑️ Produit soft-deleted: %s (%s)", p.Name, p.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Produit supprimé", "restorable_until": now.AddDate(0, 0, 30)})
}

// RestoreProduct annule un soft delete tant que la purge n'est pas passée
func RestoreProduct(c *gin.Context) {
	productID := c.Param("id")
	shopIDStr := c.GetString("shop_id")

	productUUID, err := gocql.ParseUUID(productID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	session, err := database.GetCatalogSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	p, ok := loadOwnedProduct(c, session, productUUID, shopIDStr)
	if !ok {
		return
	}

	if p.DeletedAt == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Ce produit n'est pas supprimé"})
		return
	}

	now := time.Now()
	if err := session.Query(`UPDATE products SET deleted_at = null, is_active = true, updated_at = ? WHERE product_id = ?`,
		now, productUUID).Exec(); err != nil {
		log.Printf("❌ Erreur restauration produit: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur restauration produit"})
		return
	}

	if err := session.Query(`UPDATE products_by_shop SET is_active = true WHERE shop_id = ? AND product_id = ?`,
		p.ShopID, p.ID).Exec(); err != nil {
		log.Printf("⚠️ Erreur mise à jour products_by_shop: %v", err)
	}

	p.DeletedAt = nil
	p.IsActive = true
	go services.IndexProduct(p)
	go invalidateProductCache(p)

	log.Printf("♻️ Produit restauré: %s (%s)", p.Name, p.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Produit restauré"})
}

// loadOwnedProduct charge le produit et vérifie qu'il appartient bien à la
// boutique du vendeur connecté. Répond directement en cas d'échec.
func loadOwnedProduct(c *gin.Context, session *gocql.Session, productID gocql.UUID, shopIDStr string) (models.Product, bool) {
	var p models.Product
	iter := session.Query(`SELECT `+productColumns+` FROM products WHERE product_id = ?`, productID).Iter()
	found := scanProduct(iter, &p)
	if err := iter.Close(); err != nil || !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return p, false
	}

	if p.ShopID.String() != shopIDStr {
		c.JSON(http.StatusForbidden, gin.H{"error": "Ce produit n'appartient pas à votre boutique"})
		return p, false
	}

	return p, true
}

// invalidateProductCache supprime le cache du produit et les listes associées
func invalidateProductCache(p models.Product) {
	ctx := context.Background()
	database.Redis.Del(ctx, "product:full:"+p.ID.String())
	invalidateListingCache(p.ShopID.String())
}
