package product

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"tecshop_backend/internal/database"
	"tecshop_backend/internal/models"
)

// insertVariant écrit la variante et sa ligne de correspondance SKU
func insertVariant(session *gocql.Session, v models.ProductVariant) error {
	if err := session.Query(`
		INSERT INTO product_variants (variant_id, product_id, shop_id, sku, price, stock, attributes, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, v.ID, v.ProductID, v.ShopID, v.SKU, v.Price, v.Stock, v.Attributes, v.IsActive, v.CreatedAt, v.UpdatedAt).Exec(); err != nil {
		return err
	}

	return session.Query(`INSERT INTO variants_by_sku (shop_id, sku, variant_id, product_id) VALUES (?, ?, ?, ?)`,
		v.ShopID, v.SKU, v.ID, v.ProductID).Exec()
}

// AddVariant ajoute une variante à un produit de la boutique
func AddVariant(c *gin.Context) {
	productID := c.Param("id")
	shopIDStr := c.GetString("shop_id")

	productUUID, err := gocql.ParseUUID(productID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	var req struct {
		SKU        string            `json:"sku" binding:"required"`
		Price      float64           `json:"price"`
		Stock      int               `json:"stock"`
		Attributes map[string]string `json:"attributes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
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

	// ✅ Unicité SKU dans la boutique
	if taken, _ := isSKUTaken(session, p.ShopID, req.SKU); taken {
		c.JSON(http.StatusConflict, gin.H{"error": "Ce SKU existe déjà dans votre boutique", "sku": req.SKU})
		return
	}

	price := req.Price
	if price == 0 {
		price = p.Price
	}

	now := time.Now()
	v := models.ProductVariant{
		ID:         gocql.TimeUUID(),
		ProductID:  p.ID,
		ShopID:     p.ShopID,
		SKU:        req.SKU,
		Price:      price,
		Stock:      req.Stock,
		Attributes: req.Attributes,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := insertVariant(session, v); err != nil {
		log.Printf("❌ Erreur création variante: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création variante"})
		return
	}

	// Maintenir les attributs dénormalisés du produit
	if err := refreshVariantAttrs(session, p); err != nil {
		log.Printf("⚠️ Erreur mise à jour attributs produit: %v", err)
	}

	go invalidateProductCache(p)

	c.JSON(http.StatusCreated, gin.H{"message": "Variante créée", "variant": v})
}

// GetVariants liste les variantes actives d'un produit
func GetVariants(c *gin.Context) {
	productID := c.Param("id")

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

	variants, err := loadVariants(session, productUUID)
	if err != nil {
		log.Printf("❌ Erreur lecture variantes: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture variantes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"variants": variants, "total": len(variants)})
}

// UpdateVariant modifie prix/stock/statut d'une variante
func UpdateVariant(c *gin.Context) {
	variantID := c.Param("variant_id")
	shopIDStr := c.GetString("shop_id")

	variantUUID, err := gocql.ParseUUID(variantID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID variante invalide"})
		return
	}

	var req struct {
		Price    *float64 `json:"price"`
		Stock    *int     `json:"stock"`
		IsActive *bool    `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	session, err := database.GetCatalogSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var v models.ProductVariant
	if err := session.Query(`
		SELECT variant_id, product_id, shop_id, sku, price, stock, attributes, is_active, created_at, updated_at
		FROM product_variants WHERE variant_id = ?
	`, variantUUID).Scan(&v.ID, &v.ProductID, &v.ShopID, &v.SKU, &v.Price, &v.Stock, &v.Attributes,
		&v.IsActive, &v.CreatedAt, &v.UpdatedAt); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Variante introuvable"})
		return
	}

	if v.ShopID.String() != shopIDStr {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cette variante n'appartient pas à votre boutique"})
		return
	}

	if req.Price != nil {
		if *req.Price <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Le prix doit être positif"})
			return
		}
		v.Price = *req.Price
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Le stock ne peut pas être négatif"})
			return
		}
		v.Stock = *req.Stock
	}
	if req.IsActive != nil {
		v.IsActive = *req.IsActive
	}

	if err := session.Query(`UPDATE product_variants SET price = ?, stock = ?, is_active = ?, updated_at = ? WHERE variant_id = ?`,
		v.Price, v.Stock, v.IsActive, time.Now(), v.ID).Exec(); err != nil {
		log.Printf("❌ Erreur mise à jour variante: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour variante"})
		return
	}

	// Changer le statut d'une variante peut faire apparaître ou disparaître
	// une couleur/taille des attributs dénormalisés du produit
	if req.IsActive != nil {
		p, ok := loadOwnedProduct(c, session, v.ProductID, shopIDStr)
		if ok {
			if err := refreshVariantAttrs(session, p); err != nil {
				log.Printf("⚠️ Erreur mise à jour attributs produit: %v", err)
			}
			go invalidateProductCache(p)
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Variante mise à jour", "variant": v})
}

// DeleteVariant supprime une variante et libère son SKU
func DeleteVariant(c *gin.Context) {
	variantID := c.Param("variant_id")
	shopIDStr := c.GetString("shop_id")

	variantUUID, err := gocql.ParseUUID(variantID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID variante invalide"})
		return
	}

	session, err := database.GetCatalogSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var v models.ProductVariant
	if err := session.Query(`
		SELECT variant_id, product_id, shop_id, sku, price, stock, attributes, is_active, created_at, updated_at
		FROM product_variants WHERE variant_id = ?
	`, variantUUID).Scan(&v.ID, &v.ProductID, &v.ShopID, &v.SKU, &v.Price, &v.Stock, &v.Attributes,
		&v.IsActive, &v.CreatedAt, &v.UpdatedAt); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Variante introuvable"})
		return
	}

	if v.ShopID.String() != shopIDStr {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cette variante n'appartient pas à votre boutique"})
		return
	}

	if err := session.Query(`DELETE FROM product_variants WHERE variant_id = ?`, v.ID).Exec(); err != nil {
		log.Printf("❌ Erreur suppression variante: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression variante"})
		return
	}
	if err := session.Query(`DELETE FROM variants_by_sku WHERE shop_id = ? AND sku = ?`, v.ShopID, v.SKU).Exec(); err != nil {
		log.Printf("⚠️ Erreur suppression variants_by_sku: %v", err)
	}

	// Recalculer les attributs dénormalisés depuis les variantes restantes
	p, ok := loadOwnedProduct(c, session, v.ProductID, shopIDStr)
	if ok {
		if err := refreshVariantAttrs(session, p); err != nil {
			log.Printf("⚠️ Erreur mise à jour attributs produit: %v", err)
		}
		go invalidateProductCache(p)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Variante supprimée"})
}

// loadVariants récupère toutes les variantes d'un produit
func loadVariants(session *gocql.Session, productID gocql.UUID) ([]models.ProductVariant, error) {
	iter := session.Query(`
		SELECT variant_id, product_id, shop_id, sku, price, stock, attributes, is_active, created_at, updated_at
		FROM product_variants WHERE product_id = ? ALLOW FILTERING
	`, productID).Iter()

	var variants []models.ProductVariant
	var v models.ProductVariant
	for iter.Scan(&v.ID, &v.ProductID, &v.ShopID, &v.SKU, &v.Price, &v.Stock, &v.Attributes,
		&v.IsActive, &v.CreatedAt, &v.UpdatedAt) {
		variants = append(variants, v)
		v = models.ProductVariant{}
	}
	return variants, iter.Close()
}

// refreshVariantAttrs recalcule colors/sizes/has_variants du produit depuis ses variantes
func refreshVariantAttrs(session *gocql.Session, p models.Product) error {
	variants, err := loadVariants(session, p.ID)
	if err != nil {
		return err
	}

	colors, sizes := collectVariantAttrs(variants)

	return session.Query(`UPDATE products SET colors = ?, sizes = ?, has_variants = ?, updated_at = ? WHERE product_id = ?`,
		colors, sizes, len(variants) > 0, time.Now(), p.ID).Exec()
}

// collectVariantAttrs extrait les couleurs et tailles distinctes des variantes actives
func collectVariantAttrs(variants []models.ProductVariant) (colors, sizes []string) {
	for _, v := range variants {
		if !v.IsActive {
			continue
		}
		if color, ok := v.Attributes["color"]; ok && color != "" {
			colors = appendUnique(colors, color)
		}
		if size, ok := v.Attributes["size"]; ok && size != "" {
			sizes = appendUnique(sizes, size)
		}
	}
	return colors, sizes
}
