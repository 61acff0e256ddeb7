package product

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"tecshop_backend/internal/cache"
	"tecshop_backend/internal/database"
	"tecshop_backend/internal/models"
	"tecshop_backend/internal/services"
	"tecshop_backend/internal/utils"
)

const productColumns = `product_id, shop_id, name, slug, description, price, stock, sku, category_id, brand_id,
	image_urls, tags, colors, sizes, is_active, has_variants, average_rating, rating_count,
	deleted_at, created_at, updated_at`

// scanProduct lit une ligne produit complète depuis un itérateur
func scanProduct(iter *gocql.Iter, p *models.Product) bool {
	return iter.Scan(&p.ID, &p.ShopID, &p.Name, &p.Slug, &p.Description, &p.Price, &p.Stock, &p.SKU,
		&p.CategoryID, &p.BrandID, &p.ImageURLs, &p.Tags, &p.Colors, &p.Sizes, &p.IsActive,
		&p.HasVariants, &p.AverageRating, &p.RatingCount, &p.DeletedAt, &p.CreatedAt, &p.UpdatedAt)
}

// CreateProduct crée un produit pour la boutique du vendeur connecté
func CreateProduct(c *gin.Context) {
	shopIDStr := c.GetString("shop_id")

	var req struct {
		Name        string   `json:"name" binding:"required,min=2,max=200"`
		Description string   `json:"description"`
		Price       float64  `json:"price" binding:"required,gt=0"`
		Stock       int      `json:"stock"`
		SKU         string   `json:"sku" binding:"required"`
		CategoryID  string   `json:"category_id" binding:"required"`
		BrandID     string   `json:"brand_id"`
		ImageURLs   []string `json:"image_urls"`
		Tags        []string `json:"tags"`
		Variants    []struct {
			SKU        string            `json:"sku" binding:"required"`
			Price      float64           `json:"price"`
			Stock      int               `json:"stock"`
			Attributes map[string]string `json:"attributes"`
		} `json:"variants"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	shopID, err := gocql.ParseUUID(shopIDStr)
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Boutique invalide"})
		return
	}

	session, err := database.GetCatalogSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	// ✅ Vérifie que la catégorie existe
	categoryID, err := gocql.ParseUUID(req.CategoryID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de catégorie invalide"})
		return
	}
	var categoryName string
	if err := session.Query(`SELECT name FROM categories WHERE category_id = ?`, categoryID).Scan(&categoryName); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Catégorie introuvable"})
		return
	}

	// Marque optionnelle
	var brandID gocql.UUID
	if req.BrandID != "" {
		brandID, err = gocql.ParseUUID(req.BrandID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ID de marque invalide"})
			return
		}
		var brandName string
		if err := session.Query(`SELECT name FROM brands WHERE brand_id = ?`, brandID).Scan(&brandName); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Marque introuvable"})
			return
		}
	}

	// ✅ Unicité SKU du produit dans la boutique
	if taken, _ := isSKUTaken(session, shopID, req.SKU); taken {
		c.JSON(http.StatusConflict, gin.H{"error": "Ce SKU existe déjà dans votre boutique", "sku": req.SKU})
		return
	}

	// ✅ Détection de SKU dupliqués dans le payload de variantes
	seen := map[string]bool{req.SKU: true}
	for _, v := range req.Variants {
		if seen[v.SKU] {
			c.JSON(http.StatusConflict, gin.H{"error": "SKU dupliqué dans les variantes", "sku": v.SKU})
			return
		}
		seen[v.SKU] = true
		if taken, _ := isSKUTaken(session, shopID, v.SKU); taken {
			c.JSON(http.StatusConflict, gin.H{"error": "Ce SKU existe déjà dans votre boutique", "sku": v.SKU})
			return
		}
	}

	// ✅ Slug unique dérivé du nom (suffixe -2, -3… en cas de collision)
	slug, err := reserveSlug(session, req.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de générer un slug unique"})
		return
	}

	now := time.Now()
	p := models.Product{
		ID:          gocql.TimeUUID(),
		ShopID:      shopID,
		Name:        req.Name,
		Slug:        slug,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		SKU:         req.SKU,
		CategoryID:  categoryID,
		BrandID:     brandID,
		ImageURLs:   req.ImageURLs,
		Tags:        req.Tags,
		IsActive:    true,
		HasVariants: len(req.Variants) > 0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// Attributs de variantes dénormalisés sur la ligne produit (filtrage public)
	for _, v := range req.Variants {
		if color, ok := v.Attributes["color"]; ok && color != "" {
			p.Colors = appendUnique(p.Colors, color)
		}
		if size, ok := v.Attributes["size"]; ok && size != "" {
			p.Sizes = appendUnique(p.Sizes, size)
		}
	}

	if err := session.Query(`
		INSERT INTO products (`+productColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.ShopID, p.Name, p.Slug, p.Description, p.Price, p.Stock, p.SKU, p.CategoryID, p.BrandID,
		p.ImageURLs, p.Tags, p.Colors, p.Sizes, p.IsActive, p.HasVariants, p.AverageRating, p.RatingCount,
		p.DeletedAt, p.CreatedAt, p.UpdatedAt).Exec(); err != nil {
		log.Printf("❌ Erreur création produit: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création produit"})
		return
	}

	// ✅ Tables de correspondance (slug, boutique, SKU)
	if err := session.Query(`INSERT INTO products_by_slug (slug, product_id) VALUES (?, ?)`, p.Slug, p.ID).Exec(); err != nil {
		log.Printf("⚠️ Erreur indexation products_by_slug: %v", err)
	}
	if err := session.Query(`INSERT INTO products_by_shop (shop_id, product_id, name, price, stock, is_active) VALUES (?, ?, ?, ?, ?, ?)`,
		p.ShopID, p.ID, p.Name, p.Price, p.Stock, p.IsActive).Exec(); err != nil {
		log.Printf("⚠️ Erreur indexation products_by_shop: %v", err)
	}
	if err := session.Query(`INSERT INTO variants_by_sku (shop_id, sku, variant_id, product_id) VALUES (?, ?, ?, ?)`,
		p.ShopID, p.SKU, gocql.UUID{}, p.ID).Exec(); err != nil {
		log.Printf("⚠️ Erreur indexation variants_by_sku: %v", err)
	}

	// Créer les variantes du payload
	var variants []models.ProductVariant
	for _, v := range req.Variants {
		price := v.Price
		if price == 0 {
			price = p.Price
		}
		variant := models.ProductVariant{
			ID:         gocql.TimeUUID(),
			ProductID:  p.ID,
			ShopID:     shopID,
			SKU:        v.SKU,
			Price:      price,
			Stock:      v.Stock,
			Attributes: v.Attributes,
			IsActive:   true,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := insertVariant(session, variant); err != nil {
			log.Printf("⚠️ Erreur création variante %s: %v", v.SKU, err)
			continue
		}
		variants = append(variants, variant)
	}

	// 🔄 Indexation Elasticsearch
	go services.IndexProduct(p)

	// 🔹 Invalider les listes en cache
	go invalidateListingCache(p.ShopID.String())

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Produit créé avec succès",
		"product":  p,
		"variants": variants,
	})
}

// GetProduct récupère un produit par ID (page produit publique, cache Redis)
func GetProduct(c *gin.Context) {
	productID := c.Param("id")
	ctx := context.Background()
	cacheKey := "product:full:" + productID

	// ✅ Vérifie le cache Redis
	if val, err := database.RedisClient.Get(ctx, cacheKey).Result(); err == nil && val != "" {
		var cached models.Product
		if err := json.Unmarshal([]byte(val), &cached); err == nil {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

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

	var p models.Product
	iter := session.Query(`SELECT `+productColumns+` FROM products WHERE product_id = ?`, productUUID).Iter()
	found := scanProduct(iter, &p)
	if err := iter.Close(); err != nil || !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	// Un produit soft-deleted ou inactif n'est pas visible publiquement
	if p.DeletedAt != nil || !p.IsActive {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	// ✅ Met en cache
	if data, err := json.Marshal(p); err == nil {
		database.RedisClient.Set(ctx, cacheKey, data, 10*time.Minute)
	}

	c.JSON(http.StatusOK, p)
}

// GetProductBySlug résout un slug vers le produit (URLs du storefront)
func GetProductBySlug(c *gin.Context) {
	slug := c.Param("slug")

	session, err := database.GetCatalogSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	q := database.GetPreparedGetProductBySlug()
	if q == nil {
		q = session.Query(`SELECT product_id FROM products_by_slug WHERE slug = ?`)
	}

	var productID gocql.UUID
	if err := q.Bind(slug).Scan(&productID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	c.Params = append(c.Params[:0], gin.Param{Key: "id", Value: productID.String()})
	GetProduct(c)
}

// GetMyProducts liste les produits de la boutique du vendeur (y compris soft-deleted)
func GetMyProducts(c *gin.Context) {
	shopIDStr := c.GetString("shop_id")

	shopID, err := gocql.ParseUUID(shopIDStr)
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Boutique invalide"})
		return
	}

	session, err := database.GetCatalogSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := session.Query(`SELECT `+productColumns+` FROM products WHERE shop_id = ? ALLOW FILTERING`, shopID).Iter()

	var products []models.Product
	var p models.Product
	for scanProduct(iter, &p) {
		products = append(products, p)
		p = models.Product{} // Reset pour la prochaine itération
	}

	if err := iter.Close(); err != nil {
		log.Printf("❌ Erreur lecture produits boutique: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture produits"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"total":    len(products),
	})
}

// --- Helpers ---

// isSKUTaken vérifie l'unicité d'un SKU dans la boutique via la table variants_by_sku
func isSKUTaken(session *gocql.Session, shopID gocql.UUID, sku string) (bool, error) {
	q := database.GetPreparedGetVariantBySKU()
	if q == nil {
		q = session.Query(`SELECT variant_id, product_id FROM variants_by_sku WHERE shop_id = ? AND sku = ?`)
	}

	var variantID, productID gocql.UUID
	err := q.Bind(shopID, sku).Scan(&variantID, &productID)
	if err == gocql.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// reserveSlug génère un slug unique à partir du nom et réserve la première variante libre
func reserveSlug(session *gocql.Session, name string) (string, error) {
	base := utils.SlugifyWithFallback(name, "produit")

	q := database.GetPreparedGetProductBySlug()
	if q == nil {
		q = session.Query(`SELECT product_id FROM products_by_slug WHERE slug = ?`)
	}

	for attempt := 1; attempt <= 50; attempt++ {
		candidate := utils.NextSlug(base, attempt)

		var existing gocql.UUID
		err := q.Bind(candidate).Scan(&existing)
		if err == gocql.ErrNotFound {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		// collision → on essaie le suffixe suivant
	}

	return "", gocql.ErrNotFound
}

func appendUnique(list []string, value string) []string {
	for _, v := range list {
		if v == value {
			return list
		}
	}
	return append(list, value)
}

// invalidateListingCache supprime les listes publiques en cache après écriture
func invalidateListingCache(shopID string) {
	if err := cache.InvalidatePattern("products:public:*"); err != nil {
		log.Printf("⚠️ Invalidation cache listes (boutique %s): %v", shopID, err)
	}
}
