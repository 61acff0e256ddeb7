package catalog

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

// GetBrands liste toutes les marques (cache Redis 1h)
func GetBrands(c *gin.Context) {
	if val, err := database.RedisClient.Get(ctx, "brands:all").Result(); err == nil && val != "" {
		var cached []models.Brand
		if err := json.Unmarshal([]byte(val), &cached); err == nil {
			c.JSON(http.StatusOK, gin.H{"brands": cached, "cached": true})
			return
		}
	}

	session, err := database.GetCatalogSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := session.Query(`SELECT brand_id, name, slug, logo_url, created_at FROM brands`).Iter()

	var brands []models.Brand
	var b models.Brand
	for iter.Scan(&b.ID, &b.Name, &b.Slug, &b.LogoURL, &b.CreatedAt) {
		brands = append(brands, b)
		b = models.Brand{}
	}
	if err := iter.Close(); err != nil {
		log.Printf("❌ Erreur lecture marques: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture marques"})
		return
	}

	if data, err := json.Marshal(brands); err == nil {
		database.RedisClient.Set(ctx, "brands:all", data, time.Hour)
	}

	c.JSON(http.StatusOK, gin.H{"brands": brands})
}

// GetBrand renvoie une marque par son ID
func GetBrand(c *gin.Context) {
	brandUUID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de marque invalide"})
		return
	}

	session, err := database.GetCatalogSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var b models.Brand
	if err := session.Query(`SELECT brand_id, name, slug, logo_url, created_at FROM brands WHERE brand_id = ?`,
		brandUUID).Scan(&b.ID, &b.Name, &b.Slug, &b.LogoURL, &b.CreatedAt); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Marque introuvable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"brand": b})
}

// CreateBrand ajoute une marque (admin)
func CreateBrand(c *gin.Context) {
	var req struct {
		Name    string `json:"name" binding:"required,min=2,max=100"`
		LogoURL string `json:"logo_url"`
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

	slug := utils.Slugify(req.Name)
	if slug == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le nom doit contenir des caractères alphanumériques"})
		return
	}

	var existing gocql.UUID
	if err := session.Query(`SELECT brand_id FROM brands_by_slug WHERE slug = ?`, slug).Scan(&existing); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Une marque avec ce nom existe déjà"})
		return
	}

	b := models.Brand{
		ID:        gocql.TimeUUID(),
		Name:      req.Name,
		Slug:      slug,
		LogoURL:   req.LogoURL,
		CreatedAt: time.Now(),
	}

	if err := session.Query(`INSERT INTO brands (brand_id, name, slug, logo_url, created_at) VALUES (?, ?, ?, ?, ?)`,
		b.ID, b.Name, b.Slug, b.LogoURL, b.CreatedAt).Exec(); err != nil {
		log.Printf("❌ Erreur création marque: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création marque"})
		return
	}
	if err := session.Query(`INSERT INTO brands_by_slug (slug, brand_id) VALUES (?, ?)`, b.Slug, b.ID).Exec(); err != nil {
		log.Printf("⚠️ Erreur indexation brands_by_slug: %v", err)
	}

	database.RedisClient.Del(ctx, "brands:all")

	c.JSON(http.StatusCreated, gin.H{"message": "Marque créée", "brand": b})
}

// UpdateBrand renomme une marque ou change son logo (le slug ne bouge pas)
func UpdateBrand(c *gin.Context) {
	brandID := c.Param("id")

	brandUUID, err := gocql.ParseUUID(brandID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de marque invalide"})
		return
	}

	var req struct {
		Name    *string `json:"name"`
		LogoURL *string `json:"logo_url"`
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

	var b models.Brand
	if err := session.Query(`SELECT brand_id, name, slug, logo_url, created_at FROM brands WHERE brand_id = ?`,
		brandUUID).Scan(&b.ID, &b.Name, &b.Slug, &b.LogoURL, &b.CreatedAt); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Marque introuvable"})
		return
	}

	if req.Name != nil {
		b.Name = *req.Name
	}
	if req.LogoURL != nil {
		b.LogoURL = *req.LogoURL
	}

	if err := session.Query(`UPDATE brands SET name = ?, logo_url = ? WHERE brand_id = ?`,
		b.Name, b.LogoURL, b.ID).Exec(); err != nil {
		log.Printf("❌ Erreur mise à jour marque: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour marque"})
		return
	}

	database.RedisClient.Del(ctx, "brands:all")

	c.JSON(http.StatusOK, gin.H{"message": "Marque mise à jour", "brand": b})
}

// DeleteBrand supprime une marque si aucun produit ne l'utilise
func DeleteBrand(c *gin.Context) {
	brandID := c.Param("id")

	brandUUID, err := gocql.ParseUUID(brandID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de marque invalide"})
		return
	}

	session, err := database.GetCatalogSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var slug string
	if err := session.Query(`SELECT slug FROM brands WHERE brand_id = ?`, brandUUID).Scan(&slug); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Marque introuvable"})
		return
	}

	var count int
	if err := session.Query(`SELECT COUNT(*) FROM products WHERE brand_id = ? ALLOW FILTERING`,
		brandUUID).Scan(&count); err != nil {
		log.Printf("❌ Erreur comptage produits: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur vérification des produits"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Des produits utilisent encore cette marque", "products": count})
		return
	}

	if err := session.Query(`DELETE FROM brands WHERE brand_id = ?`, brandUUID).Exec(); err != nil {
		log.Printf("❌ Erreur suppression marque: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression marque"})
		return
	}
	if err := session.Query(`DELETE FROM brands_by_slug WHERE slug = ?`, slug).Exec(); err != nil {
		log.Printf("⚠️ Erreur nettoyage brands_by_slug: %v", err)
	}

	database.RedisClient.Del(ctx, "brands:all")

	c.JSON(http.StatusOK, gin.H{"message": "Marque supprimée"})
}
