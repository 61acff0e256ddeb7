package catalog

import (
	"context"
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

var ctx = context.Background()

// GetCategories liste toutes les catégories (cache Redis 1h)
func GetCategories(c *gin.Context) {
	if val, err := database.RedisClient.Get(ctx, "categories:all").Result(); err == nil && val != "" {
		var cached []models.Category
		if err := json.Unmarshal([]byte(val), &cached); err == nil {
			c.JSON(http.StatusOK, gin.H{"categories": cached, "cached": true})
			return
		}
	}

	session, err := database.GetCatalogSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := session.Query(`SELECT category_id, name, slug, description, created_at FROM categories`).Iter()

	var categories []models.Category
	var cat models.Category
	for iter.Scan(&cat.ID, &cat.Name, &cat.Slug, &cat.Description, &cat.CreatedAt) {
		categories = append(categories, cat)
		cat = models.Category{}
	}
	if err := iter.Close(); err != nil {
		log.Printf("❌ Erreur lecture catégories: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture catégories"})
		return
	}

	if data, err := json.Marshal(categories); err == nil {
		database.RedisClient.Set(ctx, "categories:all", data, time.Hour)
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// GetCategory renvoie une catégorie par son ID
func GetCategory(c *gin.Context) {
	categoryUUID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de catégorie invalide"})
		return
	}

	session, err := database.GetCatalogSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var cat models.Category
	if err := session.Query(`SELECT category_id, name, slug, description, created_at FROM categories WHERE category_id = ?`,
		categoryUUID).Scan(&cat.ID, &cat.Name, &cat.Slug, &cat.Description, &cat.CreatedAt); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Catégorie introuvable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"category": cat})
}

// CreateCategory ajoute une catégorie (admin)
func CreateCategory(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required,min=2,max=100"`
		Description string `json:"description"`
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

	// ✅ Unicité du slug
	var existing gocql.UUID
	if err := session.Query(`SELECT category_id FROM categories_by_slug WHERE slug = ?`, slug).Scan(&existing); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Une catégorie avec ce nom existe déjà"})
		return
	}

	cat := models.Category{
		ID:          gocql.TimeUUID(),
		Name:        req.Name,
		Slug:        slug,
		Description: req.Description,
		CreatedAt:   time.Now(),
	}

	if err := session.Query(`INSERT INTO categories (category_id, name, slug, description, created_at) VALUES (?, ?, ?, ?, ?)`,
		cat.ID, cat.Name, cat.Slug, cat.Description, cat.CreatedAt).Exec(); err != nil {
		log.Printf("❌ Erreur création catégorie: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création catégorie"})
		return
	}
	if err := session.Query(`INSERT INTO categories_by_slug (slug, category_id) VALUES (?, ?)`, cat.Slug, cat.ID).Exec(); err != nil {
		log.Printf("⚠️ Erreur indexation categories_by_slug: %v", err)
	}

	database.RedisClient.Del(ctx, "categories:all")

	c.JSON(http.StatusCreated, gin.H{"message": "Catégorie créée", "category": cat})
}

// UpdateCategory renomme une catégorie (le slug ne bouge pas)
func UpdateCategory(c *gin.Context) {
	categoryID := c.Param("id")

	categoryUUID, err := gocql.ParseUUID(categoryID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de catégorie invalide"})
		return
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
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

	var cat models.Category
	if err := session.Query(`SELECT category_id, name, slug, description, created_at FROM categories WHERE category_id = ?`,
		categoryUUID).Scan(&cat.ID, &cat.Name, &cat.Slug, &cat.Description, &cat.CreatedAt); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Catégorie introuvable"})
		return
	}

	if req.Name != nil {
		cat.Name = *req.Name
	}
	if req.Description != nil {
		cat.Description = *req.Description
	}

	if err := session.Query(`UPDATE categories SET name = ?, description = ? WHERE category_id = ?`,
		cat.Name, cat.Description, cat.ID).Exec(); err != nil {
		log.Printf("❌ Erreur mise à jour catégorie: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour catégorie"})
		return
	}

	database.RedisClient.Del(ctx, "categories:all")

	c.JSON(http.StatusOK, gin.H{"message": "Catégorie mise à jour", "category": cat})
}

// DeleteCategory supprime une catégorie si aucun produit ne l'utilise
func DeleteCategory(c *gin.Context) {
	categoryID := c.Param("id")

	categoryUUID, err := gocql.ParseUUID(categoryID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de catégorie invalide"})
		return
	}

	session, err := database.GetCatalogSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var slug string
	if err := session.Query(`SELECT slug FROM categories WHERE category_id = ?`, categoryUUID).Scan(&slug); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Catégorie introuvable"})
		return
	}

	// ⚠️ Garde-fou: refuse la suppression si des produits y sont rattachés
	var count int
	if err := session.Query(`SELECT COUNT(*) FROM products WHERE category_id = ? ALLOW FILTERING`,
		categoryUUID).Scan(&count); err != nil {
		log.Printf("❌ Erreur comptage produits: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur vérification des produits"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Des produits utilisent encore cette catégorie", "products": count})
		return
	}

	if err := session.Query(`DELETE FROM categories WHERE category_id = ?`, categoryUUID).Exec(); err != nil {
		log.Printf("❌ Erreur suppression catégorie: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression catégorie"})
		return
	}
	if err := session.Query(`DELETE FROM categories_by_slug WHERE slug = ?`, slug).Exec(); err != nil {
		log.Printf("⚠️ Erreur nettoyage categories_by_slug: %v", err)
	}

	database.RedisClient.Del(ctx, "categories:all")

	c.JSON(http.StatusOK, gin.H{"message": "Catégorie supprimée"})
}
