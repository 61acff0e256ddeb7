package product

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"tecshop_backend/internal/database"
	"tecshop_backend/internal/services"
)

// UploadProductImage téléverse une image dans MinIO et l'attache au produit
func UploadProductImage(c *gin.Context) {
	productID := c.Param("id")
	shopIDStr := c.GetString("shop_id")

	productUUID, err := gocql.ParseUUID(productID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image manquante"})
		return
	}

	if fileHeader.Size > 10<<20 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image trop lourde (max 10 Mo)"})
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	switch contentType {
	case "image/jpeg", "image/png", "image/webp":
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Format non supporté (jpeg, png ou webp)"})
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

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de lire le fichier"})
		return
	}
	defer file.Close()

	ext := filepath.Ext(fileHeader.Filename)
	objectName := fmt.Sprintf("products/%d%s", time.Now().UnixNano(), ext)

	path, err := services.UploadFile(objectName, file, fileHeader.Size, contentType)
	if err != nil {
		log.Printf("❌ Erreur upload MinIO: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur téléversement image"})
		return
	}

	imageURLs := append(p.ImageURLs, path)
	if err := session.Query(`UPDATE products SET image_urls = ?, updated_at = ? WHERE product_id = ?`,
		imageURLs, time.Now(), p.ID).Exec(); err != nil {
		log.Printf("❌ Erreur mise à jour image_urls: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour produit"})
		return
	}

	go invalidateProductCache(p)

	log.Printf("🪣 Image ajoutée au produit %s: %s", p.ID, path)
	c.JSON(http.StatusCreated, gin.H{"message": "Image téléversée", "path": path})
}

// GetProductImageURLs renvoie des URLs signées (1h) pour les images du produit
func GetProductImageURLs(c *gin.Context) {
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

	var imageURLs []string
	if err := session.Query(`SELECT image_urls FROM products WHERE product_id = ?`, productUUID).Scan(&imageURLs); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	ctx := context.Background()
	signed := make([]string, 0, len(imageURLs))
	for _, path := range imageURLs {
		u, err := services.GenerateSignedURL(ctx, path, time.Hour)
		if err != nil {
			log.Printf("⚠️ URL signée impossible pour %s: %v", path, err)
			continue
		}
		signed = append(signed, u)
	}

	c.JSON(http.StatusOK, gin.H{"urls": signed})
}

// RemoveProductImage détache une image du produit (l'objet MinIO reste)
func RemoveProductImage(c *gin.Context) {
	productID := c.Param("id")
	shopIDStr := c.GetString("shop_id")

	productUUID, err := gocql.ParseUUID(productID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	var req struct {
		Path string `json:"path" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Chemin d'image manquant"})
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

	kept := make([]string, 0, len(p.ImageURLs))
	removed := false
	for _, path := range p.ImageURLs {
		if path == req.Path {
			removed = true
			continue
		}
		kept = append(kept, path)
	}

	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "Image introuvable sur ce produit"})
		return
	}

	if err := session.Query(`UPDATE products SET image_urls = ?, updated_at = ? WHERE product_id = ?`,
		kept, time.Now(), p.ID).Exec(); err != nil {
		log.Printf("❌ Erreur mise à jour image_urls: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour produit"})
		return
	}

	go invalidateProductCache(p)

	c.JSON(http.StatusOK, gin.H{"message": "Image retirée"})
}
