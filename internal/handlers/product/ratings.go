package product

import (
	"encoding/json"
	"errors"
	"log"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"tecshop_backend/internal/database"
	"tecshop_backend/internal/models"
)

// maxRatingRetries borne la boucle de réécriture conditionnelle de l'agrégat
const maxRatingRetries = 5

// errRatingConflict : l'agrégat a été modifié par un autre avis à chaque
// tentative de réécriture conditionnelle
var errRatingConflict = errors.New("agrégat de notes: conflit persistant")

// RateProduct enregistre ou remplace la note de l'utilisateur sur un produit,
// puis recalcule average_rating/rating_count sur la ligne produit.
//
// L'agrégat est réécrit via un UPDATE conditionnel (LWT): si un autre avis est
// passé entre la lecture et l'écriture, on relit les avis et on réessaie.
func RateProduct(c *gin.Context) {
	productID := c.Param("id")
	userID := c.GetString("user_id")
	userName := c.GetString("email")

	productUUID, err := gocql.ParseUUID(productID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	var req struct {
		Rating  int    `json:"rating" binding:"required,min=1,max=5"`
		Comment string `json:"comment" binding:"max=2000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "La note doit être comprise entre 1 et 5"})
		return
	}

	session, err := database.GetCatalogSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	// Produit visible uniquement
	var p models.Product
	iter := session.Query(`SELECT `+productColumns+` FROM products WHERE product_id = ?`, productUUID).Iter()
	found := scanProduct(iter, &p)
	if err := iter.Close(); err != nil || !found || p.DeletedAt != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	// ✅ Achat vérifié: l'utilisateur doit avoir commandé ce produit
	verified, err := hasPurchased(userID, productUUID)
	if err != nil {
		log.Printf("⚠️ Vérification achat impossible: %v", err)
	}
	if !verified {
		c.JSON(http.StatusForbidden, gin.H{"error": "Vous devez avoir acheté ce produit pour le noter"})
		return
	}

	now := time.Now()

	// Upsert: la clé (product_id, user_id) garantit un seul avis par utilisateur
	if err := session.Query(`
		INSERT INTO ratings_by_product (product_id, user_id, user_name, rating, comment, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, productUUID, userID, userName, req.Rating, req.Comment, now, now).Exec(); err != nil {
		log.Printf("❌ Erreur enregistrement avis: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur enregistrement avis"})
		return
	}

	avg, count, err := recomputeRatingSummary(session, productUUID)
	if err != nil {
		log.Printf("❌ Erreur recalcul agrégat: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur recalcul de la note moyenne"})
		return
	}

	go invalidateProductCache(p)

	c.JSON(http.StatusOK, gin.H{
		"message":        "Avis enregistré",
		"average_rating": avg,
		"rating_count":   count,
	})
}

// recomputeRatingSummary relit tous les avis, calcule l'agrégat et le réécrit
// conditionnellement sur la ligne produit
func recomputeRatingSummary(session *gocql.Session, productID gocql.UUID) (float64, int, error) {
	var lastErr error

	for attempt := 0; attempt < maxRatingRetries; attempt++ {
		// Valeur courante de l'agrégat (condition du LWT)
		var curAvg float64
		var curCount int
		if err := session.Query(`SELECT average_rating, rating_count FROM products WHERE product_id = ?`,
			productID).Scan(&curAvg, &curCount); err != nil {
			return 0, 0, err
		}

		ratings, err := loadRatings(session, productID)
		if err != nil {
			return 0, 0, err
		}

		avg, count := computeRatingSummary(ratings)

		applied, err := session.Query(`
			UPDATE products SET average_rating = ?, rating_count = ?
			WHERE product_id = ? IF average_rating = ? AND rating_count = ?
		`, avg, count, productID, curAvg, curCount).ScanCAS(&curAvg, &curCount)
		if err != nil {
			lastErr = err
			continue
		}
		if applied {
			return avg, count, nil
		}
		// L'agrégat a bougé entre temps, on relit et on réessaie
	}

	if lastErr == nil {
		lastErr = errRatingConflict
	}
	return 0, 0, lastErr
}

// computeRatingSummary calcule la moyenne (2 décimales) et le nombre d'avis
func computeRatingSummary(ratings []models.Rating) (float64, int) {
	if len(ratings) == 0 {
		return 0, 0
	}

	sum := 0
	for _, r := range ratings {
		sum += r.Rating
	}

	avg := float64(sum) / float64(len(ratings))
	return math.Round(avg*100) / 100, len(ratings)
}

func loadRatings(session *gocql.Session, productID gocql.UUID) ([]models.Rating, error) {
	iter := session.Query(`
		SELECT product_id, user_id, user_name, rating, comment, created_at, updated_at
		FROM ratings_by_product WHERE product_id = ?
	`, productID).Iter()

	var ratings []models.Rating
	var r models.Rating
	for iter.Scan(&r.ProductID, &r.UserID, &r.UserName, &r.Rating, &r.Comment, &r.CreatedAt, &r.UpdatedAt) {
		ratings = append(ratings, r)
		r = models.Rating{}
	}
	return ratings, iter.Close()
}

// hasPurchased vérifie dans les commandes de l'utilisateur qu'il a acheté ce produit
func hasPurchased(userID string, productID gocql.UUID) (bool, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return false, err
	}

	iter := session.Query(`SELECT items FROM orders_by_user WHERE user_id = ?`, userID).Iter()

	var itemsJSON string
	for iter.Scan(&itemsJSON) {
		var items []models.OrderItem
		if err := json.Unmarshal([]byte(itemsJSON), &items); err != nil {
			continue
		}
		for _, item := range items {
			if item.ProductID == productID.String() {
				iter.Close()
				return true, nil
			}
		}
	}
	return false, iter.Close()
}

// GetProductRatings liste les avis d'un produit
func GetProductRatings(c *gin.Context) {
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

	ratings, err := loadRatings(session, productUUID)
	if err != nil {
		log.Printf("❌ Erreur lecture avis: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture avis"})
		return
	}

	avg, count := computeRatingSummary(ratings)

	c.JSON(http.StatusOK, gin.H{
		"ratings":        ratings,
		"average_rating": avg,
		"rating_count":   count,
	})
}

// DeleteMyRating retire l'avis de l'utilisateur connecté et recalcule l'agrégat
func DeleteMyRating(c *gin.Context) {
	productID := c.Param("id")
	userID := c.GetString("user_id")

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

	if err := session.Query(`DELETE FROM ratings_by_product WHERE product_id = ? AND user_id = ?`,
		productUUID, userID).Exec(); err != nil {
		log.Printf("❌ Erreur suppression avis: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression avis"})
		return
	}

	avg, count, err := recomputeRatingSummary(session, productUUID)
	if err != nil {
		log.Printf("⚠️ Recalcul agrégat après suppression: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "Avis supprimé",
		"average_rating": avg,
		"rating_count":   count,
	})
}
