package product

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"tecshop_backend/internal/database"
	"tecshop_backend/internal/models"
	"tecshop_backend/internal/services"
)

// SearchPublicProducts cherche des produits via Elasticsearch.
// Si l'index est indisponible, on retombe sur un scan Scylla filtré en mémoire.
func SearchPublicProducts(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Paramètre q manquant"})
		return
	}

	results, err := services.SearchProducts(q)
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"results": results, "total": len(results), "source": "elasticsearch"})
		return
	}

	log.Printf("⚠️ Elastic indisponible, fallback Scylla: %v", err)

	session, err := database.GetCatalogSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := session.Query(`SELECT ` + productColumns + ` FROM products`).Iter()

	var products []models.Product
	var p models.Product
	for scanProduct(iter, &p) {
		products = append(products, p)
		p = models.Product{}
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture produits"})
		return
	}

	products = filterVisible(products)
	products = filterByQuery(products, q)

	c.JSON(http.StatusOK, gin.H{"results": products, "total": len(products), "source": "scylladb"})
}
