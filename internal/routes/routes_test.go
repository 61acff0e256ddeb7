package routes

import (
	"testing"

	"github.com/gin-gonic/gin"
)

// Vérifie que la table de routes expose bien toute la surface attendue,
// notamment le CRUD complet du référentiel catalogue
func TestRegisterRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r)

	registered := map[string]bool{}
	for _, route := range r.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	expected := []string{
		"GET /api/public/products",
		"GET /api/public/products/search",
		"GET /api/public/products/:id",
		"GET /api/public/products/slug/:slug",
		"GET /api/public/categories",
		"GET /api/public/categories/:id",
		"GET /api/public/brands",
		"GET /api/public/brands/:id",
		"POST /api/catalog/categories",
		"PATCH /api/catalog/categories/:id",
		"DELETE /api/catalog/categories/:id",
		"POST /api/catalog/brands",
		"PATCH /api/catalog/brands/:id",
		"DELETE /api/catalog/brands/:id",
		"POST /api/products",
		"PATCH /api/products/:id",
		"DELETE /api/products/:id",
		"POST /api/products/:id/restore",
		"PATCH /api/products/:id/variants/:variant_id",
		"POST /api/ratings/products/:id",
		"POST /api/orders/checkout",
		"POST /api/auth/google/exchange",
	}

	for _, route := range expected {
		if !registered[route] {
			t.Errorf("route manquante: %s", route)
		}
	}
}
