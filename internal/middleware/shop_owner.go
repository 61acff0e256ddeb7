package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ShopOwnerRequired vérifie que l'utilisateur est vendeur et possède une boutique
func ShopOwnerRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		shopID := c.GetString("shop_id")

		if role != "seller" || shopID == "" {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Accès réservé aux vendeurs disposant d'une boutique",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
