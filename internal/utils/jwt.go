package utils

import (
	"os"
	"time"

	"tecshop_backend/internal/models"

	"github.com/gocql/gocql"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func GenerateJWT(user models.User) (string, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "super_secret"
	}

	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
	}

	// shop_id uniquement pour les vendeurs avec boutique
	if user.ShopID != (gocql.UUID{}) {
		claims["shop_id"] = user.ShopID.String()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// GenerateRefreshToken génère un token opaque stocké dans Redis
func GenerateRefreshToken() string {
	return uuid.New().String()
}
