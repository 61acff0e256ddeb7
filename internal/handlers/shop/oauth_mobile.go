package shop

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tecshop_backend/internal/auth"
	"tecshop_backend/internal/cache"
	"tecshop_backend/internal/config"
	"tecshop_backend/internal/database"
	"tecshop_backend/internal/models"
	"tecshop_backend/internal/utils"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleMobileExchange échange un code d'autorisation Google côté serveur.
// Le flow gothic repose sur un cookie de session: les apps natives passent
// par cet endpoint à la place.
func GoogleMobileExchange(c *gin.Context) {
	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Code d'autorisation manquant"})
		return
	}

	provider := auth.OAuthProvider{Name: "google", Config: config.GoogleOAuthConfig}

	token, err := provider.Exchange(req.Code)
	if err != nil {
		log.Printf("❌ Erreur échange code Google: %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Code d'autorisation invalide"})
		return
	}

	// Récupérer le profil Google avec le token
	client := provider.Config.Client(c.Request.Context(), token)
	resp, err := client.Get(googleUserInfoURL)
	if err != nil {
		log.Printf("❌ Erreur userinfo Google: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Impossible de récupérer le profil Google"})
		return
	}
	defer resp.Body.Close()

	var profile struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil || profile.Email == "" {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Profil Google illisible"})
		return
	}

	email := strings.ToLower(profile.Email)

	user, err := loadUserByEmail(email)
	if err != nil {
		session, err := database.GetUsersSession()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
			return
		}

		now := time.Now()
		user = models.User{
			ID:         uuid.New().String(),
			Email:      email,
			Name:       profile.Name,
			Role:       "customer",
			Provider:   "google",
			ProviderID: profile.ID,
			CreatedAt:  now,
			UpdatedAt:  now,
		}

		if err := session.Query(`
			INSERT INTO users (user_id, email, password, name, role, provider, provider_id, shop_id, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, user.ID, user.Email, "", user.Name, user.Role, user.Provider, user.ProviderID,
			user.ShopID, user.CreatedAt, user.UpdatedAt).Exec(); err != nil {
			log.Printf("❌ Erreur création utilisateur Google: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création du compte"})
			return
		}
		if err := session.Query(`INSERT INTO users_by_email (email, user_id) VALUES (?, ?)`, user.Email, user.ID).Exec(); err != nil {
			log.Printf("⚠️ Erreur indexation users_by_email: %v", err)
		}

		log.Printf("✅ Compte Google créé (mobile): %s", user.Email)
	}

	jwt, err := utils.GenerateJWT(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	refresh := utils.GenerateRefreshToken()
	if err := cache.StoreRefreshToken(user.ID, refresh, refreshTokenTTL); err != nil {
		log.Printf("⚠️ Refresh token non stocké: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"token":         jwt,
		"refresh_token": refresh,
		"user":          user,
	})
}
