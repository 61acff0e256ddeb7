package shop

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/markbates/goth/gothic"

	"tecshop_backend/internal/cache"
	"tecshop_backend/internal/database"
	"tecshop_backend/internal/middleware"
	"tecshop_backend/internal/models"
	"tecshop_backend/internal/utils"
)

const refreshTokenTTL = 7 * 24 * time.Hour

// Register crée un compte acheteur ou vendeur
func Register(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
		Name     string `json:"name" binding:"required,min=2"`
		Role     string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	role := req.Role
	if role != "seller" {
		role = "customer"
	}

	session, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	// ✅ Email déjà pris ?
	var existingID string
	if err := session.Query(`SELECT user_id FROM users_by_email WHERE email = ?`, req.Email).Scan(&existingID); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Un compte existe déjà avec cet email"})
		return
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur hashage mot de passe"})
		return
	}

	now := time.Now()
	user := models.User{
		ID:        uuid.New().String(),
		Email:     req.Email,
		Password:  hashed,
		Name:      req.Name,
		Role:      role,
		Provider:  "local",
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := session.Query(`
		INSERT INTO users (user_id, email, password, name, role, provider, provider_id, shop_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, user.ID, user.Email, user.Password, user.Name, user.Role, user.Provider, user.ProviderID,
		user.ShopID, user.CreatedAt, user.UpdatedAt).Exec(); err != nil {
		log.Printf("❌ Erreur création utilisateur: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création du compte"})
		return
	}
	if err := session.Query(`INSERT INTO users_by_email (email, user_id) VALUES (?, ?)`, user.Email, user.ID).Exec(); err != nil {
		log.Printf("⚠️ Erreur indexation users_by_email: %v", err)
	}

	token, err := utils.GenerateJWT(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	refresh := utils.GenerateRefreshToken()
	if err := cache.StoreRefreshToken(user.ID, refresh, refreshTokenTTL); err != nil {
		log.Printf("⚠️ Refresh token non stocké: %v", err)
	}

	log.Printf("✅ Compte créé: %s (%s)", user.Email, user.Role)
	c.JSON(http.StatusCreated, gin.H{
		"message":       "Compte créé avec succès",
		"token":         token,
		"refresh_token": refresh,
		"user":          user,
	})
}

// Login authentifie par email/mot de passe.
// La vérification Argon2 réussie est mise en cache 15 min pour décharger le CPU.
func Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email et mot de passe requis"})
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	user, err := loadUserByEmail(req.Email)
	if err != nil {
		middleware.RecordFailedLogin(req.Email)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
		return
	}

	if user.Provider != "local" || user.Password == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Ce compte utilise une connexion " + user.Provider})
		return
	}

	// ⚡ Cache de vérification (évite Argon2 à chaque requête)
	valid, _ := cache.GetPasswordHashFromCache(req.Email, req.Password)
	if !valid {
		ok, err := utils.VerifyPassword(req.Password, user.Password)
		if err != nil || !ok {
			middleware.RecordFailedLogin(req.Email)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
			return
		}
		cache.SetPasswordHashInCache(req.Email, req.Password)
	}

	middleware.ClearLoginAttempts(req.Email)

	token, err := utils.GenerateJWT(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	refresh := utils.GenerateRefreshToken()
	if err := cache.StoreRefreshToken(user.ID, refresh, refreshTokenTTL); err != nil {
		log.Printf("⚠️ Refresh token non stocké: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"token":         token,
		"refresh_token": refresh,
		"user":          user,
	})
}

// RefreshToken échange un refresh token valide contre un nouveau JWT
func RefreshToken(c *gin.Context) {
	var req struct {
		UserID       string `json:"user_id" binding:"required"`
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	stored, err := cache.GetRefreshToken(req.UserID)
	if err != nil || stored != req.RefreshToken {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token invalide ou expiré"})
		return
	}

	user, err := loadUserByID(req.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur introuvable"})
		return
	}

	token, err := utils.GenerateJWT(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	// Rotation du refresh token
	refresh := utils.GenerateRefreshToken()
	if err := cache.StoreRefreshToken(user.ID, refresh, refreshTokenTTL); err != nil {
		log.Printf("⚠️ Refresh token non stocké: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "refresh_token": refresh})
}

// Logout invalide le refresh token et le cache d'authentification
func Logout(c *gin.Context) {
	userID := c.GetString("user_id")
	email := c.GetString("email")

	if err := cache.DeleteRefreshToken(userID); err != nil {
		log.Printf("⚠️ Erreur suppression refresh token: %v", err)
	}
	cache.InvalidateAuthCache(email)

	c.JSON(http.StatusOK, gin.H{"message": "Déconnecté"})
}

// Me renvoie le profil de l'utilisateur connecté
func Me(c *gin.Context) {
	userID := c.GetString("user_id")

	user, err := loadUserByID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// --- OAuth (Google / Facebook via goth) ---

// OAuthBegin démarre le flow OAuth du provider demandé
func OAuthBegin(c *gin.Context) {
	gothic.BeginAuthHandler(c.Writer, c.Request)
}

// OAuthCallback termine le flow OAuth et crée le compte au premier passage
func OAuthCallback(c *gin.Context) {
	gothUser, err := gothic.CompleteUserAuth(c.Writer, c.Request)
	if err != nil {
		log.Printf("❌ Erreur OAuth callback: %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentification externe échouée"})
		return
	}

	email := strings.ToLower(gothUser.Email)
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le provider n'a pas fourni d'email"})
		return
	}

	user, err := loadUserByEmail(email)
	if err != nil {
		// Premier passage: créer le compte
		session, err := database.GetUsersSession()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
			return
		}

		now := time.Now()
		user = models.User{
			ID:         uuid.New().String(),
			Email:      email,
			Name:       gothUser.Name,
			Role:       "customer",
			Provider:   gothUser.Provider,
			ProviderID: gothUser.UserID,
			CreatedAt:  now,
			UpdatedAt:  now,
		}

		if err := session.Query(`
			INSERT INTO users (user_id, email, password, name, role, provider, provider_id, shop_id, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, user.ID, user.Email, "", user.Name, user.Role, user.Provider, user.ProviderID,
			user.ShopID, user.CreatedAt, user.UpdatedAt).Exec(); err != nil {
			log.Printf("❌ Erreur création utilisateur OAuth: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création du compte"})
			return
		}
		if err := session.Query(`INSERT INTO users_by_email (email, user_id) VALUES (?, ?)`, user.Email, user.ID).Exec(); err != nil {
			log.Printf("⚠️ Erreur indexation users_by_email: %v", err)
		}

		log.Printf("✅ Compte OAuth créé: %s via %s", user.Email, user.Provider)
	}

	token, err := utils.GenerateJWT(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	refresh := utils.GenerateRefreshToken()
	if err := cache.StoreRefreshToken(user.ID, refresh, refreshTokenTTL); err != nil {
		log.Printf("⚠️ Refresh token non stocké: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"token":         token,
		"refresh_token": refresh,
		"user":          user,
	})
}

// --- Helpers ---

// loadUserByEmail résout email → utilisateur via la table de correspondance
func loadUserByEmail(email string) (models.User, error) {
	var user models.User

	session, err := database.GetUsersSession()
	if err != nil {
		return user, err
	}

	q := database.GetPreparedGetUserByEmail()
	if q == nil {
		q = session.Query(`SELECT user_id FROM users_by_email WHERE email = ?`)
	}

	var userID string
	if err := q.Bind(email).Scan(&userID); err != nil {
		return user, err
	}

	return loadUserByID(userID)
}

func loadUserByID(userID string) (models.User, error) {
	var user models.User
	user.ID = userID

	session, err := database.GetUsersSession()
	if err != nil {
		return user, err
	}

	q := database.GetPreparedGetUserByID()
	if q == nil {
		q = session.Query(`SELECT email, password, name, role, provider, provider_id, shop_id, created_at, updated_at
			FROM users WHERE user_id = ?`)
	}

	err = q.Bind(userID).Scan(
		&user.Email, &user.Password, &user.Name, &user.Role, &user.Provider, &user.ProviderID,
		&user.ShopID, &user.CreatedAt, &user.UpdatedAt)
	return user, err
}
