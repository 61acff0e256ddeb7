package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"tecshop_backend/internal/database"

	"github.com/gin-gonic/gin"
)

const (
	// Limites par endpoint
	LoginMaxAttempts    = 5
	RegisterMaxAttempts = 3
	APIMaxRequests      = 100 // Par minute pour les endpoints généraux

	// Durées de cooldown
	LoginCooldown    = 15 * time.Minute
	RegisterCooldown = 30 * time.Minute
	APICooldown      = 1 * time.Minute
)

// LoginRateLimit limite les tentatives de connexion par email
func LoginRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Lire le body sans le consommer
		bodyBytes, _ := io.ReadAll(c.Request.Body)

		var input struct {
			Email string `json:"email"`
		}

		if err := json.Unmarshal(bodyBytes, &input); err != nil || input.Email == "" {
			c.Next()
			return
		}

		// Remettre le body pour les handlers suivants
		c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

		ctx := context.Background()
		key := "login_attempts:" + input.Email

		// Vérifier si l'utilisateur est en cooldown
		cooldownKey := "login_cooldown:" + input.Email
		if database.Redis.Exists(ctx, cooldownKey).Val() > 0 {
			ttl := database.Redis.TTL(ctx, cooldownKey).Val()
			minutes := int(ttl.Minutes())
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       fmt.Sprintf("Trop de tentatives échouées. Réessayez dans %d minutes", minutes),
				"retry_after": int(ttl.Seconds()),
			})
			c.Abort()
			return
		}

		// Vérifier le nombre de tentatives
		attempts, _ := database.Redis.Get(ctx, key).Int()
		if attempts >= LoginMaxAttempts {
			// Activer le cooldown
			database.Redis.Set(ctx, cooldownKey, "1", LoginCooldown)
			database.Redis.Del(ctx, key)

			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       fmt.Sprintf("Trop de tentatives échouées. Compte bloqué pendant %d minutes", int(LoginCooldown.Minutes())),
				"retry_after": int(LoginCooldown.Seconds()),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// RecordFailedLogin enregistre une tentative de connexion échouée
func RecordFailedLogin(email string) {
	ctx := context.Background()
	key := "login_attempts:" + email
	database.Redis.Incr(ctx, key)
	database.Redis.Expire(ctx, key, LoginCooldown)
}

// ClearLoginAttempts remet à zéro le compteur après une connexion réussie
func ClearLoginAttempts(email string) {
	ctx := context.Background()
	database.Redis.Del(ctx, "login_attempts:"+email)
}

// RegisterRateLimit limite les créations de compte par IP
func RegisterRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()
		ip := c.ClientIP()
		key := "register_attempts:" + ip

		attempts, _ := database.Redis.Get(ctx, key).Int()
		if attempts >= RegisterMaxAttempts {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": fmt.Sprintf("Trop de créations de compte. Réessayez dans %d minutes", int(RegisterCooldown.Minutes())),
			})
			c.Abort()
			return
		}

		database.Redis.Incr(ctx, key)
		database.Redis.Expire(ctx, key, RegisterCooldown)

		c.Next()
	}
}

// APIRateLimit limite les requêtes générales par IP
func APIRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()
		ip := c.ClientIP()
		key := "api_requests:" + ip

		pipe := database.Redis.Pipeline()
		incr := pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, APICooldown)
		if _, err := pipe.Exec(ctx); err != nil {
			// Redis indisponible : on laisse passer plutôt que de bloquer tout le trafic
			c.Next()
			return
		}

		if incr.Val() > APIMaxRequests {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Trop de requêtes, ralentissez",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
