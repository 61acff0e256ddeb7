package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"tecshop_backend/internal/database"

	"github.com/redis/go-redis/v9"
)

var ctx = context.Background()

// --- Refresh Tokens ---

// StoreRefreshToken stocke un refresh token pour un utilisateur
func StoreRefreshToken(userID, refreshToken string, duration time.Duration) error {
	key := fmt.Sprintf("refresh:%s", userID)
	return database.Redis.Set(ctx, key, refreshToken, duration).Err()
}

// GetRefreshToken récupère le refresh token d'un utilisateur
func GetRefreshToken(userID string) (string, error) {
	key := fmt.Sprintf("refresh:%s", userID)
	return database.Redis.Get(ctx, key).Result()
}

// DeleteRefreshToken supprime le refresh token (logout)
func DeleteRefreshToken(userID string) error {
	key := fmt.Sprintf("refresh:%s", userID)
	return database.Redis.Del(ctx, key).Err()
}

// --- Blacklist JWT (révocation avant expiration) ---

// BlacklistToken ajoute un token JWT à la blacklist
func BlacklistToken(tokenID string, duration time.Duration) error {
	key := fmt.Sprintf("blacklist:%s", tokenID)
	return database.Redis.Set(ctx, key, "revoked", duration).Err()
}

// IsTokenBlacklisted vérifie si un token est blacklisté
func IsTokenBlacklisted(tokenID string) bool {
	key := fmt.Sprintf("blacklist:%s", tokenID)
	exists, err := database.Redis.Exists(ctx, key).Result()
	if err != nil {
		log.Printf("⚠️ Erreur vérification blacklist: %v", err)
		return false
	}
	return exists > 0
}

// --- Cache générique ---

// SetCache stocke une valeur dans le cache
func SetCache(key string, value interface{}, duration time.Duration) error {
	return database.Redis.Set(ctx, key, value, duration).Err()
}

// GetCache récupère une valeur du cache
func GetCache(key string) (string, error) {
	return database.Redis.Get(ctx, key).Result()
}

// DeleteCache supprime une clé du cache
func DeleteCache(key string) error {
	return database.Redis.Del(ctx, key).Err()
}

// InvalidatePattern supprime toutes les clés correspondant au pattern
// (utilisé pour invalider les listes de produits d'une boutique après écriture)
func InvalidatePattern(pattern string) error {
	keys, err := database.Redis.Keys(ctx, pattern).Result()
	if err != nil {
		return err
	}
	if len(keys) > 0 {
		return database.Redis.Del(ctx, keys...).Err()
	}
	return nil
}

// --- Rate Limiting Global ---

// IncrementRateLimit incrémente le compteur de rate limit
func IncrementRateLimit(key string, window time.Duration) (int64, error) {
	pipe := database.Redis.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	_, err := pipe.Exec(ctx)
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// GetRateLimit récupère le compteur de rate limit
func GetRateLimit(key string) (int64, error) {
	val, err := database.Redis.Get(ctx, key).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return val, err
}
