package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func signTestToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(jwtSecret())
	if err != nil {
		t.Fatal(err)
	}
	return signed
}

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", AuthRequired(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetString("user_id"),
			"shop_id": c.GetString("shop_id"),
		})
	})
	return r
}

func TestAuthRequiredSansToken(t *testing.T) {
	r := setupRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("sans token: status %d, attendu 401", w.Code)
	}
}

func TestAuthRequiredFormatInvalide(t *testing.T) {
	r := setupRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Basic abc123")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("mauvais schéma: status %d, attendu 401", w.Code)
	}
}

func TestAuthRequiredTokenValide(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret-de-test")
	r := setupRouter()

	token := signTestToken(t, jwt.MapClaims{
		"user_id": "user-42",
		"email":   "test@tecshop.io",
		"role":    "seller",
		"shop_id": "11111111-2222-3333-4444-555555555555",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("token valide: status %d, body %s", w.Code, w.Body.String())
	}
}

func TestAuthRequiredTokenExpire(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret-de-test")
	r := setupRouter()

	token := signTestToken(t, jwt.MapClaims{
		"user_id": "user-42",
		"email":   "test@tecshop.io",
		"role":    "customer",
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("token expiré: status %d, attendu 401", w.Code)
	}
}

func TestAuthRequiredMauvaiseSignature(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret-de-test")
	r := setupRouter()

	autre := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user-42",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	token, err := autre.SignedString([]byte("autre-secret"))
	if err != nil {
		t.Fatal(err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("signature invalide: status %d, attendu 401", w.Code)
	}
}

func TestShopOwnerRequired(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name   string
		role   string
		shopID string
		want   int
	}{
		{"vendeur avec boutique", "seller", "11111111-2222-3333-4444-555555555555", http.StatusOK},
		{"vendeur sans boutique", "seller", "", http.StatusForbidden},
		{"acheteur", "customer", "", http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/seller", func(c *gin.Context) {
				c.Set("role", tc.role)
				if tc.shopID != "" {
					c.Set("shop_id", tc.shopID)
				}
			}, ShopOwnerRequired(), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/seller", nil)
			r.ServeHTTP(w, req)

			if w.Code != tc.want {
				t.Errorf("status %d, attendu %d", w.Code, tc.want)
			}
		})
	}
}
