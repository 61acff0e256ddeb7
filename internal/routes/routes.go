package routes

import (
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"tecshop_backend/internal/handlers/catalog"
	"tecshop_backend/internal/handlers/notification"
	"tecshop_backend/internal/handlers/order"
	"tecshop_backend/internal/handlers/product"
	"tecshop_backend/internal/handlers/shop"
	"tecshop_backend/internal/middleware"
)

// RegisterRoutes branche toutes les routes de l'API
func RegisterRoutes(r *gin.Engine) {
	allowedOrigins := []string{"http://localhost:3000"}
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		allowedOrigins = strings.Split(origins, ",")
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	api.Use(middleware.APIRateLimit())

	// --- Authentification ---
	auth := api.Group("/auth")
	{
		auth.POST("/register", middleware.RegisterRateLimit(), shop.Register)
		auth.POST("/login", middleware.LoginRateLimit(), shop.Login)
		auth.POST("/refresh", shop.RefreshToken)
		auth.POST("/logout", middleware.AuthRequired(), shop.Logout)
		auth.GET("/me", middleware.AuthRequired(), shop.Me)

		// OAuth (Google / Facebook)
		auth.POST("/google/exchange", shop.GoogleMobileExchange)
		auth.GET("/:provider", shop.OAuthBegin)
		auth.GET("/:provider/callback", shop.OAuthCallback)
	}

	// --- Storefront public ---
	public := api.Group("/public")
	{
		public.GET("/products", product.GetPublicProducts)
		public.GET("/products/search", product.SearchPublicProducts)
		public.GET("/products/:id", product.GetProduct)
		public.GET("/products/:id/ratings", product.GetProductRatings)
		public.GET("/products/:id/variants", product.GetVariants)
		public.GET("/products/:id/images", product.GetProductImageURLs)
		public.GET("/products/slug/:slug", product.GetProductBySlug)
		public.GET("/categories", catalog.GetCategories)
		public.GET("/categories/:id", catalog.GetCategory)
		public.GET("/brands", catalog.GetBrands)
		public.GET("/brands/:id", catalog.GetBrand)
		public.GET("/shops/:slug", shop.GetShopBySlug)
	}

	// --- Gestion produits (vendeur avec boutique) ---
	products := api.Group("/products")
	products.Use(middleware.AuthRequired(), middleware.ShopOwnerRequired())
	{
		products.POST("", product.CreateProduct)
		products.GET("/mine", product.GetMyProducts)
		products.PATCH("/:id", product.UpdateProduct)
		products.DELETE("/:id", product.SoftDeleteProduct)
		products.POST("/:id/restore", product.RestoreProduct)
		products.POST("/:id/variants", product.AddVariant)
		products.PATCH("/:id/variants/:variant_id", product.UpdateVariant)
		products.DELETE("/:id/variants/:variant_id", product.DeleteVariant)
		products.POST("/:id/images", product.UploadProductImage)
		products.DELETE("/:id/images", product.RemoveProductImage)
	}

	// --- Avis (acheteur connecté) ---
	ratings := api.Group("/ratings")
	ratings.Use(middleware.AuthRequired())
	{
		ratings.POST("/products/:id", product.RateProduct)
		ratings.DELETE("/products/:id", product.DeleteMyRating)
	}

	// --- Référentiel catalogue (admin) ---
	admin := api.Group("/catalog")
	admin.Use(middleware.AuthRequired(), middleware.RequireAdmin)
	{
		admin.POST("/categories", catalog.CreateCategory)
		admin.PATCH("/categories/:id", catalog.UpdateCategory)
		admin.DELETE("/categories/:id", catalog.DeleteCategory)
		admin.POST("/brands", catalog.CreateBrand)
		admin.PATCH("/brands/:id", catalog.UpdateBrand)
		admin.DELETE("/brands/:id", catalog.DeleteBrand)
	}

	// --- Boutiques ---
	shops := api.Group("/shops")
	shops.Use(middleware.AuthRequired())
	{
		shops.POST("", shop.CreateShop)
		shops.GET("/me", middleware.ShopOwnerRequired(), shop.GetMyShop)
		shops.PATCH("/me", middleware.ShopOwnerRequired(), shop.UpdateShop)
		shops.GET("/me/dashboard", middleware.ShopOwnerRequired(), shop.GetShopDashboard)
		shops.GET("/me/orders", middleware.ShopOwnerRequired(), order.GetShopOrders)
		shops.PATCH("/me/orders/:id", middleware.ShopOwnerRequired(), order.UpdateOrderStatus)
	}

	// --- Commandes (acheteur) ---
	orders := api.Group("/orders")
	orders.Use(middleware.AuthRequired())
	{
		orders.POST("/checkout", order.Checkout)
		orders.GET("", order.GetMyOrders)
		orders.GET("/:id", order.GetOrderByID)
		orders.GET("/:id/invoice", order.DownloadInvoice)
		orders.POST("/:id/invoice/email", order.EmailInvoice)
	}

	// --- Notifications ---
	notifications := api.Group("/notifications")
	notifications.Use(middleware.AuthRequired())
	{
		notifications.GET("", notification.GetMyNotifications)
		notifications.GET("/unread", notification.GetUnreadCount)
		notifications.POST("/:id/read", notification.MarkAsRead)
		notifications.POST("/read-all", notification.MarkAllAsRead)
		notifications.GET("/ws", notification.NotificationsWebSocket)
	}
}
