package main

import (
	"log"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"backend/internal/cache"
	"backend/internal/config"
	"backend/internal/database"
	"backend/internal/events"
	"backend/internal/handlers"
	"backend/internal/middleware"
	"backend/internal/sslcommerz"
)

func main() {
	config.Load()
	cfg := config.AppEnv
	logger := config.NewLogger(cfg)

	client, err := database.Connect(cfg.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(cfg.DBName)

	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureUserIndexes(db, logger); err != nil {
		log.Printf("user index warning: %v", err)
	}
	if err := database.EnsureProductIndexes(db, logger); err != nil {
		log.Printf("product index warning: %v", err)
	}
	if err := database.EnsureCartIndexes(db, logger); err != nil {
		log.Printf("cart index warning: %v", err)
	}
	if err := database.EnsureOrderIndexes(db, logger); err != nil {
		log.Printf("order index warning: %v", err)
	}
	if err := database.EnsurePaymentIndexes(db, logger); err != nil {
		log.Printf("payment index warning: %v", err)
	}
	if err := database.EnsureWishlistIndexes(db, logger); err != nil {
		log.Printf("wishlist index warning: %v", err)
	}
	if err := database.EnsureReviewIndexes(db, logger); err != nil {
		log.Printf("review index warning: %v", err)
	}

	store := cache.NewMemory(cache.SystemClock())
	gateway := sslcommerz.New(cfg.SSLCommerz, logger)

	publisher := events.NewNoop()
	if cfg.AMQPURL != "" {
		amqpPublisher, err := events.NewAMQP(cfg.AMQPURL, logger)
		if err != nil {
			log.Printf("amqp unavailable, order events disabled: %v", err)
		} else {
			publisher = amqpPublisher
		}
	}

	r := gin.Default()
	r.Use(cors.Default())
	r.Use(middleware.Prometheus())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/auth/register", handlers.Register(db, cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL))
	r.POST("/auth/login", handlers.Login(db, cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL))
	r.GET("/auth/me", middleware.UserAuth(cfg.JWTSecret), handlers.GetMe(db))
	r.POST("/auth/refresh", handlers.Refresh(db, cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL))
	r.POST("/auth/logout", handlers.Logout(db))

	r.POST("/admin/login", handlers.AdminLogin(db, cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL))

	r.GET("/products", handlers.GetProducts(db))
	r.GET("/products/campaigns", handlers.GetCampaignProducts(db))
	r.GET("/products/:id", handlers.GetProduct(db))
	r.GET("/products/:id/reviews", handlers.GetProductReviews(db))
	r.GET("/categories", handlers.GetCategories(db, store))
	r.GET("/banners", handlers.GetActiveBanners(db))
	r.GET("/blogs", handlers.GetBlogs(db))
	r.GET("/blogs/:slug", handlers.GetBlogBySlug(db))
	r.POST("/contact", handlers.SubmitContactMessage(db))

	// Gateway callbacks. The gateway posts here without a bearer token; the
	// success path re-validates server side before any state change.
	r.POST("/payment/success", handlers.PaymentSuccess(db, gateway, publisher, cfg))
	r.POST("/payment/fail", handlers.PaymentFail(db, publisher, cfg))
	r.POST("/payment/cancel", handlers.PaymentCancel(db, publisher, cfg))
	r.POST("/payment/ipn", handlers.PaymentIPN(db, gateway, publisher))

	cart := r.Group("/cart")
	cart.Use(middleware.UserAuth(cfg.JWTSecret))
	{
		cart.GET("", handlers.GetCart(db))
		cart.POST("/items", handlers.AddCartItem(db))
		cart.PUT("/items", handlers.UpdateCartItem(db))
		cart.DELETE("/items/:productId", handlers.RemoveCartItem(db))
		cart.DELETE("", handlers.ClearCart(db))
	}

	orders := r.Group("/orders")
	orders.Use(middleware.UserAuth(cfg.JWTSecret))
	{
		orders.POST("", handlers.CreateOrder(db, publisher))
		orders.GET("", handlers.GetMyOrders(db))
		orders.GET("/:orderId", handlers.GetOrder(db))
		orders.POST("/:orderId/payment", handlers.InitPayment(db, gateway, cfg))
	}

	user := r.Group("/user")
	user.Use(middleware.UserAuth(cfg.JWTSecret))
	{
		user.GET("/addresses", handlers.GetUserAddresses(db))
		user.POST("/addresses", handlers.CreateUserAddress(db))
		user.PUT("/addresses/:id", handlers.UpdateUserAddress(db))
		user.DELETE("/addresses/:id", handlers.DeleteUserAddress(db))

		user.GET("/wishlist", handlers.GetWishlist(db))
		user.POST("/wishlist", handlers.AddWishlistItem(db))
		user.DELETE("/wishlist/:productId", handlers.RemoveWishlistItem(db))

		user.POST("/products/:id/reviews", handlers.CreateReview(db))
		user.DELETE("/reviews/:reviewId", handlers.DeleteReview(db))
	}

	admin := r.Group("/admin/api")
	admin.Use(middleware.AdminAuth(cfg.JWTSecret))
	{
		admin.GET("/me", func(c *gin.Context) {
			c.JSON(200, gin.H{"ok": true})
		})

		admin.GET("/products", handlers.GetAdminProducts(db))
		admin.POST("/products", handlers.CreateProduct(db))
		admin.PUT("/products/:id", handlers.UpdateProduct(db))
		admin.DELETE("/products/:id", handlers.DeleteProduct(db))

		admin.GET("/categories", handlers.GetAllCategories(db))
		admin.POST("/categories", handlers.CreateCategory(db, store))
		admin.PUT("/categories/:id", handlers.UpdateCategory(db, store))
		admin.DELETE("/categories/:id", handlers.DeleteCategory(db, store))

		admin.GET("/orders", handlers.GetAllOrders(db))
		admin.GET("/payments", handlers.GetPayments(db))
		admin.PUT("/orders/:orderId/status", handlers.UpdateOrderStatus(db))
		admin.DELETE("/orders/:orderId", handlers.DeleteOrder(db))

		admin.GET("/banners", handlers.GetAllBanners(db))
		admin.POST("/banners", handlers.CreateBanner(db))
		admin.PUT("/banners/:id", handlers.UpdateBanner(db))
		admin.DELETE("/banners/:id", handlers.DeleteBanner(db))

		admin.POST("/blogs", handlers.CreateBlog(db))
		admin.PUT("/blogs/:id", handlers.UpdateBlog(db))
		admin.DELETE("/blogs/:id", handlers.DeleteBlog(db))

		admin.GET("/contact-messages", handlers.GetContactMessages(db))
		admin.PUT("/contact-messages/:id/read", handlers.MarkContactMessageRead(db))
	}

	defer publisher.Close()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r.Run(":" + port)
}
