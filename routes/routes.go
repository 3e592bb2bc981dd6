package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"homechef-api/config"
	"homechef-api/handlers"
	"homechef-api/middleware"
	"homechef-api/payments"
)

func SetupRoutes(r *gin.Engine, db *gorm.DB, rdb *redis.Client, provider payments.Provider, cfg *config.Config) {
	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	{
		public.POST("/auth/register", handlers.Register(db, cfg.JWTSecret))
		public.POST("/auth/login", handlers.Login(db, cfg.JWTSecret))

		public.GET("/meals", handlers.ListMeals(db, rdb))
		public.GET("/meals/:id", handlers.GetMeal(db))
		public.GET("/meals/:id/reviews", handlers.GetMealReviews(db))

		// Provider webhook: authenticated by shared secret, not by user token
		public.POST("/payments/confirm", handlers.ConfirmPayment(db, rdb, cfg.PaymentWebhookSecret))
	}

	// ── Authenticated routes ───────────────────────────────────────
	auth := r.Group("/api")
	auth.Use(middleware.AuthRequired(cfg.JWTSecret), middleware.ResolvePrincipal(db))
	{
		auth.GET("/profile", handlers.GetProfile(db))

		auth.POST("/orders", handlers.PlaceOrder(db))
		auth.GET("/orders", handlers.GetMyOrders(db))
		auth.GET("/orders/:id", handlers.GetOrderDetail(db))
		auth.PUT("/orders/:id/cancel", handlers.CancelOrder(db))
		auth.POST("/orders/:id/checkout-session", handlers.CreateCheckoutSession(db, provider, cfg))

		auth.POST("/role-requests", handlers.CreateRoleRequest(db))
		auth.GET("/role-requests/mine", handlers.GetMyRoleRequests(db))

		auth.POST("/reviews", handlers.CreateReview(db))
		auth.GET("/reviews/mine", handlers.GetMyReviews(db))
		auth.PUT("/reviews/:id", handlers.UpdateReview(db))
		auth.DELETE("/reviews/:id", handlers.DeleteReview(db))

		auth.POST("/favorites", handlers.AddFavorite(db))
		auth.GET("/favorites", handlers.GetMyFavorites(db))
		auth.DELETE("/favorites/:id", handlers.RemoveFavorite(db))
	}

	// ── Chef routes ────────────────────────────────────────────────
	chef := r.Group("/api/chef")
	chef.Use(middleware.AuthRequired(cfg.JWTSecret), middleware.ResolvePrincipal(db), middleware.RequireChef())
	{
		chef.POST("/meals", handlers.CreateMeal(db, rdb))
		chef.GET("/meals", handlers.ListMyMeals(db))
		chef.PUT("/meals/:id", handlers.UpdateMeal(db, rdb))
		chef.DELETE("/meals/:id", handlers.DeleteMeal(db, rdb))

		chef.GET("/orders", handlers.GetChefOrders(db))
		chef.PUT("/orders/:id/status", handlers.UpdateOrderStatus(db))
	}

	// ── Admin routes ───────────────────────────────────────────────
	admin := r.Group("/api/admin")
	admin.Use(middleware.AuthRequired(cfg.JWTSecret), middleware.ResolvePrincipal(db), middleware.RequireAdmin())
	{
		admin.GET("/users", handlers.GetAllUsers(db))
		admin.PUT("/users/:id/fraud", handlers.MarkFraud(db))

		admin.GET("/orders", handlers.AdminGetAllOrders(db))
		admin.PUT("/orders/:id/status", handlers.UpdateOrderStatus(db))

		admin.GET("/role-requests", handlers.GetAllRoleRequests(db))
		admin.PUT("/role-requests/:id/approve", handlers.ApproveRoleRequest(db))
		admin.PUT("/role-requests/:id/reject", handlers.RejectRoleRequest(db))

		admin.GET("/stats", handlers.GetPlatformStats(db, rdb))
	}
}
