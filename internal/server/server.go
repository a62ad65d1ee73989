package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/joaorhodenntc/encontra-mais/internal/auth"
	"github.com/joaorhodenntc/encontra-mais/internal/billing"
	"github.com/joaorhodenntc/encontra-mais/internal/config"
	"github.com/joaorhodenntc/encontra-mais/internal/professional"
)

type Server struct {
	router *gin.Engine
	db     *sqlx.DB
	config *config.Config
	http   *http.Server
}

func New(db *sqlx.DB, cfg *config.Config, proService professional.Service, billingService billing.Service) *Server {
	router := gin.Default()
	router.Use(corsMiddleware())
	router.Use(MetricsMiddleware())

	proHandler := professional.NewHandler(proService)
	billingHandler := billing.NewHandler(billingService, cfg.WebhookSecret)

	public := router.Group("/auth")
	public.Use(RateLimitMiddleware(authRPS, authBurst))
	{
		public.POST("/register", proHandler.Register)
		public.POST("/login", proHandler.Login)
		public.POST("/refresh", proHandler.Refresh)
	}

	// Public marketplace listing, throttled on its own budget.
	listing := router.Group("/professionals")
	listing.Use(RateLimitMiddleware(publicRPS, publicBurst))
	{
		listing.GET("", proHandler.Search)
		listing.GET("/:id", proHandler.GetByID)
	}

	// Billing endpoints keep the path shape the frontend and the payment
	// provider are already configured with.
	api := router.Group("/api")
	{
		api.POST("/subscriptions", billingHandler.CreateSubscription)
		api.GET("/subscriptions/expire", billingHandler.ExpireSubscriptions)
		api.POST("/webhooks/abacatepay", billingHandler.Webhook)
	}

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", proHandler.GetMe)
		protected.PUT("/me", proHandler.UpdateMe)
		protected.POST("/me/verification", proHandler.SubmitVerification)
	}

	adminMiddleware := auth.RequireRole("admin")
	admin := router.Group("/admin")
	admin.Use(authMiddleware, adminMiddleware)
	{
		admin.GET("/verifications", proHandler.ListVerifications)
		admin.POST("/verifications/:id/review", proHandler.ReviewVerification)
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	SetupSwagger(router)

	return &Server{
		router: router,
		db:     db,
		config: cfg,
	}
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
	}
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// Router exposes the underlying engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
