package server

import (
	"context"
	"net/http"

	"wildenergy/internal/auth"
	"wildenergy/internal/config"
	"wildenergy/internal/course"
	"wildenergy/internal/email"
	"wildenergy/internal/member"
	"wildenergy/internal/plan"
	"wildenergy/internal/registration"
	"wildenergy/internal/subscription"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Server struct {
	router *gin.Engine
	http   *http.Server
	db     *sqlx.DB
	config *config.Config
	email  *email.Service
}

func New(db *sqlx.DB, cfg *config.Config, emailService *email.Service) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(RateLimitMiddleware(20, 40))

	memberHandler := member.NewHandler(db, cfg.JWTSecret)
	courseHandler := course.NewHandler(db)
	planHandler := plan.NewHandler(db)
	subscriptionHandler := subscription.NewHandler(db)
	registrationHandler := registration.NewHandler(db, emailService)

	public := router.Group("/auth")
	{
		public.POST("/register", memberHandler.Register)
		public.POST("/login", memberHandler.Login)
		public.POST("/refresh", memberHandler.Refresh)
	}

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", memberHandler.GetMe)
		protected.GET("/classes", courseHandler.ListClasses)
		protected.GET("/classes/:classID/instances", courseHandler.ListInstances)
		protected.GET("/plans", planHandler.ListPlans)
		protected.GET("/subscriptions/me", subscriptionHandler.ListMine)
		protected.POST("/courses/:courseInstanceID/register", registrationHandler.Register)
		protected.POST("/registrations/:registrationID/cancel", registrationHandler.Cancel)
		protected.GET("/registrations/me", registrationHandler.ListMine)
	}

	adminMiddleware := auth.RequireRole("admin")
	admin := router.Group("/admin")
	admin.Use(authMiddleware, adminMiddleware)
	{
		admin.POST("/classes", courseHandler.CreateClass)
		admin.POST("/classes/:classID/instances", courseHandler.CreateInstance)
		admin.POST("/plans", planHandler.CreatePlan)
		admin.GET("/plans/:planID", planHandler.GetPlan)
		admin.POST("/subscriptions", subscriptionHandler.Create)
		admin.GET("/members/:memberID/subscriptions", subscriptionHandler.ListByMember)
		admin.POST("/subscriptions/:subscriptionID/cancel", subscriptionHandler.Cancel)
		admin.POST("/checkin", registrationHandler.CheckIn)
		admin.POST("/registrations/:registrationID/checkout", registrationHandler.CheckOut)
		admin.GET("/qr/:code", registrationHandler.ResolveQRCode)
		admin.GET("/courses/:courseInstanceID/registrations", registrationHandler.ListByCourse)
		admin.GET("/stats/registrations/daily", registrationHandler.StatsByDay)
		admin.GET("/stats/registrations/classes", registrationHandler.StatsByClass)
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	router.GET("/test-email", TestEmail(emailService))

	return &Server{
		router: router,
		db:     db,
		config: cfg,
		email:  emailService,
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

// Router exposes the gin engine for tests.
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
