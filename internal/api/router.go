package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"salemre/backend/internal/api/handlers"
	"salemre/backend/internal/api/middleware"
	"salemre/backend/internal/captcha"
	"salemre/backend/internal/config"
	"salemre/backend/internal/logging"
	"salemre/backend/internal/services"
)

// Services bundles what the public API serves.
type Services struct {
	Properties services.IPropertyService
	Blog       services.IBlogService
	Inquiries  services.IInquiryService
	Users      services.IUserService
	Uploads    services.IUploadService
}

// SetupRouter configures and returns the main Gin engine.
func SetupRouter(cfg *config.Config, svc Services, verifier captcha.Verifier, limiter *middleware.RateLimiterMiddleware) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logging.Component("http")))
	r.Use(middleware.CORSMiddleware(cfg.CorsOrigins))
	if limiter != nil {
		r.Use(limiter.Limit())
	}

	properties := handlers.NewPropertyHandler(svc.Properties)
	blog := handlers.NewBlogHandler(svc.Blog)
	inquiries := handlers.NewInquiryHandler(svc.Inquiries)
	users := handlers.NewUserHandler(svc.Users)
	uploads := handlers.NewUploadHandler(svc.Uploads, cfg.UploadMaxBytes)

	requireAuth := middleware.AuthMiddleware(cfg.JwtSecret)
	optionalAuth := middleware.OptionalAuthMiddleware(cfg.JwtSecret)
	requireAdmin := middleware.AdminMiddleware()

	a := r.Group("/api")
	{
		a.GET("/ping", func(c *gin.Context) {
			c.String(http.StatusOK, "pong")
		})

		authGroup := a.Group("/auth")
		authGroup.POST("/register", users.Register)
		authGroup.POST("/login", users.Login)
		authGroup.GET("/me", requireAuth, users.Me)
		authGroup.PUT("/me", requireAuth, users.UpdateProfile)

		p := a.Group("/properties")
		p.GET("", optionalAuth, properties.List)
		p.GET("/:id", optionalAuth, properties.Get)
		p.POST("", requireAuth, properties.Create)
		p.PUT("/:id", requireAuth, properties.Update)
		p.DELETE("/:id", requireAuth, properties.Delete)
		p.POST("/:id/images", requireAuth, properties.AddImages)

		b := a.Group("/blog")
		b.GET("", optionalAuth, blog.List)
		b.GET("/categories", blog.Categories)
		b.GET("/tags", blog.Tags)
		b.GET("/:id", optionalAuth, blog.Get)
		b.POST("", requireAuth, blog.Create)
		b.PUT("/:id", requireAuth, blog.Update)
		b.DELETE("/:id", requireAuth, blog.Delete)

		i := a.Group("/inquiries")
		i.POST("", optionalAuth, middleware.CaptchaMiddleware(cfg, verifier), inquiries.Create)
		i.GET("", requireAuth, requireAdmin, inquiries.List)
		i.GET("/:id", requireAuth, requireAdmin, inquiries.Get)
		i.PUT("/:id", requireAuth, requireAdmin, inquiries.Update)
		i.DELETE("/:id", requireAuth, requireAdmin, inquiries.Delete)

		u := a.Group("/users", requireAuth)
		u.GET("", requireAdmin, users.List)
		u.GET("/:id", users.Get)
		u.POST("", requireAdmin, users.Create)
		u.PUT("/:id", requireAdmin, users.Update)
		u.DELETE("/:id", requireAdmin, users.Delete)

		a.POST("/uploads", requireAuth, uploads.Upload)
		a.GET("/uploads/:name", uploads.Serve)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "route not found"})
	})
	return r
}

// SetupServiceRouter configures the internal service API engine. rdb may be
// nil when Redis is not configured.
func SetupServiceRouter(checks map[string]handlers.Pinger, rdb *redis.Client, shutdownChan chan<- struct{}) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logging.Component("service-http")))

	h := handlers.NewServiceHandler(checks, rdb, shutdownChan)
	r.GET("/health", h.Health)
	r.POST("/shutdown", h.Shutdown)
	r.GET("/test-email", h.TestEmail)
	return r
}
