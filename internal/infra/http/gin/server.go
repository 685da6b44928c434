package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"staybook/internal/infra/config"
	"staybook/internal/infra/obs"
)

type QuoteHTTP interface {
	Price(c *gin.Context)
}

type AvailabilityHTTP interface {
	Search(c *gin.Context)
}

type BookingHTTP interface {
	Checkout(c *gin.Context)
	Cancel(c *gin.Context)
	Get(c *gin.Context)
	ListByAccount(c *gin.Context)
}

type Handlers struct {
	Quote        QuoteHTTP
	Availability AvailabilityHTTP
	Booking      BookingHTTP
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Quote != nil {
		api.POST("/quotes", h.Quote.Price)
	}
	if h.Availability != nil {
		api.POST("/availability/search", h.Availability.Search)
	}
	if h.Booking != nil {
		api.POST("/checkout", h.Booking.Checkout)
		api.POST("/bookings/:id/cancel", h.Booking.Cancel)
		api.GET("/bookings/:id", h.Booking.Get)
		api.GET("/accounts/:id/bookings", h.Booking.ListByAccount)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
