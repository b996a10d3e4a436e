package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"laptop-inventory-backend/config"
	"laptop-inventory-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(handler *Handler, cfg config.ServerConfig) *gin.Engine {
	r := gin.Default()

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	r.Use(cors.New(corsConfig))

	api := r.Group("/api")
	if cfg.RateLimitPerSec > 0 {
		api.Use(mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst))
	}
	if cfg.CacheTTLSeconds > 0 {
		ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
		api.Use(mw.Cache(cache.New(ttl, 2*ttl), ttl))
	}
	{
		api.GET("/employees", handler.ListEmployees)
		api.POST("/employees", handler.RegisterEmployee)
		api.GET("/employees/:name", handler.GetEmployee)
		api.GET("/employees/:name/features", handler.GetCandidateFeatures)
		api.POST("/onboard_employee", handler.OnboardEmployee)

		api.GET("/laptops", handler.ListLaptops)
		api.POST("/laptops", handler.RegisterLaptop)
		api.GET("/laptops/available", handler.FindAvailableLaptop)
		api.GET("/laptops/maintenance", handler.MaintenanceDue)
		api.GET("/predictMaintenance", handler.MaintenanceDue)
		api.GET("/predict_maintenance", handler.MaintenanceDue)
		api.GET("/laptops/:id", handler.GetLaptop)
		api.POST("/laptops/:id/retire", handler.RetireLaptop)

		api.GET("/reservations", handler.ListReservations)
		api.POST("/reservations", handler.CreateReservation)
		api.POST("/reservations/:id/complete", handler.CompleteReservation)
		api.POST("/reservations/:id/cancel", handler.CancelReservation)
		api.POST("/reserve", handler.CreateReservation)
		api.POST("/reserve_laptop", handler.ReserveLegacy)

		api.GET("/assignments", handler.ListAssignments)
		api.POST("/assignments", handler.CreateAssignment)
		api.POST("/assignments/:id/return", handler.ReturnAssignment)

		api.POST("/recommendations", handler.Recommend)
		api.POST("/recommend_laptop", handler.Recommend)
		api.POST("/assignLaptop", handler.Recommend)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
