package routes

import (
	"time"

	"github.com/civicline/backend/internal/config"
	"github.com/civicline/backend/internal/controllers"
	"github.com/civicline/backend/internal/middleware"
	"github.com/civicline/backend/internal/repository"
	"github.com/civicline/backend/internal/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Dependencies are the collaborators the HTTP layer is built from
type Dependencies struct {
	Repo     repository.IncidentRepository
	Geocoder services.Geocoder
	Notifier services.DispatchNotifier
	Config   *config.Config

	// Sleeper overrides the pause between geocode lookups when set.
	Sleeper services.Sleeper
}

// NewRouter creates the gin engine with logging, CORS and recovery middleware
func NewRouter(cfg config.ServerConfig) *gin.Engine {
	r := gin.New()

	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false

	r.Use(middleware.RequestLogger())
	r.Use(cors.New(corsConfig(cfg.AllowedOrigins)))
	r.Use(gin.Recovery())

	return r
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:       24 * time.Hour,
	}
	if len(origins) == 0 {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return c
}

// SetupRoutes configures all application routes
func SetupRoutes(r *gin.Engine, deps Dependencies) {
	// Initialize services
	var enrichOpts []services.EnrichmentOption
	if deps.Sleeper != nil {
		enrichOpts = append(enrichOpts, services.WithSleeper(deps.Sleeper))
	}
	ingestionService := services.NewIngestionService(deps.Repo, deps.Notifier)
	enrichmentService := services.NewEnrichmentService(deps.Repo, deps.Geocoder, deps.Config.Geocoder.Pause, enrichOpts...)
	incidentService := services.NewIncidentService(deps.Repo)

	// Initialize controllers
	webhookController := controllers.NewWebhookController(ingestionService)
	incidentController := controllers.NewIncidentController(incidentService, enrichmentService, deps.Config.Enrichment.UnresolvedOnly)
	healthController := controllers.NewHealthController(deps.Repo)

	r.GET("/health", healthController.Health)

	// Voice agent webhook
	r.POST("/data", webhookController.PostData)

	// Dashboard
	r.GET("/get-reports", incidentController.GetReports)
	r.GET("/stats", incidentController.GetStats)
	r.GET("/info", incidentController.GetInfo)
	r.PUT("/info/:id", incidentController.UpdateResolved)
}
