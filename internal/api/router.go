package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/crewlinkhq/crewlink/internal/app"
	iauth "github.com/crewlinkhq/crewlink/internal/auth"
	"github.com/crewlinkhq/crewlink/internal/cache"
	"github.com/crewlinkhq/crewlink/internal/handlers"
	"github.com/crewlinkhq/crewlink/internal/middleware"
	"github.com/crewlinkhq/crewlink/internal/models"
	"github.com/crewlinkhq/crewlink/internal/notifications"
	"github.com/crewlinkhq/crewlink/internal/realtime"
	"github.com/crewlinkhq/crewlink/internal/services"
	"github.com/crewlinkhq/crewlink/internal/wage"
)

// Dependencies bundles the shared infrastructure the router wires handlers to.
type Dependencies struct {
	DB         *gorm.DB
	JWT        *iauth.JWTService
	Config     *app.Config
	Cache      cache.Store
	Hub        *realtime.Hub
	Gateway    notifications.Gateway
	Normalizer *wage.Normalizer
}

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(deps Dependencies) (*gin.Engine, error) {
	if deps.DB == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if deps.JWT == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if deps.Config == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	if deps.Gateway == nil {
		deps.Gateway = notifications.NopGateway{}
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS())
	if rl := deps.Config.Server.RateLimit; rl.Enabled {
		r.Use(middleware.RateLimit(deps.Cache, rl.MaxRequests, rl.Window))
	}

	// Health endpoint (public)
	r.GET("/health", handlers.Health(deps.DB))

	skillIndex := services.NewSkillIndex(deps.Cache)

	companyHandler, err := handlers.NewCompanyHandler(deps.DB, deps.JWT)
	if err != nil {
		return nil, err
	}
	workerHandler, err := handlers.NewWorkerHandler(deps.DB, skillIndex, deps.JWT)
	if err != nil {
		return nil, err
	}
	projectHandler, err := handlers.NewProjectHandler(deps.DB, deps.Normalizer)
	if err != nil {
		return nil, err
	}
	invitationHandler, err := handlers.NewInvitationHandler(deps.DB, deps.Gateway)
	if err != nil {
		return nil, err
	}
	jobHandler, err := handlers.NewJobHandler(deps.DB, deps.Gateway)
	if err != nil {
		return nil, err
	}
	notificationHandler, err := handlers.NewNotificationHandler(deps.DB, deps.Hub)
	if err != nil {
		return nil, err
	}

	// Public registration routes; both sides obtain their bearer token here.
	r.POST("/api/companies", companyHandler.Register)
	r.POST("/api/workers", workerHandler.Register)

	requireAuth := middleware.Auth(deps.JWT)
	api := r.Group("/api")
	api.Use(requireAuth)

	api.GET("/companies/:id", companyHandler.Get)
	api.GET("/workers/search", workerHandler.Search)
	api.GET("/workers/:id", workerHandler.Get)

	// Projects: company-owned lifecycle.
	projects := api.Group("/projects")
	{
		projects.POST("", middleware.RequireRole(models.RoleCompany), projectHandler.Create)
		projects.GET("", middleware.RequireRole(models.RoleCompany), projectHandler.List)
		projects.GET("/:id", projectHandler.Get)
		projects.PATCH("/:id/wage", middleware.RequireRole(models.RoleCompany), projectHandler.UpdateWage)
		projects.POST("/:id/transition", middleware.RequireRole(models.RoleCompany), projectHandler.Transition)
		projects.GET("/:id/invitations", middleware.RequireRole(models.RoleCompany), invitationHandler.ListForProject)
	}

	// Invitations: dispatched by companies, answered by workers.
	invitations := api.Group("/invitations")
	{
		invitations.POST("/dispatch", middleware.RequireRole(models.RoleCompany), invitationHandler.Dispatch)
		invitations.GET("", middleware.RequireRole(models.RoleWorker), invitationHandler.ListMine)
		invitations.GET("/:id", invitationHandler.Get)
		invitations.POST("/:id/cancel", middleware.RequireRole(models.RoleCompany), invitationHandler.Cancel)
		invitations.POST("/:id/respond", middleware.RequireRole(models.RoleWorker), invitationHandler.Respond)
	}

	// Jobs: the execution and closure pipeline.
	jobs := api.Group("/jobs")
	{
		jobs.GET("", jobHandler.List)
		jobs.GET("/:id", jobHandler.Get)
		jobs.POST("/:id/advance", jobHandler.Advance)
	}

	// Notifications: inbox plus live stream.
	notifs := api.Group("/notifications")
	{
		notifs.GET("", notificationHandler.List)
		notifs.GET("/stream", notificationHandler.Stream)
		notifs.POST("/read_all", notificationHandler.MarkAllRead)
		notifs.POST("/:id/read", notificationHandler.MarkRead)
	}

	// Metrics endpoint
	if deps.Config.Monitoring.Prometheus.Enabled {
		endpoint := deps.Config.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	// NotFound fallback
	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
