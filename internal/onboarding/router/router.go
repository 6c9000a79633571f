// Package router builds the gin engine of the onboarding service.
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kart-io/onboarding-assistant/internal/onboarding/handler"
	"github.com/kart-io/onboarding-assistant/pkg/infra/middleware"
)

// Config holds what the router needs besides the handler.
type Config struct {
	// Mode is the gin mode (debug, release, test).
	Mode string
	// Namespace prefixes the HTTP metrics.
	Namespace string
	// Registerer and Gatherer back /metrics; nil disables HTTP metrics.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
	Health     *middleware.HealthManager
}

// New creates the engine with middleware, probes and the /v1 API.
func New(cfg *Config, h *handler.Handler) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	r := gin.New()
	r.Use(middleware.Recovery(), middleware.RequestID(), middleware.Tracing(), middleware.Logger())
	if cfg.Registerer != nil {
		r.Use(middleware.NewHTTPMetrics(cfg.Namespace, cfg.Registerer).Handler())
	}

	if cfg.Health != nil {
		middleware.RegisterHealthRoutes(r, cfg.Health)
	}
	middleware.RegisterVersionRoute(r)
	if cfg.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	Register(r, h)
	return r
}

// Register registers the /v1 routes.
func Register(r gin.IRouter, h *handler.Handler) {
	logger.Info("Registering onboarding routes...")

	v1 := r.Group("/v1")
	{
		docs := v1.Group("/documents")
		{
			docs.POST("", h.UploadDocument)
			docs.POST("/text", h.IngestText)
			docs.GET("", h.ListDocuments)
			docs.GET("/:id", h.GetDocument)
			docs.DELETE("/:id", h.DeleteDocument)
		}

		v1.POST("/ask", h.Ask)

		employees := v1.Group("/employees")
		{
			employees.POST("", h.CreateEmployee)
			employees.GET("", h.ListEmployees)
			employees.GET("/:id", h.GetEmployee)
			employees.PUT("/:id", h.UpdateEmployee)
			employees.DELETE("/:id", h.DeleteEmployee)

			employees.POST("/:id/plan", h.GeneratePlan)
			employees.GET("/:id/plan", h.GetPlan)
			employees.GET("/:id/checklist", h.GetChecklist)
			employees.PATCH("/:id/checklist/:task_id", h.UpdateTask)
			employees.GET("/:id/progress", h.GetProgress)

			employees.POST("/:id/reminders", h.AddReminder)
			employees.GET("/:id/reminders", h.ListReminders)
		}

		reminders := v1.Group("/reminders")
		{
			reminders.GET("/pending", h.PendingReminders)
			reminders.POST("/:id/sent", h.MarkReminderSent)
		}

		v1.GET("/stats", h.Stats)
	}

	logger.Info("HTTP routes registered")
}
