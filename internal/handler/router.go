package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/intelliplan-api/internal/middleware"
)

// Routes groups the handlers mounted by RegisterRoutes.
type Routes struct {
	Timetables *TimetableHandler
	Catalog    *CatalogHandler
	Metrics    *MetricsHandler

	// Throttle guards the generate endpoint; nil leaves it unthrottled.
	Throttle gin.HandlerFunc

	// AuditLog receives one entry per successful catalog change.
	AuditLog *zap.Logger
}

// RegisterRoutes mounts health checks and Prometheus at the root and the API under prefix.
func RegisterRoutes(r gin.IRouter, prefix string, routes Routes) {
	r.GET("/health", routes.Metrics.Health)
	r.GET("/ready", routes.Metrics.Ready)
	r.GET("/metrics", routes.Metrics.Prometheus)

	api := r.Group(prefix, middleware.WithResponseMeta())
	api.GET("/metrics/summary", routes.Metrics.Summary)

	catalog := api.Group("/catalog")
	catalog.POST("/reload", middleware.Audit(routes.AuditLog, "catalog.reload"), routes.Catalog.Reload)
	catalog.POST("/upload", middleware.Audit(routes.AuditLog, "catalog.upload"), routes.Catalog.Upload)
	catalog.GET("/stats", routes.Catalog.Stats)

	api.GET("/courses", routes.Catalog.ListCourses)
	api.GET("/courses/:code", routes.Catalog.GetCourse)

	timetables := api.Group("/timetables")
	generate := []gin.HandlerFunc{routes.Timetables.Generate}
	if routes.Throttle != nil {
		generate = append([]gin.HandlerFunc{routes.Throttle}, generate...)
	}
	timetables.POST("/generate", generate...)
	timetables.POST("/filter", routes.Timetables.Filter)
	timetables.POST("/export", routes.Timetables.Export)

	api.POST("/constraints/detect", routes.Timetables.Detect)
}
