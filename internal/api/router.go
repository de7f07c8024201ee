package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "go-scout-export/docs"
	"go-scout-export/internal/api/handler"
	"go-scout-export/pkg/router"
)

func RegisterRoutes(r *router.Router, h *handler.ExportHandler, gatherer prometheus.Gatherer) {
	r.POST("/api/v1/exports", h.CreateExport)
	r.GET("/api/v1/exports", h.ListExports)
	// More specific routes first
	r.GET("/api/v1/exports/*/errors", h.GetExportErrors)
	// Generic export routes last
	r.GET("/api/v1/exports/*", h.GetExport)
	r.DELETE("/api/v1/exports/*", h.CancelExport)

	r.Handle(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Handle(http.MethodGet, "/swagger/*", httpSwagger.WrapHandler)
}
