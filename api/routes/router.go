package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cargodesk/cargodesk-backend/api/controllers"
	"github.com/cargodesk/cargodesk-backend/api/middleware"
	"github.com/cargodesk/cargodesk-backend/internal/attachments"
	"github.com/cargodesk/cargodesk-backend/internal/containers"
	"github.com/cargodesk/cargodesk-backend/internal/exchange"
	"github.com/cargodesk/cargodesk-backend/internal/extraction"
	"github.com/cargodesk/cargodesk-backend/internal/items"
	"github.com/cargodesk/cargodesk-backend/pkg/config"
	"github.com/cargodesk/cargodesk-backend/pkg/logger"
	"github.com/cargodesk/cargodesk-backend/pkg/metrics"
	pkgredis "github.com/cargodesk/cargodesk-backend/pkg/redis"
)

// Deps carries everything the router mounts.
type Deps struct {
	Containers  containers.Service
	Items       items.Service
	Attachments attachments.Service
	Exchange    exchange.Service
	Extraction  extraction.Service

	IdempotencyStore pkgredis.IdempotencyStore
	HTTPMetrics      *metrics.HTTPMetrics
	ReadyChecks      map[string]controllers.Pinger
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.ReadyChecks))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route(cfg.App.NormalizedBasePath(), func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())

		r.Group(func(r chi.Router) {
			// read-only guard runs before idempotency so blocked writes
			// never record a replayable response
			r.Use(middleware.ReadOnly(cfg.FeatureFlags.ReadOnly, logg))
			r.Use(middleware.Idempotency(deps.IdempotencyStore, logg))

			r.Route("/v1/containers", func(r chi.Router) {
				r.Get("/", controllers.ContainerList(deps.Containers, logg))
				r.Post("/", controllers.ContainerCreate(deps.Containers, logg))
				r.Route("/{containerName}", func(r chi.Router) {
					r.Delete("/", controllers.ContainerDelete(deps.Containers, logg))
					r.Get("/items", controllers.ItemList(deps.Items, logg))
					r.Post("/items", controllers.ItemAdd(deps.Items, logg))
					r.Get("/export", controllers.ContainerExport(deps.Exchange, logg))
					r.Post("/import", controllers.ContainerImport(deps.Exchange, logg))
				})
			})

			r.Route("/v1/items/{itemID}", func(r chi.Router) {
				r.Patch("/", controllers.ItemPatch(deps.Items, logg))
				r.Delete("/", controllers.ItemDelete(deps.Items, logg))
				r.Route("/attachments/{kind}", func(r chi.Router) {
					r.Put("/", controllers.AttachmentUpload(deps.Attachments, logg))
					r.Delete("/", controllers.AttachmentDelete(deps.Attachments, logg))
					r.Get("/preview", controllers.AttachmentPreview(deps.Attachments, logg))
				})
			})

			r.Post("/v1/extract", controllers.Extract(deps.Extraction, logg))
		})
	})

	return r
}
