/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logging:    Structured request logging (zap)
  3. Metrics:    Request counters by route and status
  4. Recoverer:  Panic recovery (500 instead of crash)
  5. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/projects/*             Projects, their estimates and motors
  /api/estimates/*            Estimates, assemblies, components, revisions
  /api/assemblies/*           Assemblies and template refresh
  /api/parts/*                Parts catalog and price ledger
  /api/standard-assemblies/*  Versioned templates
  /api/motors/*               Motor/load records and revisions
  /metrics                    Prometheus scrape endpoint

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger(h.Logger))
	r.Use(h.Metrics.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/projects", func(r chi.Router) {
			r.Get("/", h.ListProjects)
			r.Post("/", h.CreateProject)
			r.Get("/{id}", h.GetProject)
			r.Put("/{id}", h.UpdateProject)
			r.Delete("/{id}", h.DeleteProject)
			r.Get("/{id}/totals", h.GetProjectTotals)
			r.Get("/{id}/estimates", h.ListEstimates)
			r.Post("/{id}/estimates", h.CreateEstimate)
			r.Get("/{id}/motors", h.ListMotors)
			r.Post("/{id}/motors", h.CreateMotor)
		})

		r.Route("/estimates", func(r chi.Router) {
			r.Get("/{id}", h.GetEstimate)
			r.Delete("/{id}", h.DeleteEstimate)
			r.Get("/{id}/totals", h.GetEstimateTotals)
			r.Get("/{id}/assemblies", h.ListAssemblies)
			r.Post("/{id}/assemblies", h.CreateAssembly)
			r.Get("/{id}/components", h.ListComponents)
			r.Post("/{id}/components", h.AddComponent)
			r.Get("/{id}/revisions", h.ListEstimateRevisions)
			r.Post("/{id}/revisions", h.CreateEstimateRevision)
		})

		r.Route("/assemblies", func(r chi.Router) {
			r.Get("/{id}", h.GetAssembly)
			r.Get("/{id}/totals", h.GetAssemblyTotals)
			r.Get("/{id}/parts", h.ListAssemblyParts)
			r.Post("/{id}/parts", h.AddAssemblyPart)
			r.Post("/{id}/refresh-template", h.RefreshAssemblyTemplate)
			r.Post("/{id}/change-version", h.ChangeAssemblyVersion)
		})

		r.Route("/assembly-parts", func(r chi.Router) {
			r.Put("/{id}/quantity", h.UpdateAssemblyPartQuantity)
		})

		r.Route("/parts", func(r chi.Router) {
			r.Get("/", h.ListParts)
			r.Post("/", h.CreatePart)
			r.Get("/lookup", h.LookupPart)
			r.Get("/{id}", h.GetPart)
			r.Put("/{id}/price", h.UpdatePartPrice)
			r.Get("/{id}/price-history", h.GetPriceHistory)
		})

		r.Route("/standard-assemblies", func(r chi.Router) {
			r.Post("/", h.CreateStandardAssembly)
			r.Get("/compare", h.CompareTemplateVersions)
			r.Get("/{id}", h.GetStandardAssembly)
			r.Get("/{id}/components", h.GetStandardAssemblyComponents)
			r.Get("/{id}/versions", h.ListTemplateVersions)
			r.Post("/{id}/versions", h.CreateTemplateVersion)
			r.Get("/{id}/audit", h.ListVersionAudit)
			r.Post("/{id}/apply", h.ApplyTemplate)
		})

		r.Route("/motors", func(r chi.Router) {
			r.Get("/{id}", h.GetMotor)
			r.Put("/{id}", h.UpdateMotor)
			r.Get("/{id}/revisions", h.ListMotorRevisions)
			r.Post("/{id}/revert", h.RevertMotor)
			r.Get("/{id}/compare", h.CompareMotorRevisions)
			r.Get("/{id}/amps", h.GetMotorAmps)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", h.Metrics.Handler())

	return r
}

// requestLogger logs one line per request with method, path, status,
// byte count, and latency.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info("request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(r.Context())),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
