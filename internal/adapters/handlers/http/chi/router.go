package chi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"tender-docs/internal/adapters/handlers/http/chi/v1/admin"
	"tender-docs/internal/adapters/handlers/http/chi/v1/document"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// defaultMaxBodyBytes applies when no upload limit is configured
const defaultMaxBodyBytes int64 = 5 << 20

// multipartOverhead leaves room for multipart boundaries and form fields
const multipartOverhead int64 = 1 << 20

// NewRouter builds http.Handler with chi.
// maxBodyBytes is the largest accepted upload payload, 0 keeps the default.
func NewRouter(logger *slog.Logger, documentHandler *document.HandlerV1, adminHandler *admin.HandlerV1, env string, maxBodyBytes int64) http.Handler {
	r := chi.NewRouter()

	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}

	//handle requestID to facilitate debug (X-Request-ID)
	//It fetches from request if exists, or creates it
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggerMiddleware(logger))
	r.Use(MetricsMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))
	r.Use(middleware.RequestSize(maxBodyBytes + multipartOverhead))

	if env != "prod" {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", document.UserIDHeader},
			ExposedHeaders:   []string{"Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		if documentHandler != nil {
			r.Mount("/documents", documentHandler.Routes())
			r.Mount("/owners", documentHandler.OwnerRoutes())
		}
		if adminHandler != nil {
			r.Mount("/admin", adminHandler.Routes())
		}
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{
			Status:    "ok",
			Timestamp: time.Now(),
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(resp)
	})

	return r
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
