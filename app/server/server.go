package server

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/veo1/catalog-api/app/api"
	"github.com/veo1/catalog-api/app/catalog"
	"github.com/veo1/catalog-api/app/categories"
)

// NewHandler registers the API routes and wraps them with request logging.
func NewHandler(products *catalog.CatalogHandler, cats *categories.CategoryHandler, log logrus.FieldLogger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/products", products.HandleGet)
	mux.HandleFunc("POST /api/products", products.HandleCreate)
	mux.HandleFunc("GET /api/products/{id}", products.HandleGetProduct)
	mux.HandleFunc("PUT /api/products/{id}", products.HandleUpdate)
	mux.HandleFunc("DELETE /api/products/{id}", products.HandleDelete)

	mux.HandleFunc("GET /api/categories", cats.HandleGetAll)
	mux.HandleFunc("POST /api/categories", cats.HandleCreate)
	mux.HandleFunc("GET /api/categories/{id}", cats.HandleGet)
	mux.HandleFunc("PUT /api/categories/{id}", cats.HandleUpdate)
	mux.HandleFunc("DELETE /api/categories/{id}", cats.HandleDelete)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		api.OKResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return logRequests(mux, log)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func logRequests(next http.Handler, log logrus.FieldLogger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}).Info("request completed")
	})
}
