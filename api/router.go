package api

import (
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"shiftstat/web"
)

// SetupRouter creates and configures the HTTP router
func SetupRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()

	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", web.StaticHandler()))

	r.HandleFunc("/", h.Homepage).Methods("GET")
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/json/today", h.JSONToday).Methods("GET")

	line := r.PathPrefix("/{lang}/{line}").Subrouter()
	line.HandleFunc("", h.LinePage).Methods("GET")

	// The canonical page URLs carry a trailing slash before the query
	// string, but hand-typed ones usually don't; accept both.
	page := func(path string, fn http.HandlerFunc) {
		line.HandleFunc(path, fn).Methods("GET")
		line.HandleFunc(path+"/", fn).Methods("GET")
	}
	page("/pf_data", h.PFData)
	page("/day_yield", h.DayYield)
	page("/fail_detail", h.FailDetail)
	page("/query_cell", h.QueryCell)
	page("/query_sn", h.QuerySN)
	page("/portconfig", h.Portconfig)
	page("/keyname", h.Keyname)
	page("/yield_chart.png", h.YieldChart)
	page("/{item}/preday", h.PreDay)
	page("/{item}/preshift", h.PreShift)

	return r
}

// CORSMiddleware adds CORS headers
func CORSMiddleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return handlers.CORS(
			handlers.AllowedOrigins([]string{"*"}),
			handlers.AllowedMethods([]string{"GET", "OPTIONS"}),
			handlers.AllowedHeaders([]string{"Content-Type"}),
		)(next)
	}
}

// LoggingMiddleware logs HTTP requests with a per-request id
func LoggingMiddleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			id := uuid.New().String()[:8]

			// Wrap response writer to capture status code
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			log.Printf("%s %s %s %d %s",
				id,
				r.Method,
				r.RequestURI,
				wrapped.statusCode,
				time.Since(start),
			)
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Flush implements http.Flusher
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
