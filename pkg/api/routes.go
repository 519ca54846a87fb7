package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	AllowedOrigins []string
	// RequireAuth puts the analysis endpoints behind a session.
	RequireAuth bool
}

// SetupRoutes registers every endpoint both at the root and under /api/v1.
func SetupRoutes(router *mux.Router, handlers *Handlers, opts RouterOptions) {
	register(router, handlers, opts)

	// API version prefix
	api := router.PathPrefix("/api/v1").Subrouter()
	register(api, handlers, opts)
}

func register(r *mux.Router, handlers *Handlers, opts RouterOptions) {
	// Account endpoints
	r.HandleFunc("/login", handlers.Login).Methods("POST")
	r.HandleFunc("/logout", handlers.Logout).Methods("POST")
	r.HandleFunc("/signup", handlers.Signup).Methods("POST")
	r.HandleFunc("/forgot-password", handlers.ForgotPassword).Methods("POST")
	r.HandleFunc("/reset-password", handlers.ResetPassword).Methods("POST")
	r.HandleFunc("/check-auth", handlers.CheckAuth).Methods("GET")

	// Analysis endpoints
	var upload, sample http.Handler = http.HandlerFunc(handlers.Upload), http.HandlerFunc(handlers.Sample)
	if opts.RequireAuth {
		gate := RequireSession(handlers.authService)
		upload, sample = gate(upload), gate(sample)
	}
	r.Handle("/upload", upload).Methods("POST")
	r.Handle("/sample/{filename}", sample).Methods("GET")
	r.HandleFunc("/samples", handlers.ListSamples).Methods("GET")

	// Operational endpoints
	r.HandleFunc("/health", handlers.HealthCheck).Methods("GET")
	r.HandleFunc("/metrics", handlers.Metrics).Methods("GET")
}

// NewRouter builds the complete HTTP handler: routes, middleware stack and
// CORS.
func NewRouter(handlers *Handlers, opts RouterOptions) http.Handler {
	router := mux.NewRouter()
	SetupRoutes(router, handlers, opts)

	// Add middleware stack
	router.Use(LoggingMiddleware)
	router.Use(handlers.metrics.Middleware)
	router.Use(RecoveryMiddleware)

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return NewCORS(origins).Handler(router)
}
