package routes

import (
	"net/http"

	"github.com/jmauas/consultorio-sub000/internal/api/handlers"
	"github.com/jmauas/consultorio-sub000/internal/api/middleware"
	"github.com/jmauas/consultorio-sub000/internal/infrastructure/observability"
)

// Router holds all route handlers

type Router struct {
	mux *http.ServeMux

	availabilityHandler *handlers.AvailabilityHandler

	turnoHandler *handlers.TurnoHandler

	cacheMiddleware *middleware.CacheMiddleware
	metrics         *observability.Metrics
}

// NewRouter creates a new router

func NewRouter(

	availabilityHandler *handlers.AvailabilityHandler,

	turnoHandler *handlers.TurnoHandler,

	cacheMiddleware *middleware.CacheMiddleware,

	metrics *observability.Metrics,

) *Router {

	return &Router{

		mux: http.NewServeMux(),

		availabilityHandler: availabilityHandler,

		turnoHandler: turnoHandler,

		cacheMiddleware: cacheMiddleware,
		metrics:         metrics,
	}

}

// SetupRoutes configures all application routes

func (r *Router) SetupRoutes() http.Handler {

	// Health check endpoint

	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {

		w.WriteHeader(http.StatusOK)

		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}

	})

	// Availability endpoints

	r.mux.HandleFunc("GET /api/turnos/disponibilidad", r.availabilityHandler.GetDisponibilidad)

	r.mux.HandleFunc("GET /api/turnos/disponibilidad/{fecha}", r.availabilityHandler.GetDisponibilidadFecha)

	r.mux.HandleFunc("GET /api/agenda/{doctorId}/consultorio/{consultorioId}/analisis", r.availabilityHandler.AnalizarTurnos)

	// Turno endpoints

	r.mux.HandleFunc("POST /api/turnos", r.turnoHandler.Reservar)

	r.mux.HandleFunc("GET /api/turnos/{id}", r.turnoHandler.GetTurno)

	r.mux.HandleFunc("DELETE /api/turnos/{id}", r.turnoHandler.Cancelar)

	r.mux.HandleFunc("GET /api/agenda/{doctorId}/turnos", r.turnoHandler.TurnosDelDia)

	// Apply middleware in reverse order (last middleware wraps first)
	// CORS must be outermost so cached responses also get CORS headers.

	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)

	// Apply cache middleware if available
	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	// Apply HTTP performance optimizations (compression, ETag, cache headers)
	handler = middleware.ResponseOptimization(handler)

	// CORS wraps everything so headers are set even on cache HITs
	handler = middleware.CORSMiddleware(handler)

	return handler
}
