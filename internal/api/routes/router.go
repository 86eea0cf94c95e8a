package routes

import (
	"net/http"

	"github.com/imiq-project/Dashbot/internal/api/handlers"
	"github.com/imiq-project/Dashbot/internal/api/middleware"
	"github.com/imiq-project/Dashbot/internal/infrastructure/observability"
)

// Router holds all route handlers

type Router struct {
	mux *http.ServeMux

	assistantHandler *handlers.AssistantHandler

	entityHandler *handlers.EntityHandler

	sensorHandler *handlers.SensorHandler

	cacheMiddleware *middleware.CacheMiddleware
	metrics         *observability.Metrics
}

// NewRouter creates a new router

func NewRouter(

	assistantHandler *handlers.AssistantHandler,

	entityHandler *handlers.EntityHandler,

	sensorHandler *handlers.SensorHandler,

	cacheMiddleware *middleware.CacheMiddleware,

	metrics *observability.Metrics,

) *Router {

	return &Router{

		mux: http.NewServeMux(),

		assistantHandler: assistantHandler,

		entityHandler: entityHandler,

		sensorHandler: sensorHandler,

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

	// Conversational query endpoint

	r.mux.HandleFunc("POST /api/query", r.assistantHandler.HandleQuery)

	r.mux.HandleFunc("DELETE /api/sessions/{id}", r.assistantHandler.HandleEndSession)

	// Entity endpoints

	r.mux.HandleFunc("GET /api/entities", r.entityHandler.HandleListEntities)

	r.mux.HandleFunc("GET /api/entities/resolve", r.entityHandler.HandleResolve)

	r.mux.HandleFunc("GET /api/entities/{type}/{id}", r.entityHandler.HandleGetEntity)

	// Sensor endpoints

	r.mux.HandleFunc("GET /api/sensors/nearest", r.sensorHandler.HandleNearestSensor)

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
