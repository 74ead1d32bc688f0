package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	chathandler "github.com/Yuvaramesh/sales-agent-frontend/internal/handler/chat"
	"github.com/Yuvaramesh/sales-agent-frontend/internal/service/advisor"
	"github.com/Yuvaramesh/sales-agent-frontend/internal/service/conversation"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(conv *conversation.Service, adv advisor.Advisor) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors)

	chatHandler := chathandler.New(conv, adv)

	r.Route("/api", func(api chi.Router) {
		chatHandler.RegisterRoutes(api)
	})
	r.Get("/health", chatHandler.HandleHealth)

	return r
}

// cors allows the widget to be served from any origin, as the original UI was.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Info().
			Str("component", "http").
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}
