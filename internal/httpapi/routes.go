package httpapi

import (
	"net/http"

	"github.com/DoyleJ11/kungfu-chess/internal/hub"
	"github.com/DoyleJ11/kungfu-chess/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func SetupRoutes(h *hub.Hub, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(log))
	r.Use(middleware.Recoverer)

	// Public routes
	r.Post("/rooms", CreateRoom(h, log))
	r.Get("/rooms/{code}", GetRoom(h))
	r.Delete("/rooms/{code}", DeleteRoom(h))
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(h, log))

	// Same surface as the hosted notifier the browser client used.
	r.Get("/events/{channel}", Events(h, log))
	r.Post("/broadcast", Broadcast(h, log))
	return r
}
