package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/nmorel/infection-backend/internal/hub"
	"github.com/nmorel/infection-backend/internal/store"
	"github.com/nmorel/infection-backend/internal/ws"
)

func SetupRoutes(h *hub.Hub, st store.Store, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Post("/games", CreateGame(h, st, log))
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(h, log))

	r.Route("/games/{code}", func(r chi.Router) {
		r.Get("/state", GameState(h))
		r.Get("/players/{player}/inventory", PlayerInventory(h))
		r.Post("/lock", LockRound(h))
		r.Post("/resolve", ResolveRound(h))
		r.Post("/next", NextRound(h))
	})
	return r
}
