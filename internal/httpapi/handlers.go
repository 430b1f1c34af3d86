package httpapi

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nmorel/infection-backend/internal/engine"
	"github.com/nmorel/infection-backend/internal/game"
	"github.com/nmorel/infection-backend/internal/hub"
	"github.com/nmorel/infection-backend/internal/store"
)

func GenerateCode() (string, error) {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	code := make([]byte, 6)
	for i := 0; i < 6; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		code[i] = charset[num.Int64()]
	}
	return string(code), nil
}

type createGameRequest struct {
	Players []engine.Seat `json:"players"`
	Rules   *engine.Rules `json:"rules,omitempty"`
}

func CreateGame(h *hub.Hub, st store.Store, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createGameRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if len(req.Players) < 3 {
			http.Error(w, "need at least 3 players", http.StatusBadRequest)
			return
		}
		rules := engine.DefaultRules()
		if req.Rules != nil {
			rules = *req.Rules
		}

		var code string
		for {
			c, err := GenerateCode()
			if err != nil {
				http.Error(w, "failed to generate code", http.StatusInternalServerError)
				return
			}
			reply := make(chan *game.Game, 1)
			h.Inbox() <- hub.GetGame{Code: c, Reply: reply}
			if <-reply == nil {
				code = c
				break
			}
			log.Warn("collision on code, regenerating", zap.String("code", c))
		}

		id := uuid.NewString()
		state := engine.NewState(req.Players, rules)
		if err := st.CreateGame(r.Context(), store.GameRecord{ID: id, Code: code}); err != nil {
			log.Error("create game failed", zap.Error(err))
			http.Error(w, "failed to create game", http.StatusInternalServerError)
			return
		}
		if err := st.OpenRound(r.Context(), id, 1); err != nil {
			log.Error("open round failed", zap.Error(err))
			http.Error(w, "failed to create game", http.StatusInternalServerError)
			return
		}

		reply := make(chan *game.Game, 1)
		h.Inbox() <- hub.CreateGame{ID: id, Code: code, State: state, Reply: reply}
		if <-reply == nil {
			http.Error(w, "failed to create game", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(struct {
			Code string `json:"code"`
		}{Code: code})
	}
}

// transition wires the three moderator endpoints; they only differ in the
// message they post to the game actor.
func transition(h *hub.Hub, build func(reply chan error) game.Msg) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, ok := findGame(h, w, r)
		if !ok {
			return
		}
		reply := make(chan error, 1)
		g.Inbox() <- build(reply)
		if err := <-reply; err != nil {
			http.Error(w, err.Error(), transitionStatus(err))
			return
		}
		writeState(w, g)
	}
}

func LockRound(h *hub.Hub) http.HandlerFunc {
	return transition(h, func(reply chan error) game.Msg { return game.LockRound{Reply: reply} })
}

func ResolveRound(h *hub.Hub) http.HandlerFunc {
	return transition(h, func(reply chan error) game.Msg { return game.ResolveRound{Reply: reply} })
}

func NextRound(h *hub.Hub) http.HandlerFunc {
	return transition(h, func(reply chan error) game.Msg { return game.NextRound{Reply: reply} })
}

func GameState(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, ok := findGame(h, w, r)
		if !ok {
			return
		}
		writeState(w, g)
	}
}

// PlayerInventory is the owner-only consumables query.
func PlayerInventory(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, ok := findGame(h, w, r)
		if !ok {
			return
		}
		playerID, err := strconv.Atoi(chi.URLParam(r, "player"))
		if err != nil {
			http.Error(w, "bad player id", http.StatusBadRequest)
			return
		}
		reply := make(chan game.View, 1)
		g.Inbox() <- game.GetState{Reply: reply}
		view := <-reply
		inv := view.State.InventoryOf(playerID)
		tokens := 0
		if p, ok := view.State.Players[playerID]; ok {
			tokens = p.Tokens
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(struct {
			Items  map[engine.ItemKind]int `json:"items"`
			Tokens int                     `json:"tokens"`
		}{Items: inv, Tokens: tokens})
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func findGame(h *hub.Hub, w http.ResponseWriter, r *http.Request) (*game.Game, bool) {
	code := chi.URLParam(r, "code")
	reply := make(chan *game.Game, 1)
	h.Inbox() <- hub.GetGame{Code: code, Reply: reply}
	g := <-reply
	if g == nil {
		http.Error(w, "game not found", http.StatusNotFound)
		return nil, false
	}
	return g, true
}

func writeState(w http.ResponseWriter, g *game.Game) {
	reply := make(chan game.View, 1)
	g.Inbox() <- game.GetState{Reply: reply}
	view := <-reply
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(struct {
		Version  int             `json:"version"`
		Snapshot engine.Snapshot `json:"snapshot"`
	}{Version: view.Version, Snapshot: view.State.Public()})
}

// transitionStatus maps engine sentinels onto HTTP: losing a lock/resolve
// race is a conflict, not a server error.
func transitionStatus(err error) int {
	switch {
	case errors.Is(err, engine.ErrAlreadyLocked),
		errors.Is(err, engine.ErrAlreadyResolved),
		errors.Is(err, engine.ErrRoundNotLocked),
		errors.Is(err, engine.ErrRoundInProgress),
		errors.Is(err, engine.ErrGameOver):
		return http.StatusConflict
	case errors.Is(err, engine.ErrMalformedState):
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}
