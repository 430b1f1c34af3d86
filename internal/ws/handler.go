package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nmorel/infection-backend/internal/engine"
	"github.com/nmorel/infection-backend/internal/game"
	"github.com/nmorel/infection-backend/internal/hub"
	"github.com/nmorel/infection-backend/internal/types"
)

func Handler(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}
		playerID, err := strconv.Atoi(r.URL.Query().Get("player"))
		if err != nil || playerID <= 0 {
			http.Error(w, "missing or bad player id", http.StatusBadRequest)
			return
		}

		reply := make(chan *game.Game, 1)
		h.Inbox() <- hub.GetGame{Code: code, Reply: reply}
		g := <-reply
		if g == nil {
			http.Error(w, "game not found", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			// In dev ONLY, you can loosen origin checks:
			// OriginPatterns: []string{"http://localhost:*", "http://127.0.0.1:*"},
		})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		out := make(chan game.Push, 8)
		clientID := uuid.NewString()

		g.Inbox() <- game.Join{ClientID: clientID, PlayerID: playerID, Outbox: out}
		defer func() { g.Inbox() <- game.Leave{ClientID: clientID} }()

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for push := range out {
				msg := types.ServerMessage{
					Type:     "StateSnapshot",
					Version:  push.Version,
					Snapshot: &push.Snapshot,
					Events:   push.Events,
				}
				payload, _ := json.Marshal(msg)
				ctx, cancel := context.WithTimeout(writeCtx, 3*time.Second)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
		}()

		// Reader loop
		for {
			ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
			_, data, err := conn.Read(ctx)
			cancel()
			if err != nil {
				// Treat clean close/going-away as normal:
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				// Otherwise, just exit (game.Leave in defer):
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				writeError(r.Context(), conn, "bad json")
				continue
			}

			action, ok := toAction(cm)
			if !ok {
				writeError(r.Context(), conn, "unknown type")
				continue
			}

			errReply := make(chan error, 1)
			g.Inbox() <- game.SubmitAction{PlayerID: playerID, Action: action, Reply: errReply}
			if err := <-errReply; err != nil {
				log.Debug("ws submission rejected", zap.String("game", code), zap.Error(err))
				writeError(r.Context(), conn, err.Error())
			}
		}
	}
}

func toAction(m types.ClientMessage) (engine.Action, bool) {
	if m.Type != "SubmitAction" {
		return engine.Action{}, false
	}
	return engine.Action{
		Kind:   engine.ActionKind(m.Kind),
		Target: m.Target,
		Amount: m.Amount,
	}, true
}

func writeError(ctx context.Context, conn *websocket.Conn, msg string) {
	payload, _ := json.Marshal(types.ServerMessage{Type: "Error", Error: msg})
	_ = conn.Write(ctx, websocket.MessageText, payload)
}
