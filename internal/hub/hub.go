package hub

import (
	"context"

	"go.uber.org/zap"

	"github.com/nmorel/infection-backend/internal/engine"
	"github.com/nmorel/infection-backend/internal/game"
	"github.com/nmorel/infection-backend/internal/store"
)

type HubMsg interface{ isHubMsg() }

type CreateGame struct {
	ID    string
	Code  string
	State *engine.State
	Reply chan *game.Game
}

type GetGame struct {
	Code  string
	Reply chan *game.Game
}

type RemoveGame struct {
	Code string
}

type ShutdownHub struct{}

func (CreateGame) isHubMsg()  {}
func (GetGame) isHubMsg()     {}
func (RemoveGame) isHubMsg()  {}
func (ShutdownHub) isHubMsg() {}

// Hub is the actor registry of running games, keyed by join code.
type Hub struct {
	inbox  chan HubMsg
	games  map[string]*game.Game
	store  store.Store
	log    *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(parent context.Context, st store.Store, log *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:  make(chan HubMsg, 64),
		games:  make(map[string]*game.Game),
		store:  st,
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateGame:
				if g := h.games[msg.Code]; g != nil {
					msg.Reply <- g
					break
				}
				g := game.New(h.ctx, msg.ID, msg.Code, msg.State, h.store, h.log)
				h.games[msg.Code] = g
				msg.Reply <- g

			case GetGame:
				msg.Reply <- h.games[msg.Code] // May be nil

			case RemoveGame:
				delete(h.games, msg.Code)

			case ShutdownHub:
				for _, g := range h.games {
					g.Inbox() <- game.Shutdown{}
				}
				clear(h.games)
				h.cancel()
			}
		}
	}
}
