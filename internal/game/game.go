package game

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/nmorel/infection-backend/internal/engine"
	"github.com/nmorel/infection-backend/internal/store"
)

type Msg interface{ isGameMsg() }

type Join struct {
	ClientID string
	PlayerID int
	Outbox   chan Push // where this client wants to receive pushes
}

func (Join) isGameMsg() {}

type Leave struct{ ClientID string }

func (Leave) isGameMsg() {}

// SubmitAction upserts one player choice for the current OPEN round.
type SubmitAction struct {
	PlayerID int
	Action   engine.Action
	Reply    chan error
}

func (SubmitAction) isGameMsg() {}

// LockRound is the moderator's OPEN -> LOCKED transition.
type LockRound struct{ Reply chan error }

func (LockRound) isGameMsg() {}

// ResolveRound runs the pipeline, LOCKED -> RESOLVED.
type ResolveRound struct{ Reply chan error }

func (ResolveRound) isGameMsg() {}

// NextRound opens the following round after a resolved one.
type NextRound struct{ Reply chan error }

func (NextRound) isGameMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isGameMsg() {}

type Shutdown struct{}

func (Shutdown) isGameMsg() {}

// Push is one delivery to one client: the public snapshot plus only the
// events that client is allowed to see.
type Push struct {
	Version  int
	Snapshot engine.Snapshot
	Events   []engine.Event
}

// View is a point-in-time copy of the game for queries; handing out a clone
// keeps readers off the actor's live state.
type View struct {
	Version    int
	NumClients int
	State      *engine.State
}

type client struct {
	playerID int
	outbox   chan Push
}

// Game owns one match: a single goroutine serializes every submission and
// transition, so the engine state never needs a lock of its own.
type Game struct {
	id      string
	code    string
	inbox   chan Msg
	state   *engine.State
	version int
	clients map[string]client
	store   store.Store
	log     *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
}

func New(parent context.Context, id, code string, initial *engine.State, st store.Store, log *zap.Logger) *Game {
	ctx, cancel := context.WithCancel(parent)

	g := &Game{
		id:      id,
		code:    code,
		inbox:   make(chan Msg, 64), // Small buffer
		state:   initial,
		clients: make(map[string]client),
		store:   st,
		log:     log.With(zap.String("game", code)),
		ctx:     ctx,
		cancel:  cancel,
	}
	go g.loop()
	return g
}

// Expose the inbox so tests or the WS layer can send messages.
func (g *Game) Inbox() chan<- Msg { return g.inbox }

func (g *Game) loop() {
	for {
		select {
		case <-g.ctx.Done():
			g.shutdown()
			return

		case m := <-g.inbox:
			switch msg := m.(type) {
			case Join:
				g.clients[msg.ClientID] = client{playerID: msg.PlayerID, outbox: msg.Outbox}
				msg.Outbox <- Push{Version: g.version, Snapshot: g.state.Public()}

			case Leave:
				delete(g.clients, msg.ClientID)

			case SubmitAction:
				// Submissions are secret: reply to the submitter, no broadcast.
				err := engine.Submit(g.state, msg.PlayerID, msg.Action, time.Now())
				if err != nil {
					g.log.Debug("submission rejected",
						zap.Int("player", msg.PlayerID),
						zap.String("kind", string(msg.Action.Kind)),
						zap.Error(err))
				}
				msg.Reply <- err

			case LockRound:
				round := g.state.Round
				err := engine.Lock(g.state)
				if err == nil {
					g.persistLock(round)
					g.version++
					g.broadcast(nil)
				}
				msg.Reply <- err

			case ResolveRound:
				round := g.state.Round
				events, err := engine.Resolve(g.state)
				if err == nil {
					g.persistResolution(round, events)
					g.version++
					g.broadcast(events)
					g.log.Info("round resolved",
						zap.Int("round", round),
						zap.Int("events", len(events)),
						zap.String("winner", string(g.state.Winner)))
				}
				msg.Reply <- err

			case NextRound:
				err := engine.BeginRound(g.state)
				if err == nil {
					g.persistOpen(g.state.Round)
					g.version++
					g.broadcast(nil)
				}
				msg.Reply <- err

			case GetState:
				msg.Reply <- View{
					Version:    g.version,
					NumClients: len(g.clients),
					State:      g.state.Clone(),
				}

			case Shutdown:
				g.shutdown()
				return
			}
		}
	}
}

func (g *Game) shutdown() {
	for id, c := range g.clients {
		close(c.outbox)
		delete(g.clients, id)
	}
	g.cancel()
}

// broadcast fans the new snapshot out to every client, filtering the event
// list down to what each of them may see. Slow clients are dropped.
func (g *Game) broadcast(events []engine.Event) {
	snap := g.state.Public()
	for id, c := range g.clients {
		push := Push{Version: g.version, Snapshot: snap}
		for _, e := range events {
			if e.VisibleTo(c.playerID) {
				push.Events = append(push.Events, e)
			}
		}
		select {
		case c.outbox <- push:
		default:
			close(c.outbox)
			delete(g.clients, id)
		}
	}
}

func (g *Game) persistLock(round int) {
	ctx, cancel := context.WithTimeout(g.ctx, 5*time.Second)
	defer cancel()
	if err := g.store.LockRound(ctx, g.id, round); err != nil {
		g.log.Error("persist lock failed", zap.Int("round", round), zap.Error(err))
	}
}

func (g *Game) persistResolution(round int, events []engine.Event) {
	ctx, cancel := context.WithTimeout(g.ctx, 5*time.Second)
	defer cancel()

	snap, err := json.Marshal(g.state.Public())
	if err != nil {
		g.log.Error("snapshot marshal failed", zap.Error(err))
		return
	}
	records := make([]store.EventRecord, 0, len(events))
	for _, e := range events {
		payload, err := json.Marshal(e)
		if err != nil {
			g.log.Error("event marshal failed", zap.Error(err))
			return
		}
		records = append(records, store.EventRecord{Type: string(e.Type), Private: e.Private, Payload: payload})
	}
	if err := g.store.ResolveRound(ctx, g.id, round, snap, records, string(g.state.Winner)); err != nil {
		g.log.Error("persist resolution failed", zap.Int("round", round), zap.Error(err))
	}
}

func (g *Game) persistOpen(round int) {
	ctx, cancel := context.WithTimeout(g.ctx, 5*time.Second)
	defer cancel()
	if err := g.store.OpenRound(ctx, g.id, round); err != nil {
		g.log.Error("persist open failed", zap.Int("round", round), zap.Error(err))
	}
}
