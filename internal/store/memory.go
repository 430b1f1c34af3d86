package store

import (
	"context"
	"sync"
)

// Memory is the in-memory Store used by tests and DB-less runs. Same
// compare-and-swap semantics as Postgres, just under a mutex.
type Memory struct {
	mu     sync.Mutex
	games  map[string]GameRecord // by id
	codes  map[string]string     // code -> id
	rounds map[string]map[int]*RoundRecord
	events map[string][]EventRecord
}

func NewMemory() *Memory {
	return &Memory{
		games:  map[string]GameRecord{},
		codes:  map[string]string{},
		rounds: map[string]map[int]*RoundRecord{},
		events: map[string][]EventRecord{},
	}
}

func (m *Memory) CreateGame(_ context.Context, game GameRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[game.ID] = game
	m.codes[game.Code] = game.ID
	return nil
}

func (m *Memory) Game(_ context.Context, code string) (GameRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.codes[code]
	if !ok {
		return GameRecord{}, ErrNotFound
	}
	return m.games[id], nil
}

func (m *Memory) OpenRound(_ context.Context, gameID string, number int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rounds[gameID] == nil {
		m.rounds[gameID] = map[int]*RoundRecord{}
	}
	m.rounds[gameID][number] = &RoundRecord{GameID: gameID, Number: number, Status: RoundOpen}
	return nil
}

func (m *Memory) LockRound(_ context.Context, gameID string, number int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.rounds[gameID][number]
	if r == nil {
		return ErrNotFound
	}
	if r.Status != RoundOpen {
		return ErrStatusConflict
	}
	r.Status = RoundLocked
	return nil
}

func (m *Memory) ResolveRound(_ context.Context, gameID string, number int, snapshot []byte, events []EventRecord, winner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.rounds[gameID][number]
	if r == nil {
		return ErrNotFound
	}
	if r.Status != RoundLocked {
		return ErrStatusConflict
	}
	r.Status = RoundResolved
	r.Snapshot = snapshot
	for i := range events {
		events[i].GameID = gameID
		events[i].Round = number
		events[i].Seq = i
	}
	m.events[gameID] = append(m.events[gameID], events...)
	if winner != "" {
		game := m.games[gameID]
		game.Winner = winner
		m.games[gameID] = game
	}
	return nil
}

func (m *Memory) Events(_ context.Context, gameID string, round int) ([]EventRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []EventRecord
	for _, e := range m.events[gameID] {
		if e.Round == round {
			out = append(out, e)
		}
	}
	return out, nil
}
