// Package store persists games, round snapshots and resolution events. The
// engine never touches it; the game actor writes through after each
// transition so a restart can replay from the last resolved snapshot.
package store

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("store: not found")
	// ErrStatusConflict is the losing side of a round-status compare-and-swap:
	// someone else already moved this round past the expected status.
	ErrStatusConflict = errors.New("store: round status conflict")
)

const (
	RoundOpen     = "open"
	RoundLocked   = "locked"
	RoundResolved = "resolved"
)

type GameRecord struct {
	ID        string `gorm:"primaryKey"`
	Code      string `gorm:"uniqueIndex"`
	CreatedAt time.Time
	Winner    string
}

type RoundRecord struct {
	ID       uint   `gorm:"primaryKey"`
	GameID   string `gorm:"uniqueIndex:idx_game_round"`
	Number   int    `gorm:"uniqueIndex:idx_game_round"`
	Status   string
	Snapshot []byte // public snapshot JSON, written on resolve
}

type EventRecord struct {
	ID      uint   `gorm:"primaryKey"`
	GameID  string `gorm:"index"`
	Round   int
	Seq     int
	Type    string
	Private int    // player id the event is restricted to, 0 = public
	Payload []byte // engine.Event JSON, public fields only
}

type Store interface {
	CreateGame(ctx context.Context, game GameRecord) error
	Game(ctx context.Context, code string) (GameRecord, error)
	// OpenRound inserts round number for the game in OPEN status.
	OpenRound(ctx context.Context, gameID string, number int) error
	// LockRound flips OPEN to LOCKED atomically; ErrStatusConflict when the
	// round already moved on.
	LockRound(ctx context.Context, gameID string, number int) error
	// ResolveRound flips LOCKED to RESOLVED atomically, storing the snapshot
	// and appending the event log in one transaction. The CAS makes a retried
	// resolution a no-op instead of a double write.
	ResolveRound(ctx context.Context, gameID string, number int, snapshot []byte, events []EventRecord, winner string) error
	Events(ctx context.Context, gameID string, round int) ([]EventRecord, error)
}
