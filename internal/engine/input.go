package engine

import (
	"errors"
	"time"
)

var (
	ErrGameOver           = errors.New("game already ended")
	ErrRoundNotOpen       = errors.New("round not open")
	ErrUnknownPlayer      = errors.New("unknown player")
	ErrDeadPlayer         = errors.New("player is dead")
	ErrUnknownAction      = errors.New("unknown action kind")
	ErrWrongRole          = errors.New("action not allowed for this role")
	ErrUnknownTarget      = errors.New("unknown target")
	ErrDeadTarget         = errors.New("target is dead")
	ErrSelfTarget         = errors.New("cannot target yourself")
	ErrSeedWindowClosed   = errors.New("patient zero can only be seeded in round 1")
	ErrSeedTargetImmune   = errors.New("patient zero target is immune")
	ErrTargetExhausted    = errors.New("target already researched")
	ErrInsufficientTokens = errors.New("pledge exceeds token balance")
	ErrNegativePledge     = errors.New("pledge must not be negative")
)

type ActionKind string

const (
	ActionShoot    ActionKind = "shoot"
	ActionCure     ActionKind = "cure"
	ActionSeed     ActionKind = "seed_patient_zero"
	ActionResearch ActionKind = "research"
	ActionInspect  ActionKind = "inspect"
	ActionIdentify ActionKind = "identify"
	ActionPledge   ActionKind = "pledge"
	ActionVote     ActionKind = "vote"
)

type SkipReason string

const (
	SkipNone       SkipReason = ""
	SkipOutOfAmmo  SkipReason = "out_of_ammo"
	SkipNoAntidote SkipReason = "no_antidote"
)

// Action is one tagged choice. Exactly one variant per kind per player per
// round; which kinds a player may submit depends on their role.
type Action struct {
	Kind        ActionKind `json:"kind"`
	Target      int        `json:"target,omitempty"`
	Amount      int        `json:"amount,omitempty"` // pledge only
	SubmittedAt time.Time  `json:"submitted_at"`
	Skipped     SkipReason `json:"skipped,omitempty"`
}

// Input holds one player's choices for the current round, one per kind.
type Input map[ActionKind]Action

func (in Input) clone() Input {
	out := make(Input, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// roleBound maps kinds reserved to a single role. Cure, pledge and vote are
// open to everyone.
var roleBound = map[ActionKind]Role{
	ActionShoot:    RoleShooter,
	ActionSeed:     RoleCarrier,
	ActionResearch: RoleResearcher,
	ActionInspect:  RoleOracle,
	ActionIdentify: RoleAgent,
}

// noSelf lists kinds where targeting yourself is rejected.
var noSelf = map[ActionKind]bool{
	ActionShoot:   true,
	ActionSeed:    true,
	ActionInspect: true,
}

// Submit validates and upserts one action for the current round. It is the
// only mutation allowed while the round is OPEN: resource reservations
// (ammunition, antidotes, pledged tokens) happen here, idempotently, so a
// player overwriting their own choice is never charged twice.
func Submit(s *State, playerID int, a Action, now time.Time) error {
	if s.Winner != "" {
		return ErrGameOver
	}
	if s.Status != StatusOpen {
		return ErrRoundNotOpen
	}
	p, ok := s.Players[playerID]
	if !ok {
		return ErrUnknownPlayer
	}
	if !p.Alive {
		return ErrDeadPlayer
	}
	if err := validate(s, p, a); err != nil {
		return err
	}

	a.SubmittedAt = now
	a.Skipped = SkipNone
	prev, hadPrev := s.Inputs[playerID][a.Kind]

	switch a.Kind {
	case ActionShoot:
		// One bullet reserved per round, kept across target changes.
		if !hadPrev || prev.Skipped != SkipNone {
			if !s.Inventory.Consume(playerID, ItemBullet) {
				a.Skipped = SkipOutOfAmmo
			}
		}
	case ActionCure:
		if !hadPrev || prev.Skipped != SkipNone {
			if !s.Inventory.consumeAntidote(playerID) {
				a.Skipped = SkipNoAntidote
			}
		}
	case ActionPledge:
		// Debit only the delta so resubmission never double-charges.
		delta := a.Amount - prev.Amount
		if delta > p.Tokens {
			return ErrInsufficientTokens
		}
		p.Tokens -= delta
	}

	if s.Inputs[playerID] == nil {
		s.Inputs[playerID] = Input{}
	}
	s.Inputs[playerID][a.Kind] = a
	return nil
}

func validate(s *State, p *Player, a Action) error {
	switch a.Kind {
	case ActionShoot, ActionCure, ActionSeed, ActionResearch, ActionInspect, ActionIdentify, ActionPledge, ActionVote:
	default:
		return ErrUnknownAction
	}
	if role, bound := roleBound[a.Kind]; bound && p.Role != role {
		return ErrWrongRole
	}
	if a.Kind == ActionPledge {
		if a.Amount < 0 {
			return ErrNegativePledge
		}
		return nil
	}

	target, ok := s.Players[a.Target]
	if !ok {
		return ErrUnknownTarget
	}
	if !target.Alive {
		return ErrDeadTarget
	}
	if noSelf[a.Kind] && a.Target == p.ID {
		return ErrSelfTarget
	}

	switch a.Kind {
	case ActionSeed:
		if s.Round != 1 {
			return ErrSeedWindowClosed
		}
		if target.Immune {
			return ErrSeedTargetImmune
		}
	case ActionResearch:
		if s.Researched[a.Target] {
			return ErrTargetExhausted
		}
	}
	return nil
}
