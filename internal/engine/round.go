package engine

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyLocked   = errors.New("round already locked")
	ErrAlreadyResolved = errors.New("round already resolved")
	ErrRoundNotLocked  = errors.New("round not locked")
	ErrRoundInProgress = errors.New("round not resolved yet")
	ErrMalformedState  = errors.New("malformed game state")
)

// roundCtx carries the working state and the ordered event log through the
// pipeline stages.
type roundCtx struct {
	s      *State
	events []Event
}

func (rc *roundCtx) emit(e Event) {
	e.Round = rc.s.Round
	rc.events = append(rc.events, e)
}

// Lock freezes the input store for the current round. Monotonic: there is no
// way back to OPEN.
func Lock(s *State) error {
	if s.Winner != "" {
		return ErrGameOver
	}
	switch s.Status {
	case StatusOpen:
		s.Status = StatusLocked
		return nil
	case StatusLocked:
		return ErrAlreadyLocked
	default:
		return ErrAlreadyResolved
	}
}

// Resolve runs the fixed pipeline exactly once for a LOCKED round:
// incubation deaths, patient zero (round 1), corruption, shots, cures,
// antibody test + research, propagation, victory. It works on a clone and
// commits only when every stage succeeded, so a failed resolution leaves the
// canonical state untouched and still LOCKED. A second call observes
// RESOLVED and refuses to re-apply anything.
func Resolve(s *State) ([]Event, error) {
	switch s.Status {
	case StatusResolved:
		return nil, ErrAlreadyResolved
	case StatusLocked:
	default:
		return nil, ErrRoundNotLocked
	}
	if err := checkInvariants(s); err != nil {
		return nil, err
	}

	work := s.Clone()
	rc := &roundCtx{s: work}

	rc.applyIncubation()
	if err := rc.seedPatientZero(); err != nil {
		return nil, err
	}
	sabotage := rc.resolveCorruption()
	rc.resolveShots(sabotage)
	rc.resolveCures()
	rc.resolveTestAndResearch()
	rc.resolvePropagation()
	rc.resolveVictory()

	work.Status = StatusResolved
	rc.emit(Event{Type: EvtRoundResolved})

	*s = *work
	return rc.events, nil
}

// BeginRound opens the next round after a resolved one, unless the game
// ended. Players infected in earlier rounds turn contagious here, which is
// why patient zero only starts spreading one round after the seed.
func BeginRound(s *State) error {
	if s.Winner != "" {
		return ErrGameOver
	}
	if s.Status != StatusResolved {
		return ErrRoundInProgress
	}
	s.Round++
	s.Status = StatusOpen
	s.Inputs = map[int]Input{}
	for _, p := range s.Players {
		if p.Alive && p.Infection == InfectionCarrier {
			p.Infection = InfectionContagious
		}
	}
	return nil
}

// applyIncubation kills players whose infection ran its course, before any
// shot lands this round.
func (rc *roundCtx) applyIncubation() {
	s := rc.s
	for _, id := range s.Ring {
		p := s.Players[id]
		if p.Alive && p.DeathRound != 0 && p.DeathRound <= s.Round {
			p.Alive = false
			rc.emit(Event{Type: EvtSuccumbed, Target: id})
			rc.emit(Event{Type: EvtPlayerDied, Target: id})
		}
	}
}

// seedPatientZero applies the mandatory round-1 pre-seed, outside the
// propagation cap. The earliest submitted carrier choice wins; if no carrier
// chose a valid target the engine forces one so the seed never silently
// fails to happen.
func (rc *roundCtx) seedPatientZero() error {
	s := rc.s
	if s.Round != 1 || s.PatientZero != 0 {
		return nil
	}

	seed := 0
	var seedAt int64
	for id, in := range s.Inputs {
		a, ok := in[ActionSeed]
		if !ok {
			continue
		}
		if p := s.Players[id]; p == nil || !p.Alive || p.Role != RoleCarrier {
			continue
		}
		t := s.Players[a.Target]
		if t == nil || !t.Alive || t.Immune || t.Infection != InfectionNone {
			continue
		}
		at := a.SubmittedAt.UnixMilli()
		if seed == 0 || at < seedAt {
			seed, seedAt = a.Target, at
		}
	}
	if seed == 0 {
		for _, id := range s.Ring {
			p := s.Players[id]
			if p.Alive && !p.Immune && p.Infection == InfectionNone {
				seed = id
				break
			}
		}
	}
	if seed == 0 {
		return fmt.Errorf("%w: no patient zero candidate", ErrMalformedState)
	}

	rc.infect(seed)
	s.PatientZero = seed
	rc.emit(Event{Type: EvtPatientZero, Target: seed})
	return nil
}

// checkInvariants guards the pipeline against malformed prior state. Any
// violation aborts the whole resolution with no partial commit.
func checkInvariants(s *State) error {
	if len(s.Ring) != len(s.Players) {
		return fmt.Errorf("%w: ring size %d != player count %d", ErrMalformedState, len(s.Ring), len(s.Players))
	}
	for _, id := range s.Ring {
		p, ok := s.Players[id]
		if !ok {
			return fmt.Errorf("%w: ring references unknown player %d", ErrMalformedState, id)
		}
		if p.Role.Team() == "" {
			return fmt.Errorf("%w: player %d has unknown role %q", ErrMalformedState, id, p.Role)
		}
	}
	return nil
}
