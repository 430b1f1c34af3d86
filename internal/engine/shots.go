package engine

import "sort"

// Shot is the derived firing record, ordered by submission time.
type Shot struct {
	Shooter     int   `json:"shooter"`
	Target      int   `json:"target"`
	SubmittedAt int64 `json:"submitted_at"`
}

type ShotOutcome struct {
	Shot
	Reason ShotReason `json:"reason"`
}

// collectShots gathers non-skipped shoot actions from living shooters and
// orders them first-submitted-first-resolved, shooter id as the final
// tie-break so repeated runs agree.
func collectShots(s *State) []Shot {
	var shots []Shot
	for id, in := range s.Inputs {
		a, ok := in[ActionShoot]
		if !ok || a.Skipped != SkipNone {
			continue
		}
		if p := s.Players[id]; p == nil || !p.Alive {
			continue
		}
		shots = append(shots, Shot{Shooter: id, Target: a.Target, SubmittedAt: a.SubmittedAt.UnixMilli()})
	}
	sort.Slice(shots, func(i, j int) bool {
		if shots[i].SubmittedAt != shots[j].SubmittedAt {
			return shots[i].SubmittedAt < shots[j].SubmittedAt
		}
		return shots[i].Shooter < shots[j].Shooter
	})
	return shots
}

// resolveShots applies the ordered batch. Ammunition was spent at submission
// on the attempt, so every branch below is outcome-only. The outlier of the
// vest clan is never saved by their vest; that exception is checked before
// the vest burns.
func (rc *roundCtx) resolveShots(sabotageActive bool) []ShotOutcome {
	s := rc.s
	shots := collectShots(s)
	outcomes := make([]ShotOutcome, 0, len(shots))

	for _, shot := range shots {
		target := s.Players[shot.Target]
		var reason ShotReason
		switch {
		case sabotageActive && s.Players[shot.Shooter].Role == RoleShooter:
			reason = ShotSabotaged
		case !target.Alive:
			reason = ShotTargetDead
		case s.Inventory.Count(shot.Target, ItemVest) > 0 && !(target.Clan == ClanWardens && target.Role == RoleOutlier):
			s.Inventory.Consume(shot.Target, ItemVest)
			reason = ShotBlockedByVest
		default:
			reason = ShotKilled
			target.Alive = false
		}
		outcomes = append(outcomes, ShotOutcome{Shot: shot, Reason: reason})
		rc.emit(Event{Type: EvtShotResolved, Actor: shot.Shooter, Target: shot.Target, Reason: reason})
		if reason == ShotKilled {
			rc.emit(Event{Type: EvtPlayerDied, Target: shot.Target})
		}
	}
	return outcomes
}

// resolveCures runs after the shots: an antidote reserved at submission
// clears the target's infection and their scheduled death. Wasted on a dead
// or uninfected target.
func (rc *roundCtx) resolveCures() {
	s := rc.s
	type cure struct {
		actor  int
		target int
		at     int64
	}
	var cures []cure
	for id, in := range s.Inputs {
		a, ok := in[ActionCure]
		if !ok || a.Skipped != SkipNone {
			continue
		}
		if p := s.Players[id]; p == nil || !p.Alive {
			continue
		}
		cures = append(cures, cure{actor: id, target: a.Target, at: a.SubmittedAt.UnixMilli()})
	}
	sort.Slice(cures, func(i, j int) bool {
		if cures[i].at != cures[j].at {
			return cures[i].at < cures[j].at
		}
		return cures[i].actor < cures[j].actor
	})
	for _, c := range cures {
		target := s.Players[c.target]
		if !target.Alive || target.Infection == InfectionNone {
			continue
		}
		target.Infection = InfectionNone
		target.DeathRound = 0
		rc.emit(Event{Type: EvtCured, Actor: c.actor, Target: c.target, Private: c.target})
	}
}
