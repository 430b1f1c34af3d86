package engine

// EvaluateVictory checks the terminal conditions once per round, after every
// other stage. Order is load-bearing: the healthy side's research victory is
// checked before anything else, then their extermination victory, then the
// infected side's "no clean living target" sweep.
func EvaluateVictory(s *State) (Team, bool) {
	if s.Research >= s.Rules.ResearchGoal {
		return TeamHealthy, true
	}

	carrierAlive := false
	for _, p := range s.Players {
		if p.Role == RoleCarrier && p.Alive {
			carrierAlive = true
			break
		}
	}
	if !carrierAlive {
		return TeamHealthy, true
	}

	for _, p := range s.Players {
		if p.Alive && p.Infection == InfectionNone && !p.Immune && !p.Antibodies {
			return "", false
		}
	}
	return TeamInfected, true
}

func (rc *roundCtx) resolveVictory() {
	if winner, done := EvaluateVictory(rc.s); done {
		rc.s.Winner = winner
		rc.emit(Event{Type: EvtGameEnded, Winner: winner})
	}
}
