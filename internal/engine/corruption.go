package engine

// CorruptionOutcome routes the tokens pledged around the state agent's
// sabotage. Pledges were debited at submission time; resolution only decides
// whether they land on the agent or flow back.
type CorruptionOutcome struct {
	SabotageActive bool `json:"sabotage_active"`
	Payout         int  `json:"payout"`
	RefundOpposing int  `json:"refund_opposing"`
	RefundAgent    int  `json:"refund_agent"`
}

// ResolveCorruption applies the pledge thresholds. Precedence matters: the
// infected side buying the sabotage outright beats the healthy side's veto,
// and an uncontested identification defaults to active with the agent
// pocketing everything.
func ResolveCorruption(opposing, agentSide int, rules Rules) CorruptionOutcome {
	switch {
	case agentSide >= rules.AgentThreshold:
		return CorruptionOutcome{SabotageActive: true, Payout: agentSide, RefundOpposing: opposing}
	case opposing >= rules.OpposingThreshold:
		return CorruptionOutcome{SabotageActive: false, Payout: opposing, RefundAgent: agentSide}
	default:
		return CorruptionOutcome{SabotageActive: true, Payout: opposing + agentSide}
	}
}

// resolveCorruption is the pipeline stage. Sabotage is only in play when a
// living agent actually pointed at a shooter; a wrong identification refunds
// every pledge.
func (rc *roundCtx) resolveCorruption() bool {
	s := rc.s

	agentID, identified := 0, false
	for _, id := range s.Ring {
		p := s.Players[id]
		if p.Role != RoleAgent || !p.Alive {
			continue
		}
		agentID = id
		a, ok := s.Inputs[id][ActionIdentify]
		if ok && s.Players[a.Target] != nil && s.Players[a.Target].Role == RoleShooter {
			identified = true
		}
	}

	opposing, agentSide := 0, 0
	pledges := map[int]int{}
	for id, in := range s.Inputs {
		a, ok := in[ActionPledge]
		if !ok || a.Amount == 0 {
			continue
		}
		pledges[id] = a.Amount
		if s.Players[id].Role.Team() == TeamInfected {
			agentSide += a.Amount
		} else {
			opposing += a.Amount
		}
	}

	if !identified {
		for id, amount := range pledges {
			s.Players[id].Tokens += amount
		}
		return false
	}

	out := ResolveCorruption(opposing, agentSide, s.Rules)
	for id, amount := range pledges {
		team := s.Players[id].Role.Team()
		if (team == TeamInfected && out.RefundAgent > 0) || (team != TeamInfected && out.RefundOpposing > 0) {
			s.Players[id].Tokens += amount
		}
	}
	if agentID != 0 && out.Payout > 0 {
		s.Players[agentID].Tokens += out.Payout
		s.CorruptionPaid += out.Payout
	}
	rc.emit(Event{Type: EvtCorruptionResolved, Target: agentID, Amount: out.Payout, Result: out.SabotageActive})
	return out.SabotageActive
}
