package engine

import "sort"

type Vote struct {
	Voter  int `json:"voter"`
	Target int `json:"target"`
}

// TallyVotes picks the plurality target. Ties break toward the lowest player
// id so the tally is total and deterministic.
func TallyVotes(votes []Vote) (int, bool) {
	if len(votes) == 0 {
		return 0, false
	}
	counts := map[int]int{}
	for _, v := range votes {
		counts[v.Target]++
	}
	targets := make([]int, 0, len(counts))
	for t := range counts {
		targets = append(targets, t)
	}
	sort.Ints(targets)
	best, bestCount := 0, 0
	for _, t := range targets {
		if counts[t] > bestCount {
			best, bestCount = t, counts[t]
		}
	}
	return best, true
}

// resolveTestAndResearch tallies the public antibody-test vote and advances
// the research counter. Who got tested is public; the result goes only to
// the tested player. Research moves only when every living researcher named
// the same target and that target really holds the antibodies.
func (rc *roundCtx) resolveTestAndResearch() {
	s := rc.s

	var votes []Vote
	for id, in := range s.Inputs {
		a, ok := in[ActionVote]
		if !ok {
			continue
		}
		if p := s.Players[id]; p == nil || !p.Alive {
			continue
		}
		votes = append(votes, Vote{Voter: id, Target: a.Target})
	}
	if tested, ok := TallyVotes(votes); ok {
		rc.emit(Event{Type: EvtTestIdentity, Target: tested})
		rc.emit(Event{Type: EvtTestResult, Target: tested, Result: s.Players[tested].Antibodies, Private: tested})
	}

	// Oracle inspections ride the same private channel.
	for _, id := range s.Ring {
		p := s.Players[id]
		if p.Role != RoleOracle || !p.Alive {
			continue
		}
		if a, ok := s.Inputs[id][ActionInspect]; ok {
			rc.emit(Event{Type: EvtOracleReport, Actor: id, Target: a.Target, Role: s.Players[a.Target].Role, Private: id})
		}
	}

	target, unanimous := 0, true
	submissions := 0
	for _, id := range s.Ring {
		p := s.Players[id]
		if p.Role != RoleResearcher || !p.Alive {
			continue
		}
		a, ok := s.Inputs[id][ActionResearch]
		if !ok {
			unanimous = false
			break
		}
		submissions++
		if target == 0 {
			target = a.Target
		} else if target != a.Target {
			unanimous = false
			break
		}
	}
	if !unanimous || submissions == 0 || s.Researched[target] {
		return
	}
	if s.Players[target].Antibodies {
		s.Research++
		s.Researched[target] = true
		rc.emit(Event{Type: EvtResearchAdvance, Target: target, Amount: s.Research})
	}
}
