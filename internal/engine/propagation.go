package engine

// Propagate spreads infection along the seating ring. Every spreader tries
// their left neighbor, then their right one: the walk skips dead seats and
// stops at the first living player in that direction. An existing carrier
// (or a freshly infected one) soaks the attempt; the immune just shrug it
// off. The global cap ends the whole pass mid-carrier if needed.
//
// The carriers slice must already be in deterministic order; infected is
// mutated so later carriers see this round's new infections.
func Propagate(carriers []int, alive, infected, immune map[int]bool, ring []int, limit int) []int {
	pos := make(map[int]int, len(ring))
	for i, id := range ring {
		pos[id] = i
	}

	var newly []int
	for _, carrier := range carriers {
		if len(newly) >= limit {
			break
		}
		start, ok := pos[carrier]
		if !ok {
			continue
		}
		for _, dir := range []int{-1, +1} {
			if len(newly) >= limit {
				break
			}
			n := len(ring)
			for step := 1; step < n; step++ {
				id := ring[((start+dir*step)%n+n)%n]
				if !alive[id] {
					continue
				}
				// First living player in this direction; the walk ends
				// here whether or not anyone gets infected.
				if !infected[id] && !immune[id] {
					infected[id] = true
					newly = append(newly, id)
				}
				break
			}
		}
	}
	return newly
}

// resolvePropagation is the pipeline stage around Propagate. Newly infected
// players learn their fate privately; nothing is announced.
func (rc *roundCtx) resolvePropagation() {
	s := rc.s
	carriers := s.livingContagious()
	if len(carriers) == 0 {
		return
	}

	alive := map[int]bool{}
	infected := map[int]bool{}
	immune := map[int]bool{}
	for id, p := range s.Players {
		alive[id] = p.Alive
		infected[id] = p.Infection != InfectionNone
		immune[id] = p.Immune
	}

	for _, id := range Propagate(carriers, alive, infected, immune, s.Ring, s.Rules.PropagationCap) {
		rc.infect(id)
		rc.emit(Event{Type: EvtInfected, Target: id, Private: id})
	}
}

func (rc *roundCtx) infect(id int) {
	p := rc.s.Players[id]
	p.Infection = InfectionCarrier
	if rc.s.Rules.Incubation > 0 {
		p.DeathRound = rc.s.Round + rc.s.Rules.Incubation
	}
}
