package engine

import (
	"errors"
	"testing"
)

func TestLock_Transitions(t *testing.T) {
	s := NewState(submitRoster(), DefaultRules())

	if err := Lock(s); err != nil {
		t.Fatalf("first lock: %v", err)
	}
	if err := Lock(s); !errors.Is(err, ErrAlreadyLocked) {
		t.Fatalf("want ErrAlreadyLocked, got %v", err)
	}

	s.Status = StatusResolved
	if err := Lock(s); !errors.Is(err, ErrAlreadyResolved) {
		t.Fatalf("want ErrAlreadyResolved, got %v", err)
	}

	s.Status = StatusOpen
	s.Winner = TeamHealthy
	if err := Lock(s); !errors.Is(err, ErrGameOver) {
		t.Fatalf("want ErrGameOver, got %v", err)
	}
}

func TestResolve_RequiresLockedRound(t *testing.T) {
	s := NewState(submitRoster(), DefaultRules())
	if _, err := Resolve(s); !errors.Is(err, ErrRoundNotLocked) {
		t.Fatalf("want ErrRoundNotLocked, got %v", err)
	}
}

func TestResolve_SecondCallIsRejected(t *testing.T) {
	s := NewState(submitRoster(), DefaultRules())
	mustLockResolve(t, s)

	before := s.Public()
	if _, err := Resolve(s); !errors.Is(err, ErrAlreadyResolved) {
		t.Fatalf("want ErrAlreadyResolved, got %v", err)
	}
	after := s.Public()
	if len(before.Players) != len(after.Players) {
		t.Fatalf("second resolve mutated state")
	}
	for i := range before.Players {
		if before.Players[i] != after.Players[i] {
			t.Fatalf("second resolve mutated player %d", before.Players[i].ID)
		}
	}
}

func TestResolve_MalformedStateAbortsWithoutPartialCommit(t *testing.T) {
	s := NewState(submitRoster(), DefaultRules())
	if err := Lock(s); err != nil {
		t.Fatalf("lock: %v", err)
	}
	s.Ring = s.Ring[:len(s.Ring)-1] // break the ring invariant

	events, err := Resolve(s)
	if !errors.Is(err, ErrMalformedState) {
		t.Fatalf("want ErrMalformedState, got %v", err)
	}
	if events != nil {
		t.Fatalf("aborted resolution must not emit events")
	}
	if s.Status != StatusLocked {
		t.Fatalf("aborted resolution must leave the round LOCKED, got %s", s.Status)
	}
}

func TestResolve_ForcesPatientZeroWhenNoSeedSubmitted(t *testing.T) {
	s := NewState(submitRoster(), DefaultRules())
	mustLockResolve(t, s)

	if s.PatientZero == 0 {
		t.Fatalf("patient zero is mandatory in round 1")
	}
	if s.Players[s.PatientZero].Infection == InfectionNone {
		t.Fatalf("patient zero not infected")
	}
}

func TestResolve_EarliestSeedWins(t *testing.T) {
	seats := []Seat{
		{Name: "c1", Role: RoleCarrier},
		{Name: "c2", Role: RoleCarrier},
		{Name: "a", Role: RoleCitizen},
		{Name: "b", Role: RoleCitizen},
	}
	s := NewState(seats, DefaultRules())
	mustSubmit(t, s, 2, Action{Kind: ActionSeed, Target: 4}, at(2000))
	mustSubmit(t, s, 1, Action{Kind: ActionSeed, Target: 3}, at(1000))
	mustLockResolve(t, s)

	if s.PatientZero != 3 {
		t.Fatalf("earliest seed should win, got patient zero %d", s.PatientZero)
	}
}

func TestBeginRound_PromotesAndReopens(t *testing.T) {
	s := NewState(submitRoster(), DefaultRules())

	if err := BeginRound(s); !errors.Is(err, ErrRoundInProgress) {
		t.Fatalf("want ErrRoundInProgress, got %v", err)
	}

	mustLockResolve(t, s)
	if err := BeginRound(s); err != nil {
		t.Fatalf("begin round: %v", err)
	}
	if s.Round != 2 || s.Status != StatusOpen {
		t.Fatalf("round=%d status=%s", s.Round, s.Status)
	}
	if len(s.Inputs) != 0 {
		t.Fatalf("inputs must reset on a fresh round")
	}
	if p := s.Players[s.PatientZero]; p.Alive && p.Infection != InfectionContagious {
		t.Fatalf("last round's infected should turn contagious, got %s", p.Infection)
	}

	s.Winner = TeamInfected
	s.Status = StatusResolved
	if err := BeginRound(s); !errors.Is(err, ErrGameOver) {
		t.Fatalf("victory is terminal, got %v", err)
	}
}

// A player whose incubation runs out dies at the top of resolution, so a
// shot aimed at them the same round finds a corpse.
func TestResolve_IncubationDeathLandsBeforeShots(t *testing.T) {
	seats := []Seat{
		{Name: "shooter", Role: RoleShooter},
		{Name: "p2", Role: RoleCitizen},
		{Name: "sick", Role: RoleCitizen},
		{Name: "carrier", Role: RoleCarrier},
		{Name: "p5", Role: RoleCitizen},
		{Name: "p6", Role: RoleCitizen},
	}
	s := NewState(seats, DefaultRules())
	s.Round = 2
	s.PatientZero = 3
	s.Players[3].Infection = InfectionCarrier
	s.Players[3].DeathRound = 2

	mustSubmit(t, s, 1, Action{Kind: ActionShoot, Target: 3}, at(1000))
	if err := Lock(s); err != nil {
		t.Fatalf("lock: %v", err)
	}
	events, err := Resolve(s)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if s.Players[3].Alive {
		t.Fatalf("player 3 should have succumbed to the infection")
	}
	if !containsEvent(events, EvtSuccumbed) {
		t.Fatalf("expected a succumbed announcement")
	}
	for _, e := range events {
		if e.Type == EvtShotResolved {
			if e.Reason != ShotTargetDead {
				t.Fatalf("shot at the succumbed player should find a corpse, got %q", e.Reason)
			}
		}
	}
	// The bullet was still spent on the attempt.
	if got := s.Inventory.Count(1, ItemBullet); got != s.Rules.StartBullets-1 {
		t.Fatalf("bullets=%d", got)
	}
}

// Nine seats, two carrier-role players. Round 1 exercises the forced seed
// outside the cap plus a same-round kill whose corpse the propagation walk
// has to skip.
func TestResolve_EndToEndNinePlayers(t *testing.T) {
	seats := []Seat{
		{Name: "shooter", Role: RoleShooter},
		{Name: "p2", Role: RoleCitizen},
		{Name: "c3", Role: RoleCarrier},
		{Name: "p4", Role: RoleCitizen},
		{Name: "p5", Role: RoleCitizen},
		{Name: "p6", Role: RoleCitizen},
		{Name: "c7", Role: RoleCarrier},
		{Name: "p8", Role: RoleCitizen},
		{Name: "res", Role: RoleResearcher},
	}
	s := NewState(seats, DefaultRules())

	mustSubmit(t, s, 3, Action{Kind: ActionSeed, Target: 6}, at(500))
	mustSubmit(t, s, 1, Action{Kind: ActionShoot, Target: 2}, at(1000))
	if err := Lock(s); err != nil {
		t.Fatalf("lock: %v", err)
	}
	events, err := Resolve(s)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if s.PatientZero != 6 {
		t.Fatalf("patient zero=%d, want 6", s.PatientZero)
	}
	if s.Players[2].Alive {
		t.Fatalf("shot target should be dead")
	}

	// Carrier 3 walks left past the fresh corpse at seat 2 to infect seat 1,
	// then right to seat 4; the cap of 2 stops carrier 7 entirely.
	for _, id := range []int{1, 4} {
		if s.Players[id].Infection != InfectionCarrier {
			t.Fatalf("player %d should be newly infected", id)
		}
	}
	if s.Players[8].Infection != InfectionNone || s.Players[5].Infection != InfectionNone {
		t.Fatalf("cap of 2 violated")
	}

	// Seed + 2 propagations: the pre-seed does not count against the cap.
	infected := 0
	for _, e := range events {
		if e.Type == EvtInfected {
			infected++
			if e.Private != e.Target {
				t.Fatalf("infection notice must be private to the target: %+v", e)
			}
		}
	}
	if infected != 2 {
		t.Fatalf("want 2 propagation events, got %d", infected)
	}
	if !containsEvent(events, EvtPatientZero) {
		t.Fatalf("expected a public patient zero designation")
	}
	if s.Status != StatusResolved {
		t.Fatalf("status=%s", s.Status)
	}
}

func TestResolve_ResearchVictoryEndsGame(t *testing.T) {
	s := NewState(researchRoster(), DefaultRules())
	s.Research = s.Rules.ResearchGoal - 1
	s.PatientZero = 5 // pretend the seed already happened
	s.Players[5].Infection = InfectionCarrier

	mustSubmit(t, s, 2, Action{Kind: ActionResearch, Target: 4}, at(100))
	mustSubmit(t, s, 3, Action{Kind: ActionResearch, Target: 4}, at(101))
	mustLockResolve(t, s)

	if s.Winner != TeamHealthy {
		t.Fatalf("winner=%q", s.Winner)
	}
	if err := BeginRound(s); !errors.Is(err, ErrGameOver) {
		t.Fatalf("no round may open after victory, got %v", err)
	}
}

func containsEvent(events []Event, eventType EventType) bool {
	for _, event := range events {
		if event.Type == eventType {
			return true
		}
	}
	return false
}

func mustLockResolve(t *testing.T, s *State) {
	t.Helper()
	if err := Lock(s); err != nil {
		t.Fatalf("lock: %v", err)
	}
	if _, err := Resolve(s); err != nil {
		t.Fatalf("resolve: %v", err)
	}
}
