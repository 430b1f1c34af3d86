package engine

import (
	"errors"
	"testing"
)

func submitRoster() []Seat {
	return []Seat{
		{Name: "carrier", Role: RoleCarrier},
		{Name: "shooter", Role: RoleShooter},
		{Name: "citizen", Role: RoleCitizen},
		{Name: "researcher", Role: RoleResearcher},
	}
}

func TestSubmit_Validation(t *testing.T) {
	cases := []struct {
		name    string
		setup   func(*State)
		player  int
		action  Action
		wantErr error
	}{
		{
			name:    "role-bound action rejected for wrong role",
			player:  3,
			action:  Action{Kind: ActionShoot, Target: 1},
			wantErr: ErrWrongRole,
		},
		{
			name:    "dead target",
			setup:   func(s *State) { s.Players[3].Alive = false },
			player:  2,
			action:  Action{Kind: ActionShoot, Target: 3},
			wantErr: ErrDeadTarget,
		},
		{
			name:    "self target",
			player:  2,
			action:  Action{Kind: ActionShoot, Target: 2},
			wantErr: ErrSelfTarget,
		},
		{
			name:    "dead player cannot submit",
			setup:   func(s *State) { s.Players[2].Alive = false },
			player:  2,
			action:  Action{Kind: ActionShoot, Target: 3},
			wantErr: ErrDeadPlayer,
		},
		{
			name:    "seed outside round 1",
			setup:   func(s *State) { s.Round = 2 },
			player:  1,
			action:  Action{Kind: ActionSeed, Target: 3},
			wantErr: ErrSeedWindowClosed,
		},
		{
			name:    "seed target immune",
			setup:   func(s *State) { s.Players[3].Immune = true },
			player:  1,
			action:  Action{Kind: ActionSeed, Target: 3},
			wantErr: ErrSeedTargetImmune,
		},
		{
			name:    "pledge beyond balance",
			player:  3,
			action:  Action{Kind: ActionPledge, Amount: 999},
			wantErr: ErrInsufficientTokens,
		},
		{
			name:    "negative pledge",
			player:  3,
			action:  Action{Kind: ActionPledge, Amount: -5},
			wantErr: ErrNegativePledge,
		},
		{
			name:   "zero pledge withdraws a standing one",
			player: 3,
			action: Action{Kind: ActionPledge, Amount: 0},
		},
		{
			name:    "locked round rejects writes",
			setup:   func(s *State) { s.Status = StatusLocked },
			player:  3,
			action:  Action{Kind: ActionVote, Target: 1},
			wantErr: ErrRoundNotOpen,
		},
		{
			name:    "unknown kind",
			player:  3,
			action:  Action{Kind: "dance", Target: 1},
			wantErr: ErrUnknownAction,
		},
		{
			name:   "vote is open to everyone",
			player: 3,
			action: Action{Kind: ActionVote, Target: 1},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewState(submitRoster(), DefaultRules())
			if tc.setup != nil {
				tc.setup(s)
			}
			err := Submit(s, tc.player, tc.action, at(100))
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestSubmit_AmmoReservedOnceAcrossResubmission(t *testing.T) {
	s := NewState(submitRoster(), DefaultRules())
	start := s.Inventory.Count(2, ItemBullet)

	mustSubmit(t, s, 2, Action{Kind: ActionShoot, Target: 3}, at(100))
	mustSubmit(t, s, 2, Action{Kind: ActionShoot, Target: 1}, at(200)) // change of heart

	if got := s.Inventory.Count(2, ItemBullet); got != start-1 {
		t.Fatalf("resubmission double-charged: %d -> %d", start, got)
	}
	if got := s.Inputs[2][ActionShoot].Target; got != 1 {
		t.Fatalf("upsert did not replace target: %d", got)
	}
}

func TestSubmit_OutOfAmmoRecordedAsSkipped(t *testing.T) {
	rules := DefaultRules()
	rules.StartBullets = 0
	s := NewState(submitRoster(), rules)

	mustSubmit(t, s, 2, Action{Kind: ActionShoot, Target: 3}, at(100))
	if got := s.Inputs[2][ActionShoot].Skipped; got != SkipOutOfAmmo {
		t.Fatalf("want skipped action, got %q", got)
	}

	rc := &roundCtx{s: s}
	if outcomes := rc.resolveShots(false); len(outcomes) != 0 {
		t.Fatalf("skipped action must not fire: %+v", outcomes)
	}
}

func TestSubmit_PledgeDeltaNeverDoubleCharges(t *testing.T) {
	s := NewState(submitRoster(), DefaultRules())
	start := s.Players[3].Tokens

	mustSubmit(t, s, 3, Action{Kind: ActionPledge, Amount: 10}, at(100))
	mustSubmit(t, s, 3, Action{Kind: ActionPledge, Amount: 15}, at(200))
	if got := s.Players[3].Tokens; got != start-15 {
		t.Fatalf("want %d, got %d", start-15, got)
	}

	// Lowering the pledge refunds the difference.
	mustSubmit(t, s, 3, Action{Kind: ActionPledge, Amount: 5}, at(300))
	if got := s.Players[3].Tokens; got != start-5 {
		t.Fatalf("want %d, got %d", start-5, got)
	}
}
