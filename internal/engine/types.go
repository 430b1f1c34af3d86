package engine

type Role string

const (
	RoleCarrier    Role = "carrier"
	RoleShooter    Role = "shooter"
	RoleResearcher Role = "researcher"
	RoleOracle     Role = "oracle"
	RoleAgent      Role = "agent"
	RoleCitizen    Role = "citizen"
	RoleOutlier    Role = "outlier"
)

type Team string

const (
	TeamInfected Team = "infected"
	TeamHealthy  Team = "healthy"
)

// Team is derived from the role, never stored. Adding a role means
// adding a case here or Team() returns "" and Resolve aborts the round.
func (r Role) Team() Team {
	switch r {
	case RoleCarrier, RoleAgent:
		return TeamInfected
	case RoleShooter, RoleResearcher, RoleOracle, RoleCitizen, RoleOutlier:
		return TeamHealthy
	}
	return ""
}

type Clan string

const (
	ClanNone       Clan = ""
	ClanWardens    Clan = "wardens"    // start with a vest
	ClanHerbalists Clan = "herbalists" // start with an antidote
)

type Infection string

const (
	InfectionNone       Infection = "none"
	InfectionCarrier    Infection = "carrier"
	InfectionContagious Infection = "contagious"
)

type ItemKind string

const (
	ItemBullet       ItemKind = "role-bullet"
	ItemAntidote     ItemKind = "role-antidote"
	ItemVest         ItemKind = "clan-vest"
	ItemClanAntidote ItemKind = "clan-antidote"
)

type Player struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	Role       Role      `json:"role"`
	Clan       Clan      `json:"clan"`
	Alive      bool      `json:"alive"`
	Infection  Infection `json:"infection"`
	DeathRound int       `json:"death_round"` // round the infection kills them, 0 = none
	Immune     bool      `json:"immune"`
	Antibodies bool      `json:"antibodies"`
	Tokens     int       `json:"tokens"`
}

// Inventory maps owner -> item kind -> remaining quantity.
type Inventory map[int]map[ItemKind]int

func (inv Inventory) Count(owner int, kind ItemKind) int {
	return inv[owner][kind]
}

func (inv Inventory) Grant(owner int, kind ItemKind, n int) {
	if inv[owner] == nil {
		inv[owner] = map[ItemKind]int{}
	}
	inv[owner][kind] += n
}

// Consume decrements one unit and reports whether a unit was available.
// Counts never go negative; a failed consume is the caller's skipped action.
func (inv Inventory) Consume(owner int, kind ItemKind) bool {
	if inv[owner][kind] <= 0 {
		return false
	}
	inv[owner][kind]--
	return true
}

// consumeAntidote prefers the role-granted antidote over the clan one.
func (inv Inventory) consumeAntidote(owner int) bool {
	if inv.Consume(owner, ItemAntidote) {
		return true
	}
	return inv.Consume(owner, ItemClanAntidote)
}

func (inv Inventory) clone() Inventory {
	out := make(Inventory, len(inv))
	for owner, items := range inv {
		m := make(map[ItemKind]int, len(items))
		for k, v := range items {
			m[k] = v
		}
		out[owner] = m
	}
	return out
}

type RoundStatus string

const (
	StatusOpen     RoundStatus = "open"
	StatusLocked   RoundStatus = "locked"
	StatusResolved RoundStatus = "resolved"
)

type Rules struct {
	ResearchGoal      int `json:"research_goal"`      // unanimous antibody hits needed for the mission victory
	PropagationCap    int `json:"propagation_cap"`    // new infections per round
	Incubation        int `json:"incubation"`         // rounds from infection to death, 0 = never
	AgentThreshold    int `json:"agent_threshold"`    // infected-side pledge total forcing sabotage on
	OpposingThreshold int `json:"opposing_threshold"` // healthy-side pledge total forcing sabotage off
	StartTokens       int `json:"start_tokens"`
	StartBullets      int `json:"start_bullets"`
}

func DefaultRules() Rules {
	return Rules{
		ResearchGoal:      3,
		PropagationCap:    2,
		Incubation:        3,
		AgentThreshold:    15,
		OpposingThreshold: 10,
		StartTokens:       20,
		StartBullets:      3,
	}
}

// State is the canonical game state. Only the round pipeline mutates it;
// everything else reads snapshots.
type State struct {
	Round          int
	Status         RoundStatus
	Players        map[int]*Player
	Ring           []int // seating order, player ids
	Inventory      Inventory
	Inputs         map[int]Input // current round only, keyed by player id
	Research       int
	Researched     map[int]bool // targets already counted toward Research
	CorruptionPaid int
	PatientZero    int // player id, 0 until seeded
	Winner         Team
	Rules          Rules
}

// Seat describes one player at game start. Role assignment itself happens
// upstream; the engine only consumes its output.
type Seat struct {
	Name       string `json:"name"`
	Role       Role   `json:"role"`
	Clan       Clan   `json:"clan"`
	Immune     bool   `json:"immune"`
	Antibodies bool   `json:"antibodies"`
}

// NewState builds round-1 OPEN state from the seating order. Player ids are
// 1..N in seat order; carrier-role players start contagious.
func NewState(seats []Seat, rules Rules) *State {
	s := &State{
		Round:      1,
		Status:     StatusOpen,
		Players:    make(map[int]*Player, len(seats)),
		Ring:       make([]int, 0, len(seats)),
		Inventory:  Inventory{},
		Inputs:     map[int]Input{},
		Researched: map[int]bool{},
		Rules:      rules,
	}
	for i, seat := range seats {
		id := i + 1
		p := &Player{
			ID:         id,
			Name:       seat.Name,
			Role:       seat.Role,
			Clan:       seat.Clan,
			Alive:      true,
			Infection:  InfectionNone,
			Immune:     seat.Immune,
			Antibodies: seat.Antibodies,
			Tokens:     rules.StartTokens,
		}
		if seat.Role == RoleCarrier {
			p.Infection = InfectionContagious
		}
		s.Players[id] = p
		s.Ring = append(s.Ring, id)

		if seat.Role == RoleShooter {
			s.Inventory.Grant(id, ItemBullet, rules.StartBullets)
		}
		if seat.Role == RoleResearcher {
			s.Inventory.Grant(id, ItemAntidote, 1)
		}
		switch seat.Clan {
		case ClanWardens:
			s.Inventory.Grant(id, ItemVest, 1)
		case ClanHerbalists:
			s.Inventory.Grant(id, ItemClanAntidote, 1)
		}
	}
	return s
}

func (s *State) Clone() *State {
	out := *s
	out.Players = make(map[int]*Player, len(s.Players))
	for id, p := range s.Players {
		cp := *p
		out.Players[id] = &cp
	}
	out.Ring = append([]int(nil), s.Ring...)
	out.Inventory = s.Inventory.clone()
	out.Inputs = make(map[int]Input, len(s.Inputs))
	for id, in := range s.Inputs {
		out.Inputs[id] = in.clone()
	}
	out.Researched = make(map[int]bool, len(s.Researched))
	for id, v := range s.Researched {
		out.Researched[id] = v
	}
	return &out
}

// livingContagious returns living spreaders in ascending id order so
// propagation is deterministic.
func (s *State) livingContagious() []int {
	var out []int
	for _, id := range s.Ring {
		if p := s.Players[id]; p.Alive && p.Infection == InfectionContagious {
			out = append(out, id)
		}
	}
	return out
}

// PublicPlayer is the roster row visible to every client. Role, infection
// and inventory internals travel only on the private event channel.
type PublicPlayer struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Clan  Clan   `json:"clan"`
	Alive bool   `json:"alive"`
}

type Snapshot struct {
	Round          int            `json:"round"`
	Status         RoundStatus    `json:"status"`
	Players        []PublicPlayer `json:"players"`
	Research       int            `json:"research"`
	ResearchGoal   int            `json:"research_goal"`
	CorruptionPaid int            `json:"corruption_paid"`
	Winner         Team           `json:"winner,omitempty"`
}

func (s *State) Public() Snapshot {
	snap := Snapshot{
		Round:          s.Round,
		Status:         s.Status,
		Research:       s.Research,
		ResearchGoal:   s.Rules.ResearchGoal,
		CorruptionPaid: s.CorruptionPaid,
		Winner:         s.Winner,
	}
	for _, id := range s.Ring {
		p := s.Players[id]
		snap.Players = append(snap.Players, PublicPlayer{ID: p.ID, Name: p.Name, Clan: p.Clan, Alive: p.Alive})
	}
	return snap
}

// InventoryOf returns a copy of one player's items, for the owner-only query.
func (s *State) InventoryOf(id int) map[ItemKind]int {
	out := map[ItemKind]int{}
	for k, v := range s.Inventory[id] {
		out[k] = v
	}
	return out
}
