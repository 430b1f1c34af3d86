package engine

type EventType string

const (
	EvtPatientZero        EventType = "PatientZero"
	EvtSuccumbed          EventType = "Succumbed"
	EvtShotResolved       EventType = "ShotResolved"
	EvtPlayerDied         EventType = "PlayerDied"
	EvtCured              EventType = "Cured"
	EvtCorruptionResolved EventType = "CorruptionResolved"
	EvtTestIdentity       EventType = "TestIdentity"
	EvtTestResult         EventType = "TestResult"
	EvtOracleReport       EventType = "OracleReport"
	EvtResearchAdvance    EventType = "ResearchAdvanced"
	EvtInfected           EventType = "Infected"
	EvtRoundResolved      EventType = "RoundResolved"
	EvtGameEnded          EventType = "GameEnded"
)

type ShotReason string

const (
	ShotKilled        ShotReason = "killed"
	ShotSabotaged     ShotReason = "sabotaged"
	ShotTargetDead    ShotReason = "target_already_dead"
	ShotBlockedByVest ShotReason = "blocked_by_vest"
)

// Event is one entry of the ordered resolution log. Private != 0 restricts
// delivery to that player; everything else is a public announcement.
type Event struct {
	Type    EventType  `json:"type"`
	Round   int        `json:"round"`
	Actor   int        `json:"actor,omitempty"`
	Target  int        `json:"target,omitempty"`
	Reason  ShotReason `json:"reason,omitempty"`
	Amount  int        `json:"amount,omitempty"`
	Role    Role       `json:"role,omitempty"`
	Result  bool       `json:"result,omitempty"`
	Winner  Team       `json:"winner,omitempty"`
	Private int        `json:"-"`
}

// VisibleTo reports whether the event may be delivered to the given player.
func (e Event) VisibleTo(playerID int) bool {
	return e.Private == 0 || e.Private == playerID
}
