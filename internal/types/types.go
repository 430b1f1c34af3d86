package types

import "github.com/nmorel/infection-backend/internal/engine"

// Client -> Server (WebSocket)
//
// SubmitAction:
//   kind: "shoot" | "cure" | "seed_patient_zero" | "research" |
//         "inspect" | "identify" | "pledge" | "vote"
//   target: player id (all kinds except pledge)
//   amount: token count (pledge only)
//
// Moderator transitions (lock / resolve / next round) go over HTTP, not WS.

type ClientMessage struct {
	Type   string `json:"type"`
	Kind   string `json:"kind,omitempty"`
	Target int    `json:"target,omitempty"`
	Amount int    `json:"amount,omitempty"`
}

// Server -> Client
//
// StateSnapshot: public roster + round status, sent on join and after every
// round transition. Events carries only what this client may see: public
// announcements plus their own private notices (test result, oracle report,
// infection).
type ServerMessage struct {
	Type     string           `json:"type"` // "StateSnapshot" | "Error"
	Version  int              `json:"version,omitempty"`
	Snapshot *engine.Snapshot `json:"snapshot,omitempty"`
	Events   []engine.Event   `json:"events,omitempty"`
	Error    string           `json:"error,omitempty"`
}
