package domain

import "time"

// EventKind names a session event.
type EventKind string

const (
	EventMoved         EventKind = "moved"
	EventReset         EventKind = "reset"
	EventCoinTaken     EventKind = "coin_taken"
	EventCoinDeposited EventKind = "coin_deposited"
	EventRegionChanged EventKind = "region_changed"
)

// SessionEvent is published after a session changes.
type SessionEvent struct {
	SessionID string      `json:"session_id"`
	Kind      EventKind   `json:"kind"`
	Time      time.Time   `json:"time"`
	Player    *Coordinate `json:"player,omitempty"`
	Cell      *GridCell   `json:"cell,omitempty"`
	Coin      *Coin       `json:"coin,omitempty"`
	Entered   int         `json:"entered,omitempty"`
	Restored  int         `json:"restored,omitempty"`
	Exited    int         `json:"exited,omitempty"`
}

// RegionDiff summarizes one active-region recomputation.
type RegionDiff struct {
	Entered  []GridCell `json:"entered"`
	Restored []GridCell `json:"restored"`
	Exited   []GridCell `json:"exited"`
	// Malformed lists entered cells whose saved record could not be read
	// and were minted fresh instead.
	Malformed []GridCell `json:"malformed,omitempty"`
}

// Changed reports whether any cache entered or left the region.
func (d RegionDiff) Changed() bool {
	return len(d.Entered) > 0 || len(d.Exited) > 0
}
