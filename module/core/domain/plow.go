package domain

import (
	"encoding/json"
	"time"
)

// Point is a single timestamped sample reported by a plow. Coords and Events
// are stored and returned as-is.
type Point struct {
	Timestamp time.Time       `json:"timestamp"`
	Coords    json.RawMessage `json:"coords"`
	Events    json.RawMessage `json:"events"`
}

type Plow struct {
	ID        string  `json:"id"`
	LastPoint Point   `json:"last_loc"`
	History   []Point `json:"history"`
}

// HistoryScope tells storage how much of a plow's point history to load.
// The zero value loads everything.
type HistoryScope struct {
	Omit bool
	Last int
}

func HistoryAll() HistoryScope { return HistoryScope{} }

func HistoryNone() HistoryScope { return HistoryScope{Omit: true} }

// HistoryLast loads only the newest n points. Non-positive n loads everything.
func HistoryLast(n int) HistoryScope {
	if n <= 0 {
		return HistoryScope{}
	}
	return HistoryScope{Last: n}
}

// FleetScope tells storage which plows a fleet query can return: those that
// reported at or after Since when HasSince is set, otherwise the newest Limit
// plows. A zero FleetScope returns every plow.
type FleetScope struct {
	Since    time.Time
	HasSince bool
	Limit    int
}

// PositionUpdate is announced to downstream consumers whenever a plow reports.
type PositionUpdate struct {
	PlowID    string          `json:"plow_id"`
	Timestamp time.Time       `json:"timestamp"`
	Coords    json.RawMessage `json:"coords"`
}
