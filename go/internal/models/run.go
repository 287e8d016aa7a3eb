package models

import (
	"time"

	"github.com/google/uuid"
)

// Run is one completed descent of a trail. SplitTimes holds the elapsed
// seconds at each checkpoint after the start gate, in order; the last entry
// is the finish time.
type Run struct {
	ID         uuid.UUID `json:"id"`
	TrailName  string    `json:"trail_name"`
	PlayerID   string    `json:"player_id,omitempty"`
	Bike       string    `json:"bike,omitempty"`
	SplitTimes []float64 `json:"split_times"`
	FinalTime  float64   `json:"final_time"`
	CreatedAt  time.Time `json:"created_at"`
}

// Finish returns the last split, or zero for an empty run.
func (r Run) Finish() float64 {
	if len(r.SplitTimes) == 0 {
		return 0
	}
	return r.SplitTimes[len(r.SplitTimes)-1]
}

// FastestSplitTimes is the body of the fastest-time endpoint.
type FastestSplitTimes struct {
	FastestSplitTimes []float64 `json:"fastest_split_times"`
}

// LeaderboardEntry is one ranked run on a trail. Place starts at 1.
type LeaderboardEntry struct {
	Place      int       `json:"place"`
	RunID      uuid.UUID `json:"run_id"`
	PlayerID   string    `json:"player_id"`
	Bike       string    `json:"bike"`
	FinalTime  float64   `json:"final_time"`
	SplitTimes []float64 `json:"split_times"`
	CreatedAt  time.Time `json:"created_at"`
}

// Leaderboard is the body of the leaderboard endpoint.
type Leaderboard struct {
	TrailName string             `json:"trail_name"`
	Entries   []LeaderboardEntry `json:"entries"`
}

// RecordEvent announces that a run set a new trail record.
type RecordEvent struct {
	RunID     uuid.UUID `json:"run_id"`
	TrailName string    `json:"trail_name"`
	FinalTime float64   `json:"final_time"`
	CreatedAt time.Time `json:"created_at"`
}

// NewRecordEvent builds the event for a record-setting run.
func NewRecordEvent(run Run) RecordEvent {
	return RecordEvent{
		RunID:     run.ID,
		TrailName: run.TrailName,
		FinalTime: run.FinalTime,
		CreatedAt: run.CreatedAt,
	}
}
