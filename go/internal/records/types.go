package records

import (
	"errors"

	"github.com/mcdev12/splittimer/go/internal/models"
)

var (
	// ErrInvalidRun marks a submission that failed validation.
	ErrInvalidRun = errors.New("invalid run")
	// ErrNoRecord is returned when a trail has no completed runs.
	ErrNoRecord = errors.New("no record for trail")
)

// SubmitRunRequest is the body of the submit endpoint.
type SubmitRunRequest struct {
	TrailName  string    `json:"trail_name"`
	PlayerID   string    `json:"player_id"`
	Bike       string    `json:"bike"`
	SplitTimes []float64 `json:"split_times"`
}

// SubmitRunResult reports the stored run and whether it set a new record.
type SubmitRunResult struct {
	Run       *models.Run `json:"run"`
	NewRecord bool        `json:"new_record"`
}
