package records

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/splittimer/go/internal/models"
	"github.com/rs/zerolog/log"
)

// RunsRepository defines what the app layer needs from the repository.
// InsertRun reports whether the run is a new trail record; the repository
// queues the record notification in the same transaction.
type RunsRepository interface {
	InsertRun(ctx context.Context, run models.Run) (bool, error)
	FastestRun(ctx context.Context, trailName string) (*models.Run, error)
	Leaderboard(ctx context.Context, trailName string, limit int) ([]models.Run, error)
}

const (
	// DefaultLeaderboardLimit applies when a caller asks for no particular size.
	DefaultLeaderboardLimit = 10
	// MaxLeaderboardLimit caps a single leaderboard page.
	MaxLeaderboardLimit = 100
)

// App handles records business logic
type App struct {
	repo  RunsRepository
	clock clockwork.Clock
}

// NewApp creates a new records App
func NewApp(repo RunsRepository) *App {
	return &App{
		repo:  repo,
		clock: clockwork.NewRealClock(),
	}
}

// WithClock swaps the clock used to stamp runs.
func (a *App) WithClock(clock clockwork.Clock) *App {
	a.clock = clock
	return a
}

// SubmitRun validates and stores a completed run.
func (a *App) SubmitRun(ctx context.Context, req SubmitRunRequest) (*SubmitRunResult, error) {
	if err := a.validateSubmitRunRequest(req); err != nil {
		return nil, err
	}

	run := models.Run{
		ID:         uuid.New(),
		TrailName:  strings.TrimSpace(req.TrailName),
		PlayerID:   req.PlayerID,
		Bike:       strings.TrimSpace(req.Bike),
		SplitTimes: append([]float64(nil), req.SplitTimes...),
		CreatedAt:  a.clock.Now().UTC(),
	}
	run.FinalTime = run.Finish()

	isRecord, err := a.repo.InsertRun(ctx, run)
	if err != nil {
		return nil, fmt.Errorf("failed to store run: %w", err)
	}

	log.Info().
		Str("trail", run.TrailName).
		Str("run_id", run.ID.String()).
		Float64("final_time", run.FinalTime).
		Bool("new_record", isRecord).
		Msg("run stored")

	return &SubmitRunResult{Run: &run, NewRecord: isRecord}, nil
}

// FastestSplitTimes returns the splits of the fastest run on a trail, or an
// empty list when the trail has no runs yet.
func (a *App) FastestSplitTimes(ctx context.Context, trailName string) ([]float64, error) {
	trailName = strings.TrimSpace(trailName)
	if trailName == "" {
		return nil, fmt.Errorf("%w: trail name is required", ErrInvalidRun)
	}

	run, err := a.repo.FastestRun(ctx, trailName)
	if errors.Is(err, ErrNoRecord) {
		return []float64{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fastest run: %w", err)
	}
	return run.SplitTimes, nil
}

// Leaderboard ranks the fastest runs on a trail. A limit of zero or less
// means DefaultLeaderboardLimit; larger limits are capped at
// MaxLeaderboardLimit.
func (a *App) Leaderboard(ctx context.Context, trailName string, limit int) (*models.Leaderboard, error) {
	trailName = strings.TrimSpace(trailName)
	if trailName == "" {
		return nil, fmt.Errorf("%w: trail name is required", ErrInvalidRun)
	}
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	limit = min(limit, MaxLeaderboardLimit)

	runs, err := a.repo.Leaderboard(ctx, trailName, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}

	board := &models.Leaderboard{
		TrailName: trailName,
		Entries:   make([]models.LeaderboardEntry, 0, len(runs)),
	}
	for i, run := range runs {
		board.Entries = append(board.Entries, models.LeaderboardEntry{
			Place:      i + 1,
			RunID:      run.ID,
			PlayerID:   run.PlayerID,
			Bike:       run.Bike,
			FinalTime:  run.FinalTime,
			SplitTimes: run.SplitTimes,
			CreatedAt:  run.CreatedAt,
		})
	}
	return board, nil
}

func (a *App) validateSubmitRunRequest(req SubmitRunRequest) error {
	if strings.TrimSpace(req.TrailName) == "" {
		return fmt.Errorf("%w: trail name is required", ErrInvalidRun)
	}
	if len(req.SplitTimes) == 0 {
		return fmt.Errorf("%w: at least one split is required", ErrInvalidRun)
	}
	prev := 0.0
	for i, split := range req.SplitTimes {
		if math.IsNaN(split) || math.IsInf(split, 0) || split < 0 {
			return fmt.Errorf("%w: split %d is not a valid time", ErrInvalidRun, i)
		}
		if split < prev {
			return fmt.Errorf("%w: split %d is earlier than split %d", ErrInvalidRun, i, i-1)
		}
		prev = split
	}
	return nil
}
