package records_client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/mcdev12/splittimer/go/clients"
	"github.com/mcdev12/splittimer/go/internal/models"
)

type RecordsClient struct {
	*clients.BaseClient
}

func NewRecordsClient(baseURL string) *RecordsClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	base := clients.NewBaseClient(baseURL)
	base.SetHeader("Accept", "application/json")
	return &RecordsClient{
		BaseClient: base,
	}
}

// FetchResult is the outcome of an asynchronous fastest-times fetch.
type FetchResult struct {
	TrailName string
	Times     []float64
	Err       error
}

// FastestTimes returns the fastest split per checkpoint for a trail, in checkpoint order.
// A body without the field decodes to an empty list.
func (c *RecordsClient) FastestTimes(ctx context.Context, trailName string) ([]float64, error) {
	endpoint := fmt.Sprintf("%s?%s=%s", FastestTimeEndpoint, TrailNameParam, url.QueryEscape(trailName))
	body, err := c.Get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to get fastest times: %w", err)
	}

	var response models.FastestSplitTimes
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w, raw response: %s", err, string(body))
	}

	return response.FastestSplitTimes, nil
}

// FetchAsync runs FastestTimes on its own goroutine. The returned channel
// receives exactly one result and is then closed.
func (c *RecordsClient) FetchAsync(ctx context.Context, trailName string) <-chan FetchResult {
	out := make(chan FetchResult, 1)
	go func() {
		defer close(out)
		times, err := c.FastestTimes(ctx, trailName)
		out <- FetchResult{TrailName: trailName, Times: times, Err: err}
	}()
	return out
}

// Leaderboard returns the ranked fastest runs on a trail. A limit of zero
// leaves the page size to the server.
func (c *RecordsClient) Leaderboard(ctx context.Context, trailName string, limit int) (*models.Leaderboard, error) {
	params := url.Values{}
	params.Set(TrailNameParam, trailName)
	if limit > 0 {
		params.Set(LimitParam, strconv.Itoa(limit))
	}
	body, err := c.Get(ctx, LeaderboardEndpoint+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}

	var board models.Leaderboard
	if err := json.Unmarshal(body, &board); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w, raw response: %s", err, string(body))
	}
	return &board, nil
}

// SubmitRun posts a completed run to the records service.
func (c *RecordsClient) SubmitRun(ctx context.Context, run models.Run) error {
	payload, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	if _, err := c.Post(ctx, SubmitTimeEndpoint, bytes.NewReader(payload)); err != nil {
		return fmt.Errorf("failed to submit run: %w", err)
	}
	return nil
}
