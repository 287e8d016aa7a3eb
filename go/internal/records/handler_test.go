package records

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mcdev12/splittimer/go/clients/records_client"
	"github.com/mcdev12/splittimer/go/internal/models"
)

func newTestServer(t *testing.T) (*httptest.Server, *memoryRepo) {
	t.Helper()
	repo := &memoryRepo{}
	mux := http.NewServeMux()
	NewHandler(NewApp(repo)).RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, repo
}

func TestGetFastestTimeRequiresTrail(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + records_client.FastestTimeEndpoint)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestGetFastestTimeEmptyTrail(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + records_client.FastestTimeEndpoint + "?trail_name=Fresh")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(body["fastest_split_times"]) != "[]" {
		t.Fatalf("fastest_split_times = %s, want []", body["fastest_split_times"])
	}
}

func TestGetFastestTimeBlankTrail(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + records_client.FastestTimeEndpoint + "?trail_name=%20%20")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestGetLeaderboardRejectsBadInput(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name   string
		method string
		query  string
		status int
	}{
		{"wrong method", http.MethodPost, "?trail_name=Ridge", http.StatusMethodNotAllowed},
		{"missing trail", http.MethodGet, "", http.StatusBadRequest},
		{"blank trail", http.MethodGet, "?trail_name=%20", http.StatusBadRequest},
		{"bad limit", http.MethodGet, "?trail_name=Ridge&limit=ten", http.StatusBadRequest},
		{"negative limit", http.MethodGet, "?trail_name=Ridge&limit=-1", http.StatusBadRequest},
		{"empty board", http.MethodGet, "?trail_name=Ridge", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(tt.method, srv.URL+records_client.LeaderboardEndpoint+tt.query, nil)
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.status)
			}
		})
	}
}

func TestSubmitRejectsBadInput(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name   string
		method string
		body   string
		status int
	}{
		{"wrong method", http.MethodGet, "", http.StatusMethodNotAllowed},
		{"not json", http.MethodPost, "{", http.StatusBadRequest},
		{"invalid run", http.MethodPost, `{"trail_name":"Ridge","split_times":[]}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(tt.method, srv.URL+records_client.SubmitTimeEndpoint, strings.NewReader(tt.body))
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.status)
			}
		})
	}
}

func TestClientRoundTrip(t *testing.T) {
	srv, repo := newTestServer(t)
	client := records_client.NewRecordsClient(srv.URL)
	ctx := context.Background()

	runs := []models.Run{
		{TrailName: "Ridge Line", PlayerID: "a", Bike: "enduro", SplitTimes: []float64{10, 20, 30}},
		{TrailName: "Ridge Line", PlayerID: "b", Bike: "downhill", SplitTimes: []float64{9.5, 19, 29}},
		{TrailName: "Other", SplitTimes: []float64{1}},
	}
	for _, run := range runs {
		if err := client.SubmitRun(ctx, run); err != nil {
			t.Fatalf("SubmitRun: %v", err)
		}
	}
	if n := repo.count(); n != 3 {
		t.Fatalf("expected 3 stored runs, got %d", n)
	}

	times, err := client.FastestTimes(ctx, "Ridge Line")
	if err != nil {
		t.Fatalf("FastestTimes: %v", err)
	}
	want := []float64{9.5, 19, 29}
	if len(times) != len(want) {
		t.Fatalf("times = %v, want %v", times, want)
	}
	for i := range want {
		if times[i] != want[i] {
			t.Fatalf("times = %v, want %v", times, want)
		}
	}
}

func TestClientLeaderboardRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t)
	client := records_client.NewRecordsClient(srv.URL)
	ctx := context.Background()

	runs := []models.Run{
		{TrailName: "Ridge Line", PlayerID: "a", Bike: "enduro", SplitTimes: []float64{10, 20, 30}},
		{TrailName: "Ridge Line", PlayerID: "b", Bike: "downhill", SplitTimes: []float64{9.5, 19, 29}},
		{TrailName: "Ridge Line", PlayerID: "c", SplitTimes: []float64{11, 22, 33}},
	}
	for _, run := range runs {
		if err := client.SubmitRun(ctx, run); err != nil {
			t.Fatalf("SubmitRun: %v", err)
		}
	}

	board, err := client.Leaderboard(ctx, "Ridge Line", 2)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if board.TrailName != "Ridge Line" || len(board.Entries) != 2 {
		t.Fatalf("unexpected board: %+v", board)
	}
	first, second := board.Entries[0], board.Entries[1]
	if first.Place != 1 || first.PlayerID != "b" || first.Bike != "downhill" || first.FinalTime != 29 {
		t.Fatalf("unexpected leader: %+v", first)
	}
	if second.Place != 2 || second.PlayerID != "a" {
		t.Fatalf("unexpected runner-up: %+v", second)
	}
}
