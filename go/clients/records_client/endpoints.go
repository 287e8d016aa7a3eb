package records_client

const (
	// Default base URL for a locally running records service
	DefaultBaseURL = "http://localhost:8080"

	// API Endpoints
	FastestTimeEndpoint = "/API/DESCENDERS-GET-FASTEST-TIME"
	SubmitTimeEndpoint  = "/API/DESCENDERS-SUBMIT-TIME"
	LeaderboardEndpoint = "/API/DESCENDERS-GET-LEADERBOARD"

	// Query parameters
	TrailNameParam = "trail_name"
	LimitParam     = "limit"
)
