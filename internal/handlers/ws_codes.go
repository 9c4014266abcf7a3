package handlers

// Custom WebSocket close codes used by the live leaderboard stream.
const (
	// HubClosedError means the server removed this viewer from the update hub.
	HubClosedError = 3000
)
