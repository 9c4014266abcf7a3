package handlers

import (
	"net/http"

	"github.com/jason-s-yu/ranked/internal/database"
	"github.com/jason-s-yu/ranked/internal/ladder"
	"github.com/jason-s-yu/ranked/internal/live"
	"github.com/jason-s-yu/ranked/internal/middleware"
	"github.com/sirupsen/logrus"
)

// Server holds the collaborators every handler needs.
type Server struct {
	Store     database.Store
	Processor *ladder.Processor
	Hub       *live.Hub
	Logger    *logrus.Logger

	// Static, when set, serves everything not matched by an API route.
	Static http.Handler
}

func NewServer(store database.Store, processor *ladder.Processor, hub *live.Hub, logger *logrus.Logger) *Server {
	return &Server{
		Store:     store,
		Processor: processor,
		Hub:       hub,
		Logger:    logger,
	}
}

// Routes builds the mux with request logging applied to every route.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	// players
	mux.HandleFunc("POST /api/player/add", s.AddPlayerHandler)
	mux.HandleFunc("GET /api/player/{username}", s.GetPlayerHandler)
	mux.HandleFunc("GET /api/player/{username}/matches", s.PlayerMatchesHandler)

	// leaderboards; the literal paths take precedence over {mode}
	mux.HandleFunc("GET /api/leaderboard/global", s.GlobalLeaderboardHandler)
	mux.HandleFunc("GET /api/leaderboard/stream", s.StreamHandler)
	mux.HandleFunc("GET /api/leaderboard/ws", s.WSHandler)
	mux.HandleFunc("GET /api/leaderboard/{mode}", s.ModeLeaderboardHandler)
	mux.HandleFunc("GET /api/gamemodes", s.GameModesHandler)

	// matches
	mux.HandleFunc("POST /api/match/submit", s.SubmitMatchHandler)

	// admin
	mux.HandleFunc("POST /admin/update_rating", s.UpdateRatingHandler)

	if s.Static != nil {
		mux.Handle("/", s.Static)
	}

	return middleware.LogMiddleware(s.Logger)(mux)
}
