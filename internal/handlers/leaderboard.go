package handlers

import (
	"net/http"

	"github.com/jason-s-yu/ranked/internal/database"
	"github.com/jason-s-yu/ranked/internal/models"
)

// GlobalLeaderboardHandler returns the top 100 players by global score with
// every per-mode rating.
func (s *Server) GlobalLeaderboardHandler(w http.ResponseWriter, r *http.Request) {
	players, err := s.Store.TopPlayers(r.Context(), models.GlobalTarget, database.MaxLeaderboardSize)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	rows := make([]models.LeaderboardRow, 0, len(players))
	for _, p := range players {
		rows = append(rows, models.LeaderboardRow{
			Username:    p.Username,
			GlobalScore: p.GlobalScore,
			Ratings:     p.Ratings,
			Wins:        p.Wins,
			Losses:      p.Losses,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"leaderboard": rows})
}

// ModeLeaderboardHandler returns the top 100 players for one game mode.
func (s *Server) ModeLeaderboardHandler(w http.ResponseWriter, r *http.Request) {
	mode := r.PathValue("mode")
	if !models.IsGameMode(mode) {
		writeError(w, http.StatusBadRequest, "Invalid gamemode")
		return
	}
	players, err := s.Store.TopPlayers(r.Context(), mode, database.MaxLeaderboardSize)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	rows := make([]models.ModeRow, 0, len(players))
	for _, p := range players {
		rows = append(rows, models.ModeRow{
			Username: p.Username,
			Elo:      p.Rating(mode),
			Wins:     p.Wins,
			Losses:   p.Losses,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"gamemode":    mode,
		"leaderboard": rows,
	})
}

// GameModesHandler lists the supported modes in their canonical order.
func (s *Server) GameModesHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"gamemodes": models.GameModes})
}
