package handlers

import (
	"net/http"

	"github.com/jason-s-yu/ranked/internal/ladder"
)

type submitMatchRequest struct {
	Winner   string `json:"winner"`
	Loser    string `json:"loser"`
	GameMode string `json:"gamemode"`
}

type submitMatchResponse struct {
	Success bool        `json:"success"`
	Winner  ladder.Side `json:"winner"`
	Loser   ladder.Side `json:"loser"`
}

// SubmitMatchHandler records a finished match and returns both rating changes.
//
// Request payload:
//
//	{ "winner": "alice", "loser": "bob", "gamemode": "sword" }
//
// Response payload:
//
//	{
//	  "success": true,
//	  "winner": { "username": "alice", "old": 500, "new": 516, "change": 16 },
//	  "loser":  { "username": "bob",   "old": 500, "new": 484, "change": -16 }
//	}
func (s *Server) SubmitMatchHandler(w http.ResponseWriter, r *http.Request) {
	var req submitMatchRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid data")
		return
	}

	out, err := s.Processor.SubmitMatch(r.Context(), req.Winner, req.Loser, req.GameMode)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, submitMatchResponse{Success: true, Winner: out.Winner, Loser: out.Loser})
}
