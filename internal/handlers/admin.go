package handlers

import (
	"fmt"
	"net/http"
)

type updateRatingRequest struct {
	AdminKey string `json:"admin_key"`
	Username string `json:"username"`
	GameMode string `json:"gamemode"`
	NewElo   *int   `json:"new_elo"`
}

// UpdateRatingHandler lets an admin set a player's global score
// (gamemode "global") or one mode rating directly.
func (s *Server) UpdateRatingHandler(w http.ResponseWriter, r *http.Request) {
	var req updateRatingRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.NewElo == nil {
		// a bad key still answers 401
		if err := s.Processor.Authorize(req.AdminKey); err != nil {
			s.respondErr(w, r, err)
			return
		}
		writeError(w, http.StatusBadRequest, "new_elo required")
		return
	}

	_, err := s.Processor.OverrideRating(r.Context(), req.AdminKey, req.Username, req.GameMode, *req.NewElo)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("Updated %s to %d", req.Username, *req.NewElo),
	})
}
