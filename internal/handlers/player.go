package handlers

import (
	"net/http"
	"strconv"
)

type addPlayerRequest struct {
	Username string `json:"username"`
}

type addPlayerResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Username string `json:"username"`
}

// AddPlayerHandler registers a player with default ratings.
//
// Request payload:
//
//	{ "username": "alice" }
//
// Response payload:
//
//	{ "success": true, "message": "Registered" | "Exists", "username": "alice" }
func (s *Server) AddPlayerHandler(w http.ResponseWriter, r *http.Request) {
	var req addPlayerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	// stored exactly as sent; no trimming
	username := req.Username
	if username == "" {
		writeError(w, http.StatusBadRequest, "Username required")
		return
	}

	created, err := s.Store.RegisterPlayer(r.Context(), username)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}

	msg := "Exists"
	if created {
		msg = "Registered"
		s.Logger.WithField("username", username).Info("player registered")
	}
	writeJSON(w, http.StatusOK, addPlayerResponse{Success: true, Message: msg, Username: username})
}

// GetPlayerHandler returns the full rating record for one player.
func (s *Server) GetPlayerHandler(w http.ResponseWriter, r *http.Request) {
	p, err := s.Store.GetPlayer(r.Context(), r.PathValue("username"))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

const defaultHistoryLimit = 20

// PlayerMatchesHandler lists a player's most recent matches, newest first.
// ?limit=N selects how many (default 20, max 100).
func (s *Server) PlayerMatchesHandler(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	if _, err := s.Store.GetPlayer(r.Context(), username); err != nil {
		s.respondErr(w, r, err)
		return
	}
	matches, err := s.Store.RecentMatches(r.Context(), username, limit)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"username": username,
		"matches":  matches,
	})
}
