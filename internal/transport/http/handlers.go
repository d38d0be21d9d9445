package http

import (
	"encoding/json"
	"net/http"

	"typerace/internal/domain"
)

// Response is a standard API response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo contains error details
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HealthResponse is the response for health check
type HealthResponse struct {
	Status string `json:"status"`
}

// StatsResponse is the response for stats endpoint
type StatsResponse struct {
	Participants int          `json:"participants"`
	Connections  int          `json:"connections"`
	Phase        domain.Phase `json:"phase"`
}

// LeaderboardResponse is the response for the leaderboard endpoint
type LeaderboardResponse struct {
	Entries []domain.LeaderboardEntry `json:"entries"`
}

// handleHealth handles GET /api/health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendSuccess(w, &HealthResponse{
		Status: "ok",
	})
}

// handleStats handles GET /api/stats
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := s.session.Stats()
	s.sendSuccess(w, &StatsResponse{
		Participants: stats.Participants,
		Connections:  s.hub.ClientCount(),
		Phase:        stats.Phase,
	})
}

// handleLeaderboard handles GET /api/leaderboard
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := s.session.Leaderboard(r.Context())
	if err != nil {
		s.logger.Warn("failed to read leaderboard", "error", err)
		s.sendError(w, http.StatusInternalServerError, "LEADERBOARD_UNAVAILABLE", "Leaderboard is unavailable")
		return
	}
	if entries == nil {
		entries = []domain.LeaderboardEntry{}
	}

	s.sendSuccess(w, &LeaderboardResponse{
		Entries: entries,
	})
}

// sendSuccess sends a successful JSON response
func (s *Server) sendSuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(&Response{
		Success: true,
		Data:    data,
	})
}

// sendError sends an error JSON response
func (s *Server) sendError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(&Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	})
}
