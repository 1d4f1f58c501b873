package api

import (
	"encoding/json"
	"net"
	"net/http"

	"orion/internal/rag"
	"orion/internal/version"
)

// ChatRequest is the POST /api/chat body.
type ChatRequest struct {
	Message string            `json:"message"`
	UserID  string            `json:"userId,omitempty"`
	History []rag.HistoryTurn `json:"history,omitempty"`
	Filter  *ChatFilter       `json:"filter,omitempty"`
}

// ChatFilter narrows retrieval for one request.
type ChatFilter struct {
	Type      string   `json:"type,omitempty"`
	Countries []string `json:"countries,omitempty"`
	StartDate string   `json:"startDate,omitempty"`
	EndDate   string   `json:"endDate,omitempty"`
}

// handleChat runs one query through the pipeline. Gate denials map to
// their error statuses; the body still carries the blocked Result so
// clients can render the rejection message.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid JSON body")
		return
	}
	if req.Message == "" {
		writeBadRequest(w, "Field 'message' is required")
		return
	}

	userID := req.UserID
	if userID == "" {
		userID = s.clientIdentity(r)
	}

	result, err := s.engine.ProcessQuery(r.Context(), req.Message, userID, toSearchFilter(req.Filter), req.History)
	if err != nil {
		WriteError(w, err)
		return
	}

	status := http.StatusOK
	if result.Blocked {
		status = StatusForCode(result.DenyCode)
	}
	WriteJSON(w, result, status)
}

// clientIdentity falls back to the remote address when the request
// carries no user identifier.
func (s *Server) clientIdentity(r *http.Request) string {
	if id := r.Header.Get("X-User-ID"); id != "" {
		return id
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func toSearchFilter(f *ChatFilter) *rag.SearchFilter {
	if f == nil {
		return nil
	}
	return &rag.SearchFilter{
		Type:      f.Type,
		Countries: f.Countries,
		StartDate: f.StartDate,
		EndDate:   f.EndDate,
	}
}

// handleStats reports chunk counts by type.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.engine.Stats(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	total := 0
	for _, count := range stats {
		total += count
	}
	WriteJSON(w, map[string]interface{}{
		"totalChunks":  total,
		"chunksByType": stats,
	}, http.StatusOK)
}

// handleHealth reports liveness and build info.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, map[string]string{
		"status":  "ok",
		"version": version.Version,
	}, http.StatusOK)
}
