package api

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"
)

// InvalidateResponse is returned by /api/cache/invalidate
type InvalidateResponse struct {
	OK      bool `json:"ok"`
	Deleted int  `json:"deleted"`
}

// DiscoveryModeRequest is the body of POST /api/discovery/mode
type DiscoveryModeRequest struct {
	Expanded *bool `json:"expanded"`
}

// DiscoveryModeResponse reports the active discovery mode
type DiscoveryModeResponse struct {
	OK       bool `json:"ok"`
	Expanded bool `json:"expanded"`
}

// handleInvalidateCache drops merged results; adapter caches are kept
func (s *Server) handleInvalidateCache(w http.ResponseWriter, r *http.Request) {
	deleted := s.services.Tokens.InvalidateCache(r.Context())
	log.Printf("API: cache invalidated, %d keys removed", deleted)
	s.sendJSONResponse(w, InvalidateResponse{OK: true, Deleted: deleted})
}

func (s *Server) handleGetDiscoveryMode(w http.ResponseWriter, r *http.Request) {
	s.sendJSONResponse(w, DiscoveryModeResponse{OK: true, Expanded: s.services.Discovery.Expanded()})
}

func (s *Server) handleSetDiscoveryMode(w http.ResponseWriter, r *http.Request) {
	var req DiscoveryModeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1024)).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Expanded == nil {
		s.sendError(w, http.StatusBadRequest, "expanded is required")
		return
	}

	s.services.Discovery.SetExpanded(*req.Expanded)
	s.sendJSONResponse(w, DiscoveryModeResponse{OK: true, Expanded: *req.Expanded})
}
