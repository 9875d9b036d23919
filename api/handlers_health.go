package api

import (
	"net/http"
)

// HealthResponse is the body of /health
type HealthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
	Cache    string            `json:"cache"`
	Clients  int               `json:"websocket_clients"`
}

// handleHealth responds with 200 OK to indicate the service is running
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := HealthResponse{
		Status:   "ok",
		Services: make(map[string]string),
		Clients:  s.clients.count(),
	}

	for _, source := range s.services.Tokens.SourceStatuses() {
		switch {
		case source.Healthy:
			status.Services[source.Name] = "up"
		case source.LastError != "":
			status.Services[source.Name] = "down"
		default:
			status.Services[source.Name] = "unknown"
		}
	}

	if s.services.Cache != nil {
		status.Cache = string(s.services.Cache.Stats().Mode)
	}

	s.sendJSONResponse(w, status)
}
