package api

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleProcessingStats(w http.ResponseWriter, r *http.Request) {
	metrics := s.orchestrator.Metrics()
	if metrics == nil {
		jsonError(w, "processing stats unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"queue_depth": s.orchestrator.QueueDepth(),
		"stats":       metrics.Snapshot(),
	})
}
