package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/paradigmbrian/wellness-mono-sub000/internal/models"
)

// knownSources lists the data sources the app can connect to.
var knownSources = map[string]bool{
	models.SourceAppleHealth: true,
}

func sourceParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	source := chi.URLParam(r, "source")
	if !knownSources[source] {
		writeError(w, http.StatusNotFound, "unknown source")
		return "", false
	}
	return source, true
}

// handleListSources returns the user's connected data sources.
func (s *Server) handleListSources(w http.ResponseWriter, r *http.Request) {
	sources, err := s.db.ListSources(r.Context(), userID(r))
	if err != nil {
		s.log.Error("failed to list sources", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list sources")
		return
	}
	if sources == nil {
		sources = []models.ConnectedSource{}
	}
	writeJSON(w, http.StatusOK, sources)
}

// handleConnectSource marks a source as connected, optionally with
// source-specific settings.
func (s *Server) handleConnectSource(w http.ResponseWriter, r *http.Request) {
	source, ok := sourceParam(w, r)
	if !ok {
		return
	}

	var body struct {
		Settings json.RawMessage `json:"settings"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}

	if err := s.db.ConnectSource(r.Context(), userID(r), source, body.Settings); err != nil {
		s.log.Error("failed to connect source", "source", source, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to connect source")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "connected"})
}

// handleDisconnectSource disconnects a source and drops its cached payload.
func (s *Server) handleDisconnectSource(w http.ResponseWriter, r *http.Request) {
	source, ok := sourceParam(w, r)
	if !ok {
		return
	}
	if err := s.db.DisconnectSource(r.Context(), userID(r), source); err != nil {
		s.log.Error("failed to disconnect source", "source", source, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to disconnect source")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "disconnected"})
}

// handleSetAutoSync toggles daily auto-sync for a connected source.
func (s *Server) handleSetAutoSync(w http.ResponseWriter, r *http.Request) {
	source, ok := sourceParam(w, r)
	if !ok {
		return
	}

	var body struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.db.SetAutoSync(r.Context(), userID(r), source, body.Enabled); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"autoSync": body.Enabled})
}
