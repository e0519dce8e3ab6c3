package server

import (
	"encoding/json"
	"net/http"

	"github.com/paradigmbrian/wellness-mono-sub000/internal/models"
)

var validTiers = map[string]bool{"free": true, "plus": true, "pro": true}

// handleGetSubscription returns the user's subscription state.
func (s *Server) handleGetSubscription(w http.ResponseWriter, r *http.Request) {
	sub, err := s.db.GetSubscription(r.Context(), userID(r))
	if err != nil {
		s.log.Error("failed to fetch subscription", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch subscription")
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

// handlePutSubscription replaces the user's subscription state with what
// the payment processor reported.
func (s *Server) handlePutSubscription(w http.ResponseWriter, r *http.Request) {
	var sub models.Subscription
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if !validTiers[sub.Tier] {
		writeError(w, http.StatusBadRequest, "unknown tier")
		return
	}
	sub.UserID = userID(r)

	if err := s.db.UpsertSubscription(r.Context(), sub); err != nil {
		s.log.Error("failed to upsert subscription", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update subscription")
		return
	}
	writeJSON(w, http.StatusOK, sub)
}
