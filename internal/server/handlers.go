package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/paradigmbrian/wellness-mono-sub000/internal/ingest/apple"
	"github.com/paradigmbrian/wellness-mono-sub000/internal/models"
	"github.com/paradigmbrian/wellness-mono-sub000/internal/storage"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// handleAppleSync ingests a pushed Apple Health payload for the acting user
// and records the outcome in the sync log.
func (s *Server) handleAppleSync(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)

	var payload models.HealthPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	start := time.Now()
	result, err := s.apple.Ingest(r.Context(), &payload, uid)

	logEntry := storage.SyncLog{
		UserID:     uid,
		Source:     models.SourceAppleHealth,
		Trigger:    "manual",
		DurationMs: int(time.Since(start).Milliseconds()),
	}
	if err != nil {
		msg := err.Error()
		logEntry.Status = "error"
		logEntry.ErrorMessage = &msg
	} else {
		logEntry.Status = "success"
		logEntry.EntriesReceived = result.EntriesReceived
		logEntry.DaysProduced = result.DaysProduced
	}
	if _, logErr := s.db.InsertSyncLog(r.Context(), logEntry); logErr != nil {
		s.log.Error("failed to record sync log", "user_id", uid, "error", logErr)
	}

	if err != nil {
		var verr *apple.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, verr.Error())
			return
		}
		s.log.Error("apple sync failed", "user_id", uid, "error", err)
		writeError(w, http.StatusInternalServerError, "sync failed")
		return
	}

	// Cache the payload so the background scheduler can replay it on the
	// next auto-sync cycle.
	if raw, merr := json.Marshal(&payload); merr == nil {
		if cerr := s.db.SaveSourcePayload(r.Context(), uid, models.SourceAppleHealth, raw); cerr != nil {
			s.log.Error("failed to cache source payload", "user_id", uid, "error", cerr)
		}
	}

	writeJSON(w, http.StatusOK, result)
}

// handleSyncLogs returns the most recent sync outcomes for the acting user.
func (s *Server) handleSyncLogs(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	logs, err := s.db.QuerySyncLogs(r.Context(), userID(r), limit)
	if err != nil {
		s.log.Error("failed to query sync logs", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to query sync logs")
		return
	}
	if logs == nil {
		logs = []storage.SyncLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}

// handleDailyMetrics returns daily metric records in a date range.
func (s *Server) handleDailyMetrics(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseDateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	records, err := s.db.QueryDailyMetrics(r.Context(), userID(r), start, end)
	if err != nil {
		s.log.Error("failed to query daily metrics", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to query daily metrics")
		return
	}
	if records == nil {
		records = []models.DailyMetricRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

// handleLatestMetric returns the most recent daily metric record, or 404
// when the user has no data yet.
func (s *Server) handleLatestMetric(w http.ResponseWriter, r *http.Request) {
	record, err := s.db.GetLatestDailyMetric(r.Context(), userID(r))
	if err != nil {
		s.log.Error("failed to query latest metric", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to query latest metric")
		return
	}
	if record == nil {
		writeError(w, http.StatusNotFound, "no metrics recorded")
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// handleInsights returns generated insights, optionally filtered by
// category.
func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	insights, err := s.db.QueryInsights(r.Context(), userID(r), r.URL.Query().Get("category"), limit)
	if err != nil {
		s.log.Error("failed to query insights", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to query insights")
		return
	}
	if insights == nil {
		insights = []models.Insight{}
	}
	writeJSON(w, http.StatusOK, insights)
}

// parseDateRange reads start and end query parameters, defaulting to the
// last 30 days.
func parseDateRange(r *http.Request) (string, string, error) {
	start := r.URL.Query().Get("start")
	end := r.URL.Query().Get("end")
	if end == "" {
		end = time.Now().UTC().Format("2006-01-02")
	}
	if start == "" {
		start = time.Now().UTC().AddDate(0, 0, -30).Format("2006-01-02")
	}
	for _, d := range []string{start, end} {
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return "", "", errors.New("dates must be in YYYY-MM-DD format")
		}
	}
	return start, end, nil
}
