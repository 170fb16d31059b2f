package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lifehub/lifehub/internal/models"
	"github.com/lifehub/lifehub/internal/storage"
)

const maxBackupBytes = 8 << 20

// sessionRequest is the body of POST /api/v1/sessions.
type sessionRequest struct {
	Session    models.WorkoutSession `json:"session"`
	IsLuteal   bool                  `json:"isLuteal"`
	IsComplete bool                  `json:"isComplete"`
}

func (s *Server) handleLogSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	report := s.tracker.LogWorkout(r.Context(), req.Session, req.IsLuteal, req.IsComplete)
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleActivateGrace(w http.ResponseWriter, r *http.Request) {
	activated := s.tracker.ActivateGrace(r.Context())
	writeJSON(w, http.StatusOK, map[string]bool{"activated": activated})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Profile())
}

func (s *Server) handleLevels(w http.ResponseWriter, r *http.Request) {
	track := r.URL.Query().Get("track")
	if track == "" {
		writeJSON(w, http.StatusOK, s.tracker.Levels())
		return
	}
	status, ok := s.tracker.LevelStatus(track)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown track: "+track)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	writeJSON(w, http.StatusOK, s.tracker.RecentLogs(limit))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	at, err := parseDate(r.URL.Query().Get("date"), s.now)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.tracker.BodyStats(at))
}

func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Templates())
}

func (s *Server) handleAddMeasurement(w http.ResponseWriter, r *http.Request) {
	var entry models.MeasurementLog
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if len(entry.Data) == 0 {
		writeError(w, http.StatusBadRequest, "data must contain at least one measurement")
		return
	}

	if err := s.tracker.AddMeasurement(r.Context(), entry); err != nil {
		s.log.Error("saving measurement", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
}

func (s *Server) handleGetBackup(w http.ResponseWriter, r *http.Request) {
	doc := chi.URLParam(r, "doc")

	data, err := s.tracker.Backup(r.Context(), doc)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no backup named "+doc)
		return
	}
	if err != nil {
		s.log.Error("reading backup", "doc", doc, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) handlePutBackup(w http.ResponseWriter, r *http.Request) {
	doc := chi.URLParam(r, "doc")

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBackupBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	}
	if !json.Valid(data) {
		writeError(w, http.StatusBadRequest, "backup body is not valid JSON")
		return
	}

	if err := s.tracker.PutBackup(r.Context(), doc, data); err != nil {
		s.log.Error("storing backup", "doc", doc, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.log.Info("backup received", "doc", doc, "bytes", len(data))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// parseDate accepts YYYY-MM-DD or RFC 3339. A bare date means the end of
// that day, so measurements logged during it count. Empty means now.
func parseDate(v string, now func() time.Time) (time.Time, error) {
	if v == "" {
		return now(), nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	day, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return time.Time{}, err
	}
	return day.Add(24*time.Hour - time.Nanosecond), nil
}
