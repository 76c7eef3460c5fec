package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ayusman/mudra/internal/store"
)

const (
	defaultLimit = 50
	maxLimit     = 1000
)

type journalResponse struct {
	Entries []store.Entry `json:"entries"`
}

type sessionsResponse struct {
	Sessions []*store.Session `json:"sessions"`
}

type sessionResponse struct {
	*store.Session
	Entries []store.Entry `json:"entries"`
}

// JournalHandler serves GET /api/journal, the most recent actions.
type JournalHandler struct {
	store *store.Store
}

// NewJournalHandler creates a JournalHandler.
func NewJournalHandler(s *store.Store) *JournalHandler {
	return &JournalHandler{store: s}
}

func (h *JournalHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	entries, err := h.store.Journal().Recent(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read journal")
		return
	}
	if entries == nil {
		entries = []store.Entry{}
	}
	writeJSON(w, http.StatusOK, journalResponse{Entries: entries})
}

// SessionsHandler serves GET /api/sessions and GET /api/sessions/{id}.
type SessionsHandler struct {
	store *store.Store
}

// NewSessionsHandler creates a SessionsHandler.
func NewSessionsHandler(s *store.Store) *SessionsHandler {
	return &SessionsHandler{store: s}
}

func (h *SessionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, "/api/sessions"), "/")
	if id == "" {
		h.list(w, r)
		return
	}
	h.get(w, id)
}

func (h *SessionsHandler) list(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	sessions, err := h.store.Sessions().List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}
	if sessions == nil {
		sessions = []*store.Session{}
	}
	writeJSON(w, http.StatusOK, sessionsResponse{Sessions: sessions})
}

func (h *SessionsHandler) get(w http.ResponseWriter, id string) {
	sess, err := h.store.Sessions().GetByID(id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return
	}

	entries, err := h.store.Journal().BySession(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read journal")
		return
	}
	if entries == nil {
		entries = []store.Entry{}
	}
	writeJSON(w, http.StatusOK, sessionResponse{Session: sess, Entries: entries})
}

func parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultLimit, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		writeError(w, http.StatusBadRequest, "limit must be a positive integer")
		return 0, false
	}
	if n > maxLimit {
		n = maxLimit
	}
	return n, true
}
