package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/gesture"
)

// StatusHandler serves GET /api/status.
type StatusHandler struct {
	ctl Controller
}

// NewStatusHandler creates a StatusHandler.
func NewStatusHandler(c Controller) *StatusHandler {
	return &StatusHandler{ctl: c}
}

func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.ctl.Status())
}

type modeRequest struct {
	Mode string `json:"mode"`
}

type modeResponse struct {
	Mode   gesture.Mode `json:"mode"`
	Paused bool         `json:"paused"`
}

// ModeHandler serves /api/mode. PUT forces a mode, bypassing the
// toggle cooldown.
type ModeHandler struct {
	ctl Controller
}

// NewModeHandler creates a ModeHandler.
func NewModeHandler(c Controller) *ModeHandler {
	return &ModeHandler{ctl: c}
}

func (h *ModeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		st := h.ctl.Status()
		writeJSON(w, http.StatusOK, modeResponse{Mode: st.Mode, Paused: st.Paused})
	case http.MethodPut:
		h.set(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *ModeHandler) set(w http.ResponseWriter, r *http.Request) {
	var req modeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	mode, err := gesture.ParseMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !submit(w, h.ctl, control.SetMode(mode, Origin)) {
		return
	}
	writeJSON(w, http.StatusAccepted, modeResponse{Mode: mode, Paused: h.ctl.Status().Paused})
}

// PauseHandler serves POST /api/pause and POST /api/resume.
type PauseHandler struct {
	ctl    Controller
	paused bool
}

// NewPauseHandler creates a handler that pauses, or resumes when paused
// is false.
func NewPauseHandler(c Controller, paused bool) *PauseHandler {
	return &PauseHandler{ctl: c, paused: paused}
}

func (h *PauseHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	cmd := control.Resume(Origin)
	if h.paused {
		cmd = control.Pause(Origin)
	}
	if !submit(w, h.ctl, cmd) {
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]bool{"paused": h.paused})
}
