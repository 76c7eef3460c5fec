package api

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/store"
)

// CalibrationHandler serves /api/calibration. PUT merges the body over the
// newest calibration and queues it; the loop applies and persists it at
// the next tick boundary.
type CalibrationHandler struct {
	ctl Controller

	mu sync.Mutex
	// queued is the last calibration accepted into the command queue. It
	// is the merge base until the loop has applied it.
	queued *store.Calibration
}

// NewCalibrationHandler creates a CalibrationHandler.
func NewCalibrationHandler(c Controller) *CalibrationHandler {
	return &CalibrationHandler{ctl: c}
}

func (h *CalibrationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.ctl.Status().Calibration)
	case http.MethodPut:
		h.update(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *CalibrationHandler) update(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	cal := h.ctl.Status().Calibration
	if h.queued != nil {
		cal = *h.queued
	}
	if err := json.NewDecoder(r.Body).Decode(&cal); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	th := cal.Thresholds()
	if err := th.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !submit(w, h.ctl, control.SetThresholds(th, Origin)) {
		return
	}

	accepted := store.CalibrationFrom(th)
	h.queued = &accepted
	writeJSON(w, http.StatusAccepted, accepted)
}
