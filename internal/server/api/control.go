package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/control"
)

// Controller is the part of a running session the API drives.
type Controller interface {
	Mode() control.Mode
	SwitchMode(m control.Mode) error
	Exec(command string) error
	Detector() string
}

// ControlHandler serves /api/mode and /api/commands.
type ControlHandler struct {
	controller Controller
}

// NewControlHandler creates a ControlHandler for c.
func NewControlHandler(c Controller) *ControlHandler {
	return &ControlHandler{controller: c}
}

type modeResponse struct {
	Mode     string   `json:"mode"`
	Title    string   `json:"title"`
	Detector string   `json:"detector"`
	Modes    []string `json:"modes"`
}

type modeRequest struct {
	Mode string `json:"mode"`
}

type commandRequest struct {
	Command string `json:"command"`
}

// Mode handles GET and POST /api/mode.
func (h *ControlHandler) Mode(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.writeMode(w, http.StatusOK, h.controller.Mode())
	case http.MethodPost:
		var req modeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		m, err := control.ParseMode(req.Mode)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := h.controller.SwitchMode(m); err != nil {
			writeCommandError(w, err)
			return
		}
		// The switch is applied by the session loop on its next frame.
		h.writeMode(w, http.StatusAccepted, m)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *ControlHandler) writeMode(w http.ResponseWriter, status int, m control.Mode) {
	modes := control.Modes()
	keys := make([]string, len(modes))
	for i, mode := range modes {
		keys[i] = mode.Key()
	}
	writeJSON(w, status, modeResponse{
		Mode:     m.Key(),
		Title:    m.String(),
		Detector: h.controller.Detector(),
		Modes:    keys,
	})
}

// Commands handles POST /api/commands.
func (h *ControlHandler) Commands(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Command == "" {
		writeError(w, http.StatusBadRequest, "Command is required")
		return
	}

	if err := h.controller.Exec(req.Command); err != nil {
		writeCommandError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, req)
}

func writeCommandError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrUnknownCommand), errors.Is(err, control.ErrUnknownMode):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, app.ErrCommandQueueFull):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "Failed to queue command")
	}
}
