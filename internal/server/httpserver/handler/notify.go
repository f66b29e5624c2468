package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/yndnr/pushmesh-go/internal/core/domain"
)

// handleNotify handles POST /notify.
func (h *Handler) handleNotify(w http.ResponseWriter, r *http.Request) {
	var req NotifyRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.route(w, r, &domain.Notification{
		DestinationID: req.DestinationID,
		SenderID:      req.SenderID,
		Message:       req.Message,
	})
}

// handleNotifyMachine handles the legacy POST /notify-machine.
func (h *Handler) handleNotifyMachine(w http.ResponseWriter, r *http.Request) {
	var req NotifyMachineRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.route(w, r, &domain.Notification{
		DestinationID: req.MachineID,
		SenderID:      req.UserID,
		Message:       req.Message,
	})
}

func (h *Handler) route(w http.ResponseWriter, r *http.Request, n *domain.Notification) {
	outcome, err := h.notifySvc.Route(r.Context(), n)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, "notification delivered", NotifyResponse{
		DestinationID: n.DestinationID,
		Outcome:       outcome.String(),
	})
}

// decode reads a JSON body into v, writing a 400 on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	body := r.Body
	if h.maxBody > 0 {
		body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}
	if err := json.NewDecoder(body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, r, http.StatusBadRequest, domain.ErrInvalidArgument.Code, "request body too large", "")
			return false
		}
		h.writeError(w, r, http.StatusBadRequest, domain.ErrBadRequest.Code, "invalid request body", err.Error())
		return false
	}
	return true
}
