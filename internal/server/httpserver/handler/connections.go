package handler

import (
	"net/http"
	"strconv"
)

// handleListConnections handles GET /connections.
// With ?detail=true the response also carries per-connection metadata.
func (h *Handler) handleListConnections(w http.ResponseWriter, r *http.Request) {
	infos, err := h.registry.List()
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	resp := ConnectionsResponse{
		Connections: make([]string, len(infos)),
		Count:       len(infos),
	}
	for i := range infos {
		resp.Connections[i] = infos[i].ID
	}
	if detail, _ := strconv.ParseBool(r.URL.Query().Get("detail")); detail {
		resp.Details = infos
	}
	h.writeJSON(w, r, http.StatusOK, "OK", resp)
}

// handleConnect handles GET /connect/{destination_id} and the legacy
// GET /ws/{destination_id}. It blocks for the life of the connection.
func (h *Handler) handleConnect(w http.ResponseWriter, r *http.Request) {
	if err := h.ws.ServeConnect(w, r, r.PathValue("destination_id")); err != nil {
		h.handleServiceError(w, r, err)
	}
}
