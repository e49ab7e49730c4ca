package http

import (
	"net/http"
	"strings"

	"github.com/henriquesergio1/it-asset-360-sub000/internal/inventory"
)

func (h *Handler) ListSims(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pagination(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}
	q := r.URL.Query()
	sims, err := h.service.ListSims(r.Context(), inventory.SimFilter{
		Status:        inventory.Status(strings.ToUpper(q.Get("status"))),
		CurrentUserID: q.Get("userId"),
		PhoneNumber:   q.Get("phone"),
		Limit:         limit,
		Offset:        offset,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"sims": sims})
}

func (h *Handler) GetSim(w http.ResponseWriter, r *http.Request) {
	sim, err := h.service.GetSim(r.Context(), idParam(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"sim": sim})
}

func (h *Handler) CreateSim(w http.ResponseWriter, r *http.Request) {
	var payload inventory.SimCard
	if err := decodeJSON(r, &payload); err != nil {
		writeInvalidJSON(w)
		return
	}
	sim, err := h.service.CreateSim(r.Context(), actorFrom(r), payload)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]any{"sim": sim})
}

func (h *Handler) UpdateSim(w http.ResponseWriter, r *http.Request) {
	var payload inventory.SimCard
	if err := decodeJSON(r, &payload); err != nil {
		writeInvalidJSON(w)
		return
	}
	sim, err := h.service.UpdateSim(r.Context(), actorFrom(r), idParam(r), payload)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"sim": sim})
}

// DeleteSim aceita o motivo no corpo ou em ?reason=.
func (h *Handler) DeleteSim(w http.ResponseWriter, r *http.Request) {
	var payload reasonPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeInvalidJSON(w)
		return
	}
	if payload.Reason == "" {
		payload.Reason = r.URL.Query().Get("reason")
	}
	if err := h.service.DeleteSim(r.Context(), actorFrom(r), idParam(r), payload.Reason); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
