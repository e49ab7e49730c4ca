package http

import (
	"net/http"
	"strings"

	"github.com/henriquesergio1/it-asset-360-sub000/internal/inventory"
)

// ListDevices aceita os filtros status, userId, simId, serial e modelId.
func (h *Handler) ListDevices(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pagination(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}
	q := r.URL.Query()
	devices, err := h.service.ListDevices(r.Context(), inventory.DeviceFilter{
		Status:        inventory.Status(strings.ToUpper(q.Get("status"))),
		CurrentUserID: q.Get("userId"),
		LinkedSimID:   q.Get("simId"),
		SerialNumber:  q.Get("serial"),
		ModelID:       q.Get("modelId"),
		Limit:         limit,
		Offset:        offset,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"devices": devices})
}

func (h *Handler) GetDevice(w http.ResponseWriter, r *http.Request) {
	device, err := h.service.GetDevice(r.Context(), idParam(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"device": device})
}

func (h *Handler) CreateDevice(w http.ResponseWriter, r *http.Request) {
	var payload inventory.Device
	if err := decodeJSON(r, &payload); err != nil {
		writeInvalidJSON(w)
		return
	}
	device, err := h.service.CreateDevice(r.Context(), actorFrom(r), payload)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]any{"device": device})
}

// UpdateDevice altera dados cadastrais. Status, responsável, chip e acessórios
// só mudam pelas operações de ciclo de vida.
func (h *Handler) UpdateDevice(w http.ResponseWriter, r *http.Request) {
	var payload inventory.Device
	if err := decodeJSON(r, &payload); err != nil {
		writeInvalidJSON(w)
		return
	}
	device, err := h.service.UpdateDevice(r.Context(), actorFrom(r), idParam(r), payload)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"device": device})
}

type reasonPayload struct {
	Reason string `json:"reason"`
}

func (h *Handler) RetireDevice(w http.ResponseWriter, r *http.Request) {
	var payload reasonPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeInvalidJSON(w)
		return
	}
	if err := h.service.RetireDevice(r.Context(), actorFrom(r), idParam(r), payload.Reason); err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.writeDevice(w, r, http.StatusOK)
}

func (h *Handler) RestoreDevice(w http.ResponseWriter, r *http.Request) {
	var payload reasonPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeInvalidJSON(w)
		return
	}
	if err := h.service.RestoreDevice(r.Context(), actorFrom(r), idParam(r), payload.Reason); err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.writeDevice(w, r, http.StatusOK)
}

func (h *Handler) ToggleMaintenance(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Notes string `json:"notes"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		writeInvalidJSON(w)
		return
	}
	status, err := h.service.ToggleMaintenance(r.Context(), actorFrom(r), idParam(r), payload.Notes)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"status": status})
}

// SetLinkedSim recebe {"simId": "..."}; simId nulo ou vazio desvincula o chip.
func (h *Handler) SetLinkedSim(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SimID *string `json:"simId"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		writeInvalidJSON(w)
		return
	}
	if err := h.service.SetLinkedSim(r.Context(), actorFrom(r), idParam(r), payload.SimID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.writeDevice(w, r, http.StatusOK)
}

func (h *Handler) writeDevice(w http.ResponseWriter, r *http.Request, status int) {
	device, err := h.service.GetDevice(r.Context(), idParam(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, status, map[string]any{"device": device})
}
