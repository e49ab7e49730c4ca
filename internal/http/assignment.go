package http

import (
	"net/http"

	"github.com/henriquesergio1/it-asset-360-sub000/internal/inventory"
)

func (h *Handler) checkout(kind inventory.AssetKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			UserID      string                `json:"userId"`
			Notes       string                `json:"notes"`
			Accessories []inventory.Accessory `json:"accessories"`
		}
		if err := decodeJSON(r, &payload); err != nil {
			writeInvalidJSON(w)
			return
		}
		term, err := h.service.Checkout(r.Context(), actorFrom(r), inventory.CheckoutRequest{
			Kind:        kind,
			AssetID:     idParam(r),
			UserID:      payload.UserID,
			Notes:       payload.Notes,
			Accessories: payload.Accessories,
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]any{"term": term})
	}
}

func (h *Handler) checkin(kind inventory.AssetKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Notes          string          `json:"notes"`
			Checklist      map[string]bool `json:"checklist"`
			InactivateUser bool            `json:"inactivateUser"`
		}
		if err := decodeJSON(r, &payload); err != nil {
			writeInvalidJSON(w)
			return
		}
		term, err := h.service.Checkin(r.Context(), actorFrom(r), inventory.CheckinRequest{
			Kind:           kind,
			AssetID:        idParam(r),
			Notes:          payload.Notes,
			Checklist:      payload.Checklist,
			InactivateUser: payload.InactivateUser,
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]any{"term": term})
	}
}

func (h *Handler) pendencies(kind inventory.AssetKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := h.service.Pendencies(r.Context(), kind, idParam(r))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]any{"missingItems": items})
	}
}

// resolvePendency marca itens pendentes como devolvidos. Lista vazia resolve
// todos.
func (h *Handler) resolvePendency(kind inventory.AssetKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Items []string `json:"items"`
			Notes string   `json:"notes"`
		}
		if err := decodeJSON(r, &payload); err != nil {
			writeInvalidJSON(w)
			return
		}
		remaining, err := h.service.ResolvePendency(r.Context(), actorFrom(r), kind, idParam(r), payload.Items, payload.Notes)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]any{"missingItems": remaining})
	}
}
