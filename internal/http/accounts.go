package http

import (
	"net/http"

	"github.com/henriquesergio1/it-asset-360-sub000/internal/inventory"
)

func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pagination(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}
	q := r.URL.Query()
	accounts, err := h.service.ListAccounts(r.Context(), inventory.AccountFilter{
		UserID:   q.Get("userId"),
		DeviceID: q.Get("deviceId"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"accounts": accounts})
}

func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	account, err := h.service.GetAccount(r.Context(), idParam(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"account": account})
}

func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var payload inventory.SoftwareAccount
	if err := decodeJSON(r, &payload); err != nil {
		writeInvalidJSON(w)
		return
	}
	account, err := h.service.CreateAccount(r.Context(), actorFrom(r), payload)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]any{"account": account})
}

func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	var payload inventory.SoftwareAccount
	if err := decodeJSON(r, &payload); err != nil {
		writeInvalidJSON(w)
		return
	}
	account, err := h.service.UpdateAccount(r.Context(), actorFrom(r), idParam(r), payload)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"account": account})
}

func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteAccount(r.Context(), actorFrom(r), idParam(r), r.URL.Query().Get("reason")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
