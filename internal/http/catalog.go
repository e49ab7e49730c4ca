package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/henriquesergio1/it-asset-360-sub000/internal/inventory"
)

func catalogKind(r *http.Request) inventory.CatalogKind {
	return inventory.CatalogKind(chi.URLParam(r, "kind"))
}

func (h *Handler) ListCatalog(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListCatalog(r.Context(), catalogKind(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) GetCatalogItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.GetCatalogItem(r.Context(), catalogKind(r), idParam(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"item": item})
}

func (h *Handler) CreateCatalogItem(w http.ResponseWriter, r *http.Request) {
	var payload inventory.CatalogItem
	if err := decodeJSON(r, &payload); err != nil {
		writeInvalidJSON(w)
		return
	}
	payload.Kind = catalogKind(r)
	item, err := h.service.CreateCatalogItem(r.Context(), actorFrom(r), payload)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]any{"item": item})
}

func (h *Handler) UpdateCatalogItem(w http.ResponseWriter, r *http.Request) {
	var payload inventory.CatalogItem
	if err := decodeJSON(r, &payload); err != nil {
		writeInvalidJSON(w)
		return
	}
	item, err := h.service.UpdateCatalogItem(r.Context(), actorFrom(r), catalogKind(r), idParam(r), payload)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"item": item})
}

func (h *Handler) DeleteCatalogItem(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteCatalogItem(r.Context(), actorFrom(r), catalogKind(r), idParam(r)); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
