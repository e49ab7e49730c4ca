package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/henriquesergio1/it-asset-360-sub000/internal/audit"
)

// History devolve o histórico resolvido de um dispositivo, chip ou
// colaborador, do mais recente ao mais antigo.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pagination(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}
	items, err := h.service.HistoryView(r.Context(), audit.Filter{AssetID: idParam(r), Limit: limit, Offset: offset})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"history": items})
}

// ListLogs consulta o histórico geral. Com resolved=true as diferenças já
// vêm resolvidas para exibição.
func (h *Handler) ListLogs(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pagination(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}
	q := r.URL.Query()
	filter := audit.Filter{
		AssetID:   q.Get("assetId"),
		AssetType: audit.Kind(q.Get("assetType")),
		Action:    audit.Action(strings.ToUpper(q.Get("action"))),
		Limit:     limit,
		Offset:    offset,
	}

	if resolved, _ := strconv.ParseBool(q.Get("resolved")); resolved {
		items, err := h.service.HistoryView(r.Context(), filter)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]any{"logs": items})
		return
	}

	entries, err := h.service.ListLogs(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"logs": entries})
}

func (h *Handler) GetLog(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.GetLog(r.Context(), idParam(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"log": item})
}

// ClearLogs apaga todo o histórico.
func (h *Handler) ClearLogs(w http.ResponseWriter, r *http.Request) {
	removed, err := h.service.ClearLogs(r.Context(), actorFrom(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"removed": removed})
}

// Lookups expõe as tabelas id -> nome usadas na resolução do histórico.
func (h *Handler) Lookups(w http.ResponseWriter, r *http.Request) {
	lk, err := h.service.Lookups(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"lookups": lk})
}
