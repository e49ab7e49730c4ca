package http

import (
	"net/http"
	"strconv"

	"github.com/henriquesergio1/it-asset-360-sub000/internal/inventory"
)

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pagination(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}
	q := r.URL.Query()
	filter := inventory.UserFilter{
		CPF:      q.Get("cpf"),
		SectorID: q.Get("sectorId"),
		Limit:    limit,
		Offset:   offset,
	}
	if raw := q.Get("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "VALIDATION", "active inválido", nil)
			return
		}
		filter.Active = &active
	}
	users, err := h.service.ListUsers(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"users": users})
}

// GetUser inclui os termos do colaborador.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUser(r.Context(), idParam(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var payload inventory.User
	if err := decodeJSON(r, &payload); err != nil {
		writeInvalidJSON(w)
		return
	}
	user, err := h.service.CreateUser(r.Context(), actorFrom(r), payload)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]any{"user": user})
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var payload inventory.User
	if err := decodeJSON(r, &payload); err != nil {
		writeInvalidJSON(w)
		return
	}
	user, err := h.service.UpdateUser(r.Context(), actorFrom(r), idParam(r), payload)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"user": user})
}

// ToggleUserActive inverte a situação do colaborador. Com "active" informado
// a operação é explícita e falha se o colaborador já estiver nessa situação.
func (h *Handler) ToggleUserActive(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Active *bool  `json:"active"`
		Reason string `json:"reason"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		writeInvalidJSON(w)
		return
	}

	ctx, actor, id := r.Context(), actorFrom(r), idParam(r)
	var (
		active bool
		err    error
	)
	switch {
	case payload.Active == nil:
		active, err = h.service.ToggleUserActive(ctx, actor, id, payload.Reason)
	case *payload.Active:
		active, err = true, h.service.ReactivateUser(ctx, actor, id, payload.Reason)
	default:
		active, err = false, h.service.InactivateUser(ctx, actor, id, payload.Reason)
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"active": active})
}

func (h *Handler) ListUserTerms(w http.ResponseWriter, r *http.Request) {
	terms, err := h.service.ListTerms(r.Context(), idParam(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"terms": terms})
}

func (h *Handler) GetTerm(w http.ResponseWriter, r *http.Request) {
	term, err := h.service.GetTerm(r.Context(), idParam(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"term": term})
}
