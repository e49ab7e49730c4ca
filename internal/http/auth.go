package http

import (
	"net/http"
	"strings"

	httpmiddleware "github.com/henriquesergio1/it-asset-360-sub000/internal/http/middleware"
)

// Login autentica um operador e devolve o token de acesso.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		writeInvalidJSON(w)
		return
	}
	if strings.TrimSpace(payload.Name) == "" || payload.Password == "" {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "nome e senha são obrigatórios", nil)
		return
	}

	name, err := h.operators.Authenticate(payload.Name, payload.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	token, _, err := h.jwt.GenerateAccessToken(name)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"accessToken": token,
		"tokenType":   "Bearer",
		"expiresIn":   int(h.jwt.TTL().Seconds()),
		"operator":    name,
	})
}

// Me devolve o operador autenticado.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"operator": httpmiddleware.GetOperator(r.Context())})
}
