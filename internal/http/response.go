package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/henriquesergio1/it-asset-360-sub000/internal/auth"
	"github.com/henriquesergio1/it-asset-360-sub000/internal/inventory"
)

// SuccessEnvelope padroniza respostas com dados.
type SuccessEnvelope struct {
	Data  any `json:"data"`
	Error any `json:"error"`
}

// ErrorEnvelope padroniza respostas de erro.
type ErrorEnvelope struct {
	Data  any        `json:"data"`
	Error *ErrorBody `json:"error"`
}

// ErrorBody descreve falhas normalizadas.
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// WriteJSON escreve envelope de sucesso.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(SuccessEnvelope{Data: data, Error: nil})
}

// WriteError escreve envelope de erro e mantém formato consistente.
func WriteError(w http.ResponseWriter, status int, code, message string, details interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorEnvelope{
		Data:  nil,
		Error: &ErrorBody{Code: code, Message: message, Details: details},
	})
}

var kindStatus = map[inventory.ErrorKind]int{
	inventory.KindValidation:   http.StatusBadRequest,
	inventory.KindNotFound:     http.StatusNotFound,
	inventory.KindPrecondition: http.StatusConflict,
	inventory.KindIntegrity:    http.StatusUnprocessableEntity,
}

// writeServiceError traduz erros do inventário para o envelope HTTP.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var domainErr *inventory.Error
	switch {
	case errors.As(err, &domainErr):
		WriteError(w, kindStatus[domainErr.Kind], domainErr.Code, domainErr.Message, nil)
	case errors.Is(err, auth.ErrInvalidCredentials):
		WriteError(w, http.StatusUnauthorized, "AUTH", err.Error(), nil)
	case inventory.IsStorage(err):
		log.Error().Err(err).Str("request_id", chimiddleware.GetReqID(r.Context())).Msg("armazenamento indisponível")
		WriteError(w, http.StatusServiceUnavailable, "STORAGE", "armazenamento indisponível", nil)
	default:
		log.Error().Err(err).Str("request_id", chimiddleware.GetReqID(r.Context())).Msg("erro inesperado")
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro interno", nil)
	}
}

// decodeJSON lê o corpo da requisição. Corpo vazio é aceito para ações sem
// parâmetros obrigatórios.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func writeInvalidJSON(w http.ResponseWriter) {
	WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
}

// pagination lê limit/offset da query string.
func pagination(r *http.Request) (int, int, error) {
	q := r.URL.Query()
	limit, offset := 0, 0
	var err error
	if v := strings.TrimSpace(q.Get("limit")); v != "" {
		if limit, err = strconv.Atoi(v); err != nil || limit < 0 {
			return 0, 0, errors.New("limit inválido")
		}
	}
	if v := strings.TrimSpace(q.Get("offset")); v != "" {
		if offset, err = strconv.Atoi(v); err != nil || offset < 0 {
			return 0, 0, errors.New("offset inválido")
		}
	}
	return limit, offset, nil
}

func idParam(r *http.Request) string {
	return strings.TrimSpace(chi.URLParam(r, "id"))
}
