package http

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/henriquesergio1/it-asset-360-sub000/internal/storage"
)

const (
	invoicePrefix = "notas-fiscais"
	termPrefix    = "termos"
)

// UploadInvoice recebe a nota fiscal (campo "file") e, opcionalmente, o número
// em "invoiceNumber". O arquivo vai para o armazenamento antes da transação.
func (h *Handler) UploadInvoice(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	if _, err := h.service.GetDevice(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	key, ok := h.receiveUpload(w, r, invoicePrefix, id)
	if !ok {
		return
	}
	device, err := h.service.AttachInvoice(r.Context(), actorFrom(r), id, r.FormValue("invoiceNumber"), key)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"device": device})
}

// GetInvoice devolve um link temporário para a nota fiscal.
func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	device, err := h.service.GetDevice(r.Context(), idParam(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.writePresigned(w, r, device.InvoiceFile)
}

// UploadTermFile anexa a cópia assinada do termo.
func (h *Handler) UploadTermFile(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	if _, err := h.service.GetTerm(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	key, ok := h.receiveUpload(w, r, termPrefix, id)
	if !ok {
		return
	}
	term, err := h.service.AttachTermFile(r.Context(), actorFrom(r), id, key)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"term": term})
}

// GetTermFile devolve um link temporário para o termo assinado.
func (h *Handler) GetTermFile(w http.ResponseWriter, r *http.Request) {
	term, err := h.service.GetTerm(r.Context(), idParam(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.writePresigned(w, r, term.FileURL)
}

func (h *Handler) receiveUpload(w http.ResponseWriter, r *http.Request, prefix, id string) (string, bool) {
	if _, noop := h.storage.(storage.NoopUploader); noop {
		WriteError(w, http.StatusServiceUnavailable, "STORAGE", "armazenamento de anexos indisponível", nil)
		return "", false
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.uploadMax+(1<<20))
	if err := r.ParseMultipartForm(h.uploadMax); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "formulário inválido", nil)
		return "", false
	}
	fileHeader, err := getFirstFile(r.MultipartForm, "file")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return "", false
	}
	data, contentType, err := readMultipartFile(fileHeader, h.uploadMax)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return "", false
	}

	result, err := h.storage.Upload(r.Context(), storage.UploadInput{
		Key:          storage.ObjectKey(prefix, id, fileHeader.Filename),
		Body:         data,
		ContentType:  contentType,
		CacheControl: "private,max-age=31536000",
	})
	if err != nil {
		log.Error().Err(err).Str("prefix", prefix).Str("id", id).Msg("falha ao enviar anexo")
		WriteError(w, http.StatusBadGateway, "STORAGE", "falha ao enviar anexo", nil)
		return "", false
	}
	return result.Key, true
}

func (h *Handler) writePresigned(w http.ResponseWriter, r *http.Request, key string) {
	if strings.TrimSpace(key) == "" {
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "nenhum anexo registrado", nil)
		return
	}
	url, err := h.storage.PresignGet(r.Context(), key, h.presignTTL)
	if err != nil {
		if errors.Is(err, storage.ErrNotConfigured) {
			WriteError(w, http.StatusServiceUnavailable, "STORAGE", "armazenamento de anexos indisponível", nil)
			return
		}
		log.Error().Err(err).Str("key", key).Msg("falha ao gerar link do anexo")
		WriteError(w, http.StatusBadGateway, "STORAGE", "falha ao gerar link do anexo", nil)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"url":       url,
		"expiresIn": int(h.presignTTL.Seconds()),
	})
}

func getFirstFile(form *multipart.Form, field string) (*multipart.FileHeader, error) {
	if form == nil || len(form.File[field]) == 0 {
		return nil, errors.New("arquivo ausente")
	}
	return form.File[field][0], nil
}

func readMultipartFile(header *multipart.FileHeader, limit int64) ([]byte, string, error) {
	file, err := header.Open()
	if err != nil {
		return nil, "", fmt.Errorf("falha ao abrir arquivo: %w", err)
	}
	defer file.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(file, limit+1)); err != nil {
		return nil, "", fmt.Errorf("falha ao ler arquivo: %w", err)
	}
	if int64(buf.Len()) > limit {
		return nil, "", fmt.Errorf("arquivo excede %d bytes", limit)
	}
	if buf.Len() == 0 {
		return nil, "", errors.New("arquivo vazio")
	}

	contentType := header.Header.Get("Content-Type")
	if strings.TrimSpace(contentType) == "" {
		contentType = http.DetectContentType(buf.Bytes())
	}
	return buf.Bytes(), contentType, nil
}
