package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/henriquesergio1/it-asset-360-sub000/internal/auth"
	"github.com/henriquesergio1/it-asset-360-sub000/internal/config"
	"github.com/henriquesergio1/it-asset-360-sub000/internal/inventory"
	"github.com/henriquesergio1/it-asset-360-sub000/internal/storage"
)

type stubUploader struct {
	objects map[string][]byte
}

func (s *stubUploader) Upload(ctx context.Context, input storage.UploadInput) (*storage.UploadResult, error) {
	s.objects[input.Key] = input.Body
	return &storage.UploadResult{Key: input.Key, ETag: "etag"}, nil
}

func (s *stubUploader) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "https://anexos.local/" + key + "?assinado=1", nil
}

type testServer struct {
	t       *testing.T
	handler http.Handler
	token   string
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *ErrorBody      `json:"error"`
}

func newTestServer(t *testing.T, uploader storage.Uploader) *testServer {
	t.Helper()
	hash, err := argon2id.CreateHash("senha-operador", &argon2id.Params{
		Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32,
	})
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	cfg := &config.Config{
		RateLimitAuth:  config.RateLimitConfig{RequestsPerSecond: 100, Burst: 100},
		RateLimitAPI:   config.RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000},
		UploadMaxBytes: 1 << 20,
		Storage:        config.StorageConfig{PresignTTL: time.Minute},
	}
	reg := prometheus.NewRegistry()
	svc := inventory.NewService(inventory.NewMemoryStore(), nil, 0, inventory.NewMetrics(reg), zerolog.Nop())

	handler := NewRouter(Deps{
		Config:    cfg,
		Service:   svc,
		Storage:   uploader,
		JWT:       auth.NewJWTManager("0123456789abcdef0123456789abcdef", time.Hour),
		Operators: auth.NewDirectory(map[string]string{"Admin TI": hash}),
		Registry:  reg,
	})
	return &testServer{t: t, handler: handler}
}

func (s *testServer) do(method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			s.t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	return s.serve(req)
}

func (s *testServer) serve(req *http.Request) (*httptest.ResponseRecorder, envelope) {
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	var env envelope
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			s.t.Fatalf("decode response: %v (%s)", err, rec.Body.String())
		}
	}
	return rec, env
}

func (s *testServer) login() {
	s.t.Helper()
	rec, env := s.do(http.MethodPost, "/auth/login", map[string]string{"name": "admin ti", "password": "senha-operador"})
	if rec.Code != http.StatusOK {
		s.t.Fatalf("login: %d %s", rec.Code, rec.Body.String())
	}
	var data struct {
		AccessToken string `json:"accessToken"`
		Operator    string `json:"operator"`
	}
	decodeData(s.t, env, &data)
	if data.Operator != "Admin TI" {
		s.t.Fatalf("expected canonical operator name, got %q", data.Operator)
	}
	s.token = data.AccessToken
}

// create executa um POST e devolve o campo indicado da resposta.
func (s *testServer) create(path, field string, body any, dst any) {
	s.t.Helper()
	rec, env := s.do(http.MethodPost, path, body)
	if rec.Code != http.StatusCreated {
		s.t.Fatalf("POST %s: %d %s", path, rec.Code, rec.Body.String())
	}
	var wrapper map[string]json.RawMessage
	decodeData(s.t, env, &wrapper)
	if err := json.Unmarshal(wrapper[field], dst); err != nil {
		s.t.Fatalf("decode %s: %v", field, err)
	}
}

func decodeData(t *testing.T, env envelope, dst any) {
	t.Helper()
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func TestPublicRoutesAndAuthentication(t *testing.T) {
	s := newTestServer(t, &stubUploader{objects: map[string][]byte{}})

	if rec, _ := s.do(http.MethodGet, "/health", nil); rec.Code != http.StatusOK {
		t.Fatalf("health: %d", rec.Code)
	}
	if rec, _ := s.do(http.MethodGet, "/ready", nil); rec.Code != http.StatusOK {
		t.Fatalf("ready: %d", rec.Code)
	}
	if rec, env := s.do(http.MethodGet, "/devices", nil); rec.Code != http.StatusUnauthorized || env.Error.Code != "AUTH" {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
	if rec, env := s.do(http.MethodPost, "/auth/login", map[string]string{"name": "Admin TI", "password": "errada"}); rec.Code != http.StatusUnauthorized || env.Error.Code != "AUTH" {
		t.Fatalf("expected 401 for bad password, got %d", rec.Code)
	}

	s.login()
	rec, env := s.do(http.MethodGet, "/me", nil)
	if rec.Code != http.StatusOK || !strings.Contains(string(env.Data), "Admin TI") {
		t.Fatalf("me: %d %s", rec.Code, rec.Body.String())
	}

	rec, _ = s.do(http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "itasset_http_requests_total") {
		t.Fatalf("metrics endpoint missing http counters")
	}
}

func TestAssignmentFlowOverHTTP(t *testing.T) {
	s := newTestServer(t, &stubUploader{objects: map[string][]byte{}})
	s.login()

	var model, sector inventory.CatalogItem
	s.create("/catalog/models", "item", map[string]string{"name": "ThinkPad T14"}, &model)
	s.create("/catalog/sectors", "item", map[string]string{"name": "Comercial"}, &sector)

	var device inventory.Device
	s.create("/devices", "device", map[string]any{"modelId": model.ID, "serialNumber": "PF-1", "assetTag": "NB-7"}, &device)
	var user inventory.User
	s.create("/users", "user", map[string]any{"fullName": "Carla Dias", "cpf": "987.654.321-00", "sectorId": sector.ID}, &user)
	if user.CPF != "98765432100" {
		t.Fatalf("expected normalized cpf, got %q", user.CPF)
	}

	rec, env := s.do(http.MethodPost, "/devices/"+device.ID+"/checkout", map[string]any{
		"userId":      user.ID,
		"accessories": []map[string]string{{"name": "Carregador"}, {"name": "Mouse"}},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("checkout: %d %s", rec.Code, rec.Body.String())
	}
	var checkout struct {
		Term inventory.Term `json:"term"`
	}
	decodeData(t, env, &checkout)
	if checkout.Term.Type != inventory.TermDelivery || checkout.Term.AssetDetails != "[TAG: NB-7] ThinkPad T14" {
		t.Fatalf("unexpected term %+v", checkout.Term)
	}

	rec, env = s.do(http.MethodPost, "/devices/"+device.ID+"/checkout", map[string]any{"userId": user.ID})
	if rec.Code != http.StatusConflict || env.Error.Code != "ASSET_NOT_AVAILABLE" {
		t.Fatalf("expected 409 ASSET_NOT_AVAILABLE, got %d %s", rec.Code, rec.Body.String())
	}

	rec, _ = s.do(http.MethodPost, "/devices/"+device.ID+"/checkin", map[string]any{
		"checklist": map[string]bool{"Carregador": true, "Mouse": false},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("checkin: %d %s", rec.Code, rec.Body.String())
	}

	rec, env = s.do(http.MethodGet, "/devices/"+device.ID+"/pendencies", nil)
	if rec.Code != http.StatusOK || !strings.Contains(string(env.Data), "Mouse") {
		t.Fatalf("expected Mouse pending, got %d %s", rec.Code, rec.Body.String())
	}
	rec, _ = s.do(http.MethodPost, "/devices/"+device.ID+"/pendencies/resolve", map[string]any{"items": []string{"Mouse"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("resolve: %d %s", rec.Code, rec.Body.String())
	}

	rec, env = s.do(http.MethodGet, "/devices/"+device.ID+"/history", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("history: %d", rec.Code)
	}
	var history struct {
		History []struct {
			Action      string `json:"action"`
			ActionLabel string `json:"actionLabel"`
			AdminUser   string `json:"adminUser"`
			Changes     []struct {
				RawKey string `json:"rawKey"`
				New    string `json:"new"`
			} `json:"changes"`
		} `json:"history"`
	}
	decodeData(t, env, &history)
	if len(history.History) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(history.History))
	}
	if history.History[0].Action != "RESOLVE_PENDENCY" || history.History[0].AdminUser != "Admin TI" {
		t.Fatalf("unexpected newest entry %+v", history.History[0])
	}
	checkoutEntry := history.History[2]
	found := false
	for _, c := range checkoutEntry.Changes {
		if c.RawKey == "currentUserId" && c.New == "Carla Dias" {
			found = true
		}
	}
	if !found {
		t.Fatalf("holder not resolved in checkout entry: %+v", checkoutEntry)
	}

	rec, env = s.do(http.MethodPost, "/users/"+user.ID+"/active", map[string]any{"reason": "desligamento"})
	if rec.Code != http.StatusOK || !strings.Contains(string(env.Data), `"active":false`) {
		t.Fatalf("toggle user: %d %s", rec.Code, rec.Body.String())
	}
}

func TestErrorMapping(t *testing.T) {
	s := newTestServer(t, &stubUploader{objects: map[string][]byte{}})
	s.login()

	var model inventory.CatalogItem
	s.create("/catalog/models", "item", map[string]string{"name": "Moto G"}, &model)
	var device inventory.Device
	s.create("/devices", "device", map[string]any{"modelId": model.ID, "serialNumber": "SN-9"}, &device)

	cases := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"duplicate serial", http.MethodPost, "/devices", map[string]any{"modelId": model.ID, "serialNumber": "sn-9"}, http.StatusUnprocessableEntity, "DUPLICATE_SERIAL"},
		{"unknown device", http.MethodGet, "/devices/nao-existe", nil, http.StatusNotFound, "NOT_FOUND"},
		{"retire without reason", http.MethodPost, "/devices/" + device.ID + "/retire", map[string]string{}, http.StatusBadRequest, "REASON_REQUIRED"},
		{"restore available device", http.MethodPost, "/devices/" + device.ID + "/restore", map[string]string{"reason": "x"}, http.StatusConflict, "NOT_RETIRED"},
		{"invalid catalog", http.MethodGet, "/catalog/planetas", nil, http.StatusBadRequest, "INVALID_CATALOG"},
		{"invalid log action", http.MethodGet, "/logs?action=explode", nil, http.StatusBadRequest, "INVALID_ACTION"},
		{"bad pagination", http.MethodGet, "/sims?limit=abc", nil, http.StatusBadRequest, "VALIDATION"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, env := s.do(tc.method, tc.path, tc.body)
			if rec.Code != tc.status || env.Error == nil || env.Error.Code != tc.code {
				t.Fatalf("expected %d %s, got %d %s", tc.status, tc.code, rec.Code, rec.Body.String())
			}
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/devices", strings.NewReader("{"))
	req.Header.Set("Authorization", "Bearer "+s.token)
	if rec, env := s.serve(req); rec.Code != http.StatusBadRequest || env.Error.Code != "VALIDATION" {
		t.Fatalf("expected 400 for malformed JSON, got %d", rec.Code)
	}
}

func TestInvoiceUploadAndLazyFetch(t *testing.T) {
	uploader := &stubUploader{objects: map[string][]byte{}}
	s := newTestServer(t, uploader)
	s.login()

	var model inventory.CatalogItem
	s.create("/catalog/models", "item", map[string]string{"name": "iPhone 13"}, &model)
	var device inventory.Device
	s.create("/devices", "device", map[string]any{"modelId": model.ID, "serialNumber": "F2L"}, &device)

	if rec, env := s.do(http.MethodGet, "/devices/"+device.ID+"/invoice", nil); rec.Code != http.StatusNotFound || env.Error.Code != "NOT_FOUND" {
		t.Fatalf("expected 404 before upload, got %d", rec.Code)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	_ = mw.WriteField("invoiceNumber", "NF-123")
	part, err := mw.CreateFormFile("file", "nota fiscal.pdf")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	_, _ = part.Write([]byte("%PDF-1.4 nota"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/devices/"+device.ID+"/invoice", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.token)
	rec, env := s.serve(req)
	if rec.Code != http.StatusOK {
		t.Fatalf("upload: %d %s", rec.Code, rec.Body.String())
	}
	var uploaded struct {
		Device inventory.Device `json:"device"`
	}
	decodeData(t, env, &uploaded)
	wantKey := "notas-fiscais/" + device.ID + "/nota_fiscal.pdf"
	if uploaded.Device.InvoiceFile != wantKey || uploaded.Device.InvoiceNumber != "NF-123" {
		t.Fatalf("unexpected device %+v", uploaded.Device)
	}
	if string(uploader.objects[wantKey]) != "%PDF-1.4 nota" {
		t.Fatalf("file not uploaded")
	}

	rec, env = s.do(http.MethodGet, "/devices/"+device.ID+"/invoice", nil)
	if rec.Code != http.StatusOK || !strings.Contains(string(env.Data), "assinado=1") {
		t.Fatalf("expected presigned url, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestUploadWithoutStorageBackend(t *testing.T) {
	s := newTestServer(t, storage.NoopUploader{})
	s.login()

	var model inventory.CatalogItem
	s.create("/catalog/models", "item", map[string]string{"name": "Galaxy Tab"}, &model)
	var device inventory.Device
	s.create("/devices", "device", map[string]any{"modelId": model.ID, "serialNumber": "TAB-1"}, &device)

	req := httptest.NewRequest(http.MethodPost, "/devices/"+device.ID+"/invoice", strings.NewReader(""))
	req.Header.Set("Authorization", "Bearer "+s.token)
	if rec, env := s.serve(req); rec.Code != http.StatusServiceUnavailable || env.Error.Code != "STORAGE" {
		t.Fatalf("expected 503 STORAGE, got %d", rec.Code)
	}
}
