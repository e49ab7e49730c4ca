package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"
)

// fakeS3 aceita PUTs em memória, no estilo path (/bucket/key).
type fakeS3 struct {
	objects map[string][]byte
	types   map[string]string
}

func (f *fakeS3) RoundTrip(req *http.Request) (*http.Response, error) {
	parts := strings.SplitN(strings.TrimPrefix(req.URL.Path, "/"), "/", 2)
	key := ""
	if len(parts) == 2 {
		key = parts[1]
	}
	if req.Method != http.MethodPut {
		return &http.Response{StatusCode: http.StatusMethodNotAllowed, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{}}, nil
	}
	body, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, err
	}
	if dec, ok := decodeChunked(body); ok {
		body = dec
	}
	f.objects[key] = body
	f.types[key] = req.Header.Get("Content-Type")
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(bytes.NewReader(nil)),
		Header:     http.Header{"Etag": {"\"etag-1\""}},
	}, nil
}

// decodeChunked desfaz o corpo aws-chunked com um único bloco enviado pelo SDK
// quando calcula checksum no trailer.
func decodeChunked(b []byte) ([]byte, bool) {
	parts := strings.Split(string(b), "\r\n")
	if len(parts) < 3 {
		return nil, false
	}
	n, err := strconv.ParseInt(parts[0], 16, 64)
	if err != nil || n <= 0 || int64(len(parts[1])) != n {
		return nil, false
	}
	if parts[2] != "0" {
		return nil, false
	}
	return []byte(parts[1]), true
}

func newTestUploader(t *testing.T) (*S3Uploader, *fakeS3) {
	t.Helper()
	fake := &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
	u, err := NewS3Uploader(context.Background(), S3Config{
		Endpoint:     "https://s3.teste.local",
		Region:       "us-east-1",
		Bucket:       "anexos",
		AccessKey:    "AKIA",
		SecretKey:    "SECRET",
		UsePathStyle: true,
		HTTPClient:   &http.Client{Transport: fake},
	})
	if err != nil {
		t.Fatalf("new uploader: %v", err)
	}
	return u, fake
}

func TestS3UploadStoresObject(t *testing.T) {
	u, fake := newTestUploader(t)
	res, err := u.Upload(context.Background(), UploadInput{
		Key:         "/termos/t1/termo.pdf",
		Body:        []byte("%PDF-1.4"),
		ContentType: "application/pdf",
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if res.Key != "termos/t1/termo.pdf" || res.ETag != "etag-1" {
		t.Fatalf("unexpected result %+v", res)
	}
	if string(fake.objects["termos/t1/termo.pdf"]) != "%PDF-1.4" {
		t.Fatalf("object not stored: %v", fake.objects)
	}
	if fake.types["termos/t1/termo.pdf"] != "application/pdf" {
		t.Fatalf("unexpected content type %q", fake.types["termos/t1/termo.pdf"])
	}
}

func TestS3UploadValidation(t *testing.T) {
	u, _ := newTestUploader(t)
	if _, err := u.Upload(context.Background(), UploadInput{Key: " ", Body: []byte("x")}); err == nil {
		t.Fatalf("expected error for empty key")
	}
	if _, err := u.Upload(context.Background(), UploadInput{Key: "a"}); err == nil {
		t.Fatalf("expected error for empty body")
	}
}

func TestS3PresignGet(t *testing.T) {
	u, _ := newTestUploader(t)
	link, err := u.PresignGet(context.Background(), "notas/d1/nf.pdf", 10*time.Minute)
	if err != nil {
		t.Fatalf("presign: %v", err)
	}
	if !strings.HasPrefix(link, "https://s3.teste.local/anexos/notas/d1/nf.pdf?") {
		t.Fatalf("unexpected url %s", link)
	}
	if !strings.Contains(link, "X-Amz-Expires=600") || !strings.Contains(link, "X-Amz-Signature=") {
		t.Fatalf("url is not presigned: %s", link)
	}
}

func TestS3ConfigValidation(t *testing.T) {
	cases := []S3Config{
		{},
		{Bucket: "b", Endpoint: "s3.local"},
		{Bucket: "b", AccessKey: "only-key"},
	}
	for _, cfg := range cases {
		if _, err := NewS3Uploader(context.Background(), cfg); err == nil {
			t.Fatalf("expected error for %+v", cfg)
		}
	}
}

func TestNoopUploader(t *testing.T) {
	var u Uploader = NoopUploader{}
	if _, err := u.Upload(context.Background(), UploadInput{Key: "a", Body: []byte("x")}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if _, err := u.PresignGet(context.Background(), "a", time.Minute); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestObjectKey(t *testing.T) {
	cases := map[string]string{
		"Termo Entrega.pdf": "termos/t1/Termo_Entrega.pdf",
		`C:\scan\nota.pdf`:  "termos/t1/nota.pdf",
		"../../etc/passwd":  "termos/t1/passwd",
		"çççç":              "termos/t1/arquivo",
	}
	for in, want := range cases {
		if got := ObjectKey("termos", "t1", in); got != want {
			t.Fatalf("ObjectKey(%q) = %q, want %q", in, got, want)
		}
	}
}
