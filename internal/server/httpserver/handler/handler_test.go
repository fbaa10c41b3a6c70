package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/yndnr/sigstream/internal/core/domain"
	"github.com/yndnr/sigstream/internal/core/service"
	"github.com/yndnr/sigstream/internal/storage/memory"
)

const streamID = "AAAAAAAAAAE="

func fieldText(b byte, n int) string {
	return base64.URLEncoding.EncodeToString(bytes.Repeat([]byte{b}, n))
}

func messageBody(b byte) string {
	return `{"signature":"` + fieldText(b, domain.SignatureSize) + `","data":"` + fieldText(b+1, domain.DataSize) + `"}`
}

type failingRepo struct {
	err    error
	called bool
}

func (f *failingRepo) Append(context.Context, domain.StreamAddress, ...[]byte) (int64, error) {
	f.called = true
	return 0, f.err
}

func (f *failingRepo) Range(context.Context, domain.StreamAddress, int64, int64) ([][]byte, error) {
	f.called = true
	return nil, f.err
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func newTestHandler(t *testing.T) (*Handler, *memory.Log) {
	t.Helper()
	store := memory.New()
	t.Cleanup(func() { store.Close() })
	return New(service.NewMessageService(store), store, nil), store
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) StreamMessagesResponse {
	t.Helper()
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp StreamMessagesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v (%s)", err, w.Body.String())
	}
	return resp
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error response: %v (%s)", err, w.Body.String())
	}
	if resp.Timestamp == 0 {
		t.Error("error response missing timestamp")
	}
	if got := w.Header().Get("X-Error-Code"); got != resp.Code {
		t.Errorf("X-Error-Code = %q, body code = %q", got, resp.Code)
	}
	return resp
}

func TestListMessages_EmptyStream(t *testing.T) {
	h, _ := newTestHandler(t)

	w := do(h, http.MethodGet, "/streams/"+streamID+"/messages", "")
	if strings.TrimSpace(w.Body.String()) != `{"id":"`+streamID+`","messages":[]}` {
		t.Errorf("body = %s", w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestAppendThenList(t *testing.T) {
	h, _ := newTestHandler(t)

	w := do(h, http.MethodPost, "/streams/"+streamID+"/messages", messageBody(1))
	if w.Code != http.StatusOK {
		t.Fatalf("POST status = %d, body = %s", w.Code, w.Body.String())
	}
	if w.Body.Len() != 0 {
		t.Errorf("POST body = %q, want empty", w.Body.String())
	}

	resp := decodeList(t, do(h, http.MethodGet, "/streams/"+streamID+"/messages", ""))
	if resp.ID.String() != streamID {
		t.Errorf("id = %s", resp.ID)
	}
	if len(resp.Messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(resp.Messages))
	}
	if resp.Messages[0].Signature.String() != fieldText(1, domain.SignatureSize) {
		t.Error("signature did not round trip")
	}
	if resp.Messages[0].Data.String() != fieldText(2, domain.DataSize) {
		t.Error("data did not round trip")
	}
}

func TestAppend_TrailingWhitespace(t *testing.T) {
	h, store := newTestHandler(t)

	w := do(h, http.MethodPost, "/streams/"+streamID+"/messages", messageBody(1)+"\r\n \t")
	if w.Code != http.StatusOK {
		t.Fatalf("POST status = %d, body = %s", w.Code, w.Body.String())
	}
	addr, _ := domain.ParseStreamAddress(streamID)
	if n, _ := store.Len(context.Background(), addr); n != 1 {
		t.Errorf("stored %d messages, want 1", n)
	}
}

func TestListMessages_Range(t *testing.T) {
	h, _ := newTestHandler(t)
	for i := byte(0); i < 3; i++ {
		if w := do(h, http.MethodPost, "/streams/"+streamID+"/messages", messageBody(i*10)); w.Code != http.StatusOK {
			t.Fatalf("POST %d status = %d", i, w.Code)
		}
	}

	tests := []struct {
		name  string
		query string
		want  []byte
	}{
		{"defaults", "", []byte{0, 10, 20}},
		{"offset=1 limit=1 is index 1", "?offset=1&limit=1", []byte{10}},
		{"limit is inclusive", "?limit=1", []byte{0, 10}},
		{"offset past end", "?offset=5", nil},
		{"bad offset falls back", "?offset=-1", []byte{0, 10, 20}},
		{"limit overflow falls back", "?limit=256", []byte{0, 10, 20}},
		{"bad limit falls back", "?offset=2&limit=abc", []byte{20}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := decodeList(t, do(h, http.MethodGet, "/streams/"+streamID+"/messages"+tt.query, ""))
			if len(resp.Messages) != len(tt.want) {
				t.Fatalf("got %d messages, want %d", len(resp.Messages), len(tt.want))
			}
			for i, b := range tt.want {
				if resp.Messages[i].Signature.String() != fieldText(b, domain.SignatureSize) {
					t.Errorf("message %d is not the one with marker %d", i, b)
				}
			}
		})
	}
}

func TestStreamAddressForms(t *testing.T) {
	h, _ := newTestHandler(t)
	if w := do(h, http.MethodPost, "/streams/"+streamID+"/messages", messageBody(5)); w.Code != http.StatusOK {
		t.Fatalf("POST status = %d", w.Code)
	}

	for _, id := range []string{"AAAAAAAAAAE", "AAAAAAAAAAE%3D", "%41AAAAAAAAAE"} {
		t.Run(id, func(t *testing.T) {
			resp := decodeList(t, do(h, http.MethodGet, "/streams/"+id+"/messages", ""))
			if len(resp.Messages) != 1 || resp.ID.String() != streamID {
				t.Errorf("id %s resolved to %s with %d messages", id, resp.ID, len(resp.Messages))
			}
		})
	}
}

func TestMalformedStreamAddress(t *testing.T) {
	h, store := newTestHandler(t)

	for _, id := range []string{"not-valid", "AAAA", "AAAAAAAAAAAAAAAA", "%FF%FEAAAAAAAAA"} {
		for _, method := range []string{http.MethodGet, http.MethodPost} {
			t.Run(method+" "+id, func(t *testing.T) {
				w := do(h, method, "/streams/"+id+"/messages", messageBody(1))
				if w.Code != http.StatusNotFound {
					t.Fatalf("status = %d, want 404", w.Code)
				}
				if resp := decodeError(t, w); resp.Code != domain.ErrStreamNotFound.Code {
					t.Errorf("code = %s", resp.Code)
				}
			})
		}
	}

	if store.Streams() != 0 {
		t.Error("malformed address reached the store")
	}
}

func TestAppend_Unprocessable(t *testing.T) {
	repo := &failingRepo{err: errors.New("must not be called")}
	h := New(service.NewMessageService(repo), nil, nil)

	tests := []struct {
		name string
		body string
		code string
	}{
		{"short signature", `{"signature":"` + fieldText(1, 63) + `","data":"` + fieldText(1, 128) + `"}`, domain.ErrInvalidSize.Code},
		{"long data", `{"signature":"` + fieldText(1, 64) + `","data":"` + fieldText(1, 129) + `"}`, domain.ErrInvalidSize.Code},
		{"not base64", `{"signature":"!!!","data":"` + fieldText(1, 128) + `"}`, domain.ErrInvalidEncoding.Code},
		{"missing data", `{"signature":"` + fieldText(1, 64) + `"}`, domain.ErrInvalidBody.Code},
		{"not json", `signature=abc`, domain.ErrInvalidBody.Code},
		{"empty body", ``, domain.ErrInvalidBody.Code},
		{"wrong type", `{"signature":1,"data":2}`, domain.ErrInvalidBody.Code},
		{"trailing data", messageBody(1) + "garbage{{{", domain.ErrInvalidBody.Code},
		{"second value", messageBody(1) + messageBody(2), domain.ErrInvalidBody.Code},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/streams/"+streamID+"/messages", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)

			if w.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d, want 422 (%s)", w.Code, w.Body.String())
			}
			if resp := decodeError(t, w); resp.Code != tt.code {
				t.Errorf("code = %s, want %s", resp.Code, tt.code)
			}
		})
	}

	if repo.called {
		t.Error("malformed body reached the store")
	}
}

func TestStoreFailure(t *testing.T) {
	repo := &failingRepo{err: errors.New("connection refused")}
	h := New(service.NewMessageService(repo), nil, nil)

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		w := do(h, method, "/streams/"+streamID+"/messages", messageBody(1))
		if w.Code != http.StatusInternalServerError {
			t.Fatalf("%s status = %d, want 500", method, w.Code)
		}
		resp := decodeError(t, w)
		if resp.Code != domain.ErrStorage.Code {
			t.Errorf("%s code = %s", method, resp.Code)
		}
		if strings.Contains(w.Body.String(), "connection refused") {
			t.Errorf("%s leaked the store error: %s", method, w.Body.String())
		}
	}
}

func TestCorruptRecord(t *testing.T) {
	h, store := newTestHandler(t)
	addr, err := domain.ParseStreamAddress(streamID)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Append(context.Background(), addr, []byte("short")); err != nil {
		t.Fatal(err)
	}

	w := do(h, http.MethodGet, "/streams/"+streamID+"/messages", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if resp := decodeError(t, w); resp.Code != domain.ErrMessageSize.Code {
		t.Errorf("code = %s, want %s", resp.Code, domain.ErrMessageSize.Code)
	}
}

func TestHealthReadyVersion(t *testing.T) {
	h, _ := newTestHandler(t)

	for _, path := range []string{"/health", "/ready", "/version"} {
		w := do(h, http.MethodGet, path, "")
		if w.Code != http.StatusOK {
			t.Errorf("%s status = %d", path, w.Code)
		}
	}

	var v map[string]string
	json.Unmarshal(do(h, http.MethodGet, "/version", "").Body.Bytes(), &v)
	if v["version"] == "" || v["go_version"] == "" {
		t.Errorf("version body = %v", v)
	}
}

func TestReady_StoreDown(t *testing.T) {
	h := New(service.NewMessageService(memory.New()), fakePinger{err: errors.New("down")}, nil)

	w := do(h, http.MethodGet, "/ready", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
	if resp := decodeError(t, w); resp.Code != domain.ErrStorage.Code {
		t.Errorf("code = %s", resp.Code)
	}
}

func TestOpenAPI(t *testing.T) {
	h, _ := newTestHandler(t)

	w := do(h, http.MethodGet, "/openapi.json", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var doc struct {
		Components struct {
			Schemas map[string]struct {
				MinLength int    `json:"minLength"`
				MaxLength int    `json:"maxLength"`
				Pattern   string `json:"pattern"`
			} `json:"schemas"`
		} `json:"components"`
		Paths map[string]any `json:"paths"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}

	want := map[string][2]int{
		"8BytesBase64Encoded":   {11, 12},
		"64BytesBase64Encoded":  {86, 88},
		"128BytesBase64Encoded": {171, 172},
	}
	for name, bounds := range want {
		s, ok := doc.Components.Schemas[name]
		if !ok {
			t.Errorf("schema %s missing", name)
			continue
		}
		if s.MinLength != bounds[0] || s.MaxLength != bounds[1] {
			t.Errorf("%s bounds = %d/%d, want %d/%d", name, s.MinLength, s.MaxLength, bounds[0], bounds[1])
		}
		if !strings.HasPrefix(s.Pattern, "^[A-Za-z0-9_\\-]{") {
			t.Errorf("%s pattern = %s", name, s.Pattern)
		}
	}
	if _, ok := doc.Paths["/streams/{id}/messages"]; !ok {
		t.Error("stream path missing")
	}
}

func TestErrorCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{"SS-STRM-4040", http.StatusNotFound},
		{"SS-ARG-4220", http.StatusUnprocessableEntity},
		{"SS-ARG-4222", http.StatusUnprocessableEntity},
		{"SS-SYS-4290", http.StatusTooManyRequests},
		{"SS-STOR-5002", http.StatusInternalServerError},
		{"SS-SYS-5000", http.StatusInternalServerError},
		{"", http.StatusInternalServerError},
		{"garbage", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := ErrorCodeToHTTPStatus(tt.code); got != tt.want {
			t.Errorf("ErrorCodeToHTTPStatus(%q) = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestUnknownRoute(t *testing.T) {
	h, _ := newTestHandler(t)
	if w := do(h, http.MethodGet, "/streams/"+streamID, ""); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	if w := do(h, http.MethodDelete, "/streams/"+streamID+"/messages", ""); w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", w.Code)
	}
}
