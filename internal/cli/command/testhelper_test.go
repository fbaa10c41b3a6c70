package command

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/yndnr/sigstream/internal/core/domain"
)

// mockServer creates a test HTTP server with custom handlers.
type mockServer struct {
	*httptest.Server
	handlers map[string]http.HandlerFunc
}

func newMockServer() *mockServer {
	m := &mockServer{
		handlers: make(map[string]http.HandlerFunc),
	}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for pattern, handler := range m.handlers {
			if strings.HasPrefix(r.URL.Path, pattern) {
				handler(w, r)
				return
			}
		}
		http.NotFound(w, r)
	}))
	return m
}

// handle registers a handler for a path prefix.
func (m *mockServer) handle(pattern string, handler http.HandlerFunc) {
	m.handlers[pattern] = handler
}

func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResponse(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("X-Error-Code", code)
	jsonResponse(w, status, map[string]any{
		"code":       code,
		"message":    message,
		"request_id": "test-request",
		"timestamp":  0,
	})
}

// runApp runs the CLI against server and returns what it wrote to stdout.
func runApp(t *testing.T, server *mockServer, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	app := App()
	app.Writer = &stdout
	app.ErrWriter = &stderr

	full := []string{"sigstream-cli"}
	if server != nil {
		full = append(full, "--server", server.URL)
	}
	full = append(full, args...)

	err := app.Run(full)
	return stdout.String(), err
}

func testAddress(t *testing.T, b byte) domain.StreamAddress {
	t.Helper()
	id, err := domain.NewStreamAddress([]byte{b, 1, 2, 3, 4, 5, 6, 7})
	if err != nil {
		t.Fatalf("NewStreamAddress: %v", err)
	}
	return id
}

func testMessage(t *testing.T, seed byte) domain.Message {
	t.Helper()
	var raw [domain.PackedSize]byte
	for i := range raw {
		raw[i] = seed + byte(i)
	}
	m, err := domain.UnpackMessage(raw[:])
	if err != nil {
		t.Fatalf("UnpackMessage: %v", err)
	}
	return m
}
