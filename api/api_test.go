package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/a64sim/a64sim/api"
)

func newTestServer() *httptest.Server {
	return httptest.NewServer(api.NewServer(0).Handler())
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func decodeJSON[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer func() {
		_ = resp.Body.Close()
	}()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	return v
}

const testProgram = "movz x0, #5\nmovz x1, #7\nadd x2, x0, x1\nhalt\n"

func TestAssembleEndpoint(t *testing.T) {
	server := newTestServer()
	defer server.Close()

	resp := postJSON(t, server.URL+"/api/assemble", api.AssembleRequest{Source: testProgram})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	result := decodeJSON[api.AssembleResponse](t, resp)

	if result.Size != 16 {
		t.Errorf("size = %d, want 16", result.Size)
	}
	if len(result.Words) != 4 || result.Words[0] != "0xd28000a0" {
		t.Errorf("words = %v", result.Words)
	}
}

func TestAssembleEndpoint_BadSource(t *testing.T) {
	server := newTestServer()
	defer server.Close()

	resp := postJSON(t, server.URL+"/api/assemble", api.AssembleRequest{Source: "frobnicate\n"})
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
}

func TestSessionLifecycle(t *testing.T) {
	server := newTestServer()
	defer server.Close()

	// Create
	resp := postJSON(t, server.URL+"/api/sessions", api.CreateSessionRequest{Source: testProgram})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	created := decodeJSON[api.CreateSessionResponse](t, resp)
	if created.SessionID == "" {
		t.Fatal("missing session id")
	}
	base := server.URL + "/api/sessions/" + created.SessionID

	// Single step
	resp = postJSON(t, base+"/step", api.StepRequest{})
	state := decodeJSON[api.StateResponse](t, resp)
	if state.Registers[0] != "0000000000000005" {
		t.Errorf("X0 = %s, want 0000000000000005", state.Registers[0])
	}
	if state.PC != "0000000000000004" {
		t.Errorf("PC = %s, want 0000000000000004", state.PC)
	}

	// Run to completion
	resp = postJSON(t, base+"/run", nil)
	state = decodeJSON[api.StateResponse](t, resp)
	if state.State != "halted" {
		t.Errorf("state = %s, want halted", state.State)
	}
	if state.Registers[2] != "000000000000000c" {
		t.Errorf("X2 = %s, want 000000000000000c", state.Registers[2])
	}

	// Memory view of the loaded image
	resp, err := http.Get(base + "/memory?addr=0x0&count=4")
	if err != nil {
		t.Fatal(err)
	}
	mem := decodeJSON[api.MemoryResponse](t, resp)
	if len(mem.Words) != 4 || mem.Words[0] != "0xd28000a0" {
		t.Errorf("memory words = %v", mem.Words)
	}

	// State dump
	resp, err = http.Get(base + "/dump")
	if err != nil {
		t.Fatal(err)
	}
	body := new(bytes.Buffer)
	_, _ = body.ReadFrom(resp.Body)
	_ = resp.Body.Close()
	if !strings.Contains(body.String(), "PSTATE :") {
		t.Errorf("dump missing PSTATE:\n%s", body.String())
	}

	// Delete
	req, _ := http.NewRequest(http.MethodDelete, base, nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", resp.StatusCode)
	}
}

func TestSessionNotFound(t *testing.T) {
	server := newTestServer()
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/sessions/sess-999/state")
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}
