package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shiftdl/shiftdl/internal/scheduler"
	"github.com/shiftdl/shiftdl/pkg/logger"
)

func newTestRPC(t *testing.T) (*RPCServer, *scheduler.Scheduler) {
	t.Helper()
	sched := scheduler.New(logger.NewNopLogger(), nil, nil)
	sched.SetConditions(scheduler.Conditions{Connected: true})
	rs := NewRPCServer(&RPCConfig{
		Secret:  "test-secret",
		Version: "1.0.0",
		Commit:  "abc123",
	}, sched)
	t.Cleanup(rs.Close)
	return rs, sched
}

// rpcCall sends a JSON-RPC request to the bridge and returns the parsed
// response.
func rpcCall(t *testing.T, h http.Handler, method string, params any) map[string]any {
	t.Helper()
	body := map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"id":      1,
	}
	if params != nil {
		body["params"] = params
	}
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/jsonrpc", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer test-secret")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var resp map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response %q: %v", rr.Body.String(), err)
	}
	return resp
}

func TestRPCGetVersion(t *testing.T) {
	rs, _ := newTestRPC(t)
	h := requireToken("test-secret", rs.bridge)

	resp := rpcCall(t, h, "system.getVersion", nil)
	result, ok := resp["result"].(map[string]any)
	if !ok {
		t.Fatalf("expected result, got %v", resp)
	}
	if result["version"] != "1.0.0" || result["commit"] != "abc123" {
		t.Errorf("unexpected version result %v", result)
	}
}

func TestRPCSubmitListRemove(t *testing.T) {
	rs, sched := newTestRPC(t)
	h := requireToken("test-secret", rs.bridge)

	resp := rpcCall(t, h, "entry.submit", map[string]any{"priority": 7, "resumable": true})
	result, ok := resp["result"].(map[string]any)
	if !ok {
		t.Fatalf("submit failed: %v", resp)
	}
	id, _ := result["entryId"].(string)
	if id == "" {
		t.Fatal("submit returned no entry id")
	}
	if result["state"] != "inactive" {
		t.Errorf("fresh entry state = %v, want inactive", result["state"])
	}

	resp = rpcCall(t, h, "entry.list", nil)
	result, ok = resp["result"].(map[string]any)
	if !ok {
		t.Fatalf("list failed: %v", resp)
	}
	entries, _ := result["entries"].([]any)
	if len(entries) != 1 {
		t.Fatalf("list returned %d entries", len(entries))
	}
	first := entries[0].(map[string]any)
	if first["entryId"] != id || first["owner"] != rpcOwner {
		t.Errorf("unexpected list entry %v", first)
	}

	resp = rpcCall(t, h, "entry.remove", map[string]any{"entryId": id})
	if _, ok := resp["result"]; !ok {
		t.Fatalf("remove failed: %v", resp)
	}
	if sched.Store().Has(id) {
		t.Error("entry still present after remove")
	}

	resp = rpcCall(t, h, "entry.remove", map[string]any{"entryId": id})
	errObj, ok := resp["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error for double remove, got %v", resp)
	}
	if code := errObj["code"].(float64); int(code) != int(codeEntryNotFound) {
		t.Errorf("error code = %v, want %d", code, codeEntryNotFound)
	}
}

func TestRPCHoldRelease(t *testing.T) {
	rs, sched := newTestRPC(t)
	h := requireToken("test-secret", rs.bridge)

	id := sched.Submit("client", 0, true)

	resp := rpcCall(t, h, "entry.hold", map[string]any{"entryId": id, "key": "policy/low-battery"})
	if _, ok := resp["result"]; !ok {
		t.Fatalf("hold failed: %v", resp)
	}

	// Duplicate hold conflicts.
	resp = rpcCall(t, h, "entry.hold", map[string]any{"entryId": id, "key": "policy/low-battery"})
	errObj, ok := resp["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected conflict error, got %v", resp)
	}
	if code := errObj["code"].(float64); int(code) != int(codeHoldConflict) {
		t.Errorf("error code = %v, want %d", code, codeHoldConflict)
	}

	// Missing key is invalid params.
	resp = rpcCall(t, h, "entry.hold", map[string]any{"entryId": id})
	errObj, ok = resp["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected invalid params error, got %v", resp)
	}
	if code := errObj["code"].(float64); int(code) != int(codeInvalidParams) {
		t.Errorf("error code = %v, want %d", code, codeInvalidParams)
	}

	resp = rpcCall(t, h, "entry.release", map[string]any{"entryId": id, "key": "policy/low-battery"})
	if _, ok := resp["result"]; !ok {
		t.Fatalf("release failed: %v", resp)
	}

	snap, err := sched.Store().Get(id)
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Holds) != 0 {
		t.Errorf("holds not cleared: %v", snap.Holds)
	}
}

func TestRPCReportUsage(t *testing.T) {
	rs, _ := newTestRPC(t)
	h := requireToken("test-secret", rs.bridge)

	// Unknown entries are accepted and dropped silently.
	resp := rpcCall(t, h, "entry.reportUsage", map[string]any{"entryId": "gone", "bytes": 1024})
	if _, ok := resp["result"]; !ok {
		t.Fatalf("reportUsage failed: %v", resp)
	}
}
