package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"AESFlow/server/internal/protocol"
	"AESFlow/server/internal/services/cipher"
)

const zeroHex = "00000000000000000000000000000000"

type memArchive struct {
	runs []*protocol.Run
}

func (a *memArchive) SaveRun(ctx context.Context, run *protocol.Run) (int64, error) {
	a.runs = append(a.runs, run)
	run.ID = int64(len(a.runs))
	return run.ID, nil
}

func (a *memArchive) GetRun(ctx context.Context, id int64) (*protocol.Run, error) {
	if id < 1 || int(id) > len(a.runs) {
		return nil, nil
	}
	return a.runs[id-1], nil
}

func (a *memArchive) ListRuns(ctx context.Context, limit int) ([]*protocol.Run, error) {
	if limit > len(a.runs) {
		limit = len(a.runs)
	}
	return a.runs[:limit], nil
}

func newTestServer(t *testing.T, archive cipher.Archive) (*Server, *httptest.Server) {
	t.Helper()
	svc := cipher.NewService(archive, 1024)
	s := New("", svc, 128)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func postJSON(t *testing.T, url string, body interface{}) (*http.Response, []byte) {
	t.Helper()
	payload, _ := json.Marshal(body)
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("POST %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp, data
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp, data
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t, nil)
	resp, body := get(t, ts.URL+"/")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "AESFlow") {
		t.Fatalf("health = %d %q", resp.StatusCode, body)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Fatal("missing CORS header")
	}
}

func TestEncryptDecrypt(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp, body := postJSON(t, ts.URL+"/api/encrypt", map[string]interface{}{
		"plaintext": "HELLO", "key": zeroHex, "iv": zeroHex,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("encrypt status = %d: %s", resp.StatusCode, body)
	}
	var enc protocol.EncryptResult
	if err := json.Unmarshal(body, &enc); err != nil {
		t.Fatalf("decode encrypt: %v", err)
	}
	if enc.CiphertextHex != "b8653eddbef0f60b0c1f39cc3e2328be" || enc.IVHex != zeroHex || enc.Trace != nil {
		t.Fatalf("unexpected encrypt result: %+v", enc)
	}

	resp, body = postJSON(t, ts.URL+"/api/decrypt", map[string]interface{}{
		"ciphertext": enc.CiphertextHex, "key": zeroHex, "iv": enc.IVHex, "trace": true,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("decrypt status = %d: %s", resp.StatusCode, body)
	}
	var dec protocol.DecryptResult
	if err := json.Unmarshal(body, &dec); err != nil {
		t.Fatalf("decode decrypt: %v", err)
	}
	if dec.PlaintextText != "HELLO" || dec.Trace == nil || len(dec.Trace.Blocks) != 1 {
		t.Fatalf("unexpected decrypt result: %+v", dec)
	}
}

func TestErrorMapping(t *testing.T) {
	_, ts := newTestServer(t, nil)

	tests := []struct {
		name   string
		path   string
		body   interface{}
		status int
		errMsg string
	}{
		{"bad key length", "/api/encrypt", map[string]string{"plaintext": "x", "key": "00"}, http.StatusBadRequest, "invalid key length"},
		{"bad hex", "/api/decrypt", map[string]string{"ciphertext": "zz", "key": zeroHex, "iv": zeroHex}, http.StatusBadRequest, "invalid hex input"},
		{"bad padding", "/api/decrypt", map[string]string{
			"ciphertext": "b8653eddbef0f60b0c1f39cc3e2328be", "key": zeroHex, "iv": "00000000000000000000000000000080",
		}, http.StatusBadRequest, "decryption failed"},
		{"too large", "/api/encrypt", map[string]string{"plaintext": strings.Repeat("a", 2048), "key": zeroHex}, http.StatusRequestEntityTooLarge, "message too large"},
		{"ciphertext too large", "/api/decrypt", map[string]string{
			"ciphertext": strings.Repeat("00", 2048), "key": zeroHex, "iv": zeroHex,
		}, http.StatusRequestEntityTooLarge, "message too large"},
		{"body too large", "/api/decrypt", map[string]string{
			"ciphertext": strings.Repeat("00", 36<<10), "key": zeroHex, "iv": zeroHex,
		}, http.StatusRequestEntityTooLarge, "message too large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := postJSON(t, ts.URL+tt.path, tt.body)
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d (%s)", resp.StatusCode, tt.status, body)
			}
			var e protocol.ErrorResponse
			if err := json.Unmarshal(body, &e); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if !strings.HasPrefix(e.Error, tt.errMsg) {
				t.Fatalf("error = %q, want prefix %q", e.Error, tt.errMsg)
			}
		})
	}

	resp, err := http.Post(ts.URL+"/api/encrypt", "application/json", strings.NewReader("{"))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("malformed body status = %d", resp.StatusCode)
	}
}

func TestGenerateKeyAndIV(t *testing.T) {
	_, ts := newTestServer(t, nil)

	for bits, hexLen := range map[string]int{"": 32, "192": 48, "256": 64} {
		resp, body := get(t, ts.URL+"/api/keys?bits="+bits)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("keys?bits=%s status = %d", bits, resp.StatusCode)
		}
		var out struct {
			Key string `json:"key"`
		}
		json.Unmarshal(body, &out)
		if len(out.Key) != hexLen {
			t.Fatalf("keys?bits=%s length = %d, want %d", bits, len(out.Key), hexLen)
		}
	}

	if resp, _ := get(t, ts.URL+"/api/keys?bits=100"); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad bits status = %d", resp.StatusCode)
	}

	resp, body := get(t, ts.URL+"/api/iv")
	var out map[string]string
	json.Unmarshal(body, &out)
	if resp.StatusCode != http.StatusOK || len(out["iv"]) != 32 {
		t.Fatalf("iv = %d %v", resp.StatusCode, out)
	}
}

func TestRunsDisabled(t *testing.T) {
	_, ts := newTestServer(t, nil)
	if resp, _ := get(t, ts.URL+"/api/runs"); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("runs status = %d", resp.StatusCode)
	}
	if resp, _ := get(t, ts.URL+"/api/runs/1"); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("run status = %d", resp.StatusCode)
	}
}

func TestRunsArchive(t *testing.T) {
	_, ts := newTestServer(t, &memArchive{})

	postJSON(t, ts.URL+"/api/encrypt", map[string]interface{}{
		"plaintext": "HELLO", "key": zeroHex, "iv": zeroHex, "trace": true,
	})

	resp, body := get(t, ts.URL+"/api/runs?limit=5")
	var runs []*protocol.Run
	json.Unmarshal(body, &runs)
	if resp.StatusCode != http.StatusOK || len(runs) != 1 || runs[0].Operation != protocol.OperationEncrypt {
		t.Fatalf("runs = %d %s", resp.StatusCode, body)
	}

	resp, body = get(t, ts.URL+"/api/runs/1")
	var run protocol.Run
	json.Unmarshal(body, &run)
	if resp.StatusCode != http.StatusOK || run.FinalResult != "b8653eddbef0f60b0c1f39cc3e2328be" {
		t.Fatalf("run = %d %s", resp.StatusCode, body)
	}

	if resp, _ := get(t, ts.URL+"/api/runs/9"); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing run status = %d", resp.StatusCode)
	}
	if resp, _ := get(t, ts.URL+"/api/runs/abc"); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad run id status = %d", resp.StatusCode)
	}
}

func TestTraceEventReachesViewer(t *testing.T) {
	s, ts := newTestServer(t, nil)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for s.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("viewer never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	postJSON(t, ts.URL+"/api/encrypt", map[string]interface{}{
		"plaintext": "HELLO", "key": zeroHex, "iv": zeroHex, "trace": true,
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event struct {
		Type string             `json:"type"`
		Data protocol.StepTrace `json:"data"`
	}
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if event.Type != "trace" || event.Data.FinalResultHex != "b8653eddbef0f60b0c1f39cc3e2328be" {
		t.Fatalf("unexpected event: %+v", event)
	}
}
