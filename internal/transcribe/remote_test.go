package transcribe

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rodrecords/license-extractor/internal/common"
)

func TestRemoteEngineSuccess(t *testing.T) {
	img := writeTempImage(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req remoteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "test-model" {
			t.Errorf("model = %q, want test-model", req.Model)
		}
		if _, err := base64.StdEncoding.DecodeString(req.ImageBase64); err != nil {
			t.Errorf("image payload is not valid base64: %v", err)
		}
		_ = json.NewEncoder(w).Encode(remoteResponse{Text: "  Marriage License\t\tApplication No. 12345  "})
	}))
	defer srv.Close()

	e := NewRemoteEngine(srv.URL, "test-model", 5*time.Second, nil)
	out := e.Transcribe(context.Background(), img)
	if !out.Success {
		t.Fatalf("expected success, got error %q", out.Err)
	}

	wantText := "Marriage License Application No. 12345"
	if out.Text != wantText {
		t.Errorf("text = %q, want %q", out.Text, wantText)
	}
	if out.Confidence != Estimate(wantText) {
		t.Errorf("confidence = %v, want %v", out.Confidence, Estimate(wantText))
	}
}

func TestRemoteEngineReportedError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(remoteResponse{Error: "model not loaded"})
	}))
	defer srv.Close()

	e := NewRemoteEngine(srv.URL, "test-model", 5*time.Second, nil)
	out := e.Transcribe(context.Background(), writeTempImage(t))
	if out.Success {
		t.Fatal("expected failure when the endpoint reports an error")
	}
	if out.Err != "model not loaded" {
		t.Errorf("error = %q, want endpoint message", out.Err)
	}
}

func TestRemoteEngineServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	e := NewRemoteEngine(srv.URL, "test-model", 5*time.Second, nil)
	out := e.Transcribe(context.Background(), writeTempImage(t))
	if out.Success {
		t.Fatal("expected failure on non-2xx status")
	}
	if !strings.Contains(out.Err, "inference status 503") {
		t.Errorf("error = %q, want status code included", out.Err)
	}
}

func TestRemoteEngineMissingImage(t *testing.T) {
	e := NewRemoteEngine("http://127.0.0.1:1", "test-model", time.Second, nil)
	out := e.Transcribe(context.Background(), filepath.Join(t.TempDir(), "missing.png"))
	if out.Success {
		t.Fatal("expected failure for missing image")
	}
	if !strings.Contains(out.Err, "read image") {
		t.Errorf("error = %q", out.Err)
	}
}

// ids placed on the context by the pipeline must show up in the request logs
func TestRemoteEngineUsesContextIDs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(remoteResponse{Text: "ok text here"})
	}))
	defer srv.Close()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	ctx := common.WithRequestID(context.Background(), "req-test-789")
	ctx = common.WithDocumentID(ctx, "doc-test-321")

	e := NewRemoteEngine(srv.URL, "test-model", 5*time.Second, logger)
	if out := e.Transcribe(ctx, writeTempImage(t)); !out.Success {
		t.Fatalf("expected success, got error %q", out.Err)
	}

	logs := buf.String()
	if !strings.Contains(logs, "req-test-789") {
		t.Error("request id from context missing in logs")
	}
	if !strings.Contains(logs, "doc-test-321") {
		t.Error("document id from context missing in logs")
	}
}
