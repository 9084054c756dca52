package transcribe

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/rodrecords/license-extractor/internal/common"
)

// RemoteEngine posts image bytes to an inference HTTP endpoint instead of
// shelling out. Useful when the recognizer runs as a sidecar service with
// the model held resident on an accelerator.
type RemoteEngine struct {
	endpoint string
	model    string
	client   *http.Client
	logger   *slog.Logger
}

type remoteRequest struct {
	Model       string `json:"model"`
	ImageBase64 string `json:"image_base64"`
}

type remoteResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

func NewRemoteEngine(endpoint, model string, timeout time.Duration, logger *slog.Logger) *RemoteEngine {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &RemoteEngine{
		endpoint: endpoint,
		model:    model,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// Transcribe sends one image to the inference endpoint. Failures are
// converted into failed Outcomes at this boundary, never raised.
func (e *RemoteEngine) Transcribe(ctx context.Context, imagePath string) Outcome {
	raw, err := os.ReadFile(imagePath)
	if err != nil {
		return failedOutcome(fmt.Sprintf("read image: %v", err))
	}

	body, err := json.Marshal(remoteRequest{
		Model:       e.model,
		ImageBase64: base64.StdEncoding.EncodeToString(raw),
	})
	if err != nil {
		return failedOutcome(fmt.Sprintf("encode request: %v", err))
	}

	// reuse the pipeline's request id when one is on the context
	reqID := common.RequestIDFromContext(ctx)
	if reqID == "" {
		reqID = uuid.New().String()
	}
	log := e.logger.With("req_id", reqID)
	if docID := common.DocumentIDFromContext(ctx); docID != "" {
		log = log.With("document_id", docID)
	}
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return failedOutcome(fmt.Sprintf("build request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")

	log.Info("inference request", "url", e.endpoint, "content_length", len(body))

	resp, err := e.client.Do(req)
	if err != nil {
		log.Error("inference send error", "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return failedOutcome(fmt.Sprintf("inference request: %v", err))
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			log.Warn("inference body close error", "error", cerr)
		}
	}()

	payload, _ := io.ReadAll(resp.Body)
	log.Info("inference response",
		"status", resp.StatusCode,
		"bytes", len(payload),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode/100 != 2 {
		return failedOutcome(fmt.Sprintf("inference status %d: %s", resp.StatusCode, truncate(string(payload), 512)))
	}

	var rr remoteResponse
	if err := json.Unmarshal(payload, &rr); err != nil {
		return failedOutcome(fmt.Sprintf("decode response: %v", err))
	}
	if rr.Error != "" {
		return failedOutcome(rr.Error)
	}

	text := Normalize(rr.Text)
	return Outcome{Text: text, Confidence: Estimate(text), Success: true}
}
