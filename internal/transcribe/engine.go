package transcribe

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"time"
)

// Config configures the exec-based handwriting recognition engine.
type Config struct {
	Command   string // recognizer binary name or absolute path; if empty -> "trocr"
	ModelName string // model identifier passed to the recognizer
	Timeout   time.Duration
}

// Engine shells out to an external handwriting recognizer for the expensive
// image -> text step. The struct is the process-wide engine state: create it
// once, call Load once, then reuse it for many Transcribe calls. Transcribe
// is safe for concurrent use after Load has returned.
type Engine struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
	loaded bool
}

func NewEngine(cfg Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Command == "" {
		cfg.Command = "trocr"
	}
	if cfg.ModelName == "" {
		cfg.ModelName = "microsoft/trocr-base-handwritten"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	return &Engine{cfg: cfg, runner: newExecRunner(logger), logger: logger}
}

// Load resolves the recognizer binary and marks the engine usable.
// Model weights are loaded lazily by the recognizer process itself.
func (e *Engine) Load() error {
	path, err := exec.LookPath(e.cfg.Command)
	if err != nil {
		e.logger.Error("recognizer not found", "command", e.cfg.Command, "error", err)
		return fmt.Errorf("locate recognizer %q: %w", e.cfg.Command, err)
	}
	e.logger.Info("transcription engine ready", "command", path, "model", e.cfg.ModelName)
	e.loaded = true
	return nil
}

// Transcribe runs the recognizer over one image. Every failure is converted
// into a failed Outcome at this boundary; the method never returns an error.
func (e *Engine) Transcribe(ctx context.Context, imagePath string) Outcome {
	if !e.loaded {
		return failedOutcome("transcription engine not loaded")
	}
	if _, err := os.Stat(imagePath); err != nil {
		return failedOutcome(fmt.Sprintf("open image: %v", err))
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	start := time.Now()
	out, errb, err := e.runner.Run(ctx, e.cfg.Command, "--model", e.cfg.ModelName, imagePath)
	if err != nil {
		msg := fmt.Sprintf("recognizer failed: %v", err)
		if len(errb) > 0 {
			msg = fmt.Sprintf("%s: %s", msg, truncate(string(errb), 512))
		}
		return failedOutcome(msg)
	}

	text := Normalize(string(out))
	conf := Estimate(text)
	e.logger.Debug("transcription complete",
		"image", imagePath,
		"bytes", len(text),
		"confidence", conf,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return Outcome{Text: text, Confidence: conf, Success: true}
}
