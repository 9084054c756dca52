package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/rodrecords/license-extractor/internal/common"
	"github.com/rodrecords/license-extractor/internal/fields"
	"github.com/rodrecords/license-extractor/internal/transcribe"
)

// trocr-extract runs the full pipeline for a single scanned license image
// and prints the extraction result as indented JSON on stdout. Logs go to
// stderr so stdout stays machine-readable.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "Usage: trocr-extract <image_path>")
		os.Exit(1)
	}
	imagePath := os.Args[1]

	if _, err := os.Stat(imagePath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: image file not found: %s\n", imagePath)
		os.Exit(1)
	}

	cfg := common.LoadConfig()

	var engine transcribe.Transcriber
	if cfg.Transcriber.Endpoint != "" {
		engine = transcribe.NewRemoteEngine(cfg.Transcriber.Endpoint, cfg.Transcriber.ModelName, cfg.Transcriber.Timeout, logger)
	} else {
		execEngine := transcribe.NewEngine(transcribe.Config{
			Command:   cfg.Transcriber.Command,
			ModelName: cfg.Transcriber.ModelName,
			Timeout:   cfg.Transcriber.Timeout,
		}, logger)
		if err := execEngine.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to load transcription engine: %v\n", err)
			os.Exit(1)
		}
		engine = execEngine
	}

	outcome := engine.Transcribe(context.Background(), imagePath)
	result := fields.Assemble(outcome)

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: encode result: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
