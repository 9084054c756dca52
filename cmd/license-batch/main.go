package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/rodrecords/license-extractor/constants"
	"github.com/rodrecords/license-extractor/internal/async"
	"github.com/rodrecords/license-extractor/internal/common"
	"github.com/rodrecords/license-extractor/internal/export"
	"github.com/rodrecords/license-extractor/internal/pipeline"
	repo "github.com/rodrecords/license-extractor/internal/repository"
	"github.com/rodrecords/license-extractor/internal/transcribe"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		inmem   = flag.Bool("inmem", false, "use in-memory SQLite database")
		dir     = flag.String("dir", "", "directory of scanned license images (required)")
		out     = flag.String("out", "", "output XLSX file path (optional, defaults to parent directory)")
		workers = flag.Int("workers", 2, "concurrent transcription workers")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(filepath.Dir(*dir), "licenses.xlsx")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()
	cfg := common.LoadConfig()

	dsn := cfg.Database.DSN
	if *inmem {
		dsn = ":memory:"
	} else if dsn == "" {
		dsn = filepath.Join(filepath.Dir(*dir), "licenses.db")
	}

	db, err := repo.Open(ctx, repo.Config{
		DSN:             dsn,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		DialTimeout:     cfg.Database.DialTimeout,
	}, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close(logger)

	if err := db.Migrate(ctx); err != nil {
		logger.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	jobsRepo := repo.NewExtractionJobRepository(db, logger)

	// Transcription engine: remote endpoint when configured, exec otherwise.
	var engine transcribe.Transcriber
	if cfg.Transcriber.Endpoint != "" {
		engine = transcribe.NewRemoteEngine(cfg.Transcriber.Endpoint, cfg.Transcriber.ModelName, cfg.Transcriber.Timeout, logger)
		logger.Info("using remote transcription engine", "endpoint", cfg.Transcriber.Endpoint)
	} else {
		execEngine := transcribe.NewEngine(transcribe.Config{
			Command:   cfg.Transcriber.Command,
			ModelName: cfg.Transcriber.ModelName,
			Timeout:   cfg.Transcriber.Timeout,
		}, logger)
		if err := execEngine.Load(); err != nil {
			logger.Error("failed to load transcription engine", "error", err)
			os.Exit(1)
		}
		engine = execEngine
	}

	processor := pipeline.NewProcessor(logger, engine, jobsRepo)

	var processed, failures atomic.Int64
	queue := async.NewWorkerQueue(ctx, *workers, *workers*2, func(ctx context.Context, job async.Job) {
		_, result, err := processor.ProcessImage(ctx, job.ImagePath)
		if err != nil || !result.Success {
			failures.Add(1)
			return
		}
		processed.Add(1)
	}, logger)

	// Walk the scan directory and enqueue every ingestible image.
	scanned := 0
	matched := 0
	err = filepath.WalkDir(*dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		scanned++
		if !constants.IsAllowedExt(filepath.Ext(path)) {
			return nil
		}
		matched++
		return queue.Enqueue(ctx, async.Job{
			ID:          uuid.New(),
			ImagePath:   path,
			SubmittedAt: time.Now().UTC(),
		})
	})
	if err != nil {
		logger.Error("failed to walk directory", "dir", *dir, "error", err)
		os.Exit(1)
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Minute)
	queue.Shutdown(shutdownCtx)
	cancel()

	logger.Info("batch processing finished",
		"scanned", scanned,
		"matched", matched,
		"processed", processed.Load(),
		"failures", failures.Load(),
	)

	// Export review sheet
	exportService := export.NewService(jobsRepo, logger)
	xlsxBytes, err := exportService.ExportJobsXLSX(ctx)
	if err != nil {
		logger.Error("failed to export jobs", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, xlsxBytes, 0644); err != nil {
		logger.Error("failed to write output file", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Batch processing complete!\n")
	fmt.Printf("- Images matched: %d\n", matched)
	fmt.Printf("- Processed: %d\n", processed.Load())
	fmt.Printf("- Failures: %d\n", failures.Load())
	fmt.Printf("- Output: %s\n", *out)
}
