package repository

import (
	"context"
	"testing"

	"github.com/rodrecords/license-extractor/constants"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), Config{DSN: ":memory:"}, nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close(nil) })
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestJobLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewExtractionJobRepository(openTestDB(t), nil)

	job, err := repo.Start(ctx, "/scans/licenses/1950/scan-001.png")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if job.Status != string(constants.JobStatusRunning) {
		t.Errorf("status = %q, want RUNNING", job.Status)
	}

	out := JobOutcome{
		RawText:     "application no. 12345",
		ResultJSON:  []byte(`{"license_number":{"value":"12345","confidence":1.0}}`),
		Confidence:  0.9,
		NeedsReview: false,
	}
	if err := repo.FinishSuccess(ctx, job.ID, out); err != nil {
		t.Fatalf("finish success: %v", err)
	}

	got, err := repo.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != string(constants.JobStatusExtracted) {
		t.Errorf("status = %q, want EXTRACTED", got.Status)
	}
	if got.RawText == nil || *got.RawText != out.RawText {
		t.Errorf("raw text = %v, want %q", got.RawText, out.RawText)
	}
	if string(got.ResultJSON) != string(out.ResultJSON) {
		t.Errorf("result json = %s, want %s", got.ResultJSON, out.ResultJSON)
	}
	if got.Confidence == nil || *got.Confidence < 0.89 || *got.Confidence > 0.91 {
		t.Errorf("confidence = %v, want ~0.9", got.Confidence)
	}
	if got.FinishedAt == nil || got.FinishedAt.IsZero() {
		t.Error("finished_at not recorded")
	}
	if got.ImagePath != job.ImagePath {
		t.Errorf("image path = %q, want %q", got.ImagePath, job.ImagePath)
	}
}

func TestJobFailure(t *testing.T) {
	ctx := context.Background()
	repo := NewExtractionJobRepository(openTestDB(t), nil)

	job, err := repo.Start(ctx, "/scans/licenses/bad.png")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := repo.FinishFailure(ctx, job.ID, "recognizer failed: exit status 1"); err != nil {
		t.Fatalf("finish failure: %v", err)
	}

	got, err := repo.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != string(constants.JobStatusFailed) {
		t.Errorf("status = %q, want FAILED", got.Status)
	}
	if got.ErrorMessage == nil || *got.ErrorMessage != "recognizer failed: exit status 1" {
		t.Errorf("error message = %v", got.ErrorMessage)
	}
}

func TestListByStatus(t *testing.T) {
	ctx := context.Background()
	repo := NewExtractionJobRepository(openTestDB(t), nil)

	a, _ := repo.Start(ctx, "/scans/a.png")
	b, _ := repo.Start(ctx, "/scans/b.png")
	_, _ = repo.Start(ctx, "/scans/c.png")

	_ = repo.FinishSuccess(ctx, a.ID, JobOutcome{RawText: "x", ResultJSON: []byte(`{}`), Confidence: 0.7})
	_ = repo.FinishSuccess(ctx, b.ID, JobOutcome{RawText: "y", ResultJSON: []byte(`{}`), Confidence: 0.8})

	extracted, err := repo.ListByStatus(ctx, constants.JobStatusExtracted)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(extracted) != 2 {
		t.Fatalf("extracted = %d, want 2", len(extracted))
	}

	running, err := repo.ListByStatus(ctx, constants.JobStatusRunning)
	if err != nil {
		t.Fatalf("list running: %v", err)
	}
	if len(running) != 1 {
		t.Errorf("running = %d, want 1", len(running))
	}

	n, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 3 {
		t.Errorf("count = %d, want 3", n)
	}
}
