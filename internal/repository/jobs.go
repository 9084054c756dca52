package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rodrecords/license-extractor/constants"
	"github.com/rodrecords/license-extractor/internal/common"
	"github.com/rodrecords/license-extractor/internal/entity"
)

// JobOutcome carries everything the pipeline persists after a successful run.
type JobOutcome struct {
	RawText     string
	ResultJSON  []byte
	Confidence  float32
	NeedsReview bool
}

type ExtractionJobRepository interface {
	Start(ctx context.Context, imagePath string) (*entity.ExtractionJob, error)
	FinishSuccess(ctx context.Context, id uuid.UUID, out JobOutcome) error
	FinishFailure(ctx context.Context, id uuid.UUID, errMsg string) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.ExtractionJob, error)
	ListByStatus(ctx context.Context, status constants.JobStatus) ([]*entity.ExtractionJob, error)
	Count(ctx context.Context) (int, error)
}

type extractionJobRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewExtractionJobRepository(db *DB, logger *slog.Logger) ExtractionJobRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &extractionJobRepository{db: db, logger: logger}
}

func (r *extractionJobRepository) Start(ctx context.Context, imagePath string) (*entity.ExtractionJob, error) {
	job := &entity.ExtractionJob{
		ID:        uuid.New(),
		ImagePath: imagePath,
		Status:    string(constants.JobStatusRunning),
		StartedAt: time.Now().UTC(),
	}
	q := r.db.rebind(`INSERT INTO extraction_job (id, image_path, status, started_at) VALUES (?, ?, ?, ?)`)
	if _, err := r.db.SQL.ExecContext(ctx, q, job.ID.String(), job.ImagePath, job.Status, formatTime(job.StartedAt)); err != nil {
		r.logger.Error("failed to start extraction job", "image_path", imagePath, "error", err)
		return nil, common.WrapError(err, "start extraction job")
	}
	return job, nil
}

func (r *extractionJobRepository) FinishSuccess(ctx context.Context, id uuid.UUID, out JobOutcome) error {
	q := r.db.rebind(`UPDATE extraction_job
		SET status = ?, raw_text = ?, result_json = ?, confidence = ?, needs_review = ?, finished_at = ?
		WHERE id = ?`)
	needsReview := 0
	if out.NeedsReview {
		needsReview = 1
	}
	_, err := r.db.SQL.ExecContext(ctx, q,
		string(constants.JobStatusExtracted),
		out.RawText,
		string(out.ResultJSON),
		out.Confidence,
		needsReview,
		formatTime(time.Now().UTC()),
		id.String(),
	)
	if err != nil {
		r.logger.Error("failed to finish extraction job", "job_id", id, "error", err)
		return common.WrapError(err, "finish extraction job")
	}
	return nil
}

func (r *extractionJobRepository) FinishFailure(ctx context.Context, id uuid.UUID, errMsg string) error {
	q := r.db.rebind(`UPDATE extraction_job
		SET status = ?, error_message = ?, finished_at = ?
		WHERE id = ?`)
	_, err := r.db.SQL.ExecContext(ctx, q,
		string(constants.JobStatusFailed),
		errMsg,
		formatTime(time.Now().UTC()),
		id.String(),
	)
	if err != nil {
		r.logger.Error("failed to record job failure", "job_id", id, "error", err)
		return common.WrapError(err, "record job failure")
	}
	return nil
}

const jobColumns = `id, image_path, status, raw_text, result_json, confidence, needs_review, error_message, started_at, finished_at`

func (r *extractionJobRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.ExtractionJob, error) {
	q := r.db.rebind(`SELECT ` + jobColumns + ` FROM extraction_job WHERE id = ?`)
	row := r.db.SQL.QueryRowContext(ctx, q, id.String())
	job, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, common.ErrNotFound
	}
	return job, err
}

func (r *extractionJobRepository) ListByStatus(ctx context.Context, status constants.JobStatus) ([]*entity.ExtractionJob, error) {
	q := r.db.rebind(`SELECT ` + jobColumns + ` FROM extraction_job WHERE status = ? ORDER BY started_at`)
	rows, err := r.db.SQL.QueryContext(ctx, q, string(status))
	if err != nil {
		r.logger.Error("failed to list extraction jobs", "status", status, "error", err)
		return nil, common.WrapError(err, "list extraction jobs")
	}
	defer rows.Close()

	var jobs []*entity.ExtractionJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (r *extractionJobRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.SQL.QueryRowContext(ctx, `SELECT COUNT(*) FROM extraction_job`).Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

// Timestamps are stored as RFC3339 text so the same queries work against
// both Postgres and SQLite.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func scanJob(row rowScanner) (*entity.ExtractionJob, error) {
	var (
		idStr       string
		job         entity.ExtractionJob
		rawText     sql.NullString
		resultJSON  sql.NullString
		confidence  sql.NullFloat64
		needsReview int
		errMsg      sql.NullString
		startedAt   string
		finishedAt  sql.NullString
	)
	err := row.Scan(&idStr, &job.ImagePath, &job.Status, &rawText, &resultJSON,
		&confidence, &needsReview, &errMsg, &startedAt, &finishedAt)
	if err != nil {
		return nil, err
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, common.WrapError(err, "parse job id")
	}
	job.ID = id
	job.NeedsReview = needsReview != 0
	if job.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
		return nil, common.WrapError(err, "parse started_at")
	}
	if rawText.Valid {
		job.RawText = &rawText.String
	}
	if resultJSON.Valid && resultJSON.String != "" {
		job.ResultJSON = json.RawMessage(resultJSON.String)
	}
	if confidence.Valid {
		c := float32(confidence.Float64)
		job.Confidence = &c
	}
	if errMsg.Valid {
		job.ErrorMessage = &errMsg.String
	}
	if finishedAt.Valid {
		t, err := time.Parse(time.RFC3339Nano, finishedAt.String)
		if err != nil {
			return nil, common.WrapError(err, "parse finished_at")
		}
		job.FinishedAt = &t
	}
	return &job, nil
}
