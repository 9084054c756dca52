package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"

	"github.com/rodrecords/license-extractor/constants"
	"github.com/rodrecords/license-extractor/internal/common"
	"github.com/rodrecords/license-extractor/internal/fields"
	"github.com/rodrecords/license-extractor/internal/repository"
	"github.com/rodrecords/license-extractor/internal/transcribe"
)

// Processor coordinates transcription (image -> text) then field extraction
// (text -> structured fields), persisting the job either way.
type Processor struct {
	logger       *slog.Logger
	engine       transcribe.Transcriber
	jobsRepo     repository.ExtractionJobRepository
	resultSchema map[string]any
}

func NewProcessor(logger *slog.Logger, engine transcribe.Transcriber, jobsRepo repository.ExtractionJobRepository) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		logger:       logger,
		engine:       engine,
		jobsRepo:     jobsRepo,
		resultSchema: fields.BuildResultJSONSchema(),
	}
}

// ProcessImage runs the full pipeline for one scanned license image and
// returns the job ID with the assembled result. A failed transcription is
// recorded as a failed job but still yields a well-formed result record;
// only storage problems surface as errors, classified as gRPC statuses.
func (p *Processor) ProcessImage(ctx context.Context, imagePath string) (uuid.UUID, fields.Result, error) {
	ctx = common.WithRequestID(ctx, uuid.New().String())

	job, err := p.jobsRepo.Start(ctx, imagePath)
	if err != nil {
		return uuid.Nil, fields.Result{}, common.StatusFromError(common.WrapError(err, "start job"))
	}
	ctx = common.WithDocumentID(ctx, job.ID.String())

	outcome := p.engine.Transcribe(ctx, imagePath)
	result := fields.Assemble(outcome)

	if !outcome.Success {
		p.logger.Warn("transcription failed", "job_id", job.ID, "image", imagePath, "error", outcome.Err)
		if err := p.jobsRepo.FinishFailure(ctx, job.ID, outcome.Err); err != nil {
			return job.ID, result, common.StatusFromError(err)
		}
		return job.ID, result, nil
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return job.ID, result, common.StatusFromError(common.WrapError(err, "encode result"))
	}
	if err := fields.ValidateJSONAgainstSchema(p.resultSchema, raw); err != nil {
		_ = p.jobsRepo.FinishFailure(ctx, job.ID, err.Error())
		return job.ID, result, common.StatusFromError(common.WrapError(err, "validate result"))
	}

	needsReview := outcome.Confidence < constants.NeedsReviewThreshold
	if needsReview {
		p.logger.Warn("low transcription confidence; needs review",
			"job_id", job.ID, "confidence", outcome.Confidence)
	}

	out := repository.JobOutcome{
		RawText:     outcome.Text,
		ResultJSON:  raw,
		Confidence:  outcome.Confidence,
		NeedsReview: needsReview,
	}
	if err := p.jobsRepo.FinishSuccess(ctx, job.ID, out); err != nil {
		return job.ID, result, common.StatusFromError(err)
	}

	p.logger.Info("extraction complete",
		"job_id", job.ID,
		"license_number", result.LicenseNumber.Value,
		"spouse1", result.NameSpouse1.Value,
		"spouse2", result.NameSpouse2.Value,
		"marriage_date", result.MarriageDate.Value,
		"confidence", outcome.Confidence,
		"needs_review", needsReview,
	)
	return job.ID, result, nil
}
