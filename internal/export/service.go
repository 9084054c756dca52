package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/rodrecords/license-extractor/constants"
	"github.com/rodrecords/license-extractor/internal/fields"
	"github.com/rodrecords/license-extractor/internal/repository"
)

// Service is a tiny façade over the job repository that produces XLSX bytes
// for archive review sheets.
type Service struct {
	jobsRepo repository.ExtractionJobRepository
	logger   *slog.Logger
}

func NewService(jobsRepo repository.ExtractionJobRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{jobsRepo: jobsRepo, logger: logger}
}

// ExportJobsXLSX returns an XLSX workbook (as bytes) with one row per
// completed extraction job.
func (s *Service) ExportJobsXLSX(ctx context.Context) ([]byte, error) {
	start := time.Now()

	jobs, err := s.jobsRepo.ListByStatus(ctx, constants.JobStatusExtracted)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Licenses"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Job ID",
		"Image",
		"License Number",
		"Spouse 1",
		"Spouse 2",
		"Marriage Date",
		"Confidence",
		"Needs Review",
		"Processed At",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, job := range jobs {
		var res fields.Result
		if len(job.ResultJSON) > 0 {
			if err := json.Unmarshal(job.ResultJSON, &res); err != nil {
				s.logger.Warn("skipping job with unreadable result", "job_id", job.ID, "error", err)
				continue
			}
		}

		conf := float32(0)
		if job.Confidence != nil {
			conf = *job.Confidence
		}
		processedAt := ""
		if job.FinishedAt != nil {
			processedAt = job.FinishedAt.UTC().Format(time.RFC3339)
		}

		values := []any{
			job.ID.String(),
			job.ImagePath,
			res.LicenseNumber.Value,
			res.NameSpouse1.Value,
			res.NameSpouse2.Value,
			res.MarriageDate.Value,
			conf,
			job.NeedsReview,
			processedAt,
		}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		row++
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	s.logger.Info("export complete",
		"jobs", len(jobs),
		"bytes", buf.Len(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
