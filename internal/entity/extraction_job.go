package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ExtractionJob represents one document's trip through the pipeline,
// for data transfer between layers.
type ExtractionJob struct {
	ID           uuid.UUID       `json:"id"`
	ImagePath    string          `json:"image_path"`
	Status       string          `json:"status"`
	RawText      *string         `json:"raw_text,omitempty"`
	ResultJSON   json.RawMessage `json:"result_json,omitempty"`
	Confidence   *float32        `json:"confidence,omitempty"`
	NeedsReview  bool            `json:"needs_review"`
	ErrorMessage *string         `json:"error_message,omitempty"`
	StartedAt    time.Time       `json:"started_at"`
	FinishedAt   *time.Time      `json:"finished_at,omitempty"`
}
