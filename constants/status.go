package constants

// JobStatus is the canonical status for rows in extraction_job.
type JobStatus string

// Stable values (store these exact strings in DB).
const (
	JobStatusQueued      JobStatus = "QUEUED"      // queued for processing
	JobStatusRunning     JobStatus = "RUNNING"     // in progress
	JobStatusTranscribed JobStatus = "TRANSCRIBED" // stage 1 completed (text recognized)
	JobStatusExtracted   JobStatus = "EXTRACTED"   // stage 2 completed (fields extracted)
	JobStatusFailed      JobStatus = "FAILED"      // terminal failure
)

// NeedsReviewThreshold flags low-confidence transcriptions for manual review.
const NeedsReviewThreshold = 0.6
