package transcribe

import "context"

// Outcome is the result of one transcription call. Failures at the engine
// boundary are represented here as data, never as a raised error: callers
// always receive a well-formed Outcome.
type Outcome struct {
	Text       string
	Confidence float32
	Success    bool
	Err        string
}

// Transcriber is the interface the extraction pipeline depends on.
// Implementations convert every internal failure into a failed Outcome.
type Transcriber interface {
	Transcribe(ctx context.Context, imagePath string) Outcome
}

func failedOutcome(msg string) Outcome {
	return Outcome{Text: "", Confidence: 0.0, Success: false, Err: msg}
}
