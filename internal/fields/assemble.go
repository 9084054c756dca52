package fields

import (
	"github.com/rodrecords/license-extractor/internal/transcribe"
)

// Assemble combines a transcription outcome with field extraction into the
// final result record. A failed transcription short-circuits: the four
// fields stay empty and the extractor is never invoked.
func Assemble(outcome transcribe.Outcome) Result {
	if !outcome.Success {
		msg := outcome.Err
		return Result{
			RawText: outcome.Text,
			Success: false,
			Error:   &msg,
		}
	}

	f := Extract(outcome.Text, outcome.Confidence)
	return Result{
		LicenseNumber: f.LicenseNumber,
		NameSpouse1:   f.NameSpouse1,
		NameSpouse2:   f.NameSpouse2,
		MarriageDate:  f.MarriageDate,
		RawText:       outcome.Text,
		Success:       true,
		Error:         nil,
	}
}
