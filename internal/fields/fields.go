package fields

// FieldValue is one extracted datum with its confidence score.
// Invariant: an empty Value always carries Confidence 0.0.
type FieldValue struct {
	Value      string  `json:"value"`
	Confidence float32 `json:"confidence"`
}

// Fields holds the four structured fields pulled from one license document.
type Fields struct {
	LicenseNumber FieldValue
	NameSpouse1   FieldValue
	NameSpouse2   FieldValue
	MarriageDate  FieldValue
}

// Result is the sole output record of an extraction call: the four fields
// plus the transcription outcome they were derived from. Constructed once,
// never mutated after return.
type Result struct {
	LicenseNumber FieldValue `json:"license_number"`
	NameSpouse1   FieldValue `json:"name_spouse1"`
	NameSpouse2   FieldValue `json:"name_spouse2"`
	MarriageDate  FieldValue `json:"marriage_date"`
	RawText       string     `json:"raw_text"`
	Success       bool       `json:"success"`
	Error         *string    `json:"error"`
}
