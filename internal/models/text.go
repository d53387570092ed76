package models

// ExtractedText is the OCR output for a sheet, 1:1 by sheet_id. Re-running
// OCR or preprocessing overwrites it in place; no history is kept.
type ExtractedText struct {
	ID         string  `json:"text_id" db:"text_id"`
	SheetID    string  `json:"sheet_id" db:"sheet_id"`
	RawText    string  `json:"raw_text" db:"raw_text"`
	CleanedTxt string  `json:"cleaned_text" db:"cleaned_text"`
	Confidence float64 `json:"extraction_confidence" db:"extraction_confidence"`
}
