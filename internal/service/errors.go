package service

import "errors"

// Typed errors so the delivery layer can map them onto HTTP codes.
var (
	// Domain validation / state errors.
	ErrStudentNotFound    = errors.New("student not found")
	ErrExamNotFound       = errors.New("exam not found")
	ErrSheetNotFound      = errors.New("answer sheet not found")
	ErrTextNotFound       = errors.New("no extracted text for this sheet")
	ErrEvaluationNotFound = errors.New("no evaluation for this sheet")
	ErrReportNotReady     = errors.New("no reviewed sheets to report on")
	ErrInvalidTransition  = errors.New("operation not allowed in current sheet status")
	ErrInvalidFileType    = errors.New("unsupported file type")
	ErrDuplicateRollNo    = errors.New("roll number already registered")
	ErrEmptyField         = errors.New("required field is empty")

	// External dependency errors.
	ErrOCRFailed    = errors.New("text recognition failed")
	ErrStorageError = errors.New("object storage error")
	ErrScoringError = errors.New("scoring backend error")
	ErrPublishError = errors.New("event publish error")
)
