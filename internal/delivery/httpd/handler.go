package httpd

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/gradix/gradix/internal/service"
)

type Handler struct {
	students   service.StudentService
	exams      service.ExamService
	sheets     service.SheetService
	ocr        service.OCRService
	preprocess service.PreprocessService
	evaluation service.EvaluationService
	review     service.ReviewService
	reports    service.ReportService
	analytics  service.AnalyticsService
	maxUpload  int64
	logger     zerolog.Logger
}

func NewHandler(
	students service.StudentService,
	exams service.ExamService,
	sheets service.SheetService,
	ocr service.OCRService,
	preprocess service.PreprocessService,
	evaluation service.EvaluationService,
	review service.ReviewService,
	reports service.ReportService,
	analytics service.AnalyticsService,
	maxUpload int64,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		students:   students,
		exams:      exams,
		sheets:     sheets,
		ocr:        ocr,
		preprocess: preprocess,
		evaluation: evaluation,
		review:     review,
		reports:    reports,
		analytics:  analytics,
		maxUpload:  maxUpload,
		logger:     logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	// Health check
	router.Get("/health", h.HealthCheck)
	router.Get("/status", h.GetServiceStatus)

	// Versioned API
	router.Route("/api/v1", func(api chi.Router) {
		api.Route("/students", func(r chi.Router) {
			r.Post("/", h.CreateStudent)
			r.Get("/", h.ListStudents)
			r.Get("/{student_id}", h.GetStudent)
			r.Delete("/{student_id}", h.DeleteStudent)
		})

		api.Route("/exams", func(r chi.Router) {
			r.Post("/", h.CreateExam)
			r.Get("/", h.ListExams)
			r.Get("/{exam_id}", h.GetExam)
			r.Delete("/{exam_id}", h.DeleteExam)
		})

		api.Route("/sheets", func(r chi.Router) {
			r.Post("/", h.UploadSheet)
			r.Get("/", h.ListSheets)
			r.Get("/{sheet_id}", h.GetSheet)
			r.Delete("/{sheet_id}", h.DeleteSheet)

			r.Post("/{sheet_id}/ocr", h.RunOCR)
			r.Get("/{sheet_id}/text", h.GetExtractedText)
			r.Post("/{sheet_id}/preprocess", h.RunPreprocess)
			r.Post("/{sheet_id}/evaluate", h.EvaluateSheet)
			r.Get("/{sheet_id}/evaluation", h.GetEvaluation)
			r.Get("/{sheet_id}/review", h.GetReviewBundle)
			r.Post("/{sheet_id}/review", h.OverrideReview)
		})

		api.Get("/reports/{student_id}/{exam_id}", h.GetReport)
		api.Get("/analytics/exams/{exam_id}", h.GetExamAnalytics)
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error":   http.StatusText(status),
		"message": message,
	})
}

func writeSuccess(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

// writeServiceError maps typed service errors onto HTTP codes.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrStudentNotFound),
		errors.Is(err, service.ErrExamNotFound),
		errors.Is(err, service.ErrSheetNotFound),
		errors.Is(err, service.ErrTextNotFound),
		errors.Is(err, service.ErrEvaluationNotFound),
		errors.Is(err, service.ErrReportNotReady):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrDuplicateRollNo):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrEmptyField),
		errors.Is(err, service.ErrInvalidFileType):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrStorageError),
		errors.Is(err, service.ErrOCRFailed),
		errors.Is(err, service.ErrScoringError):
		h.logger.Error().Err(err).Msg("Upstream dependency error")
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		h.logger.Error().Err(err).Msg("Internal error")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
