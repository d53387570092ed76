package httpd

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.reports.Get(
		r.Context(),
		chi.URLParam(r, "student_id"),
		chi.URLParam(r, "exam_id"),
	)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) GetExamAnalytics(w http.ResponseWriter, r *http.Request) {
	analytics, err := h.analytics.ExamAnalytics(r.Context(), chi.URLParam(r, "exam_id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, analytics)
}
