package httpd

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gradix/gradix/internal/models"
)

func (h *Handler) CreateExam(w http.ResponseWriter, r *http.Request) {
	var req models.CreateExamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	exam, err := h.exams.Create(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, exam)
}

func (h *Handler) ListExams(w http.ResponseWriter, r *http.Request) {
	exams, err := h.exams.GetAll(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeSuccess(w, exams)
}

func (h *Handler) GetExam(w http.ResponseWriter, r *http.Request) {
	exam, err := h.exams.GetByID(r.Context(), chi.URLParam(r, "exam_id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, exam)
}

func (h *Handler) DeleteExam(w http.ResponseWriter, r *http.Request) {
	if err := h.exams.Delete(r.Context(), chi.URLParam(r, "exam_id")); err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}
