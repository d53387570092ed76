package httpd

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gradix/gradix/internal/models"
)

func (h *Handler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	var req models.CreateStudentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	student, err := h.students.Create(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, student)
}

func (h *Handler) ListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.students.GetAll(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeSuccess(w, students)
}

func (h *Handler) GetStudent(w http.ResponseWriter, r *http.Request) {
	student, err := h.students.GetByID(r.Context(), chi.URLParam(r, "student_id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, student)
}

func (h *Handler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	if err := h.students.Delete(r.Context(), chi.URLParam(r, "student_id")); err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}
