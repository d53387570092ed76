package httpd

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gradix/gradix/internal/models"
)

// UploadSheet accepts a multipart form with student_id, exam_id and a "file"
// part holding the scanned answer sheet (pdf/jpg/jpeg/png).
func (h *Handler) UploadSheet(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	studentID := r.FormValue("student_id")
	examID := r.FormValue("exam_id")
	if studentID == "" || examID == "" {
		writeError(w, http.StatusBadRequest, "student_id and exam_id are required")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read uploaded file")
		return
	}

	sheet, err := h.sheets.Upload(r.Context(), studentID, examID, header.Filename, data)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, sheet)
}

func (h *Handler) ListSheets(w http.ResponseWriter, r *http.Request) {
	sheets, err := h.sheets.GetAll(
		r.Context(),
		r.URL.Query().Get("exam_id"),
		r.URL.Query().Get("student_id"),
		r.URL.Query().Get("status"),
	)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeSuccess(w, sheets)
}

func (h *Handler) GetSheet(w http.ResponseWriter, r *http.Request) {
	sheet, err := h.sheets.GetByID(r.Context(), chi.URLParam(r, "sheet_id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sheet)
}

func (h *Handler) DeleteSheet(w http.ResponseWriter, r *http.Request) {
	if err := h.sheets.Delete(r.Context(), chi.URLParam(r, "sheet_id")); err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) RunOCR(w http.ResponseWriter, r *http.Request) {
	text, err := h.ocr.Run(r.Context(), chi.URLParam(r, "sheet_id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, text)
}

func (h *Handler) GetExtractedText(w http.ResponseWriter, r *http.Request) {
	text, err := h.ocr.GetBySheetID(r.Context(), chi.URLParam(r, "sheet_id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, text)
}

func (h *Handler) RunPreprocess(w http.ResponseWriter, r *http.Request) {
	text, err := h.preprocess.Run(r.Context(), chi.URLParam(r, "sheet_id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, text)
}

func (h *Handler) EvaluateSheet(w http.ResponseWriter, r *http.Request) {
	eval, scores, err := h.evaluation.Evaluate(r.Context(), chi.URLParam(r, "sheet_id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"evaluation":      eval,
		"question_scores": scores,
	})
}

func (h *Handler) GetEvaluation(w http.ResponseWriter, r *http.Request) {
	eval, scores, err := h.evaluation.GetBySheetID(r.Context(), chi.URLParam(r, "sheet_id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"evaluation":      eval,
		"question_scores": scores,
	})
}

func (h *Handler) GetReviewBundle(w http.ResponseWriter, r *http.Request) {
	bundle, err := h.review.GetBundle(r.Context(), chi.URLParam(r, "sheet_id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, bundle)
}

func (h *Handler) OverrideReview(w http.ResponseWriter, r *http.Request) {
	var req models.OverrideReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	eval, err := h.review.Override(r.Context(), chi.URLParam(r, "sheet_id"), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, eval)
}
