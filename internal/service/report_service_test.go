package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/gradix/gradix/internal/models"
)

type fakeStudentRepo struct {
	students map[string]*models.Student
}

func (f *fakeStudentRepo) Create(ctx context.Context, student *models.Student) error { return nil }
func (f *fakeStudentRepo) GetByID(ctx context.Context, id string) (*models.Student, error) {
	return f.students[id], nil
}
func (f *fakeStudentRepo) GetByRollNo(ctx context.Context, rollNo string) (*models.Student, error) {
	return nil, nil
}
func (f *fakeStudentRepo) GetAll(ctx context.Context) ([]models.Student, error) { return nil, nil }
func (f *fakeStudentRepo) Delete(ctx context.Context, id string) error          { return nil }

type fakeExamRepo struct {
	exams map[string]*models.Exam
}

func (f *fakeExamRepo) Create(ctx context.Context, exam *models.Exam, questions []models.ExamQuestion) error {
	return nil
}
func (f *fakeExamRepo) GetByID(ctx context.Context, id string) (*models.Exam, error) {
	return f.exams[id], nil
}
func (f *fakeExamRepo) GetQuestions(ctx context.Context, examID string) ([]models.ExamQuestion, error) {
	return nil, nil
}
func (f *fakeExamRepo) GetAll(ctx context.Context) ([]models.Exam, error)  { return nil, nil }
func (f *fakeExamRepo) DeleteCascade(ctx context.Context, id string) error { return nil }

type fakeSheetRepo struct {
	sheets []models.AnswerSheet
}

func (f *fakeSheetRepo) Create(ctx context.Context, sheet *models.AnswerSheet) error { return nil }
func (f *fakeSheetRepo) GetByID(ctx context.Context, id string) (*models.AnswerSheet, error) {
	return nil, nil
}
func (f *fakeSheetRepo) GetAll(ctx context.Context, examID, studentID, status string) ([]models.AnswerSheet, error) {
	return nil, nil
}
func (f *fakeSheetRepo) GetByStudentAndExam(ctx context.Context, studentID, examID string) ([]models.AnswerSheet, error) {
	var out []models.AnswerSheet
	for _, s := range f.sheets {
		if s.StudentID == studentID && s.ExamID == examID {
			out = append(out, s)
		}
	}
	return out, nil
}
func (f *fakeSheetRepo) UpdateStatus(ctx context.Context, id, status string) error { return nil }
func (f *fakeSheetRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id, status string) error {
	return nil
}
func (f *fakeSheetRepo) Delete(ctx context.Context, id string) error  { return nil }
func (f *fakeSheetRepo) BeginTx(ctx context.Context) (*sql.Tx, error) { return nil, nil }

type fakeTextRepo struct {
	bySheet map[string]*models.ExtractedText
}

func (f *fakeTextRepo) Upsert(ctx context.Context, text *models.ExtractedText) error { return nil }
func (f *fakeTextRepo) GetBySheetID(ctx context.Context, sheetID string) (*models.ExtractedText, error) {
	return f.bySheet[sheetID], nil
}
func (f *fakeTextRepo) GetByID(ctx context.Context, id string) (*models.ExtractedText, error) {
	return nil, nil
}
func (f *fakeTextRepo) UpdateCleanedText(ctx context.Context, id, cleanedText string) error {
	return nil
}

type fakeEvalRepo struct {
	byText map[string]*models.Evaluation
}

func (f *fakeEvalRepo) GetByTextID(ctx context.Context, textID string) (*models.Evaluation, error) {
	return f.byText[textID], nil
}
func (f *fakeEvalRepo) GetQuestionScores(ctx context.Context, evalID string) ([]models.QuestionEvaluation, error) {
	return nil, nil
}
func (f *fakeEvalRepo) GetExamScores(ctx context.Context, examID string) ([]float64, error) {
	return nil, nil
}
func (f *fakeEvalRepo) UpsertTx(ctx context.Context, tx *sql.Tx, eval *models.Evaluation) error {
	return nil
}
func (f *fakeEvalRepo) UpsertQuestionScoresTx(ctx context.Context, tx *sql.Tx, scores []models.QuestionEvaluation) error {
	return nil
}
func (f *fakeEvalRepo) ReplaceQuestionScoresTx(ctx context.Context, tx *sql.Tx, evalID string, scores []models.QuestionEvaluation) error {
	return nil
}
func (f *fakeEvalRepo) UpdateScoreTx(ctx context.Context, tx *sql.Tx, evalID string, score float64, feedback *string) error {
	return nil
}
func (f *fakeEvalRepo) BeginTx(ctx context.Context) (*sql.Tx, error) { return nil, nil }

type fakeReportRepo struct {
	cached  *models.Report
	upserts int
}

func (f *fakeReportRepo) Upsert(ctx context.Context, report *models.Report) error {
	f.cached = report
	f.upserts++
	return nil
}
func (f *fakeReportRepo) GetByStudentAndExam(ctx context.Context, studentID, examID string) (*models.Report, error) {
	return f.cached, nil
}
func (f *fakeReportRepo) Delete(ctx context.Context, studentID, examID string) error {
	f.cached = nil
	return nil
}

func reportFixture() (*fakeStudentRepo, *fakeExamRepo, *fakeSheetRepo, *fakeTextRepo, *fakeEvalRepo, *fakeReportRepo) {
	students := &fakeStudentRepo{students: map[string]*models.Student{
		"st-1": {ID: "st-1", Name: "Asha", RollNo: "R-01"},
	}}
	exams := &fakeExamRepo{exams: map[string]*models.Exam{
		"ex-1": {ID: "ex-1", Subject: "Physics", MaxMarks: 100},
	}}
	sheets := &fakeSheetRepo{}
	texts := &fakeTextRepo{bySheet: map[string]*models.ExtractedText{}}
	evals := &fakeEvalRepo{byText: map[string]*models.Evaluation{}}
	reports := &fakeReportRepo{}
	return students, exams, sheets, texts, evals, reports
}

func TestReportGetUnknownStudent(t *testing.T) {
	students, exams, sheets, texts, evals, reports := reportFixture()
	svc := NewReportService(students, exams, sheets, texts, evals, reports, zerolog.Nop())

	if _, err := svc.Get(context.Background(), "st-missing", "ex-1"); !errors.Is(err, ErrStudentNotFound) {
		t.Fatalf("expected ErrStudentNotFound, got %v", err)
	}
	if _, err := svc.Get(context.Background(), "st-1", "ex-missing"); !errors.Is(err, ErrExamNotFound) {
		t.Fatalf("expected ErrExamNotFound, got %v", err)
	}
}

func TestReportGetNoReviewedSheets(t *testing.T) {
	students, exams, sheets, texts, evals, reports := reportFixture()
	sheets.sheets = []models.AnswerSheet{
		{ID: "sh-1", StudentID: "st-1", ExamID: "ex-1", Status: "Pending"},
		{ID: "sh-2", StudentID: "st-1", ExamID: "ex-1", Status: "Graded"},
	}
	svc := NewReportService(students, exams, sheets, texts, evals, reports, zerolog.Nop())

	if _, err := svc.Get(context.Background(), "st-1", "ex-1"); !errors.Is(err, ErrReportNotReady) {
		t.Fatalf("expected ErrReportNotReady, got %v", err)
	}
	if reports.upserts != 0 {
		t.Fatalf("no report should be cached, got %d upserts", reports.upserts)
	}
}

func TestReportGetTakesBestReviewedScore(t *testing.T) {
	students, exams, sheets, texts, evals, reports := reportFixture()
	sheets.sheets = []models.AnswerSheet{
		{ID: "sh-1", StudentID: "st-1", ExamID: "ex-1", Status: "Reviewed"},
		{ID: "sh-2", StudentID: "st-1", ExamID: "ex-1", Status: "Reviewed"},
		{ID: "sh-3", StudentID: "st-1", ExamID: "ex-1", Status: "Graded"},
	}
	texts.bySheet["sh-1"] = &models.ExtractedText{ID: "tx-1", SheetID: "sh-1"}
	texts.bySheet["sh-2"] = &models.ExtractedText{ID: "tx-2", SheetID: "sh-2"}
	texts.bySheet["sh-3"] = &models.ExtractedText{ID: "tx-3", SheetID: "sh-3"}
	evals.byText["tx-1"] = &models.Evaluation{ID: "ev-1", TextID: "tx-1", Score: 61.5}
	evals.byText["tx-2"] = &models.Evaluation{ID: "ev-2", TextID: "tx-2", Score: 74.0}
	// sh-3 is only Graded; its higher score must not leak into the report.
	evals.byText["tx-3"] = &models.Evaluation{ID: "ev-3", TextID: "tx-3", Score: 99.0}

	svc := NewReportService(students, exams, sheets, texts, evals, reports, zerolog.Nop())

	report, err := svc.Get(context.Background(), "st-1", "ex-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.TotalScore != 74.0 {
		t.Errorf("expected best reviewed score 74.0, got %v", report.TotalScore)
	}
	if report.Remarks == nil || *report.Remarks != "Best of 2 reviewed sheet(s)" {
		t.Errorf("unexpected remarks: %v", report.Remarks)
	}
	if reports.upserts != 1 {
		t.Errorf("expected report to be cached once, got %d upserts", reports.upserts)
	}
}

func TestReportGetServesCache(t *testing.T) {
	students, exams, sheets, texts, evals, reports := reportFixture()
	sheets.sheets = []models.AnswerSheet{
		{ID: "sh-1", StudentID: "st-1", ExamID: "ex-1", Status: "Reviewed"},
	}
	texts.bySheet["sh-1"] = &models.ExtractedText{ID: "tx-1", SheetID: "sh-1"}
	evals.byText["tx-1"] = &models.Evaluation{ID: "ev-1", TextID: "tx-1", Score: 50.0}

	svc := NewReportService(students, exams, sheets, texts, evals, reports, zerolog.Nop())

	first, err := svc.Get(context.Background(), "st-1", "ex-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A later, better evaluation must not surface until the cache is cleared.
	evals.byText["tx-1"].Score = 90.0

	second, err := svc.Get(context.Background(), "st-1", "ex-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.ID != first.ID || second.TotalScore != 50.0 {
		t.Errorf("expected cached report %v, got %v", first, second)
	}
	if reports.upserts != 1 {
		t.Errorf("expected a single generation, got %d upserts", reports.upserts)
	}

	if err := reports.Delete(context.Background(), "st-1", "ex-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	third, err := svc.Get(context.Background(), "st-1", "ex-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if third.TotalScore != 90.0 {
		t.Errorf("expected regenerated score 90.0, got %v", third.TotalScore)
	}
}

func TestReportGetSkipsSheetsWithoutEvaluation(t *testing.T) {
	students, exams, sheets, texts, evals, reports := reportFixture()
	sheets.sheets = []models.AnswerSheet{
		{ID: "sh-1", StudentID: "st-1", ExamID: "ex-1", Status: "Reviewed"}, // no text row
		{ID: "sh-2", StudentID: "st-1", ExamID: "ex-1", Status: "Reviewed"},
	}
	texts.bySheet["sh-2"] = &models.ExtractedText{ID: "tx-2", SheetID: "sh-2"}
	evals.byText["tx-2"] = &models.Evaluation{ID: "ev-2", TextID: "tx-2", Score: 42.0}

	svc := NewReportService(students, exams, sheets, texts, evals, reports, zerolog.Nop())

	report, err := svc.Get(context.Background(), "st-1", "ex-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.TotalScore != 42.0 {
		t.Errorf("expected 42.0, got %v", report.TotalScore)
	}
	if report.Remarks == nil || *report.Remarks != "Best of 1 reviewed sheet(s)" {
		t.Errorf("unexpected remarks: %v", report.Remarks)
	}
}
