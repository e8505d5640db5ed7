package services

import (
	"testing"

	"github.com/SAP-F-2025/academic-records-service/internal/auth"
	"github.com/SAP-F-2025/academic-records-service/internal/events"
	"github.com/SAP-F-2025/academic-records-service/internal/models"
)

type resultFixture struct {
	env     *testEnv
	teacher *auth.Principal
	student *models.User
	exam    *models.Exam
}

func newResultFixture(t *testing.T) *resultFixture {
	t.Helper()
	env := newTestEnv(t)
	teacher := principalOf(env.createUser(t, nil, models.RoleTeacher))
	student := env.createUser(t, nil, models.RoleStudent)
	classe := env.createClasse(t, "7A")
	env.enroll(t, classe.ID, student.ID)
	subject := env.createSubject(t, "Mathematics")
	return &resultFixture{
		env:     env,
		teacher: teacher,
		student: student,
		exam:    env.createExam(t, teacher, classe.ID, subject.ID),
	}
}

func (f *resultFixture) save(t *testing.T, marks float64) *models.ExamResult {
	t.Helper()
	result, err := f.env.results.Save(f.env.ctx, f.teacher, &ResultRequest{ExamID: f.exam.ID, StudentID: f.student.ID, Marks: marks})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	return result
}

func TestResultService_SaveForcesDraft(t *testing.T) {
	f := newResultFixture(t)
	submitted := "SUBMITTED"
	grade := "b"

	result, err := f.env.results.Save(f.env.ctx, f.teacher, &ResultRequest{
		ExamID: f.exam.ID, StudentID: f.student.ID, Marks: 15, Grade: &grade, Status: &submitted,
	})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if result.Status != models.ResultDraft {
		t.Errorf("status = %s, want DRAFT", result.Status)
	}
	if result.Grade == nil || *result.Grade != models.GradeB {
		t.Errorf("grade = %v, want B", result.Grade)
	}
}

func TestResultService_SaveRejections(t *testing.T) {
	f := newResultFixture(t)
	otherTeacher := f.env.createUser(t, nil, models.RoleTeacher)

	tests := []struct {
		name   string
		caller *auth.Principal
		req    *ResultRequest
		want   ErrorKind
	}{
		{"student caller", principalOf(f.student), &ResultRequest{ExamID: f.exam.ID, StudentID: f.student.ID}, KindForbidden},
		{"unknown exam", f.teacher, &ResultRequest{ExamID: 999, StudentID: f.student.ID}, KindNotFound},
		{"unknown student", f.teacher, &ResultRequest{ExamID: f.exam.ID, StudentID: 999}, KindNotFound},
		{"teacher as student", f.teacher, &ResultRequest{ExamID: f.exam.ID, StudentID: otherTeacher.ID}, KindValidation},
		{"negative marks", f.teacher, &ResultRequest{ExamID: f.exam.ID, StudentID: f.student.ID, Marks: -1}, KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.env.results.Save(f.env.ctx, tt.caller, tt.req)
			assertKind(t, err, tt.want)
		})
	}
}

func TestResultService_UpdateDraftThenFreeze(t *testing.T) {
	f := newResultFixture(t)
	result := f.save(t, 10)

	marks := 14.5
	updated, err := f.env.results.Update(f.env.ctx, f.teacher, result.ID, &UpdateResultRequest{Marks: &marks})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Marks != marks {
		t.Errorf("marks = %v, want %v", updated.Marks, marks)
	}

	if _, err := f.env.results.SubmitBatch(f.env.ctx, f.teacher, []uint{result.ID}); err != nil {
		t.Fatalf("SubmitBatch() error = %v", err)
	}

	again := 20.0
	_, err = f.env.results.Update(f.env.ctx, f.teacher, result.ID, &UpdateResultRequest{Marks: &again})
	assertKind(t, err, KindInvalidState)

	stored, _ := f.env.repo.Result().GetByID(f.env.ctx, result.ID)
	if stored.Marks != marks || stored.Status != models.ResultSubmitted {
		t.Errorf("submitted result changed: %+v", stored)
	}

	_, err = f.env.results.Update(f.env.ctx, f.teacher, 999, &UpdateResultRequest{Marks: &again})
	assertKind(t, err, KindNotFound)
}

func TestResultService_SubmitBatchSkipsUnknownIDs(t *testing.T) {
	f := newResultFixture(t)
	r1 := f.save(t, 8)
	r2 := f.save(t, 9)
	f.env.publisher.ClearEvents()

	n, err := f.env.results.SubmitBatch(f.env.ctx, f.teacher, []uint{r1.ID, r2.ID, 999})
	if err != nil {
		t.Fatalf("SubmitBatch() error = %v", err)
	}
	if n != 2 {
		t.Errorf("submitted = %d, want 2", n)
	}

	for _, id := range []uint{r1.ID, r2.ID} {
		stored, _ := f.env.repo.Result().GetByID(f.env.ctx, id)
		if stored.Status != models.ResultSubmitted {
			t.Errorf("result %d status = %s", id, stored.Status)
		}
	}

	published := f.env.publisher.GetPublishedEvents()
	if len(published) != 1 || published[0].Type != events.TopicResultsSubmitted {
		t.Errorf("expected one results.submitted event, got %+v", published)
	}

	n, err = f.env.results.SubmitBatch(f.env.ctx, f.teacher, nil)
	if err != nil || n != 0 {
		t.Errorf("empty SubmitBatch() = %d, %v", n, err)
	}
}

func TestResultService_UpdateGradeClearAndKeep(t *testing.T) {
	f := newResultFixture(t)
	result := f.save(t, 12)

	grade := "c"
	updated, err := f.env.results.Update(f.env.ctx, f.teacher, result.ID, &UpdateResultRequest{Grade: &grade})
	if err != nil {
		t.Fatalf("Update(grade) error = %v", err)
	}
	if updated.Grade == nil || *updated.Grade != models.GradeC {
		t.Fatalf("grade = %v, want C", updated.Grade)
	}

	marks := 13.0
	updated, err = f.env.results.Update(f.env.ctx, f.teacher, result.ID, &UpdateResultRequest{Marks: &marks})
	if err != nil {
		t.Fatalf("Update(marks) error = %v", err)
	}
	if updated.Grade == nil || *updated.Grade != models.GradeC {
		t.Errorf("omitted grade was not kept: %v", updated.Grade)
	}

	blank := ""
	if _, err := f.env.results.Update(f.env.ctx, f.teacher, result.ID, &UpdateResultRequest{Grade: &blank}); err != nil {
		t.Fatalf("Update(blank grade) error = %v", err)
	}
	stored, _ := f.env.repo.Result().GetByID(f.env.ctx, result.ID)
	if stored.Grade != nil {
		t.Errorf("grade = %v, want cleared", *stored.Grade)
	}
	if stored.Marks != marks || stored.Status != models.ResultDraft {
		t.Errorf("clearing the grade touched other fields: %+v", stored)
	}
}

func TestResultService_SubmitBatchDuplicateIDs(t *testing.T) {
	f := newResultFixture(t)
	grade := "A"
	r1, err := f.env.results.Save(f.env.ctx, f.teacher, &ResultRequest{ExamID: f.exam.ID, StudentID: f.student.ID, Marks: 18, Grade: &grade})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	f.env.publisher.ClearEvents()

	n, err := f.env.results.SubmitBatch(f.env.ctx, f.teacher, []uint{r1.ID, r1.ID, 999, r1.ID})
	if err != nil {
		t.Fatalf("SubmitBatch() error = %v", err)
	}
	if n != 1 {
		t.Errorf("submitted = %d, want 1", n)
	}

	stored, _ := f.env.repo.Result().GetByID(f.env.ctx, r1.ID)
	if stored.Status != models.ResultSubmitted {
		t.Errorf("status = %s, want SUBMITTED", stored.Status)
	}
	if stored.Marks != 18 || stored.Grade == nil || *stored.Grade != models.GradeA {
		t.Errorf("submission rewrote marks or grade: %+v", stored)
	}

	published := f.env.publisher.GetPublishedEvents()
	if len(published) != 1 {
		t.Fatalf("expected one event, got %d", len(published))
	}
	payload, ok := published[0].Data.(events.ResultsSubmittedEvent)
	if !ok || len(payload.ResultIDs) != 1 || payload.ResultIDs[0] != r1.ID {
		t.Errorf("event payload = %+v, want one id %d", published[0].Data, r1.ID)
	}

	// a stale draft write after submission is refused
	again := 2.0
	_, err = f.env.results.Update(f.env.ctx, f.teacher, r1.ID, &UpdateResultRequest{Marks: &again})
	assertKind(t, err, KindInvalidState)
}

func TestResultService_StudentSeesOnlySubmitted(t *testing.T) {
	f := newResultFixture(t)
	result := f.save(t, 11)
	student := principalOf(f.student)

	visible, err := f.env.results.ListForStudent(f.env.ctx, student)
	if err != nil {
		t.Fatalf("ListForStudent() error = %v", err)
	}
	if len(visible) != 0 {
		t.Fatalf("draft should be hidden, got %d results", len(visible))
	}

	if _, err := f.env.results.SubmitBatch(f.env.ctx, f.teacher, []uint{result.ID}); err != nil {
		t.Fatalf("SubmitBatch() error = %v", err)
	}

	visible, _ = f.env.results.ListForStudent(f.env.ctx, student)
	if len(visible) != 1 || visible[0].ID != result.ID {
		t.Errorf("submitted result should be visible, got %+v", visible)
	}
}

func TestResultService_SaveMarks(t *testing.T) {
	f := newResultFixture(t)
	second := f.env.createUser(t, nil, models.RoleStudent)

	results, err := f.env.results.SaveMarks(f.env.ctx, f.teacher, &MarksRequest{
		ExamID: f.exam.ID,
		Marks:  []MarkEntry{{StudentID: f.student.ID, Score: 12}, {StudentID: second.ID, Score: 16}},
	})
	if err != nil {
		t.Fatalf("SaveMarks() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("saved %d results, want 2", len(results))
	}
	for _, r := range results {
		if r.Status != models.ResultDraft || r.ID == 0 {
			t.Errorf("unexpected result %+v", r)
		}
	}

	_, err = f.env.results.SaveMarks(f.env.ctx, f.teacher, &MarksRequest{
		ExamID: f.exam.ID,
		Marks:  []MarkEntry{{StudentID: f.student.ID, Score: 1}, {StudentID: 999, Score: 2}},
	})
	assertKind(t, err, KindNotFound)
	if all, _ := f.env.results.Filter(f.env.ctx, f.teacher, nil, nil); len(all) != 2 {
		t.Errorf("failed batch should not persist rows, got %d results", len(all))
	}
}

func TestResultService_TeacherViews(t *testing.T) {
	f := newResultFixture(t)
	teacherUser, _ := f.env.repo.User().GetByID(f.env.ctx, f.teacher.UserID)
	f.save(t, 13)

	none, err := f.env.results.ListForTeacher(f.env.ctx, f.teacher)
	if err != nil || len(none) != 0 {
		t.Fatalf("teacher without classes should see nothing, got %d, %v", len(none), err)
	}

	if _, err := f.env.enrollment.AssignTeacher(f.env.ctx, f.env.admin, &AssignTeacherRequest{
		ClasseID: f.exam.ClasseID, TeacherID: teacherUser.ID,
	}); err != nil {
		t.Fatalf("AssignTeacher() error = %v", err)
	}
	mine, err := f.env.results.ListForTeacher(f.env.ctx, f.teacher)
	if err != nil || len(mine) != 1 {
		t.Errorf("ListForTeacher() = %d, %v; want 1", len(mine), err)
	}

	byClasse, err := f.env.results.Filter(f.env.ctx, f.teacher, &f.exam.ClasseID, &f.student.ID)
	if err != nil || len(byClasse) != 1 {
		t.Errorf("Filter() = %d, %v; want 1", len(byClasse), err)
	}
	other := uint(999)
	empty, _ := f.env.results.Filter(f.env.ctx, f.teacher, &other, nil)
	if len(empty) != 0 {
		t.Errorf("Filter() on unknown class = %d results", len(empty))
	}
}

func TestAcademicService_DeleteExamWithSubmittedResults(t *testing.T) {
	f := newResultFixture(t)
	result := f.save(t, 10)
	if _, err := f.env.results.SubmitBatch(f.env.ctx, f.teacher, []uint{result.ID}); err != nil {
		t.Fatalf("SubmitBatch() error = %v", err)
	}

	assertKind(t, f.env.academic.DeleteExam(f.env.ctx, f.teacher, f.exam.ID), KindInvalidState)
	if _, err := f.env.repo.Exam().GetByID(f.env.ctx, f.exam.ID); err != nil {
		t.Errorf("exam should still exist: %v", err)
	}
}

func TestAcademicService_DeleteExamWithDrafts(t *testing.T) {
	f := newResultFixture(t)
	result := f.save(t, 10)

	if err := f.env.academic.DeleteExam(f.env.ctx, f.teacher, f.exam.ID); err != nil {
		t.Fatalf("DeleteExam() error = %v", err)
	}
	if _, err := f.env.repo.Result().GetByID(f.env.ctx, result.ID); err == nil {
		t.Error("draft result should be removed with its exam")
	}
	assertKind(t, f.env.academic.DeleteExam(f.env.ctx, f.teacher, f.exam.ID), KindNotFound)
}
