package services

import (
	"testing"

	"github.com/SAP-F-2025/academic-records-service/internal/models"
)

func TestReportService_Summary(t *testing.T) {
	env := newTestEnv(t)
	teacher := principalOf(env.createUser(t, nil, models.RoleTeacher))
	env.createUser(t, nil, models.RoleStudent)
	env.createUser(t, nil, models.RoleStudent)
	classe := env.createClasse(t, "6A")
	env.createClasse(t, "6B")
	subject := env.createSubject(t, "Biology")
	env.createExam(t, teacher, classe.ID, subject.ID)

	got, err := env.report.Summary(env.ctx, env.admin)
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	want := models.ReportSummary{
		TotalStudents: 2,
		TotalTeachers: 1,
		TotalAdmins:   1,
		TotalClasses:  2,
		TotalExams:    1,
		TotalSubjects: 1,
	}
	if *got != want {
		t.Errorf("Summary() = %+v, want %+v", *got, want)
	}

	_, err = env.report.Summary(env.ctx, teacher)
	assertKind(t, err, KindForbidden)
	_, err = env.report.Summary(env.ctx, nil)
	assertKind(t, err, KindUnauthorized)
}
