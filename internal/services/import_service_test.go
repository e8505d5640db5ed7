package services

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/academic-records-service/internal/models"
)

func rosterFile(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	header := []any{"name", "email", "password", "role"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		t.Fatalf("SetSheetRow() error = %v", err)
	}
	for i, row := range rows {
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			t.Fatalf("SetSheetRow() error = %v", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer() error = %v", err)
	}
	return buf
}

func TestIdentityService_ImportUsers(t *testing.T) {
	env := newTestEnv(t)
	classe := env.createClasse(t, "5A")
	existing := env.createUser(t, nil, models.RoleStudent)

	buf := rosterFile(t, [][]any{
		{"Ana Lima", "ana@school.test", "secret123", ""},
		{"Bo Chen", "BO@school.test", "secret123", "student"},
		{"Cy Teach", "cy@school.test", "secret123", "TEACHER"},
		{"Dup", strings.ToUpper(existing.Email), "secret123", ""},
		{"Shorty", "short@school.test", "123", ""},
		{"", "", "", ""},
	})

	summary, err := env.identity.ImportUsers(env.ctx, env.admin, buf, &classe.ID)
	if err != nil {
		t.Fatalf("ImportUsers() error = %v", err)
	}
	if summary.Created != 3 || summary.Enrolled != 2 {
		t.Errorf("summary = %+v, want 3 created and 2 enrolled", summary)
	}
	if len(summary.Skipped) != 2 {
		t.Fatalf("skipped = %+v, want 2 issues", summary.Skipped)
	}
	if summary.Skipped[0].Row != 5 || summary.Skipped[0].Reason != ErrEmailTaken.Message {
		t.Errorf("first issue = %+v", summary.Skipped[0])
	}
	if summary.Skipped[1].Row != 6 {
		t.Errorf("second issue = %+v", summary.Skipped[1])
	}

	bo, err := env.repo.User().GetByEmail(env.ctx, "bo@school.test")
	if err != nil {
		t.Fatalf("imported email should be normalized: %v", err)
	}
	if bo.Role != models.RoleStudent || len(bo.UserCode) != 12 {
		t.Errorf("imported user = %+v", bo)
	}

	students, _ := env.repo.Enrollment().StudentsOf(env.ctx, classe.ID)
	if len(students) != 2 {
		t.Errorf("class has %d students, want 2", len(students))
	}
	cy, _ := env.repo.User().GetByEmail(env.ctx, "cy@school.test")
	if _, err := env.repo.Profile().GetTeacherByUserID(env.ctx, cy.ID); err != nil {
		t.Errorf("imported teacher should have a profile: %v", err)
	}
}

func TestIdentityService_ImportUsersRejections(t *testing.T) {
	env := newTestEnv(t)
	teacher := principalOf(env.createUser(t, nil, models.RoleTeacher))

	_, err := env.identity.ImportUsers(env.ctx, teacher, rosterFile(t, nil), nil)
	assertKind(t, err, KindForbidden)

	missing := uint(999)
	_, err = env.identity.ImportUsers(env.ctx, env.admin, rosterFile(t, nil), &missing)
	assertKind(t, err, KindNotFound)

	_, err = env.identity.ImportUsers(env.ctx, env.admin, strings.NewReader("not a workbook"), nil)
	assertKind(t, err, KindValidation)

	summary, err := env.identity.ImportUsers(env.ctx, env.admin, rosterFile(t, nil), nil)
	if err != nil || summary.Created != 0 {
		t.Errorf("header-only import = %+v, %v", summary, err)
	}
}
