package validator

import (
	"errors"
	"testing"

	"gorm.io/datatypes"
)

func TestValidate_UserCreateRequest(t *testing.T) {
	v := New()

	tests := []struct {
		name      string
		req       UserCreateRequest
		wantField string
	}{
		{
			name: "valid teacher",
			req:  UserCreateRequest{Name: "Ada", Email: "ada@school.com", Password: "secret1", Role: "TEACHER"},
		},
		{
			name:      "unknown role",
			req:       UserCreateRequest{Name: "Ada", Email: "ada@school.com", Password: "secret1", Role: "PRINCIPAL"},
			wantField: "role",
		},
		{
			name:      "bad email",
			req:       UserCreateRequest{Name: "Ada", Email: "not-an-email", Password: "secret1", Role: "STUDENT"},
			wantField: "email",
		},
		{
			name:      "short password",
			req:       UserCreateRequest{Name: "Ada", Email: "ada@school.com", Password: "123", Role: "STUDENT"},
			wantField: "password",
		},
		{
			name:      "malformed birth date",
			req:       UserCreateRequest{Name: "Ada", Email: "ada@school.com", Password: "secret1", Role: "STUDENT", BirthDate: strPtr("31/12/2001")},
			wantField: "birth_date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&tt.req)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}

			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected ValidationErrors, got %v", err)
			}
			if verrs[0].Field != tt.wantField {
				t.Errorf("expected field %q, got %q", tt.wantField, verrs[0].Field)
			}
		})
	}
}

func TestValidateExam_TimeRange(t *testing.T) {
	bv := NewBusinessValidator()

	tests := []struct {
		name    string
		start   string
		end     string
		wantErr bool
	}{
		{name: "start before end", start: "09:00", end: "10:30"},
		{name: "with seconds", start: "09:00:00", end: "09:00:01"},
		{name: "equal times", start: "09:00", end: "09:00", wantErr: true},
		{name: "end before start", start: "11:00", end: "10:00", wantErr: true},
		{name: "not a time", start: "nine", end: "10:00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &ExamRequest{
				Name:      "Midterm",
				ClasseID:  1,
				SubjectID: 1,
				Date:      "2025-03-14",
				StartTime: tt.start,
				EndTime:   tt.end,
			}
			errs := bv.ValidateExam(req)
			if (len(errs) > 0) != tt.wantErr {
				t.Errorf("ValidateExam() errors = %v, wantErr %v", errs, tt.wantErr)
			}
		})
	}
}

func TestValidateMarks_DuplicateStudent(t *testing.T) {
	bv := NewBusinessValidator()

	errs := bv.ValidateMarks(&MarksRequest{
		ExamID: 1,
		Marks:  []MarkEntry{{StudentID: 4, Score: 12}, {StudentID: 4, Score: 15}},
	})
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %v", errs)
	}
	if errs[0].Field != "marks[1].student_id" {
		t.Errorf("unexpected field %q", errs[0].Field)
	}
}

func TestResultGradeRule(t *testing.T) {
	v := New()

	for _, grade := range []string{"A", "B", "C", "D", "E", "F"} {
		req := &ResultUpdateRequest{Grade: strPtr(grade)}
		if err := v.Validate(req); err != nil {
			t.Errorf("grade %s rejected: %v", grade, err)
		}
	}

	if err := v.Validate(&ResultUpdateRequest{Grade: strPtr("A+")}); err == nil {
		t.Error("expected grade A+ to be rejected")
	}

	// blank clears the grade
	if err := v.Validate(&ResultUpdateRequest{Grade: strPtr("")}); err != nil {
		t.Errorf("blank grade rejected: %v", err)
	}
}

func TestParseClockTime(t *testing.T) {
	got, err := ParseClockTime("08:15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := datatypes.NewTime(8, 15, 0, 0); got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

func strPtr(s string) *string { return &s }
