package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/academic-records-service/internal/repositories"
)

func TestHandleDBError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		wantNotFound   bool
		wantReferenced bool
		wantConstraint string
	}{
		{
			name:         "record not found",
			err:          gorm.ErrRecordNotFound,
			wantNotFound: true,
		},
		{
			name:           "duplicate membership",
			err:            &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "classe_students_pkey"},
			wantConstraint: "classe_students_pkey",
		},
		{
			name:           "duplicate email wrapped by driver",
			err:            fmt.Errorf("exec: %w", &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "uk_users_email"}),
			wantConstraint: "uk_users_email",
		},
		{
			name: "delete of referenced row",
			err: &pgconn.PgError{
				Code:    pgForeignKeyViolation,
				Message: `update or delete on table "exams" violates foreign key constraint "fk_exam_results_exam" on table "exam_results"`,
			},
			wantReferenced: true,
		},
		{
			name: "insert pointing at missing parent",
			err: &pgconn.PgError{
				Code:    pgForeignKeyViolation,
				Message: `insert or update on table "exam_results" violates foreign key constraint "fk_exam_results_exam"`,
			},
			wantNotFound: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := handleDBError(tt.err, "op")

			if repositories.IsNotFoundError(got) != tt.wantNotFound {
				t.Errorf("IsNotFoundError = %v, want %v (err %v)", !tt.wantNotFound, tt.wantNotFound, got)
			}
			if errors.Is(got, repositories.ErrReferenced) != tt.wantReferenced {
				t.Errorf("ErrReferenced = %v, want %v (err %v)", !tt.wantReferenced, tt.wantReferenced, got)
			}

			dup, ok := repositories.AsDuplicateError(got)
			if tt.wantConstraint == "" {
				if ok {
					t.Errorf("unexpected duplicate error %v", dup)
				}
				return
			}
			if !ok || dup.Constraint != tt.wantConstraint {
				t.Errorf("expected duplicate on %q, got %v", tt.wantConstraint, got)
			}
		})
	}
}

func TestHandleDBError_Nil(t *testing.T) {
	if err := handleDBError(nil, "op"); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}
