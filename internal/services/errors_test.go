package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/SAP-F-2025/academic-records-service/internal/auth"
	"github.com/SAP-F-2025/academic-records-service/internal/models"
	"github.com/SAP-F-2025/academic-records-service/internal/repositories"
)

func TestMapRepositoryError(t *testing.T) {
	boom := errors.New("connection reset")

	tests := []struct {
		name     string
		err      error
		wantKind ErrorKind
		wantMsg  string
	}{
		{"not found", repositories.ErrNotFound, KindNotFound, ErrUserNotFound.Message},
		{"wrapped not found", fmt.Errorf("get: %w", repositories.ErrNotFound), KindNotFound, ErrUserNotFound.Message},
		{"duplicate membership", &repositories.DuplicateError{Constraint: "classe_students_pkey"}, KindConflict, ErrStudentAlreadyAssigned.Message},
		{"duplicate email", &repositories.DuplicateError{Constraint: "uk_users_email"}, KindConflict, ErrEmailTaken.Message},
		{"duplicate code", &repositories.DuplicateError{Constraint: "uk_users_user_code"}, KindConflict, "A user with this code already exists."},
		{"duplicate other", &repositories.DuplicateError{Constraint: "uk_subjects_name"}, KindConflict, "A record with this value already exists."},
		{"referenced", repositories.ErrReferenced, KindConflict, "The record is still referenced by other records."},
		{"service error passes through", ErrResultSubmitted, KindInvalidState, ErrResultSubmitted.Message},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapRepositoryError(tt.err, ErrUserNotFound, "load user")
			assertKind(t, err, tt.wantKind)
			var se *ServiceError
			if !errors.As(err, &se) || se.Message != tt.wantMsg {
				t.Errorf("message = %v, want %q", err, tt.wantMsg)
			}
		})
	}

	if err := mapRepositoryError(nil, ErrUserNotFound, "noop"); err != nil {
		t.Errorf("nil error mapped to %v", err)
	}

	err := mapRepositoryError(boom, ErrUserNotFound, "load user")
	if _, ok := KindOf(err); ok {
		t.Errorf("unknown error should stay unclassified, got %v", err)
	}
	if !errors.Is(err, boom) || err.Error() != "failed to load user: connection reset" {
		t.Errorf("unexpected wrap: %v", err)
	}
}

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name   string
		caller *auth.Principal
		roles  []models.UserRole
		want   ErrorKind
	}{
		{"anonymous", nil, []models.UserRole{models.RoleStudent}, KindUnauthorized},
		{"wrong role", &auth.Principal{UserID: 1, Role: models.RoleStudent}, []models.UserRole{models.RoleTeacher}, KindForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertKind(t, authorize(tt.caller, tt.roles...), tt.want)
		})
	}

	if err := authorize(&auth.Principal{UserID: 1, Role: models.RoleAdmin}, models.RoleTeacher); err != nil {
		t.Errorf("admin should pass every gate, got %v", err)
	}
}

func TestNewTokenError(t *testing.T) {
	expired := NewTokenError(auth.ErrTokenExpired)
	if expired.Kind != KindUnauthorized || expired.Message != "Token has expired." {
		t.Errorf("expired = %+v", expired)
	}
	invalid := NewTokenError(auth.ErrTokenInvalid)
	if invalid.Message != ErrInvalidToken.Message || !errors.Is(invalid, auth.ErrTokenInvalid) {
		t.Errorf("invalid = %+v", invalid)
	}
}
