package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/SAP-F-2025/academic-records-service/internal/auth"
	"github.com/SAP-F-2025/academic-records-service/internal/models"
	"github.com/SAP-F-2025/academic-records-service/internal/repositories"
)

type ErrorKind string

const (
	KindNotFound     ErrorKind = "NOT_FOUND"
	KindConflict     ErrorKind = "CONFLICT"
	KindInvalidState ErrorKind = "INVALID_STATE"
	KindUnauthorized ErrorKind = "UNAUTHORIZED"
	KindForbidden    ErrorKind = "FORBIDDEN"
	KindValidation   ErrorKind = "VALIDATION"
)

// ServiceError is the typed failure every service operation surfaces
type ServiceError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func newServiceError(kind ErrorKind, message string, err error) *ServiceError {
	return &ServiceError{Kind: kind, Message: message, Err: err}
}

// Not found
var (
	ErrUserNotFound       = newServiceError(KindNotFound, "User not found.", nil)
	ErrClasseNotFound     = newServiceError(KindNotFound, "Class not found.", nil)
	ErrSubjectNotFound    = newServiceError(KindNotFound, "Subject not found.", nil)
	ErrExamNotFound       = newServiceError(KindNotFound, "Exam not found.", nil)
	ErrResultNotFound     = newServiceError(KindNotFound, "Result not found.", nil)
	ErrMaterialNotFound   = newServiceError(KindNotFound, "Learning material not found.", nil)
	ErrTimetableNotFound  = newServiceError(KindNotFound, "Timetable entry not found.", nil)
	ErrStudentNotInClasse = newServiceError(KindNotFound, "Student is not assigned to this class.", nil)
)

// Conflicts
var (
	ErrEmailTaken             = newServiceError(KindConflict, "A user with this email already exists.", nil)
	ErrTeacherAlreadyAssigned = newServiceError(KindConflict, "This teacher is already assigned to this class.", nil)
	ErrStudentAlreadyAssigned = newServiceError(KindConflict, "This student is already assigned to this class.", nil)
	ErrSubjectInUse           = newServiceError(KindConflict, "Subject is still used by exams or the timetable.", nil)
)

// Invalid state
var (
	ErrResultSubmitted         = newServiceError(KindInvalidState, "Submitted results cannot be modified.", nil)
	ErrExamHasSubmittedResults = newServiceError(KindInvalidState, "Exam has submitted results and cannot be deleted.", nil)
)

// Authentication
var (
	ErrInvalidCredentials = newServiceError(KindUnauthorized, "Invalid email or password.", nil)
	ErrIncorrectPassword  = newServiceError(KindUnauthorized, "Old password is incorrect.", nil)
	ErrInvalidToken       = newServiceError(KindUnauthorized, "Invalid or expired token.", nil)
)

// Validation
var (
	ErrNotATeacher = newServiceError(KindValidation, "User is not a teacher.", nil)
	ErrNotAStudent = newServiceError(KindValidation, "User is not a student.", nil)
)

// NewValidationError wraps validator output so handlers can return field details
func NewValidationError(err error) *ServiceError {
	return newServiceError(KindValidation, "Validation failed.", err)
}

// NewPermissionError reports that userID may not perform action on resource
func NewPermissionError(userID uint, resource, action string) *ServiceError {
	return newServiceError(KindForbidden,
		fmt.Sprintf("You do not have permission to %s this %s.", action, resource),
		fmt.Errorf("user %d denied %s on %s", userID, action, resource))
}

// NewTokenError maps a token verification failure to Unauthorized, keeping the cause
func NewTokenError(err error) *ServiceError {
	if errors.Is(err, auth.ErrTokenExpired) {
		return newServiceError(KindUnauthorized, "Token has expired.", err)
	}
	return newServiceError(KindUnauthorized, ErrInvalidToken.Message, err)
}

// authorize runs the role check at the top of every operation
func authorize(caller *auth.Principal, roles ...models.UserRole) error {
	err := caller.Require(roles...)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, auth.ErrNotAuthenticated):
		return newServiceError(KindUnauthorized, "Authentication required.", err)
	default:
		return newServiceError(KindForbidden, "Access denied.", err)
	}
}

// KindOf returns the kind of a ServiceError anywhere in err's chain
func KindOf(err error) (ErrorKind, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return "", false
}

// IsKind reports whether err carries the given kind
func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// mapRepositoryError translates storage failures into service errors. Unknown
// errors are wrapped with op and left unclassified.
func mapRepositoryError(err error, notFound *ServiceError, op string) error {
	if err == nil {
		return nil
	}
	if _, ok := KindOf(err); ok {
		return err
	}
	if repositories.IsNotFoundError(err) && notFound != nil {
		return notFound
	}
	if dup, ok := repositories.AsDuplicateError(err); ok {
		return newServiceError(KindConflict, duplicateMessage(dup.Constraint), err)
	}
	if errors.Is(err, repositories.ErrReferenced) {
		return newServiceError(KindConflict, "The record is still referenced by other records.", err)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

func duplicateMessage(constraint string) string {
	c := strings.ToLower(constraint)
	switch {
	case strings.Contains(c, "classe_students"):
		return ErrStudentAlreadyAssigned.Message
	case strings.Contains(c, "email"):
		return ErrEmailTaken.Message
	case strings.Contains(c, "code"):
		return "A user with this code already exists."
	default:
		return "A record with this value already exists."
	}
}
