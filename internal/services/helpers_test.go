package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SAP-F-2025/academic-records-service/internal/auth"
	"github.com/SAP-F-2025/academic-records-service/internal/events"
	"github.com/SAP-F-2025/academic-records-service/internal/models"
	"github.com/SAP-F-2025/academic-records-service/internal/repositories"
	"github.com/SAP-F-2025/academic-records-service/internal/repositories/memory"
	"github.com/SAP-F-2025/academic-records-service/internal/validator"
)

const testPassword = "secret123"

var emailSeq atomic.Int64

type testEnv struct {
	ctx       context.Context
	repo      repositories.Repository
	publisher *events.MockEventPublisher
	tokens    *auth.TokenManager

	identity   IdentityService
	enrollment EnrollmentService
	academic   AcademicService
	results    ResultService
	auth       AuthService
	report     ReportService

	admin *auth.Principal
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithTTL(t, 15*time.Minute)
}

func newTestEnvWithTTL(t *testing.T, accessTTL time.Duration) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	v := validator.New()
	repo := memory.NewRepository(memory.NewStore())
	publisher := events.NewMockEventPublisher(logger)

	tokens, err := auth.NewTokenManager(auth.Config{
		Secret:     []byte("test-secret-test-secret-test-secret!"),
		Issuer:     "academic-records-test",
		AccessTTL:  accessTTL,
		RefreshTTL: time.Hour,
	})
	if err != nil {
		t.Fatalf("NewTokenManager() error = %v", err)
	}

	identity := NewIdentityService(repo, logger, v, publisher)
	env := &testEnv{
		ctx:        context.Background(),
		repo:       repo,
		publisher:  publisher,
		tokens:     tokens,
		identity:   identity,
		enrollment: NewEnrollmentService(repo, logger, v, publisher),
		academic:   NewAcademicService(repo, logger, v),
		results:    NewResultService(repo, logger, v, publisher),
		auth:       NewAuthService(repo, identity, tokens, auth.NewMemoryRevocationStore(), logger, v),
		report:     NewReportService(repo, logger),
	}

	admin := env.createUser(t, &auth.Principal{Role: models.RoleAdmin}, models.RoleAdmin)
	env.admin = principalOf(admin)
	return env
}

func principalOf(u *models.User) *auth.Principal {
	return &auth.Principal{UserID: u.ID, Email: u.Email, Role: u.Role}
}

func (e *testEnv) createUser(t *testing.T, caller *auth.Principal, role models.UserRole) *models.User {
	t.Helper()
	if caller == nil {
		caller = e.admin
	}
	n := emailSeq.Add(1)
	user, err := e.identity.Create(e.ctx, caller, &CreateUserRequest{
		Name:     fmt.Sprintf("User %d", n),
		Email:    fmt.Sprintf("user%d@school.test", n),
		Password: testPassword,
		Role:     string(role),
	})
	if err != nil {
		t.Fatalf("Create(%s) error = %v", role, err)
	}
	return user
}

func (e *testEnv) createClasse(t *testing.T, name string) *models.Classe {
	t.Helper()
	classe, err := e.enrollment.CreateClasse(e.ctx, e.admin, &ClasseRequest{Name: name, Grade: "10"})
	if err != nil {
		t.Fatalf("CreateClasse() error = %v", err)
	}
	return classe
}

func (e *testEnv) createSubject(t *testing.T, name string) *models.Subject {
	t.Helper()
	subject, err := e.academic.CreateSubject(e.ctx, e.admin, &SubjectRequest{Name: name})
	if err != nil {
		t.Fatalf("CreateSubject() error = %v", err)
	}
	return subject
}

func (e *testEnv) createExam(t *testing.T, teacher *auth.Principal, classeID, subjectID uint) *models.Exam {
	t.Helper()
	exam, err := e.academic.CreateExam(e.ctx, teacher, &ExamRequest{
		Name:      "Midterm",
		ClasseID:  classeID,
		SubjectID: subjectID,
		Date:      "2026-03-02",
		StartTime: "09:00",
		EndTime:   "10:30",
	})
	if err != nil {
		t.Fatalf("CreateExam() error = %v", err)
	}
	return exam
}

func (e *testEnv) enroll(t *testing.T, classeID, studentID uint) {
	t.Helper()
	err := e.enrollment.AssignStudent(e.ctx, e.admin, &AssignStudentRequest{ClasseID: classeID, StudentID: studentID})
	if err != nil {
		t.Fatalf("AssignStudent() error = %v", err)
	}
}

func assertKind(t *testing.T, err error, want ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", want)
	}
	if got, ok := KindOf(err); !ok || got != want {
		t.Fatalf("expected %s error, got %v (%T)", want, err, err)
	}
}
