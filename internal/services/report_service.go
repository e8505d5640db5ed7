package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/academic-records-service/internal/auth"
	"github.com/SAP-F-2025/academic-records-service/internal/models"
	"github.com/SAP-F-2025/academic-records-service/internal/repositories"
)

type reportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewReportService(repo repositories.Repository, logger *slog.Logger) ReportService {
	return &reportService{repo: repo, logger: logger}
}

// Summary counts users by role plus classes, exams and subjects
func (s *reportService) Summary(ctx context.Context, caller *auth.Principal) (*models.ReportSummary, error) {
	if err := authorize(caller, models.RoleAdmin); err != nil {
		return nil, err
	}

	summary := &models.ReportSummary{}
	counters := []struct {
		name  string
		dest  *int64
		count func(context.Context) (int64, error)
	}{
		{"students", &summary.TotalStudents, s.countRole(models.RoleStudent)},
		{"teachers", &summary.TotalTeachers, s.countRole(models.RoleTeacher)},
		{"admins", &summary.TotalAdmins, s.countRole(models.RoleAdmin)},
		{"classes", &summary.TotalClasses, s.repo.Classe().Count},
		{"exams", &summary.TotalExams, s.repo.Exam().Count},
		{"subjects", &summary.TotalSubjects, s.repo.Subject().Count},
	}

	for _, c := range counters {
		n, err := c.count(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", c.name, err)
		}
		*c.dest = n
	}
	return summary, nil
}

func (s *reportService) countRole(role models.UserRole) func(context.Context) (int64, error) {
	return func(ctx context.Context) (int64, error) {
		return s.repo.User().CountByRole(ctx, role)
	}
}
