package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/academic-records-service/internal/auth"
	"github.com/SAP-F-2025/academic-records-service/internal/events"
	"github.com/SAP-F-2025/academic-records-service/internal/models"
	"github.com/SAP-F-2025/academic-records-service/internal/repositories"
	"github.com/SAP-F-2025/academic-records-service/internal/validator"
)

type resultService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewResultService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) ResultService {
	return &resultService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

// ===== DRAFTS =====

// Save creates a result. Whatever status the caller sends, it starts as DRAFT.
func (s *resultService) Save(ctx context.Context, caller *auth.Principal, req *ResultRequest) (*models.ExamResult, error) {
	if err := authorize(caller, models.RoleTeacher); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, NewValidationError(err)
	}
	if req.Status != nil && !strings.EqualFold(*req.Status, string(models.ResultDraft)) {
		s.logger.Debug("Ignoring requested result status", "status", *req.Status)
	}

	result := &models.ExamResult{
		ExamID:    req.ExamID,
		StudentID: req.StudentID,
		Marks:     req.Marks,
		Grade:     parseGrade(req.Grade),
		Status:    models.ResultDraft,
	}

	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := checkResultTargets(ctx, tx, req.ExamID, req.StudentID); err != nil {
			return err
		}
		return tx.Result().Create(ctx, result)
	})
	if err != nil {
		return nil, mapRepositoryError(err, ErrExamNotFound, "save result")
	}

	s.logger.Info("Draft result saved", "result_id", result.ID, "exam_id", result.ExamID, "student_id", result.StudentID)
	return result, nil
}

// SaveMarks stores one draft result per entry in a single transaction
func (s *resultService) SaveMarks(ctx context.Context, caller *auth.Principal, req *MarksRequest) ([]*models.ExamResult, error) {
	if err := authorize(caller, models.RoleTeacher); err != nil {
		return nil, err
	}
	if errs := s.validator.GetBusinessValidator().ValidateMarks(req); len(errs) > 0 {
		return nil, NewValidationError(errs)
	}
	s.logger.Info("Saving marks", "exam_id", req.ExamID, "entries", len(req.Marks), "saved_by", caller.UserID)

	results := make([]*models.ExamResult, 0, len(req.Marks))
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		for _, m := range req.Marks {
			if err := checkResultTargets(ctx, tx, req.ExamID, m.StudentID); err != nil {
				return err
			}
			results = append(results, &models.ExamResult{
				ExamID:    req.ExamID,
				StudentID: m.StudentID,
				Marks:     m.Score,
				Status:    models.ResultDraft,
			})
		}
		return tx.Result().CreateBatch(ctx, results)
	})
	if err != nil {
		return nil, mapRepositoryError(err, ErrExamNotFound, "save marks")
	}
	return results, nil
}

func checkResultTargets(ctx context.Context, tx repositories.Repository, examID, studentID uint) error {
	if _, err := tx.Exam().GetByID(ctx, examID); err != nil {
		return mapRepositoryError(err, ErrExamNotFound, "get exam")
	}
	student, err := tx.User().GetByID(ctx, studentID)
	if err != nil {
		return mapRepositoryError(err, ErrUserNotFound, "get student")
	}
	if !student.HasRole(models.RoleStudent) {
		return ErrNotAStudent
	}
	return nil
}

// Update patches marks and grade of a draft. An omitted field is kept and an
// empty grade clears it. Submitted results are frozen.
func (s *resultService) Update(ctx context.Context, caller *auth.Principal, id uint, req *UpdateResultRequest) (*models.ExamResult, error) {
	if err := authorize(caller, models.RoleTeacher); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, NewValidationError(err)
	}

	var result *models.ExamResult
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		var err error
		if result, err = tx.Result().GetByID(ctx, id); err != nil {
			return err
		}
		if result.IsSubmitted() {
			return ErrResultSubmitted
		}

		if req.Marks != nil {
			result.Marks = *req.Marks
		}
		if req.Grade != nil {
			result.Grade = parseGrade(req.Grade)
		}
		return tx.Result().UpdateDraft(ctx, result)
	})
	if errors.Is(err, repositories.ErrNotDraft) {
		return nil, ErrResultSubmitted
	}
	if err != nil {
		return nil, mapRepositoryError(err, ErrResultNotFound, "update result")
	}
	return result, nil
}

// ===== SUBMISSION =====

// SubmitBatch marks every existing result among ids SUBMITTED in one
// transaction. Unknown ids are skipped. It returns how many results were found.
func (s *resultService) SubmitBatch(ctx context.Context, caller *auth.Principal, ids []uint) (int, error) {
	if err := authorize(caller, models.RoleTeacher); err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	distinct := uniqueIDs(ids)
	s.logger.Info("Submitting results", "requested", len(distinct), "submitted_by", caller.UserID)

	var submitted []uint
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		var err error
		if submitted, err = tx.Result().Submit(ctx, distinct); err != nil {
			return fmt.Errorf("failed to submit results: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, mapRepositoryError(err, nil, "submit results")
	}

	if skipped := len(distinct) - len(submitted); skipped > 0 {
		s.logger.Info("Skipped unknown result ids", "skipped", skipped)
	}
	if len(submitted) > 0 {
		publishEvent(ctx, s.publisher, s.logger, events.TopicResultsSubmitted,
			events.ResultsSubmittedEvent{ResultIDs: submitted, SubmittedBy: caller.UserID})
	}
	return len(submitted), nil
}

// ===== READS =====

// ListForStudent returns the caller's submitted results; drafts stay hidden
func (s *resultService) ListForStudent(ctx context.Context, caller *auth.Principal) ([]*models.ExamResult, error) {
	if err := authorize(caller, models.RoleStudent); err != nil {
		return nil, err
	}

	submitted := models.ResultSubmitted
	results, err := s.repo.Result().List(ctx, repositories.ResultFilters{
		StudentID: &caller.UserID,
		Status:    &submitted,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list student results: %w", err)
	}
	return results, nil
}

func (s *resultService) Filter(ctx context.Context, caller *auth.Principal, classeID, studentID *uint) ([]*models.ExamResult, error) {
	if err := authorize(caller, models.RoleTeacher); err != nil {
		return nil, err
	}

	results, err := s.repo.Result().List(ctx, repositories.ResultFilters{
		ClasseID:  classeID,
		StudentID: studentID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to filter results: %w", err)
	}
	return results, nil
}

// ListForTeacher returns results of every student in the caller's classes
func (s *resultService) ListForTeacher(ctx context.Context, caller *auth.Principal) ([]*models.ExamResult, error) {
	if err := authorize(caller, models.RoleTeacher); err != nil {
		return nil, err
	}

	students, err := s.repo.Enrollment().StudentsOfTeacher(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teacher students: %w", err)
	}
	if len(students) == 0 {
		return []*models.ExamResult{}, nil
	}

	ids := make([]uint, 0, len(students))
	for _, st := range students {
		ids = append(ids, st.ID)
	}

	results, err := s.repo.Result().List(ctx, repositories.ResultFilters{StudentIDs: ids})
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	return results, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func parseGrade(grade *string) *models.Grade {
	if grade == nil || strings.TrimSpace(*grade) == "" {
		return nil
	}
	g := models.Grade(strings.ToUpper(strings.TrimSpace(*grade)))
	return &g
}
