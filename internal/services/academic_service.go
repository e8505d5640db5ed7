package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/academic-records-service/internal/auth"
	"github.com/SAP-F-2025/academic-records-service/internal/models"
	"github.com/SAP-F-2025/academic-records-service/internal/repositories"
	"github.com/SAP-F-2025/academic-records-service/internal/validator"
)

type academicService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewAcademicService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) AcademicService {
	return &academicService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

// ===== EXAMS =====

func (s *academicService) CreateExam(ctx context.Context, caller *auth.Principal, req *ExamRequest) (*models.Exam, error) {
	if err := authorize(caller, models.RoleTeacher); err != nil {
		return nil, err
	}
	s.logger.Info("Creating exam", "name", req.Name, "classe_id", req.ClasseID, "created_by", caller.UserID)

	exam := &models.Exam{CreatedBy: caller.UserID}
	if err := s.fillExam(ctx, s.repo, exam, req); err != nil {
		return nil, err
	}
	if err := s.repo.Exam().Create(ctx, exam); err != nil {
		return nil, mapRepositoryError(err, ErrClasseNotFound, "create exam")
	}

	s.logger.Info("Exam created successfully", "exam_id", exam.ID)
	return exam, nil
}

func (s *academicService) UpdateExam(ctx context.Context, caller *auth.Principal, id uint, req *ExamRequest) (*models.Exam, error) {
	if err := authorize(caller, models.RoleTeacher); err != nil {
		return nil, err
	}

	var exam *models.Exam
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		var err error
		if exam, err = tx.Exam().GetByID(ctx, id); err != nil {
			return mapRepositoryError(err, ErrExamNotFound, "get exam")
		}
		if err := s.fillExam(ctx, tx, exam, req); err != nil {
			return err
		}
		return tx.Exam().Update(ctx, exam)
	})
	if err != nil {
		return nil, mapRepositoryError(err, ErrExamNotFound, "update exam")
	}
	return exam, nil
}

// fillExam validates req, checks its class and subject exist and copies it onto exam
func (s *academicService) fillExam(ctx context.Context, repo repositories.Repository, exam *models.Exam, req *ExamRequest) error {
	if errs := s.validator.GetBusinessValidator().ValidateExam(req); len(errs) > 0 {
		return NewValidationError(errs)
	}

	date, err := validator.ParseCalendarDate(req.Date)
	if err != nil {
		return NewValidationError(err)
	}
	start, err := validator.ParseClockTime(req.StartTime)
	if err != nil {
		return NewValidationError(err)
	}
	end, err := validator.ParseClockTime(req.EndTime)
	if err != nil {
		return NewValidationError(err)
	}

	if _, err := repo.Classe().GetByID(ctx, req.ClasseID); err != nil {
		return mapRepositoryError(err, ErrClasseNotFound, "get class")
	}
	if _, err := repo.Subject().GetByID(ctx, req.SubjectID); err != nil {
		return mapRepositoryError(err, ErrSubjectNotFound, "get subject")
	}

	exam.Name = strings.TrimSpace(req.Name)
	exam.ClasseID = req.ClasseID
	exam.SubjectID = req.SubjectID
	exam.Date = date
	exam.StartTime = start
	exam.EndTime = end
	return nil
}

// DeleteExam removes an exam and its draft results. Exams with submitted
// results are kept.
func (s *academicService) DeleteExam(ctx context.Context, caller *auth.Principal, id uint) error {
	if err := authorize(caller, models.RoleTeacher); err != nil {
		return err
	}
	s.logger.Info("Deleting exam", "exam_id", id, "deleted_by", caller.UserID)

	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if _, err := tx.Exam().GetByID(ctx, id); err != nil {
			return err
		}

		submitted := models.ResultSubmitted
		count, err := tx.Result().CountByExam(ctx, id, &submitted)
		if err != nil {
			return fmt.Errorf("failed to count submitted results: %w", err)
		}
		if count > 0 {
			return ErrExamHasSubmittedResults
		}

		if err := tx.Result().DeleteByExam(ctx, id); err != nil {
			return fmt.Errorf("failed to delete draft results: %w", err)
		}
		return tx.Exam().Delete(ctx, id)
	})
	return mapRepositoryError(err, ErrExamNotFound, "delete exam")
}

func (s *academicService) ListExams(ctx context.Context, caller *auth.Principal, filters repositories.ExamFilters) ([]*models.Exam, error) {
	if err := authorize(caller, models.RoleTeacher); err != nil {
		return nil, err
	}

	exams, err := s.repo.Exam().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list exams: %w", err)
	}
	return exams, nil
}

func (s *academicService) ExamsForStudent(ctx context.Context, caller *auth.Principal) ([]*models.Exam, error) {
	if err := authorize(caller, models.RoleStudent); err != nil {
		return nil, err
	}

	classeIDs, err := s.enrolledClasseIDs(ctx, caller.UserID)
	if err != nil || len(classeIDs) == 0 {
		return []*models.Exam{}, err
	}

	exams, err := s.repo.Exam().List(ctx, repositories.ExamFilters{ClasseIDs: classeIDs})
	if err != nil {
		return nil, fmt.Errorf("failed to list student exams: %w", err)
	}
	return exams, nil
}

func (s *academicService) enrolledClasseIDs(ctx context.Context, studentID uint) ([]uint, error) {
	classes, err := s.repo.Enrollment().ClassesOf(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list student classes: %w", err)
	}
	return classeIDs(classes), nil
}

func classeIDs(classes []*models.Classe) []uint {
	ids := make([]uint, 0, len(classes))
	for _, c := range classes {
		ids = append(ids, c.ID)
	}
	return ids
}

// ===== ATTENDANCE =====

// SubmitAttendance records one row per entry. Every entry must name a
// student. Repeated submissions for the same day are stored as new rows.
func (s *academicService) SubmitAttendance(ctx context.Context, caller *auth.Principal, req *AttendanceRequest) ([]*models.Attendance, error) {
	if err := authorize(caller, models.RoleTeacher); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, NewValidationError(err)
	}
	date, err := validator.ParseCalendarDate(req.Date)
	if err != nil {
		return nil, NewValidationError(err)
	}
	s.logger.Info("Submitting attendance", "classe_id", req.ClasseID, "records", len(req.Records), "submitted_by", caller.UserID)

	records := make([]*models.Attendance, 0, len(req.Records))
	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if _, err := tx.Classe().GetByID(ctx, req.ClasseID); err != nil {
			return mapRepositoryError(err, ErrClasseNotFound, "get class")
		}

		checked := make(map[uint]struct{}, len(req.Records))
		for _, r := range req.Records {
			if _, ok := checked[r.StudentID]; !ok {
				student, err := tx.User().GetByID(ctx, r.StudentID)
				if err != nil {
					return mapRepositoryError(err, ErrUserNotFound, "get student")
				}
				if !student.HasRole(models.RoleStudent) {
					return ErrNotAStudent
				}
				checked[r.StudentID] = struct{}{}
			}
			records = append(records, &models.Attendance{
				ClasseID:  req.ClasseID,
				StudentID: r.StudentID,
				Date:      date,
				Present:   r.Present,
			})
		}
		return tx.Attendance().CreateBatch(ctx, records)
	})
	if err != nil {
		return nil, mapRepositoryError(err, ErrUserNotFound, "save attendance")
	}
	return records, nil
}

func (s *academicService) AttendanceForStudent(ctx context.Context, caller *auth.Principal) ([]*models.Attendance, error) {
	if err := authorize(caller, models.RoleStudent); err != nil {
		return nil, err
	}

	records, err := s.repo.Attendance().ListByStudent(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	return records, nil
}

// ===== LEARNING MATERIALS =====

func (s *academicService) CreateMaterial(ctx context.Context, caller *auth.Principal, req *MaterialRequest) (*models.LearningMaterial, error) {
	if err := authorize(caller, models.RoleTeacher); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, NewValidationError(err)
	}

	material := &models.LearningMaterial{
		ClasseID: req.ClasseID,
		Title:    strings.TrimSpace(req.Title),
		URL:      req.URL,
	}
	if err := s.repo.Material().Create(ctx, material); err != nil {
		return nil, mapRepositoryError(err, ErrClasseNotFound, "create material")
	}

	s.logger.Info("Material created", "material_id", material.ID, "classe_id", material.ClasseID)
	return material, nil
}

func (s *academicService) DeleteMaterial(ctx context.Context, caller *auth.Principal, id uint) error {
	if err := authorize(caller, models.RoleTeacher); err != nil {
		return err
	}

	if err := s.repo.Material().Delete(ctx, id); err != nil {
		return mapRepositoryError(err, ErrMaterialNotFound, "delete material")
	}
	return nil
}

// ListMaterials returns every material for admins and the materials of their
// own classes for teachers.
func (s *academicService) ListMaterials(ctx context.Context, caller *auth.Principal) ([]*models.LearningMaterial, error) {
	if err := authorize(caller, models.RoleTeacher); err != nil {
		return nil, err
	}

	var filters repositories.MaterialFilters
	if caller.Role == models.RoleTeacher {
		classes, err := s.repo.Classe().ListByTeacher(ctx, caller.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to list teacher classes: %w", err)
		}
		if len(classes) == 0 {
			return []*models.LearningMaterial{}, nil
		}
		filters.ClasseIDs = classeIDs(classes)
	}

	materials, err := s.repo.Material().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list materials: %w", err)
	}
	return materials, nil
}

func (s *academicService) MaterialsForStudent(ctx context.Context, caller *auth.Principal) ([]*models.LearningMaterial, error) {
	if err := authorize(caller, models.RoleStudent); err != nil {
		return nil, err
	}

	ids, err := s.enrolledClasseIDs(ctx, caller.UserID)
	if err != nil || len(ids) == 0 {
		return []*models.LearningMaterial{}, err
	}

	materials, err := s.repo.Material().List(ctx, repositories.MaterialFilters{ClasseIDs: ids})
	if err != nil {
		return nil, fmt.Errorf("failed to list student materials: %w", err)
	}
	return materials, nil
}

func (s *academicService) GetMaterialForStudent(ctx context.Context, caller *auth.Principal, id uint) (*models.LearningMaterial, error) {
	if err := authorize(caller, models.RoleStudent); err != nil {
		return nil, err
	}

	material, err := s.repo.Material().GetByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err, ErrMaterialNotFound, "get material")
	}
	if caller.Role == models.RoleAdmin {
		return material, nil
	}

	enrolled, err := s.repo.Enrollment().Exists(ctx, material.ClasseID, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if !enrolled {
		return nil, NewPermissionError(caller.UserID, "material", "download")
	}
	return material, nil
}

// ===== SUBJECTS =====

func (s *academicService) CreateSubject(ctx context.Context, caller *auth.Principal, req *SubjectRequest) (*models.Subject, error) {
	if err := authorize(caller, models.RoleAdmin); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, NewValidationError(err)
	}

	subject := &models.Subject{Name: strings.TrimSpace(req.Name)}
	if err := s.repo.Subject().Create(ctx, subject); err != nil {
		return nil, mapRepositoryError(err, nil, "create subject")
	}
	return subject, nil
}

func (s *academicService) UpdateSubject(ctx context.Context, caller *auth.Principal, id uint, req *SubjectRequest) (*models.Subject, error) {
	if err := authorize(caller, models.RoleAdmin); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, NewValidationError(err)
	}

	subject, err := s.repo.Subject().GetByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err, ErrSubjectNotFound, "get subject")
	}
	subject.Name = strings.TrimSpace(req.Name)
	if err := s.repo.Subject().Update(ctx, subject); err != nil {
		return nil, mapRepositoryError(err, ErrSubjectNotFound, "update subject")
	}
	return subject, nil
}

func (s *academicService) DeleteSubject(ctx context.Context, caller *auth.Principal, id uint) error {
	if err := authorize(caller, models.RoleAdmin); err != nil {
		return err
	}

	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		exams, err := tx.Exam().CountBySubject(ctx, id)
		if err != nil {
			return err
		}
		slots, err := tx.Timetable().CountBySubject(ctx, id)
		if err != nil {
			return err
		}
		if exams+slots > 0 {
			return ErrSubjectInUse
		}
		return tx.Subject().Delete(ctx, id)
	})
	return mapRepositoryError(err, ErrSubjectNotFound, "delete subject")
}

func (s *academicService) ListSubjects(ctx context.Context, caller *auth.Principal) ([]*models.Subject, error) {
	if err := authorize(caller, models.RoleTeacher); err != nil {
		return nil, err
	}

	subjects, err := s.repo.Subject().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}
	return subjects, nil
}

// ===== TIMETABLE =====

func (s *academicService) CreateTimetableEntry(ctx context.Context, caller *auth.Principal, req *TimetableRequest) (*models.TimetableEntry, error) {
	if err := authorize(caller, models.RoleAdmin); err != nil {
		return nil, err
	}

	entry := &models.TimetableEntry{}
	if err := s.fillTimetableEntry(ctx, s.repo, entry, req); err != nil {
		return nil, err
	}
	if err := s.repo.Timetable().Create(ctx, entry); err != nil {
		return nil, mapRepositoryError(err, ErrClasseNotFound, "create timetable entry")
	}
	return entry, nil
}

func (s *academicService) UpdateTimetableEntry(ctx context.Context, caller *auth.Principal, id uint, req *TimetableRequest) (*models.TimetableEntry, error) {
	if err := authorize(caller, models.RoleAdmin); err != nil {
		return nil, err
	}

	var entry *models.TimetableEntry
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		var err error
		if entry, err = tx.Timetable().GetByID(ctx, id); err != nil {
			return mapRepositoryError(err, ErrTimetableNotFound, "get timetable entry")
		}
		if err := s.fillTimetableEntry(ctx, tx, entry, req); err != nil {
			return err
		}
		return tx.Timetable().Update(ctx, entry)
	})
	if err != nil {
		return nil, mapRepositoryError(err, ErrTimetableNotFound, "update timetable entry")
	}
	return entry, nil
}

func (s *academicService) fillTimetableEntry(ctx context.Context, repo repositories.Repository, entry *models.TimetableEntry, req *TimetableRequest) error {
	if errs := s.validator.GetBusinessValidator().ValidateTimetable(req); len(errs) > 0 {
		return NewValidationError(errs)
	}

	start, err := validator.ParseClockTime(req.StartTime)
	if err != nil {
		return NewValidationError(err)
	}
	end, err := validator.ParseClockTime(req.EndTime)
	if err != nil {
		return NewValidationError(err)
	}

	if _, err := repo.Classe().GetByID(ctx, req.ClasseID); err != nil {
		return mapRepositoryError(err, ErrClasseNotFound, "get class")
	}
	if _, err := repo.Subject().GetByID(ctx, req.SubjectID); err != nil {
		return mapRepositoryError(err, ErrSubjectNotFound, "get subject")
	}

	entry.ClasseID = req.ClasseID
	entry.SubjectID = req.SubjectID
	entry.DayOfWeek = models.DayOfWeek(strings.ToUpper(req.DayOfWeek))
	entry.StartTime = start
	entry.EndTime = end
	return nil
}

func (s *academicService) DeleteTimetableEntry(ctx context.Context, caller *auth.Principal, id uint) error {
	if err := authorize(caller, models.RoleAdmin); err != nil {
		return err
	}

	if err := s.repo.Timetable().Delete(ctx, id); err != nil {
		return mapRepositoryError(err, ErrTimetableNotFound, "delete timetable entry")
	}
	return nil
}

// ListTimetable is readable by every role; classeID narrows it to one class
func (s *academicService) ListTimetable(ctx context.Context, caller *auth.Principal, classeID *uint) ([]*models.TimetableEntry, error) {
	if err := authorize(caller, models.RoleTeacher, models.RoleStudent); err != nil {
		return nil, err
	}

	entries, err := s.repo.Timetable().List(ctx, classeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list timetable: %w", err)
	}
	return entries, nil
}
