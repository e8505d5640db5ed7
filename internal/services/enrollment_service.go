package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/academic-records-service/internal/auth"
	"github.com/SAP-F-2025/academic-records-service/internal/events"
	"github.com/SAP-F-2025/academic-records-service/internal/models"
	"github.com/SAP-F-2025/academic-records-service/internal/repositories"
	"github.com/SAP-F-2025/academic-records-service/internal/validator"
)

type enrollmentService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewEnrollmentService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) EnrollmentService {
	return &enrollmentService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

// ===== CLASSES =====

func (s *enrollmentService) CreateClasse(ctx context.Context, caller *auth.Principal, req *ClasseRequest) (*models.Classe, error) {
	if err := authorize(caller, models.RoleAdmin); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, NewValidationError(err)
	}

	classe := &models.Classe{Name: strings.TrimSpace(req.Name), Grade: req.Grade}
	if err := s.repo.Classe().Create(ctx, classe); err != nil {
		return nil, mapRepositoryError(err, nil, "create class")
	}

	s.logger.Info("Class created", "classe_id", classe.ID, "name", classe.Name)
	return classe, nil
}

func (s *enrollmentService) UpdateClasse(ctx context.Context, caller *auth.Principal, id uint, req *ClasseRequest) (*models.Classe, error) {
	if err := authorize(caller, models.RoleAdmin); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, NewValidationError(err)
	}

	var classe *models.Classe
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		var err error
		if classe, err = tx.Classe().GetByID(ctx, id); err != nil {
			return err
		}
		classe.Name = strings.TrimSpace(req.Name)
		classe.Grade = req.Grade
		return tx.Classe().Update(ctx, classe)
	})
	if err != nil {
		return nil, mapRepositoryError(err, ErrClasseNotFound, "update class")
	}
	return classe, nil
}

// DeleteClasse removes the class together with its exams and their results,
// attendance, materials, timetable and memberships.
func (s *enrollmentService) DeleteClasse(ctx context.Context, caller *auth.Principal, id uint) error {
	if err := authorize(caller, models.RoleAdmin); err != nil {
		return err
	}
	s.logger.Info("Deleting class", "classe_id", id, "deleted_by", caller.UserID)

	var removedExams int
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if _, err := tx.Classe().GetByID(ctx, id); err != nil {
			return err
		}
		var err error
		removedExams, err = unwindClasse(ctx, tx, id)
		return err
	})
	if err != nil {
		return mapRepositoryError(err, ErrClasseNotFound, "delete class")
	}

	s.logger.Info("Class deleted successfully", "classe_id", id, "exams_removed", removedExams)
	publishEvent(ctx, s.publisher, s.logger, events.TopicClasseDeleted, events.ClasseDeletedEvent{ClasseID: id, Exams: removedExams})
	return nil
}

func (s *enrollmentService) GetClasse(ctx context.Context, caller *auth.Principal, id uint) (*ClasseResponse, error) {
	if err := authorize(caller, models.RoleAdmin); err != nil {
		return nil, err
	}

	classe, err := s.repo.Classe().GetByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err, ErrClasseNotFound, "get class")
	}
	students, err := s.repo.Enrollment().StudentsOf(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list class students: %w", err)
	}
	return &ClasseResponse{Classe: classe, Students: students}, nil
}

func (s *enrollmentService) ListClasses(ctx context.Context, caller *auth.Principal) ([]*models.Classe, error) {
	if err := authorize(caller, models.RoleAdmin); err != nil {
		return nil, err
	}

	classes, err := s.repo.Classe().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list classes: %w", err)
	}
	return classes, nil
}

// ===== ASSIGNMENTS =====

// AssignTeacher sets the class teacher. Reassigning the current teacher is a
// conflict; any other teacher replaces the previous one.
func (s *enrollmentService) AssignTeacher(ctx context.Context, caller *auth.Principal, req *AssignTeacherRequest) (*models.Classe, error) {
	if err := authorize(caller, models.RoleAdmin); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, NewValidationError(err)
	}
	s.logger.Info("Assigning teacher", "classe_id", req.ClasseID, "teacher_id", req.TeacherID)

	var classe *models.Classe
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		var err error
		if classe, err = tx.Classe().GetByID(ctx, req.ClasseID); err != nil {
			return mapRepositoryError(err, ErrClasseNotFound, "get class")
		}
		teacher, err := tx.User().GetByID(ctx, req.TeacherID)
		if err != nil {
			return mapRepositoryError(err, ErrUserNotFound, "get teacher")
		}
		if !teacher.HasRole(models.RoleTeacher) {
			return ErrNotATeacher
		}
		if classe.TeacherID != nil && *classe.TeacherID == teacher.ID {
			return ErrTeacherAlreadyAssigned
		}

		if classe.TeacherID != nil {
			s.logger.Info("Replacing class teacher", "classe_id", classe.ID, "previous_teacher_id", *classe.TeacherID)
		}
		classe.TeacherID = &teacher.ID
		classe.Teacher = teacher
		return tx.Classe().Update(ctx, classe)
	})
	if err != nil {
		return nil, mapRepositoryError(err, ErrClasseNotFound, "assign teacher")
	}
	return classe, nil
}

// AssignStudent adds a student to the class set. The membership pre-check and
// the store's own uniqueness constraint both surface as the same conflict.
func (s *enrollmentService) AssignStudent(ctx context.Context, caller *auth.Principal, req *AssignStudentRequest) error {
	if err := authorize(caller, models.RoleAdmin); err != nil {
		return err
	}
	if err := s.validator.Validate(req); err != nil {
		return NewValidationError(err)
	}
	s.logger.Info("Assigning student", "classe_id", req.ClasseID, "student_id", req.StudentID)

	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		return enroll(ctx, tx, req.ClasseID, req.StudentID)
	})
	return mapRepositoryError(err, nil, "assign student")
}

// enroll validates both ends and adds the membership. It runs inside a transaction.
func enroll(ctx context.Context, tx repositories.Repository, classeID, studentID uint) error {
	if _, err := tx.Classe().GetByID(ctx, classeID); err != nil {
		return mapRepositoryError(err, ErrClasseNotFound, "get class")
	}
	student, err := tx.User().GetByID(ctx, studentID)
	if err != nil {
		return mapRepositoryError(err, ErrUserNotFound, "get student")
	}
	if !student.HasRole(models.RoleStudent) {
		return ErrNotAStudent
	}

	member, err := tx.Enrollment().Exists(ctx, classeID, studentID)
	if err != nil {
		return fmt.Errorf("failed to check membership: %w", err)
	}
	if member {
		return ErrStudentAlreadyAssigned
	}

	if err := tx.Enrollment().Add(ctx, classeID, studentID); err != nil {
		return err
	}
	return tx.Profile().SetStudentClasse(ctx, studentID, &classeID)
}

func (s *enrollmentService) RemoveStudent(ctx context.Context, caller *auth.Principal, classeID, studentID uint) error {
	if err := authorize(caller, models.RoleAdmin); err != nil {
		return err
	}
	s.logger.Info("Removing student from class", "classe_id", classeID, "student_id", studentID)

	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.Enrollment().Remove(ctx, classeID, studentID); err != nil {
			return mapRepositoryError(err, ErrStudentNotInClasse, "remove student")
		}

		profile, err := tx.Profile().GetStudentByUserID(ctx, studentID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return nil
			}
			return err
		}
		if profile.ClasseID == nil || *profile.ClasseID != classeID {
			return nil
		}
		// point the profile at another class the student still attends, if any
		remaining, err := tx.Enrollment().ClassesOf(ctx, studentID)
		if err != nil {
			return err
		}
		var next *uint
		if len(remaining) > 0 {
			next = &remaining[0].ID
		}
		return tx.Profile().SetStudentClasse(ctx, studentID, next)
	})
	return mapRepositoryError(err, ErrStudentNotInClasse, "remove student")
}

// ===== REVERSE LOOKUPS =====

func (s *enrollmentService) ClassesForStudent(ctx context.Context, caller *auth.Principal, studentID uint) ([]*models.Classe, error) {
	if err := authorize(caller, models.RoleStudent); err != nil {
		return nil, err
	}
	if caller.Role != models.RoleAdmin && !caller.IsSelf(studentID) {
		return nil, NewPermissionError(caller.UserID, "student", "view classes of")
	}

	classes, err := s.repo.Enrollment().ClassesOf(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list student classes: %w", err)
	}
	return classes, nil
}

func (s *enrollmentService) ClassesForTeacher(ctx context.Context, caller *auth.Principal) ([]*models.Classe, error) {
	if err := authorize(caller, models.RoleTeacher); err != nil {
		return nil, err
	}

	classes, err := s.repo.Classe().ListByTeacher(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teacher classes: %w", err)
	}
	return classes, nil
}

func (s *enrollmentService) StudentsByClasse(ctx context.Context, caller *auth.Principal, classeID uint) ([]*models.User, error) {
	if err := authorize(caller, models.RoleTeacher); err != nil {
		return nil, err
	}
	if _, err := s.repo.Classe().GetByID(ctx, classeID); err != nil {
		return nil, mapRepositoryError(err, ErrClasseNotFound, "get class")
	}

	students, err := s.repo.Enrollment().StudentsOf(ctx, classeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list class students: %w", err)
	}
	return students, nil
}

func (s *enrollmentService) StudentsByTeacher(ctx context.Context, caller *auth.Principal) ([]*models.User, error) {
	if err := authorize(caller, models.RoleTeacher); err != nil {
		return nil, err
	}

	students, err := s.repo.Enrollment().StudentsOfTeacher(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teacher students: %w", err)
	}
	return students, nil
}

// ===== CASCADES =====

// unwindUser removes every reference to user and then the user row.
// It must run inside a transaction.
func unwindUser(ctx context.Context, tx repositories.Repository, user *models.User) error {
	switch user.Role {
	case models.RoleTeacher:
		if err := tx.Classe().ClearTeacher(ctx, user.ID); err != nil {
			return fmt.Errorf("failed to detach teacher from classes: %w", err)
		}
		if err := tx.Profile().DeleteTeacherByUserID(ctx, user.ID); err != nil {
			return fmt.Errorf("failed to delete teacher profile: %w", err)
		}

	case models.RoleStudent:
		if err := tx.Profile().DeleteStudentByUserID(ctx, user.ID); err != nil {
			return fmt.Errorf("failed to delete student profile: %w", err)
		}
		if err := tx.Attendance().DeleteByStudent(ctx, user.ID); err != nil {
			return fmt.Errorf("failed to delete attendance: %w", err)
		}
		if err := tx.Enrollment().RemoveStudentEverywhere(ctx, user.ID); err != nil {
			return fmt.Errorf("failed to remove memberships: %w", err)
		}
		if err := tx.Result().DeleteByStudent(ctx, user.ID); err != nil {
			return fmt.Errorf("failed to delete results: %w", err)
		}
	}

	return tx.User().Delete(ctx, user.ID)
}

// unwindClasse deletes everything a class owns and then the class itself,
// returning the number of exams removed. It must run inside a transaction.
func unwindClasse(ctx context.Context, tx repositories.Repository, classeID uint) (int, error) {
	exams, err := tx.Exam().List(ctx, repositories.ExamFilters{ClasseID: &classeID})
	if err != nil {
		return 0, fmt.Errorf("failed to list class exams: %w", err)
	}
	for _, exam := range exams {
		if err := tx.Result().DeleteByExam(ctx, exam.ID); err != nil {
			return 0, fmt.Errorf("failed to delete results of exam %d: %w", exam.ID, err)
		}
		if err := tx.Exam().Delete(ctx, exam.ID); err != nil {
			return 0, fmt.Errorf("failed to delete exam %d: %w", exam.ID, err)
		}
	}

	steps := []struct {
		what string
		fn   func(context.Context, uint) error
	}{
		{"attendance", tx.Attendance().DeleteByClasse},
		{"materials", tx.Material().DeleteByClasse},
		{"timetable", tx.Timetable().DeleteByClasse},
		{"memberships", tx.Enrollment().RemoveClasse},
		{"student profiles", tx.Profile().ClearStudentClasse},
	}
	for _, step := range steps {
		if err := step.fn(ctx, classeID); err != nil {
			return 0, fmt.Errorf("failed to clear %s: %w", step.what, err)
		}
	}

	return len(exams), tx.Classe().Delete(ctx, classeID)
}
