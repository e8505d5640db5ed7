package repositories

import (
	"context"

	"github.com/SAP-F-2025/academic-records-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type UserFilters struct {
	Role   *models.UserRole `json:"role"`
	Query  string           `json:"query"` // name or email fragment
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

type ExamFilters struct {
	ClasseID  *uint  `json:"classe_id"`
	TeacherID *uint  `json:"teacher_id"` // exams of classes taught by this teacher
	ClasseIDs []uint `json:"classe_ids"`
}

type ResultFilters struct {
	ExamID     *uint                `json:"exam_id"`
	StudentID  *uint                `json:"student_id"`
	ClasseID   *uint                `json:"classe_id"` // via the exam's class
	Status     *models.ResultStatus `json:"status"`
	StudentIDs []uint               `json:"student_ids"`
}

type MaterialFilters struct {
	ClasseIDs []uint `json:"classe_ids"`
}

// ===== IDENTITY =====

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, filters UserFilters) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error

	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	CountByRole(ctx context.Context, role models.UserRole) (int64, error)
}

type ProfileRepository interface {
	CreateTeacher(ctx context.Context, profile *models.TeacherProfile) error
	CreateStudent(ctx context.Context, profile *models.StudentProfile) error
	GetTeacherByUserID(ctx context.Context, userID uint) (*models.TeacherProfile, error)
	GetStudentByUserID(ctx context.Context, userID uint) (*models.StudentProfile, error)
	DeleteTeacherByUserID(ctx context.Context, userID uint) error
	DeleteStudentByUserID(ctx context.Context, userID uint) error

	// SetStudentClasse records the class a student belongs to (nil clears it)
	SetStudentClasse(ctx context.Context, userID uint, classeID *uint) error
	// ClearStudentClasse detaches every student profile pointing at the class
	ClearStudentClasse(ctx context.Context, classeID uint) error
}

// ===== ENROLLMENT =====

type ClasseRepository interface {
	Create(ctx context.Context, classe *models.Classe) error
	GetByID(ctx context.Context, id uint) (*models.Classe, error)
	List(ctx context.Context) ([]*models.Classe, error)
	ListByTeacher(ctx context.Context, teacherID uint) ([]*models.Classe, error)
	Update(ctx context.Context, classe *models.Classe) error
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)

	// ClearTeacher nulls the teacher reference of every class taught by teacherID
	ClearTeacher(ctx context.Context, teacherID uint) error
}

// EnrollmentRepository manages the classe_students membership set
type EnrollmentRepository interface {
	// Add returns a DuplicateError on classe_students_pkey when already a member
	Add(ctx context.Context, classeID, studentID uint) error
	Remove(ctx context.Context, classeID, studentID uint) error
	Exists(ctx context.Context, classeID, studentID uint) (bool, error)

	StudentsOf(ctx context.Context, classeID uint) ([]*models.User, error)
	StudentsOfTeacher(ctx context.Context, teacherID uint) ([]*models.User, error)
	ClassesOf(ctx context.Context, studentID uint) ([]*models.Classe, error)

	RemoveStudentEverywhere(ctx context.Context, studentID uint) error
	RemoveClasse(ctx context.Context, classeID uint) error
}

// ===== ACADEMIC EVENTS =====

type SubjectRepository interface {
	Create(ctx context.Context, subject *models.Subject) error
	GetByID(ctx context.Context, id uint) (*models.Subject, error)
	List(ctx context.Context) ([]*models.Subject, error)
	Update(ctx context.Context, subject *models.Subject) error
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
}

type ExamRepository interface {
	Create(ctx context.Context, exam *models.Exam) error
	GetByID(ctx context.Context, id uint) (*models.Exam, error)
	List(ctx context.Context, filters ExamFilters) ([]*models.Exam, error)
	Update(ctx context.Context, exam *models.Exam) error
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
	CountBySubject(ctx context.Context, subjectID uint) (int64, error)
}

type AttendanceRepository interface {
	CreateBatch(ctx context.Context, records []*models.Attendance) error
	ListByStudent(ctx context.Context, studentID uint) ([]*models.Attendance, error)
	ListByClasse(ctx context.Context, classeID uint) ([]*models.Attendance, error)
	DeleteByStudent(ctx context.Context, studentID uint) error
	DeleteByClasse(ctx context.Context, classeID uint) error
}

type MaterialRepository interface {
	Create(ctx context.Context, material *models.LearningMaterial) error
	GetByID(ctx context.Context, id uint) (*models.LearningMaterial, error)
	List(ctx context.Context, filters MaterialFilters) ([]*models.LearningMaterial, error)
	Delete(ctx context.Context, id uint) error
	DeleteByClasse(ctx context.Context, classeID uint) error
}

type TimetableRepository interface {
	Create(ctx context.Context, entry *models.TimetableEntry) error
	GetByID(ctx context.Context, id uint) (*models.TimetableEntry, error)
	List(ctx context.Context, classeID *uint) ([]*models.TimetableEntry, error)
	Update(ctx context.Context, entry *models.TimetableEntry) error
	Delete(ctx context.Context, id uint) error
	DeleteByClasse(ctx context.Context, classeID uint) error
	CountBySubject(ctx context.Context, subjectID uint) (int64, error)
}

// ===== RESULT LEDGER =====

type ResultRepository interface {
	Create(ctx context.Context, result *models.ExamResult) error
	CreateBatch(ctx context.Context, results []*models.ExamResult) error
	GetByID(ctx context.Context, id uint) (*models.ExamResult, error)
	List(ctx context.Context, filters ResultFilters) ([]*models.ExamResult, error)
	// UpdateDraft writes marks and grade only while the stored row is still a
	// draft, failing with ErrNotDraft otherwise. The status is never written.
	UpdateDraft(ctx context.Context, result *models.ExamResult) error
	// Submit marks the existing results among ids SUBMITTED without touching
	// marks or grade, and returns the ids it found
	Submit(ctx context.Context, ids []uint) ([]uint, error)

	CountByExam(ctx context.Context, examID uint, status *models.ResultStatus) (int64, error)
	DeleteByExam(ctx context.Context, examID uint) error
	DeleteByStudent(ctx context.Context, studentID uint) error
}
