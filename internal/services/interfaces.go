package services

import (
	"context"
	"io"

	"github.com/SAP-F-2025/academic-records-service/internal/auth"
	"github.com/SAP-F-2025/academic-records-service/internal/models"
	"github.com/SAP-F-2025/academic-records-service/internal/repositories"
	"github.com/SAP-F-2025/academic-records-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use validator request types
type CreateUserRequest = validator.UserCreateRequest
type UpdateUserRequest = validator.UserUpdateRequest
type RegisterRequest = validator.RegisterRequest
type ChangePasswordRequest = validator.ChangePasswordRequest
type LoginRequest = validator.LoginRequest

type ClasseRequest = validator.ClasseRequest
type AssignTeacherRequest = validator.AssignTeacherRequest
type AssignStudentRequest = validator.AssignStudentRequest

type SubjectRequest = validator.SubjectRequest
type ExamRequest = validator.ExamRequest
type AttendanceRequest = validator.AttendanceRequest
type AttendanceRecordRequest = validator.AttendanceRecord
type MaterialRequest = validator.MaterialRequest
type TimetableRequest = validator.TimetableRequest

type ResultRequest = validator.ResultRequest
type UpdateResultRequest = validator.ResultUpdateRequest
type MarksRequest = validator.MarksRequest
type MarkEntry = validator.MarkEntry

type ClasseResponse struct {
	*models.Classe
	Students []*models.User `json:"students"`
}

type SubmitResponse struct {
	Submitted int `json:"submitted"`
}

// ===== SERVICE INTERFACES =====

// IdentityService owns users, their profiles and credentials
type IdentityService interface {
	Create(ctx context.Context, caller *auth.Principal, req *CreateUserRequest) (*models.User, error)
	Register(ctx context.Context, req *RegisterRequest) (*models.User, error)
	GetByID(ctx context.Context, caller *auth.Principal, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, caller *auth.Principal, email string) (*models.User, error)
	List(ctx context.Context, caller *auth.Principal, filters repositories.UserFilters) ([]*models.User, error)
	Update(ctx context.Context, caller *auth.Principal, id uint, req *UpdateUserRequest) (*models.User, error)
	UpdateProfile(ctx context.Context, caller *auth.Principal, req *UpdateUserRequest) (*models.User, error)
	ChangePassword(ctx context.Context, caller *auth.Principal, req *ChangePasswordRequest) error
	Delete(ctx context.Context, caller *auth.Principal, id uint) error

	// ImportUsers reads a roster spreadsheet; classeID optionally enrolls imported students
	ImportUsers(ctx context.Context, caller *auth.Principal, r io.Reader, classeID *uint) (*models.ImportSummary, error)
}

// EnrollmentService owns classes, their teacher and their student set
type EnrollmentService interface {
	CreateClasse(ctx context.Context, caller *auth.Principal, req *ClasseRequest) (*models.Classe, error)
	UpdateClasse(ctx context.Context, caller *auth.Principal, id uint, req *ClasseRequest) (*models.Classe, error)
	DeleteClasse(ctx context.Context, caller *auth.Principal, id uint) error
	GetClasse(ctx context.Context, caller *auth.Principal, id uint) (*ClasseResponse, error)
	ListClasses(ctx context.Context, caller *auth.Principal) ([]*models.Classe, error)

	AssignTeacher(ctx context.Context, caller *auth.Principal, req *AssignTeacherRequest) (*models.Classe, error)
	AssignStudent(ctx context.Context, caller *auth.Principal, req *AssignStudentRequest) error
	RemoveStudent(ctx context.Context, caller *auth.Principal, classeID, studentID uint) error

	ClassesForStudent(ctx context.Context, caller *auth.Principal, studentID uint) ([]*models.Classe, error)
	ClassesForTeacher(ctx context.Context, caller *auth.Principal) ([]*models.Classe, error)
	StudentsByClasse(ctx context.Context, caller *auth.Principal, classeID uint) ([]*models.User, error)
	StudentsByTeacher(ctx context.Context, caller *auth.Principal) ([]*models.User, error)
}

// AcademicService owns exams, attendance, materials, subjects and the timetable
type AcademicService interface {
	CreateExam(ctx context.Context, caller *auth.Principal, req *ExamRequest) (*models.Exam, error)
	UpdateExam(ctx context.Context, caller *auth.Principal, id uint, req *ExamRequest) (*models.Exam, error)
	DeleteExam(ctx context.Context, caller *auth.Principal, id uint) error
	ListExams(ctx context.Context, caller *auth.Principal, filters repositories.ExamFilters) ([]*models.Exam, error)
	ExamsForStudent(ctx context.Context, caller *auth.Principal) ([]*models.Exam, error)

	SubmitAttendance(ctx context.Context, caller *auth.Principal, req *AttendanceRequest) ([]*models.Attendance, error)
	AttendanceForStudent(ctx context.Context, caller *auth.Principal) ([]*models.Attendance, error)

	CreateMaterial(ctx context.Context, caller *auth.Principal, req *MaterialRequest) (*models.LearningMaterial, error)
	DeleteMaterial(ctx context.Context, caller *auth.Principal, id uint) error
	ListMaterials(ctx context.Context, caller *auth.Principal) ([]*models.LearningMaterial, error)
	MaterialsForStudent(ctx context.Context, caller *auth.Principal) ([]*models.LearningMaterial, error)
	GetMaterialForStudent(ctx context.Context, caller *auth.Principal, id uint) (*models.LearningMaterial, error)

	CreateSubject(ctx context.Context, caller *auth.Principal, req *SubjectRequest) (*models.Subject, error)
	UpdateSubject(ctx context.Context, caller *auth.Principal, id uint, req *SubjectRequest) (*models.Subject, error)
	DeleteSubject(ctx context.Context, caller *auth.Principal, id uint) error
	ListSubjects(ctx context.Context, caller *auth.Principal) ([]*models.Subject, error)

	CreateTimetableEntry(ctx context.Context, caller *auth.Principal, req *TimetableRequest) (*models.TimetableEntry, error)
	UpdateTimetableEntry(ctx context.Context, caller *auth.Principal, id uint, req *TimetableRequest) (*models.TimetableEntry, error)
	DeleteTimetableEntry(ctx context.Context, caller *auth.Principal, id uint) error
	ListTimetable(ctx context.Context, caller *auth.Principal, classeID *uint) ([]*models.TimetableEntry, error)
}

// ResultService owns exam results and their DRAFT to SUBMITTED lifecycle
type ResultService interface {
	Save(ctx context.Context, caller *auth.Principal, req *ResultRequest) (*models.ExamResult, error)
	SaveMarks(ctx context.Context, caller *auth.Principal, req *MarksRequest) ([]*models.ExamResult, error)
	Update(ctx context.Context, caller *auth.Principal, id uint, req *UpdateResultRequest) (*models.ExamResult, error)
	SubmitBatch(ctx context.Context, caller *auth.Principal, ids []uint) (int, error)

	ListForStudent(ctx context.Context, caller *auth.Principal) ([]*models.ExamResult, error)
	Filter(ctx context.Context, caller *auth.Principal, classeID, studentID *uint) ([]*models.ExamResult, error)
	ListForTeacher(ctx context.Context, caller *auth.Principal) ([]*models.ExamResult, error)
}

// AuthService verifies credentials and issues and validates tokens
type AuthService interface {
	Login(ctx context.Context, req *LoginRequest) (*auth.TokenPair, error)
	Register(ctx context.Context, req *RegisterRequest) (*models.User, error)
	Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error)
	Logout(ctx context.Context, tokens ...string) error
	Authenticate(ctx context.Context, accessToken string) (*auth.Principal, error)
	Me(ctx context.Context, caller *auth.Principal) (*models.User, error)
}

// ReportService returns read-only counts across the stores
type ReportService interface {
	Summary(ctx context.Context, caller *auth.Principal) (*models.ReportSummary, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Identity() IdentityService
	Enrollment() EnrollmentService
	Academic() AcademicService
	Result() ResultService
	Auth() AuthService
	Report() ReportService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
