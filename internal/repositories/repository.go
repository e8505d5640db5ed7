package repositories

import "context"

// Repository aggregates every repository of the records store
type Repository interface {
	// Identity domain
	User() UserRepository
	Profile() ProfileRepository

	// Enrollment domain
	Classe() ClasseRepository
	Enrollment() EnrollmentRepository

	// Academic events
	Subject() SubjectRepository
	Exam() ExamRepository
	Attendance() AttendanceRepository
	Material() MaterialRepository
	Timetable() TimetableRepository

	// Result ledger
	Result() ResultRepository

	// Transaction support. fn receives a Repository bound to the transaction;
	// returning an error rolls back every change made through it.
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	// Initialize repositories with database connections
	Initialize() error

	// Get repository instance
	GetRepository() Repository

	// Health check for all repositories
	HealthCheck(ctx context.Context) error

	// Graceful shutdown
	Shutdown(ctx context.Context) error
}
