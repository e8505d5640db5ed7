package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/academic-records-service/internal/repositories"
)

// PostgreSQLRepository implements the main Repository interface
type PostgreSQLRepository struct {
	db *gorm.DB

	// Repository instances
	user       repositories.UserRepository
	profile    repositories.ProfileRepository
	classe     repositories.ClasseRepository
	enrollment repositories.EnrollmentRepository
	subject    repositories.SubjectRepository
	exam       repositories.ExamRepository
	attendance repositories.AttendanceRepository
	material   repositories.MaterialRepository
	timetable  repositories.TimetableRepository
	result     repositories.ResultRepository
}

// RepositoryConfig holds configuration for repository initialization
type RepositoryConfig struct {
	DB *gorm.DB
}

// NewPostgreSQLRepository creates a repository with all sub-repositories bound to db
func NewPostgreSQLRepository(db *gorm.DB) repositories.Repository {
	return &PostgreSQLRepository{
		db:         db,
		user:       NewUserPostgreSQL(db),
		profile:    NewProfilePostgreSQL(db),
		classe:     NewClassePostgreSQL(db),
		enrollment: NewEnrollmentPostgreSQL(db),
		subject:    NewSubjectPostgreSQL(db),
		exam:       NewExamPostgreSQL(db),
		attendance: NewAttendancePostgreSQL(db),
		material:   NewMaterialPostgreSQL(db),
		timetable:  NewTimetablePostgreSQL(db),
		result:     NewResultPostgreSQL(db),
	}
}

func (r *PostgreSQLRepository) User() repositories.UserRepository             { return r.user }
func (r *PostgreSQLRepository) Profile() repositories.ProfileRepository       { return r.profile }
func (r *PostgreSQLRepository) Classe() repositories.ClasseRepository         { return r.classe }
func (r *PostgreSQLRepository) Enrollment() repositories.EnrollmentRepository { return r.enrollment }
func (r *PostgreSQLRepository) Subject() repositories.SubjectRepository       { return r.subject }
func (r *PostgreSQLRepository) Exam() repositories.ExamRepository             { return r.exam }
func (r *PostgreSQLRepository) Attendance() repositories.AttendanceRepository { return r.attendance }
func (r *PostgreSQLRepository) Material() repositories.MaterialRepository     { return r.material }
func (r *PostgreSQLRepository) Timetable() repositories.TimetableRepository   { return r.timetable }
func (r *PostgreSQLRepository) Result() repositories.ResultRepository         { return r.result }

// WithTransaction executes a function within a database transaction
func (r *PostgreSQLRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Sub-repositories rebuilt on the transaction handle
		return fn(NewPostgreSQLRepository(tx))
	})
}

// Ping checks the health of the database connection
func (r *PostgreSQLRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}

// Close closes the database connection
func (r *PostgreSQLRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}

// RepositoryManager implements the RepositoryManager interface
type RepositoryManager struct {
	config RepositoryConfig
	repo   repositories.Repository
}

// NewRepositoryManager creates a new repository manager
func NewRepositoryManager(config RepositoryConfig) repositories.RepositoryManager {
	return &RepositoryManager{
		config: config,
	}
}

// Initialize verifies the connection and builds the repository
func (rm *RepositoryManager) Initialize() error {
	if rm.config.DB == nil {
		return fmt.Errorf("database connection is required")
	}

	sqlDB, err := rm.config.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}

	rm.repo = NewPostgreSQLRepository(rm.config.DB)

	return nil
}

// GetRepository returns the repository instance
func (rm *RepositoryManager) GetRepository() repositories.Repository {
	return rm.repo
}

// HealthCheck checks the health of all repository connections
func (rm *RepositoryManager) HealthCheck(ctx context.Context) error {
	if rm.repo == nil {
		return fmt.Errorf("repository not initialized")
	}

	return rm.repo.Ping(ctx)
}

// Shutdown gracefully shuts down all repository connections
func (rm *RepositoryManager) Shutdown(ctx context.Context) error {
	if rm.repo == nil {
		return nil
	}

	return rm.repo.Close()
}
