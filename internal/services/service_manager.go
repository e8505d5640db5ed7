package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/SAP-F-2025/academic-records-service/internal/auth"
	"github.com/SAP-F-2025/academic-records-service/internal/events"
	"github.com/SAP-F-2025/academic-records-service/internal/models"
	"github.com/SAP-F-2025/academic-records-service/internal/repositories"
	"github.com/SAP-F-2025/academic-records-service/internal/validator"
)

// ServiceManagerConfig holds the collaborators shared by the services
type ServiceManagerConfig struct {
	Tokens      *auth.TokenManager
	Revocations auth.RevocationStore
	Publisher   events.EventPublisher

	// Seed account created on Initialize when no user has this email
	SeedAdmin *SeedAdmin
}

type SeedAdmin struct {
	Name     string
	Email    string
	Password string
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	// Dependencies
	repoManager repositories.RepositoryManager
	repo        repositories.Repository
	logger      *slog.Logger
	validator   *validator.Validator
	config      ServiceManagerConfig

	// Service instances
	identityService   IdentityService
	enrollmentService EnrollmentService
	academicService   AcademicService
	resultService     ResultService
	authService       AuthService
	reportService     ReportService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(repoManager repositories.RepositoryManager, logger *slog.Logger, validator *validator.Validator, config ServiceManagerConfig) ServiceManager {
	return &serviceManager{
		repoManager: repoManager,
		logger:      logger,
		validator:   validator,
		config:      config,
	}
}

// Initialize sets up all services and seeds the admin account
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	if sm.config.Tokens == nil {
		return fmt.Errorf("token manager is required")
	}
	if sm.config.Revocations == nil {
		sm.config.Revocations = auth.NewMemoryRevocationStore()
	}

	if err := sm.repoManager.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize repositories: %w", err)
	}
	sm.repo = sm.repoManager.GetRepository()

	sm.initializeServices()

	if sm.config.SeedAdmin != nil {
		if err := sm.seedAdmin(ctx, sm.config.SeedAdmin); err != nil {
			return fmt.Errorf("failed to seed admin: %w", err)
		}
	}

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

func (sm *serviceManager) initializeServices() {
	identity := NewIdentityService(sm.repo, sm.logger, sm.validator, sm.config.Publisher)
	sm.identityService = identity
	sm.logger.Info("Identity service initialized")

	sm.enrollmentService = NewEnrollmentService(sm.repo, sm.logger, sm.validator, sm.config.Publisher)
	sm.logger.Info("Enrollment service initialized")

	sm.academicService = NewAcademicService(sm.repo, sm.logger, sm.validator)
	sm.logger.Info("Academic service initialized")

	sm.resultService = NewResultService(sm.repo, sm.logger, sm.validator, sm.config.Publisher)
	sm.logger.Info("Result service initialized")

	sm.authService = NewAuthService(sm.repo, identity, sm.config.Tokens, sm.config.Revocations, sm.logger, sm.validator)
	sm.logger.Info("Auth service initialized")

	sm.reportService = NewReportService(sm.repo, sm.logger)
	sm.logger.Info("Report service initialized")
}

// seedAdmin creates the bootstrap administrator unless the email is taken
func (sm *serviceManager) seedAdmin(ctx context.Context, seed *SeedAdmin) error {
	if seed.Email == "" || seed.Password == "" {
		return nil
	}

	exists, err := sm.repo.User().ExistsByEmail(ctx, normalizeEmail(seed.Email))
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	name := seed.Name
	if name == "" {
		name = "Administrator"
	}
	system := &auth.Principal{Role: models.RoleAdmin}
	user, err := sm.identityService.Create(ctx, system, &CreateUserRequest{
		Name:     name,
		Email:    seed.Email,
		Password: seed.Password,
		Role:     string(models.RoleAdmin),
	})
	if err != nil {
		return err
	}

	sm.logger.Info("Seeded admin account", "user_id", user.ID, "email", user.Email)
	return nil
}

// Service getters
func (sm *serviceManager) Identity() IdentityService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.identityService
}

func (sm *serviceManager) Enrollment() EnrollmentService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.enrollmentService
}

func (sm *serviceManager) Academic() AcademicService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.academicService
}

func (sm *serviceManager) Result() ResultService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.resultService
}

func (sm *serviceManager) Auth() AuthService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.authService
}

func (sm *serviceManager) Report() ReportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.reportService
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}

	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.repoManager.HealthCheck(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if sm.config.Publisher != nil {
		if err := sm.config.Publisher.Close(); err != nil {
			sm.logger.Error("Failed to close event publisher", "error", err)
		}
	}

	if err := sm.repoManager.Shutdown(ctx); err != nil {
		sm.logger.Error("Failed to shutdown repository manager", "error", err)
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down completed")

	return nil
}
