package services

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/SAP-F-2025/academic-records-service/internal/auth"
	"github.com/SAP-F-2025/academic-records-service/internal/events"
	"github.com/SAP-F-2025/academic-records-service/internal/models"
	"github.com/SAP-F-2025/academic-records-service/internal/repositories"
	"github.com/SAP-F-2025/academic-records-service/internal/validator"
)

const (
	userCodeSpace       = 1_000_000_000_000
	maxUserCodeAttempts = 10
)

type identityService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewIdentityService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) IdentityService {
	return &identityService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

// ===== CREATION =====

func (s *identityService) Create(ctx context.Context, caller *auth.Principal, req *CreateUserRequest) (*models.User, error) {
	if err := authorize(caller, models.RoleAdmin); err != nil {
		return nil, err
	}
	s.logger.Info("Creating user", "email", req.Email, "role", req.Role, "created_by", caller.UserID)

	if err := s.validator.Validate(req); err != nil {
		return nil, NewValidationError(err)
	}

	user := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        normalizeEmail(req.Email),
		Role:         models.UserRole(strings.ToUpper(req.Role)),
		BirthCountry: req.BirthCountry,
		BirthCity:    req.BirthCity,
		Address:      req.Address,
		Gender:       req.Gender,
		PhoneNumber:  req.PhoneNumber,
	}
	if req.BirthDate != nil {
		date, err := validator.ParseCalendarDate(*req.BirthDate)
		if err != nil {
			return nil, NewValidationError(err)
		}
		user.BirthDate = &date
	}

	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		return s.createUser(ctx, tx, user, req.Password)
	})
	if err != nil {
		return nil, mapRepositoryError(err, nil, "create user")
	}

	s.logger.Info("User created successfully", "user_id", user.ID, "user_code", user.UserCode)
	s.publish(ctx, events.TopicUserCreated, events.UserCreatedEvent{UserID: user.ID, Role: string(user.Role)})
	return user, nil
}

func (s *identityService) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	s.logger.Info("Registering student", "email", req.Email)

	if err := s.validator.Validate(req); err != nil {
		return nil, NewValidationError(err)
	}

	user := &models.User{
		Name:  strings.TrimSpace(req.Name),
		Email: normalizeEmail(req.Email),
		Role:  models.RoleStudent,
	}
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		return s.createUser(ctx, tx, user, req.Password)
	})
	if err != nil {
		return nil, mapRepositoryError(err, nil, "register user")
	}

	s.publish(ctx, events.TopicUserCreated, events.UserCreatedEvent{UserID: user.ID, Role: string(user.Role)})
	return user, nil
}

// createUser persists user with a fresh code, the hashed password and the
// profile matching its role. It must run inside a transaction.
func (s *identityService) createUser(ctx context.Context, tx repositories.Repository, user *models.User, password string) error {
	exists, err := tx.User().ExistsByEmail(ctx, user.Email)
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return ErrEmailTaken
	}

	if user.UserCode, err = allocateUserCode(ctx, tx); err != nil {
		return err
	}
	if user.Password, err = auth.HashPassword(password); err != nil {
		return err
	}

	if err := tx.User().Create(ctx, user); err != nil {
		return err
	}

	switch user.Role {
	case models.RoleTeacher:
		return tx.Profile().CreateTeacher(ctx, &models.TeacherProfile{UserID: user.ID})
	case models.RoleStudent:
		return tx.Profile().CreateStudent(ctx, &models.StudentProfile{UserID: user.ID})
	}
	return nil
}

// newUserCode derives a 12-digit code from a random UUID
func newUserCode() string {
	id := uuid.New()
	return fmt.Sprintf("%012d", binary.BigEndian.Uint64(id[:8])%userCodeSpace)
}

func allocateUserCode(ctx context.Context, tx repositories.Repository) (string, error) {
	for i := 0; i < maxUserCodeAttempts; i++ {
		code := newUserCode()
		exists, err := tx.User().ExistsByCode(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check user code: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("failed to allocate a unique user code after %d attempts", maxUserCodeAttempts)
}

// ===== LOOKUPS =====

func (s *identityService) GetByID(ctx context.Context, caller *auth.Principal, id uint) (*models.User, error) {
	if err := authorize(caller, models.RoleAdmin, models.RoleTeacher, models.RoleStudent); err != nil {
		return nil, err
	}
	if caller.Role != models.RoleAdmin && !caller.IsSelf(id) {
		return nil, NewPermissionError(caller.UserID, "user", "view")
	}

	user, err := s.repo.User().GetByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err, ErrUserNotFound, "get user")
	}
	return user, nil
}

func (s *identityService) GetByEmail(ctx context.Context, caller *auth.Principal, email string) (*models.User, error) {
	if err := authorize(caller, models.RoleAdmin); err != nil {
		return nil, err
	}

	user, err := s.repo.User().GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, mapRepositoryError(err, ErrUserNotFound, "get user by email")
	}
	return user, nil
}

func (s *identityService) List(ctx context.Context, caller *auth.Principal, filters repositories.UserFilters) ([]*models.User, error) {
	if err := authorize(caller, models.RoleAdmin); err != nil {
		return nil, err
	}
	if filters.Role != nil && !filters.Role.IsValid() {
		return nil, newServiceError(KindValidation, "Unknown role.", nil)
	}

	users, err := s.repo.User().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// ===== UPDATES =====

func (s *identityService) Update(ctx context.Context, caller *auth.Principal, id uint, req *UpdateUserRequest) (*models.User, error) {
	if err := authorize(caller, models.RoleAdmin); err != nil {
		return nil, err
	}
	s.logger.Info("Updating user", "user_id", id, "updated_by", caller.UserID)
	return s.update(ctx, id, req)
}

func (s *identityService) UpdateProfile(ctx context.Context, caller *auth.Principal, req *UpdateUserRequest) (*models.User, error) {
	if err := authorize(caller, models.RoleAdmin, models.RoleTeacher, models.RoleStudent); err != nil {
		return nil, err
	}
	s.logger.Info("Updating own profile", "user_id", caller.UserID)
	return s.update(ctx, caller.UserID, req)
}

func (s *identityService) update(ctx context.Context, id uint, req *UpdateUserRequest) (*models.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, NewValidationError(err)
	}

	var user *models.User
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		var err error
		if user, err = tx.User().GetByID(ctx, id); err != nil {
			return err
		}

		if req.Email != nil {
			email := normalizeEmail(*req.Email)
			if email != user.Email {
				exists, err := tx.User().ExistsByEmail(ctx, email)
				if err != nil {
					return fmt.Errorf("failed to check email: %w", err)
				}
				if exists {
					return ErrEmailTaken
				}
				user.Email = email
			}
		}
		if err := applyProfilePatch(user, req); err != nil {
			return err
		}

		return tx.User().Update(ctx, user)
	})
	if err != nil {
		return nil, mapRepositoryError(err, ErrUserNotFound, "update user")
	}
	return user, nil
}

func applyProfilePatch(user *models.User, req *UpdateUserRequest) error {
	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.BirthDate != nil {
		date, err := validator.ParseCalendarDate(*req.BirthDate)
		if err != nil {
			return NewValidationError(err)
		}
		user.BirthDate = &date
	}
	if req.BirthCountry != nil {
		user.BirthCountry = *req.BirthCountry
	}
	if req.BirthCity != nil {
		user.BirthCity = *req.BirthCity
	}
	if req.Address != nil {
		user.Address = *req.Address
	}
	if req.Gender != nil {
		user.Gender = *req.Gender
	}
	if req.PhoneNumber != nil {
		user.PhoneNumber = *req.PhoneNumber
	}
	return nil
}

func (s *identityService) ChangePassword(ctx context.Context, caller *auth.Principal, req *ChangePasswordRequest) error {
	if err := authorize(caller, models.RoleAdmin, models.RoleTeacher, models.RoleStudent); err != nil {
		return err
	}
	if err := s.validator.Validate(req); err != nil {
		return NewValidationError(err)
	}

	user, err := s.repo.User().GetByID(ctx, caller.UserID)
	if err != nil {
		return mapRepositoryError(err, ErrUserNotFound, "get user")
	}
	if !auth.CheckPassword(user.Password, req.OldPassword) {
		s.logger.Warn("Password change rejected", "user_id", caller.UserID)
		return ErrIncorrectPassword
	}

	if user.Password, err = auth.HashPassword(req.NewPassword); err != nil {
		return err
	}
	if err := s.repo.User().Update(ctx, user); err != nil {
		return mapRepositoryError(err, ErrUserNotFound, "update password")
	}

	s.logger.Info("Password changed", "user_id", caller.UserID)
	return nil
}

// ===== DELETION =====

func (s *identityService) Delete(ctx context.Context, caller *auth.Principal, id uint) error {
	if err := authorize(caller, models.RoleAdmin); err != nil {
		return err
	}
	s.logger.Info("Deleting user", "user_id", id, "deleted_by", caller.UserID)

	var user *models.User
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		var err error
		if user, err = tx.User().GetByID(ctx, id); err != nil {
			return err
		}
		return unwindUser(ctx, tx, user)
	})
	if err != nil {
		return mapRepositoryError(err, ErrUserNotFound, "delete user")
	}

	s.logger.Info("User deleted successfully", "user_id", id, "role", user.Role)
	s.publish(ctx, events.TopicUserDeleted, events.UserDeletedEvent{UserID: user.ID, Role: string(user.Role)})
	return nil
}

func (s *identityService) publish(ctx context.Context, topic string, data interface{}) {
	publishEvent(ctx, s.publisher, s.logger, topic, data)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// publishEvent sends a post-commit event; failures are logged, never returned
func publishEvent(ctx context.Context, publisher events.EventPublisher, logger *slog.Logger, topic string, data interface{}) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, topic, data); err != nil {
		logger.Error("Failed to publish event", "topic", topic, "error", err)
	}
}
