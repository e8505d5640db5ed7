package postgres

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/academic-records-service/internal/models"
	"github.com/SAP-F-2025/academic-records-service/internal/repositories"
)

type userPostgreSQL struct {
	db *gorm.DB
}

func NewUserPostgreSQL(db *gorm.DB) repositories.UserRepository {
	return &userPostgreSQL{db: db}
}

func (r *userPostgreSQL) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return handleDBError(err, "create user")
	}
	return nil
}

func (r *userPostgreSQL) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, handleDBError(err, "get user by id")
	}
	return &user, nil
}

func (r *userPostgreSQL) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(email)).
		First(&user).Error; err != nil {
		return nil, handleDBError(err, "get user by email")
	}
	return &user, nil
}

func (r *userPostgreSQL) List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, error) {
	var users []*models.User

	query := r.db.WithContext(ctx).Model(&models.User{})
	if filters.Role != nil {
		query = query.Where("role = ?", *filters.Role)
	}
	if q := strings.TrimSpace(filters.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}
	query = applyPagination(query.Order("id ASC"), filters.Limit, filters.Offset)

	if err := query.Find(&users).Error; err != nil {
		return nil, handleDBError(err, "list users")
	}
	return users, nil
}

func (r *userPostgreSQL) Update(ctx context.Context, user *models.User) error {
	result := r.db.WithContext(ctx).
		Model(user).
		Select("name", "email", "birth_date", "birth_country", "birth_city", "address", "gender", "phone_number", "password", "updated_at").
		Updates(user)
	return requireAffected(result, "update user")
}

func (r *userPostgreSQL) Delete(ctx context.Context, id uint) error {
	return requireAffected(r.db.WithContext(ctx).Delete(&models.User{}, id), "delete user")
}

func (r *userPostgreSQL) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("LOWER(email) = ?", strings.ToLower(email)).
		Count(&count).Error; err != nil {
		return false, handleDBError(err, "check email exists")
	}
	return count > 0, nil
}

func (r *userPostgreSQL) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("user_code = ?", code).
		Count(&count).Error; err != nil {
		return false, handleDBError(err, "check user code exists")
	}
	return count > 0, nil
}

func (r *userPostgreSQL) CountByRole(ctx context.Context, role models.UserRole) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("role = ?", role).
		Count(&count).Error; err != nil {
		return 0, handleDBError(err, "count users by role")
	}
	return count, nil
}

type profilePostgreSQL struct {
	db *gorm.DB
}

func NewProfilePostgreSQL(db *gorm.DB) repositories.ProfileRepository {
	return &profilePostgreSQL{db: db}
}

func (r *profilePostgreSQL) CreateTeacher(ctx context.Context, profile *models.TeacherProfile) error {
	if err := r.db.WithContext(ctx).Omit("User").Create(profile).Error; err != nil {
		return handleDBError(err, "create teacher profile")
	}
	return nil
}

func (r *profilePostgreSQL) CreateStudent(ctx context.Context, profile *models.StudentProfile) error {
	if err := r.db.WithContext(ctx).Omit("User", "Classe").Create(profile).Error; err != nil {
		return handleDBError(err, "create student profile")
	}
	return nil
}

func (r *profilePostgreSQL) GetTeacherByUserID(ctx context.Context, userID uint) (*models.TeacherProfile, error) {
	var profile models.TeacherProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, handleDBError(err, "get teacher profile")
	}
	return &profile, nil
}

func (r *profilePostgreSQL) GetStudentByUserID(ctx context.Context, userID uint) (*models.StudentProfile, error) {
	var profile models.StudentProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, handleDBError(err, "get student profile")
	}
	return &profile, nil
}

func (r *profilePostgreSQL) DeleteTeacherByUserID(ctx context.Context, userID uint) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.TeacherProfile{}).Error; err != nil {
		return handleDBError(err, "delete teacher profile")
	}
	return nil
}

func (r *profilePostgreSQL) DeleteStudentByUserID(ctx context.Context, userID uint) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.StudentProfile{}).Error; err != nil {
		return handleDBError(err, "delete student profile")
	}
	return nil
}

func (r *profilePostgreSQL) SetStudentClasse(ctx context.Context, userID uint, classeID *uint) error {
	result := r.db.WithContext(ctx).Model(&models.StudentProfile{}).
		Where("user_id = ?", userID).
		Update("classe_id", classeID)
	return requireAffected(result, "set student class")
}

func (r *profilePostgreSQL) ClearStudentClasse(ctx context.Context, classeID uint) error {
	if err := r.db.WithContext(ctx).Model(&models.StudentProfile{}).
		Where("classe_id = ?", classeID).
		Update("classe_id", nil).Error; err != nil {
		return handleDBError(err, "clear student class")
	}
	return nil
}
