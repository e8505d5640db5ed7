package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SAP-F-2025/academic-records-service/internal/models"
	"github.com/SAP-F-2025/academic-records-service/internal/repositories"
)

type classePostgreSQL struct {
	db *gorm.DB
}

func NewClassePostgreSQL(db *gorm.DB) repositories.ClasseRepository {
	return &classePostgreSQL{db: db}
}

func (r *classePostgreSQL) Create(ctx context.Context, classe *models.Classe) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(classe).Error; err != nil {
		return handleDBError(err, "create class")
	}
	return nil
}

func (r *classePostgreSQL) GetByID(ctx context.Context, id uint) (*models.Classe, error) {
	var classe models.Classe
	if err := r.db.WithContext(ctx).Preload("Teacher").First(&classe, id).Error; err != nil {
		return nil, handleDBError(err, "get class by id")
	}
	return &classe, nil
}

func (r *classePostgreSQL) List(ctx context.Context) ([]*models.Classe, error) {
	var classes []*models.Classe
	if err := r.db.WithContext(ctx).Preload("Teacher").Order("id ASC").Find(&classes).Error; err != nil {
		return nil, handleDBError(err, "list classes")
	}
	return classes, nil
}

func (r *classePostgreSQL) ListByTeacher(ctx context.Context, teacherID uint) ([]*models.Classe, error) {
	var classes []*models.Classe
	if err := r.db.WithContext(ctx).
		Preload("Teacher").
		Where("teacher_id = ?", teacherID).
		Order("id ASC").
		Find(&classes).Error; err != nil {
		return nil, handleDBError(err, "list classes by teacher")
	}
	return classes, nil
}

func (r *classePostgreSQL) Update(ctx context.Context, classe *models.Classe) error {
	result := r.db.WithContext(ctx).
		Model(classe).
		Select("name", "grade", "teacher_id", "updated_at").
		Omit(clause.Associations).
		Updates(classe)
	return requireAffected(result, "update class")
}

func (r *classePostgreSQL) Delete(ctx context.Context, id uint) error {
	return requireAffected(r.db.WithContext(ctx).Delete(&models.Classe{}, id), "delete class")
}

func (r *classePostgreSQL) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Classe{}).Count(&count).Error; err != nil {
		return 0, handleDBError(err, "count classes")
	}
	return count, nil
}

func (r *classePostgreSQL) ClearTeacher(ctx context.Context, teacherID uint) error {
	if err := r.db.WithContext(ctx).Model(&models.Classe{}).
		Where("teacher_id = ?", teacherID).
		Update("teacher_id", nil).Error; err != nil {
		return handleDBError(err, "clear class teacher")
	}
	return nil
}

type enrollmentPostgreSQL struct {
	db *gorm.DB
}

func NewEnrollmentPostgreSQL(db *gorm.DB) repositories.EnrollmentRepository {
	return &enrollmentPostgreSQL{db: db}
}

func (r *enrollmentPostgreSQL) Add(ctx context.Context, classeID, studentID uint) error {
	member := &models.ClasseStudent{ClasseID: classeID, StudentID: studentID}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(member).Error; err != nil {
		return handleDBError(err, "enroll student")
	}
	return nil
}

func (r *enrollmentPostgreSQL) Remove(ctx context.Context, classeID, studentID uint) error {
	result := r.db.WithContext(ctx).
		Where("classe_id = ? AND student_id = ?", classeID, studentID).
		Delete(&models.ClasseStudent{})
	return requireAffected(result, "unenroll student")
}

func (r *enrollmentPostgreSQL) Exists(ctx context.Context, classeID, studentID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ClasseStudent{}).
		Where("classe_id = ? AND student_id = ?", classeID, studentID).
		Count(&count).Error; err != nil {
		return false, handleDBError(err, "check enrollment")
	}
	return count > 0, nil
}

func (r *enrollmentPostgreSQL) StudentsOf(ctx context.Context, classeID uint) ([]*models.User, error) {
	var students []*models.User
	if err := r.db.WithContext(ctx).
		Table("users u").
		Select("u.*").
		Joins("INNER JOIN classe_students cs ON cs.student_id = u.id").
		Where("cs.classe_id = ?", classeID).
		Order("u.id ASC").
		Find(&students).Error; err != nil {
		return nil, handleDBError(err, "list class students")
	}
	return students, nil
}

func (r *enrollmentPostgreSQL) StudentsOfTeacher(ctx context.Context, teacherID uint) ([]*models.User, error) {
	var students []*models.User
	if err := r.db.WithContext(ctx).
		Table("users u").
		Select("DISTINCT u.*").
		Joins("INNER JOIN classe_students cs ON cs.student_id = u.id").
		Joins("INNER JOIN classes c ON c.id = cs.classe_id").
		Where("c.teacher_id = ?", teacherID).
		Order("u.id ASC").
		Find(&students).Error; err != nil {
		return nil, handleDBError(err, "list teacher students")
	}
	return students, nil
}

func (r *enrollmentPostgreSQL) ClassesOf(ctx context.Context, studentID uint) ([]*models.Classe, error) {
	var classes []*models.Classe
	if err := r.db.WithContext(ctx).
		Preload("Teacher").
		Joins("INNER JOIN classe_students cs ON cs.classe_id = classes.id").
		Where("cs.student_id = ?", studentID).
		Order("classes.id ASC").
		Find(&classes).Error; err != nil {
		return nil, handleDBError(err, "list student classes")
	}
	return classes, nil
}

func (r *enrollmentPostgreSQL) RemoveStudentEverywhere(ctx context.Context, studentID uint) error {
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Delete(&models.ClasseStudent{}).Error; err != nil {
		return handleDBError(err, "remove student memberships")
	}
	return nil
}

func (r *enrollmentPostgreSQL) RemoveClasse(ctx context.Context, classeID uint) error {
	if err := r.db.WithContext(ctx).
		Where("classe_id = ?", classeID).
		Delete(&models.ClasseStudent{}).Error; err != nil {
		return handleDBError(err, "remove class memberships")
	}
	return nil
}
