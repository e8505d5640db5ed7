package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SAP-F-2025/academic-records-service/internal/models"
	"github.com/SAP-F-2025/academic-records-service/internal/repositories"
)

type resultPostgreSQL struct {
	db *gorm.DB
}

func NewResultPostgreSQL(db *gorm.DB) repositories.ResultRepository {
	return &resultPostgreSQL{db: db}
}

func (r *resultPostgreSQL) Create(ctx context.Context, result *models.ExamResult) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(result).Error; err != nil {
		return handleDBError(err, "create exam result")
	}
	return nil
}

func (r *resultPostgreSQL) CreateBatch(ctx context.Context, results []*models.ExamResult) error {
	if len(results) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&results).Error; err != nil {
		return handleDBError(err, "create exam results")
	}
	return nil
}

func (r *resultPostgreSQL) GetByID(ctx context.Context, id uint) (*models.ExamResult, error) {
	var result models.ExamResult
	if err := r.db.WithContext(ctx).First(&result, id).Error; err != nil {
		return nil, handleDBError(err, "get exam result by id")
	}
	return &result, nil
}

func (r *resultPostgreSQL) List(ctx context.Context, filters repositories.ResultFilters) ([]*models.ExamResult, error) {
	var results []*models.ExamResult

	query := r.db.WithContext(ctx).Model(&models.ExamResult{})
	if filters.ExamID != nil {
		query = query.Where("exam_results.exam_id = ?", *filters.ExamID)
	}
	if filters.StudentID != nil {
		query = query.Where("exam_results.student_id = ?", *filters.StudentID)
	}
	if filters.Status != nil {
		query = query.Where("exam_results.status = ?", *filters.Status)
	}
	if filters.StudentIDs != nil {
		query = query.Where("exam_results.student_id IN ?", filters.StudentIDs)
	}
	if filters.ClasseID != nil {
		query = query.
			Joins("INNER JOIN exams e ON e.id = exam_results.exam_id").
			Where("e.classe_id = ?", *filters.ClasseID)
	}

	if err := query.Order("exam_results.id ASC").Find(&results).Error; err != nil {
		return nil, handleDBError(err, "list exam results")
	}
	return results, nil
}

// UpdateDraft is a conditional write so a submit committed after the caller's
// read cannot be reverted to DRAFT
func (r *resultPostgreSQL) UpdateDraft(ctx context.Context, result *models.ExamResult) error {
	res := r.db.WithContext(ctx).
		Model(&models.ExamResult{}).
		Where("id = ? AND status = ?", result.ID, models.ResultDraft).
		Updates(map[string]interface{}{
			"marks":      result.Marks,
			"grade":      result.Grade,
			"updated_at": gorm.Expr("NOW()"),
		})
	if res.Error != nil {
		return handleDBError(res.Error, "update draft result")
	}
	if res.RowsAffected == 0 {
		var statuses []string
		err := r.db.WithContext(ctx).Model(&models.ExamResult{}).Where("id = ?", result.ID).Pluck("status", &statuses).Error
		if err != nil {
			return handleDBError(err, "get exam result status")
		}
		if len(statuses) == 0 {
			return fmt.Errorf("update draft result failed: %w", repositories.ErrNotFound)
		}
		return repositories.ErrNotDraft
	}
	return nil
}

// Submit locks the matching rows for the rest of the transaction and flips
// only their status
func (r *resultPostgreSQL) Submit(ctx context.Context, ids []uint) ([]uint, error) {
	found := []uint{}
	if len(ids) == 0 {
		return found, nil
	}

	err := r.db.WithContext(ctx).
		Model(&models.ExamResult{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id ASC").
		Pluck("id", &found).Error
	if err != nil {
		return nil, handleDBError(err, "lock exam results")
	}
	if len(found) == 0 {
		return found, nil
	}

	err = r.db.WithContext(ctx).
		Model(&models.ExamResult{}).
		Where("id IN ?", found).
		Updates(map[string]interface{}{
			"status":     models.ResultSubmitted,
			"updated_at": gorm.Expr("NOW()"),
		}).Error
	if err != nil {
		return nil, handleDBError(err, "submit exam results")
	}
	return found, nil
}

func (r *resultPostgreSQL) CountByExam(ctx context.Context, examID uint, status *models.ResultStatus) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.ExamResult{}).Where("exam_id = ?", examID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, handleDBError(err, "count exam results")
	}
	return count, nil
}

func (r *resultPostgreSQL) DeleteByExam(ctx context.Context, examID uint) error {
	if err := r.db.WithContext(ctx).Where("exam_id = ?", examID).Delete(&models.ExamResult{}).Error; err != nil {
		return handleDBError(err, "delete exam results")
	}
	return nil
}

func (r *resultPostgreSQL) DeleteByStudent(ctx context.Context, studentID uint) error {
	if err := r.db.WithContext(ctx).Where("student_id = ?", studentID).Delete(&models.ExamResult{}).Error; err != nil {
		return handleDBError(err, "delete student results")
	}
	return nil
}
