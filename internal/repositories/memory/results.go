package memory

import (
	"context"

	"github.com/SAP-F-2025/academic-records-service/internal/models"
	"github.com/SAP-F-2025/academic-records-service/internal/repositories"
)

type resultRepository struct {
	r *memoryRepository
}

func copyResult(res *models.ExamResult) *models.ExamResult {
	c := *res
	if res.Grade != nil {
		g := *res.Grade
		c.Grade = &g
	}
	c.Exam = nil
	c.Student = nil
	return &c
}

func (repo *resultRepository) insert(t *tables, result *models.ExamResult) error {
	if _, ok := t.exams[result.ExamID]; !ok {
		return repositories.ErrNotFound
	}
	if _, ok := t.users[result.StudentID]; !ok {
		return repositories.ErrNotFound
	}
	now := repo.r.store.now()
	result.ID = t.nextID("exam_results")
	result.CreatedAt = now
	result.UpdatedAt = now
	t.results[result.ID] = copyResult(result)
	return nil
}

func (repo *resultRepository) Create(ctx context.Context, result *models.ExamResult) error {
	return repo.r.write(func(t *tables) error {
		return repo.insert(t, result)
	})
}

func (repo *resultRepository) CreateBatch(ctx context.Context, results []*models.ExamResult) error {
	return repo.r.write(func(t *tables) error {
		for _, res := range results {
			if err := repo.insert(t, res); err != nil {
				return err
			}
		}
		return nil
	})
}

func (repo *resultRepository) GetByID(ctx context.Context, id uint) (*models.ExamResult, error) {
	var found *models.ExamResult
	repo.r.read(func(t *tables) {
		if res, ok := t.results[id]; ok {
			found = copyResult(res)
		}
	})
	if found == nil {
		return nil, repositories.ErrNotFound
	}
	return found, nil
}

func (repo *resultRepository) List(ctx context.Context, filters repositories.ResultFilters) ([]*models.ExamResult, error) {
	var students idSet
	if filters.StudentIDs != nil {
		students = make(idSet, len(filters.StudentIDs))
		for _, id := range filters.StudentIDs {
			students[id] = struct{}{}
		}
	}

	var results []*models.ExamResult
	repo.r.read(func(t *tables) {
		for _, res := range t.results {
			if filters.ExamID != nil && res.ExamID != *filters.ExamID {
				continue
			}
			if filters.StudentID != nil && res.StudentID != *filters.StudentID {
				continue
			}
			if filters.Status != nil && res.Status != *filters.Status {
				continue
			}
			if students != nil {
				if _, ok := students[res.StudentID]; !ok {
					continue
				}
			}
			if filters.ClasseID != nil {
				exam, ok := t.exams[res.ExamID]
				if !ok || exam.ClasseID != *filters.ClasseID {
					continue
				}
			}
			results = append(results, copyResult(res))
		}
	})
	return sortByID(results, func(r *models.ExamResult) uint { return r.ID }), nil
}

func (repo *resultRepository) UpdateDraft(ctx context.Context, result *models.ExamResult) error {
	return repo.r.write(func(t *tables) error {
		existing, ok := t.results[result.ID]
		if !ok {
			return repositories.ErrNotFound
		}
		if existing.Status != models.ResultDraft {
			return repositories.ErrNotDraft
		}
		c := copyResult(existing)
		c.Marks = result.Marks
		c.Grade = nil
		if result.Grade != nil {
			g := *result.Grade
			c.Grade = &g
		}
		c.UpdatedAt = repo.r.store.now()
		t.results[result.ID] = c
		result.UpdatedAt = c.UpdatedAt
		return nil
	})
}

func (repo *resultRepository) Submit(ctx context.Context, ids []uint) ([]uint, error) {
	found := idSet{}
	err := repo.r.write(func(t *tables) error {
		now := repo.r.store.now()
		for _, id := range ids {
			res, ok := t.results[id]
			if !ok {
				continue
			}
			c := copyResult(res)
			c.Status = models.ResultSubmitted
			c.UpdatedAt = now
			t.results[id] = c
			found[id] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found.sorted(), nil
}

func (repo *resultRepository) CountByExam(ctx context.Context, examID uint, status *models.ResultStatus) (int64, error) {
	var count int64
	repo.r.read(func(t *tables) {
		for _, res := range t.results {
			if res.ExamID != examID {
				continue
			}
			if status != nil && res.Status != *status {
				continue
			}
			count++
		}
	})
	return count, nil
}

func (repo *resultRepository) DeleteByExam(ctx context.Context, examID uint) error {
	return repo.r.write(func(t *tables) error {
		for id, res := range t.results {
			if res.ExamID == examID {
				delete(t.results, id)
			}
		}
		return nil
	})
}

func (repo *resultRepository) DeleteByStudent(ctx context.Context, studentID uint) error {
	return repo.r.write(func(t *tables) error {
		for id, res := range t.results {
			if res.StudentID == studentID {
				delete(t.results, id)
			}
		}
		return nil
	})
}
