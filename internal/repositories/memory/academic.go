package memory

import (
	"context"
	"strings"

	"github.com/SAP-F-2025/academic-records-service/internal/models"
	"github.com/SAP-F-2025/academic-records-service/internal/repositories"
)

const constraintSubjectName = "uk_subjects_name"

// ===== SUBJECTS =====

type subjectRepository struct {
	r *memoryRepository
}

func (repo *subjectRepository) checkUnique(t *tables, subject *models.Subject) error {
	for _, s := range t.subjects {
		if s.ID != subject.ID && strings.EqualFold(s.Name, subject.Name) {
			return &repositories.DuplicateError{Constraint: constraintSubjectName}
		}
	}
	return nil
}

func (repo *subjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	return repo.r.write(func(t *tables) error {
		if err := repo.checkUnique(t, subject); err != nil {
			return err
		}
		subject.ID = t.nextID("subjects")
		c := *subject
		t.subjects[subject.ID] = &c
		return nil
	})
}

func (repo *subjectRepository) GetByID(ctx context.Context, id uint) (*models.Subject, error) {
	var found *models.Subject
	repo.r.read(func(t *tables) {
		if s, ok := t.subjects[id]; ok {
			c := *s
			found = &c
		}
	})
	if found == nil {
		return nil, repositories.ErrNotFound
	}
	return found, nil
}

func (repo *subjectRepository) List(ctx context.Context) ([]*models.Subject, error) {
	var subjects []*models.Subject
	repo.r.read(func(t *tables) {
		for _, s := range t.subjects {
			c := *s
			subjects = append(subjects, &c)
		}
	})
	return sortByID(subjects, func(s *models.Subject) uint { return s.ID }), nil
}

func (repo *subjectRepository) Update(ctx context.Context, subject *models.Subject) error {
	return repo.r.write(func(t *tables) error {
		if _, ok := t.subjects[subject.ID]; !ok {
			return repositories.ErrNotFound
		}
		if err := repo.checkUnique(t, subject); err != nil {
			return err
		}
		c := *subject
		t.subjects[subject.ID] = &c
		return nil
	})
}

func (repo *subjectRepository) Delete(ctx context.Context, id uint) error {
	return repo.r.write(func(t *tables) error {
		if _, ok := t.subjects[id]; !ok {
			return repositories.ErrNotFound
		}
		for _, e := range t.exams {
			if e.SubjectID == id {
				return repositories.ErrReferenced
			}
		}
		for _, e := range t.timetable {
			if e.SubjectID == id {
				return repositories.ErrReferenced
			}
		}
		delete(t.subjects, id)
		return nil
	})
}

func (repo *subjectRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	repo.r.read(func(t *tables) { count = int64(len(t.subjects)) })
	return count, nil
}

// ===== EXAMS =====

type examRepository struct {
	r *memoryRepository
}

func (repo *examRepository) Create(ctx context.Context, exam *models.Exam) error {
	return repo.r.write(func(t *tables) error {
		if _, ok := t.classes[exam.ClasseID]; !ok {
			return repositories.ErrNotFound
		}
		if _, ok := t.subjects[exam.SubjectID]; !ok {
			return repositories.ErrNotFound
		}
		now := repo.r.store.now()
		exam.ID = t.nextID("exams")
		exam.CreatedAt = now
		exam.UpdatedAt = now
		c := *exam
		t.exams[exam.ID] = &c
		return nil
	})
}

func (repo *examRepository) GetByID(ctx context.Context, id uint) (*models.Exam, error) {
	var found *models.Exam
	repo.r.read(func(t *tables) {
		if e, ok := t.exams[id]; ok {
			c := *e
			found = &c
		}
	})
	if found == nil {
		return nil, repositories.ErrNotFound
	}
	return found, nil
}

func (repo *examRepository) List(ctx context.Context, filters repositories.ExamFilters) ([]*models.Exam, error) {
	var exams []*models.Exam
	var allowed idSet
	if filters.ClasseIDs != nil {
		allowed = make(idSet, len(filters.ClasseIDs))
		for _, id := range filters.ClasseIDs {
			allowed[id] = struct{}{}
		}
	}
	repo.r.read(func(t *tables) {
		for _, e := range t.exams {
			if filters.ClasseID != nil && e.ClasseID != *filters.ClasseID {
				continue
			}
			if allowed != nil {
				if _, ok := allowed[e.ClasseID]; !ok {
					continue
				}
			}
			if filters.TeacherID != nil {
				c, ok := t.classes[e.ClasseID]
				if !ok || c.TeacherID == nil || *c.TeacherID != *filters.TeacherID {
					continue
				}
			}
			c := *e
			exams = append(exams, &c)
		}
	})
	return sortByID(exams, func(e *models.Exam) uint { return e.ID }), nil
}

func (repo *examRepository) Update(ctx context.Context, exam *models.Exam) error {
	return repo.r.write(func(t *tables) error {
		existing, ok := t.exams[exam.ID]
		if !ok {
			return repositories.ErrNotFound
		}
		if _, ok := t.classes[exam.ClasseID]; !ok {
			return repositories.ErrNotFound
		}
		if _, ok := t.subjects[exam.SubjectID]; !ok {
			return repositories.ErrNotFound
		}
		c := *exam
		c.CreatedAt = existing.CreatedAt
		c.UpdatedAt = repo.r.store.now()
		t.exams[exam.ID] = &c
		return nil
	})
}

func (repo *examRepository) Delete(ctx context.Context, id uint) error {
	return repo.r.write(func(t *tables) error {
		if _, ok := t.exams[id]; !ok {
			return repositories.ErrNotFound
		}
		for _, res := range t.results {
			if res.ExamID == id {
				return repositories.ErrReferenced
			}
		}
		delete(t.exams, id)
		return nil
	})
}

func (repo *examRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	repo.r.read(func(t *tables) { count = int64(len(t.exams)) })
	return count, nil
}

func (repo *examRepository) CountBySubject(ctx context.Context, subjectID uint) (int64, error) {
	var count int64
	repo.r.read(func(t *tables) {
		for _, e := range t.exams {
			if e.SubjectID == subjectID {
				count++
			}
		}
	})
	return count, nil
}

// ===== ATTENDANCE =====

type attendanceRepository struct {
	r *memoryRepository
}

func (repo *attendanceRepository) CreateBatch(ctx context.Context, records []*models.Attendance) error {
	return repo.r.write(func(t *tables) error {
		for _, rec := range records {
			if _, ok := t.classes[rec.ClasseID]; !ok {
				return repositories.ErrNotFound
			}
			if _, ok := t.users[rec.StudentID]; !ok {
				return repositories.ErrNotFound
			}
			rec.ID = t.nextID("attendances")
			c := *rec
			t.attendance[rec.ID] = &c
		}
		return nil
	})
}

func (repo *attendanceRepository) list(match func(*models.Attendance) bool) []*models.Attendance {
	var records []*models.Attendance
	repo.r.read(func(t *tables) {
		for _, a := range t.attendance {
			if match(a) {
				c := *a
				records = append(records, &c)
			}
		}
	})
	return sortByID(records, func(a *models.Attendance) uint { return a.ID })
}

func (repo *attendanceRepository) ListByStudent(ctx context.Context, studentID uint) ([]*models.Attendance, error) {
	return repo.list(func(a *models.Attendance) bool { return a.StudentID == studentID }), nil
}

func (repo *attendanceRepository) ListByClasse(ctx context.Context, classeID uint) ([]*models.Attendance, error) {
	return repo.list(func(a *models.Attendance) bool { return a.ClasseID == classeID }), nil
}

func (repo *attendanceRepository) DeleteByStudent(ctx context.Context, studentID uint) error {
	return repo.r.write(func(t *tables) error {
		for id, a := range t.attendance {
			if a.StudentID == studentID {
				delete(t.attendance, id)
			}
		}
		return nil
	})
}

func (repo *attendanceRepository) DeleteByClasse(ctx context.Context, classeID uint) error {
	return repo.r.write(func(t *tables) error {
		for id, a := range t.attendance {
			if a.ClasseID == classeID {
				delete(t.attendance, id)
			}
		}
		return nil
	})
}

// ===== LEARNING MATERIALS =====

type materialRepository struct {
	r *memoryRepository
}

func (repo *materialRepository) Create(ctx context.Context, material *models.LearningMaterial) error {
	return repo.r.write(func(t *tables) error {
		if _, ok := t.classes[material.ClasseID]; !ok {
			return repositories.ErrNotFound
		}
		material.ID = t.nextID("learning_materials")
		material.Timestamp = repo.r.store.now()
		c := *material
		t.materials[material.ID] = &c
		return nil
	})
}

func (repo *materialRepository) GetByID(ctx context.Context, id uint) (*models.LearningMaterial, error) {
	var found *models.LearningMaterial
	repo.r.read(func(t *tables) {
		if m, ok := t.materials[id]; ok {
			c := *m
			found = &c
		}
	})
	if found == nil {
		return nil, repositories.ErrNotFound
	}
	return found, nil
}

func (repo *materialRepository) List(ctx context.Context, filters repositories.MaterialFilters) ([]*models.LearningMaterial, error) {
	var allowed idSet
	if filters.ClasseIDs != nil {
		allowed = make(idSet, len(filters.ClasseIDs))
		for _, id := range filters.ClasseIDs {
			allowed[id] = struct{}{}
		}
	}

	var materials []*models.LearningMaterial
	repo.r.read(func(t *tables) {
		for _, m := range t.materials {
			if allowed != nil {
				if _, ok := allowed[m.ClasseID]; !ok {
					continue
				}
			}
			c := *m
			materials = append(materials, &c)
		}
	})
	return sortByID(materials, func(m *models.LearningMaterial) uint { return m.ID }), nil
}

func (repo *materialRepository) Delete(ctx context.Context, id uint) error {
	return repo.r.write(func(t *tables) error {
		if _, ok := t.materials[id]; !ok {
			return repositories.ErrNotFound
		}
		delete(t.materials, id)
		return nil
	})
}

func (repo *materialRepository) DeleteByClasse(ctx context.Context, classeID uint) error {
	return repo.r.write(func(t *tables) error {
		for id, m := range t.materials {
			if m.ClasseID == classeID {
				delete(t.materials, id)
			}
		}
		return nil
	})
}

// ===== TIMETABLE =====

type timetableRepository struct {
	r *memoryRepository
}

func (repo *timetableRepository) Create(ctx context.Context, entry *models.TimetableEntry) error {
	return repo.r.write(func(t *tables) error {
		if _, ok := t.classes[entry.ClasseID]; !ok {
			return repositories.ErrNotFound
		}
		if _, ok := t.subjects[entry.SubjectID]; !ok {
			return repositories.ErrNotFound
		}
		entry.ID = t.nextID("timetables")
		c := *entry
		t.timetable[entry.ID] = &c
		return nil
	})
}

func (repo *timetableRepository) GetByID(ctx context.Context, id uint) (*models.TimetableEntry, error) {
	var found *models.TimetableEntry
	repo.r.read(func(t *tables) {
		if e, ok := t.timetable[id]; ok {
			c := *e
			found = &c
		}
	})
	if found == nil {
		return nil, repositories.ErrNotFound
	}
	return found, nil
}

func (repo *timetableRepository) List(ctx context.Context, classeID *uint) ([]*models.TimetableEntry, error) {
	var entries []*models.TimetableEntry
	repo.r.read(func(t *tables) {
		for _, e := range t.timetable {
			if classeID != nil && e.ClasseID != *classeID {
				continue
			}
			c := *e
			entries = append(entries, &c)
		}
	})
	return sortByID(entries, func(e *models.TimetableEntry) uint { return e.ID }), nil
}

func (repo *timetableRepository) Update(ctx context.Context, entry *models.TimetableEntry) error {
	return repo.r.write(func(t *tables) error {
		if _, ok := t.timetable[entry.ID]; !ok {
			return repositories.ErrNotFound
		}
		if _, ok := t.classes[entry.ClasseID]; !ok {
			return repositories.ErrNotFound
		}
		if _, ok := t.subjects[entry.SubjectID]; !ok {
			return repositories.ErrNotFound
		}
		c := *entry
		t.timetable[entry.ID] = &c
		return nil
	})
}

func (repo *timetableRepository) Delete(ctx context.Context, id uint) error {
	return repo.r.write(func(t *tables) error {
		if _, ok := t.timetable[id]; !ok {
			return repositories.ErrNotFound
		}
		delete(t.timetable, id)
		return nil
	})
}

func (repo *timetableRepository) DeleteByClasse(ctx context.Context, classeID uint) error {
	return repo.r.write(func(t *tables) error {
		for id, e := range t.timetable {
			if e.ClasseID == classeID {
				delete(t.timetable, id)
			}
		}
		return nil
	})
}

func (repo *timetableRepository) CountBySubject(ctx context.Context, subjectID uint) (int64, error) {
	var count int64
	repo.r.read(func(t *tables) {
		for _, e := range t.timetable {
			if e.SubjectID == subjectID {
				count++
			}
		}
	})
	return count, nil
}
