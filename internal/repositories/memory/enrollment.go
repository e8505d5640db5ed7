package memory

import (
	"context"

	"github.com/SAP-F-2025/academic-records-service/internal/models"
	"github.com/SAP-F-2025/academic-records-service/internal/repositories"
)

const constraintClasseStudents = "classe_students_pkey"

type classeRepository struct {
	r *memoryRepository
}

// copyClasse returns a detached copy with the teacher relation resolved
func copyClasse(t *tables, c *models.Classe) *models.Classe {
	out := *c
	out.Teacher = nil
	if c.TeacherID != nil {
		id := *c.TeacherID
		out.TeacherID = &id
		if u, ok := t.users[id]; ok {
			out.Teacher = copyUser(u)
		}
	}
	return &out
}

func (repo *classeRepository) Create(ctx context.Context, classe *models.Classe) error {
	return repo.r.write(func(t *tables) error {
		now := repo.r.store.now()
		classe.ID = t.nextID("classes")
		classe.CreatedAt = now
		classe.UpdatedAt = now
		stored := *classe
		stored.Teacher = nil
		t.classes[classe.ID] = &stored
		return nil
	})
}

func (repo *classeRepository) GetByID(ctx context.Context, id uint) (*models.Classe, error) {
	var found *models.Classe
	repo.r.read(func(t *tables) {
		if c, ok := t.classes[id]; ok {
			found = copyClasse(t, c)
		}
	})
	if found == nil {
		return nil, repositories.ErrNotFound
	}
	return found, nil
}

func (repo *classeRepository) List(ctx context.Context) ([]*models.Classe, error) {
	var classes []*models.Classe
	repo.r.read(func(t *tables) {
		for _, c := range t.classes {
			classes = append(classes, copyClasse(t, c))
		}
	})
	return sortByID(classes, func(c *models.Classe) uint { return c.ID }), nil
}

func (repo *classeRepository) ListByTeacher(ctx context.Context, teacherID uint) ([]*models.Classe, error) {
	var classes []*models.Classe
	repo.r.read(func(t *tables) {
		for _, c := range t.classes {
			if c.TeacherID != nil && *c.TeacherID == teacherID {
				classes = append(classes, copyClasse(t, c))
			}
		}
	})
	return sortByID(classes, func(c *models.Classe) uint { return c.ID }), nil
}

func (repo *classeRepository) Update(ctx context.Context, classe *models.Classe) error {
	return repo.r.write(func(t *tables) error {
		existing, ok := t.classes[classe.ID]
		if !ok {
			return repositories.ErrNotFound
		}
		if classe.TeacherID != nil {
			if _, ok := t.users[*classe.TeacherID]; !ok {
				return repositories.ErrNotFound
			}
		}
		stored := *classe
		stored.Teacher = nil
		stored.CreatedAt = existing.CreatedAt
		stored.UpdatedAt = repo.r.store.now()
		t.classes[classe.ID] = &stored
		return nil
	})
}

func (repo *classeRepository) Delete(ctx context.Context, id uint) error {
	return repo.r.write(func(t *tables) error {
		if _, ok := t.classes[id]; !ok {
			return repositories.ErrNotFound
		}
		if classeReferenced(t, id) {
			return repositories.ErrReferenced
		}
		// student_profiles.classe_id is ON DELETE SET NULL
		for _, p := range t.studentProfiles {
			if p.ClasseID != nil && *p.ClasseID == id {
				p.ClasseID = nil
			}
		}
		delete(t.classes, id)
		return nil
	})
}

func (repo *classeRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	repo.r.read(func(t *tables) { count = int64(len(t.classes)) })
	return count, nil
}

func (repo *classeRepository) ClearTeacher(ctx context.Context, teacherID uint) error {
	return repo.r.write(func(t *tables) error {
		for _, c := range t.classes {
			if c.TeacherID != nil && *c.TeacherID == teacherID {
				c.TeacherID = nil
			}
		}
		return nil
	})
}

type enrollmentRepository struct {
	r *memoryRepository
}

func (repo *enrollmentRepository) Add(ctx context.Context, classeID, studentID uint) error {
	return repo.r.write(func(t *tables) error {
		if _, ok := t.classes[classeID]; !ok {
			return repositories.ErrNotFound
		}
		if _, ok := t.users[studentID]; !ok {
			return repositories.ErrNotFound
		}
		if _, ok := t.members[classeID][studentID]; ok {
			return &repositories.DuplicateError{Constraint: constraintClasseStudents}
		}
		if t.members[classeID] == nil {
			t.members[classeID] = make(idSet)
		}
		if t.memberOf[studentID] == nil {
			t.memberOf[studentID] = make(idSet)
		}
		t.members[classeID][studentID] = struct{}{}
		t.memberOf[studentID][classeID] = struct{}{}
		return nil
	})
}

func (repo *enrollmentRepository) Remove(ctx context.Context, classeID, studentID uint) error {
	return repo.r.write(func(t *tables) error {
		if _, ok := t.members[classeID][studentID]; !ok {
			return repositories.ErrNotFound
		}
		unlink(t, classeID, studentID)
		return nil
	})
}

func unlink(t *tables, classeID, studentID uint) {
	delete(t.members[classeID], studentID)
	if len(t.members[classeID]) == 0 {
		delete(t.members, classeID)
	}
	delete(t.memberOf[studentID], classeID)
	if len(t.memberOf[studentID]) == 0 {
		delete(t.memberOf, studentID)
	}
}

func (repo *enrollmentRepository) Exists(ctx context.Context, classeID, studentID uint) (bool, error) {
	exists := false
	repo.r.read(func(t *tables) {
		_, exists = t.members[classeID][studentID]
	})
	return exists, nil
}

func (repo *enrollmentRepository) StudentsOf(ctx context.Context, classeID uint) ([]*models.User, error) {
	var students []*models.User
	repo.r.read(func(t *tables) {
		for _, id := range t.members[classeID].sorted() {
			if u, ok := t.users[id]; ok {
				students = append(students, copyUser(u))
			}
		}
	})
	return students, nil
}

func (repo *enrollmentRepository) StudentsOfTeacher(ctx context.Context, teacherID uint) ([]*models.User, error) {
	var students []*models.User
	repo.r.read(func(t *tables) {
		seen := make(idSet)
		for _, c := range t.classes {
			if c.TeacherID == nil || *c.TeacherID != teacherID {
				continue
			}
			for id := range t.members[c.ID] {
				seen[id] = struct{}{}
			}
		}
		for _, id := range seen.sorted() {
			if u, ok := t.users[id]; ok {
				students = append(students, copyUser(u))
			}
		}
	})
	return students, nil
}

func (repo *enrollmentRepository) ClassesOf(ctx context.Context, studentID uint) ([]*models.Classe, error) {
	var classes []*models.Classe
	repo.r.read(func(t *tables) {
		for _, id := range t.memberOf[studentID].sorted() {
			if c, ok := t.classes[id]; ok {
				classes = append(classes, copyClasse(t, c))
			}
		}
	})
	return classes, nil
}

func (repo *enrollmentRepository) RemoveStudentEverywhere(ctx context.Context, studentID uint) error {
	return repo.r.write(func(t *tables) error {
		for classeID := range t.memberOf[studentID] {
			unlink(t, classeID, studentID)
		}
		return nil
	})
}

func (repo *enrollmentRepository) RemoveClasse(ctx context.Context, classeID uint) error {
	return repo.r.write(func(t *tables) error {
		for studentID := range t.members[classeID] {
			unlink(t, classeID, studentID)
		}
		return nil
	})
}

func classeReferenced(t *tables, id uint) bool {
	if len(t.members[id]) > 0 {
		return true
	}
	for _, e := range t.exams {
		if e.ClasseID == id {
			return true
		}
	}
	for _, a := range t.attendance {
		if a.ClasseID == id {
			return true
		}
	}
	for _, m := range t.materials {
		if m.ClasseID == id {
			return true
		}
	}
	for _, e := range t.timetable {
		if e.ClasseID == id {
			return true
		}
	}
	return false
}
