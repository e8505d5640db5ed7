package memory

import (
	"context"
	"strings"

	"github.com/SAP-F-2025/academic-records-service/internal/models"
	"github.com/SAP-F-2025/academic-records-service/internal/repositories"
)

const (
	constraintUserEmail      = "uk_users_email"
	constraintUserCode       = "uk_users_user_code"
	constraintTeacherProfile = "uk_teacher_profiles_user"
	constraintStudentProfile = "uk_student_profiles_user"
)

type userRepository struct {
	r *memoryRepository
}

func copyUser(u *models.User) *models.User {
	c := *u
	if u.BirthDate != nil {
		d := *u.BirthDate
		c.BirthDate = &d
	}
	return &c
}

func checkUserUnique(t *tables, user *models.User) error {
	for _, existing := range t.users {
		if existing.ID == user.ID {
			continue
		}
		if strings.EqualFold(existing.Email, user.Email) {
			return &repositories.DuplicateError{Constraint: constraintUserEmail}
		}
		if existing.UserCode == user.UserCode {
			return &repositories.DuplicateError{Constraint: constraintUserCode}
		}
	}
	return nil
}

func (repo *userRepository) Create(ctx context.Context, user *models.User) error {
	return repo.r.write(func(t *tables) error {
		if err := checkUserUnique(t, user); err != nil {
			return err
		}
		now := repo.r.store.now()
		user.ID = t.nextID("users")
		user.CreatedAt = now
		user.UpdatedAt = now
		t.users[user.ID] = copyUser(user)
		return nil
	})
}

func (repo *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var found *models.User
	repo.r.read(func(t *tables) {
		if u, ok := t.users[id]; ok {
			found = copyUser(u)
		}
	})
	if found == nil {
		return nil, repositories.ErrNotFound
	}
	return found, nil
}

func (repo *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var found *models.User
	repo.r.read(func(t *tables) {
		for _, u := range t.users {
			if strings.EqualFold(u.Email, email) {
				found = copyUser(u)
				return
			}
		}
	})
	if found == nil {
		return nil, repositories.ErrNotFound
	}
	return found, nil
}

func (repo *userRepository) List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, error) {
	var users []*models.User
	query := strings.ToLower(strings.TrimSpace(filters.Query))
	repo.r.read(func(t *tables) {
		for _, u := range t.users {
			if filters.Role != nil && u.Role != *filters.Role {
				continue
			}
			if query != "" && !strings.Contains(strings.ToLower(u.Name), query) && !strings.Contains(strings.ToLower(u.Email), query) {
				continue
			}
			users = append(users, copyUser(u))
		}
	})
	users = sortByID(users, func(u *models.User) uint { return u.ID })
	return paginate(users, filters.Offset, filters.Limit), nil
}

func (repo *userRepository) Update(ctx context.Context, user *models.User) error {
	return repo.r.write(func(t *tables) error {
		existing, ok := t.users[user.ID]
		if !ok {
			return repositories.ErrNotFound
		}
		if err := checkUserUnique(t, user); err != nil {
			return err
		}
		user.CreatedAt = existing.CreatedAt
		user.UpdatedAt = repo.r.store.now()
		t.users[user.ID] = copyUser(user)
		return nil
	})
}

func (repo *userRepository) Delete(ctx context.Context, id uint) error {
	return repo.r.write(func(t *tables) error {
		if _, ok := t.users[id]; !ok {
			return repositories.ErrNotFound
		}
		if userReferenced(t, id) {
			return repositories.ErrReferenced
		}
		// classes.teacher_id is ON DELETE SET NULL
		for _, c := range t.classes {
			if c.TeacherID != nil && *c.TeacherID == id {
				c.TeacherID = nil
			}
		}
		delete(t.users, id)
		return nil
	})
}

func (repo *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := repo.GetByEmail(ctx, email)
	if repositories.IsNotFoundError(err) {
		return false, nil
	}
	return err == nil, err
}

func (repo *userRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	exists := false
	repo.r.read(func(t *tables) {
		for _, u := range t.users {
			if u.UserCode == code {
				exists = true
				return
			}
		}
	})
	return exists, nil
}

func (repo *userRepository) CountByRole(ctx context.Context, role models.UserRole) (int64, error) {
	var count int64
	repo.r.read(func(t *tables) {
		for _, u := range t.users {
			if u.Role == role {
				count++
			}
		}
	})
	return count, nil
}

type profileRepository struct {
	r *memoryRepository
}

func (repo *profileRepository) CreateTeacher(ctx context.Context, profile *models.TeacherProfile) error {
	return repo.r.write(func(t *tables) error {
		if _, ok := t.users[profile.UserID]; !ok {
			return repositories.ErrNotFound
		}
		if _, ok := t.teacherProfiles[profile.UserID]; ok {
			return &repositories.DuplicateError{Constraint: constraintTeacherProfile}
		}
		profile.ID = t.nextID("teacher_profiles")
		profile.CreatedAt = repo.r.store.now()
		c := *profile
		c.User = nil
		t.teacherProfiles[profile.UserID] = &c
		return nil
	})
}

func (repo *profileRepository) CreateStudent(ctx context.Context, profile *models.StudentProfile) error {
	return repo.r.write(func(t *tables) error {
		if _, ok := t.users[profile.UserID]; !ok {
			return repositories.ErrNotFound
		}
		if _, ok := t.studentProfiles[profile.UserID]; ok {
			return &repositories.DuplicateError{Constraint: constraintStudentProfile}
		}
		profile.ID = t.nextID("student_profiles")
		profile.CreatedAt = repo.r.store.now()
		c := *profile
		c.User = nil
		t.studentProfiles[profile.UserID] = &c
		return nil
	})
}

func (repo *profileRepository) GetTeacherByUserID(ctx context.Context, userID uint) (*models.TeacherProfile, error) {
	var found *models.TeacherProfile
	repo.r.read(func(t *tables) {
		if p, ok := t.teacherProfiles[userID]; ok {
			c := *p
			found = &c
		}
	})
	if found == nil {
		return nil, repositories.ErrNotFound
	}
	return found, nil
}

func (repo *profileRepository) GetStudentByUserID(ctx context.Context, userID uint) (*models.StudentProfile, error) {
	var found *models.StudentProfile
	repo.r.read(func(t *tables) {
		if p, ok := t.studentProfiles[userID]; ok {
			c := *p
			found = &c
		}
	})
	if found == nil {
		return nil, repositories.ErrNotFound
	}
	return found, nil
}

func (repo *profileRepository) DeleteTeacherByUserID(ctx context.Context, userID uint) error {
	return repo.r.write(func(t *tables) error {
		delete(t.teacherProfiles, userID)
		return nil
	})
}

func (repo *profileRepository) DeleteStudentByUserID(ctx context.Context, userID uint) error {
	return repo.r.write(func(t *tables) error {
		delete(t.studentProfiles, userID)
		return nil
	})
}

func (repo *profileRepository) SetStudentClasse(ctx context.Context, userID uint, classeID *uint) error {
	return repo.r.write(func(t *tables) error {
		p, ok := t.studentProfiles[userID]
		if !ok {
			return repositories.ErrNotFound
		}
		if classeID == nil {
			p.ClasseID = nil
			return nil
		}
		id := *classeID
		p.ClasseID = &id
		return nil
	})
}

func (repo *profileRepository) ClearStudentClasse(ctx context.Context, classeID uint) error {
	return repo.r.write(func(t *tables) error {
		for _, p := range t.studentProfiles {
			if p.ClasseID != nil && *p.ClasseID == classeID {
				p.ClasseID = nil
			}
		}
		return nil
	})
}

func paginate[T any](items []*T, offset, limit int) []*T {
	if offset > 0 {
		if offset >= len(items) {
			return []*T{}
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func userReferenced(t *tables, id uint) bool {
	if _, ok := t.teacherProfiles[id]; ok {
		return true
	}
	if _, ok := t.studentProfiles[id]; ok {
		return true
	}
	if len(t.memberOf[id]) > 0 {
		return true
	}
	for _, a := range t.attendance {
		if a.StudentID == id {
			return true
		}
	}
	for _, res := range t.results {
		if res.StudentID == id {
			return true
		}
	}
	return false
}
