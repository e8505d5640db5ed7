package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/SAP-F-2025/academic-records-service/internal/models"
	"github.com/SAP-F-2025/academic-records-service/internal/repositories"
)

// idSet is a set of record ids
type idSet map[uint]struct{}

func (s idSet) sorted() []uint {
	ids := make([]uint, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// tables is the full content of the store. Transactions work on a copy and
// swap it in on commit.
type tables struct {
	seq map[string]uint

	users           map[uint]*models.User
	teacherProfiles map[uint]*models.TeacherProfile // keyed by user id
	studentProfiles map[uint]*models.StudentProfile // keyed by user id
	classes         map[uint]*models.Classe
	members         map[uint]idSet // classe id -> student ids
	memberOf        map[uint]idSet // student id -> classe ids
	subjects        map[uint]*models.Subject
	exams           map[uint]*models.Exam
	attendance      map[uint]*models.Attendance
	materials       map[uint]*models.LearningMaterial
	timetable       map[uint]*models.TimetableEntry
	results         map[uint]*models.ExamResult
}

func newTables() *tables {
	return &tables{
		seq:             make(map[string]uint),
		users:           make(map[uint]*models.User),
		teacherProfiles: make(map[uint]*models.TeacherProfile),
		studentProfiles: make(map[uint]*models.StudentProfile),
		classes:         make(map[uint]*models.Classe),
		members:         make(map[uint]idSet),
		memberOf:        make(map[uint]idSet),
		subjects:        make(map[uint]*models.Subject),
		exams:           make(map[uint]*models.Exam),
		attendance:      make(map[uint]*models.Attendance),
		materials:       make(map[uint]*models.LearningMaterial),
		timetable:       make(map[uint]*models.TimetableEntry),
		results:         make(map[uint]*models.ExamResult),
	}
}

func (t *tables) nextID(table string) uint {
	t.seq[table]++
	return t.seq[table]
}

func cloneMap[T any](src map[uint]*T) map[uint]*T {
	dst := make(map[uint]*T, len(src))
	for k, v := range src {
		c := *v
		dst[k] = &c
	}
	return dst
}

func cloneIndex(src map[uint]idSet) map[uint]idSet {
	dst := make(map[uint]idSet, len(src))
	for k, set := range src {
		c := make(idSet, len(set))
		for id := range set {
			c[id] = struct{}{}
		}
		dst[k] = c
	}
	return dst
}

func (t *tables) clone() *tables {
	seq := make(map[string]uint, len(t.seq))
	for k, v := range t.seq {
		seq[k] = v
	}
	return &tables{
		seq:             seq,
		users:           cloneMap(t.users),
		teacherProfiles: cloneMap(t.teacherProfiles),
		studentProfiles: cloneMap(t.studentProfiles),
		classes:         cloneMap(t.classes),
		members:         cloneIndex(t.members),
		memberOf:        cloneIndex(t.memberOf),
		subjects:        cloneMap(t.subjects),
		exams:           cloneMap(t.exams),
		attendance:      cloneMap(t.attendance),
		materials:       cloneMap(t.materials),
		timetable:       cloneMap(t.timetable),
		results:         cloneMap(t.results),
	}
}

// Store is an in-process records store guarded by a single RWMutex
type Store struct {
	mu   sync.RWMutex
	data *tables
	now  func() time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{data: newTables(), now: time.Now}
}

// memoryRepository implements repositories.Repository on a Store. Inside a
// transaction tx holds the working copy and the store lock is already held.
type memoryRepository struct {
	store *Store
	tx    *tables
}

// NewRepository creates a repository backed by the given store
func NewRepository(store *Store) repositories.Repository {
	return &memoryRepository{store: store}
}

func (r *memoryRepository) read(fn func(t *tables)) {
	if r.tx != nil {
		fn(r.tx)
		return
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	fn(r.store.data)
}

func (r *memoryRepository) write(fn func(t *tables) error) error {
	if r.tx != nil {
		return fn(r.tx)
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	// Single statements are atomic too: apply to a copy, keep it on success.
	working := r.store.data.clone()
	if err := fn(working); err != nil {
		return err
	}
	r.store.data = working
	return nil
}

func (r *memoryRepository) User() repositories.UserRepository       { return &userRepository{r} }
func (r *memoryRepository) Profile() repositories.ProfileRepository { return &profileRepository{r} }
func (r *memoryRepository) Classe() repositories.ClasseRepository   { return &classeRepository{r} }
func (r *memoryRepository) Enrollment() repositories.EnrollmentRepository {
	return &enrollmentRepository{r}
}
func (r *memoryRepository) Subject() repositories.SubjectRepository { return &subjectRepository{r} }
func (r *memoryRepository) Exam() repositories.ExamRepository       { return &examRepository{r} }
func (r *memoryRepository) Attendance() repositories.AttendanceRepository {
	return &attendanceRepository{r}
}
func (r *memoryRepository) Material() repositories.MaterialRepository {
	return &materialRepository{r}
}
func (r *memoryRepository) Timetable() repositories.TimetableRepository {
	return &timetableRepository{r}
}
func (r *memoryRepository) Result() repositories.ResultRepository { return &resultRepository{r} }

// WithTransaction runs fn against a private copy of the store and publishes
// the copy only when fn succeeds. Transactions are serialized.
func (r *memoryRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	if r.tx != nil {
		return fn(r)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	txRepo := &memoryRepository{store: r.store, tx: r.store.data.clone()}
	if err := fn(txRepo); err != nil {
		return err
	}
	r.store.data = txRepo.tx
	return nil
}

func (r *memoryRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (r *memoryRepository) Close() error {
	return nil
}

// RepositoryManager implements repositories.RepositoryManager for the memory store
type RepositoryManager struct {
	repo repositories.Repository
}

// NewRepositoryManager creates a manager over a fresh store
func NewRepositoryManager() repositories.RepositoryManager {
	return &RepositoryManager{}
}

func (rm *RepositoryManager) Initialize() error {
	rm.repo = NewRepository(NewStore())
	return nil
}

func (rm *RepositoryManager) GetRepository() repositories.Repository {
	return rm.repo
}

func (rm *RepositoryManager) HealthCheck(ctx context.Context) error {
	if rm.repo == nil {
		return fmt.Errorf("repository not initialized")
	}
	return rm.repo.Ping(ctx)
}

func (rm *RepositoryManager) Shutdown(ctx context.Context) error {
	return nil
}

func sortByID[T any](items []*T, id func(*T) uint) []*T {
	sort.Slice(items, func(i, j int) bool { return id(items[i]) < id(items[j]) })
	return items
}
