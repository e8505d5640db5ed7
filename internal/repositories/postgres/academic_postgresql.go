package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SAP-F-2025/academic-records-service/internal/models"
	"github.com/SAP-F-2025/academic-records-service/internal/repositories"
)

// ===== SUBJECTS =====

type subjectPostgreSQL struct {
	db *gorm.DB
}

func NewSubjectPostgreSQL(db *gorm.DB) repositories.SubjectRepository {
	return &subjectPostgreSQL{db: db}
}

func (r *subjectPostgreSQL) Create(ctx context.Context, subject *models.Subject) error {
	if err := r.db.WithContext(ctx).Create(subject).Error; err != nil {
		return handleDBError(err, "create subject")
	}
	return nil
}

func (r *subjectPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Subject, error) {
	var subject models.Subject
	if err := r.db.WithContext(ctx).First(&subject, id).Error; err != nil {
		return nil, handleDBError(err, "get subject by id")
	}
	return &subject, nil
}

func (r *subjectPostgreSQL) List(ctx context.Context) ([]*models.Subject, error) {
	var subjects []*models.Subject
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&subjects).Error; err != nil {
		return nil, handleDBError(err, "list subjects")
	}
	return subjects, nil
}

func (r *subjectPostgreSQL) Update(ctx context.Context, subject *models.Subject) error {
	return requireAffected(r.db.WithContext(ctx).Model(subject).Select("name").Updates(subject), "update subject")
}

func (r *subjectPostgreSQL) Delete(ctx context.Context, id uint) error {
	return requireAffected(r.db.WithContext(ctx).Delete(&models.Subject{}, id), "delete subject")
}

func (r *subjectPostgreSQL) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Subject{}).Count(&count).Error; err != nil {
		return 0, handleDBError(err, "count subjects")
	}
	return count, nil
}

// ===== EXAMS =====

type examPostgreSQL struct {
	db *gorm.DB
}

func NewExamPostgreSQL(db *gorm.DB) repositories.ExamRepository {
	return &examPostgreSQL{db: db}
}

func (r *examPostgreSQL) Create(ctx context.Context, exam *models.Exam) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(exam).Error; err != nil {
		return handleDBError(err, "create exam")
	}
	return nil
}

func (r *examPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Exam, error) {
	var exam models.Exam
	if err := r.db.WithContext(ctx).First(&exam, id).Error; err != nil {
		return nil, handleDBError(err, "get exam by id")
	}
	return &exam, nil
}

func (r *examPostgreSQL) List(ctx context.Context, filters repositories.ExamFilters) ([]*models.Exam, error) {
	var exams []*models.Exam

	query := r.db.WithContext(ctx).Model(&models.Exam{})
	if filters.ClasseID != nil {
		query = query.Where("exams.classe_id = ?", *filters.ClasseID)
	}
	if filters.ClasseIDs != nil {
		query = query.Where("exams.classe_id IN ?", filters.ClasseIDs)
	}
	if filters.TeacherID != nil {
		query = query.
			Joins("INNER JOIN classes c ON c.id = exams.classe_id").
			Where("c.teacher_id = ?", *filters.TeacherID)
	}

	if err := query.Order("exams.id ASC").Find(&exams).Error; err != nil {
		return nil, handleDBError(err, "list exams")
	}
	return exams, nil
}

func (r *examPostgreSQL) Update(ctx context.Context, exam *models.Exam) error {
	result := r.db.WithContext(ctx).
		Model(exam).
		Select("name", "classe_id", "subject_id", "date", "start_time", "end_time", "updated_at").
		Omit(clause.Associations).
		Updates(exam)
	return requireAffected(result, "update exam")
}

func (r *examPostgreSQL) Delete(ctx context.Context, id uint) error {
	return requireAffected(r.db.WithContext(ctx).Delete(&models.Exam{}, id), "delete exam")
}

func (r *examPostgreSQL) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Exam{}).Count(&count).Error; err != nil {
		return 0, handleDBError(err, "count exams")
	}
	return count, nil
}

func (r *examPostgreSQL) CountBySubject(ctx context.Context, subjectID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Exam{}).
		Where("subject_id = ?", subjectID).
		Count(&count).Error; err != nil {
		return 0, handleDBError(err, "count exams by subject")
	}
	return count, nil
}

// ===== ATTENDANCE =====

type attendancePostgreSQL struct {
	db *gorm.DB
}

func NewAttendancePostgreSQL(db *gorm.DB) repositories.AttendanceRepository {
	return &attendancePostgreSQL{db: db}
}

func (r *attendancePostgreSQL) CreateBatch(ctx context.Context, records []*models.Attendance) error {
	if len(records) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&records).Error; err != nil {
		return handleDBError(err, "create attendance")
	}
	return nil
}

func (r *attendancePostgreSQL) ListByStudent(ctx context.Context, studentID uint) ([]*models.Attendance, error) {
	var records []*models.Attendance
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("date DESC, id ASC").
		Find(&records).Error; err != nil {
		return nil, handleDBError(err, "list student attendance")
	}
	return records, nil
}

func (r *attendancePostgreSQL) ListByClasse(ctx context.Context, classeID uint) ([]*models.Attendance, error) {
	var records []*models.Attendance
	if err := r.db.WithContext(ctx).
		Where("classe_id = ?", classeID).
		Order("date DESC, id ASC").
		Find(&records).Error; err != nil {
		return nil, handleDBError(err, "list class attendance")
	}
	return records, nil
}

func (r *attendancePostgreSQL) DeleteByStudent(ctx context.Context, studentID uint) error {
	if err := r.db.WithContext(ctx).Where("student_id = ?", studentID).Delete(&models.Attendance{}).Error; err != nil {
		return handleDBError(err, "delete student attendance")
	}
	return nil
}

func (r *attendancePostgreSQL) DeleteByClasse(ctx context.Context, classeID uint) error {
	if err := r.db.WithContext(ctx).Where("classe_id = ?", classeID).Delete(&models.Attendance{}).Error; err != nil {
		return handleDBError(err, "delete class attendance")
	}
	return nil
}

// ===== LEARNING MATERIALS =====

type materialPostgreSQL struct {
	db *gorm.DB
}

func NewMaterialPostgreSQL(db *gorm.DB) repositories.MaterialRepository {
	return &materialPostgreSQL{db: db}
}

func (r *materialPostgreSQL) Create(ctx context.Context, material *models.LearningMaterial) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(material).Error; err != nil {
		return handleDBError(err, "create learning material")
	}
	return nil
}

func (r *materialPostgreSQL) GetByID(ctx context.Context, id uint) (*models.LearningMaterial, error) {
	var material models.LearningMaterial
	if err := r.db.WithContext(ctx).First(&material, id).Error; err != nil {
		return nil, handleDBError(err, "get learning material by id")
	}
	return &material, nil
}

func (r *materialPostgreSQL) List(ctx context.Context, filters repositories.MaterialFilters) ([]*models.LearningMaterial, error) {
	var materials []*models.LearningMaterial

	query := r.db.WithContext(ctx).Model(&models.LearningMaterial{})
	if filters.ClasseIDs != nil {
		query = query.Where("classe_id IN ?", filters.ClasseIDs)
	}

	if err := query.Order("id ASC").Find(&materials).Error; err != nil {
		return nil, handleDBError(err, "list learning materials")
	}
	return materials, nil
}

func (r *materialPostgreSQL) Delete(ctx context.Context, id uint) error {
	return requireAffected(r.db.WithContext(ctx).Delete(&models.LearningMaterial{}, id), "delete learning material")
}

func (r *materialPostgreSQL) DeleteByClasse(ctx context.Context, classeID uint) error {
	if err := r.db.WithContext(ctx).Where("classe_id = ?", classeID).Delete(&models.LearningMaterial{}).Error; err != nil {
		return handleDBError(err, "delete class materials")
	}
	return nil
}

// ===== TIMETABLE =====

type timetablePostgreSQL struct {
	db *gorm.DB
}

func NewTimetablePostgreSQL(db *gorm.DB) repositories.TimetableRepository {
	return &timetablePostgreSQL{db: db}
}

func (r *timetablePostgreSQL) Create(ctx context.Context, entry *models.TimetableEntry) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(entry).Error; err != nil {
		return handleDBError(err, "create timetable entry")
	}
	return nil
}

func (r *timetablePostgreSQL) GetByID(ctx context.Context, id uint) (*models.TimetableEntry, error) {
	var entry models.TimetableEntry
	if err := r.db.WithContext(ctx).First(&entry, id).Error; err != nil {
		return nil, handleDBError(err, "get timetable entry by id")
	}
	return &entry, nil
}

func (r *timetablePostgreSQL) List(ctx context.Context, classeID *uint) ([]*models.TimetableEntry, error) {
	var entries []*models.TimetableEntry

	query := r.db.WithContext(ctx).Model(&models.TimetableEntry{})
	if classeID != nil {
		query = query.Where("classe_id = ?", *classeID)
	}

	if err := query.Order("id ASC").Find(&entries).Error; err != nil {
		return nil, handleDBError(err, "list timetable entries")
	}
	return entries, nil
}

func (r *timetablePostgreSQL) Update(ctx context.Context, entry *models.TimetableEntry) error {
	result := r.db.WithContext(ctx).
		Model(entry).
		Select("classe_id", "subject_id", "day_of_week", "start_time", "end_time").
		Omit(clause.Associations).
		Updates(entry)
	return requireAffected(result, "update timetable entry")
}

func (r *timetablePostgreSQL) Delete(ctx context.Context, id uint) error {
	return requireAffected(r.db.WithContext(ctx).Delete(&models.TimetableEntry{}, id), "delete timetable entry")
}

func (r *timetablePostgreSQL) DeleteByClasse(ctx context.Context, classeID uint) error {
	if err := r.db.WithContext(ctx).Where("classe_id = ?", classeID).Delete(&models.TimetableEntry{}).Error; err != nil {
		return handleDBError(err, "delete class timetable")
	}
	return nil
}

func (r *timetablePostgreSQL) CountBySubject(ctx context.Context, subjectID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.TimetableEntry{}).
		Where("subject_id = ?", subjectID).
		Count(&count).Error; err != nil {
		return 0, handleDBError(err, "count timetable entries by subject")
	}
	return count, nil
}
