package models

// All lists every persisted model, in dependency order, for schema migration.
func All() []interface{} {
	return []interface{}{
		&User{},
		&TeacherProfile{},
		&StudentProfile{},
		&Subject{},
		&Classe{},
		&ClasseStudent{},
		&Exam{},
		&ExamResult{},
		&Attendance{},
		&LearningMaterial{},
		&TimetableEntry{},
	}
}
