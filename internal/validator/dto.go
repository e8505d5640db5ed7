package validator

// ===== IDENTITY =====

// UserCreateRequest represents the request structure for creating users
type UserCreateRequest struct {
	Name         string  `json:"name" validate:"required,min=1,max=100"`
	Email        string  `json:"email" validate:"required,email,max=255"`
	Password     string  `json:"password" validate:"required,min=6,max=72"`
	Role         string  `json:"role" validate:"required,user_role"`
	BirthDate    *string `json:"birth_date" validate:"omitempty,calendar_date"`
	BirthCountry string  `json:"birth_country" validate:"omitempty,max=100"`
	BirthCity    string  `json:"birth_city" validate:"omitempty,max=100"`
	Address      string  `json:"address" validate:"omitempty,max=255"`
	Gender       string  `json:"gender" validate:"omitempty,max=20"`
	PhoneNumber  string  `json:"phone_number" validate:"omitempty,max=30"`
}

// UserUpdateRequest carries the patchable profile fields. Role and password
// cannot be changed through it.
type UserUpdateRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=1,max=100"`
	Email        *string `json:"email" validate:"omitempty,email,max=255"`
	BirthDate    *string `json:"birth_date" validate:"omitempty,calendar_date"`
	BirthCountry *string `json:"birth_country" validate:"omitempty,max=100"`
	BirthCity    *string `json:"birth_city" validate:"omitempty,max=100"`
	Address      *string `json:"address" validate:"omitempty,max=255"`
	Gender       *string `json:"gender" validate:"omitempty,max=20"`
	PhoneNumber  *string `json:"phone_number" validate:"omitempty,max=30"`
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// ===== ENROLLMENT =====

type ClasseRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=100"`
	Grade string `json:"grade" validate:"omitempty,max=20"`
}

type AssignTeacherRequest struct {
	ClasseID  uint `json:"classe_id" validate:"required"`
	TeacherID uint `json:"teacher_id" validate:"required"`
}

type AssignStudentRequest struct {
	ClasseID  uint `json:"classe_id" validate:"required"`
	StudentID uint `json:"student_id" validate:"required"`
}

// ===== ACADEMIC EVENTS =====

type SubjectRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

type ExamRequest struct {
	Name      string `json:"name" validate:"required,min=1,max=200"`
	ClasseID  uint   `json:"classe_id" validate:"required"`
	SubjectID uint   `json:"subject_id" validate:"required"`
	Date      string `json:"date" validate:"required,calendar_date"`
	StartTime string `json:"start_time" validate:"required,clock_time"`
	EndTime   string `json:"end_time" validate:"required,clock_time"`
}

type AttendanceRecord struct {
	StudentID uint `json:"student_id" validate:"required"`
	Present   bool `json:"present"`
}

type AttendanceRequest struct {
	ClasseID uint               `json:"classe_id" validate:"required"`
	Date     string             `json:"date" validate:"required,calendar_date"`
	Records  []AttendanceRecord `json:"records" validate:"required,min=1,dive"`
}

type MaterialRequest struct {
	ClasseID uint   `json:"classe_id" validate:"required"`
	Title    string `json:"title" validate:"omitempty,max=200"`
	URL      string `json:"url" validate:"required,url,max=1000"`
}

type TimetableRequest struct {
	ClasseID  uint   `json:"classe_id" validate:"required"`
	SubjectID uint   `json:"subject_id" validate:"required"`
	DayOfWeek string `json:"day_of_week" validate:"required,day_of_week"`
	StartTime string `json:"start_time" validate:"required,clock_time"`
	EndTime   string `json:"end_time" validate:"required,clock_time"`
}

// ===== RESULTS =====

// ResultRequest creates a single result. Status is accepted for
// compatibility but never honoured: new results always start as drafts.
type ResultRequest struct {
	ExamID    uint    `json:"exam_id" validate:"required"`
	StudentID uint    `json:"student_id" validate:"required"`
	Marks     float64 `json:"marks" validate:"gte=0"`
	Grade     *string `json:"grade" validate:"omitempty,result_grade"`
	Status    *string `json:"status"`
}

type ResultUpdateRequest struct {
	Marks *float64 `json:"marks" validate:"omitempty,gte=0"`
	Grade *string  `json:"grade" validate:"omitempty,result_grade"`
}

type MarkEntry struct {
	StudentID uint    `json:"student_id" validate:"required"`
	Score     float64 `json:"score" validate:"gte=0"`
}

type MarksRequest struct {
	ExamID uint        `json:"exam_id" validate:"required"`
	Marks  []MarkEntry `json:"marks" validate:"required,min=1,dive"`
}

type SubmitResultsRequest struct {
	ResultIDs []uint `json:"result_ids"`
}
