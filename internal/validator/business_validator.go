package validator

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/datatypes"

	"github.com/SAP-F-2025/academic-records-service/internal/models"
)

const (
	dateLayout = "2006-01-02"
)

var clockLayouts = []string{"15:04:05", "15:04"}

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	bv := &BusinessValidator{validate: newValidate()}
	bv.registerBusinessRules()

	return bv
}

// Validate validates business rules for any struct
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	err := bv.validate.Struct(s)
	if err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateExam validates exam creation and update rules
func (bv *BusinessValidator) ValidateExam(req *ExamRequest) ValidationErrors {
	var errs ValidationErrors

	// Basic struct validation
	errs = append(errs, bv.Validate(req)...)
	if len(errs) > 0 {
		return errs
	}

	errs = append(errs, bv.validateTimeRange(req.StartTime, req.EndTime)...)

	return errs
}

// ValidateTimetable validates timetable entry rules
func (bv *BusinessValidator) ValidateTimetable(req *TimetableRequest) ValidationErrors {
	var errs ValidationErrors

	errs = append(errs, bv.Validate(req)...)
	if len(errs) > 0 {
		return errs
	}

	errs = append(errs, bv.validateTimeRange(req.StartTime, req.EndTime)...)

	return errs
}

// ValidateMarks validates a batch of marks and rejects duplicate students
func (bv *BusinessValidator) ValidateMarks(req *MarksRequest) ValidationErrors {
	var errs ValidationErrors

	errs = append(errs, bv.Validate(req)...)

	seen := make(map[uint]bool, len(req.Marks))
	for i, m := range req.Marks {
		if seen[m.StudentID] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("marks[%d].student_id", i),
				Message: "student appears more than once",
				Value:   m.StudentID,
				Rule:    "business_logic",
			})
		}
		seen[m.StudentID] = true
	}

	return errs
}

// registerBusinessRules registers custom business rule validators
func (bv *BusinessValidator) registerBusinessRules() {
	// Role validation
	bv.validate.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
		return models.UserRole(strings.ToUpper(fl.Field().String())).IsValid()
	})

	// Grade validation (A-F)
	bv.validate.RegisterValidation("result_grade", func(fl validator.FieldLevel) bool {
		switch models.Grade(strings.ToUpper(strings.TrimSpace(fl.Field().String()))) {
		case "":
			return true
		case models.GradeA, models.GradeB, models.GradeC, models.GradeD, models.GradeE, models.GradeF:
			return true
		}
		return false
	})

	// Time of day, HH:MM or HH:MM:SS
	bv.validate.RegisterValidation("clock_time", func(fl validator.FieldLevel) bool {
		_, err := ParseClockTime(fl.Field().String())
		return err == nil
	})

	// Calendar date, YYYY-MM-DD
	bv.validate.RegisterValidation("calendar_date", func(fl validator.FieldLevel) bool {
		_, err := ParseCalendarDate(fl.Field().String())
		return err == nil
	})

	bv.validate.RegisterValidation("day_of_week", func(fl validator.FieldLevel) bool {
		switch models.DayOfWeek(strings.ToUpper(fl.Field().String())) {
		case models.Monday, models.Tuesday, models.Wednesday, models.Thursday,
			models.Friday, models.Saturday, models.Sunday:
			return true
		}
		return false
	})
}

// validateTimeRange requires start to be strictly before end
func (bv *BusinessValidator) validateTimeRange(start, end string) ValidationErrors {
	startTime, err := ParseClockTime(start)
	if err != nil {
		return nil
	}
	endTime, err := ParseClockTime(end)
	if err != nil {
		return nil
	}

	if startTime >= endTime {
		return ValidationErrors{{
			Field:   "end_time",
			Message: "must be after start_time",
			Value:   end,
			Rule:    "business_logic",
		}}
	}
	return nil
}

// ParseCalendarDate parses a YYYY-MM-DD date
func ParseCalendarDate(s string) (datatypes.Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return datatypes.Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return datatypes.Date(t), nil
}

// ParseClockTime parses an HH:MM or HH:MM:SS time of day
func ParseClockTime(s string) (datatypes.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range clockLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return datatypes.NewTime(t.Hour(), t.Minute(), t.Second(), 0), nil
		}
	}
	return 0, fmt.Errorf("invalid time of day %q", s)
}
