package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/SAP-F-2025/academic-records-service/internal/repositories"
	"github.com/SAP-F-2025/academic-records-service/internal/services"
	"github.com/SAP-F-2025/academic-records-service/internal/validator"
)

// TeacherHandler serves the /teacher routes. Material and timetable reads are
// also mounted for admins and students.
type TeacherHandler struct {
	BaseHandler
	enrollment services.EnrollmentService
	academic   services.AcademicService
	results    services.ResultService
}

func NewTeacherHandler(sm services.ServiceManager, base BaseHandler) *TeacherHandler {
	return &TeacherHandler{
		BaseHandler: base,
		enrollment:  sm.Enrollment(),
		academic:    sm.Academic(),
		results:     sm.Result(),
	}
}

// ===== CLASSES & STUDENTS =====

func (h *TeacherHandler) MyClasses(c *gin.Context) {
	classes, err := h.enrollment.ClassesForTeacher(c.Request.Context(), principal(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, classes)
}

func (h *TeacherHandler) MyStudents(c *gin.Context) {
	students, err := h.enrollment.StudentsByTeacher(c.Request.Context(), principal(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, students)
}

func (h *TeacherHandler) ClasseStudents(c *gin.Context) {
	classeID, ok := h.parseIDParam(c, "classId")
	if !ok {
		return
	}

	students, err := h.enrollment.StudentsByClasse(c.Request.Context(), principal(c), classeID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, students)
}

// ===== ATTENDANCE =====

// SubmitAttendance records one attendance row per student for a class and date
// @Summary Submit attendance
// @Tags teacher
// @Accept json
// @Produce json
// @Param attendance body services.AttendanceRequest true "Class, date and records"
// @Success 201 {array} models.Attendance
// @Router /teacher/attendance [post]
func (h *TeacherHandler) SubmitAttendance(c *gin.Context) {
	var req services.AttendanceRequest
	if !h.bindJSON(c, &req) {
		return
	}

	records, err := h.academic.SubmitAttendance(c.Request.Context(), principal(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, records)
}

// ===== EXAMS =====

func (h *TeacherHandler) CreateExam(c *gin.Context) {
	var req services.ExamRequest
	if !h.bindJSON(c, &req) {
		return
	}

	exam, err := h.academic.CreateExam(c.Request.Context(), principal(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, exam)
}

// ListExams returns the exams of the classes the caller teaches
func (h *TeacherHandler) ListExams(c *gin.Context) {
	p := principal(c)
	filters := repositories.ExamFilters{TeacherID: &p.UserID}

	exams, err := h.academic.ListExams(c.Request.Context(), p, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, exams)
}

func (h *TeacherHandler) UpdateExam(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.ExamRequest
	if !h.bindJSON(c, &req) {
		return
	}

	exam, err := h.academic.UpdateExam(c.Request.Context(), principal(c), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, exam)
}

// DeleteExam removes an exam and its drafts
// @Summary Delete exam
// @Tags teacher
// @Param id path int true "Exam ID"
// @Success 204
// @Failure 400 {object} ErrorResponse "Exam has submitted results"
// @Router /teacher/exams/{id} [delete]
func (h *TeacherHandler) DeleteExam(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.academic.DeleteExam(c.Request.Context(), principal(c), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ===== RESULTS =====

// SaveResult stores a draft result
// @Summary Save result
// @Tags teacher
// @Accept json
// @Produce json
// @Param result body services.ResultRequest true "Exam, student and marks"
// @Success 201 {object} models.ExamResult
// @Router /teacher/results [post]
func (h *TeacherHandler) SaveResult(c *gin.Context) {
	var req services.ResultRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.results.Save(c.Request.Context(), principal(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *TeacherHandler) SaveMarks(c *gin.Context) {
	var req services.MarksRequest
	if !h.bindJSON(c, &req) {
		return
	}

	results, err := h.results.SaveMarks(c.Request.Context(), principal(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, results)
}

// UpdateResult edits a draft result
// @Summary Update result
// @Tags teacher
// @Accept json
// @Produce json
// @Param id path int true "Result ID"
// @Param result body services.UpdateResultRequest true "Marks and grade"
// @Success 200 {object} models.ExamResult
// @Failure 400 {object} ErrorResponse "Result already submitted"
// @Router /teacher/results/{id} [put]
func (h *TeacherHandler) UpdateResult(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.UpdateResultRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.results.Update(c.Request.Context(), principal(c), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// SubmitResults freezes the listed results. Accepts a bare JSON array of ids
// or {"result_ids": [...]}; unknown ids are skipped.
// @Summary Submit results
// @Tags teacher
// @Accept json
// @Produce json
// @Success 200 {object} services.SubmitResponse
// @Router /teacher/results/submit [post]
func (h *TeacherHandler) SubmitResults(c *gin.Context) {
	var ids []uint
	if err := c.ShouldBindBodyWith(&ids, binding.JSON); err != nil {
		var req validator.SubmitResultsRequest
		if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
			h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
			return
		}
		ids = req.ResultIDs
	}

	n, err := h.results.SubmitBatch(c.Request.Context(), principal(c), ids)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, services.SubmitResponse{Submitted: n})
}

func (h *TeacherHandler) MyResults(c *gin.Context) {
	results, err := h.results.ListForTeacher(c.Request.Context(), principal(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

func (h *TeacherHandler) FilterResults(c *gin.Context) {
	classeID, ok := h.parseUintQuery(c, "classId")
	if !ok {
		return
	}
	studentID, ok := h.parseUintQuery(c, "studentId")
	if !ok {
		return
	}

	results, err := h.results.Filter(c.Request.Context(), principal(c), classeID, studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

// ===== MATERIALS, SUBJECTS, TIMETABLE =====

func (h *TeacherHandler) CreateMaterial(c *gin.Context) {
	var req services.MaterialRequest
	if !h.bindJSON(c, &req) {
		return
	}

	material, err := h.academic.CreateMaterial(c.Request.Context(), principal(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, material)
}

func (h *TeacherHandler) ListMaterials(c *gin.Context) {
	materials, err := h.academic.ListMaterials(c.Request.Context(), principal(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, materials)
}

func (h *TeacherHandler) DeleteMaterial(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.academic.DeleteMaterial(c.Request.Context(), principal(c), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TeacherHandler) ListSubjects(c *gin.Context) {
	subjects, err := h.academic.ListSubjects(c.Request.Context(), principal(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, subjects)
}

func (h *TeacherHandler) ListTimetable(c *gin.Context) {
	classeID, ok := h.parseUintQuery(c, "classe_id")
	if !ok {
		return
	}

	entries, err := h.academic.ListTimetable(c.Request.Context(), principal(c), classeID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
