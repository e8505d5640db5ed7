package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/academic-records-service/internal/models"
	"github.com/SAP-F-2025/academic-records-service/internal/repositories"
	"github.com/SAP-F-2025/academic-records-service/internal/services"
)

const maxImportSize = 10 << 20

// AdminHandler serves the /admin routes: users, classes, subjects, timetable and reports
type AdminHandler struct {
	BaseHandler
	identity   services.IdentityService
	enrollment services.EnrollmentService
	academic   services.AcademicService
	results    services.ResultService
	reports    services.ReportService
}

func NewAdminHandler(sm services.ServiceManager, base BaseHandler) *AdminHandler {
	return &AdminHandler{
		BaseHandler: base,
		identity:    sm.Identity(),
		enrollment:  sm.Enrollment(),
		academic:    sm.Academic(),
		results:     sm.Result(),
		reports:     sm.Report(),
	}
}

// ===== USERS =====

// CreateUser creates a user of any role
// @Summary Create user
// @Tags admin
// @Accept json
// @Produce json
// @Param user body services.CreateUserRequest true "User data"
// @Success 201 {object} models.User
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /admin/users [post]
func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req services.CreateUserRequest
	if !h.bindJSON(c, &req) {
		return
	}

	user, err := h.identity.Create(c.Request.Context(), principal(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// ListUsers lists users, optionally filtered by role and a name or email fragment
// @Summary List users
// @Tags admin
// @Produce json
// @Param role query string false "ADMIN, TEACHER or STUDENT"
// @Param q query string false "Name or email fragment"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} models.User
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	filters := repositories.UserFilters{Query: strings.TrimSpace(c.Query("q"))}
	if role := c.Query("role"); role != "" {
		r := models.UserRole(strings.ToUpper(role))
		filters.Role = &r
	}
	filters.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "0"))
	filters.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	users, err := h.identity.List(c.Request.Context(), principal(c), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *AdminHandler) GetUser(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := h.identity.GetByID(c.Request.Context(), principal(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateUser patches profile fields; role and password are left alone
// @Summary Update user
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param user body services.UpdateUserRequest true "Fields to change"
// @Success 200 {object} models.User
// @Router /admin/users/{id} [put]
func (h *AdminHandler) UpdateUser(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.UpdateUserRequest
	if !h.bindJSON(c, &req) {
		return
	}

	user, err := h.identity.Update(c.Request.Context(), principal(c), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteUser removes a user and everything that references them
// @Summary Delete user
// @Tags admin
// @Param id path int true "User ID"
// @Success 204
// @Router /admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.identity.Delete(c.Request.Context(), principal(c), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ImportUsers creates users from an uploaded .xlsx roster
// @Summary Import users
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Roster spreadsheet"
// @Param classe_id query int false "Enroll imported students in this class"
// @Success 200 {object} models.ImportSummary
// @Router /admin/users/import [post]
func (h *AdminHandler) ImportUsers(c *gin.Context) {
	classeID, ok := h.parseUintQuery(c, "classe_id")
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "A roster file is required", err)
		return
	}
	if header.Size > maxImportSize {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Roster file is too large"})
		return
	}
	file, err := header.Open()
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Could not open the roster file", err)
		return
	}
	defer file.Close()

	h.LogRequest(c, "Importing roster", "filename", header.Filename, "size", header.Size)
	summary, err := h.identity.ImportUsers(c.Request.Context(), principal(c), file, classeID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ===== CLASSES =====

func (h *AdminHandler) CreateClasse(c *gin.Context) {
	var req services.ClasseRequest
	if !h.bindJSON(c, &req) {
		return
	}

	classe, err := h.enrollment.CreateClasse(c.Request.Context(), principal(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, classe)
}

func (h *AdminHandler) ListClasses(c *gin.Context) {
	classes, err := h.enrollment.ListClasses(c.Request.Context(), principal(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, classes)
}

func (h *AdminHandler) GetClasse(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	classe, err := h.enrollment.GetClasse(c.Request.Context(), principal(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, classe)
}

func (h *AdminHandler) UpdateClasse(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.ClasseRequest
	if !h.bindJSON(c, &req) {
		return
	}

	classe, err := h.enrollment.UpdateClasse(c.Request.Context(), principal(c), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, classe)
}

// DeleteClasse removes a class with its exams, results, attendance, materials and timetable
// @Summary Delete class
// @Tags admin
// @Param id path int true "Class ID"
// @Success 204
// @Router /admin/classes/{id} [delete]
func (h *AdminHandler) DeleteClasse(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.enrollment.DeleteClasse(c.Request.Context(), principal(c), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AssignTeacher sets the teacher of a class
// @Summary Assign teacher
// @Tags admin
// @Accept json
// @Produce json
// @Param assignment body services.AssignTeacherRequest true "Class and teacher"
// @Success 200 {object} models.Classe
// @Failure 409 {object} ErrorResponse "Teacher already assigned"
// @Router /admin/assign-teacher [post]
func (h *AdminHandler) AssignTeacher(c *gin.Context) {
	var req services.AssignTeacherRequest
	if !h.bindJSON(c, &req) {
		return
	}

	classe, err := h.enrollment.AssignTeacher(c.Request.Context(), principal(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, classe)
}

// AssignStudent adds a student to a class
// @Summary Assign student
// @Tags admin
// @Accept json
// @Produce json
// @Param assignment body services.AssignStudentRequest true "Class and student"
// @Success 200 {object} SuccessResponse
// @Failure 409 {object} ErrorResponse "Student already assigned"
// @Router /admin/assign-student [post]
func (h *AdminHandler) AssignStudent(c *gin.Context) {
	var req services.AssignStudentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.enrollment.AssignStudent(c.Request.Context(), principal(c), &req); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Student assigned"})
}

func (h *AdminHandler) RemoveStudent(c *gin.Context) {
	classeID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	studentID, ok := h.parseIDParam(c, "studentId")
	if !ok {
		return
	}

	if err := h.enrollment.RemoveStudent(c.Request.Context(), principal(c), classeID, studentID); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) StudentClasses(c *gin.Context) {
	studentID, ok := h.parseIDParam(c, "studentId")
	if !ok {
		return
	}

	classes, err := h.enrollment.ClassesForStudent(c.Request.Context(), principal(c), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, classes)
}

// ===== EXAMS & RESULTS =====

func (h *AdminHandler) ListExams(c *gin.Context) {
	classeID, ok := h.parseUintQuery(c, "classe_id")
	if !ok {
		return
	}

	exams, err := h.academic.ListExams(c.Request.Context(), principal(c), repositories.ExamFilters{ClasseID: classeID})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, exams)
}

func (h *AdminHandler) FilterResults(c *gin.Context) {
	studentID, ok := h.parseUintQuery(c, "studentId")
	if !ok {
		return
	}

	results, err := h.results.Filter(c.Request.Context(), principal(c), nil, studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

// ===== SUBJECTS =====

func (h *AdminHandler) CreateSubject(c *gin.Context) {
	var req services.SubjectRequest
	if !h.bindJSON(c, &req) {
		return
	}

	subject, err := h.academic.CreateSubject(c.Request.Context(), principal(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, subject)
}

func (h *AdminHandler) ListSubjects(c *gin.Context) {
	subjects, err := h.academic.ListSubjects(c.Request.Context(), principal(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, subjects)
}

func (h *AdminHandler) UpdateSubject(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.SubjectRequest
	if !h.bindJSON(c, &req) {
		return
	}

	subject, err := h.academic.UpdateSubject(c.Request.Context(), principal(c), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, subject)
}

func (h *AdminHandler) DeleteSubject(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.academic.DeleteSubject(c.Request.Context(), principal(c), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ===== TIMETABLE =====

func (h *AdminHandler) CreateTimetableEntry(c *gin.Context) {
	var req services.TimetableRequest
	if !h.bindJSON(c, &req) {
		return
	}

	entry, err := h.academic.CreateTimetableEntry(c.Request.Context(), principal(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *AdminHandler) UpdateTimetableEntry(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.TimetableRequest
	if !h.bindJSON(c, &req) {
		return
	}

	entry, err := h.academic.UpdateTimetableEntry(c.Request.Context(), principal(c), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *AdminHandler) DeleteTimetableEntry(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.academic.DeleteTimetableEntry(c.Request.Context(), principal(c), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ===== REPORTS =====

// ReportSummary returns the headline counts
// @Summary Report summary
// @Tags admin
// @Produce json
// @Success 200 {object} models.ReportSummary
// @Router /admin/reports/summary [get]
func (h *AdminHandler) ReportSummary(c *gin.Context) {
	summary, err := h.reports.Summary(c.Request.Context(), principal(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
