package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/academic-records-service/internal/services"
)

type StudentHandler struct {
	BaseHandler
	enrollment services.EnrollmentService
	academic   services.AcademicService
	results    services.ResultService
}

func NewStudentHandler(sm services.ServiceManager, base BaseHandler) *StudentHandler {
	return &StudentHandler{
		BaseHandler: base,
		enrollment:  sm.Enrollment(),
		academic:    sm.Academic(),
		results:     sm.Result(),
	}
}

// ===== STUDENT ENDPOINTS =====

// MyClasses returns the classes the current student is enrolled in
// @Summary Get student classes
// @Tags student
// @Produce json
// @Success 200 {array} models.Classe
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /student/classes [get]
func (h *StudentHandler) MyClasses(c *gin.Context) {
	p := principal(c)
	h.LogRequest(c, "Getting student classes", "student_id", p.UserID)

	classes, err := h.enrollment.ClassesForStudent(c.Request.Context(), p, p.UserID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, classes)
}

func (h *StudentHandler) MyAttendance(c *gin.Context) {
	records, err := h.academic.AttendanceForStudent(c.Request.Context(), principal(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// MyResults returns the current student's submitted results. Drafts are never listed.
// @Summary Get student results
// @Tags student
// @Produce json
// @Success 200 {array} models.ExamResult
// @Router /student/results [get]
func (h *StudentHandler) MyResults(c *gin.Context) {
	results, err := h.results.ListForStudent(c.Request.Context(), principal(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

func (h *StudentHandler) MyExams(c *gin.Context) {
	exams, err := h.academic.ExamsForStudent(c.Request.Context(), principal(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, exams)
}

func (h *StudentHandler) MyMaterials(c *gin.Context) {
	materials, err := h.academic.MaterialsForStudent(c.Request.Context(), principal(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, materials)
}

// GetMaterial returns one material of a class the student is enrolled in
// @Summary Get learning material
// @Tags student
// @Produce json
// @Param materialId path int true "Material ID"
// @Success 200 {object} models.LearningMaterial
// @Failure 403 {object} ErrorResponse "Not enrolled in the material's class"
// @Router /student/materials/{materialId} [get]
func (h *StudentHandler) GetMaterial(c *gin.Context) {
	id, ok := h.parseIDParam(c, "materialId")
	if !ok {
		return
	}

	material, err := h.academic.GetMaterialForStudent(c.Request.Context(), principal(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, material)
}
