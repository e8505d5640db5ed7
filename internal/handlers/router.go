package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/academic-records-service/internal/models"
	"github.com/SAP-F-2025/academic-records-service/internal/services"
	"github.com/SAP-F-2025/academic-records-service/internal/utils"
)

type HandlerManager struct {
	serviceManager services.ServiceManager
	authHandler    *AuthHandler
	accountHandler *AccountHandler
	adminHandler   *AdminHandler
	teacherHandler *TeacherHandler
	studentHandler *StudentHandler
	authMiddleware *AuthMiddleware
}

func NewHandlerManager(serviceManager services.ServiceManager, logger utils.Logger, secureCookies bool) *HandlerManager {
	base := NewBaseHandler(logger)

	return &HandlerManager{
		serviceManager: serviceManager,
		authHandler:    NewAuthHandler(serviceManager.Auth(), base, secureCookies),
		accountHandler: NewAccountHandler(serviceManager.Identity(), base),
		adminHandler:   NewAdminHandler(serviceManager, base),
		teacherHandler: NewTeacherHandler(serviceManager, base),
		studentHandler: NewStudentHandler(serviceManager, base),
		authMiddleware: NewAuthMiddleware(serviceManager.Auth(), base),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	authenticated := hm.authMiddleware.Authenticate()

	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/login", hm.authHandler.Login)
		authRoutes.POST("/register", hm.authHandler.Register)
		authRoutes.POST("/refresh", hm.authHandler.Refresh)
		authRoutes.POST("/logout", hm.authHandler.Logout)
		authRoutes.GET("/me", authenticated, hm.authHandler.Me)
	}

	// Admin routes - Admins only
	admin := router.Group("/admin")
	admin.Use(authenticated, hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin))
	{
		admin.POST("/users", hm.adminHandler.CreateUser)
		admin.POST("/users/import", hm.adminHandler.ImportUsers)
		admin.GET("/users", hm.adminHandler.ListUsers)
		admin.GET("/users/:id", hm.adminHandler.GetUser)
		admin.PUT("/users/:id", hm.adminHandler.UpdateUser)
		admin.DELETE("/users/:id", hm.adminHandler.DeleteUser)

		admin.POST("/classes", hm.adminHandler.CreateClasse)
		admin.GET("/classes", hm.adminHandler.ListClasses)
		admin.GET("/classes/:id", hm.adminHandler.GetClasse)
		admin.PUT("/classes/:id", hm.adminHandler.UpdateClasse)
		admin.DELETE("/classes/:id", hm.adminHandler.DeleteClasse)
		admin.DELETE("/classes/:id/students/:studentId", hm.adminHandler.RemoveStudent)

		admin.POST("/assign-teacher", hm.adminHandler.AssignTeacher)
		admin.POST("/assign-student", hm.adminHandler.AssignStudent)
		admin.GET("/students/:studentId/classes", hm.adminHandler.StudentClasses)

		admin.GET("/exams", hm.adminHandler.ListExams)
		admin.GET("/results/filter", hm.adminHandler.FilterResults)

		admin.POST("/subjects", hm.adminHandler.CreateSubject)
		admin.GET("/subjects", hm.adminHandler.ListSubjects)
		admin.PUT("/subjects/:id", hm.adminHandler.UpdateSubject)
		admin.DELETE("/subjects/:id", hm.adminHandler.DeleteSubject)

		admin.POST("/materials", hm.teacherHandler.CreateMaterial)
		admin.GET("/materials", hm.teacherHandler.ListMaterials)
		admin.DELETE("/materials/:id", hm.teacherHandler.DeleteMaterial)

		admin.POST("/timetables", hm.adminHandler.CreateTimetableEntry)
		admin.GET("/timetables", hm.teacherHandler.ListTimetable)
		admin.PUT("/timetables/:id", hm.adminHandler.UpdateTimetableEntry)
		admin.DELETE("/timetables/:id", hm.adminHandler.DeleteTimetableEntry)

		admin.GET("/reports/summary", hm.adminHandler.ReportSummary)
		admin.PUT("/profile", hm.accountHandler.UpdateProfile)
		admin.PUT("/change-password", hm.accountHandler.ChangePassword)
	}

	// Teacher routes - Teachers (and Admins)
	teacher := router.Group("/teacher")
	teacher.Use(authenticated, hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher))
	{
		teacher.GET("/classes", hm.teacherHandler.MyClasses)
		teacher.GET("/students", hm.teacherHandler.MyStudents)
		teacher.GET("/classes/:classId/students", hm.teacherHandler.ClasseStudents)

		teacher.POST("/attendance", hm.teacherHandler.SubmitAttendance)
		teacher.POST("/marks", hm.teacherHandler.SaveMarks)

		teacher.POST("/exams", hm.teacherHandler.CreateExam)
		teacher.GET("/exams", hm.teacherHandler.ListExams)
		teacher.PUT("/exams/:id", hm.teacherHandler.UpdateExam)
		teacher.DELETE("/exams/:id", hm.teacherHandler.DeleteExam)

		teacher.GET("/results", hm.teacherHandler.MyResults)
		teacher.POST("/results", hm.teacherHandler.SaveResult)
		teacher.PUT("/results/:id", hm.teacherHandler.UpdateResult)
		teacher.POST("/results/submit", hm.teacherHandler.SubmitResults)
		teacher.GET("/results/filter", hm.teacherHandler.FilterResults)

		teacher.POST("/materials", hm.teacherHandler.CreateMaterial)
		teacher.GET("/materials", hm.teacherHandler.ListMaterials)
		teacher.DELETE("/materials/:id", hm.teacherHandler.DeleteMaterial)

		teacher.GET("/subjects", hm.teacherHandler.ListSubjects)
		teacher.GET("/timetables", hm.teacherHandler.ListTimetable)
		teacher.PUT("/profile", hm.accountHandler.UpdateProfile)
		teacher.PUT("/change-password", hm.accountHandler.ChangePassword)
	}

	// Student routes - Students only
	student := router.Group("/student")
	student.Use(authenticated, hm.authMiddleware.RequireRoleMiddleware(models.RoleStudent))
	{
		student.GET("/classes", hm.studentHandler.MyClasses)
		student.GET("/attendance", hm.studentHandler.MyAttendance)
		student.GET("/results", hm.studentHandler.MyResults)
		student.GET("/exams", hm.studentHandler.MyExams)
		student.GET("/materials", hm.studentHandler.MyMaterials)
		student.GET("/materials/:materialId", hm.studentHandler.GetMaterial)
		student.GET("/timetables", hm.teacherHandler.ListTimetable)
		student.PUT("/profile", hm.accountHandler.UpdateProfile)
		student.PUT("/change-password", hm.accountHandler.ChangePassword)
	}

	router.GET("/health", hm.health)
}

func (hm *HandlerManager) health(c *gin.Context) {
	if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
		utils.GetLogger(c, hm.authHandler.logger).Warn("Health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"service": "academic-records-service",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "academic-records-service",
	})
}
