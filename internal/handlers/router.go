package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/examflow-ng/paper-service/internal/services"
	"github.com/examflow-ng/paper-service/internal/utils"
)

type HandlerManager struct {
	authHandler      *AuthHandler
	paperHandler     *PaperHandler
	aiHandler        *AIHandler
	userHandler      *UserHandler
	bankHandler      *QuestionBankHandler
	schoolHandler    *SchoolHandler
	dashboardHandler *DashboardHandler
	authMiddleware   *JWTAuthMiddleware
}

func NewHandlerManager(serviceManager services.ServiceManager, logger utils.Logger) *HandlerManager {
	return &HandlerManager{
		authHandler:      NewAuthHandler(serviceManager.Auth(), logger),
		paperHandler:     NewPaperHandler(serviceManager.Paper(), serviceManager.Autosave(), logger),
		aiHandler:        NewAIHandler(serviceManager.AI(), logger),
		userHandler:      NewUserHandler(serviceManager.User(), serviceManager.ImportExport(), logger),
		bankHandler:      NewQuestionBankHandler(serviceManager.QuestionBank(), serviceManager.ImportExport(), logger),
		schoolHandler:    NewSchoolHandler(serviceManager.School(), logger),
		dashboardHandler: NewDashboardHandler(serviceManager.Dashboard(), logger),
		authMiddleware:   NewJWTAuthMiddleware(serviceManager.Auth()),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Public routes: registration, login, and scan-to-open
	public := router.Group("/api/v1")
	{
		public.POST("/auth/register", hm.authHandler.RegisterSchool)
		public.POST("/auth/login", hm.authHandler.Login)
		public.GET("/qr/:token", hm.paperHandler.ResolveQR)
	}

	// API v1 routes with authentication
	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.AuthMiddleware())
	{
		v1.GET("/auth/me", hm.authHandler.Me)

		// Paper routes
		papers := v1.Group("/papers")
		{
			papers.POST("", hm.paperHandler.CreatePaper)
			papers.GET("", hm.paperHandler.ListPapers)
			papers.GET("/:id", hm.paperHandler.GetPaper)
			papers.PUT("/:id", hm.paperHandler.SavePaper)
			papers.POST("/:id/flush", hm.paperHandler.FlushPaper)
			papers.DELETE("/:id", hm.paperHandler.DeletePaper)

			// Lifecycle
			papers.POST("/:id/submit", hm.paperHandler.SubmitPaper)
			papers.POST("/:id/approve", hm.authMiddleware.RequireExamOfficer(), hm.paperHandler.ApprovePaper)
			papers.POST("/:id/reject", hm.authMiddleware.RequireExamOfficer(), hm.paperHandler.RejectPaper)

			// Editor mutations
			papers.PATCH("/:id/header", hm.paperHandler.UpdateHeader)
			papers.POST("/:id/sections", hm.paperHandler.AddSection)
			papers.PATCH("/:id/sections/:section_id", hm.paperHandler.RenameSection)
			papers.DELETE("/:id/sections/:section_id", hm.paperHandler.DeleteSection)
			papers.PUT("/:id/sections/reorder", hm.paperHandler.ReorderSections)
			papers.POST("/:id/sections/:section_id/merge/:source_id", hm.paperHandler.MergeSections)
			papers.POST("/:id/sections/:section_id/questions", hm.paperHandler.AddQuestion)
			papers.PATCH("/:id/sections/:section_id/questions/:question_id", hm.paperHandler.UpdateQuestion)
			papers.DELETE("/:id/sections/:section_id/questions/:question_id", hm.paperHandler.DeleteQuestion)
			papers.PUT("/:id/questions/reorder", hm.paperHandler.ReorderQuestions)

			// Rendering
			papers.GET("/:id/print", hm.paperHandler.GetPrintView)
			papers.GET("/:id/qr.png", hm.paperHandler.GetQRImage)

			// AI features bound to a paper
			papers.POST("/:id/rewrite", hm.aiHandler.RewriteQuestion)
			papers.POST("/:id/distractors", hm.aiHandler.ImproveDistractors)
			papers.POST("/:id/rubric", hm.aiHandler.GenerateRubric)
			papers.POST("/:id/compliance", hm.aiHandler.RunComplianceCheck)

			// Bank interactions
			papers.POST("/:id/bank", hm.bankHandler.SaveToBank)
			papers.POST("/:id/sections/:section_id/bank-import", hm.bankHandler.ImportFromBank)
		}

		// Standalone AI routes
		ai := v1.Group("/ai")
		{
			ai.POST("/generate", hm.aiHandler.GenerateQuestions)
			ai.POST("/ocr", hm.aiHandler.ExtractFromImage)
			ai.POST("/refine", hm.aiHandler.RefineText)
			ai.POST("/metadata", hm.aiHandler.AnalyzeMetadata)
		}

		// Question bank routes
		bank := v1.Group("/bank")
		{
			bank.GET("", hm.bankHandler.ListBank)
			bank.GET("/export", hm.bankHandler.ExportBankExcel)
			bank.DELETE("/:id", hm.authMiddleware.RequireExamOfficer(), hm.bankHandler.DeleteFromBank)
		}

		// User routes - Exam officers manage the roster
		users := v1.Group("/users")
		{
			users.POST("", hm.authMiddleware.RequireExamOfficer(), hm.userHandler.CreateTeacher)
			users.POST("/bulk-import", hm.authMiddleware.RequireExamOfficer(), hm.userHandler.BulkImportTeachers)
			users.POST("/generate-credentials", hm.authMiddleware.RequireExamOfficer(), hm.userHandler.GenerateCredentials)
			users.POST("/import-excel", hm.authMiddleware.RequireExamOfficer(), hm.userHandler.ImportTeachersExcel)
			users.GET("/export-excel", hm.authMiddleware.RequireExamOfficer(), hm.userHandler.ExportTeachersExcel)
			users.GET("", hm.authMiddleware.RequireExamOfficer(), hm.userHandler.ListTeachers)
			users.GET("/:id", hm.userHandler.GetUser)
		}

		// School routes
		school := v1.Group("/school")
		{
			school.GET("", hm.schoolHandler.GetSchool)
			school.PUT("/template", hm.authMiddleware.RequireExamOfficer(), hm.schoolHandler.UpdateTemplate)
		}

		// Dashboard
		v1.GET("/dashboard", hm.dashboardHandler.GetDashboard)
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "paper-service",
		})
	})
}
