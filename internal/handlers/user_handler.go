package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/examflow-ng/paper-service/internal/services"
	"github.com/examflow-ng/paper-service/internal/utils"
)

type UserHandler struct {
	BaseHandler
	service      services.UserService
	importExport services.ImportExportService
}

func NewUserHandler(service services.UserService, importExport services.ImportExportService, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler:  NewBaseHandler(logger),
		service:      service,
		importExport: importExport,
	}
}

// CreateTeacher adds a teacher account, generating credentials when no
// password is supplied. The plaintext password is returned once.
func (h *UserHandler) CreateTeacher(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	h.LogRequest(c, "Creating teacher")

	var req services.CreateTeacherRequest
	if !h.bindJSON(c, &req) {
		return
	}

	creds, err := h.service.CreateTeacher(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, creds)
}

// GenerateCredentials batch-creates subject teachers with derived emails,
// one per class. Plaintext passwords are returned once.
func (h *UserHandler) GenerateCredentials(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	h.LogRequest(c, "Generating teacher credentials")

	var req services.GenerateCredentialsRequest
	if !h.bindJSON(c, &req) {
		return
	}

	creds, err := h.service.GenerateTeacherCredentials(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"credentials": creds})
}

// BulkImportTeachers ingests the newline/comma roster format
func (h *UserHandler) BulkImportTeachers(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	h.LogRequest(c, "Bulk importing teachers")

	var req services.BulkImportRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.service.BulkImportTeachers(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ImportTeachersExcel ingests an uploaded xlsx roster
func (h *UserHandler) ImportTeachersExcel(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	h.LogRequest(c, "Importing teachers from workbook")

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "missing file upload"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "unreadable file upload"})
		return
	}

	result, err := h.importExport.ImportTeachersFromExcel(c.Request.Context(), actor, data)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ExportTeachersExcel downloads the school roster as xlsx
func (h *UserHandler) ExportTeachersExcel(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	data, err := h.importExport.ExportTeachersToExcel(c.Request.Context(), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="teachers.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func (h *UserHandler) ListTeachers(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	teachers, err := h.service.ListTeachers(c.Request.Context(), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"teachers": teachers})
}

func (h *UserHandler) GetUser(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	user, err := h.service.GetByID(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
