package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/examflow-ng/paper-service/internal/models"
	"github.com/examflow-ng/paper-service/internal/repositories"
	"github.com/examflow-ng/paper-service/internal/services"
	"github.com/examflow-ng/paper-service/internal/utils"
)

type PaperHandler struct {
	BaseHandler
	service  services.PaperService
	autosave *services.AutosaveManager
}

func NewPaperHandler(service services.PaperService, autosave *services.AutosaveManager, logger utils.Logger) *PaperHandler {
	return &PaperHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
		autosave:    autosave,
	}
}

// ===== CORE OPERATIONS =====

func (h *PaperHandler) CreatePaper(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	h.LogRequest(c, "Creating paper")

	var req services.CreatePaperRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.Create(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *PaperHandler) GetPaper(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	resp, err := h.service.GetByID(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PaperHandler) ListPapers(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	filters := parsePaperFilters(c)
	resp, err := h.service.List(c.Request.Context(), actor, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SavePaper persists a whole edited aggregate. With ?autosave=true the
// write is debounced instead of applied immediately.
func (h *PaperHandler) SavePaper(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var paper models.ExamPaper
	if !h.bindJSON(c, &paper) {
		return
	}
	paper.ID = c.Param("id")

	if c.Query("autosave") == "true" {
		h.autosave.Schedule(actor, &paper)
		c.JSON(http.StatusAccepted, gin.H{"status": "scheduled", "paper_id": paper.ID})
		return
	}

	// A manual save supersedes any queued autosave for this paper.
	if err := h.autosave.Flush(c.Request.Context(), paper.ID); err != nil {
		h.handleServiceError(c, err)
		return
	}
	resp, err := h.service.Save(c.Request.Context(), actor, &paper)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// FlushPaper forces any pending autosave write through immediately.
func (h *PaperHandler) FlushPaper(c *gin.Context) {
	if _, ok := h.actor(c); !ok {
		return
	}
	if err := h.autosave.Flush(c.Request.Context(), c.Param("id")); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "flushed"})
}

func (h *PaperHandler) DeletePaper(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	h.LogRequest(c, "Deleting paper")

	if err := h.service.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ===== LIFECYCLE =====

func (h *PaperHandler) SubmitPaper(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	h.LogRequest(c, "Submitting paper for review")

	resp, err := h.service.Submit(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PaperHandler) ApprovePaper(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	h.LogRequest(c, "Approving paper")

	resp, err := h.service.Approve(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PaperHandler) RejectPaper(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	h.LogRequest(c, "Rejecting paper")

	var req services.RejectPaperRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.Reject(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ===== EDITOR MUTATIONS =====

func (h *PaperHandler) UpdateHeader(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req services.PaperHeaderRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.UpdateHeader(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PaperHandler) AddSection(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req services.AddSectionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.AddSection(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *PaperHandler) RenameSection(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req services.RenameSectionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.RenameSection(c.Request.Context(), actor, c.Param("id"), c.Param("section_id"), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PaperHandler) DeleteSection(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	resp, err := h.service.DeleteSection(c.Request.Context(), actor, c.Param("id"), c.Param("section_id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PaperHandler) ReorderSections(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req services.ReorderSectionsRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.ReorderSections(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PaperHandler) MergeSections(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	resp, err := h.service.MergeSections(c.Request.Context(), actor, c.Param("id"), c.Param("section_id"), c.Param("source_id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PaperHandler) AddQuestion(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req services.AddQuestionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.AddQuestion(c.Request.Context(), actor, c.Param("id"), c.Param("section_id"), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *PaperHandler) UpdateQuestion(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req services.QuestionPatchRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.UpdateQuestion(c.Request.Context(), actor, c.Param("id"), c.Param("section_id"), c.Param("question_id"), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PaperHandler) DeleteQuestion(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	resp, err := h.service.DeleteQuestion(c.Request.Context(), actor, c.Param("id"), c.Param("section_id"), c.Param("question_id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PaperHandler) ReorderQuestions(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req services.ReorderQuestionsRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.ReorderQuestions(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ===== RENDERING AND QR =====

func (h *PaperHandler) GetPrintView(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	view, err := h.service.GetPrintView(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetQRImage renders the paper's scan token as a PNG.
func (h *PaperHandler) GetQRImage(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	resp, err := h.service.GetByID(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	size := 256
	if s, err := strconv.Atoi(c.DefaultQuery("size", "256")); err == nil && s >= 64 && s <= 1024 {
		size = s
	}

	png, err := qrcode.Encode(resp.QRCodeData, qrcode.Medium, size)
	if err != nil {
		h.LogError(c, err, "Failed to encode QR image")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to encode QR image"})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// ResolveQR is the public scan-to-open endpoint: the token itself is the
// credential.
func (h *PaperHandler) ResolveQR(c *gin.Context) {
	view, err := h.service.GetPaperByQR(c.Request.Context(), c.Param("token"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// ===== HELPERS =====

func parsePaperFilters(c *gin.Context) repositories.PaperFilters {
	filters := repositories.PaperFilters{
		SortBy:    c.DefaultQuery("sort_by", "updated_at"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
	}

	if v := c.Query("status"); v != "" {
		status := models.PaperStatus(v)
		filters.Status = &status
	}
	if v := c.Query("subject"); v != "" {
		filters.Subject = &v
	}

	size, err := strconv.Atoi(c.DefaultQuery("size", "20"))
	if err != nil || size < 1 || size > 100 {
		size = 20
	}
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	filters.Limit = size
	filters.Offset = (page - 1) * size
	return filters
}
