package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/examflow-ng/paper-service/internal/services"
	"github.com/examflow-ng/paper-service/internal/utils"
)

type AIHandler struct {
	BaseHandler
	service services.AIService
}

func NewAIHandler(service services.AIService, logger utils.Logger) *AIHandler {
	return &AIHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// GenerateQuestions creates an exam section from a topic description
func (h *AIHandler) GenerateQuestions(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	h.LogRequest(c, "Generating questions")

	var req services.GenerateQuestionsRequest
	if !h.bindJSON(c, &req) {
		return
	}

	sections, err := h.service.GenerateQuestions(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sections": sections})
}

// ExtractFromImage runs OCR over a photographed handwritten exam
func (h *AIHandler) ExtractFromImage(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	h.LogRequest(c, "Extracting questions from image")

	var req services.OCRExtractRequest
	if !h.bindJSON(c, &req) {
		return
	}

	sections, err := h.service.ExtractFromImage(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sections": sections})
}

// RewriteQuestion spins one question in place
func (h *AIHandler) RewriteQuestion(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	h.LogRequest(c, "Rewriting question")

	var req services.RewriteQuestionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.RewriteQuestion(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RefineText cleans up or extends a piece of question text
func (h *AIHandler) RefineText(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req services.RefineTextRequest
	if !h.bindJSON(c, &req) {
		return
	}

	text, err := h.service.RefineText(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": text})
}

// AnalyzeMetadata classifies question text by difficulty and Bloom's level
func (h *AIHandler) AnalyzeMetadata(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req services.AnalyzeMetadataRequest
	if !h.bindJSON(c, &req) {
		return
	}

	meta, err := h.service.AnalyzeMetadata(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, meta)
}

// ImproveDistractors regenerates an objective question's option set
func (h *AIHandler) ImproveDistractors(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	h.LogRequest(c, "Improving distractors")

	var req services.ImproveDistractorsRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.ImproveDistractors(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GenerateRubric writes a marking rubric onto a theory question
func (h *AIHandler) GenerateRubric(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	h.LogRequest(c, "Generating rubric")

	var req services.GenerateRubricRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.GenerateRubric(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RunComplianceCheck audits a paper and stores the report
func (h *AIHandler) RunComplianceCheck(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	h.LogRequest(c, "Running compliance check")

	report, err := h.service.RunComplianceCheck(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
