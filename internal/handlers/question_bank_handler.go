package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/examflow-ng/paper-service/internal/models"
	"github.com/examflow-ng/paper-service/internal/repositories"
	"github.com/examflow-ng/paper-service/internal/services"
	"github.com/examflow-ng/paper-service/internal/utils"
)

type QuestionBankHandler struct {
	BaseHandler
	service      services.QuestionBankService
	importExport services.ImportExportService
}

func NewQuestionBankHandler(service services.QuestionBankService, importExport services.ImportExportService, logger utils.Logger) *QuestionBankHandler {
	return &QuestionBankHandler{
		BaseHandler:  NewBaseHandler(logger),
		service:      service,
		importExport: importExport,
	}
}

// SaveToBank copies paper questions into the bank
func (h *QuestionBankHandler) SaveToBank(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	h.LogRequest(c, "Saving questions to bank")

	var req services.SaveToBankRequest
	if !h.bindJSON(c, &req) {
		return
	}

	entries, err := h.service.SaveToBank(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"questions": entries})
}

func (h *QuestionBankHandler) ListBank(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	resp, err := h.service.ListBank(c.Request.Context(), actor, parseBankFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ImportFromBank copies bank entries into a paper section
func (h *QuestionBankHandler) ImportFromBank(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	h.LogRequest(c, "Importing bank questions into paper")

	var req services.ImportFromBankRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.ImportFromBank(c.Request.Context(), actor, c.Param("id"), c.Param("section_id"), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *QuestionBankHandler) DeleteFromBank(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	if err := h.service.DeleteFromBank(c.Request.Context(), actor, c.Param("id")); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ExportBankExcel downloads the visible bank as xlsx
func (h *QuestionBankHandler) ExportBankExcel(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	data, err := h.importExport.ExportBankToExcel(c.Request.Context(), actor, parseBankFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="question-bank.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func parseBankFilters(c *gin.Context) repositories.BankFilters {
	filters := repositories.BankFilters{
		SortBy:    c.DefaultQuery("sort_by", "created_at"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
	}

	if v := c.Query("type"); v != "" {
		qType := models.QuestionType(v)
		filters.Type = &qType
	}
	if v := c.Query("difficulty"); v != "" {
		difficulty := models.DifficultyLevel(v)
		filters.Difficulty = &difficulty
	}
	if v := c.Query("subject"); v != "" {
		filters.Subject = &v
	}
	if v := c.Query("topic"); v != "" {
		filters.Topic = &v
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
