package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/examflow-ng/paper-service/internal/services"
	"github.com/examflow-ng/paper-service/internal/utils"
)

type SchoolHandler struct {
	BaseHandler
	service services.SchoolService
}

func NewSchoolHandler(service services.SchoolService, logger utils.Logger) *SchoolHandler {
	return &SchoolHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

func (h *SchoolHandler) GetSchool(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	school, err := h.service.GetSchool(c.Request.Context(), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, school)
}

// UpdateTemplate replaces the school's print template
func (h *SchoolHandler) UpdateTemplate(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	h.LogRequest(c, "Updating print template")

	var req services.TemplateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	school, err := h.service.UpdateTemplate(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, school)
}
