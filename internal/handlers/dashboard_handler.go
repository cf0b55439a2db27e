package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/examflow-ng/paper-service/internal/services"
	"github.com/examflow-ng/paper-service/internal/utils"
)

type DashboardHandler struct {
	BaseHandler
	service services.DashboardService
}

func NewDashboardHandler(service services.DashboardService, logger utils.Logger) *DashboardHandler {
	return &DashboardHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// GetDashboard returns status counts, recent papers and, for officers,
// the pending review queue
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	resp, err := h.service.GetDashboard(c.Request.Context(), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
