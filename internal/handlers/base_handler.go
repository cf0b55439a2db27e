package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/examflow-ng/paper-service/internal/services"
	"github.com/examflow-ng/paper-service/internal/utils"
	"github.com/examflow-ng/paper-service/internal/validator"
)

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// BaseHandler carries the pieces every handler shares.
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string) {
	utils.LoggerFromContext(c, h.logger).Info(msg, "method", c.Request.Method, "path", c.Request.URL.Path)
}

func (h *BaseHandler) LogError(c *gin.Context, err error, msg string) {
	utils.LoggerFromContext(c, h.logger).Error(msg, "error", err, "path", c.Request.URL.Path)
}

// actor returns the authenticated actor placed in context by the auth
// middleware. Aborts with 401 when missing.
func (h *BaseHandler) actor(c *gin.Context) (services.Actor, bool) {
	v, exists := c.Get("actor")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Authentication required"})
		return services.Actor{}, false
	}
	actor, ok := v.(services.Actor)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Authentication required"})
		return services.Actor{}, false
	}
	return actor, true
}

// handleServiceError maps service-layer errors to HTTP status codes.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrInvalidLogin):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Invalid email or password"})
	case services.IsPermissionError(err):
		c.JSON(http.StatusForbidden, ErrorResponse{Message: "Forbidden", Details: err.Error()})
	case errors.Is(err, services.ErrPaperNotFound),
		errors.Is(err, services.ErrSectionNotFound),
		errors.Is(err, services.ErrQuestionNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrSchoolNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: err.Error()})
	case errors.Is(err, services.ErrEmailTaken):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "Email already registered"})
	case errors.Is(err, services.ErrPaperConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "Paper was modified by another save, reload and retry"})
	case services.IsGenerationError(err):
		h.LogError(c, err, "Content model failure")
		c.JSON(http.StatusBadGateway, ErrorResponse{Message: "AI generation failed", Details: err.Error()})
	default:
		h.LogError(c, err, "Unexpected service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Internal server error"})
	}
}

func (h *BaseHandler) bindJSON(c *gin.Context, target interface{}) bool {
	if err := c.ShouldBindJSON(target); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return false
	}
	return true
}
