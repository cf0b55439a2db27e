package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/examflow-ng/paper-service/internal/services"
	"github.com/examflow-ng/paper-service/internal/utils"
)

type AuthHandler struct {
	BaseHandler
	service services.AuthService
}

func NewAuthHandler(service services.AuthService, logger utils.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// RegisterSchool creates a school and its first exam officer
func (h *AuthHandler) RegisterSchool(c *gin.Context) {
	h.LogRequest(c, "Registering school")

	var req services.RegisterSchoolRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.RegisterSchool(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// Login exchanges credentials for a token
func (h *AuthHandler) Login(c *gin.Context) {
	h.LogRequest(c, "Login attempt")

	var req services.LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Me returns the actor behind the current token
func (h *AuthHandler) Me(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, actor)
}
