package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/platform/apierr"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/platform/logger"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/requestdata"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/services"
)

type AuthHandler struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthHandler(log *logger.Logger, authService services.AuthService) *AuthHandler {
	return &AuthHandler{log: log.With("handler", "AuthHandler"), authService: authService}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.Validation("invalid_body", "invalid request body"))
		return
	}
	resp, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, resp)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.Validation("invalid_body", "invalid request body"))
		return
	}
	resp, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, resp)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req services.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.Validation("invalid_body", "invalid request body"))
		return
	}
	resp, err := h.authService.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, resp)
}

// Session answers whether the caller holds a live token. Runs behind
// OptionalAuth, so anonymous requests get authenticated=false.
func (h *AuthHandler) Session(c *gin.Context) {
	identity := requestdata.GetIdentity(c.Request.Context())
	session, err := h.authService.Session(c.Request.Context(), identity)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, session)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	identity := requestdata.GetIdentity(c.Request.Context())
	if err := h.authService.Logout(c.Request.Context(), identity); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"detail": "logged out"})
}
