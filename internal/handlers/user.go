package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/platform/apierr"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/platform/logger"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/requestdata"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/services"
)

type UserHandler struct {
	log         *logger.Logger
	userService services.UserService
}

func NewUserHandler(log *logger.Logger, userService services.UserService) *UserHandler {
	return &UserHandler{log: log.With("handler", "UserHandler"), userService: userService}
}

func parseID(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apierr.Validation("invalid_id", "invalid %s", name)
	}
	return id, nil
}

func (h *UserHandler) List(c *gin.Context) {
	identity := requestdata.GetIdentity(c.Request.Context())
	users, err := h.userService.List(c.Request.Context(), identity)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, users)
}

func (h *UserHandler) Create(c *gin.Context) {
	identity := requestdata.GetIdentity(c.Request.Context())
	var req services.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.Validation("invalid_body", "invalid request body"))
		return
	}
	user, err := h.userService.Create(c.Request.Context(), identity, req)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, user)
}

func (h *UserHandler) Get(c *gin.Context) {
	identity := requestdata.GetIdentity(c.Request.Context())
	userID, err := parseID(c, "id")
	if err != nil {
		RespondError(c, err)
		return
	}
	user, err := h.userService.Get(c.Request.Context(), identity, userID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, user)
}

func (h *UserHandler) Update(c *gin.Context) {
	identity := requestdata.GetIdentity(c.Request.Context())
	userID, err := parseID(c, "id")
	if err != nil {
		RespondError(c, err)
		return
	}
	var req services.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.Validation("invalid_body", "invalid request body"))
		return
	}
	user, err := h.userService.Update(c.Request.Context(), identity, userID, req)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, user)
}

func (h *UserHandler) Delete(c *gin.Context) {
	identity := requestdata.GetIdentity(c.Request.Context())
	userID, err := parseID(c, "id")
	if err != nil {
		RespondError(c, err)
		return
	}
	if err := h.userService.Delete(c.Request.Context(), identity, userID); err != nil {
		RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) BulkDelete(c *gin.Context) {
	identity := requestdata.GetIdentity(c.Request.Context())
	var req services.BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.Validation("invalid_body", "invalid request body"))
		return
	}
	deleted, err := h.userService.BulkDelete(c.Request.Context(), identity, req.IDs)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": deleted})
}
