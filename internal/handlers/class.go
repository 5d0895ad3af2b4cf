package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/platform/apierr"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/platform/logger"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/requestdata"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/services"
)

type ClassHandler struct {
	log          *logger.Logger
	classService services.ClassService
}

func NewClassHandler(log *logger.Logger, classService services.ClassService) *ClassHandler {
	return &ClassHandler{log: log.With("handler", "ClassHandler"), classService: classService}
}

func (h *ClassHandler) Create(c *gin.Context) {
	identity := requestdata.GetIdentity(c.Request.Context())
	var req services.CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.Validation("invalid_body", "invalid request body"))
		return
	}
	class, err := h.classService.Create(c.Request.Context(), identity, req)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, class)
}

func (h *ClassHandler) List(c *gin.Context) {
	identity := requestdata.GetIdentity(c.Request.Context())
	classes, err := h.classService.List(c.Request.Context(), identity)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, classes)
}

func (h *ClassHandler) Get(c *gin.Context) {
	identity := requestdata.GetIdentity(c.Request.Context())
	classID, err := parseID(c, "id")
	if err != nil {
		RespondError(c, err)
		return
	}
	class, err := h.classService.Get(c.Request.Context(), identity, classID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, class)
}

func (h *ClassHandler) Update(c *gin.Context) {
	identity := requestdata.GetIdentity(c.Request.Context())
	classID, err := parseID(c, "id")
	if err != nil {
		RespondError(c, err)
		return
	}
	var req services.UpdateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.Validation("invalid_body", "invalid request body"))
		return
	}
	class, err := h.classService.Update(c.Request.Context(), identity, classID, req)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, class)
}

func (h *ClassHandler) BulkDelete(c *gin.Context) {
	identity := requestdata.GetIdentity(c.Request.Context())
	var req services.BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.Validation("invalid_body", "invalid request body"))
		return
	}
	deleted, err := h.classService.BulkDelete(c.Request.Context(), identity, req.IDs)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": deleted})
}

func (h *ClassHandler) Enroll(c *gin.Context) {
	identity := requestdata.GetIdentity(c.Request.Context())
	var req services.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.Validation("invalid_body", "invalid request body"))
		return
	}
	enrollment, err := h.classService.Enroll(c.Request.Context(), identity, req.ClassCode)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, enrollment)
}

func (h *ClassHandler) ListEnrollments(c *gin.Context) {
	identity := requestdata.GetIdentity(c.Request.Context())
	enrollments, err := h.classService.ListEnrollments(c.Request.Context(), identity)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, enrollments)
}
