package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/platform/apierr"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/platform/logger"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/requestdata"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/services"
)

type LessonHandler struct {
	log           *logger.Logger
	lessonService services.LessonService
}

func NewLessonHandler(log *logger.Logger, lessonService services.LessonService) *LessonHandler {
	return &LessonHandler{log: log.With("handler", "LessonHandler"), lessonService: lessonService}
}

func (h *LessonHandler) Create(c *gin.Context) {
	identity := requestdata.GetIdentity(c.Request.Context())
	var req services.CreateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.Validation("invalid_body", "invalid request body"))
		return
	}
	lesson, err := h.lessonService.Create(c.Request.Context(), identity, req)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, lesson)
}

func (h *LessonHandler) Get(c *gin.Context) {
	identity := requestdata.GetIdentity(c.Request.Context())
	lessonID, err := parseID(c, "id")
	if err != nil {
		RespondError(c, err)
		return
	}
	lesson, err := h.lessonService.Get(c.Request.Context(), identity, lessonID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, lesson)
}

func (h *LessonHandler) Update(c *gin.Context) {
	identity := requestdata.GetIdentity(c.Request.Context())
	lessonID, err := parseID(c, "id")
	if err != nil {
		RespondError(c, err)
		return
	}
	var req services.UpdateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.Validation("invalid_body", "invalid request body"))
		return
	}
	lesson, err := h.lessonService.Update(c.Request.Context(), identity, lessonID, req)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, lesson)
}

func (h *LessonHandler) BulkDelete(c *gin.Context) {
	identity := requestdata.GetIdentity(c.Request.Context())
	var req services.BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.Validation("invalid_body", "invalid request body"))
		return
	}
	deleted, err := h.lessonService.BulkDelete(c.Request.Context(), identity, req.IDs)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": deleted})
}
