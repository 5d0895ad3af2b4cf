package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/platform/apierr"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/platform/logger"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/requestdata"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/services"
)

// ContentHandler covers the three leaf collections: key takeaways,
// exercises and resources.
type ContentHandler struct {
	log            *logger.Logger
	contentService services.ContentService
}

func NewContentHandler(log *logger.Logger, contentService services.ContentService) *ContentHandler {
	return &ContentHandler{log: log.With("handler", "ContentHandler"), contentService: contentService}
}

func (h *ContentHandler) CreateTakeaway(c *gin.Context) {
	identity := requestdata.GetIdentity(c.Request.Context())
	var req services.CreateTakeawayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.Validation("invalid_body", "invalid request body"))
		return
	}
	takeaway, err := h.contentService.CreateTakeaway(c.Request.Context(), identity, req)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, takeaway)
}

func (h *ContentHandler) UpdateTakeaway(c *gin.Context) {
	identity := requestdata.GetIdentity(c.Request.Context())
	takeawayID, err := parseID(c, "id")
	if err != nil {
		RespondError(c, err)
		return
	}
	var req services.UpdateTakeawayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.Validation("invalid_body", "invalid request body"))
		return
	}
	takeaway, err := h.contentService.UpdateTakeaway(c.Request.Context(), identity, takeawayID, req)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, takeaway)
}

func (h *ContentHandler) BulkDeleteTakeaways(c *gin.Context) {
	identity := requestdata.GetIdentity(c.Request.Context())
	var req services.BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.Validation("invalid_body", "invalid request body"))
		return
	}
	deleted, err := h.contentService.BulkDeleteTakeaways(c.Request.Context(), identity, req.IDs)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": deleted})
}

func (h *ContentHandler) CreateExercise(c *gin.Context) {
	identity := requestdata.GetIdentity(c.Request.Context())
	var req services.CreateExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.Validation("invalid_body", "invalid request body"))
		return
	}
	exercise, err := h.contentService.CreateExercise(c.Request.Context(), identity, req)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, exercise)
}

func (h *ContentHandler) UpdateExercise(c *gin.Context) {
	identity := requestdata.GetIdentity(c.Request.Context())
	exerciseID, err := parseID(c, "id")
	if err != nil {
		RespondError(c, err)
		return
	}
	var req services.UpdateExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.Validation("invalid_body", "invalid request body"))
		return
	}
	exercise, err := h.contentService.UpdateExercise(c.Request.Context(), identity, exerciseID, req)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, exercise)
}

func (h *ContentHandler) BulkDeleteExercises(c *gin.Context) {
	identity := requestdata.GetIdentity(c.Request.Context())
	var req services.BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.Validation("invalid_body", "invalid request body"))
		return
	}
	deleted, err := h.contentService.BulkDeleteExercises(c.Request.Context(), identity, req.IDs)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": deleted})
}

func (h *ContentHandler) CreateResource(c *gin.Context) {
	identity := requestdata.GetIdentity(c.Request.Context())
	var req services.CreateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.Validation("invalid_body", "invalid request body"))
		return
	}
	resource, err := h.contentService.CreateResource(c.Request.Context(), identity, req)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, resource)
}

func (h *ContentHandler) UpdateResource(c *gin.Context) {
	identity := requestdata.GetIdentity(c.Request.Context())
	resourceID, err := parseID(c, "id")
	if err != nil {
		RespondError(c, err)
		return
	}
	var req services.UpdateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.Validation("invalid_body", "invalid request body"))
		return
	}
	resource, err := h.contentService.UpdateResource(c.Request.Context(), identity, resourceID, req)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, resource)
}

func (h *ContentHandler) BulkDeleteResources(c *gin.Context) {
	identity := requestdata.GetIdentity(c.Request.Context())
	var req services.BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.Validation("invalid_body", "invalid request body"))
		return
	}
	deleted, err := h.contentService.BulkDeleteResources(c.Request.Context(), identity, req.IDs)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": deleted})
}
