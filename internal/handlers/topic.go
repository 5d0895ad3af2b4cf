package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/platform/apierr"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/platform/logger"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/requestdata"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/services"
)

type TopicHandler struct {
	log          *logger.Logger
	topicService services.TopicService
}

func NewTopicHandler(log *logger.Logger, topicService services.TopicService) *TopicHandler {
	return &TopicHandler{log: log.With("handler", "TopicHandler"), topicService: topicService}
}

func (h *TopicHandler) Create(c *gin.Context) {
	identity := requestdata.GetIdentity(c.Request.Context())
	var req services.CreateTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.Validation("invalid_body", "invalid request body"))
		return
	}
	topic, err := h.topicService.Create(c.Request.Context(), identity, req)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, topic)
}

func (h *TopicHandler) Get(c *gin.Context) {
	identity := requestdata.GetIdentity(c.Request.Context())
	topicID, err := parseID(c, "id")
	if err != nil {
		RespondError(c, err)
		return
	}
	topic, err := h.topicService.Get(c.Request.Context(), identity, topicID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, topic)
}

func (h *TopicHandler) Update(c *gin.Context) {
	identity := requestdata.GetIdentity(c.Request.Context())
	topicID, err := parseID(c, "id")
	if err != nil {
		RespondError(c, err)
		return
	}
	var req services.UpdateTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.Validation("invalid_body", "invalid request body"))
		return
	}
	topic, err := h.topicService.Update(c.Request.Context(), identity, topicID, req)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, topic)
}

func (h *TopicHandler) BulkDelete(c *gin.Context) {
	identity := requestdata.GetIdentity(c.Request.Context())
	var req services.BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.Validation("invalid_body", "invalid request body"))
		return
	}
	deleted, err := h.topicService.BulkDelete(c.Request.Context(), identity, req.IDs)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": deleted})
}
