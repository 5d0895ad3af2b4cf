package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/platform/apierr"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/platform/logger"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/requestdata"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/services"
)

type ModuleHandler struct {
	log           *logger.Logger
	moduleService services.ModuleService
}

func NewModuleHandler(log *logger.Logger, moduleService services.ModuleService) *ModuleHandler {
	return &ModuleHandler{log: log.With("handler", "ModuleHandler"), moduleService: moduleService}
}

func (h *ModuleHandler) Create(c *gin.Context) {
	identity := requestdata.GetIdentity(c.Request.Context())
	var req services.CreateModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.Validation("invalid_body", "invalid request body"))
		return
	}
	module, err := h.moduleService.Create(c.Request.Context(), identity, req)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, module)
}

func (h *ModuleHandler) Get(c *gin.Context) {
	identity := requestdata.GetIdentity(c.Request.Context())
	moduleID, err := parseID(c, "id")
	if err != nil {
		RespondError(c, err)
		return
	}
	module, err := h.moduleService.Get(c.Request.Context(), identity, moduleID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, module)
}

func (h *ModuleHandler) Update(c *gin.Context) {
	identity := requestdata.GetIdentity(c.Request.Context())
	moduleID, err := parseID(c, "id")
	if err != nil {
		RespondError(c, err)
		return
	}
	var req services.UpdateModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.Validation("invalid_body", "invalid request body"))
		return
	}
	module, err := h.moduleService.Update(c.Request.Context(), identity, moduleID, req)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, module)
}

func (h *ModuleHandler) BulkDelete(c *gin.Context) {
	identity := requestdata.GetIdentity(c.Request.Context())
	var req services.BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.Validation("invalid_body", "invalid request body"))
		return
	}
	deleted, err := h.moduleService.BulkDelete(c.Request.Context(), identity, req.IDs)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": deleted})
}
