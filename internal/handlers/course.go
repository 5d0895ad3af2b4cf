package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/platform/apierr"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/platform/logger"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/requestdata"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/services"
)

type CourseHandler struct {
	log             *logger.Logger
	courseService   services.CourseService
	progressService services.ProgressService
	certService     services.CertificateService
}

func NewCourseHandler(
	log *logger.Logger,
	courseService services.CourseService,
	progressService services.ProgressService,
	certService services.CertificateService,
) *CourseHandler {
	return &CourseHandler{
		log:             log.With("handler", "CourseHandler"),
		courseService:   courseService,
		progressService: progressService,
		certService:     certService,
	}
}

func (h *CourseHandler) Create(c *gin.Context) {
	identity := requestdata.GetIdentity(c.Request.Context())
	var req services.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.Validation("invalid_body", "invalid request body"))
		return
	}
	course, err := h.courseService.Create(c.Request.Context(), identity, req)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, course)
}

func (h *CourseHandler) List(c *gin.Context) {
	identity := requestdata.GetIdentity(c.Request.Context())
	courses, err := h.courseService.List(c.Request.Context(), identity)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, courses)
}

func (h *CourseHandler) Get(c *gin.Context) {
	identity := requestdata.GetIdentity(c.Request.Context())
	courseID, err := parseID(c, "id")
	if err != nil {
		RespondError(c, err)
		return
	}
	course, err := h.courseService.Get(c.Request.Context(), identity, courseID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, course)
}

func (h *CourseHandler) Update(c *gin.Context) {
	identity := requestdata.GetIdentity(c.Request.Context())
	courseID, err := parseID(c, "id")
	if err != nil {
		RespondError(c, err)
		return
	}
	var req services.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.Validation("invalid_body", "invalid request body"))
		return
	}
	course, err := h.courseService.Update(c.Request.Context(), identity, courseID, req)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, course)
}

func (h *CourseHandler) BulkDelete(c *gin.Context) {
	identity := requestdata.GetIdentity(c.Request.Context())
	var req services.BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.Validation("invalid_body", "invalid request body"))
		return
	}
	deleted, err := h.courseService.BulkDelete(c.Request.Context(), identity, req.IDs)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": deleted})
}

// Course actions: progress and certificates hang off a course id.

func (h *CourseHandler) UpdateProgress(c *gin.Context) {
	identity := requestdata.GetIdentity(c.Request.Context())
	courseID, err := parseID(c, "id")
	if err != nil {
		RespondError(c, err)
		return
	}
	var req services.UpdateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.Validation("invalid_body", "invalid request body"))
		return
	}
	progress, err := h.progressService.Update(c.Request.Context(), identity, courseID, req)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, progress)
}

func (h *CourseHandler) GetProgress(c *gin.Context) {
	identity := requestdata.GetIdentity(c.Request.Context())
	courseID, err := parseID(c, "id")
	if err != nil {
		RespondError(c, err)
		return
	}
	progress, err := h.progressService.Get(c.Request.Context(), identity, courseID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, progress)
}

// GenerateCertificate issues (or re-reads) the caller's certificate and
// responds with the rendered PNG document itself.
func (h *CourseHandler) GenerateCertificate(c *gin.Context) {
	identity := requestdata.GetIdentity(c.Request.Context())
	courseID, err := parseID(c, "id")
	if err != nil {
		RespondError(c, err)
		return
	}
	if _, err := h.certService.Generate(c.Request.Context(), identity, courseID); err != nil {
		RespondError(c, err)
		return
	}
	png, err := h.certService.Download(c.Request.Context(), identity, courseID)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="certificate.png"`)
	c.Data(200, "image/png", png)
}

func (h *CourseHandler) CertificateInfo(c *gin.Context) {
	identity := requestdata.GetIdentity(c.Request.Context())
	courseID, err := parseID(c, "id")
	if err != nil {
		RespondError(c, err)
		return
	}
	cert, err := h.certService.Info(c.Request.Context(), identity, courseID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, cert)
}

func (h *CourseHandler) DownloadCertificate(c *gin.Context) {
	identity := requestdata.GetIdentity(c.Request.Context())
	courseID, err := parseID(c, "id")
	if err != nil {
		RespondError(c, err)
		return
	}
	png, err := h.certService.Download(c.Request.Context(), identity, courseID)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="certificate.png"`)
	c.Data(200, "image/png", png)
}

// VerifyCertificate is public; no identity is required or consulted.
func (h *CourseHandler) VerifyCertificate(c *gin.Context) {
	number := c.Param("number")
	result, err := h.certService.Verify(c.Request.Context(), number)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, result)
}

func (h *CourseHandler) ListMyProgress(c *gin.Context) {
	identity := requestdata.GetIdentity(c.Request.Context())
	rows, err := h.progressService.ListMine(c.Request.Context(), identity)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, rows)
}

func (h *CourseHandler) ListMyCertificates(c *gin.Context) {
	identity := requestdata.GetIdentity(c.Request.Context())
	certs, err := h.certService.ListMine(c.Request.Context(), identity)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, certs)
}
