package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	redisclient "github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/clients/redis"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/platform/apierr"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/platform/logger"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/repos"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/requestdata"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/types"
)

type ProgressService interface {
	Update(ctx context.Context, id *requestdata.Identity, courseID uuid.UUID, req UpdateProgressRequest) (*ProgressDTO, error)
	Get(ctx context.Context, id *requestdata.Identity, courseID uuid.UUID) (*ProgressDTO, error)
	ListMine(ctx context.Context, id *requestdata.Identity) ([]ProgressDTO, error)
}

type progressService struct {
	db           *gorm.DB
	courseRepo   repos.CourseRepo
	progressRepo repos.CourseProgressRepo
	certRepo     repos.CertificateRepo
	access       AccessService
	certCache    *redisclient.CertCache
	log          *logger.Logger
}

func NewProgressService(
	db *gorm.DB,
	courseRepo repos.CourseRepo,
	progressRepo repos.CourseProgressRepo,
	certRepo repos.CertificateRepo,
	access AccessService,
	certCache *redisclient.CertCache,
	baseLog *logger.Logger,
) ProgressService {
	return &progressService{
		db:           db,
		courseRepo:   courseRepo,
		progressRepo: progressRepo,
		certRepo:     certRepo,
		access:       access,
		certCache:    certCache,
		log:          baseLog.With("service", "ProgressService"),
	}
}

// Update records the student's latest score snapshot for a course.
// Totals must be positive; an obtained score above the total is clamped
// down to it rather than rejected.
func (s *progressService) Update(ctx context.Context, id *requestdata.Identity, courseID uuid.UUID, req UpdateProgressRequest) (*ProgressDTO, error) {
	if id == nil {
		return nil, apierr.Permission("not_authenticated", "authentication required")
	}
	if !id.IsStudent() {
		return nil, apierr.Permission("forbidden", "only students track progress")
	}
	if req.TotalScore <= 0 {
		return nil, apierr.Validation("invalid_total", "totalScore must be greater than zero")
	}
	if req.ObtainedScore < 0 {
		return nil, apierr.Validation("invalid_obtained", "obtainedScore cannot be negative")
	}

	course, err := s.courseRepo.GetByID(ctx, nil, courseID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, apierr.NotFound("course_not_found", "course %s not found", courseID)
	}
	visible, err := s.access.CanReadCourse(ctx, nil, id, course)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, apierr.NotFound("course_not_found", "course %s not found", courseID)
	}

	obtained := req.ObtainedScore
	if obtained > req.TotalScore {
		obtained = req.TotalScore
	}
	row := &types.CourseProgress{
		StudentID:     id.UserID,
		CourseID:      courseID,
		ObtainedScore: obtained,
		TotalScore:    req.TotalScore,
		IsCompleted:   obtained >= req.TotalScore,
	}
	if err := s.progressRepo.Upsert(ctx, nil, row); err != nil {
		return nil, err
	}

	// Verification snapshots read scores live; drop any cached copy.
	if cert, err := s.certRepo.GetByStudentCourse(ctx, nil, id.UserID, courseID); err == nil && cert != nil {
		s.certCache.Invalidate(ctx, cert.CertificateNumber)
	}

	s.log.Info("Progress updated",
		"courseId", courseID.String(),
		"studentId", id.UserID.String(),
		"completed", row.IsCompleted)
	dto := progressDTO(row)
	return &dto, nil
}

func (s *progressService) Get(ctx context.Context, id *requestdata.Identity, courseID uuid.UUID) (*ProgressDTO, error) {
	if id == nil {
		return nil, apierr.Permission("not_authenticated", "authentication required")
	}
	row, err := s.progressRepo.GetByStudentCourse(ctx, nil, id.UserID, courseID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, apierr.NotFound("progress_not_found", "no progress recorded for course %s", courseID)
	}
	dto := progressDTO(row)
	return &dto, nil
}

func (s *progressService) ListMine(ctx context.Context, id *requestdata.Identity) ([]ProgressDTO, error) {
	if id == nil {
		return nil, apierr.Permission("not_authenticated", "authentication required")
	}
	rows, err := s.progressRepo.ListByStudent(ctx, nil, id.UserID)
	if err != nil {
		return nil, err
	}
	out := make([]ProgressDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, progressDTO(row))
	}
	return out, nil
}
