package services

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	redisclient "github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/clients/redis"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/platform/apierr"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/platform/logger"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/repos"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/requestdata"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/types"
)

const (
	certNumberAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	certNumberSuffix   = 6
	certNumberAttempts = 5
)

type CertificateService interface {
	// Generate issues the caller's certificate for a course. Completion
	// is not required: a student with no progress row gets one created
	// at zero. Calling it again returns the original certificate
	// unchanged.
	Generate(ctx context.Context, id *requestdata.Identity, courseID uuid.UUID) (*CertificateDTO, error)
	Info(ctx context.Context, id *requestdata.Identity, courseID uuid.UUID) (*CertificateDTO, error)
	ListMine(ctx context.Context, id *requestdata.Identity) ([]CertificateDTO, error)
	// Verify is public: anyone holding a certificate number can check it.
	Verify(ctx context.Context, number string) (*CertificateVerificationDTO, error)
	// Download renders the certificate as a PNG.
	Download(ctx context.Context, id *requestdata.Identity, courseID uuid.UUID) ([]byte, error)
}

type certificateService struct {
	db           *gorm.DB
	courseRepo   repos.CourseRepo
	progressRepo repos.CourseProgressRepo
	certRepo     repos.CertificateRepo
	enrollRepo   repos.EnrollmentRepo
	certCache    *redisclient.CertCache
	log          *logger.Logger
}

func NewCertificateService(
	db *gorm.DB,
	courseRepo repos.CourseRepo,
	progressRepo repos.CourseProgressRepo,
	certRepo repos.CertificateRepo,
	enrollRepo repos.EnrollmentRepo,
	certCache *redisclient.CertCache,
	baseLog *logger.Logger,
) CertificateService {
	return &certificateService{
		db:           db,
		courseRepo:   courseRepo,
		progressRepo: progressRepo,
		certRepo:     certRepo,
		enrollRepo:   enrollRepo,
		certCache:    certCache,
		log:          baseLog.With("service", "CertificateService"),
	}
}

// GenerateCertificateNumber mints "CH-YYYYMMDD-XXXXXX" with a random
// suffix over A-Z and 0-9.
func GenerateCertificateNumber(issued time.Time) (string, error) {
	var b strings.Builder
	for i := 0; i < certNumberSuffix; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(certNumberAlphabet))))
		if err != nil {
			return "", fmt.Errorf("failed to generate certificate number: %w", err)
		}
		b.WriteByte(certNumberAlphabet[n.Int64()])
	}
	return fmt.Sprintf("CH-%s-%s", issued.Format("20060102"), b.String()), nil
}

func (s *certificateService) Generate(ctx context.Context, id *requestdata.Identity, courseID uuid.UUID) (*CertificateDTO, error) {
	if id == nil {
		return nil, apierr.Permission("not_authenticated", "authentication required")
	}
	if !id.IsStudent() {
		return nil, apierr.Permission("forbidden", "only students earn certificates")
	}

	course, err := s.courseRepo.GetByID(ctx, nil, courseID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, apierr.NotFound("course_not_found", "course %s not found", courseID)
	}
	if course.TeacherClassID != nil {
		enrolled, err := s.enrollRepo.Exists(ctx, nil, id.UserID, *course.TeacherClassID)
		if err != nil {
			return nil, err
		}
		if !enrolled {
			return nil, apierr.Permission("not_enrolled", "you must be enrolled in this course's class to generate a certificate")
		}
	}

	existing, err := s.certRepo.GetByStudentCourse(ctx, nil, id.UserID, courseID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		dto := certificateDTO(existing)
		return &dto, nil
	}

	// Completion is not a precondition. A student with no progress row
	// gets one created at zero so verification always has scores to
	// report.
	progress, err := s.progressRepo.GetByStudentCourse(ctx, nil, id.UserID, courseID)
	if err != nil {
		return nil, err
	}
	if progress == nil {
		progress = &types.CourseProgress{
			ID:        uuid.New(),
			StudentID: id.UserID,
			CourseID:  courseID,
		}
		if err := s.progressRepo.Upsert(ctx, nil, progress); err != nil {
			return nil, err
		}
	}

	// Insert under the (student, course) unique index; losing a race
	// means someone else issued it first, so return their row.
	var lastErr error
	for attempt := 0; attempt < certNumberAttempts; attempt++ {
		number, err := GenerateCertificateNumber(time.Now())
		if err != nil {
			return nil, err
		}
		cert := &types.Certificate{
			ID:                uuid.New(),
			StudentID:         id.UserID,
			CourseID:          courseID,
			CertificateNumber: number,
		}
		lastErr = s.certRepo.Create(ctx, nil, cert)
		if lastErr == nil {
			s.log.Info("Issued certificate", "number", number, "courseId", courseID.String())
			issued, err := s.certRepo.GetByStudentCourse(ctx, nil, id.UserID, courseID)
			if err != nil {
				return nil, err
			}
			dto := certificateDTO(issued)
			return &dto, nil
		}
		if !errors.Is(lastErr, gorm.ErrDuplicatedKey) {
			return nil, lastErr
		}
		winner, err := s.certRepo.GetByStudentCourse(ctx, nil, id.UserID, courseID)
		if err != nil {
			return nil, err
		}
		if winner != nil {
			dto := certificateDTO(winner)
			return &dto, nil
		}
		// Number collision with another student's certificate: retry with
		// a fresh suffix.
	}
	return nil, fmt.Errorf("failed to allocate a unique certificate number: %w", lastErr)
}

func (s *certificateService) Info(ctx context.Context, id *requestdata.Identity, courseID uuid.UUID) (*CertificateDTO, error) {
	if id == nil {
		return nil, apierr.Permission("not_authenticated", "authentication required")
	}
	cert, err := s.certRepo.GetByStudentCourse(ctx, nil, id.UserID, courseID)
	if err != nil {
		return nil, err
	}
	if cert == nil {
		return nil, apierr.NotFound("certificate_not_found", "no certificate issued for course %s", courseID)
	}
	dto := certificateDTO(cert)
	return &dto, nil
}

func (s *certificateService) ListMine(ctx context.Context, id *requestdata.Identity) ([]CertificateDTO, error) {
	if id == nil {
		return nil, apierr.Permission("not_authenticated", "authentication required")
	}
	certs, err := s.certRepo.ListByStudent(ctx, nil, id.UserID)
	if err != nil {
		return nil, err
	}
	out := make([]CertificateDTO, 0, len(certs))
	for _, cert := range certs {
		out = append(out, certificateDTO(cert))
	}
	return out, nil
}

// Verify serves the public snapshot: identity, course, issuance date and
// the student's current scores. Scores are read live, so later progress
// updates show through.
func (s *certificateService) Verify(ctx context.Context, number string) (*CertificateVerificationDTO, error) {
	number = strings.ToUpper(strings.TrimSpace(number))
	if number == "" {
		return nil, apierr.Validation("missing_number", "certificateNumber is required")
	}

	if payload, ok := s.certCache.Get(ctx, number); ok {
		var cached CertificateVerificationDTO
		if err := json.Unmarshal(payload, &cached); err == nil {
			return &cached, nil
		}
	}

	cert, err := s.certRepo.GetByNumber(ctx, nil, number)
	if err != nil {
		return nil, err
	}
	if cert == nil {
		return nil, apierr.NotFound("certificate_not_found", "no certificate matches %q", number)
	}

	dto := &CertificateVerificationDTO{
		Valid:             true,
		CertificateNumber: cert.CertificateNumber,
		CertificateStatus: "Valid and Active",
		IssuedAt:          cert.IssuedAt,
	}
	if cert.Student != nil {
		dto.StudentName = cert.Student.DisplayName()
	}
	if cert.Course != nil {
		dto.CourseTitle = cert.Course.Title
	}
	progress, err := s.progressRepo.GetByStudentCourse(ctx, nil, cert.StudentID, cert.CourseID)
	if err != nil {
		return nil, err
	}
	if progress != nil {
		dto.ObtainedScore = progress.ObtainedScore
		dto.TotalScore = progress.TotalScore
		dto.Percentage = progress.Percentage()
		dto.IsCompleted = progress.IsCompleted
	}

	if payload, err := json.Marshal(dto); err == nil {
		s.certCache.Set(ctx, number, payload)
	}
	return dto, nil
}

func (s *certificateService) Download(ctx context.Context, id *requestdata.Identity, courseID uuid.UUID) ([]byte, error) {
	if id == nil {
		return nil, apierr.Permission("not_authenticated", "authentication required")
	}
	cert, err := s.certRepo.GetByStudentCourse(ctx, nil, id.UserID, courseID)
	if err != nil {
		return nil, err
	}
	if cert == nil {
		return nil, apierr.NotFound("certificate_not_found", "no certificate issued for course %s", courseID)
	}

	data := certificateRenderData{
		Number:   cert.CertificateNumber,
		IssuedAt: cert.IssuedAt,
	}
	if cert.Student != nil {
		data.StudentName = cert.Student.DisplayName()
	}
	if cert.Course != nil {
		data.CourseTitle = cert.Course.Title
	}
	return renderCertificatePNG(data)
}
