package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/platform/apierr"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/platform/logger"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/repos"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/requestdata"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/types"
)

const (
	classCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	classCodeLength   = 6
	classCodeAttempts = 5
)

type ClassService interface {
	Create(ctx context.Context, id *requestdata.Identity, req CreateClassRequest) (*ClassDTO, error)
	List(ctx context.Context, id *requestdata.Identity) ([]ClassDTO, error)
	Get(ctx context.Context, id *requestdata.Identity, classID uuid.UUID) (*ClassDTO, error)
	Update(ctx context.Context, id *requestdata.Identity, classID uuid.UUID, req UpdateClassRequest) (*ClassDTO, error)
	BulkDelete(ctx context.Context, id *requestdata.Identity, classIDs []uuid.UUID) (int64, error)
	Enroll(ctx context.Context, id *requestdata.Identity, classCode string) (*EnrollmentDTO, error)
	ListEnrollments(ctx context.Context, id *requestdata.Identity) ([]EnrollmentDTO, error)
}

type classService struct {
	db         *gorm.DB
	classRepo  repos.TeacherClassRepo
	enrollRepo repos.EnrollmentRepo
	access     AccessService
	log        *logger.Logger
}

func NewClassService(
	db *gorm.DB,
	classRepo repos.TeacherClassRepo,
	enrollRepo repos.EnrollmentRepo,
	access AccessService,
	baseLog *logger.Logger,
) ClassService {
	return &classService{
		db:         db,
		classRepo:  classRepo,
		enrollRepo: enrollRepo,
		access:     access,
		log:        baseLog.With("service", "ClassService"),
	}
}

// GenerateClassCode mints a 6-character code over A-Z and 0-9 using
// crypto/rand.
func GenerateClassCode() (string, error) {
	var b strings.Builder
	for i := 0; i < classCodeLength; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(classCodeAlphabet))))
		if err != nil {
			return "", fmt.Errorf("failed to generate class code: %w", err)
		}
		b.WriteByte(classCodeAlphabet[n.Int64()])
	}
	return b.String(), nil
}

func (s *classService) Create(ctx context.Context, id *requestdata.Identity, req CreateClassRequest) (*ClassDTO, error) {
	if id == nil {
		return nil, apierr.Permission("not_authenticated", "authentication required")
	}
	if !id.IsTeacher() && !id.IsAdmin() {
		return nil, apierr.Permission("forbidden", "only teachers create classes")
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, apierr.Validation("missing_name", "class name is required")
	}
	if req.Capacity != nil && *req.Capacity <= 0 {
		return nil, apierr.Validation("invalid_capacity", "capacity must be positive")
	}

	class := &types.TeacherClass{
		TeacherID:   id.UserID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Duration:    req.Duration,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Capacity:    req.Capacity,
	}

	// The unique index is the arbiter: on a code collision regenerate and
	// insert again rather than check-then-insert.
	var lastErr error
	for attempt := 0; attempt < classCodeAttempts; attempt++ {
		code, err := GenerateClassCode()
		if err != nil {
			return nil, err
		}
		class.ID = uuid.New()
		class.ClassCode = code
		lastErr = s.classRepo.Create(ctx, nil, class)
		if lastErr == nil {
			break
		}
		if !errors.Is(lastErr, gorm.ErrDuplicatedKey) {
			return nil, lastErr
		}
	}
	if lastErr != nil {
		return nil, fmt.Errorf("failed to allocate a unique class code: %w", lastErr)
	}

	s.log.Info("Created class", "classId", class.ID.String(), "code", class.ClassCode)
	created, err := s.classRepo.GetByID(ctx, nil, class.ID)
	if err != nil {
		return nil, err
	}
	dto := classDTO(created, 0)
	return &dto, nil
}

func (s *classService) List(ctx context.Context, id *requestdata.Identity) ([]ClassDTO, error) {
	if id == nil {
		return nil, apierr.Permission("not_authenticated", "authentication required")
	}

	var classes []*types.TeacherClass
	var err error
	switch {
	case id.IsAdmin():
		classes, err = s.classRepo.List(ctx, nil)
	case id.IsTeacher():
		classes, err = s.classRepo.ListByTeacher(ctx, nil, id.UserID)
	default:
		classIDs, cerr := s.enrollRepo.ClassIDsForStudent(ctx, nil, id.UserID)
		if cerr != nil {
			return nil, cerr
		}
		classes, err = s.classRepo.GetByIDs(ctx, nil, classIDs)
	}
	if err != nil {
		return nil, err
	}

	out := make([]ClassDTO, 0, len(classes))
	for _, class := range classes {
		count, err := s.enrollRepo.CountByClass(ctx, nil, class.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, classDTO(class, count))
	}
	return out, nil
}

func (s *classService) Get(ctx context.Context, id *requestdata.Identity, classID uuid.UUID) (*ClassDTO, error) {
	if id == nil {
		return nil, apierr.Permission("not_authenticated", "authentication required")
	}
	class, err := s.classRepo.GetByID(ctx, nil, classID)
	if err != nil {
		return nil, err
	}
	if class == nil {
		return nil, apierr.NotFound("class_not_found", "class %s not found", classID)
	}

	visible := id.IsAdmin() || (id.IsTeacher() && class.TeacherID == id.UserID)
	if !visible && id.IsStudent() {
		visible, err = s.enrollRepo.Exists(ctx, nil, id.UserID, classID)
		if err != nil {
			return nil, err
		}
	}
	if !visible {
		return nil, apierr.NotFound("class_not_found", "class %s not found", classID)
	}

	count, err := s.enrollRepo.CountByClass(ctx, nil, classID)
	if err != nil {
		return nil, err
	}
	dto := classDTO(class, count)
	return &dto, nil
}

func (s *classService) Update(ctx context.Context, id *requestdata.Identity, classID uuid.UUID, req UpdateClassRequest) (*ClassDTO, error) {
	var dto ClassDTO
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		class, err := s.classRepo.GetByID(ctx, tx, classID)
		if err != nil {
			return err
		}
		if class == nil {
			return apierr.NotFound("class_not_found", "class %s not found", classID)
		}
		if err := s.access.AuthorizeClassWrite(ctx, id, class); err != nil {
			return err
		}

		if req.Name != nil {
			if strings.TrimSpace(*req.Name) == "" {
				return apierr.Validation("missing_name", "class name is required")
			}
			class.Name = strings.TrimSpace(*req.Name)
		}
		if req.Description != nil {
			class.Description = *req.Description
		}
		if req.Duration != nil {
			class.Duration = *req.Duration
		}
		if req.StartDate != nil {
			class.StartDate = req.StartDate
		}
		if req.EndDate != nil {
			class.EndDate = req.EndDate
		}
		if req.Capacity != nil {
			if *req.Capacity <= 0 {
				return apierr.Validation("invalid_capacity", "capacity must be positive")
			}
			class.Capacity = req.Capacity
		}
		if err := s.classRepo.Save(ctx, tx, class); err != nil {
			return err
		}
		count, err := s.enrollRepo.CountByClass(ctx, tx, classID)
		if err != nil {
			return err
		}
		dto = classDTO(class, count)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dto, nil
}

// BulkDelete checks ownership of every class before touching any row.
func (s *classService) BulkDelete(ctx context.Context, id *requestdata.Identity, classIDs []uuid.UUID) (int64, error) {
	if len(classIDs) == 0 {
		return 0, apierr.Validation("missing_ids", "ids is required")
	}
	var deleted int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		classes, err := s.classRepo.GetByIDs(ctx, tx, classIDs)
		if err != nil {
			return err
		}
		if len(classes) != len(classIDs) {
			return apierr.NotFound("class_not_found", "one or more classes do not exist")
		}
		for _, class := range classes {
			if err := s.access.AuthorizeClassWrite(ctx, id, class); err != nil {
				return err
			}
		}
		if err := s.enrollRepo.DeleteByClassIDs(ctx, tx, classIDs); err != nil {
			return err
		}
		deleted, err = s.classRepo.DeleteByIDs(ctx, tx, classIDs)
		return err
	})
	if err != nil {
		return 0, err
	}
	s.log.Info("Deleted classes", "count", deleted)
	return deleted, nil
}

// Enroll joins the calling student to the class named by the code. The
// unique (student, class) index turns a concurrent double-join into a
// conflict instead of a duplicate row.
func (s *classService) Enroll(ctx context.Context, id *requestdata.Identity, classCode string) (*EnrollmentDTO, error) {
	if id == nil {
		return nil, apierr.Permission("not_authenticated", "authentication required")
	}
	if !id.IsStudent() {
		return nil, apierr.Permission("forbidden", "only students enroll in classes")
	}
	classCode = strings.ToUpper(strings.TrimSpace(classCode))
	if classCode == "" {
		return nil, apierr.Validation("missing_class_code", "classCode is required")
	}

	class, err := s.classRepo.GetByCode(ctx, nil, classCode)
	if err != nil {
		return nil, err
	}
	if class == nil {
		return nil, apierr.NotFound("class_not_found", "no class matches that code")
	}

	if class.Capacity != nil {
		count, err := s.enrollRepo.CountByClass(ctx, nil, class.ID)
		if err != nil {
			return nil, err
		}
		if count >= int64(*class.Capacity) {
			return nil, apierr.Conflict("class_full", "class %q is full", class.Name)
		}
	}

	enrollment := &types.ClassEnrollment{
		ID:             uuid.New(),
		StudentID:      id.UserID,
		TeacherClassID: class.ID,
	}
	if err := s.enrollRepo.Create(ctx, nil, enrollment); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierr.Conflict("already_enrolled", "already enrolled in class %q", class.Name)
		}
		return nil, err
	}
	s.log.Info("Student enrolled", "classId", class.ID.String(), "studentId", id.UserID.String())

	enrollment.TeacherClass = class
	dto := enrollmentDTO(enrollment)
	dto.StudentUsername = id.Username
	return &dto, nil
}

func (s *classService) ListEnrollments(ctx context.Context, id *requestdata.Identity) ([]EnrollmentDTO, error) {
	if id == nil {
		return nil, apierr.Permission("not_authenticated", "authentication required")
	}

	var enrollments []*types.ClassEnrollment
	var err error
	switch {
	case id.IsAdmin():
		enrollments, err = s.enrollRepo.List(ctx, nil)
	case id.IsTeacher():
		classes, cerr := s.classRepo.ListByTeacher(ctx, nil, id.UserID)
		if cerr != nil {
			return nil, cerr
		}
		classIDs := make([]uuid.UUID, 0, len(classes))
		for _, class := range classes {
			classIDs = append(classIDs, class.ID)
		}
		enrollments, err = s.enrollRepo.ListByClassIDs(ctx, nil, classIDs)
	default:
		enrollments, err = s.enrollRepo.ListByStudent(ctx, nil, id.UserID)
	}
	if err != nil {
		return nil, err
	}

	out := make([]EnrollmentDTO, 0, len(enrollments))
	for _, enrollment := range enrollments {
		out = append(out, enrollmentDTO(enrollment))
	}
	return out, nil
}
