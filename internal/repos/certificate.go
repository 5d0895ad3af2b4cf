package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/platform/logger"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/types"
)

type CertificateRepo interface {
	Create(ctx context.Context, tx *gorm.DB, cert *types.Certificate) error
	GetByStudentCourse(ctx context.Context, tx *gorm.DB, studentID, courseID uuid.UUID) (*types.Certificate, error)
	GetByNumber(ctx context.Context, tx *gorm.DB, number string) (*types.Certificate, error)
	ListByStudent(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) ([]*types.Certificate, error)
	DeleteByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) error
}

type certificateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCertificateRepo(db *gorm.DB, baseLog *logger.Logger) CertificateRepo {
	return &certificateRepo{db: db, log: baseLog.With("repo", "CertificateRepo")}
}

func (r *certificateRepo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// Create inserts and surfaces gorm.ErrDuplicatedKey untouched so the
// service can treat a concurrent issuance as "already issued".
func (r *certificateRepo) Create(ctx context.Context, tx *gorm.DB, cert *types.Certificate) error {
	return r.handle(tx).WithContext(ctx).Create(cert).Error
}

func (r *certificateRepo) GetByStudentCourse(ctx context.Context, tx *gorm.DB, studentID, courseID uuid.UUID) (*types.Certificate, error) {
	var cert types.Certificate
	err := r.handle(tx).WithContext(ctx).
		Preload("Student").
		Preload("Course").
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		First(&cert).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cert, nil
}

func (r *certificateRepo) GetByNumber(ctx context.Context, tx *gorm.DB, number string) (*types.Certificate, error) {
	var cert types.Certificate
	err := r.handle(tx).WithContext(ctx).
		Preload("Student").
		Preload("Course").
		Where("certificate_number = ?", number).
		First(&cert).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cert, nil
}

func (r *certificateRepo) ListByStudent(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) ([]*types.Certificate, error) {
	var certs []*types.Certificate
	err := r.handle(tx).WithContext(ctx).
		Preload("Course").
		Where("student_id = ?", studentID).
		Order("issued_at desc").
		Find(&certs).Error
	if err != nil {
		return nil, err
	}
	return certs, nil
}

func (r *certificateRepo) DeleteByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) error {
	if len(courseIDs) == 0 {
		return nil
	}
	return r.handle(tx).WithContext(ctx).Where("course_id IN ?", courseIDs).Delete(&types.Certificate{}).Error
}
