package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/platform/logger"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/types"
)

type EnrollmentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, enrollment *types.ClassEnrollment) error
	Exists(ctx context.Context, tx *gorm.DB, studentID, classID uuid.UUID) (bool, error)
	CountByClass(ctx context.Context, tx *gorm.DB, classID uuid.UUID) (int64, error)
	ClassIDsForStudent(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) ([]uuid.UUID, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.ClassEnrollment, error)
	ListByClassIDs(ctx context.Context, tx *gorm.DB, classIDs []uuid.UUID) ([]*types.ClassEnrollment, error)
	ListByStudent(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) ([]*types.ClassEnrollment, error)
	DeleteByClassIDs(ctx context.Context, tx *gorm.DB, classIDs []uuid.UUID) error
}

type enrollmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEnrollmentRepo(db *gorm.DB, baseLog *logger.Logger) EnrollmentRepo {
	return &enrollmentRepo{db: db, log: baseLog.With("repo", "EnrollmentRepo")}
}

func (r *enrollmentRepo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *enrollmentRepo) Create(ctx context.Context, tx *gorm.DB, enrollment *types.ClassEnrollment) error {
	return r.handle(tx).WithContext(ctx).Create(enrollment).Error
}

func (r *enrollmentRepo) Exists(ctx context.Context, tx *gorm.DB, studentID, classID uuid.UUID) (bool, error) {
	var count int64
	err := r.handle(tx).WithContext(ctx).
		Model(&types.ClassEnrollment{}).
		Where("student_id = ? AND teacher_class_id = ?", studentID, classID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *enrollmentRepo) CountByClass(ctx context.Context, tx *gorm.DB, classID uuid.UUID) (int64, error) {
	var count int64
	err := r.handle(tx).WithContext(ctx).
		Model(&types.ClassEnrollment{}).
		Where("teacher_class_id = ?", classID).
		Count(&count).Error
	return count, err
}

func (r *enrollmentRepo) ClassIDsForStudent(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.handle(tx).WithContext(ctx).
		Model(&types.ClassEnrollment{}).
		Where("student_id = ?", studentID).
		Pluck("teacher_class_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *enrollmentRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.ClassEnrollment, error) {
	var enrollments []*types.ClassEnrollment
	err := r.handle(tx).WithContext(ctx).
		Preload("Student").
		Preload("TeacherClass").
		Order("enrolled_at desc").
		Find(&enrollments).Error
	if err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (r *enrollmentRepo) ListByClassIDs(ctx context.Context, tx *gorm.DB, classIDs []uuid.UUID) ([]*types.ClassEnrollment, error) {
	var enrollments []*types.ClassEnrollment
	if len(classIDs) == 0 {
		return enrollments, nil
	}
	err := r.handle(tx).WithContext(ctx).
		Preload("Student").
		Preload("TeacherClass").
		Where("teacher_class_id IN ?", classIDs).
		Order("enrolled_at desc").
		Find(&enrollments).Error
	if err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (r *enrollmentRepo) ListByStudent(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) ([]*types.ClassEnrollment, error) {
	var enrollments []*types.ClassEnrollment
	err := r.handle(tx).WithContext(ctx).
		Preload("Student").
		Preload("TeacherClass").
		Where("student_id = ?", studentID).
		Order("enrolled_at desc").
		Find(&enrollments).Error
	if err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (r *enrollmentRepo) DeleteByClassIDs(ctx context.Context, tx *gorm.DB, classIDs []uuid.UUID) error {
	if len(classIDs) == 0 {
		return nil
	}
	return r.handle(tx).WithContext(ctx).Where("teacher_class_id IN ?", classIDs).Delete(&types.ClassEnrollment{}).Error
}
