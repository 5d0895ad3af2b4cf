package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/platform/logger"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/types"
)

type CourseRepo interface {
	Create(ctx context.Context, tx *gorm.DB, course *types.Course) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Course, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Course, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.Course, error)
	ListVisible(ctx context.Context, tx *gorm.DB, classIDs []uuid.UUID) ([]*types.Course, error)
	Save(ctx context.Context, tx *gorm.DB, course *types.Course) error
	DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (int64, error)
}

type courseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	return &courseRepo{db: db, log: baseLog.With("repo", "CourseRepo")}
}

func (r *courseRepo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *courseRepo) Create(ctx context.Context, tx *gorm.DB, course *types.Course) error {
	return r.handle(tx).WithContext(ctx).Create(course).Error
}

func (r *courseRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Course, error) {
	var course types.Course
	err := r.handle(tx).WithContext(ctx).
		Preload("TeacherClass").
		Preload("TeacherClass.Teacher").
		Where("id = ?", id).
		First(&course).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &course, nil
}

func (r *courseRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Course, error) {
	var courses []*types.Course
	if len(ids) == 0 {
		return courses, nil
	}
	err := r.handle(tx).WithContext(ctx).
		Preload("TeacherClass").
		Where("id IN ?", ids).
		Find(&courses).Error
	if err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *courseRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Course, error) {
	var courses []*types.Course
	err := r.handle(tx).WithContext(ctx).
		Preload("TeacherClass").
		Preload("TeacherClass.Teacher").
		Order("created_at desc").
		Find(&courses).Error
	if err != nil {
		return nil, err
	}
	return courses, nil
}

// ListVisible returns the global catalogue (nil class) plus any courses
// attached to the given classes.
func (r *courseRepo) ListVisible(ctx context.Context, tx *gorm.DB, classIDs []uuid.UUID) ([]*types.Course, error) {
	var courses []*types.Course
	q := r.handle(tx).WithContext(ctx).
		Preload("TeacherClass").
		Preload("TeacherClass.Teacher").
		Order("created_at desc")
	if len(classIDs) == 0 {
		q = q.Where("teacher_class_id IS NULL")
	} else {
		q = q.Where("teacher_class_id IS NULL OR teacher_class_id IN ?", classIDs)
	}
	if err := q.Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *courseRepo) Save(ctx context.Context, tx *gorm.DB, course *types.Course) error {
	return r.handle(tx).WithContext(ctx).Save(course).Error
}

func (r *courseRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.handle(tx).WithContext(ctx).Where("id IN ?", ids).Delete(&types.Course{})
	return res.RowsAffected, res.Error
}
