package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/platform/logger"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/types"
)

type CourseModuleRepo interface {
	Create(ctx context.Context, tx *gorm.DB, module *types.CourseModule) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.CourseModule, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.CourseModule, error)
	ListByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) ([]*types.CourseModule, error)
	Save(ctx context.Context, tx *gorm.DB, module *types.CourseModule) error
	DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (int64, error)
	DeleteByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) error
}

type courseModuleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseModuleRepo(db *gorm.DB, baseLog *logger.Logger) CourseModuleRepo {
	return &courseModuleRepo{db: db, log: baseLog.With("repo", "CourseModuleRepo")}
}

func (r *courseModuleRepo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *courseModuleRepo) Create(ctx context.Context, tx *gorm.DB, module *types.CourseModule) error {
	return r.handle(tx).WithContext(ctx).Create(module).Error
}

func (r *courseModuleRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.CourseModule, error) {
	var module types.CourseModule
	err := r.handle(tx).WithContext(ctx).Where("id = ?", id).First(&module).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &module, nil
}

func (r *courseModuleRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.CourseModule, error) {
	var modules []*types.CourseModule
	if len(ids) == 0 {
		return modules, nil
	}
	if err := r.handle(tx).WithContext(ctx).Where("id IN ?", ids).Find(&modules).Error; err != nil {
		return nil, err
	}
	return modules, nil
}

func (r *courseModuleRepo) ListByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) ([]*types.CourseModule, error) {
	var modules []*types.CourseModule
	if len(courseIDs) == 0 {
		return modules, nil
	}
	err := r.handle(tx).WithContext(ctx).
		Where("course_id IN ?", courseIDs).
		Order("sort_order, created_at").
		Find(&modules).Error
	if err != nil {
		return nil, err
	}
	return modules, nil
}

func (r *courseModuleRepo) Save(ctx context.Context, tx *gorm.DB, module *types.CourseModule) error {
	return r.handle(tx).WithContext(ctx).Save(module).Error
}

func (r *courseModuleRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.handle(tx).WithContext(ctx).Where("id IN ?", ids).Delete(&types.CourseModule{})
	return res.RowsAffected, res.Error
}

func (r *courseModuleRepo) DeleteByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) error {
	if len(courseIDs) == 0 {
		return nil
	}
	return r.handle(tx).WithContext(ctx).Where("course_id IN ?", courseIDs).Delete(&types.CourseModule{}).Error
}
