package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/platform/logger"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/types"
)

type ResourceRepo interface {
	CreateBatch(ctx context.Context, tx *gorm.DB, resources []*types.Resource) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Resource, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Resource, error)
	ListByLessonIDs(ctx context.Context, tx *gorm.DB, lessonIDs []uuid.UUID) ([]*types.Resource, error)
	ListByTopicIDs(ctx context.Context, tx *gorm.DB, topicIDs []uuid.UUID) ([]*types.Resource, error)
	Save(ctx context.Context, tx *gorm.DB, resource *types.Resource) error
	DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (int64, error)
	DeleteByOwners(ctx context.Context, tx *gorm.DB, lessonIDs, topicIDs []uuid.UUID) error
}

type resourceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewResourceRepo(db *gorm.DB, baseLog *logger.Logger) ResourceRepo {
	return &resourceRepo{db: db, log: baseLog.With("repo", "ResourceRepo")}
}

func (r *resourceRepo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *resourceRepo) CreateBatch(ctx context.Context, tx *gorm.DB, resources []*types.Resource) error {
	if len(resources) == 0 {
		return nil
	}
	return r.handle(tx).WithContext(ctx).Create(resources).Error
}

func (r *resourceRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Resource, error) {
	var resource types.Resource
	err := r.handle(tx).WithContext(ctx).Where("id = ?", id).First(&resource).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &resource, nil
}

func (r *resourceRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Resource, error) {
	var resources []*types.Resource
	if len(ids) == 0 {
		return resources, nil
	}
	if err := r.handle(tx).WithContext(ctx).Where("id IN ?", ids).Find(&resources).Error; err != nil {
		return nil, err
	}
	return resources, nil
}

func (r *resourceRepo) ListByLessonIDs(ctx context.Context, tx *gorm.DB, lessonIDs []uuid.UUID) ([]*types.Resource, error) {
	var resources []*types.Resource
	if len(lessonIDs) == 0 {
		return resources, nil
	}
	err := r.handle(tx).WithContext(ctx).
		Where("lesson_id IN ?", lessonIDs).
		Order("sort_order, created_at").
		Find(&resources).Error
	if err != nil {
		return nil, err
	}
	return resources, nil
}

func (r *resourceRepo) ListByTopicIDs(ctx context.Context, tx *gorm.DB, topicIDs []uuid.UUID) ([]*types.Resource, error) {
	var resources []*types.Resource
	if len(topicIDs) == 0 {
		return resources, nil
	}
	err := r.handle(tx).WithContext(ctx).
		Where("topic_id IN ?", topicIDs).
		Order("sort_order, created_at").
		Find(&resources).Error
	if err != nil {
		return nil, err
	}
	return resources, nil
}

func (r *resourceRepo) Save(ctx context.Context, tx *gorm.DB, resource *types.Resource) error {
	return r.handle(tx).WithContext(ctx).Save(resource).Error
}

func (r *resourceRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.handle(tx).WithContext(ctx).Where("id IN ?", ids).Delete(&types.Resource{})
	return res.RowsAffected, res.Error
}

func (r *resourceRepo) DeleteByOwners(ctx context.Context, tx *gorm.DB, lessonIDs, topicIDs []uuid.UUID) error {
	h := r.handle(tx).WithContext(ctx)
	if len(lessonIDs) > 0 {
		if err := h.Where("lesson_id IN ?", lessonIDs).Delete(&types.Resource{}).Error; err != nil {
			return err
		}
	}
	if len(topicIDs) > 0 {
		if err := h.Where("topic_id IN ?", topicIDs).Delete(&types.Resource{}).Error; err != nil {
			return err
		}
	}
	return nil
}
