package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/platform/logger"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/types"
)

type KeyTakeawayRepo interface {
	CreateBatch(ctx context.Context, tx *gorm.DB, takeaways []*types.KeyTakeaway) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.KeyTakeaway, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.KeyTakeaway, error)
	ListByLessonIDs(ctx context.Context, tx *gorm.DB, lessonIDs []uuid.UUID) ([]*types.KeyTakeaway, error)
	ListByTopicIDs(ctx context.Context, tx *gorm.DB, topicIDs []uuid.UUID) ([]*types.KeyTakeaway, error)
	Save(ctx context.Context, tx *gorm.DB, takeaway *types.KeyTakeaway) error
	DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (int64, error)
	DeleteByOwners(ctx context.Context, tx *gorm.DB, lessonIDs, topicIDs []uuid.UUID) error
}

type keyTakeawayRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewKeyTakeawayRepo(db *gorm.DB, baseLog *logger.Logger) KeyTakeawayRepo {
	return &keyTakeawayRepo{db: db, log: baseLog.With("repo", "KeyTakeawayRepo")}
}

func (r *keyTakeawayRepo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *keyTakeawayRepo) CreateBatch(ctx context.Context, tx *gorm.DB, takeaways []*types.KeyTakeaway) error {
	if len(takeaways) == 0 {
		return nil
	}
	return r.handle(tx).WithContext(ctx).Create(takeaways).Error
}

func (r *keyTakeawayRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.KeyTakeaway, error) {
	var takeaway types.KeyTakeaway
	err := r.handle(tx).WithContext(ctx).Where("id = ?", id).First(&takeaway).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &takeaway, nil
}

func (r *keyTakeawayRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.KeyTakeaway, error) {
	var takeaways []*types.KeyTakeaway
	if len(ids) == 0 {
		return takeaways, nil
	}
	if err := r.handle(tx).WithContext(ctx).Where("id IN ?", ids).Find(&takeaways).Error; err != nil {
		return nil, err
	}
	return takeaways, nil
}

func (r *keyTakeawayRepo) ListByLessonIDs(ctx context.Context, tx *gorm.DB, lessonIDs []uuid.UUID) ([]*types.KeyTakeaway, error) {
	var takeaways []*types.KeyTakeaway
	if len(lessonIDs) == 0 {
		return takeaways, nil
	}
	err := r.handle(tx).WithContext(ctx).
		Where("lesson_id IN ?", lessonIDs).
		Order("sort_order, created_at").
		Find(&takeaways).Error
	if err != nil {
		return nil, err
	}
	return takeaways, nil
}

func (r *keyTakeawayRepo) ListByTopicIDs(ctx context.Context, tx *gorm.DB, topicIDs []uuid.UUID) ([]*types.KeyTakeaway, error) {
	var takeaways []*types.KeyTakeaway
	if len(topicIDs) == 0 {
		return takeaways, nil
	}
	err := r.handle(tx).WithContext(ctx).
		Where("topic_id IN ?", topicIDs).
		Order("sort_order, created_at").
		Find(&takeaways).Error
	if err != nil {
		return nil, err
	}
	return takeaways, nil
}

func (r *keyTakeawayRepo) Save(ctx context.Context, tx *gorm.DB, takeaway *types.KeyTakeaway) error {
	return r.handle(tx).WithContext(ctx).Save(takeaway).Error
}

func (r *keyTakeawayRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.handle(tx).WithContext(ctx).Where("id IN ?", ids).Delete(&types.KeyTakeaway{})
	return res.RowsAffected, res.Error
}

func (r *keyTakeawayRepo) DeleteByOwners(ctx context.Context, tx *gorm.DB, lessonIDs, topicIDs []uuid.UUID) error {
	h := r.handle(tx).WithContext(ctx)
	if len(lessonIDs) > 0 {
		if err := h.Where("lesson_id IN ?", lessonIDs).Delete(&types.KeyTakeaway{}).Error; err != nil {
			return err
		}
	}
	if len(topicIDs) > 0 {
		if err := h.Where("topic_id IN ?", topicIDs).Delete(&types.KeyTakeaway{}).Error; err != nil {
			return err
		}
	}
	return nil
}
