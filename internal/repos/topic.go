package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/platform/logger"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/types"
)

type TopicRepo interface {
	Create(ctx context.Context, tx *gorm.DB, topic *types.Topic) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Topic, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Topic, error)
	ListByLessonIDs(ctx context.Context, tx *gorm.DB, lessonIDs []uuid.UUID) ([]*types.Topic, error)
	ListByParent(ctx context.Context, tx *gorm.DB, parentID uuid.UUID) ([]*types.Topic, error)
	Save(ctx context.Context, tx *gorm.DB, topic *types.Topic) error
	DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (int64, error)
	DeleteByLessonIDs(ctx context.Context, tx *gorm.DB, lessonIDs []uuid.UUID) error
}

type topicRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTopicRepo(db *gorm.DB, baseLog *logger.Logger) TopicRepo {
	return &topicRepo{db: db, log: baseLog.With("repo", "TopicRepo")}
}

func (r *topicRepo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *topicRepo) Create(ctx context.Context, tx *gorm.DB, topic *types.Topic) error {
	return r.handle(tx).WithContext(ctx).Create(topic).Error
}

func (r *topicRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Topic, error) {
	var topic types.Topic
	err := r.handle(tx).WithContext(ctx).Where("id = ?", id).First(&topic).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &topic, nil
}

func (r *topicRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Topic, error) {
	var topics []*types.Topic
	if len(ids) == 0 {
		return topics, nil
	}
	if err := r.handle(tx).WithContext(ctx).Where("id IN ?", ids).Find(&topics).Error; err != nil {
		return nil, err
	}
	return topics, nil
}

// ListByLessonIDs returns every topic row under the lessons, roots and
// nested alike. Tree shape is reassembled in memory from ParentID.
func (r *topicRepo) ListByLessonIDs(ctx context.Context, tx *gorm.DB, lessonIDs []uuid.UUID) ([]*types.Topic, error) {
	var topics []*types.Topic
	if len(lessonIDs) == 0 {
		return topics, nil
	}
	err := r.handle(tx).WithContext(ctx).
		Where("lesson_id IN ?", lessonIDs).
		Order("sort_order, created_at").
		Find(&topics).Error
	if err != nil {
		return nil, err
	}
	return topics, nil
}

func (r *topicRepo) ListByParent(ctx context.Context, tx *gorm.DB, parentID uuid.UUID) ([]*types.Topic, error) {
	var topics []*types.Topic
	err := r.handle(tx).WithContext(ctx).
		Where("parent_id = ?", parentID).
		Order("sort_order, created_at").
		Find(&topics).Error
	if err != nil {
		return nil, err
	}
	return topics, nil
}

func (r *topicRepo) Save(ctx context.Context, tx *gorm.DB, topic *types.Topic) error {
	return r.handle(tx).WithContext(ctx).Save(topic).Error
}

func (r *topicRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.handle(tx).WithContext(ctx).Where("id IN ?", ids).Delete(&types.Topic{})
	return res.RowsAffected, res.Error
}

func (r *topicRepo) DeleteByLessonIDs(ctx context.Context, tx *gorm.DB, lessonIDs []uuid.UUID) error {
	if len(lessonIDs) == 0 {
		return nil
	}
	return r.handle(tx).WithContext(ctx).Where("lesson_id IN ?", lessonIDs).Delete(&types.Topic{}).Error
}
