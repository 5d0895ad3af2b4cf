package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/platform/logger"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/types"
)

type ExerciseRepo interface {
	CreateBatch(ctx context.Context, tx *gorm.DB, exercises []*types.Exercise) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Exercise, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Exercise, error)
	ListByLessonIDs(ctx context.Context, tx *gorm.DB, lessonIDs []uuid.UUID) ([]*types.Exercise, error)
	ListByTopicIDs(ctx context.Context, tx *gorm.DB, topicIDs []uuid.UUID) ([]*types.Exercise, error)
	Save(ctx context.Context, tx *gorm.DB, exercise *types.Exercise) error
	DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (int64, error)
	DeleteByOwners(ctx context.Context, tx *gorm.DB, lessonIDs, topicIDs []uuid.UUID) error
}

type exerciseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewExerciseRepo(db *gorm.DB, baseLog *logger.Logger) ExerciseRepo {
	return &exerciseRepo{db: db, log: baseLog.With("repo", "ExerciseRepo")}
}

func (r *exerciseRepo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *exerciseRepo) CreateBatch(ctx context.Context, tx *gorm.DB, exercises []*types.Exercise) error {
	if len(exercises) == 0 {
		return nil
	}
	return r.handle(tx).WithContext(ctx).Create(exercises).Error
}

func (r *exerciseRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Exercise, error) {
	var exercise types.Exercise
	err := r.handle(tx).WithContext(ctx).Where("id = ?", id).First(&exercise).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &exercise, nil
}

func (r *exerciseRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Exercise, error) {
	var exercises []*types.Exercise
	if len(ids) == 0 {
		return exercises, nil
	}
	if err := r.handle(tx).WithContext(ctx).Where("id IN ?", ids).Find(&exercises).Error; err != nil {
		return nil, err
	}
	return exercises, nil
}

func (r *exerciseRepo) ListByLessonIDs(ctx context.Context, tx *gorm.DB, lessonIDs []uuid.UUID) ([]*types.Exercise, error) {
	var exercises []*types.Exercise
	if len(lessonIDs) == 0 {
		return exercises, nil
	}
	err := r.handle(tx).WithContext(ctx).
		Where("lesson_id IN ?", lessonIDs).
		Order("sort_order, created_at").
		Find(&exercises).Error
	if err != nil {
		return nil, err
	}
	return exercises, nil
}

func (r *exerciseRepo) ListByTopicIDs(ctx context.Context, tx *gorm.DB, topicIDs []uuid.UUID) ([]*types.Exercise, error) {
	var exercises []*types.Exercise
	if len(topicIDs) == 0 {
		return exercises, nil
	}
	err := r.handle(tx).WithContext(ctx).
		Where("topic_id IN ?", topicIDs).
		Order("sort_order, created_at").
		Find(&exercises).Error
	if err != nil {
		return nil, err
	}
	return exercises, nil
}

func (r *exerciseRepo) Save(ctx context.Context, tx *gorm.DB, exercise *types.Exercise) error {
	return r.handle(tx).WithContext(ctx).Save(exercise).Error
}

func (r *exerciseRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.handle(tx).WithContext(ctx).Where("id IN ?", ids).Delete(&types.Exercise{})
	return res.RowsAffected, res.Error
}

func (r *exerciseRepo) DeleteByOwners(ctx context.Context, tx *gorm.DB, lessonIDs, topicIDs []uuid.UUID) error {
	h := r.handle(tx).WithContext(ctx)
	if len(lessonIDs) > 0 {
		if err := h.Where("lesson_id IN ?", lessonIDs).Delete(&types.Exercise{}).Error; err != nil {
			return err
		}
	}
	if len(topicIDs) > 0 {
		if err := h.Where("topic_id IN ?", topicIDs).Delete(&types.Exercise{}).Error; err != nil {
			return err
		}
	}
	return nil
}
