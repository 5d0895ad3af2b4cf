package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/platform/logger"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/types"
)

type TeacherClassRepo interface {
	Create(ctx context.Context, tx *gorm.DB, class *types.TeacherClass) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.TeacherClass, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.TeacherClass, error)
	GetByCode(ctx context.Context, tx *gorm.DB, code string) (*types.TeacherClass, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.TeacherClass, error)
	ListByTeacher(ctx context.Context, tx *gorm.DB, teacherID uuid.UUID) ([]*types.TeacherClass, error)
	Save(ctx context.Context, tx *gorm.DB, class *types.TeacherClass) error
	DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (int64, error)
}

type teacherClassRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTeacherClassRepo(db *gorm.DB, baseLog *logger.Logger) TeacherClassRepo {
	return &teacherClassRepo{db: db, log: baseLog.With("repo", "TeacherClassRepo")}
}

func (r *teacherClassRepo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *teacherClassRepo) Create(ctx context.Context, tx *gorm.DB, class *types.TeacherClass) error {
	return r.handle(tx).WithContext(ctx).Create(class).Error
}

func (r *teacherClassRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.TeacherClass, error) {
	var class types.TeacherClass
	err := r.handle(tx).WithContext(ctx).Preload("Teacher").Where("id = ?", id).First(&class).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &class, nil
}

func (r *teacherClassRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.TeacherClass, error) {
	var classes []*types.TeacherClass
	if len(ids) == 0 {
		return classes, nil
	}
	if err := r.handle(tx).WithContext(ctx).Preload("Teacher").Where("id IN ?", ids).Find(&classes).Error; err != nil {
		return nil, err
	}
	return classes, nil
}

func (r *teacherClassRepo) GetByCode(ctx context.Context, tx *gorm.DB, code string) (*types.TeacherClass, error) {
	var class types.TeacherClass
	err := r.handle(tx).WithContext(ctx).Preload("Teacher").Where("class_code = ?", code).First(&class).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &class, nil
}

func (r *teacherClassRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.TeacherClass, error) {
	var classes []*types.TeacherClass
	if err := r.handle(tx).WithContext(ctx).Preload("Teacher").Order("created_at desc").Find(&classes).Error; err != nil {
		return nil, err
	}
	return classes, nil
}

func (r *teacherClassRepo) ListByTeacher(ctx context.Context, tx *gorm.DB, teacherID uuid.UUID) ([]*types.TeacherClass, error) {
	var classes []*types.TeacherClass
	err := r.handle(tx).WithContext(ctx).
		Preload("Teacher").
		Where("teacher_id = ?", teacherID).
		Order("created_at desc").
		Find(&classes).Error
	if err != nil {
		return nil, err
	}
	return classes, nil
}

func (r *teacherClassRepo) Save(ctx context.Context, tx *gorm.DB, class *types.TeacherClass) error {
	return r.handle(tx).WithContext(ctx).Save(class).Error
}

func (r *teacherClassRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.handle(tx).WithContext(ctx).Where("id IN ?", ids).Delete(&types.TeacherClass{})
	return res.RowsAffected, res.Error
}
