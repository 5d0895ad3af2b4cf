package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/platform/logger"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/types"
)

type RoleProfileRepo interface {
	Create(ctx context.Context, tx *gorm.DB, profile *types.RoleProfile) error
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.RoleProfile, error)
	GetByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.RoleProfile, error)
	AdminCodeTaken(ctx context.Context, tx *gorm.DB, code string, excludeProfileID uuid.UUID) (bool, error)
	Save(ctx context.Context, tx *gorm.DB, profile *types.RoleProfile) error
	DeleteByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) error
}

type roleProfileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRoleProfileRepo(db *gorm.DB, baseLog *logger.Logger) RoleProfileRepo {
	return &roleProfileRepo{db: db, log: baseLog.With("repo", "RoleProfileRepo")}
}

func (r *roleProfileRepo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *roleProfileRepo) Create(ctx context.Context, tx *gorm.DB, profile *types.RoleProfile) error {
	return r.handle(tx).WithContext(ctx).Create(profile).Error
}

func (r *roleProfileRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.RoleProfile, error) {
	var profile types.RoleProfile
	err := r.handle(tx).WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *roleProfileRepo) GetByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.RoleProfile, error) {
	var profiles []*types.RoleProfile
	if len(userIDs) == 0 {
		return profiles, nil
	}
	if err := r.handle(tx).WithContext(ctx).Where("user_id IN ?", userIDs).Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *roleProfileRepo) AdminCodeTaken(ctx context.Context, tx *gorm.DB, code string, excludeProfileID uuid.UUID) (bool, error) {
	var count int64
	q := r.handle(tx).WithContext(ctx).Model(&types.RoleProfile{}).Where("admin_secret_code = ?", code)
	if excludeProfileID != uuid.Nil {
		q = q.Where("id <> ?", excludeProfileID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *roleProfileRepo) Save(ctx context.Context, tx *gorm.DB, profile *types.RoleProfile) error {
	return r.handle(tx).WithContext(ctx).Save(profile).Error
}

func (r *roleProfileRepo) DeleteByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) error {
	if len(userIDs) == 0 {
		return nil
	}
	return r.handle(tx).WithContext(ctx).Where("user_id IN ?", userIDs).Delete(&types.RoleProfile{}).Error
}
