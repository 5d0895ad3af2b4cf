package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/platform/logger"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/types"
)

type CourseProgressRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, row *types.CourseProgress) error
	GetByStudentCourse(ctx context.Context, tx *gorm.DB, studentID, courseID uuid.UUID) (*types.CourseProgress, error)
	ListByStudent(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) ([]*types.CourseProgress, error)
	DeleteByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) error
}

type courseProgressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseProgressRepo(db *gorm.DB, baseLog *logger.Logger) CourseProgressRepo {
	return &courseProgressRepo{db: db, log: baseLog.With("repo", "CourseProgressRepo")}
}

func (r *courseProgressRepo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// Upsert writes the full score snapshot for (student, course), creating
// the row on first report. All three score fields are overwritten
// together so a stale partial update can never survive.
func (r *courseProgressRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.CourseProgress) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return r.handle(tx).WithContext(ctx).
		Where("student_id = ? AND course_id = ?", row.StudentID, row.CourseID).
		Assign(map[string]any{
			"obtained_score": row.ObtainedScore,
			"total_score":    row.TotalScore,
			"is_completed":   row.IsCompleted,
		}).
		FirstOrCreate(row).Error
}

func (r *courseProgressRepo) GetByStudentCourse(ctx context.Context, tx *gorm.DB, studentID, courseID uuid.UUID) (*types.CourseProgress, error) {
	var row types.CourseProgress
	err := r.handle(tx).WithContext(ctx).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *courseProgressRepo) ListByStudent(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) ([]*types.CourseProgress, error) {
	var rows []*types.CourseProgress
	err := r.handle(tx).WithContext(ctx).
		Preload("Course").
		Where("student_id = ?", studentID).
		Order("updated_at desc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *courseProgressRepo) DeleteByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) error {
	if len(courseIDs) == 0 {
		return nil
	}
	return r.handle(tx).WithContext(ctx).Where("course_id IN ?", courseIDs).Delete(&types.CourseProgress{}).Error
}
