package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"careerdashboard/backend/internal/model"
)

// TeacherRepository 教师档案数据访问接口
type TeacherRepository interface {
	// Upsert 以 user_id 为冲突目标的原子插入，语义同 StudentRepository.Upsert
	Upsert(ctx context.Context, teacher *model.Teacher) error
	GetByUserID(ctx context.Context, userID string) (*model.Teacher, error)
	GetByID(ctx context.Context, id string) (*model.Teacher, error)
	UpdateSubjects(ctx context.Context, teacherID string, subjects model.StringArray) error
}

// teacherRepo TeacherRepository 的 GORM 实现
type teacherRepo struct {
	db *gorm.DB
}

// NewTeacherRepo 创建 TeacherRepository 实例
func NewTeacherRepo(db *gorm.DB) TeacherRepository {
	return &teacherRepo{db: db}
}

func (r *teacherRepo) Upsert(ctx context.Context, teacher *model.Teacher) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(teacher).Error
}

func (r *teacherRepo) GetByUserID(ctx context.Context, userID string) (*model.Teacher, error) {
	var teacher model.Teacher
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&teacher).Error
	if err != nil {
		return nil, err
	}
	return &teacher, nil
}

func (r *teacherRepo) GetByID(ctx context.Context, id string) (*model.Teacher, error) {
	var teacher model.Teacher
	err := r.db.WithContext(ctx).
		Where("teacher_id = ?", id).
		First(&teacher).Error
	if err != nil {
		return nil, err
	}
	return &teacher, nil
}

func (r *teacherRepo) UpdateSubjects(ctx context.Context, teacherID string, subjects model.StringArray) error {
	return r.db.WithContext(ctx).
		Model(&model.Teacher{}).
		Where("teacher_id = ?", teacherID).
		Update("subjects", subjects).Error
}
