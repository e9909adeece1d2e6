package repository

import (
	"context"

	"gorm.io/gorm"

	"careerdashboard/backend/internal/model"
)

// AssignmentRepository 作业历史数据访问接口
// Create 依赖部分唯一索引 uq_assignment_records_graded：
// 重复提交同一计分作业时返回 gorm.ErrDuplicatedKey。
type AssignmentRepository interface {
	Create(ctx context.Context, record *model.AssignmentRecord) error
	ListByStudent(ctx context.Context, studentID string) ([]model.AssignmentRecord, error)
	CountByStudent(ctx context.Context, studentID string) (int64, error)
}

// assignmentRepo AssignmentRepository 的 GORM 实现
type assignmentRepo struct {
	db *gorm.DB
}

// NewAssignmentRepo 创建 AssignmentRepository 实例
func NewAssignmentRepo(db *gorm.DB) AssignmentRepository {
	return &assignmentRepo{db: db}
}

func (r *assignmentRepo) Create(ctx context.Context, record *model.AssignmentRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *assignmentRepo) ListByStudent(ctx context.Context, studentID string) ([]model.AssignmentRecord, error) {
	var records []model.AssignmentRecord
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("completed_at ASC").
		Find(&records).Error
	return records, err
}

func (r *assignmentRepo) CountByStudent(ctx context.Context, studentID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.AssignmentRecord{}).
		Where("student_id = ?", studentID).
		Count(&count).Error
	return count, err
}
