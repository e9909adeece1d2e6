package dto

import "time"

// ── 选课模块 DTO ──

// EnrollRequest 显式选课请求
type EnrollRequest struct {
	StudentID string `json:"student_id" validate:"required,uuid"`
	CourseID  string `json:"course_id"  validate:"required,uuid"`
}

// CompleteModuleRequest 完成课程模块请求
type CompleteModuleRequest struct {
	ModuleID string   `json:"module_id" validate:"required,max=64"`
	Score    *float64 `json:"score"     validate:"omitempty,min=0,max=100"`
}

// ReviewRequest 课程评价请求（仅 completed 后允许）
type ReviewRequest struct {
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
	Review string `json:"review" validate:"required,max=2000"`
}

// EnrollmentResponse 选课记录响应
type EnrollmentResponse struct {
	EnrollmentID      string     `json:"enrollment_id"`
	StudentID         string     `json:"student_id"`
	CourseID          string     `json:"course_id"`
	CourseTitle       string     `json:"course_title,omitempty"`
	Status            string     `json:"status"`
	Progress          float64    `json:"progress"`
	CompletedModules  []string   `json:"completed_modules"`
	CertificateIssued bool       `json:"certificate_issued"`
	EnrolledAt        time.Time  `json:"enrolled_at"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
	DroppedAt         *time.Time `json:"dropped_at,omitempty"`
}

// AutoEnrollResult 自动选课结果（单课程）
type AutoEnrollResult struct {
	CourseID        string `json:"course_id"`
	Matched         int    `json:"matched"`
	Enrolled        int    `json:"enrolled"`
	AlreadyEnrolled int    `json:"already_enrolled"`
}

// AutoEnrollCourseOutcome 批量自动选课的单课程结果，失败互相隔离
type AutoEnrollCourseOutcome struct {
	CourseID string            `json:"course_id"`
	Result   *AutoEnrollResult `json:"result,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// CreateCourseRequest 创建课程请求
type CreateCourseRequest struct {
	Title                 string `json:"title"          validate:"required,max=255"`
	Subject               string `json:"subject"        validate:"required,max=100"`
	InstituteName         string `json:"institute_name" validate:"omitempty,max=255"`
	ClassName             string `json:"class_name"     validate:"omitempty,max=100"`
	Section               string `json:"section"        validate:"omitempty,max=50"`
	BatchYear             string `json:"batch_year"     validate:"omitempty,max=20"`
	ModuleCount           int    `json:"module_count"   validate:"min=0,max=1000"`
	AutoEnrollmentEnabled bool   `json:"auto_enrollment_enabled"`
	CertificateEnabled    bool   `json:"certificate_enabled"`
}
