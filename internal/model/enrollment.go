package model

import "time"

// EnrollmentStatus 选课状态
type EnrollmentStatus string

const (
	EnrollmentEnrolled  EnrollmentStatus = "enrolled"
	EnrollmentCompleted EnrollmentStatus = "completed"
	EnrollmentDropped   EnrollmentStatus = "dropped"
)

// Valid 是否为受支持的状态值
func (s EnrollmentStatus) Valid() bool {
	switch s {
	case EnrollmentEnrolled, EnrollmentCompleted, EnrollmentDropped:
		return true
	default:
		return false
	}
}

// Terminal completed 与 dropped 为终态，不再发生迁移
func (s EnrollmentStatus) Terminal() bool {
	return s == EnrollmentCompleted || s == EnrollmentDropped
}

// Enrollment 选课记录表 — 对应 enrollments
// 同一 (student_id, course_id) 至多存在一条非 dropped 记录，
// 由部分唯一索引 uq_enrollments_active 在存储层保证。
type Enrollment struct {
	EnrollmentID string           `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"enrollment_id"`
	StudentID    string           `gorm:"type:uuid;not null;index"                       json:"student_id"`
	CourseID     string           `gorm:"type:uuid;not null;index"                       json:"course_id"`
	Status       EnrollmentStatus `gorm:"type:varchar(20);not null;default:'enrolled'"   json:"status"`
	Progress     float64          `gorm:"not null;default:0"                             json:"progress"` // 0-100
	Rating       *int             `json:"rating,omitempty"`                                               // 仅 completed 后可评
	Review       *string          `gorm:"type:text"                                      json:"review,omitempty"`
	CertificateIssued bool        `gorm:"not null;default:false"                         json:"certificate_issued"`
	EnrolledAt   time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"enrolled_at"`
	CompletedAt  *time.Time       `json:"completed_at,omitempty"`
	DroppedAt    *time.Time       `json:"dropped_at,omitempty"`
	BaseModel

	// 关联
	Student *Student `gorm:"foreignKey:StudentID;references:StudentID" json:"student,omitempty"`
	Course  *Course  `gorm:"foreignKey:CourseID;references:CourseID"   json:"course,omitempty"`
}

// TableName 指定表名
func (Enrollment) TableName() string { return "enrollments" }

// EnrollmentModule 已完成模块明细 — 对应 enrollment_modules
// (enrollment_id, module_id) 唯一，重复完成同一模块在存储层自然幂等。
type EnrollmentModule struct {
	EnrollmentModuleID string   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"enrollment_module_id"`
	EnrollmentID       string   `gorm:"type:uuid;not null;uniqueIndex:uq_enrollment_module" json:"enrollment_id"`
	ModuleID           string   `gorm:"type:varchar(64);not null;uniqueIndex:uq_enrollment_module" json:"module_id"`
	Score              *float64 `json:"score,omitempty"`
	BaseModel
}

// TableName 指定表名
func (EnrollmentModule) TableName() string { return "enrollment_modules" }
