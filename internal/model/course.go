package model

import "gorm.io/datatypes"

// Course 课程表 — 对应 courses
// 由教师创建；ModuleCount 决定选课进度的分母。
// AutoEnrollmentEnabled 开启后，层级键完全匹配的学生会被自动选入。
type Course struct {
	CourseID  string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"course_id"`
	TeacherID string `gorm:"type:uuid;not null;index"                      json:"teacher_id"`
	Title     string `gorm:"type:varchar(255);not null"                    json:"title"`
	Subject   string `gorm:"type:varchar(100);not null"                    json:"subject"`
	HierarchyKey

	ModuleCount           int            `gorm:"not null;default:0"     json:"module_count"`
	AutoEnrollmentEnabled bool           `gorm:"not null;default:false" json:"auto_enrollment_enabled"`
	CertificateEnabled    bool           `gorm:"not null;default:false" json:"certificate_enabled"`
	Badges                datatypes.JSON `gorm:"type:jsonb"             json:"badges,omitempty"`
	SoftDeleteModel

	// 关联
	Teacher *Teacher `gorm:"foreignKey:TeacherID;references:TeacherID" json:"teacher,omitempty"`
}

// TableName 指定表名
func (Course) TableName() string { return "courses" }
