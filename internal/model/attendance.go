package model

import (
	"strings"
	"time"
)

// AttendanceStatus 考勤状态
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
)

// Valid 是否为受支持的状态值
func (s AttendanceStatus) Valid() bool {
	return s == AttendancePresent || s == AttendanceAbsent
}

// SubjectKeyPrefix 合成科目键前缀，用于区分真实课程 ID 与科目寻址
const SubjectKeyPrefix = "subject:"

// SubjectKey 由科目名确定性合成课程引用键：
// 小写、空白折叠为连字符，如 "Data Structures" → "subject:data-structures"。
// 在正式课程记录落库之前即可按科目点名。
func SubjectKey(subject string) string {
	slug := strings.ToLower(strings.TrimSpace(subject))
	slug = strings.Join(strings.Fields(slug), "-")
	return SubjectKeyPrefix + slug
}

// IsSubjectKey 判断课程引用是否为合成科目键
func IsSubjectKey(courseRef string) bool {
	return strings.HasPrefix(courseRef, SubjectKeyPrefix)
}

// Attendance 考勤记录表 — 对应 attendances
// CourseRef 双寻址：真实课程 ID 或合成科目键。
// (student_id, course_ref, date) 唯一，同一自然日至多一条，存储层保证。
// Subject 在写入时冗余落库（取自课程或点名声明的科目名），
// 跨科目汇总因此只有一条查询路径。status/notes 创建后可改，记录永不删除。
type Attendance struct {
	AttendanceID string           `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"attendance_id"`
	StudentID    string           `gorm:"type:uuid;not null;uniqueIndex:uq_attendance_day" json:"student_id"`
	TeacherID    string           `gorm:"type:uuid;not null;index"                       json:"teacher_id"`
	CourseRef    string           `gorm:"type:varchar(255);not null;uniqueIndex:uq_attendance_day" json:"course_ref"`
	Subject      string           `gorm:"type:varchar(100);not null;default:''"          json:"subject"`
	Status       AttendanceStatus `gorm:"type:varchar(10);not null"                      json:"status"`
	Date         time.Time        `gorm:"type:date;not null;uniqueIndex:uq_attendance_day" json:"date"`
	SessionTitle *string          `gorm:"type:varchar(255)"                              json:"session_title,omitempty"`
	Notes        *string          `gorm:"type:text"                                      json:"notes,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Attendance) TableName() string { return "attendances" }
