package dto

import "time"

// ── 考勤模块 DTO ──

// MarkAttendanceRequest 单人点名请求
// CourseRef 为真实课程 ID 或合成科目键（subject: 前缀）。
type MarkAttendanceRequest struct {
	CourseRef    string  `json:"course_ref"    validate:"required,max=255"`
	StudentID    string  `json:"student_id"    validate:"required,uuid"`
	Status       string  `json:"status"        validate:"required,oneof=present absent"`
	Date         string  `json:"date"          validate:"omitempty,datetime=2006-01-02"` // 缺省为当天
	SessionTitle *string `json:"session_title" validate:"omitempty,max=255"`
	Notes        *string `json:"notes"         validate:"omitempty,max=2000"`
}

// BulkMarkItem 批量点名单个学生条目
type BulkMarkItem struct {
	StudentID string `json:"student_id" validate:"required,uuid"`
	Status    string `json:"status"     validate:"required,oneof=present absent"`
}

// BulkMarkRequest 批量点名请求
type BulkMarkRequest struct {
	CourseRef    string         `json:"course_ref" validate:"required,max=255"`
	Date         string         `json:"date"       validate:"omitempty,datetime=2006-01-02"`
	SessionTitle *string        `json:"session_title" validate:"omitempty,max=255"`
	Items        []BulkMarkItem `json:"items"      validate:"required,min=1,dive"`
}

// BulkMarkOutcome 批量点名的单学生结果，互不影响
type BulkMarkOutcome struct {
	StudentID string `json:"student_id"`
	Marked    bool   `json:"marked"`
	Error     string `json:"error,omitempty"`
}

// AttendanceStats 按状态聚合的考勤计数
type AttendanceStats struct {
	Total   int64 `json:"total"`
	Present int64 `json:"present"`
	Absent  int64 `json:"absent"`
}

// SubjectAttendanceSummary 单科目考勤汇总
// Percentage = round(present/total*100)，total 为 0 时取 0。
type SubjectAttendanceSummary struct {
	Subject    string `json:"subject"`
	Total      int64  `json:"total"`
	Present    int64  `json:"present"`
	Absent     int64  `json:"absent"`
	Percentage int    `json:"percentage"`
}

// AttendanceResponse 考勤记录响应
type AttendanceResponse struct {
	AttendanceID string    `json:"attendance_id"`
	StudentID    string    `json:"student_id"`
	TeacherID    string    `json:"teacher_id"`
	CourseRef    string    `json:"course_ref"`
	Subject      string    `json:"subject"`
	Status       string    `json:"status"`
	Date         time.Time `json:"date"`
	SessionTitle *string   `json:"session_title,omitempty"`
	Notes        *string   `json:"notes,omitempty"`
}
