package model

import "time"

// AssignmentKind 作业/活动类别（边界处校验后的标签变体）
type AssignmentKind string

const (
	AssignmentMultipleChoice AssignmentKind = "multiple_choice"
	AssignmentTrueFalse      AssignmentKind = "true_false"
	AssignmentHomework       AssignmentKind = "homework"
	AssignmentActivity       AssignmentKind = "activity" // 无 assignment_id 的可重复积分活动
)

// Valid 是否为受支持的类别
func (k AssignmentKind) Valid() bool {
	switch k {
	case AssignmentMultipleChoice, AssignmentTrueFalse, AssignmentHomework, AssignmentActivity:
		return true
	default:
		return false
	}
}

// AssignmentRecord 作业完成历史 — 对应 assignment_records
// 即学生档案中的 assignmentHistory。AssignmentID 非空的记录（计分作业）
// 受部分唯一索引 uq_assignment_records_graded 约束，同一学生不可重复提交；
// AssignmentID 为空表示可重复的积分活动，不参与去重。
type AssignmentRecord struct {
	RecordID     string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"record_id"`
	StudentID    string         `gorm:"type:uuid;not null;index"                       json:"student_id"`
	AssignmentID *string        `gorm:"type:varchar(64)"                               json:"assignment_id,omitempty"`
	Title        string         `gorm:"type:varchar(255);not null"                     json:"title"`
	Kind         AssignmentKind `gorm:"type:varchar(30);not null;default:'homework'"   json:"kind"`
	Score        float64        `gorm:"not null;default:0"                             json:"score"`
	PointsEarned int            `gorm:"not null;default:0"                             json:"points_earned"`
	CompletedAt  time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"completed_at"`
	BaseModel
}

// TableName 指定表名
func (AssignmentRecord) TableName() string { return "assignment_records" }
