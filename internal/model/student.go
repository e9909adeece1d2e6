package model

import (
	"time"

	"gorm.io/datatypes"
)

// Student 学生档案表 — 对应 students
// 首次访问时按 user_id 原子 upsert 创建（find-or-create），永不删除。
// total_points / level / streak 等字段由每个学习活动事件增量维护。
type Student struct {
	StudentID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"student_id"`
	UserID    string `gorm:"type:varchar(64);not null;uniqueIndex"          json:"user_id"`
	Name      string `gorm:"type:varchar(100);not null;default:''"          json:"name"`
	Email     string `gorm:"type:varchar(255);not null;default:''"          json:"email"`
	HierarchyKey

	TotalPoints       int            `gorm:"not null;default:0" json:"total_points"`
	Level             int            `gorm:"not null;default:1" json:"level"`
	CurrentStreak     int            `gorm:"not null;default:0" json:"current_streak"`
	LongestStreak     int            `gorm:"not null;default:0" json:"longest_streak"`
	LastActivityDate  *time.Time     `gorm:"type:date"          json:"last_activity_date,omitempty"`
	WeeklyGoal        int            `gorm:"not null;default:5" json:"weekly_goal"`
	CompletedThisWeek int            `gorm:"not null;default:0" json:"completed_this_week"`
	WeekAnchor        *time.Time     `gorm:"type:date"          json:"week_anchor,omitempty"` // 当前周计数所属 ISO 周的任一日期
	GlobalRank        int            `gorm:"not null;default:0" json:"global_rank"`           // 0 = 尚未参与排名
	ClassRank         int            `gorm:"not null;default:0" json:"class_rank"`
	Achievements      datatypes.JSON `gorm:"type:jsonb"         json:"achievements,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Student) TableName() string { return "students" }

// Achievement 成就徽章（Achievements JSONB 列的元素）
type Achievement struct {
	Code     string    `json:"code"`
	Title    string    `json:"title"`
	EarnedAt time.Time `json:"earned_at"`
}
