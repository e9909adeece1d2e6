package model

// Teacher 教师档案表 — 对应 teachers
// 与学生档案一样按 user_id 原子 upsert 创建。
// Subjects 为教师声明的任教科目，按科目键点名时以此校验权限。
type Teacher struct {
	TeacherID string      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"teacher_id"`
	UserID    string      `gorm:"type:varchar(64);not null;uniqueIndex"          json:"user_id"`
	Name      string      `gorm:"type:varchar(100);not null;default:''"          json:"name"`
	Email     string      `gorm:"type:varchar(255);not null;default:''"          json:"email"`
	Subjects  StringArray `gorm:"type:text[]"                                    json:"subjects,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Teacher) TableName() string { return "teachers" }
