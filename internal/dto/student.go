package dto

// ── 学生进度模块 DTO ──

// StudentResponse 学生档案响应
type StudentResponse struct {
	StudentID          string  `json:"student_id"`
	UserID             string  `json:"user_id"`
	Name               string  `json:"name"`
	Email              string  `json:"email"`
	InstituteName      string  `json:"institute_name"`
	ClassName          string  `json:"class_name"`
	Section            string  `json:"section"`
	BatchYear          string  `json:"batch_year"`
	TotalPoints        int     `json:"total_points"`
	Level              int     `json:"level"`
	NextLevelPoints    int     `json:"next_level_points"`
	LevelProgress      float64 `json:"level_progress"`      // [0,1]
	ProgressPercentage int     `json:"progress_percentage"` // round(level_progress*100)
	CurrentStreak      int     `json:"current_streak"`
	LongestStreak      int     `json:"longest_streak"`
	WeeklyGoal         int     `json:"weekly_goal"`
	CompletedThisWeek  int     `json:"completed_this_week"`
	GlobalRank         int     `json:"global_rank"`
	ClassRank          int     `json:"class_rank"`
}

// UpsertStudentRequest 学生档案 find-or-create 的初始资料
type UpsertStudentRequest struct {
	UserID        string `json:"user_id"        validate:"required,max=64"`
	Name          string `json:"name"           validate:"omitempty,max=100"`
	Email         string `json:"email"          validate:"omitempty,email"`
	InstituteName string `json:"institute_name" validate:"omitempty,max=255"`
	ClassName     string `json:"class_name"     validate:"omitempty,max=100"`
	Section       string `json:"section"        validate:"omitempty,max=50"`
	BatchYear     string `json:"batch_year"     validate:"omitempty,max=20"`
}

// UpsertTeacherRequest 教师档案 find-or-create 的初始资料
type UpsertTeacherRequest struct {
	UserID string `json:"user_id" validate:"required,max=64"`
	Name   string `json:"name"    validate:"omitempty,max=100"`
	Email  string `json:"email"   validate:"omitempty,email"`
}

// SetWeeklyGoalRequest 调整每周目标请求
type SetWeeklyGoalRequest struct {
	Goal int `json:"goal" validate:"required,min=1,max=100"`
}
