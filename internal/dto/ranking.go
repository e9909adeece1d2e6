package dto

// ── 排行榜模块 DTO ──

// LeaderboardEntry 排行榜单项
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	StudentID   string `json:"student_id"`
	Name        string `json:"name"`
	TotalPoints int    `json:"total_points"`
	Level       int    `json:"level"`
}

// RecomputeResult 全量排名重算结果
type RecomputeResult struct {
	Ranked    int  `json:"ranked"`
	Debounced bool `json:"debounced"` // 处于去抖窗口内被跳过
}
