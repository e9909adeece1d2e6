package service

import (
	"math"
	"time"
)

// 等级积分门槛表：levelThresholds[i] 为升到 i+1 级所需的累计积分下限。
// 表外按每级 +1000 线性外推，保证严格递增。
var levelThresholds = []int{0, 100, 250, 450, 700, 1000, 1400, 1900, 2500, 3200}

const extrapolationStep = 1000

// levelForPoints 由累计积分推导等级（最低 1 级）
func levelForPoints(points int) int {
	if points < 0 {
		return 1
	}
	level := 1
	for i, t := range levelThresholds {
		if points >= t {
			level = i + 1
		}
	}
	if level == len(levelThresholds) {
		extra := (points - levelThresholds[len(levelThresholds)-1]) / extrapolationStep
		level += extra
	}
	return level
}

// levelFloor 等级的积分下限
func levelFloor(level int) int {
	if level <= 1 {
		return 0
	}
	if level <= len(levelThresholds) {
		return levelThresholds[level-1]
	}
	return levelThresholds[len(levelThresholds)-1] + (level-len(levelThresholds))*extrapolationStep
}

// nextLevelPoints 升到下一级所需的累计积分
func nextLevelPoints(level int) int {
	return levelFloor(level + 1)
}

// levelProgress 当前等级内的进度，取值 [0,1]
func levelProgress(points int) float64 {
	level := levelForPoints(points)
	floor := levelFloor(level)
	next := nextLevelPoints(level)
	p := float64(points-floor) / float64(next-floor)
	return math.Max(0, math.Min(1, p))
}

// progressPercentage levelProgress 的百分比取整
func progressPercentage(points int) int {
	return int(math.Round(levelProgress(points) * 100))
}

// ── 日期工具 ──

// dateOnly 截断到自然日（UTC）
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// sameISOWeek 两个日期是否落在同一 ISO 周
func sameISOWeek(a, b time.Time) bool {
	ay, aw := a.ISOWeek()
	by, bw := b.ISOWeek()
	return ay == by && aw == bw
}

// nextStreak 按活动日推进连击：
// 昨天有活动 → +1；今天已计 → 不变；出现断档或首次活动 → 重置为 1。
func nextStreak(current int, lastActivity *time.Time, today time.Time) int {
	if lastActivity == nil {
		return 1
	}
	last := dateOnly(*lastActivity)
	today = dateOnly(today)
	switch {
	case last.Equal(today):
		return current
	case last.Equal(today.AddDate(0, 0, -1)):
		return current + 1
	default:
		return 1
	}
}
