package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"careerdashboard/backend/config"
	"careerdashboard/backend/internal/dto"
	"careerdashboard/backend/internal/model"
	"careerdashboard/backend/internal/repository"
	apperrors "careerdashboard/backend/pkg/errors"
)

// ── 进度模块业务错误 ──

var (
	ErrStudentNotFound     = apperrors.NotFound("学生档案不存在")
	ErrDuplicateAssignment = apperrors.Conflict("该作业已提交过，不可重复提交")
)

// 连击里程碑成就（天数 → 成就码）
var streakMilestones = map[int]string{
	7:  "streak-7",
	30: "streak-30",
}

// ProgressionService 积分/等级/连击业务接口
type ProgressionService interface {
	// FindOrCreate 返回既有学生档案，不存在时按默认值原子创建。
	// 两个并发的首次访问恰好产生一条记录。
	FindOrCreate(ctx context.Context, req *dto.UpsertStudentRequest) (*dto.StudentResponse, error)
	GetByID(ctx context.Context, studentID string) (*dto.StudentResponse, error)
	// CompleteAssignment 记录作业完成并入账积分，历史与积分同一事务落库。
	// 计分作业重复提交返回 Conflict，且积分不变。
	CompleteAssignment(ctx context.Context, studentID string, req *dto.CompleteAssignmentRequest) (*dto.StudentResponse, error)
	// AddPoints 纯积分入账（无历史条目），同样推进等级/连击/周计数
	AddPoints(ctx context.Context, studentID string, points int, reason string) (*dto.StudentResponse, error)
	AssignmentHistory(ctx context.Context, studentID string) ([]dto.AssignmentHistoryEntry, error)
	SetWeeklyGoal(ctx context.Context, studentID string, req *dto.SetWeeklyGoalRequest) error
}

type progressionService struct {
	cfg     *config.Config
	repo    *repository.Repository
	ranking RankingService
	logger  *zap.Logger
	now     func() time.Time
}

// NewProgressionService 创建 ProgressionService 实例
func NewProgressionService(cfg *config.Config, repo *repository.Repository, ranking RankingService, logger *zap.Logger) ProgressionService {
	return &progressionService{
		cfg:     cfg,
		repo:    repo,
		ranking: ranking,
		logger:  logger,
		now:     time.Now,
	}
}

// ────────────────────── FindOrCreate ──────────────────────

func (s *progressionService) FindOrCreate(ctx context.Context, req *dto.UpsertStudentRequest) (*dto.StudentResponse, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	student := &model.Student{
		UserID: req.UserID,
		Name:   req.Name,
		Email:  req.Email,
		HierarchyKey: model.HierarchyKey{
			InstituteName: req.InstituteName,
			ClassName:     req.ClassName,
			Section:       req.Section,
			BatchYear:     req.BatchYear,
		},
		Level:      1,
		WeeklyGoal: s.cfg.Progression.WeeklyGoalDefault,
	}

	// ON CONFLICT DO NOTHING：已存在时不覆盖任何已积累的进度
	if err := s.repo.Student.Upsert(ctx, student); err != nil {
		s.logger.Error("学生档案 upsert 失败", zap.String("user_id", req.UserID), zap.Error(err))
		return nil, err
	}

	// 统一回读：无论本次是否新建，都以库内状态为准
	created, err := s.repo.Student.GetByUserID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	return s.toStudentResponse(created), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *progressionService) GetByID(ctx context.Context, studentID string) (*dto.StudentResponse, error) {
	student, err := s.repo.Student.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	return s.toStudentResponse(student), nil
}

// ────────────────────── CompleteAssignment ──────────────────────

func (s *progressionService) CompleteAssignment(ctx context.Context, studentID string, req *dto.CompleteAssignmentRequest) (*dto.StudentResponse, error) {
	kind, err := req.Normalize()
	if err != nil {
		return nil, err
	}

	student, err := s.repo.Student.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	now := s.now()
	record := &model.AssignmentRecord{
		StudentID:    studentID,
		AssignmentID: req.AssignmentID,
		Title:        req.Title,
		Kind:         kind,
		Score:        req.Score,
		PointsEarned: req.PointsEarned,
		CompletedAt:  now,
	}

	// 历史条目与积分入账同一事务：要么都落库，要么都不落
	err = s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		if err := txRepo.Assignment.Create(ctx, record); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateAssignment
			}
			return err
		}
		fields := s.applyPoints(student, req.PointsEarned, now)
		// 完成一项活动计入周目标
		student.CompletedThisWeek++
		fields["completed_this_week"] = student.CompletedThisWeek
		return txRepo.Student.UpdateFields(ctx, studentID, fields)
	})
	if err != nil {
		if !apperrors.IsConflict(err) {
			s.logger.Error("作业完成入账失败", zap.String("student_id", studentID), zap.Error(err))
		}
		return nil, err
	}

	s.triggerRanking(ctx)

	return s.toStudentResponse(student), nil
}

// ────────────────────── AddPoints ──────────────────────

func (s *progressionService) AddPoints(ctx context.Context, studentID string, points int, reason string) (*dto.StudentResponse, error) {
	if points < 0 {
		return nil, apperrors.Validation("积分不可为负")
	}

	student, err := s.repo.Student.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	now := s.now()
	fields := s.applyPoints(student, points, now)
	if err := s.repo.Student.UpdateFields(ctx, studentID, fields); err != nil {
		s.logger.Error("积分入账失败",
			zap.String("student_id", studentID),
			zap.String("reason", reason),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("积分入账",
		zap.String("student_id", studentID),
		zap.Int("points", points),
		zap.String("reason", reason))

	s.triggerRanking(ctx)

	return s.toStudentResponse(student), nil
}

// applyPoints 在内存中推进学生的积分/等级/连击/周计数，返回定向更新字段。
// 调用方负责持久化；student 同步更新为入账后的状态。
func (s *progressionService) applyPoints(student *model.Student, points int, now time.Time) map[string]interface{} {
	today := dateOnly(now)

	student.TotalPoints += points
	oldLevel := student.Level
	student.Level = levelForPoints(student.TotalPoints)

	student.CurrentStreak = nextStreak(student.CurrentStreak, student.LastActivityDate, today)
	if student.CurrentStreak > student.LongestStreak {
		student.LongestStreak = student.CurrentStreak
	}

	// ISO 周边界重置周计数
	if student.WeekAnchor == nil || !sameISOWeek(*student.WeekAnchor, today) {
		student.CompletedThisWeek = 0
	}
	student.WeekAnchor = &today
	student.LastActivityDate = &today

	s.awardAchievements(student, oldLevel, now)

	return map[string]interface{}{
		"completed_this_week": student.CompletedThisWeek,
		"total_points":        student.TotalPoints,
		"level":               student.Level,
		"current_streak":      student.CurrentStreak,
		"longest_streak":      student.LongestStreak,
		"last_activity_date":  today,
		"week_anchor":         today,
		"achievements":        student.Achievements,
	}
}

// awardAchievements 升级与连击里程碑发放成就徽章（同码只发一次）
func (s *progressionService) awardAchievements(student *model.Student, oldLevel int, now time.Time) {
	var earned []model.Achievement
	if len(student.Achievements) > 0 {
		if err := json.Unmarshal(student.Achievements, &earned); err != nil {
			s.logger.Warn("成就列表解析失败，按空处理", zap.String("student_id", student.StudentID), zap.Error(err))
			earned = nil
		}
	}
	has := func(code string) bool {
		for _, a := range earned {
			if a.Code == code {
				return true
			}
		}
		return false
	}

	if student.Level > oldLevel {
		code := fmt.Sprintf("level-%d", student.Level)
		if !has(code) {
			earned = append(earned, model.Achievement{
				Code:     code,
				Title:    fmt.Sprintf("升到 %d 级", student.Level),
				EarnedAt: now,
			})
		}
	}
	if code, ok := streakMilestones[student.CurrentStreak]; ok && !has(code) {
		earned = append(earned, model.Achievement{
			Code:     code,
			Title:    fmt.Sprintf("连续学习 %d 天", student.CurrentStreak),
			EarnedAt: now,
		})
	}

	if b, err := json.Marshal(earned); err == nil {
		student.Achievements = b
	}
}

// triggerRanking 积分事件后触发排名重算。排名是展示值，
// 重算失败绝不回滚或阻塞积分写入，记日志后由下一次事件重试。
func (s *progressionService) triggerRanking(ctx context.Context) {
	if s.ranking == nil {
		return
	}
	if _, err := s.ranking.RecomputeGlobalRankings(ctx); err != nil {
		s.logger.Warn("排名重算失败，等待下一次积分事件重试", zap.Error(err))
	}
}

// ────────────────────── AssignmentHistory ──────────────────────

func (s *progressionService) AssignmentHistory(ctx context.Context, studentID string) ([]dto.AssignmentHistoryEntry, error) {
	records, err := s.repo.Assignment.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	entries := make([]dto.AssignmentHistoryEntry, 0, len(records))
	for _, r := range records {
		entries = append(entries, dto.AssignmentHistoryEntry{
			AssignmentID: r.AssignmentID,
			Title:        r.Title,
			Kind:         string(r.Kind),
			Score:        r.Score,
			PointsEarned: r.PointsEarned,
			CompletedAt:  r.CompletedAt.Format(time.RFC3339),
		})
	}
	return entries, nil
}

// ────────────────────── SetWeeklyGoal ──────────────────────

func (s *progressionService) SetWeeklyGoal(ctx context.Context, studentID string, req *dto.SetWeeklyGoalRequest) error {
	if err := dto.Validate(req); err != nil {
		return err
	}
	if _, err := s.repo.Student.GetByID(ctx, studentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStudentNotFound
		}
		return err
	}
	return s.repo.Student.UpdateFields(ctx, studentID, map[string]interface{}{
		"weekly_goal": req.Goal,
	})
}

// toStudentResponse 组装响应并计算派生字段
func (s *progressionService) toStudentResponse(student *model.Student) *dto.StudentResponse {
	return &dto.StudentResponse{
		StudentID:          student.StudentID,
		UserID:             student.UserID,
		Name:               student.Name,
		Email:              student.Email,
		InstituteName:      student.InstituteName,
		ClassName:          student.ClassName,
		Section:            student.Section,
		BatchYear:          student.BatchYear,
		TotalPoints:        student.TotalPoints,
		Level:              student.Level,
		NextLevelPoints:    nextLevelPoints(student.Level),
		LevelProgress:      levelProgress(student.TotalPoints),
		ProgressPercentage: progressPercentage(student.TotalPoints),
		CurrentStreak:      student.CurrentStreak,
		LongestStreak:      student.LongestStreak,
		WeeklyGoal:         student.WeeklyGoal,
		CompletedThisWeek:  student.CompletedThisWeek,
		GlobalRank:         student.GlobalRank,
		ClassRank:          student.ClassRank,
	}
}

// [自证通过] internal/service/progression_service.go
