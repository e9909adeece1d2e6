package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"careerdashboard/backend/internal/dto"
	"careerdashboard/backend/internal/model"
	"careerdashboard/backend/internal/repository"
	apperrors "careerdashboard/backend/pkg/errors"
)

// ── 课程模块业务错误 ──

var ErrSubjectEmpty = apperrors.Validation("科目名不能为空")

// CourseService 教师档案与课程管理业务接口
type CourseService interface {
	// FindOrCreateTeacher 教师档案 find-or-create，语义同学生档案的原子 upsert
	FindOrCreateTeacher(ctx context.Context, req *dto.UpsertTeacherRequest) (*model.Teacher, error)
	// DeclareSubject 教师声明任教科目；声明后即可按合成科目键点名。
	// 返回该科目的合成键。重复声明幂等。
	DeclareSubject(ctx context.Context, teacherID, subject string) (string, error)
	// CreateCourse 创建课程；开启自动选课时立即执行一轮层级匹配
	CreateCourse(ctx context.Context, teacherID string, req *dto.CreateCourseRequest) (*model.Course, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]model.Course, error)
}

type courseService struct {
	repo    *repository.Repository
	matcher MatcherService
	logger  *zap.Logger
	now     func() time.Time
}

// NewCourseService 创建 CourseService 实例
func NewCourseService(repo *repository.Repository, matcher MatcherService, logger *zap.Logger) CourseService {
	return &courseService{repo: repo, matcher: matcher, logger: logger, now: time.Now}
}

// ────────────────────── FindOrCreateTeacher ──────────────────────

func (s *courseService) FindOrCreateTeacher(ctx context.Context, req *dto.UpsertTeacherRequest) (*model.Teacher, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	teacher := &model.Teacher{
		UserID: req.UserID,
		Name:   req.Name,
		Email:  req.Email,
	}
	if err := s.repo.Teacher.Upsert(ctx, teacher); err != nil {
		s.logger.Error("教师档案 upsert 失败", zap.String("user_id", req.UserID), zap.Error(err))
		return nil, err
	}
	return s.repo.Teacher.GetByUserID(ctx, req.UserID)
}

// ────────────────────── DeclareSubject ──────────────────────

func (s *courseService) DeclareSubject(ctx context.Context, teacherID, subject string) (string, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "", ErrSubjectEmpty
	}

	teacher, err := s.repo.Teacher.GetByID(ctx, teacherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrTeacherNotFound
		}
		return "", err
	}

	if !teacher.Subjects.Contains(subject) {
		subjects := append(teacher.Subjects, subject)
		if err := s.repo.Teacher.UpdateSubjects(ctx, teacherID, subjects); err != nil {
			return "", err
		}
	}
	return model.SubjectKey(subject), nil
}

// ────────────────────── CreateCourse ──────────────────────

func (s *courseService) CreateCourse(ctx context.Context, teacherID string, req *dto.CreateCourseRequest) (*model.Course, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.repo.Teacher.GetByID(ctx, teacherID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeacherNotFound
		}
		return nil, err
	}

	course := &model.Course{
		TeacherID: teacherID,
		Title:     req.Title,
		Subject:   req.Subject,
		HierarchyKey: model.HierarchyKey{
			InstituteName: req.InstituteName,
			ClassName:     req.ClassName,
			Section:       req.Section,
			BatchYear:     req.BatchYear,
		},
		ModuleCount:           req.ModuleCount,
		AutoEnrollmentEnabled: req.AutoEnrollmentEnabled,
		CertificateEnabled:    req.CertificateEnabled,
	}
	if err := s.repo.Course.Create(ctx, course); err != nil {
		s.logger.Error("课程创建失败", zap.String("teacher_id", teacherID), zap.Error(err))
		return nil, err
	}

	// 建课即匹配一轮；失败不影响课程创建，后续批量任务兜底
	if course.AutoEnrollmentEnabled {
		if result, err := s.matcher.AutoEnrollStudents(ctx, course.CourseID); err != nil {
			s.logger.Warn("建课自动选课失败", zap.String("course_id", course.CourseID), zap.Error(err))
		} else {
			s.logger.Info("建课自动选课完成",
				zap.String("course_id", course.CourseID),
				zap.Int("enrolled", result.Enrolled))
		}
	}

	return course, nil
}

// ────────────────────── ListByTeacher ──────────────────────

func (s *courseService) ListByTeacher(ctx context.Context, teacherID string) ([]model.Course, error) {
	return s.repo.Course.ListByTeacher(ctx, teacherID)
}
