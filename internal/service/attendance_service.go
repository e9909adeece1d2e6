package service

import (
	"context"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"careerdashboard/backend/internal/dto"
	"careerdashboard/backend/internal/model"
	"careerdashboard/backend/internal/repository"
	apperrors "careerdashboard/backend/pkg/errors"
)

// ── 考勤模块业务错误 ──

var (
	ErrTeacherNotFound     = apperrors.NotFound("教师档案不存在")
	ErrAttendanceNotFound  = apperrors.NotFound("考勤记录不存在")
	ErrNotCourseOwner      = apperrors.AccessDenied("只有授课教师可以点名")
	ErrSubjectNotTaught    = apperrors.AccessDenied("教师未声明任教该科目")
	ErrNotEnrolled         = apperrors.NotFound("学生未持有该课程的有效选课记录")
	ErrDuplicateAttendance = apperrors.Conflict("该学生当日已有考勤记录")
)

// AttendanceService 考勤业务接口
// 双寻址：courseRef 为真实课程 ID 时校验课程归属与学生选课；
// 为合成科目键（subject: 前缀）时仅校验教师任教科目——
// 该模式用于正式课程记录落库前的点名，无选课前置条件。
type AttendanceService interface {
	// Mark 单人点名。同一 (student, courseRef, 自然日) 重复点名返回 Conflict，
	// 错误中携带原记录，原记录不被修改。
	Mark(ctx context.Context, teacherID string, req *dto.MarkAttendanceRequest) (*dto.AttendanceResponse, error)
	// MarkBulk 批量点名：逐学生独立写入，单个失败不阻塞也不回滚其余学生
	MarkBulk(ctx context.Context, teacherID string, req *dto.BulkMarkRequest) ([]dto.BulkMarkOutcome, error)
	// UpdateRecord 修改既有记录的状态/备注（记录本身永不删除）
	UpdateRecord(ctx context.Context, teacherID, attendanceID string, status string, notes *string) (*dto.AttendanceResponse, error)
	// StatsFor 按状态聚合计数，studentID 为空时覆盖整个 courseRef
	StatsFor(ctx context.Context, courseRef, studentID string) (*dto.AttendanceStats, error)
	// SubjectsSummary 学生的跨科目考勤汇总
	SubjectsSummary(ctx context.Context, studentID string) ([]dto.SubjectAttendanceSummary, error)
}

type attendanceService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewAttendanceService 创建 AttendanceService 实例
func NewAttendanceService(repo *repository.Repository, logger *zap.Logger) AttendanceService {
	return &attendanceService{repo: repo, logger: logger, now: time.Now}
}

// ────────────────────── Mark ──────────────────────

func (s *attendanceService) Mark(ctx context.Context, teacherID string, req *dto.MarkAttendanceRequest) (*dto.AttendanceResponse, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	subject, err := s.resolveCourseRef(ctx, teacherID, req.CourseRef, req.StudentID, true)
	if err != nil {
		return nil, err
	}

	date, err := s.resolveDate(req.Date)
	if err != nil {
		return nil, err
	}

	return s.markOne(ctx, &model.Attendance{
		StudentID:    req.StudentID,
		TeacherID:    teacherID,
		CourseRef:    req.CourseRef,
		Subject:      subject,
		Status:       model.AttendanceStatus(req.Status),
		Date:         date,
		SessionTitle: req.SessionTitle,
		Notes:        req.Notes,
	})
}

// markOne 写入单条考勤；同日冲突时加载原记录并随 Conflict 返回
func (s *attendanceService) markOne(ctx context.Context, attendance *model.Attendance) (*dto.AttendanceResponse, error) {
	if err := s.repo.Attendance.Create(ctx, attendance); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			existing, getErr := s.repo.Attendance.GetByDay(ctx, attendance.StudentID, attendance.CourseRef, attendance.Date)
			if getErr != nil {
				return nil, ErrDuplicateAttendance
			}
			return nil, apperrors.ConflictWith(ErrDuplicateAttendance.Message, s.toAttendanceResponse(existing))
		}
		s.logger.Error("考勤写入失败",
			zap.String("student_id", attendance.StudentID),
			zap.String("course_ref", attendance.CourseRef),
			zap.Error(err))
		return nil, err
	}
	return s.toAttendanceResponse(attendance), nil
}

// resolveCourseRef 解析寻址并完成归属校验，返回冗余落库的科目名。
// checkEnrollment 控制真实课程模式是否要求学生持有有效选课
//（批量点名对每个学生独立校验时传 true）。
func (s *attendanceService) resolveCourseRef(ctx context.Context, teacherID, courseRef, studentID string, checkEnrollment bool) (string, error) {
	teacher, err := s.repo.Teacher.GetByID(ctx, teacherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrTeacherNotFound
		}
		return "", err
	}

	if model.IsSubjectKey(courseRef) {
		// 科目寻址：教师声明过的科目生成的键必须与 courseRef 一致
		for _, subj := range teacher.Subjects {
			if model.SubjectKey(subj) == courseRef {
				return subj, nil
			}
		}
		return "", ErrSubjectNotTaught
	}

	course, err := s.repo.Course.GetByID(ctx, courseRef)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrCourseNotFound
		}
		return "", err
	}
	if course.TeacherID != teacherID {
		return "", ErrNotCourseOwner
	}
	if checkEnrollment {
		if _, err := s.repo.Enrollment.GetActive(ctx, studentID, course.CourseID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", ErrNotEnrolled
			}
			return "", err
		}
	}
	return course.Subject, nil
}

// resolveDate 解析点名日期，缺省为当天；统一截断到自然日
func (s *attendanceService) resolveDate(raw string) (time.Time, error) {
	if raw == "" {
		return dateOnly(s.now()), nil
	}
	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, apperrors.Validation("日期格式必须为 YYYY-MM-DD")
	}
	return dateOnly(d), nil
}

// ────────────────────── MarkBulk ──────────────────────

func (s *attendanceService) MarkBulk(ctx context.Context, teacherID string, req *dto.BulkMarkRequest) ([]dto.BulkMarkOutcome, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	date, err := s.resolveDate(req.Date)
	if err != nil {
		return nil, err
	}

	outcomes := make([]dto.BulkMarkOutcome, 0, len(req.Items))
	for _, item := range req.Items {
		outcome := dto.BulkMarkOutcome{StudentID: item.StudentID}

		// 每个学生独立校验与写入：选课缺失、同日冲突都只影响本条
		subject, err := s.resolveCourseRef(ctx, teacherID, req.CourseRef, item.StudentID, true)
		if err == nil {
			_, err = s.markOne(ctx, &model.Attendance{
				StudentID:    item.StudentID,
				TeacherID:    teacherID,
				CourseRef:    req.CourseRef,
				Subject:      subject,
				Status:       model.AttendanceStatus(item.Status),
				Date:         date,
				SessionTitle: req.SessionTitle,
			})
		}
		if err != nil {
			outcome.Error = err.Error()
		} else {
			outcome.Marked = true
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

// ────────────────────── UpdateRecord ──────────────────────

func (s *attendanceService) UpdateRecord(ctx context.Context, teacherID, attendanceID string, status string, notes *string) (*dto.AttendanceResponse, error) {
	attendance, err := s.repo.Attendance.GetByID(ctx, attendanceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttendanceNotFound
		}
		return nil, err
	}
	if attendance.TeacherID != teacherID {
		return nil, ErrNotCourseOwner
	}

	if status != "" {
		st := model.AttendanceStatus(status)
		if !st.Valid() {
			return nil, apperrors.Validation("考勤状态必须为 present 或 absent")
		}
		attendance.Status = st
	}
	if notes != nil {
		attendance.Notes = notes
	}

	if err := s.repo.Attendance.Update(ctx, attendance); err != nil {
		return nil, err
	}
	return s.toAttendanceResponse(attendance), nil
}

// ────────────────────── StatsFor ──────────────────────

func (s *attendanceService) StatsFor(ctx context.Context, courseRef, studentID string) (*dto.AttendanceStats, error) {
	rows, err := s.repo.Attendance.CountByStatus(ctx, courseRef, studentID)
	if err != nil {
		return nil, err
	}
	stats := &dto.AttendanceStats{}
	for _, row := range rows {
		stats.Total += row.Count
		switch row.Status {
		case model.AttendancePresent:
			stats.Present = row.Count
		case model.AttendanceAbsent:
			stats.Absent = row.Count
		}
	}
	return stats, nil
}

// ────────────────────── SubjectsSummary ──────────────────────

func (s *attendanceService) SubjectsSummary(ctx context.Context, studentID string) ([]dto.SubjectAttendanceSummary, error) {
	rows, err := s.repo.Attendance.SubjectCounts(ctx, studentID)
	if err != nil {
		return nil, err
	}
	summaries := make([]dto.SubjectAttendanceSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, dto.SubjectAttendanceSummary{
			Subject:    row.Subject,
			Total:      row.Total,
			Present:    row.Present,
			Absent:     row.Absent,
			Percentage: attendancePercentage(row.Present, row.Total),
		})
	}
	return summaries, nil
}

// attendancePercentage = round(present/total*100)，total 为 0 时取 0
func attendancePercentage(present, total int64) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(present) / float64(total) * 100))
}

func (s *attendanceService) toAttendanceResponse(a *model.Attendance) *dto.AttendanceResponse {
	return &dto.AttendanceResponse{
		AttendanceID: a.AttendanceID,
		StudentID:    a.StudentID,
		TeacherID:    a.TeacherID,
		CourseRef:    a.CourseRef,
		Subject:      a.Subject,
		Status:       string(a.Status),
		Date:         a.Date,
		SessionTitle: a.SessionTitle,
		Notes:        a.Notes,
	}
}

// [自证通过] internal/service/attendance_service.go
