package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"careerdashboard/backend/internal/dto"
	apperrors "careerdashboard/backend/pkg/errors"
)

func setupTestCourseService() (CourseService, *fakeRepos) {
	repos := newFakeRepos()
	logger := zap.NewNop()
	matcher := NewMatcherService(repos.repo, logger)
	return NewCourseService(repos.repo, matcher, logger), repos
}

func TestCourseService_FindOrCreateTeacher_Idempotent(t *testing.T) {
	svc, _ := setupTestCourseService()
	ctx := context.Background()

	first, err := svc.FindOrCreateTeacher(ctx, &dto.UpsertTeacherRequest{UserID: "teacher-user", Name: "王老师"})
	if err != nil {
		t.Fatalf("FindOrCreateTeacher: %v", err)
	}
	again, err := svc.FindOrCreateTeacher(ctx, &dto.UpsertTeacherRequest{UserID: "teacher-user", Name: "别名"})
	if err != nil {
		t.Fatalf("二次 FindOrCreateTeacher: %v", err)
	}
	if again.TeacherID != first.TeacherID {
		t.Error("同一 user_id 应返回同一条教师档案")
	}
	if again.Name != "王老师" {
		t.Errorf("重复 upsert 不应覆盖既有资料，got %q", again.Name)
	}
}

func TestCourseService_DeclareSubject(t *testing.T) {
	svc, repos := setupTestCourseService()
	ctx := context.Background()

	teacher, _ := svc.FindOrCreateTeacher(ctx, &dto.UpsertTeacherRequest{UserID: "teacher-user"})

	key, err := svc.DeclareSubject(ctx, teacher.TeacherID, "Social Science")
	if err != nil {
		t.Fatalf("DeclareSubject: %v", err)
	}
	if key != "subject:social-science" {
		t.Errorf("合成科目键 = %q, want subject:social-science", key)
	}

	// 重复声明幂等
	if _, err := svc.DeclareSubject(ctx, teacher.TeacherID, "Social Science"); err != nil {
		t.Fatalf("重复声明: %v", err)
	}
	stored, _ := repos.teacher.GetByID(ctx, teacher.TeacherID)
	if len(stored.Subjects) != 1 {
		t.Errorf("科目数 = %d, want 1", len(stored.Subjects))
	}
}

func TestCourseService_DeclareSubject_Errors(t *testing.T) {
	svc, _ := setupTestCourseService()
	ctx := context.Background()

	teacher, _ := svc.FindOrCreateTeacher(ctx, &dto.UpsertTeacherRequest{UserID: "teacher-user"})

	if _, err := svc.DeclareSubject(ctx, teacher.TeacherID, "   "); !apperrors.IsValidation(err) {
		t.Errorf("空科目名应返回 Validation，got %v", err)
	}
	if _, err := svc.DeclareSubject(ctx, "missing", "Math"); !errors.Is(err, ErrTeacherNotFound) {
		t.Errorf("未知教师应返回 ErrTeacherNotFound，got %v", err)
	}
}

func TestCourseService_CreateCourse_AutoEnrollsMatches(t *testing.T) {
	svc, repos := setupTestCourseService()
	ctx := context.Background()

	teacher, _ := svc.FindOrCreateTeacher(ctx, &dto.UpsertTeacherRequest{UserID: "teacher-user"})
	studentID := seedMatcherStudent(repos, "match-1", classKey)

	course, err := svc.CreateCourse(ctx, teacher.TeacherID, &dto.CreateCourseRequest{
		Title:                 "数学进阶",
		Subject:               "Mathematics",
		InstituteName:         classKey.InstituteName,
		ClassName:             classKey.ClassName,
		Section:               classKey.Section,
		BatchYear:             classKey.BatchYear,
		ModuleCount:           6,
		AutoEnrollmentEnabled: true,
	})
	if err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}

	// 建课即执行一轮匹配选课
	if _, err := repos.enrollment.GetActive(ctx, studentID, course.CourseID); err != nil {
		t.Errorf("匹配学生未被自动选入：%v", err)
	}
}

func TestCourseService_CreateCourse_NoAutoEnrollWhenDisabled(t *testing.T) {
	svc, repos := setupTestCourseService()
	ctx := context.Background()

	teacher, _ := svc.FindOrCreateTeacher(ctx, &dto.UpsertTeacherRequest{UserID: "teacher-user"})
	seedMatcherStudent(repos, "match-1", classKey)

	_, err := svc.CreateCourse(ctx, teacher.TeacherID, &dto.CreateCourseRequest{
		Title:         "数学进阶",
		Subject:       "Mathematics",
		InstituteName: classKey.InstituteName,
		ClassName:     classKey.ClassName,
		Section:       classKey.Section,
		BatchYear:     classKey.BatchYear,
	})
	if err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}
	if len(repos.enrollment.enrollments) != 0 {
		t.Errorf("未开启自动选课不应产生选课记录，got %d", len(repos.enrollment.enrollments))
	}
}

func TestCourseService_CreateCourse_UnknownTeacher(t *testing.T) {
	svc, _ := setupTestCourseService()
	_, err := svc.CreateCourse(context.Background(), "missing", &dto.CreateCourseRequest{
		Title:   "化学",
		Subject: "Chemistry",
	})
	if !errors.Is(err, ErrTeacherNotFound) {
		t.Errorf("未知教师应返回 ErrTeacherNotFound，got %v", err)
	}
}

func TestCourseService_ListByTeacher(t *testing.T) {
	svc, _ := setupTestCourseService()
	ctx := context.Background()

	teacher, _ := svc.FindOrCreateTeacher(ctx, &dto.UpsertTeacherRequest{UserID: "teacher-user"})
	for _, title := range []string{"课程甲", "课程乙"} {
		if _, err := svc.CreateCourse(ctx, teacher.TeacherID, &dto.CreateCourseRequest{
			Title: title, Subject: "Mathematics",
		}); err != nil {
			t.Fatalf("CreateCourse(%s): %v", title, err)
		}
	}

	courses, err := svc.ListByTeacher(ctx, teacher.TeacherID)
	if err != nil {
		t.Fatalf("ListByTeacher: %v", err)
	}
	if len(courses) != 2 {
		t.Errorf("课程数 = %d, want 2", len(courses))
	}
}
