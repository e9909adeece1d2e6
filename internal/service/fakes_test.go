package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"careerdashboard/backend/config"
	"careerdashboard/backend/internal/model"
	"careerdashboard/backend/internal/repository"
)

// ═══════════════════════════════════════════════════════════
// 内存版 Repository 实现
// 唯一性约束与真实库对齐：冲突一律返回 gorm.ErrDuplicatedKey
// ═══════════════════════════════════════════════════════════

// ── StudentRepository ──

type fakeStudentRepo struct {
	students map[string]*model.Student // student_id → 档案
	failWith error                     // 非空时所有操作直接报错
	failKey  *model.HierarchyKey       // 非空时仅该层级键的查询报错
}

func newFakeStudentRepo() *fakeStudentRepo {
	return &fakeStudentRepo{students: make(map[string]*model.Student)}
}

func (r *fakeStudentRepo) Upsert(_ context.Context, student *model.Student) error {
	if r.failWith != nil {
		return r.failWith
	}
	for _, s := range r.students {
		if s.UserID == student.UserID {
			return nil // ON CONFLICT DO NOTHING
		}
	}
	student.StudentID = uuid.NewString()
	cp := *student
	r.students[student.StudentID] = &cp
	return nil
}

func (r *fakeStudentRepo) GetByUserID(_ context.Context, userID string) (*model.Student, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	for _, s := range r.students {
		if s.UserID == userID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeStudentRepo) GetByID(_ context.Context, id string) (*model.Student, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	if s, ok := r.students[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeStudentRepo) Update(_ context.Context, student *model.Student) error {
	cp := *student
	r.students[student.StudentID] = &cp
	return nil
}

func (r *fakeStudentRepo) UpdateFields(_ context.Context, studentID string, fields map[string]interface{}) error {
	if r.failWith != nil {
		return r.failWith
	}
	s, ok := r.students[studentID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for k, v := range fields {
		switch k {
		case "total_points":
			s.TotalPoints = v.(int)
		case "level":
			s.Level = v.(int)
		case "current_streak":
			s.CurrentStreak = v.(int)
		case "longest_streak":
			s.LongestStreak = v.(int)
		case "completed_this_week":
			s.CompletedThisWeek = v.(int)
		case "weekly_goal":
			s.WeeklyGoal = v.(int)
		case "last_activity_date":
			d := v.(time.Time)
			s.LastActivityDate = &d
		case "week_anchor":
			d := v.(time.Time)
			s.WeekAnchor = &d
		case "achievements":
			s.Achievements = v.(datatypes.JSON)
		}
	}
	return nil
}

func (r *fakeStudentRepo) ListByHierarchy(_ context.Context, key model.HierarchyKey) ([]model.Student, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	if r.failKey != nil && *r.failKey == key {
		return nil, errBoom
	}
	var out []model.Student
	for _, s := range r.students {
		if s.HierarchyKey == key {
			out = append(out, *s)
		}
	}
	return out, nil
}

// rankSort 与 studentRepo.ListRanked 的 SQL 排序保持一致
func rankSort(students []model.Student) {
	sort.SliceStable(students, func(i, j int) bool {
		a, b := students[i], students[j]
		if a.TotalPoints != b.TotalPoints {
			return a.TotalPoints > b.TotalPoints
		}
		switch {
		case a.LastActivityDate == nil && b.LastActivityDate == nil:
		case a.LastActivityDate == nil:
			return false
		case b.LastActivityDate == nil:
			return true
		case !a.LastActivityDate.Equal(*b.LastActivityDate):
			return a.LastActivityDate.Before(*b.LastActivityDate)
		}
		return a.UserID < b.UserID
	})
}

func (r *fakeStudentRepo) ListRanked(_ context.Context) ([]model.Student, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	out := make([]model.Student, 0, len(r.students))
	for _, s := range r.students {
		out = append(out, *s)
	}
	rankSort(out)
	return out, nil
}

func (r *fakeStudentRepo) ListRankedByHierarchy(_ context.Context, key model.HierarchyKey) ([]model.Student, error) {
	var out []model.Student
	for _, s := range r.students {
		if s.HierarchyKey == key {
			out = append(out, *s)
		}
	}
	rankSort(out)
	return out, nil
}

func (r *fakeStudentRepo) UpdateRanks(_ context.Context, updates []repository.RankUpdate) error {
	if r.failWith != nil {
		return r.failWith
	}
	for _, u := range updates {
		if s, ok := r.students[u.StudentID]; ok {
			s.GlobalRank = u.GlobalRank
			s.ClassRank = u.ClassRank
		}
	}
	return nil
}

func (r *fakeStudentRepo) TopN(_ context.Context, limit int) ([]model.Student, error) {
	out, err := r.ListRanked(context.Background())
	if err != nil {
		return nil, err
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ── TeacherRepository ──

type fakeTeacherRepo struct {
	teachers map[string]*model.Teacher
}

func newFakeTeacherRepo() *fakeTeacherRepo {
	return &fakeTeacherRepo{teachers: make(map[string]*model.Teacher)}
}

func (r *fakeTeacherRepo) Upsert(_ context.Context, teacher *model.Teacher) error {
	for _, t := range r.teachers {
		if t.UserID == teacher.UserID {
			return nil
		}
	}
	teacher.TeacherID = uuid.NewString()
	cp := *teacher
	r.teachers[teacher.TeacherID] = &cp
	return nil
}

func (r *fakeTeacherRepo) GetByUserID(_ context.Context, userID string) (*model.Teacher, error) {
	for _, t := range r.teachers {
		if t.UserID == userID {
			cp := *t
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeTeacherRepo) GetByID(_ context.Context, id string) (*model.Teacher, error) {
	if t, ok := r.teachers[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeTeacherRepo) UpdateSubjects(_ context.Context, teacherID string, subjects model.StringArray) error {
	t, ok := r.teachers[teacherID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	t.Subjects = subjects
	return nil
}

// ── CourseRepository ──

type fakeCourseRepo struct {
	courses map[string]*model.Course
}

func newFakeCourseRepo() *fakeCourseRepo {
	return &fakeCourseRepo{courses: make(map[string]*model.Course)}
}

func (r *fakeCourseRepo) Create(_ context.Context, course *model.Course) error {
	course.CourseID = uuid.NewString()
	cp := *course
	r.courses[course.CourseID] = &cp
	return nil
}

func (r *fakeCourseRepo) GetByID(_ context.Context, id string) (*model.Course, error) {
	if c, ok := r.courses[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCourseRepo) ListByTeacher(_ context.Context, teacherID string) ([]model.Course, error) {
	var out []model.Course
	for _, c := range r.courses {
		if c.TeacherID == teacherID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeCourseRepo) ListAutoEnrollable(_ context.Context) ([]model.Course, error) {
	var out []model.Course
	for _, c := range r.courses {
		if c.AutoEnrollmentEnabled {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CourseID < out[j].CourseID })
	return out, nil
}

// ── EnrollmentRepository ──

type fakeEnrollmentRepo struct {
	enrollments map[string]*model.Enrollment
	modules     map[string][]model.EnrollmentModule // enrollment_id → 明细
	courses     *fakeCourseRepo                     // GetByID 预加载 Course 用
}

func newFakeEnrollmentRepo(courses *fakeCourseRepo) *fakeEnrollmentRepo {
	return &fakeEnrollmentRepo{
		enrollments: make(map[string]*model.Enrollment),
		modules:     make(map[string][]model.EnrollmentModule),
		courses:     courses,
	}
}

func (r *fakeEnrollmentRepo) Create(_ context.Context, e *model.Enrollment) error {
	// 模拟部分唯一索引 uq_enrollments_active
	for _, existing := range r.enrollments {
		if existing.StudentID == e.StudentID && existing.CourseID == e.CourseID &&
			existing.Status != model.EnrollmentDropped {
			return gorm.ErrDuplicatedKey
		}
	}
	e.EnrollmentID = uuid.NewString()
	e.EnrolledAt = time.Now()
	cp := *e
	r.enrollments[e.EnrollmentID] = &cp
	return nil
}

func (r *fakeEnrollmentRepo) GetByID(_ context.Context, id string) (*model.Enrollment, error) {
	e, ok := r.enrollments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *e
	if c, ok := r.courses.courses[e.CourseID]; ok {
		course := *c
		cp.Course = &course
	}
	return &cp, nil
}

func (r *fakeEnrollmentRepo) GetActive(_ context.Context, studentID, courseID string) (*model.Enrollment, error) {
	for _, e := range r.enrollments {
		if e.StudentID == studentID && e.CourseID == courseID && e.Status != model.EnrollmentDropped {
			cp := *e
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeEnrollmentRepo) ListByStudent(_ context.Context, studentID string) ([]model.Enrollment, error) {
	var out []model.Enrollment
	for _, e := range r.enrollments {
		if e.StudentID == studentID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *fakeEnrollmentRepo) Update(_ context.Context, e *model.Enrollment) error {
	cp := *e
	cp.Course = nil
	r.enrollments[e.EnrollmentID] = &cp
	return nil
}

func (r *fakeEnrollmentRepo) AddModule(_ context.Context, em *model.EnrollmentModule) (bool, error) {
	for _, m := range r.modules[em.EnrollmentID] {
		if m.ModuleID == em.ModuleID {
			return false, nil // ON CONFLICT DO NOTHING
		}
	}
	em.EnrollmentModuleID = uuid.NewString()
	r.modules[em.EnrollmentID] = append(r.modules[em.EnrollmentID], *em)
	return true, nil
}

func (r *fakeEnrollmentRepo) ListModules(_ context.Context, enrollmentID string) ([]model.EnrollmentModule, error) {
	return append([]model.EnrollmentModule(nil), r.modules[enrollmentID]...), nil
}

func (r *fakeEnrollmentRepo) CountModules(_ context.Context, enrollmentID string) (int64, error) {
	return int64(len(r.modules[enrollmentID])), nil
}

// ── AssignmentRepository ──

type fakeAssignmentRepo struct {
	records []model.AssignmentRecord
}

func newFakeAssignmentRepo() *fakeAssignmentRepo {
	return &fakeAssignmentRepo{}
}

func (r *fakeAssignmentRepo) Create(_ context.Context, record *model.AssignmentRecord) error {
	// 模拟部分唯一索引 uq_assignment_records_graded
	if record.AssignmentID != nil {
		for _, existing := range r.records {
			if existing.StudentID == record.StudentID &&
				existing.AssignmentID != nil && *existing.AssignmentID == *record.AssignmentID {
				return gorm.ErrDuplicatedKey
			}
		}
	}
	record.RecordID = uuid.NewString()
	r.records = append(r.records, *record)
	return nil
}

func (r *fakeAssignmentRepo) ListByStudent(_ context.Context, studentID string) ([]model.AssignmentRecord, error) {
	var out []model.AssignmentRecord
	for _, rec := range r.records {
		if rec.StudentID == studentID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *fakeAssignmentRepo) CountByStudent(_ context.Context, studentID string) (int64, error) {
	out, _ := r.ListByStudent(context.Background(), studentID)
	return int64(len(out)), nil
}

// ── AttendanceRepository ──

type fakeAttendanceRepo struct {
	records map[string]*model.Attendance
}

func newFakeAttendanceRepo() *fakeAttendanceRepo {
	return &fakeAttendanceRepo{records: make(map[string]*model.Attendance)}
}

func (r *fakeAttendanceRepo) Create(_ context.Context, a *model.Attendance) error {
	// 模拟唯一索引 uq_attendance_day
	for _, existing := range r.records {
		if existing.StudentID == a.StudentID && existing.CourseRef == a.CourseRef &&
			existing.Date.Equal(a.Date) {
			return gorm.ErrDuplicatedKey
		}
	}
	a.AttendanceID = uuid.NewString()
	cp := *a
	r.records[a.AttendanceID] = &cp
	return nil
}

func (r *fakeAttendanceRepo) GetByID(_ context.Context, id string) (*model.Attendance, error) {
	if a, ok := r.records[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeAttendanceRepo) GetByDay(_ context.Context, studentID, courseRef string, date time.Time) (*model.Attendance, error) {
	for _, a := range r.records {
		if a.StudentID == studentID && a.CourseRef == courseRef && a.Date.Equal(date) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeAttendanceRepo) Update(_ context.Context, a *model.Attendance) error {
	cp := *a
	r.records[a.AttendanceID] = &cp
	return nil
}

func (r *fakeAttendanceRepo) CountByStatus(_ context.Context, courseRef, studentID string) ([]repository.StatusCount, error) {
	counts := make(map[model.AttendanceStatus]int64)
	for _, a := range r.records {
		if a.CourseRef != courseRef {
			continue
		}
		if studentID != "" && a.StudentID != studentID {
			continue
		}
		counts[a.Status]++
	}
	var out []repository.StatusCount
	for st, n := range counts {
		out = append(out, repository.StatusCount{Status: st, Count: n})
	}
	return out, nil
}

func (r *fakeAttendanceRepo) SubjectCounts(_ context.Context, studentID string) ([]repository.SubjectCounts, error) {
	bySubject := make(map[string]*repository.SubjectCounts)
	for _, a := range r.records {
		if a.StudentID != studentID {
			continue
		}
		row, ok := bySubject[a.Subject]
		if !ok {
			row = &repository.SubjectCounts{Subject: a.Subject}
			bySubject[a.Subject] = row
		}
		row.Total++
		switch a.Status {
		case model.AttendancePresent:
			row.Present++
		case model.AttendanceAbsent:
			row.Absent++
		}
	}
	keys := make([]string, 0, len(bySubject))
	for k := range bySubject {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]repository.SubjectCounts, 0, len(keys))
	for _, k := range keys {
		out = append(out, *bySubject[k])
	}
	return out, nil
}

// ── 组装 ──

type fakeRepos struct {
	student    *fakeStudentRepo
	teacher    *fakeTeacherRepo
	course     *fakeCourseRepo
	enrollment *fakeEnrollmentRepo
	assignment *fakeAssignmentRepo
	attendance *fakeAttendanceRepo
	repo       *repository.Repository
}

func newFakeRepos() *fakeRepos {
	student := newFakeStudentRepo()
	teacher := newFakeTeacherRepo()
	course := newFakeCourseRepo()
	enrollment := newFakeEnrollmentRepo(course)
	assignment := newFakeAssignmentRepo()
	attendance := newFakeAttendanceRepo()
	return &fakeRepos{
		student:    student,
		teacher:    teacher,
		course:     course,
		enrollment: enrollment,
		assignment: assignment,
		attendance: attendance,
		repo: &repository.Repository{
			Student:    student,
			Teacher:    teacher,
			Course:     course,
			Enrollment: enrollment,
			Assignment: assignment,
			Attendance: attendance,
		},
	}
}

// errBoom 故障注入用的底层错误
var errBoom = errors.New("storage unavailable")

// mustDate 测试辅助：YYYY-MM-DD → time.Time（UTC 零点）
func mustDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// containsStr 子串断言辅助
func containsStr(s, sub string) bool { return strings.Contains(s, sub) }

// testConfig 单测用的最小配置
func testConfig() *config.Config {
	return &config.Config{
		Ranking: config.RankingConfig{
			RecomputeInterval: 5 * time.Minute,
			DebounceWindow:    10 * time.Second,
			CacheTTL:          30 * time.Second,
			TopNDefault:       10,
		},
		Progression: config.ProgressionConfig{WeeklyGoalDefault: 5},
	}
}
