package model

import "testing"

func TestSubjectKey(t *testing.T) {
	cases := []struct {
		subject string
		want    string
	}{
		{"Mathematics", "subject:mathematics"},
		{"Social Science", "subject:social-science"},
		{"  Data   Structures  ", "subject:data-structures"},
		{"PHYSICS", "subject:physics"},
	}
	for _, c := range cases {
		if got := SubjectKey(c.subject); got != c.want {
			t.Errorf("SubjectKey(%q) = %q, want %q", c.subject, got, c.want)
		}
	}
}

func TestIsSubjectKey(t *testing.T) {
	if !IsSubjectKey("subject:mathematics") {
		t.Error("合成键未被识别")
	}
	if IsSubjectKey("550e8400-e29b-41d4-a716-446655440000") {
		t.Error("课程 ID 被误判为合成键")
	}
}

func TestHierarchyKey_Complete(t *testing.T) {
	full := HierarchyKey{InstituteName: "Sunrise", ClassName: "10", Section: "A", BatchYear: "2025"}
	if !full.Complete() {
		t.Error("完整键判定失败")
	}

	blank := full
	blank.Section = "   "
	if blank.Complete() {
		t.Error("纯空白字段不应视为完整")
	}
}

func TestHierarchyKey_Matches(t *testing.T) {
	full := HierarchyKey{InstituteName: "Sunrise", ClassName: "10", Section: "A", BatchYear: "2025"}

	if !full.Matches(full) {
		t.Error("相同完整键应匹配")
	}

	other := full
	other.BatchYear = "2026"
	if full.Matches(other) {
		t.Error("届别不同不应匹配")
	}

	// 双方同为空的字段相等也不构成匹配
	partialA := HierarchyKey{InstituteName: "Sunrise", ClassName: "10", Section: "A"}
	partialB := partialA
	if partialA.Matches(partialB) {
		t.Error("不完整键之间不应匹配")
	}
}

func TestStringArray_ScanAndValue(t *testing.T) {
	var arr StringArray
	if err := arr.Scan(`{Mathematics,"Social Science",Physics}`); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(arr) != 3 || arr[0] != "Mathematics" || arr[1] != "Social Science" {
		t.Errorf("解析结果异常：%v", arr)
	}

	v, err := StringArray{"a", "b"}.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if v != "{a,b}" {
		t.Errorf("序列化结果 = %v, want {a,b}", v)
	}

	if err := arr.Scan("{}"); err != nil {
		t.Fatalf("Scan 空集合: %v", err)
	}
	if len(arr) != 0 {
		t.Errorf("空集合解析出 %d 个元素", len(arr))
	}
}

func TestStringArray_Contains(t *testing.T) {
	arr := StringArray{"Mathematics", "Physics"}
	if !arr.Contains("mathematics") {
		t.Error("Contains 应大小写不敏感")
	}
	if arr.Contains("Chemistry") {
		t.Error("不存在的元素被判定为存在")
	}
}

func TestEnrollmentStatus(t *testing.T) {
	if !EnrollmentEnrolled.Valid() || !EnrollmentCompleted.Valid() || !EnrollmentDropped.Valid() {
		t.Error("合法状态判定失败")
	}
	if EnrollmentStatus("paused").Valid() {
		t.Error("非法状态被判定为合法")
	}
	if EnrollmentEnrolled.Terminal() {
		t.Error("enrolled 不是终态")
	}
	if !EnrollmentCompleted.Terminal() || !EnrollmentDropped.Terminal() {
		t.Error("completed/dropped 应为终态")
	}
}
