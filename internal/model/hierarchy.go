package model

import "strings"

// HierarchyKey 四元层级键（学校/班级/分组/届别），学生与课程共用。
// 自动选课匹配要求四个字段全部精确相等；任一字段为空即不参与匹配。
type HierarchyKey struct {
	InstituteName string `gorm:"type:varchar(255);not null;default:''" json:"institute_name"`
	ClassName     string `gorm:"type:varchar(100);not null;default:''" json:"class_name"`
	Section       string `gorm:"type:varchar(50);not null;default:''"  json:"section"`
	BatchYear     string `gorm:"type:varchar(20);not null;default:''"  json:"batch_year"`
}

// Complete 四个字段是否全部非空（空字段不允许参与自动匹配）
func (k HierarchyKey) Complete() bool {
	return strings.TrimSpace(k.InstituteName) != "" &&
		strings.TrimSpace(k.ClassName) != "" &&
		strings.TrimSpace(k.Section) != "" &&
		strings.TrimSpace(k.BatchYear) != ""
}

// Matches 两个层级键是否可匹配：双方均完整且四字段精确相等
func (k HierarchyKey) Matches(other HierarchyKey) bool {
	if !k.Complete() || !other.Complete() {
		return false
	}
	return k.InstituteName == other.InstituteName &&
		k.ClassName == other.ClassName &&
		k.Section == other.Section &&
		k.BatchYear == other.BatchYear
}
