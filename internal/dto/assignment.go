package dto

import (
	"careerdashboard/backend/internal/model"

	apperrors "careerdashboard/backend/pkg/errors"
)

// ── 作业/积分模块 DTO ──

// CompleteAssignmentRequest 完成作业请求（按 kind 区分的标签变体）
// AssignmentID 为空表示可重复的积分活动，不参与重复提交去重。
type CompleteAssignmentRequest struct {
	AssignmentID *string `json:"assignment_id" validate:"omitempty,min=1,max=64"`
	Title        string  `json:"title"         validate:"required,max=255"`
	Kind         string  `json:"kind"          validate:"required,oneof=multiple_choice true_false homework activity"`
	Score        float64 `json:"score"         validate:"min=0,max=100"`
	PointsEarned int     `json:"points_earned" validate:"min=0"`

	// 变体载荷：仅对应 kind 的字段允许出现
	Options       []string `json:"options,omitempty"        validate:"omitempty,max=10,dive,max=500"`
	CorrectOption *int     `json:"correct_option,omitempty" validate:"omitempty,min=0"`
	Answer        *bool    `json:"answer,omitempty"`
	Submission    *string  `json:"submission,omitempty"     validate:"omitempty,max=10000"`
}

// Normalize 校验标签变体的结构一致性并给出模型层类别。
// 动态载荷在边界处收敛：选择题必须带选项，判断题必须带答案，
// 混入其他变体的字段一律拒绝。
func (r *CompleteAssignmentRequest) Normalize() (model.AssignmentKind, error) {
	if err := Validate(r); err != nil {
		return "", err
	}
	kind := model.AssignmentKind(r.Kind)
	switch kind {
	case model.AssignmentMultipleChoice:
		if len(r.Options) < 2 || r.CorrectOption == nil {
			return "", apperrors.Validation("选择题必须提供至少两个选项与正确项下标")
		}
		if *r.CorrectOption >= len(r.Options) {
			return "", apperrors.Validation("正确项下标超出选项范围")
		}
		if r.Answer != nil || r.Submission != nil {
			return "", apperrors.Validation("选择题载荷不允许携带其他变体字段")
		}
	case model.AssignmentTrueFalse:
		if r.Answer == nil {
			return "", apperrors.Validation("判断题必须提供答案")
		}
		if len(r.Options) > 0 || r.CorrectOption != nil || r.Submission != nil {
			return "", apperrors.Validation("判断题载荷不允许携带其他变体字段")
		}
	case model.AssignmentHomework:
		if len(r.Options) > 0 || r.CorrectOption != nil || r.Answer != nil {
			return "", apperrors.Validation("作业载荷不允许携带其他变体字段")
		}
	case model.AssignmentActivity:
		if r.AssignmentID != nil {
			return "", apperrors.Validation("积分活动不携带 assignment_id")
		}
	}
	return kind, nil
}

// AssignmentHistoryEntry 作业历史条目响应
type AssignmentHistoryEntry struct {
	AssignmentID *string `json:"assignment_id,omitempty"`
	Title        string  `json:"title"`
	Kind         string  `json:"kind"`
	Score        float64 `json:"score"`
	PointsEarned int     `json:"points_earned"`
	CompletedAt  string  `json:"completed_at"`
}
