package errors

import (
	"errors"
	"fmt"
)

// Kind 业务错误分类
type Kind int

const (
	KindValidation   Kind = iota + 1 // 输入不合法
	KindNotFound                     // 引用的实体不存在
	KindConflict                     // 唯一性冲突（重复选课/同日重复考勤/重复提交作业）
	KindAccessDenied                 // 角色或归属校验未通过
	KindInvalidState                 // 状态机不允许的迁移
)

// Error 携带分类的业务错误
// Existing 用于冲突场景回传已存在的记录（如同日考勤冲突返回原记录）
type Error struct {
	Kind     Kind
	Message  string
	Existing interface{}
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap 支持 errors.Is / errors.As 链式判断
func (e *Error) Unwrap() error { return e.Err }

// Is 同 Kind 且消息一致即视为匹配，服务层以此定义哨兵错误
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind && (t.Message == "" || t.Message == e.Message)
	}
	return false
}

// ── 构造函数 ──

// Validation 输入校验错误，message 原样透出给调用方
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// NotFound 实体不存在
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Conflict 唯一性冲突
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// ConflictWith 唯一性冲突并回传已存在的记录
func ConflictWith(message string, existing interface{}) *Error {
	return &Error{Kind: KindConflict, Message: message, Existing: existing}
}

// AccessDenied 无权操作
func AccessDenied(message string) *Error {
	return &Error{Kind: KindAccessDenied, Message: message}
}

// InvalidState 当前状态不允许该操作
func InvalidState(message string) *Error {
	return &Error{Kind: KindInvalidState, Message: message}
}

// Wrap 保留底层错误的同时附加分类
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// ── 判定函数 ──

func isKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// IsValidation 是否输入校验错误
func IsValidation(err error) bool { return isKind(err, KindValidation) }

// IsNotFound 是否实体不存在
func IsNotFound(err error) bool { return isKind(err, KindNotFound) }

// IsConflict 是否唯一性冲突
func IsConflict(err error) bool { return isKind(err, KindConflict) }

// IsAccessDenied 是否无权操作
func IsAccessDenied(err error) bool { return isKind(err, KindAccessDenied) }

// IsInvalidState 是否非法状态迁移
func IsInvalidState(err error) bool { return isKind(err, KindInvalidState) }

// ExistingRecord 取出冲突错误携带的已存在记录，无则返回 nil
func ExistingRecord(err error) interface{} {
	var e *Error
	if errors.As(err, &e) {
		return e.Existing
	}
	return nil
}
