package dto

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "careerdashboard/backend/pkg/errors"
)

// 传输层已是本引擎边界之外，入参校验在 DTO 层统一完成。
var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate 以 validate 标签校验入参结构体，失败时返回 Validation 错误，
// 字段错误逐项列出并原样透出。
func Validate(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.Wrap(apperrors.KindValidation, "入参校验失败", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s 未通过 %s 校验", fe.Field(), fe.Tag()))
	}
	return apperrors.Validation(strings.Join(msgs, "; "))
}
