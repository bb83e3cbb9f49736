package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// fieldMessages 字段校验失败时返回给前端的提示
var fieldMessages = map[string]string{
	"name":         "Name is required",
	"email":        "Valid email is required",
	"phone":        "Phone number is required",
	"address":      "Address is required",
	"role":         "Invalid role",
	"status":       "Invalid status value",
	"callResponse": "Invalid call response value",
	"assignedTo":   "Invalid assignee",
}

// TranslateValidationErrors 将绑定错误转换为前端约定的字段错误列表
func TranslateValidationErrors(err error) []FieldError {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		result := make([]FieldError, 0, len(validationErrs))
		for _, fe := range validationErrs {
			param := lowerFirst(fe.Field())
			result = append(result, FieldError{
				Msg:      fieldMessage(param, fe.Tag()),
				Param:    param,
				Value:    fe.Value(),
				Location: "body",
			})
		}
		return result
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return []FieldError{{
			Msg:      fmt.Sprintf("Invalid value for %s", typeErr.Field),
			Param:    typeErr.Field,
			Location: "body",
		}}
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return []FieldError{{Msg: "Malformed JSON body", Location: "body"}}
	}

	if strings.Contains(err.Error(), "invalid date") {
		return []FieldError{{Msg: "Invalid date", Param: "nextCallDate", Location: "body"}}
	}

	return []FieldError{{Msg: "Invalid request body", Location: "body"}}
}

// BindingError 将绑定错误包装为400校验错误
func BindingError(err error) *ApiError {
	apiErr := CreateValidationError(TranslateValidationErrors(err)...)
	apiErr.Err = err
	return apiErr
}

// fieldMessage 根据字段和校验规则生成提示
func fieldMessage(param, tag string) string {
	if param == "password" {
		if tag == "min" {
			return "Password must be at least 6 characters long"
		}
		return "Password is required"
	}
	if msg, ok := fieldMessages[param]; ok {
		return msg
	}
	return fmt.Sprintf("%s is invalid", param)
}

// lowerFirst 首字母小写，与json字段名保持一致
func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}
