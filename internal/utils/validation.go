package utils

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// SanitizeString 移除控制字符（保留换行符和制表符）
func SanitizeString(input string) string {
	var result strings.Builder
	result.Grow(len(input))
	for _, r := range input {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		result.WriteRune(r)
	}
	return result.String()
}

// ParseID 解析路径中的数值 ID
func ParseID(raw string) (int64, error) {
	if raw == "" {
		return 0, ErrEmptyID
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, ErrInvalidIDFormat
	}
	if id <= 0 {
		return 0, ErrInvalidIDFormat
	}
	return id, nil
}

// TrimAndValidate 清理并验证字符串
// 先移除控制字符再判断是否为空,只含控制字符的输入视为空
func TrimAndValidate(s string, maxLen int) (string, error) {
	cleaned := strings.TrimSpace(SanitizeString(s))
	if cleaned == "" {
		return "", ErrEmptyString
	}
	if maxLen > 0 && utf8.RuneCountInString(cleaned) > maxLen {
		return "", ErrStringTooLong
	}
	return cleaned, nil
}

// 错误定义
var (
	ErrEmptyID         = &ValidationError{Code: "EMPTY_ID", Message: "id cannot be empty"}
	ErrInvalidIDFormat = &ValidationError{Code: "INVALID_ID_FORMAT", Message: "id must be a positive integer"}
	ErrEmptyString     = &ValidationError{Code: "EMPTY_STRING", Message: "string cannot be empty"}
	ErrStringTooLong   = &ValidationError{Code: "STRING_TOO_LONG", Message: "string exceeds maximum length"}
)

// ValidationError 验证错误
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
