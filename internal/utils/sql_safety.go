package utils

import (
	"errors"
	"strings"
)

// ValidateSortField 校验排序字段是否在白名单内
func ValidateSortField(field string, allowed []string) error {
	if field == "" {
		return errors.New("sort field cannot be empty")
	}
	for _, a := range allowed {
		if field == a {
			return nil
		}
	}
	return errors.New("sort field is not allowed: " + field)
}

// NormalizeSortOrder 校验并规范化排序方向,空值返回 DESC
func NormalizeSortOrder(order string) (string, error) {
	upper := strings.ToUpper(strings.TrimSpace(order))
	switch upper {
	case "":
		return "DESC", nil
	case "ASC", "DESC":
		return upper, nil
	}
	return "", errors.New("sort order must be ASC or DESC")
}
