package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aalbahar80/rems-ai-sub000/internal/repository"
	"github.com/aalbahar80/rems-ai-sub000/internal/statemachine"
)

// FieldError 单个字段的校验错误
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError 输入缺失或不合法
type ValidationError struct {
	Message string
	Fields  []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return e.Message + ": " + strings.Join(parts, "; ")
}

// NotFoundError 资源不存在
type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// BusinessRuleError 输入合法但当前状态不允许该操作
type BusinessRuleError struct {
	Message string
	From    statemachine.Status
	To      statemachine.Status
}

func (e *BusinessRuleError) Error() string {
	return e.Message
}

// ConflictError 工单在读取后被其他请求修改
type ConflictError struct {
	OrderID int64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("maintenance order %d was modified by another request, reload and retry", e.OrderID)
}

// PersistenceError 存储层失败
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// validationErrors 收集字段错误
type validationErrors []FieldError

func (v *validationErrors) add(field, message string) {
	*v = append(*v, FieldError{Field: field, Message: message})
}

func (v validationErrors) err() error {
	if len(v) == 0 {
		return nil
	}
	return &ValidationError{Message: "validation failed", Fields: v}
}

// wrapStoreError 将仓储错误转换为服务错误
func wrapStoreError(op string, orderID int64, err error) error {
	if err == nil {
		return nil
	}
	var (
		ve  *ValidationError
		nfe *NotFoundError
		bre *BusinessRuleError
		ce  *ConflictError
		pe  *PersistenceError
	)
	// 事务回调返回的服务错误原样透传
	if errors.As(err, &ve) || errors.As(err, &nfe) || errors.As(err, &bre) || errors.As(err, &ce) || errors.As(err, &pe) {
		return err
	}
	switch {
	case errors.Is(err, repository.ErrOrderNotFound):
		return &NotFoundError{Resource: "maintenance order", ID: orderID}
	case errors.Is(err, repository.ErrVersionConflict):
		return &ConflictError{OrderID: orderID}
	}
	return &PersistenceError{Op: op, Err: err}
}
