package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 错误码
const (
	CodeValidationError      = "VALIDATION_ERROR"
	CodeNotFound             = "NOT_FOUND"
	CodeBusinessRuleViolated = "BUSINESS_RULE_VIOLATION"
	CodeConflict             = "CONFLICT"
	CodeTooManyRequests      = "TOO_MANY_REQUESTS"
	CodeInternalServerError  = "INTERNAL_SERVER_ERROR"
)

// Response 统一响应格式
// @Description 成功响应,data 为业务数据
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data"`
	Message string      `json:"message,omitempty" example:"Maintenance order created"`
}

// ErrorBody 错误详情
// @Description 错误码、错误消息和附加信息
type ErrorBody struct {
	Code    string      `json:"code" example:"VALIDATION_ERROR"`
	Message string      `json:"message" example:"validation failed"`
	Details interface{} `json:"details,omitempty"`
}

// ErrorResponse 错误响应格式
// @Description 失败响应,success 恒为 false
type ErrorResponse struct {
	Success bool      `json:"success" example:"false"`
	Error   ErrorBody `json:"error"`
}

// PaginatedResponse 分页响应
// @Description 分页响应格式,包含数据列表和分页信息
type PaginatedResponse struct {
	Success    bool           `json:"success" example:"true"`
	Data       interface{}    `json:"data"`
	Pagination PaginationInfo `json:"pagination"`
}

// PaginationInfo 分页信息
// @Description 当前页码、每页数量、总记录数和总页数
type PaginationInfo struct {
	Page      int   `json:"page" example:"1"`
	PageSize  int   `json:"page_size" example:"20"`
	Total     int64 `json:"total" example:"100"`
	TotalPage int   `json:"total_page" example:"5"`
}

// Success 200 响应
func Success(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data, Message: message})
}

// Created 201 响应
func Created(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusCreated, Response{Success: true, Data: data, Message: message})
}

// Error 错误响应
func Error(c *gin.Context, status int, code, message string, details interface{}) {
	c.JSON(status, ErrorResponse{
		Error: ErrorBody{Code: code, Message: message, Details: details},
	})
}

// Paginated 分页响应
func Paginated(c *gin.Context, data interface{}, page, pageSize int, total int64) {
	totalPage := 0
	if pageSize > 0 {
		totalPage = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	c.JSON(http.StatusOK, PaginatedResponse{
		Success: true,
		Data:    data,
		Pagination: PaginationInfo{
			Page:      page,
			PageSize:  pageSize,
			Total:     total,
			TotalPage: totalPage,
		},
	})
}
