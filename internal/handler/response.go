package handler

import (
	"errors"
	"net/http"

	"github.com/blues/cfl/internal/ledger"
	"github.com/gin-gonic/gin"
)

// Response 通用响应结构
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Code    string      `json:"code,omitempty"`
	Data    interface{} `json:"data"`
}

// SuccessResponse 成功响应
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse 错误响应
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Success: false,
		Message: message,
		Data:    nil,
	})
}

// LedgerErrorResponse 账本错误响应，原因码原样透出
func LedgerErrorResponse(c *gin.Context, err error) {
	var lerr *ledger.Error
	if !errors.As(err, &lerr) {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(statusForCode(lerr.Code), Response{
		Success: false,
		Message: lerr.Message,
		Code:    lerr.Code,
		Data:    nil,
	})
}

// statusForCode 原因码到HTTP状态码的映射
func statusForCode(code string) int {
	switch code {
	case ledger.ErrInvalidGoal.Code,
		ledger.ErrInvalidTitle.Code,
		ledger.ErrInvalidDuration.Code,
		ledger.ErrZeroAmount.Code,
		ledger.ErrFeeTooHigh.Code:
		return http.StatusBadRequest
	case ledger.ErrCreatorLimitReached.Code,
		ledger.ErrCooldownActive.Code:
		return http.StatusTooManyRequests
	case ledger.ErrNotActive.Code,
		ledger.ErrStillActive.Code,
		ledger.ErrCreatorSelfContribution.Code,
		ledger.ErrGoalNotReached.Code,
		ledger.ErrGoalWasReached.Code,
		ledger.ErrAlreadyWithdrawn.Code,
		ledger.ErrNoContribution.Code:
		return http.StatusConflict
	case ledger.ErrUnauthorized.Code:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
