package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kochabx/ecckit/errors"
)

const (
	StatusOK                  = http.StatusOK                  // 200
	StatusBadRequest          = http.StatusBadRequest          // 400
	StatusUnauthorized        = http.StatusUnauthorized        // 401
	StatusNotFound            = http.StatusNotFound            // 404
	StatusTooManyRequests     = http.StatusTooManyRequests     // 429
	StatusInternalServerError = http.StatusInternalServerError // 500
)

const (
	// 默认响应消息
	defaultSuccessMsg = "success"
	defaultErrorMsg   = "operation failed"

	successCode = http.StatusOK
)

// Response 表示标准化的 API 响应结构
type Response[T any] struct {
	Code  int    `json:"code"`            // 业务状态码
	Msg   string `json:"msg,omitempty"`   // 响应消息
	Kind  string `json:"kind,omitempty"`  // 错误类别
	Data  T      `json:"data,omitempty"`  // 响应数据
	Param string `json:"param,omitempty"` // 出错的参数名
}

// GinJSON 写入成功的 JSON 响应
//
//	GinJSON(c, gin.H{"isValid": true})
//	// 输出: {"code":200, "msg":"success", "data":{"isValid":true}}
func GinJSON(c *gin.Context, data any) {
	if c == nil {
		return
	}

	c.JSON(http.StatusOK, &Response[any]{
		Code: successCode,
		Msg:  defaultSuccessMsg,
		Data: data,
	})
}

// GinJSONE 写入带有自定义业务码的 JSON 响应
//
// data 为 error 时提取其消息，为 string 时直接作为消息，
// 为 nil 时使用默认错误消息，其他类型作为 data 返回。
func GinJSONE(c *gin.Context, code int, data any) {
	if c == nil {
		return
	}

	var msg string
	var respData any

	switch v := data.(type) {
	case error:
		msg = extractErrorMessage(v)
	case string:
		msg = v
	case nil:
		msg = defaultErrorMsg
	default:
		respData = v
	}

	c.JSON(http.StatusOK, &Response[any]{
		Code: code,
		Msg:  msg,
		Data: respData,
	})
}

// GinError 根据错误类别写入失败响应
//
// 校验错误映射为 400，密码学错误映射为 500，其他错误使用其自身的业务码。
// 非 *errors.Error 的错误一律视为 500，且不暴露原始消息。
func GinError(c *gin.Context, err error) {
	if c == nil || err == nil {
		return
	}

	resp := Failure(StatusInternalServerError, defaultErrorMsg)
	var e *errors.Error
	if errors.As(err, &e) {
		resp.Code = e.Code
		resp.Msg = e.Message
		resp.Kind = e.Kind.String()
		resp.Param = e.Metadata["param"]
		switch e.Kind {
		case errors.KindValidation:
			resp.Code = StatusBadRequest
		case errors.KindCrypto:
			resp.Code = StatusInternalServerError
		}
	}

	_ = c.Error(err)
	c.JSON(http.StatusOK, resp)
}

// extractErrorMessage 优先从 errors.Error 中提取消息
func extractErrorMessage(err error) string {
	if err == nil {
		return defaultErrorMsg
	}
	if e := errors.FromError(err); e != nil {
		return e.Message
	}
	return err.Error()
}

// Success 创建成功响应对象
func Success[T any](data T) *Response[T] {
	return &Response[T]{
		Code: successCode,
		Msg:  defaultSuccessMsg,
		Data: data,
	}
}

// Failure 创建失败响应对象
func Failure(code int, msg string) *Response[any] {
	return &Response[any]{
		Code: code,
		Msg:  msg,
	}
}
