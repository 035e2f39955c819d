package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ==================== 错误类别 ====================

// Kind 错误类别，对应业务错误分类
type Kind string

const (
	KindValidation Kind = "validation" // 必填缺失 / 上线条件不满足
	KindPermission Kind = "permission" // 非业主 / 非管理员
	KindState      Kind = "state"      // 当前状态下不允许的转移
	KindConflict   Kind = "conflict"   // 并发写版本冲突，调用方应重读后重试
	KindUpload     Kind = "upload"     // 媒体上传部分或全部失败
	KindNotFound   Kind = "not_found"  // 记录不存在（公开接口下 not live 同样表现为此类）
)

// ==================== 错误类型 ====================

// Error 携带类别和细节的业务错误
type Error struct {
	Kind    Kind
	Message string
	// Details 逐条列出的失败项（缺失字段、未满足条件等），供前端直接展示
	Details []string
}

func (e *Error) Error() string {
	if len(e.Details) > 0 {
		return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Details, "; "))
	}
	return e.Message
}

// ==================== 构造函数 ====================

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Validation 创建校验错误，details 列出每一项未满足的条件
func Validation(message string, details ...string) *Error {
	return &Error{Kind: KindValidation, Message: message, Details: details}
}

func Permission(message string) *Error {
	return &Error{Kind: KindPermission, Message: message}
}

func State(message string) *Error {
	return &Error{Kind: KindState, Message: message}
}

func Statef(format string, args ...interface{}) *Error {
	return Newf(KindState, format, args...)
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func Upload(message string) *Error {
	return &Error{Kind: KindUpload, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// ==================== 判定辅助 ====================

// IsKind 判断错误是否属于指定类别
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// AsError 提取业务错误，非业务错误返回 nil
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}

// HTTPStatus 类别到 HTTP 状态码的映射，供控制器统一使用
func HTTPStatus(err error) int {
	e := AsError(err)
	if e == nil {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindPermission:
		return http.StatusForbidden
	case KindState:
		return http.StatusConflict
	case KindConflict:
		return http.StatusConflict
	case KindUpload:
		return http.StatusBadGateway
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
