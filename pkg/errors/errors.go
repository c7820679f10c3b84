package errors

import (
	"errors"
	"net/http"
)

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// Kind 错误分类，决定对外的 HTTP 状态
type Kind int

const (
	KindUnexpected    Kind = iota // 数据存储等非预期故障
	KindValidation                // 输入缺失或格式错误，调用方修正后重试
	KindNotFound                  // 引用的资源不存在
	KindConflict                  // 硬冲突：操作被拒绝
	KindSoftConflict              // 软冲突：调用方显式 override 后可继续
	KindAuthorization             // 角色或归属校验未通过
)

// HTTPStatus 返回该分类对应的 HTTP 状态码
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict, KindSoftConflict:
		return http.StatusConflict
	case KindAuthorization:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindSoftConflict:
		return "soft_conflict"
	case KindAuthorization:
		return "authorization"
	default:
		return "unexpected"
	}
}

// Error 结构化业务错误
//
// 同一 Code 的错误视为同一类（errors.Is 按 Code 比较），
// 因此 WithDetails 派生出的副本仍可与模块哨兵错误匹配。
type Error struct {
	Kind    Kind
	Code    int
	Message string
	Details any
}

// New 创建业务错误
func New(kind Kind, code int, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func Validation(code int, message string) *Error   { return New(KindValidation, code, message) }
func NotFound(code int, message string) *Error     { return New(KindNotFound, code, message) }
func Conflict(code int, message string) *Error     { return New(KindConflict, code, message) }
func SoftConflict(code int, message string) *Error { return New(KindSoftConflict, code, message) }
func Forbidden(code int, message string) *Error    { return New(KindAuthorization, code, message) }

func (e *Error) Error() string { return e.Message }

// Is 按业务码匹配
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithDetails 返回附带详情的副本，不修改哨兵本身
func (e *Error) WithDetails(details any) *Error {
	cp := *e
	cp.Details = details
	return &cp
}

// HTTPStatus 对外 HTTP 状态码
func (e *Error) HTTPStatus() int { return e.Kind.HTTPStatus() }

// As 从错误链中提取 *Error
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf 返回错误链的分类；非业务错误视为 KindUnexpected
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	if errors.Is(err, ErrOptimisticLock) {
		return KindConflict
	}
	return KindUnexpected
}

// IsSoft 判断是否为可 override 的软冲突
func IsSoft(err error) bool {
	return KindOf(err) == KindSoftConflict
}
