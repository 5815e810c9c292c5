// Package errorx 在 xerrors 之上定义业务错误码，贯穿领域层、应用层与接口层
package errorx

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/wyfcoding/pkg/xerrors"
)

// Code 错误码
type Code string

const (
	CodeValidation   Code = "VALIDATION"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeForbidden    Code = "FORBIDDEN"
	CodeNotFound     Code = "NOT_FOUND"
	CodeConflict     Code = "CONFLICT"
	CodeRateLimited  Code = "RATE_LIMITED"
	CodeInternal     Code = "INTERNAL"
)

// Error 业务错误
type Error = xerrors.Error

var codeTypes = map[Code]xerrors.ErrorType{
	CodeValidation:   xerrors.ErrInvalidArg,
	CodeUnauthorized: xerrors.ErrUnauthenticated,
	CodeForbidden:    xerrors.ErrPermissionDenied,
	CodeNotFound:     xerrors.ErrNotFound,
	CodeConflict:     xerrors.ErrAlreadyExists,
	CodeRateLimited:  xerrors.ErrLimitExceeded,
	CodeInternal:     xerrors.ErrInternal,
}

// New 创建业务错误
func New(code Code, message string) *Error {
	return Wrap(code, message, nil)
}

// Wrap 包装底层错误，业务码取对应的 HTTP 状态码
func Wrap(code Code, message string, cause error) *Error {
	t, ok := codeTypes[code]
	if !ok {
		t = xerrors.ErrInternal
	}
	e := xerrors.New(t, 0, message, "", cause)
	e.Code = e.HTTPStatus()
	return e
}

// Validation 创建校验错误，字段级信息写入 Context
func Validation(message string, fields map[string]string) *Error {
	e := xerrors.InvalidArg(message)
	for k, v := range fields {
		e.WithContext(k, v)
	}
	return e
}

// NotFound 资源不存在
func NotFound(message string) *Error {
	return xerrors.NotFound(message)
}

// Forbidden 越权访问
func Forbidden(message string) *Error {
	return New(CodeForbidden, message)
}

// Conflict 资源冲突
func Conflict(message string) *Error {
	return New(CodeConflict, message)
}

// Unauthorized 未认证
func Unauthorized(message string) *Error {
	return xerrors.Unauthenticated(message)
}

// Internal 包装数据库等基础设施错误
func Internal(message string, cause error) *Error {
	return xerrors.Internal(message, cause)
}

// From 提取业务错误，非业务错误包装为 INTERNAL
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return xerrors.Internal("internal error", err)
}

// CodeOf 提取错误码，非业务错误视为 INTERNAL
func CodeOf(err error) Code {
	var e *Error
	if !errors.As(err, &e) {
		return CodeInternal
	}
	for code, t := range codeTypes {
		if t == e.Type {
			return code
		}
	}
	return CodeInternal
}

// Is 判断错误是否为指定错误码
func Is(err error, code Code) bool {
	if err == nil {
		return false
	}
	return CodeOf(err) == code
}

// StatusOf 错误对应的 HTTP 状态码
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// Fields 校验错误的字段级信息
func Fields(err error) map[string]string {
	var e *Error
	if !errors.As(err, &e) || len(e.Context) == 0 {
		return nil
	}
	out := make(map[string]string, len(e.Context))
	for k, v := range e.Context {
		out[k] = fmt.Sprint(v)
	}
	return out
}

// FieldDetail 字段信息拼接为 "field: reason; ..."，按字段名排序
func FieldDetail(err error) string {
	fields := Fields(err)
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + fields[k]
	}
	return strings.Join(parts, "; ")
}
