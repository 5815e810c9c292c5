// Package utils 提供分页、重试退避、随机串、指针等通用工具
package utils

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"math/big"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/wyfcoding/pkg/pagination"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	// MaxPage 保证 Offset 不溢出
	MaxPage = 1_000_000
)

// Pagination 分页请求与总数
type Pagination struct {
	pagination.Request
	Total int64 `json:"total"`
}

// NewPagination 规范化分页参数
func NewPagination(page, pageSize int) *Pagination {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	req := pagination.NewRequest(page, pageSize)
	if req.PageSize > MaxPageSize {
		req.PageSize = MaxPageSize
	}
	if req.Page > MaxPage {
		req.Page = MaxPage
	}
	return &Pagination{Request: *req}
}

// SetTotal 写入总数
func (p *Pagination) SetTotal(total int64) {
	p.Total = total
}

// Result 组装分页结果
func Result[T any](p *Pagination, items []T) *pagination.Result[T] {
	return pagination.NewResult(p.Total, &p.Request, items)
}

// RetryWithBackoff 指数退避重试，返回 backoff.Permanent 包装的错误时立即终止
func RetryWithBackoff(ctx context.Context, maxAttempts uint, initialDelay, maxDelay time.Duration, fn func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = initialDelay
	bo.MaxInterval = maxDelay

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, fn()
	}, backoff.WithBackOff(bo), backoff.WithMaxTries(maxAttempts))
	return err
}

// Permanent 标记不可重试的错误
func Permanent(err error) error {
	return backoff.Permanent(err)
}

const upperAlnum = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandUpperAlnum 生成指定长度的大写字母数字随机串
func RandUpperAlnum(length int) string {
	b := make([]byte, length)
	max := big.NewInt(int64(len(upperAlnum)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(err)
		}
		b[i] = upperAlnum[n.Int64()]
	}
	return string(b)
}

// RandToken 生成 2*n 位十六进制随机令牌
func RandToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// UintPtr 返回 uint 指针
func UintPtr(v uint) *uint {
	return &v
}

// DerefUint 解引用 uint 指针
func DerefUint(v *uint) uint {
	if v == nil {
		return 0
	}
	return *v
}

// StringPtr 返回字符串指针
func StringPtr(s string) *string {
	return &s
}

// DerefString 解引用字符串指针
func DerefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
