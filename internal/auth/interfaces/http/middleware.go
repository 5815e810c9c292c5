package http

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/jobportal/pkg/contextx"
	"github.com/wyfcoding/jobportal/pkg/errorx"
	"github.com/wyfcoding/jobportal/pkg/httpx"
)

// IdentityResolver 将会话令牌解析为身份
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (contextx.Identity, error)
}

// Authenticate 从 cookie 或 Bearer 头读取令牌，解析后把身份写入请求 context
func Authenticate(resolver IdentityResolver, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c, cookieName)
		id, err := resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.Request = c.Request.WithContext(contextx.WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}

// RequireRole 仅允许指定角色访问，须在 Authenticate 之后使用
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := contextx.GetIdentity(c.Request.Context())
		if !ok {
			httpx.Error(c, errorx.Unauthorized("authentication required"))
			return
		}
		if !id.HasRole(roles...) {
			httpx.Error(c, errorx.Forbidden("insufficient role"))
			return
		}
		c.Next()
	}
}

func tokenFromRequest(c *gin.Context, cookieName string) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if rest, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(rest)
		}
	}
	if v, err := c.Cookie(cookieName); err == nil {
		return v
	}
	return ""
}
