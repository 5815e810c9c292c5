// Package httpx 把业务错误写成统一的 HTTP 错误响应并中断处理链
package httpx

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/jobportal/pkg/errorx"
	"github.com/wyfcoding/jobportal/pkg/logger"
	"github.com/wyfcoding/pkg/response"
)

// Error 输出业务错误；内部错误只记录日志，对外返回通用信息
func Error(c *gin.Context, err error) {
	e := errorx.From(err)
	if errorx.CodeOf(e) == errorx.CodeInternal {
		logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, "internal server error", "")
	} else {
		response.ErrorWithStatus(c, e.HTTPStatus(), e.Message, errorx.FieldDetail(e))
	}
	c.Abort()
}

// BadRequest 请求体无法解析
func BadRequest(c *gin.Context, err error) {
	response.ErrorWithStatus(c, http.StatusBadRequest, "invalid request body", err.Error())
	c.Abort()
}
