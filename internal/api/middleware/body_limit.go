package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xszhu002/ke-cheng-biao/pkg/response"
)

// BodyLimit 请求体大小限制
// 声明的 Content-Length 超限直接返回 413；未声明长度的请求体读取超限时由绑定失败处理
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 || c.Request.Body == nil {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxBytes {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
			c.Abort()
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
