package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"timetable-viewer/pkg/response"
)

const codeBodyTooLarge = 10005

// BodyLimit 请求体大小限制中间件
// maxBytes <= 0 时不限制
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 {
			c.Next()
			return
		}

		// 声明了长度的请求直接拒绝，无需读取
		if c.Request.ContentLength > maxBytes {
			response.Error(c, http.StatusRequestEntityTooLarge, codeBodyTooLarge, "请求体过大")
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		// 未声明长度的请求体在读取时由 MaxBytesReader 截断，handler 负责转为 413
		c.Next()
	}
}
