package middleware

import (
	"bytes"
	"io"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	"github.com/timepulse/backend/internal/infrastructure/log"
)

// maxDecodeBody 超过此大小的请求体不做转码
const maxDecodeBody = 1 << 20

// EnsureUTF8Body 将非 UTF-8（GBK）编码的请求体转为 UTF-8
// 通知标题和内容可能来自以 GBK 发送的脚本
func EnsureUTF8Body() gin.HandlerFunc {
	logger := log.NewModuleLogger("http", "encoding")
	return func(c *gin.Context) {
		if c.Request.Body == nil || c.Request.ContentLength == 0 || c.Request.ContentLength > maxDecodeBody {
			c.Next()
			return
		}

		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxDecodeBody+1))
		_ = c.Request.Body.Close()
		if err != nil {
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
			c.Next()
			return
		}

		if len(body) > 0 && !utf8.Valid(body) {
			if converted, convErr := decodeGBK(body); convErr == nil && utf8.Valid(converted) {
				log.FromContext(c.Request.Context(), logger).Debug("request body converted from GBK",
					"path", c.Request.URL.Path,
				)
				body = converted
				c.Request.ContentLength = int64(len(body))
			}
		}

		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		c.Next()
	}
}

func decodeGBK(data []byte) ([]byte, error) {
	return io.ReadAll(transform.NewReader(bytes.NewReader(data), simplifiedchinese.GBK.NewDecoder()))
}
