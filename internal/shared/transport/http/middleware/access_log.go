package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"Strongholds/internal/shared/transport"
	"Strongholds/modules/kit/logx"
)

// 响应体超过这个长度就不再缓存，业务码取不到时按 HTTP 状态判断。
const maxCapturedBody = 64 << 10

type codeCaptureWriter struct {
	gin.ResponseWriter
	buf      bytes.Buffer
	overflow bool
}

func (w *codeCaptureWriter) capture(n int, write func()) {
	if w.overflow {
		return
	}
	if w.buf.Len()+n > maxCapturedBody {
		w.overflow = true
		w.buf.Reset()
		return
	}
	write()
}

func (w *codeCaptureWriter) Write(data []byte) (int, error) {
	w.capture(len(data), func() { _, _ = w.buf.Write(data) })
	return w.ResponseWriter.Write(data)
}

func (w *codeCaptureWriter) WriteString(s string) (int, error) {
	w.capture(len(s), func() { _, _ = w.buf.WriteString(s) })
	return w.ResponseWriter.WriteString(s)
}

// AccessLog 为每个请求建访问日志上下文。路由带 :id 时把它当作比赛 id 写进上下文，
// 业务码取自响应体的 code 字段。
func AccessLog(log logx.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		ctx := transport.NewContextWithParent(c.Request.Context(), c.Request.Method+" "+route)
		if id := c.Param("id"); id != "" {
			ctx = transport.WithMatch(ctx, id, 0)
		}
		c.Request = c.Request.WithContext(ctx)

		w := &codeCaptureWriter{ResponseWriter: c.Writer}
		c.Writer = w
		c.Next()

		code, ok := parseBizCode(w.buf.Bytes())
		switch {
		case ok:
		case c.Writer.Status() >= http.StatusInternalServerError:
			code = transport.SystemError
		case c.Writer.Status() >= http.StatusBadRequest:
			code = transport.InvalidParam
		default:
			code = transport.OK
		}
		transport.SetBizCode(ctx, transport.BizCode(code))
		transport.WriteAccessLog(ctx, log)
	}
}

func parseBizCode(body []byte) (int, bool) {
	if len(body) == 0 {
		return 0, false
	}
	var payload struct {
		Code *int `json:"code"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Code == nil {
		return 0, false
	}
	return *payload.Code, true
}
