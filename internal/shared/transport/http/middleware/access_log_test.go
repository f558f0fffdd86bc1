package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"Strongholds/modules/kit/logx"
	"Strongholds/modules/kit/tracex"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseBizCode(t *testing.T) {
	cases := []struct {
		body string
		code int
		ok   bool
	}{
		{`{"code":10,"msg":"rejected"}`, 10, true},
		{`{"code":0}`, 0, true},
		{`{"status":"ok"}`, 0, false},
		{`not json`, 0, false},
		{``, 0, false},
	}
	for _, c := range cases {
		code, ok := parseBizCode([]byte(c.body))
		if code != c.code || ok != c.ok {
			t.Fatalf("body=%q got=(%d,%v) want=(%d,%v)", c.body, code, ok, c.code, c.ok)
		}
	}
}

func newEngine() (*gin.Engine, *observer.ObservedLogs) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)
	e := gin.New()
	e.Use(AccessLog(logx.NewZapLogger(zap.New(core))))
	return e, logs
}

func TestAccessLog_带比赛id与业务码(t *testing.T) {
	e, logs := newEngine()
	var scope tracex.MatchScope
	e.GET("/matches/:id/status", func(c *gin.Context) {
		scope, _ = tracex.MatchFrom(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"code": 11, "msg": "比赛已结束"})
	})

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/matches/m-7/status", nil))
	if scope.MatchID != "m-7" {
		t.Fatalf("处理器应能读到比赛 id，got=%+v", scope)
	}
	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("期望一条访问日志，got=%d", len(entries))
	}
	fields := entries[0].ContextMap()
	if entries[0].Level != zapcore.WarnLevel || fields["biz_code"] != int64(11) || fields["match_id"] != "m-7" {
		t.Fatalf("访问日志异常：level=%v fields=%v", entries[0].Level, fields)
	}
	if fields["action"] != "GET /matches/:id/status" {
		t.Fatalf("action 应为路由模板：%v", fields["action"])
	}
}

func TestAccessLog_无业务码按状态判断(t *testing.T) {
	e, logs := newEngine()
	e.GET("/big", func(c *gin.Context) {
		c.String(http.StatusOK, strings.Repeat("x", maxCapturedBody+1))
	})
	e.GET("/fail", func(c *gin.Context) {
		c.Status(http.StatusInternalServerError)
	})

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/big", nil))
	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fail", nil))

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("期望两条访问日志，got=%d", len(entries))
	}
	if entries[0].Level != zapcore.InfoLevel || entries[0].ContextMap()["result"] != "success" {
		t.Fatalf("超长响应应按 200 记成功：%v", entries[0].ContextMap())
	}
	if entries[1].Level != zapcore.ErrorLevel {
		t.Fatalf("500 应记为失败：%v", entries[1].Level)
	}
}
