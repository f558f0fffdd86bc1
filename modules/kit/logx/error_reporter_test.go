package logx

import (
	"context"
	"errors"
	"strings"
	"testing"

	"Strongholds/modules/kit/errx"
	"Strongholds/modules/kit/tracex"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestBuildErrorLog_能提取语义与栈(t *testing.T) {
	cause := errors.New("database is locked")
	e := errx.ErrReplayUnavailable.
		WithData("match_id", "m-1").
		WithCause(cause)

	meta := BuildErrorLog(e)
	if meta.Code != "REPLAY_UNAVAILABLE" || meta.Msg == "" {
		t.Fatalf("错误码或文案缺失：%+v", meta)
	}
	if meta.Data["match_id"] != "m-1" {
		t.Fatalf("期望 meta.Data 包含 match_id=m-1, got=%v", meta.Data)
	}
	if len(meta.CauseChain) == 0 || !strings.Contains(meta.CauseChain[len(meta.CauseChain)-1], "database is locked") {
		t.Fatalf("cause 链异常：%v", meta.CauseChain)
	}
	if meta.Origin == "" || !strings.HasPrefix(meta.Stack, meta.Origin) {
		t.Fatalf("期望栈以发生处开头 origin=%q stack=%q", meta.Origin, meta.Stack)
	}
}

func TestBuildErrorLog_业务错误无栈(t *testing.T) {
	meta := BuildErrorLog(errx.NewBiz("MATCH_OVER", "比赛已结束"))
	if meta.Stack != "" || meta.Origin != "" {
		t.Fatalf("业务错误不应带栈：%+v", meta)
	}
	if meta.Code != "MATCH_OVER" {
		t.Fatalf("code 异常：%+v", meta)
	}
}

func newObserved() (*ZapLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewZapLogger(zap.New(core)), logs
}

func TestWithContext_带比赛范围(t *testing.T) {
	l, logs := newObserved()
	ctx := tracex.WithTraceID(context.Background(), "t-9")
	ctx = tracex.WithMatch(ctx, "m-2", 1)

	l.WithContext(ctx).Info("order")
	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("期望一条日志，got=%d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["trace_id"] != "t-9" || fields["match_id"] != "m-2" || fields["alliance"] != int64(1) {
		t.Fatalf("上下文字段缺失：%v", fields)
	}
}

func TestReportAccess_按结果分级(t *testing.T) {
	l, logs := newObserved()
	ctx := context.Background()

	ReportAccessWithLoggerContext(ctx, l, "WS match.order", 0, AccessOK)
	ReportAccessWithLoggerContext(ctx, l, "WS match.order", 10, AccessRejected)
	ReportAccessWithLoggerContext(ctx, l, "WS match.order", 2, AccessFailed)

	want := []zapcore.Level{zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel}
	got := logs.All()
	if len(got) != len(want) {
		t.Fatalf("日志条数异常：%d", len(got))
	}
	for i, e := range got {
		if e.Level != want[i] {
			t.Fatalf("第 %d 条级别异常：got=%v want=%v", i, e.Level, want[i])
		}
	}
	if got[1].ContextMap()["result"] != "rejected" {
		t.Fatalf("result 字段异常：%v", got[1].ContextMap())
	}
}

func TestReportSysError_记录错误码(t *testing.T) {
	l, logs := newObserved()
	err := errx.ErrActorTimeout.WithData("match_id", "m-3").WithCause(errors.New("future: timeout"))

	ReportSysErrorWithLoggerContext(context.Background(), l, NewSysLog("match.snapshot", err))
	ReportSysErrorWithLoggerContext(context.Background(), l, NewSysLog("match.snapshot", nil))

	got := logs.All()
	if len(got) != 1 {
		t.Fatalf("nil 错误不应记录，got=%d", len(got))
	}
	fields := got[0].ContextMap()
	if fields["err_type"] != "sys" || fields["error_code"] != "ACTOR_TIMEOUT" {
		t.Fatalf("字段异常：%v", fields)
	}
	if !strings.HasPrefix(got[0].Message, "match.snapshot") {
		t.Fatalf("消息应以 action 开头：%q", got[0].Message)
	}
}

func TestWith_绑定字段(t *testing.T) {
	l, logs := newObserved()
	l.With(zap.String("match_id", "m-4")).Warn("flush failed")
	if logs.All()[0].ContextMap()["match_id"] != "m-4" {
		t.Fatalf("With 字段丢失")
	}
}
