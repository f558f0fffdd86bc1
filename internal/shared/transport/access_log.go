package transport

import (
	"context"
	"time"

	"go.uber.org/zap"

	"Strongholds/modules/kit/logx"
	"Strongholds/modules/kit/tracex"
)

// AccessLog 是请求级日志上下文，覆盖 WS/HTTP 两种协议。
type AccessLog struct {
	BizCode     BizCode
	ErrorReason string
	ConnID      string
	startTime   time.Time
	action      string
}

type accessLogKey struct{}

// NewContext 创建带 AccessLog 的新 context（以 background 为父 context）。
func NewContext(action string) context.Context {
	return NewContextWithParent(context.Background(), action)
}

// NewContextWithParent 创建带 AccessLog 的新 context（保留父 context 的取消/超时信号）。
func NewContextWithParent(parent context.Context, action string) context.Context {
	ctx := parent
	if ctx == nil {
		ctx = context.Background()
	}
	if action == "" {
		action = "unknown"
	}
	if traceID := tracex.NewTraceID(); traceID != "" {
		ctx = tracex.WithTraceID(ctx, traceID)
	}

	al := &AccessLog{
		BizCode:   BizCode(SystemError),
		startTime: time.Now(),
		action:    action,
	}
	return context.WithValue(ctx, accessLogKey{}, al)
}

// FromContext 从 context 读取 AccessLog。
func FromContext(ctx context.Context) *AccessLog {
	if ctx == nil {
		return nil
	}
	al, _ := ctx.Value(accessLogKey{}).(*AccessLog)
	return al
}

// SetBizCode 设置业务码。
func SetBizCode(ctx context.Context, code BizCode) {
	if al := FromContext(ctx); al != nil {
		al.BizCode = code
	}
}

// WithConnID 记录发起请求的 ws 连接，写入访问日志。
func WithConnID(ctx context.Context, connID string) context.Context {
	if al := FromContext(ctx); al != nil {
		al.ConnID = connID
	}
	return ctx
}

// SetErrorReason 设置 access 日志错误原因（失败场景）。
func SetErrorReason(ctx context.Context, reason string) {
	if reason == "" {
		return
	}
	if al := FromContext(ctx); al != nil {
		al.ErrorReason = reason
	}
}

// WriteAccessLog 输出访问日志（建议在中间件 defer 调用）。
func WriteAccessLog(ctx context.Context, log logx.Logger) {
	al := FromContext(ctx)
	if al == nil || log == nil {
		return
	}

	fields := []zap.Field{
		zap.Duration("latency", time.Since(al.startTime)),
	}
	if al.ConnID != "" {
		fields = append(fields, zap.String("conn_id", al.ConnID))
	}
	level := accessLevel(al.BizCode)
	if level != logx.AccessOK && al.ErrorReason != "" {
		fields = append(fields, zap.String("error_reason", al.ErrorReason))
	}
	logx.ReportAccessWithLoggerContext(ctx, log, al.action, int(al.BizCode), level, fields...)
}

// accessLevel 只有 SystemError 算服务端失败，其余非零码都是对请求的拒绝。
func accessLevel(code BizCode) logx.AccessLevel {
	switch code {
	case OK:
		return logx.AccessOK
	case SystemError:
		return logx.AccessFailed
	default:
		return logx.AccessRejected
	}
}

// WithMatch 把比赛范围写进请求 ctx，之后的访问日志和错误日志都带 match_id。
func WithMatch(ctx context.Context, matchID string, alliance int) context.Context {
	return tracex.WithMatch(ctx, matchID, alliance)
}
