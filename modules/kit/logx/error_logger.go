package logx

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// BizLog 描述一次业务拒绝：比赛不存在、指令非法、观战连接发令等。
type BizLog struct {
	Action  string
	Reason  string
	Message string
}

// SysLog 描述一次服务端失败：回放存储不可用、actor 超时等。
type SysLog struct {
	Action string
	Err    error
}

func NewBizLog(action, reason, message string) BizLog {
	return BizLog{Action: action, Reason: reason, Message: message}
}

func NewSysLog(action string, err error) SysLog {
	return SysLog{Action: action, Err: err}
}

// AccessLevel 是一次请求的结果分级，决定访问日志的级别。
type AccessLevel int

const (
	// AccessOK 请求成功，INFO。
	AccessOK AccessLevel = iota
	// AccessRejected 参数错误、未入场、指令被拒等业务拒绝，WARN。
	AccessRejected
	// AccessFailed 服务端失败，ERROR。
	AccessFailed
)

func (lv AccessLevel) String() string {
	switch lv {
	case AccessOK:
		return "success"
	case AccessRejected:
		return "rejected"
	default:
		return "failure"
	}
}

// ReportAccessWithLoggerContext 记录一次 ws 消息或 http 请求的访问日志。
func ReportAccessWithLoggerContext(ctx context.Context, l Logger, action string, bizCode int, level AccessLevel, fields ...zap.Field) {
	if l == nil {
		return
	}
	base := []zap.Field{
		zap.String("log_type", "access"),
		zap.String("action", action),
		zap.Int("biz_code", bizCode),
		zap.String("result", level.String()),
	}
	base = append(base, fields...)
	withCtx := l.WithContext(ctx)
	switch level {
	case AccessOK:
		withCtx.Info("access", base...)
	case AccessRejected:
		withCtx.Warn("access", base...)
	default:
		withCtx.Error("access", base...)
	}
}

// ReportBizWithLoggerContext 记录业务拒绝：INFO，err_type=biz，不带堆栈。
func ReportBizWithLoggerContext(ctx context.Context, l Logger, biz BizLog, fields ...zap.Field) {
	if l == nil {
		return
	}
	action := biz.Action
	if action == "" {
		action = "biz_reject"
	}

	base := []zap.Field{
		zap.String("err_type", "biz"),
		zap.String("action", action),
	}
	if biz.Reason != "" {
		base = append(base, zap.String("reason", biz.Reason))
	}
	if biz.Message != "" {
		base = append(base, zap.String("biz_message", biz.Message))
	}
	base = append(base, fields...)

	msg := action
	if biz.Reason != "" {
		msg += ", reason:" + biz.Reason
	}
	if biz.Message != "" {
		msg += ", msg:" + biz.Message
	}
	l.WithContext(ctx).Info(msg, base...)
}

// ReportSysErrorWithLoggerContext 记录服务端失败：ERROR，err_type=sys，附带错误码、数据、cause 链和发生处的栈。
func ReportSysErrorWithLoggerContext(ctx context.Context, l Logger, sys SysLog, fields ...zap.Field) {
	if sys.Err == nil || l == nil {
		return
	}
	action := sys.Action
	if action == "" {
		action = "sys_error"
	}

	meta := BuildErrorLog(sys.Err)
	base := []zap.Field{
		zap.String("err_type", "sys"),
		zap.String("action", action),
	}
	if meta.Code != "" {
		base = append(base, zap.String("error_code", meta.Code))
	}
	if len(meta.CauseChain) != 0 {
		base = append(base, zap.Strings("cause_chain", meta.CauseChain))
	}
	if len(meta.Data) != 0 {
		base = append(base, zap.Any("error_data", meta.Data))
	}
	if meta.Origin != "" {
		base = append(base, zap.String("origin_caller", meta.Origin))
	}
	if meta.Stack != "" {
		base = append(base, zap.String("stack_origin", meta.Stack))
	}
	base = append(base, fields...)

	var msg string
	switch {
	case meta.Reason != "":
		msg = fmt.Sprintf("%s, reason:%s, error:%s", action, meta.Reason, meta.Error)
	case meta.Msg != "":
		msg = fmt.Sprintf("%s, error:%s, msg:%s", action, meta.Error, meta.Msg)
	default:
		msg = fmt.Sprintf("%s, error:%s", action, meta.Error)
	}
	l.WithContext(ctx).Error(msg, base...)
}
