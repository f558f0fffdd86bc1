package logx

import (
	"context"

	"go.uber.org/zap"
)

// Logger 是模拟服务各层共用的日志接口。
// WithContext 从 ctx 取 trace_id 和比赛范围，With 绑定固定字段（例如一局比赛的 match_id）。
type Logger interface {
	Info(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)
	Debug(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	With(fields ...zap.Field) Logger
	WithContext(ctx context.Context) Logger
}
