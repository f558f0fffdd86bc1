package tracex

import (
	"context"
	"crypto/rand"
	"encoding/hex"
)

type traceIDKey struct{}
type matchKey struct{}

// MatchScope 标识一次请求落在哪场比赛、以哪个阵营身份发出。
// Alliance 为 0 表示观战或尚未入场。
type MatchScope struct {
	MatchID  string
	Alliance int
}

func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, traceID)
}

func TraceIDFrom(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	s, ok := ctx.Value(traceIDKey{}).(string)
	return s, ok && s != ""
}

// WithMatch 把比赛范围挂到 ctx 上，matchID 为空时原样返回。
func WithMatch(ctx context.Context, matchID string, alliance int) context.Context {
	if matchID == "" {
		return ctx
	}
	return context.WithValue(ctx, matchKey{}, MatchScope{MatchID: matchID, Alliance: alliance})
}

func MatchFrom(ctx context.Context) (MatchScope, bool) {
	if ctx == nil {
		return MatchScope{}, false
	}
	m, ok := ctx.Value(matchKey{}).(MatchScope)
	return m, ok && m.MatchID != ""
}

// NewTraceID 生成 16 字节随机 trace_id（hex）。
func NewTraceID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return ""
	}
	return hex.EncodeToString(b[:])
}
