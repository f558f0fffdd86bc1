package logx

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

const (
	maxCauseDepth  = 16
	maxStackFrames = 24
)

// ErrorLog 是从 errx 错误里拆出来的可打印字段。
type ErrorLog struct {
	Error      string
	Code       string
	Msg        string
	Reason     string
	Data       map[string]any
	CauseChain []string
	Origin     string
	Stack      string
}

// BuildErrorLog 只依赖方法集提取字段，kit 之外的错误类型同样适用。
func BuildErrorLog(err error) ErrorLog {
	if err == nil {
		return ErrorLog{}
	}
	out := ErrorLog{Error: err.Error()}

	var code interface{ CodeText() string }
	if errors.As(err, &code) {
		out.Code = code.CodeText()
	}
	var msg interface{ Msg() string }
	if errors.As(err, &msg) {
		out.Msg = msg.Msg()
	}
	var data interface{ Data() map[string]any }
	if errors.As(err, &data) {
		out.Data = data.Data()
	}
	var reason interface{ Reason() string }
	if errors.As(err, &reason) {
		out.Reason = reason.Reason()
	}
	var stack interface{ Stack() []uintptr }
	if errors.As(err, &stack) {
		out.Origin, out.Stack = formatStack(stack.Stack())
	}
	out.CauseChain = causeChain(err)
	return out
}

func causeChain(err error) []string {
	var out []string
	for cur := errors.Unwrap(err); cur != nil && len(out) < maxCauseDepth; cur = errors.Unwrap(cur) {
		out = append(out, fmt.Sprintf("%T: %v", cur, cur))
	}
	return out
}

// formatStack 返回首帧和整段栈，每帧一行 "func file:line"。
func formatStack(pcs []uintptr) (string, string) {
	if len(pcs) == 0 {
		return "", ""
	}
	frames := runtime.CallersFrames(pcs)
	lines := make([]string, 0, maxStackFrames)
	for len(lines) < maxStackFrames {
		f, more := frames.Next()
		if f.Function == "" && f.File == "" {
			break
		}
		lines = append(lines, fmt.Sprintf("%s %s:%d", f.Function, f.File, f.Line))
		if !more {
			break
		}
	}
	if len(lines) == 0 {
		return "", ""
	}
	return lines[0], strings.Join(lines, "\n")
}
