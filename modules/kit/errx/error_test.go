package errx

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Is_只按code比较语义(t *testing.T) {
	e1 := NewBiz("KEEP_NOT_OWNED", "城堡不属于发令阵营").WithData("keep", 3)
	e2 := NewBiz("KEEP_NOT_OWNED", "不是你的城堡").WithCause(errors.New("x"))
	if !errors.Is(e1, e2) {
		t.Fatalf("期望 errors.Is(e1, e2)==true，e1=%v e2=%v", e1, e2)
	}
	if errors.Is(e1, NewBiz("MATCH_OVER", "")) {
		t.Fatalf("不同 code 不应相等")
	}
}

func TestError_业务错误不捕获栈_但保留cause链(t *testing.T) {
	cause := errors.New("route blocked")
	err := NewBiz("NO_ROUTE", "两座城堡之间没有通路").WithCause(cause)
	if got := err.Stack(); got != nil {
		t.Fatalf("期望业务错误不捕获栈，got=%v", got)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("期望 cause 链不丢，err=%v", err)
	}
	if err.Error() != "NO_ROUTE: 两座城堡之间没有通路: route blocked" {
		t.Fatalf("Error() 格式异常：%q", err.Error())
	}
}

func TestError_系统错误捕获一次栈_且不重复捕获(t *testing.T) {
	sys := ErrReplayUnavailable.WithCause(errors.New("database is locked"))
	if got := sys.Stack(); len(got) == 0 {
		t.Fatalf("期望系统错误捕获栈，got=%v", got)
	}
	if len(ErrReplayUnavailable.Stack()) != 0 {
		t.Fatalf("派生不应修改哨兵错误")
	}

	outer := ErrInternal.WithCause(fmt.Errorf("replay: %w", sys))
	if got := outer.Stack(); got != nil {
		t.Fatalf("cause 链里已有栈时上层不应重复捕获，got=%v", got)
	}
}

func TestError_Data_防止外部map污染(t *testing.T) {
	m := map[string]any{"map_file": "a.txt"}
	err := ErrInvalidSetup.WithDataMap(m)
	m["map_file"] = "mutated"
	if got := err.Data()["map_file"]; got != "a.txt" {
		t.Fatalf("期望构造时复制 data，got=%v", got)
	}
	err.Data()["map_file"] = "again"
	if got := err.Data()["map_file"]; got != "a.txt" {
		t.Fatalf("Data() 应返回拷贝，got=%v", got)
	}
}

func TestError_Reason(t *testing.T) {
	err := ErrReplayUnavailable.WithReason("load_entries").WithData("match_id", "m-1")
	if err.Reason() != "load_entries" {
		t.Fatalf("reason 异常：%q", err.Reason())
	}
	if ErrReplayUnavailable.Reason() != "" {
		t.Fatalf("哨兵错误不应有 reason")
	}
}

func TestError_IsBiz(t *testing.T) {
	if !NewBiz("A", "a").WithData("k", 1).IsBiz() {
		t.Fatalf("派生的业务错误仍应是业务错误")
	}
	if ErrInternal.WithCause(errors.New("x")).IsBiz() {
		t.Fatalf("系统错误不是业务错误")
	}
	var nilErr *Error
	if nilErr.IsBiz() {
		t.Fatalf("nil 不是业务错误")
	}
	if !IsBiz(fmt.Errorf("wrap: %w", NewBiz("MATCH_OVER", "比赛已结束"))) {
		t.Fatalf("包装后的业务错误应能识别")
	}
	if IsBiz(errors.New("plain")) {
		t.Fatalf("普通错误不是业务错误")
	}
}
