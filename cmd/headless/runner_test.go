package main

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"Strongholds/internal/match/entity/domain"
)

const duelMap = "A.....A\n.......\n.......\n\n1.....2\n.......\n.......\n"

func duelConfig(seed int64) runConfig {
	return runConfig{
		MapText:      duelMap,
		Rules:        domain.DefaultRules(),
		Seed:         seed,
		TickRate:     30,
		NetworkEvery: 3,
		MaxTicks:     30 * 60,
		DecideEvery:  1,
		Percent:      0.8,
	}
}

func TestRunMatch_同种子结果一致(t *testing.T) {
	a, err := runMatch(duelConfig(7), nil)
	if err != nil {
		t.Fatalf("runMatch err=%v", err)
	}
	b, err := runMatch(duelConfig(7), nil)
	if err != nil {
		t.Fatalf("runMatch err=%v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("同种子两次运行结果不同：\n%+v\n%+v", a, b)
	}
	if a.Ticks == 0 || a.Orders == 0 {
		t.Fatalf("期望推进并下达指令，got=%+v", a)
	}
	if a.Over && a.KeepsOwned[a.Winner] != 2 {
		t.Fatalf("胜者应持有全部城堡，got=%+v", a)
	}
}

func TestRunMatch_地图错误(t *testing.T) {
	cfg := duelConfig(1)
	cfg.MapText = "A..\nA.\n"
	if _, err := runMatch(cfg, nil); err == nil {
		t.Fatalf("参差不齐的地图应报错")
	}
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	printReport(&buf, []runReport{
		{Seed: 1, Ticks: 90, Seconds: 3, Over: true, Winner: 2, KeepsOwned: map[int]int{2: 2}},
		{Seed: 2, Ticks: 900, Seconds: 30, KeepsOwned: map[int]int{1: 1, 2: 1}},
	})
	out := buf.String()
	if !strings.Contains(out, "wins 2:1 (2 runs)") {
		t.Fatalf("汇总行异常：\n%s", out)
	}
	if !strings.Contains(out, "1=1,2=1") {
		t.Fatalf("城堡归属列异常：\n%s", out)
	}
}
