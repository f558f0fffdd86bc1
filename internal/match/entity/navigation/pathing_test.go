package navigation

import (
	"math"
	"slices"
	"testing"

	"Strongholds/internal/match/entity/geom"
	"Strongholds/internal/match/entity/tilemap"
)

func mustParse(t *testing.T, text string) (*tilemap.TileMap, []geom.Cell) {
	t.Helper()
	tm, seeds, err := tilemap.Parse(text)
	if err != nil {
		t.Fatalf("Parse err=%v", err)
	}
	cells := make([]geom.Cell, len(seeds))
	for i, s := range seeds {
		cells[i] = s.Cell
	}
	return tm, cells
}

func TestBuild_路径首尾是两座城堡(t *testing.T) {
	tm, keeps := mustParse(t, ""+
		"A........W\n"+
		"..T.......\n"+
		"..~~~.T...\n"+
		"......T...\n"+
		"....A.....\n")
	tb := Build(tm, keeps)
	if tb.Len() != 6 {
		t.Fatalf("期望 6 个可达城堡对，got=%d", tb.Len())
	}
	for from := range keeps {
		for to := range keeps {
			if from == to {
				continue
			}
			r, ok := tb.Path(from, to)
			if !ok {
				t.Fatalf("期望 %d→%d 可达", from, to)
			}
			if r.Cells[0] != keeps[from] || r.Cells[len(r.Cells)-1] != keeps[to] {
				t.Fatalf("%d→%d 首尾异常：%v", from, to, r.Cells)
			}
			if len(r.Steps) != len(r.Cells)-1 {
				t.Fatalf("%d→%d 原语数量 %d，格子数量 %d", from, to, len(r.Steps), len(r.Cells))
			}
			for i := 1; i < len(r.Cells); i++ {
				if _, ok := geom.DirBetween(r.Cells[i-1], r.Cells[i]); !ok || !tm.Passable(r.Cells[i]) {
					t.Fatalf("%d→%d 第 %d 步非法：%v", from, to, i, r.Cells)
				}
			}
		}
	}
	r, _ := tb.Path(0, 1)
	if len(r.Cells) != 10 {
		t.Fatalf("期望 0→1 走最短的 10 格，got=%d", len(r.Cells))
	}
}

func TestBuild_可以经过其他城堡(t *testing.T) {
	tm, keeps := mustParse(t, "A.W.A\n")
	tb := Build(tm, keeps)
	if !tb.Reachable(0, 2) || !tb.Reachable(2, 0) {
		t.Fatalf("走廊两端的城堡应经过中间城堡互相可达")
	}
	r, _ := tb.Path(0, 2)
	want := []geom.Cell{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}, {X: 3, Y: 0}, {X: 4, Y: 0}}
	if !slices.Equal(r.Cells, want) || r.Length != 4 {
		t.Fatalf("期望直线穿过城堡 1，got=%v len=%v", r.Cells, r.Length)
	}
	if tb.Len() != 6 {
		t.Fatalf("三座城堡两两可达，got=%d", tb.Len())
	}
}

func TestBuild_对角可以斜穿拐角(t *testing.T) {
	tm, keeps := mustParse(t, "AT\nTW\n")
	r, ok := Build(tm, keeps).Path(0, 1)
	if !ok {
		t.Fatalf("两侧是树时仍应按 8 邻接斜向可达")
	}
	if len(r.Cells) != 2 || r.Cells[1] != (geom.Cell{X: 1, Y: 1}) {
		t.Fatalf("期望一步斜走，got=%v", r.Cells)
	}

	tm, keeps = mustParse(t, "A~.\n.~.\n~~~\n..W\n")
	if Build(tm, keeps).Reachable(0, 1) {
		t.Fatalf("被水完全隔开时不应可达")
	}
}

func TestClassify_按进入方向选择弧线轴向(t *testing.T) {
	got := Classify([]geom.Cell{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 1}, {X: 2, Y: 2}})
	want := []WalkPrimitive{StraightEast, TurnEastSouth, StraightSouth}
	if !slices.Equal(got, want) {
		t.Fatalf("got=%v want=%v", got, want)
	}

	got = Classify([]geom.Cell{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 1}})
	want = []WalkPrimitive{TurnSouthEast, StraightEast}
	if !slices.Equal(got, want) {
		t.Fatalf("起点对角步应与下一步衔接，got=%v want=%v", got, want)
	}

	got = Classify([]geom.Cell{{X: 3, Y: 3}, {X: 2, Y: 2}, {X: 1, Y: 1}})
	want = []WalkPrimitive{TurnWestNorth, TurnNorthWest}
	if !slices.Equal(got, want) {
		t.Fatalf("连续对角步应沿上一段离开的轴继续，got=%v want=%v", got, want)
	}

	if Classify([]geom.Cell{{X: 0, Y: 0}, {X: 2, Y: 0}}) != nil {
		t.Fatalf("不相邻的格子应返回 nil")
	}
}

func TestWalkPrimitive_长度与插值(t *testing.T) {
	if StraightNorth.Length() != 1 {
		t.Fatalf("直行长度应为 1")
	}
	if math.Abs(TurnSouthWest.Length()-math.Pi/2) > 1e-12 {
		t.Fatalf("弧线长度应为 π/2")
	}

	from := geom.Vec2{X: 0.5, Y: 0.5}
	end := TurnEastSouth.Sample(from, 1)
	if math.Abs(end.X-1.5) > 1e-9 || math.Abs(end.Y-1.5) > 1e-9 {
		t.Fatalf("弧线终点应为相邻格中心，got=%v", end)
	}
	mid := TurnEastSouth.Sample(from, 0.5)
	if math.Abs(mid.X-(0.5+math.Sqrt2/2)) > 1e-9 || math.Abs(mid.Y-(1.5-math.Sqrt2/2)) > 1e-9 {
		t.Fatalf("先 x 后 y 的弧线中点异常：%v", mid)
	}
	half := StraightWest.Sample(from, 0.5)
	if half != (geom.Vec2{X: 0, Y: 0.5}) {
		t.Fatalf("直行中点异常：%v", half)
	}
}
