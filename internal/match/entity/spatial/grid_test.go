package spatial

import (
	"errors"
	"slices"
	"testing"

	"Strongholds/internal/match/entity/geom"
)

func TestGrid_插入与删除错误(t *testing.T) {
	g := NewGrid(16, 16, 4)
	if err := g.Insert(1, geom.Vec2{X: 1, Y: 1}, 0.5); err != nil {
		t.Fatalf("Insert err=%v", err)
	}
	if err := g.Insert(1, geom.Vec2{X: 2, Y: 2}, 0.5); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("期望 ErrDuplicateID，got=%v", err)
	}
	if err := g.Remove(2); !errors.Is(err, ErrNotFound) {
		t.Fatalf("期望 ErrNotFound，got=%v", err)
	}
	if err := g.Remove(1); err != nil {
		t.Fatalf("Remove err=%v", err)
	}
	if g.Len() != 0 {
		t.Fatalf("期望网格为空，got=%d", g.Len())
	}
	if _, err := g.Move(1, geom.Vec2{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("期望 Move 未知 id 返回 ErrNotFound，got=%v", err)
	}
}

func TestGrid_碰撞边界包含相切(t *testing.T) {
	g := NewGrid(16, 16, 4)
	if err := g.Insert(7, geom.Vec2{X: 1, Y: 1}, 0.25); err != nil {
		t.Fatalf("Insert err=%v", err)
	}

	if got := g.QueryRadius(geom.Vec2{X: 1.75, Y: 1}, 0.5); !slices.Equal(got, []ID{7}) {
		t.Fatalf("距离恰为 r1+r2 应命中，got=%v", got)
	}
	if got := g.QueryRadius(geom.Vec2{X: 1.75 + 1e-6, Y: 1}, 0.5); len(got) != 0 {
		t.Fatalf("距离为 r1+r2+ε 不应命中，got=%v", got)
	}
}

func TestGrid_重复查询结果一致(t *testing.T) {
	g := NewGrid(32, 32, 4)
	pts := []geom.Vec2{{X: 3, Y: 3}, {X: 4.1, Y: 3}, {X: 7.9, Y: 4}, {X: 5, Y: 6}, {X: 20, Y: 20}}
	for i, p := range pts {
		if err := g.Insert(ID(10-i), p, 0.2); err != nil {
			t.Fatalf("Insert err=%v", err)
		}
	}
	first := g.QueryRadius(geom.Vec2{X: 5, Y: 4}, 3)
	second := g.QueryRadius(geom.Vec2{X: 5, Y: 4}, 3)
	if !slices.Equal(first, second) {
		t.Fatalf("两次查询结果不同：%v vs %v", first, second)
	}
	if !slices.Equal(first, []ID{7, 8, 9, 10}) {
		t.Fatalf("查询结果异常：%v", first)
	}
}

func TestGrid_大半径实体跨分区命中(t *testing.T) {
	g := NewGrid(40, 40, 2)
	// 半径远大于分区尺寸，中心点在很远的分区里
	if err := g.Insert(1, geom.Vec2{X: 20, Y: 20}, 9); err != nil {
		t.Fatalf("Insert err=%v", err)
	}
	if got := g.QueryRadius(geom.Vec2{X: 10, Y: 20}, 1); !slices.Equal(got, []ID{1}) {
		t.Fatalf("期望命中大半径实体，got=%v", got)
	}
}

func TestGrid_移动截断并重新归档(t *testing.T) {
	g := NewGrid(10, 8, 4)
	if err := g.Insert(3, geom.Vec2{X: 1, Y: 1}, 0.2); err != nil {
		t.Fatalf("Insert err=%v", err)
	}
	pos, err := g.Move(3, geom.Vec2{X: 25, Y: -4})
	if err != nil {
		t.Fatalf("Move err=%v", err)
	}
	if pos != (geom.Vec2{X: 10, Y: 0}) {
		t.Fatalf("期望截断到 (10,0)，got=%v", pos)
	}
	if err := g.Check(); err != nil {
		t.Fatalf("Check err=%v", err)
	}
	if got := g.QueryRadius(geom.Vec2{X: 9.5, Y: 0.5}, 1); !slices.Equal(got, []ID{3}) {
		t.Fatalf("移动后应在新位置命中，got=%v", got)
	}
	if got := g.QueryRadius(geom.Vec2{X: 1, Y: 1}, 0.5); len(got) != 0 {
		t.Fatalf("旧位置不应再命中，got=%v", got)
	}
}

func TestGrid_FindFirst按谓词取最小id(t *testing.T) {
	g := NewGrid(16, 16, 4)
	for id := ID(1); id <= 5; id++ {
		if err := g.Insert(id, geom.Vec2{X: 8, Y: 8}, 0.2); err != nil {
			t.Fatalf("Insert err=%v", err)
		}
	}
	got, ok := g.FindFirst(geom.Vec2{X: 8, Y: 8}, 0.1, func(id ID) bool { return id%2 == 0 })
	if !ok || got != 2 {
		t.Fatalf("期望命中 id=2，got=%d ok=%v", got, ok)
	}
	if _, ok := g.FindFirst(geom.Vec2{X: 8, Y: 8}, 0.1, func(ID) bool { return false }); ok {
		t.Fatalf("谓词全部拒绝时不应命中")
	}
}
