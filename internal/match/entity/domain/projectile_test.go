package domain

import (
	"math"
	"testing"

	"Strongholds/internal/match/entity/geom"
	"Strongholds/internal/match/entity/navigation"
)

func TestSolveLaunch_低弧解与无解(t *testing.T) {
	theta, ratio, ok := SolveLaunch(10, 10, 5)
	if !ok || math.Abs(ratio-0.5) > 1e-12 {
		t.Fatalf("期望有解 ratio=0.5，got ok=%v ratio=%v", ok, ratio)
	}
	if math.Abs(theta-math.Pi/12) > 1e-12 {
		t.Fatalf("期望 θ=π/12，got=%v", theta)
	}

	if _, ratio, ok := SolveLaunch(10, 10, 10.5); ok || ratio <= 1 {
		t.Fatalf("超出最大射程应无解，got ok=%v ratio=%v", ok, ratio)
	}
}

func TestProjectile_落点与飞行时间(t *testing.T) {
	rules := DefaultRules()
	start := geom.Vec2{X: 1, Y: 1}
	aim := geom.Vec2{X: 4, Y: 5}
	p, _, ok := NewProjectile(9, 0, 1, 0, start, aim, rules)
	if !ok {
		t.Fatalf("射程内应有解")
	}
	if p.Landing.Dist2(aim) > 1e-18 {
		t.Fatalf("落点应为瞄准点，got=%v", p.Landing)
	}

	h, vz := p.Velocity()
	if math.Abs(h.Len()*p.Duration-5) > 1e-9 {
		t.Fatalf("水平速度×飞行时间应等于水平距离，got=%v", h.Len()*p.Duration)
	}
	if math.Abs(p.Duration-2*vz/rules.Gravity) > 1e-12 {
		t.Fatalf("飞行时间应为 2·vz/g")
	}

	pos, height := p.PositionAt(p.Born + p.Duration)
	if pos.Dist2(aim) > 1e-12 || height > 1e-9 {
		t.Fatalf("落地时应在落点且高度为 0，got pos=%v h=%v", pos, height)
	}
	if _, apex := p.PositionAt(p.Born + p.Duration/2); apex <= 0 {
		t.Fatalf("飞行中点应在空中")
	}
	if p.Landed(p.Born+p.Duration/2) || !p.Landed(p.Born+p.Duration) {
		t.Fatalf("Landed 判定异常")
	}

	rules.ArrowSpeed = 1
	if _, _, ok := NewProjectile(10, 0, 1, 0, start, aim, rules); ok {
		t.Fatalf("初速过低时应放弃射击")
	}
}

func TestSoldier_沿路径行军并到达(t *testing.T) {
	cells := []geom.Cell{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 1}}
	steps := navigation.Classify(cells)
	route := &navigation.Route{Cells: cells, Steps: steps}
	s := NewSoldier(1, 1, Archer, 0, 1, route)
	if s.Pos != cells[0].Center() {
		t.Fatalf("士兵应出生在起点中心，got=%v", s.Pos)
	}

	if s.Advance(0.25, 2) {
		t.Fatalf("走 0.5 格不应到达")
	}
	if s.PathIndex() != 0 || math.Abs(s.Pos.X-1.0) > 1e-12 {
		t.Fatalf("第一步走到一半，got idx=%d pos=%v", s.PathIndex(), s.Pos)
	}
	if s.Advance(0.5, 2) {
		t.Fatalf("走 1.5 格不应到达")
	}
	if s.PathIndex() != 1 {
		t.Fatalf("应进入第二步，got=%d", s.PathIndex())
	}
	if !s.Advance(1, 2) {
		t.Fatalf("总长 1+π/2 走 3.5 格应到达")
	}
	if s.Pos != cells[2].Center() {
		t.Fatalf("到达后应在终点中心，got=%v", s.Pos)
	}
}
