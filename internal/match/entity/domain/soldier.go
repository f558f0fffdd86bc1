package domain

import (
	"Strongholds/internal/match/entity/geom"
	"Strongholds/internal/match/entity/navigation"
	"Strongholds/internal/match/entity/spatial"
)

// Soldier 沿预计算路径行军，到达目标城堡后结算 Breach 并销毁。
type Soldier struct {
	ID       spatial.ID
	Alliance Alliance
	Type     TroopType
	Source   KeepID
	Target   KeepID
	Pos      geom.Vec2

	route    *navigation.Route
	index    int
	progress float64
}

func NewSoldier(id spatial.ID, alliance Alliance, t TroopType, source, target KeepID, route *navigation.Route) *Soldier {
	s := &Soldier{
		ID:       id,
		Alliance: alliance,
		Type:     t,
		Source:   source,
		Target:   target,
		route:    route,
	}
	if route != nil && len(route.Cells) > 0 {
		s.Pos = route.Cells[0].Center()
	}
	return s
}

func (s *Soldier) PathIndex() int {
	return s.index
}

func (s *Soldier) Progress() float64 {
	return s.progress
}

// Advance 前进 speed·dt，超过当前一步的长度就进入下一步。
// 走完最后一步时返回 true。
func (s *Soldier) Advance(dt, speed float64) bool {
	if s.route == nil || len(s.route.Steps) == 0 {
		return true
	}
	steps := s.route.Steps
	s.progress += speed * dt
	for s.index < len(steps) && s.progress >= steps[s.index].Length() {
		s.progress -= steps[s.index].Length()
		s.index++
	}
	if s.index >= len(steps) {
		s.Pos = s.route.Cells[len(s.route.Cells)-1].Center()
		return true
	}
	step := steps[s.index]
	s.Pos = step.Sample(s.route.Cells[s.index].Center(), s.progress/step.Length())
	return false
}
