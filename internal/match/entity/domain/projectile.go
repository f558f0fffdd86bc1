package domain

import (
	"math"

	"Strongholds/internal/match/entity/geom"
	"Strongholds/internal/match/entity/spatial"
)

// SolveLaunch 求初速为 speed 时水平距离 dist 的低弧发射角：θ = asin(g·d/s²)/2。
// g·d/s² > 1 时无实数解，ok=false，调用方应放弃这次射击。
func SolveLaunch(gravity, speed, dist float64) (theta float64, ratio float64, ok bool) {
	if gravity <= 0 || speed <= 0 || dist < 0 {
		return 0, 0, false
	}
	ratio = gravity * dist / (speed * speed)
	if ratio > 1 {
		return 0, ratio, false
	}
	return math.Asin(ratio) / 2, ratio, true
}

// Projectile 是一支飞行中的箭，轨迹由闭式弹道解完全决定。
type Projectile struct {
	ID       spatial.ID
	KeepID   KeepID
	Alliance Alliance
	Born     float64
	Start    geom.Vec2
	Landing  geom.Vec2
	Duration float64

	dir     geom.Vec2
	hSpeed  float64
	vSpeed  float64
	gravity float64
}

// NewProjectile 从 start 瞄准 aim 发射。无解时返回 nil, ratio, false。
func NewProjectile(id spatial.ID, keep KeepID, alliance Alliance, born float64, start, aim geom.Vec2, rules Rules) (*Projectile, float64, bool) {
	delta := aim.Sub(start)
	dist := delta.Len()
	theta, ratio, ok := SolveLaunch(rules.Gravity, rules.ArrowSpeed, dist)
	if !ok {
		return nil, ratio, false
	}
	dir := delta.Normalize()
	vs := rules.ArrowSpeed * math.Sin(theta)
	return &Projectile{
		ID:       id,
		KeepID:   keep,
		Alliance: alliance,
		Born:     born,
		Start:    start,
		Landing:  start.Add(dir.Scale(dist)),
		Duration: 2 * vs / rules.Gravity,
		dir:      dir,
		hSpeed:   rules.ArrowSpeed * math.Cos(theta),
		vSpeed:   vs,
		gravity:  rules.Gravity,
	}, ratio, true
}

// Velocity 返回初速度的水平分量与竖直分量。
func (p *Projectile) Velocity() (geom.Vec2, float64) {
	return p.dir.Scale(p.hSpeed), p.vSpeed
}

// PositionAt 返回时刻 now 的平面位置和高度。
func (p *Projectile) PositionAt(now float64) (geom.Vec2, float64) {
	t := math.Min(math.Max(now-p.Born, 0), p.Duration)
	pos := p.Start.Add(p.dir.Scale(p.hSpeed * t))
	height := p.vSpeed*t - 0.5*p.gravity*t*t
	return pos, math.Max(height, 0)
}

func (p *Projectile) Landed(now float64) bool {
	return now-p.Born >= p.Duration
}
