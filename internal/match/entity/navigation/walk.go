package navigation

import (
	"math"

	"Strongholds/internal/match/entity/geom"
)

// WalkPrimitive 描述路径上的一步如何平滑移动，只用于插值和计时，不影响可达性。
// 直行 4 种，长度 1；对角步是半径为 1 的四分之一圆弧，共 8 种
// （4 个对角方向 × 先走 x 轴 / 先走 y 轴），长度 π/2。
type WalkPrimitive uint8

const (
	StraightEast WalkPrimitive = iota
	StraightWest
	StraightSouth
	StraightNorth

	TurnEastSouth // 先向东，再转向南
	TurnSouthEast
	TurnEastNorth
	TurnNorthEast
	TurnWestSouth
	TurnSouthWest
	TurnWestNorth
	TurnNorthWest
)

const (
	straightLength = 1.0
	turnLength     = math.Pi / 2
)

type walkShape struct {
	dir    geom.Dir
	xFirst bool
	name   string
}

var walkShapes = [...]walkShape{
	StraightEast:  {dir: geom.Dir{DX: 1}, name: "straight_east"},
	StraightWest:  {dir: geom.Dir{DX: -1}, name: "straight_west"},
	StraightSouth: {dir: geom.Dir{DY: 1}, name: "straight_south"},
	StraightNorth: {dir: geom.Dir{DY: -1}, name: "straight_north"},
	TurnEastSouth: {dir: geom.Dir{DX: 1, DY: 1}, xFirst: true, name: "turn_east_south"},
	TurnSouthEast: {dir: geom.Dir{DX: 1, DY: 1}, name: "turn_south_east"},
	TurnEastNorth: {dir: geom.Dir{DX: 1, DY: -1}, xFirst: true, name: "turn_east_north"},
	TurnNorthEast: {dir: geom.Dir{DX: 1, DY: -1}, name: "turn_north_east"},
	TurnWestSouth: {dir: geom.Dir{DX: -1, DY: 1}, xFirst: true, name: "turn_west_south"},
	TurnSouthWest: {dir: geom.Dir{DX: -1, DY: 1}, name: "turn_south_west"},
	TurnWestNorth: {dir: geom.Dir{DX: -1, DY: -1}, xFirst: true, name: "turn_west_north"},
	TurnNorthWest: {dir: geom.Dir{DX: -1, DY: -1}, name: "turn_north_west"},
}

func (w WalkPrimitive) String() string {
	if int(w) >= len(walkShapes) {
		return "unknown"
	}
	return walkShapes[w].name
}

func (w WalkPrimitive) Dir() geom.Dir {
	return walkShapes[w].dir
}

func (w WalkPrimitive) IsTurn() bool {
	return walkShapes[w].dir.Diagonal()
}

func (w WalkPrimitive) Length() float64 {
	if w.IsTurn() {
		return turnLength
	}
	return straightLength
}

// exitXAxis 表示走完这一步时是否沿 x 轴运动。
func (w WalkPrimitive) exitXAxis() bool {
	s := walkShapes[w]
	if !s.dir.Diagonal() {
		return s.dir.DX != 0
	}
	// 先 x 后 y 的弧线离开时沿 y 轴
	return !s.xFirst
}

// Sample 返回从 from 出发、完成比例 t∈[0,1] 时的位置。
func (w WalkPrimitive) Sample(from geom.Vec2, t float64) geom.Vec2 {
	t = math.Min(math.Max(t, 0), 1)
	s := walkShapes[w]
	sx, sy := float64(s.dir.DX), float64(s.dir.DY)
	if !s.dir.Diagonal() {
		return geom.Vec2{X: from.X + sx*t, Y: from.Y + sy*t}
	}
	theta := t * math.Pi / 2
	along, across := math.Sin(theta), 1-math.Cos(theta)
	if s.xFirst {
		return geom.Vec2{X: from.X + sx*along, Y: from.Y + sy*across}
	}
	return geom.Vec2{X: from.X + sx*across, Y: from.Y + sy*along}
}

func straightFor(d geom.Dir) WalkPrimitive {
	switch {
	case d.DX > 0:
		return StraightEast
	case d.DX < 0:
		return StraightWest
	case d.DY > 0:
		return StraightSouth
	default:
		return StraightNorth
	}
}

func turnFor(d geom.Dir, xFirst bool) WalkPrimitive {
	var base WalkPrimitive
	switch {
	case d.DX > 0 && d.DY > 0:
		base = TurnEastSouth
	case d.DX > 0:
		base = TurnEastNorth
	case d.DY > 0:
		base = TurnWestSouth
	default:
		base = TurnWestNorth
	}
	if xFirst {
		return base
	}
	return base + 1
}

// Classify 把格子路径的每一步分类为行走原语，len(result) == len(cells)-1。
//
// 对角步的轴向取决于进入该节点时的运动方向：进入时沿 x 轴则先走 x，沿 y 轴则先走 y；
// 起点没有进入方向时参考下一步，使弧线结束时与下一步的直行方向衔接，默认先走 x。
func Classify(cells []geom.Cell) []WalkPrimitive {
	if len(cells) < 2 {
		return nil
	}
	dirs := make([]geom.Dir, 0, len(cells)-1)
	for i := 1; i < len(cells); i++ {
		d, ok := geom.DirBetween(cells[i-1], cells[i])
		if !ok {
			return nil
		}
		dirs = append(dirs, d)
	}

	out := make([]WalkPrimitive, len(dirs))
	for i, d := range dirs {
		if !d.Diagonal() {
			out[i] = straightFor(d)
			continue
		}
		var xFirst bool
		switch {
		case i > 0:
			xFirst = out[i-1].exitXAxis()
		case i+1 < len(dirs) && !dirs[i+1].Diagonal():
			// 弧线以 y 轴离开时 xFirst，所以下一步沿 x 时选 y 先
			xFirst = dirs[i+1].DX == 0
		default:
			xFirst = true
		}
		out[i] = turnFor(d, xFirst)
	}
	return out
}
