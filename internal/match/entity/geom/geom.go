package geom

import "math"

// Vec2 是地图平面坐标，单位为格。格子 (x,y) 覆盖 [x,x+1)×[y,y+1)。
type Vec2 struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

func (v Vec2) Scale(k float64) Vec2 {
	return Vec2{X: v.X * k, Y: v.Y * k}
}

func (v Vec2) Len2() float64 {
	return v.X*v.X + v.Y*v.Y
}

func (v Vec2) Len() float64 {
	return math.Sqrt(v.Len2())
}

func (v Vec2) Dist2(o Vec2) float64 {
	return v.Sub(o).Len2()
}

// Normalize 返回单位向量；零向量原样返回。
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l == 0 {
		return v
	}
	return Vec2{X: v.X / l, Y: v.Y / l}
}

// Cell 是离散格坐标，y 轴向下。
type Cell struct {
	X int `json:"x" msgpack:"x"`
	Y int `json:"y" msgpack:"y"`
}

// Center 返回格子中心点。
func (c Cell) Center() Vec2 {
	return Vec2{X: float64(c.X) + 0.5, Y: float64(c.Y) + 0.5}
}

func (c Cell) Step(d Dir) Cell {
	return Cell{X: c.X + d.DX, Y: c.Y + d.DY}
}

// Dir 是相邻格之间的单位位移。
type Dir struct {
	DX, DY int
}

func (d Dir) Diagonal() bool {
	return d.DX != 0 && d.DY != 0
}

// DirBetween 返回 a→b 的位移，两格不相邻时 ok=false。
func DirBetween(a, b Cell) (Dir, bool) {
	d := Dir{DX: b.X - a.X, DY: b.Y - a.Y}
	if d.DX < -1 || d.DX > 1 || d.DY < -1 || d.DY > 1 || (d.DX == 0 && d.DY == 0) {
		return Dir{}, false
	}
	return d, true
}

// Neighbors8 是固定的 8 邻接遍历顺序：先四个正交方向，再四个对角方向。
// 寻路和领土扩张都依赖这个顺序保证结果可复现。
var Neighbors8 = [8]Dir{
	{DX: 1, DY: 0},
	{DX: -1, DY: 0},
	{DX: 0, DY: 1},
	{DX: 0, DY: -1},
	{DX: 1, DY: 1},
	{DX: -1, DY: 1},
	{DX: 1, DY: -1},
	{DX: -1, DY: -1},
}
