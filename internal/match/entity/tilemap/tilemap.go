package tilemap

import "Strongholds/internal/match/entity/geom"

type Terrain uint8

const (
	Land Terrain = iota
	Water
	Tree
	Resource
)

func (t Terrain) String() string {
	switch t {
	case Water:
		return "water"
	case Tree:
		return "tree"
	case Resource:
		return "resource"
	default:
		return "land"
	}
}

// Passable 表示士兵能否通过该地形。
func (t Terrain) Passable() bool {
	return t == Land || t == Resource
}

// TileMap 是加载后只读的地形网格，附带一份可通行位图。
type TileMap struct {
	width    int
	height   int
	terrain  []Terrain
	passable []bool
}

func New(width, height int) *TileMap {
	tm := &TileMap{
		width:    width,
		height:   height,
		terrain:  make([]Terrain, width*height),
		passable: make([]bool, width*height),
	}
	for i := range tm.passable {
		tm.passable[i] = true
	}
	return tm
}

func (tm *TileMap) Width() int  { return tm.width }
func (tm *TileMap) Height() int { return tm.height }

func (tm *TileMap) InBounds(c geom.Cell) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < tm.width && c.Y < tm.height
}

func (tm *TileMap) Index(c geom.Cell) int {
	return c.Y*tm.width + c.X
}

func (tm *TileMap) CellAt(i int) geom.Cell {
	return geom.Cell{X: i % tm.width, Y: i / tm.width}
}

func (tm *TileMap) Terrain(c geom.Cell) Terrain {
	if !tm.InBounds(c) {
		return Water
	}
	return tm.terrain[tm.Index(c)]
}

// Passable 越界视为不可通行。
func (tm *TileMap) Passable(c geom.Cell) bool {
	if !tm.InBounds(c) {
		return false
	}
	return tm.passable[tm.Index(c)]
}

func (tm *TileMap) set(c geom.Cell, t Terrain) {
	i := tm.Index(c)
	tm.terrain[i] = t
	tm.passable[i] = t.Passable()
}

// Resources 按行优先顺序返回所有资源格。
func (tm *TileMap) Resources() []geom.Cell {
	var out []geom.Cell
	for i, t := range tm.terrain {
		if t == Resource {
			out = append(out, tm.CellAt(i))
		}
	}
	return out
}
