package spatial

import (
	"fmt"
	"math"
	"slices"

	"Strongholds/internal/match/entity/geom"
	"Strongholds/modules/kit/errx"
)

type ID = uint64

var (
	ErrDuplicateID = errx.NewBiz("SPATIAL_DUPLICATE_ID", "实体已在网格中")
	ErrNotFound    = errx.NewBiz("SPATIAL_NOT_FOUND", "实体不在网格中")
)

type entry struct {
	pos    geom.Vec2
	radius float64
	part   int
}

// Grid 是均匀分区的空间索引。每个实体只登记在其中心点所在的分区里，
// 查询时按最大半径外扩扫描范围，保证半径大于分区尺寸的实体也能命中。
type Grid struct {
	width  float64
	height float64
	size   float64
	cols   int
	rows   int

	parts     [][]ID
	items     map[ID]*entry
	maxRadius float64
}

func NewGrid(width, height, partitionSize float64) *Grid {
	if partitionSize <= 0 {
		partitionSize = 1
	}
	cols := max(1, int(math.Ceil(width/partitionSize)))
	rows := max(1, int(math.Ceil(height/partitionSize)))
	return &Grid{
		width:  width,
		height: height,
		size:   partitionSize,
		cols:   cols,
		rows:   rows,
		parts:  make([][]ID, cols*rows),
		items:  make(map[ID]*entry),
	}
}

func (g *Grid) Len() int {
	return len(g.items)
}

func (g *Grid) Position(id ID) (geom.Vec2, bool) {
	e, ok := g.items[id]
	if !ok {
		return geom.Vec2{}, false
	}
	return e.pos, true
}

func (g *Grid) Insert(id ID, pos geom.Vec2, radius float64) error {
	if _, ok := g.items[id]; ok {
		return ErrDuplicateID.WithData("id", id)
	}
	pos = g.clamp(pos)
	e := &entry{pos: pos, radius: radius, part: g.partitionOf(pos)}
	g.items[id] = e
	g.parts[e.part] = append(g.parts[e.part], id)
	// 只增不减：扫描范围偏大不影响正确性。
	if radius > g.maxRadius {
		g.maxRadius = radius
	}
	return nil
}

func (g *Grid) Remove(id ID) error {
	e, ok := g.items[id]
	if !ok {
		return ErrNotFound.WithData("id", id)
	}
	g.unfile(id, e.part)
	delete(g.items, id)
	return nil
}

// Move 把实体移动到 pos（越界时截断到地图边界），返回截断后的位置。
func (g *Grid) Move(id ID, pos geom.Vec2) (geom.Vec2, error) {
	e, ok := g.items[id]
	if !ok {
		return geom.Vec2{}, ErrNotFound.WithData("id", id)
	}
	pos = g.clamp(pos)
	e.pos = pos
	if part := g.partitionOf(pos); part != e.part {
		g.unfile(id, e.part)
		e.part = part
		g.parts[part] = append(g.parts[part], id)
	}
	return pos, nil
}

// QueryRadius 返回与圆 (point, radius) 相交的实体，按 id 升序。
// 判定为 dist² <= (radius+r)²，边界相切也算命中。
func (g *Grid) QueryRadius(point geom.Vec2, radius float64) []ID {
	var out []ID
	g.scan(point, radius, func(id ID) bool {
		out = append(out, id)
		return true
	})
	slices.Sort(out)
	return out
}

// FindFirst 返回满足 pred 的命中实体中 id 最小的一个。
func (g *Grid) FindFirst(point geom.Vec2, radius float64, pred func(ID) bool) (ID, bool) {
	var (
		best  ID
		found bool
	)
	g.scan(point, radius, func(id ID) bool {
		if found && id >= best {
			return true
		}
		if pred == nil || pred(id) {
			best, found = id, true
		}
		return true
	})
	return best, found
}

func (g *Grid) scan(point geom.Vec2, radius float64, visit func(ID) bool) {
	reach := radius + g.maxRadius
	c0, r0 := g.partitionXY(point.X-reach, point.Y-reach)
	c1, r1 := g.partitionXY(point.X+reach, point.Y+reach)
	c0, r0 = max(0, c0-1), max(0, r0-1)
	c1, r1 = min(g.cols-1, c1+1), min(g.rows-1, r1+1)

	for r := r0; r <= r1; r++ {
		for c := c0; c <= c1; c++ {
			for _, id := range g.parts[r*g.cols+c] {
				e := g.items[id]
				sum := radius + e.radius
				if e.pos.Dist2(point) > sum*sum {
					continue
				}
				if !visit(id) {
					return
				}
			}
		}
	}
}

// Check 校验每个实体恰好登记在与其位置一致的一个分区内。
func (g *Grid) Check() error {
	seen := make(map[ID]int, len(g.items))
	for part, ids := range g.parts {
		for _, id := range ids {
			e, ok := g.items[id]
			if !ok {
				return fmt.Errorf("partition %d holds untracked id %d", part, id)
			}
			if e.part != part || g.partitionOf(e.pos) != part {
				return fmt.Errorf("id %d filed in partition %d, position maps to %d", id, part, g.partitionOf(e.pos))
			}
			seen[id]++
		}
	}
	for id := range g.items {
		if seen[id] != 1 {
			return fmt.Errorf("id %d filed %d times", id, seen[id])
		}
	}
	return nil
}

func (g *Grid) unfile(id ID, part int) {
	ids := g.parts[part]
	for i, v := range ids {
		if v == id {
			last := len(ids) - 1
			ids[i] = ids[last]
			g.parts[part] = ids[:last]
			return
		}
	}
}

func (g *Grid) clamp(p geom.Vec2) geom.Vec2 {
	return geom.Vec2{
		X: math.Min(math.Max(p.X, 0), g.width),
		Y: math.Min(math.Max(p.Y, 0), g.height),
	}
}

func (g *Grid) partitionXY(x, y float64) (int, int) {
	c := int(math.Floor(x / g.size))
	r := int(math.Floor(y / g.size))
	return min(max(c, 0), g.cols-1), min(max(r, 0), g.rows-1)
}

func (g *Grid) partitionOf(p geom.Vec2) int {
	c, r := g.partitionXY(p.X, p.Y)
	return r*g.cols + c
}
