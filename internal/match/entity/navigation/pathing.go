package navigation

import (
	"slices"

	"Strongholds/internal/match/entity/geom"
)

// Terrain 是寻路需要的最小地形视图。
type Terrain interface {
	Width() int
	Height() int
	Passable(c geom.Cell) bool
}

// Route 是两座城堡之间的一条路径，Cells 首尾分别是起点和终点城堡所在格。
type Route struct {
	Cells  []geom.Cell
	Steps  []WalkPrimitive
	Length float64
}

type pair struct {
	from, to int
}

// Table 是加载地图时一次性算出的全部城堡对路径，之后只读。
// 不可达的城堡对不在表中。
type Table struct {
	keeps  []geom.Cell
	routes map[pair]*Route
}

// Build 对每座城堡做一次 8 邻接 BFS，再沿回溯指针重建到其他城堡的路径。
func Build(t Terrain, keeps []geom.Cell) *Table {
	tb := &Table{
		keeps:  append([]geom.Cell(nil), keeps...),
		routes: make(map[pair]*Route),
	}
	w, h := t.Width(), t.Height()

	for from, src := range keeps {
		if !inBounds(src, w, h) {
			continue
		}
		prev := bfs(t, src)
		for to, dst := range keeps {
			if to == from || !inBounds(dst, w, h) {
				continue
			}
			cells := reconstruct(prev, w, src, dst)
			if cells == nil {
				continue
			}
			steps := Classify(cells)
			length := 0.0
			for _, s := range steps {
				length += s.Length()
			}
			tb.routes[pair{from, to}] = &Route{Cells: cells, Steps: steps, Length: length}
		}
	}
	return tb
}

// Path 返回 from→to 的路径。
func (tb *Table) Path(from, to int) (*Route, bool) {
	r, ok := tb.routes[pair{from, to}]
	return r, ok
}

func (tb *Table) Reachable(from, to int) bool {
	_, ok := tb.routes[pair{from, to}]
	return ok
}

// Len 返回可达城堡对数量。
func (tb *Table) Len() int {
	return len(tb.routes)
}

const unvisited = -1

// bfs 在可通行位图上做 8 邻接搜索，返回整张图的回溯指针。
// 城堡所在格和普通可通行格一样可以经过，斜向移动不检查两侧拐角。
func bfs(t Terrain, src geom.Cell) []int32 {
	w, h := t.Width(), t.Height()
	prev := make([]int32, w*h)
	for i := range prev {
		prev[i] = unvisited
	}
	start := src.Y*w + src.X
	prev[start] = int32(start)

	queue := []geom.Cell{src}
	for head := 0; head < len(queue); head++ {
		cur := queue[head]
		ci := cur.Y*w + cur.X
		for _, d := range geom.Neighbors8 {
			n := cur.Step(d)
			if !inBounds(n, w, h) || !t.Passable(n) {
				continue
			}
			ni := n.Y*w + n.X
			if prev[ni] != unvisited {
				continue
			}
			prev[ni] = int32(ci)
			queue = append(queue, n)
		}
	}
	return prev
}

func reconstruct(prev []int32, w int, src, dst geom.Cell) []geom.Cell {
	start := src.Y*w + src.X
	i := dst.Y*w + dst.X
	if prev[i] == unvisited {
		return nil
	}
	var rev []geom.Cell
	for i != start {
		rev = append(rev, geom.Cell{X: i % w, Y: i / w})
		i = int(prev[i])
	}
	rev = append(rev, src)
	slices.Reverse(rev)
	return rev
}

func inBounds(c geom.Cell, w, h int) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < w && c.Y < h
}
