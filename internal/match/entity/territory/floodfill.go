package territory

import (
	"strings"

	"Strongholds/internal/match/entity/geom"
)

// Terrain 是领土扩张需要的最小地形视图。
type Terrain interface {
	Width() int
	Height() int
	Passable(c geom.Cell) bool
}

const unowned = -1

// Ownership 是每个可通行格归属的城堡，加载后只读。
type Ownership struct {
	width  int
	height int
	owner  []int32
}

// FloodFill 从每座城堡同时向外扩张，按轮次推进：
// 每一轮按城堡 id 升序，各自认领当前前沿所有未被认领的可通行 8 邻格，
// 先到先得，所有前沿同时为空时结束。
// 同一轮内的争夺由处理顺序决定，等价于距离相同时 id 小的城堡获胜。
func FloodFill(t Terrain, keeps []geom.Cell) *Ownership {
	w, h := t.Width(), t.Height()
	o := &Ownership{width: w, height: h, owner: make([]int32, w*h)}
	for i := range o.owner {
		o.owner[i] = unowned
	}

	frontiers := make([][]geom.Cell, len(keeps))
	for id, c := range keeps {
		if !o.inBounds(c) || o.owner[o.index(c)] != unowned {
			continue
		}
		o.owner[o.index(c)] = int32(id)
		frontiers[id] = []geom.Cell{c}
	}

	for active := true; active; {
		active = false
		for id, frontier := range frontiers {
			var next []geom.Cell
			for _, cur := range frontier {
				for _, d := range geom.Neighbors8 {
					n := cur.Step(d)
					if !o.inBounds(n) || !t.Passable(n) || o.owner[o.index(n)] != unowned {
						continue
					}
					o.owner[o.index(n)] = int32(id)
					next = append(next, n)
				}
			}
			frontiers[id] = next
			if len(next) > 0 {
				active = true
			}
		}
	}
	return o
}

// Owner 返回格子归属的城堡 id。
func (o *Ownership) Owner(c geom.Cell) (int, bool) {
	if !o.inBounds(c) {
		return 0, false
	}
	id := o.owner[o.index(c)]
	if id == unowned {
		return 0, false
	}
	return int(id), true
}

// Count 统计每座城堡拥有的格子数。
func (o *Ownership) Count() map[int]int {
	out := make(map[int]int)
	for _, id := range o.owner {
		if id != unowned {
			out[int(id)]++
		}
	}
	return out
}

// String 按行优先输出，每格一个字符：id<10 为数字，之后为小写字母，无主为 '.'。
func (o *Ownership) String() string {
	var b strings.Builder
	b.Grow(len(o.owner))
	for _, id := range o.owner {
		b.WriteByte(ownerChar(id))
	}
	return b.String()
}

func ownerChar(id int32) byte {
	switch {
	case id == unowned:
		return '.'
	case id < 10:
		return byte('0' + id)
	case id < 36:
		return byte('a' + id - 10)
	default:
		return '#'
	}
}

func (o *Ownership) inBounds(c geom.Cell) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < o.width && c.Y < o.height
}

func (o *Ownership) index(c geom.Cell) int {
	return c.Y*o.width + c.X
}
