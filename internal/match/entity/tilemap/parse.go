package tilemap

import (
	"strings"

	"Strongholds/internal/match/entity/geom"
	"Strongholds/modules/kit/errx"
)

const (
	SymbolArcherKeep  = 'A'
	SymbolWarriorKeep = 'W'
	SymbolTree        = 'T'
	SymbolResource    = 'R'
	SymbolWater       = '~'
)

var ErrMalformedMap = errx.NewBiz("MAP_MALFORMED", "地图格式错误")

// KeepSeed 是地图中声明的一座城堡。ID 按行优先出现顺序分配，从 0 开始。
type KeepSeed struct {
	ID       int
	Cell     geom.Cell
	Warriors bool
	Alliance int
}

// Parse 解析文本地图。
//
// 第一块是地形，空行后的可选第二块给出每座城堡的初始阵营：
// 城堡所在位置的数字即阵营，其他字符视为中立。
// 未识别的地形字符按平地处理。
func Parse(text string) (*TileMap, []KeepSeed, error) {
	blocks := splitBlocks(text)
	if len(blocks) == 0 {
		return nil, nil, ErrMalformedMap.WithData("reason", "empty map")
	}
	if len(blocks) > 2 {
		return nil, nil, ErrMalformedMap.WithData("reason", "too many blocks").WithData("blocks", len(blocks))
	}

	terrain := blocks[0]
	width, err := blockWidth(terrain)
	if err != nil {
		return nil, nil, err
	}
	height := len(terrain)

	tm := New(width, height)
	var seeds []KeepSeed
	for y, row := range terrain {
		for x, ch := range []rune(row) {
			c := geom.Cell{X: x, Y: y}
			switch ch {
			case SymbolArcherKeep, SymbolWarriorKeep:
				seeds = append(seeds, KeepSeed{
					ID:       len(seeds),
					Cell:     c,
					Warriors: ch == SymbolWarriorKeep,
				})
			case SymbolTree:
				tm.set(c, Tree)
			case SymbolResource:
				tm.set(c, Resource)
			case SymbolWater:
				tm.set(c, Water)
			}
		}
	}

	if len(blocks) == 2 {
		alliances := blocks[1]
		aw, err := blockWidth(alliances)
		if err != nil {
			return nil, nil, err
		}
		if aw != width || len(alliances) != height {
			return nil, nil, ErrMalformedMap.WithDataMap(map[string]any{
				"reason":          "alliance block size mismatch",
				"terrain_width":   width,
				"terrain_height":  height,
				"alliance_width":  aw,
				"alliance_height": len(alliances),
			})
		}
		for i := range seeds {
			c := seeds[i].Cell
			ch := []rune(alliances[c.Y])[c.X]
			if ch >= '0' && ch <= '9' {
				seeds[i].Alliance = int(ch - '0')
			}
		}
	}
	return tm, seeds, nil
}

func splitBlocks(text string) [][]string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var blocks [][]string
	var cur []string
	for _, line := range strings.Split(text, "\n") {
		// 只有真正的空行分隔地形块和阵营块，全是空格的行是一行平地
		if line == "" {
			if len(cur) > 0 {
				blocks = append(blocks, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, line)
	}
	if len(cur) > 0 {
		blocks = append(blocks, cur)
	}
	return blocks
}

func blockWidth(rows []string) (int, error) {
	width := len([]rune(rows[0]))
	for y, row := range rows {
		if n := len([]rune(row)); n != width {
			return 0, ErrMalformedMap.WithDataMap(map[string]any{
				"reason": "ragged row",
				"row":    y,
				"width":  n,
				"want":   width,
			})
		}
	}
	return width, nil
}
