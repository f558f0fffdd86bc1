// Package mapgen 用分层 simplex 噪声生成地图文本，生成结果与手写地图走同一个解析器。
package mapgen

import (
	"math/rand"
	"strings"

	"Strongholds/internal/match/entity/geom"
	"Strongholds/internal/match/entity/navigation"
	"Strongholds/internal/match/entity/tilemap"
	"Strongholds/modules/kit/errx"

	opensimplex "github.com/ojrac/opensimplex-go"
)

var ErrNotEnoughLand = errx.NewBiz("MAPGEN_NOT_ENOUGH_LAND", "可放置城堡的陆地不足")

const maxAttempts = 8

type Config struct {
	Width     int
	Height    int
	Keeps     int
	Alliances int // 前 Alliances 座城堡依次分给阵营 1..Alliances，其余中立
	Seed      int64

	WaterLevel    float64 // 海拔低于此值为水
	TreeLevel     float64 // 海拔高于此值为树
	ResourceLevel float64 // 资源噪声高于此值的陆地为资源格
}

func DefaultConfig() Config {
	return Config{
		Width:         32,
		Height:        20,
		Keeps:         6,
		Alliances:     2,
		Seed:          7,
		WaterLevel:    0.34,
		TreeLevel:     0.68,
		ResourceLevel: 0.75,
	}
}

// Generate 返回地图文本（地形块 + 阵营块）。
// 城堡放在最大的四连通陆地区域内，用最远点采样拉开距离；
// 如果放下城堡后有城堡对不可达，就换一个种子重试。
func Generate(cfg Config) (string, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Keeps <= 0 || cfg.Alliances < 0 || cfg.Alliances > 9 {
		return "", errx.ErrInvalidSetup.WithDataMap(map[string]any{
			"width":     cfg.Width,
			"height":    cfg.Height,
			"keeps":     cfg.Keeps,
			"alliances": cfg.Alliances,
		})
	}
	for attempt := 0; attempt < maxAttempts; attempt++ {
		text, ok := generate(cfg, cfg.Seed+int64(attempt)*7919)
		if ok {
			return text, nil
		}
	}
	return "", ErrNotEnoughLand.WithDataMap(map[string]any{
		"width":  cfg.Width,
		"height": cfg.Height,
		"keeps":  cfg.Keeps,
	})
}

func generate(cfg Config, seed int64) (string, bool) {
	elevNoise := opensimplex.NewNormalized(seed)
	resNoise := opensimplex.NewNormalized(seed + 1)
	rng := rand.New(rand.NewSource(seed))

	rows := make([][]byte, cfg.Height)
	for y := range rows {
		rows[y] = make([]byte, cfg.Width)
		for x := range rows[y] {
			fx, fy := float64(x), float64(y)
			elev := octaveNoise(elevNoise, fx, fy, 4, 0.09, 0.5)
			switch {
			case elev < cfg.WaterLevel:
				rows[y][x] = tilemap.SymbolWater
			case elev > cfg.TreeLevel:
				rows[y][x] = tilemap.SymbolTree
			case octaveNoise(resNoise, fx, fy, 2, 0.3, 0.5) > cfg.ResourceLevel:
				rows[y][x] = tilemap.SymbolResource
			default:
				rows[y][x] = '.'
			}
		}
	}

	land := largestLandRegion(rows)
	if len(land) < cfg.Keeps {
		return "", false
	}
	keeps := spread(land, cfg.Keeps, rng)

	alliance := make([][]byte, cfg.Height)
	for y := range alliance {
		alliance[y] = []byte(strings.Repeat(".", cfg.Width))
	}
	for i, c := range keeps {
		sym := byte(tilemap.SymbolArcherKeep)
		if rng.Intn(2) == 1 {
			sym = tilemap.SymbolWarriorKeep
		}
		rows[c.Y][c.X] = sym
		if i < cfg.Alliances {
			alliance[c.Y][c.X] = byte('1' + i)
		}
	}

	text := render(rows) + "\n" + render(alliance)
	tm, seeds, err := tilemap.Parse(text)
	if err != nil {
		return "", false
	}
	cells := make([]geom.Cell, len(seeds))
	for i, sd := range seeds {
		cells[i] = sd.Cell
	}
	table := navigation.Build(tm, cells)
	if table.Len() != len(cells)*(len(cells)-1) {
		return "", false
	}
	return text, true
}

// largestLandRegion 返回最大四连通可通行区域的格子，按行优先排序。
func largestLandRegion(rows [][]byte) []geom.Cell {
	h, w := len(rows), len(rows[0])
	seen := make([]bool, w*h)
	var best []geom.Cell
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if seen[y*w+x] || !open(rows[y][x]) {
				continue
			}
			region := []geom.Cell{{X: x, Y: y}}
			seen[y*w+x] = true
			for i := 0; i < len(region); i++ {
				c := region[i]
				for _, d := range geom.Neighbors8[:4] {
					n := c.Step(d)
					if n.X < 0 || n.Y < 0 || n.X >= w || n.Y >= h || seen[n.Y*w+n.X] || !open(rows[n.Y][n.X]) {
						continue
					}
					seen[n.Y*w+n.X] = true
					region = append(region, n)
				}
			}
			if len(region) > len(best) {
				best = region
			}
		}
	}
	return best
}

func open(ch byte) bool {
	return ch == '.' || ch == tilemap.SymbolResource
}

// spread 用最远点采样从候选格里挑 n 个。
func spread(cands []geom.Cell, n int, rng *rand.Rand) []geom.Cell {
	picked := []geom.Cell{cands[rng.Intn(len(cands))]}
	nearest := make([]int, len(cands))
	for i, c := range cands {
		nearest[i] = dist2(c, picked[0])
	}
	for len(picked) < n {
		best := 0
		for i := range cands {
			if nearest[i] > nearest[best] {
				best = i
			}
		}
		next := cands[best]
		picked = append(picked, next)
		for i, c := range cands {
			nearest[i] = min(nearest[i], dist2(c, next))
		}
	}
	return picked
}

func dist2(a, b geom.Cell) int {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx + dy*dy
}

func render(rows [][]byte) string {
	var b strings.Builder
	for _, r := range rows {
		b.Write(r)
		b.WriteByte('\n')
	}
	return b.String()
}

func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0
	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}
	return total / maxVal
}
