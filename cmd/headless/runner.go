package main

import (
	"math"
	"sort"

	"Strongholds/internal/match/clock"
	"Strongholds/internal/match/entity"
	"Strongholds/internal/match/entity/domain"
	"Strongholds/modules/kit/logx"
)

// runConfig 描述一局离线比赛。所有阵营由脚本控制，结果只取决于地图、规则和种子。
type runConfig struct {
	MapText      string
	Rules        domain.Rules
	Seed         int64
	TickRate     int
	NetworkEvery int
	MaxTicks     int
	// 脚本每隔多少秒为每个阵营决策一次
	DecideEvery float64
	Percent     float64
}

type runReport struct {
	Seed       int64
	Ticks      uint64
	Seconds    float64
	Over       bool
	Winner     domain.Alliance
	Orders     int
	Rejected   int
	Captures   int
	Shots      int
	Harvests   int
	KeepsOwned map[domain.Alliance]int
}

func runMatch(cfg runConfig, l logx.Logger) (runReport, error) {
	sim, err := entity.Load(cfg.MapText,
		entity.WithRules(cfg.Rules),
		entity.WithSeed(cfg.Seed),
		entity.WithLogger(l),
	)
	if err != nil {
		return runReport{}, err
	}

	rep := runReport{Seed: cfg.Seed, KeepsOwned: make(map[domain.Alliance]int)}
	c := clock.New(cfg.TickRate, cfg.NetworkEvery)
	decideTicks := uint64(math.Max(1, math.Round(cfg.DecideEvery*float64(c.TickRate))))

	c.OnTick = func(tick uint64, dt float64) {
		if tick%decideTicks == 1 || decideTicks == 1 {
			rep.Orders += decide(sim, cfg.Percent)
		}
		res := sim.Tick(dt)
		for _, r := range res.Results {
			if r.Err != nil {
				rep.Rejected++
			}
		}
	}
	c.OnNetwork = func(uint64) {
		for _, ev := range sim.Flush() {
			switch ev.(type) {
			case domain.KeepCaptured:
				rep.Captures++
			case domain.ProjectileFired:
				rep.Shots++
			case domain.ResourceHarvested:
				rep.Harvests++
			}
		}
	}

	for i := 0; i < cfg.MaxTicks; i++ {
		c.Step()
		if over, _ := sim.Over(); over {
			break
		}
	}
	// 最后一个 tick 不是网络 tick 时把剩余事件取干净
	c.OnNetwork(c.Ticks)

	rep.Ticks = sim.TickCount()
	rep.Seconds = sim.Now()
	rep.Over, rep.Winner = sim.Over()
	for _, k := range sim.Keeps() {
		rep.KeepsOwned[k.Alliance]++
	}
	return rep, nil
}

// decide 为每个阵营下达一次指令：兵力最多且空闲的城堡进攻最近的可达敌方城堡；
// 成熟的资源格交给其领土所属阵营收获。返回入队的派兵指令数。
func decide(sim *entity.Simulation, percent float64) int {
	keeps := sim.Keeps()
	best := make(map[domain.Alliance]*domain.Keep)
	for _, k := range keeps {
		if k.Alliance == domain.Neutral || len(k.Orders()) > 0 {
			continue
		}
		if cur, ok := best[k.Alliance]; !ok || k.Total() > cur.Total() {
			best[k.Alliance] = k
		}
	}

	alliances := make([]domain.Alliance, 0, len(best))
	for a := range best {
		alliances = append(alliances, a)
	}
	sort.Ints(alliances)

	orders := 0
	for _, a := range alliances {
		src := best[a]
		if src.Total() < 4 {
			continue
		}
		target, ok := nearestHostile(sim, src, keeps)
		if !ok {
			continue
		}
		sim.Enqueue(entity.IssueDeploymentOrder{
			Issuer:  a,
			Source:  src.ID,
			Target:  target,
			Percent: percent,
		})
		orders++
	}

	for _, r := range sim.Snapshot().Resources {
		if !r.Ripe {
			continue
		}
		owner, ok := sim.Territory().Owner(r.Cell)
		if !ok {
			continue
		}
		if k, ok := sim.Keep(owner); ok && k.Alliance != domain.Neutral {
			sim.Enqueue(entity.HarvestResource{Issuer: k.Alliance, Cell: r.Cell})
		}
	}
	return orders
}

func nearestHostile(sim *entity.Simulation, src *domain.Keep, keeps []*domain.Keep) (domain.KeepID, bool) {
	bestID, bestLen := 0, math.Inf(1)
	for _, k := range keeps {
		if k.Alliance == src.Alliance {
			continue
		}
		route, ok := sim.Paths().Path(src.ID, k.ID)
		if !ok {
			continue
		}
		if route.Length < bestLen {
			bestID, bestLen = k.ID, route.Length
		}
	}
	return bestID, !math.IsInf(bestLen, 1)
}
