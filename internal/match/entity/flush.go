package entity

import (
	"Strongholds/internal/match/entity/domain"
	"Strongholds/internal/match/entity/geom"
)

// Flush 在网络 tick 调用，按固定顺序取出自上次 Flush 以来的事件：
// 全部士兵位置，守军有变化的城堡（按 id），其余事件按产生顺序。
func (s *Simulation) Flush() []domain.Event {
	states := make([]domain.SoldierState, 0, len(s.arena.soldiers))
	for _, id := range s.arena.soldiers {
		sol := s.arena.get(id).Soldier
		states = append(states, domain.SoldierState{
			ID:       id,
			Alliance: sol.Alliance,
			Type:     sol.Type,
			Pos:      sol.Pos,
		})
	}

	events := make([]domain.Event, 0, 1+len(s.outbox))
	events = append(events, domain.SoldierPositions{Tick: s.tick, Soldiers: states})
	for _, k := range s.arena.keeps {
		if !k.TakeOccupancyDelta() {
			continue
		}
		events = append(events, domain.KeepOccupancy{
			KeepID:   k.ID,
			Alliance: k.Alliance,
			Archers:  k.Garrison(domain.Archer),
			Warriors: k.Garrison(domain.Warrior),
		})
	}
	events = append(events, s.outbox...)
	s.outbox = nil
	return events
}

type OrderView struct {
	Target   domain.KeepID `json:"target" msgpack:"target"`
	Archers  int           `json:"archers" msgpack:"archers"`
	Warriors int           `json:"warriors" msgpack:"warriors"`
	Cooldown float64       `json:"cooldown" msgpack:"cooldown"`
}

type KeepView struct {
	ID            domain.KeepID   `json:"id" msgpack:"id"`
	Cell          geom.Cell       `json:"cell" msgpack:"cell"`
	Alliance      domain.Alliance `json:"alliance" msgpack:"alliance"`
	Native        string          `json:"native" msgpack:"native"`
	Archers       int             `json:"archers" msgpack:"archers"`
	Warriors      int             `json:"warriors" msgpack:"warriors"`
	PowerOverflow float64         `json:"power_overflow" msgpack:"power_overflow"`
	Orders        []OrderView     `json:"orders,omitempty" msgpack:"orders,omitempty"`
}

type ResourceView struct {
	Cell geom.Cell `json:"cell" msgpack:"cell"`
	Ripe bool      `json:"ripe" msgpack:"ripe"`
}

// Snapshot 是某一 tick 的完整只读视图，用于新连接的初始同步、HTTP 查询和回放检查点。
type Snapshot struct {
	Tick        uint64          `json:"tick" msgpack:"tick"`
	Now         float64         `json:"now" msgpack:"now"`
	Seed        int64           `json:"seed" msgpack:"seed"`
	Width       int             `json:"width" msgpack:"width"`
	Height      int             `json:"height" msgpack:"height"`
	Territory   string          `json:"territory" msgpack:"territory"`
	Keeps       []KeepView      `json:"keeps" msgpack:"keeps"`
	Soldiers    int             `json:"soldiers" msgpack:"soldiers"`
	Projectiles int             `json:"projectiles" msgpack:"projectiles"`
	Resources   []ResourceView  `json:"resources,omitempty" msgpack:"resources,omitempty"`
	Over        bool            `json:"over" msgpack:"over"`
	Winner      domain.Alliance `json:"winner" msgpack:"winner"`
}

func (s *Simulation) Snapshot() Snapshot {
	keeps := make([]KeepView, 0, len(s.arena.keeps))
	for _, k := range s.arena.keeps {
		kv := KeepView{
			ID:            k.ID,
			Cell:          k.Cell,
			Alliance:      k.Alliance,
			Native:        k.Native.String(),
			Archers:       k.Garrison(domain.Archer),
			Warriors:      k.Garrison(domain.Warrior),
			PowerOverflow: k.PowerOverflow(),
		}
		for _, o := range k.Orders() {
			kv.Orders = append(kv.Orders, OrderView{
				Target:   o.Target,
				Archers:  o.Remaining(domain.Archer),
				Warriors: o.Remaining(domain.Warrior),
				Cooldown: o.Cooldown(),
			})
		}
		keeps = append(keeps, kv)
	}

	resources := make([]ResourceView, 0, len(s.resources))
	for _, r := range s.resources {
		resources = append(resources, ResourceView{Cell: r.cell, Ripe: r.ripe})
	}

	return Snapshot{
		Tick:        s.tick,
		Now:         s.now,
		Seed:        s.seed,
		Width:       s.tm.Width(),
		Height:      s.tm.Height(),
		Territory:   s.owners.String(),
		Keeps:       keeps,
		Soldiers:    len(s.arena.soldiers),
		Projectiles: len(s.arena.projectiles),
		Resources:   resources,
		Over:        s.over,
		Winner:      s.winner,
	}
}
