package entity

import (
	"slices"

	"Strongholds/internal/match/entity/domain"
	"Strongholds/internal/match/entity/geom"
	"Strongholds/internal/match/entity/spatial"
)

type Kind uint8

const (
	KindKeep Kind = iota + 1
	KindSoldier
	KindProjectile
)

func (k Kind) String() string {
	switch k {
	case KindKeep:
		return "keep"
	case KindSoldier:
		return "soldier"
	case KindProjectile:
		return "projectile"
	default:
		return "unknown"
	}
}

// Entity 是场上所有对象的统一句柄，按 Kind 只有一个变体字段非空。
type Entity struct {
	ID         spatial.ID
	Kind       Kind
	Keep       *domain.Keep
	Soldier    *domain.Soldier
	Projectile *domain.Projectile
}

func (e *Entity) Alliance() domain.Alliance {
	switch e.Kind {
	case KindKeep:
		return e.Keep.Alliance
	case KindSoldier:
		return e.Soldier.Alliance
	case KindProjectile:
		return e.Projectile.Alliance
	}
	return domain.Neutral
}

func (e *Entity) Pos() geom.Vec2 {
	switch e.Kind {
	case KindKeep:
		return e.Keep.Pos
	case KindSoldier:
		return e.Soldier.Pos
	case KindProjectile:
		return e.Projectile.Start
	}
	return geom.Vec2{}
}

// arena 持有全部实体。id 单调递增且不复用，soldiers/projectiles 因此天然按 id 升序。
type arena struct {
	nextID      spatial.ID
	byID        map[spatial.ID]*Entity
	keeps       []*domain.Keep
	keepIDs     []spatial.ID
	soldiers    []spatial.ID
	projectiles []spatial.ID
}

func newArena() arena {
	return arena{byID: make(map[spatial.ID]*Entity)}
}

func (a *arena) alloc() spatial.ID {
	a.nextID++
	return a.nextID
}

func (a *arena) get(id spatial.ID) *Entity {
	return a.byID[id]
}

func (a *arena) addKeep(k *domain.Keep) spatial.ID {
	id := a.alloc()
	a.byID[id] = &Entity{ID: id, Kind: KindKeep, Keep: k}
	a.keeps = append(a.keeps, k)
	a.keepIDs = append(a.keepIDs, id)
	return id
}

func (a *arena) addSoldier(s *domain.Soldier) {
	a.byID[s.ID] = &Entity{ID: s.ID, Kind: KindSoldier, Soldier: s}
	a.soldiers = append(a.soldiers, s.ID)
}

func (a *arena) addProjectile(p *domain.Projectile) {
	a.byID[p.ID] = &Entity{ID: p.ID, Kind: KindProjectile, Projectile: p}
	a.projectiles = append(a.projectiles, p.ID)
}

func (a *arena) remove(id spatial.ID) *Entity {
	e, ok := a.byID[id]
	if !ok {
		return nil
	}
	delete(a.byID, id)
	switch e.Kind {
	case KindSoldier:
		a.soldiers = deleteSorted(a.soldiers, id)
	case KindProjectile:
		a.projectiles = deleteSorted(a.projectiles, id)
	}
	return e
}

// soldierIDs 返回副本，调用方可以边遍历边删除。
func (a *arena) soldierIDs() []spatial.ID {
	return slices.Clone(a.soldiers)
}

func (a *arena) projectileIDs() []spatial.ID {
	return slices.Clone(a.projectiles)
}

func deleteSorted(ids []spatial.ID, id spatial.ID) []spatial.ID {
	if i, found := slices.BinarySearch(ids, id); found {
		return slices.Delete(ids, i, i+1)
	}
	return ids
}
