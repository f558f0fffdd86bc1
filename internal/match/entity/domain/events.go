package domain

import "Strongholds/internal/match/entity/geom"

type EventKind string

const (
	EventSoldierPositions  EventKind = "soldier_positions"
	EventKeepOccupancy     EventKind = "keep_occupancy"
	EventProjectileFired   EventKind = "projectile_fired"
	EventKeepCaptured      EventKind = "keep_captured"
	EventResourceGrown     EventKind = "resource_grown"
	EventResourceHarvested EventKind = "resource_harvested"
	EventMatchOver         EventKind = "match_over"
)

// Event 是网络 tick 时向传输层输出的状态增量。
type Event interface {
	Kind() EventKind
}

type SoldierState struct {
	ID       uint64    `json:"id" msgpack:"id"`
	Alliance Alliance  `json:"alliance" msgpack:"alliance"`
	Type     TroopType `json:"type" msgpack:"type"`
	Pos      geom.Vec2 `json:"pos" msgpack:"pos"`
}

type SoldierPositions struct {
	Tick     uint64         `json:"tick" msgpack:"tick"`
	Soldiers []SoldierState `json:"soldiers" msgpack:"soldiers"`
}

func (SoldierPositions) Kind() EventKind { return EventSoldierPositions }

type KeepOccupancy struct {
	KeepID   KeepID   `json:"keep_id" msgpack:"keep_id"`
	Alliance Alliance `json:"alliance" msgpack:"alliance"`
	Archers  int      `json:"archers" msgpack:"archers"`
	Warriors int      `json:"warriors" msgpack:"warriors"`
}

func (KeepOccupancy) Kind() EventKind { return EventKeepOccupancy }

type ProjectileFired struct {
	ID        uint64    `json:"id" msgpack:"id"`
	KeepID    KeepID    `json:"keep_id" msgpack:"keep_id"`
	Born      float64   `json:"born" msgpack:"born"`
	Start     geom.Vec2 `json:"start" msgpack:"start"`
	Velocity  geom.Vec2 `json:"velocity" msgpack:"velocity"`
	VelocityZ float64   `json:"velocity_z" msgpack:"velocity_z"`
	Landing   geom.Vec2 `json:"landing" msgpack:"landing"`
	Duration  float64   `json:"duration" msgpack:"duration"`
}

func (ProjectileFired) Kind() EventKind { return EventProjectileFired }

type KeepCaptured struct {
	KeepID KeepID   `json:"keep_id" msgpack:"keep_id"`
	From   Alliance `json:"from" msgpack:"from"`
	To     Alliance `json:"to" msgpack:"to"`
}

func (KeepCaptured) Kind() EventKind { return EventKeepCaptured }

type ResourceGrown struct {
	Cell geom.Cell `json:"cell" msgpack:"cell"`
}

func (ResourceGrown) Kind() EventKind { return EventResourceGrown }

type ResourceHarvested struct {
	Cell     geom.Cell `json:"cell" msgpack:"cell"`
	KeepID   KeepID    `json:"keep_id" msgpack:"keep_id"`
	Alliance Alliance  `json:"alliance" msgpack:"alliance"`
}

func (ResourceHarvested) Kind() EventKind { return EventResourceHarvested }

type MatchOver struct {
	Tick   uint64   `json:"tick" msgpack:"tick"`
	Winner Alliance `json:"winner" msgpack:"winner"`
}

func (MatchOver) Kind() EventKind { return EventMatchOver }
