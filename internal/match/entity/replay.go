package entity

import (
	"time"

	"Strongholds/internal/match/entity/domain"
	"Strongholds/modules/kit/errx"

	"github.com/vmihailenco/msgpack/v5"
)

var (
	ErrReplayCorrupt = errx.NewSys("REPLAY_CORRUPT", "回放记录损坏")
	ErrMatchNotFound = errx.NewBiz("REPLAY_MATCH_NOT_FOUND", "比赛记录不存在")
)

type EntryKind string

const (
	EntryCommand EntryKind = "command"
	EntryEvent   EntryKind = "event"
)

// MatchRecord 描述一局比赛的初始条件。地图文本、种子、规则和 tick 频率足以重放整局。
type MatchRecord struct {
	MatchID   string       `json:"match_id" msgpack:"match_id"`
	Seed      int64        `json:"seed" msgpack:"seed"`
	MapText   string       `json:"map_text" msgpack:"map_text"`
	TickRate  int          `json:"tick_rate" msgpack:"tick_rate"`
	Rules     domain.Rules `json:"rules" msgpack:"rules"`
	CreatedAt time.Time    `json:"created_at" msgpack:"created_at"`
}

// ReplayEntry 是回放日志中的一条记录，Payload 为 msgpack 编码的指令或事件。
type ReplayEntry struct {
	Seq     uint64    `json:"seq" msgpack:"seq"`
	Tick    uint64    `json:"tick" msgpack:"tick"`
	Kind    EntryKind `json:"kind" msgpack:"kind"`
	Name    string    `json:"name" msgpack:"name"`
	Payload []byte    `json:"payload" msgpack:"payload"`
	Err     string    `json:"err,omitempty" msgpack:"err,omitempty"`
}

// ReplayBatch 是一次落库的记录集合，Version 单调递增。
type ReplayBatch struct {
	Version uint64
	MatchID string
	Entries []ReplayEntry
}

// Journal 把指令结果和关键事件编号成回放记录。
type Journal struct {
	seq     uint64
	entries []ReplayEntry
}

func NewJournal() *Journal {
	return &Journal{}
}

func (j *Journal) RecordResults(results []CommandResult) error {
	for _, r := range results {
		payload, err := msgpack.Marshal(r.Command)
		if err != nil {
			return errx.ErrInternal.WithCause(err).WithData("command", r.Command.CommandName())
		}
		e := ReplayEntry{Tick: r.Tick, Kind: EntryCommand, Name: r.Command.CommandName(), Payload: payload}
		if r.Err != nil {
			e.Err = r.Err.Error()
		}
		j.append(e)
	}
	return nil
}

// RecordEvents 只记录改变比赛走向的事件，位置和守军增量可以从指令重放得到。
func (j *Journal) RecordEvents(tick uint64, events []domain.Event) error {
	for _, ev := range events {
		switch ev.(type) {
		case domain.KeepCaptured, domain.ResourceHarvested, domain.MatchOver:
		default:
			continue
		}
		payload, err := msgpack.Marshal(ev)
		if err != nil {
			return errx.ErrInternal.WithCause(err).WithData("event", string(ev.Kind()))
		}
		j.append(ReplayEntry{Tick: tick, Kind: EntryEvent, Name: string(ev.Kind()), Payload: payload})
	}
	return nil
}

func (j *Journal) append(e ReplayEntry) {
	j.seq++
	e.Seq = j.seq
	j.entries = append(j.entries, e)
}

// Drain 取出尚未落库的记录。
func (j *Journal) Drain() []ReplayEntry {
	out := j.entries
	j.entries = nil
	return out
}

func DecodeCommand(name string, payload []byte) (Command, error) {
	var (
		cmd Command
		err error
	)
	switch name {
	case IssueDeploymentOrder{}.CommandName():
		var c IssueDeploymentOrder
		err = msgpack.Unmarshal(payload, &c)
		cmd = c
	case HarvestResource{}.CommandName():
		var c HarvestResource
		err = msgpack.Unmarshal(payload, &c)
		cmd = c
	case ResetAlliance{}.CommandName():
		var c ResetAlliance
		err = msgpack.Unmarshal(payload, &c)
		cmd = c
	default:
		return nil, domain.ErrUnknownCommand.WithData("command", name)
	}
	if err != nil {
		return nil, ErrReplayCorrupt.WithCause(err).WithData("command", name)
	}
	return cmd, nil
}

// Replay 从初始条件和指令记录重建比赛，推进到 untilTick 为止（0 表示最后一条记录所在 tick）。
// 指令在记录的 tick 之前入队，保证与原局在同一 tick 被执行。
// observe 非空时每个 tick 收到一次 Flush 的结果。
func Replay(rec MatchRecord, entries []ReplayEntry, untilTick uint64, observe func([]domain.Event), opts ...Option) (*Simulation, error) {
	tickRate := rec.TickRate
	if tickRate <= 0 {
		tickRate = 30
	}
	opts = append([]Option{WithRules(rec.Rules), WithSeed(rec.Seed)}, opts...)
	s, err := Load(rec.MapText, opts...)
	if err != nil {
		return nil, err
	}

	byTick := make(map[uint64][]Command)
	var last uint64
	for _, e := range entries {
		last = max(last, e.Tick)
		if e.Kind != EntryCommand {
			continue
		}
		cmd, err := DecodeCommand(e.Name, e.Payload)
		if err != nil {
			return nil, err
		}
		byTick[e.Tick] = append(byTick[e.Tick], cmd)
	}
	if untilTick == 0 {
		untilTick = last
	}

	dt := 1 / float64(tickRate)
	for s.TickCount() < untilTick {
		for _, cmd := range byTick[s.TickCount()+1] {
			s.Enqueue(cmd)
		}
		s.Tick(dt)
		events := s.Flush()
		if observe != nil {
			observe(events)
		}
	}
	return s, nil
}
