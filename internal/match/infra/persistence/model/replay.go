package model

import (
	"time"

	"Strongholds/internal/match/entity"
	"Strongholds/internal/match/entity/domain"

	"github.com/vmihailenco/msgpack/v5"
)

// MatchRow 对应 matches 表和 match 集合，规则以 msgpack 存为二进制。
type MatchRow struct {
	MatchID   string `db:"match_id" bson:"_id"`
	Seed      int64  `db:"seed" bson:"seed"`
	MapText   string `db:"map_text" bson:"map_text"`
	TickRate  int    `db:"tick_rate" bson:"tick_rate"`
	Rules     []byte `db:"rules" bson:"rules"`
	CreatedAt int64  `db:"created_at" bson:"created_at"` // unix 毫秒
}

// EntryRow 对应 replay_entries 表和 replay_entry 集合，(match_id, seq) 唯一。
type EntryRow struct {
	MatchID string `db:"match_id" bson:"match_id"`
	Seq     int64  `db:"seq" bson:"seq"`
	Tick    int64  `db:"tick" bson:"tick"`
	Kind    string `db:"kind" bson:"kind"`
	Name    string `db:"name" bson:"name"`
	Payload []byte `db:"payload" bson:"payload"`
	Err     string `db:"err" bson:"err"`
}

func MatchToRow(rec *entity.MatchRecord) (MatchRow, error) {
	rules, err := msgpack.Marshal(rec.Rules)
	if err != nil {
		return MatchRow{}, err
	}
	return MatchRow{
		MatchID:   rec.MatchID,
		Seed:      rec.Seed,
		MapText:   rec.MapText,
		TickRate:  rec.TickRate,
		Rules:     rules,
		CreatedAt: rec.CreatedAt.UnixMilli(),
	}, nil
}

func RowToMatch(row MatchRow) (*entity.MatchRecord, error) {
	var rules domain.Rules
	if err := msgpack.Unmarshal(row.Rules, &rules); err != nil {
		return nil, entity.ErrReplayCorrupt.WithCause(err).WithData("match_id", row.MatchID)
	}
	return &entity.MatchRecord{
		MatchID:   row.MatchID,
		Seed:      row.Seed,
		MapText:   row.MapText,
		TickRate:  row.TickRate,
		Rules:     rules,
		CreatedAt: time.UnixMilli(row.CreatedAt),
	}, nil
}

func EntryToRow(matchID string, e entity.ReplayEntry) EntryRow {
	return EntryRow{
		MatchID: matchID,
		Seq:     int64(e.Seq),
		Tick:    int64(e.Tick),
		Kind:    string(e.Kind),
		Name:    e.Name,
		Payload: e.Payload,
		Err:     e.Err,
	}
}

func RowToEntry(row EntryRow) entity.ReplayEntry {
	return entity.ReplayEntry{
		Seq:     uint64(row.Seq),
		Tick:    uint64(row.Tick),
		Kind:    entity.EntryKind(row.Kind),
		Name:    row.Name,
		Payload: row.Payload,
		Err:     row.Err,
	}
}
