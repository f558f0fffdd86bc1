package sqlite

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"Strongholds/internal/match/entity"
	"Strongholds/internal/match/entity/domain"
	sqliteinfra "Strongholds/internal/shared/infrastructure/sqlite"
)

func newTestRepo(t *testing.T) *ReplayRepository {
	t.Helper()
	db, err := sqliteinfra.Open(":memory:", nil)
	if err != nil {
		t.Fatalf("Open err=%v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	repo, err := NewReplayRepository(db)
	if err != nil {
		t.Fatalf("NewReplayRepository err=%v", err)
	}
	return repo
}

func TestReplayRepository_比赛记录读写(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	rules := domain.DefaultRules()
	rules.WaveJitter = 0
	rec := &entity.MatchRecord{
		MatchID:   "m-1",
		Seed:      42,
		MapText:   "A..W\n\n1..2\n",
		TickRate:  30,
		Rules:     rules,
		CreatedAt: time.UnixMilli(1760000000000),
	}
	if err := repo.SaveMatch(ctx, rec); err != nil {
		t.Fatalf("SaveMatch err=%v", err)
	}
	// 重复保存覆盖旧记录
	if err := repo.SaveMatch(ctx, rec); err != nil {
		t.Fatalf("重复 SaveMatch err=%v", err)
	}

	got, err := repo.LoadMatch(ctx, "m-1")
	if err != nil {
		t.Fatalf("LoadMatch err=%v", err)
	}
	if got.Seed != 42 || got.MapText != rec.MapText || got.TickRate != 30 || got.Rules != rules {
		t.Fatalf("读回的记录不一致：%+v", got)
	}
	if !got.CreatedAt.Equal(rec.CreatedAt) {
		t.Fatalf("CreatedAt got=%v want=%v", got.CreatedAt, rec.CreatedAt)
	}

	if _, err := repo.LoadMatch(ctx, "missing"); !errors.Is(err, entity.ErrMatchNotFound) {
		t.Fatalf("不存在的比赛应返回 ErrMatchNotFound，got=%v", err)
	}
}

func TestReplayRepository_追加记录幂等且有序(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := &entity.ReplayBatch{Version: 1, MatchID: "m-1", Entries: []entity.ReplayEntry{
		{Seq: 2, Tick: 1, Kind: entity.EntryCommand, Name: "harvest_resource", Payload: []byte{0x80}, Err: "资源尚未成熟"},
		{Seq: 1, Tick: 1, Kind: entity.EntryCommand, Name: "issue_deployment_order", Payload: []byte{0x80}},
	}}
	if err := repo.AppendEntries(ctx, first); err != nil {
		t.Fatalf("AppendEntries err=%v", err)
	}
	// 重试时同一序号的记录不会覆盖也不会重复
	retry := &entity.ReplayBatch{Version: 2, MatchID: "m-1", Entries: []entity.ReplayEntry{
		{Seq: 2, Tick: 9, Kind: entity.EntryEvent, Name: "dup", Payload: []byte{0x80}},
		{Seq: 3, Tick: 5, Kind: entity.EntryEvent, Name: "keep_captured", Payload: []byte{0x80}},
	}}
	if err := repo.AppendEntries(ctx, retry); err != nil {
		t.Fatalf("AppendEntries err=%v", err)
	}
	if err := repo.AppendEntries(ctx, &entity.ReplayBatch{MatchID: "m-2", Entries: []entity.ReplayEntry{
		{Seq: 1, Tick: 1, Kind: entity.EntryEvent, Name: "other", Payload: []byte{0x80}},
	}}); err != nil {
		t.Fatalf("AppendEntries err=%v", err)
	}

	got, err := repo.LoadEntries(ctx, "m-1")
	if err != nil {
		t.Fatalf("LoadEntries err=%v", err)
	}
	want := []entity.ReplayEntry{
		{Seq: 1, Tick: 1, Kind: entity.EntryCommand, Name: "issue_deployment_order", Payload: []byte{0x80}},
		{Seq: 2, Tick: 1, Kind: entity.EntryCommand, Name: "harvest_resource", Payload: []byte{0x80}, Err: "资源尚未成熟"},
		{Seq: 3, Tick: 5, Kind: entity.EntryEvent, Name: "keep_captured", Payload: []byte{0x80}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("LoadEntries got=%+v want=%+v", got, want)
	}
}
