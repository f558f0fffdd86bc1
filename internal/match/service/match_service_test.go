package service

import (
	"context"
	"errors"
	"testing"

	"Strongholds/internal/match/entity"
	"Strongholds/internal/match/entity/domain"
	"Strongholds/internal/match/infra/persistence/memory"
	"Strongholds/modules/kit/errx"
)

func TestMatchService_观战与非法兵种(t *testing.T) {
	s := NewMatchService(nil, memory.NewReplayRepository(), nil)
	ctx := context.Background()

	if _, err := s.Order(ctx, Player{MatchID: "m", Alliance: 0}, OrderRequest{Percent: 1}); !errors.Is(err, ErrSpectator) {
		t.Fatalf("观战连接不能派兵，got=%v", err)
	}
	if _, err := s.Harvest(ctx, Player{MatchID: "m", Alliance: 0}, HarvestRequest{}); !errors.Is(err, ErrSpectator) {
		t.Fatalf("观战连接不能收获，got=%v", err)
	}
	if _, err := s.Order(ctx, Player{MatchID: "m", Alliance: 1}, OrderRequest{Type: "cavalry", Percent: 1}); !errors.Is(err, domain.ErrInvalidTroopType) {
		t.Fatalf("未知兵种应被拒绝，got=%v", err)
	}
}

func TestMatchService_Replay(t *testing.T) {
	repo := memory.NewReplayRepository()
	ctx := context.Background()
	rec := entity.MatchRecord{MatchID: "m-1", Seed: 3, MapText: "W..W\n\n1..2\n", TickRate: 10, Rules: domain.DefaultRules()}

	sim, err := entity.Load(rec.MapText, entity.WithSeed(rec.Seed), entity.WithRules(rec.Rules))
	if err != nil {
		t.Fatalf("Load err=%v", err)
	}
	j := entity.NewJournal()
	sim.Enqueue(entity.IssueDeploymentOrder{Issuer: 1, Source: 0, Target: 1, Percent: 0.5})
	for i := 0; i < 30; i++ {
		res := sim.Tick(0.1)
		_ = j.RecordResults(res.Results)
		_ = j.RecordEvents(res.Tick, sim.Flush())
	}
	_ = repo.SaveMatch(ctx, &rec)
	_ = repo.AppendEntries(ctx, &entity.ReplayBatch{MatchID: "m-1", Entries: j.Drain()})

	s := NewMatchService(nil, repo, nil)
	snap, err := s.Replay(ctx, "m-1", 30)
	if err != nil {
		t.Fatalf("Replay err=%v", err)
	}
	want := sim.Snapshot()
	if snap.Tick != 30 || snap.Territory != want.Territory || snap.Soldiers != want.Soldiers {
		t.Fatalf("回放快照与原局不一致 got=%+v want=%+v", snap, want)
	}
	for i := range want.Keeps {
		if snap.Keeps[i].Archers != want.Keeps[i].Archers || snap.Keeps[i].Warriors != want.Keeps[i].Warriors {
			t.Fatalf("城堡 %d 守军不一致", i)
		}
	}

	if _, err := s.Replay(ctx, "missing", 0); !errors.Is(err, entity.ErrMatchNotFound) {
		t.Fatalf("不存在的比赛应返回 ErrMatchNotFound，got=%v", err)
	}
}

type brokenRepo struct {
	*memory.ReplayRepository
}

func (brokenRepo) LoadEntries(context.Context, string) ([]entity.ReplayEntry, error) {
	return nil, errors.New("database is locked")
}

func TestMatchService_Replay存储失败(t *testing.T) {
	ctx := context.Background()
	repo := brokenRepo{memory.NewReplayRepository()}
	_ = repo.SaveMatch(ctx, &entity.MatchRecord{MatchID: "m-2", MapText: "W..W\n\n1..2\n", TickRate: 10})

	_, err := NewMatchService(nil, repo, nil).Replay(ctx, "m-2", 0)
	if !errors.Is(err, errx.ErrReplayUnavailable) {
		t.Fatalf("存储失败应归为 ErrReplayUnavailable，got=%v", err)
	}
	var e *errx.Error
	if !errors.As(err, &e) || e.Reason() != "load_entries" || e.Data()["match_id"] != "m-2" {
		t.Fatalf("错误上下文缺失：%v", err)
	}
}
