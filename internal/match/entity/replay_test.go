package entity

import (
	"errors"
	"reflect"
	"testing"

	"Strongholds/internal/match/entity/domain"
)

const replayMap = "A........W\n..T.......\n..~~~.T...\n......T...\n....A.....\n" +
	"\n1........2\n..........\n..........\n..........\n....3.....\n"

func TestReplay_按指令记录重建比赛(t *testing.T) {
	rec := MatchRecord{MatchID: "m-1", Seed: 42, MapText: replayMap, TickRate: 10, Rules: domain.DefaultRules()}

	s := mustLoad(t, rec.MapText, WithSeed(rec.Seed), WithRules(rec.Rules))
	j := NewJournal()
	var captured []domain.KeepCaptured
	for i := 1; i <= 120; i++ {
		switch i {
		case 1:
			s.Enqueue(IssueDeploymentOrder{Issuer: 1, Source: 0, Target: 2, Percent: 0.8})
			s.Enqueue(IssueDeploymentOrder{Issuer: 3, Source: 2, Target: 1, Type: troop(domain.Archer), Percent: 0.5})
		case 40:
			s.Enqueue(IssueDeploymentOrder{Issuer: 2, Source: 1, Target: 0, Percent: 1})
			s.Enqueue(IssueDeploymentOrder{Issuer: 2, Source: 1, Target: 1, Percent: 1})
		}
		res := s.Tick(0.1)
		if err := j.RecordResults(res.Results); err != nil {
			t.Fatalf("RecordResults err=%v", err)
		}
		events := s.Flush()
		captured = append(captured, collect[domain.KeepCaptured](events)...)
		if err := j.RecordEvents(res.Tick, events); err != nil {
			t.Fatalf("RecordEvents err=%v", err)
		}
	}

	entries := j.Drain()
	if len(j.Drain()) != 0 {
		t.Fatalf("Drain 之后应为空")
	}
	var commands []ReplayEntry
	for i, e := range entries {
		if e.Seq != uint64(i+1) {
			t.Fatalf("记录序号应连续，got=%d want=%d", e.Seq, i+1)
		}
		if e.Kind == EntryCommand {
			commands = append(commands, e)
		}
	}
	if len(commands) != 4 {
		t.Fatalf("期望 4 条指令记录，got=%d", len(commands))
	}
	if commands[3].Tick != 40 || commands[3].Err == "" {
		t.Fatalf("同一城堡互派的指令应记录失败原因")
	}

	var replayed []domain.KeepCaptured
	r, err := Replay(rec, entries, 120, func(events []domain.Event) {
		replayed = append(replayed, collect[domain.KeepCaptured](events)...)
	})
	if err != nil {
		t.Fatalf("Replay err=%v", err)
	}
	if !reflect.DeepEqual(s.Snapshot(), r.Snapshot()) {
		t.Fatalf("重放后快照应与原局一致\n原局=%+v\n重放=%+v", s.Snapshot(), r.Snapshot())
	}
	if !reflect.DeepEqual(captured, replayed) {
		t.Fatalf("重放攻占事件不一致 原局=%v 重放=%v", captured, replayed)
	}
}

func TestJournal_只记录关键事件(t *testing.T) {
	j := NewJournal()
	err := j.RecordEvents(7, []domain.Event{
		domain.SoldierPositions{Tick: 7},
		domain.KeepOccupancy{KeepID: 1},
		domain.KeepCaptured{KeepID: 1, From: 2, To: 1},
		domain.MatchOver{Tick: 7, Winner: 1},
	})
	if err != nil {
		t.Fatalf("RecordEvents err=%v", err)
	}
	entries := j.Drain()
	if len(entries) != 2 {
		t.Fatalf("期望 2 条事件记录，got=%d", len(entries))
	}
	if entries[0].Name != string(domain.EventKeepCaptured) || entries[1].Name != string(domain.EventMatchOver) {
		t.Fatalf("事件名异常：%+v", entries)
	}
	if entries[0].Tick != 7 || entries[0].Kind != EntryEvent {
		t.Fatalf("记录字段异常：%+v", entries[0])
	}
}

func TestDecodeCommand(t *testing.T) {
	j := NewJournal()
	want := IssueDeploymentOrder{Issuer: 1, Source: 0, Target: 2, Type: troop(domain.Warrior), Percent: 0.3}
	if err := j.RecordResults([]CommandResult{{Seq: 1, Tick: 3, Command: want}}); err != nil {
		t.Fatalf("RecordResults err=%v", err)
	}
	e := j.Drain()[0]
	got, err := DecodeCommand(e.Name, e.Payload)
	if err != nil {
		t.Fatalf("DecodeCommand err=%v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("解码结果 got=%+v want=%+v", got, want)
	}

	if _, err := DecodeCommand("nope", nil); !errors.Is(err, domain.ErrUnknownCommand) {
		t.Fatalf("未知指令名应报错，got=%v", err)
	}
	if _, err := DecodeCommand(e.Name, []byte{0xc1}); !errors.Is(err, ErrReplayCorrupt) {
		t.Fatalf("损坏的负载应报错，got=%v", err)
	}
}
