package actors

import (
	"time"

	"Strongholds/internal/match/app/port"
	"Strongholds/internal/match/dc"
	"Strongholds/internal/match/entity"
	"Strongholds/internal/shared/actor/messages"
	"Strongholds/internal/shared/transport"
	"Strongholds/modules/kit/logx"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

// ManagerActor 按比赛 id 持有比赛 actor，并把请求转发过去。
type ManagerActor struct {
	repo        port.ReplayRepository
	setup       SetupFunc
	flushEvery  time.Duration
	log         logx.Logger
	matchActors map[string]*actor.PID
}

func NewManagerActor(repo port.ReplayRepository, setup SetupFunc, flushEvery time.Duration, l logx.Logger) *ManagerActor {
	if l == nil {
		l = logx.NewZapLogger(nil)
	}
	return &ManagerActor{
		repo:        repo,
		setup:       setup,
		flushEvery:  flushEvery,
		log:         l,
		matchActors: make(map[string]*actor.PID),
	}
}

func (m *ManagerActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Terminated:
		for id, pid := range m.matchActors {
			if pid.Equal(msg.Who) {
				delete(m.matchActors, id)
				m.log.Info("match actor terminated", zap.String("match_id", id))
			}
		}
	case messages.HMCreateMatch:
		if _, err := m.getOrSpawn(ctx, msg.MatchID()); err != nil {
			ctx.Respond(fail(transport.InvalidParam, "create match failed", err))
			return
		}
		ctx.Respond(messages.MHCreateMatch{MatchID: msg.MatchID()})
	case messages.MatchMessage:
		pid, ok := m.matchActors[msg.MatchID()]
		if !ok {
			ctx.Respond(fail(transport.NotFound, "match not found", nil))
			return
		}
		ctx.Forward(pid)
	}
}

func (m *ManagerActor) getOrSpawn(ctx actor.Context, matchID string) (*actor.PID, error) {
	if pid, ok := m.matchActors[matchID]; ok && pid != nil {
		return pid, nil
	}
	if m.setup == nil {
		return nil, entity.ErrMatchNotFound.WithData("match_id", matchID)
	}
	setup, err := m.setup(matchID)
	if err != nil {
		return nil, err
	}
	setup.Record.MatchID = matchID

	// 地图和规则在 spawn 之前校验，失败直接返回给调用方
	l := m.log
	sim, err := entity.Load(setup.Record.MapText,
		entity.WithRules(setup.Record.Rules),
		entity.WithSeed(setup.Record.Seed),
		entity.WithLogger(l),
	)
	if err != nil {
		return nil, err
	}

	props := actor.PropsFromProducer(func() actor.Actor {
		return NewMatchActor(setup, sim, dc.NewMatchDC(m.repo, matchID, m.flushEvery, l), l)
	})
	pid := ctx.Spawn(props)
	m.matchActors[matchID] = pid
	m.log.Info("match actor spawned", zap.String("match_id", matchID), zap.Int64("seed", setup.Record.Seed))
	return pid, nil
}
