package actors

import (
	"Strongholds/internal/match/entity"
	"Strongholds/internal/match/entity/domain"
	"Strongholds/internal/shared/actor/messages"
	"Strongholds/internal/shared/transport"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

type MatchHandler struct{}

var MH = &MatchHandler{}

func (h *MatchHandler) HandleJoin(ctx actor.Context, p *MatchActor, req messages.HMJoin) {
	if req.Conn == nil {
		ctx.Respond(fail(transport.InvalidParam, "conn is nil", nil))
		return
	}
	if req.Alliance != domain.Neutral && !p.hasAlliance(req.Alliance) {
		ctx.Respond(fail(transport.InvalidParam, "alliance not in match", domain.ErrInvalidAlliance.WithData("alliance", req.Alliance)))
		return
	}
	p.subscribers[req.Conn.ID()] = &subscriber{conn: req.Conn, playerID: req.PlayerID, alliance: req.Alliance}
	p.log.Info("player joined",
		zap.String("conn_id", req.Conn.ID()),
		zap.Int64("player_id", req.PlayerID),
		zap.Int("alliance", req.Alliance),
	)
	ctx.Respond(messages.MHJoin{Alliance: req.Alliance, Snapshot: p.sim.Snapshot()})
}

// HandleLeave 移除订阅；阵营的最后一个连接离开时重置该阵营。
func (h *MatchHandler) HandleLeave(ctx actor.Context, p *MatchActor, req messages.HMLeave) {
	s, ok := p.subscribers[req.ConnID]
	if ok {
		delete(p.subscribers, req.ConnID)
		over, _ := p.sim.Over()
		if s.alliance != domain.Neutral && !over && !p.allianceConnected(s.alliance) {
			seq := p.sim.Enqueue(entity.ResetAlliance{Alliance: s.alliance})
			p.log.Info("alliance reset on leave",
				zap.Int("alliance", s.alliance),
				zap.Uint64("seq", seq),
			)
		}
	}
	if ctx.Sender() != nil {
		ctx.Respond(messages.MHStatus{MatchID: p.MatchID(), Subscribers: len(p.subscribers)})
	}
}

func (h *MatchHandler) HandleCommand(ctx actor.Context, p *MatchActor, req messages.HMCommand) {
	if req.Command == nil {
		ctx.Respond(fail(transport.InvalidParam, "command is nil", nil))
		return
	}
	if over, _ := p.sim.Over(); over {
		ctx.Respond(fail(transport.MatchOver, "match is over", domain.ErrMatchOver))
		return
	}
	seq := p.sim.Enqueue(req.Command)
	if req.ConnID != "" {
		p.issuers[seq] = req.ConnID
	}
	ctx.Respond(messages.MHCommand{Seq: seq})
}

func (h *MatchHandler) HandleSnapshot(ctx actor.Context, p *MatchActor, _ messages.HMSnapshot) {
	ctx.Respond(messages.MHSnapshot{Snapshot: p.sim.Snapshot()})
}

func (h *MatchHandler) HandleStatus(ctx actor.Context, p *MatchActor, _ messages.HMStatus) {
	ctx.Respond(p.status())
}

func (h *MatchHandler) HandleSetSpeed(ctx actor.Context, p *MatchActor, req messages.HMSetSpeed) {
	if req.Speed < 0 {
		ctx.Respond(fail(transport.InvalidParam, "speed must not be negative", nil))
		return
	}
	p.SetSpeed(ctx, req.Speed)
	ctx.Respond(p.status())
}
