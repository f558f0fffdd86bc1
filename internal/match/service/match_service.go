package service

import (
	"context"

	"Strongholds/internal/match/actor"
	"Strongholds/internal/match/app/port"
	"Strongholds/internal/match/entity"
	"Strongholds/internal/match/entity/domain"
	"Strongholds/internal/match/entity/geom"
	"Strongholds/internal/shared/actor/messages"
	"Strongholds/internal/shared/utils"
	"Strongholds/modules/kit/errx"
	"Strongholds/modules/kit/logx"
)

// OrderRequest 是客户端的派兵请求，Type 为空表示两种兵种都派。
type OrderRequest struct {
	Source  int     `json:"source"`
	Target  int     `json:"target"`
	Type    string  `json:"type"`
	Percent float64 `json:"percent"`
}

type HarvestRequest struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Player 是已加入比赛的连接身份，由 join 写入连接属性。
type Player struct {
	MatchID  string
	ConnID   string
	PlayerID int64
	Alliance int
}

var ErrSpectator = errx.NewBiz("MATCH_SPECTATOR", "观战连接不能发送指令")

type MatchService struct {
	rt   *actor.Runtime
	repo port.ReplayRepository
	log  logx.Logger
}

func NewMatchService(rt *actor.Runtime, repo port.ReplayRepository, l logx.Logger) *MatchService {
	if l == nil {
		l = logx.NewZapLogger(nil)
	}
	return &MatchService{rt: rt, repo: repo, log: l}
}

// CreateMatch 创建比赛，matchID 为空时分配雪花 id。
func (s *MatchService) CreateMatch(ctx context.Context, matchID string) (string, error) {
	if matchID == "" {
		id, err := utils.NewMatchID()
		if err != nil {
			return "", errx.ErrInternal.WithCause(err)
		}
		matchID = id
	}
	return s.rt.CreateMatch(ctx, matchID)
}

func (s *MatchService) Join(ctx context.Context, p Player, conn messages.Subscriber) (messages.MHJoin, error) {
	return s.rt.Join(ctx, p.MatchID, p.PlayerID, p.Alliance, conn)
}

func (s *MatchService) Leave(p Player) {
	s.rt.Leave(p.MatchID, p.ConnID)
}

// Order 把请求转换为以玩家阵营为发令方的指令。
func (s *MatchService) Order(ctx context.Context, p Player, req OrderRequest) (uint64, error) {
	if p.Alliance == domain.Neutral {
		return 0, ErrSpectator
	}
	tt, err := domain.ParseTroopType(req.Type)
	if err != nil {
		return 0, err
	}
	return s.rt.Command(ctx, p.MatchID, p.ConnID, entity.IssueDeploymentOrder{
		Issuer:  p.Alliance,
		Source:  req.Source,
		Target:  req.Target,
		Type:    tt,
		Percent: req.Percent,
	})
}

func (s *MatchService) Harvest(ctx context.Context, p Player, req HarvestRequest) (uint64, error) {
	if p.Alliance == domain.Neutral {
		return 0, ErrSpectator
	}
	return s.rt.Command(ctx, p.MatchID, p.ConnID, entity.HarvestResource{
		Issuer: p.Alliance,
		Cell:   geom.Cell{X: req.X, Y: req.Y},
	})
}

func (s *MatchService) Snapshot(ctx context.Context, matchID string) (entity.Snapshot, error) {
	return s.rt.Snapshot(ctx, matchID)
}

func (s *MatchService) Status(ctx context.Context, matchID string) (messages.MHStatus, error) {
	return s.rt.Status(ctx, matchID)
}

func (s *MatchService) SetSpeed(ctx context.Context, matchID string, speed float64) (messages.MHStatus, error) {
	return s.rt.SetSpeed(ctx, matchID, speed)
}

// Replay 从回放仓库重建比赛到 untilTick（0 表示最后一条记录）并返回快照。
func (s *MatchService) Replay(ctx context.Context, matchID string, untilTick uint64) (entity.Snapshot, error) {
	rec, err := s.repo.LoadMatch(ctx, matchID)
	if err != nil {
		return entity.Snapshot{}, replayErr(err, "load_match", matchID)
	}
	entries, err := s.repo.LoadEntries(ctx, matchID)
	if err != nil {
		return entity.Snapshot{}, replayErr(err, "load_entries", matchID)
	}
	sim, err := entity.Replay(*rec, entries, untilTick, nil)
	if err != nil {
		return entity.Snapshot{}, err
	}
	return sim.Snapshot(), nil
}

// replayErr 保留仓库返回的业务错误（比赛不存在），其余归为回放存储不可用。
func replayErr(err error, reason, matchID string) error {
	if errx.IsBiz(err) {
		return err
	}
	return errx.ErrReplayUnavailable.WithCause(err).WithReason(reason).WithData("match_id", matchID)
}
