package ws

import (
	"context"

	"Strongholds/internal/match/entity"
	"Strongholds/internal/match/interfaces/handler"
	"Strongholds/internal/match/service"
	"Strongholds/internal/shared/actor/messages"
	"Strongholds/internal/shared/security"
	"Strongholds/internal/shared/transport"
	"Strongholds/internal/shared/transport/ws"
	"Strongholds/modules/kit/logx"
)

// MatchService 是 ws 处理器依赖的比赛操作。
type MatchService interface {
	Join(ctx context.Context, p service.Player, conn messages.Subscriber) (messages.MHJoin, error)
	Leave(p service.Player)
	Order(ctx context.Context, p service.Player, req service.OrderRequest) (uint64, error)
	Harvest(ctx context.Context, p service.Player, req service.HarvestRequest) (uint64, error)
	Snapshot(ctx context.Context, matchID string) (entity.Snapshot, error)
	Status(ctx context.Context, matchID string) (messages.MHStatus, error)
}

// JoinReq 中 Ticket 为 JWT 门票；不校验门票时直接使用 MatchID/PlayerID/Alliance。
type JoinReq struct {
	Ticket   string `json:"ticket"`
	MatchID  string `json:"match_id"`
	PlayerID int64  `json:"player_id"`
	Alliance int    `json:"alliance"`
}

type JoinResp struct {
	MatchID  string          `json:"match_id"`
	Alliance int             `json:"alliance"`
	Snapshot entity.Snapshot `json:"snapshot"`
}

type CommandResp struct {
	Seq uint64 `json:"seq"`
}

type WsHandler struct {
	svc          MatchService
	needTicket   bool
	defaultMatch string
	log          logx.Logger
}

func NewWsHandler(svc MatchService, needTicket bool, defaultMatch string, l logx.Logger) *WsHandler {
	if l == nil {
		l = logx.NewZapLogger(nil)
	}
	return &WsHandler{svc: svc, needTicket: needTicket, defaultMatch: defaultMatch, log: l}
}

func (h *WsHandler) RegisterRoutes(r *ws.Router) {
	g := r.Group("match")
	g.Handle("join", h.Join)
	g.Handle("order", h.Order)
	g.Handle("harvest", h.Harvest)
	g.Handle("snapshot", h.Snapshot)
	g.Handle("status", h.Status)
}

func (h *WsHandler) Join(ctx context.Context, wsReq *ws.WsMsgReq, wsResp *ws.WsMsgResp) {
	if wsReq == nil || wsReq.Body == nil || wsReq.Conn == nil || wsResp == nil || wsResp.Body == nil {
		h.fail(wsResp, transport.InvalidParam, "参数有误")
		return
	}

	var req JoinReq
	if err := ws.Bind(wsReq, &req); err != nil {
		h.fail(wsResp, transport.InvalidParam, "参数有误")
		return
	}

	p := service.Player{ConnID: wsReq.Conn.ID(), MatchID: req.MatchID, PlayerID: req.PlayerID, Alliance: req.Alliance}
	if h.needTicket {
		_, claims, err := security.ParseToken(req.Ticket)
		if err != nil {
			h.error(ctx, wsResp, "match.join", err)
			return
		}
		p.MatchID, p.PlayerID, p.Alliance = claims.MatchID, claims.PlayerID, claims.Alliance
	}
	if p.MatchID == "" {
		p.MatchID = h.defaultMatch
	}

	// 同一连接重复 join 时先离开原比赛
	if prev, ok := PlayerFromConn(wsReq.Conn); ok {
		h.svc.Leave(prev)
	}

	joined, err := h.svc.Join(ctx, p, wsReq.Conn)
	if err != nil {
		h.error(ctx, wsResp, "match.join", err)
		return
	}
	wsReq.Conn.SetProperty(ws.ConnKeyMatchID, p.MatchID)
	wsReq.Conn.SetProperty(ws.ConnKeyPlayerID, p.PlayerID)
	wsReq.Conn.SetProperty(ws.ConnKeyAlliance, p.Alliance)
	h.ok(wsResp, JoinResp{MatchID: p.MatchID, Alliance: joined.Alliance, Snapshot: joined.Snapshot})
}

func (h *WsHandler) Order(ctx context.Context, wsReq *ws.WsMsgReq, wsResp *ws.WsMsgResp) {
	p, ok := h.joined(wsReq, wsResp)
	if !ok {
		return
	}
	var req service.OrderRequest
	if err := ws.Bind(wsReq, &req); err != nil {
		h.fail(wsResp, transport.InvalidParam, "参数有误")
		return
	}
	seq, err := h.svc.Order(ctx, p, req)
	if err != nil {
		h.error(ctx, wsResp, "match.order", err)
		return
	}
	h.ok(wsResp, CommandResp{Seq: seq})
}

func (h *WsHandler) Harvest(ctx context.Context, wsReq *ws.WsMsgReq, wsResp *ws.WsMsgResp) {
	p, ok := h.joined(wsReq, wsResp)
	if !ok {
		return
	}
	var req service.HarvestRequest
	if err := ws.Bind(wsReq, &req); err != nil {
		h.fail(wsResp, transport.InvalidParam, "参数有误")
		return
	}
	seq, err := h.svc.Harvest(ctx, p, req)
	if err != nil {
		h.error(ctx, wsResp, "match.harvest", err)
		return
	}
	h.ok(wsResp, CommandResp{Seq: seq})
}

func (h *WsHandler) Snapshot(ctx context.Context, wsReq *ws.WsMsgReq, wsResp *ws.WsMsgResp) {
	p, ok := h.joined(wsReq, wsResp)
	if !ok {
		return
	}
	snap, err := h.svc.Snapshot(ctx, p.MatchID)
	if err != nil {
		h.error(ctx, wsResp, "match.snapshot", err)
		return
	}
	h.ok(wsResp, snap)
}

func (h *WsHandler) Status(ctx context.Context, wsReq *ws.WsMsgReq, wsResp *ws.WsMsgResp) {
	p, ok := h.joined(wsReq, wsResp)
	if !ok {
		return
	}
	st, err := h.svc.Status(ctx, p.MatchID)
	if err != nil {
		h.error(ctx, wsResp, "match.status", err)
		return
	}
	h.ok(wsResp, st)
}

// OnClose 在连接断开时离开比赛，由 ws.Server.OnClose 注册。
func (h *WsHandler) OnClose(conn ws.WSConn) {
	if p, ok := PlayerFromConn(conn); ok {
		h.svc.Leave(p)
	}
}

// PlayerFromConn 读取 join 写入的连接属性。
func PlayerFromConn(conn ws.WSConn) (service.Player, bool) {
	if conn == nil {
		return service.Player{}, false
	}
	matchID, ok := conn.GetProperty(ws.ConnKeyMatchID).(string)
	if !ok || matchID == "" {
		return service.Player{}, false
	}
	playerID, _ := conn.GetProperty(ws.ConnKeyPlayerID).(int64)
	alliance, _ := conn.GetProperty(ws.ConnKeyAlliance).(int)
	return service.Player{MatchID: matchID, ConnID: conn.ID(), PlayerID: playerID, Alliance: alliance}, true
}

func (h *WsHandler) joined(wsReq *ws.WsMsgReq, wsResp *ws.WsMsgResp) (service.Player, bool) {
	if wsReq == nil || wsReq.Body == nil || wsReq.Conn == nil || wsResp == nil || wsResp.Body == nil {
		h.fail(wsResp, transport.InvalidParam, "参数有误")
		return service.Player{}, false
	}
	p, ok := PlayerFromConn(wsReq.Conn)
	if !ok {
		h.fail(wsResp, transport.NotJoined, "尚未加入比赛")
		return service.Player{}, false
	}
	return p, true
}

func (h *WsHandler) ok(resp *ws.WsMsgResp, data any) {
	if resp == nil || resp.Body == nil {
		return
	}
	resp.Body.Code = transport.OK
	resp.Body.Msg = data
}

func (h *WsHandler) fail(resp *ws.WsMsgResp, code int, msg string) {
	if resp == nil || resp.Body == nil {
		return
	}
	resp.Body.Code = code
	if msg != "" {
		resp.Body.Msg = msg
	}
}

func (h *WsHandler) error(ctx context.Context, resp *ws.WsMsgResp, action string, err error) {
	code, msg := handler.HandleError(ctx, h.log, action, err)
	h.fail(resp, code, msg)
}
