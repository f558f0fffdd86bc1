package http

import (
	"context"
	nethttp "net/http"
	"strconv"
	"time"

	"Strongholds/internal/match/entity"
	"Strongholds/internal/match/interfaces/handler"
	"Strongholds/internal/match/interfaces/handler/http/dto"
	"Strongholds/internal/shared/actor/messages"
	"Strongholds/internal/shared/security"
	"Strongholds/internal/shared/transport"
	"Strongholds/modules/kit/logx"

	"github.com/gin-gonic/gin"
)

type MatchService interface {
	CreateMatch(ctx context.Context, matchID string) (string, error)
	Snapshot(ctx context.Context, matchID string) (entity.Snapshot, error)
	Status(ctx context.Context, matchID string) (messages.MHStatus, error)
	SetSpeed(ctx context.Context, matchID string, speed float64) (messages.MHStatus, error)
	Replay(ctx context.Context, matchID string, untilTick uint64) (entity.Snapshot, error)
}

type HttpHandler struct {
	svc       MatchService
	ticketTTL time.Duration
	log       logx.Logger
}

func NewHttpHandler(svc MatchService, ticketTTL time.Duration, l logx.Logger) *HttpHandler {
	if l == nil {
		l = logx.NewZapLogger(nil)
	}
	return &HttpHandler{svc: svc, ticketTTL: ticketTTL, log: l}
}

func (h *HttpHandler) RegisterRoutes(group *gin.RouterGroup) {
	matches := group.Group("/matches")
	matches.POST("", h.CreateMatch)
	matches.GET("/:id/status", h.Status)
	matches.GET("/:id/snapshot", h.Snapshot)
	matches.GET("/:id/territory", h.Territory)
	matches.POST("/:id/speed", h.SetSpeed)
	matches.GET("/:id/replay", h.Replay)

	group.POST("/tickets", h.Ticket)
}

func (h *HttpHandler) CreateMatch(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateMatchReq
	// 空 body 表示由服务端分配 id
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.fail(c, transport.InvalidParam, "参数有误")
			return
		}
	}
	id, err := h.svc.CreateMatch(ctx, req.MatchID)
	if err != nil {
		h.error(ctx, c, "match.create", err)
		return
	}
	h.ok(c, dto.CreateMatchResp{MatchID: id})
}

func (h *HttpHandler) Status(c *gin.Context) {
	ctx := c.Request.Context()
	st, err := h.svc.Status(ctx, c.Param("id"))
	if err != nil {
		h.error(ctx, c, "match.status", err)
		return
	}
	h.ok(c, st)
}

func (h *HttpHandler) Snapshot(c *gin.Context) {
	ctx := c.Request.Context()
	snap, err := h.svc.Snapshot(ctx, c.Param("id"))
	if err != nil {
		h.error(ctx, c, "match.snapshot", err)
		return
	}
	h.ok(c, snap)
}

func (h *HttpHandler) Territory(c *gin.Context) {
	ctx := c.Request.Context()
	snap, err := h.svc.Snapshot(ctx, c.Param("id"))
	if err != nil {
		h.error(ctx, c, "match.territory", err)
		return
	}
	h.ok(c, territoryRows(snap))
}

func (h *HttpHandler) SetSpeed(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.SpeedReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Speed == nil || *req.Speed < 0 {
		h.fail(c, transport.InvalidParam, "参数有误")
		return
	}
	st, err := h.svc.SetSpeed(ctx, c.Param("id"), *req.Speed)
	if err != nil {
		h.error(ctx, c, "match.speed", err)
		return
	}
	h.ok(c, st)
}

// Replay 从回放记录重建比赛，tick 缺省为最后一条记录。
func (h *HttpHandler) Replay(c *gin.Context) {
	ctx := c.Request.Context()

	var until uint64
	if raw := c.Query("tick"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			h.fail(c, transport.InvalidParam, "参数有误")
			return
		}
		until = v
	}
	snap, err := h.svc.Replay(ctx, c.Param("id"), until)
	if err != nil {
		h.error(ctx, c, "match.replay", err)
		return
	}
	h.ok(c, snap)
}

func (h *HttpHandler) Ticket(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.TicketReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Alliance < 0 {
		h.fail(c, transport.InvalidParam, "参数有误")
		return
	}
	ticket, err := security.Award(req.PlayerID, req.MatchID, req.Alliance, h.ticketTTL)
	if err != nil {
		h.error(ctx, c, "match.ticket", err)
		return
	}
	h.ok(c, dto.TicketResp{Ticket: ticket})
}

func territoryRows(s entity.Snapshot) dto.TerritoryResp {
	resp := dto.TerritoryResp{Tick: s.Tick, Width: s.Width, Height: s.Height}
	if s.Width <= 0 {
		return resp
	}
	resp.Rows = make([]string, 0, s.Height)
	for i := 0; i+s.Width <= len(s.Territory); i += s.Width {
		resp.Rows = append(resp.Rows, s.Territory[i:i+s.Width])
	}
	return resp
}

func (h *HttpHandler) ok(c *gin.Context, data any) {
	c.JSON(nethttp.StatusOK, dto.Success(transport.OK, data))
}

func (h *HttpHandler) fail(c *gin.Context, code int, msg string) {
	c.JSON(nethttp.StatusOK, dto.Error(code, msg))
}

func (h *HttpHandler) error(ctx context.Context, c *gin.Context, action string, err error) {
	code, msg := handler.HandleError(ctx, h.log, action, err)
	h.fail(c, code, msg)
}
