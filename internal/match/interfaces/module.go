package interfaces

import (
	"time"

	matchhttp "Strongholds/internal/match/interfaces/handler/http"
	matchws "Strongholds/internal/match/interfaces/handler/ws"
	"Strongholds/internal/match/service"
	transporthttp "Strongholds/internal/shared/transport/http"
	"Strongholds/internal/shared/transport/ws"
	"Strongholds/modules/kit/logx"

	"github.com/gin-gonic/gin"
)

type Options struct {
	NeedTicket   bool
	DefaultMatch string
	TicketTTL    time.Duration
}

type Module struct {
	wsHandler   *matchws.WsHandler
	httpHandler *matchhttp.HttpHandler
}

func New(svc *service.MatchService, opts Options, l logx.Logger) *Module {
	return &Module{
		wsHandler:   matchws.NewWsHandler(svc, opts.NeedTicket, opts.DefaultMatch, l),
		httpHandler: matchhttp.NewHttpHandler(svc, opts.TicketTTL, l),
	}
}

func (m *Module) WsRegister(r *ws.Router) {
	m.wsHandler.RegisterRoutes(r)
}

func (m *Module) HttpRegister(g *gin.RouterGroup) {
	m.httpHandler.RegisterRoutes(g)
}

// OnConnClose 交给 ws.Server.OnClose，断线即离开比赛。
func (m *Module) OnConnClose(conn ws.WSConn) {
	m.wsHandler.OnClose(conn)
}

var _ ws.Registrar = (*Module)(nil)
var _ transporthttp.Registrar = (*Module)(nil)
