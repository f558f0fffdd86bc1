package ws

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"Strongholds/modules/kit/logx"
)

type Server struct {
	router   *Router
	log      logx.Logger
	upgrader websocket.Upgrader
	onClose  []func(WSConn)
}

func NewServer(r *Router, l logx.Logger) *Server {
	if l == nil {
		l = logx.NewZapLogger(nil)
	}
	return &Server{
		router: r,
		log:    l,
		upgrader: websocket.Upgrader{
			// 允许所有CORS跨域请求
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// OnClose 注册连接关闭回调，例如玩家断线后清除其阵营。
func (s *Server) OnClose(fn func(WSConn)) {
	s.onClose = append(s.onClose, fn)
}

func (s *Server) ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	wsConn, err := s.upgrader.Upgrade(resp, req, nil)
	if err != nil {
		s.log.Error("websocket upgrade error", zap.Error(err))
		return
	}

	wsServer := NewWsServer(wsConn, s.log)
	s.log.Info("websocket upgrade success", zap.String("conn_id", wsServer.ID()), zap.String("addr", wsServer.Addr()))

	wsServer.Router(s.router)
	wsServer.Run()
	wsServer.handshake()

	go func() {
		<-wsServer.Done()
		s.log.Info("websocket closed", zap.String("conn_id", wsServer.ID()))
		for _, fn := range s.onClose {
			fn(wsServer)
		}
	}()
}
