package ws

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"

	"Strongholds/modules/kit/logx"
)

const outChanSize = 1024

type outbound struct {
	resp   *WsMsgResp
	binary bool
}

type WsServer struct {
	id       string
	conn     *websocket.Conn
	router   *Router
	outChan  chan outbound
	property map[string]any
	sync.RWMutex
	done      chan struct{}
	closeOnce sync.Once
	log       logx.Logger
}

func NewWsServer(wsConn *websocket.Conn, l logx.Logger) *WsServer {
	id := uuid.NewString()
	if l == nil {
		l = logx.NewZapLogger(nil)
	}
	return &WsServer{
		id:       id,
		conn:     wsConn,
		outChan:  make(chan outbound, outChanSize),
		property: make(map[string]any),
		done:     make(chan struct{}),
		log:      l.With(zap.String("conn_id", id)),
	}
}

func (s *WsServer) ID() string {
	return s.id
}

func (s *WsServer) Router(router *Router) {
	s.router = router
}

func (s *WsServer) SetProperty(key string, value any) {
	s.Lock()
	defer s.Unlock()
	s.property[key] = value
}

func (s *WsServer) GetProperty(key string) any {
	s.RLock()
	defer s.RUnlock()
	return s.property[key]
}

func (s *WsServer) RemoveProperty(key string) {
	s.Lock()
	defer s.Unlock()
	delete(s.property, key)
}

func (s *WsServer) Addr() string {
	return s.conn.RemoteAddr().String()
}

func (s *WsServer) Push(name string, data any) {
	s.enqueue(outbound{resp: &WsMsgResp{Body: &RespBody{Name: name, Msg: data}}})
}

func (s *WsServer) PushBinary(name string, data any) {
	s.enqueue(outbound{resp: &WsMsgResp{Body: &RespBody{Name: name, Msg: data}}, binary: true})
}

// enqueue 从不阻塞：比赛 actor 会直接调用 Push，慢连接只丢自己的消息。
func (s *WsServer) enqueue(msg outbound) {
	select {
	case <-s.done:
	case s.outChan <- msg:
	default:
		s.log.Warn("ws_server out chan full, drop msg", zap.String("name", msg.resp.Body.Name))
	}
}

func (s *WsServer) Run() {
	go s.readMsgLoop()
	go s.writeMsgLoop()
}

func (s *WsServer) readMsgLoop() {
	defer func() {
		if err := recover(); err != nil {
			s.log.Error("ws readMsgLoop panic", zap.String("err", fmt.Sprintf("%v", err)))
		}
		s.Close()
	}()
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Error("ws_server read msg", zap.Error(err))
			}
			return
		}

		reqBody := ReqBody{}
		if err := json.Unmarshal(data, &reqBody); err != nil {
			s.log.Warn("ws_server readMsgLoop unmarshal json error", zap.Error(err))
			continue
		}

		req := WsMsgReq{Body: &reqBody, Conn: s}
		// req 和 resp 的 Seq 必须一致
		resp := WsMsgResp{Body: &RespBody{Seq: reqBody.Seq, Name: reqBody.Name}}
		if reqBody.Name == HeartbeatMsg {
			h := &Heartbeat{}
			_ = mapstructure.Decode(reqBody.Msg, h)
			h.STime = time.Now().UnixMilli()
			resp.Body.Msg = h
		} else {
			s.log.Debug("ws_server read msg", zap.Any("data", reqBody))
			s.router.Dispatch(&req, &resp)
		}
		s.enqueue(outbound{resp: &resp})
	}
}

func (s *WsServer) writeMsgLoop() {
	for {
		select {
		case msg := <-s.outChan:
			s.write(msg)
		case <-s.done:
			return
		}
	}
}

func (s *WsServer) Close() {
	s.closeOnce.Do(func() {
		_ = s.conn.Close()
		close(s.done)
	})
}

func (s *WsServer) Done() <-chan struct{} {
	return s.done
}

func (s *WsServer) write(msg outbound) {
	var (
		data []byte
		err  error
		kind = websocket.TextMessage
	)
	if msg.binary {
		data, err = msgpack.Marshal(msg.resp.Body)
		kind = websocket.BinaryMessage
	} else {
		data, err = json.Marshal(msg.resp.Body)
	}
	if err != nil {
		s.log.Error("ws_server write marshal error", zap.String("name", msg.resp.Body.Name), zap.Error(err))
		return
	}
	if err := s.conn.WriteMessage(kind, data); err != nil {
		s.log.Error("ws_server write error", zap.Error(err))
		s.Close()
	}
}

func (s *WsServer) handshake() {
	s.enqueue(outbound{resp: &WsMsgResp{Body: &RespBody{Name: HandshakeMsg, Msg: &Handshake{ConnID: s.id}}}})
}
