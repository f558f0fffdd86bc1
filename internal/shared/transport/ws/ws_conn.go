package ws

type ReqBody struct {
	Seq  int64  `json:"seq"`
	Name string `json:"name"`
	Msg  any    `json:"msg"`
}

type RespBody struct {
	Seq  int64  `json:"seq" msgpack:"seq"`
	Name string `json:"name" msgpack:"name"`
	Code int    `json:"code" msgpack:"code"`
	Msg  any    `json:"msg" msgpack:"msg"`
}

type WsMsgReq struct {
	Body *ReqBody
	Conn WSConn
}

type WsMsgResp struct {
	Body *RespBody
}

// WSConn 是 handler 看到的连接：属性表 + 推送。
type WSConn interface {
	ID() string
	SetProperty(key string, value any)
	GetProperty(key string) any
	RemoveProperty(key string)
	Addr() string
	// Push 以 JSON 文本帧推送。
	Push(name string, data any)
	// PushBinary 以 msgpack 二进制帧推送，用于高频的比赛事件。
	PushBinary(name string, data any)
	Close()
	// Done 用于感知连接生命周期结束（连接关闭时该 channel 会被关闭）
	Done() <-chan struct{}
}

type Handshake struct {
	ConnID string `json:"conn_id"`
}

type Heartbeat struct {
	CTime int64 `json:"ctime" mapstructure:"ctime"`
	STime int64 `json:"stime" mapstructure:"stime"`
}

const (
	HandshakeMsg = "handshake"
	HeartbeatMsg = "heartbeat"

	ConnKeyPlayerID = "player_id"
	ConnKeyAlliance = "alliance"
	ConnKeyMatchID  = "match_id"
)
