package messages

import "Strongholds/internal/match/entity"

// MatchMessage 是发往比赛 actor 的请求，manager 按 MatchID 转发。
type MatchMessage interface {
	MatchID() string
}

type MatchBaseMessage struct {
	Match string
}

func (m MatchBaseMessage) MatchID() string {
	return m.Match
}

// Subscriber 接收比赛事件推送，ws 连接满足该接口。
type Subscriber interface {
	ID() string
	PushBinary(name string, data any)
}

type HMCreateMatch struct {
	MatchBaseMessage
}

type MHCreateMatch struct {
	MatchID string
}

// HMJoin 把连接绑定到阵营并订阅事件推送。
type HMJoin struct {
	MatchBaseMessage
	PlayerID int64
	Alliance int
	Conn     Subscriber
}

type MHJoin struct {
	Alliance int
	Snapshot entity.Snapshot
}

// HMLeave 在连接断开时发送，最后一个离开的连接会重置其阵营。
type HMLeave struct {
	MatchBaseMessage
	ConnID string
}

// HMCommand 的 ConnID 非空时，执行失败会推送给该连接。
type HMCommand struct {
	MatchBaseMessage
	ConnID  string
	Command entity.Command
}

// MHCommand 只表示指令已入队，执行结果在下一 tick 以 match.rejected 推送失败项。
type MHCommand struct {
	Seq uint64
}

type HMSnapshot struct {
	MatchBaseMessage
}

type MHSnapshot struct {
	Snapshot entity.Snapshot
}

type HMStatus struct {
	MatchBaseMessage
}

type HMSetSpeed struct {
	MatchBaseMessage
	Speed float64
}

type MHStatus struct {
	MatchID     string  `json:"match_id"`
	Tick        uint64  `json:"tick"`
	Now         float64 `json:"now"`
	Speed       float64 `json:"speed"`
	Subscribers int     `json:"subscribers"`
	Over        bool    `json:"over"`
	Winner      int     `json:"winner"`
}
