package dto

// Response 是 HTTP 接口的统一返回体，HTTP 状态码恒为 200，业务结果看 Code。
type Response struct {
	Code int    `json:"code"`
	Msg  string `json:"msg,omitempty"`
	Data any    `json:"data,omitempty"`
}

func Success(code int, data any) Response {
	return Response{Code: code, Data: data}
}

func Error(code int, msg string) Response {
	return Response{Code: code, Msg: msg}
}

type CreateMatchReq struct {
	MatchID string `json:"match_id"`
}

type CreateMatchResp struct {
	MatchID string `json:"match_id"`
}

type SpeedReq struct {
	Speed *float64 `json:"speed" binding:"required"`
}

type TicketReq struct {
	PlayerID int64  `json:"player_id" binding:"required"`
	MatchID  string `json:"match_id" binding:"required"`
	Alliance int    `json:"alliance"`
}

type TicketResp struct {
	Ticket string `json:"ticket"`
}

// TerritoryResp 把领地串按行拆开，便于直接打印。
type TerritoryResp struct {
	Tick   uint64   `json:"tick"`
	Width  int      `json:"width"`
	Height int      `json:"height"`
	Rows   []string `json:"rows"`
}
