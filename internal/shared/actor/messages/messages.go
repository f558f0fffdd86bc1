package messages

// FailResp 是 actor 拒绝请求时的统一应答，Code 为 transport 业务码，Err 保留原始错误供上层上报。
type FailResp struct {
	Code    int
	Message string
	Err     error
}
