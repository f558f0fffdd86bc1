package transport

// BizCode 表示业务码的强类型封装，用于在日志上下文中减少误传风险。
type BizCode int

// 对外返回的业务码。Code 为 int 便于客户端直接比较。
const (
	OK              = 0
	InvalidParam    = 1
	SystemError     = 2
	Unauthorized    = 3
	NotFound        = 4
	CommandRejected = 10
	MatchOver       = 11
	NotJoined       = 12
)
