package errx

// 模拟服务通用的系统错误码。规则拒绝之类的业务错误码由各领域包自己定义。
const (
	CodeInternal          Code = "INTERNAL_ERROR"
	CodeReplayUnavailable Code = "REPLAY_UNAVAILABLE"
	CodeActorTimeout      Code = "ACTOR_TIMEOUT"
	// 地图、规则、比赛配置不合法
	CodeInvalidSetup Code = "INVALID_SETUP"
)

var (
	ErrInternal          = NewSys(CodeInternal, "服务器内部错误")
	ErrReplayUnavailable = NewSys(CodeReplayUnavailable, "回放存储不可用")
	ErrActorTimeout      = NewSys(CodeActorTimeout, "比赛响应超时")
	ErrInvalidSetup      = NewSys(CodeInvalidSetup, "比赛配置有误")
)
