package actor

import (
	"context"
	"errors"
	"time"

	"Strongholds/internal/match/actors"
	"Strongholds/internal/match/app/port"
	"Strongholds/internal/match/entity"
	"Strongholds/internal/shared/actor/messages"
	"Strongholds/internal/shared/transport"
	"Strongholds/modules/kit/errx"
	"Strongholds/modules/kit/logx"

	protoactor "github.com/asynkron/protoactor-go/actor"
)

const defaultAskTimeout = 3 * time.Second

type RuntimeError struct {
	Code    int
	Message string
	Cause   error
}

func (e *RuntimeError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.Cause.Error()
}

func (e *RuntimeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Runtime 是 handler 访问比赛 actor 的入口，所有调用都经由 manager 转发。
type Runtime struct {
	system  *protoactor.ActorSystem
	root    *protoactor.RootContext
	manager *protoactor.PID
	timeout time.Duration
}

func NewRuntime(repo port.ReplayRepository, setup actors.SetupFunc, flushEvery, askTimeout time.Duration, l logx.Logger) *Runtime {
	if askTimeout <= 0 {
		askTimeout = defaultAskTimeout
	}

	system := protoactor.NewActorSystem()
	root := system.Root
	managerProps := protoactor.PropsFromProducer(func() protoactor.Actor {
		return actors.NewManagerActor(repo, setup, flushEvery, l)
	})
	manager := root.Spawn(managerProps)

	return &Runtime{
		system:  system,
		root:    root,
		manager: manager,
		timeout: askTimeout,
	}
}

// Shutdown 等 manager 及其比赛 actor 停止（回放缓冲在比赛 actor 停止时写完）后关闭系统。
func (r *Runtime) Shutdown() {
	if r == nil {
		return
	}
	if r.root != nil && r.manager != nil {
		_ = r.root.StopFuture(r.manager).Wait()
	}
	if r.system != nil {
		r.system.Shutdown()
	}
}

func (r *Runtime) CreateMatch(ctx context.Context, matchID string) (string, error) {
	res, err := ask[messages.MHCreateMatch](r, ctx, messages.HMCreateMatch{MatchBaseMessage: base(matchID)})
	if err != nil {
		return "", err
	}
	return res.MatchID, nil
}

func (r *Runtime) Join(ctx context.Context, matchID string, playerID int64, alliance int, conn messages.Subscriber) (messages.MHJoin, error) {
	return ask[messages.MHJoin](r, ctx, messages.HMJoin{
		MatchBaseMessage: base(matchID),
		PlayerID:         playerID,
		Alliance:         alliance,
		Conn:             conn,
	})
}

// Leave 不等待应答，连接关闭回调里调用。
func (r *Runtime) Leave(matchID, connID string) {
	if r == nil || r.root == nil {
		return
	}
	r.root.Send(r.manager, messages.HMLeave{MatchBaseMessage: base(matchID), ConnID: connID})
}

func (r *Runtime) Command(ctx context.Context, matchID, connID string, cmd entity.Command) (uint64, error) {
	res, err := ask[messages.MHCommand](r, ctx, messages.HMCommand{
		MatchBaseMessage: base(matchID),
		ConnID:           connID,
		Command:          cmd,
	})
	if err != nil {
		return 0, err
	}
	return res.Seq, nil
}

func (r *Runtime) Snapshot(ctx context.Context, matchID string) (entity.Snapshot, error) {
	res, err := ask[messages.MHSnapshot](r, ctx, messages.HMSnapshot{MatchBaseMessage: base(matchID)})
	if err != nil {
		return entity.Snapshot{}, err
	}
	return res.Snapshot, nil
}

func (r *Runtime) Status(ctx context.Context, matchID string) (messages.MHStatus, error) {
	return ask[messages.MHStatus](r, ctx, messages.HMStatus{MatchBaseMessage: base(matchID)})
}

func (r *Runtime) SetSpeed(ctx context.Context, matchID string, speed float64) (messages.MHStatus, error) {
	return ask[messages.MHStatus](r, ctx, messages.HMSetSpeed{MatchBaseMessage: base(matchID), Speed: speed})
}

func base(matchID string) messages.MatchBaseMessage {
	return messages.MatchBaseMessage{Match: matchID}
}

func ask[T any](r *Runtime, ctx context.Context, msg any) (T, error) {
	var zero T
	res, err := r.request(r.manager, msg, r.timeoutFromContext(ctx))
	if err != nil {
		return zero, err
	}
	switch v := res.(type) {
	case T:
		return v, nil
	case *messages.FailResp:
		return zero, &RuntimeError{Code: v.Code, Message: v.Message, Cause: v.Err}
	default:
		return zero, &RuntimeError{Code: transport.SystemError, Message: "actor 返回类型非法"}
	}
}

func (r *Runtime) request(pid *protoactor.PID, msg any, timeout time.Duration) (any, error) {
	if r == nil || r.root == nil {
		return nil, &RuntimeError{Code: transport.SystemError, Message: "actor runtime 未初始化"}
	}
	if pid == nil {
		return nil, &RuntimeError{Code: transport.SystemError, Message: "actor pid 为空"}
	}

	future := r.root.RequestFuture(pid, msg, timeout)
	res, err := future.Result()
	if errors.Is(err, protoactor.ErrTimeout) {
		return nil, errx.ErrActorTimeout.WithCause(err).WithData("timeout", timeout.String())
	}
	if err != nil {
		return nil, &RuntimeError{
			Code:    transport.SystemError,
			Message: "actor 请求失败",
			Cause:   err,
		}
	}
	return res, nil
}

func (r *Runtime) timeoutFromContext(ctx context.Context) time.Duration {
	if r == nil || r.timeout <= 0 {
		return defaultAskTimeout
	}
	if ctx == nil {
		return r.timeout
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		return r.timeout
	}
	remain := time.Until(deadline)
	if remain <= 0 {
		return time.Millisecond
	}
	if remain < r.timeout {
		return remain
	}
	return r.timeout
}

func CodeFromError(err error) int {
	if err == nil {
		return transport.OK
	}
	var re *RuntimeError
	if errors.As(err, &re) && re != nil && re.Code != 0 {
		return re.Code
	}
	return transport.SystemError
}
