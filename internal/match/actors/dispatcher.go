package actors

import (
	"reflect"

	"Strongholds/internal/shared/actor/messages"
	"Strongholds/internal/shared/transport"

	"github.com/asynkron/protoactor-go/actor"
)

type Dispatcher struct {
	handlers map[reflect.Type]Handler
}

type Handler struct {
	fn      reflect.Value
	reqType reflect.Type
}

func NewDispatcher() *Dispatcher {
	d := &Dispatcher{
		handlers: make(map[reflect.Type]Handler),
	}
	d.registerAll()
	return d
}

func (d *Dispatcher) registerAll() {
	register(d, MH.HandleJoin)
	register(d, MH.HandleLeave)
	register(d, MH.HandleCommand)
	register(d, MH.HandleSnapshot)
	register(d, MH.HandleStatus)
	register(d, MH.HandleSetSpeed)
}

func register[Req any](
	d *Dispatcher,
	fn func(ctx actor.Context, p *MatchActor, req Req),
) {
	reqType := reflect.TypeOf((*Req)(nil)).Elem()
	if reqType == nil {
		panic("dispatcher req type cannot be nil")
	}

	d.handlers[reqType] = Handler{
		fn:      reflect.ValueOf(fn),
		reqType: reqType,
	}
}

func (d *Dispatcher) Dispatch(ctx actor.Context, p *MatchActor, req messages.MatchMessage) {
	if req == nil {
		ctx.Respond(fail(transport.InvalidParam, "nil req", nil))
		return
	}

	bodyType := reflect.TypeOf(req)
	handler, ok := d.handlers[bodyType]
	if !ok {
		ctx.Respond(fail(transport.InvalidParam, "no handler for request body", nil))
		return
	}

	handler.fn.Call([]reflect.Value{
		reflect.ValueOf(ctx),
		reflect.ValueOf(p),
		reflect.ValueOf(req),
	})
}

func fail(code int, msg string, err error) *messages.FailResp {
	return &messages.FailResp{Code: code, Message: msg, Err: err}
}
