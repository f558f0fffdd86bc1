package ws

import (
	"context"
	"testing"

	"Strongholds/internal/shared/transport"
	"Strongholds/modules/kit/tracex"
)

type fakeConn struct {
	props  map[string]any
	pushed []string
	done   chan struct{}
}

func newFakeConn() *fakeConn {
	return &fakeConn{props: map[string]any{}, done: make(chan struct{})}
}

func (f *fakeConn) ID() string                        { return "fake" }
func (f *fakeConn) SetProperty(key string, value any) { f.props[key] = value }
func (f *fakeConn) GetProperty(key string) any        { return f.props[key] }
func (f *fakeConn) RemoveProperty(key string)         { delete(f.props, key) }
func (f *fakeConn) Addr() string                      { return "127.0.0.1:0" }
func (f *fakeConn) Push(name string, _ any)           { f.pushed = append(f.pushed, name) }
func (f *fakeConn) PushBinary(name string, _ any)     { f.pushed = append(f.pushed, name) }
func (f *fakeConn) Close()                            {}
func (f *fakeConn) Done() <-chan struct{}             { return f.done }

func dispatch(r *Router, name string, msg any) *RespBody {
	req := &WsMsgReq{Body: &ReqBody{Seq: 7, Name: name, Msg: msg}, Conn: newFakeConn()}
	resp := &WsMsgResp{Body: &RespBody{Seq: 7, Name: name}}
	r.Dispatch(req, resp)
	return resp.Body
}

func TestRouter_分发到处理器(t *testing.T) {
	r := NewRouter(nil)
	r.Group("match").Handle("order", func(ctx context.Context, req *WsMsgReq, resp *WsMsgResp) {
		var in struct {
			Source  int     `json:"source"`
			Percent float64 `json:"percent"`
		}
		if err := Bind(req, &in); err != nil {
			resp.Body.Code = transport.InvalidParam
			return
		}
		resp.Body.Code = transport.OK
		resp.Body.Msg = in.Source
	})

	body := dispatch(r, "match.order", map[string]any{"source": float64(3), "percent": 0.5})
	if body.Code != transport.OK || body.Msg != 3 {
		t.Fatalf("期望成功并回显 source，got=%+v", body)
	}
}

func TestRouter_路由错误(t *testing.T) {
	r := NewRouter(nil)
	r.Group("match").Handle("order", func(context.Context, *WsMsgReq, *WsMsgResp) {})

	for _, name := range []string{"match", "match.", "nope.order", "match.nope", "a.b.c"} {
		if body := dispatch(r, name, nil); body.Code != transport.InvalidParam {
			t.Fatalf("route=%q 期望 InvalidParam，got=%d", name, body.Code)
		}
	}
}

func TestRouter_处理器未设置业务码时按系统错误返回(t *testing.T) {
	r := NewRouter(nil)
	r.Group("match").Handle("noop", func(context.Context, *WsMsgReq, *WsMsgResp) {})
	r.Group("match").Handle("boom", func(context.Context, *WsMsgReq, *WsMsgResp) { panic("boom") })

	if body := dispatch(r, "match.noop", nil); body.Code != transport.SystemError {
		t.Fatalf("期望默认系统错误，got=%d", body.Code)
	}
	if body := dispatch(r, "match.boom", nil); body.Code != transport.SystemError {
		t.Fatalf("panic 应转为系统错误，got=%d", body.Code)
	}
}

func TestBind_空消息(t *testing.T) {
	var dst struct{}
	if err := Bind(&WsMsgReq{Body: &ReqBody{}}, &dst); err == nil {
		t.Fatalf("msg 为空时应报错")
	}
	if err := Bind(nil, &dst); err == nil {
		t.Fatalf("req 为空时应报错")
	}
}

func TestRouter_已入场连接带比赛范围(t *testing.T) {
	r := NewRouter(nil)
	var got tracex.MatchScope
	var ok bool
	r.Group("match").Handle("status", func(ctx context.Context, _ *WsMsgReq, resp *WsMsgResp) {
		got, ok = tracex.MatchFrom(ctx)
		resp.Body.Code = transport.OK
	})

	conn := newFakeConn()
	req := &WsMsgReq{Body: &ReqBody{Seq: 1, Name: "match.status"}, Conn: conn}
	r.Dispatch(req, &WsMsgResp{Body: &RespBody{Seq: 1, Name: "match.status"}})
	if ok {
		t.Fatalf("未入场的连接不应带比赛范围，got=%+v", got)
	}

	conn.SetProperty(ConnKeyMatchID, "m-1")
	conn.SetProperty(ConnKeyAlliance, 2)
	r.Dispatch(req, &WsMsgResp{Body: &RespBody{Seq: 2, Name: "match.status"}})
	if !ok || got.MatchID != "m-1" || got.Alliance != 2 {
		t.Fatalf("比赛范围异常，got=%+v ok=%v", got, ok)
	}
}
