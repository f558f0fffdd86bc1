package http

import (
	"context"
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"Strongholds/internal/match/entity"
	"Strongholds/internal/shared/actor/messages"
	"Strongholds/internal/shared/security"
	"Strongholds/internal/shared/transport"

	"github.com/gin-gonic/gin"
)

type fakeService struct {
	created   []string
	speed     float64
	untilTick uint64
}

func (f *fakeService) CreateMatch(_ context.Context, matchID string) (string, error) {
	f.created = append(f.created, matchID)
	if matchID == "" {
		return "generated", nil
	}
	return matchID, nil
}

func (f *fakeService) Snapshot(_ context.Context, matchID string) (entity.Snapshot, error) {
	if matchID != "m1" {
		return entity.Snapshot{}, entity.ErrMatchNotFound
	}
	return entity.Snapshot{Tick: 5, Width: 3, Height: 2, Territory: "11...2"}, nil
}

func (f *fakeService) Status(_ context.Context, matchID string) (messages.MHStatus, error) {
	return messages.MHStatus{MatchID: matchID, Tick: 5}, nil
}

func (f *fakeService) SetSpeed(_ context.Context, matchID string, speed float64) (messages.MHStatus, error) {
	f.speed = speed
	return messages.MHStatus{MatchID: matchID, Speed: speed}, nil
}

func (f *fakeService) Replay(_ context.Context, _ string, untilTick uint64) (entity.Snapshot, error) {
	f.untilTick = untilTick
	return entity.Snapshot{Tick: untilTick}, nil
}

type response struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func newEngine(svc MatchService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	e := gin.New()
	NewHttpHandler(svc, 0, nil).RegisterRoutes(e.Group(""))
	return e
}

func do(t *testing.T, e *gin.Engine, method, path, body string) response {
	t.Helper()
	var req *nethttp.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	if w.Code != nethttp.StatusOK {
		t.Fatalf("%s %s 状态码异常：%d", method, path, w.Code)
	}
	var out response
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("返回体解析失败：%v body=%s", err, w.Body.String())
	}
	return out
}

func TestCreateMatch_空body分配id(t *testing.T) {
	svc := &fakeService{}
	e := newEngine(svc)

	out := do(t, e, nethttp.MethodPost, "/matches", "")
	if out.Code != transport.OK || !strings.Contains(string(out.Data), "generated") {
		t.Fatalf("期望分配 id，got=%+v", out)
	}
	out = do(t, e, nethttp.MethodPost, "/matches", `{"match_id":"m7"}`)
	if out.Code != transport.OK || !strings.Contains(string(out.Data), "m7") {
		t.Fatalf("期望使用指定 id，got=%+v", out)
	}
	if len(svc.created) != 2 || svc.created[0] != "" || svc.created[1] != "m7" {
		t.Fatalf("创建参数异常：%v", svc.created)
	}
}

func TestTerritory_按行拆分(t *testing.T) {
	e := newEngine(&fakeService{})

	out := do(t, e, nethttp.MethodGet, "/matches/m1/territory", "")
	if out.Code != transport.OK {
		t.Fatalf("territory 失败：%+v", out)
	}
	var tr struct {
		Rows []string `json:"rows"`
	}
	if err := json.Unmarshal(out.Data, &tr); err != nil {
		t.Fatalf("data 解析失败：%v", err)
	}
	if len(tr.Rows) != 2 || tr.Rows[0] != "11." || tr.Rows[1] != "..2" {
		t.Fatalf("行拆分异常：%v", tr.Rows)
	}
}

func TestSnapshot_比赛不存在(t *testing.T) {
	e := newEngine(&fakeService{})
	out := do(t, e, nethttp.MethodGet, "/matches/nope/snapshot", "")
	if out.Code != transport.NotFound {
		t.Fatalf("期望 NotFound，got=%+v", out)
	}
}

func TestSetSpeed_参数校验(t *testing.T) {
	svc := &fakeService{}
	e := newEngine(svc)

	if out := do(t, e, nethttp.MethodPost, "/matches/m1/speed", `{}`); out.Code != transport.InvalidParam {
		t.Fatalf("缺少 speed 应为参数错误，got=%+v", out)
	}
	if out := do(t, e, nethttp.MethodPost, "/matches/m1/speed", `{"speed":-1}`); out.Code != transport.InvalidParam {
		t.Fatalf("负速度应为参数错误，got=%+v", out)
	}
	// 0 是合法的暂停
	if out := do(t, e, nethttp.MethodPost, "/matches/m1/speed", `{"speed":0}`); out.Code != transport.OK || svc.speed != 0 {
		t.Fatalf("暂停失败，got=%+v speed=%v", out, svc.speed)
	}
	if out := do(t, e, nethttp.MethodPost, "/matches/m1/speed", `{"speed":2.5}`); out.Code != transport.OK || svc.speed != 2.5 {
		t.Fatalf("调速失败，got=%+v speed=%v", out, svc.speed)
	}
}

func TestReplay_tick参数(t *testing.T) {
	svc := &fakeService{}
	e := newEngine(svc)

	if out := do(t, e, nethttp.MethodGet, "/matches/m1/replay?tick=abc", ""); out.Code != transport.InvalidParam {
		t.Fatalf("非法 tick 应为参数错误，got=%+v", out)
	}
	if out := do(t, e, nethttp.MethodGet, "/matches/m1/replay?tick=40", ""); out.Code != transport.OK || svc.untilTick != 40 {
		t.Fatalf("replay 失败，got=%+v until=%d", out, svc.untilTick)
	}
	if out := do(t, e, nethttp.MethodGet, "/matches/m1/replay", ""); out.Code != transport.OK || svc.untilTick != 0 {
		t.Fatalf("缺省 tick 应为 0，got=%+v until=%d", out, svc.untilTick)
	}
}

func TestTicket_签发可解析(t *testing.T) {
	t.Setenv("JWT_SECRET", "http-test-secret")
	e := newEngine(&fakeService{})

	out := do(t, e, nethttp.MethodPost, "/tickets", `{"player_id":3,"match_id":"m1","alliance":2}`)
	if out.Code != transport.OK {
		t.Fatalf("签发失败：%+v", out)
	}
	var tr struct {
		Ticket string `json:"ticket"`
	}
	if err := json.Unmarshal(out.Data, &tr); err != nil {
		t.Fatalf("data 解析失败：%v", err)
	}
	_, claims, err := security.ParseToken(tr.Ticket)
	if err != nil {
		t.Fatalf("门票解析失败：%v", err)
	}
	if claims.PlayerID != 3 || claims.MatchID != "m1" || claims.Alliance != 2 {
		t.Fatalf("claims 异常：%+v", claims)
	}

	if out := do(t, e, nethttp.MethodPost, "/tickets", `{"match_id":"m1"}`); out.Code != transport.InvalidParam {
		t.Fatalf("缺少 player_id 应为参数错误，got=%+v", out)
	}
}
