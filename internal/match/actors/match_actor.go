package actors

import (
	"context"
	"time"

	"Strongholds/internal/match/clock"
	"Strongholds/internal/match/dc"
	"Strongholds/internal/match/entity"
	"Strongholds/internal/match/entity/domain"
	"Strongholds/internal/shared/actor/messages"
	"Strongholds/internal/shared/transport"
	"Strongholds/modules/kit/logx"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

type State int

const (
	None State = iota
	Init
	Online
	Offline
	Stopping
)

const (
	PushEvents   = "match.events"
	PushRejected = "match.rejected"
)

// EventFrame 是推送给客户端的单个事件，Kind 决定 Data 的结构。
type EventFrame struct {
	Kind string `json:"kind" msgpack:"kind"`
	Data any    `json:"data" msgpack:"data"`
}

type EventsPush struct {
	Tick   uint64       `json:"tick" msgpack:"tick"`
	Events []EventFrame `json:"events" msgpack:"events"`
}

type RejectedPush struct {
	Seq     uint64 `json:"seq" msgpack:"seq"`
	Command string `json:"command" msgpack:"command"`
	Code    string `json:"code" msgpack:"code"`
	Message string `json:"message" msgpack:"message"`
}

type subscriber struct {
	conn     messages.Subscriber
	playerID int64
	alliance domain.Alliance
}

// MatchActor 是一局比赛唯一的写者：模拟、时钟和回放缓冲都只在它的 goroutine 上访问。
type MatchActor struct {
	state      State
	setup      MatchSetup
	sim        *entity.Simulation
	clock      *clock.Clock
	journal    *entity.Journal
	dc         *dc.MatchDC
	dispatcher *Dispatcher
	log        logx.Logger

	alliances   map[domain.Alliance]struct{}
	subscribers map[string]*subscriber
	// 指令序号到发令连接，用于把拒绝结果推回去
	issuers map[uint64]string

	tickStop  chan struct{}
	flushStop chan struct{}
}

type stepTick struct{}

func (stepTick) NotInfluenceReceiveTimeout() {}

type flushTick struct{}

func (flushTick) NotInfluenceReceiveTimeout() {}

func NewMatchActor(setup MatchSetup, sim *entity.Simulation, d *dc.MatchDC, l logx.Logger) *MatchActor {
	if l == nil {
		l = logx.NewZapLogger(nil)
	}
	c := clock.New(setup.Record.TickRate, setup.NetworkEvery)
	alliances := make(map[domain.Alliance]struct{})
	for _, k := range sim.Keeps() {
		if k.Alliance != domain.Neutral {
			alliances[k.Alliance] = struct{}{}
		}
	}
	if setup.Speed > 0 {
		c.Speed = setup.Speed
	}
	return &MatchActor{
		state:       None,
		setup:       setup,
		sim:         sim,
		clock:       c,
		journal:     entity.NewJournal(),
		dc:          d,
		dispatcher:  NewDispatcher(),
		log:         l.With(zap.String("match_id", setup.Record.MatchID)),
		alliances:   alliances,
		subscribers: make(map[string]*subscriber),
		issuers:     make(map[uint64]string),
	}
}

func (p *MatchActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		p.state = Init
		p.init(ctx)
		return
	case *actor.Stopping:
		p.stopTickLoop()
		p.stopFlushLoop()
		p.networkTick(p.clock.Ticks)
		closeCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := p.dc.Close(closeCtx); err != nil {
			p.log.Error("match dc close failed", zap.Error(err))
		}
		p.state = Stopping
		return
	case *actor.Stopped:
		p.stopTickLoop()
		p.stopFlushLoop()
		p.state = Offline
		return
	case *actor.Restarting:
		p.stopTickLoop()
		p.stopFlushLoop()
		p.state = Init
		return
	case stepTick:
		if p.state != Online {
			return
		}
		if over, _ := p.sim.Over(); over {
			return
		}
		p.clock.Step()
		return
	case flushTick:
		if p.state != Online {
			return
		}
		if err := p.dc.Flush(context.TODO()); err != nil {
			p.log.Error("match periodic flush failed", zap.Error(err))
		}
		return
	case messages.MatchMessage:
		if p.state != Online {
			ctx.Respond(fail(transport.SystemError, "match not online", nil))
			return
		}
		p.dispatcher.Dispatch(ctx, p, msg)
	default:
		return
	}
}

func (p *MatchActor) init(ctx actor.Context) {
	rec := p.setup.Record
	rec.CreatedAt = time.Now()
	if err := p.dc.Start(context.TODO(), &rec); err != nil {
		p.log.Error("save match record failed", zap.Error(err))
		p.state = Stopping
		ctx.Stop(ctx.Self())
		return
	}

	p.clock.OnTick = p.simTick
	p.clock.OnNetwork = p.networkTick
	p.state = Online
	p.startTickLoop(ctx)
	p.startFlushLoop(ctx)
	p.log.Info("match online",
		zap.Int("tick_rate", p.clock.TickRate),
		zap.Int("network_every", p.clock.NetworkEvery),
	)
}

func (p *MatchActor) MatchID() string {
	return p.setup.Record.MatchID
}

func (p *MatchActor) Simulation() *entity.Simulation {
	return p.sim
}

// hasAlliance 判断阵营是否在开局时持有城堡。
func (p *MatchActor) hasAlliance(a domain.Alliance) bool {
	_, ok := p.alliances[a]
	return ok
}

func (p *MatchActor) allianceConnected(a domain.Alliance) bool {
	for _, s := range p.subscribers {
		if s.alliance == a {
			return true
		}
	}
	return false
}

func (p *MatchActor) simTick(_ uint64, dt float64) {
	res := p.sim.Tick(dt)
	for _, r := range res.Results {
		connID, ok := p.issuers[r.Seq]
		delete(p.issuers, r.Seq)
		if r.Err == nil || !ok {
			continue
		}
		if s, ok := p.subscribers[connID]; ok {
			s.conn.PushBinary(PushRejected, rejection(r))
		}
	}
	if err := p.journal.RecordResults(res.Results); err != nil {
		p.log.Error("journal record results failed", zap.Error(err))
	}
	// 结束的那个 tick 不是网络 tick 时立即补一次，之后时钟不再推进
	if over, _ := p.sim.Over(); over && p.clock.Ticks%uint64(p.clock.NetworkEvery) != 0 {
		p.networkTick(p.clock.Ticks)
	}
}

func (p *MatchActor) networkTick(tick uint64) {
	events := p.sim.Flush()
	if err := p.journal.RecordEvents(p.sim.TickCount(), events); err != nil {
		p.log.Error("journal record events failed", zap.Error(err))
	}
	p.dc.Append(p.journal.Drain()...)

	frames := make([]EventFrame, 0, len(events))
	over := false
	for _, ev := range events {
		frames = append(frames, EventFrame{Kind: string(ev.Kind()), Data: ev})
		if mo, ok := ev.(domain.MatchOver); ok {
			over = true
			p.log.Info("match over", zap.Int("winner", mo.Winner), zap.Uint64("tick", mo.Tick))
		}
	}
	push := &EventsPush{Tick: tick, Events: frames}
	for _, s := range p.subscribers {
		s.conn.PushBinary(PushEvents, push)
	}

	if over {
		// 比赛结束后停止推进，保留 actor 以便查询快照
		p.stopTickLoop()
		_ = p.dc.Flush(context.TODO())
	}
}

func rejection(r entity.CommandResult) RejectedPush {
	code, msg := transport.ErrorCodeText(r.Err)
	return RejectedPush{Seq: r.Seq, Command: r.Command.CommandName(), Code: code, Message: msg}
}

// SetSpeed 调整推进速度，0 为暂停。
func (p *MatchActor) SetSpeed(ctx actor.Context, speed float64) {
	p.clock.Speed = max(0, speed)
	p.stopTickLoop()
	if over, _ := p.sim.Over(); !over {
		p.startTickLoop(ctx)
	}
}

func (p *MatchActor) status() messages.MHStatus {
	over, winner := p.sim.Over()
	return messages.MHStatus{
		MatchID:     p.MatchID(),
		Tick:        p.sim.TickCount(),
		Now:         p.sim.Now(),
		Speed:       p.clock.Speed,
		Subscribers: len(p.subscribers),
		Over:        over,
		Winner:      winner,
	}
}

func (p *MatchActor) startTickLoop(ctx actor.Context) {
	if p.tickStop != nil {
		return
	}
	interval := p.clock.Interval()
	if interval <= 0 {
		return
	}
	p.tickStop = make(chan struct{})
	p.startLoop(ctx, p.tickStop, interval, stepTick{})
}

func (p *MatchActor) stopTickLoop() {
	if p.tickStop == nil {
		return
	}
	close(p.tickStop)
	p.tickStop = nil
}

func (p *MatchActor) startFlushLoop(ctx actor.Context) {
	if p.flushStop != nil {
		return
	}
	interval := p.dc.FlushEvery()
	if interval <= 0 {
		return
	}
	p.flushStop = make(chan struct{})
	p.startLoop(ctx, p.flushStop, interval, flushTick{})
}

func (p *MatchActor) stopFlushLoop() {
	if p.flushStop == nil {
		return
	}
	close(p.flushStop)
	p.flushStop = nil
}

func (p *MatchActor) startLoop(ctx actor.Context, stop <-chan struct{}, every time.Duration, msg any) {
	self := ctx.Self()
	root := ctx.ActorSystem().Root

	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				root.Send(self, msg)
			case <-stop:
				return
			}
		}
	}()
}
