package entity

import (
	"math/rand"

	"Strongholds/internal/match/entity/domain"
	"Strongholds/internal/match/entity/geom"
	"Strongholds/internal/match/entity/navigation"
	"Strongholds/internal/match/entity/spatial"
	"Strongholds/internal/match/entity/territory"
	"Strongholds/internal/match/entity/tilemap"
	"Strongholds/modules/kit/logx"

	"go.uber.org/zap"
)

type options struct {
	rules  domain.Rules
	seed   int64
	logger logx.Logger
}

type Option func(*options)

func WithRules(r domain.Rules) Option {
	return func(o *options) { o.rules = r }
}

// WithSeed 固定随机种子，同一地图同一指令序列会得到完全相同的事件流。
func WithSeed(seed int64) Option {
	return func(o *options) { o.seed = seed }
}

func WithLogger(l logx.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

type resourceTile struct {
	cell  geom.Cell
	timer float64
	ripe  bool
}

// Simulation 是一局比赛的权威状态，只允许单个 goroutine（比赛 actor）访问。
type Simulation struct {
	rules domain.Rules
	seed  int64
	rng   *rand.Rand
	log   logx.Logger

	tm     *tilemap.TileMap
	grid   *spatial.Grid
	paths  *navigation.Table
	owners *territory.Ownership
	arena  arena

	resources []*resourceTile

	now  float64
	tick uint64
	seq  uint64

	pending []pendingCommand
	outbox  []domain.Event

	contested bool
	over      bool
	winner    domain.Alliance
}

// Load 解析地图文本并创建模拟。
func Load(text string, opts ...Option) (*Simulation, error) {
	tm, seeds, err := tilemap.Parse(text)
	if err != nil {
		return nil, err
	}
	return New(tm, seeds, opts...)
}

// New 按城堡种子初始化模拟：预计算全部路径和领土，城堡按地图扫描顺序编号。
func New(tm *tilemap.TileMap, seeds []tilemap.KeepSeed, opts ...Option) (*Simulation, error) {
	o := options{
		rules:  domain.DefaultRules(),
		seed:   1,
		logger: logx.NewZapLogger(nil),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if len(seeds) == 0 {
		return nil, tilemap.ErrMalformedMap.WithData("reason", "no keeps")
	}

	cells := make([]geom.Cell, len(seeds))
	for i, sd := range seeds {
		cells[i] = sd.Cell
	}

	s := &Simulation{
		rules:  o.rules,
		seed:   o.seed,
		rng:    rand.New(rand.NewSource(o.seed)),
		log:    o.logger,
		tm:     tm,
		grid:   spatial.NewGrid(float64(tm.Width()), float64(tm.Height()), o.rules.PartitionSize),
		paths:  navigation.Build(tm, cells),
		owners: territory.FloodFill(tm, cells),
		arena:  newArena(),
	}

	alliances := make(map[domain.Alliance]struct{})
	for i, sd := range seeds {
		native := domain.Archer
		if sd.Warriors {
			native = domain.Warrior
		}
		k := domain.NewKeep(i, sd.Cell, sd.Alliance, native, o.rules.InitialGarrison)
		s.arena.addKeep(k)
		if sd.Alliance != domain.Neutral {
			alliances[sd.Alliance] = struct{}{}
		}
	}
	s.contested = len(alliances) >= 2

	for _, c := range tm.Resources() {
		s.resources = append(s.resources, &resourceTile{cell: c, timer: o.rules.ResourceGrowTime})
	}

	s.log.Info("simulation created",
		zap.Int("width", tm.Width()),
		zap.Int("height", tm.Height()),
		zap.Int("keeps", len(seeds)),
		zap.Int("routes", s.paths.Len()),
		zap.Int64("seed", o.seed),
	)
	return s, nil
}

func (s *Simulation) Rules() domain.Rules             { return s.rules }
func (s *Simulation) Seed() int64                     { return s.seed }
func (s *Simulation) Now() float64                    { return s.now }
func (s *Simulation) TickCount() uint64               { return s.tick }
func (s *Simulation) Map() *tilemap.TileMap           { return s.tm }
func (s *Simulation) Grid() *spatial.Grid             { return s.grid }
func (s *Simulation) Paths() *navigation.Table        { return s.paths }
func (s *Simulation) Territory() *territory.Ownership { return s.owners }
func (s *Simulation) Entity(id spatial.ID) (*Entity, bool) {
	e := s.arena.get(id)
	return e, e != nil
}

func (s *Simulation) Keep(id domain.KeepID) (*domain.Keep, bool) {
	if id < 0 || id >= len(s.arena.keeps) {
		return nil, false
	}
	return s.arena.keeps[id], true
}

func (s *Simulation) Keeps() []*domain.Keep {
	return s.arena.keeps
}

// SoldierIDs 返回按 id 升序的在场士兵。
func (s *Simulation) SoldierIDs() []spatial.ID {
	return s.arena.soldierIDs()
}

func (s *Simulation) ProjectileIDs() []spatial.ID {
	return s.arena.projectileIDs()
}

// Over 返回比赛是否已决出胜负及胜方。
func (s *Simulation) Over() (bool, domain.Alliance) {
	return s.over, s.winner
}

// TickResult 汇总一次 Tick 的指令执行结果。
type TickResult struct {
	Tick    uint64
	Now     float64
	Results []CommandResult
}

// Tick 推进一个模拟步长。顺序固定：
// 执行待处理指令，按 id 更新城堡（射击、增长、派兵），推进士兵并结算到达，
// 结算落地的箭，生长资源，最后判定胜负。
func (s *Simulation) Tick(dt float64) TickResult {
	s.tick++
	s.now += dt

	results := s.drain()

	for _, k := range s.arena.keeps {
		s.updateKeep(k, dt)
	}
	s.advanceSoldiers(dt)
	s.resolveProjectiles()
	s.growResources(dt)
	s.checkWinner()

	return TickResult{Tick: s.tick, Now: s.now, Results: results}
}

func (s *Simulation) updateKeep(k *domain.Keep, dt float64) {
	k.ResolveRangedFire(dt, s.rules, s.grid, s.hostileTo(k.Alliance), s.rng, func(target spatial.ID) {
		s.fire(k, target)
	})
	if s.rules.AutoAccrual {
		k.Accrue(dt, s.rules)
	}
	k.AdvanceOrders(dt, s.rules, s.rng, func(target domain.KeepID, t domain.TroopType) {
		s.spawn(k, target, t)
	})
}

// hostileTo 判断 id 是否为 alliance 的敌方士兵。
func (s *Simulation) hostileTo(alliance domain.Alliance) func(spatial.ID) bool {
	return func(id spatial.ID) bool {
		e := s.arena.get(id)
		return e != nil && e.Kind == KindSoldier && e.Soldier.Alliance != alliance
	}
}

func (s *Simulation) spawn(k *domain.Keep, target domain.KeepID, t domain.TroopType) {
	route, ok := s.paths.Path(k.ID, target)
	if !ok {
		k.Reinforce(t, 1)
		s.log.Warn("spawn without route", zap.Int("keep_id", k.ID), zap.Int("target", target))
		return
	}
	sol := domain.NewSoldier(s.arena.alloc(), k.Alliance, t, k.ID, target, route)
	if err := s.grid.Insert(sol.ID, sol.Pos, s.rules.SoldierRadius); err != nil {
		s.log.Error("insert soldier", zap.Uint64("soldier_id", sol.ID), zap.Error(err))
		return
	}
	s.arena.addSoldier(sol)
}

func (s *Simulation) fire(k *domain.Keep, target spatial.ID) {
	e := s.arena.get(target)
	if e == nil || e.Kind != KindSoldier {
		return
	}
	p, ratio, ok := domain.NewProjectile(0, k.ID, k.Alliance, s.now, k.Pos, e.Soldier.Pos, s.rules)
	if !ok {
		s.log.Debug("shot skipped, target out of ballistic range",
			zap.Int("keep_id", k.ID),
			zap.Uint64("target", target),
			zap.Float64("ratio", ratio),
		)
		return
	}
	p.ID = s.arena.alloc()
	s.arena.addProjectile(p)

	h, vz := p.Velocity()
	s.emit(domain.ProjectileFired{
		ID:        p.ID,
		KeepID:    k.ID,
		Born:      p.Born,
		Start:     p.Start,
		Velocity:  h,
		VelocityZ: vz,
		Landing:   p.Landing,
		Duration:  p.Duration,
	})
}

func (s *Simulation) advanceSoldiers(dt float64) {
	for _, id := range s.arena.soldierIDs() {
		e := s.arena.get(id)
		if e == nil {
			continue
		}
		sol := e.Soldier
		if sol.Advance(dt, s.rules.SoldierSpeed) {
			s.arrive(sol)
			s.removeSoldier(id)
			continue
		}
		pos, err := s.grid.Move(id, sol.Pos)
		if err != nil {
			s.log.Error("move soldier", zap.Uint64("soldier_id", id), zap.Error(err))
			continue
		}
		sol.Pos = pos
	}
}

func (s *Simulation) arrive(sol *domain.Soldier) {
	k, ok := s.Keep(sol.Target)
	if !ok {
		return
	}
	ev := k.Breach(domain.Attacker{Alliance: sol.Alliance, Type: sol.Type}, s.rules)
	if ev == nil {
		return
	}
	s.log.Info("keep captured",
		zap.Int("keep_id", ev.KeepID),
		zap.Int("from", ev.From),
		zap.Int("to", ev.To),
		zap.Uint64("tick", s.tick),
	)
	s.emit(domain.KeepCaptured{KeepID: ev.KeepID, From: ev.From, To: ev.To})
}

func (s *Simulation) resolveProjectiles() {
	for _, id := range s.arena.projectileIDs() {
		e := s.arena.get(id)
		if e == nil {
			continue
		}
		p := e.Projectile
		if !p.Landed(s.now) {
			continue
		}
		if hit, ok := s.grid.FindFirst(p.Landing, s.rules.ArrowHitRadius, s.hostileTo(p.Alliance)); ok {
			s.removeSoldier(hit)
		}
		s.arena.remove(id)
	}
}

func (s *Simulation) removeSoldier(id spatial.ID) {
	if e := s.arena.remove(id); e == nil {
		return
	}
	if err := s.grid.Remove(id); err != nil {
		s.log.Error("remove soldier", zap.Uint64("soldier_id", id), zap.Error(err))
	}
}

func (s *Simulation) growResources(dt float64) {
	for _, r := range s.resources {
		if r.ripe {
			continue
		}
		r.timer -= dt
		if r.timer <= 0 {
			r.ripe = true
			s.emit(domain.ResourceGrown{Cell: r.cell})
		}
	}
}

func (s *Simulation) resourceAt(c geom.Cell) *resourceTile {
	for _, r := range s.resources {
		if r.cell == c {
			return r
		}
	}
	return nil
}

// checkWinner 在开局至少两个阵营的比赛里，只剩一个阵营拥有城堡或在途士兵时结束比赛。
func (s *Simulation) checkWinner() {
	if s.over || !s.contested {
		return
	}
	alive := make(map[domain.Alliance]struct{})
	for _, k := range s.arena.keeps {
		if k.Alliance != domain.Neutral {
			alive[k.Alliance] = struct{}{}
		}
	}
	for _, id := range s.arena.soldiers {
		alive[s.arena.get(id).Soldier.Alliance] = struct{}{}
	}
	if len(alive) > 1 {
		return
	}

	s.over = true
	for a := range alive {
		s.winner = a
	}
	s.log.Info("match over", zap.Int("winner", s.winner), zap.Uint64("tick", s.tick))
	s.emit(domain.MatchOver{Tick: s.tick, Winner: s.winner})
}

func (s *Simulation) emit(ev domain.Event) {
	s.outbox = append(s.outbox, ev)
}
