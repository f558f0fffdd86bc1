package domain

import (
	"math"

	"Strongholds/internal/match/entity/geom"
	"Strongholds/internal/match/entity/spatial"
)

// DeploymentOrder 是一条向目标城堡的派兵指令。
// remaining 是下令时按当时守军快照出的承诺数量，不随守军变化重新计算。
type DeploymentOrder struct {
	Target    KeepID
	remaining [troopTypeCount]int
	cooldown  float64
}

func (o *DeploymentOrder) Remaining(t TroopType) int {
	return o.remaining[t]
}

func (o *DeploymentOrder) Cooldown() float64 {
	return o.cooldown
}

func (o *DeploymentOrder) empty() bool {
	return o.remaining[Archer] == 0 && o.remaining[Warrior] == 0
}

// Attacker 是到达城堡的士兵。
type Attacker struct {
	Alliance Alliance
	Type     TroopType
}

// CaptureEvent 由 Breach 返回，调用方负责放进出站事件流。
type CaptureEvent struct {
	KeepID KeepID
	From   Alliance
	To     Alliance
}

// Keep 是城堡。每 tick 都会依次处理远程射击、自然增长和派兵，几个关注点互不排斥。
type Keep struct {
	ID       KeepID
	Cell     geom.Cell
	Pos      geom.Vec2
	Alliance Alliance
	Native   TroopType

	garrison [troopTypeCount]int
	orders   []*DeploymentOrder

	fireCooldowns []float64
	targets       []spatial.ID
	targetCheck   float64

	// powerOverflow 是上一次交战没用完的攻击力，会带入下一次 Breach。
	powerOverflow float64
	accrual       float64

	occupancyChanged bool
}

func NewKeep(id KeepID, cell geom.Cell, alliance Alliance, native TroopType, garrison int) *Keep {
	k := &Keep{
		ID:               id,
		Cell:             cell,
		Pos:              cell.Center(),
		Alliance:         alliance,
		Native:           native,
		occupancyChanged: true,
	}
	k.garrison[native] = garrison
	return k
}

func (k *Keep) Garrison(t TroopType) int {
	return k.garrison[t]
}

func (k *Keep) Total() int {
	return k.garrison[Archer] + k.garrison[Warrior]
}

// SetGarrison 直接设置守军数量，用于初始化和测试场景。
func (k *Keep) SetGarrison(t TroopType, n int) {
	k.garrison[t] = max(0, n)
	k.occupancyChanged = true
}

func (k *Keep) PowerOverflow() float64 {
	return k.powerOverflow
}

func (k *Keep) Orders() []*DeploymentOrder {
	return k.orders
}

func (k *Keep) Order(target KeepID) (*DeploymentOrder, bool) {
	for _, o := range k.orders {
		if o.Target == target {
			return o, true
		}
	}
	return nil, false
}

func (k *Keep) Targets() []spatial.ID {
	return k.targets
}

func (k *Keep) FireSlots() int {
	return len(k.fireCooldowns)
}

// TakeOccupancyDelta 返回守军或阵营自上次读取后是否变化，并清除标记。
func (k *Keep) TakeOccupancyDelta() bool {
	changed := k.occupancyChanged
	k.occupancyChanged = false
	return changed
}

// SetDeploymentOrder 按当前守军 × percent（向下取整）下达或替换派兵指令。
// typ 为 nil 时两种兵种都派。替换已有指令只更新数量，保留冷却。
func (k *Keep) SetDeploymentOrder(target KeepID, typ *TroopType, percent float64) error {
	if math.IsNaN(percent) || percent <= 0 || percent > 1 {
		return ErrInvalidPercent.WithData("percent", percent)
	}
	if typ != nil && !typ.Valid() {
		return ErrInvalidTroopType.WithData("troop_type", uint8(*typ))
	}

	var committed [troopTypeCount]int
	for t := TroopType(0); t < troopTypeCount; t++ {
		if typ != nil && *typ != t {
			continue
		}
		committed[t] = int(math.Floor(float64(k.garrison[t]) * percent))
	}

	for i, o := range k.orders {
		if o.Target != target {
			continue
		}
		o.remaining = committed
		if o.empty() {
			k.orders = append(k.orders[:i], k.orders[i+1:]...)
		}
		return nil
	}

	o := &DeploymentOrder{Target: target, remaining: committed}
	if !o.empty() {
		k.orders = append(k.orders, o)
	}
	return nil
}

// CancelOrders 清空所有派兵指令。
func (k *Keep) CancelOrders() {
	k.orders = nil
}

// AdvanceOrders 推进所有指令的冷却，冷却到期的指令派出一波（战士优先，不超过每波上限），
// 然后重置冷却。剩余数量为零的指令被移除。返回本次派出的士兵数。
func (k *Keep) AdvanceOrders(dt float64, rules Rules, rng Rand, spawn func(target KeepID, t TroopType)) int {
	spawned := 0
	kept := k.orders[:0]
	for _, o := range k.orders {
		o.cooldown -= dt
		if o.cooldown > 0 {
			kept = append(kept, o)
			continue
		}

		k.clampOrder(o)
		budget := rules.MaxTroopsPerWave
		for _, t := range BreachOrder {
			n := min(o.remaining[t], k.garrison[t], budget)
			if n <= 0 {
				continue
			}
			k.garrison[t] -= n
			o.remaining[t] -= n
			budget -= n
			spawned += n
			k.occupancyChanged = true
			for i := 0; i < n; i++ {
				spawn(o.Target, t)
			}
		}
		k.clampOrder(o)

		o.cooldown = rules.WaveCooldown
		if rules.WaveJitter > 0 && rng != nil {
			o.cooldown += rng.Float64() * rules.WaveJitter
		}
		if !o.empty() {
			kept = append(kept, o)
		}
	}
	clear(k.orders[len(kept):])
	k.orders = kept
	return spawned
}

// clampOrder 把超过现有守军的承诺数量截断到守军数量。截断是永久的，之后增兵不会抬回去。
func (k *Keep) clampOrder(o *DeploymentOrder) {
	for t := TroopType(0); t < troopTypeCount; t++ {
		o.remaining[t] = min(o.remaining[t], k.garrison[t])
	}
}

// Accrue 每隔 AccrualTime 为有主城堡增加一名本地兵种。
func (k *Keep) Accrue(dt float64, rules Rules) {
	if k.Alliance == Neutral || rules.AccrualTime <= 0 {
		return
	}
	k.accrual += dt
	for k.accrual >= rules.AccrualTime {
		k.accrual -= rules.AccrualTime
		k.garrison[k.Native]++
		k.occupancyChanged = true
	}
}

// Reinforce 增加 n 名指定兵种。
func (k *Keep) Reinforce(t TroopType, n int) {
	if n <= 0 {
		return
	}
	k.garrison[t] += n
	k.occupancyChanged = true
}

// Breach 结算一名士兵到达城堡。
//
// 同阵营士兵直接入驻。敌方士兵的攻击力加上 powerOverflow 后，依次与战士、弓手逐个交战：
// 攻击力不小于该单位防御力时击杀它并扣除相应攻击力；否则剩余攻击力记入 powerOverflow，交战结束。
// 守军全灭时城堡被攻占，进攻方兵种留下一名驻守，未用完的攻击力成为新的 powerOverflow。
func (k *Keep) Breach(a Attacker, rules Rules) *CaptureEvent {
	if a.Alliance == k.Alliance {
		k.Reinforce(a.Type, 1)
		return nil
	}

	power := rules.Melee(a.Type) + k.powerOverflow
	k.powerOverflow = 0

	for _, t := range BreachOrder {
		def := rules.Defense(t)
		for k.garrison[t] > 0 {
			if power < def {
				k.powerOverflow = power
				return nil
			}
			k.garrison[t]--
			k.occupancyChanged = true
			power -= def
		}
	}

	ev := &CaptureEvent{KeepID: k.ID, From: k.Alliance, To: a.Alliance}
	k.Alliance = a.Alliance
	k.garrison = [troopTypeCount]int{}
	k.garrison[a.Type] = 1
	k.powerOverflow = power
	k.orders = nil
	k.targets = nil
	k.fireCooldowns = nil
	k.accrual = 0
	k.occupancyChanged = true
	return ev
}

// Neutralize 让城堡变为中立并取消所有指令，守军保留。
func (k *Keep) Neutralize() {
	if k.Alliance == Neutral {
		return
	}
	k.Alliance = Neutral
	k.orders = nil
	k.targets = nil
	k.accrual = 0
	k.occupancyChanged = true
}

// Targeting 是远程索敌需要的空间查询。
type Targeting interface {
	QueryRadius(point geom.Vec2, radius float64) []spatial.ID
}

// ResolveRangedFire 处理弓手射击：
// 每隔 TargetCheckTime 重新扫描射程内的敌方士兵替换目标集；
// 每名弓手一个射击冷却，新增弓手随机一个准备时间，弓手减少时截掉多余冷却；
// 冷却到期时从目标集中随机挑一个目标射击。
func (k *Keep) ResolveRangedFire(dt float64, rules Rules, grid Targeting, hostile func(spatial.ID) bool, rng Rand, fire func(target spatial.ID)) {
	k.targetCheck -= dt
	if k.targetCheck <= 0 {
		k.targetCheck = rules.TargetCheckTime
		k.targets = k.targets[:0]
		for _, id := range grid.QueryRadius(k.Pos, rules.ArcherBaseRange) {
			if hostile(id) {
				k.targets = append(k.targets, id)
			}
		}
	}

	archers := k.garrison[Archer]
	for len(k.fireCooldowns) < archers {
		k.fireCooldowns = append(k.fireCooldowns, rng.Float64()*rules.ArcherFireCooldown)
	}
	k.fireCooldowns = k.fireCooldowns[:archers]

	for i := range k.fireCooldowns {
		k.fireCooldowns[i] -= dt
		if k.fireCooldowns[i] > 0 {
			continue
		}
		if len(k.targets) == 0 {
			k.fireCooldowns[i] = 0
			continue
		}
		fire(k.targets[rng.Intn(len(k.targets))])
		k.fireCooldowns[i] = rules.ArcherFireCooldown
	}
}
