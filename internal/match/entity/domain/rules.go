package domain

// Rules 是一局比赛的数值配置，时间单位为秒，距离单位为格。
type Rules struct {
	MaxTroopsPerWave int
	WaveCooldown     float64
	WaveJitter       float64
	InitialGarrison  int
	AccrualTime      float64
	AutoAccrual      bool

	ArcherMelee    float64
	ArcherDefense  float64
	WarriorMelee   float64
	WarriorDefense float64

	SoldierSpeed  float64
	SoldierRadius float64

	TargetCheckTime    float64
	ArcherBaseRange    float64
	ArcherFireCooldown float64
	Gravity            float64
	ArrowSpeed         float64
	ArrowHitRadius     float64

	ResourceGrowTime float64
	PartitionSize    float64
}

func DefaultRules() Rules {
	return Rules{
		MaxTroopsPerWave: 4,
		WaveCooldown:     1.0,
		WaveJitter:       0.25,
		InitialGarrison:  10,
		AccrualTime:      2.0,
		AutoAccrual:      true,

		ArcherMelee:    1,
		ArcherDefense:  1,
		WarriorMelee:   2,
		WarriorDefense: 3,

		SoldierSpeed:  2.0,
		SoldierRadius: 0.25,

		TargetCheckTime:    0.5,
		ArcherBaseRange:    4.0,
		ArcherFireCooldown: 2.0,
		Gravity:            9.8,
		ArrowSpeed:         10.0,
		ArrowHitRadius:     0.35,

		ResourceGrowTime: 10,
		PartitionSize:    4,
	}
}

func (r Rules) Melee(t TroopType) float64 {
	if t == Warrior {
		return r.WarriorMelee
	}
	return r.ArcherMelee
}

func (r Rules) Defense(t TroopType) float64 {
	if t == Warrior {
		return r.WarriorDefense
	}
	return r.ArcherDefense
}

// Rand 是模拟使用的随机源，*rand.Rand 满足该接口。
type Rand interface {
	Float64() float64
	Intn(n int) int
}
