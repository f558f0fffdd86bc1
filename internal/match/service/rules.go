package service

import (
	"strings"

	"Strongholds/internal/match/entity/domain"
	"Strongholds/internal/shared/serverconfig"
	"Strongholds/modules/kit/errx"
)

const (
	AccrualAuto    = "auto"
	AccrualHarvest = "harvest"
)

// RulesFromConfig 以默认数值为底，用配置中的非零项覆盖。
func RulesFromConfig(cfg serverconfig.RulesConfig, accrualMode string) (domain.Rules, error) {
	r := domain.DefaultRules()

	setInt(&r.MaxTroopsPerWave, cfg.MaxTroopsPerWave)
	setInt(&r.InitialGarrison, cfg.InitialGarrison)
	setFloat(&r.WaveCooldown, cfg.WaveCooldown)
	setFloat(&r.WaveJitter, cfg.WaveJitter)
	setFloat(&r.AccrualTime, cfg.AccrualTime)
	setFloat(&r.ArcherMelee, cfg.ArcherMelee)
	setFloat(&r.ArcherDefense, cfg.ArcherDefense)
	setFloat(&r.WarriorMelee, cfg.WarriorMelee)
	setFloat(&r.WarriorDefense, cfg.WarriorDefense)
	setFloat(&r.SoldierSpeed, cfg.SoldierSpeed)
	setFloat(&r.SoldierRadius, cfg.SoldierRadius)
	setFloat(&r.TargetCheckTime, cfg.TargetCheckTime)
	setFloat(&r.ArcherBaseRange, cfg.ArcherBaseRange)
	setFloat(&r.ArcherFireCooldown, cfg.ArcherFireCooldown)
	setFloat(&r.Gravity, cfg.Gravity)
	setFloat(&r.ArrowSpeed, cfg.ArrowSpeed)
	setFloat(&r.ArrowHitRadius, cfg.ArrowHitRadius)
	setFloat(&r.ResourceGrowTime, cfg.ResourceGrowTime)
	setFloat(&r.PartitionSize, cfg.PartitionSize)

	switch strings.ToLower(accrualMode) {
	case "", AccrualAuto:
		r.AutoAccrual = true
	case AccrualHarvest:
		r.AutoAccrual = false
	default:
		return r, errx.ErrInvalidSetup.WithData("accrual_mode", accrualMode)
	}
	return r, nil
}

func setInt(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}

func setFloat(dst *float64, v float64) {
	if v > 0 {
		*dst = v
	}
}
