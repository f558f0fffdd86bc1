package service

import (
	"os"

	"Strongholds/internal/match/actors"
	"Strongholds/internal/match/entity"
	"Strongholds/internal/match/entity/domain"
	"Strongholds/internal/match/entity/mapgen"
	"Strongholds/internal/shared/serverconfig"
	"Strongholds/internal/shared/utils"
	"Strongholds/modules/kit/errx"
)

// NewSetupFunc 按比赛配置生成每局的初始条件。
// Seed 为 0 时每局分配一个新种子，生成的地图和随机数因此各不相同。
func NewSetupFunc(cfg serverconfig.MatchConfig, rules domain.Rules) actors.SetupFunc {
	return func(matchID string) (actors.MatchSetup, error) {
		seed := cfg.Seed
		if seed == 0 {
			id, err := utils.NewSeed()
			if err != nil {
				return actors.MatchSetup{}, errx.ErrInternal.WithCause(err)
			}
			seed = id
		}
		text, err := MapText(cfg, seed)
		if err != nil {
			return actors.MatchSetup{}, err
		}
		return actors.MatchSetup{
			Record: entity.MatchRecord{
				MatchID:  matchID,
				Seed:     seed,
				MapText:  text,
				TickRate: cfg.TickRate,
				Rules:    rules,
			},
			NetworkEvery: cfg.NetworkEvery,
			Speed:        cfg.Speed,
		}, nil
	}
}

// MapText 读取地图文件，或在 Generate 打开时按种子生成地图。
func MapText(cfg serverconfig.MatchConfig, seed int64) (string, error) {
	if !cfg.Generate {
		if cfg.MapFile == "" {
			return "", errx.ErrInvalidSetup.WithData("map_file", "")
		}
		raw, err := os.ReadFile(cfg.MapFile)
		if err != nil {
			return "", errx.ErrInvalidSetup.WithCause(err).WithData("map_file", cfg.MapFile)
		}
		return string(raw), nil
	}

	gen := mapgen.DefaultConfig()
	gen.Seed = seed
	if cfg.Width > 0 {
		gen.Width = cfg.Width
	}
	if cfg.Height > 0 {
		gen.Height = cfg.Height
	}
	if cfg.Keeps > 0 {
		gen.Keeps = cfg.Keeps
	}
	if cfg.Alliances > 0 {
		gen.Alliances = cfg.Alliances
	}
	return mapgen.Generate(gen)
}
