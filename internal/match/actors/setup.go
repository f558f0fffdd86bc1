package actors

import "Strongholds/internal/match/entity"

// MatchSetup 是创建一局比赛所需的全部参数。
type MatchSetup struct {
	Record       entity.MatchRecord
	NetworkEvery int
	Speed        float64
}

// SetupFunc 为新比赛生成参数，由 service 层按配置实现。
type SetupFunc func(matchID string) (MatchSetup, error)
