package port

import (
	"context"

	"Strongholds/internal/match/entity"
)

// ReplayRepository 持久化比赛的初始条件和回放日志。
// AppendEntries 必须幂等：同一 (match_id, seq) 重复写入时保留第一次的内容。
type ReplayRepository interface {
	SaveMatch(ctx context.Context, rec *entity.MatchRecord) error
	AppendEntries(ctx context.Context, batch *entity.ReplayBatch) error
	LoadMatch(ctx context.Context, matchID string) (*entity.MatchRecord, error)
	LoadEntries(ctx context.Context, matchID string) ([]entity.ReplayEntry, error)
}
