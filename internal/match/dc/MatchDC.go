package dc

import (
	"context"
	"errors"
	"sync"
	"time"

	"Strongholds/internal/match/app/port"
	"Strongholds/internal/match/entity"
	"Strongholds/modules/kit/logx"

	"go.uber.org/zap"
)

const (
	defaultFlushEvery = 1000 * time.Millisecond
	retryDelay        = 200 * time.Millisecond
	maxRetries        = 5
)

// MatchDC 缓冲比赛 actor 产生的回放记录，由后台 writer 按批落库。
// Append/Flush 只在 actor goroutine 调用；写库在 writerLoop 中进行，不阻塞模拟。
type MatchDC struct {
	repo       port.ReplayRepository
	matchID    string
	flushEvery time.Duration
	log        logx.Logger

	buffer []entity.ReplayEntry

	mu      sync.Mutex
	pending []*entity.ReplayBatch
	version uint64
	closed  bool

	wake chan struct{}
	stop chan struct{}
	done chan struct{}
}

func NewMatchDC(repo port.ReplayRepository, matchID string, flushEvery time.Duration, l logx.Logger) *MatchDC {
	if flushEvery <= 0 {
		flushEvery = defaultFlushEvery
	}
	if l == nil {
		l = logx.NewZapLogger(nil)
	}
	d := &MatchDC{
		repo:       repo,
		matchID:    matchID,
		flushEvery: flushEvery,
		log:        l,
		wake:       make(chan struct{}, 1),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	go d.writerLoop()
	return d
}

// Start 同步写入比赛的初始条件，失败时比赛不应开始。
func (d *MatchDC) Start(ctx context.Context, rec *entity.MatchRecord) error {
	if d.repo == nil {
		return errors.New("replay repository is nil")
	}
	return d.repo.SaveMatch(ctx, rec)
}

func (d *MatchDC) Append(entries ...entity.ReplayEntry) {
	d.buffer = append(d.buffer, entries...)
}

func (d *MatchDC) IsDirty() bool {
	return len(d.buffer) > 0
}

func (d *MatchDC) MatchID() string {
	return d.matchID
}

func (d *MatchDC) FlushEvery() time.Duration {
	return d.flushEvery
}

// Flush 把缓冲打成一批交给 writer，不等待写库完成。
func (d *MatchDC) Flush(ctx context.Context) error {
	_ = ctx
	if !d.IsDirty() {
		return nil
	}
	if d.repo == nil {
		return errors.New("replay repository is nil")
	}
	d.mu.Lock()
	d.version++
	b := &entity.ReplayBatch{Version: d.version, MatchID: d.matchID, Entries: d.buffer}
	d.mu.Unlock()
	d.buffer = nil

	d.enqueue(b)
	return nil
}

// Close 提交剩余记录并等待 writer 写完。
func (d *MatchDC) Close(ctx context.Context) error {
	_ = d.Flush(ctx)

	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.stop)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *MatchDC) enqueue(b *entity.ReplayBatch) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.log.Warn("match dc closed, drop batch", zap.String("match_id", d.matchID), zap.Int("entries", len(b.Entries)))
		return
	}
	d.pending = append(d.pending, b)
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
}

func (d *MatchDC) popPending() *entity.ReplayBatch {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.pending) == 0 {
		return nil
	}
	b := d.pending[0]
	d.pending = d.pending[1:]
	return b
}

// requeueOnError 把失败的批次放回队首，保持记录顺序。
func (d *MatchDC) requeueOnError(b *entity.ReplayBatch) {
	d.mu.Lock()
	d.pending = append([]*entity.ReplayBatch{b}, d.pending...)
	d.mu.Unlock()
}

func (d *MatchDC) writerLoop() {
	defer close(d.done)

	for {
		select {
		case <-d.wake:
			d.consumePending()
		case <-d.stop:
			d.consumePending()
			return
		}
	}
}

func (d *MatchDC) consumePending() {
	failures := 0
	for {
		b := d.popPending()
		if b == nil {
			return
		}
		if err := d.repo.AppendEntries(context.TODO(), b); err != nil {
			failures++
			if failures >= maxRetries {
				// 仓库持续不可用时放弃本批，避免 Close 永远等不到 writer 退出
				d.log.Error("replay batch dropped",
					zap.String("match_id", d.matchID),
					zap.Uint64("version", b.Version),
					zap.Int("entries", len(b.Entries)),
					zap.Error(err),
				)
				failures = 0
				continue
			}
			d.log.Warn("replay batch write failed, retry", zap.String("match_id", d.matchID), zap.Error(err))
			d.requeueOnError(b)
			time.Sleep(retryDelay)
			continue
		}
		failures = 0
	}
}
