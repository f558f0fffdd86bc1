package utils

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// 雪花 id 布局：41 位毫秒时间 | 10 位节点 | 12 位序号。
// 比赛 id 和未配置种子的比赛的随机种子都从这里取。
const (
	// 2026-01-01 00:00:00 UTC
	epochMilli int64 = 1767225600000

	nodeBits = 10
	seqBits  = 12

	maxNode = 1<<nodeBits - 1
	seqMask = 1<<seqBits - 1

	// NodeEnv 指定本进程的节点号，多实例部署时各自不同。
	NodeEnv = "STRONGHOLDS_NODE_ID"
)

type Snowflake struct {
	mu     sync.Mutex
	node   int64
	lastMS int64
	seq    int64
	now    func() int64
}

func NewSnowflake(node int64) (*Snowflake, error) {
	if node < 0 || node > maxNode {
		return nil, fmt.Errorf("snowflake node out of range [0,%d]: %d", maxNode, node)
	}
	return &Snowflake{node: node, now: func() int64 { return time.Now().UnixMilli() }}, nil
}

// Next 返回单调递增的 id；时钟回拨时沿用上一毫秒，序号用尽时等到下一毫秒。
func (s *Snowflake) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	ms := max(s.now(), s.lastMS)
	if ms == s.lastMS {
		s.seq = (s.seq + 1) & seqMask
		for s.seq == 0 && ms <= s.lastMS {
			ms = s.now()
		}
	} else {
		s.seq = 0
	}
	s.lastMS = ms
	return (ms-epochMilli)<<(nodeBits+seqBits) | s.node<<seqBits | s.seq
}

var defaultSnowflake = sync.OnceValues(func() (*Snowflake, error) {
	node := int64(1)
	if raw := strings.TrimSpace(os.Getenv(NodeEnv)); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", NodeEnv, err)
		}
		node = v
	}
	return NewSnowflake(node)
})

// NewMatchID 分配一个比赛 id："m" 加 36 进制雪花 id。
func NewMatchID() (string, error) {
	gen, err := defaultSnowflake()
	if err != nil {
		return "", err
	}
	return "m" + strconv.FormatInt(gen.Next(), 36), nil
}

// NewSeed 分配一个比赛种子，同一进程内不会重复。
func NewSeed() (int64, error) {
	gen, err := defaultSnowflake()
	if err != nil {
		return 0, err
	}
	return gen.Next(), nil
}
