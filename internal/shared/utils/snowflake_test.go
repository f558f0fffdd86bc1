package utils

import (
	"strings"
	"testing"
)

func TestSnowflake_节点号校验(t *testing.T) {
	if _, err := NewSnowflake(-1); err == nil {
		t.Fatalf("负节点号应报错")
	}
	if _, err := NewSnowflake(maxNode + 1); err == nil {
		t.Fatalf("超出范围的节点号应报错")
	}
}

func TestSnowflake_同一毫秒内递增(t *testing.T) {
	s, err := NewSnowflake(3)
	if err != nil {
		t.Fatalf("NewSnowflake err=%v", err)
	}
	s.now = func() int64 { return epochMilli + 1000 }

	a, b := s.Next(), s.Next()
	if b != a+1 {
		t.Fatalf("同一毫秒内序号应加一：a=%d b=%d", a, b)
	}
	if node := (a >> seqBits) & maxNode; node != 3 {
		t.Fatalf("节点号未写入 id：%d", node)
	}
}

func TestSnowflake_时钟回拨不回退(t *testing.T) {
	s, _ := NewSnowflake(1)
	ms := epochMilli + 5000
	s.now = func() int64 { return ms }
	a := s.Next()

	ms -= 2000
	if b := s.Next(); b <= a {
		t.Fatalf("时钟回拨后 id 不应变小：a=%d b=%d", a, b)
	}
}

func TestSnowflake_序号用尽进位(t *testing.T) {
	s, _ := NewSnowflake(1)
	ms := epochMilli + 1
	calls := 0
	s.now = func() int64 {
		calls++
		if calls > seqMask+2 {
			return ms + 1
		}
		return ms
	}
	var last int64
	for i := 0; i <= seqMask+1; i++ {
		id := s.Next()
		if id <= last {
			t.Fatalf("第 %d 个 id 未递增", i)
		}
		last = id
	}
	if s.lastMS != ms+1 {
		t.Fatalf("序号用尽后应进入下一毫秒，lastMS=%d", s.lastMS)
	}
}

func TestNewMatchID(t *testing.T) {
	a, err := NewMatchID()
	if err != nil {
		t.Fatalf("NewMatchID err=%v", err)
	}
	b, _ := NewMatchID()
	if !strings.HasPrefix(a, "m") || a == b {
		t.Fatalf("比赛 id 异常：%q %q", a, b)
	}
}
