// Package clock 驱动模拟步进：每个模拟 tick 推进一次状态，每 NetworkEvery 个 tick 额外触发一次网络 tick。
package clock

import (
	"context"
	"time"
)

// Clock 是模拟时钟。回调在调用 Step 的 goroutine 上执行。
type Clock struct {
	TickRate     int     // 每秒模拟 tick 数
	NetworkEvery int     // 每多少个模拟 tick 触发一次网络 tick
	Speed        float64 // 1 为实时，0 为暂停，只影响 Run 的节奏

	Ticks uint64

	OnTick    func(tick uint64, dt float64)
	OnNetwork func(tick uint64)
}

func New(tickRate, networkEvery int) *Clock {
	if tickRate <= 0 {
		tickRate = 30
	}
	if networkEvery <= 0 {
		networkEvery = 1
	}
	return &Clock{
		TickRate:     tickRate,
		NetworkEvery: networkEvery,
		Speed:        1,
	}
}

// Dt 是一个模拟 tick 的固定步长（秒）。
func (c *Clock) Dt() float64 {
	return 1 / float64(c.TickRate)
}

// Interval 是按当前速度换算的真实时间间隔。暂停时返回 0。
func (c *Clock) Interval() time.Duration {
	if c.Speed <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / float64(c.TickRate) / c.Speed)
}

// Step 推进一个模拟 tick，返回本次是否同时是网络 tick。
func (c *Clock) Step() bool {
	c.Ticks++
	if c.OnTick != nil {
		c.OnTick(c.Ticks, c.Dt())
	}
	if c.Ticks%uint64(c.NetworkEvery) != 0 {
		return false
	}
	if c.OnNetwork != nil {
		c.OnNetwork(c.Ticks)
	}
	return true
}

// StepN 连续推进 n 个 tick，用于离线运行。
func (c *Clock) StepN(n int) {
	for i := 0; i < n; i++ {
		c.Step()
	}
}

// Run 按 Interval 节奏推进，直到 ctx 结束。处理慢于间隔时不补帧。
func (c *Clock) Run(ctx context.Context) error {
	for {
		interval := c.Interval()
		if interval <= 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(100 * time.Millisecond):
			}
			continue
		}

		start := time.Now()
		c.Step()

		wait := interval - time.Since(start)
		if wait <= 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}
