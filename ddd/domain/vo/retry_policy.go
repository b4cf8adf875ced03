package vo

import (
	"context"
	"time"
)

// SleepFunc 可替换的等待函数，测试中注入假时钟
type SleepFunc func(ctx context.Context, d time.Duration) error

// RetryPolicy 重试策略：最多重试 MaxRetries 次，第 n 次重试前等待 Delay(n)
type RetryPolicy struct {
	MaxRetries int
	Delay      func(attempt int) time.Duration
	Sleep      SleepFunc
}

// ExponentialBackoff base * 2^attempt，attempt 从 0 开始
func ExponentialBackoff(base time.Duration) func(attempt int) time.Duration {
	if base <= 0 {
		base = time.Second
	}
	return func(attempt int) time.Duration {
		if attempt < 0 {
			attempt = 0
		}
		if attempt > 16 {
			attempt = 16
		}
		return base << uint(attempt)
	}
}

// NewExponentialRetryPolicy 默认策略，使用真实计时器
func NewExponentialRetryPolicy(maxRetries int, base time.Duration) RetryPolicy {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return RetryPolicy{
		MaxRetries: maxRetries,
		Delay:      ExponentialBackoff(base),
		Sleep:      SleepContext,
	}
}

// SleepContext 可被 ctx 打断的等待
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Wait 执行第 attempt 次重试前的退避
func (p RetryPolicy) Wait(ctx context.Context, attempt int) error {
	delay := p.DelayFor(attempt)
	sleep := p.Sleep
	if sleep == nil {
		sleep = SleepContext
	}
	return sleep(ctx, delay)
}

// DelayFor 返回第 attempt 次重试前的等待时间
func (p RetryPolicy) DelayFor(attempt int) time.Duration {
	if p.Delay == nil {
		return ExponentialBackoff(time.Second)(attempt)
	}
	return p.Delay(attempt)
}
