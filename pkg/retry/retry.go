package retry

import (
	"context"
	"log/slog"
	"math"
	"math/rand"
	"time"
)

// Options 控制一次重试循环的参数，由各调用点按场景取预设
type Options struct {
	MaxAttempts int
	BaseDelay   time.Duration
	// Retryable 判定错误是否值得重试，nil 表示任何错误都不重试
	Retryable func(error) bool
	// Sleep 可注入，测试时用于记录退避序列
	Sleep func(time.Duration)
	// OnRetry 每次决定重试时回调一次，attempt 从 1 起计，用于重试计数
	OnRetry func(attempt int)
}

// WithOnRetry 在预设参数上挂接重试回调
func (o Options) WithOnRetry(fn func(attempt int)) Options {
	o.OnRetry = fn
	return o
}

// Generation 生成类调用的预设：3 次尝试，1s 基础退避
func Generation(retryable func(error) bool) Options {
	return Options{MaxAttempts: 3, BaseDelay: time.Second, Retryable: retryable}
}

// Media 视觉/音频类调用的预设：3 次尝试，2s 基础退避
func Media(retryable func(error) bool) Options {
	return Options{MaxAttempts: 3, BaseDelay: time.Second * 2, Retryable: retryable}
}

// Do 以指数退避执行 fn：第 i 次失败后等待 base*2^i 加 [0,1) 秒抖动。
// 不可重试的错误以及最后一次尝试的错误原样返回。
func Do[T any](ctx context.Context, opts Options, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	var lastErr error
	for attempt := 0; attempt < opts.MaxAttempts; attempt++ {
		res, err := fn(ctx)
		if err == nil {
			return res, nil
		}
		lastErr = err

		if opts.Retryable == nil || !opts.Retryable(err) || attempt == opts.MaxAttempts-1 {
			return zero, err
		}

		if opts.OnRetry != nil {
			opts.OnRetry(attempt + 1)
		}

		delay := Backoff(opts.BaseDelay, attempt)
		slog.Warn("remote call overloaded, retrying",
			slog.Int("attempt", attempt+1),
			slog.Int("max_attempts", opts.MaxAttempts),
			slog.Duration("delay", delay),
			slog.String("error", err.Error()))
		sleep(delay)
	}
	return zero, lastErr
}

// Backoff 计算第 attempt 次失败后的等待时长（含抖动）
func Backoff(base time.Duration, attempt int) time.Duration {
	backoff := float64(base) * math.Pow(2, float64(attempt))
	jitter := rand.Float64() * float64(time.Second)
	return time.Duration(backoff + jitter)
}
