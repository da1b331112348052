package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errOverloaded = errors.New("503 model overloaded")

func isOverloaded(err error) bool {
	return errors.Is(err, errOverloaded)
}

func TestDoRetriesOverloadThenSucceeds(t *testing.T) {
	var sleeps []time.Duration
	opts := Generation(isOverloaded)
	opts.Sleep = func(d time.Duration) { sleeps = append(sleeps, d) }

	calls := 0
	res, err := Do(context.Background(), opts, func(ctx context.Context) (string, error) {
		calls++
		if calls <= 2 {
			return "", errOverloaded
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", res)
	assert.Equal(t, 3, calls)
	require.Len(t, sleeps, 2)
	// 指数退避：第二次等待必须长于第一次，即使叠加了抖动
	assert.Greater(t, sleeps[1], sleeps[0])
	assert.GreaterOrEqual(t, sleeps[0], time.Second)
	assert.Less(t, sleeps[0], time.Second*2)
	assert.GreaterOrEqual(t, sleeps[1], time.Second*2)
	assert.Less(t, sleeps[1], time.Second*3)
}

func TestDoReportsEachRetry(t *testing.T) {
	var attempts []int
	opts := Generation(isOverloaded).WithOnRetry(func(attempt int) {
		attempts = append(attempts, attempt)
	})
	opts.Sleep = func(time.Duration) {}

	calls := 0
	res, err := Do(context.Background(), opts, func(ctx context.Context) (string, error) {
		calls++
		if calls <= 2 {
			return "", errOverloaded
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", res)
	// 两次过载各回调一次，不可重试的最终结果不回调
	assert.Equal(t, []int{1, 2}, attempts)
}

func TestDoExhaustsRetries(t *testing.T) {
	var sleeps []time.Duration
	opts := Generation(isOverloaded)
	opts.Sleep = func(d time.Duration) { sleeps = append(sleeps, d) }

	calls := 0
	_, err := Do(context.Background(), opts, func(ctx context.Context) (string, error) {
		calls++
		return "", errOverloaded
	})

	require.ErrorIs(t, err, errOverloaded)
	assert.Equal(t, 3, calls)
	// 最后一次失败后不再等待
	assert.Len(t, sleeps, 2)
}

func TestDoDoesNotRetryFatalError(t *testing.T) {
	fatal := errors.New("400 invalid argument")
	opts := Generation(isOverloaded)
	opts.Sleep = func(time.Duration) { t.Fatal("should not sleep on fatal error") }

	calls := 0
	_, err := Do(context.Background(), opts, func(ctx context.Context) (int, error) {
		calls++
		return 0, fatal
	})

	require.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, calls)
}

func TestMediaPresetUsesLongerBase(t *testing.T) {
	var sleeps []time.Duration
	opts := Media(isOverloaded)
	opts.Sleep = func(d time.Duration) { sleeps = append(sleeps, d) }

	calls := 0
	_, err := Do(context.Background(), opts, func(ctx context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", errOverloaded
		}
		return "text", nil
	})

	require.NoError(t, err)
	require.Len(t, sleeps, 1)
	assert.GreaterOrEqual(t, sleeps[0], time.Second*2)
}
