package batch

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fastConfig keeps retries and pacing in the millisecond range.
func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.SleepInterval = 0
	cfg.Retry = RetryPolicy{
		MaxAttempts: 3,
		MinWait:     time.Millisecond,
		MaxWait:     2 * time.Millisecond,
		Multiplier:  time.Millisecond,
	}
	return cfg
}

func TestChunk(t *testing.T) {
	tests := []struct {
		name  string
		items []int
		size  int
		want  [][]int
	}{
		{"empty", nil, 3, [][]int{}},
		{"exact", []int{1, 2, 3, 4}, 2, [][]int{{1, 2}, {3, 4}}},
		{"short tail", []int{1, 2, 3, 4, 5}, 2, [][]int{{1, 2}, {3, 4}, {5}}},
		{"size larger than input", []int{1, 2}, 10, [][]int{{1, 2}}},
		{"size one", []int{1, 2, 3}, 1, [][]int{{1}, {2}, {3}}},
		{"max int size", []int{1, 2, 3}, math.MaxInt, [][]int{{1, 2, 3}}},
		{"max int size empty", nil, math.MaxInt, [][]int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Chunk(tt.items, tt.size)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChunk_InvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		_, err := Chunk([]string{"a"}, size)
		assert.ErrorIs(t, err, ErrInvalidBatchSize)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 1000, cfg.BatchSize)
	assert.Equal(t, 60*time.Second, cfg.SleepInterval)
	assert.Zero(t, cfg.Concurrency)
	assert.Zero(t, cfg.RequestsPerMinute)
	assert.Equal(t, 11, cfg.Retry.MaxAttempts)
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"zero batch size", func(c *Config) { c.BatchSize = 0 }, ErrInvalidBatchSize},
		{"negative concurrency", func(c *Config) { c.Concurrency = -1 }, ErrInvalidConcurrency},
		{"negative sleep", func(c *Config) { c.SleepInterval = -time.Second }, ErrInvalidWait},
		{"negative rpm", func(c *Config) { c.RequestsPerMinute = -5 }, ErrInvalidWait},
		{"zero attempts", func(c *Config) { c.Retry.MaxAttempts = 0 }, ErrInvalidMaxAttempts},
		{"inverted waits", func(c *Config) { c.Retry.MaxWait = time.Millisecond }, ErrInvalidWait},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.want)
		})
	}
}

func TestNewBase_Options(t *testing.T) {
	cfg := fastConfig()
	cfg.BatchSize = 8
	cfg.RequestsPerMinute = 120

	b, err := newBase("test", []Option{WithConfig(cfg), WithLogger(nil), WithProgress(nil, 0)})
	require.NoError(t, err)
	assert.Equal(t, 8, b.concurrency(), "concurrency defaults to batch size")
	assert.NotNil(t, b.limiter)
	assert.NotNil(t, b.logger)
	assert.Nil(t, b.newProgress(10), "no writer, no tracker")

	cfg.Concurrency = 3
	b, err = newBase("test", []Option{WithConfig(cfg)})
	require.NoError(t, err)
	assert.Equal(t, 3, b.concurrency())
}

func TestNewBase_InvalidOption(t *testing.T) {
	_, err := newBase("test", []Option{WithConfig(Config{})})
	assert.ErrorIs(t, err, ErrInvalidBatchSize)

	_, err = newBase("test", []Option{WithCache(nil, -time.Second)})
	assert.ErrorIs(t, err, ErrInvalidWait)
}
