package batch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/poiesic/llmbatch/storage"
	"golang.org/x/time/rate"
)

const (
	// DefaultBatchSize is the number of inputs dispatched together.
	DefaultBatchSize = 1000

	// DefaultSleepInterval is the pause after a full chat batch.
	DefaultSleepInterval = 60 * time.Second
)

// Config holds the batching behavior shared by chat and embedding batchers.
type Config struct {
	// BatchSize is the number of inputs per batch. For chat it bounds how
	// many prompts are dispatched before pacing; for embeddings it is the
	// number of inputs per request.
	BatchSize int

	// Concurrency caps in-flight requests. Zero means BatchSize.
	Concurrency int

	// SleepInterval is slept after every full chat batch that is followed
	// by another. The final batch is never followed by a sleep, even when
	// full. Zero disables pacing sleeps.
	SleepInterval time.Duration

	// RequestsPerMinute enables a fixed-rate limiter in front of every
	// request. Zero disables it.
	RequestsPerMinute int

	Retry RetryPolicy

	// ContinueOnError records per-item failures instead of aborting the call.
	// Chat only; embedding calls always fail fast.
	ContinueOnError bool

	// Verbose logs dispatch and pacing at info level instead of debug.
	Verbose bool
}

// DefaultConfig returns the default batching configuration.
func DefaultConfig() Config {
	return Config{
		BatchSize:     DefaultBatchSize,
		SleepInterval: DefaultSleepInterval,
		Retry:         DefaultRetryPolicy(),
	}
}

// Validate checks the configuration for invalid values.
func (c Config) Validate() error {
	if c.BatchSize < 1 {
		return ErrInvalidBatchSize
	}
	if c.Concurrency < 0 {
		return ErrInvalidConcurrency
	}
	if c.SleepInterval < 0 {
		return fmt.Errorf("%w: sleep interval %s", ErrInvalidWait, c.SleepInterval)
	}
	if c.RequestsPerMinute < 0 {
		return fmt.Errorf("%w: requests per minute %d", ErrInvalidWait, c.RequestsPerMinute)
	}
	return c.Retry.Validate()
}

// Chunk splits items into consecutive slices of at most size elements.
// The last chunk may be shorter. The chunks share items' backing array.
func Chunk[T any](items []T, size int) ([][]T, error) {
	if size < 1 {
		return nil, ErrInvalidBatchSize
	}
	count := len(items) / size
	if len(items)%size != 0 {
		count++
	}
	chunks := make([][]T, 0, count)
	for c := range slices.Chunk(items, size) {
		chunks = append(chunks, c)
	}
	return chunks, nil
}

// base carries the state chat and embedding batchers have in common.
type base struct {
	config         Config
	logger         *slog.Logger
	cache          storage.ResultCache
	cacheTTL       time.Duration
	metrics        *Metrics
	progress       io.Writer
	progressEvery  int
	embeddingModel string
	limiter        *rate.Limiter
}

// Option configures a batcher.
type Option func(*base) error

// WithConfig replaces the batching configuration.
func WithConfig(config Config) Option {
	return func(b *base) error {
		if err := config.Validate(); err != nil {
			return err
		}
		b.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(b *base) error {
		if logger == nil {
			logger = slog.Default()
		}
		b.logger = logger
		return nil
	}
}

// WithCache enables result caching. Entries are written with ttl; zero keeps
// them until removed.
func WithCache(cache storage.ResultCache, ttl time.Duration) Option {
	return func(b *base) error {
		if ttl < 0 {
			return fmt.Errorf("%w: cache ttl %s", ErrInvalidWait, ttl)
		}
		b.cache = cache
		b.cacheTTL = ttl
		return nil
	}
}

// WithMetrics records request, retry and pacing metrics.
func WithMetrics(metrics *Metrics) Option {
	return func(b *base) error {
		b.metrics = metrics
		return nil
	}
}

// WithProgress reports completed items to w every `every` items.
func WithProgress(w io.Writer, every int) Option {
	return func(b *base) error {
		if every < 1 {
			every = 1
		}
		b.progress = w
		b.progressEvery = every
		return nil
	}
}

// WithEmbeddingModel names the embedding model in cache keys.
// Only needed when a cache is configured.
func WithEmbeddingModel(model string) Option {
	return func(b *base) error {
		b.embeddingModel = model
		return nil
	}
}

func newBase(component string, opts []Option) (*base, error) {
	b := &base{
		config: DefaultConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	b.logger = b.logger.With("component", component)

	if rpm := b.config.RequestsPerMinute; rpm > 0 {
		b.limiter = rate.NewLimiter(rate.Limit(float64(rpm)/60), 1)
	}
	return b, nil
}

// concurrency returns the effective number of in-flight requests.
func (b *base) concurrency() int {
	if b.config.Concurrency > 0 {
		return b.config.Concurrency
	}
	return b.config.BatchSize
}

// logf logs at info when Verbose is set, debug otherwise.
func (b *base) logf(ctx context.Context, msg string, args ...any) {
	level := slog.LevelDebug
	if b.config.Verbose {
		level = slog.LevelInfo
	}
	b.logger.Log(ctx, level, msg, args...)
}

func (b *base) newProgress(total int) *ProgressTracker {
	if b.progress == nil {
		return nil
	}
	p := NewProgressTracker(b.progress, total, b.progressEvery)
	p.Start()
	return p
}
