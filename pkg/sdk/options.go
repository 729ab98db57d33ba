package mathdex

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/mathdex/internal/config"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	cfg config.Config

	embedder Embedder

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithRedis stores questions in a Redis instance with the search module.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Database.Driver = config.DriverRedis
		c.cfg.Database.Addrs = []string{addr}
		c.cfg.Database.Password = password
	})
}

// WithValkey stores questions in a Valkey instance with valkey-search.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Database.Driver = config.DriverValkey
		c.cfg.Database.Addrs = []string{addr}
		c.cfg.Database.Password = password
	})
}

// WithQdrant stores questions in a Qdrant collection over gRPC.
func WithQdrant(host string, port int, apiKey string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Database.Driver = config.DriverQdrant
		c.cfg.Database.Host = host
		c.cfg.Database.Port = port
		c.cfg.Database.APIKey = apiKey
	})
}

// WithPostgres stores questions in a pgvector table.
func WithPostgres(dsn string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Database.Driver = config.DriverPgvector
		c.cfg.Database.DSN = dsn
	})
}

// WithKeyPrefix namespaces keys, collections and tables. Default: "mathdex:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Database.KeyPrefix = prefix
	})
}

// WithOpenAI vectorizes text through an OpenAI-compatible embeddings endpoint
// (OpenAI, Ollama, Nebius).
func WithOpenAI(baseURL, apiKey, model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Embedding.BaseURL = baseURL
		c.cfg.Embedding.APIKey = apiKey
		c.cfg.Embedding.Model = model
	})
}

// WithEmbedder replaces the OpenAI-compatible provider with e.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithDimensions sets the embedding width. Default: 768.
func WithDimensions(dim int) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Embedding.Dimensions = dim
	})
}

// WithIndexName sets the question index name. Default: "math_questions".
func WithIndexName(name string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Index.Name = name
	})
}

// WithHNSW configures the HNSW graph. Defaults: M=16, EFConstruction=100, EFRuntime=100.
func WithHNSW(m, efConstruction, efRuntime int) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Index.HNSWM = m
		c.cfg.Index.HNSWEFConstruct = efConstruction
		c.cfg.Index.HNSWEFRuntime = efRuntime
	})
}

// WithCacheSize bounds the in-memory embedding cache. Default: 1000 entries.
func WithCacheSize(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Embedding.CacheSize = n
	})
}

// WithDuplicateThreshold sets the similarity at which a question counts as a duplicate.
// Default: 0.9.
func WithDuplicateThreshold(v float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Duplicate.Threshold = v
	})
}

// WithLogger enables structured logging. Default: no-op logger.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers client metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
