package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/mathdex/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Flavor selects the search module dialect spoken by the server.
type Flavor string

const (
	// FlavorRedis is Redis 8+ / Redis Stack (RediSearch).
	FlavorRedis Flavor = "redis"
	// FlavorValkey is Valkey with valkey-search: no TEXT fields, no SORTBY, no DROPINDEX DD.
	FlavorValkey Flavor = "valkey"
)

// DefaultKeyPrefix namespaces all keys and index names written by the store.
const DefaultKeyPrefix = "mathdex:"

// Config holds connection parameters for a Redis-family store.
type Config struct {
	Addrs     []string
	Username  string
	Password  string
	DB        int
	KeyPrefix string
	Flavor    Flavor
}

// Store implements db.Store via rueidis on top of FT.* search commands.
// Documents are stored as hashes under <prefix><index>:<id>.
type Store struct {
	client rueidis.Client
	prefix string
	flavor Flavor
}

// NewStore creates a Redis-family store via rueidis.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}
	flavor := cfg.Flavor
	if flavor == "" {
		flavor = FlavorRedis
	}
	if flavor != FlavorRedis && flavor != FlavorValkey {
		return nil, fmt.Errorf("unknown flavor %q", flavor)
	}
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
		AlwaysRESP2:  true, // FT.SEARCH / FT.INFO parsing expects RESP2 arrays
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Store{client: client, prefix: prefix, flavor: flavor}, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	cmd := s.b().Ping().Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady polls Ping until the store responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for database: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// ftName maps a logical index name to the FT index name.
func (s *Store) ftName(index string) string {
	return s.prefix + index + ":idx"
}

// keyPrefix is the hash key prefix covered by the FT index.
func (s *Store) keyPrefix(index string) string {
	return s.prefix + index + ":"
}

func (s *Store) docKey(index, id string) string {
	return s.keyPrefix(index) + id
}

func (s *Store) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return s.client.Do(ctx, cmd)
}

func (s *Store) b() rueidis.Builder {
	return s.client.B()
}

// isRedisErr checks if err is a Redis server error containing substr (case-insensitive).
func isRedisErr(err error, substr string) bool {
	re, ok := rueidis.IsRedisErr(err)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(re.Error()), strings.ToLower(substr))
}

// isUnknownIndex matches both RediSearch ("Unknown Index name") and valkey-search ("not found") wording.
func isUnknownIndex(err error) bool {
	return isRedisErr(err, "unknown index name") || isRedisErr(err, "no such index") || isRedisErr(err, "not found")
}
