package redis

import "github.com/redis/rueidis"

// NewStoreForTest creates a Store with the provided rueidis client (test-only).
func NewStoreForTest(c rueidis.Client, flavor Flavor) *Store {
	return &Store{client: c, prefix: DefaultKeyPrefix, flavor: flavor}
}
