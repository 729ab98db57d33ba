package redis

import (
	"context"

	"github.com/kailas-cloud/mathdex/internal/db"
)

// CheckHealth pings the server and reports the number of known nodes.
// A standalone server is one node; a cluster client knows every primary and replica.
func (s *Store) CheckHealth(ctx context.Context) (*db.Health, error) {
	nodes := len(s.client.Nodes())

	if err := s.Ping(ctx); err != nil {
		return &db.Health{Status: "unavailable", ClusterStatus: db.ClusterRed, NodeCount: nodes}, err
	}
	return &db.Health{Status: "ok", ClusterStatus: db.ClusterGreen, NodeCount: nodes}, nil
}
