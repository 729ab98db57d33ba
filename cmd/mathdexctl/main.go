// Package main provides mathdexctl, the operator CLI for the math question index.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/mathdex/internal/app"
	"github.com/kailas-cloud/mathdex/internal/config"
	"github.com/kailas-cloud/mathdex/internal/domain"
	"github.com/kailas-cloud/mathdex/internal/domain/question"
	"github.com/kailas-cloud/mathdex/internal/domain/search/request"
	"github.com/kailas-cloud/mathdex/internal/domain/search/result"
	logpkg "github.com/kailas-cloud/mathdex/internal/logger"
	healthuc "github.com/kailas-cloud/mathdex/internal/usecase/health"
	"github.com/kailas-cloud/mathdex/internal/version"
)

type indexManager interface {
	CreateIndexIfNotExists(ctx context.Context) error
	DeleteIndex(ctx context.Context) error
	RecreateIndex(ctx context.Context) error
	IndexStats(ctx context.Context) (domain.IndexStats, error)
}

type searcher interface {
	FindSimilar(ctx context.Context, text string, f request.Filter) ([]result.Result, error)
}

type duplicateChecker interface {
	Check(ctx context.Context, text string, f request.Filter, threshold float64) (*result.Duplicate, error)
	DefaultThreshold() float64
}

type batchIndexer interface {
	IndexQuestions(ctx context.Context, qs []question.Question) ([]string, error)
}

type healthReporter interface {
	Check(ctx context.Context) healthuc.Report
}

// runtime is what a command needs from the wired application.
type runtime struct {
	index      indexManager
	search     searcher
	duplicates duplicateChecker
	indexer    batchIndexer
	health     healthReporter
	close      func()
}

// loader builds the runtime for the selected environment.
type loader func(ctx context.Context, env string) (*runtime, error)

func main() {
	// Load .env file if present (local development), ignore if missing (production)
	_ = godotenv.Load()

	if err := newRootCmd(loadRuntime).Execute(); err != nil {
		os.Exit(1)
	}
}

func loadRuntime(ctx context.Context, env string) (*runtime, error) {
	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level, zap.String("service", "mathdexctl"))
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	store, err := app.Connect(ctx, &cfg)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.Database.Driver, err)
	}
	app.RegisterMetrics()

	a := app.New(&cfg, store, app.NewEmbedder(&cfg, logger), logger)
	return &runtime{
		index:      a.Index,
		search:     a.Search,
		duplicates: a.Duplicates,
		indexer:    a.Indexing,
		health:     a.Health,
		close: func() {
			store.Close()
			_ = logger.Sync()
		},
	}, nil
}

func newRootCmd(load loader) *cobra.Command {
	var env string
	var rt *runtime

	root := &cobra.Command{
		Use:          "mathdexctl",
		Short:        "Math question index operator tool",
		Long:         "CLI for managing the math question vector index: lifecycle, bulk import and ad-hoc queries.",
		Version:      version.String(),
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&env, "env", config.GetEnv(), "config environment (config/<env>.yaml)")

	// Commands resolve the runtime lazily so --help and --version never touch the network.
	get := func(cmd *cobra.Command) (*runtime, error) {
		if rt != nil {
			return rt, nil
		}
		r, err := load(cmd.Context(), env)
		if err != nil {
			return nil, err
		}
		rt = r
		return rt, nil
	}
	root.PersistentPostRun = func(*cobra.Command, []string) {
		if rt != nil && rt.close != nil {
			rt.close()
		}
	}

	root.AddCommand(
		newIndexCmd(get),
		newHealthCmd(get),
		newImportCmd(get),
		newSimilarCmd(get),
		newDuplicateCmd(get),
	)
	return root
}
