package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pollsearch/internal/config"
	logpkg "github.com/kailas-cloud/pollsearch/internal/logger"
	recordrepo "github.com/kailas-cloud/pollsearch/internal/repository/record"
)

func newSeedCmd(opts *rootOptions) *cobra.Command {
	var fixtures string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write fixture result sets into the redis, valkey or sqlite list store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, level, err := loadConfig(opts)
			if err != nil {
				return err
			}
			logger, err := logpkg.NewLogger(opts.env, level)
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			if fixtures == "" {
				fixtures = cfg.Source.File.Path
			}
			n, err := seedFixtures(cmd.Context(), cfg, fixtures, logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d scopes into %s\n", n, cfg.Source.Driver)
			return nil
		},
	}
	cmd.Flags().StringVar(&fixtures, "fixtures", "", "fixtures YAML (default source.file.path)")
	return cmd
}

// seedFixtures replaces every fixture scope in the configured list store.
// It returns the number of scopes written.
func seedFixtures(ctx context.Context, cfg config.Config, path string, logger *zap.Logger) (int, error) {
	switch cfg.Source.Driver {
	case config.DriverRedis, config.DriverValkey, config.DriverSQLite:
	default:
		return 0, fmt.Errorf("seed needs a redis, valkey or sqlite source, got %q", cfg.Source.Driver)
	}

	fx, err := recordrepo.LoadFixtures(path)
	if err != nil {
		return 0, err
	}

	store, err := openListStore(ctx, cfg)
	if err != nil {
		return 0, err
	}
	defer store.Close()

	repo := recordrepo.New(store, cfg.Source.KeyPrefix)
	scopes := fx.Scopes()
	for _, scope := range scopes {
		recs, err := fx.Fetch(ctx, scope)
		if err != nil {
			return 0, err
		}
		if err := repo.Save(ctx, scope, recs); err != nil {
			return 0, fmt.Errorf("seed scope %q: %w", scope, err)
		}
		logger.Info("Seeded scope", zap.String("scope", scope), zap.Int("records", len(recs)))
	}
	return len(scopes), nil
}
