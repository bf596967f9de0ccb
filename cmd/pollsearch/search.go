package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/pollsearch/internal/domain/search/request"
	logpkg "github.com/kailas-cloud/pollsearch/internal/logger"
	chiTransport "github.com/kailas-cloud/pollsearch/internal/transport/chi"
)

type searchOptions struct {
	term string
	sort string
	page int
}

func newSearchCmd(opts *rootOptions) *cobra.Command {
	so := &searchOptions{}

	cmd := &cobra.Command{
		Use:   "search <scope>",
		Short: "Print one page of a scope's results as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, level, err := loadConfig(opts)
			if err != nil {
				return err
			}
			logger, err := logpkg.NewLogger(opts.env, level)
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			ctx := logpkg.ContextWithLogger(cmd.Context(), logger)
			src, err := buildSource(ctx, cfg, logger)
			if err != nil {
				return fmt.Errorf("build record source: %w", err)
			}
			defer src.close()

			proc, err := newProcessor(cfg, src, logger)
			if err != nil {
				return fmt.Errorf("build processor: %w", err)
			}

			req, err := request.New(args[0], so.term, so.sort, so.page, proc.Presets(), proc.Config().DefaultSort)
			if err != nil {
				return err
			}
			view, err := proc.Search(ctx, req)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(chiTransport.ViewToResponse(view))
		},
	}
	cmd.Flags().StringVar(&so.term, "term", "", "search term")
	cmd.Flags().StringVar(&so.sort, "sort", "", "sort preset or field[:asc|desc] (default widget.default_sort)")
	cmd.Flags().IntVar(&so.page, "page", request.DefaultPage, "page number")
	return cmd
}
