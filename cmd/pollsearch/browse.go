package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	logpkg "github.com/kailas-cloud/pollsearch/internal/logger"
	"github.com/kailas-cloud/pollsearch/internal/transport/tui"
)

func newBrowseCmd(opts *rootOptions) *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse poll results in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, level, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if len(cfg.Widget.Scopes) == 0 {
				return fmt.Errorf("no scopes configured: set widget.scopes in config/%s.yaml", opts.env)
			}

			// The terminal belongs to the widget; logs go to a file.
			logger, err := logpkg.NewFileLogger(opts.env, logFile, level)
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			ctx := logpkg.ContextWithLogger(cmd.Context(), logger.With(zap.String("mode", "browse")))

			src, err := buildSource(ctx, cfg, logger)
			if err != nil {
				return fmt.Errorf("build record source: %w", err)
			}
			defer src.close()

			proc, err := newProcessor(cfg, src, logger)
			if err != nil {
				return fmt.Errorf("build processor: %w", err)
			}

			scopes := make([]tui.Scope, 0, len(cfg.Widget.Scopes))
			for _, s := range cfg.Widget.Scopes {
				scopes = append(scopes, tui.Scope{ID: s.ID, Title: s.Title})
			}
			model := tui.NewModel(ctx, proc.NewSession(), scopes, proc.Presets().Names())

			p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx),
				tea.WithInput(cmd.InOrStdin()), tea.WithOutput(cmd.OutOrStdout()))
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("run terminal widget: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&logFile, "log-file",
		filepath.Join(os.TempDir(), "pollsearch-browse.log"), "file receiving logs while the widget runs")
	return cmd
}
