package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eringen/duckblog"
	"github.com/eringen/duckblog/internal/logging"
	"github.com/eringen/duckblog/views"
)

type rootOptions struct {
	configFile string
	contentDir string
	staticDir  string
	addr       string
	dev        bool

	cfg    duckblog.SiteConfig
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "duckblog",
		Short: "A markdown blog engine with static export.",
		Long: `duckblog renders a directory of markdown posts into a website.
It can serve the site directly or crawl itself to produce static files.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load(cmd)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "config file (yaml, toml or json)")
	flags.StringVar(&opts.contentDir, "content", "", "content directory (default \"content\")")
	flags.StringVar(&opts.staticDir, "static", "", "static asset directory (default \"static\")")
	flags.StringVar(&opts.addr, "addr", "", "listen address (default \":3000\")")
	flags.BoolVar(&opts.dev, "dev", false, "development mode: show drafts, console logging")

	cmd.AddCommand(newServeCmd(opts), newGenerateCmd(opts), newNewCmd(), newVersionCmd())
	return cmd
}

// load reads the config file and environment, then applies explicit flags.
func (o *rootOptions) load(cmd *cobra.Command) error {
	cfg, err := duckblog.LoadConfig(o.configFile)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("content") {
		cfg.ContentDir = o.contentDir
	}
	if flags.Changed("static") {
		cfg.StaticDir = o.staticDir
	}
	if flags.Changed("addr") {
		cfg.Addr = o.addr
	}
	if flags.Changed("dev") {
		cfg.Development = o.dev
	}
	o.cfg = cfg

	logger, err := logging.New(cfg.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	o.logger = logger
	return nil
}

func (o *rootOptions) newApp() *duckblog.App {
	return duckblog.New(o.cfg, views.Default(), duckblog.WithLogger(o.logger))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the duckblog version",
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "duckblog %s\n", version)
		},
	}
}
