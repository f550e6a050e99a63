package main

import (
	"fmt"
	"runtime"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"expns/internal/backend"
	"expns/internal/cli"
	"expns/internal/config"
	"expns/internal/core"
	"expns/internal/log"
	"expns/internal/shell"
	"expns/internal/storage"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

type options struct {
	backend  string
	dbPath   string
	logLevel string
	barWidth int
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	opts := &options{
		backend:  cfg.DataBackend,
		dbPath:   cfg.SQLiteDBPath,
		logLevel: cfg.LogLevel,
		barWidth: shell.DefaultBarWidth,
	}

	root := &cobra.Command{
		Use:   "expns-shell",
		Short: "Record expenses and chart them by category from the terminal",
		Long: `expns-shell reads one command per line:

  add <title> | <category> | <amount>
  list, chart, status, help, quit

Every run starts an empty ledger. With the sqlite backend each run is kept
on disk as a session; see "expns-shell sessions".`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := cli.SetupLoggerTo(cmd.ErrOrStderr(), opts.logLevel)

			bcfg, err := backend.FromAppConfig(opts.apply(cfg))
			if err != nil {
				return err
			}
			res, err := backend.NewFactory(logger).CreateBackend(cmd.Context(), bcfg)
			if err != nil {
				return fmt.Errorf("open ledger: %w", err)
			}
			defer func() {
				if err := res.Cleanup(); err != nil {
					logger.Warn("Backend cleanup failed", log.FieldError, err.Error())
				}
			}()

			sh := shell.New(res.Service, cmd.OutOrStdout(),
				shell.WithLogger(logger),
				shell.WithBarWidth(opts.barWidth))
			return sh.Run(cmd.Context(), cmd.InOrStdin())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.backend, "backend", opts.backend, "ledger backend: "+strings.Join(backend.GetBackendTypeStrings(), " or "))
	flags.StringVar(&opts.dbPath, "db", opts.dbPath, "SQLite database path for the sqlite backend")
	flags.StringVar(&opts.logLevel, "log-level", opts.logLevel, "log level: debug, info, warn or error")
	root.Flags().IntVar(&opts.barWidth, "bar-width", opts.barWidth, "length of the largest chart bar")

	root.AddCommand(newSessionsCmd(opts), newVersionCmd())
	return root
}

// apply overlays the command-line flags on the environment configuration.
func (o *options) apply(cfg *config.Config) *config.Config {
	c := *cfg
	c.DataBackend = o.backend
	c.SQLiteDBPath = o.dbPath
	c.LogLevel = o.logLevel
	return &c
}

func newSessionsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List ledger sessions recorded in the SQLite database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cli.SetupLoggerTo(cmd.ErrOrStderr(), opts.logLevel)

			repo, err := storage.NewSQLiteRepository(opts.dbPath)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer repo.Close()

			sessions, err := repo.ListSessions(cmd.Context())
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No sessions recorded.")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SESSION\tSTARTED\tTRANSACTIONS\tTOTAL")
			for _, s := range sessions {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n",
					s.ID, s.StartedAt.Local().Format(time.DateTime), s.Count, core.FormatAmount(s.Total))
			}
			return tw.Flush()
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "expns-shell %s (%s)\n", Version, runtime.Version())
		},
	}
}
