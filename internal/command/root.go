// Package command contains the alumnictl command constructors.
package command

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/alumnihub/internal/logging"
	"github.com/dmitrijs2005/alumnihub/internal/server/config"
	"github.com/dmitrijs2005/alumnihub/internal/server/repositories/repomanager"
	"github.com/spf13/cobra"
)

// Seams for tests.
var (
	openDB               = repomanager.OpenDB
	newRepositoryManager = repomanager.NewPostgresRepositoryManager
)

type configKey struct{}

type rootFlags struct {
	configFile string
	envFile    string
	dsn        string
}

// args renders the persistent flags in the form config.LoadConfig parses.
func (f *rootFlags) args() []string {
	var out []string
	if f.configFile != "" {
		out = append(out, "-c", f.configFile)
	}
	if f.envFile != "" {
		out = append(out, "-env", f.envFile)
	}
	if f.dsn != "" {
		out = append(out, "-d", f.dsn)
	}
	return out
}

// RootCommand instantiates the root command, with all sub-commands bound.
func RootCommand() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:          "alumnictl [command] [flags]",
		Short:        "Operator tool for the alumni portal",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(flags.args())
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), configKey{}, cfg))
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&flags.configFile, "config", "c", "", "path to a JSON configuration file")
	cmd.PersistentFlags().StringVar(&flags.envFile, "env", "", "path to a .env file")
	cmd.PersistentFlags().StringVarP(&flags.dsn, "dsn", "d", "", "PostgreSQL DSN, overrides the configuration")

	cmd.AddCommand(
		adminCommand(),
		migrateCommand(),
	)

	return cmd
}

// openStore loads what the sub-commands share: the configuration, a logger and
// a migrated database.
func openStore(ctx context.Context) (*config.Config, logging.Logger, *sql.DB, repomanager.RepositoryManager, error) {
	cfg, ok := ctx.Value(configKey{}).(*config.Config)
	if !ok {
		return nil, nil, nil, nil, fmt.Errorf("configuration not loaded")
	}
	logger := logging.New(cfg.LogLevel)

	db, err := openDB(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	rm := newRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, nil, nil, fmt.Errorf("migration error: %w", err)
	}
	return cfg, logger, db, rm, nil
}
