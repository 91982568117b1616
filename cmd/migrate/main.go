// Command migrate applies the embedded Postgres schema.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/scholar-feed/backend/internal/migrations"
	"github.com/scholar-feed/backend/internal/observability"
)

var logger zerolog.Logger

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the scholar-feed Postgres schema",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = observability.NewLogger(observability.LoggingConfig{
			Level:  viper.GetString("log_level"),
			Format: viper.GetString("log_format"),
		})
	},
	SilenceUsage: true,
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(func(m *migrations.Migrator) error { return m.Up() })
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back all migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(func(m *migrations.Migrator) error { return m.Down() })
	},
}

var stepsCmd = &cobra.Command{
	Use:   "steps N",
	Short: "Apply N migrations (negative N rolls back)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid step count %q: %w", args[0], err)
		}
		return withMigrator(func(m *migrations.Migrator) error { return m.Steps(n) })
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the applied schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(func(m *migrations.Migrator) error {
			v, dirty, err := m.Version()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", v, dirty)
			return nil
		})
	},
}

func init() {
	_ = godotenv.Load()
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "console")
	viper.AutomaticEnv()

	rootCmd.PersistentFlags().String("database-url", "", "Postgres connection URL (env DATABASE_URL)")
	_ = viper.BindPFlag("database_url", rootCmd.PersistentFlags().Lookup("database-url"))

	rootCmd.AddCommand(upCmd, downCmd, stepsCmd, versionCmd)
}

func withMigrator(fn func(*migrations.Migrator) error) error {
	url := viper.GetString("database_url")
	if url == "" {
		return fmt.Errorf("database url is required (--database-url or DATABASE_URL)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}

	m, err := migrations.NewMigrator(pool, logger)
	if err != nil {
		return err
	}
	defer m.Close()

	return fn(m)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
