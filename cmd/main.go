package main

import (
	"fmt"
	"os"

	"catalog-service/pkg/config"
	"catalog-service/pkg/database"
	"catalog-service/pkg/jwtutil"
	"catalog-service/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var envFile string
	var appConfig *config.Config

	root := &cobra.Command{
		Use:          "catalog",
		Short:        "Product catalog service",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if envFile != "" {
				appConfig, err = config.Load(envFile)
			} else {
				appConfig, err = config.Load()
			}
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			return logger.InitLogger(appConfig)
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load before reading the environment (default .env)")

	root.AddCommand(
		newServeCommand(func() *config.Config { return appConfig }),
		newMigrateCommand(func() *config.Config { return appConfig }),
		newTokenCommand(func() *config.Config { return appConfig }),
	)
	return root
}

func newMigrateCommand(cfg func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the catalog tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.GetLogger()
			defer log.Sync()

			db, err := database.Open(&cfg().DB)
			if err != nil {
				return err
			}
			defer database.Close(db)

			if err := database.Migrate(db); err != nil {
				return err
			}
			log.Info("Database migrated", zap.String("driver", cfg().DB.Driver))
			return nil
		},
	}
}

func newTokenCommand(cfg func() *config.Config) *cobra.Command {
	var (
		email  string
		userID uint
		role   string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := jwtutil.NewJWTUtil(&cfg().JWT).GenerateToken(email, userID, role)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "admin@example.com", "email claim")
	cmd.Flags().UintVar(&userID, "user-id", 1, "user_id claim")
	cmd.Flags().StringVar(&role, "role", "admin", "role claim")
	return cmd
}
