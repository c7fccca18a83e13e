package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/bookend/catalog/internal/auth"
	"github.com/bookend/catalog/internal/config"
	"github.com/bookend/catalog/internal/database"
	"github.com/bookend/catalog/internal/logging"
	"github.com/bookend/catalog/internal/web"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// CLI flags
var (
	configPath string
	port       int
	bind       string
	dbPath     string
	verbosity  int
	devMode    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Catalog - web catalog server",
		Long:  `Catalog is a small web catalog of categories and items with Google sign-in.`,
		RunE:  run,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (or set CATALOG_CONFIG env var)")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "SQLite database path (or set DB_PATH env var)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v debug, -vv trace)")
	rootCmd.Flags().IntVarP(&port, "port", "p", 0, "HTTP server port (or set PORT env var)")
	rootCmd.Flags().StringVarP(&bind, "bind", "b", "", "IP address to bind to (e.g., 127.0.0.1, 0.0.0.0)")
	rootCmd.Flags().BoolVar(&devMode, "dev", false, "Relax cookie security for local development")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("catalog %s (commit: %s, built: %s)\n", version, commit, date)
		},
	})

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the database with sample content",
		RunE:  runSeed,
	}
	seedCmd.Flags().StringVar(&seedOwner, "owner", "sample-data", "External identity id that will own the sample records")
	rootCmd.AddCommand(seedCmd)

	exampleCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "Write an example config file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "catalog.toml"
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.WriteExample(path); err != nil {
				return err
			}
			fmt.Printf("Wrote example config to %s\n", path)
			return nil
		},
	}
	rootCmd.AddCommand(exampleCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig merges the config file with flag and environment overrides.
func loadConfig() (*config.Config, error) {
	if configPath == "" {
		configPath = os.Getenv("CATALOG_CONFIG")
	}

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if port != 0 {
		cfg.Server.Port = port
	} else if envPort := os.Getenv("PORT"); envPort != "" {
		if _, err := fmt.Sscanf(envPort, "%d", &cfg.Server.Port); err != nil {
			return nil, fmt.Errorf("invalid PORT environment variable %q: %w", envPort, err)
		}
	}

	if bind != "" {
		cfg.Server.Bind = bind
	}

	if dbPath != "" {
		cfg.Database.Path = dbPath
	} else if envDB := os.Getenv("DB_PATH"); envDB != "" {
		cfg.Database.Path = envDB
	}

	if cfg.Server.Bind != "" {
		if ip := net.ParseIP(cfg.Server.Bind); ip == nil {
			return nil, fmt.Errorf("invalid bind address: %s", cfg.Server.Bind)
		}
	}

	return cfg, nil
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logging.Apply(verbosity, &cfg.Log, logging.FilePathForDB(cfg.Database.Path))

	if cfg.Google.ClientID == "" || cfg.Google.ClientSecret == "" {
		log.Warn().Msg("Google sign-in is not configured; the catalog is read-only until it is")
	}

	log.Info().
		Str("version", version).
		Int("port", cfg.Server.Port).
		Str("bind", cfg.Server.Bind).
		Str("database", cfg.Database.Path).
		Msg("Starting Catalog")

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	sweeper := auth.NewSweeper(db)
	if err := sweeper.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start session sweeper")
	}
	defer sweeper.Stop()

	server := web.NewServer(db, cfg, devMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.Start(ctx)
}
