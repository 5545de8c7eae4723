package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/user"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"propsite/internal/adapters/observability"
	redisad "propsite/internal/adapters/redis"
	"propsite/internal/app"
	"propsite/internal/domain"
	"propsite/internal/shared"
	"propsite/internal/versions"
)

var (
	outputJSON bool
	cfg        shared.Config
	storage    shared.Storage
	props      *app.PropertyService
	queries    *app.QueryService
)

var rootCmd = &cobra.Command{
	Use:   "propctl",
	Short: "Manage property records, themes and admin users",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = shared.Load(); err != nil {
			return err
		}
		log.Logger = observability.NewLogger("dev", cfg.LogLevel)
		if storage, err = shared.OpenStorage(cfg); err != nil {
			return err
		}
		var cache domain.Cache
		if cfg.UseRedis() {
			cache = redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, cfg.CachePrefix)
		}
		store := versions.New(storage.Records)
		props = app.NewPropertyService(store, storage.Files, cache, cfg.PublishWorkers)
		queries = app.NewQueryService(store, storage.Files, cache, cfg.CacheTTL(), cfg.DefaultLang)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return storage.Close()
	},
	SilenceUsage: true,
}

func Execute() {
	rootCmd.AddCommand(createCmd())
	rootCmd.AddCommand(updateCmd())
	rootCmd.AddCommand(publishCmd())
	rootCmd.AddCommand(revertCmd())
	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(themeCmd())
	rootCmd.AddCommand(userCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output JSON")
}

// localSession acts for the operator: shell access to the data directory already
// implies full control over it.
func localSession() *domain.Session {
	name := "operator"
	if u, err := user.Current(); err == nil {
		name = u.Username
	}
	return &domain.Session{Email: name + "@localhost", Name: name, Role: domain.RoleAdmin}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readJSONFile decodes path ("-" for stdin) into dst.
func readJSONFile(path string, dst any) error {
	f := os.Stdin
	if path != "-" {
		var err error
		if f, err = os.Open(path); err != nil {
			return err
		}
		defer f.Close()
	}
	if err := json.NewDecoder(f).Decode(dst); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
