package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ifmtech/event-planning/internal/profile"
	"github.com/ifmtech/event-planning/internal/taskpool"
	"github.com/ifmtech/event-planning/internal/version"
	"github.com/ifmtech/event-planning/server"
	"github.com/ifmtech/event-planning/store"
	"github.com/ifmtech/event-planning/store/cache"
	"github.com/ifmtech/event-planning/store/db"
)

const (
	greetingBanner = `Event Planning %s`
)

var (
	rootCmd = &cobra.Command{
		Use:   "event-planning",
		Short: "Session scheduling service with overlap conflict detection",
		Run: func(_ *cobra.Command, _ []string) {
			instanceProfile := &profile.Profile{
				Mode:   viper.GetString("mode"),
				Addr:   viper.GetString("addr"),
				Port:   viper.GetInt("port"),
				Data:   viper.GetString("data"),
				Driver: viper.GetString("driver"),
				DSN:    viper.GetString("dsn"),
			}
			instanceProfile.FromEnv()
			if err := instanceProfile.Validate(); err != nil {
				slog.Error("invalid configuration", "error", err)
				os.Exit(1)
			}
			instanceProfile.Version = version.GetCurrentVersion(instanceProfile.Mode)

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			dbDriver, err := db.NewDBDriver(instanceProfile)
			if err != nil {
				slog.Error("failed to create db driver", "error", err)
				os.Exit(1)
			}

			storeOpts := []store.Option{}
			if instanceProfile.IsRedisCacheEnabled() {
				redisCache, err := cache.NewRedisCache(ctx, &cache.RedisCacheConfig{
					Addr:     instanceProfile.CacheRedisAddr,
					Password: instanceProfile.CacheRedisPassword,
				})
				if err != nil {
					slog.Error("failed to connect redis query cache", "error", err)
					os.Exit(1)
				}
				storeOpts = append(storeOpts, store.WithRedisQueryCache(redisCache))
				slog.Info("redis query cache enabled", "addr", instanceProfile.CacheRedisAddr)
			}

			storeInstance := store.New(dbDriver, instanceProfile, storeOpts...)
			if err := storeInstance.Migrate(ctx); err != nil {
				slog.Error("failed to migrate database", "error", err)
				os.Exit(1)
			}

			pool := taskpool.New(taskpool.DefaultSize())
			defer pool.Shutdown()

			s, err := server.NewServer(ctx, instanceProfile, storeInstance, pool)
			if err != nil {
				slog.Error("failed to create server", "error", err)
				os.Exit(1)
			}

			fmt.Printf(greetingBanner+"\n", instanceProfile.Version)
			if err := s.Start(ctx); err != nil {
				slog.Error("server exited with error", "error", err)
			}

			// Start returns once ctx is cancelled and the listener has
			// drained; only the store is left to close.
			s.Shutdown(context.Background())
		},
	}
)

func init() {
	viper.SetDefault("mode", "demo")
	viper.SetDefault("driver", "sqlite")
	viper.SetDefault("addr", "")
	viper.SetDefault("port", 8082)
	viper.SetDefault("data", "")

	rootCmd.PersistentFlags().String("mode", "demo", `mode of server, can be "prod" or "dev" or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "address of server")
	rootCmd.PersistentFlags().Int("port", 8082, "port of server")
	rootCmd.PersistentFlags().String("data", "", "data directory")
	rootCmd.PersistentFlags().String("driver", "sqlite", "database driver")
	rootCmd.PersistentFlags().String("dsn", "", "database source name (aka. DSN)")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		panic(err)
	}

	viper.SetEnvPrefix("event_planning")
	viper.AutomaticEnv()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		panic(err)
	}
}
