package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdrpinto/gridplanner/internal/config"
	"github.com/pdrpinto/gridplanner/internal/httpapi"
	"github.com/pdrpinto/gridplanner/internal/logging"
	"github.com/pdrpinto/gridplanner/internal/planner"
	"github.com/pdrpinto/gridplanner/internal/transport"
)

var (
	// Global flags
	configPath string
	verbose    bool
	outputFile string
	serveRedis bool

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "gridplanner",
	Short: "A* route planner over occupancy grid snapshots",
	Long: `gridplanner plans a route from the grid centre to the far edge of every
occupancy grid snapshot it receives and publishes the result as a pose path.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		logger, err = logging.New(cfg.Logging, verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var redisCmd = &cobra.Command{
	Use:   "redis",
	Short: "Plan for snapshots received over Redis pub/sub",
	Args:  cobra.NoArgs,
	RunE:  runRedis,
}

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Plan for snapshot files written into a directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve plan requests over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var planCmd = &cobra.Command{
	Use:   "plan [snapshot.json]",
	Short: "Plan once for a snapshot file and print the path",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlan,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "gridplanner.yaml", "config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	watchCmd.Flags().StringVarP(&outputFile, "output", "o", "", "append paths to this file instead of stdout")
	serveCmd.Flags().BoolVar(&serveRedis, "redis", false, "publish planned paths to Redis and serve the latched path")

	rootCmd.AddCommand(redisCmd, watchCmd, serveCmd, planCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newPlanner(publisher planner.Publisher) (*planner.Planner, error) {
	plannerConfig, err := planner.FromSettings(cfg.Planner)
	if err != nil {
		return nil, err
	}
	logger.Info("Planner configured",
		zap.Int("side", plannerConfig.Side),
		zap.Float64("resolution", plannerConfig.Resolution),
		zap.Int("connectivity", int(plannerConfig.Connectivity)),
		zap.Stringer("source", plannerConfig.Source()),
		zap.Stringer("target", plannerConfig.Target()))
	return planner.New(plannerConfig, publisher, planner.WithLogger(logger)), nil
}

func newRedisClient(ctx context.Context) (*redis.Client, error) {
	redisConfig := cfg.Transport.Redis
	client := redis.NewClient(&redis.Options{
		Addr:     redisConfig.Addr,
		Password: redisConfig.Password,
		DB:       redisConfig.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", redisConfig.Addr, err)
	}
	return client, nil
}

func newRedisPublisher(client *redis.Client) *transport.RedisPublisher {
	return transport.NewRedisPublisher(client, cfg.Transport.Output, cfg.Transport.Redis.LatchKey, cfg.GetLatchTTL())
}

func runRedis(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	client, err := newRedisClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	p, err := newPlanner(newRedisPublisher(client))
	if err != nil {
		return err
	}
	snapshots, err := transport.NewRedisSubscriber(client, cfg.Transport.Input, logger).Subscribe(ctx)
	if err != nil {
		return err
	}
	return p.Run(ctx, snapshots)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	out := os.Stdout
	if outputFile != "" {
		file, err := os.OpenFile(outputFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("open output: %w", err)
		}
		defer file.Close()
		out = file
	}

	p, err := newPlanner(transport.NewStreamPublisher(out))
	if err != nil {
		return err
	}
	snapshots, err := transport.NewDirWatcher(args[0], logger).Subscribe(ctx)
	if err != nil {
		return err
	}
	return p.Run(ctx, snapshots)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	gin.SetMode(cfg.HTTP.Mode)
	// Paths planned over HTTP are published like any other run: to Redis
	// with --redis, otherwise as JSON lines on stdout.
	var publisher planner.Publisher = transport.NewStreamPublisher(os.Stdout)
	var serverOptions []httpapi.ServerOption
	if serveRedis {
		client, err := newRedisClient(ctx)
		if err != nil {
			return err
		}
		defer client.Close()
		redisPublisher := newRedisPublisher(client)
		publisher = redisPublisher
		serverOptions = append(serverOptions, httpapi.WithLatest(redisPublisher))
	}

	p, err := newPlanner(publisher)
	if err != nil {
		return err
	}
	return httpapi.NewServer(p, logger, serverOptions...).ListenAndServe(ctx, cfg.HTTP.Addr)
}

func runPlan(cmd *cobra.Command, args []string) error {
	snapshot, err := transport.ReadSnapshotFile(args[0])
	if err != nil {
		return err
	}
	p, err := newPlanner(transport.NewStreamPublisher(cmd.OutOrStdout()))
	if err != nil {
		return err
	}
	return p.Handle(cmd.Context(), snapshot)
}
