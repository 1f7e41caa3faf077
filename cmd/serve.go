package cmd

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rpgo/lifecastor/internal/cache"
	"github.com/rpgo/lifecastor/internal/calculation"
	"github.com/rpgo/lifecastor/internal/logging"
	"github.com/rpgo/lifecastor/internal/server"
)

func newServeCmd() *cobra.Command {
	var (
		addr      string
		redisURL  string
		ttl       time.Duration
		cacheSize int
		level     string
		timeout   time.Duration
		maxRuns   int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve forecasts over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := logging.New(cmd.ErrOrStderr(), level)

			var c cache.Cache = cache.NewMemoryCache(cacheSize, ttl)
			if redisURL != "" {
				rc := cache.NewRedisCache(redisURL, ttl)
				defer func() { _ = rc.Close() }()
				if err := rc.Ping(commandContext(cmd)); err != nil {
					log.Warn().Err(err).Str("redis", redisURL).Msg("redis unreachable, using in-memory cache")
				} else {
					c = rc
				}
			}

			srv := server.New(calculation.NewSimulator(logging.NewAdapter(log)), c, log)
			srv.Timeout = timeout
			srv.MaxRuns = maxRuns

			ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log.Info().Str("addr", addr).Msg("lifecastor API listening")
			return srv.ListenAndServe(ctx, addr)
		},
	}

	f := cmd.Flags()
	f.StringVar(&addr, "addr", ":8080", "Listen address")
	f.StringVar(&redisURL, "redis", "", "Redis address for the result cache (host:port)")
	f.DurationVar(&ttl, "cache-ttl", cache.DefaultTTL, "Cache entry lifetime")
	f.IntVar(&cacheSize, "cache-size", cache.DefaultMaxEntries, "Maximum entries in the in-memory cache")
	f.StringVar(&level, "log-level", "info", "Log level")
	f.DurationVar(&timeout, "timeout", server.DefaultTimeout, "Per-request forecast timeout")
	f.IntVar(&maxRuns, "max-runs", server.DefaultMaxRuns, "Largest simulation.runs accepted per request (0 for no limit)")
	return cmd
}
