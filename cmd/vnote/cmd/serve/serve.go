package serve

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"voicenotes/cmd/vnote/cmd/cli"
	"voicenotes/internal/api/server"
	"voicenotes/internal/app/events"
)

var listenAddr string

func init() {
	Cmd.Flags().StringVarP(&listenAddr, "addr", "a", "", "listen address (overrides server.addr)")
}

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local HTTP API and the summarization worker",
	Long: `Run the local HTTP API and the summarization worker

- Summaries left in flight by an earlier run resume when their note is opened
- Changes stream on /api/v1/events and, when REDIS_ADDR is set, to Redis
- Prometheus metrics are served on /metrics`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cleanup, err := cli.InitApp()
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a.Orchestrator.Start(ctx)

		if addr := a.Config.Redis.Addr; addr != "" {
			client := events.NewRedisClient(addr, a.Config.Redis.Password, a.Config.Redis.DB)
			defer client.Close()

			publisher := events.NewRedisPublisher(client, a.Config.Redis.Channel, a.Logger)
			changes, cancel := a.Orchestrator.Subscribe(256)
			defer cancel()
			go publisher.Run(ctx, changes)
			a.Logger.Info("publishing summary changes", zap.String("redis", addr), zap.String("channel", a.Config.Redis.Channel))
		}

		serverCfg := a.Config.Server
		if listenAddr != "" {
			serverCfg.Addr = listenAddr
		}
		srv := server.NewServer(serverCfg, server.Deps{
			Store:        a.Store,
			Orchestrator: a.Orchestrator,
			Syncer:       a.Uploader,
			Gatherer:     a.Registry,
		}, a.Logger)

		if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}
