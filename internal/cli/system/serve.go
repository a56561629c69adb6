package system

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/julianstephens/mellow/internal/bot"
	"github.com/julianstephens/mellow/internal/cli"
	"github.com/julianstephens/mellow/internal/lockfile"
	"github.com/julianstephens/mellow/internal/logger"
	"github.com/julianstephens/mellow/internal/metrics"
	"github.com/julianstephens/mellow/internal/ops"
	"github.com/julianstephens/mellow/internal/ratelimit"
)

type ServeCmd struct{}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	token, err := ctx.Config.ResolveToken()
	if err != nil {
		return err
	}

	lock, err := lockfile.Acquire(ctx.LockPath())
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("failed to release lockfile", "path", lock.Path(), "error", err)
		}
	}()

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(reg)

	limiter := ratelimit.New(ratelimit.DefaultConfig())
	defer limiter.Stop()

	b, err := bot.New(token, bot.NewHandler(ctx.Service, collector), bot.Options{
		DevGuild: ctx.Config.DevGuild,
		OwnerID:  ctx.Config.OwnerID,
		Limiter:  limiter,
		Recorder: collector,
	})
	if err != nil {
		return err
	}

	opsDone := make(chan struct{})
	if addr := ctx.Config.OpsAddr; addr != "" {
		router := ops.NewRouter(reg, map[string]ops.HealthCheck{
			"store":   StoreCheck(ctx.Store),
			"discord": b.Ready,
		})
		go func() {
			defer close(opsDone)
			if err := ops.Serve(runCtx, addr, router); err != nil {
				logger.Error("ops server stopped", "addr", addr, "error", err)
				stop()
			}
		}()
	} else {
		close(opsDone)
	}

	logger.Info("starting bot",
		"store", ctx.Store.Location(),
		"coping_topics", ctx.Service.Catalog().Len(),
		"dev_guild", ctx.Config.DevGuild,
	)
	runErr := b.Run(runCtx)
	stop()
	<-opsDone

	if runErr != nil {
		return fmt.Errorf("bot stopped: %w", runErr)
	}
	logger.Info("bot stopped")
	return nil
}
