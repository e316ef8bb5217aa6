package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pollcast/internal/platform/config"
	"pollcast/internal/platform/httpserver"
	"pollcast/internal/platform/logger"
	"pollcast/internal/platform/memkv"
	"pollcast/internal/platform/metrics"
	redisclient "pollcast/internal/platform/redis"
	"pollcast/internal/poll/fanout"
	"pollcast/internal/poll/handler"
	"pollcast/internal/poll/identity"
	pollmetrics "pollcast/internal/poll/metrics"
	pollservice "pollcast/internal/poll/service"
	"pollcast/internal/poll/store/index"
	pollstore "pollcast/internal/poll/store/poll"
	ratelimitMetrics "pollcast/internal/ratelimit/metrics"
	ratelimitModels "pollcast/internal/ratelimit/models"
	ratelimitService "pollcast/internal/ratelimit/service"
	"pollcast/internal/ratelimit/store/counter"
	httptransport "pollcast/internal/transport/http"
	"pollcast/pkg/platform/audit/publisher"
	kafkasink "pollcast/pkg/platform/audit/sink/kafka"
	"pollcast/pkg/platform/middleware/metadata"
)

const (
	shutdownTimeout   = 10 * time.Second
	auditBufferEvents = 1024
)

// stores bundles the substrate-specific implementations chosen at startup.
type stores struct {
	polls    pollservice.PollStore
	index    pollservice.IndexStore
	counters ratelimitService.CounterStore
	broker   fanout.Broker
	health   func(ctx context.Context) error
	close    func() error
}

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal service packages.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	registry := metrics.New()
	pm := pollmetrics.New(registry.Registerer())

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.close(); err != nil {
			log.Warn("failed to close store", "error", err)
		}
	}()

	limiter, err := ratelimitService.New(st.counters,
		ratelimitService.WithLogger(log),
		ratelimitService.WithMetrics(ratelimitMetrics.New(registry.Registerer())),
	)
	if err != nil {
		return err
	}

	proxies, err := metadata.ParseTrustedProxies(cfg.Identity.TrustedProxyCIDRs)
	if err != nil {
		return err
	}
	resolver, err := identity.New(cfg.Identity.Salt,
		identity.WithSecureCookie(cfg.Identity.CookieSecure),
		identity.WithTrustedProxies(proxies),
	)
	if err != nil {
		return err
	}

	hub := fanout.NewHub(fanout.WithHubLogger(log), fanout.WithHubMetrics(pm))
	bridge, err := fanout.NewBridge(st.broker, hub, fanout.WithLogger(log), fanout.WithMetrics(pm))
	if err != nil {
		return err
	}
	defer func() {
		if err := bridge.Close(); err != nil {
			log.Warn("failed to close fanout bridge", "error", err)
		}
	}()

	createPolicy, err := ratelimitModels.NewPolicy(ratelimitModels.PolicyCreate, cfg.Poll.CreateRateMax, cfg.Poll.CreateRateWindow)
	if err != nil {
		return err
	}
	votePolicy, err := ratelimitModels.NewPolicy(ratelimitModels.PolicyVote, cfg.Poll.VoteRateMax, cfg.Poll.VoteRateWindow)
	if err != nil {
		return err
	}
	opts := []pollservice.Option{
		pollservice.WithLogger(log),
		pollservice.WithMetrics(pm),
		pollservice.WithPollTTL(cfg.Poll.TTL),
		pollservice.WithCreatePolicy(createPolicy),
		pollservice.WithVotePolicy(votePolicy),
		pollservice.WithListLimits(cfg.Poll.PublicListDefault, cfg.Poll.PublicListMax),
	}

	if len(cfg.Kafka.Brokers) > 0 {
		sink, err := kafkasink.New(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return err
		}
		activity := publisher.NewPublisher(sink,
			publisher.WithAsyncBuffer(auditBufferEvents),
			publisher.WithLogger(log),
		)
		// Drain pending events before the client goes away.
		defer sink.Close()
		defer activity.Close()
		opts = append(opts, pollservice.WithAuditPublisher(activity))
		log.Info("activity stream enabled", "topic", cfg.Kafka.Topic)
	}

	svc, err := pollservice.New(st.polls, st.index, limiter, bridge, opts...)
	if err != nil {
		return err
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:   log,
		Identity: resolver.Middleware,
		Polls:    handler.New(svc, bridge, log),
		Metrics:  registry.Handler(),
		Health:   st.health,
	})
	srv := httpserver.New(cfg.Server.Addr, router)

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting pollcast", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	// Event streams never finish on their own; Shutdown only waits for idle
	// connections, so force-close what remains once the deadline passes.
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("graceful shutdown incomplete", "error", err)
		_ = srv.Close()
	}
	return nil
}

// openStores picks Redis when configured and the in-process substrate otherwise.
func openStores(ctx context.Context, cfg config.Config, log *slog.Logger) (*stores, error) {
	client, err := redisclient.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	if client == nil {
		log.Warn("REDIS_URL not set, using in-process store; state is lost on restart and not shared")
		kv := memkv.New()
		broker := fanout.NewMemoryBroker()
		return &stores{
			polls:    pollstore.NewInMemory(kv),
			index:    index.NewInMemory(kv),
			counters: counter.NewInMemory(kv),
			broker:   broker,
			close:    broker.Close,
		}, nil
	}
	return &stores{
		polls:    pollstore.NewRedis(client.Client),
		index:    index.NewRedis(client.Client),
		counters: counter.NewFallback(counter.NewRedis(client.Client), counter.NewInMemory(memkv.New()),
			counter.WithFallbackLogger(log),
		),
		broker:   fanout.NewRedisBroker(client.Client),
		health:   client.Health,
		close:    client.Close,
	}, nil
}
