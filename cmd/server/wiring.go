package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ballotbox/internal/audit"
	"ballotbox/internal/broadcast"
	"ballotbox/internal/broadcast/relay"
	"ballotbox/internal/candidates/generator"
	candidatesservice "ballotbox/internal/candidates/service"
	candidatestore "ballotbox/internal/candidates/store"
	identityservice "ballotbox/internal/identity/service"
	identitystore "ballotbox/internal/identity/store"
	jwttoken "ballotbox/internal/jwt_token"
	"ballotbox/internal/platform/config"
	"ballotbox/internal/platform/kafka"
	"ballotbox/internal/platform/metrics"
	"ballotbox/internal/platform/postgres"
	"ballotbox/internal/platform/redis"
	httptransport "ballotbox/internal/transport/http"
	votingservice "ballotbox/internal/voting/service"
	votingstore "ballotbox/internal/voting/store"
)

const tokenIssuer = "ballotbox"

// app is the assembled server: its router plus the background loops and
// resources main has to run and release.
type app struct {
	router  http.Handler
	hub     *broadcast.Hub
	runners []func(ctx context.Context) error
	closers []func() error
}

func (a *app) close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

type stores struct {
	users      identityservice.Store
	candidates candidatesservice.Store
	votes      votingservice.Store
	ledgerTx   votingservice.LedgerTx
}

// buildApp wires every component. Postgres, Redis and Kafka are used when
// configured; otherwise the matching in-memory implementation stands in.
func buildApp(ctx context.Context, cfg config.Server, log *slog.Logger, reg *prometheus.Registry) (*app, error) {
	a := &app{}
	m := metrics.New(reg)
	checks := map[string]httptransport.HealthCheck{}

	st, err := a.openStores(ctx, cfg, log, checks)
	if err != nil {
		return nil, errors.Join(err, a.close())
	}

	auditPublisher, err := a.openAudit(ctx, cfg, log, checks)
	if err != nil {
		return nil, errors.Join(err, a.close())
	}

	hub := broadcast.NewHub(broadcast.SourceFunc(st.candidates.Snapshot),
		broadcast.WithLogger(log),
		broadcast.WithMetrics(m),
	)
	a.hub = hub
	a.closers = append(a.closers, func() error {
		hub.Close()
		return nil
	})

	var notifier candidatesservice.Notifier = hub
	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, errors.Join(err, a.close())
	}
	if redisClient != nil {
		r := relay.NewRedis(redisClient.Client, redisClient.Channel(), hub, log)
		notifier = r
		checks["redis"] = redisClient.Health
		a.runners = append(a.runners, func(ctx context.Context) error { return r.Run(ctx, nil) })
		a.closers = append(a.closers, redisClient.Close)
		log.Info("registry relay enabled", "channel", redisClient.Channel())
	}

	votingOpts := []votingservice.Option{
		votingservice.WithLogger(log),
		votingservice.WithMetrics(m),
		votingservice.WithAuditPublisher(auditPublisher),
	}
	if st.ledgerTx != nil {
		votingOpts = append(votingOpts, votingservice.WithLedgerTx(st.ledgerTx))
	}
	voting := votingservice.New(st.votes, votingOpts...)

	identity := identityservice.New(st.users,
		identityservice.WithLogger(log),
		identityservice.WithMetrics(m),
		identityservice.WithAuditPublisher(auditPublisher),
	)

	candidates := candidatesservice.New(st.candidates, generator.New(0),
		candidatesservice.WithLogger(log),
		candidatesservice.WithMetrics(m),
		candidatesservice.WithAuditPublisher(auditPublisher),
		candidatesservice.WithNotifier(notifier),
		candidatesservice.WithDeletePolicy(cfg.DeletePolicy, voting),
	)

	tokens := jwttoken.NewJWTService(cfg.JWTSigningKey, tokenIssuer, cfg.TokenTTL)
	validator := jwttoken.NewJWTServiceAdapter(tokens)

	a.router = httptransport.NewRouter(log, m, cfg.CORSOrigin,
		httptransport.NewIdentityHandler(identity, tokens, voting, validator, log),
		httptransport.NewCandidateHandler(candidates, log),
		httptransport.NewVoteHandler(voting, validator, log),
		httptransport.NewLiveHandler(hub, cfg.CORSOrigin, log),
		httptransport.NewHealthHandler(checks, promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})),
	)
	return a, nil
}

func (a *app) openStores(ctx context.Context, cfg config.Server, log *slog.Logger, checks map[string]httptransport.HealthCheck) (*stores, error) {
	if cfg.DatabaseURL == "" {
		log.Info("using in-memory stores")
		candidates := candidatestore.NewInMemoryStore()
		return &stores{
			users:      identitystore.NewInMemoryUserStore(),
			candidates: candidates,
			votes:      votingstore.NewInMemoryStore(candidates),
		}, nil
	}

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, db.Close)
	if err := postgres.Migrate(ctx, db); err != nil {
		return nil, err
	}
	checks["postgres"] = db.PingContext
	log.Info("using postgres stores")
	return postgresStores(db), nil
}

func postgresStores(db *sql.DB) *stores {
	return &stores{
		users:      identitystore.NewPostgres(db),
		candidates: candidatestore.NewPostgres(db),
		votes:      votingstore.NewPostgres(db),
		ledgerTx:   newVotePostgresTx(db),
	}
}

func (a *app) openAudit(ctx context.Context, cfg config.Server, log *slog.Logger, checks map[string]httptransport.HealthCheck) (*audit.Publisher, error) {
	var sink audit.Sink = audit.NewInMemoryStore()
	client, err := kafka.New(ctx, cfg.Kafka)
	if err != nil {
		return nil, fmt.Errorf("kafka: %w", err)
	}
	if client != nil {
		sink = audit.NewKafkaSink(client.Client, cfg.Kafka.AuditTopic)
		checks["kafka"] = client.Health
		a.closers = append(a.closers, func() error {
			client.Close()
			return nil
		})
		log.Info("audit events go to kafka", "topic", cfg.Kafka.AuditTopic)
	}
	publisher := audit.NewPublisher(sink, 0, log)
	a.runners = append(a.runners, publisher.Run)
	return publisher, nil
}
