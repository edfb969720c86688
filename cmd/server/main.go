package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/dr-roshyara/public-digit-sub005/internal/geography"
	"github.com/dr-roshyara/public-digit-sub005/internal/identity"
	"github.com/dr-roshyara/public-digit-sub005/internal/identity/scim"
	"github.com/dr-roshyara/public-digit-sub005/internal/membership/handler"
	membershipmetrics "github.com/dr-roshyara/public-digit-sub005/internal/membership/metrics"
	"github.com/dr-roshyara/public-digit-sub005/internal/membership/policy"
	"github.com/dr-roshyara/public-digit-sub005/internal/membership/service"
	memberstore "github.com/dr-roshyara/public-digit-sub005/internal/membership/store/member"
	"github.com/dr-roshyara/public-digit-sub005/internal/membership/store/sequence"
	"github.com/dr-roshyara/public-digit-sub005/internal/membership/sweep"
	"github.com/dr-roshyara/public-digit-sub005/internal/outbox"
	"github.com/dr-roshyara/public-digit-sub005/internal/platform/config"
	"github.com/dr-roshyara/public-digit-sub005/internal/platform/httpserver"
	"github.com/dr-roshyara/public-digit-sub005/internal/platform/kafka"
	"github.com/dr-roshyara/public-digit-sub005/internal/platform/logger"
	"github.com/dr-roshyara/public-digit-sub005/internal/platform/postgres"
	"github.com/dr-roshyara/public-digit-sub005/internal/platform/redis"
	"github.com/dr-roshyara/public-digit-sub005/migrations"
	id "github.com/dr-roshyara/public-digit-sub005/pkg/domain"
	"github.com/dr-roshyara/public-digit-sub005/pkg/platform/circuit"
	"github.com/dr-roshyara/public-digit-sub005/pkg/platform/httputil"
	request "github.com/dr-roshyara/public-digit-sub005/pkg/platform/middleware/request"
)

// main wires the membership services onto their backing stores and runs the
// HTTP API, the outbox relay and the expiry sweep until a signal arrives.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("membership server exited", "error", err)
		os.Exit(1)
	}
}

type infra struct {
	db      *sql.DB
	redis   *redis.Client
	members service.MemberStore
	events  outbox.Store
	tx      service.StoreTx
	codes   service.CodeAllocator
	geo     geography.Cache
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	inf, err := openInfra(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer inf.close()

	policies, err := loadPolicies(cfg.Policy)
	if err != nil {
		return err
	}

	metrics := membershipmetrics.New()
	opts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(metrics),
		service.WithOutbox(inf.events),
		service.WithCodeAllocator(inf.codes),
		service.WithPolicies(policies),
	}
	if inf.tx != nil {
		opts = append(opts, service.WithTx(inf.tx))
	}

	geo := geography.New(geographyDirectory(cfg.Geography),
		geography.WithCache(inf.geo),
		geography.WithBreaker(circuit.New("geography")),
		geography.WithLookupTimeout(cfg.Geography.Timeout),
		geography.WithLogger(log),
	)
	identities := identity.NewProvisioner(identityDirectory(cfg.Identity),
		identity.WithBreaker(circuit.New("identity")),
		identity.WithLogger(log),
	)

	lifecycle := service.NewLifecycleService(inf.members, opts...)
	h := handler.New(
		service.NewSelfServiceRegistration(inf.members, geo, identities, opts...),
		service.NewAdminAssistedRegistration(inf.members, geo, identities, opts...),
		lifecycle,
		cfg.Server.AdminToken,
		log,
	)

	r := chi.NewRouter()
	r.Use(request.Recovery(log))
	r.Use(request.RequestID)
	r.Use(request.Time)
	r.Use(request.Logger(log))
	r.Get("/healthz", inf.healthz)
	h.Register(r)

	relay, closeRelay, err := newRelay(ctx, cfg.Kafka, inf.events, log)
	if err != nil {
		return err
	}
	defer closeRelay()

	var sweeper *sweep.Sweeper
	if cfg.Sweep.Enabled {
		tenants, err := sweepTenants(policies, cfg.Sweep.Tenants)
		if err != nil {
			return err
		}
		if len(tenants.Tenants()) == 0 {
			log.Warn("expiry sweep has no tenants; list them in the policy file or sweep.tenants")
		}
		sweeper = sweep.New(lifecycle, tenants,
			sweep.WithInterval(cfg.Sweep.Interval),
			sweep.WithBatchSize(cfg.Sweep.BatchSize),
			sweep.WithLogger(log),
			sweep.WithMetrics(metrics),
		)
	}

	g, gctx := errgroup.WithContext(ctx)

	api := httpserver.New(cfg.Server.Addr, r, cfg.Server.ReadHeaderTimeout, cfg.Server.ShutdownTimeout, log)
	g.Go(func() error { return api.Run(gctx) })

	if cfg.Server.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsSrv := httpserver.New(cfg.Server.MetricsAddr, mux, cfg.Server.ReadHeaderTimeout, cfg.Server.ShutdownTimeout, log)
		g.Go(func() error { return metricsSrv.Run(gctx) })
	}

	if relay != nil {
		g.Go(func() error { return ignoreCancel(relay.Run(gctx)) })
	} else {
		log.Warn("no kafka brokers configured; outbox events stay unpublished")
	}
	if sweeper != nil {
		g.Go(func() error { return sweeper.Run(gctx) })
	}

	return g.Wait()
}

func openInfra(ctx context.Context, cfg *config.Config, log *slog.Logger) (*infra, error) {
	inf := &infra{}

	db, err := postgres.Open(cfg.Database)
	if err != nil {
		return nil, err
	}
	if db != nil {
		if err := migrations.Apply(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		inf.db = db
		inf.members = memberstore.NewPostgres(db)
		inf.events = outbox.NewPostgres(db)
		inf.tx = newMemberPostgresTx(db)
	} else {
		log.Warn("no database configured; members are held in memory")
		inf.members = memberstore.NewInMemory()
		inf.events = outbox.NewInMemory()
	}

	rdb, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		inf.close()
		return nil, err
	}
	if rdb != nil {
		inf.redis = rdb
		inf.codes = sequence.NewRedis(rdb.Client)
		inf.geo = geography.NewRedisCache(rdb.Client, cfg.Geography.CacheTTL)
	} else {
		inf.codes = sequence.NewInMemory()
		inf.geo = geography.NewMemoryCache(cfg.Geography.CacheTTL)
	}
	return inf, nil
}

func (i *infra) close() {
	if i.redis != nil {
		_ = i.redis.Close()
	}
	if i.db != nil {
		_ = i.db.Close()
	}
}

func (i *infra) healthz(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok"}
	code := http.StatusOK
	if i.db != nil {
		if err := i.db.PingContext(r.Context()); err != nil {
			status["postgres"] = err.Error()
			code = http.StatusServiceUnavailable
		}
	}
	if i.redis != nil {
		if err := i.redis.Health(r.Context()); err != nil {
			status["redis"] = err.Error()
			code = http.StatusServiceUnavailable
		}
	}
	if code != http.StatusOK {
		status["status"] = "degraded"
	}
	httputil.WriteJSON(w, code, status)
}

func loadPolicies(cfg config.PolicyConfig) (*policy.Provider, error) {
	if cfg.File == "" {
		return policy.NewStatic(policy.Default()), nil
	}
	p, err := policy.Load(cfg.File)
	if err != nil {
		return nil, fmt.Errorf("load policy file: %w", err)
	}
	return p, nil
}

func geographyDirectory(cfg config.GeographyConfig) geography.Directory {
	if cfg.BaseURL == "" {
		return geography.NewStaticDirectory()
	}
	return geography.NewHTTPDirectory(cfg.BaseURL, cfg.Timeout)
}

func identityDirectory(cfg config.IdentityConfig) identity.Directory {
	if cfg.SCIMURL == "" {
		return identity.NewInMemoryDirectory()
	}
	return scim.NewClient(scim.Config{
		BaseURL:      cfg.SCIMURL,
		TokenURL:     cfg.TokenURL,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Scopes:       cfg.Scopes,
		Timeout:      cfg.Timeout,
	})
}

// tenantSet is the union of policy tenants and explicitly configured ones.
type tenantSet struct {
	policies *policy.Provider
	extra    []id.TenantID
}

func sweepTenants(policies *policy.Provider, configured []string) (*tenantSet, error) {
	set := &tenantSet{policies: policies}
	for _, raw := range configured {
		tenantID, err := id.ParseTenantID(raw)
		if err != nil {
			return nil, fmt.Errorf("sweep.tenants: %w", err)
		}
		set.extra = append(set.extra, tenantID)
	}
	return set, nil
}

func (t *tenantSet) Tenants() []id.TenantID {
	out := t.policies.Tenants()
	for _, tenantID := range t.extra {
		if !slices.Contains(out, tenantID) {
			out = append(out, tenantID)
		}
	}
	return out
}

// newRelay returns a nil relay when publishing is disabled.
func newRelay(ctx context.Context, cfg config.KafkaConfig, events outbox.Store, log *slog.Logger) (*outbox.Relay, func(), error) {
	client, err := kafka.NewClient(cfg)
	if err != nil {
		return nil, nil, err
	}
	if client == nil {
		return nil, func() {}, nil
	}
	if err := kafka.EnsureTopic(ctx, client, cfg.Topic, cfg.Partitions, cfg.ReplicationFactor); err != nil {
		client.Close()
		return nil, nil, err
	}
	relay := outbox.NewRelay(events, client, cfg.Topic,
		outbox.WithBatchSize(cfg.BatchSize),
		outbox.WithInterval(cfg.PollInterval),
		outbox.WithMaxBackoff(cfg.MaxBackoff),
		outbox.WithLogger(log),
		outbox.WithMetrics(outbox.NewMetrics(prometheus.DefaultRegisterer)),
	)
	return relay, client.Close, nil
}

func ignoreCancel(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
