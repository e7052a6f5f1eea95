// Package container builds the application's shared components from config
// and hands them to the router. Optional backends that are not configured, or
// not reachable at startup, are left nil and the features using them degrade.
package container

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/narrative-weaver/config"
	"github.com/oksasatya/narrative-weaver/internal/application"
	"github.com/oksasatya/narrative-weaver/internal/domain/repository"
	"github.com/oksasatya/narrative-weaver/internal/infrastructure/generator"
	"github.com/oksasatya/narrative-weaver/internal/infrastructure/memory"
	"github.com/oksasatya/narrative-weaver/internal/infrastructure/metrics"
	"github.com/oksasatya/narrative-weaver/internal/infrastructure/mongostore"
	pginfra "github.com/oksasatya/narrative-weaver/internal/infrastructure/postgres"
	"github.com/oksasatya/narrative-weaver/internal/infrastructure/search"
	"github.com/oksasatya/narrative-weaver/pkg/helpers"
	"github.com/oksasatya/narrative-weaver/pkg/mailer/templates"
)

const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
	StoreMemory   = "memory"

	pingTimeout = 3 * time.Second
)

type Container struct {
	Config *config.Config
	Logger *logrus.Logger

	Users   repository.UserRepository
	Entries repository.DiaryEntryRepository

	Redis     *redis.Client
	JWT       *helpers.JWTManager
	Index     application.EntryIndex
	Images    application.ImageStore
	Publisher application.Publisher
	Generator application.Generator
	Metrics   *metrics.Metrics

	closers []func(context.Context) error
}

// New returns a container backed by the in-memory store with every optional
// backend disabled. Build fills in the real ones.
func New(cfg *config.Config, logger *logrus.Logger) *Container {
	store := memory.NewStore()
	c := &Container{
		Config:    cfg,
		Logger:    logger,
		Users:     store.Users(),
		Entries:   store.Entries(),
		JWT:       helpers.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL),
		Generator: generator.Unavailable{},
	}
	if cfg.MetricsEnabled {
		c.Metrics = metrics.New("narrative_weaver")
	}
	return c
}

// Build connects the configured store (fatal on failure) and every optional
// backend (logged and skipped on failure).
func Build(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	c := New(cfg, logger)
	if err := c.openStore(ctx); err != nil {
		return nil, err
	}
	c.openRedis(ctx)
	c.openImages(ctx)
	c.openSearch(ctx)
	c.openPublisher()
	c.openGenerator(ctx)
	return c, nil
}

// OnClose registers fn to run, in reverse order, on Close.
func (c *Container) OnClose(fn func(context.Context) error) {
	c.closers = append(c.closers, fn)
}

func (c *Container) Close(ctx context.Context) {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](ctx); err != nil {
			helpers.LogError(c.Logger, "close failed", err, nil)
		}
	}
	c.closers = nil
}

// Branding is the company block rendered into every email.
func (c *Container) Branding() templates.Branding {
	return templates.Branding{
		AppName:        c.Config.AppName,
		CompanyName:    c.Config.CompanyName,
		CompanyAddress: c.Config.CompanyAddress,
		LogoURL:        c.Config.LogoURL,
		SupportURL:     c.Config.SupportURL,
		PrivacyURL:     c.Config.PrivacyURL,
		UnsubscribeURL: c.Config.UnsubscribeURL,
	}
}

func (c *Container) openStore(ctx context.Context) error {
	cfg := c.Config
	switch cfg.StoreDriver {
	case StoreMemory:
		c.Logger.Warn("using in-memory store, data is lost on restart")
		return nil
	case StorePostgres:
		dsn := cfg.PostgresDSN()
		if err := pginfra.Migrate(dsn, cfg.MigrationsDir, c.Logger); err != nil {
			return fmt.Errorf("migrate postgres: %w", err)
		}
		pool, err := pginfra.NewPool(ctx, pginfra.PoolConfig{
			DSN:             dsn,
			MaxConns:        cfg.DBMaxConns,
			MinConns:        cfg.DBMinConns,
			MaxConnLifetime: cfg.DBMaxConnLife,
		})
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		store := pginfra.NewStore(pool)
		c.Users, c.Entries = store.Users(), store.Entries()
		c.OnClose(func(context.Context) error { store.Close(); return nil })
		return nil
	case StoreMongo, "":
		store, err := mongostore.NewStore(ctx, cfg.MongoURI, cfg.MongoDatabase, c.Logger)
		if err != nil {
			return fmt.Errorf("connect mongo: %w", err)
		}
		c.Users, c.Entries = store.Users(), store.Entries()
		c.OnClose(store.Close)
		return nil
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}

func (c *Container) openRedis(ctx context.Context) {
	if c.Config.RedisAddr == "" {
		c.Logger.Warn("redis disabled: sessions and rate limits are off")
		return
	}
	rdb := helpers.NewRedisClient(c.Config.RedisAddr, c.Config.RedisPassword, c.Config.RedisDB)
	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := rdb.Ping(pctx).Err(); err != nil {
		c.Logger.WithError(err).Warn("redis unreachable: sessions and rate limits are off")
		_ = rdb.Close()
		return
	}
	c.Redis = rdb
	c.OnClose(func(context.Context) error { return rdb.Close() })
}

func (c *Container) openImages(ctx context.Context) {
	if c.Config.GCSBucket == "" {
		return
	}
	client, err := helpers.NewGCSClient(ctx, c.Config.GCSCredentialsJSONPath)
	if err != nil {
		c.Logger.WithError(err).Warn("gcs unavailable: image uploads are off")
		return
	}
	c.Images = helpers.GCSBucket{Client: client, Bucket: c.Config.GCSBucket}
	c.OnClose(func(context.Context) error { return client.Close() })
}

func (c *Container) openSearch(ctx context.Context) {
	es, err := helpers.NewESClient(c.Config.ESAddrs(), c.Config.ElasticsearchUser, c.Config.ElasticsearchPass)
	if err != nil {
		c.Logger.WithError(err).Warn("elasticsearch client failed: search falls back to scanning")
		return
	}
	if es == nil {
		return
	}
	idx := search.NewEntryIndex(es, c.Config.ESEntriesIndex)
	if err := idx.EnsureIndex(ctx); err != nil {
		c.Logger.WithError(err).Warn("elasticsearch index unavailable: search falls back to scanning")
		return
	}
	c.Index = idx
}

func (c *Container) openPublisher() {
	if !c.Config.MailSendEnabled || c.Config.RabbitMQURL == "" {
		return
	}
	pub, err := helpers.NewRabbitPublisher(c.Config.RabbitMQURL, c.Config.RabbitMQEmailQueue)
	if err != nil {
		c.Logger.WithError(err).Warn("rabbitmq unavailable: emails are off")
		return
	}
	c.Publisher = pub
	c.OnClose(func(context.Context) error { pub.Close(); return nil })
}

func (c *Container) openGenerator(ctx context.Context) {
	cfg := c.Config
	switch cfg.GeneratorProvider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			c.Logger.Warn("OPENAI_API_KEY not set: summaries are unavailable")
			return
		}
		c.Generator = generator.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL)
	default:
		if cfg.GoogleAPIKey == "" {
			c.Logger.Warn("GOOGLE_API_KEY not set: summaries are unavailable")
			return
		}
		g, err := generator.NewGemini(ctx, cfg.GoogleAPIKey, cfg.GeminiModel)
		if err != nil {
			c.Logger.WithError(err).Warn("gemini client failed: summaries are unavailable")
			return
		}
		c.Generator = g
		c.OnClose(func(context.Context) error { return g.Close() })
	}
}
