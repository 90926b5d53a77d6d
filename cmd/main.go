package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/AdityaShome/Secondhome-sub002/config"
	"github.com/AdityaShome/Secondhome-sub002/internal/container"
	"github.com/AdityaShome/Secondhome-sub002/internal/infrastructure/mongodb"
	pginfra "github.com/AdityaShome/Secondhome-sub002/internal/infrastructure/postgres"
	"github.com/AdityaShome/Secondhome-sub002/internal/infrastructure/queue"
	"github.com/AdityaShome/Secondhome-sub002/internal/infrastructure/search"
	"github.com/AdityaShome/Secondhome-sub002/internal/interface/middleware"
	"github.com/AdityaShome/Secondhome-sub002/internal/router"
	"github.com/AdityaShome/Secondhome-sub002/pkg/ai"
	"github.com/AdityaShome/Secondhome-sub002/pkg/geo"
	"github.com/AdityaShome/Secondhome-sub002/pkg/helpers"
	"github.com/AdityaShome/Secondhome-sub002/pkg/payment"
	"github.com/AdityaShome/Secondhome-sub002/pkg/push"
	"github.com/AdityaShome/Secondhome-sub002/pkg/storage"
	"github.com/AdityaShome/Secondhome-sub002/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()

	// MongoDB holds every domain document
	mongoClient, db, err := mongodb.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to connect to mongodb: %v", err)
	}
	defer func() { _ = mongodb.Disconnect(mongoClient) }()
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatalf("failed to ensure mongo indexes: %v", err)
	}

	// Postgres: audit log and payment ledger
	pool, err := pginfra.NewPool(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()
	if err := pginfra.Migrate(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	// Redis: sessions, rate limits, list cache
	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer func() { _ = rdb.Close() }()

	jwtManager := helpers.NewJWTManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTTL, cfg.RefreshTTL)

	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetMongo(db)
	container.SetPGPool(pool)
	container.SetRedis(rdb)
	container.SetJWT(jwtManager)

	setupSearch(ctx, cfg, logger)
	pub := setupQueue(cfg, logger)
	if pub != nil {
		defer pub.Close()
	}
	setupIntegrations(ctx, cfg, logger)

	// Gin engine and global middleware
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP(cfg.TrustProxyHeaders))
	corsCfg := cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	r.Use(cors.New(corsCfg))
	if cfg.HTTPLogEnabled || cfg.Env == "development" {
		r.Use(gin.Logger())
	}
	r.MaxMultipartMemory = int64(storage.MaxListingImages) * storage.MaxImageBytes

	reg := router.NewRegistry(r)
	router.InitModules(reg)
	logger.WithField("modules", reg.RegisterAll()).Info("routes registered")

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Fatalf("server forced to shutdown: %v", err)
	}
	if n := container.GetNotifier(); n != nil {
		n.Close()
	}
	logger.Info("server exited properly")
}

// setupSearch connects Elasticsearch. Search falls back to MongoDB when it is
// not configured or unreachable at startup.
func setupSearch(ctx context.Context, cfg *config.Config, logger *logrus.Logger) {
	addrs := cfg.ESAddrs()
	if len(addrs) == 0 {
		logger.Warn("ELASTICSEARCH_ADDRS empty; listing search uses mongodb")
		return
	}
	es, err := search.NewClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		logger.WithError(err).Warn("elasticsearch client init failed; listing search uses mongodb")
		return
	}
	c, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := search.NewListingIndex(es, cfg.ESListingsIndex).EnsureIndex(c); err != nil {
		logger.WithError(err).Warn("elasticsearch index setup failed; listing search uses mongodb")
		return
	}
	container.SetES(es)
}

// setupQueue connects RabbitMQ and registers the outbox. Without a broker the
// outbox logs and drops jobs.
func setupQueue(cfg *config.Config, logger *logrus.Logger) *helpers.RabbitPublisher {
	opts := queue.Options{
		EmailQueue:  cfg.RabbitMQEmailQueue,
		SMSQueue:    cfg.RabbitMQSMSQueue,
		MailEnabled: cfg.MailSendEnabled,
		SMSEnabled:  cfg.SMSSendEnabled,
	}
	if cfg.RabbitMQURL == "" {
		logger.Warn("RABBITMQ_URL empty; emails and sms are not queued")
		container.SetOutbox(queue.NewOutbox(nil, logger, opts))
		return nil
	}
	pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue, cfg.RabbitMQSMSQueue)
	if err != nil {
		logger.WithError(err).Warn("rabbitmq connect failed; emails and sms are not queued")
		container.SetOutbox(queue.NewOutbox(nil, logger, opts))
		return nil
	}
	container.SetOutbox(queue.NewOutbox(pub, logger, opts))
	return pub
}

// setupIntegrations registers storage, payments, push, geocoding and the AI
// reviewer. Optional ones stay nil in the container when unconfigured.
func setupIntegrations(ctx context.Context, cfg *config.Config, logger *logrus.Logger) {
	if store, err := storage.New(ctx, cfg); err != nil {
		logger.WithError(err).Warn("object storage unavailable; uploads disabled")
	} else {
		container.SetStore(store)
	}

	if cfg.RazorpayKeyID == "" || cfg.RazorpayKeySecret == "" {
		logger.Warn("razorpay keys missing; checkout orders will fail")
	}
	container.SetGateway(payment.NewRazorpay(cfg.RazorpayKeyID, cfg.RazorpayKeySecret))

	if wp := push.NewWebPush(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.VAPIDSubscriber); wp.Enabled() {
		container.SetPusher(wp)
	} else {
		logger.Warn("VAPID keys missing; web push disabled")
	}

	if cfg.GeocoderBaseURL != "" {
		container.SetGeocoder(geo.NewNominatim(cfg.GeocoderBaseURL, cfg.GeocoderUserAgent))
	}

	if cfg.AIReviewEnabled && cfg.OpenAIAPIKey != "" {
		container.SetReviewer(ai.NewOpenAIReviewer(cfg.OpenAIAPIKey, cfg.OpenAIModel))
	} else {
		container.SetReviewer(ai.Disabled{})
	}
}
