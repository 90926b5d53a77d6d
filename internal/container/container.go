package container

import (
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/AdityaShome/Secondhome-sub002/config"
	"github.com/AdityaShome/Secondhome-sub002/internal/application"
	"github.com/AdityaShome/Secondhome-sub002/pkg/ai"
	"github.com/AdityaShome/Secondhome-sub002/pkg/geo"
	"github.com/AdityaShome/Secondhome-sub002/pkg/helpers"
	"github.com/AdityaShome/Secondhome-sub002/pkg/payment"
	"github.com/AdityaShome/Secondhome-sub002/pkg/push"
	"github.com/AdityaShome/Secondhome-sub002/pkg/storage"
)

// app-level container to share constructed components across packages.
// Router modules are wired from these singletons.
// Optional integrations are stored as interfaces and stay nil when unconfigured.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	mongoDB     *mongo.Database
	pgPool      *pgxpool.Pool
	redisClient *redis.Client
	esClient    *elasticsearch.Client

	jwtManager *helpers.JWTManager

	store    storage.Store
	gateway  payment.Gateway
	pusher   push.Sender
	geocoder geo.Geocoder
	reviewer ai.Reviewer

	outbox   application.Outbox
	notifier *application.NotificationService
)

func SetConfig(c *config.Config)      { cfg = c }
func GetConfig() *config.Config       { return cfg }
func SetLogger(l *logrus.Logger)      { logger = l }
func GetLogger() *logrus.Logger       { return logger }
func SetMongo(db *mongo.Database)     { mongoDB = db }
func GetMongo() *mongo.Database       { return mongoDB }
func SetPGPool(p *pgxpool.Pool)       { pgPool = p }
func GetPGPool() *pgxpool.Pool        { return pgPool }
func SetRedis(r *redis.Client)        { redisClient = r }
func GetRedis() *redis.Client         { return redisClient }
func SetES(c *elasticsearch.Client)   { esClient = c }
func GetES() *elasticsearch.Client    { return esClient }
func SetJWT(m *helpers.JWTManager)    { jwtManager = m }
func SetStore(s storage.Store)        { store = s }
func GetStore() storage.Store         { return store }
func SetGateway(g payment.Gateway)    { gateway = g }
func GetGateway() payment.Gateway     { return gateway }
func SetPusher(s push.Sender)         { pusher = s }
func GetPusher() push.Sender          { return pusher }
func SetGeocoder(g geo.Geocoder)      { geocoder = g }
func GetGeocoder() geo.Geocoder       { return geocoder }
func SetReviewer(r ai.Reviewer)       { reviewer = r }
func GetReviewer() ai.Reviewer        { return reviewer }
func SetOutbox(o application.Outbox)  { outbox = o }
func GetOutbox() application.Outbox   { return outbox }
func GetJWT() *helpers.JWTManager {
	if jwtManager != nil {
		return jwtManager
	}
	return helpers.DefaultJWT()
}

// SetNotifier registers the shared notification service. It owns a worker
// pool, so it is built once and closed on shutdown.
func SetNotifier(n *application.NotificationService) { notifier = n }
func GetNotifier() *application.NotificationService  { return notifier }
