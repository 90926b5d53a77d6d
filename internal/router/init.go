package router

import (
	"github.com/gin-gonic/gin"

	"github.com/AdityaShome/Secondhome-sub002/internal/application"
	"github.com/AdityaShome/Secondhome-sub002/internal/container"
	repo "github.com/AdityaShome/Secondhome-sub002/internal/domain/repository"
	"github.com/AdityaShome/Secondhome-sub002/internal/infrastructure/mongodb"
	pginfra "github.com/AdityaShome/Secondhome-sub002/internal/infrastructure/postgres"
	"github.com/AdityaShome/Secondhome-sub002/internal/infrastructure/redisstore"
	"github.com/AdityaShome/Secondhome-sub002/internal/infrastructure/search"
	handlers "github.com/AdityaShome/Secondhome-sub002/internal/interface/http"
	"github.com/AdityaShome/Secondhome-sub002/internal/interface/middleware"
	"github.com/AdityaShome/Secondhome-sub002/internal/router/modules"
)

// RepoDeps holds every repository, built once from the container's stores.
type RepoDeps struct {
	Users       repo.UserRepository
	OTPs        repo.OTPRepository
	Properties  repo.PropertyRepository
	Messes      repo.MessRepository
	Bookings    repo.BookingRepository
	Notes       repo.NotificationRepository
	PushSubs    repo.PushSubscriptionRepository
	Blog        repo.BlogRepository
	Newsletter  repo.NewsletterRepository
	AuditLog    repo.AuditRepository
	Payments    repo.PaymentRepository
	Index       repo.ListingIndex
	Sessions    application.SessionStore
	Cache       application.ListCache
	SessionAuth gin.HandlerFunc
	OptionAuth  gin.HandlerFunc
}

func buildRepoDeps() RepoDeps {
	cfg := container.GetConfig()
	db := container.GetMongo()
	pool := container.GetPGPool()

	d := RepoDeps{
		Users:      mongodb.NewUserRepository(db),
		OTPs:       mongodb.NewOTPRepository(db),
		Properties: mongodb.NewPropertyRepository(db),
		Messes:     mongodb.NewMessRepository(db),
		Bookings:   mongodb.NewBookingRepository(db),
		Notes:      mongodb.NewNotificationRepository(db),
		PushSubs:   mongodb.NewPushSubscriptionRepository(db),
		Blog:       mongodb.NewBlogRepository(db),
		Newsletter: mongodb.NewNewsletterRepository(db),
		AuditLog:   pginfra.NewAuditRepository(pool),
		Payments:   pginfra.NewPaymentRepository(pool),
		Sessions:   redisstore.NewSessionStore(container.GetRedis(), cfg.SessionTTL),
		Cache:      redisstore.NewListCache(container.GetRedis(), cfg.ListCacheTTL),
	}
	if es := container.GetES(); es != nil {
		d.Index = search.NewListingIndex(es, cfg.ESListingsIndex)
	}
	d.SessionAuth = middleware.Auth(container.GetJWT(), d.Sessions)
	d.OptionAuth = middleware.OptionalAuth(container.GetJWT(), d.Sessions)
	return d
}

// buildNotifier creates the shared notification service and registers it
// in the container so main can drain its pool on shutdown.
func buildNotifier(r RepoDeps) *application.NotificationService {
	if n := container.GetNotifier(); n != nil {
		return n
	}
	n := application.NewNotificationService(
		r.Notes,
		r.PushSubs,
		r.Users,
		container.GetPusher(),
		container.GetOutbox(),
		container.GetConfig(),
		container.GetLogger(),
	)
	container.SetNotifier(n)
	return n
}

type AccountModuleDeps struct {
	Service *application.Service
	Auth    *handlers.AuthHandler
	Profile *handlers.UserHandler
}

func buildAccountDeps(r RepoDeps, audit *application.Auditor) AccountModuleDeps {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	otp := application.NewOTPService(r.OTPs, container.GetOutbox(), cfg, logger)
	svc := application.NewService(
		r.Users,
		otp,
		container.GetJWT(),
		r.Sessions,
		container.GetStore(),
		container.GetOutbox(),
		audit,
		cfg,
		logger,
	)
	return AccountModuleDeps{
		Service: svc,
		Auth:    handlers.NewAuthHandler(svc, logger, cfg.CookieDomain, cfg.CookieSecure),
		Profile: handlers.NewUserHandler(svc, logger),
	}
}

type ListingModuleDeps struct {
	Properties      *application.PropertyService
	Messes          *application.MessService
	PropertyHandler *handlers.PropertyHandler
	MessHandler     *handlers.MessHandler
}

func buildListingDeps(r RepoDeps, notifier application.Notifier, audit *application.Auditor) ListingModuleDeps {
	logger := container.GetLogger()
	deps := application.ListingDeps{
		Users:    r.Users,
		Bookings: r.Bookings,
		Index:    r.Index,
		Cache:    r.Cache,
		Geocoder: container.GetGeocoder(),
		Reviewer: container.GetReviewer(),
		Store:    container.GetStore(),
		Notifier: notifier,
		Audit:    audit,
		Cfg:      container.GetConfig(),
		Logger:   logger,
	}
	props := application.NewPropertyService(r.Properties, deps)
	messes := application.NewMessService(r.Messes, deps)
	return ListingModuleDeps{
		Properties:      props,
		Messes:          messes,
		PropertyHandler: handlers.NewPropertyHandler(props, logger),
		MessHandler:     handlers.NewMessHandler(messes, logger),
	}
}

func buildBookingHandler(r RepoDeps, notifier application.Notifier, audit *application.Auditor) *handlers.BookingHandler {
	svc := application.NewBookingService(
		r.Bookings,
		r.Properties,
		r.Messes,
		r.Payments,
		container.GetGateway(),
		notifier,
		r.Cache,
		audit,
		container.GetConfig(),
		container.GetLogger(),
	)
	return handlers.NewBookingHandler(svc, container.GetLogger())
}

type ContentModuleDeps struct {
	Blog       *handlers.BlogHandler
	Newsletter *handlers.NewsletterHandler
}

func buildContentDeps(r RepoDeps, audit *application.Auditor) ContentModuleDeps {
	logger := container.GetLogger()
	blog := &application.BlogService{Repo: r.Blog, Audit: audit, Logger: logger}
	nl := &application.NewsletterService{
		Repo:   r.Newsletter,
		Outbox: container.GetOutbox(),
		Audit:  audit,
		Cfg:    container.GetConfig(),
		Logger: logger,
	}
	return ContentModuleDeps{
		Blog:       handlers.NewBlogHandler(blog, logger),
		Newsletter: handlers.NewNewsletterHandler(nl, logger),
	}
}

func buildAdminHandler(r RepoDeps, l ListingModuleDeps, audit *application.Auditor) *handlers.AdminHandler {
	svc := &application.AdminService{
		Users:      r.Users,
		Properties: r.Properties,
		Messes:     r.Messes,
		Bookings:   r.Bookings,
		Newsletter: r.Newsletter,
		AuditLog:   r.AuditLog,
		Sessions:   r.Sessions,
		Audit:      audit,
		Logger:     container.GetLogger(),
	}
	return handlers.NewAdminHandler(svc, l.Properties, l.Messes, container.GetLogger())
}

// InitModules initializes all application modules and registers them with the router registry.
// Call it once during startup, after the container is populated.
func InitModules(r *Registry) {
	repos := buildRepoDeps()
	audit := application.NewAuditor(repos.AuditLog, container.GetLogger())
	notifier := buildNotifier(repos)

	account := buildAccountDeps(repos, audit)
	listings := buildListingDeps(repos, notifier, audit)
	content := buildContentDeps(repos, audit)

	r.Add(modules.NewHealthModule())
	r.Add(modules.NewAuthModule(account.Auth, repos.SessionAuth))
	r.Add(modules.NewProfileModule(account.Profile, repos.SessionAuth))
	r.Add(modules.NewListingModule("/properties", listings.PropertyHandler, repos.SessionAuth, repos.OptionAuth))
	r.Add(modules.NewListingModule("/messes", listings.MessHandler, repos.SessionAuth, repos.OptionAuth))
	r.Add(modules.NewBookingModule(buildBookingHandler(repos, notifier, audit), repos.SessionAuth))
	r.Add(modules.NewNotificationModule(handlers.NewNotificationHandler(notifier, container.GetLogger()), repos.SessionAuth))
	r.Add(modules.NewContentModule(content.Blog, content.Newsletter))
	r.Add(modules.NewAdminModule(buildAdminHandler(repos, listings, audit), content.Blog, content.Newsletter, repos.SessionAuth))
	if cfg := container.GetConfig(); cfg != nil && cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
