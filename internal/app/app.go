package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"gorm.io/gorm"

	"happi-app-go/internal/auth"
	"happi-app-go/internal/config"
	"happi-app-go/internal/db"
	catalogdomain "happi-app-go/internal/domain/catalog"
	familydomain "happi-app-go/internal/domain/family"
	insurancedomain "happi-app-go/internal/domain/insurance"
	ledgerdomain "happi-app-go/internal/domain/ledger"
	membershipdomain "happi-app-go/internal/domain/membership"
	notificationsdomain "happi-app-go/internal/domain/notifications"
	userdomain "happi-app-go/internal/domain/user"
	vehiclesdomain "happi-app-go/internal/domain/vehicles"
	"happi-app-go/internal/events"
	amqpevents "happi-app-go/internal/events/amqp"
	"happi-app-go/internal/idgen"
	"happi-app-go/internal/metrics"
	"happi-app-go/internal/repository/inmemory"
	catalogrepo "happi-app-go/internal/repository/postgres/catalog"
	familyrepo "happi-app-go/internal/repository/postgres/family"
	insurancerepo "happi-app-go/internal/repository/postgres/insurance"
	ledgerrepo "happi-app-go/internal/repository/postgres/ledger"
	membershiprepo "happi-app-go/internal/repository/postgres/membership"
	notificationsrepo "happi-app-go/internal/repository/postgres/notifications"
	userrepo "happi-app-go/internal/repository/postgres/user"
	vehiclesrepo "happi-app-go/internal/repository/postgres/vehicles"
	redisrepo "happi-app-go/internal/repository/redis"
	"happi-app-go/internal/storage/gcs"
	"happi-app-go/internal/storage/local"
	"happi-app-go/internal/transport/httpserver"
	"happi-app-go/internal/transport/httpserver/handler"
	authhandler "happi-app-go/internal/transport/httpserver/handler/auth"
	"happi-app-go/internal/transport/httpserver/handler/common"
	dashboardhandler "happi-app-go/internal/transport/httpserver/handler/dashboard"
	familyhandler "happi-app-go/internal/transport/httpserver/handler/family"
	insurancehandler "happi-app-go/internal/transport/httpserver/handler/insurance"
	membershiphandler "happi-app-go/internal/transport/httpserver/handler/membership"
	profilehandler "happi-app-go/internal/transport/httpserver/handler/profile"
	vehicleshandler "happi-app-go/internal/transport/httpserver/handler/vehicles"
	authmw "happi-app-go/internal/transport/httpserver/middleware"
	"happi-app-go/pkg/logger"
)

type App struct {
	cfg        config.Config
	httpServer *http.Server
	db         *gorm.DB
	closers    []io.Closer
	log        logger.Logger
}

func New(log logger.Logger) (*App, error) {
	log.Info("app: loading config")
	cfg, err := config.Load(log)
	if err != nil {
		return nil, err
	}
	log = logger.NewFromSettings(cfg.LogLevel, cfg.LogFormat, cfg.Env)

	log.Info("app: initializing database")
	dbConn, err := db.NewPostgres(cfg.DB, log)
	if err != nil {
		return nil, err
	}
	a := &App{cfg: cfg, db: dbConn, log: log}

	if cfg.DB.AutoMigrate {
		log.Info("app: applying migrations")
		if err := db.Migrate(dbConn, log); err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	ctx := context.Background()

	cache, err := a.catalogCache(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	images, storageRoot, err := a.imageStore(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	reg := metrics.New()
	router, err := Router(cfg, dbConn, Infra{
		Cache:       cache,
		Images:      images,
		StorageRoot: storageRoot,
		Publisher:   a.publisher(reg),
		Metrics:     reg,
	}, log)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	log.Info("app: initializing http server")
	a.httpServer = httpserver.New(cfg, router)
	return a, nil
}

// Infra carries the backends chosen at startup.
type Infra struct {
	Cache       catalogdomain.Cache
	Images      vehiclesdomain.ImageStore
	StorageRoot string
	Publisher   events.Publisher
	Metrics     *metrics.Registry
}

// Router builds every service and handler over dbConn and mounts them.
func Router(cfg config.Config, dbConn *gorm.DB, infra Infra, log logger.Logger) (http.Handler, error) {
	if infra.Metrics == nil {
		infra.Metrics = metrics.New()
	}
	if infra.Publisher == nil {
		infra.Publisher = events.Fanout{infra.Metrics}
	}

	ids, err := idgen.NewSequence(cfg.Snowflake.Node)
	if err != nil {
		return nil, err
	}
	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	sessions := auth.NewSessions(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL)
	publisher := infra.Publisher
	images := infra.Images

	log.Info("app: initializing services")
	users := userdomain.NewService(userrepo.NewPostgres(dbConn), hasher, images, log)
	catalog := catalogdomain.NewService(catalogrepo.NewPostgres(dbConn), infra.Cache, cfg.Cache.CatalogTTL)
	insurance := insurancedomain.NewService(insurancerepo.NewPostgres(dbConn), ids, publisher)
	membership := membershipdomain.NewService(membershiprepo.NewPostgres(dbConn), ids, publisher)
	families := familydomain.NewService(familyrepo.NewPostgres(dbConn), publisher)
	vehicles := vehiclesdomain.NewService(vehiclesrepo.NewPostgres(dbConn), images, cfg.Storage.MaxUploadBytes, log)
	notifications := notificationsdomain.NewService(notificationsrepo.NewPostgres(dbConn))
	ledger := ledgerdomain.NewService(ledgerrepo.NewPostgres(dbConn))

	sqlDB, err := dbConn.DB()
	if err != nil {
		return nil, fmt.Errorf("db handle: %w", err)
	}

	cookie := common.SessionCookie{Name: cfg.Auth.CookieName, Secure: cfg.Auth.CookieSecure}
	handlers := &handler.Handlers{
		Common:     common.New(sqlDB, log),
		Auth:       authhandler.New(users, sessions, cookie, log),
		Dashboard:  dashboardhandler.New(insurance, notifications, log),
		Insurance:  insurancehandler.New(catalog, insurance, log),
		Membership: membershiphandler.New(membership, log),
		Profile:    profilehandler.New(users, insurance, vehicles, families, ledger, cookie, log),
		Vehicles:   vehicleshandler.New(vehicles, cfg.Storage.MaxUploadBytes, log),
		Family:     familyhandler.New(families, log),
	}

	log.Info("app: initializing router")
	return httpserver.NewRouter(cfg, httpserver.RouterDeps{
		Handlers:    handlers,
		Auth:        authmw.NewSessionAuth(sessions, users, cfg.Auth.CookieName, log),
		Metrics:     infra.Metrics,
		Log:         log,
		StorageRoot: infra.StorageRoot,
	}), nil
}

func (a *App) catalogCache(ctx context.Context) (catalogdomain.Cache, error) {
	switch a.cfg.Cache.Driver {
	case "", "memory":
		return inmemory.NewCatalogCache(), nil
	case "redis":
		rdb, err := redisrepo.NewClient(ctx, a.cfg.Redis)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, rdb)
		a.log.Info("app: catalog cache on redis", "addr", a.cfg.Redis.Addr)
		return redisrepo.NewCatalogCache(rdb, a.log), nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown CACHE_DRIVER %q", a.cfg.Cache.Driver)
	}
}

// imageStore returns the configured store and, for local disk, the directory
// the router serves.
func (a *App) imageStore(ctx context.Context) (vehiclesdomain.ImageStore, string, error) {
	switch a.cfg.Storage.Driver {
	case "", "local":
		store, err := local.New(a.cfg.Storage.LocalRoot, a.cfg.Storage.PublicBaseURL)
		if err != nil {
			return nil, "", err
		}
		return store, store.Root(), nil
	case "gcs":
		store, err := gcs.New(ctx, a.cfg.Storage.GCSBucket, a.cfg.Storage.GCSCDNDomain, gcs.ClientOptionsFromEnv()...)
		if err != nil {
			return nil, "", err
		}
		a.closers = append(a.closers, store)
		a.log.Info("app: vehicle images on gcs", "bucket", a.cfg.Storage.GCSBucket)
		return store, "", nil
	default:
		return nil, "", fmt.Errorf("unknown STORAGE_DRIVER %q", a.cfg.Storage.Driver)
	}
}

// publisher fans events out to the metrics counters and, when a broker is
// configured, to RabbitMQ. A broker that cannot be reached disables only
// the broker leg.
func (a *App) publisher(reg *metrics.Registry) events.Publisher {
	fanout := events.Fanout{reg}
	if a.cfg.Events.AMQPURL == "" {
		return fanout
	}
	broker, err := amqpevents.Dial(a.cfg.Events.AMQPURL, a.cfg.Events.Exchange, a.log)
	if err != nil {
		a.log.Error("app: events broker unavailable, publishing disabled", "err", err)
		return fanout
	}
	a.closers = append(a.closers, broker)
	return append(fanout, broker)
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.db != nil {
		sqlDB, err := a.db.DB()
		if err != nil {
			errs = append(errs, err)
		} else if err := sqlDB.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
