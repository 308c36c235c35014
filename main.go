package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"

	"salemre/backend/internal/api"
	"salemre/backend/internal/api/handlers"
	"salemre/backend/internal/api/middleware"
	"salemre/backend/internal/cache"
	"salemre/backend/internal/captcha"
	"salemre/backend/internal/config"
	"salemre/backend/internal/db"
	"salemre/backend/internal/email"
	"salemre/backend/internal/events"
	"salemre/backend/internal/logging"
	"salemre/backend/internal/repository"
	"salemre/backend/internal/repository/mongorepo"
	"salemre/backend/internal/repository/sqlrepo"
	"salemre/backend/internal/scheduler"
	"salemre/backend/internal/seed"
	"salemre/backend/internal/services"
	"salemre/backend/internal/storage"
	"salemre/backend/internal/tasks"
)

var runMode = flag.String("m", envOr("RUN_MODE", "all"), "Run mode: 'api', 'bg' (background tasks), 'all' (default), 'seed' (load SEED_FILE and exit)")

func main() {
	flag.Parse()

	cfg, err := config.Load(*runMode)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(cfg.AppName, cfg.AppEnv, cfg.LogLevel)

	switch cfg.RunMode {
	case "api", "bg", "all", "seed":
	default:
		log.Fatal().Str("mode", cfg.RunMode).Msg("invalid run mode")
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStart()

	store, mongoClient, mongoDB, err := openStore(startCtx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			log.Error().Err(err).Msg("error closing store")
		}
		if err := db.DisconnectMongo(mongoClient); err != nil {
			log.Error().Err(err).Msg("error disconnecting from MongoDB")
		}
	}()

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb, err = cache.Connect(startCtx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer func() {
			if err := cache.Close(rdb); err != nil {
				log.Error().Err(err).Msg("error disconnecting from Redis")
			}
		}()
	} else if cfg.RunMode == "bg" || cfg.MockServices {
		log.Fatal().Msg("REDIS_ADDR is required for background tasks and mock services")
	} else {
		log.Warn().Msg("REDIS_ADDR is empty: list cache and background tasks disabled")
	}

	files, err := openFileStore(startCtx, cfg, mongoDB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize upload storage")
	}

	var publisher events.Publisher = events.NewLogPublisher()
	if cfg.AmqpURL != "" {
		amqpPub, err := events.DialAMQP(cfg.AmqpURL, cfg.AmqpExchange)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to AMQP broker")
		}
		publisher = amqpPub
	}
	defer publisher.Close()

	// Interfaces stay nil without Redis; a typed nil would look configured.
	var listCache services.ListCache
	var enqueuer services.TaskEnqueuer
	var taskClient *tasks.Client
	if rdb != nil {
		listCache = cache.NewListCache(rdb, cfg.ListCacheTTL)
		taskClient = tasks.NewClient(rdb)
		enqueuer = taskClient
		defer taskClient.Close()
	}

	svc := api.Services{
		Properties: services.NewPropertyService(store, cfg, listCache, publisher),
		Blog:       services.NewBlogService(store, cfg, listCache),
		Inquiries:  services.NewInquiryService(store, cfg, enqueuer, publisher),
		Users:      services.NewUserService(store, cfg),
		Uploads:    services.NewUploadService(files, cfg, enqueuer),
	}

	if err := svc.Users.BootstrapAdmin(startCtx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatal().Err(err).Msg("failed to bootstrap admin account")
	}

	if cfg.RunMode == "seed" {
		runSeed(cfg, svc)
		return
	}

	emailSender := buildEmailSender(cfg, rdb)

	var wg sync.WaitGroup
	shutdownChan := make(chan struct{}, 1)

	checks := map[string]handlers.Pinger{"store": store}
	if rdb != nil {
		checks["redis"] = handlers.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	}
	serviceSrv := &http.Server{
		Addr:    ":" + cfg.ServiceApiPort,
		Handler: api.SetupServiceRouter(checks, rdb, shutdownChan),
	}
	serve(&wg, "service API", serviceSrv)

	var mainAPISrv *http.Server
	var limiter *middleware.RateLimiterMiddleware
	var taskSrv *asynq.Server
	var cron *scheduler.Scheduler

	log.Info().Str("mode", cfg.RunMode).Str("store", cfg.StoreDriver).Msg("starting application")

	if cfg.RunMode == "api" || cfg.RunMode == "all" {
		if cfg.RateLimitRPS > 0 {
			limiter = middleware.NewRateLimiterMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst)
		}
		router := api.SetupRouter(cfg, svc, captcha.NewTurnstileVerifier(cfg), limiter)
		mainAPISrv = &http.Server{
			Addr:              ":" + cfg.ApiPort,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}
		serve(&wg, "main API", mainAPISrv)
	}

	if (cfg.RunMode == "bg" || cfg.RunMode == "all") && rdb != nil {
		processor := tasks.NewTaskProcessor(cfg, emailSender, files, svc.Inquiries)
		var mux *asynq.ServeMux
		taskSrv, mux = tasks.SetupServer(rdb, processor, 10)
		if err := taskSrv.Start(mux); err != nil {
			log.Fatal().Err(err).Msg("failed to start task server")
		}
		log.Info().Msg("task server started")

		cron = scheduler.New(cfg.DigestCron, taskClient)
		if err := cron.Start(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("failed to start scheduler")
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case <-shutdownChan:
		log.Info().Msg("shutdown requested via service API")
	}

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()

	if cron != nil {
		cron.Stop()
	}
	if mainAPISrv != nil {
		if err := mainAPISrv.Shutdown(ctxShutdown); err != nil {
			log.Error().Err(err).Msg("main API shutdown error")
		}
	}
	if limiter != nil {
		limiter.Close()
	}
	if taskSrv != nil {
		taskSrv.Shutdown()
	}
	if err := serviceSrv.Shutdown(ctxShutdown); err != nil {
		log.Error().Err(err).Msg("service API shutdown error")
	}

	wg.Wait()
	log.Info().Msg("server gracefully stopped")
}

func serve(wg *sync.WaitGroup, name string, srv *http.Server) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info().Str("addr", srv.Addr).Msgf("%s listening", name)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msgf("%s stopped unexpectedly", name)
		}
	}()
}

// openStore connects the configured driver and prepares its schema. The
// mongo client is returned when uploads go to GridFS, and then belongs to the
// caller.
func openStore(ctx context.Context, cfg *config.Config) (repository.Store, *mongo.Client, *mongo.Database, error) {
	if cfg.StoreDriver == config.DriverMongo {
		client, database, err := db.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDbName, cfg.AppName)
		if err != nil {
			return nil, nil, nil, err
		}
		store := mongorepo.New(nil, database)
		if err := store.EnsureIndexes(ctx); err != nil {
			_ = db.DisconnectMongo(client)
			return nil, nil, nil, err
		}
		return store, client, database, nil
	}

	conn, err := db.ConnectSQL(cfg.StoreDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, err
	}
	store := sqlrepo.New(conn, cfg.StoreDriver)
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close(ctx)
		return nil, nil, nil, err
	}
	if cfg.UploadBackend != config.UploadBackendGridFS {
		return store, nil, nil, nil
	}
	client, database, err := db.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDbName, cfg.AppName)
	if err != nil {
		_ = store.Close(ctx)
		return nil, nil, nil, err
	}
	return store, client, database, nil
}

func openFileStore(ctx context.Context, cfg *config.Config, mongoDB *mongo.Database) (storage.FileStore, error) {
	if cfg.UploadBackend == config.UploadBackendGridFS {
		return storage.NewGridFSStorage(mongoDB, "/api/uploads/")
	}
	client, err := storage.NewS3Client(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return storage.NewS3Storage(client, cfg), nil
}

func buildEmailSender(cfg *config.Config, rdb *redis.Client) email.Sender {
	composite := email.NewCompositeEmailSender()
	if cfg.MockServices {
		log.Info().Msg("MOCK_SERVICES enabled: email goes to Redis")
		composite.AddSender(email.NewRedisSender(rdb, cfg.SmtpFromAddress))
	} else {
		composite.AddSender(email.NewSMTPSender(cfg))
	}
	if cfg.EmailLogFile != "" {
		fileSender, err := email.NewFileEmailSender(cfg.EmailLogFile)
		if err != nil {
			log.Warn().Err(err).Str("path", cfg.EmailLogFile).Msg("email log file disabled")
		} else {
			composite.AddSender(fileSender)
		}
	}
	return composite
}

func runSeed(cfg *config.Config, svc api.Services) {
	if cfg.SeedFile == "" {
		log.Fatal().Msg("seed mode needs SEED_FILE")
	}
	fx, err := seed.Load(cfg.SeedFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load fixtures")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	sum, err := seed.NewSeeder(svc.Users, svc.Properties, svc.Blog).Run(ctx, fx, cfg.AdminEmail)
	if err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}
	log.Info().Interface("summary", sum).Msg("seed finished")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
