package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"

	"loveslices-server/internal/config"
	"loveslices-server/internal/domain/conversation"
	"loveslices-server/internal/domain/journal"
	"loveslices-server/internal/domain/pairing"
	"loveslices-server/internal/infrastructure/auth"
	"loveslices-server/internal/infrastructure/database"
	"loveslices-server/internal/infrastructure/logger"
	"loveslices-server/internal/infrastructure/observability"
	conversationrepo "loveslices-server/internal/infrastructure/repository/conversation"
	journalrepo "loveslices-server/internal/infrastructure/repository/journal"
	pairingrepo "loveslices-server/internal/infrastructure/repository/pairing"
	questionrepo "loveslices-server/internal/infrastructure/repository/question"
	userrepo "loveslices-server/internal/infrastructure/repository/user"
	"loveslices-server/internal/interfaces/httpserver"
	"loveslices-server/internal/realtime"
)

type Application struct {
	httpServer *httpserver.HttpServer
	hub        *realtime.Hub
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, hub *realtime.Hub, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		hub:        hub,
		log:        log,
	}
}

func (a *Application) Start(ctx context.Context) error {
	defer a.hub.Shutdown()
	return a.httpServer.Run(ctx)
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	db, err := database.Connect(database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}

	if err := database.AutoMigrate(ctx, db, log); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	authValidator, err := auth.NewValidator(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize auth validator")
	}

	userRepository := userrepo.NewRepository(db)
	questionRepository := questionrepo.NewRepository(db)
	pairingRepository := pairingrepo.NewRepository(db)
	conversationRepository := conversationrepo.NewRepository(db)
	journalRepository := journalrepo.NewRepository(db)

	hub := realtime.NewHub(cfg, log)

	pairingService := pairing.NewService(pairingRepository, questionRepository, userRepository, log)
	conversationService := conversation.NewService(conversationRepository, userRepository, pairingRepository, hub, log)
	journalService := journal.NewService(journalRepository, log)

	channelHandler := realtime.NewHandler(hub)

	httpServer := httpserver.New(
		cfg,
		log,
		conversationService,
		pairingService,
		journalService,
		questionRepository,
		channelHandler,
		authValidator,
	)
	app := NewApplication(httpServer, hub, log)

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
