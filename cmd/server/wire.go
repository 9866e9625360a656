//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"loveslices-server/internal/config"
	conversationdomain "loveslices-server/internal/domain/conversation"
	journaldomain "loveslices-server/internal/domain/journal"
	pairingdomain "loveslices-server/internal/domain/pairing"
	questiondomain "loveslices-server/internal/domain/question"
	userdomain "loveslices-server/internal/domain/user"
	"loveslices-server/internal/infrastructure/auth"
	"loveslices-server/internal/infrastructure/database"
	conversationrepo "loveslices-server/internal/infrastructure/repository/conversation"
	journalrepo "loveslices-server/internal/infrastructure/repository/journal"
	pairingrepo "loveslices-server/internal/infrastructure/repository/pairing"
	questionrepo "loveslices-server/internal/infrastructure/repository/question"
	userrepo "loveslices-server/internal/infrastructure/repository/user"
	"loveslices-server/internal/interfaces/httpserver"
	"loveslices-server/internal/realtime"
)

func provideDatabase(cfg *config.Config) (*gorm.DB, error) {
	return database.Connect(database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	})
}

var repositorySet = wire.NewSet(
	userrepo.NewRepository,
	wire.Bind(new(userdomain.Repository), new(*userrepo.Repository)),
	questionrepo.NewRepository,
	wire.Bind(new(questiondomain.Repository), new(*questionrepo.Repository)),
	pairingrepo.NewRepository,
	wire.Bind(new(pairingdomain.Repository), new(*pairingrepo.Repository)),
	wire.Bind(new(conversationdomain.LovesliceMarker), new(*pairingrepo.Repository)),
	conversationrepo.NewRepository,
	wire.Bind(new(conversationdomain.Repository), new(*conversationrepo.Repository)),
	journalrepo.NewRepository,
	wire.Bind(new(journaldomain.Repository), new(*journalrepo.Repository)),
)

var serviceSet = wire.NewSet(
	pairingdomain.NewService,
	conversationdomain.NewService,
	journaldomain.NewService,
)

var realtimeSet = wire.NewSet(
	realtime.NewHub,
	wire.Bind(new(conversationdomain.Publisher), new(*realtime.Hub)),
	realtime.NewHandler,
)

// BuildApplication assembles the service graph.
func BuildApplication(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Application, error) {
	wire.Build(
		provideDatabase,
		auth.NewValidator,
		repositorySet,
		serviceSet,
		realtimeSet,
		httpserver.New,
		NewApplication,
	)
	return nil, nil
}
