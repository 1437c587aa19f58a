package fx

import (
	"context"
	"database/sql"
	"teamstats/internal/api"
	"teamstats/internal/checkin"
	"teamstats/internal/config"
	"teamstats/internal/database"
	"teamstats/internal/logger"
	"teamstats/internal/repository"
	"teamstats/internal/service"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func ProvideTokens(cfg *config.Config) (checkin.Tokens, error) {
	return checkin.LoadTokens(cfg.TokensPath)
}

func RegisterDatabase(lc fx.Lifecycle, db *sql.DB, logger zerolog.Logger) {
	if db == nil {
		return
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if err := db.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing archive database")
				return err
			}
			return nil
		},
	})
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	fx.Invoke(RegisterDatabase),
	// repos
	fx.Provide(repository.NewRosterRepository),
	fx.Provide(repository.NewSnapshotRepository),
	// checkins
	fx.Provide(ProvideTokens),
	fx.Provide(checkin.NewClassifier),
	fx.Provide(checkin.NewAggregator),
	// api client
	fx.Provide(api.NewTransport),
	fx.Provide(api.NewOAuthConfig),
	fx.Provide(api.NewAuthorizer),
	fx.Provide(fx.Annotate(api.NewTwitterClient, fx.As(new(service.EngagementFetcher)))),
	// svc
	fx.Provide(service.NewStatsMerger),
	fx.Provide(service.NewReportService),
)
