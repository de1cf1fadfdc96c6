package fx

import (
	"teammate-tracker/internal/api"
	"teammate-tracker/internal/config"
	"teammate-tracker/internal/database"
	"teammate-tracker/internal/logger"
	"teammate-tracker/internal/repository"
	"teammate-tracker/internal/server"
	"teammate-tracker/internal/service"
	"teammate-tracker/internal/steamid"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func ProvideResolver(cfg *config.Config, steam *api.SteamClient, log zerolog.Logger) *steamid.Resolver {
	return steamid.NewResolver(cfg, steam, log)
}

func ProvideIngestService(leetify *api.LeetifyClient, matchRepo *repository.MatchRepository, normalizer *service.Normalizer, cfg *config.Config, log zerolog.Logger) *service.IngestService {
	return service.NewIngestService(leetify, matchRepo, normalizer, cfg, log)
}

func ProvideHistoryService(resolver *steamid.Resolver, matchRepo *repository.MatchRepository, steam *api.SteamClient, faceit *api.FaceitClient, metricsRepo *repository.MetricsRepository, log zerolog.Logger) *service.HistoryService {
	return service.NewHistoryService(resolver, matchRepo, steam, faceit, metricsRepo, log)
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	// repos
	fx.Provide(repository.NewMatchRepository),
	fx.Provide(repository.NewMetricsRepository),
	// api clients
	fx.Provide(api.NewSteamClient),
	fx.Provide(api.NewLeetifyClient),
	fx.Provide(api.NewFaceitClient),
	// svc
	fx.Provide(service.NewNormalizer),
	fx.Provide(ProvideResolver),
	fx.Provide(ProvideIngestService),
	fx.Provide(ProvideHistoryService),
	// server
	fx.Provide(server.NewTrackerServer),
)
