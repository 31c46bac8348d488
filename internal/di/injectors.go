//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"

	"emospray/internal"
	"emospray/internal/classifier"
	"emospray/internal/controllers"
	"emospray/internal/providers"
	"emospray/internal/services"
	"emospray/internal/storage"
	"emospray/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewPrometheusRegisterer,
		providers.NewMetricsProvider,
		providers.NewCacheProvider,

		storage.NewZstdCompressor,
		storage.NewFileManager,
		storage.NewStore,
		storage.NewScheduler,
		classifier.NewHTTPClassifier,
		services.NewDeviceService,
		controllers.NewDeviceController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
