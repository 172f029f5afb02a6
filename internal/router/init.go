package router

import (
	"github.com/sailorswift/sailor-swift-api/internal/application"
	"github.com/sailorswift/sailor-swift-api/internal/container"
	"github.com/sailorswift/sailor-swift-api/internal/infrastructure/googleoauth"
	pginfra "github.com/sailorswift/sailor-swift-api/internal/infrastructure/postgres"
	"github.com/sailorswift/sailor-swift-api/internal/infrastructure/rediscache"
	"github.com/sailorswift/sailor-swift-api/internal/infrastructure/web3"
	handlers "github.com/sailorswift/sailor-swift-api/internal/interface/http"
	"github.com/sailorswift/sailor-swift-api/internal/router/modules"
)

func buildAuthModule() *modules.AuthModule {
	cfg := container.GetConfig()

	repo := pginfra.NewUserRepository(container.GetPGPool())
	google := googleoauth.NewVerifier(cfg.GoogleClientID, cfg.GoogleTokenInfoURL)
	nonces := rediscache.NewNonceStore(container.GetRedis(), cfg.WalletNonceTTL)

	service := application.NewService(
		repo,
		container.GetJWT(),
		google,
		web3.NewVerifier(),
		nonces,
		cfg.WalletSignatureRequired,
		container.GetLogger(),
	)

	handler := handlers.NewAuthHandler(service, container.GetLogger())
	return modules.NewAuthModule(handler, container.GetJWT())
}

// InitModules initializes all application modules and registers them with
// the router registry. Called once during startup.
func InitModules(r *Registry) {
	r.Add(buildAuthModule())
}
