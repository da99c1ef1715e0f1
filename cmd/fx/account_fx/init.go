package account_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"tripwise/internal/infra"
	"tripwise/internal/repositories"
	"tripwise/internal/services"
	mem "tripwise/pkg/memcache"
	"tripwise/pkg/utils"
)

var Module = fx.Provide(
	provideAccountService, provideAccountRepo, provideTokenIssuer)

func provideAccountRepo(db *gorm.DB) repositories.AccountRepository {
	return repositories.NewAccountRepository(db)
}

func provideTokenIssuer(cfg *infra.Config) *utils.TokenIssuer {
	return utils.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTokenTTL)
}

func provideAccountService(
	accountRepo repositories.AccountRepository,
	issuer *utils.TokenIssuer,
	refreshTokens mem.RefreshTokenStore,
	cfg *infra.Config,
	log *zap.Logger,
) services.AccountServiceInterface {
	return services.NewAccountService(accountRepo, issuer, refreshTokens, cfg.RefreshTokenTTL, log.Named("account"))
}
