package app

import (
	"time"

	"github.com/yungbote/storefront-backend/internal/checkout"
	"github.com/yungbote/storefront-backend/internal/ledger"
	"github.com/yungbote/storefront-backend/internal/platform/envutil"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

type Config struct {
	Port string

	// PricePolicy controls what happens when a cart item's snapshot price
	// no longer matches the catalog ("fail" or "resnapshot").
	PricePolicy checkout.PricePolicy

	ReservationTTL time.Duration
	RecoverAfter   time.Duration
	SweepInterval  time.Duration
	SweepBatchSize int

	// RecoveryEnabled turns the background sweeper off entirely, for
	// one-off jobs and debugging against a shared database.
	RecoveryEnabled bool

	// RedisAddr switches the per-cart checkout guard from in-process to
	// Redis when set.
	RedisAddr string
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:            envutil.String("PORT", "8080"),
		PricePolicy:     checkout.PricePolicy(envutil.String("CHECKOUT_PRICE_POLICY", string(checkout.PriceFail))),
		ReservationTTL:  envutil.Duration("RESERVATION_TTL", ledger.DefaultReservationTTL),
		RecoverAfter:    envutil.Duration("CHECKOUT_RECOVER_AFTER", checkout.DefaultRecoverAfter),
		SweepInterval:   envutil.Duration("CHECKOUT_SWEEP_INTERVAL", checkout.DefaultSweepInterval),
		SweepBatchSize:  envutil.Int("CHECKOUT_SWEEP_BATCH", checkout.DefaultSweepBatchSize),
		RecoveryEnabled: envutil.Bool("CHECKOUT_RECOVERY_ENABLED", true),
		RedisAddr:       envutil.String("REDIS_ADDR", ""),
	}
	log.Info("Config loaded",
		"port", cfg.Port,
		"price_policy", cfg.PricePolicy,
		"reservation_ttl", cfg.ReservationTTL,
		"recover_after", cfg.RecoverAfter,
		"sweep_interval", cfg.SweepInterval,
		"sweep_batch", cfg.SweepBatchSize,
		"recovery_enabled", cfg.RecoveryEnabled,
	)
	return cfg
}
