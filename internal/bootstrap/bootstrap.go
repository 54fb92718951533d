// Package bootstrap arma los casos de uso sobre PostgreSQL y los adaptadores externos.
// Lo comparten la API y financiactl.
package bootstrap

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/factoring-api/internal/application/funding"
	"github.com/jhoicas/factoring-api/internal/application/parties"
	"github.com/jhoicas/factoring-api/internal/application/payments"
	"github.com/jhoicas/factoring-api/internal/application/ports"
	"github.com/jhoicas/factoring-api/internal/application/proposal"
	"github.com/jhoicas/factoring-api/internal/infrastructure/lock"
	"github.com/jhoicas/factoring-api/internal/infrastructure/notify"
	infrapdf "github.com/jhoicas/factoring-api/internal/infrastructure/pdf"
	"github.com/jhoicas/factoring-api/internal/infrastructure/postgres"
	"github.com/jhoicas/factoring-api/internal/infrastructure/transfer"
	"github.com/jhoicas/factoring-api/pkg/config"
	"github.com/jhoicas/factoring-api/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// Services casos de uso listos para usar.
type Services struct {
	Proposals    *proposal.UseCase
	Funding      *funding.UseCase
	Derivation   *payments.DerivationUseCase
	Sweep        *payments.SweepUseCase
	PaymentQuery *payments.QueryUseCase

	pool *pgxpool.Pool
	rdb  *redis.Client
}

// Close libera el pool y el cliente Redis.
func (s *Services) Close() {
	if s.rdb != nil {
		_ = s.rdb.Close()
	}
	if s.pool != nil {
		s.pool.Close()
	}
}

// Build conecta a PostgreSQL (y a Redis si está configurado) y construye los casos de uso.
func Build(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Services, error) {
	pool, err := postgres.NewPool(ctx, cfg.DB, log)
	if err != nil {
		return nil, err
	}
	s := &Services{pool: pool}

	invoiceRepo := postgres.NewInvoiceRepository(pool)
	companyRepo := postgres.NewCompanyRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	proposalRepo := postgres.NewProposalRepository(pool)
	investmentRepo := postgres.NewInvestmentRepository(pool)
	paymentRepo := postgres.NewPaymentRepository(pool)
	txRunner := postgres.NewTxRunner(pool)
	resolver := parties.NewResolver(companyRepo, userRepo)

	// Notificaciones: SMTP si hay servidor configurado, si no solo log.
	var notifier ports.Notifier = notify.NewLogNotifier(log)
	if cfg.Mail.Host != "" {
		notifier = notify.NewEmailNotifier(cfg.Mail)
	}

	// Transferencias: pasarela bancaria solo en modo live.
	var mover ports.MoneyMover = transfer.NewSimulatedMover(log)
	if cfg.Payments.Mode == "live" {
		mover = transfer.NewGatewayClient(cfg.Payments.GatewayURL, cfg.Payments.GatewayKey)
	}

	// Candado del barrido: Redis con varias instancias, en memoria con una sola.
	var locker ports.Locker = lock.NewLocalLocker()
	if cfg.Redis.Addr != "" {
		rdb, err := lock.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.rdb = rdb
		locker = lock.NewRedisLocker(rdb)
	}

	s.Proposals = proposal.NewUseCase(txRunner, proposalRepo, invoiceRepo, resolver, notifier, log,
		proposal.Config{DefaultExpiryDays: cfg.Proposals.DefaultExpiryDays})
	s.Funding = funding.NewUseCase(txRunner, proposalRepo, investmentRepo, invoiceRepo, resolver, log)
	s.Derivation = payments.NewDerivationUseCase(txRunner, investmentRepo, invoiceRepo, resolver, log)
	s.Sweep = payments.NewSweepUseCase(paymentRepo, mover, locker, cfg.Payments.SweepLockTTL, log)
	s.PaymentQuery = payments.NewQueryUseCase(paymentRepo, investmentRepo, invoiceRepo, infrapdf.NewMarotoPDFGenerator())

	log.Info().
		Bool("smtp", cfg.Mail.Host != "").
		Str("payments_mode", cfg.Payments.Mode).
		Bool("redis_lock", cfg.Redis.Addr != "").
		Msg("servicios inicializados")
	return s, nil
}
