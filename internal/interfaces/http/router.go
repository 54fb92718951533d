package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/factoring-api/internal/application/funding"
	"github.com/jhoicas/factoring-api/internal/application/payments"
	"github.com/jhoicas/factoring-api/internal/application/proposal"
	"github.com/jhoicas/factoring-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProposalUC     *proposal.UseCase
	FundingUC      *funding.UseCase
	DerivationUC   *payments.DerivationUseCase
	SweepUC        *payments.SweepUseCase
	PaymentQueryUC *payments.QueryUseCase
	JWTSecret      string
	Now            func() time.Time // reloj de los trabajos de admin; nil = time.Now
}

var (
	roleInvestor = string(entity.RoleInvestor)
	roleCompany  = string(entity.RoleCompany)
	roleAdmin    = string(entity.RoleAdmin)
)

// Router registra las rutas de la API. Todas requieren Bearer Token con rol.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret), RequireRole(roleInvestor, roleCompany, roleAdmin))

	proposalHandler := NewProposalHandler(deps.ProposalUC)
	investmentHandler := NewInvestmentHandler(deps.FundingUC, deps.PaymentQueryUC)
	paymentHandler := NewPaymentHandler(deps.PaymentQueryUC)
	adminHandler := NewAdminHandler(deps.ProposalUC, deps.FundingUC, deps.DerivationUC, deps.SweepUC, deps.Now)

	// Proposals
	proposals := protected.Group("/proposals")
	proposals.Post("/", RequireRole(roleInvestor), proposalHandler.Create)
	proposals.Get("/", proposalHandler.List)
	proposals.Get("/:id", proposalHandler.Get)
	proposals.Get("/:id/history", proposalHandler.History)
	proposals.Post("/:id/send", RequireRole(roleInvestor, roleAdmin), proposalHandler.Send)
	proposals.Post("/:id/approve", proposalHandler.Approve)
	proposals.Post("/:id/reject", proposalHandler.Reject)
	proposals.Post("/:id/counter-offer", proposalHandler.CounterOffer)
	proposals.Post("/:id/fund", RequireRole(roleInvestor), investmentHandler.Fund)

	// Invoices
	protected.Get("/invoices/:id/proposals", RequireRole(roleCompany, roleAdmin), proposalHandler.ListByInvoice)

	// Investments
	investments := protected.Group("/investments")
	investments.Get("/", RequireRole(roleInvestor), investmentHandler.List)
	investments.Get("/:id", investmentHandler.Get)
	investments.Get("/:id/payments", investmentHandler.Payments)

	// Payments
	paymentsGroup := protected.Group("/payments")
	paymentsGroup.Get("/:id", paymentHandler.Get)
	paymentsGroup.Get("/:id/voucher", paymentHandler.Voucher)

	// Admin
	admin := protected.Group("/admin", RequireRole(roleAdmin))
	admin.Post("/investments/:id/derive-payments", adminHandler.DerivePayments)
	admin.Post("/investments/:id/complete", adminHandler.CompleteInvestment)
	admin.Post("/investments/:id/default", adminHandler.DefaultInvestment)
	admin.Post("/payments/sweep", adminHandler.SweepPayments)
	admin.Post("/proposals/expire", adminHandler.ExpireDueProposals)
	admin.Post("/proposals/:id/expire", adminHandler.ExpireProposal)
}
