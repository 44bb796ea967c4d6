package routes

import (
	"github.com/gofiber/fiber/v2"

	"ledgerbook-backend/controllers"
	"ledgerbook-backend/middlewares"
)

// Register wires all HTTP routes.
func Register(app *fiber.App, h *controllers.Handlers) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy", "service": "ledgerbook-backend"})
	})

	api := app.Group("/api")

	// Public auth endpoints
	api.Post("/registration", h.Register)
	api.Post("/login", h.Login)
	api.Post("/logout", h.Logout)

	// Inbound payment confirmations are signed by the gateway, not by a user token.
	api.Post("/payments/webhook", h.PaymentWebhook)

	// Protected endpoints (JWT auth)
	protected := api.Group("")
	protected.Use(middlewares.IsAuthenticatedHeader())

	// Idempotency guard FIRST (not tied to handler transactions)
	protected.Use(middlewares.Idempotency())

	admin := protected.Group("", middlewares.RequireAdmin())

	// Cost centers
	admin.Post("/cost-centers", h.CreateCostCenter)
	protected.Get("/cost-centers", h.GetCostCenters)
	protected.Get("/cost-centers/:id", h.GetCostCenter)
	admin.Put("/cost-centers/:id", h.UpdateCostCenter)
	admin.Delete("/cost-centers/:id", h.DeleteCostCenter)

	// Products
	admin.Post("/products", h.CreateProduct)
	protected.Get("/products", h.GetProducts)
	protected.Get("/products/:id", h.GetProduct)
	admin.Put("/products/:id", h.UpdateProduct)
	admin.Delete("/products/:id", h.DeleteProduct)

	// Budgets (every read decorated with live utilization)
	admin.Post("/budgets", h.CreateBudget)
	protected.Get("/budgets", h.GetBudgets)
	protected.Get("/budgets/summary", h.GetBudgetSummary)
	protected.Get("/budgets/master", h.GetMasterBudget)
	admin.Put("/budgets/master", h.UpdateMasterBudget)
	protected.Get("/budgets/:id", h.GetBudget)
	admin.Put("/budgets/:id", h.UpdateBudget)
	admin.Delete("/budgets/:id", h.DeleteBudget)

	// Transactions
	admin.Post("/transactions", h.CreateTransaction)
	protected.Get("/transactions", h.GetTransactions)
	protected.Get("/transactions/summary", h.GetTransactionSummary)
	protected.Get("/transactions/:id", h.GetTransaction)
	admin.Put("/transactions/:id", h.UpdateTransaction)
	admin.Delete("/transactions/:id", h.DeleteTransaction)

	// Invoices
	admin.Post("/invoices", h.CreateInvoice)
	protected.Get("/invoices", h.GetInvoices)
	admin.Get("/invoices/customer/:customerId", h.GetCustomerInvoices)
	protected.Get("/invoices/:id", h.GetInvoice)
	admin.Put("/invoices/:id/status", h.UpdateInvoiceStatus)

	// Payments
	protected.Get("/payments", h.GetPayments)
	protected.Get("/payments/invoice/:id", h.GetInvoicePayments)
	admin.Post("/payments/record", h.RecordPayment)

	// Reports (admin)
	admin.Get("/reports/budget-vs-actual", h.BudgetVsActualReport)
	admin.Get("/reports/financial-summary", h.FinancialSummaryReport)
	admin.Get("/reports/cost-center-performance", h.CostCenterPerformanceReport)
	admin.Get("/reports/dashboard", h.DashboardReport)
	admin.Get("/reports/chart-data", h.ChartDataReport)
}
