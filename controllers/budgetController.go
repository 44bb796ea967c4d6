package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"ledgerbook-backend/finance"
	"ledgerbook-backend/middlewares"
	"ledgerbook-backend/models"
	"ledgerbook-backend/utils"
)

type budgetCreateInput struct {
	CostCenterID uint            `json:"cost_center_id" validate:"required"`
	Amount       decimal.Decimal `json:"amount" validate:"required"`
	PeriodStart  models.Date     `json:"period_start" validate:"required"`
	PeriodEnd    models.Date     `json:"period_end" validate:"required"`
}

type budgetUpdateInput struct {
	Amount      *decimal.Decimal `json:"amount"`
	PeriodStart *models.Date     `json:"period_start"`
	PeriodEnd   *models.Date     `json:"period_end"`
}

// budgetView decorates a stored budget with its live utilization.
type budgetView struct {
	models.Budget
	CostCenterName *string `json:"cost_center_name"`
	finance.UtilizationReport
}

func (h *Handlers) budgetView(c *fiber.Ctx, b models.Budget) (budgetView, error) {
	u, err := h.engine.EvaluateBudget(c.Context(), b)
	if err != nil {
		return budgetView{}, err
	}
	view := budgetView{Budget: b, UtilizationReport: u}
	var cc models.CostCenter
	if h.db.First(&cc, b.CostCenterID).RowsAffected > 0 {
		view.CostCenterName = &cc.Name
	}
	return view, nil
}

func (h *Handlers) CreateBudget(c *fiber.Ctx) error {
	var in budgetCreateInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	if in.PeriodEnd.Before(in.PeriodStart.Time) {
		return fiber.NewError(fiber.StatusBadRequest, "period_start must not be after period_end")
	}
	var cc models.CostCenter
	if h.db.First(&cc, in.CostCenterID).RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "cost center not found")
	}

	budget := models.Budget{
		CostCenterID: in.CostCenterID,
		Amount:       in.Amount,
		PeriodStart:  in.PeriodStart,
		PeriodEnd:    in.PeriodEnd,
	}
	if err := h.db.Create(&budget).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Could not create budget",
			"error":   err.Error(),
		})
	}

	view, err := h.budgetView(c, budget)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Budget created successfully",
		"budget":  view,
	})
}

func (h *Handlers) GetBudgets(c *fiber.Ctx) error {
	var budgets []models.Budget
	if err := h.db.Order("id").Find(&budgets).Error; err != nil {
		return err
	}
	views := make([]budgetView, 0, len(budgets))
	for _, b := range budgets {
		view, err := h.budgetView(c, b)
		if err != nil {
			return err
		}
		views = append(views, view)
	}
	return c.JSON(views)
}

func (h *Handlers) GetBudget(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid budget id")
	}
	var budget models.Budget
	if h.db.First(&budget, id).RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "budget not found")
	}

	view, err := h.budgetView(c, budget)
	if err != nil {
		return err
	}

	// Single-budget reads also list the transactions in window.
	var transactions []models.Transaction
	if budget.CostCenterID != 0 && budget.HasPeriod() {
		transactions, err = h.store.FindTransactions(c.Context(), budget.CostCenterID, budget.PeriodStart, budget.PeriodEnd)
		if err != nil {
			return err
		}
	}
	return c.JSON(fiber.Map{
		"budget":       view,
		"transactions": transactions,
	})
}

func (h *Handlers) UpdateBudget(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid budget id")
	}
	var budget models.Budget
	if h.db.First(&budget, id).RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "budget not found")
	}

	var in budgetUpdateInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	if in.Amount != nil {
		budget.Amount = *in.Amount
	}
	if in.PeriodStart != nil {
		budget.PeriodStart = *in.PeriodStart
	}
	if in.PeriodEnd != nil {
		budget.PeriodEnd = *in.PeriodEnd
	}
	if budget.HasPeriod() && budget.PeriodEnd.Before(budget.PeriodStart.Time) {
		return fiber.NewError(fiber.StatusBadRequest, "period_start must not be after period_end")
	}

	if err := h.db.Save(&budget).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Could not update budget",
			"error":   err.Error(),
		})
	}

	view, err := h.budgetView(c, budget)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Budget updated successfully",
		"budget":  view,
	})
}

func (h *Handlers) DeleteBudget(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid budget id")
	}
	res := h.db.Delete(&models.Budget{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "budget not found")
	}
	return c.JSON(fiber.Map{"message": "Budget deleted successfully"})
}

func (h *Handlers) GetBudgetSummary(c *fiber.Ctx) error {
	var budgets []models.Budget
	if err := h.db.Find(&budgets).Error; err != nil {
		return err
	}

	totalBudget, totalSpent := decimal.Zero, decimal.Zero
	overBudget := 0
	for _, b := range budgets {
		u, err := h.engine.EvaluateBudget(c.Context(), b)
		if err != nil {
			return err
		}
		totalBudget = totalBudget.Add(b.Amount)
		totalSpent = totalSpent.Add(u.ActualSpent)
		if u.IsOverBudget {
			overBudget++
		}
	}

	return c.JSON(fiber.Map{
		"total_budget":                   totalBudget,
		"total_spent":                    totalSpent,
		"overall_utilization_percentage": utils.Percent(totalSpent, totalBudget),
		"remaining_balance":              totalBudget.Sub(totalSpent),
		"budget_count":                   len(budgets),
		"over_budget_count":              overBudget,
	})
}

var defaultMasterBudget = decimal.NewFromInt(1500000)

func (h *Handlers) GetMasterBudget(c *fiber.Ctx) error {
	var mb models.MasterBudget
	if h.db.First(&mb).RowsAffected == 0 {
		mb = models.MasterBudget{Amount: defaultMasterBudget, UpdatedAt: time.Now().UTC()}
		if err := h.db.Create(&mb).Error; err != nil {
			return err
		}
	}
	return c.JSON(mb)
}

func (h *Handlers) UpdateMasterBudget(c *fiber.Ctx) error {
	var in struct {
		Amount *decimal.Decimal `json:"amount" validate:"required"`
	}
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	if in.Amount.Sign() < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "amount must not be negative")
	}

	var mb models.MasterBudget
	if h.db.First(&mb).RowsAffected == 0 {
		mb = models.MasterBudget{Amount: *in.Amount}
		if err := h.db.Create(&mb).Error; err != nil {
			return err
		}
	} else {
		mb.Amount = *in.Amount
		if err := h.db.Save(&mb).Error; err != nil {
			return err
		}
	}
	return c.JSON(fiber.Map{
		"message": "Master budget updated",
		"amount":  mb.Amount,
	})
}
