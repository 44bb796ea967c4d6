package controllers

import (
	"github.com/gofiber/fiber/v2"
)

func (h *Handlers) BudgetVsActualReport(c *fiber.Ctx) error {
	report, err := h.engine.BudgetVsActual(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(report)
}

func (h *Handlers) FinancialSummaryReport(c *fiber.Ctx) error {
	report, err := h.engine.FinancialSummary(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(report)
}

func (h *Handlers) CostCenterPerformanceReport(c *fiber.Ctx) error {
	report, err := h.engine.CostCenterPerformance(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(report)
}

func (h *Handlers) DashboardReport(c *fiber.Ctx) error {
	report, err := h.engine.Dashboard(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(report)
}

func (h *Handlers) ChartDataReport(c *fiber.Ctx) error {
	chart, err := h.engine.MonthlyChart(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(chart)
}
