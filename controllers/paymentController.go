package controllers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"ledgerbook-backend/finance"
	"ledgerbook-backend/middlewares"
	"ledgerbook-backend/models"
)

func (h *Handlers) GetPayments(c *fiber.Ctx) error {
	role, _ := c.Locals("role").(string)
	userID, _ := c.Locals("userID").(string)

	var payments []models.Payment
	q := h.db.Order("paid_at DESC")
	if role != models.RoleAdmin {
		// Customers only see payments on their own invoices.
		q = q.Where("invoice_id IN (?)",
			h.db.Model(&models.Invoice{}).Select("id").Where("customer_id = ?", userID))
	}
	if err := q.Find(&payments).Error; err != nil {
		return err
	}
	return c.JSON(payments)
}

func (h *Handlers) GetInvoicePayments(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid invoice id")
	}
	var invoice models.Invoice
	if h.db.First(&invoice, id).RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "invoice not found")
	}

	role, _ := c.Locals("role").(string)
	userID, _ := c.Locals("userID").(string)
	if role != models.RoleAdmin && invoice.CustomerID != userID {
		return fiber.NewError(fiber.StatusForbidden, "access denied")
	}

	payments, err := h.store.FindPayments(c.Context(), invoice.Id)
	if err != nil {
		return err
	}
	rec := finance.Reconcile(invoice, payments)

	return c.JSON(fiber.Map{
		"invoice_id":     invoice.Id,
		"invoice_amount": invoice.TotalAmount,
		"total_paid":     rec.PaidAmount,
		"balance":        rec.Balance,
		"status":         rec.Status,
		"payments":       payments,
	})
}

type recordPaymentInput struct {
	InvoiceID     uint            `json:"invoice_id" validate:"required"`
	Amount        decimal.Decimal `json:"amount" validate:"required"`
	Method        string          `json:"payment_method" validate:"required,max=50"`
	ExternalTxnID string          `json:"transaction_id" validate:"omitempty,max=100"`
}

// RecordPayment is the manual path; it shares the reconciliation write
// path with webhook ingestion.
func (h *Handlers) RecordPayment(c *fiber.Ctx) error {
	var in recordPaymentInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	result, err := h.engine.RecordPayment(c.Context(), finance.PaymentInput{
		InvoiceID:     in.InvoiceID,
		Amount:        in.Amount,
		Method:        in.Method,
		ExternalTxnID: in.ExternalTxnID,
	})
	if err != nil {
		return paymentError(err)
	}

	if result.Duplicate {
		return c.JSON(fiber.Map{
			"message":   "Payment already recorded",
			"duplicate": true,
			"payment":   result.Payment,
			"invoice":   result.Invoice,
		})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Payment recorded successfully",
		"payment": result.Payment,
		"invoice": result.Invoice,
	})
}

// webhookEvent mirrors the payment gateway's confirmation envelope.
type webhookEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID       string `json:"id"`
			Amount   int64  `json:"amount"`
			Metadata struct {
				InvoiceID string `json:"invoice_id"`
			} `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

// PaymentWebhook ingests asynchronous payment confirmations. Redelivered
// events are acknowledged without creating a second payment.
func (h *Handlers) PaymentWebhook(c *fiber.Ctx) error {
	var event webhookEvent
	if err := c.BodyParser(&event); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid event payload")
	}

	payload := make([]byte, len(c.Body()))
	copy(payload, c.Body())

	if event.Type != "payment_intent.succeeded" {
		h.auditEvent(event.ID, 0, "ignored", payload)
		return c.JSON(fiber.Map{"status": "ignored"})
	}

	invoiceID, err := strconv.ParseUint(event.Data.Object.Metadata.InvoiceID, 10, 32)
	if err != nil || invoiceID == 0 {
		h.auditEvent(event.ID, 0, "ignored", payload)
		return fiber.NewError(fiber.StatusBadRequest, "event missing invoice_id metadata")
	}

	result, err := h.engine.ApplyConfirmation(c.Context(), finance.ConfirmationEvent{
		EventID:       event.ID,
		Type:          event.Type,
		InvoiceID:     uint(invoiceID),
		AmountCents:   event.Data.Object.Amount,
		ExternalTxnID: event.Data.Object.ID,
		Method:        "gateway",
	})
	if err != nil {
		h.auditEvent(event.ID, uint(invoiceID), "ignored", payload)
		return paymentError(err)
	}

	outcome := "applied"
	if result.Duplicate {
		outcome = "duplicate"
	}
	h.auditEvent(event.ID, uint(invoiceID), outcome, payload)

	return c.JSON(fiber.Map{
		"status":    "success",
		"duplicate": result.Duplicate,
		"invoice":   result.Invoice,
	})
}

func (h *Handlers) auditEvent(eventID string, invoiceID uint, outcome string, payload []byte) {
	rec := models.PaymentEvent{
		EventID:   eventID,
		InvoiceID: invoiceID,
		Outcome:   outcome,
		Payload:   datatypes.JSON(payload),
	}
	if err := h.db.Create(&rec).Error; err != nil {
		h.log.Warn().Err(err).Str("event_id", eventID).Msg("could not store payment event audit row")
	}
}

func paymentError(err error) error {
	switch {
	case errors.Is(err, finance.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "invoice not found")
	case errors.Is(err, finance.ErrInvalidAmount):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return err
	}
}
