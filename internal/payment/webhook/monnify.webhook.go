package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"fulfillment-be/internal/apperr"
	"fulfillment-be/internal/logger"
	"fulfillment-be/internal/payment"
	"fulfillment-be/internal/utils"

	"go.uber.org/zap"
)

const (
	provider        = "MONNIFY"
	signatureHeader = "monnify-signature"
	maxBodyBytes    = 1 << 20

	eventSuccessfulTransaction = "SUCCESSFUL_TRANSACTION"
)

// payload holds only the fields the engine consumes; anything else the
// gateway sends is ignored.
type payload struct {
	EventType string `json:"eventType"`
	EventData struct {
		TransactionReference string   `json:"transactionReference"`
		PaymentReference     string   `json:"paymentReference"`
		AmountPaid           *float64 `json:"amountPaid"`
		PaidOn               string   `json:"paidOn"`
		PaymentMethod        string   `json:"paymentMethod"`
		PaymentStatus        string   `json:"paymentStatus"`
	} `json:"eventData"`
}

type ConfirmationHandler interface {
	HandlePaymentConfirmed(ctx context.Context, c payment.Confirmation) (*payment.Result, error)
}

type Handler struct {
	processor ConfirmationHandler
	gateway   payment.Gateway
	payRepo   payment.Repository
}

func NewWebhookHandler(processor ConfirmationHandler, gateway payment.Gateway, payRepo payment.Repository) *Handler {
	return &Handler{processor: processor, gateway: gateway, payRepo: payRepo}
}

func (h *Handler) PaymentWebhookHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromCtx(ctx).With(zap.String("handler", "PaymentWebhook"))

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		utils.WriteJSONError(w, "failed to read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if err := h.gateway.VerifySignature(body, r.Header.Get(signatureHeader)); err != nil {
		log.Warn("webhook signature rejected", zap.Error(err))
		utils.WriteJSONError(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		utils.WriteJSONError(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}
	d := p.EventData
	if p.EventType == "" || d.TransactionReference == "" || d.PaymentReference == "" {
		utils.WriteJSONError(w, "missing required fields", http.StatusBadRequest)
		return
	}

	log = log.With(
		zap.String("event_type", p.EventType),
		zap.String("transaction_id", d.TransactionReference),
		zap.String("order_reference", d.PaymentReference),
	)

	eventID := d.TransactionReference + ":" + p.EventType
	webhookID, processed, err := h.payRepo.SaveWebhook(ctx, provider, eventID, p.EventType, d.PaymentReference, body, true)
	if err != nil {
		log.Error("failed to log webhook", zap.Error(err))
		utils.WriteJSONError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if processed {
		log.Info("webhook already processed")
		utils.WriteJSON(w, http.StatusOK, map[string]any{"status": "ok", "processed": false})
		return
	}

	if p.EventType != eventSuccessfulTransaction || !strings.EqualFold(d.PaymentStatus, string(payment.PaymentStatusPaid)) {
		log.Info("webhook event ignored", zap.String("payment_status", d.PaymentStatus))
		h.markProcessed(ctx, log, webhookID)
		utils.WriteJSON(w, http.StatusOK, map[string]any{"status": "ignored", "processed": false})
		return
	}

	if d.AmountPaid == nil || d.PaidOn == "" {
		h.markFailed(ctx, log, webhookID, "missing amount or payment time")
		utils.WriteJSONError(w, "missing required fields", http.StatusBadRequest)
		return
	}
	paidAt, err := payment.ParseGatewayTime(d.PaidOn)
	if err != nil {
		h.markFailed(ctx, log, webhookID, err.Error())
		utils.WriteJSONError(w, "invalid paidOn", http.StatusBadRequest)
		return
	}

	res, err := h.processor.HandlePaymentConfirmed(ctx, payment.Confirmation{
		OrderReference: d.PaymentReference,
		TransactionID:  d.TransactionReference,
		Amount:         payment.ToMinor(*d.AmountPaid),
		PaidAt:         paidAt,
		Method:         d.PaymentMethod,
	})
	if err != nil {
		h.markFailed(ctx, log, webhookID, err.Error())
		if errors.Is(err, apperr.ErrValidation) {
			utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Error("payment processing failed", zap.Error(err))
		utils.WriteJSONError(w, "failed to process payment", http.StatusInternalServerError)
		return
	}

	if !res.OrderFound {
		h.markFailed(ctx, log, webhookID, res.Message)
	} else {
		h.markProcessed(ctx, log, webhookID)
	}

	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"processed": res.Processed,
		"message":   res.Message,
	})
}

func (h *Handler) markProcessed(ctx context.Context, log *zap.Logger, id int64) {
	if err := h.payRepo.MarkWebhookProcessed(ctx, id); err != nil {
		log.Error("failed to mark webhook processed", zap.Error(err))
	}
}

func (h *Handler) markFailed(ctx context.Context, log *zap.Logger, id int64, reason string) {
	if err := h.payRepo.MarkWebhookFailed(ctx, id, reason); err != nil {
		log.Error("failed to mark webhook failed", zap.Error(err))
	}
}
