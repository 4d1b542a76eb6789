package handler

import (
	"net/http"

	"fulfillment-be/internal/mapper"
	"fulfillment-be/internal/metrics"
	"fulfillment-be/internal/payment"
	"fulfillment-be/internal/utils"

	"github.com/go-chi/chi/v5"
)

type PaymentHandler struct {
	svc payment.Service
}

func NewPaymentHandler(svc payment.Service) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

func (h *PaymentHandler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := h.svc.CreateInvoice(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, mapper.MapInvoice(inv))
}

// VerifyPayment pulls the invoice status from the gateway, for when the
// webhook never arrived.
func (h *PaymentHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.VerifyPayment(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, mapper.MapPaymentResult(res))
}

func MetricsHandler(reg *metrics.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSON(w, http.StatusOK, mapper.MapMetrics(reg.Snapshot()))
	}
}
