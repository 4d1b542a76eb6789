package mapper

import (
	"fulfillment-be/internal/handler/model"
	"fulfillment-be/internal/metrics"
	"fulfillment-be/internal/payment"
)

func MapInvoice(inv *payment.Invoice) *model.Invoice {
	return &model.Invoice{
		Reference:     inv.Reference,
		TransactionID: inv.TransactionID,
		CheckoutURL:   inv.CheckoutURL,
		AccountNumber: inv.AccountNumber,
		AccountName:   inv.AccountName,
		BankName:      inv.BankName,
		Amount:        inv.Amount,
		ExpiresAt:     inv.ExpiresAt,
	}
}

func MapPaymentResult(r *payment.Result) *model.PaymentResult {
	return &model.PaymentResult{
		Processed:   r.Processed,
		OrderFound:  r.OrderFound,
		OrderNumber: r.OrderNumber,
		Message:     r.Message,
	}
}

func MapMetrics(samples []metrics.Sample) []*model.Metric {
	res := make([]*model.Metric, 0, len(samples))
	for _, s := range samples {
		res = append(res, &model.Metric{Name: s.Name, Value: s.Value})
	}
	return res
}
