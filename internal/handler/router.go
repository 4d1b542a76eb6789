package handler

import (
	"net/http"

	"fulfillment-be/internal/logger"
	"fulfillment-be/internal/metrics"
	"fulfillment-be/internal/middleware"
	"fulfillment-be/internal/payment/webhook"
	"fulfillment-be/internal/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type Router struct {
	Accounts    *AccountHandler
	Assignments *AssignmentHandler
	Items       *ItemHandler
	Officers    *OfficerHandler
	Payments    *PaymentHandler
	Webhooks    *webhook.Handler
	Metrics     *metrics.Registry
	Tokens      middleware.TokenVerifier
	Limiter     *middleware.RateLimiter
}

func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(logger.RequestIDMiddleware)
	r.Use(logger.LoggingMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.With(rt.Limiter.Middleware(middleware.TierStrict)).
		Post("/api/webhooks/payment", rt.Webhooks.PaymentWebhookHandler)
	r.With(rt.Limiter.Middleware(middleware.TierAuth)).
		Post("/api/auth/login", rt.Accounts.Login)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(rt.Tokens))
		r.Use(rt.Limiter.Middleware(middleware.TierGeneral))

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(utils.RoleAdmin))
			r.Post("/users", rt.Accounts.CreateAccount)
			r.Post("/orders/{number}/assign", rt.Assignments.AssignOrder)
			r.Post("/orders/{number}/auto-assign", rt.Assignments.AutoAssignOrder)
			r.Get("/orders/manual-intervention", rt.Assignments.ListOrdersNeedingManualIntervention)
			r.Get("/officers/workloads", rt.Assignments.ListOfficerWorkloads)
			r.Get("/metrics", MetricsHandler(rt.Metrics))
		})

		r.Route("/officer", func(r chi.Router) {
			r.Use(middleware.RequireRole(utils.RoleOfficer))
			r.Post("/orders/{number}/respond", rt.Assignments.RespondToAssignment)
			r.Put("/availability", rt.Officers.UpdateAvailability)
		})

		r.Route("/orders/{number}", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(utils.RoleAdmin, utils.RoleOfficer))
				r.Get("/assignment", rt.Assignments.GetAssignmentStatus)
				r.Patch("/items/status", rt.Items.BulkUpdateItemStatuses)
				r.Patch("/items/{itemID}/status", rt.Items.UpdateItemStatus)
			})
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(utils.RoleAdmin))
				r.Post("/invoice", rt.Payments.CreateInvoice)
				r.Post("/payment/verify", rt.Payments.VerifyPayment)
			})
		})
	})

	return r
}
