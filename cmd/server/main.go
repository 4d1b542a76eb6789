package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"fulfillment-be/internal/assignment"
	"fulfillment-be/internal/auth"
	"fulfillment-be/internal/config"
	"fulfillment-be/internal/db"
	"fulfillment-be/internal/handler"
	"fulfillment-be/internal/logger"
	"fulfillment-be/internal/metrics"
	"fulfillment-be/internal/middleware"
	"fulfillment-be/internal/officer"
	"fulfillment-be/internal/order"
	"fulfillment-be/internal/payment"
	"fulfillment-be/internal/payment/webhook"
	"fulfillment-be/internal/storage/memory"
	"fulfillment-be/internal/user"
	"fulfillment-be/internal/utils"

	"go.uber.org/zap"
)

const (
	limiterTTL      = 10 * time.Minute
	shutdownTimeout = 15 * time.Second
	retryBatch      = 20
)

type repositories struct {
	orders   order.Repository
	officers officer.Repository
	payments payment.Repository
	users    user.Repository
	close    func()
}

func openRepositories(cfg *config.Config) repositories {
	if cfg.Storage == config.StorageMemory {
		logger.L().Warn("using in-memory storage, data is lost on restart")
		st := memory.NewStore()
		return repositories{orders: st, officers: st, payments: st, users: st.Users(), close: func() {}}
	}

	database := db.InitDB(cfg)
	return repositories{
		orders:   order.NewRepository(database),
		officers: officer.NewRepository(database),
		payments: payment.NewRepository(database),
		users:    user.NewRepository(database),
		close:    func() { _ = database.Close() },
	}
}

type app struct {
	router  http.Handler
	users   user.Service
	queue   *assignment.Queue
	sweeper *assignment.Sweeper
	limiter *middleware.RateLimiter
}

func newApp(cfg *config.Config, repos repositories, gateway payment.Gateway) *app {
	reg := metrics.NewRegistry()
	queue := assignment.NewQueue(cfg.Assignment.Workers, cfg.Assignment.QueueSize, reg)

	assignSvc := assignment.NewService(repos.orders, repos.officers, repos.payments, queue, cfg.Assignment, reg)

	officerSvc := officer.NewService(repos.officers)
	officerSvc.OnAvailable(func(ctx context.Context, officerID string) {
		queue.Submit(ctx, "retry-awaiting:"+officerID, func(ctx context.Context) error {
			_, err := assignSvc.RetryAwaiting(ctx, retryBatch)
			return err
		})
	})

	processor := payment.NewProcessor(repos.orders, repos.payments, assignSvc, reg)
	paymentSvc := payment.NewService(repos.orders, repos.payments, gateway, processor)

	tokens := auth.NewTokenManager(cfg.JWTSecret)
	userSvc := user.NewService(repos.users, tokens)

	limiter := middleware.NewRateLimiter(limiterTTL)
	rt := &handler.Router{
		Accounts:    handler.NewAccountHandler(userSvc, cfg.AppEnv == "production"),
		Assignments: handler.NewAssignmentHandler(assignSvc),
		Items:       handler.NewItemHandler(order.NewItemService(repos.orders)),
		Officers:    handler.NewOfficerHandler(officerSvc),
		Payments:    handler.NewPaymentHandler(paymentSvc),
		Webhooks:    webhook.NewWebhookHandler(processor, gateway, repos.payments),
		Metrics:     reg,
		Tokens:      tokens,
		Limiter:     limiter,
	}

	var sweeper *assignment.Sweeper
	if cfg.Assignment.SweepSpec != "" {
		sweeper = assignment.NewSweeper(assignSvc, cfg.Assignment.SweepSpec)
	}

	return &app{router: rt.Handler(), users: userSvc, queue: queue, sweeper: sweeper, limiter: limiter}
}

// bootstrapAdmin creates the configured admin account if it does not exist.
func bootstrapAdmin(ctx context.Context, cfg *config.Config, users user.Service) error {
	if cfg.BootstrapAdminEmail == "" || cfg.BootstrapAdminPassword == "" {
		return nil
	}
	_, err := users.CreateAccount(ctx, user.CreateParams{
		Name:     "Administrator",
		Email:    cfg.BootstrapAdminEmail,
		Password: cfg.BootstrapAdminPassword,
		Role:     utils.RoleAdmin,
	})
	if errors.Is(err, user.ErrEmailExists) {
		return nil
	}
	return err
}

func main() {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()
	log := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos := openRepositories(cfg)
	defer repos.close()

	gateway := payment.NewMonnifyGateway(payment.GatewayConfig{
		BaseURL:      cfg.PaymentBaseURL,
		APIKey:       cfg.PaymentAPIKey,
		SecretKey:    cfg.PaymentSecretKey,
		ContractCode: cfg.PaymentContractCode,
	})

	a := newApp(cfg, repos, gateway)
	if err := bootstrapAdmin(ctx, cfg, a.users); err != nil {
		log.Fatal("failed to create bootstrap admin", zap.Error(err))
	}
	a.queue.Start()
	go a.limiter.Run(ctx)
	if a.sweeper != nil {
		if err := a.sweeper.Start(); err != nil {
			log.Fatal("invalid assignment sweep schedule", zap.Error(err))
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr), zap.String("storage", cfg.Storage))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", zap.Error(err))
	}
	if a.sweeper != nil {
		a.sweeper.Stop(shutdownCtx)
	}
	if err := a.queue.Shutdown(shutdownCtx); err != nil {
		log.Error("assignment queue did not drain", zap.Error(err))
	}
}
