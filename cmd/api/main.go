package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"kalamitraah/internal/config"
	"kalamitraah/internal/handler"
	"kalamitraah/internal/infra/cache"
	"kalamitraah/internal/infra/db"
	"kalamitraah/internal/infra/messaging"
	"kalamitraah/internal/infra/payment"
	infraRepo "kalamitraah/internal/infra/repository"
	"kalamitraah/internal/logger"
	"kalamitraah/internal/server"
	"kalamitraah/internal/usecase"
	"kalamitraah/internal/worker"

	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.GoEnv)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//DB
	gormDB, err := db.Connect(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(gormDB); err != nil {
			log.Warn("close database", zap.Error(err))
		}
	}()
	if err := db.Migrate(gormDB); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	//cart cache (optional)
	var cartCache usecase.CartCache = usecase.NoopCartCache
	if cfg.RedisURL != "" {
		rdb, err := cache.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer func() { _ = rdb.Close() }()
		cartCache = cache.NewCartRedisCache(rdb)
		log.Info("cart cache enabled")
	}

	//repositories
	products := infraRepo.NewProductGormRepository(gormDB)
	carts := infraRepo.NewCartGormRepository(gormDB)
	orders := infraRepo.NewOrderGormRepository(gormDB)
	orderItems := infraRepo.NewOrderItemGormRepository(gormDB)
	outbox := infraRepo.NewOutboxGormRepository(gormDB)
	tx := infraRepo.NewTxManagerGorm(gormDB)

	gateway := payment.NewStripeGateway(payment.GatewayConfigFrom(cfg))
	if !cfg.Stripe.Configured() {
		log.Warn("stripe is not configured; checkout and webhooks will fail")
	}

	//usecases
	cartUC := usecase.NewCartUsecase(carts, carts, products, cartCache, log)
	orderUC := usecase.NewOrderUsecase(tx, orders, orderItems, products, cartCache, log)
	statusUC := usecase.NewOrderStatusUsecase(tx, log)
	paymentUC := usecase.NewPaymentUsecase(gateway, tx, carts, carts, products, cartCache, log)
	productUC := usecase.NewProductUsecase(products)

	srv := server.New(cfg, log, server.Handlers{
		Cart:    handler.NewCartHandler(cartUC, log),
		Order:   handler.NewOrderHandler(orderUC, statusUC, log),
		Payment: handler.NewPaymentHandler(paymentUC, log),
		Product: handler.NewProductHandler(productUC, log),
	})

	var wg sync.WaitGroup

	//order events relay (optional)
	if len(cfg.KafkaBrokers) > 0 {
		publisher := messaging.NewKafkaPublisher(cfg.KafkaOrderTopic, cfg.KafkaBrokers...)
		defer func() {
			if err := publisher.Close(); err != nil {
				log.Warn("close kafka writer", zap.Error(err))
			}
		}()

		poller := worker.NewOutboxPoller(outbox, publisher, log)
		wg.Add(1)
		go func() {
			defer wg.Done()
			poller.Run(ctx)
		}()
	} else {
		log.Info("kafka not configured; order events stay in the outbox")
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err = <-errCh:
		stop()
	case <-ctx.Done():
		log.Info("shutting down")
		err = srv.Shutdown(context.Background())
	}

	wg.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
