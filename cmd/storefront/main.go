package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"

	"github.com/Abhinavraj53/Pujnam-Store/gateway"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/auth"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/config"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/discovery"
	storegrpc "github.com/Abhinavraj53/Pujnam-Store/pkg/grpc"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/logging"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/notify"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/repository"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/service"
)

const (
	shutdownTimeout = 15 * time.Second
	healthInterval  = 15 * time.Second
)

func main() {
	defaultPath := os.Getenv("CONFIG_PATH")
	if defaultPath == "" {
		defaultPath = "config/config.yaml"
	}
	configPath := flag.String("config", defaultPath, "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		panic(fmt.Sprintf("Failed to create logger: %v", err))
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Storefront stopped with error", zap.Error(err))
	}
	logger.Info("Storefront stopped")
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mongo, err := repository.NewMongoRepository(ctx, &cfg.MongoDB)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
		defer done()
		if err := mongo.Close(closeCtx); err != nil {
			logger.Warn("MongoDB disconnect failed", zap.Error(err))
		}
	}()
	if err := mongo.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}
	logger.Info("MongoDB connected", zap.String("database", cfg.MongoDB.Database))

	redis := repository.NewRedisRepository(&cfg.Redis)
	defer redis.Close()
	if err := redis.Ping(ctx); err != nil {
		logger.Warn("Redis connection failed", zap.Error(err))
	} else {
		logger.Info("Redis connected successfully")
	}

	products := repository.NewProductRepository(mongo)
	categories := repository.NewCategoryRepository(mongo)
	coupons := repository.NewCouponRepository(mongo)
	orders := repository.NewOrderRepository(mongo)
	carts := repository.NewCartRepository(mongo)
	settings := repository.NewSettingsRepository(mongo)
	users := repository.NewUserRepository(mongo)

	sender := notify.NewSender(cfg.Mail, settings, logger)
	system := actor.NewActorSystem()
	notifier, err := notify.NewNotifier(system, sender, cfg.Checkout.NotifyTimeout, logger)
	if err != nil {
		return fmt.Errorf("start notifier: %w", err)
	}
	defer notifier.Stop()

	services := gateway.Services{
		Auth: service.NewAuthService(users, redis, sender,
			auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL), cfg.Auth.OTPTTL, logger, nil),
		Catalog: service.NewCatalogService(products, categories, logger, nil),
		Cart:    service.NewCartService(carts, products, logger, nil),
		Coupons: service.NewCouponService(coupons, logger, nil),
		Orders: service.NewOrderService(service.OrderDeps{
			Products: products,
			Coupons:  coupons,
			Orders:   orders,
			Carts:    carts,
			Users:    users,
			Audit:    mongo,
			Notifier: notifier,
			Logger:   logger,
		}, cfg.Checkout),
		Settings: service.NewSettingsService(settings, logger),
		Content: service.NewContentService(service.ContentStores{
			Banners:       repository.NewBannerRepository(mongo),
			Festivals:     repository.NewFestivalRepository(mongo),
			PromoBlocks:   repository.NewPromoBlockRepository(mongo),
			SectionVideos: repository.NewSectionVideoRepository(mongo),
			Products:      products,
		}, logger, nil),
		Customers: service.NewCustomerService(users, orders),
		Media:     service.NewMediaService(repository.NewMediaRepository(mongo), cfg.Upload, logger),
	}

	gw := gateway.NewGateway(cfg, logger, services, map[string]gateway.Pinger{
		"mongodb": mongo,
		"redis":   redis,
	})

	errCh := make(chan error, 2)
	go func() {
		if err := gw.Start(); err != nil {
			errCh <- fmt.Errorf("gateway: %w", err)
		}
	}()

	var health *storegrpc.Server
	if cfg.GRPC.Enabled {
		health = storegrpc.NewServer(&cfg.GRPC, map[string]storegrpc.Checker{
			"mongodb": mongo,
			"redis":   redis,
		}, logger)
		go health.Watch(ctx, healthInterval)
		go func() {
			if err := health.Start(); err != nil {
				errCh <- fmt.Errorf("grpc: %w", err)
			}
		}()
	}

	instance := discovery.Instance{Name: cfg.Server.Name, Host: cfg.Server.Host, Port: cfg.Server.Port}
	var registry *discovery.Registry
	if cfg.Etcd.Enabled {
		registry, err = discovery.NewRegistry(&cfg.Etcd, logger)
		if err != nil {
			logger.Warn("Failed to connect to etcd, continuing without service discovery", zap.Error(err))
		} else if err := registry.Register(ctx, instance); err != nil {
			logger.Warn("Service registration failed", zap.Error(err))
		}
	}

	logger.Info("Storefront started",
		zap.String("http", cfg.Server.Addr()),
		zap.Bool("grpc", cfg.GRPC.Enabled),
		zap.Bool("etcd", registry != nil),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-sigCh:
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
	case runErr = <-errCh:
	}

	shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
	defer done()

	if registry != nil {
		if err := registry.Deregister(shutdownCtx, instance); err != nil {
			logger.Error("Failed to deregister service", zap.Error(err))
		}
		_ = registry.Close()
	}
	if err := gw.Shutdown(shutdownCtx); err != nil {
		logger.Error("Gateway shutdown failed", zap.Error(err))
	}
	if health != nil {
		health.Stop()
	}
	return runErr
}
