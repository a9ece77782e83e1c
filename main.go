package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"vidmarket/domain/repository"
	"vidmarket/infrastructure/cache"
	"vidmarket/infrastructure/configuration"
	"vidmarket/infrastructure/logger"
	"vidmarket/infrastructure/objectstore"
	"vidmarket/infrastructure/payments"
	"vidmarket/infrastructure/persistence"
	"vidmarket/infrastructure/pubsub"
	"vidmarket/infrastructure/servicebus"
	httpHandler "vidmarket/interfaces/http"
	"vidmarket/server"
	"vidmarket/usecase"
)

var httpServer *http.Server

func recoverPanic() {
	if err := recover(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Application panic recovered")
	}
}

func main() {
	defer recoverPanic()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	g, ctx := errgroup.WithContext(ctx)

	// Load env from files (non-destructive; OS env still has precedence).
	configuration.LoadEnvFromFile("config.env", ".env")

	app := configuration.C.App

	psqlDb, err := persistence.NewPostgreSQLDB()
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Cannot connect to the purchase ledger database")
		os.Exit(1)
	}
	if err := persistence.EnsureLedgerSchema(psqlDb); err != nil {
		logger.GetLogger().WithField("error", err).Error("Failed ensuring ledger schema")
	}

	videoDb, err := persistence.NewVideoDB()
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Cannot connect to the video metadata database")
		os.Exit(1)
	}

	redisClient, err := cache.NewCache(
		ctx,
		fmt.Sprintf("%s:%s", configuration.C.RedisClient.Host, configuration.C.RedisClient.Port),
		configuration.C.RedisClient.Username,
		configuration.C.RedisClient.Password,
	)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Cannot connect to Redis")
		os.Exit(1)
	}
	logger.GetLogger().Info("Redis client initialized successfully.")

	objectStore, err := objectstore.NewS3Store(
		ctx,
		configuration.C.ObjectStore.Endpoint,
		configuration.C.ObjectStore.Region,
		configuration.C.ObjectStore.Bucket,
		configuration.C.ObjectStore.AccessKey,
		configuration.C.ObjectStore.SecretKey,
	)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Cannot initialize the object store")
		os.Exit(1)
	}

	// Optional collaborators: the service runs without them, with the
	// affected features degraded and a warning logged.
	mongoDb, err := persistence.NewMongoDb(
		configuration.C.Database.Mongo.Host,
		configuration.C.Database.Mongo.Port,
		configuration.C.Database.Mongo.User,
		configuration.C.Database.Mongo.Password,
		configuration.C.Database.Mongo.Name,
	)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("MongoDB not available - continuing without webhook auditing")
		mongoDb = nil
	} else if err := mongoDb.Ping(ctx, nil); err != nil {
		logger.GetLogger().WithField("error", err).Warn("MongoDB ping failed - continuing without webhook auditing")
		mongoDb = nil
	}

	pubSubClient, err := pubsub.NewPubSub(ctx, configuration.C.Pubsub.ProjectID)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Pub/Sub not available - continuing without domain events")
		pubSubClient = nil
	}

	azServiceBusClient, err := servicebus.NewServiceBus(ctx, configuration.C.ServiceBus.Namespace)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Azure Service Bus not available - continuing without transcode queue")
		azServiceBusClient = nil
	}

	// Repositories.
	userRepository := persistence.NewUserRepository(psqlDb)
	purchaseRepository := persistence.NewPurchaseRepository(psqlDb)
	sellerRepository := persistence.NewSellerRepository(psqlDb)
	videoRepository := persistence.NewVideoRepository(videoDb)
	accessCache := cache.NewAccessCache(redisClient)

	var webhookEventStore repository.IWebhookEventStore
	if mongoDb != nil {
		webhookEventStore = persistence.NewWebhookEventRepository(mongoDb, configuration.C.Database.Mongo.Name)
	}
	var eventPublisher repository.IEventPublisher
	if pubSubClient != nil {
		eventPublisher = pubsub.NewEventPublisher(pubSubClient)
	}
	var transcodeQueue repository.ITranscodeQueue
	if azServiceBusClient != nil {
		transcodeQueue = servicebus.NewTranscodeQueue(azServiceBusClient, configuration.C.ServiceBus.TranscodeQueue)
	}

	paymentGateway := payments.NewStripeGateway(configuration.C.Stripe.SecretKey)

	// Usecases.
	userUsecase := usecase.NewUserUsecase(userRepository)
	accessUsecase := usecase.NewVideoAccessUsecase(videoRepository, purchaseRepository, accessCache, objectStore, configuration.C.Access.RateLimitPerHour)
	streamUsecase := usecase.NewStreamUsecase(objectStore)
	checkoutUsecase := usecase.NewCheckoutUsecase(videoRepository, purchaseRepository, paymentGateway)
	reconcileUsecase := usecase.NewReconcileUsecase(purchaseRepository, sellerRepository, eventPublisher, configuration.C.Pubsub.PurchasesTopic)
	adminUsecase := usecase.NewVideoAdminUsecase(videoRepository, purchaseRepository, accessCache, objectStore, transcodeQueue, eventPublisher, configuration.C.Pubsub.VideosTopic)

	// Handlers.
	userHandler := httpHandler.NewUserHandler(userUsecase)
	videoAccessHandler := httpHandler.NewVideoAccessHandler(accessUsecase, streamUsecase)
	purchaseHandler := httpHandler.NewPurchaseHandler(checkoutUsecase)
	videoAdminHandler := httpHandler.NewVideoAdminHandler(adminUsecase)
	webhookHandler := httpHandler.NewWebhookHandler(reconcileUsecase, webhookEventStore, configuration.C.Stripe.WebhookSecret)

	router := server.InitiateRouter(
		userHandler,
		videoAccessHandler,
		purchaseHandler,
		videoAdminHandler,
		webhookHandler,
		userRepository,
	)

	port := app.Port
	logger.GetLogger().WithField("port", port).Info("Starting application")
	g.Go(func() error {
		httpServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: router,
			// Streaming responses are long-lived; no write timeout.
			ReadTimeout:  0,
			WriteTimeout: 0,
		}
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	select {
	case <-interrupt:
		logger.GetLogger().Info("Application shutdown requested")
	case <-ctx.Done():
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if httpServer != nil {
		_ = httpServer.Shutdown(shutdownCtx)
	}

	if err := g.Wait(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Server returned an error")
		os.Exit(2)
	}
}
