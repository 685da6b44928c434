package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"staybook/internal/app/commands"
	availabilityapp "staybook/internal/app/handlers/availability"
	bookingapp "staybook/internal/app/handlers/bookings"
	cancelapp "staybook/internal/app/handlers/cancel"
	checkoutapp "staybook/internal/app/handlers/checkout"
	quoteapp "staybook/internal/app/handlers/quote"
	"staybook/internal/app/middleware"
	appoutbox "staybook/internal/app/outbox"
	apppolicies "staybook/internal/app/policies"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
	domainlistings "staybook/internal/domain/listings"
	domainpricing "staybook/internal/domain/pricing"
	"staybook/internal/domain/shared/money"
	"staybook/internal/infra/broker/kafka"
	"staybook/internal/infra/config"
	mongodb "staybook/internal/infra/db/mongo"
	ginserver "staybook/internal/infra/http/gin"
	"staybook/internal/infra/obs"
	infraoutbox "staybook/internal/infra/outbox"
	"staybook/internal/infra/storage/memory"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := getenv("APP_ENV", "dev")
	logger := obs.NewLogger(env)

	cfg, err := config.Load()
	if err != nil {
		logger.Warn("using fallback configuration", "error", err)
		cfg.Env = env
		cfg.HTTPAddr = getenv("HTTP_ADDR", ":8080")
		cfg.StorageMode = "memory"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	app, err := buildApplication(cfg, logger)
	if err != nil {
		logger.Error("application bootstrap failed", "error", err)
		os.Exit(1)
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	app.seedDefaultPolicies()
	if cfg.ListingFixtures != "" {
		if err := app.loadListingFixtures(ctx, cfg.ListingFixtures, logger); err != nil {
			logger.Warn("listing fixtures load failed", "error", err, "path", cfg.ListingFixtures)
		}
	}

	if app.worker != nil {
		go func() {
			if err := app.worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
	}
	if app.consumer != nil {
		go func() {
			topics := []string{cfg.KafkaTopicPrefix + "booking.events.v1"}
			if err := app.consumer.Run(ctx, topics); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("audit consumer stopped", "error", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers ginserver.Handlers
	worker   *infraoutbox.Worker
	consumer *kafka.Consumer
	ready    func() error

	listings *memory.ListingRepository
	policies *memory.PolicyStore
	balances *memory.BalanceStore
}

func buildApplication(cfg config.Config, logger *slog.Logger) (application, error) {
	listingsRepo := memory.NewListingRepository()
	reservationsRepo := memory.NewReservationRepository()
	balanceStore := memory.NewBalanceStore()
	policyStore := memory.NewPolicyStore()
	idStore := memory.NewIdempotencyStore(cfg.IdempotencyTTL)

	var (
		bookingsRepo domainbooking.Repository
		uowFactory   uow.UoWFactory
		outboxStore  appoutbox.Outbox
		workerStore  infraoutbox.Store
		ready        = func() error { return nil }
	)

	switch cfg.StorageMode {
	case "mongo":
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return application{}, fmt.Errorf("mongo connect: %w", err)
		}
		bookingsRepo = mongodb.NewBookingRepository(client.DB)
		mongoReservations := mongodb.NewReservationRepository(client.DB)
		mongoOutbox := infraoutbox.NewMongoStore(client.DB)
		uowFactory = mongodb.Factory{
			DB:               client.DB,
			ListingsRepo:     listingsRepo,
			ReservationsRepo: mongoReservations,
			BookingsRepo:     bookingsRepo,
			BalanceStore:     balanceStore,
			PolicyStore:      policyStore,
		}
		outboxStore = mongoOutbox
		workerStore = mongoOutbox
		ready = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx)
		}
	default:
		bookingsRepo = memory.NewBookingRepository()
		memOutbox := memory.NewOutbox()
		uowFactory = memory.NewFactory(memory.FactoryDeps{
			Listings:     listingsRepo,
			Reservations: reservationsRepo,
			Bookings:     bookingsRepo,
			Balances:     balanceStore,
			Policies:     policyStore,
		})
		outboxStore = memOutbox
		workerStore = memOutbox
	}

	commandBus := commands.NewInMemoryBus()
	checkoutHandler := &checkoutapp.CheckoutHandler{
		UoWFactory: uowFactory,
		Outbox:     outboxStore,
		Encoder:    appoutbox.JSONEventEncoder{},
	}
	commands.RegisterHandler(commandBus, checkoutapp.CheckoutCommand{}.Key(), checkoutHandler)
	cancelHandler := &cancelapp.CancelBookingHandler{
		UoWFactory: uowFactory,
		Outbox:     outboxStore,
		Encoder:    appoutbox.JSONEventEncoder{},
	}
	commands.RegisterHandler(commandBus, cancelapp.CancelBookingCommand{}.Key(), cancelHandler)

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, quoteapp.PriceStayQuery{}.Key(), &quoteapp.PriceStayHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, availabilityapp.ResolveQuery{}.Key(), &availabilityapp.ResolveHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, bookingapp.GetBookingQuery{}.Key(), &bookingapp.GetBookingHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, bookingapp.ListBookingsQuery{}.Key(), &bookingapp.ListBookingsHandler{UoWFactory: uowFactory})

	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.Idempotency(idStore, nil),
		middleware.Transaction(uowFactory, nil),
		middleware.OutboxFlush(outboxStore),
	)
	queryBusWithMiddleware := middleware.ChainQueries(queryBus)

	app := application{
		handlers: ginserver.Handlers{
			Quote:        ginserver.QuoteHandler{Queries: queryBusWithMiddleware},
			Availability: ginserver.AvailabilityHandler{Queries: queryBusWithMiddleware},
			Booking: ginserver.BookingHandler{
				Commands: commandBusWithMiddleware,
				Queries:  queryBusWithMiddleware,
			},
		},
		ready:    ready,
		listings: listingsRepo,
		policies: policyStore,
		balances: balanceStore,
	}

	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			return application{}, fmt.Errorf("kafka producer: %w", err)
		}
		app.worker = &infraoutbox.Worker{
			Store:       workerStore,
			Producer:    producer,
			Interval:    cfg.OutboxPollInterval,
			TopicPrefix: cfg.KafkaTopicPrefix,
			Backoff:     cfg.RetryBackoff,
		}
		if cfg.KafkaConsumerGroup != "" {
			consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaConsumerGroup, nil, kafka.AuditHandler{Logger: logger})
			if err != nil {
				return application{}, fmt.Errorf("kafka consumer: %w", err)
			}
			app.consumer = consumer
		}
	}

	return app, nil
}

// seedDefaultPolicies publishes the v1 bundle: standard duration discounts, a
// June through August high season at +20%, and the stock refund tiers.
func (a application) seedDefaultPolicies() {
	a.policies.Publish(apppolicies.PolicyBundle{
		Version: "v1",
		Pricing: domainpricing.PolicySnapshot{
			Version: "v1",
			Season: domainpricing.SeasonPolicy{
				HighSeasonStart: time.June,
				HighSeasonEnd:   time.August,
				ModifierBps:     12_000,
			},
			Duration:   domainpricing.StandardDurationDiscounts(),
			UtilityFee: money.Must(500, money.Fiat),
			Food: domainpricing.FoodOption{
				PricePerNightPerAdult: money.Must(1_500, money.Fiat),
				Included:              true,
			},
		},
		Cancellation: &domainbooking.CancellationPolicy{
			LastDayBps:   0,
			LastWeekBps:  5_000,
			LastMonthBps: 7_500,
			DefaultBps:   10_000,
		},
	})
}

func (a application) loadListingFixtures(ctx context.Context, path string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("listing fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}

	var fixtures []listingFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}

	for _, fx := range fixtures {
		tags := make([]domainlistings.Category, 0, len(fx.Tags))
		for _, tag := range fx.Tags {
			tags = append(tags, domainlistings.Category(tag))
		}
		params := domainlistings.CreateListingParams{
			ID:               domainlistings.ListingID(fx.ID),
			Title:            fx.Title,
			BaseRate:         money.Must(fx.BaseRate, money.Fiat),
			AvailabilityTags: tags,
			Capacity:         fx.Capacity,
		}
		if fx.TokenRate > 0 {
			params.TokenRate = money.Must(fx.TokenRate, money.Token)
		}
		listing, err := domainlistings.NewListing(params)
		if err != nil {
			logger.Error("fixture invalid", "listing_id", fx.ID, "error", err)
			continue
		}
		if err := a.listings.Save(ctx, listing); err != nil {
			logger.Error("cannot store fixture listing", "listing_id", fx.ID, "error", err)
			continue
		}
		logger.Info("listing fixture imported", "listing_id", listing.ID)
	}
	return nil
}

type listingFixture struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	BaseRate  int64    `json:"base_rate"`
	TokenRate int64    `json:"token_rate"`
	Tags      []string `json:"tags"`
	Capacity  int      `json:"capacity"`
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
