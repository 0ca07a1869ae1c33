package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/titanshop/storefront/config"
	"github.com/titanshop/storefront/internal/adapter/chatapi"
	"github.com/titanshop/storefront/internal/adapter/chatbot"
	"github.com/titanshop/storefront/internal/adapter/feed"
	"github.com/titanshop/storefront/internal/adapter/httphandler"
	"github.com/titanshop/storefront/internal/adapter/kafka"
	"github.com/titanshop/storefront/internal/adapter/scheduler"
	"github.com/titanshop/storefront/internal/adapter/storage"
	"github.com/titanshop/storefront/internal/core/service"
	"github.com/titanshop/storefront/pkg/schema"
	"github.com/twmb/franz-go/pkg/sr"
)

type serdes struct {
	order        schema.Serde
	paymentEvent schema.Serde
}

type services struct {
	catalog  *service.CatalogService
	search   *service.SearchService
	cart     *service.CartService
	checkout *service.CheckoutService
}

type App struct {
	ctx context.Context
	cfg config.Config

	serdes   serdes
	services services

	bot            *chatbot.Bot
	ordersProducer kafka.OrdersProducer
	paymentProc    *kafka.PaymentEventsProcessor
	scheduler      *scheduler.CatalogScheduler
	httpServer     httphandler.HTTPServer
}

func New(ctx context.Context, cfg config.Config) *App {
	app := &App{ctx: ctx, cfg: cfg}

	app.initLogger()
	app.initSerdes()
	app.initOrdersProducer()
	app.initCore()
	app.initPaymentProcessor()
	app.initScheduler()
	app.initHTTPServer()

	return app
}

func (app *App) initLogger() {
	opts := &slog.HandlerOptions{Level: app.cfg.LogLevel}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, opts))
	slog.SetDefault(logger)
}

func (app *App) initSerdes() {
	const op = "App.initSerdes"
	urls := app.cfg.Broker.SchemaRegistryURLs
	ctx := app.ctx

	srClient, err := sr.NewClient(sr.URLs(urls...))
	if err != nil {
		app.fallDown(op, err)
	}

	schemaCreater := schema.NewSchemaCreater(srClient)

	orderSS := app.cfg.Broker.Topics.Orders + "-value"
	orderSerde, err := schema.NewSerdeOrderV1(
		ctx,
		schema.SubjectOpt(orderSS),
		schema.SchemaIdentifierOpt(schemaCreater),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	paymentSS := app.cfg.Broker.Topics.PaymentEvents + "-value"
	paymentSerde, err := schema.NewSerdePaymentEventV1(
		ctx,
		schema.SubjectOpt(paymentSS),
		schema.SchemaIdentifierOpt(schemaCreater),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	app.serdes.order = orderSerde
	app.serdes.paymentEvent = paymentSerde
}

func (app *App) initOrdersProducer() {
	const op = "App.initOrdersProducer"

	producer, err := kafka.NewOrdersProducer(
		kafka.ProducerClientOpt(
			app.ctx, app.cfg.Broker.SeedBrokers, app.cfg.Broker.Topics.Orders,
		),
		kafka.ProducerEncoderOpt(app.serdes.order),
	)
	if err != nil {
		app.fallDown(op, err)
	}
	app.ordersProducer = producer
}

func (app *App) initCore() {
	cfg := app.cfg

	catalogKeeper := storage.NewCatalog()
	cartKeeper := storage.NewCarts()
	sessionKeeper := storage.NewSessions()

	chat := chatapi.New(
		cfg.ChatAPI.BaseURL, cfg.ChatAPI.Token, cfg.ChatAPI.ProviderToken,
	)

	source := feed.NewCSVSource(cfg.Catalog.FeedPath)

	catalogService := service.NewCatalogService(source, catalogKeeper)
	searchService := service.NewSearchService(catalogKeeper)
	cartService := service.NewCartService(
		cartKeeper, catalogKeeper, cfg.Shop.DeliveryFee,
	)
	checkoutService := service.NewCheckoutService(
		cartKeeper,
		sessionKeeper,
		cartService,
		chat,
		app.ordersProducer,
		cfg.Shop.Currency,
		cfg.Shop.DeliveryFee,
		cfg.Crypto.Wallets,
		cfg.Crypto.Rates,
		cfg.CardEnabled(),
	)

	app.services = services{
		catalog:  catalogService,
		search:   searchService,
		cart:     cartService,
		checkout: checkoutService,
	}

	app.bot = chatbot.New(
		chat,
		sessionKeeper,
		catalogService,
		searchService,
		cartService,
		checkoutService,
		cfg.Shop.Currency,
	)
}

func (app *App) initPaymentProcessor() {
	const op = "App.initPaymentProcessor"

	proc, err := kafka.NewPaymentEventsProc(
		app.cfg.Broker.SeedBrokers,
		app.cfg.Broker.Topics.PaymentEvents,
		app.cfg.Broker.PaymentEventsGroup,
		app.serdes.paymentEvent,
		app.bot,
	)
	if err != nil {
		app.fallDown(op, err)
	}
	app.paymentProc = proc
}

func (app *App) initScheduler() {
	const op = "App.initScheduler"

	s, err := scheduler.NewCatalogScheduler(
		app.ctx, app.services.catalog, app.cfg.SyncInterval(),
	)
	if err != nil {
		app.fallDown(op, err)
	}
	app.scheduler = s
}

func (app *App) initHTTPServer() {
	mux := http.NewServeMux()
	httphandler.RegisterUpdates(mux, app.bot)
	httphandler.RegisterHealth(mux, app.services.catalog)

	handler := httphandler.AllowJSON(mux)
	app.httpServer = httphandler.NewHTTPServer(app.cfg.HTTPServerAddr, handler)
}

func (app *App) Run(stopFn context.CancelFunc) {
	app.scheduler.Run()

	var wg sync.WaitGroup
	wg.Add(1)
	app.paymentProc.Run(app.ctx, stopFn, &wg)
	wg.Wait()

	go app.httpServer.Run(stopFn)

	slog.Info("application is running")
}

func (app *App) Close(ctx context.Context) {
	slog.Info("application is closing...")

	app.httpServer.Close(ctx)
	app.scheduler.Close(ctx)
	app.paymentProc.Close()
	app.ordersProducer.Close()

	slog.Info("application is closed")
}

func (app *App) fallDown(op string, err error) {
	panic(fmt.Errorf("%s: %w", op, err))
}
