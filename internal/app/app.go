package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/niksmo/storefront/config"
	"github.com/niksmo/storefront/internal/adapter"
	"github.com/niksmo/storefront/internal/adapter/backend"
	"github.com/niksmo/storefront/internal/adapter/httphandler"
	"github.com/niksmo/storefront/internal/adapter/kafka"
	"github.com/niksmo/storefront/internal/adapter/storage"
	"github.com/niksmo/storefront/internal/core/service"
	"github.com/niksmo/storefront/pkg/schema"
	"github.com/shopspring/decimal"
	"github.com/twmb/franz-go/pkg/sr"
)

type serdes struct {
	purchase  schema.Serde
	cartEvent schema.Serde
}

type producers struct {
	purchases  *kafka.PurchasesProducer
	cartEvents *kafka.CartEventsEmitter
}

type App struct {
	ctx        context.Context
	cfg        config.Config
	taxRate    decimal.Decimal
	kv         storage.KV
	backend    *backend.Client
	serdes     serdes
	producers  producers
	service    service.Service
	httpServer httphandler.HTTPServer
}

func New(ctx context.Context, config config.Config) *App {
	app := &App{ctx: ctx, cfg: config}

	app.initLogger()
	app.initTaxRate()
	app.initStorage()
	app.initBackend()
	if app.cfg.Broker.Enabled {
		app.initSerdes()
		app.initProducers()
	}
	app.initCoreService()
	app.initInboundAdapters()

	return app
}

func (app *App) initLogger() {
	opts := &slog.HandlerOptions{Level: app.cfg.LogLevel}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, opts))
	slog.SetDefault(logger)
}

func (app *App) initTaxRate() {
	const op = "App.initTaxRate"

	taxRate, err := decimal.NewFromString(app.cfg.TaxRate)
	if err != nil {
		app.fallDown(op, err)
	}
	if taxRate.IsNegative() {
		app.fallDown(op, fmt.Errorf("negative tax rate %s", taxRate))
	}
	app.taxRate = taxRate
}

func (app *App) initStorage() {
	const op = "App.initStorage"

	cfg := app.cfg.Storage
	switch cfg.Driver {
	case config.StorageSQL:
		kv, err := storage.NewSQLKV(app.ctx, cfg.SQLDB)
		if err != nil {
			app.fallDown(op, err)
		}
		app.kv = kv
	case config.StorageRedis:
		kv, err := storage.NewRedisKV(app.ctx, cfg.RedisURL, cfg.RedisPrefix)
		if err != nil {
			app.fallDown(op, err)
		}
		app.kv = kv
	default:
		app.kv = storage.NewMemoryKV()
	}
	slog.Info("storage is ready", "op", op, "driver", cfg.Driver)
}

func (app *App) initBackend() {
	const op = "App.initBackend"

	cfg := app.cfg.Backend
	cl, err := backend.NewClient(backend.ClientConfig{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Paths: backend.Paths{
			Products:        cfg.Paths.Products,
			ProductsByBrand: cfg.Paths.ProductsByBrand,
			CustomerByEmail: cfg.Paths.CustomerByEmail,
			Customers:       cfg.Paths.Customers,
			Purchase:        cfg.Paths.Purchase,
			LatestInvoice:   cfg.Paths.LatestInvoice,
			ConfirmPurchase: cfg.Paths.ConfirmPurchase,
		},
	})
	if err != nil {
		app.fallDown(op, err)
	}
	app.backend = cl
}

func (app *App) security() kafka.Security {
	const op = "App.security"

	var sec kafka.Security
	if app.cfg.TLSEnabled() {
		tlsFiles := app.cfg.Broker.TLS
		tlsCfg, err := adapter.MakeTLSConfig(tlsFiles.CA, tlsFiles.Cert, tlsFiles.Key)
		if err != nil {
			app.fallDown(op, err)
		}
		sec.TLS = tlsCfg
	}
	sec.User = app.cfg.Broker.SASL.User
	sec.Password = app.cfg.Broker.SASL.Password
	return sec
}

func (app *App) initSerdes() {
	const op = "App.initSerdes"
	urls := app.cfg.Broker.SchemaRegistryURLs
	ctx := app.ctx

	srOpts := []sr.ClientOpt{sr.URLs(urls...)}
	if user := app.cfg.Broker.SASL.User; user != "" {
		srOpts = append(srOpts, sr.BasicAuth(user, app.cfg.Broker.SASL.Password))
	}
	srClient, err := sr.NewClient(srOpts...)
	if err != nil {
		app.fallDown(op, err)
	}

	schemaCreater := schema.NewSchemaCreater(srClient)

	purchaseSS := app.cfg.Broker.Topics.Purchases + "-value"
	purchaseSerde, err := schema.NewSerdePurchaseV1(
		ctx,
		schema.SubjectOpt(purchaseSS),
		schema.SchemaIdentifierOpt(schemaCreater),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	cartEventSS := app.cfg.Broker.Topics.CartEvents + "-value"
	cartEventSerde, err := schema.NewSerdeCartEventV1(
		ctx,
		schema.SubjectOpt(cartEventSS),
		schema.SchemaIdentifierOpt(schemaCreater),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	app.serdes.purchase = purchaseSerde
	app.serdes.cartEvent = cartEventSerde
}

func (app *App) initProducers() {
	const op = "App.initProducers"

	ctx := app.ctx
	seedBrokers := app.cfg.Broker.SeedBrokers
	topics := app.cfg.Broker.Topics
	sec := app.security()

	purchasesProducer, err := kafka.NewPurchasesProducer(
		kafka.ProducerClientOpt(ctx, seedBrokers, topics.Purchases, sec),
		kafka.ProducerEncoderOpt(app.serdes.purchase),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	cartEventsEmitter, err := kafka.NewCartEventsEmitter(
		seedBrokers, topics.CartEvents, app.serdes.cartEvent, sec,
	)
	if err != nil {
		app.fallDown(op, err)
	}

	app.producers.purchases = &purchasesProducer
	app.producers.cartEvents = cartEventsEmitter
}

func (app *App) initCoreService() {
	deps := service.Deps{
		Catalog:       app.backend,
		Customers:     app.backend,
		Gateway:       app.backend,
		CartStorage:   storage.NewCartRepository(app.kv),
		Sessions:      storage.NewSessionRepository(app.kv),
		Confirmations: storage.NewConfirmationRepository(app.kv),
	}
	// Interface fields stay untyped nil when the broker is disabled.
	if app.producers.purchases != nil {
		deps.PurchaseEvents = app.producers.purchases
	}
	if app.producers.cartEvents != nil {
		deps.CartEvents = app.producers.cartEvents
	}

	app.service = service.New(deps, app.taxRate)
}

func (app *App) initInboundAdapters() {
	addr := app.cfg.HTTPServerAddr
	s := app.service

	mux := http.NewServeMux()
	httphandler.RegisterProducts(mux, s.Catalog)
	httphandler.RegisterCart(mux, s.Cart)
	httphandler.RegisterCheckout(mux, s.Checkout)
	httphandler.RegisterPayment(mux, s.Purchase)
	httphandler.RegisterSession(mux, s.Sessions)
	httphandler.RegisterCustomers(mux, s.Registration)

	handler := httphandler.AllowJSON(mux)
	app.httpServer = httphandler.NewHTTPServer(
		addr, handler, app.cfg.RequestTimeout,
	)
}

func (app *App) Run(stopFn context.CancelFunc) {
	app.service.Run(app.ctx)
	go app.httpServer.Run(stopFn)

	slog.Info("application is running")
}

func (app *App) Close(ctx context.Context) {
	slog.Info("application is closing...")

	app.httpServer.Close(ctx)
	app.service.Close()
	app.kv.Close()

	slog.Info("application is closed")
}

func (app *App) fallDown(op string, err error) {
	panic(fmt.Errorf("%s: %w", op, err))
}
