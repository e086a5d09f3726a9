package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/nvidela/shop-assistant/config"
	"github.com/nvidela/shop-assistant/internal/adapter/httphandler"
	"github.com/nvidela/shop-assistant/internal/adapter/kafka"
	"github.com/nvidela/shop-assistant/internal/adapter/modelclient"
	"github.com/nvidela/shop-assistant/internal/adapter/storage"
	"github.com/nvidela/shop-assistant/internal/core/port"
	"github.com/nvidela/shop-assistant/internal/core/service"
)

// extra room on top of the model timeout so /chat is not cut off by the
// request timeout while the provider call is still within budget
const requestTimeoutSlack = 5 * time.Second

type App struct {
	cfg        config.Config
	httpServer httphandler.HTTPServer
	events     port.EventsPublisher
	sqldb      *storage.SQLDB
}

func New(ctx context.Context, cfg config.Config) *App {
	app := &App{cfg: cfg}

	app.initLogger()

	products, carts := app.initStorage(ctx)
	app.initEvents(ctx)
	model := app.initModelClient(ctx)

	catalogSvc := service.NewCatalogService(products)
	cartsSvc := service.NewCartsService(products, carts, app.events)
	assistantSvc := service.NewAssistantService(
		model, catalogSvc, cartsSvc, cartsSvc, app.events,
		cfg.Model.Temperature, cfg.ModelTimeout(),
	)

	mux := http.NewServeMux()
	httphandler.RegisterProducts(mux, catalogSvc)
	httphandler.RegisterCarts(mux, cartsSvc, cartsSvc)
	httphandler.RegisterChat(mux, assistantSvc)

	handler := httphandler.AllowOrigins(cfg.AllowedOrigins,
		httphandler.RequestID(httphandler.AllowJSON(mux)))

	app.httpServer = httphandler.NewHTTPServer(
		cfg.HTTPServerAddr, handler, cfg.ModelTimeout()+requestTimeoutSlack,
	)
	return app
}

func (app *App) initLogger() {
	opts := &slog.HandlerOptions{Level: app.cfg.LogLevel}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, opts))
	slog.SetDefault(logger)
}

func (app *App) initStorage(
	ctx context.Context,
) (port.ProductsReader, port.CartsStorage) {
	const op = "App.initStorage"

	if app.cfg.SQLDB == "" {
		slog.Info("no sql_db configured, using in-memory storage", "op", op)
		mem := storage.NewMemoryStorage()
		return mem, mem
	}

	sqldb, err := storage.NewSQLDB(ctx, app.cfg.SQLDB)
	if err != nil {
		app.fallDown(op, err)
	}
	app.sqldb = &sqldb
	return storage.NewProductsRepository(sqldb), storage.NewCartsRepository(sqldb)
}

func (app *App) initEvents(ctx context.Context) {
	const op = "App.initEvents"

	if len(app.cfg.Broker.SeedBrokers) == 0 {
		return
	}

	p, err := kafka.NewEventsProducer(
		ctx, app.cfg.Broker.SeedBrokers, app.cfg.Broker.EventsTopic,
	)
	if err != nil {
		app.fallDown(op, err)
	}
	app.events = p
}

func (app *App) initModelClient(ctx context.Context) port.TextGenerator {
	const op = "App.initModelClient"

	switch app.cfg.Model.Provider {
	case "huggingface":
		cl, err := modelclient.NewHuggingFaceClient(
			app.cfg.Model.Endpoint, app.cfg.ModelAPIKey(),
		)
		if err != nil {
			app.fallDown(op, err)
		}
		return cl
	default:
		cl, err := modelclient.NewGeminiClient(
			ctx, app.cfg.ModelAPIKey(), app.cfg.Model.Name,
		)
		if err != nil {
			app.fallDown(op, err)
		}
		return cl
	}
}

func (app *App) Run(stopFn context.CancelFunc) {
	go app.httpServer.Run(stopFn)

	slog.Info("application is running")
}

func (app *App) Close(ctx context.Context) {
	slog.Info("application is closing...")

	app.httpServer.Close(ctx)
	if app.events != nil {
		app.events.Close()
	}
	if app.sqldb != nil {
		app.sqldb.Close()
	}

	slog.Info("application is closed")
}

func (app *App) fallDown(op string, err error) {
	panic(fmt.Errorf("%s: %w", op, err))
}
