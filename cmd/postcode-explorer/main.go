package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/diwise/messaging-golang/pkg/messaging"
	"github.com/diwise/postcode-explorer/internal/app/api"
	"github.com/diwise/postcode-explorer/internal/app/explorer"
	"github.com/diwise/postcode-explorer/internal/app/subscriptions"
	"github.com/diwise/postcode-explorer/internal/pkg/analytics"
	"github.com/diwise/postcode-explorer/internal/pkg/config"
	"github.com/diwise/postcode-explorer/internal/pkg/mapit"
	"github.com/diwise/postcode-explorer/internal/pkg/presentation/web"
	"github.com/diwise/service-chassis/pkg/infrastructure/buildinfo"
	"github.com/diwise/service-chassis/pkg/infrastructure/env"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
)

const serviceName string = "postcode-explorer"

func main() {
	serviceVersion := buildinfo.SourceVersion()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ctx, log, cleanup := o11y.Init(ctx, serviceName, serviceVersion)
	defer cleanup()

	var configPath, templatesDir string

	flag.StringVar(&configPath, "config", "/opt/diwise/config/postcode-explorer.yaml", "A yaml file with map, overlay and pricing settings")
	flag.StringVar(&templatesDir, "templates", "", "A directory with panel templates, the built in templates are used when empty")
	flag.Parse()

	cfg, err := config.LoadConfiguration(ctx, configPath)
	if err != nil {
		log.Error("could not load configuration", "err", err.Error())
		os.Exit(1)
	}

	templates, err := web.New(templatesDir)
	if err != nil {
		log.Error("could not load templates", "err", err.Error())
		os.Exit(1)
	}

	var publisher analytics.Publisher

	messenger, err := messaging.Initialize(ctx, messaging.LoadConfiguration(ctx, serviceName, log))
	if err != nil {
		log.Warn("failed to init messenger, analytics events will not be published", "err", err.Error())
	} else {
		messenger.Start()
		defer messenger.Close()
		publisher = messenger
	}

	tracker := analytics.New(publisher, cfg.Page.Title, cfg.Analytics.Wait)
	client := mapit.New(cfg.MapIt.URL, mapitOptions(ctx, cfg.MapIt)...)

	settings := explorer.Settings{
		MapOptions:        cfg.Map.Options(),
		Zoom:              cfg.Map.Zoom,
		TileURL:           cfg.Map.TileURL,
		Attribution:       cfg.Map.Attribution,
		OverlayStyle:      cfg.Overlay.Style,
		SimplifyTolerance: cfg.Overlay.SimplifyTolerance,
	}

	pages := explorer.NewRegistry(func(ctx context.Context, id string) *explorer.Page {
		return explorer.NewPage(ctx, id, client, templates, tracker, settings)
	}, cfg.Page.TTL)

	go pages.Run(ctx)

	pricing := subscriptions.NewPricing(cfg.Pricing.Minimum, cfg.Pricing.Plans)

	r := api.Register(ctx, pages, tracker, pricing)

	port := env.GetVariableOrDefault(ctx, "SERVICE_PORT", "8080")
	webServer := &http.Server{Addr: ":" + port, Handler: r}

	go func() {
		log.Info("starting to listen for connections", "port", port, "mapit", cfg.MapIt.URL)
		if err := webServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("could not listen and serve", "err", err.Error())
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	webServer.Shutdown(ctx)
	cancel()
}

func mapitOptions(ctx context.Context, cfg config.MapItConfig) []mapit.Option {
	log := logging.GetFromContext(ctx)

	opts := []mapit.Option{
		mapit.WithRateLimit(cfg.RateLimit, cfg.Burst),
	}

	if cfg.Cache.RedisURL == "" {
		return opts
	}

	cache, err := mapit.NewRedisCacheFromURL(ctx, cfg.Cache.RedisURL, cfg.Cache.TTL)
	if err != nil {
		log.Warn("could not connect to redis, mapit responses will not be cached", "err", err.Error())
		return opts
	}

	return append(opts, mapit.WithCache(cache))
}
