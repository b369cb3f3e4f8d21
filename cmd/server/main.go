package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/camper-area-registration/internal/config"
	"github.com/iliyamo/camper-area-registration/internal/database"
	"github.com/iliyamo/camper-area-registration/internal/handler"
	"github.com/iliyamo/camper-area-registration/internal/queue"
	"github.com/iliyamo/camper-area-registration/internal/repository"
	"github.com/iliyamo/camper-area-registration/internal/router"
	"github.com/iliyamo/camper-area-registration/internal/service"
	"github.com/iliyamo/camper-area-registration/internal/session"
)

func main() {
	cfg := config.Load() // Load environment config

	db, err := database.Open(database.Options{
		User: cfg.DBUser, Pass: cfg.DBPass, Host: cfg.DBHost, Port: cfg.DBPort, Name: cfg.DBName,
		MaxOpenConns: cfg.DBMaxConns,
	})
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	if cfg.DBMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := database.EnsureSchema(ctx, db)
		cancel()
		if err != nil {
			log.Fatalf("db: schema: %v", err)
		}
	}

	sessCfg := config.LoadSessionConfig(cfg.SessionTTL)

	// Wizard state lives in Redis when it is reachable; otherwise it is
	// kept in process memory and lost on restart.
	rdb := config.NewRedisClient()
	var kv session.KV
	ready := map[string]handler.PingFunc{"db": db.PingContext, "redis": nil}
	if rdb != nil {
		defer rdb.Close()
		kv = session.NewRedisKV(rdb, sessCfg.TTL)
		ready["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	} else {
		log.Printf("session: redis unavailable, using in-memory store")
		kv = session.NewMemoryKV()
	}

	wizard := handler.NewWizardHandler(
		repository.NewSiteRepo(db),
		repository.NewAreaRuleRepo(db),
		repository.NewRegistrationRepo(db),
		service.NewPublisher(queue.BrokerURL()),
	)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	router.RegisterRoutes(e, ready)
	w := router.Wizard{
		Handler:     wizard,
		KV:          kv,
		Session:     sessCfg,
		Secret:      cfg.SessionSecret,
		Redis:       rdb,
		RateLimit:   config.LoadRateLimitConfig(),
		SubmitLimit: config.LoadSubmitLimitConfig(),
		Cache:       config.LoadCacheConfig(),
	}
	router.RegisterPages(e, w)
	router.RegisterAPI(e, w)
	router.RegisterFallback(e)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.ConsumerEnabled {
		go func() {
			if err := queue.StartRegistrationConsumer(ctx, cfg.LogDir); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("registration-consumer: stopped: %v", err)
			}
		}()
	}

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err) // Log and exit if server fails
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
