package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"
	log "github.com/sirupsen/logrus"

	config "github.com/avvvet/card-services/configs"
	"github.com/avvvet/card-services/internal/cardsvc/broker"
	svcconfig "github.com/avvvet/card-services/internal/cardsvc/config"
	handlers "github.com/avvvet/card-services/internal/cardsvc/handlers"
	"github.com/avvvet/card-services/internal/cardsvc/service"
	"github.com/avvvet/card-services/internal/cardsvc/store"
	natscli "github.com/avvvet/card-services/internal/nats"
)

const SERVICE_NAME = "card"

var instanceId string

func init() {
	instanceId = config.CreateUniqueInstance(SERVICE_NAME)
	config.Logging(SERVICE_NAME + "_service_" + instanceId)
	config.LoadEnv(SERVICE_NAME)
}

func main() {
	cfg := svcconfig.Load()

	ledger, closeLedger, err := store.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.Backend, err)
	}
	defer closeLedger()

	cardService := service.NewCardService(ledger)

	// events are optional
	if cfg.NatsUrl != "" {
		n, err := natscli.Connect(cfg.NatsUrl, cfg.NatsToken, SERVICE_NAME+"_service_"+instanceId)
		if err != nil {
			log.Errorf("Error: unable to connect to NATS server %v", err)
			os.Exit(1)
		}
		defer n.Conn.Close()
		log.Printf("NATS connection established successfully %s", n.Url)

		cardService.WithPublisher(broker.NewBroker(n.Conn))
	}

	if cfg.JWTKey == "" {
		log.Fatal("JWT_SECRET_KEY is required for the admin routes")
	}

	// Setup router
	r := chi.NewRouter()
	c := config.CORS()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(config.CustomLoggerMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(c.Handler)

	// to protect the service api from any over requests
	r.Use(httprate.LimitByIP(cfg.RateLimit, 1*time.Minute))

	// Init handlers and routes
	h := handlers.NewHandler(cardService)
	h.InitAuth(cfg.JWTKey)
	h.SetRoutes(r)

	// Create server with timeout settings
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()
	log.Infof("%s service running at port %s (store: %s)", SERVICE_NAME, server.Addr, cfg.Backend)

	// Wait for interrupt signal to gracefully shutdown the server
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Errorf("%s service shutdown Failed:%+v", SERVICE_NAME, err)
		return
	}
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}
