package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/sareenotsorry/shop/internal/config"
	"github.com/sareenotsorry/shop/internal/es"
	"github.com/sareenotsorry/shop/internal/handlers"
	"github.com/sareenotsorry/shop/internal/logging"
	authmw "github.com/sareenotsorry/shop/internal/middleware/auth"
	"github.com/sareenotsorry/shop/internal/mykafka"
	"github.com/sareenotsorry/shop/internal/service/order"
	"github.com/sareenotsorry/shop/internal/service/token"
	httpserver "github.com/sareenotsorry/shop/internal/transport/http"
	loggingmw "github.com/sareenotsorry/shop/pkg/middleware/logging"
)

const productIndex = "products"

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	db, err := config.InitDB(context.Background(), configuration)
	if err != nil {
		log.Fatalf("database init error: %v", err)
	}

	var producer *mykafka.Producer
	if configuration.KAFKA_ADDRESS != "" {
		producer = mykafka.NewProducer(strings.Split(configuration.KAFKA_ADDRESS, ","))
	} else {
		logger.Warn("KAFKA_ADDRESS not set, event publishing disabled")
	}

	var esClient *elasticsearch.Client
	if configuration.ES_URL != "" {
		esClient, err = es.NewClient(configuration)
		if err != nil {
			log.Fatalf("elasticsearch init error: %v", err)
		}
	} else {
		logger.Warn("ES_URL not set, product search disabled")
	}

	tokens := &token.Service{
		DB:            db,
		JWTSecret:     []byte(configuration.JWT_SECRET),
		RefreshSecret: []byte(configuration.REFRESH_SECRET),
	}
	engine := order.NewEngine(db, producer)

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		DB:                  db,
		Auth:                &authmw.Middleware{Tokens: tokens},
		AuthHandler:         &handlers.AuthHandler{DB: db, Tokens: tokens, Producer: producer},
		ProductHandler:      &handlers.ProductHandler{DB: db},
		AdminProductHandler: &handlers.AdminProductHandler{DB: db, Producer: producer, ES: esClient, Index: productIndex},
		OrderHandler:        &handlers.OrderHandler{DB: db, Engine: engine},
		AdminOrderHandler:   &handlers.AdminOrderHandler{DB: db, Engine: engine},
		CategoryHandler:     &handlers.CategoryHandler{DB: db},
		NotificationHandler: &handlers.NotificationHandler{Notify: engine.Notifier},
		StatsHandler:        &handlers.StatsHandler{DB: db},
		SearchHandler:       &handlers.SearchHandler{ES: esClient, Index: productIndex},
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         configuration.HTTP_ADDR,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := producer.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
